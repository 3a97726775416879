package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxLines bounds the in-memory buffer kept for the logs view.
const maxLines = 1000

var (
	mu      sync.Mutex
	debug   bool
	file    *os.File
	std     = log.New(io.Discard, "", log.LstdFlags|log.Lmicroseconds)
	lines   = make([]string, 0, 64)
	nowFunc = time.Now
)

// InitLogging enables file logging to path. An empty path keeps file output
// disabled but still toggles debug logging.
func InitLogging(debugMode bool, path string) error {
	mu.Lock()
	defer mu.Unlock()

	debug = debugMode

	if file != nil {
		file.Close()
		file = nil
		std.SetOutput(io.Discard)
	}

	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	file = f
	std.SetOutput(f)

	return nil
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Sync()
		file.Close()
		file = nil
	}
	std.SetOutput(io.Discard)
}

func Debugf(format string, args ...any) {
	mu.Lock()
	enabled := debug
	mu.Unlock()

	if enabled {
		write("DEBUG", format, args...)
	}
}

func Infof(format string, args ...any) {
	write("INFO", format, args...)
}

func Warnf(format string, args ...any) {
	write("WARN", format, args...)
}

func Errorf(format string, args ...any) {
	write("ERROR", format, args...)
}

// Lines returns a copy of the buffered log lines, oldest first.
func Lines() []string {
	mu.Lock()
	defer mu.Unlock()

	out := make([]string, len(lines))
	copy(out, lines)

	return out
}

// Clear empties the in-memory buffer. File output is unaffected.
func Clear() {
	mu.Lock()
	lines = lines[:0]
	mu.Unlock()
}

func LineCount() int {
	mu.Lock()
	defer mu.Unlock()

	return len(lines)
}

func write(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	mu.Lock()
	defer mu.Unlock()

	std.Printf("[%s] %s", level, msg)

	line := fmt.Sprintf("%s [%s] %s", nowFunc().Format("15:04:05"), level, msg)
	if len(lines) >= maxLines {
		copy(lines, lines[1:])
		lines = lines[:len(lines)-1]
	}
	lines = append(lines, line)
}
