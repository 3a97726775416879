package downloads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/mirrordl/internal/logger"
	httpproto "github.com/NamanBalaji/mirrordl/pkg/protocol/http"
)

const (
	messageCompleted = "Completed"
	messageCanceled  = "Canceled"
)

var errNoMirrors = errors.New("no mirror URLs")

var now = time.Now

func newRecordID() uuid.UUID {
	return uuid.New()
}

// process runs one item through its mirrors. Every failure becomes a status;
// nothing escapes the worker goroutine.
func (q *Queue) process(id ID) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Download %d panicked: %v", id, r)
			q.finish(id, StatusFailed, fmt.Sprintf("internal error: %v", r))
		}
	}()

	q.mu.Lock()
	e := q.entries[id]
	item, ctx := e.item, e.ctx
	q.mu.Unlock()

	var lastErr error
	for i, mirror := range item.URLs {
		if ctx.Err() != nil {
			q.finish(id, StatusCanceled, messageCanceled)
			return
		}

		logger.Debugf("Download %d: trying mirror %d/%d %s", id, i+1, len(item.URLs), mirror)

		err := q.tryMirror(ctx, id, item, mirror)
		if err == nil {
			q.finish(id, StatusCompleted, messageCompleted)
			return
		}

		if errors.Is(err, httpproto.ErrCanceled) {
			q.finish(id, StatusCanceled, messageCanceled)
			return
		}

		logger.Warnf("Download %d: mirror %s failed: %v", id, mirror, err)
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errNoMirrors
	}
	q.finish(id, StatusFailed, lastErr.Error())
}

func (q *Queue) tryMirror(ctx context.Context, id ID, item Item, mirror string) error {
	sink := &fileSink{
		q:      q,
		id:     id,
		item:   item,
		mirror: mirror,
		path:   filepath.Join(item.TargetDir, outputName(item.Title, mirror)),
	}

	_, err := q.transport.Stream(ctx, mirror, item.Headers, sink)

	if cerr := sink.close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close %s: %w", sink.path, cerr)
	}

	return err
}

// fileSink writes a mirror's body to the output file and publishes progress.
// Partial files are never removed.
type fileSink struct {
	q      *Queue
	id     ID
	item   Item
	mirror string
	path   string
	file   *os.File
	done   int64
}

func (s *fileSink) Begin(contentLength int64) error {
	total := contentLength
	if total <= 0 {
		total = s.item.SizeBytes
	}

	s.q.update(s.id, func(p *Progress) {
		p.BytesTotal = total
		p.BytesDone = 0
		p.Mirror = s.mirror
		p.Path = s.path
	})

	if s.item.TargetDir != "" {
		if err := os.MkdirAll(s.item.TargetDir, 0o755); err != nil {
			return fmt.Errorf("failed to create target directory: %w", err)
		}
	}

	if total > 0 && s.q.space != nil {
		if err := s.q.space.Ensure(s.item.TargetDir, total); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	s.file = f

	return nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	n, err := s.file.Write(p)
	s.done += int64(n)

	done := s.done
	s.q.update(s.id, func(pr *Progress) {
		pr.BytesDone = done
		pr.Status = StatusRunning
	})

	return n, err
}

func (s *fileSink) close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
