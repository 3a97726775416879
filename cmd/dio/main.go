// Command dio downloads one item from a set of mirrors without the TUI.
//
//	dio -urls "https://a.example/game.zip https://b.example/game.zip" -dd ~/Games
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/NamanBalaji/mirrordl/internal/config"
	"github.com/NamanBalaji/mirrordl/internal/downloads"
	"github.com/NamanBalaji/mirrordl/internal/logger"
	httpproto "github.com/NamanBalaji/mirrordl/pkg/protocol/http"
)

const pollInterval = 100 * time.Millisecond

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 2
	}

	if len(cfg.Urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: dio -urls \"<mirror> [mirror...]\" [-title name] [-dd dir]")
		return 2
	}

	if err := logger.InitLogging(cfg.Debug, cfg.LogPath()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logging: %v\n", err)
	}
	defer logger.Close()

	client := httpproto.NewClient(cfg.ClientConfig())
	defer client.Cleanup()

	q := downloads.New(client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := q.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting queue: %v\n", err)
		return 1
	}
	defer q.Shutdown(context.Background())

	id := q.Enqueue(downloads.Item{
		Title:     cfg.Title,
		TargetDir: cfg.DownloadDir,
		URLs:      cfg.Urls,
		Headers:   cfg.HTTP.Headers,
	})

	p := watch(ctx, q, id)

	switch p.Status {
	case downloads.StatusCompleted:
		fmt.Printf("Saved %s (%d bytes)\n", p.Path, p.BytesDone)
		return 0
	case downloads.StatusCanceled:
		fmt.Fprintln(os.Stderr, "Canceled")
		return 130
	default:
		fmt.Fprintf(os.Stderr, "Download failed: %s\n", p.Message)
		return 1
	}
}

// watch renders progress for id until it is terminal. Canceling ctx cancels
// the item and keeps waiting for the worker to acknowledge it.
func watch(ctx context.Context, q *downloads.Queue, id downloads.ID) downloads.Progress {
	bar := progressbar.NewOptions64(
		-1,
		progressbar.OptionSetDescription("waiting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(pollInterval),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var (
		total  int64 = -1
		mirror string
		done   = ctx.Done()
	)

	for {
		p := q.Query(id)

		if p.Mirror != mirror {
			mirror = p.Mirror
			bar.Describe(mirror)
			bar.Reset()
		}
		if p.BytesTotal > 0 && p.BytesTotal != total {
			total = p.BytesTotal
			bar.ChangeMax64(total)
		}
		_ = bar.Set64(p.BytesDone)

		if p.Status.IsTerminal() {
			if p.Status == downloads.StatusCompleted {
				_ = bar.Finish()
			} else {
				_ = bar.Exit()
			}
			return p
		}

		select {
		case <-done:
			done = nil
			logger.Infof("Interrupted, canceling item %d", id)
			q.Cancel(id)
		case <-ticker.C:
		}
	}
}
