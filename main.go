package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/NamanBalaji/mirrordl/internal/config"
	"github.com/NamanBalaji/mirrordl/internal/downloads"
	"github.com/NamanBalaji/mirrordl/internal/gamedownload"
	"github.com/NamanBalaji/mirrordl/internal/logger"
	"github.com/NamanBalaji/mirrordl/internal/repository"
	"github.com/NamanBalaji/mirrordl/internal/tui"
	httpproto "github.com/NamanBalaji/mirrordl/pkg/protocol/http"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitLogging(cfg.Debug, cfg.LogPath())
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logging: %v\n", err)
	}
	defer logger.Close()

	err = os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0o755)
	if err != nil {
		fmt.Printf("Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	repo, err := repository.NewBoltDBRepository(cfg.HistoryPath)
	if err != nil {
		fmt.Printf("Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	if cfg.ShowHistory {
		if err := printHistory(repo); err != nil {
			fmt.Printf("Error reading history: %v\n", err)
			os.Exit(1)
		}
		return
	}

	client := httpproto.NewClient(cfg.ClientConfig())
	defer client.Cleanup()

	queue := downloads.New(client, downloads.WithRecorder(repository.Recorder(repo)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = queue.Start(ctx)
	if err != nil {
		logger.Errorf("Error starting queue: %v", err)
		os.Exit(1)
	}

	if len(cfg.Urls) > 0 {
		links := make([]gamedownload.Link, 0, len(cfg.Urls))
		for _, u := range cfg.Urls {
			links = append(links, gamedownload.Link{URL: u, Provider: "direct"})
		}
		gamedownload.New(queue).Start(links, cfg.DownloadDir)
	}

	// Run the TUI. This is a blocking call.
	err = tui.Run(ctx, queue, tui.Options{
		DownloadDir: cfg.DownloadDir,
		Warns:       cfg.Warns,
	})
	if err != nil {
		fmt.Printf("TUI Error: %v\n", err)
	}

	logger.Infof("TUI has exited. Shutting down queue...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	err = queue.Shutdown(shutdownCtx)
	if err != nil {
		logger.Errorf("Error during queue shutdown: %v", err)
	}

	logger.Infof("Shutdown complete.")
}

func printHistory(repo *repository.BoltDBRepository) error {
	records, err := repo.FindAll()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No finished downloads.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tSTATUS\tBYTES\tPATH\tMESSAGE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.FinishedAt.Local().Format(time.DateTime), r.Status, r.BytesDone, r.Path, r.Message)
	}

	return w.Flush()
}
