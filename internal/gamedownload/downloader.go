package gamedownload

import (
	"sync"

	"github.com/NamanBalaji/mirrordl/internal/downloads"
	"github.com/NamanBalaji/mirrordl/internal/logger"
)

const canceledError = "Canceled"

// Link is one mirror of a game archive. Provider is informational
// (direct, archive, gofile, ...).
type Link struct {
	URL      string
	Provider string
}

// Progress is the reduced view handed to callers.
type Progress struct {
	BytesTotal int64
	BytesDone  int64
	Finished   bool
	Failed     bool
	Error      string
}

// Queue is the part of *downloads.Queue the downloader needs.
type Queue interface {
	Enqueue(downloads.Item) downloads.ID
	Cancel(downloads.ID) bool
	Query(downloads.ID) downloads.Progress
}

// Downloader turns a set of mirror links into one queue item and tracks it.
type Downloader struct {
	queue Queue

	mu      sync.Mutex
	id      downloads.ID
	started bool
	active  bool
}

func New(queue Queue) *Downloader {
	return &Downloader{queue: queue}
}

// Start enqueues links as mirrors of a single item downloaded into targetDir.
// It returns false without enqueueing when links or targetDir is empty.
func (d *Downloader) Start(links []Link, targetDir string) bool {
	if len(links) == 0 || targetDir == "" {
		logger.Warnf("Refusing to start download: %d link(s), target dir %q", len(links), targetDir)
		return false
	}

	item := downloads.Item{
		TargetDir: targetDir,
		URLs:      make([]string, 0, len(links)),
	}
	for _, l := range links {
		item.URLs = append(item.URLs, l.URL)
	}

	id := d.queue.Enqueue(item)

	d.mu.Lock()
	d.id = id
	d.started = true
	d.active = true
	d.mu.Unlock()

	logger.Debugf("Game download started as queue item %d", id)
	return true
}

// ID returns the tracked queue id, if Start succeeded.
func (d *Downloader) ID() (downloads.ID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.id, d.started
}

func (d *Downloader) Progress() Progress {
	d.mu.Lock()
	id, started := d.id, d.started
	d.mu.Unlock()

	if !started {
		return Progress{}
	}

	p := d.queue.Query(id)
	out := Progress{
		BytesDone:  p.BytesDone,
		BytesTotal: p.BytesTotal,
	}

	switch p.Status {
	case downloads.StatusCompleted:
		out.Finished = true
	case downloads.StatusFailed:
		out.Finished = true
		out.Failed = true
		out.Error = p.Message
	case downloads.StatusCanceled:
		out.Finished = true
		out.Failed = true
		out.Error = canceledError
	}

	return out
}

// Cancel asks the queue to cancel the tracked item. Only the first call is
// forwarded.
func (d *Downloader) Cancel() {
	d.mu.Lock()
	id, active := d.id, d.active
	d.active = false
	d.mu.Unlock()

	if !active {
		return
	}

	d.queue.Cancel(id)
}
