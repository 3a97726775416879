package downloads

import (
	"context"
	"errors"
	"sync"

	"github.com/NamanBalaji/mirrordl/internal/logger"
	httpproto "github.com/NamanBalaji/mirrordl/pkg/protocol/http"
)

// ErrQueueClosed is returned by Start after Shutdown.
var ErrQueueClosed = errors.New("queue is shut down")

// Transport streams one URL into a sink. *httpproto.Client satisfies it.
type Transport interface {
	Stream(ctx context.Context, url string, headers map[string]string, sink httpproto.Sink) (int64, error)
}

type Option func(*Queue)

// WithRecorder reports every terminal outcome to r.
func WithRecorder(r Recorder) Option {
	return func(q *Queue) { q.recorder = r }
}

// WithSpaceChecker replaces the free-space preflight. nil disables it.
func WithSpaceChecker(sc SpaceChecker) Option {
	return func(q *Queue) { q.space = sc }
}

type entry struct {
	item     Item
	progress Progress
	ctx      context.Context
	cancel   context.CancelFunc
}

// Queue runs items one at a time, in enqueue order, on a single worker
// goroutine. All shared state is guarded by mu and no I/O happens while it is
// held. The worker is the only writer of progress.
type Queue struct {
	mu        sync.Mutex
	transport Transport
	recorder  Recorder
	space     SpaceChecker

	lastID  ID
	pending []ID
	order   []ID
	entries map[ID]*entry

	wake       chan struct{}
	root       context.Context
	cancelRoot context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

func New(transport Transport, opts ...Option) *Queue {
	root, cancel := context.WithCancel(context.Background())

	q := &Queue{
		transport:  transport,
		space:      DiskSpace(),
		entries:    make(map[ID]*entry),
		wake:       make(chan struct{}, 1),
		root:       root,
		cancelRoot: cancel,
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Start launches the worker. It stops when ctx is done or Shutdown is called.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.root.Err() != nil {
		return ErrQueueClosed
	}

	if q.running {
		logger.Debugf("Download queue already running, skipping start")
		return nil
	}

	context.AfterFunc(ctx, q.cancelRoot)

	q.running = true
	q.wg.Add(1)
	go q.run()

	logger.Infof("Download queue started")
	return nil
}

// Shutdown stops the worker and waits for it until ctx is done. The running
// item, if any, ends as canceled; queued items are left queued.
func (q *Queue) Shutdown(ctx context.Context) error {
	logger.Infof("Shutting down download queue")
	q.cancelRoot()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the worker has exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Enqueue stores a copy of item and schedules it. It never blocks on I/O.
func (q *Queue) Enqueue(item Item) ID {
	ctx, cancel := context.WithCancel(q.root)

	q.mu.Lock()
	q.lastID++
	id := q.lastID
	q.entries[id] = &entry{
		item:     item.clone(),
		progress: Progress{Status: StatusQueued},
		ctx:      ctx,
		cancel:   cancel,
	}
	q.pending = append(q.pending, id)
	q.order = append(q.order, id)
	q.mu.Unlock()

	logger.Infof("Enqueued download %d with %d mirror(s) into %q", id, len(item.URLs), item.TargetDir)
	q.signal()

	return id
}

// Cancel requests cancellation of id. It always returns true; the status
// becomes StatusCanceled once the worker observes the request. Unknown and
// finished ids are ignored.
func (q *Queue) Cancel(id ID) bool {
	q.mu.Lock()
	var cancel context.CancelFunc
	if e, ok := q.entries[id]; ok && !e.progress.Status.IsTerminal() {
		cancel = e.cancel
	}
	q.mu.Unlock()

	if cancel != nil {
		logger.Infof("Cancel requested for download %d", id)
		cancel()
	}
	q.signal()

	return true
}

// Query returns a copy of the progress for id, or a zero Progress in
// StatusQueued when id is unknown.
func (q *Queue) Query(id ID) Progress {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.entries[id]; ok {
		return e.progress
	}

	return Progress{Status: StatusQueued}
}

// List returns copies of every known item in enqueue order.
func (q *Queue) List() []Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Snapshot, 0, len(q.order))
	for _, id := range q.order {
		e := q.entries[id]
		out = append(out, Snapshot{ID: id, Item: e.item.clone(), Progress: e.progress})
	}

	return out
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer q.wg.Done()
	defer logger.Infof("Download queue worker stopped")

	for {
		if q.root.Err() != nil {
			return
		}

		id, ok := q.next()
		if !ok {
			select {
			case <-q.root.Done():
				return
			case <-q.wake:
			}
			continue
		}

		q.process(id)
	}
}

// next pops the oldest pending id and marks it running.
func (q *Queue) next() (ID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return 0, false
	}

	id := q.pending[0]
	q.pending = q.pending[1:]

	e := q.entries[id]
	e.progress.Status = StatusRunning
	e.progress.StartedAt = now()

	return id, true
}

func (q *Queue) update(id ID, fn func(*Progress)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.entries[id]; ok {
		fn(&e.progress)
	}
}

// finish moves id into a terminal state and reports the outcome.
func (q *Queue) finish(id ID, status Status, message string) {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok || e.progress.Status.IsTerminal() {
		q.mu.Unlock()
		return
	}
	e.progress.Status = status
	e.progress.Message = message
	e.progress.FinishedAt = now()
	outcome := Outcome{ID: id, Item: e.item.clone(), Progress: e.progress}
	cancel := e.cancel
	q.mu.Unlock()

	cancel()

	switch status {
	case StatusCompleted:
		logger.Infof("Download %d completed: %s (%d bytes)", id, outcome.Progress.Path, outcome.Progress.BytesDone)
	case StatusCanceled:
		logger.Infof("Download %d canceled after %d bytes", id, outcome.Progress.BytesDone)
	default:
		logger.Errorf("Download %d failed: %s", id, message)
	}

	if q.recorder == nil {
		return
	}

	outcome.RecordID = newRecordID()
	if err := q.recorder.Record(outcome); err != nil {
		logger.Warnf("Failed to record outcome of download %d: %v", id, err)
	}
}
