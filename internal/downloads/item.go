package downloads

import (
	"time"

	"github.com/google/uuid"
)

// ID identifies an enqueued item. IDs start at 1 and are never reused.
type ID uint64

// Item is a download request. URLs are mirrors of the same payload and are
// tried in order until one succeeds.
type Item struct {
	Title     string            `json:"title,omitempty"` // output file name when set
	TargetDir string            `json:"target_dir"`
	URLs      []string          `json:"urls"`
	SizeBytes int64             `json:"size_bytes,omitempty"` // expected size, 0 if unknown
	Headers   map[string]string `json:"-"`
}

func (it Item) clone() Item {
	out := it
	out.URLs = append([]string(nil), it.URLs...)
	if it.Headers != nil {
		out.Headers = make(map[string]string, len(it.Headers))
		for k, v := range it.Headers {
			out.Headers[k] = v
		}
	}
	return out
}

// Progress is a point-in-time copy of an item's transfer state.
type Progress struct {
	BytesDone  int64
	BytesTotal int64 // 0 when unknown
	Status     Status
	Message    string

	Path       string // output file of the current or winning mirror
	Mirror     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Percentage returns the completed share in [0, 100], or 0 if the total is unknown.
func (p Progress) Percentage() float64 {
	if p.BytesTotal <= 0 {
		return 0
	}
	pct := float64(p.BytesDone) / float64(p.BytesTotal) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Snapshot pairs an item with its progress.
type Snapshot struct {
	ID       ID
	Item     Item
	Progress Progress
}

// Outcome is reported to a Recorder once an item reaches a terminal state.
type Outcome struct {
	RecordID uuid.UUID
	ID       ID
	Item     Item
	Progress Progress
}

// Recorder persists outcomes. It is called from the worker goroutine without
// the queue lock held.
type Recorder interface {
	Record(Outcome) error
}
