package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/NamanBalaji/mirrordl/internal/downloads"
)

const downloadsBucket = "downloads"

var ErrNotFound = errors.New("record not found")

// Record is the stored form of a finished download.
type Record struct {
	ID         uuid.UUID `json:"id"`
	QueueID    uint64    `json:"queue_id"`
	Title      string    `json:"title,omitempty"`
	TargetDir  string    `json:"target_dir"`
	URLs       []string  `json:"urls"`
	Mirror     string    `json:"mirror,omitempty"`
	Path       string    `json:"path,omitempty"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	BytesDone  int64     `json:"bytes_done"`
	BytesTotal int64     `json:"bytes_total"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRecord converts a queue outcome into a Record.
func NewRecord(o downloads.Outcome) *Record {
	return &Record{
		ID:         o.RecordID,
		QueueID:    uint64(o.ID),
		Title:      o.Item.Title,
		TargetDir:  o.Item.TargetDir,
		URLs:       append([]string(nil), o.Item.URLs...),
		Mirror:     o.Progress.Mirror,
		Path:       o.Progress.Path,
		Status:     o.Progress.Status.String(),
		Message:    o.Progress.Message,
		BytesDone:  o.Progress.BytesDone,
		BytesTotal: o.Progress.BytesTotal,
		StartedAt:  o.Progress.StartedAt,
		FinishedAt: o.Progress.FinishedAt,
	}
}

// BoltDBRepository keeps download history in a BoltDB file.
type BoltDBRepository struct {
	db *bolt.DB
}

// NewBoltDBRepository opens (or creates) the database at dbPath.
func NewBoltDBRepository(dbPath string) (*BoltDBRepository, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(downloadsBucket)); err != nil {
			return fmt.Errorf("failed to create downloads bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltDBRepository{
		db: db,
	}, nil
}

// Save persists a record, replacing any record with the same ID.
func (r *BoltDBRepository) Save(rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(downloadsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", downloadsBucket)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err := bucket.Put([]byte(rec.ID.String()), data); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})
}

// Find retrieves a record by ID.
func (r *BoltDBRepository) Find(id uuid.UUID) (*Record, error) {
	var rec *Record

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(downloadsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", downloadsBucket)
		}

		data := bucket.Get([]byte(id.String()))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// FindAll returns every record, oldest finish first.
func (r *BoltDBRepository) FindAll() ([]*Record, error) {
	var records []*Record

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(downloadsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", downloadsBucket)
		}

		return bucket.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			records = append(records, &rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].FinishedAt.Before(records[j].FinishedAt)
	})

	return records, nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (r *BoltDBRepository) Delete(id uuid.UUID) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(downloadsBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", downloadsBucket)
		}

		return bucket.Delete([]byte(id.String()))
	})
}

// Close closes the database
func (r *BoltDBRepository) Close() error {
	return r.db.Close()
}

type recorder struct {
	repo *BoltDBRepository
}

// Recorder lets the queue write outcomes straight into repo.
func Recorder(repo *BoltDBRepository) downloads.Recorder {
	return recorder{repo: repo}
}

func (r recorder) Record(o downloads.Outcome) error {
	return r.repo.Save(NewRecord(o))
}
