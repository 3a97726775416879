package repository_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/mirrordl/internal/downloads"
	"github.com/NamanBalaji/mirrordl/internal/repository"
)

func newTestRepository(t *testing.T) *repository.BoltDBRepository {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := repository.NewBoltDBRepository(dbPath)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return repo
}

func TestNewBoltDBRepository(t *testing.T) {
	repo := newTestRepository(t)
	defer repo.Close()

	if repo == nil {
		t.Fatal("expected a valid repository, got nil")
	}
}

func TestNewBoltDBRepository_BadPath(t *testing.T) {
	_, err := repository.NewBoltDBRepository(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	if err == nil {
		t.Fatal("expected an error for a path in a missing directory")
	}
}

func TestSaveAndFindRecord(t *testing.T) {
	repo := newTestRepository(t)
	defer repo.Close()

	rec := &repository.Record{
		ID:        uuid.New(),
		QueueID:   3,
		TargetDir: "/games",
		URLs:      []string{"https://a.example/x.zip", "https://b.example/x.zip"},
		Status:    "completed",
		BytesDone: 42,
	}

	if err := repo.Save(rec); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	found, err := repo.Find(rec.ID)
	if err != nil {
		t.Fatalf("failed to find record: %v", err)
	}

	if found.ID != rec.ID {
		t.Errorf("expected record ID %v, got %v", rec.ID, found.ID)
	}
	if found.QueueID != 3 || found.BytesDone != 42 || found.Status != "completed" {
		t.Errorf("unexpected record contents: %+v", found)
	}
	if len(found.URLs) != 2 || found.URLs[1] != "https://b.example/x.zip" {
		t.Errorf("expected mirrors to round trip, got %v", found.URLs)
	}
}

func TestSaveAssignsID(t *testing.T) {
	repo := newTestRepository(t)
	defer repo.Close()

	rec := &repository.Record{Status: "failed"}
	if err := repo.Save(rec); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Fatal("expected Save to assign an ID")
	}
}

func TestFindAllOrderedByFinish(t *testing.T) {
	repo := newTestRepository(t)
	defer repo.Close()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	records := []*repository.Record{
		{ID: uuid.New(), QueueID: 2, FinishedAt: base.Add(2 * time.Minute)},
		{ID: uuid.New(), QueueID: 3, FinishedAt: base.Add(3 * time.Minute)},
		{ID: uuid.New(), QueueID: 1, FinishedAt: base.Add(1 * time.Minute)},
	}

	for _, r := range records {
		if err := repo.Save(r); err != nil {
			t.Fatalf("failed to save record with ID %v: %v", r.ID, err)
		}
	}

	found, err := repo.FindAll()
	if err != nil {
		t.Fatalf("failed to find all records: %v", err)
	}

	if len(found) != len(records) {
		t.Fatalf("expected %d records, found %d", len(records), len(found))
	}

	for i, r := range found {
		if r.QueueID != uint64(i+1) {
			t.Errorf("position %d: expected queue id %d, got %d", i, i+1, r.QueueID)
		}
	}
}

func TestDeleteRecord(t *testing.T) {
	repo := newTestRepository(t)
	defer repo.Close()

	rec := &repository.Record{ID: uuid.New()}

	if err := repo.Save(rec); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	if err := repo.Delete(rec.ID); err != nil {
		t.Fatalf("failed to delete record: %v", err)
	}

	_, err := repo.Find(rec.ID)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestCloseRepository(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Close(); err != nil {
		t.Errorf("failed to close repository: %v", err)
	}

	_, err := repo.Find(uuid.New())
	if err == nil {
		t.Error("expected an error after closing the repository, got nil")
	}
}

func TestRecorder(t *testing.T) {
	repo := newTestRepository(t)
	defer repo.Close()

	finished := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	outcome := downloads.Outcome{
		RecordID: uuid.New(),
		ID:       7,
		Item: downloads.Item{
			Title:     "game.zip",
			TargetDir: "/games",
			URLs:      []string{"https://a.example/game.zip"},
		},
		Progress: downloads.Progress{
			BytesDone:  10,
			BytesTotal: 10,
			Status:     downloads.StatusCompleted,
			Message:    "Completed",
			Mirror:     "https://a.example/game.zip",
			Path:       "/games/game.zip",
			FinishedAt: finished,
		},
	}

	if err := repository.Recorder(repo).Record(outcome); err != nil {
		t.Fatalf("failed to record outcome: %v", err)
	}

	found, err := repo.Find(outcome.RecordID)
	if err != nil {
		t.Fatalf("failed to find recorded outcome: %v", err)
	}

	if found.QueueID != 7 || found.Title != "game.zip" || found.Status != "completed" {
		t.Errorf("unexpected record: %+v", found)
	}
	if found.Path != "/games/game.zip" || !found.FinishedAt.Equal(finished) {
		t.Errorf("unexpected record: %+v", found)
	}
}
