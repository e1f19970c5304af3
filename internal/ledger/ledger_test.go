package ledger

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"dailytask/internal/storage"
)

func setupLedger(t *testing.T) (*Ledger, storage.Repository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return New(repo, nil), repo
}

func createReminder(t *testing.T, repo storage.Repository, id string) {
	t.Helper()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.CreateTask(context.Background(), storage.Task{
		ID:        id,
		Title:     "Reminder " + id,
		Kind:      "REMINDER",
		Date:      &date,
		Repeat:    "DAILY",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create task: %v", err)
	}
}

func TestMarkCompletedThenQueryThenClear(t *testing.T) {
	ledger, repo := setupLedger(t)
	ctx := context.Background()
	createReminder(t, repo, "task-7")

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC)
	if err := ledger.MarkCompleted(ctx, "task-7", day, now); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	records, err := ledger.ForDay(ctx, day)
	if err != nil {
		t.Fatalf("for day: %v", err)
	}
	if len(records) != 1 || records[0].TaskID != "task-7" || !records[0].Completed {
		t.Fatalf("unexpected records: %#v", records)
	}
	if records[0].CompletedAt == nil || !records[0].CompletedAt.Equal(now) {
		t.Fatalf("completed_at not stored: %#v", records[0])
	}

	if err := ledger.ClearCompleted(ctx, "task-7", day); err != nil {
		t.Fatalf("clear completed: %v", err)
	}
	records, err = ledger.ForDay(ctx, day)
	if err != nil {
		t.Fatalf("for day after clear: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty day after clear, got: %#v", records)
	}
}

func TestMarkCompletedLastWriteWins(t *testing.T) {
	ledger, repo := setupLedger(t)
	ctx := context.Background()
	createReminder(t, repo, "task-8")

	day := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	first := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	second := time.Date(2024, 6, 2, 22, 30, 0, 0, time.UTC)
	if err := ledger.MarkCompleted(ctx, "task-8", day, first); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if err := ledger.MarkCompleted(ctx, "task-8", day, second); err != nil {
		t.Fatalf("second mark: %v", err)
	}

	records, err := ledger.ForDay(ctx, day)
	if err != nil {
		t.Fatalf("for day: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected single record, got %d", len(records))
	}
	if !records[0].CompletedAt.Equal(second) {
		t.Fatalf("expected last write to win, got %s", records[0].CompletedAt)
	}
}

func TestForTaskOrderedHistory(t *testing.T) {
	ledger, repo := setupLedger(t)
	ctx := context.Background()
	createReminder(t, repo, "task-9")

	days := []time.Time{
		time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		if err := ledger.MarkCompleted(ctx, "task-9", day, day.Add(9*time.Hour)); err != nil {
			t.Fatalf("mark %s: %v", day, err)
		}
	}

	history, err := ledger.ForTask(ctx, "task-9")
	if err != nil {
		t.Fatalf("for task: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].Day.Before(history[i-1].Day) {
			t.Fatalf("history out of order: %#v", history)
		}
	}
}

func TestRejectsNonNormalizedDay(t *testing.T) {
	ledger, repo := setupLedger(t)
	ctx := context.Background()
	createReminder(t, repo, "task-10")

	noon := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := ledger.MarkCompleted(ctx, "task-10", noon, noon); err != ErrDayNotNormalized {
		t.Fatalf("expected ErrDayNotNormalized, got %v", err)
	}
	if _, err := ledger.ForDay(ctx, noon); err != ErrDayNotNormalized {
		t.Fatalf("expected ErrDayNotNormalized, got %v", err)
	}
}

func TestDeleteAllForTask(t *testing.T) {
	ledger, repo := setupLedger(t)
	ctx := context.Background()
	createReminder(t, repo, "task-11")

	for i := 0; i < 4; i++ {
		day := time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC)
		if err := ledger.MarkCompleted(ctx, "task-11", day, day.Add(9*time.Hour)); err != nil {
			t.Fatalf("mark %d: %v", i, err)
		}
	}
	if err := ledger.DeleteAllForTask(ctx, "task-11"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	history, err := ledger.ForTask(ctx, "task-11")
	if err != nil {
		t.Fatalf("for task: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got: %#v", history)
	}
}
