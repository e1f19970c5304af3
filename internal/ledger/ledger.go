// Package ledger tracks per-occurrence completion of recurring reminders.
//
// A reminder's own completed flag is meaningless; whether "this Tuesday's"
// instance is done lives here, keyed by (task id, occurrence day). Absence
// of a record means not completed.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"dailytask/internal/model"
	"dailytask/internal/storage"
)

var (
	ErrTaskIDRequired   = errors.New("ledger: task id is required")
	ErrDayNotNormalized = errors.New("ledger: occurrence day must be midnight-normalized")
)

type Ledger struct {
	repo storage.Repository
	log  *zap.SugaredLogger
}

func New(repo storage.Repository, log *zap.SugaredLogger) *Ledger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Ledger{repo: repo, log: log}
}

// MarkCompleted records completion of one occurrence. Upsert semantics:
// repeated calls for the same (task, day) replace the prior record, last
// write wins.
func (l *Ledger) MarkCompleted(ctx context.Context, taskID string, day time.Time, now time.Time) error {
	if err := validateKey(taskID, day); err != nil {
		return err
	}
	record := storage.Completion{
		TaskID:      taskID,
		Day:         day,
		Completed:   true,
		CompletedAt: &now,
	}
	if err := l.repo.UpsertCompletion(ctx, record); err != nil {
		return fmt.Errorf("ledger: mark completed: %w", err)
	}
	l.log.Debugw("occurrence completed", "task_id", taskID, "day", day.Format("2006-01-02"))
	return nil
}

// ClearCompleted removes the record for one occurrence. The record is
// deleted, not flipped: absence already means not completed. Clearing an
// occurrence that was never marked is a no-op.
func (l *Ledger) ClearCompleted(ctx context.Context, taskID string, day time.Time) error {
	if err := validateKey(taskID, day); err != nil {
		return err
	}
	if err := l.repo.DeleteCompletion(ctx, taskID, day); err != nil {
		return fmt.Errorf("ledger: clear completed: %w", err)
	}
	l.log.Debugw("occurrence cleared", "task_id", taskID, "day", day.Format("2006-01-02"))
	return nil
}

// ForDay returns every completion record for the given occurrence day, so
// one query resolves completion for all tasks visible on that day.
func (l *Ledger) ForDay(ctx context.Context, day time.Time) ([]model.Completion, error) {
	if !day.Equal(model.NormalizeDay(day)) {
		return nil, ErrDayNotNormalized
	}
	records, err := l.repo.ListCompletionsForDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("ledger: completions for day: %w", err)
	}
	return toModel(records), nil
}

// ForTask returns a task's full completion history ordered by occurrence
// day ascending.
func (l *Ledger) ForTask(ctx context.Context, taskID string) ([]model.Completion, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, ErrTaskIDRequired
	}
	records, err := l.repo.ListCompletionsForTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("ledger: completions for task: %w", err)
	}
	return toModel(records), nil
}

// DeleteAllForTask removes every record owned by a task. Called when the
// task itself is deleted.
func (l *Ledger) DeleteAllForTask(ctx context.Context, taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return ErrTaskIDRequired
	}
	if err := l.repo.DeleteCompletionsForTask(ctx, taskID); err != nil {
		return fmt.Errorf("ledger: delete all for task: %w", err)
	}
	return nil
}

// validateKey rejects non-normalized days instead of renormalizing them, so
// key construction stays explicit at call sites.
func validateKey(taskID string, day time.Time) error {
	if strings.TrimSpace(taskID) == "" {
		return ErrTaskIDRequired
	}
	if !day.Equal(model.NormalizeDay(day)) {
		return ErrDayNotNormalized
	}
	return nil
}

func toModel(in []storage.Completion) []model.Completion {
	out := make([]model.Completion, 0, len(in))
	for _, rec := range in {
		out = append(out, model.Completion{
			TaskID:      rec.TaskID,
			Day:         rec.Day,
			Completed:   rec.Completed,
			CompletedAt: rec.CompletedAt,
		})
	}
	return out
}
