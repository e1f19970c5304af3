// Package tasks holds the application flows behind the UI: task mutations
// with their alarm side effects, completion toggles, and day-view reads.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dailytask/internal/agenda"
	"dailytask/internal/alarm"
	"dailytask/internal/ledger"
	"dailytask/internal/model"
	"dailytask/internal/storage"
)

type Service struct {
	repo      storage.Repository
	ledger    *ledger.Ledger
	scheduler *alarm.Scheduler
	log       *zap.SugaredLogger
	now       func() time.Time
	newID     func() string
}

func NewService(repo storage.Repository, led *ledger.Ledger, scheduler *alarm.Scheduler, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		repo:      repo,
		ledger:    led,
		scheduler: scheduler,
		log:       log,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

type CreateInput struct {
	Title       string
	Description string
	Kind        model.TaskKind
	Date        *time.Time
	TimeOfDay   *time.Time
	Repeat      model.RepeatMode
}

// Create persists a new task and, for a reminder with a time, arms its
// alarm. A reminder whose trigger is already past is stored but not armed.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Task, error) {
	task := model.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Kind:        in.Kind,
		Date:        in.Date,
		TimeOfDay:   in.TimeOfDay,
		Repeat:      in.Repeat,
		CreatedAt:   s.now(),
	}
	if task.Kind == "" {
		task.Kind = model.KindTask
	}
	if task.Repeat == "" {
		task.Repeat = model.RepeatNone
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	if err := s.repo.CreateTask(ctx, toStorage(task)); err != nil {
		return model.Task{}, fmt.Errorf("tasks: create: %w", err)
	}
	s.armIfNeeded(task)
	return task, nil
}

// Update persists an edit. Any change to a reminder's date, time, or repeat
// mode re-registers the alarm; a task edited away from the reminder kind
// loses its pending alarm.
func (s *Service) Update(ctx context.Context, task model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateTask(ctx, toStorage(task)); err != nil {
		return fmt.Errorf("tasks: update: %w", err)
	}
	if task.IsReminder() {
		s.armIfNeeded(task)
	} else {
		s.scheduler.Cancel(task.ID)
	}
	return nil
}

// Delete removes the task, its completion history, and its pending alarm.
func (s *Service) Delete(ctx context.Context, taskID string) error {
	s.scheduler.Cancel(taskID)
	if err := s.ledger.DeleteAllForTask(ctx, taskID); err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return fmt.Errorf("tasks: delete: %w", err)
	}
	return nil
}

// ToggleCompletion flips completion for one task on one day. Reminders go
// through the ledger (marking upserts, unmarking deletes the record);
// everything else flips the task's own flag.
func (s *Service) ToggleCompletion(ctx context.Context, taskID string, day time.Time, done bool) error {
	row, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("tasks: toggle: %w", err)
	}
	task := fromStorage(row)

	if task.IsReminder() {
		if done {
			return s.ledger.MarkCompleted(ctx, taskID, day, s.now())
		}
		return s.ledger.ClearCompleted(ctx, taskID, day)
	}

	task.Completed = done
	if err := s.repo.UpdateTask(ctx, toStorage(task)); err != nil {
		return fmt.Errorf("tasks: toggle: %w", err)
	}
	return nil
}

// DayView loads every task plus the ledger records for day and merges them
// into the effective view. day must be midnight-normalized.
func (s *Service) DayView(ctx context.Context, day time.Time) ([]agenda.Item, error) {
	rows, err := s.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, fmt.Errorf("tasks: day view: %w", err)
	}
	completions, err := s.ledger.ForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	list := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		list = append(list, fromStorage(row))
	}
	return agenda.BuildDayView(list, completions, day), nil
}

// Get returns one task by id.
func (s *Service) Get(ctx context.Context, taskID string) (model.Task, error) {
	row, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Task{}, err
		}
		return model.Task{}, fmt.Errorf("tasks: get: %w", err)
	}
	return fromStorage(row), nil
}

func (s *Service) armIfNeeded(task model.Task) {
	if !task.IsReminder() {
		return
	}
	// The scheduler is always consulted, even without a usable trigger:
	// it drops any stale entry left over from the pre-edit task.
	err := s.scheduler.Schedule(task, s.now())
	switch {
	case err == nil:
	case errors.Is(err, alarm.ErrPastTrigger), errors.Is(err, alarm.ErrNoTrigger):
		// Stored fine, just nothing to arm.
	default:
		s.log.Warnw("could not arm reminder", "task_id", task.ID, "error", err)
	}
}

func toStorage(t model.Task) storage.Task {
	return storage.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Kind:        string(t.Kind),
		Date:        t.Date,
		TimeOfDay:   t.TimeOfDay,
		Repeat:      string(t.Repeat),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}

func fromStorage(t storage.Task) model.Task {
	return model.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Kind:        model.TaskKind(t.Kind),
		Date:        t.Date,
		TimeOfDay:   t.TimeOfDay,
		Repeat:      model.RepeatMode(t.Repeat),
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}
