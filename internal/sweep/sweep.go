// Package sweep re-arms reminder alarms in bulk: once at startup, because
// an in-process timer engine loses its entries between runs, and once per
// day at the rollover time so recurring reminders whose occurrence moved
// get a fresh trigger. The alarm scheduler's replace and past-skip
// semantics make the sweep idempotent.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dailytask/internal/alarm"
	"dailytask/internal/model"
	"dailytask/internal/storage"
)

type Sweeper struct {
	repo      storage.Repository
	scheduler *alarm.Scheduler
	cron      *cron.Cron
	log       *zap.SugaredLogger
	now       func() time.Time
}

func New(repo storage.Repository, scheduler *alarm.Scheduler, loc *time.Location, log *zap.SugaredLogger) *Sweeper {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Sweeper{
		repo:      repo,
		scheduler: scheduler,
		cron:      cron.New(cron.WithLocation(loc)),
		log:       log,
		now:       time.Now,
	}
}

// RearmAll schedules every reminder task with a date and time. Past-due
// triggers are skipped, not errors; the count of armed reminders is
// returned.
func (s *Sweeper) RearmAll(ctx context.Context) (int, error) {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskListFilter{Kind: string(model.KindReminder)})
	if err != nil {
		return 0, fmt.Errorf("sweep: list reminders: %w", err)
	}

	now := s.now()
	armed := 0
	for _, row := range tasks {
		task := model.Task{
			ID:        row.ID,
			Title:     row.Title,
			Kind:      model.TaskKind(row.Kind),
			Date:      row.Date,
			TimeOfDay: row.TimeOfDay,
			Repeat:    model.RepeatMode(row.Repeat),
			CreatedAt: row.CreatedAt,
		}
		err := s.scheduler.Schedule(task, now)
		switch {
		case err == nil:
			armed++
		case errors.Is(err, alarm.ErrPastTrigger), errors.Is(err, alarm.ErrNoTrigger):
			// Nothing to arm for this one.
		default:
			s.log.Warnw("sweep could not arm reminder", "task_id", row.ID, "error", err)
		}
	}
	s.log.Infow("reminder sweep finished", "total", len(tasks), "armed", armed)
	return armed, nil
}

// Start registers the daily rollover sweep at the given HH:MM local time
// and starts the cron runner.
func (s *Sweeper) Start(rollover string) error {
	spec, err := buildDailySpec(rollover)
	if err != nil {
		return err
	}
	_, err = s.cron.AddFunc(spec, func() {
		if _, err := s.RearmAll(context.Background()); err != nil {
			s.log.Errorw("rollover sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("sweep: register rollover job: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("sweep: invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("sweep: invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("sweep: invalid minute in %q", timeStr)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
