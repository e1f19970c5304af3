// Package alarm owns the mapping from reminder tasks to the single pending
// timer entry that will fire their next notification, and the handler that
// runs when one fires.
package alarm

import (
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"dailytask/internal/model"
	"dailytask/internal/notify"
	"dailytask/internal/timer"
)

var (
	ErrNotReminder = errors.New("alarm: task is not a reminder")
	ErrNoTrigger   = errors.New("alarm: reminder has no date or time")
	// ErrPastTrigger means the combined trigger instant is not strictly in
	// the future. Callers treat it as a skip, not a failure.
	ErrPastTrigger = errors.New("alarm: trigger time already past")
)

const exactAdvisoryTitle = "Reminders may be delayed"
const exactAdvisoryBody = "Exact scheduling is unavailable, so reminders will fire with reduced punctuality."

// Scheduler registers, replaces, and cancels timer entries for reminder
// tasks. The request code derived from the task id is the de-duplication
// key: scheduling twice for one task replaces the pending entry, never
// duplicates it.
type Scheduler struct {
	alarms   timer.Alarm
	notifier notify.Notifier
	log      *zap.SugaredLogger

	// Schedule runs on UI command goroutines while ScheduleNext runs on
	// the firing-handler goroutine, so the one-shot advisory needs Once.
	advisoryOnce sync.Once
}

func NewScheduler(alarms timer.Alarm, notifier notify.Notifier, log *zap.SugaredLogger) *Scheduler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{alarms: alarms, notifier: notifier, log: log}
}

// Schedule computes the trigger instant from the task's date and time and
// registers a timer entry carrying the fire payload. A trigger that is not
// strictly after now is skipped entirely: a reminder is never armed just to
// fire immediately for a moment already past.
func (s *Scheduler) Schedule(task model.Task, now time.Time) error {
	if !task.IsReminder() {
		return ErrNotReminder
	}
	if task.Date == nil || task.TimeOfDay == nil {
		// An edit may have removed the trigger; any armed entry for the
		// task is now stale and must go.
		s.Cancel(task.ID)
		return ErrNoTrigger
	}

	trigger := model.CombineDayTime(*task.Date, *task.TimeOfDay)
	if !trigger.After(now) {
		s.Cancel(task.ID)
		s.log.Infow("skipping past-due reminder", "task_id", task.ID, "trigger", trigger)
		return ErrPastTrigger
	}

	payload := timer.Payload{
		TaskID:    task.ID,
		Title:     task.Title,
		Repeat:    string(task.Repeat),
		CreatedAt: task.CreatedAt,
	}
	return s.register(trigger, payload)
}

// ScheduleNext re-arms a repeating reminder after a firing. The trigger is
// already computed, so this skips the date+time assembly of Schedule.
func (s *Scheduler) ScheduleNext(payload timer.Payload, trigger time.Time, now time.Time) error {
	if payload.TaskID == "" {
		return errors.New("alarm: payload task id is required")
	}
	if !trigger.After(now) {
		s.Cancel(payload.TaskID)
		s.log.Infow("skipping past-due re-arm", "task_id", payload.TaskID, "trigger", trigger)
		return ErrPastTrigger
	}
	return s.register(trigger, payload)
}

// Cancel drops any pending entry for the task. Safe when none exists.
func (s *Scheduler) Cancel(taskID string) {
	s.alarms.Cancel(RequestCode(taskID))
}

func (s *Scheduler) register(trigger time.Time, payload timer.Payload) error {
	key := RequestCode(payload.TaskID)
	// Replace semantics live in the alarm facility; cancelling first keeps
	// the window without any entry as small as possible either way.
	s.alarms.Cancel(key)

	if s.alarms.CanScheduleExact() {
		if err := s.alarms.SetExact(trigger, key, payload); err != nil {
			return fmt.Errorf("alarm: set exact: %w", err)
		}
		s.log.Debugw("reminder armed", "task_id", payload.TaskID, "trigger", trigger, "exact", true)
		return nil
	}

	if err := s.alarms.SetInexact(trigger, key, payload); err != nil {
		return fmt.Errorf("alarm: set inexact: %w", err)
	}
	s.log.Debugw("reminder armed", "task_id", payload.TaskID, "trigger", trigger, "exact", false)
	s.advisoryOnce.Do(func() {
		_ = s.notifier.Notify(exactAdvisoryTitle, exactAdvisoryBody)
	})
	return nil
}

// RequestCode coerces a task id to the stable integer key the timer layer
// de-duplicates on.
func RequestCode(taskID string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int32(h.Sum32())
}
