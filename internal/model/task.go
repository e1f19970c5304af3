package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidKind       = errors.New("model: invalid task kind")
	ErrInvalidRepeatMode = errors.New("model: invalid repeat mode")
)

type TaskKind string

const (
	KindTask     TaskKind = "TASK"
	KindNote     TaskKind = "NOTE"
	KindReminder TaskKind = "REMINDER"
)

func (k TaskKind) IsValid() bool {
	switch k {
	case KindTask, KindNote, KindReminder:
		return true
	default:
		return false
	}
}

type RepeatMode string

const (
	RepeatNone    RepeatMode = "NONE"
	RepeatDaily   RepeatMode = "DAILY"
	RepeatWeekly  RepeatMode = "WEEKLY"
	RepeatMonthly RepeatMode = "MONTHLY"
)

func (r RepeatMode) IsValid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	default:
		return false
	}
}

// RepeatModeLabels maps repeat modes to the strings shown in pickers and
// agenda rows. Kept outside the type so the enum stays plain data.
var RepeatModeLabels = map[RepeatMode]string{
	RepeatNone:    "Does not repeat",
	RepeatDaily:   "Every day",
	RepeatWeekly:  "Every week",
	RepeatMonthly: "Every month",
}

// Task is a user-visible item: a plain task, a note, or a reminder.
//
// Completed is authoritative only for non-reminder kinds. A reminder's
// per-day completion state lives in the completion ledger, keyed by
// occurrence day.
type Task struct {
	ID          string
	Title       string
	Description string
	Kind        TaskKind
	Date        *time.Time
	TimeOfDay   *time.Time
	Repeat      RepeatMode
	Completed   bool
	CreatedAt   time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if !t.Repeat.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRepeatMode, t.Repeat)
	}
	if t.Kind != KindReminder && t.Repeat != RepeatNone {
		return fmt.Errorf("model: repeat mode %q is only valid for reminders", t.Repeat)
	}
	if t.Kind == KindReminder && t.Date == nil {
		return errors.New("model: reminder date is required")
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	return nil
}

// IsReminder reports whether the task participates in the reminder
// scheduling and per-occurrence completion machinery.
func (t Task) IsReminder() bool {
	return t.Kind == KindReminder
}

// Completion is the completion state of one recurring-reminder occurrence.
// At most one record exists per (TaskID, Day); absence means not completed.
type Completion struct {
	TaskID      string
	Day         time.Time
	Completed   bool
	CompletedAt *time.Time
}

func (c Completion) Validate() error {
	if strings.TrimSpace(c.TaskID) == "" {
		return errors.New("model: completion task_id is required")
	}
	if c.Day.IsZero() {
		return errors.New("model: completion day is required")
	}
	return nil
}
