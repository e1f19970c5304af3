package alarm

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"dailytask/internal/model"
	"dailytask/internal/notify"
	"dailytask/internal/timer"
)

const reminderBody = "Don't forget this task!"

// DefaultLateThreshold is how far past its creation-relative expectation a
// delivery may be before the notification mentions the delay.
const DefaultLateThreshold = 10 * time.Minute

// DefaultRearmFallback is the safety offset used when the computed next
// trigger does not advance past the firing time.
const DefaultRearmFallback = 12 * time.Hour

// Handler reacts to timer firings: it notifies the user and, for repeating
// reminders, computes and registers the next occurrence. A non-repeating
// firing is terminal.
type Handler struct {
	scheduler     *Scheduler
	notifier      notify.Notifier
	log           *zap.SugaredLogger
	lateThreshold time.Duration
	rearmFallback time.Duration
}

func NewHandler(scheduler *Scheduler, notifier notify.Notifier, log *zap.SugaredLogger, lateThreshold time.Duration) *Handler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if lateThreshold <= 0 {
		lateThreshold = DefaultLateThreshold
	}
	return &Handler{
		scheduler:     scheduler,
		notifier:      notifier,
		log:           log,
		lateThreshold: lateThreshold,
		rearmFallback: DefaultRearmFallback,
	}
}

// HandleFire processes one delivery. Errors in individual steps are logged
// and contained; a malformed payload aborts the firing without crashing the
// delivery loop.
func (h *Handler) HandleFire(payload timer.Payload, firedAt time.Time) {
	if strings.TrimSpace(payload.TaskID) == "" {
		h.log.Warnw("dropping firing with missing task id", "title", payload.Title)
		return
	}

	body := reminderBody
	if !payload.CreatedAt.IsZero() && firedAt.Sub(payload.CreatedAt) > h.lateThreshold {
		// Advisory only: the platform may have deferred delivery, but the
		// user still gets the reminder.
		body = "This reminder arrived late. " + reminderBody
		h.log.Infow("late reminder delivery", "task_id", payload.TaskID, "created_at", payload.CreatedAt, "fired_at", firedAt)
	}

	title := payload.Title
	if strings.TrimSpace(title) == "" {
		title = "Reminder"
	}
	_ = h.notifier.EnsureChannel()
	if err := h.notifier.Notify(title, body); err != nil {
		h.log.Warnw("reminder notification failed", "task_id", payload.TaskID, "error", err)
	}

	repeat := model.RepeatMode(payload.Repeat)
	if repeat == "" || repeat == model.RepeatNone || !repeat.IsValid() {
		return
	}

	next := model.NextTrigger(firedAt, repeat)
	if !next.After(firedAt) {
		// Should not happen for any valid repeat mode; re-arm anyway so a
		// repeating reminder never silently dies.
		next = firedAt.Add(h.rearmFallback)
		h.log.Errorw("next trigger did not advance, using fallback", "task_id", payload.TaskID, "fired_at", firedAt, "next", next)
	}

	if err := h.scheduler.ScheduleNext(payload, next, firedAt); err != nil {
		h.log.Errorw("failed to re-arm repeating reminder", "task_id", payload.TaskID, "next", next, "error", err)
	}
}

// Run consumes firings from the channel until it closes. Intended to run on
// its own goroutine next to the timer engine.
func (h *Handler) Run(firings <-chan timer.Firing) {
	for firing := range firings {
		h.HandleFire(firing.Payload, time.Now())
	}
}
