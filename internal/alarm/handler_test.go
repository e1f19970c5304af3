package alarm

import (
	"strings"
	"testing"
	"time"

	"dailytask/internal/timer"
)

func newHandlerFixture(exactAllowed bool) (*Handler, *fakeAlarm, *recordingNotifier) {
	alarms := newFakeAlarm(exactAllowed)
	notifier := &recordingNotifier{}
	scheduler := NewScheduler(alarms, notifier, nil)
	handler := NewHandler(scheduler, notifier, nil, 0)
	return handler, alarms, notifier
}

func TestHandleFireDailyReArmsOneDayLater(t *testing.T) {
	handler, alarms, notifier := newHandlerFixture(true)

	firedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	payload := timer.Payload{
		TaskID:    "task-1",
		Title:     "Water the plants",
		Repeat:    "DAILY",
		CreatedAt: firedAt.Add(-time.Minute),
	}
	handler.HandleFire(payload, firedAt)

	if len(notifier.titles) != 1 || notifier.titles[0] != "Water the plants" {
		t.Fatalf("unexpected notifications: %#v", notifier.titles)
	}
	if len(alarms.pending) != 1 {
		t.Fatalf("expected one re-armed entry, got %d", len(alarms.pending))
	}
	got := alarms.pending[RequestCode("task-1")]
	if got.trigger.Format("2006-01-02 15:04") != "2024-06-02 09:00" {
		t.Fatalf("unexpected next trigger: %s", got.trigger)
	}
	if got.payload != payload {
		t.Fatalf("payload must round-trip into the next occurrence: %#v", got.payload)
	}
}

func TestHandleFireMonthlyEndOfMonthLeapYear(t *testing.T) {
	handler, alarms, _ := newHandlerFixture(true)

	firedAt := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)
	payload := timer.Payload{
		TaskID:    "task-rent",
		Title:     "Pay rent",
		Repeat:    "MONTHLY",
		CreatedAt: firedAt.Add(-time.Minute),
	}
	handler.HandleFire(payload, firedAt)

	got := alarms.pending[RequestCode("task-rent")]
	if got.trigger.Format("2006-01-02 15:04") != "2024-02-29 09:00" {
		t.Fatalf("expected leap-February clamp, got %s", got.trigger)
	}
}

func TestHandleFireNonRepeatingIsTerminal(t *testing.T) {
	handler, alarms, notifier := newHandlerFixture(true)

	firedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	handler.HandleFire(timer.Payload{
		TaskID:    "task-1",
		Title:     "Dentist",
		Repeat:    "NONE",
		CreatedAt: firedAt.Add(-time.Minute),
	}, firedAt)

	if len(notifier.titles) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.titles))
	}
	if len(alarms.sets) != 0 {
		t.Fatalf("non-repeating firing must not re-arm: %#v", alarms.sets)
	}
}

func TestHandleFireMissingTaskIDAborts(t *testing.T) {
	handler, alarms, notifier := newHandlerFixture(true)

	handler.HandleFire(timer.Payload{Title: "orphan"}, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	if len(notifier.titles) != 0 {
		t.Fatalf("aborted firing must not notify: %#v", notifier.titles)
	}
	if len(alarms.sets) != 0 {
		t.Fatalf("aborted firing must not re-arm: %#v", alarms.sets)
	}
}

func TestHandleFireLateDeliveryMentionsDelay(t *testing.T) {
	handler, _, notifier := newHandlerFixture(true)

	createdAt := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	firedAt := createdAt.Add(DefaultLateThreshold + time.Minute)
	handler.HandleFire(timer.Payload{
		TaskID:    "task-1",
		Title:     "Stretch",
		Repeat:    "NONE",
		CreatedAt: createdAt,
	}, firedAt)

	if len(notifier.bodies) != 1 || !strings.Contains(notifier.bodies[0], "late") {
		t.Fatalf("expected late advisory in body: %#v", notifier.bodies)
	}
}

func TestHandleFirePunctualDeliveryUsesPlainBody(t *testing.T) {
	handler, _, notifier := newHandlerFixture(true)

	createdAt := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	handler.HandleFire(timer.Payload{
		TaskID:    "task-1",
		Title:     "Stretch",
		Repeat:    "NONE",
		CreatedAt: createdAt,
	}, createdAt.Add(time.Minute))

	if len(notifier.bodies) != 1 || strings.Contains(notifier.bodies[0], "late") {
		t.Fatalf("punctual delivery should not mention lateness: %#v", notifier.bodies)
	}
}

func TestHandleFireUnknownRepeatDoesNotReArm(t *testing.T) {
	handler, alarms, _ := newHandlerFixture(true)

	handler.HandleFire(timer.Payload{
		TaskID:    "task-1",
		Title:     "Stretch",
		Repeat:    "FORTNIGHTLY",
		CreatedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	if len(alarms.sets) != 0 {
		t.Fatalf("unknown repeat mode must not re-arm: %#v", alarms.sets)
	}
}

func TestHandleFireEmptyTitleFallsBack(t *testing.T) {
	handler, _, notifier := newHandlerFixture(true)

	firedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	handler.HandleFire(timer.Payload{TaskID: "task-1", Repeat: "NONE", CreatedAt: firedAt}, firedAt)

	if len(notifier.titles) != 1 || notifier.titles[0] != "Reminder" {
		t.Fatalf("expected fallback title, got %#v", notifier.titles)
	}
}
