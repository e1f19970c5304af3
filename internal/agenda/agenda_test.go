package agenda

import (
	"testing"
	"time"

	"dailytask/internal/model"
)

func dayAt(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newReminder(id string, date time.Time, hour int, repeat model.RepeatMode) model.Task {
	clock := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
	return model.Task{
		ID:        id,
		Title:     "Reminder " + id,
		Kind:      model.KindReminder,
		Date:      &date,
		TimeOfDay: &clock,
		Repeat:    repeat,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestReminderCompletionComesFromLedger(t *testing.T) {
	day := dayAt(2024, 6, 1)
	task := newReminder("7", day, 9, model.RepeatDaily)
	doneAt := time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC)
	completions := []model.Completion{{TaskID: "7", Day: day, Completed: true, CompletedAt: &doneAt}}

	view := BuildDayView([]model.Task{task}, completions, day)
	if len(view) != 1 || !view[0].Completed {
		t.Fatalf("expected completed view for ledgered day: %#v", view)
	}

	// The next day has no record: the same task reads as not completed.
	nextDay := dayAt(2024, 6, 2)
	view = BuildDayView([]model.Task{task}, nil, nextDay)
	if len(view) != 1 || view[0].Completed {
		t.Fatalf("expected incomplete view for unledgered day: %#v", view)
	}
}

func TestReminderTaskFlagIsIgnored(t *testing.T) {
	day := dayAt(2024, 6, 1)
	task := newReminder("7", day, 9, model.RepeatDaily)
	task.Completed = true // stale flag, not authoritative for reminders

	view := BuildDayView([]model.Task{task}, nil, day)
	if view[0].Completed {
		t.Fatalf("reminder completion must come from the ledger, got %#v", view[0])
	}
}

func TestNonReminderKeepsOwnFlag(t *testing.T) {
	day := dayAt(2024, 6, 1)
	date := dayAt(2024, 6, 1)
	task := model.Task{
		ID:        "n1",
		Title:     "Note",
		Kind:      model.KindNote,
		Date:      &date,
		Repeat:    model.RepeatNone,
		Completed: true,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	view := BuildDayView([]model.Task{task}, nil, day)
	if !view[0].Completed {
		t.Fatalf("non-reminder must keep its stored flag: %#v", view[0])
	}
}

func TestReminderDisplayDateFollowsOccurrence(t *testing.T) {
	origin := dayAt(2024, 6, 1)
	task := newReminder("7", origin, 9, model.RepeatDaily)

	target := dayAt(2024, 8, 15)
	view := BuildDayView([]model.Task{task}, nil, target)
	got := view[0].DisplayDate
	if got.Format("2006-01-02 15:04") != "2024-08-15 09:00" {
		t.Fatalf("unexpected display date: %s", got)
	}
}

func TestOrderingIncompleteFirstThenByInstant(t *testing.T) {
	day := dayAt(2024, 6, 1)
	early := newReminder("early", day, 8, model.RepeatDaily)
	late := newReminder("late", day, 20, model.RepeatDaily)
	doneMorning := newReminder("done-morning", day, 9, model.RepeatDaily)
	doneEvening := newReminder("done-evening", day, 10, model.RepeatDaily)

	morningAt := time.Date(2024, 6, 1, 9, 10, 0, 0, time.UTC)
	eveningAt := time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)
	completions := []model.Completion{
		{TaskID: "done-morning", Day: day, Completed: true, CompletedAt: &morningAt},
		{TaskID: "done-evening", Day: day, Completed: true, CompletedAt: &eveningAt},
	}

	view := BuildDayView([]model.Task{doneMorning, late, doneEvening, early}, completions, day)

	gotIDs := make([]string, 0, len(view))
	for _, item := range view {
		gotIDs = append(gotIDs, item.Task.ID)
	}
	want := []string{"early", "late", "done-evening", "done-morning"}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", gotIDs, want)
		}
	}
}

func TestOrderingFallsBackWithoutCompletionTimestamp(t *testing.T) {
	day := dayAt(2024, 6, 1)
	a := newReminder("a", day, 8, model.RepeatDaily)
	b := newReminder("b", day, 18, model.RepeatDaily)

	completions := []model.Completion{
		{TaskID: "a", Day: day, Completed: true},
		{TaskID: "b", Day: day, Completed: true},
	}

	view := BuildDayView([]model.Task{a, b}, completions, day)
	if view[0].Task.ID != "b" || view[1].Task.ID != "a" {
		t.Fatalf("expected scheduled-instant fallback ordering, got %s then %s", view[0].Task.ID, view[1].Task.ID)
	}
}
