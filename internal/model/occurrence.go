package model

import "time"

// NormalizeDay truncates t to midnight in its own location. The result is
// the canonical occurrence-day key used by the completion ledger.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CombineDayTime builds a trigger instant from the calendar bits of day and
// the clock bits of clock. Seconds and sub-second components are zeroed so
// two triggers built from the same inputs always compare equal.
func CombineDayTime(day, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, day.Location())
}

// EffectiveDate maps a reminder and a reference instant to the occurrence
// the reminder is considered scheduled for relative to that reference.
//
// The returned instant always carries the origin occurrence's time-of-day;
// only the calendar day varies with the repeat mode. For WEEKLY and MONTHLY
// the candidate within the reference week/month is advanced by one period
// when it falls strictly before the reference, so the result is never in
// the past relative to ref.
//
// Pure: no I/O, no clock reads, deterministic for a given (task, ref).
func EffectiveDate(t Task, ref time.Time) time.Time {
	if t.Date == nil {
		return ref
	}
	origin := *t.Date
	if t.TimeOfDay != nil {
		origin = CombineDayTime(origin, *t.TimeOfDay)
	}
	if !t.IsReminder() || t.Repeat == RepeatNone || t.Repeat == "" {
		return origin
	}

	switch t.Repeat {
	case RepeatDaily:
		return CombineDayTime(ref, origin)
	case RepeatWeekly:
		candidate := CombineDayTime(sameWeekday(ref, origin.Weekday()), origin)
		if candidate.Before(ref) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate
	case RepeatMonthly:
		y, m, _ := ref.Date()
		candidate := CombineDayTime(clampedDate(y, m, origin.Day(), ref.Location()), origin)
		if candidate.Before(ref) {
			next := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0)
			ny, nm, _ := next.Date()
			candidate = CombineDayTime(clampedDate(ny, nm, origin.Day(), ref.Location()), origin)
		}
		return candidate
	default:
		return origin
	}
}

// NextTrigger advances a firing instant by one repeat period. Advancing a
// month preserves the day-of-month, clamped to the end of shorter months.
func NextTrigger(fired time.Time, repeat RepeatMode) time.Time {
	switch repeat {
	case RepeatDaily:
		return fired.AddDate(0, 0, 1)
	case RepeatWeekly:
		return fired.AddDate(0, 0, 7)
	case RepeatMonthly:
		return addMonthClamped(fired)
	default:
		return fired
	}
}

func sameWeekday(ref time.Time, want time.Weekday) time.Time {
	return ref.AddDate(0, 0, int(want)-int(ref.Weekday()))
}

// clampedDate returns the given day-of-month within year/month, pulled back
// to the month's last day when the month is shorter. Total for every valid
// calendar month and any day >= 1.
func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	if last := daysIn(year, month, loc); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func addMonthClamped(t time.Time) time.Time {
	y, m, _ := t.Date()
	next := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	ny, nm, _ := next.Date()
	return CombineDayTime(clampedDate(ny, nm, t.Day(), t.Location()), t)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, 1, -1).Day()
}
