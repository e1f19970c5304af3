package update

import (
	"errors"
	"strings"
	"time"

	"dailytask/internal/model"
	"dailytask/internal/tasks"
)

var errEmptyTitle = errors.New("update: quick add needs a title")

// parseQuickAdd turns a one-line capture into a create request. Tokens
// after the title words refine it: "@2026-03-01" sets the date, "@09:30"
// the time, "+daily"/"+weekly"/"+monthly" the repeat mode, "!note" or
// "!remind" the kind. A repeat or a time implies a reminder; a reminder
// without a date defaults to today.
func parseQuickAdd(raw string, now time.Time) (tasks.CreateInput, error) {
	in := tasks.CreateInput{
		Kind:   model.KindTask,
		Repeat: model.RepeatNone,
	}

	var words []string
	for _, token := range strings.Fields(raw) {
		switch {
		case strings.HasPrefix(token, "@"):
			val := strings.TrimPrefix(token, "@")
			if d, err := time.ParseInLocation("2006-01-02", val, now.Location()); err == nil {
				day := model.NormalizeDay(d)
				in.Date = &day
				continue
			}
			if c, err := time.ParseInLocation("15:04", val, now.Location()); err == nil {
				clock := c
				in.TimeOfDay = &clock
				continue
			}
			words = append(words, token)
		case strings.HasPrefix(token, "+"):
			mode := model.RepeatMode(strings.ToUpper(strings.TrimPrefix(token, "+")))
			if mode.IsValid() && mode != model.RepeatNone {
				in.Repeat = mode
				continue
			}
			words = append(words, token)
		case strings.HasPrefix(token, "!"):
			switch strings.ToLower(strings.TrimPrefix(token, "!")) {
			case "note":
				in.Kind = model.KindNote
				continue
			case "remind", "reminder":
				in.Kind = model.KindReminder
				continue
			case "task":
				in.Kind = model.KindTask
				continue
			}
			words = append(words, token)
		default:
			words = append(words, token)
		}
	}

	in.Title = strings.Join(words, " ")
	if in.Title == "" {
		return tasks.CreateInput{}, errEmptyTitle
	}

	if in.Repeat != model.RepeatNone || in.TimeOfDay != nil {
		in.Kind = model.KindReminder
	}
	if in.Kind == model.KindReminder && in.Date == nil {
		day := model.NormalizeDay(now)
		in.Date = &day
	}
	if in.TimeOfDay != nil && in.Date != nil {
		clock := model.CombineDayTime(*in.Date, *in.TimeOfDay)
		in.TimeOfDay = &clock
	}
	return in, nil
}
