// Package agenda merges live task state with the completion ledger to
// produce the effective view the list and calendar screens render.
package agenda

import (
	"sort"
	"time"

	"dailytask/internal/model"
)

// Item is one row of the day view. For reminders, Completed and
// CompletedAt come from the ledger record for the target day and
// DisplayDate is the occurrence resolved against that day; for everything
// else they mirror the task itself.
type Item struct {
	Task        model.Task
	Completed   bool
	CompletedAt *time.Time
	DisplayDate time.Time
}

// BuildDayView composes the effective view for one target day. completions
// must be the ledger records for exactly that day; day must be
// midnight-normalized by the caller.
func BuildDayView(tasks []model.Task, completions []model.Completion, day time.Time) []Item {
	byTask := make(map[string]model.Completion, len(completions))
	for _, rec := range completions {
		byTask[rec.TaskID] = rec
	}

	items := make([]Item, 0, len(tasks))
	for _, task := range tasks {
		item := Item{Task: task, Completed: task.Completed}
		if task.IsReminder() {
			rec, ok := byTask[task.ID]
			item.Completed = ok && rec.Completed
			if ok {
				item.CompletedAt = rec.CompletedAt
			}
			item.DisplayDate = model.EffectiveDate(task, day)
		} else if task.Date != nil {
			item.DisplayDate = *task.Date
		} else {
			item.DisplayDate = task.CreatedAt
		}
		items = append(items, item)
	}

	sortItems(items)
	return items
}

// sortItems applies the list ordering rule: incomplete rows first, by
// scheduled instant ascending; completed rows after, most recently
// completed first, falling back to the scheduled instant when a completion
// timestamp is missing.
func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.Completed {
			at, bt := completionInstant(a), completionInstant(b)
			if !at.Equal(bt) {
				return at.After(bt)
			}
			return a.DisplayDate.After(b.DisplayDate)
		}
		return a.DisplayDate.Before(b.DisplayDate)
	})
}

func completionInstant(item Item) time.Time {
	if item.CompletedAt != nil {
		return *item.CompletedAt
	}
	return item.DisplayDate
}
