package storage

import "time"

type Task struct {
	ID          string
	Title       string
	Description string
	Kind        string
	Date        *time.Time
	TimeOfDay   *time.Time
	Repeat      string
	Completed   bool
	CreatedAt   time.Time
}

type Completion struct {
	TaskID      string
	Day         time.Time
	Completed   bool
	CompletedAt *time.Time
}

type TaskListFilter struct {
	Kind   string
	Limit  int
	Offset int
}
