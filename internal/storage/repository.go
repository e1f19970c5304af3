package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the persistence collaborator the core depends on. Tasks are
// listed ordered by date; completions are queryable per day (one indexed
// lookup resolves every visible task) and per task (history, day ascending).
type Repository interface {
	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)

	UpsertCompletion(ctx context.Context, in Completion) error
	DeleteCompletion(ctx context.Context, taskID string, day time.Time) error
	ListCompletionsForDay(ctx context.Context, day time.Time) ([]Completion, error)
	ListCompletionsForTask(ctx context.Context, taskID string) ([]Completion, error)
	DeleteCompletionsForTask(ctx context.Context, taskID string) error
}
