package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, kind, date, time_of_day, repeat_mode, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Description, in.Kind,
		nullTime(in.Date), nullTime(in.TimeOfDay), in.Repeat, boolInt(in.Completed), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, kind, date, time_of_day, repeat_mode, completed, created_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, kind = ?, date = ?, time_of_day = ?, repeat_mode = ?, completed = ?
		WHERE id = ?`,
		in.Title, in.Description, in.Kind,
		nullTime(in.Date), nullTime(in.TimeOfDay), in.Repeat, boolInt(in.Completed), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT id, title, description, kind, date, time_of_day, repeat_mode, completed, created_at FROM tasks`
	args := make([]any, 0, 3)
	if filter.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, filter.Kind)
	}
	query += ` ORDER BY date ASC, created_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertCompletion(ctx context.Context, in Completion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_completions (task_id, day, completed, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (task_id, day) DO UPDATE SET completed = excluded.completed, completed_at = excluded.completed_at`,
		in.TaskID, mustTime(in.Day), boolInt(in.Completed), nullTime(in.CompletedAt),
	)
	return err
}

func (r *SQLiteRepository) DeleteCompletion(ctx context.Context, taskID string, day time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM task_completions WHERE task_id = ? AND day = ?`, taskID, mustTime(day))
	return err
}

func (r *SQLiteRepository) ListCompletionsForDay(ctx context.Context, day time.Time) ([]Completion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, day, completed, completed_at
		FROM task_completions WHERE day = ?`, mustTime(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (r *SQLiteRepository) ListCompletionsForTask(ctx context.Context, taskID string) ([]Completion, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT task_id, day, completed, completed_at
		FROM task_completions WHERE task_id = ? ORDER BY day ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (r *SQLiteRepository) DeleteCompletionsForTask(ctx context.Context, taskID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM task_completions WHERE task_id = ?`, taskID)
	return err
}

func collectCompletions(rows *sql.Rows) ([]Completion, error) {
	out := make([]Completion, 0)
	for rows.Next() {
		item, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var date sql.NullString
	var clock sql.NullString
	var completed int
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &out.Kind, &date, &clock, &out.Repeat, &completed, &created); err != nil {
		return Task{}, err
	}
	dateAt, err := parseNullableTime(date)
	if err != nil {
		return Task{}, err
	}
	clockAt, err := parseNullableTime(clock)
	if err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	out.Date = dateAt
	out.TimeOfDay = clockAt
	out.Completed = completed == 1
	out.CreatedAt = createdAt
	return out, nil
}

func scanCompletion(s scanner) (Completion, error) {
	var out Completion
	var day string
	var completed int
	var completedAt sql.NullString
	if err := s.Scan(&out.TaskID, &day, &completed, &completedAt); err != nil {
		return Completion{}, err
	}
	dayAt, err := parseRequiredTime(day)
	if err != nil {
		return Completion{}, err
	}
	doneAt, err := parseNullableTime(completedAt)
	if err != nil {
		return Completion{}, err
	}
	out.Day = dayAt
	out.Completed = completed == 1
	out.CompletedAt = doneAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
