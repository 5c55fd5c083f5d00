package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultColor Color = "blue-500"

const taskColumns = `id, user_id, name, target_minutes, color, created_at`

// TaskInput carries the editable fields of a task.
type TaskInput struct {
	Name          string `json:"name"`
	TargetMinutes int    `json:"target_minutes"`
	Color         Color  `json:"color"`
}

func (in *TaskInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: task name is required", ErrInvalid)
	}
	if in.TargetMinutes <= 0 {
		return fmt.Errorf("%w: target minutes must be positive", ErrInvalid)
	}
	if in.Color == "" {
		in.Color = DefaultColor
	}
	if !in.Color.Valid() {
		return fmt.Errorf("%w: unknown color %q", ErrInvalid, in.Color)
	}
	return nil
}

func (s *Store) CreateTask(ctx context.Context, ownerID string, in TaskInput) (*Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := upsertOwner(ctx, s.db, ownerID); err != nil {
		return nil, err
	}

	t := &Task{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Name:          in.Name,
		TargetMinutes: in.TargetMinutes,
		Color:         in.Color,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name, t.TargetMinutes, string(t.Color), formatTime(t.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, ownerID, id string) (*Task, error) {
	return getTask(ctx, s.db, ownerID, id)
}

func getTask(ctx context.Context, q querier, ownerID, id string) (*Task, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks returns the owner's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context, ownerID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask changes a task's name, target and color. Existing records keep
// the name and color they were created with.
func (s *Store) UpdateTask(ctx context.Context, ownerID, id string, in TaskInput) (*Task, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, target_minutes = ?, color = ? WHERE id = ? AND user_id = ?`,
		in.Name, in.TargetMinutes, string(in.Color), id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(ctx, ownerID, id)
}

// DeleteTask removes a task together with its records and reminders.
func (s *Store) DeleteTask(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(sc scanner) (*Task, error) {
	t := &Task{}
	var color, createdAt string
	if err := sc.Scan(&t.ID, &t.OwnerID, &t.Name, &t.TargetMinutes, &color, &createdAt); err != nil {
		return nil, err
	}
	t.Color = Color(color)
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}
