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

const reminderColumns = `id, user_id, task_id, task_name, time, repeat, created_at`

const (
	DefaultReminderTime   = "18:00"
	DefaultReminderRepeat = RepeatDaily
)

// ReminderInput creates a reminder. Empty Time and Repeat fall back to
// 18:00 daily.
type ReminderInput struct {
	TaskID string `json:"task_id"`
	Time   string `json:"time"`
	Repeat Repeat `json:"repeat"`
}

// ReminderUpdate changes the schedule of an existing reminder.
type ReminderUpdate struct {
	Time   string `json:"time"`
	Repeat Repeat `json:"repeat"`
}

func normalizeSchedule(clock *string, repeat *Repeat) error {
	*clock = strings.TrimSpace(*clock)
	if *clock == "" {
		*clock = DefaultReminderTime
	}
	if _, err := time.Parse("15:04", *clock); err != nil || len(*clock) != 5 {
		return fmt.Errorf("%w: time %q is not HH:MM", ErrInvalid, *clock)
	}
	if *repeat == "" {
		*repeat = DefaultReminderRepeat
	}
	if !repeat.Valid() {
		return fmt.Errorf("%w: unknown repeat %q", ErrInvalid, *repeat)
	}
	return nil
}

// CreateReminder adds a reminder for one of the owner's tasks. A task has at
// most one reminder per owner; a second one yields ErrDuplicate.
func (s *Store) CreateReminder(ctx context.Context, ownerID string, in ReminderInput) (*Reminder, error) {
	if strings.TrimSpace(in.TaskID) == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalid)
	}
	if err := normalizeSchedule(&in.Time, &in.Repeat); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertOwner(ctx, tx, ownerID); err != nil {
		return nil, err
	}
	task, err := getTask(ctx, tx, ownerID, in.TaskID)
	if err != nil {
		return nil, err
	}

	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminders WHERE user_id = ? AND task_id = ?`, ownerID, in.TaskID,
	).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("check reminder: %w", err)
	}
	if existing > 0 {
		return nil, ErrDuplicate
	}

	r := &Reminder{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		TaskID:    task.ID,
		TaskName:  task.Name,
		Time:      in.Time,
		Repeat:    in.Repeat,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reminders (`+reminderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.TaskID, r.TaskName, r.Time, string(r.Repeat), formatTime(r.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reminder: %w", err)
	}
	return r, nil
}

func (s *Store) GetReminder(ctx context.Context, ownerID, id string) (*Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder %s: %w", id, err)
	}
	return r, nil
}

// ListReminders returns the owner's reminders ordered by time of day.
func (s *Store) ListReminders(ctx context.Context, ownerID string) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = ? ORDER BY time, rowid`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func (s *Store) UpdateReminder(ctx context.Context, ownerID, id string, up ReminderUpdate) (*Reminder, error) {
	if err := normalizeSchedule(&up.Time, &up.Repeat); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET time = ?, repeat = ? WHERE id = ? AND user_id = ?`,
		up.Time, string(up.Repeat), id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetReminder(ctx, ownerID, id)
}

func (s *Store) DeleteReminder(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRemindersByTask removes every reminder of the owner for taskID and
// reports how many were deleted. Zero is not an error.
func (s *Store) DeleteRemindersByTask(ctx context.Context, ownerID, taskID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE task_id = ? AND user_id = ?`, taskID, ownerID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete reminders for task: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanReminder(sc scanner) (*Reminder, error) {
	r := &Reminder{}
	var repeat, createdAt string
	if err := sc.Scan(&r.ID, &r.OwnerID, &r.TaskID, &r.TaskName, &r.Time, &repeat, &createdAt); err != nil {
		return nil, err
	}
	r.Repeat = Repeat(repeat)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}
