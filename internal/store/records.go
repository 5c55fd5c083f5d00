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

const recordColumns = `id, user_id, task_id, task_name, task_color, start_time, end_time, duration_minutes, date, created_at`

const dateLayout = "2006-01-02"

func validateRecord(r *Record) error {
	if strings.TrimSpace(r.TaskID) == "" {
		return fmt.Errorf("%w: task id is required", ErrInvalid)
	}
	if r.DurationMinutes < 1 {
		return fmt.Errorf("%w: duration must be at least one minute", ErrInvalid)
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return fmt.Errorf("%w: start and end time are required", ErrInvalid)
	}
	if r.EndTime.Before(r.StartTime) {
		return fmt.Errorf("%w: end time before start time", ErrInvalid)
	}
	if span := int(r.EndTime.Sub(r.StartTime) / time.Minute); r.DurationMinutes > span {
		return fmt.Errorf("%w: duration %d exceeds the %d minutes between start and end", ErrInvalid, r.DurationMinutes, span)
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalid, r.Date)
	}
	return nil
}

// CreateRecord stores a finished session. The owner row is created if
// needed and the task must belong to the same owner. An empty TaskName or
// TaskColor is filled from the task as it is now.
func (s *Store) CreateRecord(ctx context.Context, ownerID string, r Record) (*Record, error) {
	if err := validateRecord(&r); err != nil {
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
	task, err := getTask(ctx, tx, ownerID, r.TaskID)
	if err != nil {
		return nil, err
	}
	if r.TaskName == "" {
		r.TaskName = task.Name
	}
	if r.TaskColor == "" {
		r.TaskColor = task.Color
	}

	r.ID = uuid.New().String()
	r.OwnerID = ownerID
	r.StartTime = r.StartTime.UTC().Truncate(time.Second)
	r.EndTime = r.EndTime.UTC().Truncate(time.Second)
	r.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.TaskID, r.TaskName, string(r.TaskColor),
		formatTime(r.StartTime), formatTime(r.EndTime), r.DurationMinutes, r.Date,
		formatTime(r.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit record: %w", err)
	}
	return &r, nil
}

func (s *Store) GetRecord(ctx context.Context, ownerID, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return r, nil
}

// ListRecords returns the owner's records ordered by date then start time.
// With a Limit, the latest Limit records are kept, still in ascending order.
func (s *Store) ListRecords(ctx context.Context, ownerID string, f RecordFilter) ([]Record, error) {
	where := []string{"user_id = ?"}
	args := []any{ownerID}
	if f.From != "" {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "date <= ?")
		args = append(args, f.To)
	}
	if f.TaskID != "" {
		where = append(where, "task_id = ?")
		args = append(args, f.TaskID)
	}

	query := `SELECT ` + recordColumns + ` FROM records WHERE ` + strings.Join(where, " AND ")
	if f.Limit > 0 {
		query = `SELECT ` + recordColumns + ` FROM (` + query +
			` ORDER BY date DESC, start_time DESC, rowid DESC LIMIT ?) ORDER BY date, start_time`
		args = append(args, f.Limit)
	} else {
		query += ` ORDER BY date, start_time, rowid`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func (s *Store) DeleteRecord(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DailyTotals sums record minutes per date and task for dates in [from, to].
func (s *Store) DailyTotals(ctx context.Context, ownerID, from, to string) ([]DailyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, task_id, MAX(task_name), MAX(task_color),
		       SUM(duration_minutes), COUNT(*)
		FROM records
		WHERE user_id = ? AND date >= ? AND date <= ?
		GROUP BY date, task_id
		ORDER BY date, MIN(start_time)`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var d DailyTotal
		var color string
		if err := rows.Scan(&d.Date, &d.TaskID, &d.TaskName, &color, &d.TotalMinutes, &d.RecordCount); err != nil {
			return nil, err
		}
		d.TaskColor = Color(color)
		totals = append(totals, d)
	}
	return totals, rows.Err()
}

func scanRecord(sc scanner) (*Record, error) {
	r := &Record{}
	var color, start, end, createdAt string
	err := sc.Scan(&r.ID, &r.OwnerID, &r.TaskID, &r.TaskName, &color,
		&start, &end, &r.DurationMinutes, &r.Date, &createdAt)
	if err != nil {
		return nil, err
	}
	r.TaskColor = Color(color)
	r.StartTime = parseTime(start)
	r.EndTime = parseTime(end)
	r.CreatedAt = parseTime(createdAt)
	return r, nil
}
