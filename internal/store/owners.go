package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertOwner creates the owner row if it does not exist. Repeated calls are no-ops.
func (s *Store) UpsertOwner(ctx context.Context, ownerID string) error {
	return upsertOwner(ctx, s.db, ownerID)
}

func upsertOwner(ctx context.Context, q querier, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrInvalid)
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		ownerID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert owner: %w", err)
	}
	return nil
}

func (s *Store) GetOwner(ctx context.Context, ownerID string) (*Owner, error) {
	o := &Owner{}
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM users WHERE id = ?`, ownerID,
	).Scan(&o.ID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	o.CreatedAt = parseTime(createdAt)
	return o, nil
}
