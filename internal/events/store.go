package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const eventColumns = `event_ulid, name, category, start_at, end_at, buffer_start_ms, buffer_end_ms,
	sign_in_points, sign_out_points, points_per_hour, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, e *Event) error {
	const q = `
	INSERT INTO events (` + eventColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		e.EventULID, e.Name, e.Category, e.StartAt, e.EndAt, e.BufferStartMS, e.BufferEndMS,
		e.SignInPoints, e.SignOutPoints, e.PointsPerHour, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (s *Store) GetByULID(ctx context.Context, eventULID string) (*Event, error) {
	const q = `
	SELECT ` + eventColumns + `
	FROM events
	WHERE event_ulid = ?`

	var e Event
	err := s.db.QueryRowContext(ctx, q, eventULID).Scan(
		&e.EventULID, &e.Name, &e.Category, &e.StartAt, &e.EndAt, &e.BufferStartMS, &e.BufferEndMS,
		&e.SignInPoints, &e.SignOutPoints, &e.PointsPerHour, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) List(ctx context.Context, p Page) ([]Event, int64, error) {
	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := fmt.Sprintf(`
	SELECT `+eventColumns+`
	FROM events
	ORDER BY start_at %s, event_ulid %s
	LIMIT ? OFFSET ?`, order, order)

	rows, err := s.db.QueryContext(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.EventULID, &e.Name, &e.Category, &e.StartAt, &e.EndAt, &e.BufferStartMS, &e.BufferEndMS,
			&e.SignInPoints, &e.SignOutPoints, &e.PointsPerHour, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Update(ctx context.Context, e *Event) error {
	const q = `
	UPDATE events
	SET name = ?, category = ?, start_at = ?, end_at = ?, buffer_start_ms = ?, buffer_end_ms = ?,
	    sign_in_points = ?, sign_out_points = ?, points_per_hour = ?, updated_at = ?
	WHERE event_ulid = ?`

	res, err := s.db.ExecContext(ctx, q,
		e.Name, e.Category, e.StartAt, e.EndAt, e.BufferStartMS, e.BufferEndMS,
		e.SignInPoints, e.SignOutPoints, e.PointsPerHour, e.UpdatedAt, e.EventULID,
	)
	if err != nil {
		return err
	}
	// 値が変わらない更新は RowsAffected=0 になり得るのでチェックしない
	_, _ = res.RowsAffected()
	return nil
}
