package events

import (
	"database/sql"
	"time"
)

// Event は events テーブルの1行を表す
type Event struct {
	EventULID     string
	Name          string
	Category      sql.NullString
	StartAt       sql.NullTime
	EndAt         sql.NullTime
	BufferStartMS int64
	BufferEndMS   int64
	SignInPoints  float64
	SignOutPoints float64
	PointsPerHour float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e *Event) toDTO() EventResponse {
	resp := EventResponse{
		EventID:       e.EventULID,
		Name:          e.Name,
		BufferStartMS: e.BufferStartMS,
		BufferEndMS:   e.BufferEndMS,
		SignInPoints:  e.SignInPoints,
		SignOutPoints: e.SignOutPoints,
		PointsPerHour: e.PointsPerHour,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.Category.Valid {
		v := e.Category.String
		resp.Category = &v
	}
	if e.StartAt.Valid {
		v := e.StartAt.Time
		resp.StartAt = &v
	}
	if e.EndAt.Valid {
		v := e.EndAt.Time
		resp.EndAt = &v
	}
	return resp
}
