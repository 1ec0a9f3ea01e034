package attendance

import (
	"database/sql"
	"time"
)

// Event は events テーブルの読み取り用スナップショット（このパッケージからは読み取り専用）
type Event struct {
	EventULID     string
	Category      Category
	StartAt       sql.NullTime
	EndAt         sql.NullTime
	BufferStartMS int64
	BufferEndMS   int64
	SignInPoints  float64
	SignOutPoints float64
	PointsPerHour float64
}

func (e *Event) windowBounds() (start, end *time.Time) {
	if e.StartAt.Valid {
		t := e.StartAt.Time
		start = &t
	}
	if e.EndAt.Valid {
		t := e.EndAt.Time
		end = &t
	}
	return start, end
}

func (e *Event) pointParams() PointParams {
	return PointParams{
		SignIn:  e.SignInPoints,
		SignOut: e.SignOutPoints,
		PerHour: e.PointsPerHour,
	}
}

// Record は (member, event) 1組の出欠ログ。
// event_attendance / member_attendance の両テーブルに同値で存在する。
type Record struct {
	MemberID    string
	EventULID   string
	CreatedAt   time.Time
	SignedInAt  sql.NullTime
	SignedOutAt sql.NullTime
	Points      float64
	Verified    bool
}

func newRecord(eventULID, memberID string, now time.Time) *Record {
	return &Record{
		MemberID:  memberID,
		EventULID: eventULID,
		CreatedAt: now,
		// verified は作成時 true 固定。このサブシステムでは以後触らない。
		Verified: true,
	}
}

func (r *Record) toDTO() AttendanceResponse {
	resp := AttendanceResponse{
		MemberID:  r.MemberID,
		EventID:   r.EventULID,
		CreatedAt: r.CreatedAt,
		Points:    r.Points,
		Verified:  r.Verified,
	}
	if r.SignedInAt.Valid {
		t := r.SignedInAt.Time
		resp.SignedInAt = &t
	}
	if r.SignedOutAt.Valid {
		t := r.SignedOutAt.Time
		resp.SignedOutAt = &t
	}
	return resp
}
