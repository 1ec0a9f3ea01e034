package events

import "time"

// イベント登録リクエスト
// category は閉じた列挙（attendance.ParseCategory が知っている値）か未指定。
// 未指定のまま公開するとサインイン時に INTERNAL になるので、運用上は設定必須。
type CreateEventRequest struct {
	Name          string     `json:"name" binding:"required"`
	Category      *string    `json:"category,omitempty"`
	StartAt       *time.Time `json:"start_at,omitempty"`
	EndAt         *time.Time `json:"end_at,omitempty"`
	BufferStartMS int64      `json:"buffer_start_ms"`
	BufferEndMS   int64      `json:"buffer_end_ms"`
	SignInPoints  float64    `json:"sign_in_points"`
	SignOutPoints float64    `json:"sign_out_points"`
	PointsPerHour float64    `json:"points_per_hour"`
}

// イベント更新リクエスト（nil のフィールドは据え置き）
type UpdateEventRequest struct {
	Name          *string    `json:"name,omitempty"`
	Category      *string    `json:"category,omitempty"`
	StartAt       *time.Time `json:"start_at,omitempty"`
	EndAt         *time.Time `json:"end_at,omitempty"`
	BufferStartMS *int64     `json:"buffer_start_ms,omitempty"`
	BufferEndMS   *int64     `json:"buffer_end_ms,omitempty"`
	SignInPoints  *float64   `json:"sign_in_points,omitempty"`
	SignOutPoints *float64   `json:"sign_out_points,omitempty"`
	PointsPerHour *float64   `json:"points_per_hour,omitempty"`
}

type EventResponse struct {
	EventID       string     `json:"event_id"`
	Name          string     `json:"name"`
	Category      *string    `json:"category,omitempty"`
	StartAt       *time.Time `json:"start_at,omitempty"`
	EndAt         *time.Time `json:"end_at,omitempty"`
	BufferStartMS int64      `json:"buffer_start_ms"`
	BufferEndMS   int64      `json:"buffer_end_ms"`
	SignInPoints  float64    `json:"sign_in_points"`
	SignOutPoints float64    `json:"sign_out_points"`
	PointsPerHour float64    `json:"points_per_hour"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
