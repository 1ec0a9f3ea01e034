package attendance

import "time"

type AttendanceResponse struct {
	MemberID    string     `json:"member_id"`
	EventID     string     `json:"event_id"`
	CreatedAt   time.Time  `json:"created_at"`
	SignedInAt  *time.Time `json:"signed_in_at,omitempty"`
	SignedOutAt *time.Time `json:"signed_out_at,omitempty"`
	Points      float64    `json:"points"`
	Verified    bool       `json:"verified"`
}
