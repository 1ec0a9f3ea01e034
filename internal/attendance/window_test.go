package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func TestCheckWindow(t *testing.T) {
	start := mustTime(t, "2024-06-01T09:00:00Z")
	end := mustTime(t, "2024-06-01T17:00:00Z")

	tests := []struct {
		name       string
		now        string
		start, end *time.Time
		bufStart   time.Duration
		bufEnd     time.Duration
		wantCode   Code
	}{
		{name: "inside window", now: "2024-06-01T10:00:00Z", start: &start, end: &end},
		{name: "exactly at start", now: "2024-06-01T09:00:00Z", start: &start, end: &end},
		{name: "exactly at end", now: "2024-06-01T17:00:00Z", start: &start, end: &end},
		{name: "before start", now: "2024-06-01T08:00:00Z", start: &start, end: &end, wantCode: CodeFailedPrecondition},
		{name: "after end", now: "2024-06-01T18:00:00Z", start: &start, end: &end, wantCode: CodeDeadlineExceeded},
		{name: "inside start buffer", now: "2024-06-01T08:45:00Z", start: &start, end: &end, bufStart: 15 * time.Minute},
		{name: "exactly at start minus buffer", now: "2024-06-01T08:45:00Z", start: &start, end: &end, bufStart: 15 * time.Minute},
		{name: "before start buffer", now: "2024-06-01T08:44:59Z", start: &start, end: &end, bufStart: 15 * time.Minute, wantCode: CodeFailedPrecondition},
		{name: "inside end buffer", now: "2024-06-01T17:10:00Z", start: &start, end: &end, bufEnd: 15 * time.Minute},
		{name: "after end buffer", now: "2024-06-01T17:15:01Z", start: &start, end: &end, bufEnd: 15 * time.Minute, wantCode: CodeDeadlineExceeded},
		{name: "no start constraint", now: "2000-01-01T00:00:00Z", end: &end},
		{name: "no end constraint", now: "2030-01-01T00:00:00Z", start: &start},
		{name: "no constraints at all", now: "2030-01-01T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWindow(mustTime(t, tt.now), tt.start, tt.end, tt.bufStart, tt.bufEnd)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var api *APIError
			require.ErrorAs(t, err, &api)
			assert.Equal(t, tt.wantCode, api.Code)
		})
	}
}
