package interview

import (
	"encoding/json"
	"math"
	"time"
)

// Timer is a countdown snapshot. A nil StartedAt means the clock is
// stopped and Remaining is authoritative; a non-nil StartedAt means the
// true remaining time is Remaining minus the wall time elapsed since then.
type Timer struct {
	Total     float64    `json:"total"`
	Remaining float64    `json:"remaining"`
	StartedAt *time.Time `json:"startedAt"`
}

// RemainingAt computes whole remaining seconds at the given wall-clock
// time, never negative.
func (t Timer) RemainingAt(now time.Time) int {
	rem := t.Remaining
	if t.StartedAt != nil {
		rem -= now.Sub(*t.StartedAt).Seconds()
	}
	r := int(math.Round(rem))
	if r < 0 {
		return 0
	}
	return r
}

// UnmarshalJSON decodes a persisted timer leniently: numeric fields are
// coerced and zeroed when absent or non-finite, and startedAt is kept only
// when it is a genuine timestamp (RFC3339 string or epoch milliseconds).
// It never returns an error; malformed input yields a zeroed timer.
func (t *Timer) UnmarshalJSON(data []byte) error {
	*t = Timer{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	t.Total = coerceSeconds(raw["total"])
	t.Remaining = coerceSeconds(raw["remaining"])
	t.StartedAt = coerceTimestamp(raw["startedAt"])
	return nil
}

func coerceSeconds(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func coerceTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil && !ts.IsZero() {
			return &ts
		}
		return nil
	}
	// Snapshots written by the original web client stored epoch millis.
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
		ts := time.UnixMilli(int64(ms)).UTC()
		return &ts
	}
	return nil
}

// withTimer resets the session countdown to a fresh duration. A zero now
// leaves the clock stopped until an explicit resume; otherwise the clock
// starts immediately and the session becomes active.
func (s *Session) withTimer(seconds int, now time.Time) {
	var startedAt *time.Time
	if !now.IsZero() {
		ts := now
		startedAt = &ts
	}
	s.Active = startedAt != nil
	s.Paused = false
	s.Timer = Timer{
		Total:     float64(seconds),
		Remaining: float64(seconds),
		StartedAt: startedAt,
	}
}

// pauseTimer freezes the countdown, folding elapsed wall time into
// Remaining so a later resume continues from the right place.
func (s *Session) pauseTimer(now time.Time) {
	rem := s.Timer.Remaining
	if s.Timer.StartedAt != nil {
		rem -= now.Sub(*s.Timer.StartedAt).Seconds()
	}
	rem = math.Round(rem)
	if rem < 0 {
		rem = 0
	}
	ts := now
	s.LastPausedAt = &ts
	s.Active = false
	s.Paused = true
	s.Timer.Remaining = rem
	s.Timer.StartedAt = nil
}

// resumeTimer restarts the clock without changing Remaining.
func (s *Session) resumeTimer(now time.Time) {
	ts := now
	s.Timer.StartedAt = &ts
	s.Active = true
	s.Paused = false
	s.NeedsWelcome = false
}
