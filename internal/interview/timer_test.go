package interview

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRemainingAtStoppedClock(t *testing.T) {
	timer := Timer{Total: 20, Remaining: 15}
	if got := timer.RemainingAt(time.Now()); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}

func TestRemainingAtRunningClock(t *testing.T) {
	t0 := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	timer := Timer{Total: 20, Remaining: 20, StartedAt: &t0}

	if got := timer.RemainingAt(t0.Add(5 * time.Second)); got != 15 {
		t.Fatalf("after 5s expected 15, got %d", got)
	}
	if got := timer.RemainingAt(t0.Add(30 * time.Second)); got != 0 {
		t.Fatalf("past expiry expected 0, got %d", got)
	}
}

func TestPauseResumeRoundTrip(t *testing.T) {
	t0 := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	s := newSession()
	s.withTimer(20, t0)

	if !s.Active || s.Timer.StartedAt == nil {
		t.Fatalf("expected running clock after withTimer")
	}

	s.pauseTimer(t0.Add(5 * time.Second))
	if s.Timer.Remaining != 15 {
		t.Fatalf("expected remaining 15 after pause, got %g", s.Timer.Remaining)
	}
	if s.Active || !s.Paused || s.Timer.StartedAt != nil {
		t.Fatalf("expected frozen clock, got active=%v paused=%v", s.Active, s.Paused)
	}
	if s.LastPausedAt == nil || !s.LastPausedAt.Equal(t0.Add(5*time.Second)) {
		t.Fatalf("expected lastPausedAt to record the pause instant")
	}

	t1 := t0.Add(time.Hour)
	s.resumeTimer(t1)
	if got := s.Timer.RemainingAt(t1.Add(3 * time.Second)); got != 12 {
		t.Fatalf("expected 12 after 3s of resumed play, got %d", got)
	}
}

func TestPauseNeverGoesNegative(t *testing.T) {
	t0 := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	s := newSession()
	s.withTimer(20, t0)
	s.pauseTimer(t0.Add(90 * time.Second))
	if s.Timer.Remaining != 0 {
		t.Fatalf("expected remaining floored at 0, got %g", s.Timer.Remaining)
	}
}

func TestWithTimerZeroNowLeavesClockStopped(t *testing.T) {
	s := newSession()
	s.withTimer(60, time.Time{})
	if s.Active || s.Timer.StartedAt != nil {
		t.Fatalf("expected stopped clock for zero start time")
	}
	if s.Timer.Remaining != 60 {
		t.Fatalf("expected remaining 60, got %g", s.Timer.Remaining)
	}
}

func TestTimerUnmarshalLenient(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		total     float64
		remaining float64
		started   bool
	}{
		{"well formed", `{"total":20,"remaining":12,"startedAt":"2026-03-01T10:00:00Z"}`, 20, 12, true},
		{"junk remaining", `{"total":20,"remaining":"abc"}`, 20, 0, false},
		{"legacy epoch millis", `{"total":60,"remaining":60,"startedAt":1767258000000}`, 60, 60, true},
		{"null startedAt", `{"total":20,"remaining":20,"startedAt":null}`, 20, 20, false},
		{"not an object", `"oops"`, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var timer Timer
			if err := json.Unmarshal([]byte(tc.input), &timer); err != nil {
				t.Fatalf("unmarshal returned error: %v", err)
			}
			if timer.Total != tc.total {
				t.Fatalf("total = %g, want %g", timer.Total, tc.total)
			}
			if timer.Remaining != tc.remaining {
				t.Fatalf("remaining = %g, want %g", timer.Remaining, tc.remaining)
			}
			if (timer.StartedAt != nil) != tc.started {
				t.Fatalf("startedAt presence = %v, want %v", timer.StartedAt != nil, tc.started)
			}
		})
	}
}
