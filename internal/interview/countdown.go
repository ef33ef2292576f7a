package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/telemetry"
)

// ExpireFunc is invoked when a session's countdown reaches zero.
type ExpireFunc func(ctx context.Context, candidateID string)

// Countdown polls active sessions once per second and fires the expiry
// callback when a running timer hits zero. Expiry is edge-triggered: it
// fires at most once per active period, keyed by the timer's start
// timestamp and question index, and re-arms only when the timer restarts.
type Countdown struct {
	Store    *Store
	OnExpire ExpireFunc
	Interval time.Duration

	fired map[string]string
}

// NewCountdown constructs a countdown watcher with a 1s poll cadence.
func NewCountdown(store *Store, onExpire ExpireFunc) *Countdown {
	return &Countdown{
		Store:    store,
		OnExpire: onExpire,
		Interval: time.Second,
		fired:    map[string]string{},
	}
}

// Run blocks until the context is cancelled.
func (w *Countdown) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick(ctx, time.Now())
		}
	}
}

// Tick performs one poll pass. Exported so tests can drive the clock.
func (w *Countdown) Tick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("countdown.panic", map[string]any{"recover": fmt.Sprint(r)})
		}
	}()
	armed := make(map[string]bool, len(w.fired))
	for _, c := range w.Store.List() {
		s := c.Session
		if c.Finished || s == nil || !s.Active || s.Timer.StartedAt == nil {
			continue
		}
		armed[c.ID] = true
		if s.Timer.RemainingAt(now) > 0 {
			continue
		}
		gen := fmt.Sprintf("%d:%d", s.QIdx, s.Timer.StartedAt.UnixMilli())
		if w.fired[c.ID] == gen {
			continue
		}
		w.fired[c.ID] = gen
		if w.OnExpire != nil {
			w.OnExpire(ctx, c.ID)
		}
	}
	// The latch only matters while a timer keeps running at zero; drop
	// entries for candidates that stopped, finished, or were cleared so
	// the map does not grow with history.
	for id := range w.fired {
		if !armed[id] {
			delete(w.fired, id)
		}
	}
}
