package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/telemetry"
)

// ScoreFunc produces a score for a recorded answer. Used by the
// reconciliation drain to retry answers that were left unscored.
type ScoreFunc func(ctx context.Context, question, answer string) (Score, error)

// Reconciler drains the pending-score queue on a fixed cadence, plus
// immediately when kicked (e.g. on a connectivity-restored signal). Each
// pass is idempotent: entries whose candidate or answer is gone, or whose
// answer already carries a score, are skipped, so processing the same
// entry twice is harmless.
type Reconciler struct {
	Store    *Store
	Score    ScoreFunc
	Interval time.Duration

	kick chan struct{}
}

// NewReconciler constructs a drain with a 4s cadence.
func NewReconciler(store *Store, score ScoreFunc) *Reconciler {
	return &Reconciler{
		Store:    store,
		Score:    score,
		Interval: 4 * time.Second,
		kick:     make(chan struct{}, 1),
	}
}

// Kick requests an immediate drain pass without waiting for the ticker.
func (r *Reconciler) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run blocks until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-r.kick:
		}
		r.DrainOnce(ctx)
	}
}

// DrainOnce attempts every queued entry once. Failures stay queued for the
// next cycle; no backoff growth is applied.
func (r *Reconciler) DrainOnce(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("reconcile.panic", map[string]any{"recover": fmt.Sprint(rec)})
		}
	}()
	if r.Score == nil {
		return
	}
	for _, p := range r.Store.Pending() {
		c, ok := r.Store.Get(p.CandidateID)
		if !ok || c.Session == nil {
			continue
		}
		if p.AnswerIndex < 0 || p.AnswerIndex >= len(c.Session.Answers) {
			continue
		}
		ans := c.Session.Answers[p.AnswerIndex]
		if ans.Score != nil {
			continue
		}
		answer := ans.A
		if answer == "" {
			answer = autoAnswerPlaceholder
		}
		score, err := r.Score(ctx, ans.Q, answer)
		if err != nil {
			telemetry.Error("reconcile.score", map[string]any{
				"candidate_id": p.CandidateID,
				"answer_index": p.AnswerIndex,
				"error":        err.Error(),
			})
			continue
		}
		r.Store.AttachScore(ctx, p.CandidateID, p.AnswerIndex, score)
	}
}
