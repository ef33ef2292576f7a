package interview

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/telemetry"
)

// Store owns the ordered candidate list and the pending-score queue. Every
// mutation runs under a single mutex and is followed by a best-effort save
// of the whole snapshot, so readers and the background workers only ever
// observe fully-applied transitions.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
	repo Repo
}

// NewStore loads the persisted snapshot through the given repo. The load
// path never fails the caller: repo errors fall back to an empty snapshot.
func NewStore(ctx context.Context, repo Repo) *Store {
	s := &Store{
		repo: repo,
		snap: Snapshot{Candidates: []*Candidate{}, PendingScores: []PendingScore{}},
	}
	if repo == nil {
		return s
	}
	snap, ok, err := repo.Load(ctx)
	if err != nil {
		telemetry.Error("store.load", map[string]any{"error": err.Error()})
		return s
	}
	if ok {
		for _, c := range snap.Candidates {
			Normalize(c)
		}
		if snap.Candidates == nil {
			snap.Candidates = []*Candidate{}
		}
		if snap.PendingScores == nil {
			snap.PendingScores = []PendingScore{}
		}
		s.snap = snap
	}
	return s
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, s.snap.clone()); err != nil {
		telemetry.Error("store.save", map[string]any{"error": err.Error()})
	}
}

func (s *Store) findLocked(id string) *Candidate {
	for _, c := range s.snap.Candidates {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Add creates a candidate from resume-derived fields and returns it.
func (s *Store) Add(ctx context.Context, seed Seed) Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Candidate{
		ID:         uuid.NewString(),
		Name:       seed.Name,
		Email:      seed.Email,
		Phone:      seed.Phone,
		ResumeText: seed.ResumeText,
		TopicStats: map[string]TopicStat{},
		Session:    newSession(),
		CreatedAt:  time.Now().UTC(),
	}
	Normalize(c)
	s.snap.Candidates = append(s.snap.Candidates, c)
	s.persistLocked(ctx)
	return c.Clone()
}

// Get returns a copy of the candidate with the given id.
func (s *Store) Get(id string) (Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(id)
	if c == nil {
		return Candidate{}, false
	}
	return c.Clone(), true
}

// List returns copies of all candidates in insertion order.
func (s *Store) List() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Candidate, 0, len(s.snap.Candidates))
	for _, c := range s.snap.Candidates {
		out = append(out, c.Clone())
	}
	// Dashboard order: highest score first, unscored last, ties by name.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Score, out[j].Score
		switch {
		case a != nil && b != nil && *a != *b:
			return *a > *b
		case (a != nil) != (b != nil):
			return a != nil
		default:
			return out[i].Name < out[j].Name
		}
	})
	return out
}

// Current resolves the candidate the interview flow should act on: the
// first unfinished candidate with a session, else the most recently added.
func (s *Store) Current() (Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.snap.Candidates {
		if !c.Finished && c.Session != nil {
			return c.Clone(), true
		}
	}
	if n := len(s.snap.Candidates); n > 0 {
		return s.snap.Candidates[n-1].Clone(), true
	}
	return Candidate{}, false
}

// SetField writes a contact field directly (manual dashboard edit) and
// re-derives the session's queue and stage.
func (s *Store) SetField(ctx context.Context, id, field, value string) {
	s.mutate(ctx, id, func(c *Candidate) {
		if c.setFieldValue(field, value) {
			c.recompute()
		}
	})
}

// CaptureInfo records one contact field from the chat flow; see
// Candidate.captureInfo for the rejection and placeholder rules.
func (s *Store) CaptureInfo(ctx context.Context, id, field, value string) {
	s.mutate(ctx, id, func(c *Candidate) { c.captureInfo(field, value) })
}

// StartInterview moves a ready session onto question zero. Idempotent.
func (s *Store) StartInterview(ctx context.Context, id string, now time.Time) {
	s.mutate(ctx, id, func(c *Candidate) { c.startInterview(now) })
}

// SetCurrentQuestion applies a streaming question update or finalizes the
// question into the transcript; see Candidate.setCurrentQuestion.
func (s *Store) SetCurrentQuestion(ctx context.Context, id, question string, appendLog bool, level Level, index int) {
	s.mutate(ctx, id, func(c *Candidate) { c.setCurrentQuestion(question, appendLog, level, index) })
}

// RecordAnswer appends the answer for the current plan entry and advances
// the session. Returns true when the interview just entered review.
func (s *Store) RecordAnswer(ctx context.Context, id, q, a string, score *Score, topic string, now time.Time, auto bool) bool {
	finished := false
	s.mutate(ctx, id, func(c *Candidate) {
		finished = c.recordAnswer(q, a, score, topic, now, auto)
	})
	return finished
}

// SetScoreSummary attaches the final weighted score and summary text.
func (s *Store) SetScoreSummary(ctx context.Context, id string, score float64, summary string) {
	s.mutate(ctx, id, func(c *Candidate) {
		c.Score = &score
		c.Summary = summary
	})
}

// Pause freezes the session timer; reason "manual" suppresses the
// welcome-back prompt.
func (s *Store) Pause(ctx context.Context, id, reason string, now time.Time) {
	s.mutate(ctx, id, func(c *Candidate) { c.pause(reason, now) })
}

// PauseActive pauses every running session, used on shutdown so candidates
// are prompted to resume on return.
func (s *Store) PauseActive(ctx context.Context, reason string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, c := range s.snap.Candidates {
		if !c.Finished && c.Session != nil && c.Session.Active {
			c.pause(reason, now)
			changed = true
		}
	}
	if changed {
		s.persistLocked(ctx)
	}
}

// Resume restarts the session clock and clears the welcome flag.
func (s *Store) Resume(ctx context.Context, id string, now time.Time) {
	s.mutate(ctx, id, func(c *Candidate) { c.resume(now) })
}

// Finish ends the interview early, freezing the timer and computing the
// aggregate from whatever answers exist.
func (s *Store) Finish(ctx context.Context, id string, now time.Time) {
	s.mutate(ctx, id, func(c *Candidate) {
		c.finish(now)
		c.Score = WeightedScore(c.Session.Answers)
	})
}

// AttachScore sets an answer's score once an async rescore succeeds and
// removes the matching pending entry. Scores are write-once: an answer
// that already carries one is left untouched. Topic aggregates are not
// retroactively adjusted.
func (s *Store) AttachScore(ctx context.Context, id string, idx int, score Score) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(id)
	if c == nil || c.Session == nil || idx < 0 || idx >= len(c.Session.Answers) {
		return
	}
	if c.Session.Answers[idx].Score == nil {
		sc := score
		c.Session.Answers[idx].Score = &sc
	}
	kept := s.snap.PendingScores[:0]
	for _, p := range s.snap.PendingScores {
		if p.CandidateID == id && p.AnswerIndex == idx {
			continue
		}
		kept = append(kept, p)
	}
	s.snap.PendingScores = kept
	s.persistLocked(ctx)
}

// EnqueuePending queues an answer for asynchronous (re)scoring. Duplicate
// entries are collapsed.
func (s *Store) EnqueuePending(ctx context.Context, id string, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.snap.PendingScores {
		if p.CandidateID == id && p.AnswerIndex == idx {
			return
		}
	}
	s.snap.PendingScores = append(s.snap.PendingScores, PendingScore{CandidateID: id, AnswerIndex: idx})
	s.persistLocked(ctx)
}

// Pending returns a snapshot of the reconciliation queue.
func (s *Store) Pending() []PendingScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PendingScore(nil), s.snap.PendingScores...)
}

// Clear drops all candidates and pending scores.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Candidates: []*Candidate{}, PendingScores: []PendingScore{}}
	s.persistLocked(ctx)
}

func (s *Store) mutate(ctx context.Context, id string, fn func(c *Candidate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(id)
	if c == nil {
		return
	}
	fn(c)
	s.persistLocked(ctx)
}
