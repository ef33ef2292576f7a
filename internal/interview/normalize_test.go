package interview

import (
	"testing"
	"time"
)

func TestNormalizeRebuildsMidInterviewCandidate(t *testing.T) {
	c := &Candidate{
		ID:    "c1",
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "555",
		Session: &Session{
			QIdx:    2,
			Answers: []Answer{{Q: "q1", A: "a1", Level: LevelEasy}},
		},
	}
	Normalize(c)

	s := c.Session
	if s.Stage != StageInterview {
		t.Fatalf("expected interview stage, got %s", s.Stage)
	}
	if len(s.ChatLog) == 0 {
		t.Fatalf("expected seeded chat log")
	}
	if s.ChatLog[0].Text != "Hi Jane! Let's get you set up before the interview begins." {
		t.Fatalf("unexpected greeting: %q", s.ChatLog[0].Text)
	}
	if s.Timer.Total != 0 || s.Timer.StartedAt != nil || s.Active {
		t.Fatalf("expected stopped zero timer, got %+v active=%v", s.Timer, s.Active)
	}
	if c.TopicStats == nil {
		t.Fatalf("expected topic stats map")
	}
}

func TestNormalizeSynthesizesMissingSession(t *testing.T) {
	c := &Candidate{ID: "c1"}
	Normalize(c)
	if c.Session == nil || c.Session.QIdx != -1 {
		t.Fatalf("expected fresh session")
	}
	if c.Session.Stage != StageCollecting || c.Session.CurrentInfoField != "name" {
		t.Fatalf("expected collecting from name, got %s/%q", c.Session.Stage, c.Session.CurrentInfoField)
	}
}

func TestNormalizeClampsQuestionIndex(t *testing.T) {
	c := &Candidate{ID: "c1", Name: "A B", Email: "a@b.c", Phone: "1", Session: &Session{QIdx: 42}}
	Normalize(c)
	if c.Session.QIdx != PlanLength {
		t.Fatalf("expected clamp to %d, got %d", PlanLength, c.Session.QIdx)
	}
	if c.Session.Stage != StageReview {
		t.Fatalf("expected review past plan end, got %s", c.Session.Stage)
	}

	c = &Candidate{ID: "c2", Session: &Session{QIdx: -9}}
	Normalize(c)
	if c.Session.QIdx != -1 {
		t.Fatalf("expected clamp to -1, got %d", c.Session.QIdx)
	}
}

func TestNormalizeRepairsInfoQueue(t *testing.T) {
	// Persisted queue claims email is still needed, but it is present;
	// phone is genuinely missing yet absent from the queue.
	c := &Candidate{
		ID:    "c1",
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Session: &Session{
			QIdx:      -1,
			InfoQueue: []string{"email"},
		},
	}
	Normalize(c)
	if len(c.Session.InfoQueue) != 1 || c.Session.InfoQueue[0] != "phone" {
		t.Fatalf("expected queue reset to missing fields, got %v", c.Session.InfoQueue)
	}
	if c.Session.CurrentInfoField != "phone" {
		t.Fatalf("expected phone head, got %q", c.Session.CurrentInfoField)
	}
}

func TestNormalizeKeepsQueueIntersection(t *testing.T) {
	c := &Candidate{
		ID:   "c1",
		Name: "Jane Doe",
		Session: &Session{
			QIdx:      -1,
			InfoQueue: []string{"name", "phone"},
		},
	}
	Normalize(c)
	// name is present so only phone survives; email missing but queue
	// intersection is non-empty, so the stale order is trusted.
	if len(c.Session.InfoQueue) != 1 || c.Session.InfoQueue[0] != "phone" {
		t.Fatalf("expected [phone], got %v", c.Session.InfoQueue)
	}
}

func TestDecodeSnapshotToleratesGarbage(t *testing.T) {
	data := []byte(`{
		"candidates": [
			{"id":"good","name":"Jane Doe","email":"j@x.c","phone":"1","session":{"qIdx":1,"answers":[{"q":"q","a":"a"}],"timer":{"total":20,"remaining":"NaN","startedAt":1767258000000}}},
			{"name":"missing id"},
			"not an object"
		],
		"pendingScores":[{"candidateId":"good","answerIndex":0}]
	}`)
	snap := DecodeSnapshot(data)
	if len(snap.Candidates) != 1 {
		t.Fatalf("expected only the well-formed candidate, got %d", len(snap.Candidates))
	}
	c := snap.Candidates[0]
	if c.Session.Stage != StageInterview {
		t.Fatalf("expected interview stage, got %s", c.Session.Stage)
	}
	if c.Session.Timer.Remaining != 0 {
		t.Fatalf("expected junk remaining coerced to 0, got %g", c.Session.Timer.Remaining)
	}
	if len(snap.PendingScores) != 1 || snap.PendingScores[0].CandidateID != "good" {
		t.Fatalf("expected pending entry preserved, got %v", snap.PendingScores)
	}
}

func TestDecodeSnapshotCorruptInput(t *testing.T) {
	snap := DecodeSnapshot([]byte("{{{"))
	if len(snap.Candidates) != 0 || len(snap.PendingScores) != 0 {
		t.Fatalf("expected empty snapshot for corrupt input")
	}
	if snap.Candidates == nil || snap.PendingScores == nil {
		t.Fatalf("expected non-nil empty slices")
	}
}

func TestNormalizeDropsZeroStartedAt(t *testing.T) {
	zero := time.Time{}
	c := &Candidate{
		ID: "c1", Name: "A B", Email: "a@b.c", Phone: "1",
		Session: &Session{QIdx: 0, Active: true, Timer: Timer{Total: 20, Remaining: 20, StartedAt: &zero}},
	}
	Normalize(c)
	if c.Session.Timer.StartedAt != nil || c.Session.Active {
		t.Fatalf("zero start timestamp must stop the clock")
	}
}
