package interview

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DecodeSnapshot turns persisted bytes into a Snapshot, tolerating legacy
// or partially-populated shapes. It never fails: unreadable candidates are
// dropped, unreadable fields fall back to zero forms, and every surviving
// candidate is passed through Normalize. Corrupt input yields an empty
// snapshot rather than an error.
func DecodeSnapshot(data []byte) Snapshot {
	snap := Snapshot{Candidates: []*Candidate{}, PendingScores: []PendingScore{}}
	if len(data) == 0 {
		return snap
	}
	var raw struct {
		Candidates    []json.RawMessage `json:"candidates"`
		PendingScores []PendingScore    `json:"pendingScores"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return snap
	}
	for _, rc := range raw.Candidates {
		var c Candidate
		if err := json.Unmarshal(rc, &c); err != nil || c.ID == "" {
			continue
		}
		Normalize(&c)
		snap.Candidates = append(snap.Candidates, &c)
	}
	if raw.PendingScores != nil {
		snap.PendingScores = raw.PendingScores
	}
	return snap
}

// Normalize repairs a candidate into a structurally valid state. It is the
// single defense against schema drift: stage and the info queue are
// re-derived from current data, timer fields are coerced, and the chat log
// is seeded when absent. It runs on every load and after any mutation that
// reshapes the session.
func Normalize(c *Candidate) {
	if c.Session == nil {
		c.Session = newSession()
	}
	s := c.Session
	if c.TopicStats == nil {
		c.TopicStats = map[string]TopicStat{}
	}
	if s.Answers == nil {
		s.Answers = []Answer{}
	}
	if s.ChatLog == nil {
		s.ChatLog = []ChatEntry{}
	}
	if s.QIdx < -1 {
		s.QIdx = -1
	}
	if s.QIdx > PlanLength {
		s.QIdx = PlanLength
	}
	normalizeTimer(&s.Timer)
	if s.Timer.StartedAt == nil {
		s.Active = false
	}

	// A stale persisted queue is trusted only where it still agrees with
	// reality; if the intersection is empty but fields are missing, fall
	// back to the full missing set.
	missing := c.missingFields()
	s.InfoQueue = intersectQueue(s.InfoQueue, missing)
	if len(s.InfoQueue) == 0 && len(missing) > 0 {
		s.InfoQueue = append([]string{}, missing...)
	}
	if len(s.InfoQueue) > 0 {
		s.CurrentInfoField = s.InfoQueue[0]
	} else {
		s.CurrentInfoField = ""
	}
	s.Stage = c.deriveStage()

	if len(s.ChatLog) == 0 {
		s.ChatLog = append(s.ChatLog, ChatEntry{Sender: SenderSystem, Text: greeting(c.Name)})
		switch {
		case s.CurrentInfoField != "":
			s.appendSystemLine(fieldPrompts[s.CurrentInfoField])
		case s.Stage == StageReady:
			s.appendSystemLine(infoCompleteMessage)
		}
	}
}

func normalizeTimer(t *Timer) {
	t.Total = finiteOrZero(t.Total)
	t.Remaining = finiteOrZero(t.Remaining)
	if t.StartedAt != nil && t.StartedAt.IsZero() {
		t.StartedAt = nil
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func intersectQueue(queue, missing []string) []string {
	out := []string{}
	for _, f := range queue {
		for _, m := range missing {
			if f == m {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func greeting(name string) string {
	first := strings.TrimSpace(name)
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	if first == "" {
		return "Hi there! Let's get you set up before the interview begins."
	}
	return fmt.Sprintf("Hi %s! Let's get you set up before the interview begins.", first)
}
