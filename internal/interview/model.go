package interview

import (
	"encoding/json"
	"time"
)

// Stage is the coarse phase of a candidate's session. It is derived from
// candidate data, never set directly; see recompute.
type Stage string

const (
	StageCollecting Stage = "collecting"
	StageReady      Stage = "ready"
	StageInterview  Stage = "interview"
	StageReview     Stage = "review"
)

// ChatSender identifies who authored a chat log entry.
type ChatSender string

const (
	SenderSystem    ChatSender = "system"
	SenderCandidate ChatSender = "candidate"
)

// ChatEntry is one line of the interview transcript chat.
type ChatEntry struct {
	Sender ChatSender `json:"sender"`
	Text   string     `json:"text"`
}

// Score is a numeric 0-10 evaluation with short feedback.
type Score struct {
	Numeric  float64 `json:"numeric"`
	Feedback string  `json:"feedback"`
}

// Answer is one recorded question/answer pair. Score is nil until a score
// has been attached; once set it is write-once.
type Answer struct {
	Q     string `json:"q"`
	A     string `json:"a"`
	Score *Score `json:"score"`
	Level Level  `json:"level"`
	Topic string `json:"topic,omitempty"`
}

// TopicStat is a running sum/count of per-topic numeric scores.
type TopicStat struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Session is the per-candidate interview state machine record.
type Session struct {
	Stage            Stage       `json:"stage"`
	QIdx             int         `json:"qIdx"`
	Answers          []Answer    `json:"answers"`
	ChatLog          []ChatEntry `json:"chatLog"`
	InfoQueue        []string    `json:"infoQueue"`
	CurrentInfoField string      `json:"currentInfoField"`
	CurrentQuestion  string      `json:"currentQuestion"`
	Active           bool        `json:"active"`
	Paused           bool        `json:"paused"`
	NeedsWelcome     bool        `json:"needsWelcome"`
	LastPausedAt     *time.Time  `json:"lastPausedAt"`
	Timer            Timer       `json:"timer"`
}

// Candidate is one interviewee and the owner of a Session.
type Candidate struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	Phone      string               `json:"phone"`
	ResumeText string               `json:"resumeText"`
	Finished   bool                 `json:"finished"`
	Score      *float64             `json:"score"`
	Summary    string               `json:"summary"`
	TopicStats map[string]TopicStat `json:"topicStats"`
	Session    *Session             `json:"session"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// PendingScore marks an answer awaiting an asynchronous (re)score.
type PendingScore struct {
	CandidateID string `json:"candidateId"`
	AnswerIndex int    `json:"answerIndex"`
}

// Snapshot is the whole persisted store state.
type Snapshot struct {
	Candidates    []*Candidate   `json:"candidates"`
	PendingScores []PendingScore `json:"pendingScores"`
}

// Seed carries the initial candidate fields pulled from a resume.
type Seed struct {
	Name       string
	Email      string
	Phone      string
	ResumeText string
}

func newSession() *Session {
	return &Session{
		QIdx:      -1,
		Answers:   []Answer{},
		ChatLog:   []ChatEntry{},
		InfoQueue: []string{},
		Timer:     Timer{},
	}
}

// Clone returns a deep copy so readers never alias store-owned state.
func (c *Candidate) Clone() Candidate {
	out := *c
	if c.Score != nil {
		v := *c.Score
		out.Score = &v
	}
	if c.TopicStats != nil {
		out.TopicStats = make(map[string]TopicStat, len(c.TopicStats))
		for k, v := range c.TopicStats {
			out.TopicStats[k] = v
		}
	}
	if c.Session != nil {
		s := c.Session.clone()
		out.Session = s
	}
	return out
}

func (s *Session) clone() *Session {
	out := *s
	out.Answers = make([]Answer, len(s.Answers))
	for i, a := range s.Answers {
		out.Answers[i] = a
		if a.Score != nil {
			sc := *a.Score
			out.Answers[i].Score = &sc
		}
	}
	out.ChatLog = append([]ChatEntry(nil), s.ChatLog...)
	out.InfoQueue = append([]string(nil), s.InfoQueue...)
	if s.LastPausedAt != nil {
		ts := *s.LastPausedAt
		out.LastPausedAt = &ts
	}
	if s.Timer.StartedAt != nil {
		ts := *s.Timer.StartedAt
		out.Timer.StartedAt = &ts
	}
	return &out
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Candidates:    make([]*Candidate, len(s.Candidates)),
		PendingScores: append([]PendingScore(nil), s.PendingScores...),
	}
	for i, c := range s.Candidates {
		cc := c.Clone()
		out.Candidates[i] = &cc
	}
	return out
}

// UnmarshalJSON decodes a persisted session leniently: any field of the
// wrong shape falls back to its zero form instead of failing the load.
func (s *Session) UnmarshalJSON(data []byte) error {
	*s = *newSession()
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	decodeField(raw, "stage", &s.Stage)
	decodeField(raw, "qIdx", &s.QIdx)
	decodeField(raw, "answers", &s.Answers)
	decodeField(raw, "chatLog", &s.ChatLog)
	decodeField(raw, "infoQueue", &s.InfoQueue)
	decodeField(raw, "currentInfoField", &s.CurrentInfoField)
	decodeField(raw, "currentQuestion", &s.CurrentQuestion)
	decodeField(raw, "active", &s.Active)
	decodeField(raw, "paused", &s.Paused)
	decodeField(raw, "needsWelcome", &s.NeedsWelcome)
	decodeField(raw, "lastPausedAt", &s.LastPausedAt)
	decodeField(raw, "timer", &s.Timer)
	if s.Answers == nil {
		s.Answers = []Answer{}
	}
	if s.ChatLog == nil {
		s.ChatLog = []ChatEntry{}
	}
	if s.InfoQueue == nil {
		s.InfoQueue = []string{}
	}
	return nil
}

func decodeField[T any](raw map[string]json.RawMessage, key string, dst *T) {
	data, ok := raw[key]
	if !ok || len(data) == 0 {
		return
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}
	*dst = v
}
