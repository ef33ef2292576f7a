package llm

import (
	"context"
	"errors"
)

// Mode reports whether the AI collaborators are configured. Callers must
// check it before invoking question or scoring flows; when unavailable,
// manual field capture still works but interview progression is blocked.
type Mode string

const (
	ModeLive        Mode = "LIVE"
	ModeUnavailable Mode = "UNAVAILABLE"
)

// Score is a numeric 0-10 evaluation with short feedback.
type Score struct {
	Numeric  float64 `json:"numeric"`
	Feedback string  `json:"feedback"`
}

// ErrScoreDegraded marks a Score that was synthesized after a scoring
// failure (network, malformed model output). The score is still usable;
// the error lets callers queue the answer for reconciliation.
var ErrScoreDegraded = errors.New("score degraded")

// Generator produces interview questions for a difficulty level, target
// role, and candidate context (resume excerpt plus recent answers).
type Generator interface {
	Generate(ctx context.Context, level, role, promptContext string) (string, error)
	// Stream delivers incremental question text to onToken and returns
	// once the stream completes. There is no explicit cancel beyond ctx.
	Stream(ctx context.Context, level, role, promptContext string, onToken func(string)) error
}

// Scorer evaluates an answer. Implementations never propagate failures:
// they return a degraded zero score with explanatory feedback alongside
// ErrScoreDegraded so the state machine can always proceed.
type Scorer interface {
	Score(ctx context.Context, question, answer string) (Score, error)
}

// AnswerView is the compressed per-answer view fed to the summarizer.
type AnswerView struct {
	Q       string
	A       string
	Level   string
	Numeric *float64
}

// SummaryInput carries everything the summarizer needs; the weighted
// score is computed by the caller from the question plan.
type SummaryInput struct {
	Role          string
	WeightedScore float64
	Answers       []AnswerView
}

// SummaryResult is the final score/summary pair for a candidate.
type SummaryResult struct {
	Score   float64
	Summary string
}

// Summarizer writes the end-of-interview candidate summary. On failure it
// returns a usable fallback result rather than an error.
type Summarizer interface {
	Summarize(ctx context.Context, input SummaryInput) (SummaryResult, error)
}
