package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/G26karthik/AI-Interview-Assistant/internal/llm"
	"github.com/G26karthik/AI-Interview-Assistant/internal/shared/telemetry"
)

const (
	resumeContextLimit = 2500
	recentAnswerCount  = 2

	// Streamed questions only start the countdown once enough text has
	// arrived to be readable.
	streamStartThreshold = 5
)

// Service orchestrates the interview flow: question generation (streaming
// with a synchronous fallback), answer scoring with degraded-result
// queueing, and the end-of-interview summary.
type Service struct {
	Store      *Store
	Generator  llm.Generator
	Scorer     llm.Scorer
	Summarizer llm.Summarizer
	Mode       llm.Mode
	Role       string

	// Wake nudges the reconciliation loop after an answer is queued.
	Wake func()
}

// Availability reports the AI mode flag callers must check before
// invoking question or scoring flows.
func (s *Service) Availability() llm.Mode {
	return s.Mode
}

// NextQuestion produces the question for the session's current plan entry.
// Tokens stream through onToken (may be nil) and into the live session
// field, index-tagged so late chunks for an advanced-past question are
// discarded by the store. If streaming yields nothing a synchronous
// generation runs as fallback. The countdown starts once question text is
// available, unless the session was deliberately paused.
func (s *Service) NextQuestion(ctx context.Context, id string, onToken func(string)) (string, error) {
	if s.Mode != llm.ModeLive || s.Generator == nil {
		return "", ErrUnavailable
	}
	c, ok := s.Store.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	sess := c.Session
	if sess.Stage != StageInterview || sess.QIdx < 0 || sess.QIdx >= PlanLength {
		return "", fmt.Errorf("no question pending for stage %s", sess.Stage)
	}
	if sess.CurrentQuestion != "" {
		return sess.CurrentQuestion, nil
	}

	idx := sess.QIdx
	level := QuestionPlan[idx].Level
	promptContext := buildPromptContext(c)

	wasPaused := sess.Paused
	wasActive := sess.Active
	resumed := false
	startClock := func() {
		if resumed || wasPaused || wasActive {
			return
		}
		resumed = true
		s.Store.Resume(ctx, id, time.Now())
	}

	var assembled strings.Builder
	err := s.Generator.Stream(ctx, string(level), s.Role, promptContext, func(token string) {
		assembled.WriteString(token)
		s.Store.SetCurrentQuestion(ctx, id, assembled.String(), false, level, idx)
		if onToken != nil {
			onToken(token)
		}
		if assembled.Len() > streamStartThreshold {
			startClock()
		}
	})
	if err != nil {
		telemetry.Error("question.stream", map[string]any{"candidate_id": id, "error": err.Error()})
	}

	question := assembled.String()
	if question == "" {
		question, err = s.Generator.Generate(ctx, string(level), s.Role, promptContext)
		if err != nil {
			return "", fmt.Errorf("generate question: %w", err)
		}
		s.Store.SetCurrentQuestion(ctx, id, question, false, level, idx)
		startClock()
	}
	s.Store.SetCurrentQuestion(ctx, id, question, true, level, idx)
	return question, nil
}

// SubmitAnswer scores and records the answer for the current question.
// A scoring failure records the answer unscored and queues it for
// reconciliation instead of blocking progression. When the final answer
// lands, the summarizer runs and the score/summary pair is attached.
func (s *Service) SubmitAnswer(ctx context.Context, id, answer string, auto bool) (Candidate, error) {
	c, ok := s.Store.Get(id)
	if !ok {
		return Candidate{}, ErrNotFound
	}
	if c.Finished || c.Session.QIdx >= PlanLength {
		return c, nil
	}
	if !auto && strings.TrimSpace(answer) == "" {
		return c, ErrEmptyAnswer
	}

	question := c.Session.CurrentQuestion
	topic := llm.ClassifyTopic(question)

	toScore := answer
	if toScore == "" {
		toScore = autoAnswerPlaceholder
	}
	var scorePtr *Score
	degraded := true
	if s.Scorer != nil {
		scored, err := s.Scorer.Score(ctx, question, toScore)
		if err == nil {
			scorePtr = &Score{Numeric: scored.Numeric, Feedback: scored.Feedback}
			degraded = false
		}
	}

	answerIdx := len(c.Session.Answers)
	finished := s.Store.RecordAnswer(ctx, id, question, answer, scorePtr, topic, time.Now(), auto)
	if degraded {
		s.Store.EnqueuePending(ctx, id, answerIdx)
		if s.Wake != nil {
			s.Wake()
		}
	}
	if finished {
		s.summarize(ctx, id)
	}

	updated, _ := s.Store.Get(id)
	return updated, nil
}

// Finish ends the interview early and runs the summary step.
func (s *Service) Finish(ctx context.Context, id string) (Candidate, error) {
	c, ok := s.Store.Get(id)
	if !ok {
		return Candidate{}, ErrNotFound
	}
	if !c.Finished {
		s.Store.Finish(ctx, id, time.Now())
		s.summarize(ctx, id)
	}
	updated, _ := s.Store.Get(id)
	return updated, nil
}

func (s *Service) summarize(ctx context.Context, id string) {
	c, ok := s.Store.Get(id)
	if !ok {
		return
	}
	weighted := 0.0
	if c.Score != nil {
		weighted = *c.Score
	}
	if s.Summarizer == nil {
		s.Store.SetScoreSummary(ctx, id, weighted, fmt.Sprintf("Candidate achieved weighted score %g.", weighted))
		return
	}
	input := llm.SummaryInput{
		Role:          s.Role,
		WeightedScore: weighted,
		Answers:       make([]llm.AnswerView, 0, len(c.Session.Answers)),
	}
	for _, a := range c.Session.Answers {
		view := llm.AnswerView{Q: a.Q, A: a.A, Level: string(a.Level)}
		if a.Score != nil {
			n := a.Score.Numeric
			view.Numeric = &n
		}
		input.Answers = append(input.Answers, view)
	}
	res, err := s.Summarizer.Summarize(ctx, input)
	if err != nil {
		telemetry.Error("summary", map[string]any{"candidate_id": id, "error": err.Error()})
		res = llm.SummaryResult{Score: weighted, Summary: fmt.Sprintf("Candidate achieved weighted score %g.", weighted)}
	}
	s.Store.SetScoreSummary(ctx, id, res.Score, res.Summary)
}

// buildPromptContext compresses the resume and the last answers into the
// generator's context window.
func buildPromptContext(c Candidate) string {
	resume := c.ResumeText
	if len(resume) > resumeContextLimit {
		resume = resume[:resumeContextLimit]
	}
	answers := c.Session.Answers
	start := len(answers) - recentAnswerCount
	if start < 0 {
		start = 0
	}
	var recent []string
	for _, a := range answers[start:] {
		numeric := "NA"
		if a.Score != nil {
			numeric = fmt.Sprintf("%g", a.Score.Numeric)
		}
		recent = append(recent, fmt.Sprintf("PrevQ:%s | Ans:%s | Score:%s",
			clip(a.Q, 70), clip(a.A, 60), numeric))
	}
	parts := []string{}
	if resume != "" {
		parts = append(parts, resume)
	}
	if len(recent) > 0 {
		parts = append(parts, strings.Join(recent, "\n"))
	}
	return strings.Join(parts, "\n")
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
