package interview

import (
	"fmt"
	"strings"
	"time"
)

var requiredFields = []string{"name", "email", "phone"}

const (
	infoCompleteMessage   = "Great, that's everything I need. Press Start Interview when you are ready."
	missingValueText      = "[not provided]"
	autoAnswerPlaceholder = "[No answer]"
)

var fieldPrompts = map[string]string{
	"name":  "Could you share your full name?",
	"email": "What email address can we reach you at?",
	"phone": "And a phone number, please?",
}

func (c *Candidate) fieldValue(field string) string {
	switch field {
	case "name":
		return c.Name
	case "email":
		return c.Email
	case "phone":
		return c.Phone
	}
	return ""
}

func (c *Candidate) setFieldValue(field, value string) bool {
	switch field {
	case "name":
		c.Name = value
	case "email":
		c.Email = value
	case "phone":
		c.Phone = value
	default:
		return false
	}
	return true
}

func (c *Candidate) missingFields() []string {
	var missing []string
	for _, f := range requiredFields {
		if strings.TrimSpace(c.fieldValue(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// recompute re-derives the info queue and stage from candidate field
// values, finished flag, and question index. Stage and queue are cached
// results, never inputs; every mutation that could affect them ends here.
func (c *Candidate) recompute() {
	s := c.Session
	missing := c.missingFields()
	s.InfoQueue = append([]string{}, missing...)
	if len(s.InfoQueue) > 0 {
		s.CurrentInfoField = s.InfoQueue[0]
	} else {
		s.CurrentInfoField = ""
	}
	s.Stage = c.deriveStage()
}

func (c *Candidate) deriveStage() Stage {
	s := c.Session
	if len(s.InfoQueue) > 0 {
		return StageCollecting
	}
	if c.Finished || s.QIdx >= PlanLength {
		return StageReview
	}
	if s.QIdx >= 0 {
		return StageInterview
	}
	return StageReady
}

// appendSystemLine adds a system chat entry unless the identical text is
// already the last entry, guarding against duplicate prompts from
// redundant deliveries.
func (s *Session) appendSystemLine(text string) {
	if n := len(s.ChatLog); n > 0 {
		last := s.ChatLog[n-1]
		if last.Sender == SenderSystem && last.Text == text {
			return
		}
	}
	s.ChatLog = append(s.ChatLog, ChatEntry{Sender: SenderSystem, Text: text})
}

// captureInfo records one contact field from the chat flow. Out-of-order
// captures are rejected as no-ops; an empty value is echoed with a
// placeholder but leaves the candidate field untouched.
func (c *Candidate) captureInfo(field, value string) {
	s := c.Session
	if field != s.CurrentInfoField || field == "" {
		return
	}
	value = strings.TrimSpace(value)
	echo := value
	if echo == "" {
		echo = missingValueText
	}
	s.ChatLog = append(s.ChatLog, ChatEntry{Sender: SenderCandidate, Text: echo})
	if value != "" {
		c.setFieldValue(field, value)
	}
	c.recompute()
	if s.CurrentInfoField == "" {
		s.appendSystemLine(infoCompleteMessage)
	} else {
		s.appendSystemLine(fieldPrompts[s.CurrentInfoField])
	}
}

// startInterview moves a ready session onto the first plan entry. Calling
// it on a session that already started is a no-op.
func (c *Candidate) startInterview(now time.Time) {
	s := c.Session
	if s.QIdx != -1 || len(c.missingFields()) > 0 {
		return
	}
	s.QIdx = 0
	s.withTimer(QuestionPlan[0].Seconds, now)
	c.recompute()
}

func questionLogPrefix(index int) string {
	return fmt.Sprintf("Question %d (", index+1)
}

// setCurrentQuestion applies either a streaming update of the live
// question (index must match the session's current one) or, with
// appendLog, finalizes the question into the transcript. Finalization is
// idempotent: an existing log line for the same question number is
// replaced in place. A longer text for an already-answered index backfills
// the recorded answer's question, repairing the race between streaming
// completion and submission.
func (c *Candidate) setCurrentQuestion(question string, appendLog bool, level Level, index int) {
	s := c.Session
	if index >= 0 && index < len(s.Answers) {
		prev := s.Answers[index].Q
		if len(question) > len(prev) && strings.HasPrefix(question, prev) {
			s.Answers[index].Q = question
		}
	}
	if appendLog {
		if level == "" {
			level = levelAt(index)
		}
		line := fmt.Sprintf("Question %d (%s): %s", index+1, level, question)
		prefix := questionLogPrefix(index)
		for i := range s.ChatLog {
			if s.ChatLog[i].Sender == SenderSystem && strings.HasPrefix(s.ChatLog[i].Text, prefix) {
				s.ChatLog[i].Text = line
				if index == s.QIdx {
					s.CurrentQuestion = question
				}
				return
			}
		}
		s.ChatLog = append(s.ChatLog, ChatEntry{Sender: SenderSystem, Text: line})
		if index == s.QIdx {
			s.CurrentQuestion = question
		}
		return
	}
	if index != s.QIdx {
		return
	}
	s.CurrentQuestion = question
}

// recordAnswer appends the answer for the current plan entry and advances
// the session. Returns true when the interview transitioned to review.
func (c *Candidate) recordAnswer(q, a string, score *Score, topic string, now time.Time, auto bool) bool {
	s := c.Session
	idx := len(s.Answers)
	if idx >= PlanLength {
		return false
	}
	if a == "" && auto {
		a = autoAnswerPlaceholder
	}
	s.Answers = append(s.Answers, Answer{
		Q:     q,
		A:     a,
		Score: score,
		Level: QuestionPlan[idx].Level,
		Topic: topic,
	})
	if topic != "" {
		if c.TopicStats == nil {
			c.TopicStats = map[string]TopicStat{}
		}
		stat := c.TopicStats[topic]
		if score != nil {
			stat.Total += score.Numeric
		}
		stat.Count++
		c.TopicStats[topic] = stat
	}
	s.CurrentQuestion = ""
	s.QIdx = len(s.Answers)
	if s.QIdx >= PlanLength {
		c.finish(now)
		c.Score = WeightedScore(s.Answers)
		return true
	}
	s.withTimer(QuestionPlan[s.QIdx].Seconds, time.Time{})
	c.recompute()
	return false
}

// pause freezes the session timer. Any reason other than an explicit
// manual pause flags the session for a welcome-back prompt.
func (c *Candidate) pause(reason string, now time.Time) {
	c.Session.pauseTimer(now)
	c.Session.NeedsWelcome = reason != "manual"
	c.recompute()
}

func (c *Candidate) resume(now time.Time) {
	c.Session.resumeTimer(now)
	c.recompute()
}

// finish ends the interview regardless of progress, freezing the timer.
func (c *Candidate) finish(now time.Time) {
	c.Finished = true
	s := c.Session
	s.Active = false
	s.Paused = false
	s.pauseTimer(now)
	s.NeedsWelcome = false
	c.recompute()
}
