package groq

import (
	"fmt"
	"strings"

	"github.com/G26karthik/AI-Interview-Assistant/internal/llm"
)

var levelBriefs = map[string]string{
	"Easy":   "Ask for a hands-on explanation of fundamentals or a small improvement to something they have shipped.",
	"Medium": "Pose a realistic scenario that stretches their recent project experience and requires trade-off thinking.",
	"Hard":   "Dig into system design or deep debugging that stresses scalability, reliability, or performance in a real production context.",
}

func buildQuestionPrompt(level, role, context string) string {
	ctx := ""
	if context != "" {
		ctx = fmt.Sprintf("Candidate Resume:\n%s\n---", context)
	}
	tone, ok := levelBriefs[level]
	if !ok {
		tone = levelBriefs["Medium"]
	}
	return fmt.Sprintf(`You are a principal engineer conducting a real-time interview for a %s candidate. Speak exactly as you would in a live conversation.
%s
Craft one follow-up question that:
- explicitly references the candidate's actual work history or tech stack;
- matches the %s difficulty (%s);
- avoids stock phrases like "Design a scalable system" unless you anchor it to something they shipped;
- fits in one or two sentences and sounds natural ("Can you walk me through...", "How would you handle...").
Do not add numbering, preambles, or quotes. Respond with the question only.`, role, ctx, level, tone)
}

const scoreSystemPrompt = `You are a strict technical interviewer. Respond ONLY with JSON {"numeric":0-10,"feedback":"short critique"}.`

func buildScoreUserPrompt(question, answer string) string {
	return fmt.Sprintf("Question: %s\nAnswer: %s", question, answer)
}

const summarySystemPrompt = `You are a senior technical interviewer. Write a detailed, actionable summary for the candidate. Your summary MUST include: (1) a clear statement of strengths, (2) at least one specific area for improvement, and (3) a concrete suggestion for next steps or learning. Be direct, professional, and avoid generic praise.`

func buildSummaryUserPrompt(input llm.SummaryInput) string {
	role := input.Role
	if role == "" {
		role = "Full Stack"
	}
	lines := make([]string, 0, len(input.Answers))
	for i, a := range input.Answers {
		numeric := "NA"
		if a.Numeric != nil {
			numeric = fmt.Sprintf("%g", *a.Numeric)
		}
		lines = append(lines, fmt.Sprintf("Q%d(%s):%s|Ans:%s|Score:%s",
			i+1, a.Level, truncate(a.Q, 60), truncate(a.A, 80), numeric))
	}
	return fmt.Sprintf("Role: %s\nWeightedScore:%g\nData:\n%s", role, input.WeightedScore, strings.Join(lines, " \n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
