package interview

import "math"

// Level is the difficulty of a plan entry.
type Level string

const (
	LevelEasy   Level = "Easy"
	LevelMedium Level = "Medium"
	LevelHard   Level = "Hard"
)

// PlanEntry is one slot of the fixed interview schedule.
type PlanEntry struct {
	Level   Level `json:"level"`
	Seconds int   `json:"seconds"`
}

// QuestionPlan is the fixed six-question schedule: two easy, two medium,
// two hard. Index bounds and score weighting throughout the package assume
// exactly this table.
var QuestionPlan = []PlanEntry{
	{Level: LevelEasy, Seconds: 20},
	{Level: LevelEasy, Seconds: 20},
	{Level: LevelMedium, Seconds: 60},
	{Level: LevelMedium, Seconds: 60},
	{Level: LevelHard, Seconds: 120},
	{Level: LevelHard, Seconds: 120},
}

// PlanLength is the number of questions in a full interview.
var PlanLength = len(QuestionPlan)

func weightFor(level Level) float64 {
	switch level {
	case LevelEasy:
		return 1
	case LevelMedium:
		return 1.5
	case LevelHard:
		return 2
	default:
		return 1
	}
}

func levelAt(idx int) Level {
	if idx >= 0 && idx < len(QuestionPlan) {
		return QuestionPlan[idx].Level
	}
	if idx < 2 {
		return LevelEasy
	}
	if idx < 4 {
		return LevelMedium
	}
	return LevelHard
}

// WeightedScore computes the difficulty-weighted mean of the recorded
// answers, rounded to one decimal. Returns nil when no answers exist.
// Unscored answers contribute zero, matching the topic aggregates.
func WeightedScore(answers []Answer) *float64 {
	if len(answers) == 0 {
		return nil
	}
	var sum, weights float64
	for i, a := range answers {
		level := a.Level
		if level == "" {
			level = levelAt(i)
		}
		w := weightFor(level)
		if a.Score != nil {
			sum += a.Score.Numeric * w
		}
		weights += w
	}
	if weights == 0 {
		zero := 0.0
		return &zero
	}
	rounded := math.Round(sum/weights*10) / 10
	return &rounded
}
