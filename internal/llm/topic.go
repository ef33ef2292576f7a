package llm

import (
	"regexp"
	"strings"
)

var topicRules = []struct {
	topic   string
	pattern *regexp.Regexp
}{
	{"React", regexp.MustCompile(`hook|state|jsx|component`)},
	{"API", regexp.MustCompile(`express|middleware|jwt|api|endpoint|rest`)},
	{"Performance", regexp.MustCompile(`scal|performance|cache|caching|optimiz`)},
	{"RealTime", regexp.MustCompile(`websocket|real-time|realtime`)},
	{"Database", regexp.MustCompile(`database|index|schema|query`)},
}

// ClassifyTopic buckets a question into a coarse topic label by keyword.
func ClassifyTopic(question string) string {
	q := strings.ToLower(question)
	for _, rule := range topicRules {
		if rule.pattern.MatchString(q) {
			return rule.topic
		}
	}
	return "General"
}
