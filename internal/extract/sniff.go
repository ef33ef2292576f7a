package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d[\d\s-]{7,}\d)`)
)

// Fields holds the contact details sniffed out of resume text. Empty
// strings mark fields the text did not reveal.
type Fields struct {
	Name  string
	Email string
	Phone string
}

// SniffFields scans extracted resume text for the candidate's name, email,
// and phone number. The name heuristic takes the first line that opens
// with two capitalized words.
func SniffFields(text string) Fields {
	var f Fields
	f.Email = emailPattern.FindString(text)
	if m := phonePattern.FindString(text); m != "" {
		f.Phone = strings.TrimSpace(m)
	}
	f.Name = sniffName(text)
	return f
}

func sniffName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsRune(line, '@') {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			continue
		}
		if isCapitalizedWord(tokens[0]) && isCapitalizedWord(tokens[1]) {
			return tokens[0] + " " + tokens[1]
		}
	}
	return ""
}

func isCapitalizedWord(s string) bool {
	runes := []rune(s)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
