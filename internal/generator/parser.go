package generator

import (
	"strings"

	"github.com/assessgen/backend/internal/models"
)

// Tier names the fallback tier that produced a candidate.
type Tier string

const (
	TierModel  Tier = "model"
	TierSimple Tier = "simple"
	TierBatch  Tier = "batch"
)

var optionMarkers = []string{"A)", "B)", "C)", "D)"}

// ParseGenerated turns loosely formatted model output into a candidate.
//
// Lines are matched case-insensitively, first match wins:
//   - "question:"          -> text after the first colon is the question
//   - "A)" / "B)" / "C)" / "D)" -> the trimmed line is appended as an option
//   - "correct" or "answer:" -> text after the last colon is the correct answer;
//     "correct" only counts at the start of a word, so "incorrect" does not match
//
// No question line means no candidate. Fewer than four options means the
// parsed fields are discarded and SimpleQuestion(source) is returned in
// their place, reported as TierSimple.
func ParseGenerated(generated, source string) (models.QuestionCandidate, Tier, bool) {
	var question, correct string
	var options []string

	for _, line := range strings.Split(generated, "\n") {
		upper := strings.ToUpper(line)
		switch {
		case strings.Contains(upper, "QUESTION:"):
			_, after, _ := strings.Cut(line, ":")
			question = strings.TrimSpace(after)
		case containsAny(upper, optionMarkers):
			options = append(options, strings.TrimSpace(line))
		case containsWordPrefix(upper, "CORRECT") || strings.Contains(upper, "ANSWER:"):
			correct = afterLastColon(line)
		}
	}

	if question == "" {
		return models.QuestionCandidate{}, "", false
	}

	if len(options) < models.OptionCount {
		q, ok := SimpleQuestion(source)
		return q, TierSimple, ok
	}

	options = options[:models.OptionCount]
	if correct == "" {
		correct = options[0]
	}
	return models.QuestionCandidate{
		Question:      question,
		Options:       options,
		CorrectAnswer: correct,
	}, TierModel, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// containsWordPrefix reports whether word occurs in s not preceded by a letter.
func containsWordPrefix(s, word string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		at := i + j
		if at == 0 || !isASCIILetter(s[at-1]) {
			return true
		}
		i = at + len(word)
	}
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func afterLastColon(line string) string {
	if i := strings.LastIndex(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return strings.TrimSpace(line)
}
