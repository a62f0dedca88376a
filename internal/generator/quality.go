package generator

import (
	"fmt"
	"strings"

	"github.com/assessgen/backend/internal/models"
)

// StructuralError lists every structural rule a candidate breaks.
type StructuralError struct {
	Errors []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("invalid question: %s", strings.Join(e.Errors, "; "))
}

// CheckCandidate enforces the invariant every emitted question must hold:
// a non-empty question and exactly four options.
func CheckCandidate(q models.QuestionCandidate) error {
	var errs []string

	if strings.TrimSpace(q.Question) == "" {
		errs = append(errs, "empty question")
	}
	if len(q.Options) != models.OptionCount {
		errs = append(errs, fmt.Sprintf("expected %d options, got %d", models.OptionCount, len(q.Options)))
	}

	if len(errs) > 0 {
		return &StructuralError{Errors: errs}
	}
	return nil
}

// AnswerInOptions reports whether the correct answer is one of the options.
// The parser does not enforce this; it is surfaced as a warning only.
func AnswerInOptions(q models.QuestionCandidate) bool {
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}
