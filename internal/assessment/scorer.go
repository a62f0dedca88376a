package assessment

import (
	"math"
	"strings"

	"github.com/assessgen/backend/internal/models"
)

// Score compares answers with the stored correct answers. Matching ignores
// case and surrounding whitespace. Submissions for unknown question ids are
// ignored, and only the first submission per question id counts, so score
// never exceeds total. Percentage is rounded to two places, halves to even.
func Score(correct map[string]string, answers []models.AnswerSubmission) models.ScoreResult {
	total := len(correct)
	seen := make(map[string]bool, len(answers))

	score := 0
	for _, a := range answers {
		want, ok := correct[a.QuestionID]
		if !ok || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		if normalizeAnswer(a.Answer) == normalizeAnswer(want) {
			score++
		}
	}

	var percentage float64
	if total > 0 {
		percentage = math.RoundToEven(float64(score)/float64(total)*100*100) / 100
	}

	return models.ScoreResult{Score: score, Total: total, Percentage: percentage}
}

// Passed reports whether a result reaches the pass mark.
func Passed(r models.ScoreResult) bool {
	return r.Total > 0 && r.Percentage >= models.PassPercentage
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
