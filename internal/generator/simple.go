package generator

import "github.com/assessgen/backend/internal/models"

const (
	simpleFragmentLen = 50
	batchFragmentLen  = 60
)

// SimpleQuestion builds one templated question from the first sentence of
// text that is at least SimpleMinSentence characters long. It returns false
// when text has no such sentence. Identical input always yields an
// identical candidate.
func SimpleQuestion(text string) (models.QuestionCandidate, bool) {
	sentences := Sentences(text, SimpleMinSentence)
	if len(sentences) == 0 {
		return models.QuestionCandidate{}, false
	}

	fragment := truncate(sentences[0], simpleFragmentLen)
	options := []string{
		fragment + "...",
		"It is not mentioned.",
		"The text does not specify.",
		"None of the above.",
	}
	return models.QuestionCandidate{
		Question:      "What is mentioned about: " + fragment + "?",
		Options:       options,
		CorrectAnswer: options[0],
	}, true
}

// FallbackQuestions is the last tier: one templated question per sentence of
// at least BatchMinSentence characters, up to count questions. It never pads
// and never fails; the result may be empty.
func FallbackQuestions(text string, count int) []models.QuestionCandidate {
	sentences := Sentences(text, BatchMinSentence)
	if count < 0 {
		count = 0
	}
	if len(sentences) > count {
		sentences = sentences[:count]
	}

	questions := make([]models.QuestionCandidate, 0, len(sentences))
	for _, sentence := range sentences {
		if charLen(sentence) < BatchMinSentence {
			continue
		}
		fragment := truncate(sentence, batchFragmentLen)
		options := []string{
			fragment + "...",
			"This information is not provided.",
			"The material does not specify this.",
			"None of the above.",
		}
		questions = append(questions, models.QuestionCandidate{
			Question:      "According to the material, what is true about: " + fragment + "?",
			Options:       options,
			CorrectAnswer: options[0],
		})
	}
	return questions
}
