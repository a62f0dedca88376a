package models

import "time"

// OptionCount is the number of options every emitted question carries.
const OptionCount = 4

// MaxQuestions is the hard ceiling on questions produced per generation request.
const MaxQuestions = 10

// PassPercentage is the mark at or above which an assessment result counts as passed.
const PassPercentage = 80.0

// QuestionCandidate is a fully formed multiple-choice question before it is
// persisted and given an id. Options are ordered; the first option is the
// default correct answer.
type QuestionCandidate struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Equal reports structural equality: same question, same options in the same
// order, same correct answer.
func (q QuestionCandidate) Equal(o QuestionCandidate) bool {
	if q.Question != o.Question || q.CorrectAnswer != o.CorrectAnswer {
		return false
	}
	if len(q.Options) != len(o.Options) {
		return false
	}
	for i := range q.Options {
		if q.Options[i] != o.Options[i] {
			return false
		}
	}
	return true
}

// StoredQuestion is a candidate after persistence assigned it an id.
type StoredQuestion struct {
	ID            string   `json:"id"`
	ModuleID      string   `json:"moduleId"`
	AssessmentID  string   `json:"assessmentId,omitempty"`
	Position      int      `json:"position"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

type AnswerSubmission struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type ScoreResult struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// AssessmentResult is the audit record written after an assessment is scored.
type AssessmentResult struct {
	ID           string    `json:"id"`
	ModuleID     string    `json:"moduleId"`
	AssessmentID string    `json:"assessmentId"`
	TraineeID    string    `json:"traineeId"`
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	Percentage   float64   `json:"percentage"`
	Passed       bool      `json:"passed"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ── Request / Response Bodies ───────────────────────────

type GenerateQuestionsRequest struct {
	ModuleID string `json:"moduleId"`
	PDFURL   string `json:"pdfUrl"`
}

type GenerateQuestionsResponse struct {
	Questions []QuestionCandidate `json:"questions"`
}

type ScoreAssessmentRequest struct {
	ModuleID     string             `json:"moduleId"`
	AssessmentID string             `json:"assessmentId"`
	TraineeID    string             `json:"traineeId"`
	Answers      []AnswerSubmission `json:"answers"`
}

type SaveQuestionsRequest struct {
	Questions []QuestionCandidate `json:"questions"`
}

type SaveQuestionsResponse struct {
	AssessmentID string           `json:"assessmentId"`
	Questions    []StoredQuestion `json:"questions"`
}

type QuestionListResponse struct {
	Questions []StoredQuestion `json:"questions"`
	Total     int              `json:"total"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}
