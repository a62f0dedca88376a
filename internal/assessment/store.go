package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assessgen/backend/internal/models"
	"github.com/google/uuid"
)

// Store persists module questions and assessment results. Queries use $N
// placeholders, which both lib/pq and modernc sqlite accept.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Questions ───────────────────────────────────────────

// SaveQuestions stores questions under a new assessment id, in order.
func (s *Store) SaveQuestions(ctx context.Context, moduleID string, questions []models.QuestionCandidate) (*models.SaveQuestionsResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	assessmentID := uuid.NewString()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assessments (id, module_id, question_count, created_at)
		 VALUES ($1, $2, $3, $4)`,
		assessmentID, moduleID, len(questions), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}

	stored := make([]models.StoredQuestion, 0, len(questions))
	for i, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}

		sq := models.StoredQuestion{
			ID:            uuid.NewString(),
			ModuleID:      moduleID,
			AssessmentID:  assessmentID,
			Position:      i,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO module_questions
			 (id, module_id, assessment_id, position, question, options, correct_answer, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sq.ID, moduleID, assessmentID, i, q.Question, string(options), q.CorrectAnswer, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}
		stored = append(stored, sq)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &models.SaveQuestionsResponse{AssessmentID: assessmentID, Questions: stored}, nil
}

// ListQuestions returns every stored question for a module, oldest
// assessment first, in saved order.
func (s *Store) ListQuestions(ctx context.Context, moduleID string) ([]models.StoredQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, assessment_id, position, question, options, correct_answer
		 FROM module_questions WHERE module_id = $1
		 ORDER BY created_at, assessment_id, position`,
		moduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.StoredQuestion
	for rows.Next() {
		var q models.StoredQuestion
		var options string
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.AssessmentID, &q.Position,
			&q.Question, &options, &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CorrectAnswers maps question id to correct answer for every question
// stored under moduleID.
func (s *Store) CorrectAnswers(ctx context.Context, moduleID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, correct_answer FROM module_questions WHERE module_id = $1`,
		moduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query correct answers: %w", err)
	}
	defer rows.Close()

	answers := make(map[string]string)
	for rows.Next() {
		var id, answer string
		if err := rows.Scan(&id, &answer); err != nil {
			return nil, fmt.Errorf("scan correct answer: %w", err)
		}
		answers[id] = answer
	}
	return answers, rows.Err()
}

// ── Results ─────────────────────────────────────────────

func (s *Store) SaveResult(ctx context.Context, r *models.AssessmentResult) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessment_results
		 (id, module_id, assessment_id, trainee_id, score, total, percentage, passed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.ModuleID, r.AssessmentID, r.TraineeID, r.Score, r.Total, r.Percentage, r.Passed, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns a module's results, newest first.
func (s *Store) ListResults(ctx context.Context, moduleID string) ([]models.AssessmentResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, module_id, assessment_id, trainee_id, score, total, percentage, passed, created_at
		 FROM assessment_results WHERE module_id = $1
		 ORDER BY created_at DESC`,
		moduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []models.AssessmentResult
	for rows.Next() {
		var r models.AssessmentResult
		if err := rows.Scan(&r.ID, &r.ModuleID, &r.AssessmentID, &r.TraineeID,
			&r.Score, &r.Total, &r.Percentage, &r.Passed, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
