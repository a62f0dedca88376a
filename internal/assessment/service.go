package assessment

import (
	"context"
	"strings"

	"github.com/assessgen/backend/internal/generator"
	"github.com/assessgen/backend/internal/models"
	"go.uber.org/zap"
)

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	SaveQuestions(ctx context.Context, moduleID string, questions []models.QuestionCandidate) (*models.SaveQuestionsResponse, error)
	ListQuestions(ctx context.Context, moduleID string) ([]models.StoredQuestion, error)
	CorrectAnswers(ctx context.Context, moduleID string) (map[string]string, error)
	SaveResult(ctx context.Context, r *models.AssessmentResult) error
	ListResults(ctx context.Context, moduleID string) ([]models.AssessmentResult, error)
}

// TextSource resolves a PDF reference to its text.
type TextSource interface {
	Extract(ctx context.Context, ref string) (string, error)
}

// QuestionGenerator produces candidates from text. *generator.Pipeline
// implements it.
type QuestionGenerator interface {
	Generate(ctx context.Context, text string, target int) []models.QuestionCandidate
	ModelLoaded() bool
}

type Service struct {
	repo   Repository
	source TextSource
	gen    QuestionGenerator
	log    *zap.Logger
}

func NewService(repo Repository, source TextSource, gen QuestionGenerator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, source: source, gen: gen, log: log}
}

func (s *Service) ModelLoaded() bool {
	return s.gen.ModelLoaded()
}

// GenerateQuestions extracts the PDF's text and runs it through the
// generation pipeline. Extraction failures come back as
// *extract.ExtractionError; an empty result is ErrNoQuestions.
func (s *Service) GenerateQuestions(ctx context.Context, req models.GenerateQuestionsRequest) (*models.GenerateQuestionsResponse, error) {
	if strings.TrimSpace(req.PDFURL) == "" {
		return nil, invalid("pdfUrl is required")
	}

	s.log.Info("extracting text from PDF", zap.String("module_id", req.ModuleID), zap.String("pdf_url", req.PDFURL))
	text, err := s.source.Extract(ctx, req.PDFURL)
	if err != nil {
		return nil, err
	}

	questions := s.gen.Generate(ctx, text, models.MaxQuestions)
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &models.GenerateQuestionsResponse{Questions: questions}, nil
}

// ScoreAssessment scores answers against the module's stored questions and
// records the result. Recording is best effort.
func (s *Service) ScoreAssessment(ctx context.Context, req models.ScoreAssessmentRequest) (*models.ScoreResult, error) {
	if strings.TrimSpace(req.ModuleID) == "" {
		return nil, invalid("moduleId is required")
	}

	correct, err := s.repo.CorrectAnswers(ctx, req.ModuleID)
	if err != nil {
		return nil, &PersistenceError{Op: "load correct answers", Err: err}
	}

	result := Score(correct, req.Answers)

	record := &models.AssessmentResult{
		ModuleID:     req.ModuleID,
		AssessmentID: req.AssessmentID,
		TraineeID:    req.TraineeID,
		Score:        result.Score,
		Total:        result.Total,
		Percentage:   result.Percentage,
		Passed:       Passed(result),
	}
	if err := s.repo.SaveResult(ctx, record); err != nil {
		s.log.Warn("failed to record assessment result",
			zap.String("module_id", req.ModuleID),
			zap.String("trainee_id", req.TraineeID),
			zap.Error(err))
	}

	return &result, nil
}

// SaveQuestions stores candidates for a module under a new assessment.
// Every candidate must have a question and exactly four options.
func (s *Service) SaveQuestions(ctx context.Context, moduleID string, questions []models.QuestionCandidate) (*models.SaveQuestionsResponse, error) {
	if strings.TrimSpace(moduleID) == "" {
		return nil, invalid("moduleId is required")
	}
	if len(questions) == 0 {
		return nil, invalid("no questions in payload")
	}
	for i, q := range questions {
		if err := generator.CheckCandidate(q); err != nil {
			return nil, invalid("question %d: %v", i, err)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, invalid("question %d: correctAnswer is required", i)
		}
	}

	resp, err := s.repo.SaveQuestions(ctx, moduleID, questions)
	if err != nil {
		return nil, &PersistenceError{Op: "save questions", Err: err}
	}
	s.log.Info("questions saved",
		zap.String("module_id", moduleID),
		zap.String("assessment_id", resp.AssessmentID),
		zap.Int("count", len(resp.Questions)))
	return resp, nil
}

// ListQuestions returns a module's questions with correct answers removed.
func (s *Service) ListQuestions(ctx context.Context, moduleID string) (*models.QuestionListResponse, error) {
	questions, err := s.repo.ListQuestions(ctx, moduleID)
	if err != nil {
		return nil, &PersistenceError{Op: "list questions", Err: err}
	}
	if questions == nil {
		questions = []models.StoredQuestion{}
	}
	for i := range questions {
		questions[i].CorrectAnswer = ""
	}
	return &models.QuestionListResponse{Questions: questions, Total: len(questions)}, nil
}

func (s *Service) ListResults(ctx context.Context, moduleID string) ([]models.AssessmentResult, error) {
	results, err := s.repo.ListResults(ctx, moduleID)
	if err != nil {
		return nil, &PersistenceError{Op: "list results", Err: err}
	}
	if results == nil {
		results = []models.AssessmentResult{}
	}
	return results, nil
}
