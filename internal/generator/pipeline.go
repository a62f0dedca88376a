package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assessgen/backend/internal/models"
	"github.com/assessgen/backend/internal/monitoring"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// minChunkLen is the trimmed length below which a chunk is skipped.
	minChunkLen = 50

	// maxPadAttempts bounds the padding loop.
	maxPadAttempts = 10
)

// ModelError wraps a failed model invocation for one chunk. It is absorbed
// by the pipeline and never returned to callers.
type ModelError struct {
	Chunk int
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model invocation for chunk %d: %v", e.Chunk, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// PipelineError is an unexpected failure in the model tier. The pipeline
// answers it by switching to the fallback batch generator.
type PipelineError struct {
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("question pipeline: %v", e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Pipeline turns source text into at most ten multiple-choice questions,
// degrading from model generation to templated questions.
type Pipeline struct {
	llm         LLMClient
	log         *zap.Logger
	timeout     time.Duration
	concurrency int
}

type PipelineOption func(*Pipeline)

// WithTimeout bounds each model invocation.
func WithTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.timeout = d }
}

// WithConcurrency sets how many chunks are sent to the model at once.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPipeline builds a pipeline around llm. A nil llm means the model
// capability is unavailable and every request uses the fallback batch.
func NewPipeline(llm LLMClient, log *zap.Logger, opts ...PipelineOption) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{llm: llm, log: log, concurrency: 1}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ModelLoaded reports whether a model capability was supplied.
func (p *Pipeline) ModelLoaded() bool {
	return p.llm != nil
}

// Generate returns at most min(target, 10) questions. It never fails; the
// result is empty when target is not positive or no tier could build a
// question from text.
func (p *Pipeline) Generate(ctx context.Context, text string, target int) (questions []models.QuestionCandidate) {
	if target <= 0 {
		return nil
	}
	if target > models.MaxQuestions {
		target = models.MaxQuestions
	}

	if p.llm == nil {
		return p.fallback(text, target)
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("question pipeline panicked, using fallback batch",
				zap.Error(&PipelineError{Err: fmt.Errorf("%v", r)}))
			questions = p.fallback(text, target)
		}
	}()

	questions, err := p.generateWithModel(ctx, text, target)
	if err != nil {
		p.log.Warn("question pipeline failed, using fallback batch", zap.Error(err))
		return p.fallback(text, target)
	}
	return questions
}

type chunkResult struct {
	question models.QuestionCandidate
	tier     Tier
	ok       bool
}

func (p *Pipeline) generateWithModel(ctx context.Context, text string, target int) ([]models.QuestionCandidate, error) {
	chunks := FirstChunks(text, DefaultChunkSize, target)
	results := make([]chunkResult, len(chunks))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, chunk := range chunks {
		if charLen(strings.TrimSpace(chunk)) < minChunkLen {
			continue
		}
		g.Go(func() error {
			r, err := p.questionForChunk(ctx, i, chunk)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	questions := make([]models.QuestionCandidate, 0, target)
	tiers := make([]Tier, 0, target)
	for i, r := range results {
		if !r.ok {
			continue
		}
		if err := CheckCandidate(r.question); err != nil {
			p.log.Warn("dropping malformed question", zap.Int("chunk", i), zap.Error(err))
			continue
		}
		if !AnswerInOptions(r.question) {
			p.log.Debug("correct answer is not one of the options", zap.Int("chunk", i))
		}
		questions = append(questions, r.question)
		tiers = append(tiers, r.tier)
	}

	for attempt := 0; attempt < maxPadAttempts && len(questions) < target && len(questions) < models.MaxQuestions; attempt++ {
		q, ok := SimpleQuestion(text)
		if !ok || containsQuestion(questions, q) {
			break
		}
		questions = append(questions, q)
		tiers = append(tiers, TierSimple)
	}

	if len(questions) > target {
		questions = questions[:target]
		tiers = tiers[:target]
	}

	p.record(tiers)
	return questions, nil
}

func (p *Pipeline) questionForChunk(ctx context.Context, index int, chunk string) (res chunkResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PipelineError{Err: fmt.Errorf("chunk %d: panic: %v", index, r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return chunkResult{}, &PipelineError{Err: err}
	}

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.llm.Generate(callCtx, BuildQuestionPrompt(chunk), GenerateMaxLength)
	if err != nil {
		monitoring.ModelInvocations.WithLabelValues("error").Inc()
		p.log.Warn("model invocation failed, using simple question", zap.Error(&ModelError{Chunk: index, Err: err}))
		q, ok := SimpleQuestion(chunk)
		return chunkResult{question: q, tier: TierSimple, ok: ok}, nil
	}
	monitoring.ModelInvocations.WithLabelValues("ok").Inc()

	q, tier, ok := ParseGenerated(resp.Content, chunk)
	if !ok {
		p.log.Debug("no question in model output", zap.Int("chunk", index))
	}
	return chunkResult{question: q, tier: tier, ok: ok}, nil
}

func (p *Pipeline) fallback(text string, target int) []models.QuestionCandidate {
	questions := FallbackQuestions(text, target)
	tiers := make([]Tier, len(questions))
	for i := range tiers {
		tiers[i] = TierBatch
	}
	p.record(tiers)
	return questions
}

func (p *Pipeline) record(tiers []Tier) {
	counts := make(map[Tier]int, 3)
	for _, t := range tiers {
		counts[t]++
		monitoring.CandidatesByTier.WithLabelValues(string(t)).Inc()
	}
	p.log.Info("questions generated",
		zap.Int("total", len(tiers)),
		zap.Int("model", counts[TierModel]),
		zap.Int("simple", counts[TierSimple]),
		zap.Int("batch", counts[TierBatch]),
	)
}

func containsQuestion(questions []models.QuestionCandidate, q models.QuestionCandidate) bool {
	for _, existing := range questions {
		if existing.Equal(q) {
			return true
		}
	}
	return false
}
