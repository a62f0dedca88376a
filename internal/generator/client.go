package generator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/assessgen/backend/internal/config"
)

// LLMClient is the text-generation capability behind the model tier.
// Implementations must be safe for concurrent use.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, maxLength int) (*LLMResponse, error)
}

// LLMResponse holds the raw generated text and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// ErrModelUnavailable reports that no generation capability could be built.
// The pipeline runs without one; this is the expected degraded mode.
var ErrModelUnavailable = errors.New("model unavailable")

// NewLLMClient builds the client selected by cfg.Provider. It returns an
// error wrapping ErrModelUnavailable when the provider is "none" or cannot
// be initialized.
func NewLLMClient(cfg config.ModelConfig) (LLMClient, string, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", fmt.Errorf("%w: ANTHROPIC_API_KEY not set", ErrModelUnavailable)
		}
		return NewAPIClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), cfg.AnthropicModel, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", fmt.Errorf("%w: OPENAI_API_KEY not set", ErrModelUnavailable)
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), cfg.OpenAIModel, nil
	case "cli":
		path, err := exec.LookPath(cfg.CLIPath)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		// One CLI process at a time.
		return Serialized(NewCLIClient(path)), "claude-cli", nil
	case "mock":
		return NewMockClient(), "mock", nil
	case "none", "":
		return nil, "", fmt.Errorf("%w: provider disabled", ErrModelUnavailable)
	default:
		return nil, "", fmt.Errorf("%w: unknown provider %q", ErrModelUnavailable, cfg.Provider)
	}
}

// ── APIClient: Anthropic SDK ────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(apiKey, model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, prompt string, maxLength int) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxLength),
		Temperature: param.NewOpt(0.7),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API: %w", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// ── MockClient: local development ───────────────────────

// MockClient answers every prompt with a well-formed question built from the
// prompt's embedded text. Output is deterministic.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, prompt string, maxLength int) (*LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(promptSourceText(prompt))
	topic := source
	if sentences := Sentences(source, SimpleMinSentence); len(sentences) > 0 {
		topic = sentences[0]
	}
	topic = truncate(topic, 60)

	content := fmt.Sprintf(
		"Question: [Mock] Which statement is supported by the passage about %q?\n"+
			"A) %s\n"+
			"B) The passage contradicts this.\n"+
			"C) The passage does not discuss this.\n"+
			"D) None of the above.",
		topic, topic,
	)

	return &LLMResponse{
		Content:      content,
		PromptTokens: charLen(prompt) / 4,
		OutputTokens: charLen(content) / 4,
	}, nil
}

// ── Serialized ─────────────────────────────────────────────

type serializedClient struct {
	mu    sync.Mutex
	inner LLMClient
}

// Serialized wraps a client that is not safe for concurrent use so that
// calls run one at a time.
func Serialized(c LLMClient) LLMClient {
	return &serializedClient{inner: c}
}

func (s *serializedClient) Generate(ctx context.Context, prompt string, maxLength int) (*LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Generate(ctx, prompt, maxLength)
}
