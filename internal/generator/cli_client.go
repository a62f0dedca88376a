package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// cliFormatInstruction keeps the CLI from wrapping the answer in prose.
const cliFormatInstruction = "Reply with the question block only: one 'Question:' line, " +
	"four lines starting with A) B) C) D), and one 'Correct Answer:' line."

// charsPerToken approximates output length for backends without a token limit.
const charsPerToken = 4

// CLIClient runs a local claude CLI in print mode, one process per prompt.
// It is not safe for concurrent use; NewLLMClient wraps it in Serialized.
type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	return &CLIClient{cliPath: cliPath}
}

// Generate feeds prompt on stdin. The CLI has no output-length flag, so the
// reply is cut to roughly maxLength tokens.
func (c *CLIClient) Generate(ctx context.Context, prompt string, maxLength int) (*LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx,
		c.cliPath,
		"--print",
		"--output-format", "text",
		"--max-turns", "1",
		"--append-system-prompt", cliFormatInstruction,
	)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("claude CLI: %w", ctxErr)
		}
		return nil, fmt.Errorf("claude CLI: %w: %s", err, truncate(strings.TrimSpace(stderr.String()), 200))
	}

	content := strings.TrimSpace(stdout.String())
	if content == "" {
		return nil, errors.New("claude CLI returned empty response")
	}
	if maxLength > 0 {
		content = truncate(content, maxLength*charsPerToken)
	}

	return &LLMResponse{
		Content:      content,
		PromptTokens: charLen(prompt) / charsPerToken,
		OutputTokens: charLen(content) / charsPerToken,
	}, nil
}
