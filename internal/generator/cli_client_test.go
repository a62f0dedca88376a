package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeCLI writes an executable shell script standing in for the claude CLI.
func fakeCLI(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake cli: %v", err)
	}
	return path
}

func TestCLIClient_Generate(t *testing.T) {
	cli := fakeCLI(t, `cat >/dev/null
printf 'Question: From the CLI?\nA) one\nB) two\nC) three\nD) four\nCorrect Answer: A\n'
`)

	resp, err := NewCLIClient(cli).Generate(context.Background(), BuildQuestionPrompt(photosynthesis), GenerateMaxLength)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	q, tier, ok := ParseGenerated(resp.Content, photosynthesis)
	if !ok || tier != TierModel || q.Question != "From the CLI?" {
		t.Errorf("unexpected parse %+v tier=%q ok=%v", q, tier, ok)
	}
}

func TestCLIClient_OutputCap(t *testing.T) {
	cli := fakeCLI(t, `cat >/dev/null
i=0; while [ $i -lt 100 ]; do printf 'xxxxxxxxxx'; i=$((i+1)); done
`)

	resp, err := NewCLIClient(cli).Generate(context.Background(), "prompt", 10)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(resp.Content) != 10*charsPerToken {
		t.Errorf("expected output cut to %d chars, got %d", 10*charsPerToken, len(resp.Content))
	}
}

func TestCLIClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantMsg string
	}{
		{"non-zero exit", "echo 'rate limited' >&2; exit 3", "rate limited"},
		{"empty output", "cat >/dev/null", "empty response"},
	}

	for _, tt := range tests {
		_, err := NewCLIClient(fakeCLI(t, tt.script)).Generate(context.Background(), "prompt", 10)
		if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.wantMsg, err)
		}
	}
}
