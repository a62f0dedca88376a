package generator

import (
	"fmt"
	"strings"
)

const (
	// promptChunkLen caps how much of a chunk is embedded in the prompt.
	promptChunkLen = 400

	// GenerateMaxLength is the output length requested from the model per chunk.
	GenerateMaxLength = 200
)

const questionPromptTemplate = "Generate a multiple choice question with 4 options from this text. " +
	"Format: Question: [question] Options: A) [option1] B) [option2] C) [option3] D) [option4] " +
	"Correct Answer: [letter]\n\nText: %s"

// BuildQuestionPrompt embeds up to the first 400 characters of chunk in the
// fixed question/options/answer template.
func BuildQuestionPrompt(chunk string) string {
	return fmt.Sprintf(questionPromptTemplate, truncate(chunk, promptChunkLen))
}

// promptSourceText recovers the embedded chunk text from a prompt built by
// BuildQuestionPrompt. Used by the mock client.
func promptSourceText(prompt string) string {
	if _, text, ok := strings.Cut(prompt, "\n\nText: "); ok {
		return text
	}
	return prompt
}
