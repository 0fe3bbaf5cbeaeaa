package domain

import "context"

// Generator is the generative-model contract for the answer path.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest is a single prompt submission.
type GenerationRequest struct {
	SystemInstruction string
	Prompt            string
	Temperature       float32
	MaxOutputTokens   int // 0 = provider default
}

// GenerationResult carries the model's text response and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}
