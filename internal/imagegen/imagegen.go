package imagegen

import (
	"context"
	"fmt"
)

// interface for still-image generation
type Generator interface {
	// Generate renders a single image for the prompt at outputPath.
	Generate(ctx context.Context, prompt string, outputPath string) error
}

// image service provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

type Options struct {
	Model       string
	AspectRatio string // Gemini only, e.g. "16:9"
	Size        string // OpenAI only, e.g. "1024x1024"
}

// creates a Generator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Generator, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiGenerator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIGenerator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", provider)
	}
}
