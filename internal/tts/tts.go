package tts

import (
	"context"
	"fmt"
)

// interface for text-to-speech synthesis
type Speaker interface {
	// Synthesize renders text to an audio file at outputPath.
	Synthesize(ctx context.Context, text string, outputPath string) error
}

// speech service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

type Options struct {
	Model string
	Voice string
	Speed float64 // playback speed multiplier (OpenAI only; default 1.0)
}

// creates a Speaker based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Speaker, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAISpeaker(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiSpeaker(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported speech provider: %s", provider)
	}
}
