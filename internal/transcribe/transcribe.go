package transcribe

import (
	"context"
	"fmt"
	"time"

	"katha/internal/align"
	"katha/internal/audio"
)

// transcription result: a chronological timestamped token stream
type Result struct {
	Tokens   []align.TimedToken
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

type ConcurrentTranscriber interface {
	Transcriber
	TranscribeWithChunks(
		ctx context.Context,
		chunks []audio.ChunkInfo,
		concurrency int,
	) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// timestamp granularity of the returned token stream
type Granularity string

const (
	// sentence/phrase level segments
	GranularitySegment Granularity = "segment"
	// word level tokens, the preferred input for timeline alignment
	GranularityWord Granularity = "word"
)

// transcription options
type Options struct {
	Language           string // source language of the audio
	TranscriptLanguage string // output language for the transcript (default: "native")
	Model              string
	Prompt             string
	Granularity        Granularity // default: segment
}

// creates a transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
