package rewrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// single text item to rewrite
type RewriteItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// rewritten text item
type RewriteResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for narration rewriting
type Rewriter interface {
	Rewrite(
		ctx context.Context,
		items []RewriteItem,
	) ([]RewriteResult, error)
}

// optional interface for rewriters that support concurrent batch processing
type ConcurrentRewriter interface {
	Rewriter
	RewriteWithConcurrency(
		ctx context.Context,
		items []RewriteItem,
		concurrency int,
	) ([]RewriteResult, error)
}

// rewriting service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Style     string // e.g. "punchy short-video narration"
	Language  string // output language; defaults to the input language
	Model     string
	Prompt    string
	BatchSize int // items per API request (default 50)
}

// creates Rewriter based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Rewriter, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiRewriter(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIRewriter(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicRewriter(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported rewrite provider: %s", provider)
	}
}

// BuildPrompt creates the rewriting prompt for LLM providers
func BuildPrompt(opts Options, items []RewriteItem) string {
	var sb strings.Builder

	style := opts.Style
	if style == "" {
		style = "concise, engaging short-video narration"
	}

	sb.WriteString(fmt.Sprintf(
		"Rewrite the following narration lines as %s.\n\n",
		style,
	))

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Rewrite each line independently, preserving its meaning.\n",
	)
	if opts.Language != "" {
		sb.WriteString(fmt.Sprintf(
			"2. Write the output in %s.\n",
			opts.Language,
		))
	} else {
		sb.WriteString("2. Keep the output in the same language as the input.\n")
	}
	sb.WriteString("3. Preserve line breaks (\\N) in the same positions.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString(
		"6. The 'index' values must match the input indices exactly.\n",
	)
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the rewritten JSON array only:")

	return sb.String()
}
