package rewrite

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestFactoryReturnsGeminiRewriter(t *testing.T) {
	ctx := context.Background()
	rewriter, err := Factory(ctx, ProviderGemini, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := rewriter.(*GeminiRewriter); !ok {
		t.Errorf("expected *GeminiRewriter, got %T", rewriter)
	}
}

func TestFactoryReturnsOpenAIRewriter(t *testing.T) {
	ctx := context.Background()
	rewriter, err := Factory(ctx, ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := rewriter.(*OpenAIRewriter); !ok {
		t.Errorf("expected *OpenAIRewriter, got %T", rewriter)
	}
}

func TestFactoryReturnsAnthropicRewriter(t *testing.T) {
	ctx := context.Background()
	rewriter, err := Factory(ctx, ProviderAnthropic, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderAnthropic) returned error: %v", err)
	}
	if _, ok := rewriter.(*AnthropicRewriter); !ok {
		t.Errorf("expected *AnthropicRewriter, got %T", rewriter)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	_, err := Factory(ctx, Provider("unknown"), "fake-key", Options{})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	ctx := context.Background()
	_, err := Factory(ctx, ProviderAnthropic, "", Options{})
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestRewritersImplementConcurrentRewriter(t *testing.T) {
	ctx := context.Background()
	for _, provider := range []Provider{
		ProviderGemini,
		ProviderOpenAI,
		ProviderAnthropic,
	} {
		rewriter, err := Factory(ctx, provider, "fake-key", Options{})
		if err != nil {
			t.Fatalf("Factory(%s) error: %v", provider, err)
		}
		if _, ok := rewriter.(ConcurrentRewriter); !ok {
			t.Errorf("%s rewriter should implement ConcurrentRewriter", provider)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	opts := Options{
		Style:    "punchy 60-second explainer narration",
		Language: "Japanese",
	}

	items := []RewriteItem{
		{Index: 0, Text: "Hello world"},
		{Index: 1, Text: "Goodbye"},
	}

	prompt := BuildPrompt(opts, items)

	if !strings.Contains(prompt, "punchy 60-second explainer narration") {
		t.Error("prompt should contain the requested style")
	}
	if !strings.Contains(prompt, "in Japanese") {
		t.Error("prompt should contain the output language")
	}
	if !strings.Contains(prompt, "Hello world") {
		t.Error("prompt should contain input text")
	}
	if !strings.Contains(prompt, `"index": 0`) {
		t.Error("prompt should contain index")
	}
}

func TestBuildPromptDefaults(t *testing.T) {
	items := []RewriteItem{
		{Index: 0, Text: "Hello"},
	}

	prompt := BuildPrompt(Options{}, items)

	if !strings.Contains(prompt, "concise, engaging short-video narration") {
		t.Error("prompt should fall back to the default style")
	}
	if !strings.Contains(prompt, "same language as the input") {
		t.Error("prompt should keep the input language when none is specified")
	}
}

// Integration test: only runs if OPENAI_API_KEY is set
func TestOpenAIRewriterIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	rewriter, err := NewOpenAIRewriter(ctx, apiKey, Options{})
	if err != nil {
		t.Fatalf("NewOpenAIRewriter error: %v", err)
	}

	items := []RewriteItem{
		{Index: 0, Text: "The meeting has been rescheduled to next Tuesday."},
		{Index: 1, Text: "Please remember to bring your laptops."},
	}

	results, err := rewriter.Rewrite(ctx, items)
	if err != nil {
		t.Fatalf("Rewrite error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Text == "" {
			t.Errorf("result index %d has empty text", r.Index)
		}
	}
}
