package imagegen

import (
	"context"
	"testing"
)

func TestFactoryReturnsOpenAIGenerator(t *testing.T) {
	ctx := context.Background()
	gen, err := Factory(ctx, ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := gen.(*OpenAIGenerator); !ok {
		t.Errorf("expected *OpenAIGenerator, got %T", gen)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, Provider("stable-diffusion"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, ProviderOpenAI, "", Options{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	ctx := context.Background()
	gen, err := NewOpenAIGenerator(ctx, "fake-key", Options{})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator error: %v", err)
	}
	if err := gen.Generate(ctx, "   ", "out.png"); err == nil {
		t.Error("expected error for empty prompt")
	}
}
