package imagegen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// implements Generator using Imagen through the Gemini API
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiGenerator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "imagen-4.0-generate-001"
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (g *GeminiGenerator) Generate(
	ctx context.Context,
	prompt string,
	outputPath string,
) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is empty")
	}

	config := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	}
	if g.options.AspectRatio != "" {
		config.AspectRatio = g.options.AspectRatio
	}

	result, err := g.client.Models.GenerateImages(ctx, g.model, prompt, config)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	if result == nil || len(result.GeneratedImages) == 0 ||
		result.GeneratedImages[0].Image == nil {
		return fmt.Errorf("no image in Gemini response")
	}

	data := result.GeneratedImages[0].Image.ImageBytes
	if len(data) == 0 {
		return fmt.Errorf("empty image data in Gemini response")
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

func (g *GeminiGenerator) Close() error {
	return nil
}
