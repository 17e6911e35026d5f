package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Generator using the OpenAI images API
type OpenAIGenerator struct {
	client  openai.Client
	model   openai.ImageModel
	options Options
}

func NewOpenAIGenerator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := openai.ImageModel(opts.Model)
	if opts.Model == "" {
		model = openai.ImageModelGPTImage1
	}

	return &OpenAIGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (g *OpenAIGenerator) Generate(
	ctx context.Context,
	prompt string,
	outputPath string,
) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is empty")
	}

	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  g.model,
	}
	if g.options.Size != "" {
		params.Size = openai.ImageGenerateParamsSize(g.options.Size)
	}

	resp, err := g.client.Images.Generate(ctx, params)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	if resp == nil || len(resp.Data) == 0 {
		return fmt.Errorf("no image in OpenAI response")
	}
	if resp.Data[0].B64JSON == "" {
		return fmt.Errorf("empty image data in OpenAI response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return fmt.Errorf("failed to decode image data: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

func (g *OpenAIGenerator) Close() error {
	return nil
}
