package storyboard

import (
	"context"
	"fmt"
	"strings"
)

// Scene is one storyboard beat: narration text plus a visual prompt for the
// image stage. The JSON shape matches the timeline storyboard format, so the
// output of this package feeds straight into the alignment core.
type Scene struct {
	Number      int    `json:"scene"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt,omitempty"`
}

// interface for narration-to-storyboard segmentation
type Storyboarder interface {
	Storyboard(ctx context.Context, narration string) ([]Scene, error)
}

// storyboard service provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
)

type Options struct {
	Model      string
	SceneCount int    // target scene count (0 lets the model decide)
	Style      string // visual style hint for image prompts
	Prompt     string
}

// creates a Storyboarder based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Storyboarder, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiStoryboarder(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported storyboard provider: %s", provider)
	}
}

// BuildPrompt creates the segmentation prompt for LLM providers
func BuildPrompt(opts Options, narration string) string {
	var sb strings.Builder

	if opts.SceneCount > 0 {
		sb.WriteString(fmt.Sprintf(
			"Split the following narration into exactly %d visual scenes.\n\n",
			opts.SceneCount,
		))
	} else {
		sb.WriteString(
			"Split the following narration into visual scenes, one per distinct beat.\n\n",
		)
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Every sentence of the narration must appear in exactly one scene, unchanged.\n",
	)
	sb.WriteString(
		"2. For each scene, write an 'image_prompt' describing a single still image.\n",
	)
	if opts.Style != "" {
		sb.WriteString(fmt.Sprintf(
			"3. Image prompts should follow this visual style: %s.\n",
			opts.Style,
		))
	} else {
		sb.WriteString(
			"3. Image prompts should be concrete and self-contained.\n",
		)
	}
	sb.WriteString("4. Return ONLY a JSON array of scene objects.\n")
	sb.WriteString(
		"5. Each object must have 'scene' (1-based number), 'text' and 'image_prompt' fields.\n",
	)
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Narration:\n")
	sb.WriteString(narration)
	sb.WriteString("\n\nOutput the scene JSON array only:")

	return sb.String()
}
