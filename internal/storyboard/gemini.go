package storyboard

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// implements Storyboarder using Google Gemini
type GeminiStoryboarder struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiStoryboarder(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiStoryboarder, error) {
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
		model = "gemini-2.5-flash"
	}

	return &GeminiStoryboarder{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (s *GeminiStoryboarder) Storyboard(
	ctx context.Context,
	narration string,
) ([]Scene, error) {
	if strings.TrimSpace(narration) == "" {
		return nil, fmt.Errorf("narration is empty")
	}

	prompt := BuildPrompt(s.options, narration)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("storyboard generation failed: %w", err)
	}

	return s.parseResponse(result)
}

func (s *GeminiStoryboarder) parseResponse(
	result *genai.GenerateContentResponse,
) ([]Scene, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	scenes, err := extractScenes(cleanJSONResponse(responseText))
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse storyboard response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	for i := range scenes {
		if scenes[i].Number == 0 {
			scenes[i].Number = i + 1
		}
	}
	return scenes, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// scans the response for the first JSON value containing a usable scene list,
// tolerating preamble text and wrapper objects.
func extractScenes(text string) ([]Scene, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if scenes, ok := tryScenes(raw); ok && len(scenes) > 0 {
			return scenes, nil
		}
	}
	return nil, fmt.Errorf("no valid scene JSON found in response")
}

func tryScenes(raw json.RawMessage) ([]Scene, bool) {
	var scenes []Scene
	if err := json.Unmarshal(raw, &scenes); err == nil && validScenes(scenes) {
		return scenes, true
	}

	wrapperKeys := []string{"scenes", "storyboard", "data", "items"}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			var fieldScenes []Scene
			if err := json.Unmarshal(
				fieldRaw,
				&fieldScenes,
			); err == nil && validScenes(fieldScenes) {
				return fieldScenes, true
			}
		}
	}

	return nil, false
}

func validScenes(scenes []Scene) bool {
	for _, s := range scenes {
		if s.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (s *GeminiStoryboarder) Close() error {
	return nil
}
