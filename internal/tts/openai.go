package tts

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Speaker using the OpenAI speech API
type OpenAISpeaker struct {
	client  openai.Client
	model   openai.SpeechModel
	options Options
}

func NewOpenAISpeaker(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAISpeaker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := openai.SpeechModel(opts.Model)
	if opts.Model == "" {
		model = openai.SpeechModelGPT4oMiniTTS
	}

	return &OpenAISpeaker{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (s *OpenAISpeaker) Synthesize(
	ctx context.Context,
	text string,
	outputPath string,
) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is empty")
	}

	voice := openai.AudioSpeechNewParamsVoice(s.options.Voice)
	if s.options.Voice == "" {
		voice = openai.AudioSpeechNewParamsVoiceAlloy
	}

	params := openai.AudioSpeechNewParams{
		Model:          s.model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	}
	if s.options.Speed > 0 {
		params.Speed = openai.Float(s.options.Speed)
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	return nil
}

func (s *OpenAISpeaker) Close() error {
	return nil
}
