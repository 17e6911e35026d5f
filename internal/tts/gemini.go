package tts

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// implements Speaker using Gemini native TTS. Gemini returns raw 16-bit PCM
// at 24 kHz, so the output is wrapped in a WAV container.
type GeminiSpeaker struct {
	client  *genai.Client
	model   string
	options Options
}

const (
	geminiSampleRate = 24000
	geminiChannels   = 1
	geminiBitDepth   = 16
)

func NewGeminiSpeaker(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiSpeaker, error) {
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
		model = "gemini-2.5-flash-preview-tts"
	}

	return &GeminiSpeaker{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (s *GeminiSpeaker) Synthesize(
	ctx context.Context,
	text string,
	outputPath string,
) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is empty")
	}

	voice := s.options.Voice
	if voice == "" {
		voice = "Kore"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{genai.NewPartFromText(text)},
			genai.RoleUser,
		),
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: voice,
				},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	pcm, err := extractAudioData(result)
	if err != nil {
		return err
	}

	return writeWAV(outputPath, pcm)
}

func extractAudioData(result *genai.GenerateContentResponse) ([]byte, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("no audio data in Gemini response")
}

func writeWAV(path string, pcm []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(wavHeader(len(pcm))); err != nil {
		return fmt.Errorf("failed to write WAV header: %w", err)
	}
	if _, err := out.Write(pcm); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return nil
}

func wavHeader(dataLen int) []byte {
	byteRate := geminiSampleRate * geminiChannels * geminiBitDepth / 8
	blockAlign := geminiChannels * geminiBitDepth / 8

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], uint16(geminiChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(geminiSampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(geminiBitDepth))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))
	return header
}

func (s *GeminiSpeaker) Close() error {
	return nil
}
