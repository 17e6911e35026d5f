package transcribe

import (
	"context"
	"testing"
	"time"
)

func TestParseVerboseJSONResponse(t *testing.T) {
	transcriber := &OpenAITranscriber{}

	tests := []struct {
		name             string
		rawJSON          string
		fallbackDuration time.Duration
		wantCount        int
		wantErr          bool
	}{
		{
			name: "valid verbose_json with segments",
			rawJSON: `{
				"text": "Hello world. How are you today?",
				"segments": [
					{"start": 0.0, "end": 1.5, "text": "Hello world."},
					{"start": 1.5, "end": 3.0, "text": "How are you today?"}
				],
				"language": "en",
				"duration": 3.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        2,
		},
		{
			name: "no segments but has text",
			rawJSON: `{
				"text": "This is a transcription without segments.",
				"segments": [],
				"language": "en",
				"duration": 2.5
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "null segments",
			rawJSON: `{
				"text": "Transcription text only.",
				"segments": null,
				"language": "en",
				"duration": 1.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name: "empty text segments filtered out",
			rawJSON: `{
				"text": "Hello world",
				"segments": [
					{"start": 0.0, "end": 0.5, "text": ""},
					{"start": 0.5, "end": 1.5, "text": "Hello world"},
					{"start": 1.5, "end": 2.0, "text": "   "}
				],
				"language": "en",
				"duration": 2.0
			}`,
			fallbackDuration: 5 * time.Second,
			wantCount:        1,
		},
		{
			name:             "empty response",
			rawJSON:          "",
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name:             "invalid JSON",
			rawJSON:          `{"text": "incomplete`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
		{
			name: "no segments and no text",
			rawJSON: `{
				"text": "",
				"segments": [],
				"language": "en",
				"duration": 0
			}`,
			fallbackDuration: 5 * time.Second,
			wantErr:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := transcriber.parseVerboseJSONResponse(tt.rawJSON, tt.fallbackDuration)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d tokens", len(tokens))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tokens) != tt.wantCount {
				t.Errorf("got %d tokens, want %d", len(tokens), tt.wantCount)
			}
		})
	}
}

func TestParseVerboseJSONWordGranularity(t *testing.T) {
	transcriber := &OpenAITranscriber{options: Options{Granularity: GranularityWord}}

	rawJSON := `{
		"text": "hello there",
		"words": [
			{"word": "hello", "start": 0.0, "end": 0.4},
			{"word": "there", "start": 0.4, "end": 0.9}
		],
		"language": "en",
		"duration": 0.9
	}`

	tokens, err := transcriber.parseVerboseJSONResponse(rawJSON, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tokens))
	}
	if tokens[0].Text != "hello" || tokens[0].Start != 0.0 || tokens[0].End != 0.4 {
		t.Errorf("token 0 = %+v", tokens[0])
	}
	if tokens[1].Text != "there" || tokens[1].Start != 0.4 || tokens[1].End != 0.9 {
		t.Errorf("token 1 = %+v", tokens[1])
	}
}

func TestFactoryReturnsOpenAITranscriber(t *testing.T) {
	ctx := context.Background()
	transcriber, err := Factory(ctx, ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := transcriber.(*OpenAITranscriber); !ok {
		t.Errorf("expected *OpenAITranscriber, got %T", transcriber)
	}
	if _, ok := transcriber.(ConcurrentTranscriber); !ok {
		t.Error("OpenAITranscriber should implement ConcurrentTranscriber")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, Provider("whisper-cpp"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
