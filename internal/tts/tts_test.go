package tts

import (
	"context"
	"encoding/binary"
	"testing"
)

func TestFactoryReturnsOpenAISpeaker(t *testing.T) {
	ctx := context.Background()
	speaker, err := Factory(ctx, ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := speaker.(*OpenAISpeaker); !ok {
		t.Errorf("expected *OpenAISpeaker, got %T", speaker)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, Provider("espeak"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	ctx := context.Background()
	if _, err := Factory(ctx, ProviderOpenAI, "", Options{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestWAVHeader(t *testing.T) {
	dataLen := 48000
	header := wavHeader(dataLen)

	if len(header) != 44 {
		t.Fatalf("header length = %d, want 44", len(header))
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(header[4:8]); got != uint32(36+dataLen) {
		t.Errorf("chunk size = %d, want %d", got, 36+dataLen)
	}
	if got := binary.LittleEndian.Uint32(header[24:28]); got != geminiSampleRate {
		t.Errorf("sample rate = %d, want %d", got, geminiSampleRate)
	}
	if got := binary.LittleEndian.Uint16(header[34:36]); got != geminiBitDepth {
		t.Errorf("bit depth = %d, want %d", got, geminiBitDepth)
	}
	if got := binary.LittleEndian.Uint32(header[40:44]); got != uint32(dataLen) {
		t.Errorf("data length = %d, want %d", got, dataLen)
	}
}
