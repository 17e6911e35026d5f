package timeline

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"katha/internal/align"
)

func TestParseScenesBareArray(t *testing.T) {
	data := []byte(`[
		{"scene": 1, "text": "夜幕降临", "image_prompt": "a dark city at night"},
		{"scene": 2, "text": "雨开始下"}
	]`)

	doc, err := ParseScenes(data)
	if err != nil {
		t.Fatalf("ParseScenes: %v", err)
	}
	if doc.Metadata != nil {
		t.Error("bare array should have no metadata")
	}
	if len(doc.Scenes) != 2 {
		t.Fatalf("got %d scenes, want 2", len(doc.Scenes))
	}
	if doc.Scenes[0].Number != 1 || doc.Scenes[0].Text != "夜幕降临" {
		t.Errorf("scene 0 = %+v", doc.Scenes[0])
	}
}

func TestParseScenesEnvelope(t *testing.T) {
	data := []byte(`{
		"metadata": {"title": "demo", "voice": "alloy"},
		"scenes": [{"scene": 1, "text": "开场"}]
	}`)

	doc, err := ParseScenes(data)
	if err != nil {
		t.Fatalf("ParseScenes: %v", err)
	}
	if doc.Metadata == nil {
		t.Fatal("metadata envelope lost")
	}
	if len(doc.Scenes) != 1 {
		t.Fatalf("got %d scenes, want 1", len(doc.Scenes))
	}
}

func TestParseScenesMissingText(t *testing.T) {
	_, err := ParseScenes([]byte(`[{"scene": 1}]`))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error %v does not wrap ErrInvalidInput", err)
	}
}

func TestSceneTimelineOutput(t *testing.T) {
	data := []byte(`[
		{"scene": 1, "text": "你好", "image_prompt": "sunrise"},
		{"scene": 2, "text": "世界"}
	]`)
	doc, err := ParseScenes(data)
	if err != nil {
		t.Fatalf("ParseScenes: %v", err)
	}

	doc.ApplyTimeline([]align.AlignedSegment{
		{UnitID: 1, Start: 0, End: 0.6, Text: "你好"},
		{UnitID: 2, Start: 0.6, End: 1.23456, Text: "世界"},
	})

	out, err := WriteScenes(doc)
	if err != nil {
		t.Fatalf("WriteScenes: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		`"start_time": 0.000`,
		`"end_time": 0.600`,
		`"duration": 0.600`,
		`"end_time": 1.235`,
		`"image_prompt"`,
		`"sunrise"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %s:\n%s", want, s)
		}
	}
}

func TestSceneEnvelopeRoundTrip(t *testing.T) {
	data := []byte(`{"metadata":{"title":"t"},"scenes":[{"scene":7,"text":"abc","style":"noir"}]}`)
	doc, err := ParseScenes(data)
	if err != nil {
		t.Fatalf("ParseScenes: %v", err)
	}
	doc.ApplyTimeline([]align.AlignedSegment{{UnitID: 7, Start: 1, End: 2.5, Text: "abc"}})

	out, err := WriteScenes(doc)
	if err != nil {
		t.Fatalf("WriteScenes: %v", err)
	}

	var env struct {
		Metadata map[string]any   `json:"metadata"`
		Scenes   []map[string]any `json:"scenes"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("output not valid JSON: %v\n%s", err, out)
	}
	if env.Metadata["title"] != "t" {
		t.Errorf("metadata not preserved: %v", env.Metadata)
	}
	scene := env.Scenes[0]
	if scene["style"] != "noir" {
		t.Errorf("passthrough field lost: %v", scene)
	}
	if scene["duration"] != 1.5 {
		t.Errorf("duration = %v, want 1.5", scene["duration"])
	}
	if scene["scene"] != 7.0 {
		t.Errorf("scene number = %v, want 7", scene["scene"])
	}
}

func TestParseScenesTimedRoundTrip(t *testing.T) {
	data := []byte(`[
		{"scene": 1, "text": "a", "start_time": 0.0, "end_time": 1.5, "duration": 1.5},
		{"scene": 2, "text": "b"}
	]`)
	doc, err := ParseScenes(data)
	if err != nil {
		t.Fatalf("ParseScenes: %v", err)
	}
	if !doc.Scenes[0].Timed() {
		t.Error("scene with timing fields should be timed")
	}
	if doc.Scenes[0].StartTime != 0 || doc.Scenes[0].EndTime != 1.5 || doc.Scenes[0].Duration != 1.5 {
		t.Errorf("scene 0 timing = %+v", doc.Scenes[0])
	}
	if doc.Scenes[1].Timed() {
		t.Error("scene without timing fields should not be timed")
	}
}

func TestSceneDocUnits(t *testing.T) {
	doc, err := ParseScenes([]byte(`[{"scene": 3, "text": "c"}, {"text": "d"}]`))
	if err != nil {
		t.Fatalf("ParseScenes: %v", err)
	}
	units := doc.Units()
	if units[0].ID != 3 || units[0].RawText != "c" {
		t.Errorf("unit 0 = %+v", units[0])
	}
	// scenes without an explicit number fall back to 1-based position
	if units[1].ID != 2 || units[1].RawText != "d" {
		t.Errorf("unit 1 = %+v", units[1])
	}
}
