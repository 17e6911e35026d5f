package subtitle

import (
	"testing"

	"katha/internal/align"
)

func TestSRTRenderExactFormat(t *testing.T) {
	segments := []align.AlignedSegment{
		{UnitID: 1, Start: 0.0, End: 0.6, Text: "你好"},
		{UnitID: 2, Start: 0.6, End: 1.2, Text: "世界"},
		{UnitID: 3, Start: 61.5, End: 3723.042, Text: "a long wait"},
	}

	track := FromSegments(segments)
	writer := &SRTWriter{}
	got := writer.Render(track)

	want := "1\n" +
		"00:00:00,000 --> 00:00:00,600\n" +
		"你好\n\n" +
		"2\n" +
		"00:00:00,600 --> 00:00:01,200\n" +
		"世界\n\n" +
		"3\n" +
		"00:01:01,500 --> 01:02:03,042\n" +
		"a long wait\n\n"

	if got != want {
		t.Errorf("SRT output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestVTTRenderHeader(t *testing.T) {
	track := FromSegments([]align.AlignedSegment{
		{UnitID: 1, Start: 0, End: 1, Text: "hi"},
	})
	writer := &VTTWriter{}
	got := writer.Render(track)

	want := "WEBVTT\n\n1\n00:00:00.000 --> 00:00:01.000\nhi\n\n"
	if got != want {
		t.Errorf("VTT output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFromSegmentsMillisecondRounding(t *testing.T) {
	track := FromSegments([]align.AlignedSegment{
		{UnitID: 1, Start: 0.0004, End: 1.0006, Text: "x"},
	})
	cue := track.Cues[0]
	if cue.StartTime.Milliseconds() != 0 {
		t.Errorf("start = %v, want 0ms", cue.StartTime)
	}
	if cue.EndTime.Milliseconds() != 1001 {
		t.Errorf("end = %v, want 1001ms", cue.EndTime)
	}
}
