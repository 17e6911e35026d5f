package subtitle

import (
	"math"
	"time"

	"katha/internal/align"
)

// one subtitle cue
type Cue struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// a complete subtitle track
type Track struct {
	Cues     []Cue
	Language string
	Format   string
}

// supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// interface for writing subtitle tracks to files
type Writer interface {
	Write(track *Track, path string) error
}

// FromSegments converts reconciled alignment output into a track, rounding
// times to whole milliseconds (the finest grain SRT can carry).
func FromSegments(segments []align.AlignedSegment) *Track {
	cues := make([]Cue, len(segments))
	for i, seg := range segments {
		cues[i] = Cue{
			Index:     i + 1,
			StartTime: secondsToDuration(seg.Start),
			EndTime:   secondsToDuration(seg.End),
			Text:      seg.Text,
		}
	}
	return &Track{Cues: cues, Format: string(FormatSRT)}
}

// Segments exposes a parsed track as alignment segments, for commands that
// re-align or rewrite existing subtitle files.
func (t *Track) Segments() []align.AlignedSegment {
	segments := make([]align.AlignedSegment, len(t.Cues))
	for i, cue := range t.Cues {
		segments[i] = align.AlignedSegment{
			UnitID: cue.Index,
			Start:  cue.StartTime.Seconds(),
			End:    cue.EndTime.Seconds(),
			Text:   cue.Text,
		}
	}
	return segments
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}
