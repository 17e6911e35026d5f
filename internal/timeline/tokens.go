// Package timeline parses and serializes the pipeline's interchange files:
// timestamped token streams, text units and scene timelines.
package timeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"katha/internal/align"
)

// ErrInvalidInput marks structurally invalid input: wrong shape, missing
// fields, negative or inverted times. Callers should abort the alignment call
// and re-run the producing pipeline stage instead of repairing the data.
var ErrInvalidInput = errors.New("invalid input")

// wire shape produced by the forced-alignment/ASR stage
type tokenSegment struct {
	Text  *string  `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type tokenDocument struct {
	Segments []tokenSegment `json:"segments"`
}

// ParseTokens decodes a token stream document:
//
//	{"segments": [{"text": "...", "start": 0.0, "end": 0.3}, ...]}
//
// Zero-length (pure punctuation) segments are preserved; they occupy slots in
// the position index without carrying characters.
func ParseTokens(data []byte) ([]align.TimedToken, error) {
	var doc tokenDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if doc.Segments == nil {
		return nil, fmt.Errorf("%w: missing segments array", ErrInvalidInput)
	}

	tokens := make([]align.TimedToken, len(doc.Segments))
	for i, seg := range doc.Segments {
		if seg.Text == nil {
			return nil, fmt.Errorf("%w: segment %d missing text", ErrInvalidInput, i)
		}
		if seg.Start == nil || seg.End == nil {
			return nil, fmt.Errorf("%w: segment %d missing start/end", ErrInvalidInput, i)
		}
		if *seg.Start < 0 {
			return nil, fmt.Errorf("%w: segment %d has negative start %v", ErrInvalidInput, i, *seg.Start)
		}
		if *seg.End < *seg.Start {
			return nil, fmt.Errorf("%w: segment %d has end %v before start %v",
				ErrInvalidInput, i, *seg.End, *seg.Start)
		}
		tokens[i] = align.TimedToken{Text: *seg.Text, Start: *seg.Start, End: *seg.End}
	}
	return tokens, nil
}

// WriteTokens serializes tokens back to the wire shape, for persisting
// transcription output between pipeline stages.
func WriteTokens(tokens []align.TimedToken) ([]byte, error) {
	type outSegment struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	}
	doc := struct {
		Segments []outSegment `json:"segments"`
	}{Segments: make([]outSegment, len(tokens))}

	for i, tok := range tokens {
		doc.Segments[i] = outSegment{Text: tok.Text, Start: tok.Start, End: tok.End}
	}
	return json.MarshalIndent(doc, "", "  ")
}
