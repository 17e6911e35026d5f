package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"katha/internal/align"
)

// Scene is one storyboard entry. Fields beyond the scene number and text
// (image prompts and the like) are opaque passthrough: parsed, preserved and
// re-emitted untouched.
type Scene struct {
	Number    int
	Text      string
	StartTime float64
	EndTime   float64
	Duration  float64

	timed bool
	extra map[string]json.RawMessage
}

// SceneDoc is a storyboard file: either a bare JSON array of scenes or an
// envelope object with a metadata block and a scenes array. The envelope is
// preserved on output.
type SceneDoc struct {
	Metadata json.RawMessage
	Scenes   []Scene
}

type sceneEnvelope struct {
	Metadata json.RawMessage `json:"metadata"`
	Scenes   json.RawMessage `json:"scenes"`
}

// ParseScenes decodes a storyboard document in either supported shape.
func ParseScenes(data []byte) (*SceneDoc, error) {
	raw := json.RawMessage(data)
	doc := &SceneDoc{}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		var env sceneEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if env.Scenes == nil {
			return nil, fmt.Errorf("%w: missing scenes array", ErrInvalidInput)
		}
		if err := json.Unmarshal(env.Scenes, &list); err != nil {
			return nil, fmt.Errorf("%w: scenes is not an array: %v", ErrInvalidInput, err)
		}
		doc.Metadata = env.Metadata
	}

	doc.Scenes = make([]Scene, len(list))
	for i, rawScene := range list {
		scene, err := parseScene(rawScene, i)
		if err != nil {
			return nil, err
		}
		doc.Scenes[i] = scene
	}
	return doc, nil
}

func parseScene(raw json.RawMessage, pos int) (Scene, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Scene{}, fmt.Errorf("%w: scene %d is not an object: %v", ErrInvalidInput, pos, err)
	}

	scene := Scene{Number: pos + 1, extra: map[string]json.RawMessage{}}

	textRaw, ok := fields["text"]
	if !ok {
		return Scene{}, fmt.Errorf("%w: scene %d missing text", ErrInvalidInput, pos)
	}
	if err := json.Unmarshal(textRaw, &scene.Text); err != nil {
		return Scene{}, fmt.Errorf("%w: scene %d text is not a string", ErrInvalidInput, pos)
	}

	if numRaw, ok := fields["scene"]; ok {
		if err := json.Unmarshal(numRaw, &scene.Number); err != nil {
			return Scene{}, fmt.Errorf("%w: scene %d has non-integer scene field", ErrInvalidInput, pos)
		}
	}

	// timing from an earlier align pass round-trips; it is regenerated on output
	startRaw, hasStart := fields["start_time"]
	endRaw, hasEnd := fields["end_time"]
	if hasStart && hasEnd {
		if json.Unmarshal(startRaw, &scene.StartTime) == nil &&
			json.Unmarshal(endRaw, &scene.EndTime) == nil {
			scene.Duration = scene.EndTime - scene.StartTime
			if durRaw, ok := fields["duration"]; ok {
				_ = json.Unmarshal(durRaw, &scene.Duration)
			}
			scene.timed = true
		}
	}

	for key, value := range fields {
		switch key {
		case "scene", "text", "start_time", "end_time", "duration":
			// owned by this core
		default:
			scene.extra[key] = value
		}
	}
	return scene, nil
}

// Timed reports whether the scene carries start/end times.
func (s Scene) Timed() bool {
	return s.timed
}

// Units exposes the scenes as ordered text units for the alignment engine.
func (d *SceneDoc) Units() []align.TextUnit {
	units := make([]align.TextUnit, len(d.Scenes))
	for i, s := range d.Scenes {
		units[i] = align.TextUnit{ID: s.Number, RawText: s.Text}
	}
	return units
}

// ApplyTimeline copies reconciled segment times onto the scenes by position.
func (d *SceneDoc) ApplyTimeline(segments []align.AlignedSegment) {
	for i := range d.Scenes {
		if i >= len(segments) {
			break
		}
		seg := segments[i]
		d.Scenes[i].StartTime = seg.Start
		d.Scenes[i].EndTime = seg.End
		d.Scenes[i].Duration = seg.End - seg.Start
		d.Scenes[i].timed = true
	}
}

// MarshalJSON emits the scene with timing fields in 3-decimal fixed form and
// passthrough fields restored.
func (s Scene) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	for key, value := range s.extra {
		fields[key] = value
	}

	num, err := json.Marshal(s.Number)
	if err != nil {
		return nil, err
	}
	fields["scene"] = num

	text, err := json.Marshal(s.Text)
	if err != nil {
		return nil, err
	}
	fields["text"] = text

	if s.timed {
		fields["start_time"] = roundedSeconds(s.StartTime)
		fields["end_time"] = roundedSeconds(s.EndTime)
		fields["duration"] = roundedSeconds(s.Duration)
	}
	return json.Marshal(fields)
}

// WriteScenes serializes the document in the same shape it was parsed from.
func WriteScenes(doc *SceneDoc) ([]byte, error) {
	if doc.Metadata != nil {
		return json.MarshalIndent(struct {
			Metadata json.RawMessage `json:"metadata"`
			Scenes   []Scene         `json:"scenes"`
		}{Metadata: doc.Metadata, Scenes: doc.Scenes}, "", "  ")
	}
	return json.MarshalIndent(doc.Scenes, "", "  ")
}

func roundedSeconds(v float64) json.RawMessage {
	rounded := math.Round(v*1000) / 1000
	return json.RawMessage(strconv.FormatFloat(rounded, 'f', 3, 64))
}
