// Package align reconciles rewritten narration and subtitle text with a
// timestamped token stream, producing a contiguous, non-overlapping timeline.
package align

// a timestamped atomic unit of transcribed speech (word or character)
type TimedToken struct {
	Text  string
	Start float64
	End   float64
}

// a caller-supplied subtitle line or scene narration requiring a time range
type TextUnit struct {
	ID      int
	RawText string
}

// the engine's output record: a text unit with its resolved time range
type AlignedSegment struct {
	UnitID int
	Start  float64
	End    float64
	Text   string
}

// fallback counters from a Match call; useful for judging alignment quality
type MatchStats struct {
	EmptyUnits       int // units with no normalized characters
	NoMatchFallbacks int // units that intersected no token span
}

// fallback counters from a Reflow call
type ReflowStats struct {
	DegenerateSource bool // token stream had zero normalized characters
	EmptyRevised     bool // revised text had zero normalized characters
	StarvedTokens    int  // tokens whose slice rounded down to empty
}
