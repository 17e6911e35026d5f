package align

import "sort"

const (
	// acceptance threshold for the substring fallback: an anchored hit must
	// cover at least this fraction of the unit's normalized characters
	minSubstringMatchRatio = 0.40

	// shortest head prefix the substring fallback will anchor on
	minSubstringAnchor = 2
)

// a resolved [start,end] in seconds
type TimeRange struct {
	Start float64
	End   float64
}

// Strategy locates a time range for one unit. cursor is the unit's cumulative
// normalized-character offset within the token stream. Strategies are pure and
// are tried in order until one reports ok.
type Strategy func(unit TextUnit, cursor int, idx *PositionIndex, tokens []TimedToken) (TimeRange, bool)

// Matcher assigns time ranges to ordered text units. Units must appear in the
// same left-to-right order as the token stream; out-of-order units produce
// undefined ordering.
type Matcher struct {
	Strategies []Strategy
}

// position-based matching only, the primary strategy
func NewMatcher() *Matcher {
	return &Matcher{Strategies: []Strategy{PositionStrategy}}
}

// adds the head-anchored substring search after position matching; only useful
// for legacy inputs whose units quote the transcript text verbatim
func NewMatcherWithSubstringFallback(tokens []TimedToken) *Matcher {
	return &Matcher{Strategies: []Strategy{
		PositionStrategy,
		NewSubstringStrategy(tokens),
	}}
}

// Match runs the default position-based matcher over units.
func Match(units []TextUnit, idx *PositionIndex, tokens []TimedToken) ([]AlignedSegment, MatchStats) {
	return NewMatcher().Match(units, idx, tokens)
}

// Match assigns each unit a time range. The cursor is an explicit accumulator
// threaded through the walk; the call has no shared mutable state. Empty units
// and units matching no span become zero-duration stubs at the previous end
// time, counted in MatchStats rather than failing the run.
func (m *Matcher) Match(units []TextUnit, idx *PositionIndex, tokens []TimedToken) ([]AlignedSegment, MatchStats) {
	segments := make([]AlignedSegment, 0, len(units))
	var stats MatchStats

	cursor := 0
	prevEnd := 0.0

	for _, unit := range units {
		n := normalizedLen(unit.RawText)
		if n == 0 {
			stats.EmptyUnits++
			segments = append(segments, AlignedSegment{
				UnitID: unit.ID,
				Start:  prevEnd,
				End:    prevEnd,
				Text:   unit.RawText,
			})
			continue
		}

		var tr TimeRange
		matched := false
		for _, strategy := range m.Strategies {
			if tr, matched = strategy(unit, cursor, idx, tokens); matched {
				break
			}
		}
		if !matched {
			stats.NoMatchFallbacks++
			tr = TimeRange{Start: prevEnd, End: prevEnd}
		}

		segments = append(segments, AlignedSegment{
			UnitID: unit.ID,
			Start:  tr.Start,
			End:    tr.End,
			Text:   unit.RawText,
		})
		prevEnd = tr.End
		cursor += n
	}

	return segments, stats
}

// PositionStrategy resolves a unit from its cumulative character range
// [cursor, cursor+len): the first intersecting token supplies the start, the
// last supplies the end. All produced times are token timestamps, never
// interpolated.
func PositionStrategy(unit TextUnit, cursor int, idx *PositionIndex, tokens []TimedToken) (TimeRange, bool) {
	n := normalizedLen(unit.RawText)
	if n == 0 {
		return TimeRange{}, false
	}
	first, last, ok := intersectSpans(idx, cursor, cursor+n)
	if !ok {
		return TimeRange{}, false
	}
	return TimeRange{Start: tokens[first].Start, End: tokens[last].End}, true
}

// NewSubstringStrategy builds a head-anchored search over the token stream's
// normalized text. It looks for a shrinking prefix of the unit at or after the
// cursor and accepts once the anchored prefix covers minSubstringMatchRatio of
// the unit.
func NewSubstringStrategy(tokens []TimedToken) Strategy {
	var stream []rune
	for _, tok := range tokens {
		stream = append(stream, normalizedRunes(tok.Text)...)
	}

	return func(unit TextUnit, cursor int, idx *PositionIndex, tokens []TimedToken) (TimeRange, bool) {
		target := normalizedRunes(unit.RawText)
		if len(target) == 0 || len(stream) == 0 {
			return TimeRange{}, false
		}

		from := cursor
		if from > len(stream) {
			from = len(stream)
		}

		for head := len(target); head >= minSubstringAnchor; head = head / 2 {
			if float64(head) < minSubstringMatchRatio*float64(len(target)) {
				break
			}
			// prefer a hit at or after the cursor; a drifted cursor may sit
			// past the stream's end, in which case re-anchor from the start
			pos := indexRunes(stream[from:], target[:head])
			if pos >= 0 {
				pos += from
			} else {
				pos = indexRunes(stream, target[:head])
			}
			if pos < 0 {
				continue
			}

			lo := pos
			hi := lo + len(target)
			if hi > len(stream) {
				hi = len(stream)
			}
			first, last, ok := intersectSpans(idx, lo, hi)
			if !ok {
				continue
			}
			return TimeRange{Start: tokens[first].Start, End: tokens[last].End}, true
		}
		return TimeRange{}, false
	}
}

// first and last span indexes intersecting [lo, hi). Zero-width spans are
// always skipped: a punctuation slot can sit inside any range without carrying
// characters.
func intersectSpans(idx *PositionIndex, lo, hi int) (first, last int, ok bool) {
	first, last = -1, -1

	i := sort.Search(idx.Len(), func(i int) bool {
		return idx.Span(i).End > lo
	})
	for ; i < idx.Len(); i++ {
		sp := idx.Span(i)
		if sp.Start >= hi {
			break
		}
		if sp.Start == sp.End {
			continue
		}
		if sp.End > lo && sp.Start < hi {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	return first, last, first != -1
}

// naive rune-slice search; inputs are short subtitle lines
func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
