package align

import "testing"

func TestMatchEmptyUnitList(t *testing.T) {
	tokens := []TimedToken{{Text: "你好", Start: 0, End: 1}}
	segments, stats := Match(nil, BuildIndex(tokens), tokens)

	if len(segments) != 0 {
		t.Errorf("got %d segments, want 0", len(segments))
	}
	if stats.EmptyUnits != 0 || stats.NoMatchFallbacks != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestMatchSingleTokenSingleUnit(t *testing.T) {
	tokens := []TimedToken{{Text: "hello", Start: 1.0, End: 2.0}}
	units := []TextUnit{{ID: 1, RawText: "hello"}}

	segments, stats := Match(units, BuildIndex(tokens), tokens)

	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	seg := segments[0]
	if seg.Start != 1.0 || seg.End != 2.0 {
		t.Errorf("segment = [%v,%v], want [1.0,2.0]", seg.Start, seg.End)
	}
	if stats.NoMatchFallbacks != 0 {
		t.Errorf("unexpected fallbacks: %+v", stats)
	}
}

func TestMatchPunctuationGapScenario(t *testing.T) {
	tokens := []TimedToken{
		{Text: "你", Start: 0.0, End: 0.3},
		{Text: "好", Start: 0.3, End: 0.6},
		{Text: "，", Start: 0.6, End: 0.6},
		{Text: "世", Start: 0.6, End: 0.9},
		{Text: "界", Start: 0.9, End: 1.2},
	}
	units := []TextUnit{
		{ID: 1, RawText: "你好"},
		{ID: 2, RawText: "世界"},
	}

	segments, stats := Match(units, BuildIndex(tokens), tokens)
	segments = Reconcile(segments, 0)

	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Start != 0.0 || segments[0].End != 0.6 {
		t.Errorf("segment 1 = [%v,%v], want [0.0,0.6]", segments[0].Start, segments[0].End)
	}
	if segments[1].Start != 0.6 || segments[1].End != 1.2 {
		t.Errorf("segment 2 = [%v,%v], want [0.6,1.2]", segments[1].Start, segments[1].End)
	}
	if stats.NoMatchFallbacks != 0 || stats.EmptyUnits != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestMatchEmptyUnitBecomesStub(t *testing.T) {
	tokens := []TimedToken{
		{Text: "你好", Start: 0.0, End: 0.5},
		{Text: "世界", Start: 0.5, End: 1.0},
	}
	units := []TextUnit{
		{ID: 1, RawText: "你好"},
		{ID: 2, RawText: "……"},
		{ID: 3, RawText: "世界"},
	}

	segments, stats := Match(units, BuildIndex(tokens), tokens)

	if stats.EmptyUnits != 1 {
		t.Errorf("EmptyUnits = %d, want 1", stats.EmptyUnits)
	}
	stub := segments[1]
	if stub.Start != 0.5 || stub.End != 0.5 {
		t.Errorf("stub = [%v,%v], want zero-duration at 0.5", stub.Start, stub.End)
	}
	// the empty unit consumed no cursor budget, so the next unit still lands
	if segments[2].Start != 0.5 || segments[2].End != 1.0 {
		t.Errorf("segment 3 = [%v,%v], want [0.5,1.0]", segments[2].Start, segments[2].End)
	}
}

func TestMatchNoMatchFallbackCarriesPreviousEnd(t *testing.T) {
	tokens := []TimedToken{{Text: "你好", Start: 0.0, End: 0.6}}
	units := []TextUnit{
		{ID: 1, RawText: "你好"},
		{ID: 2, RawText: "多出来的"}, // beyond the token stream's total length
	}

	segments, stats := Match(units, BuildIndex(tokens), tokens)

	if stats.NoMatchFallbacks != 1 {
		t.Errorf("NoMatchFallbacks = %d, want 1", stats.NoMatchFallbacks)
	}
	fallback := segments[1]
	if fallback.Start != 0.6 || fallback.End != 0.6 {
		t.Errorf("fallback = [%v,%v], want zero-duration at 0.6", fallback.Start, fallback.End)
	}
}

func TestMatchTimestampFidelity(t *testing.T) {
	tokens := []TimedToken{
		{Text: "春眠", Start: 0.0, End: 0.8},
		{Text: "不觉", Start: 0.8, End: 1.5},
		{Text: "晓", Start: 1.5, End: 2.1},
		{Text: "处处", Start: 2.1, End: 3.0},
	}
	units := []TextUnit{
		{ID: 1, RawText: "春眠不觉"},
		{ID: 2, RawText: "晓处处"},
	}

	segments, _ := Match(units, BuildIndex(tokens), tokens)

	known := map[float64]bool{}
	for _, tok := range tokens {
		known[tok.Start] = true
		known[tok.End] = true
	}
	for _, seg := range segments {
		if !known[seg.Start] || !known[seg.End] {
			t.Errorf("segment %d has invented timestamps [%v,%v]", seg.UnitID, seg.Start, seg.End)
		}
	}
}

func TestMatchUnitStraddlingTokens(t *testing.T) {
	// one unit covering half of each of two tokens still spans both
	tokens := []TimedToken{
		{Text: "abcd", Start: 0.0, End: 1.0},
		{Text: "efgh", Start: 1.0, End: 2.0},
	}
	units := []TextUnit{
		{ID: 1, RawText: "ab"},
		{ID: 2, RawText: "cdef"},
		{ID: 3, RawText: "gh"},
	}

	segments, stats := Match(units, BuildIndex(tokens), tokens)

	if stats.NoMatchFallbacks != 0 {
		t.Fatalf("unexpected fallbacks: %+v", stats)
	}
	if segments[0].Start != 0.0 || segments[0].End != 1.0 {
		t.Errorf("segment 1 = [%v,%v], want [0.0,1.0]", segments[0].Start, segments[0].End)
	}
	if segments[1].Start != 0.0 || segments[1].End != 2.0 {
		t.Errorf("segment 2 = [%v,%v], want [0.0,2.0]", segments[1].Start, segments[1].End)
	}
	if segments[2].Start != 1.0 || segments[2].End != 2.0 {
		t.Errorf("segment 3 = [%v,%v], want [1.0,2.0]", segments[2].Start, segments[2].End)
	}
}

func TestSubstringFallbackFindsShiftedUnit(t *testing.T) {
	// the position strategy fails for a unit past the stream's end, but the
	// unit's text appears verbatim earlier in the stream
	tokens := []TimedToken{
		{Text: "你好世界", Start: 0.0, End: 1.0},
		{Text: "再见朋友", Start: 1.0, End: 2.0},
	}
	idx := BuildIndex(tokens)
	matcher := NewMatcherWithSubstringFallback(tokens)

	units := []TextUnit{
		{ID: 1, RawText: "你好世界再见朋友"}, // consumes the whole cursor budget
		{ID: 2, RawText: "再见朋友"},     // position range [8,12) is off the end
	}
	segments, stats := matcher.Match(units, idx, tokens)

	if stats.NoMatchFallbacks != 0 {
		t.Errorf("substring fallback should have matched: %+v", stats)
	}
	if segments[1].Start != 1.0 || segments[1].End != 2.0 {
		t.Errorf("segment 2 = [%v,%v], want [1.0,2.0]", segments[1].Start, segments[1].End)
	}
}
