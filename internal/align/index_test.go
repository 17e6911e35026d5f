package align

import "testing"

func TestBuildIndexCumulative(t *testing.T) {
	tokens := []TimedToken{
		{Text: "你好", Start: 0.0, End: 0.5},
		{Text: "，", Start: 0.5, End: 0.5},
		{Text: "world", Start: 0.5, End: 1.2},
	}

	idx := BuildIndex(tokens)

	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}
	if idx.TotalChars() != 7 {
		t.Errorf("TotalChars() = %d, want 7", idx.TotalChars())
	}

	want := []Span{
		{Token: 0, Start: 0, End: 2},
		{Token: 1, Start: 2, End: 2},
		{Token: 2, Start: 2, End: 7},
	}
	for i, w := range want {
		if got := idx.Span(i); got != w {
			t.Errorf("Span(%d) = %+v, want %+v", i, got, w)
		}
	}
}

func TestBuildIndexSpansAreContiguous(t *testing.T) {
	tokens := []TimedToken{
		{Text: "once"}, {Text: "upon"}, {Text: "..."}, {Text: "a"}, {Text: "time"},
	}
	idx := BuildIndex(tokens)
	for i := 0; i+1 < idx.Len(); i++ {
		if idx.Span(i).End != idx.Span(i+1).Start {
			t.Errorf("Span(%d).End = %d, Span(%d).Start = %d; want equal",
				i, idx.Span(i).End, i+1, idx.Span(i+1).Start)
		}
	}
	if last := idx.Span(idx.Len() - 1); last.End != idx.TotalChars() {
		t.Errorf("last span End = %d, want TotalChars %d", last.End, idx.TotalChars())
	}
}

func TestBuildIndexEmpty(t *testing.T) {
	idx := BuildIndex(nil)
	if idx.Len() != 0 || idx.TotalChars() != 0 {
		t.Errorf("empty index: Len=%d TotalChars=%d, want 0/0", idx.Len(), idx.TotalChars())
	}
}
