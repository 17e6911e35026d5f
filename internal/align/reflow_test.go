package align

import "testing"

func totalNormalized(tokens []TimedToken) int {
	n := 0
	for _, tok := range tokens {
		n += normalizedLen(tok.Text)
	}
	return n
}

func TestReflowProportionalRedistribution(t *testing.T) {
	// original total 10 chars, revised 15 chars: ratio 1.5, so a 2-char
	// token receives 3 revised characters
	tokens := []TimedToken{
		{Text: "ab", Start: 0.0, End: 0.2},
		{Text: "cdef", Start: 0.2, End: 0.6},
		{Text: "ghij", Start: 0.6, End: 1.0},
	}
	revised := "aabbccddeeffggh"

	out, stats := Reflow(tokens, revised)

	if len(out) != len(tokens) {
		t.Fatalf("got %d tokens, want %d", len(out), len(tokens))
	}
	if stats.DegenerateSource || stats.EmptyRevised {
		t.Errorf("unexpected degenerate stats: %+v", stats)
	}
	if got := normalizedLen(out[0].Text); got != 3 {
		t.Errorf("first token got %d chars, want 3 (2 * ratio 1.5)", got)
	}
	for i := range out {
		if out[i].Start != tokens[i].Start || out[i].End != tokens[i].End {
			t.Errorf("token %d timestamps changed: got [%v,%v], want [%v,%v]",
				i, out[i].Start, out[i].End, tokens[i].Start, tokens[i].End)
		}
	}
}

func TestReflowConservesCharacters(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []TimedToken
		revised string
	}{
		{
			"longer revision",
			[]TimedToken{{Text: "你好"}, {Text: "世界"}},
			"这是一段更长的改写文本",
		},
		{
			"shorter revision",
			[]TimedToken{{Text: "hello"}, {Text: "there"}, {Text: "world"}},
			"hi all",
		},
		{
			"punctuation tokens interleaved",
			[]TimedToken{{Text: "你好"}, {Text: "，"}, {Text: "朋友"}, {Text: "。"}},
			"改写后的完整句子",
		},
		{
			"single token",
			[]TimedToken{{Text: "abc"}},
			"a much longer replacement text",
		},
		{
			"awkward ratio",
			[]TimedToken{{Text: "a"}, {Text: "b"}, {Text: "c"}},
			"0123456789",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := Reflow(tt.tokens, tt.revised)
			want := normalizedLen(tt.revised)
			if got := totalNormalized(out); got != want {
				t.Errorf("conservation violated: reflowed total %d, revised total %d", got, want)
			}
		})
	}
}

func TestReflowEmptyRevisedText(t *testing.T) {
	tokens := []TimedToken{
		{Text: "你好", Start: 0, End: 1},
		{Text: "，", Start: 1, End: 1},
	}
	out, stats := Reflow(tokens, "！？。")

	if !stats.EmptyRevised {
		t.Error("expected EmptyRevised stat")
	}
	for i, tok := range out {
		if tok.Text != "" {
			t.Errorf("token %d text = %q, want empty", i, tok.Text)
		}
	}
}

func TestReflowDegenerateSourceForcesFirstSlot(t *testing.T) {
	// token stream carries no normalized characters; all revised text lands
	// on the first slot rather than being dropped
	tokens := []TimedToken{
		{Text: "。", Start: 0, End: 0.5},
		{Text: "，", Start: 0.5, End: 1},
	}
	out, stats := Reflow(tokens, "你好")

	if !stats.DegenerateSource {
		t.Error("expected DegenerateSource stat")
	}
	if out[0].Text != "你好" {
		t.Errorf("first token text = %q, want %q", out[0].Text, "你好")
	}
	if got := totalNormalized(out); got != 2 {
		t.Errorf("conservation violated: total %d, want 2", got)
	}
}

func TestReflowPreservesPunctuationTokens(t *testing.T) {
	tokens := []TimedToken{
		{Text: "你好", Start: 0, End: 0.6},
		{Text: "，", Start: 0.6, End: 0.6},
		{Text: "世界", Start: 0.6, End: 1.2},
	}
	out, _ := Reflow(tokens, "早上好朋友们") // 6 chars over 4: ratio 1.5

	if out[1].Text != "，" {
		t.Errorf("punctuation token text = %q, want unchanged %q", out[1].Text, "，")
	}
	if got := normalizedLen(out[0].Text) + normalizedLen(out[2].Text); got != 6 {
		t.Errorf("nonempty slots carry %d chars, want 6", got)
	}
}

func TestReflowIsReferentiallyTransparent(t *testing.T) {
	tokens := []TimedToken{{Text: "abc", Start: 0, End: 1}, {Text: "def", Start: 1, End: 2}}
	first, _ := Reflow(tokens, "xyz123")
	second, _ := Reflow(tokens, "xyz123")

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token %d differs across calls: %+v vs %+v", i, first[i], second[i])
		}
	}
	if tokens[0].Text != "abc" {
		t.Error("Reflow mutated its input")
	}
}
