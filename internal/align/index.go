package align

// Span is the half-open range of cumulative normalized-character positions a
// token occupies. A pure-punctuation token yields Start == End; such zero-width
// spans never participate in matching.
type Span struct {
	Token int // index into the token slice the index was built from
	Start int
	End   int
}

// PositionIndex maps token indexes to cumulative normalized-character ranges.
// Built once per token stream and read-only afterward.
type PositionIndex struct {
	spans []Span
	total int
}

// BuildIndex computes the cumulative-length table for tokens. Span(i).End
// always equals Span(i+1).Start.
func BuildIndex(tokens []TimedToken) *PositionIndex {
	spans := make([]Span, len(tokens))
	cum := 0
	for i, tok := range tokens {
		n := normalizedLen(tok.Text)
		spans[i] = Span{Token: i, Start: cum, End: cum + n}
		cum += n
	}
	return &PositionIndex{spans: spans, total: cum}
}

// number of spans (== number of tokens indexed)
func (idx *PositionIndex) Len() int {
	return len(idx.spans)
}

// Span returns the i-th token's normalized-character range.
func (idx *PositionIndex) Span(i int) Span {
	return idx.spans[i]
}

// TotalChars returns the total normalized length of the indexed stream.
func (idx *PositionIndex) TotalChars() int {
	return idx.total
}
