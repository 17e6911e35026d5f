package align

import "math"

// Reflow redistributes revisedText across the time slots of tokens, preserving
// every start/end and replacing each token's text with a proportional slice of
// the revised normalized stream. Used when narration has been rewritten after
// timestamping, so the timestamped text no longer matches the text to render.
//
// Pure-punctuation tokens keep their original text and receive no character
// budget. Rounding remainders are appended to the last token that received a
// nonempty slice: an over-long final slot beats losing trailing narration.
func Reflow(tokens []TimedToken, revisedText string) ([]TimedToken, ReflowStats) {
	out := make([]TimedToken, len(tokens))
	copy(out, tokens)

	var stats ReflowStats
	revised := normalizedRunes(revisedText)

	if len(revised) == 0 {
		stats.EmptyRevised = true
		for i := range out {
			out[i].Text = ""
		}
		return out, stats
	}

	total := 0
	for _, tok := range tokens {
		total += normalizedLen(tok.Text)
	}

	ratio := 1.0
	if total > 0 {
		ratio = float64(len(revised)) / float64(total)
	} else {
		stats.DegenerateSource = true
	}

	acc := 0.0
	prev := 0
	lastFilled := -1

	for i, tok := range tokens {
		n := normalizedLen(tok.Text)
		if n == 0 {
			continue
		}

		acc += float64(n) * ratio
		target := int(math.Round(acc))
		if target < prev {
			target = prev
		}
		if target > len(revised) {
			target = len(revised)
		}

		out[i].Text = string(revised[prev:target])
		if target > prev {
			lastFilled = i
		} else {
			stats.StarvedTokens++
		}
		prev = target
	}

	if prev < len(revised) {
		rest := string(revised[prev:])
		if lastFilled >= 0 {
			out[lastFilled].Text += rest
		} else if len(out) > 0 {
			// zero-budget stream: force everything onto the first slot
			out[0].Text = rest
		}
	}

	return out, stats
}
