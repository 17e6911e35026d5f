package align

// Reconcile post-processes matched segments into a strictly contiguous
// timeline: no overlaps, no gaps, every start <= end. totalDuration, when
// positive, caps the final segment's end at the known audio length; pass 0 when
// unknown. The input slice is not modified. Reconciling an already-reconciled
// list is a no-op.
func Reconcile(segments []AlignedSegment, totalDuration float64) []AlignedSegment {
	out := make([]AlignedSegment, len(segments))
	copy(out, segments)
	if len(out) == 0 {
		return out
	}

	// backward pass: resolve overlaps. The later unit's start is
	// authoritative, except when both segments inherited the same start (a
	// fallback tie), where the shared interval is split proportionally to
	// character count.
	for i := len(out) - 2; i >= 0; i-- {
		prev, next := &out[i], &out[i+1]
		if prev.End <= next.Start {
			continue
		}
		if prev.Start == next.Start {
			prevChars := normalizedLen(prev.Text)
			nextChars := normalizedLen(next.Text)
			split := next.Start
			if prevChars+nextChars > 0 {
				share := float64(prevChars) / float64(prevChars+nextChars)
				split = prev.Start + (prev.End-prev.Start)*share
			}
			if split > next.End {
				split = next.End
			}
			prev.End = split
			next.Start = split
		} else {
			prev.End = next.Start
		}
		if prev.Start > prev.End {
			prev.Start = prev.End
		}
	}

	// forward pass: close gaps by extending the earlier segment. This is the
	// dominant case; tokens rarely tile the audio exactly, and extending
	// forward is what keeps subtitles on screen through the dead air.
	for i := 0; i+1 < len(out); i++ {
		if out[i+1].Start > out[i].End {
			out[i].End = out[i+1].Start
		}
	}

	if totalDuration > 0 {
		last := &out[len(out)-1]
		if last.End > totalDuration {
			last.End = totalDuration
			if last.Start > last.End {
				last.Start = last.End
			}
		}
	}

	return out
}
