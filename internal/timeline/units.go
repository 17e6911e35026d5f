package timeline

import (
	"strings"

	"katha/internal/align"
)

// ParseUnits reads newline-delimited subtitle lines into ordered text units
// with 1-based IDs. Blank lines are dropped; a legitimately empty unit only
// arises from scene input, and the matcher handles those as zero-duration
// stubs anyway.
func ParseUnits(data []byte) []align.TextUnit {
	var units []align.TextUnit
	id := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		id++
		units = append(units, align.TextUnit{ID: id, RawText: line})
	}
	return units
}
