package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"

	"katha/internal/align"
)

// Generator shapes raw transcription tokens into display-ready cues: long
// segments are split, long lines are wrapped near their midpoint.
type Generator struct {
	MaxCharsPerLine int
	MaxLinesPerCue  int
	MaxDuration     time.Duration
}

func NewGenerator() *Generator {
	return &Generator{
		MaxCharsPerLine: 42, // standard subtitle line length
		MaxLinesPerCue:  2,  // most players support 2 lines
		MaxDuration:     7 * time.Second,
	}
}

// converts transcription tokens to a subtitle track
func (g *Generator) Generate(tokens []align.TimedToken) *Track {
	var cues []Cue
	index := 1

	for _, tok := range tokens {
		text := strings.TrimSpace(tok.Text)
		if text == "" {
			continue
		}

		start := secondsToDuration(tok.Start)
		end := secondsToDuration(tok.End)

		if g.needsSplit(text, end-start) {
			split := g.splitToken(text, start, end, index)
			cues = append(cues, split...)
			index += len(split)
		} else {
			cues = append(cues, Cue{
				Index:     index,
				StartTime: start,
				EndTime:   end,
				Text:      g.wrapText(text),
			})
			index++
		}
	}

	return &Track{Cues: cues, Format: string(FormatSRT)}
}

func (g *Generator) needsSplit(text string, duration time.Duration) bool {
	if utf8.RuneCountInString(text) > g.MaxCharsPerLine*g.MaxLinesPerCue {
		return true
	}
	return duration > g.MaxDuration
}

// splits an over-long token into multiple cues, dividing duration evenly
func (g *Generator) splitToken(text string, start, end time.Duration, startIndex int) []Cue {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	maxChars := g.MaxCharsPerLine * g.MaxLinesPerCue
	totalChars := utf8.RuneCountInString(text)
	totalDuration := end - start

	numSplits := (totalChars + maxChars - 1) / maxChars
	if numSplits < 1 {
		numSplits = 1
	}
	if byDuration := int(totalDuration/g.MaxDuration) + 1; byDuration > numSplits {
		numSplits = byDuration
	}

	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	durationPerSplit := totalDuration / time.Duration(numSplits)

	var cues []Cue
	currentStart := start

	for i := 0; i < numSplits && len(words) > 0; i++ {
		take := wordsPerSplit
		if take > len(words) {
			take = len(words)
		}
		splitText := strings.Join(words[:take], " ")
		words = words[take:]

		currentEnd := currentStart + durationPerSplit
		if len(words) == 0 {
			currentEnd = end
		}

		cues = append(cues, Cue{
			Index:     startIndex + i,
			StartTime: currentStart,
			EndTime:   currentEnd,
			Text:      g.wrapText(splitText),
		})
		currentStart = currentEnd
	}

	return cues
}

// wraps text onto two lines at the word boundary closest to the midpoint
func (g *Generator) wrapText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)
	if runeCount <= g.MaxCharsPerLine {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}
		diff := currentLen - middle
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		return strings.Join(words[:bestSplit], " ") + "\n" + strings.Join(words[bestSplit:], " ")
	}
	return text
}
