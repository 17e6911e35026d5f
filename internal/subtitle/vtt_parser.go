package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

type VTTFile struct {
	cues []Cue
}

var (
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

func parseVTTFile(path string) (*VTTFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open VTT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var cues []Cue
	scanner := bufio.NewScanner(file)

	var current *Cue
	var textLines []string
	lineNum := 0
	headerParsed := false
	cueIndex := 0

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	// skips a block section such as NOTE or STYLE up to its blank line
	skipBlock := func() {
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == "" {
				break
			}
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmed := strings.TrimSpace(line)

		if !headerParsed && strings.HasPrefix(trimmed, "WEBVTT") {
			headerParsed = true
			continue
		}
		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			skipBlock()
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}

		if matches := vttTimestampRegex.FindStringSubmatch(line); len(matches) == 9 {
			flush()
			start, err := parseClockTime(matches[1], matches[2], matches[3], matches[4])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseClockTime(matches[5], matches[6], matches[7], matches[8])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			cueIndex++
			current = &Cue{Index: cueIndex, StartTime: start, EndTime: end}
			continue
		}

		if matches := vttShortTimestampRegex.FindStringSubmatch(line); len(matches) == 7 {
			flush()
			start, err := parseClockTime("00", matches[1], matches[2], matches[3])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := parseClockTime("00", matches[4], matches[5], matches[6])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			cueIndex++
			current = &Cue{Index: cueIndex, StartTime: start, EndTime: end}
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}

	return &VTTFile{cues: cues}, nil
}

func (f *VTTFile) Format() Format {
	return FormatVTT
}

func (f *VTTFile) Track() *Track {
	return &Track{Cues: f.cues, Format: string(FormatVTT)}
}

func (f *VTTFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.cues) {
		return fmt.Errorf("index %d out of range (0-%d)", index, len(f.cues)-1)
	}
	f.cues[index].Text = text
	return nil
}

func (f *VTTFile) Write(path string) error {
	writer, err := NewWriter(FormatVTT)
	if err != nil {
		return err
	}
	return writer.Write(f.Track(), path)
}
