package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"katha/internal/align"
	"katha/internal/subtitle"
	"katha/internal/timeline"

	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align [tokens_file]",
	Short: "Align narration units onto transcript timestamps",
	Long: `Align revised narration back onto the timestamps of the original
transcript.

The tokens file is a JSON array of timestamped transcript tokens (the
output of the transcribe command). Narration units come either from a
plain text file (--units, one unit per line) or from a storyboard JSON
file (--scenes). Each unit is assigned a start and end time covering the
transcript tokens its text spans.

When the narration text differs from the transcript (a rewrite), pass the
revised text with --reflow: token timestamps are kept and token texts are
redistributed proportionally before matching.

Output is an SRT subtitle file, or a timed storyboard JSON when --scenes
is used.

Examples:
  katha align tokens.json --units narration.txt -o narration.srt
  katha align tokens.json --scenes storyboard.json -o timed.json
  katha align tokens.json --units lines.txt --reflow rewritten.txt
  katha align tokens.json --scenes board.json --duration 58.5`,
	Args: cobra.ExactArgs(1),
	RunE: runAlign,
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().
		String("units", "", "Plain text file with one narration unit per line")
	alignCmd.Flags().
		String("scenes", "", "Storyboard JSON file with scene objects")
	alignCmd.Flags().
		String("reflow", "", "File with revised narration text to reflow onto token timestamps")
	alignCmd.Flags().
		Float64("duration", 0, "Total output duration in seconds; segments are clamped to it")
	alignCmd.Flags().
		Bool("substring-fallback", false, "Enable substring search when position matching fails")
}

func runAlign(cmd *cobra.Command, args []string) error {
	tokensPath := args[0]

	unitsPath, _ := cmd.Flags().GetString("units")
	scenesPath, _ := cmd.Flags().GetString("scenes")
	reflowPath, _ := cmd.Flags().GetString("reflow")
	totalDuration, _ := cmd.Flags().GetFloat64("duration")
	substringFallback, _ := cmd.Flags().GetBool("substring-fallback")
	outputPath, _ := cmd.Flags().GetString("output")

	if unitsPath == "" && scenesPath == "" {
		return fmt.Errorf("either --units or --scenes is required")
	}
	if unitsPath != "" && scenesPath != "" {
		return fmt.Errorf("--units and --scenes are mutually exclusive")
	}

	tokensData, err := os.ReadFile(tokensPath)
	if err != nil {
		return fmt.Errorf("failed to read tokens file: %w", err)
	}
	tokens, err := timeline.ParseTokens(tokensData)
	if err != nil {
		return fmt.Errorf("failed to parse tokens file: %w", err)
	}

	logger.Infow("Loaded transcript tokens",
		"file", tokensPath,
		"tokens", len(tokens),
	)

	if reflowPath != "" {
		revisedData, err := os.ReadFile(reflowPath)
		if err != nil {
			return fmt.Errorf("failed to read reflow file: %w", err)
		}

		var stats align.ReflowStats
		tokens, stats = align.Reflow(tokens, string(revisedData))

		logger.Infow("Reflowed revised text onto token timestamps",
			"starved_tokens", stats.StarvedTokens,
		)
		if stats.DegenerateSource {
			logger.Warnw("Transcript has no alignable characters; revised text assigned to first token")
		}
		if stats.EmptyRevised {
			logger.Warnw("Revised text is empty; all token texts cleared")
		}
	}

	var units []align.TextUnit
	var doc *timeline.SceneDoc

	if scenesPath != "" {
		scenesData, err := os.ReadFile(scenesPath)
		if err != nil {
			return fmt.Errorf("failed to read scenes file: %w", err)
		}
		doc, err = timeline.ParseScenes(scenesData)
		if err != nil {
			return fmt.Errorf("failed to parse scenes file: %w", err)
		}
		units = doc.Units()
	} else {
		unitsData, err := os.ReadFile(unitsPath)
		if err != nil {
			return fmt.Errorf("failed to read units file: %w", err)
		}
		units = timeline.ParseUnits(unitsData)
	}

	if len(units) == 0 {
		return fmt.Errorf("no narration units to align")
	}

	logger.Infow("Aligning narration units",
		"units", len(units),
		"substring_fallback", substringFallback,
	)

	idx := align.BuildIndex(tokens)

	matcher := align.NewMatcher()
	if substringFallback {
		matcher = align.NewMatcherWithSubstringFallback(tokens)
	}

	segments, stats := matcher.Match(units, idx, tokens)
	segments = align.Reconcile(segments, totalDuration)

	if stats.EmptyUnits > 0 {
		logger.Warnw("Some units have no alignable text",
			"empty_units", stats.EmptyUnits,
		)
	}
	if stats.NoMatchFallbacks > 0 {
		logger.Warnw("Some units did not match the transcript and were pinned to the cursor",
			"no_match_fallbacks", stats.NoMatchFallbacks,
		)
	}

	if doc != nil {
		doc.ApplyTimeline(segments)
		if outputPath == "" {
			base := strings.TrimSuffix(scenesPath, filepath.Ext(scenesPath))
			outputPath = base + ".timed.json"
		}
		out, err := timeline.WriteScenes(doc)
		if err != nil {
			return fmt.Errorf("failed to serialize timed scenes: %w", err)
		}
		if err := os.WriteFile(outputPath, out, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	} else {
		if outputPath == "" {
			base := strings.TrimSuffix(unitsPath, filepath.Ext(unitsPath))
			outputPath = base + ".srt"
		}
		track := subtitle.FromSegments(segments)
		writer, err := subtitle.NewWriter(subtitle.GetFormatFromExtension(outputPath))
		if err != nil {
			return fmt.Errorf("failed to create subtitle writer: %w", err)
		}
		if err := writer.Write(track, outputPath); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Alignment complete: %s\n", absOutput)
	fmt.Printf("  Units: %d\n", len(units))
	if stats.EmptyUnits > 0 || stats.NoMatchFallbacks > 0 {
		fmt.Printf("  Empty units: %d, unmatched units: %d\n",
			stats.EmptyUnits, stats.NoMatchFallbacks)
	}

	return nil
}
