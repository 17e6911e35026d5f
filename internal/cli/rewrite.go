package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"katha/internal/rewrite"
	"katha/internal/subtitle"

	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [subtitle_file]",
	Short: "Rewrite subtitle narration using AI",
	Long: `Rewrite the text of an existing subtitle file using AI, keeping every
cue's timing untouched.

Supports SRT and VTT formats. Only the cue text changes; indices and
timestamps round-trip unchanged, so the output stays aligned with the
source media.

Examples:
  katha rewrite narration.srt --style "punchy short-video narration"
  katha rewrite talk.vtt --provider anthropic -o rewritten.vtt
  katha rewrite episode.srt --style "calm documentary voice" --batch-size 25`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rootCmd.AddCommand(rewriteCmd)

	rewriteCmd.Flags().
		StringP("style", "s", "", "Narration style to rewrite toward")
	rewriteCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	rewriteCmd.Flags().
		String("model", "", "Model to use for rewriting (provider-specific, uses sensible defaults)")
	rewriteCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	rewriteCmd.Flags().
		String("provider", "gemini", "Rewrite provider (gemini, openai, anthropic)")
	rewriteCmd.Flags().
		Int("concurrency", 3, "Number of parallel rewrite workers")
	rewriteCmd.Flags().
		Int("batch-size", 50, "Number of subtitle entries per API request")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	style, _ := cmd.Flags().GetString("style")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	ext := strings.ToLower(filepath.Ext(subtitlePath))
	if ext != ".srt" && ext != ".vtt" {
		return fmt.Errorf(
			"unsupported subtitle format %q: use .srt or .vtt",
			ext,
		)
	}

	provider := rewrite.Provider(providerStr)

	if apiKey == "" {
		apiKey = apiKeyFromEnv(providerStr)
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			apiKeyEnvVar(providerStr),
		)
	}

	if model != "" && !modelOverride {
		switch provider {
		case rewrite.ProviderGemini:
			if !isValidGeminiModel(model) {
				return fmt.Errorf(
					"unsupported Gemini model %q: valid models are %s (use --model-override to bypass)",
					model,
					strings.Join(validGeminiModels, ", "),
				)
			}
		case rewrite.ProviderOpenAI:
			if !isValidOpenAIModel(model) {
				return fmt.Errorf(
					"unsupported OpenAI model %q: valid models are %s (use --model-override to bypass)",
					model,
					strings.Join(validOpenAIModels, ", "),
				)
			}
		}
	}

	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outputPath = baseName + ".rewritten" + ext
	}

	logger.Infow("Starting narration rewrite",
		"input", subtitlePath,
		"output", outputPath,
		"style", style,
		"model", model,
	)

	subFile, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	track := subFile.Track()
	if len(track.Cues) == 0 {
		return fmt.Errorf("subtitle file contains no cues")
	}

	logger.Infow("Parsed subtitle file",
		"cues", len(track.Cues),
		"format", subFile.Format(),
	)

	opts := rewrite.Options{
		Style:     style,
		Language:  language,
		Model:     model,
		BatchSize: batchSize,
	}

	rewriter, err := rewrite.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create rewriter: %w", err)
	}

	items := make([]rewrite.RewriteItem, len(track.Cues))
	for i, cue := range track.Cues {
		items[i] = rewrite.RewriteItem{
			Index: i,
			Text:  cue.Text,
		}
	}

	logger.Infow("Rewriting narration",
		"items", len(items),
		"concurrency", concurrency,
	)

	var results []rewrite.RewriteResult
	if concurrentRewriter, ok := rewriter.(rewrite.ConcurrentRewriter); ok {
		results, err = concurrentRewriter.RewriteWithConcurrency(
			ctx,
			items,
			concurrency,
		)
	} else {
		results, err = rewriter.Rewrite(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("rewrite failed: %w", err)
	}

	logger.Infow("Rewrite complete",
		"results", len(results),
	)

	for _, result := range results {
		if result.Index < 0 || result.Index >= len(track.Cues) {
			logger.Warnw("Skipping invalid result index",
				"index", result.Index,
				"max", len(track.Cues)-1,
			)
			continue
		}

		if err := subFile.SetText(result.Index, result.Text); err != nil {
			return fmt.Errorf(
				"failed to set text for cue %d: %w",
				result.Index,
				err,
			)
		}
	}

	logger.Infow("Writing output file")
	if err := subFile.Write(outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Narration rewritten successfully: %s\n", absOutput)
	fmt.Printf("  Cues: %d\n", len(track.Cues))

	return nil
}
