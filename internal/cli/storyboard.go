package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"katha/internal/storyboard"

	"github.com/spf13/cobra"
)

var storyboardCmd = &cobra.Command{
	Use:   "storyboard [narration_file]",
	Short: "Split narration into storyboard scenes with image prompts",
	Long: `Split a narration text file into visual scenes using AI.

Each scene carries a slice of the narration text plus an image prompt for
the imagine command. The output JSON feeds directly into 'katha align
--scenes' for timing and into the narrate/imagine/render stages.

Examples:
  katha storyboard narration.txt
  katha storyboard script.txt --scenes 8 -o board.json
  katha storyboard script.txt --style "watercolor, muted palette"`,
	Args: cobra.ExactArgs(1),
	RunE: runStoryboard,
}

func init() {
	rootCmd.AddCommand(storyboardCmd)

	storyboardCmd.Flags().
		StringP("api-key", "k", "", "Gemini API key (or set GEMINI_API_KEY env var)")
	storyboardCmd.Flags().
		Int("scenes", 0, "Target scene count (0 lets the model decide)")
	storyboardCmd.Flags().
		String("style", "", "Visual style hint for image prompts")
	storyboardCmd.Flags().
		String("model", "", "Gemini model to use")
}

func runStoryboard(cmd *cobra.Command, args []string) error {
	narrationPath := args[0]
	ctx := context.Background()

	apiKey, _ := cmd.Flags().GetString("api-key")
	sceneCount, _ := cmd.Flags().GetInt("scenes")
	style, _ := cmd.Flags().GetString("style")
	model, _ := cmd.Flags().GetString("model")
	outputPath, _ := cmd.Flags().GetString("output")

	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf(
			"Gemini API key is required: use --api-key flag or set GEMINI_API_KEY environment variable",
		)
	}

	narrationData, err := os.ReadFile(narrationPath)
	if err != nil {
		return fmt.Errorf("failed to read narration file: %w", err)
	}

	if outputPath == "" {
		base := strings.TrimSuffix(narrationPath, filepath.Ext(narrationPath))
		outputPath = base + ".storyboard.json"
	}

	logger.Infow("Generating storyboard",
		"input", narrationPath,
		"output", outputPath,
		"scene_count", sceneCount,
	)

	boarder, err := storyboard.Factory(
		ctx,
		storyboard.ProviderGemini,
		apiKey,
		storyboard.Options{
			Model:      model,
			SceneCount: sceneCount,
			Style:      style,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create storyboarder: %w", err)
	}

	scenes, err := boarder.Storyboard(ctx, string(narrationData))
	if err != nil {
		return fmt.Errorf("storyboard generation failed: %w", err)
	}

	out, err := json.MarshalIndent(scenes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize scenes: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Storyboard generated: %s\n", absOutput)
	fmt.Printf("  Scenes: %d\n", len(scenes))

	return nil
}
