package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"katha/internal/audio"
	"katha/internal/timeline"
	"katha/internal/tts"

	"github.com/spf13/cobra"
)

var narrateCmd = &cobra.Command{
	Use:   "narrate [scenes_file]",
	Short: "Synthesize narration audio for storyboard scenes",
	Long: `Synthesize speech for each scene in a storyboard JSON file and join
the clips into a single narration track.

Per-scene clips are kept next to the output so later stages can time
individual scenes against their audio.

Examples:
  katha narrate board.json
  katha narrate board.json --provider openai --voice nova
  katha narrate board.json --provider gemini -o narration.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runNarrate,
}

func init() {
	rootCmd.AddCommand(narrateCmd)

	narrateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	narrateCmd.Flags().
		String("provider", "openai", "Speech provider (openai, gemini)")
	narrateCmd.Flags().
		String("voice", "", "Voice name (provider-specific defaults)")
	narrateCmd.Flags().
		String("model", "", "Model to use for synthesis")
	narrateCmd.Flags().
		String("clips-dir", "", "Directory for per-scene clips (default: next to output)")
}

func runNarrate(cmd *cobra.Command, args []string) error {
	scenesPath := args[0]
	ctx := context.Background()

	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	voice, _ := cmd.Flags().GetString("voice")
	model, _ := cmd.Flags().GetString("model")
	clipsDir, _ := cmd.Flags().GetString("clips-dir")
	outputPath, _ := cmd.Flags().GetString("output")

	provider := tts.Provider(providerStr)
	if apiKey == "" {
		apiKey = apiKeyFromEnv(providerStr)
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			apiKeyEnvVar(providerStr),
		)
	}

	scenesData, err := os.ReadFile(scenesPath)
	if err != nil {
		return fmt.Errorf("failed to read scenes file: %w", err)
	}
	doc, err := timeline.ParseScenes(scenesData)
	if err != nil {
		return fmt.Errorf("failed to parse scenes file: %w", err)
	}
	if len(doc.Scenes) == 0 {
		return fmt.Errorf("storyboard contains no scenes")
	}

	// OpenAI emits MP3, Gemini emits WAV
	clipExt := ".mp3"
	if provider == tts.ProviderGemini {
		clipExt = ".wav"
	}

	if outputPath == "" {
		base := strings.TrimSuffix(scenesPath, filepath.Ext(scenesPath))
		outputPath = base + ".narration" + clipExt
	}
	if clipsDir == "" {
		clipsDir = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_clips"
	}
	if err := os.MkdirAll(clipsDir, 0755); err != nil {
		return fmt.Errorf("failed to create clips directory: %w", err)
	}

	logger.Infow("Synthesizing narration",
		"scenes", len(doc.Scenes),
		"provider", providerStr,
		"output", outputPath,
	)

	speaker, err := tts.Factory(ctx, provider, apiKey, tts.Options{
		Model: model,
		Voice: voice,
	})
	if err != nil {
		return fmt.Errorf("failed to create speaker: %w", err)
	}

	clipPaths := make([]string, 0, len(doc.Scenes))
	for i, scene := range doc.Scenes {
		clipPath := filepath.Join(
			clipsDir,
			fmt.Sprintf("scene_%03d%s", scene.Number, clipExt),
		)

		logger.Infow("Synthesizing scene",
			"scene", scene.Number,
			"clip", clipPath,
		)

		if err := speaker.Synthesize(ctx, scene.Text, clipPath); err != nil {
			return fmt.Errorf("failed to synthesize scene %d: %w", i+1, err)
		}
		clipPaths = append(clipPaths, clipPath)
	}

	if err := audio.ConcatAudio(ctx, clipPaths, outputPath); err != nil {
		return fmt.Errorf("failed to join narration clips: %w", err)
	}

	duration, err := audio.GetDuration(outputPath)
	if err != nil {
		return fmt.Errorf("failed to get narration duration: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Narration synthesized: %s\n", absOutput)
	fmt.Printf("  Scenes: %d\n", len(doc.Scenes))
	fmt.Printf("  Duration: %s\n", duration.String())

	return nil
}
