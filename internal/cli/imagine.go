package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"katha/internal/imagegen"

	"github.com/spf13/cobra"
)

// matches the storyboard command's output shape; extra fields are ignored
type imagineScene struct {
	Number      int    `json:"scene"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
}

var imagineCmd = &cobra.Command{
	Use:   "imagine [scenes_file]",
	Short: "Generate a still image for each storyboard scene",
	Long: `Generate one image per scene from the image prompts in a storyboard
JSON file. Images are written as scene_NNN.png in the output directory,
the naming the render command expects.

Scenes without an image prompt fall back to the scene text.

Examples:
  katha imagine board.json
  katha imagine board.json --provider openai --size 1024x1536
  katha imagine board.json -o frames/ --aspect-ratio 9:16`,
	Args: cobra.ExactArgs(1),
	RunE: runImagine,
}

func init() {
	rootCmd.AddCommand(imagineCmd)

	imagineCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	imagineCmd.Flags().
		String("provider", "gemini", "Image provider (gemini, openai)")
	imagineCmd.Flags().
		String("model", "", "Model to use for generation")
	imagineCmd.Flags().
		String("aspect-ratio", "9:16", "Aspect ratio (Gemini only)")
	imagineCmd.Flags().
		String("size", "", "Image size (OpenAI only, e.g. 1024x1536)")
}

func runImagine(cmd *cobra.Command, args []string) error {
	scenesPath := args[0]
	ctx := context.Background()

	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	aspectRatio, _ := cmd.Flags().GetString("aspect-ratio")
	size, _ := cmd.Flags().GetString("size")
	outputDir, _ := cmd.Flags().GetString("output")

	provider := imagegen.Provider(providerStr)
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

	var scenes []imagineScene
	if err := json.Unmarshal(scenesData, &scenes); err != nil {
		// envelope form
		var envelope struct {
			Scenes []imagineScene `json:"scenes"`
		}
		if err := json.Unmarshal(scenesData, &envelope); err != nil {
			return fmt.Errorf("failed to parse scenes file: %w", err)
		}
		scenes = envelope.Scenes
	}
	if len(scenes) == 0 {
		return fmt.Errorf("storyboard contains no scenes")
	}

	if outputDir == "" {
		base := strings.TrimSuffix(scenesPath, filepath.Ext(scenesPath))
		outputDir = base + "_images"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Infow("Generating scene images",
		"scenes", len(scenes),
		"provider", providerStr,
		"output_dir", outputDir,
	)

	generator, err := imagegen.Factory(ctx, provider, apiKey, imagegen.Options{
		Model:       model,
		AspectRatio: aspectRatio,
		Size:        size,
	})
	if err != nil {
		return fmt.Errorf("failed to create image generator: %w", err)
	}

	for i, scene := range scenes {
		number := scene.Number
		if number == 0 {
			number = i + 1
		}
		prompt := scene.ImagePrompt
		if prompt == "" {
			prompt = scene.Text
		}

		imagePath := filepath.Join(
			outputDir,
			fmt.Sprintf("scene_%03d.png", number),
		)

		logger.Infow("Generating image",
			"scene", number,
			"path", imagePath,
		)

		if err := generator.Generate(ctx, prompt, imagePath); err != nil {
			return fmt.Errorf("failed to generate image for scene %d: %w", number, err)
		}
	}

	absOutput, _ := filepath.Abs(outputDir)
	fmt.Printf("Scene images generated: %s\n", absOutput)
	fmt.Printf("  Scenes: %d\n", len(scenes))

	return nil
}
