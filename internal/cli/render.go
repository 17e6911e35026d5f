package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"katha/internal/timeline"
	"katha/internal/video"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [scenes_file]",
	Short: "Render a timed storyboard into a video",
	Long: `Render a timed storyboard (the output of 'katha align --scenes') into
a video: each scene's image is held for the scene's duration over the
narration track.

Images are looked up as scene_NNN.png in the images directory, the
naming the imagine command produces. Pass --subtitles to burn an SRT
file into the output.

Examples:
  katha render timed.json --images frames/ --audio narration.mp3
  katha render timed.json --images frames/ --audio narration.mp3 --subtitles narration.srt
  katha render timed.json --images frames/ --audio voice.wav -o short.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().
		String("images", "", "Directory with scene_NNN.png images (required)")
	renderCmd.Flags().
		String("audio", "", "Narration audio track (required)")
	renderCmd.Flags().
		String("subtitles", "", "SRT file to burn into the video")
	renderCmd.Flags().
		Int("width", 1080, "Output width in pixels")
	renderCmd.Flags().
		Int("height", 1920, "Output height in pixels")
	renderCmd.Flags().
		Int("frame-rate", 30, "Output frame rate")

	_ = renderCmd.MarkFlagRequired("images")
	_ = renderCmd.MarkFlagRequired("audio")
}

func runRender(cmd *cobra.Command, args []string) error {
	scenesPath := args[0]
	ctx := context.Background()

	imagesDir, _ := cmd.Flags().GetString("images")
	audioPath, _ := cmd.Flags().GetString("audio")
	subtitlePath, _ := cmd.Flags().GetString("subtitles")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	frameRate, _ := cmd.Flags().GetInt("frame-rate")
	outputPath, _ := cmd.Flags().GetString("output")

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

	clips := make([]video.SceneClip, len(doc.Scenes))
	for i, scene := range doc.Scenes {
		if !scene.Timed() {
			return fmt.Errorf(
				"scene %d has no timing; run 'katha align --scenes' first",
				scene.Number,
			)
		}
		clips[i] = video.SceneClip{
			ImagePath: filepath.Join(
				imagesDir,
				fmt.Sprintf("scene_%03d.png", scene.Number),
			),
			Duration: scene.Duration,
		}
	}

	if outputPath == "" {
		base := strings.TrimSuffix(scenesPath, filepath.Ext(scenesPath))
		outputPath = base + ".mp4"
	}

	logger.Infow("Rendering video",
		"scenes", len(clips),
		"audio", audioPath,
		"output", outputPath,
		"subtitles", subtitlePath,
	)

	tempDir, err := os.MkdirTemp("", "katha-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	processor := video.NewProcessor(tempDir)
	opts := video.AssembleOptions{
		Width:        width,
		Height:       height,
		FrameRate:    frameRate,
		SubtitlePath: subtitlePath,
	}

	if err := processor.Assemble(ctx, clips, audioPath, outputPath, opts); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Video rendered: %s\n", absOutput)
	fmt.Printf("  Scenes: %d\n", len(clips))

	return nil
}
