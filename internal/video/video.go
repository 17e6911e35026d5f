package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "katha/internal/ffmpeg"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// extracts audio from video file
	ExtractAudio(
		ctx context.Context,
		videoPath, outputPath string,
		opts ExtractAudioOptions,
	) error

	// renders a scene slideshow with a narration track
	Assemble(
		ctx context.Context,
		scenes []SceneClip,
		audioPath, outputPath string,
		opts AssembleOptions,
	) error
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // Output format (wav, mp3, aac, flac)
	SampleRate int    // Sample rate in Hz (e.g., 16000, 44100, 48000)
	Channels   int    // Number of channels (1 = mono, 2 = stereo)
	Bitrate    string // Bitrate for lossy formats (e.g., "128k", "320k")
}

// returns sensible defaults for audio extraction
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// SceneClip is one storyboard still and how long it stays on screen.
type SceneClip struct {
	ImagePath string
	Duration  float64 // seconds
}

// holds options for slideshow assembly
type AssembleOptions struct {
	Width        int    // output width (default 1080)
	Height       int    // output height (default 1920)
	FrameRate    int    // output frame rate (default 30)
	SubtitlePath string // optional SRT to burn in
}

// returns defaults for vertical short-form output
func DefaultAssembleOptions() AssembleOptions {
	return AssembleOptions{
		Width:     1080,
		Height:    1920,
		FrameRate: 30,
	}
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	tempDir string
}

func NewProcessor(tempDir string) *DefaultProcessor {
	return &DefaultProcessor{
		tempDir: tempDir,
	}
}

// extracts audio from video file
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",              // No video
		"ar": opts.SampleRate, // Sample rate
		"ac": opts.Channels,   // Channels
		"y":  "",              // Overwrite output
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	err := ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		Run()

	if err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}

// Assemble renders the scene stills as a slideshow over the narration track,
// using the concat demuxer with per-scene durations.
func (p *DefaultProcessor) Assemble(
	ctx context.Context,
	scenes []SceneClip,
	audioPath, outputPath string,
	opts AssembleOptions,
) error {
	if len(scenes) == 0 {
		return fmt.Errorf("no scenes to assemble")
	}
	for _, s := range scenes {
		if _, err := os.Stat(s.ImagePath); os.IsNotExist(err) {
			return fmt.Errorf("scene image not found: %s", s.ImagePath)
		}
		if s.Duration <= 0 {
			return fmt.Errorf(
				"scene %s has non-positive duration %f",
				s.ImagePath,
				s.Duration,
			)
		}
	}
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return fmt.Errorf("audio file not found: %s", audioPath)
	}

	if opts.Width <= 0 {
		opts.Width = 1080
	}
	if opts.Height <= 0 {
		opts.Height = 1920
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	listPath, err := p.writeConcatList(scenes)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	// scale to fit, pad to the target frame, then normalize pixel format
	filters := []string{
		fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease",
			opts.Width,
			opts.Height,
		),
		fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", opts.Width, opts.Height),
		"format=yuv420p",
	}
	if opts.SubtitlePath != "" {
		if _, err := os.Stat(opts.SubtitlePath); os.IsNotExist(err) {
			return fmt.Errorf("subtitle file not found: %s", opts.SubtitlePath)
		}
		filters = append(filters, fmt.Sprintf(
			"subtitles=%s",
			escapeFilterPath(opts.SubtitlePath),
		))
	}

	videoStream := ffmpeg.Input(listPath, ffmpeg.KwArgs{
		"f":    "concat",
		"safe": 0,
	})
	audioStream := ffmpeg.Input(audioPath)

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	err = ffmpeg.Output(
		[]*ffmpeg.Stream{videoStream, audioStream},
		outputPath,
		ffmpeg.KwArgs{
			"vf":       strings.Join(filters, ","),
			"r":        opts.FrameRate,
			"c:v":      "libx264",
			"c:a":      "aac",
			"shortest": "",
			"y":        "",
		},
	).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("ffmpeg assembly failed: %w", err)
	}

	return nil
}

// writes a concat demuxer list with per-scene durations. The final image is
// repeated without a duration so the last frame holds until the audio ends.
func (p *DefaultProcessor) writeConcatList(scenes []SceneClip) (string, error) {
	dir := p.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	listFile, err := os.CreateTemp(dir, "slideshow_*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}

	writeEntry := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		_, err = fmt.Fprintf(listFile, "file '%s'\n", escaped)
		return err
	}

	for _, s := range scenes {
		if err := writeEntry(s.ImagePath); err != nil {
			listFile.Close()
			os.Remove(listFile.Name())
			return "", fmt.Errorf("failed to write concat list: %w", err)
		}
		if _, err := fmt.Fprintf(listFile, "duration %f\n", s.Duration); err != nil {
			listFile.Close()
			os.Remove(listFile.Name())
			return "", fmt.Errorf("failed to write concat list: %w", err)
		}
	}
	if err := writeEntry(scenes[len(scenes)-1].ImagePath); err != nil {
		listFile.Close()
		os.Remove(listFile.Name())
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}

	if err := listFile.Close(); err != nil {
		os.Remove(listFile.Name())
		return "", fmt.Errorf("failed to close concat list: %w", err)
	}
	return listFile.Name(), nil
}

// escapes a path for use inside an ffmpeg filter argument
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, ":", `\:`)
	path = strings.ReplaceAll(path, "'", `\'`)
	return path
}
