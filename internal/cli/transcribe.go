package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"katha/internal/audio"
	"katha/internal/subtitle"
	"katha/internal/timeline"
	"katha/internal/transcribe"
	"katha/internal/video"

	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Transcribe an audio or video file to timestamped tokens",
	Long: `Transcribe the specified audio or video file into a timestamped token
stream, the input format of the align command.

The command accepts both audio files (mp3, wav, aac, etc.) and video files
(mp4, mkv, etc.). For video files, audio is automatically extracted before
transcription.

The audio is split into chunks (default 1 minute) and transcribed in
parallel. Word-level granularity gives the alignment engine the most
timing detail; segment granularity is coarser but cheaper.

Examples:
  katha transcribe video.mp4
  katha transcribe audio.mp3 --granularity word
  katha transcribe video.mp4 --provider openai --api-key YOUR_KEY
  katha transcribe podcast.mp3 -d 2 --concurrency 5 --srt subs.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	transcribeCmd.Flags().
		String("provider", "gemini", "Transcription provider (gemini, openai)")
	transcribeCmd.Flags().
		IntP("chunk-duration", "d", 1, "Chunk duration in minutes for splitting audio")
	transcribeCmd.Flags().
		Int("concurrency", 3, "Number of parallel transcription workers")
	transcribeCmd.Flags().
		String("model", "", "Model to use for transcription (provider-specific defaults)")
	transcribeCmd.Flags().
		String("granularity", "segment", "Timestamp granularity (segment, word)")
	transcribeCmd.Flags().
		String("transcript-language", "native", "Output language for transcript ('native' keeps the original)")
	transcribeCmd.Flags().
		String("srt", "", "Also write subtitles generated from the token stream to this path")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf(
			"unsupported file type: %s (expected audio or video file)",
			filepath.Ext(mediaPath),
		)
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	providerStr, _ := cmd.Flags().GetString("provider")
	chunkDuration, _ := cmd.Flags().GetInt("chunk-duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	model, _ := cmd.Flags().GetString("model")
	granularityStr, _ := cmd.Flags().GetString("granularity")
	transcriptLang, _ := cmd.Flags().GetString("transcript-language")
	srtPath, _ := cmd.Flags().GetString("srt")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	provider := transcribe.Provider(providerStr)
	if apiKey == "" {
		apiKey = apiKeyFromEnv(string(provider))
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			apiKeyEnvVar(string(provider)),
		)
	}

	var granularity transcribe.Granularity
	switch strings.ToLower(granularityStr) {
	case "segment":
		granularity = transcribe.GranularitySegment
	case "word":
		granularity = transcribe.GranularityWord
	default:
		return fmt.Errorf(
			"unsupported granularity %q: use segment or word",
			granularityStr,
		)
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = baseName + ".tokens.json"
	}

	logger.Infow("Starting transcription",
		"input", mediaPath,
		"output", outputPath,
		"provider", providerStr,
		"granularity", granularityStr,
		"chunk_duration", chunkDuration,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "katha-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath := filepath.Join(tempDir, "audio.mp3")
	compressionOpts := audio.DefaultCompressionOptions()

	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")

		processor := video.NewProcessor(tempDir)
		extractOpts := video.ExtractAudioOptions{
			Format:     compressionOpts.Format,
			SampleRate: compressionOpts.SampleRate,
			Channels:   compressionOpts.Channels,
			Bitrate:    compressionOpts.Bitrate,
		}

		if err := processor.ExtractAudio(ctx, mediaPath, audioPath, extractOpts); err != nil {
			return fmt.Errorf("failed to extract audio: %w", err)
		}
	} else {
		logger.Infow("Compressing audio for transcription")

		if err := audio.CompressAudio(ctx, mediaPath, audioPath, compressionOpts); err != nil {
			return fmt.Errorf("failed to compress audio: %w", err)
		}
	}

	duration, err := audio.GetDuration(audioPath)
	if err != nil {
		return fmt.Errorf("failed to get audio duration: %w", err)
	}

	logger.Infow("Audio prepared",
		"duration", duration.String(),
	)

	chunkDir := filepath.Join(tempDir, "chunks")
	chunkDur := time.Duration(chunkDuration) * time.Minute

	chunks, err := audio.ChunkAudio(ctx, audioPath, chunkDur, chunkDir)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}

	logger.Infow("Created audio chunks",
		"count", len(chunks),
	)

	transcribeOpts := transcribe.Options{
		Language:           language,
		TranscriptLanguage: transcriptLang,
		Model:              model,
		Granularity:        granularity,
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribeOpts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	var result *transcribe.Result
	if concurrent, ok := transcriber.(transcribe.ConcurrentTranscriber); ok && len(chunks) > 1 {
		result, err = concurrent.TranscribeWithChunks(ctx, chunks, concurrency)
	} else {
		result, err = transcriber.Transcribe(ctx, audioPath)
	}
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete",
		"tokens", len(result.Tokens),
	)

	out, err := timeline.WriteTokens(result.Tokens)
	if err != nil {
		return fmt.Errorf("failed to serialize tokens: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write tokens file: %w", err)
	}

	if srtPath != "" {
		generator := subtitle.NewGenerator()
		track := generator.Generate(result.Tokens)
		writer, err := subtitle.NewWriter(subtitle.GetFormatFromExtension(srtPath))
		if err != nil {
			return fmt.Errorf("failed to create subtitle writer: %w", err)
		}
		if err := writer.Write(track, srtPath); err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Transcription complete: %s\n", absOutput)
	fmt.Printf("  Tokens: %d\n", len(result.Tokens))
	fmt.Printf("  Duration: %s\n", duration.String())

	return nil
}

func apiKeyFromEnv(provider string) string {
	return os.Getenv(apiKeyEnvVar(provider))
}

func apiKeyEnvVar(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "API_KEY"
	}
}
