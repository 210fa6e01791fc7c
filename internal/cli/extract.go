package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	ffmpegbin "github.com/mgpai22/subview/internal/ffmpeg"
	"github.com/mgpai22/subview/internal/subtitle"
	"github.com/mgpai22/subview/internal/video"
)

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract a subtitle track from a video file as SRT",
	Long: `Extract one subtitle stream from a video container and convert it to SRT,
ready for subview play.

Requires ffmpeg and ffprobe in PATH, in SUBVIEW_FFMPEG_PATH /
SUBVIEW_FFPROBE_PATH, or configured with ffmpeg_path.

Examples:
  subview extract movie.mkv
  subview extract movie.mkv --list
  subview extract movie.mkv --stream 1 -o movie.en.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().
		StringP("output", "o", "", "Output SRT path (default: video name with .srt)")
	extractCmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream index (see --list)")
	extractCmd.Flags().
		Bool("list", false, "List subtitle streams instead of extracting")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	outputPath, _ := cmd.Flags().GetString("output")
	stream, _ := cmd.Flags().GetInt("stream")
	list, _ := cmd.Flags().GetBool("list")

	if !video.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}
	if outputPath == "" {
		outputPath = video.DefaultOutputPath(videoPath)
	}

	paths, err := ffmpegbin.Ensure(cfg.FFmpegPath)
	if err != nil {
		return err
	}
	logger.Debugw("Using ffmpeg", "ffmpeg", paths.FFmpeg, "ffprobe", paths.FFprobe)

	ctx := context.Background()
	processor := video.NewProcessor(paths)

	streams, err := processor.SubtitleStreams(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("failed to read streams: %w", err)
	}

	if list {
		fmt.Fprintln(cmd.OutOrStdout(), streamsTable(streams))
		return nil
	}

	if len(streams) == 0 {
		return fmt.Errorf("no subtitle streams in %s", videoPath)
	}
	if stream < 0 || stream >= len(streams) {
		return fmt.Errorf("subtitle stream %d out of range (0-%d)", stream, len(streams)-1)
	}

	logger.Infow("Extracting subtitles",
		"video", videoPath,
		"output", outputPath,
		"stream", stream,
		"codec", streams[stream].Codec,
		"language", streams[stream].Language,
	)

	opts := video.ExtractOptions{Stream: stream}
	if err := processor.ExtractSubtitles(ctx, videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	// make sure the result plays
	records, err := subtitle.Load(outputPath)
	if err != nil {
		return fmt.Errorf("extracted file is not playable: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles extracted successfully: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Entries: %d\n", len(records))

	return nil
}

func streamsTable(streams []video.Stream) string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			s.Codec,
			s.Language,
			s.Title,
		})
	}
	return renderTable([]column{
		{title: "Stream", align: text.AlignRight},
		{title: "Codec"},
		{title: "Language"},
		{title: "Title"},
	}, rows)
}
