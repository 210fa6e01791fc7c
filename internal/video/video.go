package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subview/internal/ffmpeg"
)

// subtitle stream inside a container
type Stream struct {
	Index    int    // position among subtitle streams, used with -map 0:s:N
	Codec    string // e.g. subrip, ass, mov_text
	Language string
	Title    string
}

// defines interface for reading subtitle tracks out of video files
type Processor interface {
	// lists subtitle streams in the container
	SubtitleStreams(ctx context.Context, videoPath string) ([]Stream, error)

	// converts one subtitle stream to an SRT file
	ExtractSubtitles(
		ctx context.Context,
		videoPath, outputPath string,
		opts ExtractOptions,
	) error
}

// holds options for subtitle extraction
type ExtractOptions struct {
	Stream int // subtitle stream index
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	paths ffmpegbin.BinaryPaths
}

func NewProcessor(paths ffmpegbin.BinaryPaths) *DefaultProcessor {
	return &DefaultProcessor{paths: paths}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Streams []struct {
		CodecName string            `json:"codec_name"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

func (p *DefaultProcessor) SubtitleStreams(
	ctx context.Context,
	videoPath string,
) ([]Stream, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	cmd := exec.CommandContext(ctx, p.paths.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "s",
		videoPath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseStreams(out.Bytes())
}

func parseStreams(data []byte) ([]Stream, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	streams := make([]Stream, 0, len(probe.Streams))
	for i, s := range probe.Streams {
		streams = append(streams, Stream{
			Index:    i,
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Title:    s.Tags["title"],
		})
	}
	return streams, nil
}

func (p *DefaultProcessor) ExtractSubtitles(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".srt") {
		return fmt.Errorf("output must be an .srt file: %s", outputPath)
	}
	if opts.Stream < 0 {
		return fmt.Errorf("invalid subtitle stream %d", opts.Stream)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	err := ffmpeg.Input(videoPath).
		Output(outputPath, extractArgs(opts)).
		OverWriteOutput().
		SetFfmpegPath(p.paths.FFmpeg).
		Run()

	if err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}

	return nil
}

func extractArgs(opts ExtractOptions) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"map": fmt.Sprintf("0:s:%d", opts.Stream), // one subtitle stream
		"c:s": "srt",                              // convert to SubRip
		"vn":  "",
		"an":  "",
	}
}

// replaces the extension of videoPath with .srt
func DefaultOutputPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
}

// reports whether path has a common video container extension
func IsVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mkv", ".mp4", ".m4v", ".mov", ".webm", ".avi", ".ts":
		return true
	}
	return false
}
