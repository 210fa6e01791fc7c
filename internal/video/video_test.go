package video

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	ffmpegbin "github.com/mgpai22/subview/internal/ffmpeg"
)

func TestParseStreams(t *testing.T) {
	data := []byte(`{
  "streams": [
    {"index": 2, "codec_name": "subrip", "tags": {"language": "eng", "title": "English"}},
    {"index": 3, "codec_name": "ass", "tags": {"language": "jpn"}},
    {"index": 4, "codec_name": "mov_text"}
  ]
}`)

	streams, err := parseStreams(data)
	if err != nil {
		t.Fatalf("parseStreams: %v", err)
	}
	if len(streams) != 3 {
		t.Fatalf("expected 3 streams, got %d", len(streams))
	}

	want := Stream{Index: 1, Codec: "ass", Language: "jpn"}
	if streams[1] != want {
		t.Errorf("stream 1: got %+v, want %+v", streams[1], want)
	}
	if streams[0].Title != "English" {
		t.Errorf("stream 0 title: got %q", streams[0].Title)
	}
	if streams[2].Language != "" {
		t.Errorf("stream 2 language: got %q", streams[2].Language)
	}
}

func TestParseStreamsInvalid(t *testing.T) {
	if _, err := parseStreams([]byte("not json")); err == nil {
		t.Error("expected error for invalid ffprobe output")
	}
}

func TestExtractArgs(t *testing.T) {
	args := extractArgs(ExtractOptions{Stream: 2})
	if args["map"] != "0:s:2" {
		t.Errorf("map = %v, want 0:s:2", args["map"])
	}
	if args["c:s"] != "srt" {
		t.Errorf("c:s = %v, want srt", args["c:s"])
	}
}

func TestExtractSubtitlesValidation(t *testing.T) {
	p := NewProcessor(ffmpegbin.BinaryPaths{FFmpeg: "ffmpeg", FFprobe: "ffprobe"})
	ctx := context.Background()
	dir := t.TempDir()

	err := p.ExtractSubtitles(ctx, filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "out.srt"), ExtractOptions{})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"movie.mkv":         "movie.srt",
		"/a/b/show.s01.mp4": "/a/b/show.s01.srt",
		"noext":             "noext.srt",
	}
	for in, want := range tests {
		if got := DefaultOutputPath(in); got != want {
			t.Errorf("DefaultOutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.mkv", true},
		{"a.MP4", true},
		{"a.srt", false},
		{"a", false},
	}
	for _, tt := range tests {
		if got := IsVideoFile(tt.path); got != tt.want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
