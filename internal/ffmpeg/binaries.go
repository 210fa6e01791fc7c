package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ErrNotFound means no ffmpeg/ffprobe pair could be located.
var ErrNotFound = errors.New("ffmpeg not found: install it or set SUBVIEW_FFMPEG_PATH")

const (
	envFFmpegPath  = "SUBVIEW_FFMPEG_PATH"
	envFFprobePath = "SUBVIEW_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure resolves the binaries once per process. hint is a configured
// ffmpeg path; ffprobe is looked up next to it.
func Ensure(hint string) (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = resolve(hint, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func resolve(hint string, lookPath func(string) (string, error)) (BinaryPaths, error) {
	ffmpegPath := os.Getenv(envFFmpegPath)
	ffprobePath := os.Getenv(envFFprobePath)

	if ffmpegPath == "" && hint != "" {
		ffmpegPath = hint
	}
	if ffmpegPath != "" && ffprobePath == "" {
		sibling := filepath.Join(filepath.Dir(ffmpegPath), "ffprobe"+executableSuffix())
		if fileExists(sibling) {
			ffprobePath = sibling
		}
	}

	if ffmpegPath == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath == "" || ffprobePath == "" {
		return BinaryPaths{}, ErrNotFound
	}
	if !fileExists(ffmpegPath) {
		return BinaryPaths{}, fmt.Errorf("ffmpeg binary missing at %s", ffmpegPath)
	}
	if !isFFmpegBinary(filepath.Base(ffmpegPath)) {
		return BinaryPaths{}, fmt.Errorf("%s does not look like an ffmpeg binary", ffmpegPath)
	}

	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func isFFmpegBinary(name string) bool {
	name = strings.ToLower(strings.TrimSuffix(name, executableSuffix()))
	return strings.HasPrefix(name, "ffmpeg")
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
