package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode turns raw file bytes into text. A UTF-8 or UTF-16 byte order mark
// selects the encoding and is dropped; without one the input is read as UTF-8.
func Decode(raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode subtitle text: %w", err)
	}
	return string(out), nil
}

// Load reads, decodes and parses an SRT file.
func Load(path string) ([]Record, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".srt" {
		return nil, fmt.Errorf("unsupported subtitle format %q: use .srt", ext)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}

	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	records, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return records, nil
}
