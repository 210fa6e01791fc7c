package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/subview/internal/subtitle"
)

const testSRT = `3
00:00:01,000 --> 00:00:04,000
Hello, world!

1
00:00:05,500 --> 00:00:08,200
Second
line.
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	configPath = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSRT(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.srt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestFindRecord(t *testing.T) {
	records := []subtitle.Record{
		{ID: 5, Text: "a"},
		{ID: 2, Text: "b"},
		{ID: 5, Text: "c"},
	}

	tests := []struct {
		id       int
		wantOK   bool
		wantText string
	}{
		{5, true, "a"},
		{2, true, "b"},
		{9, false, ""},
	}

	for _, tt := range tests {
		got, ok := findRecord(records, tt.id)
		if ok != tt.wantOK || got.Text != tt.wantText {
			t.Errorf("findRecord(%d) = %+v, %v; want %q, %v", tt.id, got, ok, tt.wantText, tt.wantOK)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	r := subtitle.Record{StartTime: "00:00:05,500", EndTime: "00:00:08,200"}
	if got := formatDuration(r); got != "2.700s" {
		t.Errorf("formatDuration = %q, want 2.700s", got)
	}
	if got := formatDuration(subtitle.Record{StartTime: "bad"}); got != "?" {
		t.Errorf("formatDuration(bad) = %q, want ?", got)
	}
}

func TestListCommand(t *testing.T) {
	out, err := runCLI(t, "list", writeSRT(t, testSRT))
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Hello, world!", "Second line.", "00:00:05,500", "3.000s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListCommandLimit(t *testing.T) {
	out, err := runCLI(t, "list", "--limit", "1", writeSRT(t, testSRT))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Contains(out, "Second line.") {
		t.Errorf("limit not applied:\n%s", out)
	}
	if !strings.Contains(out, "1 of 2 subtitles shown") {
		t.Errorf("missing limit note:\n%s", out)
	}
}

func TestRecordsTableWrapsLongText(t *testing.T) {
	long := strings.Repeat("word ", 30)
	out := recordsTable([]subtitle.Record{
		{ID: 7, StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: long},
	}, 0)

	for _, line := range strings.Split(out, "\n") {
		if n := len([]rune(line)); n > 120 {
			t.Errorf("line of %d runes not wrapped: %q", n, line)
		}
	}
	if got := strings.Count(out, "word"); got != 30 {
		t.Errorf("wrapped table holds %d words, want 30", got)
	}
}

func TestListCommandMalformed(t *testing.T) {
	_, err := runCLI(t, "list", writeSRT(t, "x\n00:00:01,000 --> 00:00:02,000\nhi\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "block 1") {
		t.Errorf("expected block position in error, got: %v", err)
	}
}

func TestPlayRejectsUnknownRecord(t *testing.T) {
	_, err := runCLI(t, "play", "--plain", "--from", "42", writeSRT(t, testSRT))
	if err == nil || !strings.Contains(err.Error(), "no subtitle with id 42") {
		t.Errorf("expected unknown id error, got %v", err)
	}
}

func TestPlayRejectsEmptyFile(t *testing.T) {
	_, err := runCLI(t, "play", "--plain", writeSRT(t, "\n\n"))
	if err == nil || !strings.Contains(err.Error(), "no subtitles") {
		t.Errorf("expected empty file error, got %v", err)
	}
}

func TestExtractRejectsNonVideo(t *testing.T) {
	_, err := runCLI(t, "extract", "notes.txt")
	if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Errorf("expected unsupported file error, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subview.yaml")

	if _, err := runCLI(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "offset_limit_ms: 480000") {
		t.Errorf("unexpected config:\n%s", data)
	}

	if _, err := runCLI(t, "config", "init", "--config", path); err == nil {
		t.Error("expected refusal to overwrite")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "subview dev") {
		t.Errorf("unexpected version output: %q", out)
	}
}
