package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.OffsetStepMs != 500 || cfg.OffsetLimitMs != 480000 {
		t.Errorf("unexpected trim defaults: %+v", cfg)
	}
	if !cfg.AutoFollow {
		t.Error("expected auto follow on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, "offset_ms: -1500\nauto_follow: false\nlog_file: \" /tmp/subview.log \"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OffsetMs != -1500 {
		t.Errorf("OffsetMs = %d, want -1500", cfg.OffsetMs)
	}
	if cfg.AutoFollow {
		t.Error("expected auto_follow false")
	}
	if cfg.OffsetStepMs != DefaultOffsetStepMs {
		t.Errorf("absent key lost its default: %d", cfg.OffsetStepMs)
	}
	if cfg.LogFile != "/tmp/subview.log" {
		t.Errorf("LogFile not trimmed: %q", cfg.LogFile)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OffsetLimitMs != DefaultOffsetLimitMs {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"offset out of range", "offset_ms: 500000\n", "offset_ms"},
		{"negative step", "offset_step_ms: -5\n", "offset_step_ms"},
		{"negative limit", "offset_limit_ms: -1\n", "offset_limit_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "offset_ms: [1, 2\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestClampOffset(t *testing.T) {
	cfg := Default()
	tests := []struct {
		in, want int64
	}{
		{0, 0},
		{480000, 480000},
		{480500, 480000},
		{-999999, -480000},
	}
	for _, tt := range tests {
		if got := cfg.ClampOffset(tt.in); got != tt.want {
			t.Errorf("ClampOffset(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.OffsetMs = 2500
	cfg.Autostart = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.OffsetMs != 2500 || !loaded.Autostart {
		t.Errorf("unexpected loaded config: %+v", loaded)
	}
}
