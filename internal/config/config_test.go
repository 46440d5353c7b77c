package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[matcher]
max_depth = 12

[report]
format = "json"
jobs = 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Matcher.MaxDepth = 12
	want.Report.Format = "json"
	want.Report.Jobs = 4
	want.Path = path
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), `
[matcher]
max_depth = 12
depth_limit = 3
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "matcher.depth_limit") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadValidatesValues(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"format", "[report]\nformat = \"xml\"\n", "[report].format"},
		{"color", "[report]\ncolor = \"sometimes\"\n", "[report].color"},
		{"level", "[trace]\nlevel = \"loud\"\n", "[trace].level"},
		{"depth", "[matcher]\nmax_depth = -1\n", "max_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, t.TempDir(), tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "[trace]\nlevel = \"phase\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Path != path || cfg.Trace.Level != "phase" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
