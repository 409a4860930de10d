package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MichaelAyles/tokn/pkg/netlist"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadFromXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	writeConfig(t, filepath.Join(dir, "tokn"), "workers: 3\npaper: A3\nroundtrip: true\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 3 || cfg.Paper != "A3" || !cfg.RoundTrip {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Tolerance != netlist.DefaultTolerance || cfg.Generator != "tokn_decoder" {
		t.Errorf("unset fields lost their defaults: %+v", cfg)
	}
}

func TestLoadExplicit(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "tolerance: 0.05\ngenerator: eeschema\ngenerator_version: \"8.0\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tolerance != 0.05 || cfg.Generator != "eeschema" || cfg.GeneratorVersion != "8.0" {
		t.Errorf("Load() = %+v", cfg)
	}
	if n := len(cfg.DecodeOptions()); n != 2 {
		t.Errorf("DecodeOptions() gave %d options, want 2", n)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing explicit", filepath.Join(dir, "nope.yaml"), "failed to read config"},
		{"bad yaml", writeConfig(t, filepath.Join(dir, "a"), "workers: [1\n"), "failed to parse config"},
		{"bad workers", writeConfig(t, filepath.Join(dir, "b"), "workers: 0\n"), "workers must be at least 1"},
		{"bad tolerance", writeConfig(t, filepath.Join(dir, "c"), "tolerance: -1\n"), "tolerance must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got, want := DefaultPath(), filepath.Join("/xdg", "tokn", FileName); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/someone")
	if got, want := DefaultPath(), filepath.Join("/home/someone", ".config", "tokn", FileName); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
