package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if !cfg.Exceptions {
		t.Error("exceptions must default to on")
	}
	if !cfg.Cache.Enabled {
		t.Error("cache must default to enabled")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("missing funxyc.yaml must not error: %v", err)
	}
	if !cfg.Exceptions {
		t.Error("defaults not applied")
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "exceptions: false\noutput_dir: build\ncache:\n  enabled: false\n  path: custom.db\n"
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Exceptions {
		t.Error("exceptions should be off")
	}
	if cfg.OutputDir != "build" {
		t.Errorf("output_dir = %q", cfg.OutputDir)
	}
	if cfg.Cache.Enabled || cfg.Cache.Path != "custom.db" {
		t.Errorf("cache config not applied: %+v", cfg.Cache)
	}
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestSourceExt(t *testing.T) {
	if !HasSourceExt("prog.px") {
		t.Error("prog.px should be recognized")
	}
	if HasSourceExt("prog.go") {
		t.Error("prog.go should not be recognized")
	}
	if got := TrimSourceExt("dir/prog.px"); got != "dir/prog" {
		t.Errorf("TrimSourceExt = %q", got)
	}
	if got := TrimSourceExt("prog.txt"); got != "prog.txt" {
		t.Errorf("TrimSourceExt should pass through unknown extensions, got %q", got)
	}
}
