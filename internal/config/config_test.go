package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	src := `[run]
max_steps = 5000
strict_resume = true

[debug]
ast = true
stack = true
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Run.MaxSteps != 5000 {
		t.Errorf("expected max_steps 5000, got %d", cfg.Run.MaxSteps)
	}
	if !cfg.Run.StrictResume {
		t.Error("expected strict_resume true")
	}
	if !cfg.Debug.AST || !cfg.Debug.Stack {
		t.Error("expected ast and stack debug flags")
	}
	if cfg.Debug.Dbg || cfg.Debug.Instr {
		t.Error("unset debug flags should stay false")
	}
}

func TestLoadIfPresentMissingFileIsDefault(t *testing.T) {
	cfg, err := LoadIfPresent(t.TempDir())
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Run.MaxSteps != 0 || cfg.Run.StrictResume {
		t.Error("expected default run config")
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("[run\nmax_steps = "), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadIfPresent(dir); err == nil {
		t.Fatal("expected error for malformed toml")
	}
}
