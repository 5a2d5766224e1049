package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const FileName = "coro.toml"

// Config is the optional per-project configuration. CLI flags override
// whatever is set here.
type Config struct {
	Run   RunConfig   `toml:"run"`
	Debug DebugConfig `toml:"debug"`
}

type RunConfig struct {
	// MaxSteps caps executed instructions; 0 means unlimited.
	MaxSteps int64 `toml:"max_steps"`
	// StrictResume rejects extra arguments when resuming a suspended
	// coroutine instead of ignoring them.
	StrictResume bool `toml:"strict_resume"`
}

type DebugConfig struct {
	AST   bool `toml:"ast"`
	Dbg   bool `toml:"dbg"`
	Instr bool `toml:"instr"`
	Stack bool `toml:"stack"`
}

func Default() *Config {
	return &Config{}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadIfPresent reads dir/coro.toml, falling back to defaults when the
// file does not exist.
func LoadIfPresent(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
