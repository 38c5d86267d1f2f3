package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"htmlpipe/internal/render"
	"htmlpipe/internal/segment"
)

// Config is the on-disk configuration. Zero fields fall back to defaults.
type Config struct {
	// Prompt is the RE2 pattern that marks the end of a response.
	Prompt string `yaml:"prompt" json:"prompt"`
	// Backends is the renderer priority list.
	Backends []string `yaml:"backends" json:"backends"`
	// Width is the render width in columns; 0 uses the terminal width.
	Width         int           `yaml:"width,omitempty" json:"width,omitempty"`
	// RenderTimeout is a Go duration string such as "30s".
	RenderTimeout time.Duration `yaml:"render_timeout,omitempty" json:"render_timeout,omitempty" jsonschema:"type=string,example=30s"`
	Progress      Progress      `yaml:"progress" json:"progress"`
	LogLevel      string        `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	// Renderers adds backends or replaces builtins of the same name.
	Renderers []render.Spec `yaml:"renderers,omitempty" json:"renderers,omitempty"`
	// InitCommands are written to the subprocess right after it starts.
	InitCommands []string `yaml:"init_commands,omitempty" json:"init_commands,omitempty"`
}

type Progress struct {
	Enabled   bool  `yaml:"enabled" json:"enabled"`
	Step      int64 `yaml:"step,omitempty" json:"step,omitempty"`
	Threshold int64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Prompt:        segment.DefaultPrompt,
		Backends:      render.DefaultPriority(),
		RenderTimeout: segment.DefaultRenderTimeout,
		Progress:      Progress{Step: segment.DefaultProgressStep},
		LogLevel:      "info",
	}
}

// Load reads the config at path. A missing file yields Default() and no error.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent dirs.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cfg.normalize()
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// normalize trims the backend list, drops blanks and duplicates (keeping the
// first occurrence so priority is preserved) and restores defaults for
// emptied fields.
func (c *Config) normalize() {
	seen := map[string]bool{}
	list := make([]string, 0, len(c.Backends))
	for _, s := range c.Backends {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		list = append(list, s)
	}
	if len(list) == 0 {
		list = render.DefaultPriority()
	}
	c.Backends = list
	if c.Prompt == "" {
		c.Prompt = segment.DefaultPrompt
	}
	if c.Progress.Step <= 0 {
		c.Progress.Step = segment.DefaultProgressStep
	}
}

// Validate checks fields that would otherwise fail at session start.
func (c Config) Validate() error {
	if _, err := segment.NewDetector(c.Prompt); err != nil {
		return err
	}
	if c.Width < 0 {
		return fmt.Errorf("width must not be negative")
	}
	for _, r := range c.Renderers {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("renderer without name")
		}
		switch r.Mode {
		case render.ModePipe, render.ModeFile:
			if strings.TrimSpace(r.Command) == "" {
				return fmt.Errorf("renderer %q: command is required", r.Name)
			}
		case render.ModeNative:
		default:
			return fmt.Errorf("renderer %q: %w %q", r.Name, render.ErrUnknownMode, r.Mode)
		}
	}
	return nil
}

// Registry returns the builtin backends overlaid with the configured ones.
func (c Config) Registry() render.Registry {
	return render.NewRegistry(c.Renderers...)
}
