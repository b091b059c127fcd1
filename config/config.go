package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath     = "~/.scheming.yaml"
	DefaultMaxDepth = 10000
)

// Config holds the interpreter settings read from YAML.
type Config struct {
	Prompt       string   `yaml:"prompt"`
	Continuation string   `yaml:"continuation"`
	HistoryFile  string   `yaml:"history_file"`
	Color        bool     `yaml:"color"`
	Debug        bool     `yaml:"debug"`
	MaxDepth     int      `yaml:"max_depth"`
	Prelude      []string `yaml:"prelude"`
}

func Default() *Config {
	return &Config{
		Prompt:       "scheming> ",
		Continuation: "... ",
		HistoryFile:  "~/.scheming_history",
		Color:        true,
		MaxDepth:     DefaultMaxDepth,
	}
}

// Path picks the config file: the explicit flag value, then
// SCHEMING_CONFIG, then the default location.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return env.Str("SCHEMING_CONFIG", DefaultPath)
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	abs := ExpandHome(path)
	file, err := os.Open(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", abs, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.normalize(filepath.Dir(abs))
	return cfg, nil
}

// ApplyEnv lets environment variables override the file.
func (c *Config) ApplyEnv() {
	c.Prompt = env.Str("SCHEMING_PROMPT", c.Prompt)
	c.HistoryFile = env.Str("SCHEMING_HISTORY", c.HistoryFile)
	c.MaxDepth = env.Int("SCHEMING_MAX_DEPTH", c.MaxDepth)
	if env.Bool("SCHEMING_DEBUG") {
		c.Debug = true
	}
	if env.Has("NO_COLOR") {
		c.Color = false
	}
}

// normalize makes relative prelude paths relative to the config file.
func (c *Config) normalize(dir string) {
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	for i, p := range c.Prelude {
		p = ExpandHome(strings.TrimSpace(p))
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		c.Prelude[i] = p
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
