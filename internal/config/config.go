// Package config loads orbit's settings. Later layers override earlier
// ones: defaults, the TOML file, a .env file, ORBIT_* variables, and
// finally command-line flags, which cmd applies on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/abhisek/orbit/internal/llm"
)

// Config holds orbit configuration.
type Config struct {
	Concepts ConceptsConfig `toml:"concepts"`
	Diagram  DiagramConfig  `toml:"diagram"`
	LLM      LLMConfig      `toml:"llm"`
	Log      LogConfig      `toml:"log"`
	Store    StoreConfig    `toml:"store"`
}

// ConceptsConfig selects the concept file. An empty Path uses the built-in
// AI concept map.
type ConceptsConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// DiagramConfig tunes the explorer.
type DiagramConfig struct {
	CollapseDepth int  `toml:"collapse_depth"`
	TransitionMs  int  `toml:"transition_ms"`
	RevealMatches bool `toml:"reveal_matches"`
}

// Transition returns TransitionMs as a duration.
func (d DiagramConfig) Transition() time.Duration {
	return time.Duration(d.TransitionMs) * time.Millisecond
}

// LLMConfig controls insight generation. An empty Provider picks the first
// provider whose standard API key variable is set.
type LLMConfig struct {
	Provider       string  `toml:"provider"`
	Model          string  `toml:"model"`
	APIKey         string  `toml:"api_key,omitempty"`
	BaseURL        string  `toml:"base_url,omitempty"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RatePerMinute  float64 `toml:"rate_per_minute"`
	MaxAttempts    int     `toml:"max_attempts"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// StoreConfig locates the progress database. Empty uses the XDG data dir.
type StoreConfig struct {
	Path string `toml:"path,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Concepts: ConceptsConfig{Watch: true},
		Diagram:  DiagramConfig{CollapseDepth: 1, TransitionMs: 400, RevealMatches: true},
		LLM:      LLMConfig{TimeoutSeconds: 30, RatePerMinute: 10, MaxAttempts: 3},
		Log:      LogConfig{Level: "info"},
	}
}

// ConfigDir returns the orbit config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "orbit")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load builds the configuration from defaults, the TOML file at path (the
// default path when empty), a .env file in the working directory, and the
// environment. A missing config file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from ORBIT_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("ORBIT_CONCEPTS", &c.Concepts.Path)
	str("ORBIT_LOG_LEVEL", &c.Log.Level)
	str("ORBIT_LOG_FILE", &c.Log.File)
	str("ORBIT_DB", &c.Store.Path)
	str("ORBIT_LLM_PROVIDER", &c.LLM.Provider)
	str("ORBIT_LLM_MODEL", &c.LLM.Model)
	str("ORBIT_LLM_API_KEY", &c.LLM.APIKey)
	str("ORBIT_LLM_BASE_URL", &c.LLM.BaseURL)

	if v := getenv("ORBIT_WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ORBIT_WATCH: %w", err)
		}
		c.Concepts.Watch = b
	}
	if v := getenv("ORBIT_COLLAPSE_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORBIT_COLLAPSE_DEPTH: %w", err)
		}
		c.Diagram.CollapseDepth = n
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Diagram.CollapseDepth < 0 {
		errs = append(errs, fmt.Errorf("diagram.collapse_depth must not be negative"))
	}
	if c.Diagram.TransitionMs < 0 {
		errs = append(errs, fmt.Errorf("diagram.transition_ms must not be negative"))
	}
	if c.LLM.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("llm.timeout_seconds must not be negative"))
	}
	if c.LLM.RatePerMinute < 0 {
		errs = append(errs, fmt.Errorf("llm.rate_per_minute must not be negative"))
	}
	return errors.Join(errs...)
}

// LLMSettings resolves the provider settings. Without an explicit key the
// provider's standard variable is read through getenv; without a provider
// the first provider with a key set wins. ok is false when no provider
// could be chosen, and cfg then names the default provider without a key.
func (c *Config) LLMSettings(getenv func(string) string) (cfg llm.Config, ok bool) {
	cfg = llm.DefaultConfig()
	if c.LLM.Provider == "" && c.LLM.APIKey == "" {
		if found, ok := llm.DiscoverConfig(getenv); ok {
			cfg = found
		}
	} else if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}

	cfg.Model = c.LLM.Model
	cfg.BaseURL = c.LLM.BaseURL
	if c.LLM.APIKey != "" {
		cfg.APIKey = c.LLM.APIKey
	}
	if cfg.APIKey == "" {
		for _, k := range llm.KeyEnv {
			if k.Provider == cfg.Provider {
				cfg.APIKey = getenv(k.Env)
			}
		}
	}
	if c.LLM.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.LLM.TimeoutSeconds) * time.Second
	}
	cfg.Rate.PerMinute = c.LLM.RatePerMinute
	if c.LLM.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = c.LLM.MaxAttempts
	}
	return cfg, cfg.Validate() == nil
}

// Save writes the config to path, the default path when empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
// It reports whether a file was written.
func EnsureExists(path string) (bool, error) {
	if path == "" {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	return true, Save(Default(), path)
}
