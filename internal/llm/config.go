package llm

import (
	"fmt"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds the settings of the one provider orbit talks to.
type Config struct {
	// Provider selects the backend: gemini, openai, anthropic, openrouter
	// or mock.
	Provider string

	// APIKey authenticates with the provider. Not needed for mock.
	APIKey string

	// Model is a friendly name ("gemini-flash") or a provider model id.
	// Empty selects the provider's default.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	Retry RetryConfig
	Rate  RateConfig

	// Timeout bounds a single Generate call, retries included.
	Timeout time.Duration
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// RateConfig limits how often requests leave the process.
type RateConfig struct {
	// PerMinute is the sustained request rate. Zero disables limiting.
	PerMinute float64
	Burst     int
}

// KeyEnv names the standard API key variable of each provider, in the
// order DiscoverConfig tries them.
var KeyEnv = []struct {
	Provider string
	Env      string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// defaultModels is the model used when Config.Model is empty.
var defaultModels = map[string]string{
	ProviderGemini:     "gemini-flash",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenRouter: "google/gemini-2.5-flash",
	ProviderMock:       "mock",
}

// DefaultConfig returns a Config for the default provider, without a key.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Rate: RateConfig{
			PerMinute: 10,
			Burst:     2,
		},
		Timeout: 30 * time.Second,
	}
}

// DiscoverConfig checks the standard API key variables through getenv in
// KeyEnv order and returns a Config for the first provider whose key is
// set. It returns (Config{}, false) when none is.
func DiscoverConfig(getenv func(string) string) (Config, bool) {
	for _, k := range KeyEnv {
		if key := getenv(k.Env); key != "" {
			cfg := DefaultConfig()
			cfg.Provider = k.Provider
			cfg.APIKey = key
			return cfg, true
		}
	}
	return Config{}, false
}

// ModelName returns the configured model or the provider's default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter:
		if c.APIKey == "" {
			return &ErrNotConfigured{Provider: c.Provider}
		}
	case ProviderMock:
		// No API key needed.
	case "":
		return &ErrNotConfigured{}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry attempts must not be negative")
	}
	if c.Rate.PerMinute < 0 {
		return fmt.Errorf("rate per minute must not be negative")
	}
	return nil
}

// resolveModel maps a friendly model name to a provider model ID. Names
// not in the map are passed through as direct model IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
