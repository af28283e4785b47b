package llm

import (
	"errors"
	"fmt"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

// modelAliases maps the short names used in config files to model ids.
// Anything not listed is sent as-is.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		"claude-sonnet": "claude-sonnet-4-20250514",
		"claude-haiku":  "claude-haiku-4-5-20251001",
	},
	ProviderOpenAI: {
		"gpt-4o":      "gpt-4o",
		"gpt-4o-mini": "gpt-4o-mini",
	},
	ProviderGemini: {
		"gemini-flash": "gemini-2.0-flash",
		"gemini-pro":   "gemini-2.0-pro",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// Config is the llm section of the application config.
type Config struct {
	// Provider selects anthropic, openai, gemini or mock. Empty turns
	// authoring off.
	Provider string `mapstructure:"provider"`

	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Retry     RetryConfig     `mapstructure:"retry"`

	// Timeout bounds one Generate call across all of its attempts.
	Timeout time.Duration `mapstructure:"timeout"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`

	// BaseURL points the client at an OpenAI-compatible gateway.
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`

	// BaseURL overrides the Gemini API endpoint, e.g. for a proxy.
	BaseURL string `mapstructure:"base_url"`
}

// RetryConfig shapes exponential backoff between attempts.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig picks the cheap model of each provider. No provider is
// selected.
func DefaultConfig() Config {
	return Config{
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// Validate checks that the selected provider has a key and that the
// retry settings make sense.
func (c Config) Validate() error {
	var errs []error
	missing := func(provider string) error {
		return fmt.Errorf("llm.%s.api_key is required for the %s provider", provider, provider)
	}
	switch c.Provider {
	case "", ProviderMock:
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			errs = append(errs, missing(ProviderAnthropic))
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, missing(ProviderOpenAI))
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, missing(ProviderGemini))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.Provider))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("llm.retry.max_attempts must not be negative, got %d", c.Retry.MaxAttempts))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must not be negative, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}
