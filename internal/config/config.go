// Package config loads application settings from an optional YAML file,
// an optional .env file and BLUENINJA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/saideep-g/blue-ninja/internal/llm"
)

// EnvPrefix prefixes every environment variable, e.g. BLUENINJA_DB.
const EnvPrefix = "BLUENINJA"

// Config holds application configuration.
type Config struct {
	Env        string     `mapstructure:"env"` // local, production
	DB         string     `mapstructure:"db"`  // SQLite path or postgres:// URL
	Cache      Cache      `mapstructure:"cache"`
	Curriculum Curriculum `mapstructure:"curriculum"`
	Content    Content    `mapstructure:"content"`
	LLM        llm.Config `mapstructure:"llm"`
	Day        Day        `mapstructure:"day"`
	Learner    Learner    `mapstructure:"learner"`
	Server     Server     `mapstructure:"server"`
	Daemon     Daemon     `mapstructure:"daemon"`
	Telemetry  Telemetry  `mapstructure:"telemetry"`
}

// Cache selects the session and batch cache. An empty URL keeps the
// cache in the learner database.
type Cache struct {
	URL string `mapstructure:"url"` // redis://...
}

// Curriculum locates the curriculum document. Empty uses the built-in one.
type Curriculum struct {
	Path string `mapstructure:"path"`
}

// Content configures where questions come from.
type Content struct {
	// Path is a directory of YAML bundles read in addition to the database.
	Path string `mapstructure:"path"`

	// Seed imports the built-in bundles on first start.
	Seed bool `mapstructure:"seed"`

	Authoring Authoring `mapstructure:"authoring"`
}

// Authoring enables LLM-written content as a last-resort source.
type Authoring struct {
	Enabled      bool `mapstructure:"enabled"`
	ItemsPerAtom int  `mapstructure:"items_per_atom"`
}

// Day configures when a practice day starts.
type Day struct {
	CutoverHour int    `mapstructure:"cutover_hour"`
	Timezone    string `mapstructure:"timezone"`
}

// Location resolves the configured timezone, UTC when empty.
func (d Day) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("day.timezone: %w", err)
	}
	return loc, nil
}

// Learner holds defaults for learners without a profile.
type Learner struct {
	DefaultGrade int `mapstructure:"default_grade"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `mapstructure:"addr"`
	AllowOrigins []string      `mapstructure:"allow_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Daemon configures background jobs.
type Daemon struct {
	ExpirySchedule string `mapstructure:"expiry_schedule"` // cron spec
	PurgeSchedule  string `mapstructure:"purge_schedule"`
}

// Telemetry configures tracing.
type Telemetry struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// IsProduction reports whether the production environment is selected.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("db", "")
	v.SetDefault("cache.url", "")
	v.SetDefault("curriculum.path", "")
	v.SetDefault("content.path", "")
	v.SetDefault("content.seed", true)
	v.SetDefault("content.authoring.enabled", false)
	v.SetDefault("content.authoring.items_per_atom", 6)

	llmDefaults := llm.DefaultConfig()
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.retry.max_attempts", llmDefaults.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", llmDefaults.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", llmDefaults.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", llmDefaults.Retry.Multiplier)
	v.SetDefault("llm.timeout", llmDefaults.Timeout)

	v.SetDefault("day.cutover_hour", 4)
	v.SetDefault("day.timezone", "")
	v.SetDefault("learner.default_grade", 7)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("daemon.expiry_schedule", "@every 15m")
	v.SetDefault("daemon.purge_schedule", "@hourly")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "blueninja")
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// New returns a viper instance with defaults and environment binding.
// Command-line flags are bound onto it by the caller.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration. path names a config file; when empty,
// blueninja.yaml is looked up in the working directory and ./config.
// A .env file in the working directory is loaded first when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blueninja")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Day.CutoverHour < 0 || c.Day.CutoverHour > 23 {
		errs = append(errs, fmt.Errorf("day.cutover_hour must be 0-23, got %d", c.Day.CutoverHour))
	}
	if _, err := c.Day.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Learner.DefaultGrade < 0 {
		errs = append(errs, fmt.Errorf("learner.default_grade must not be negative"))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be 0-1"))
	}
	if c.Content.Authoring.Enabled && !c.LLM.Enabled() {
		errs = append(errs, fmt.Errorf("content.authoring.enabled needs llm.provider"))
	}
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
