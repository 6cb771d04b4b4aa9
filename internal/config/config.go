// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"quotesense-api/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ExposeRawOutput   *bool         `yaml:"expose_raw_output"` // defaults to dev mode
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type MetricsConfig struct {
	Port int `yaml:"port"` // 0 disables the scrape endpoint
}

type HeartbeatConfig struct {
	Interval time.Duration `yaml:"interval"` // unset means 30s, negative disables
}

type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"` // 0 = exactly one upstream call
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

type AIConfig struct {
	Provider      string            `yaml:"provider"` // openai | gemini | noop
	OpenAIKey     string            `yaml:"openai_key"`
	OpenAIBaseURL string            `yaml:"openai_base_url"`
	GeminiKey     string            `yaml:"gemini_key"`
	GeminiURL     string            `yaml:"gemini_url"`
	TextModel     string            `yaml:"text_model"`
	VisionModel   string            `yaml:"vision_model"`
	Models        map[string]string `yaml:"models"` // model -> provider overrides

	Temperature    *float64      `yaml:"temperature"` // unset means 0.3; 0 is allowed
	MaxTokens      int           `yaml:"max_tokens"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	ConcurrentLimit int `yaml:"concurrent_limit"` // max concurrent AI calls
	MaxInputTokens  int `yaml:"max_input_tokens"` // 0 disables the bound

	PromptVersion string   `yaml:"prompt_version"`
	PromptFile    string   `yaml:"prompt_file"`
	PromptFields  []string `yaml:"prompt_fields"` // expected report keys for prompt_file

	Retry RetryConfig `yaml:"retry"`
}

const defaultTemperature = 0.3

// SamplingTemperature returns the configured temperature or the default.
func (a AIConfig) SamplingTemperature() float64 {
	if a.Temperature == nil {
		return defaultTemperature
	}
	return *a.Temperature
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	AI        AIConfig        `yaml:"ai"`

	Runtime RuntimeConfig `yaml:"-"`
}

// ExposeRawOutput reports whether malformed model output is echoed to callers.
func (c *Config) ExposeRawOutput() bool {
	if c.Server.ExposeRawOutput != nil {
		return *c.Server.ExposeRawOutput
	}
	return c.Runtime.Dev
}

// LoadConfig reads the YAML file at path (a missing file is allowed), a .env
// file in the working directory, then environment overrides.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)

	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.AI.OpenAIBaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Heartbeat.Interval == 0 {
		cfg.Heartbeat.Interval = 30 * time.Second
	}

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.Provider == "" {
		switch {
		case cfg.AI.OpenAIKey != "":
			cfg.AI.Provider = "openai"
		case cfg.AI.GeminiKey != "":
			cfg.AI.Provider = "gemini"
		case cfg.Runtime.Dev:
			cfg.AI.Provider = "noop"
		default:
			cfg.AI.Provider = "openai"
		}
	}
	if cfg.AI.TextModel == "" {
		cfg.AI.TextModel = defaultModel(cfg.AI.Provider)
	}
	if cfg.AI.VisionModel == "" {
		cfg.AI.VisionModel = cfg.AI.TextModel
	}
	if cfg.AI.Temperature == nil {
		t := defaultTemperature
		cfg.AI.Temperature = &t
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 600
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 60 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.PromptVersion == "" {
		cfg.AI.PromptVersion = "v1.0"
	}
	if cfg.AI.Retry.MaxRetries < 0 {
		cfg.AI.Retry.MaxRetries = 0
	}
	if cfg.AI.Retry.BaseDelay <= 0 {
		cfg.AI.Retry.BaseDelay = 500 * time.Millisecond
	}
	if cfg.AI.Retry.MaxDelay <= 0 {
		cfg.AI.Retry.MaxDelay = 8 * time.Second
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "noop":
		return "noop-estimator"
	default:
		return "gpt-4o-mini"
	}
}

// Validate fails when the service cannot serve any request as configured.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIKey == "" {
			return domain.NewError(domain.KindConfiguration, "OPENAI_API_KEY (ai.openai_key) is required for provider openai")
		}
	case "gemini":
		if c.AI.GeminiKey == "" {
			return domain.NewError(domain.KindConfiguration, "GEMINI_API_KEY (ai.gemini_key) is required for provider gemini")
		}
	case "noop":
		if !c.Runtime.Dev {
			return domain.NewError(domain.KindConfiguration, "provider noop is only allowed in dev mode")
		}
	default:
		return domain.NewError(domain.KindConfiguration, fmt.Sprintf("unknown ai.provider %q", c.AI.Provider))
	}
	if t := c.AI.SamplingTemperature(); t < 0 || t > 2 {
		return domain.NewError(domain.KindConfiguration, "ai.temperature must be within [0, 2]")
	}
	if c.AI.PromptFile != "" && len(c.AI.PromptFields) == 0 {
		return domain.NewError(domain.KindConfiguration, "ai.prompt_fields is required with ai.prompt_file")
	}
	return nil
}
