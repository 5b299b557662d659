package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

const (
	defaultConfigPath   = "config.yaml"
	defaultProvider     = ProviderOpenAI
	defaultOpenAIModel  = "gpt-3.5-turbo"
	defaultOpenAIURL    = "https://api.openai.com/v1"
	defaultGroqModel    = "llama-3.1-8b-instant"
	defaultGeminiModel  = "gemini-2.0-flash"
	defaultTemperature  = 0.7
	defaultTimeout      = 60 * time.Second
	defaultCount        = 1
	defaultMaxCount     = 10
	defaultParallelism  = 1
	defaultOutputDir    = "./output"
	defaultOutputFormat = "text"
	defaultHistorySize  = 50
	defaultGCSPrefix    = "ideas"
	defaultServerAddr   = ":8080"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 5 * time.Minute
	defaultOpenAISecret = "openai-api-key"
	defaultGroqSecret   = "groq-api-key"
	defaultGeminiSecret = "gemini-api-key"
)

type Config struct {
	OpenAIAPIKey          string `yaml:"-"`
	GroqAPIKey            string `yaml:"-"`
	GeminiAPIKey          string `yaml:"-"`
	GCPProject            string `yaml:"-"`
	GCSBucket             string `yaml:"-"`
	GoogleCredentialsFile string `yaml:"-"`

	Provider   string           `yaml:"provider"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Groq       GroqConfig       `yaml:"groq"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	GCS        GCSConfig        `yaml:"gcs"`
	Secrets    SecretsConfig    `yaml:"secrets"`
	Server     ServerConfig     `yaml:"server"`
}

type OpenAIConfig struct {
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature *float64      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

type GroqConfig struct {
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	Temperature *float64 `yaml:"temperature"`
}

type GeminiConfig struct {
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	Temperature *float64 `yaml:"temperature"`
}

type GenerationConfig struct {
	Count       int `yaml:"count"`
	MaxCount    int `yaml:"max_count"`
	Parallelism int `yaml:"parallelism"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Format      string `yaml:"format"`
	HistorySize int    `yaml:"history_size"`
}

type GCSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

type SecretsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OpenAISecret string `yaml:"openai_secret"`
	GroqSecret   string `yaml:"groq_secret"`
	GeminiSecret string `yaml:"gemini_secret"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Load reads .env, the environment and an optional config.yaml from the
// working directory.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := LoadFrom(ctx, defaultConfigPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No config.yaml found, using defaults")
		cfg = fromEnv()
		applyDefaults(cfg)
		return cfg, resolveSecrets(ctx, cfg)
	}
	return cfg, err
}

func LoadFrom(ctx context.Context, path string) (*Config, error) {
	cfg := fromEnv()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, resolveSecrets(ctx, cfg)
}

func fromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	return &Config{
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		GroqAPIKey:            os.Getenv("GROQ_API_KEY"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GCPProject:            os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GCSBucket:             os.Getenv("GCS_BUCKET"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
	}
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGroq, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	switch c.Output.Format {
	case "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}

	if c.Generation.Parallelism < 1 {
		return fmt.Errorf("generation.parallelism must be at least 1")
	}

	return nil
}

// APIKey returns the configured credential for the given provider.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// Model returns the configured model for the given provider.
func (c *Config) Model(provider string) string {
	switch provider {
	case ProviderGroq:
		return c.Groq.Model
	case ProviderGemini:
		return c.Gemini.Model
	default:
		return c.OpenAI.Model
	}
}

// Temperature returns the sampling temperature for the given provider. An
// explicit 0 is kept; only a missing value falls back to the default.
func (c *Config) Temperature(provider string) float64 {
	var t *float64
	switch provider {
	case ProviderGroq:
		t = c.Groq.Temperature
	case ProviderGemini:
		t = c.Gemini.Temperature
	default:
		t = c.OpenAI.Temperature
	}
	if t == nil {
		return defaultTemperature
	}
	return *t
}

func float64Ptr(v float64) *float64 {
	return &v
}

func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}
	applyOpenAIDefaults(cfg)
	applyGroqDefaults(cfg)
	applyGeminiDefaults(cfg)
	applyGenerationDefaults(cfg)
	applyOutputDefaults(cfg)
	applyGCSDefaults(cfg)
	applySecretsDefaults(cfg)
	applyServerDefaults(cfg)
}

func applyOpenAIDefaults(cfg *Config) {
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = defaultOpenAIModel
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = defaultOpenAIURL
	}
	if cfg.OpenAI.Temperature == nil {
		cfg.OpenAI.Temperature = float64Ptr(defaultTemperature)
	}
	if cfg.OpenAI.Timeout == 0 {
		cfg.OpenAI.Timeout = defaultTimeout
	}
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
	if cfg.Groq.Temperature == nil {
		cfg.Groq.Temperature = float64Ptr(defaultTemperature)
	}
}

func applyGeminiDefaults(cfg *Config) {
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaultGeminiModel
	}
	if cfg.Gemini.Temperature == nil {
		cfg.Gemini.Temperature = float64Ptr(defaultTemperature)
	}
}

func applyGenerationDefaults(cfg *Config) {
	if cfg.Generation.Count == 0 {
		cfg.Generation.Count = defaultCount
	}
	if cfg.Generation.MaxCount == 0 {
		cfg.Generation.MaxCount = defaultMaxCount
	}
	if cfg.Generation.Parallelism == 0 {
		cfg.Generation.Parallelism = defaultParallelism
	}
}

func applyOutputDefaults(cfg *Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = defaultOutputFormat
	}
	if cfg.Output.HistorySize == 0 {
		cfg.Output.HistorySize = defaultHistorySize
	}
}

func applyGCSDefaults(cfg *Config) {
	if cfg.GCS.Prefix == "" {
		cfg.GCS.Prefix = defaultGCSPrefix
	}
}

func applySecretsDefaults(cfg *Config) {
	if cfg.Secrets.OpenAISecret == "" {
		cfg.Secrets.OpenAISecret = defaultOpenAISecret
	}
	if cfg.Secrets.GroqSecret == "" {
		cfg.Secrets.GroqSecret = defaultGroqSecret
	}
	if cfg.Secrets.GeminiSecret == "" {
		cfg.Secrets.GeminiSecret = defaultGeminiSecret
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
}
