package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio    AudioConfig    `yaml:"audio"`
	STT      STTConfig      `yaml:"stt"`
	Azure    AzureConfig    `yaml:"azure"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Cache    CacheConfig    `yaml:"cache"`
	Results  ResultsConfig  `yaml:"results"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Pushover PushoverConfig `yaml:"pushover"`
	Log      LogConfig      `yaml:"log"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	HTTPAddr   string `yaml:"http_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	AuthToken  string `yaml:"auth_token" env:"ANSWER_AUTH_TOKEN"`
}

type STTConfig struct {
	Provider string `yaml:"provider"`
}

type AzureConfig struct {
	Key     string   `yaml:"key" env:"AZURE_SPEECH_KEY"`
	Region  string   `yaml:"region" env:"AZURE_SPEECH_REGION"`
	Locales []string `yaml:"locales"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Language string `yaml:"language"`
}

type CacheConfig struct {
	TTL string `yaml:"ttl"`
}

type ResultsConfig struct {
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type PushoverConfig struct {
	Token   string `yaml:"token" env:"PUSHOVER_TOKEN"`
	UserKey string `yaml:"user_key" env:"PUSHOVER_USER_KEY"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Load reads the YAML file at path, expanding ${VAR} references, then
// overlays credentials from the environment. A .env file in the working
// directory is loaded first if present. An empty path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.STT.Provider == "" {
		c.STT.Provider = ProviderAzure
	}
	if len(c.Azure.Locales) == 0 {
		c.Azure.Locales = []string{"en-US"}
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "10m"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports missing credentials for the selected provider.
func (c *Config) Validate() error {
	switch c.STT.Provider {
	case ProviderAzure:
		if c.Azure.Key == "" || c.Azure.Region == "" {
			return errors.New("azure credentials not found: set AZURE_SPEECH_KEY and AZURE_SPEECH_REGION")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return errors.New("openai credentials not found: set OPENAI_API_KEY")
		}
	case ProviderNone:
	default:
		return fmt.Errorf("unknown stt provider: %s", c.STT.Provider)
	}

	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
	}
	return nil
}

// CacheTTL is zero when caching is disabled with "0".
func (c *Config) CacheTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0
	}
	return ttl
}
