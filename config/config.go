// Package config loads the fashion agent configuration and builds the
// capability handles shared by every turn.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/embedding"
	"github.com/hupe1980/fashionagent/engine"
	"github.com/hupe1980/fashionagent/flow"
	"github.com/hupe1980/fashionagent/imagegen"
	"github.com/hupe1980/fashionagent/model/anthropic"
	"github.com/hupe1980/fashionagent/weather"
)

// Environment variables of the deployment. They override the YAML file.
const (
	EnvRegion        = "region_info"
	EnvBucket        = "s3_bucket"
	EnvIndexHost     = "aoss_host"
	EnvIndexName     = "index_name"
	EnvEmbeddingSize = "embeddingSize"
)

// Reasoning providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderOpenAI    = "openai"
	ProviderScripted  = "scripted"
)

// Index backends.
const (
	IndexNone       = "none"
	IndexSQLite     = "sqlite"
	IndexOpenSearch = "opensearch"
)

// Session backends.
const (
	SessionMemory = "memory"
	SessionSQLite = "sqlite"
)

// Artifact backends.
const (
	ArtifactMemory = "memory"
	ArtifactS3     = "s3"
)

// Config holds all fashion agent configuration.
type Config struct {
	Region string `yaml:"region"`
	Bucket string `yaml:"bucket"`

	Artifacts ArtifactConfig  `yaml:"artifacts"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Image     ImageConfig     `yaml:"image"`
	Index     IndexConfig     `yaml:"index"`
	Weather   WeatherConfig   `yaml:"weather"`
	Agent     AgentConfig     `yaml:"agent"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ArtifactConfig selects the artifact store.
type ArtifactConfig struct {
	Backend string `yaml:"backend"` // memory, s3
}

// ReasoningConfig configures the reasoning model.
type ReasoningConfig struct {
	Provider    string  `yaml:"provider"` // anthropic, bedrock, openai, scripted
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
	ReadTimeout string  `yaml:"read_timeout"`
	Stream      bool    `yaml:"stream"`
}

// EmbeddingConfig configures the multimodal embedder.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// ImageConfig configures image synthesis.
type ImageConfig struct {
	Model string `yaml:"model"`
}

// IndexConfig selects and configures the vector index.
type IndexConfig struct {
	Backend string `yaml:"backend"` // none, sqlite, opensearch
	Path    string `yaml:"path"`
	Host    string `yaml:"host"`
	Name    string `yaml:"name"`
}

// WeatherConfig configures the Open-Meteo client.
type WeatherConfig struct {
	Timeout      string `yaml:"timeout"`
	GeocodingURL string `yaml:"geocoding_url"`
	ForecastURL  string `yaml:"forecast_url"`
}

// AgentConfig configures the orchestrator and the turn engine.
type AgentConfig struct {
	MaxIterations      int    `yaml:"max_iterations"`
	MaxConcurrentTurns int    `yaml:"max_concurrent_turns"`
	MaxHistory         int    `yaml:"max_history"`
	Instructions       string `yaml:"instructions"`
	HumanInput         bool   `yaml:"human_input"`
}

// SessionConfig selects the checkpoint store.
type SessionConfig struct {
	Backend string `yaml:"backend"` // memory, sqlite
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Region: "us-east-1",
		Artifacts: ArtifactConfig{
			Backend: ArtifactMemory,
		},
		Reasoning: ReasoningConfig{
			Provider:    ProviderBedrock,
			Temperature: 0,
			MaxTokens:   4096,
			ReadTimeout: anthropic.DefaultReadTimeout.String(),
		},
		Embedding: EmbeddingConfig{
			Model:     embedding.DefaultModelID,
			Dimension: 1024,
		},
		Image: ImageConfig{
			Model: imagegen.DefaultModelID,
		},
		Index: IndexConfig{
			Backend: IndexNone,
			Path:    filepath.Join(".fashionagent", "catalog.db"),
		},
		Weather: WeatherConfig{
			Timeout:      weather.DefaultTimeout.String(),
			GeocodingURL: weather.DefaultGeocodingURL,
			ForecastURL:  weather.DefaultForecastURL,
		},
		Agent: AgentConfig{
			MaxIterations:      flow.DefaultMaxIterations,
			MaxConcurrentTurns: engine.DefaultConfig.MaxConcurrentTurns,
		},
		Session: SessionConfig{
			Backend: SessionMemory,
			Path:    filepath.Join(".fashionagent", "sessions.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies the deployment's environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvRegion); v != "" {
		c.Region = v
	}
	if v := os.Getenv(EnvBucket); v != "" {
		c.Bucket = v
		c.Artifacts.Backend = ArtifactS3
	}
	if v := os.Getenv(EnvIndexHost); v != "" {
		c.Index.Host = v
		c.Index.Backend = IndexOpenSearch
	}
	if v := os.Getenv(EnvIndexName); v != "" {
		c.Index.Name = v
	}
	if v := os.Getenv(EnvEmbeddingSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return core.Errorf("config.env", core.KindConfig, "%s must be an integer: %q", EnvEmbeddingSize, v)
		}
		c.Embedding.Dimension = n
	}

	c.Index.Host = strings.TrimPrefix(c.Index.Host, "https://")
	return nil
}

// ReadTimeout returns the reasoning read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return parseDuration(c.Reasoning.ReadTimeout, anthropic.DefaultReadTimeout)
}

// WeatherTimeout returns the weather HTTP timeout.
func (c *Config) WeatherTimeout() time.Duration {
	return parseDuration(c.Weather.Timeout, weather.DefaultTimeout)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks the configuration before any client is built.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return core.Errorf("config.validate", core.KindConfig, format, args...)
	}

	switch c.Reasoning.Provider {
	case ProviderAnthropic, ProviderBedrock, ProviderOpenAI, ProviderScripted:
	default:
		return fail("unknown reasoning provider %q", c.Reasoning.Provider)
	}

	if !embedding.IsSupportedDimension(c.Embedding.Dimension) {
		return fail("unsupported embedding dimension %d (supported: %v)", c.Embedding.Dimension, embedding.SupportedDimensions)
	}

	switch c.Artifacts.Backend {
	case ArtifactMemory:
	case ArtifactS3:
		if c.Bucket == "" {
			return fail("bucket is required for the s3 artifact backend (set %s)", EnvBucket)
		}
	default:
		return fail("unknown artifact backend %q", c.Artifacts.Backend)
	}

	switch c.Index.Backend {
	case IndexNone:
	case IndexSQLite:
		if c.Index.Path == "" {
			return fail("index path is required for the sqlite backend")
		}
	case IndexOpenSearch:
		if c.Index.Host == "" || c.Index.Name == "" {
			return fail("index host and name are required for the opensearch backend (set %s and %s)", EnvIndexHost, EnvIndexName)
		}
	default:
		return fail("unknown index backend %q", c.Index.Backend)
	}

	switch c.Session.Backend {
	case SessionMemory:
	case SessionSQLite:
		if c.Session.Path == "" {
			return fail("session path is required for the sqlite backend")
		}
	default:
		return fail("unknown session backend %q", c.Session.Backend)
	}

	if c.Agent.MaxIterations < 1 {
		return fail("max_iterations must be at least 1")
	}
	if c.Agent.MaxConcurrentTurns < 0 {
		return fail("max_concurrent_turns must not be negative")
	}

	return nil
}
