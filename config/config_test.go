package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/flow"
	"github.com/hupe1980/fashionagent/vectorindex"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvRegion, EnvBucket, EnvIndexHost, EnvIndexName, EnvEmbeddingSize} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1000*time.Second, cfg.ReadTimeout())
	assert.Equal(t, 10*time.Second, cfg.WeatherTimeout())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "fashionagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
region: eu-west-1
reasoning:
  provider: openai
  model: gpt-4o
  read_timeout: 30s
  stream: true
embedding:
  dimension: 384
agent:
  max_iterations: 4
`), 0o644))

	t.Setenv(EnvBucket, "fashion-assets")
	t.Setenv(EnvIndexHost, "https://abc.us-east-1.aoss.amazonaws.com")
	t.Setenv(EnvIndexName, "catalog")
	t.Setenv(EnvEmbeddingSize, "256")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, ProviderOpenAI, cfg.Reasoning.Provider)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout())
	assert.True(t, cfg.Reasoning.Stream)
	assert.Equal(t, 256, cfg.Embedding.Dimension)
	assert.Equal(t, 4, cfg.Agent.MaxIterations)
	assert.Equal(t, "fashion-assets", cfg.Bucket)
	assert.Equal(t, ArtifactS3, cfg.Artifacts.Backend)
	assert.Equal(t, "abc.us-east-1.aoss.amazonaws.com", cfg.Index.Host)
	assert.Equal(t, IndexOpenSearch, cfg.Index.Backend)
	assert.Equal(t, "catalog", cfg.Index.Name)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadEnvDimension(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEmbeddingSize, "large")

	_, err := Load("")
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"provider", func(c *Config) { c.Reasoning.Provider = "gemini" }},
		{"dimension", func(c *Config) { c.Embedding.Dimension = 512 }},
		{"bucket", func(c *Config) { c.Artifacts.Backend = ArtifactS3 }},
		{"artifact backend", func(c *Config) { c.Artifacts.Backend = "gcs" }},
		{"index backend", func(c *Config) { c.Index.Backend = "faiss" }},
		{"opensearch host", func(c *Config) { c.Index.Backend = IndexOpenSearch; c.Index.Name = "x" }},
		{"sqlite index path", func(c *Config) { c.Index.Backend = IndexSQLite; c.Index.Path = "" }},
		{"session backend", func(c *Config) { c.Session.Backend = "redis" }},
		{"iterations", func(c *Config) { c.Agent.MaxIterations = -1 }},
		{"unbounded iterations", func(c *Config) { c.Agent.MaxIterations = 0 }},
		{"concurrency", func(c *Config) { c.Agent.MaxConcurrentTurns = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, core.KindConfig, core.KindOf(err))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Agent.MaxHistory = 20
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestBuild_Local(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Reasoning.Provider = ProviderScripted
	cfg.Index.Backend = IndexSQLite
	cfg.Index.Path = filepath.Join(dir, "catalog.db")
	cfg.Index.Name = "catalog"
	cfg.Session.Backend = SessionSQLite
	cfg.Session.Path = filepath.Join(dir, "sessions.db")
	cfg.Agent.Instructions = "custom"
	cfg.Reasoning.Stream = true

	svc, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	assert.Equal(t, "mem://artifacts", svc.Artifacts.Namespace())
	assert.Equal(t, 1024, svc.Embedder.Dimensions())
	assert.True(t, svc.Retriever.Available())
	assert.Equal(t, "catalog", svc.Retriever.Database())
	assert.IsType(t, &vectorindex.SQLiteIndex{}, svc.Index)
	assert.Equal(t, "scripted", svc.Model.Info().Name)

	var fo flow.Options
	svc.FlowOptions()(&fo)
	assert.Equal(t, "catalog", fo.Database)
	assert.Equal(t, "custom", fo.Instructions)
	assert.Equal(t, flow.DefaultMaxIterations, fo.MaxIterations)
	assert.True(t, fo.Stream)

	assert.Len(t, svc.Toolset().Definitions(), 5)

	st, err := svc.Sessions.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", st.SessionID)
}

func TestBuild_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Embedding.Dimension = 100

	_, err := Build(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, core.ErrConfig)
}
