package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
	assert.Equal(t, "llama3.1", cfg.Ollama.Model)
	assert.Equal(t, "http://localhost:6333", cfg.Qdrant.URL)
	assert.Equal(t, "ragmesh", cfg.Qdrant.Collection)
	assert.False(t, cfg.Qdrant.ResetOnReuse)
	assert.True(t, cfg.Retrieval.Enabled)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	assert.Equal(t, 5, cfg.Agent.MaxToolIterations)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("RAGMESH_OLLAMA_MODEL", "mistral")
	t.Setenv("RAGMESH_QDRANT_DIMENSIONS", "768")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.Ollama.Model)
	assert.Equal(t, 768, cfg.Qdrant.Dimensions)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ollama:
  model: qwen2
qdrant:
  collection: notes
  reset_on_reuse: true
retrieval:
  top_k: 7
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qwen2", cfg.Ollama.Model)
	assert.Equal(t, "notes", cfg.Qdrant.Collection)
	assert.True(t, cfg.Qdrant.ResetOnReuse)
	assert.Equal(t, 7, cfg.Retrieval.TopK)
	// Untouched keys keep defaults.
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Ollama.Host = "localhost:11434"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidHost)

	cfg = base()
	cfg.Ollama.Model = "  "
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidModelName)

	cfg = base()
	cfg.Qdrant.Collection = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidCollection)

	cfg = base()
	cfg.Qdrant.Dimensions = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidDimensions)

	cfg = base()
	cfg.Retrieval.TopK = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTopK)

	cfg = base()
	cfg.Agent.MaxToolIterations = 100
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidToolIterations)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
