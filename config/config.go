// Package config provides application configuration with multi-source
// priority: environment variables (RAGMESH_ prefix) override the optional
// config file, which overrides built-in defaults. Validation uses sentinel
// errors so callers can branch with errors.Is().
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidHost indicates a service endpoint is missing or malformed.
	ErrInvalidHost = errors.New("invalid host")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidCollection indicates the vector collection name is empty.
	ErrInvalidCollection = errors.New("invalid collection name")

	// ErrInvalidDimensions indicates the embedding dimensions are out of range.
	ErrInvalidDimensions = errors.New("invalid embedding dimensions")

	// ErrInvalidTopK indicates the retrieval top-k is out of range.
	ErrInvalidTopK = errors.New("invalid retrieval top-k")

	// ErrInvalidToolIterations indicates the tool loop bound is out of range.
	ErrInvalidToolIterations = errors.New("invalid max tool iterations")
)

// OllamaConfig selects the inference endpoint and models.
type OllamaConfig struct {
	Host       string `mapstructure:"host"`
	Model      string `mapstructure:"model"`
	EmbedModel string `mapstructure:"embed_model"`
}

// QdrantConfig selects the vector store endpoint and collection schema.
type QdrantConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`
	Dimensions int    `mapstructure:"dimensions"`
	// ResetOnReuse selects the destructive delete-and-recreate policy when the
	// collection already exists. Off by default: existing points survive.
	ResetOnReuse bool `mapstructure:"reset_on_reuse"`
	Quantization bool `mapstructure:"quantization"`
}

// RetrievalConfig tunes retrieval augmentation.
type RetrievalConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TopK    int  `mapstructure:"top_k"`
	// ContinueWithoutRetrieval lets a turn proceed unaugmented when the store
	// fails, instead of aborting the turn.
	ContinueWithoutRetrieval bool `mapstructure:"continue_without_retrieval"`
}

// AgentConfig tunes the turn loop.
type AgentConfig struct {
	MaxToolIterations int    `mapstructure:"max_tool_iterations"`
	SystemPrompt      string `mapstructure:"system_prompt"`
}

// LogConfig tunes structured logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config aggregates all settings.
type Config struct {
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Log       LogConfig       `mapstructure:"log"`
}

// Load reads configuration from the optional file path (empty means defaults
// plus environment only) and the RAGMESH_* environment, then validates.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.1")
	v.SetDefault("ollama.embed_model", "")
	v.SetDefault("qdrant.url", "http://localhost:6333")
	v.SetDefault("qdrant.collection", "ragmesh")
	v.SetDefault("qdrant.dimensions", 4096)
	v.SetDefault("qdrant.reset_on_reuse", false)
	v.SetDefault("qdrant.quantization", false)
	v.SetDefault("retrieval.enabled", true)
	v.SetDefault("retrieval.top_k", 3)
	v.SetDefault("retrieval.continue_without_retrieval", true)
	v.SetDefault("agent.max_tool_iterations", 5)
	v.SetDefault("agent.system_prompt", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix("RAGMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and required fields.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Ollama.Host, "http://") && !strings.HasPrefix(c.Ollama.Host, "https://") {
		return fmt.Errorf("%w: ollama host %q must be an http(s) URL", ErrInvalidHost, c.Ollama.Host)
	}
	if !strings.HasPrefix(c.Qdrant.URL, "http://") && !strings.HasPrefix(c.Qdrant.URL, "https://") {
		return fmt.Errorf("%w: qdrant url %q must be an http(s) URL", ErrInvalidHost, c.Qdrant.URL)
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		return fmt.Errorf("%w: ollama model must not be empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.Qdrant.Collection) == "" {
		return fmt.Errorf("%w: qdrant collection must not be empty", ErrInvalidCollection)
	}
	if c.Qdrant.Dimensions < 1 || c.Qdrant.Dimensions > 65536 {
		return fmt.Errorf("%w: %d not in [1, 65536]", ErrInvalidDimensions, c.Qdrant.Dimensions)
	}
	if c.Retrieval.TopK < 1 || c.Retrieval.TopK > 100 {
		return fmt.Errorf("%w: %d not in [1, 100]", ErrInvalidTopK, c.Retrieval.TopK)
	}
	if c.Agent.MaxToolIterations < 1 || c.Agent.MaxToolIterations > 50 {
		return fmt.Errorf("%w: %d not in [1, 50]", ErrInvalidToolIterations, c.Agent.MaxToolIterations)
	}
	return nil
}
