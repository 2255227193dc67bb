package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds service configuration. Values come from config.json when it
// exists, with environment variables taking precedence. A .env file in the
// working directory is loaded first so both sources see it.
type Config struct {
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	EmbeddingModel string `json:"embedding_model"`
	ChatModel      string `json:"chat_model"`
	PostgresURL    string `json:"postgres_url"`
	OllamaURL      string `json:"ollama_url"`
	DefaultModel   string `json:"default_model"`

	// EmbeddingDim is the vector width of the embedding model. Index-time
	// and query-time vectors must agree on it, as must the vector store
	// schema.
	EmbeddingDim int `json:"embedding_dim"`

	// GenerateTimeoutSec bounds a single generation call. Zero means the
	// 60 second default.
	GenerateTimeoutSec int `json:"generate_timeout_sec"`
}

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultEmbeddingDim   = 1536
	defaultOllamaURL      = "http://localhost:11434"
	defaultTimeoutSec     = 60
)

var (
	mu     sync.Mutex
	loaded *Config
)

// Load reads configuration once and caches it for the process lifetime.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if loaded != nil {
		return loaded, nil
	}

	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:            defaultBaseURL,
		EmbeddingModel:     defaultEmbeddingModel,
		EmbeddingDim:       defaultEmbeddingDim,
		OllamaURL:          defaultOllamaURL,
		GenerateTimeoutSec: defaultTimeoutSec,
	}

	if data, err := os.ReadFile("config.json"); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config.json: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.GenerateTimeoutSec <= 0 {
		cfg.GenerateTimeoutSec = defaultTimeoutSec
	}
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = defaultEmbeddingDim
	}

	loaded = cfg
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("EMBEDDING_DIM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EmbeddingDim = n
		}
	}
	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.ChatModel = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.PostgresURL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("DEFAULT_LLM"); v != "" {
		cfg.DefaultModel = v
	}
	if v := os.Getenv("GENERATE_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GenerateTimeoutSec = n
		}
	}
}

// GenerateTimeout returns the generation call timeout as a duration.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSec) * time.Second
}

// HasValidAPI reports whether the OpenAI-compatible API is configured.
func (c *Config) HasValidAPI() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.BaseURL) != ""
}

// Validate checks the fields every deployment needs.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "base_url")
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		missing = append(missing, "embedding_model")
	}
	if len(missing) > 0 {
		return fmt.Errorf("configuration validation failed: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Reset clears the cached configuration. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	loaded = nil
}
