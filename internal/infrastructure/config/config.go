// Package config loads service settings from YAML, a .env file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the course assistant.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Search    SearchConfig    `yaml:"search"`
	Translate TranslateConfig `yaml:"translate"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// DegradeErrors answers upstream failures with HTTP 200 and an apology
	// text instead of a 5xx status.
	DegradeErrors bool   `yaml:"degrade_errors"`
	Persona       string `yaml:"persona"`
}

// DataConfig locates the catalog inputs and the persisted index.
type DataConfig struct {
	Dir        string `yaml:"dir"`
	CoursesCSV string `yaml:"courses_csv"`
	LangMapCSV string `yaml:"lang_map_csv"`
	IndexPath  string `yaml:"index_path"`
}

// ChunkingConfig sizes are in characters.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig selects the embedder.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "tfidf", "openai", "ollama"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	APIKey    string `yaml:"-"`
}

// LLMConfig selects the generation backend.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai" (any compatible endpoint) or "ollama"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	APIKey    string `yaml:"-"`
}

// RetrievalConfig holds retrieval configuration.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// SearchConfig configures the web fallback. A missing key disables it.
type SearchConfig struct {
	Provider  string        `yaml:"provider"`
	Endpoint  string        `yaml:"endpoint"`
	APIKeyEnv string        `yaml:"api_key_env"`
	APIKey    string        `yaml:"-"`
	Timeout   time.Duration `yaml:"timeout"`
}

// TranslateConfig selects the translator for direct-LLM answers.
type TranslateConfig struct {
	Provider string        `yaml:"provider"` // "google" or "llm"
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ConfigurationError reports a setting the service cannot start without.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8000",
			RequestTimeout: 60 * time.Second,
			DegradeErrors:  true,
			Persona:        "a helpful assistant for Boss Wallah courses",
		},
		Data: DataConfig{
			Dir:        "data",
			CoursesCSV: "courses.csv",
			LangMapCSV: "lang_map.csv",
			IndexPath:  "index.db",
		},
		Chunking: ChunkingConfig{Size: 500, Overlap: 50},
		Embedding: EmbeddingConfig{
			Provider:  "tfidf",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gemini-2.5-pro",
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta/openai/",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Retrieval: RetrievalConfig{TopK: 4},
		Search: SearchConfig{
			Provider:  "serpapi",
			Endpoint:  "https://serpapi.com",
			APIKeyEnv: "SERPAPI_API_KEY",
			Timeout:   15 * time.Second,
		},
		Translate: TranslateConfig{
			Provider: "google",
			Timeout:  15 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (defaults when it does not exist), then a .env file next
// to the working directory, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	// Existing environment wins over .env, matching godotenv.Load semantics.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("COURSERAG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("COURSERAG_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("COURSERAG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	c.LLM.APIKey = firstEnv(c.LLM.APIKeyEnv, "LLM_API_KEY")
	c.Embedding.APIKey = firstEnv(c.Embedding.APIKeyEnv)
	c.Search.APIKey = firstEnv(c.Search.APIKeyEnv)
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks settings that would otherwise fail on the first request.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return &ConfigurationError{Field: "llm.api_key", Reason: fmt.Sprintf("set %s", c.LLM.APIKeyEnv)}
		}
	case "ollama":
	default:
		return &ConfigurationError{Field: "llm.provider", Reason: fmt.Sprintf("unknown provider %q", c.LLM.Provider)}
	}

	switch c.Embedding.Provider {
	case "tfidf", "ollama":
	case "openai":
		if c.Embedding.APIKey == "" {
			return &ConfigurationError{Field: "embedding.api_key", Reason: fmt.Sprintf("set %s", c.Embedding.APIKeyEnv)}
		}
	default:
		return &ConfigurationError{Field: "embedding.provider", Reason: fmt.Sprintf("unknown provider %q", c.Embedding.Provider)}
	}

	switch c.Translate.Provider {
	case "google", "llm":
	default:
		return &ConfigurationError{Field: "translate.provider", Reason: fmt.Sprintf("unknown provider %q", c.Translate.Provider)}
	}

	if c.Search.Provider != "serpapi" {
		return &ConfigurationError{Field: "search.provider", Reason: fmt.Sprintf("unknown provider %q", c.Search.Provider)}
	}
	if c.Chunking.Size <= 0 || c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return &ConfigurationError{Field: "chunking", Reason: "need 0 <= overlap < size"}
	}
	if c.Retrieval.TopK <= 0 {
		return &ConfigurationError{Field: "retrieval.top_k", Reason: "must be positive"}
	}
	return nil
}

// CoursesPath resolves the courses CSV against Data.Dir.
func (c *Config) CoursesPath() string { return c.resolve(c.Data.CoursesCSV) }

// LangMapPath resolves the language map CSV against Data.Dir.
func (c *Config) LangMapPath() string { return c.resolve(c.Data.LangMapCSV) }

// IndexPath resolves the SQLite index file against Data.Dir.
func (c *Config) IndexPath() string { return c.resolve(c.Data.IndexPath) }

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Data.Dir, p)
}

// EmbedderFingerprint identifies the vector space an index was built in.
func (c *Config) EmbedderFingerprint() string {
	return fmt.Sprintf("%s|%s|%d|%d", c.Embedding.Provider, c.Embedding.Model, c.Chunking.Size, c.Chunking.Overlap)
}
