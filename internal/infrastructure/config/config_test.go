package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates tests from a developer's .env file.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, "GEMINI_API_KEY", cfg.LLM.APIKeyEnv)
	assert.True(t, cfg.Server.DegradeErrors)
}

func TestLoad_NonExistent(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("/nonexistent/path/courserag.yaml")

	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "courserag.yaml")
	content := `
server:
  addr: ":9090"
  request_timeout: 5s
  degrade_errors: false
retrieval:
  top_k: 6
llm:
  provider: ollama
  model: llama3.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.False(t, cfg.Server.DegradeErrors)
	assert.Equal(t, 6, cfg.Retrieval.TopK)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 500, cfg.Chunking.Size, "unset keys keep defaults")
}

func TestLoad_BadYAML(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "courserag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("SERPAPI_API_KEY", "serp-key")
	t.Setenv("COURSERAG_ADDR", ":7000")
	t.Setenv("COURSERAG_DATA_DIR", "/srv/catalog")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.Equal(t, "serp-key", cfg.Search.APIKey)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/srv/catalog/courses.csv", cfg.CoursesPath())
	assert.Equal(t, "/srv/catalog/index.db", cfg.IndexPath())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_API_KEY=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LLM_API_KEY") })

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.LLM.APIKey)
}

func TestValidate_MissingGenerationKey(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Validate()

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "llm.api_key", ce.Field)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"ok", func(c *Config) {}, ""},
		{"ollama needs no key", func(c *Config) { c.LLM.Provider = "ollama"; c.LLM.APIKey = "" }, ""},
		{"unknown llm", func(c *Config) { c.LLM.Provider = "bard" }, "llm.provider"},
		{"openai embeddings need key", func(c *Config) { c.Embedding.Provider = "openai" }, "embedding.api_key"},
		{"unknown translator", func(c *Config) { c.Translate.Provider = "deepl" }, "translate.provider"},
		{"overlap too large", func(c *Config) { c.Chunking.Overlap = 500 }, "chunking"},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }, "retrieval.top_k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LLM.APIKey = "key"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.Dir = "catalog"
	cfg.Data.LangMapCSV = "/etc/langs.csv"

	assert.Equal(t, filepath.Join("catalog", "courses.csv"), cfg.CoursesPath())
	assert.Equal(t, "/etc/langs.csv", cfg.LangMapPath())
}
