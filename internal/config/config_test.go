package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduverse/internal/ner"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
retriever:
  top_k: 5
extractor:
  universities: [purdue]
  program_patterns: ['\bmeng\s+in\s+([a-z ]+)']
embedder:
  type: openai
  openai:
    model: nomic-embed-text
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Retriever.TopK)
	assert.True(t, cfg.Retriever.CacheEmbeddings)
	assert.Equal(t, []string{"purdue"}, cfg.Extractor.Universities)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, 0.4, cfg.Intent.MinConfidence)
	require.NoError(t, cfg.Validate())
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[embedder]
type = "tfidf"

[knowledge]
path = "kb.yaml"
watch = true

[intent]
min_confidence = 0.6
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "kb.yaml", cfg.Knowledge.Path)
	assert.True(t, cfg.Knowledge.Watch)
	assert.Equal(t, 0.6, cfg.Intent.MinConfidence)
	assert.Equal(t, 300, cfg.Intent.Iterations)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retriever: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_RoundTripsBothFormats(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Retriever.TopK = 7
	cfg.Extractor.Universities = []string{"rice"}

	for _, name := range []string{"nested/config.yaml", "config.toml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, cfg))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Retriever.TopK, name)
		assert.Equal(t, []string{"rice"}, got.Extractor.Universities, name)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"embedder type":    func(c *AppConfig) { c.Embedder.Type = "bert" },
		"openai section":   func(c *AppConfig) { c.Embedder.Type = "openai" },
		"top k":            func(c *AppConfig) { c.Retriever.TopK = 0 },
		"chunker type":     func(c *AppConfig) { c.Knowledge.Chunker.Type = "paragraph" },
		"watch w/o path":   func(c *AppConfig) { c.Knowledge.Watch = true },
		"min confidence":   func(c *AppConfig) { c.Intent.MinConfidence = 1.5 },
		"iterations":       func(c *AppConfig) { c.Intent.Iterations = 0 },
		"blank university": func(c *AppConfig) { c.Extractor.Universities = []string{" "} },
		"summarizer type":  func(c *AppConfig) { c.Summarizer.Type = "llm" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}

	cfg := Default()
	cfg.Extractor.ProgramPatterns = []string{`\bms\s+in\s+([a-z`}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ner.ErrInvalidPattern))
}
