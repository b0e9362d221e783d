// Package config loads the advisor's settings from YAML or TOML files.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"eduverse/internal/ner"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = goerr.New("invalid configuration")

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env" toml:"api_key_env"`
	Model       string `yaml:"model" toml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" toml:"max_retries"`
	Parallelism int    `yaml:"parallelism" toml:"parallelism"`
	Normalize   bool   `yaml:"normalize" toml:"normalize"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type" toml:"type"`
	Dimension int                   `yaml:"dimension" toml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
}

// RetrieverConfig controls evidence retrieval.
type RetrieverConfig struct {
	TopK            int  `yaml:"top_k" toml:"top_k"`
	CacheEmbeddings bool `yaml:"cache_embeddings" toml:"cache_embeddings"`
}

// ChunkerConfig configures how plain-text knowledge files are split.
type ChunkerConfig struct {
	Type              string `yaml:"type" toml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk" toml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences" toml:"overlap_sentences"`
}

// KnowledgeConfig points at an optional knowledge file. An empty path
// selects the built-in knowledge base.
type KnowledgeConfig struct {
	Path    string        `yaml:"path" toml:"path"`
	Watch   bool          `yaml:"watch" toml:"watch"`
	Chunker ChunkerConfig `yaml:"chunker" toml:"chunker"`
}

// IntentConfig configures classifier training and the low-confidence log.
type IntentConfig struct {
	MinConfidence float64 `yaml:"min_confidence" toml:"min_confidence"`
	Iterations    int     `yaml:"iterations" toml:"iterations"`
	LearningRate  float64 `yaml:"learning_rate" toml:"learning_rate"`
}

// ExtractorConfig extends the built-in entity tables.
type ExtractorConfig struct {
	Universities    []string `yaml:"universities" toml:"universities"`
	ProgramPatterns []string `yaml:"program_patterns" toml:"program_patterns"`
}

// PreprocessConfig toggles optional normalizer steps.
type PreprocessConfig struct {
	Stem           bool `yaml:"stem" toml:"stem"`
	StripStopwords bool `yaml:"strip_stopwords" toml:"strip_stopwords"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type" toml:"type"`
	MaxSentences int    `yaml:"max_sentences" toml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder   EmbedderConfig   `yaml:"embedder" toml:"embedder"`
	Retriever  RetrieverConfig  `yaml:"retriever" toml:"retriever"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge" toml:"knowledge"`
	Intent     IntentConfig     `yaml:"intent" toml:"intent"`
	Extractor  ExtractorConfig  `yaml:"extractor" toml:"extractor"`
	Preprocess PreprocessConfig `yaml:"preprocess" toml:"preprocess"`
	Summarizer SummarizerConfig `yaml:"summarizer" toml:"summarizer"`
}

// Validate checks option values and compiles extra program patterns.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "hash", "tfidf":
	case "openai":
		if c.Embedder.OpenAI == nil {
			return goerr.Wrap(ErrInvalidConfig, "embedder.openai section is required for the openai embedder")
		}
	default:
		return goerr.Wrap(ErrInvalidConfig, "unknown embedder type", goerr.V("type", c.Embedder.Type))
	}
	if c.Retriever.TopK <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "retriever.top_k must be positive", goerr.V("top_k", c.Retriever.TopK))
	}
	if c.Knowledge.Chunker.Type != "sentence" {
		return goerr.Wrap(ErrInvalidConfig, "unknown chunker type", goerr.V("type", c.Knowledge.Chunker.Type))
	}
	if c.Knowledge.Watch && c.Knowledge.Path == "" {
		return goerr.Wrap(ErrInvalidConfig, "knowledge.watch requires knowledge.path")
	}
	if c.Intent.MinConfidence < 0 || c.Intent.MinConfidence > 1 {
		return goerr.Wrap(ErrInvalidConfig, "intent.min_confidence must be within [0, 1]",
			goerr.V("min_confidence", c.Intent.MinConfidence))
	}
	if c.Intent.Iterations <= 0 || c.Intent.LearningRate <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "intent training parameters must be positive",
			goerr.V("iterations", c.Intent.Iterations), goerr.V("learning_rate", c.Intent.LearningRate))
	}
	for _, u := range c.Extractor.Universities {
		if strings.TrimSpace(u) == "" {
			return goerr.Wrap(ErrInvalidConfig, "extractor.universities contains a blank entry")
		}
	}
	if err := ner.Validate(c.Extractor.ProgramPatterns); err != nil {
		return goerr.Wrap(err, "invalid extractor.program_patterns")
	}
	if c.Summarizer.Type != "frequency" {
		return goerr.Wrap(ErrInvalidConfig, "unknown summarizer type", goerr.V("type", c.Summarizer.Type))
	}
	return nil
}

// Load reads a config from path, decoding TOML for ".toml" files and YAML
// otherwise. Keys absent from the file keep their defaults. A missing file
// yields the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, goerr.Wrap(err, "failed to read config", goerr.V("path", path))
	}
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse config", goerr.V("path", path))
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml, ./config.toml, then
// ~/.config/eduverse/config.yaml. If none exists, it writes defaults to the
// user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	for _, p := range []string{"config.yaml", "config.toml"} {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			return cfg, p, err
		}
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create config directory", goerr.V("path", path))
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return goerr.Wrap(err, "failed to encode config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write config", goerr.V("path", path))
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Embedder:  EmbedderConfig{Type: "hash", Dimension: 64},
		Retriever: RetrieverConfig{TopK: 3, CacheEmbeddings: true},
		Knowledge: KnowledgeConfig{
			Chunker: ChunkerConfig{Type: "sentence", SentencesPerChunk: 2, OverlapSentences: 0},
		},
		Intent:     IntentConfig{MinConfidence: 0.4, Iterations: 300, LearningRate: 1.0},
		Preprocess: PreprocessConfig{StripStopwords: true},
		Summarizer: SummarizerConfig{Type: "frequency", MaxSentences: 3},
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, ".config", "eduverse", "config.yaml"), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// applyConfigDefaults fills fields a file set to empty values.
func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hash"
	}
	if cfg.Knowledge.Chunker.Type == "" {
		cfg.Knowledge.Chunker.Type = "sentence"
	}
	if cfg.Knowledge.Chunker.SentencesPerChunk == 0 {
		cfg.Knowledge.Chunker.SentencesPerChunk = 2
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.Parallelism == 0 {
			cfg.Embedder.OpenAI.Parallelism = 4
		}
	}
}
