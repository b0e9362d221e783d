package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"

	"eduverse/internal/chunker"
	"eduverse/internal/config"
	"eduverse/internal/domain"
	"eduverse/internal/embedding"
	"eduverse/internal/embedding/hash"
	"eduverse/internal/embedding/openai"
	"eduverse/internal/embedding/tfidf"
	"eduverse/internal/intent"
	"eduverse/internal/knowledge"
	"eduverse/internal/ner"
	"eduverse/internal/preprocess"
	"eduverse/internal/retrieval"
	"eduverse/internal/service"
	"eduverse/internal/summarizer"
	"eduverse/internal/vectorstore/memory"
)

// app is the assembled pipeline shared by the commands.
type app struct {
	cfg        *config.AppConfig
	logger     *zap.Logger
	normalizer *preprocess.Normalizer
	classifier *intent.Classifier
	source     *knowledge.Source
	loader     *knowledge.Loader
	summarizer domain.Summarizer
	advisor    *service.Advisor
}

func newNormalizer(cfg *config.AppConfig) (*preprocess.Normalizer, error) {
	opts := preprocess.DefaultOptions()
	opts.Stem = cfg.Preprocess.Stem
	opts.StripStopwords = cfg.Preprocess.StripStopwords
	return preprocess.New(opts)
}

func trainClassifier(cfg *config.AppConfig, normalizer domain.Normalizer, ds intent.Dataset, logger *zap.Logger) (*intent.Classifier, error) {
	opts := intent.DefaultOptions()
	opts.Iterations = cfg.Intent.Iterations
	opts.LearningRate = cfg.Intent.LearningRate
	opts.MinConfidence = cfg.Intent.MinConfidence
	return intent.Train(ds, normalizer, opts, logger.Named("intent"))
}

// newEmbedder returns a fresh, unprepared embedder for the configured type.
func newEmbedder(cfg *config.AppConfig, normalizer domain.Normalizer) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hash", "":
		return hash.NewEmbedder(cfg.Embedder.Dimension), nil
	case "tfidf":
		return tfidf.NewEmbedder(tfidf.Options{Tokenizer: normalizer.Normalize}), nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			return nil, goerr.New("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:     oc.BaseURL,
			APIKeyEnv:   oc.APIKeyEnv,
			Model:       oc.Model,
			Timeout:     time.Duration(oc.TimeoutSecs) * time.Second,
			MaxRetries:  oc.MaxRetries,
			Parallelism: oc.Parallelism,
			Normalize:   oc.Normalize,
		})
	default:
		return nil, goerr.Wrap(embedding.ErrUnknownEmbedder, "cannot build embedder", goerr.V("type", cfg.Embedder.Type))
	}
}

// retrieverFactory builds a retriever per knowledge base. Corpus-fitted
// embedders are prepared on the documents' texts, and a cached store is
// filled before it replaces the previous retriever.
func retrieverFactory(cfg *config.AppConfig, normalizer domain.Normalizer, logger *zap.Logger) service.RetrieverFactory {
	return func(docs []domain.Document) (domain.Retriever, error) {
		e, err := newEmbedder(cfg, normalizer)
		if err != nil {
			return nil, err
		}
		if p, ok := e.(domain.Preparer); ok && len(docs) > 0 {
			texts := make([]string, len(docs))
			for i, d := range docs {
				texts[i] = d.Text
			}
			if err := p.Prepare(texts); err != nil {
				return nil, goerr.Wrap(err, "failed to prepare embedder", goerr.V("type", e.Name()))
			}
		}
		if cfg.Retriever.CacheEmbeddings {
			store := memory.NewStorage(embedding.Func(e))
			if err := store.Load(context.Background(), docs); err != nil {
				return nil, err
			}
			logger.Debug("document embeddings cached", zap.String("embedder", e.Name()), zap.Int("vectors", store.Len()))
			return store, nil
		}
		return retrieval.New(embedding.Func(e)), nil
	}
}

func build(cfg *config.AppConfig, logger *zap.Logger) (*app, error) {
	normalizer, err := newNormalizer(cfg)
	if err != nil {
		return nil, err
	}
	classifier, err := trainClassifier(cfg, normalizer, intent.SeedDataset(), logger)
	if err != nil {
		return nil, err
	}
	extractor, err := ner.New(ner.DefaultRules().With(cfg.Extractor.Universities, cfg.Extractor.ProgramPatterns))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build entity extractor")
	}

	ch := cfg.Knowledge.Chunker
	loader := knowledge.NewLoader(chunker.NewSentenceChunker(ch.SentencesPerChunk, ch.OverlapSentences))
	source := knowledge.NewSource(knowledge.BuiltIn(), logger.Named("knowledge"))
	if cfg.Knowledge.Path != "" {
		if err := source.Reload(loader, cfg.Knowledge.Path); err != nil {
			return nil, err
		}
	}

	advisor, err := service.NewAdvisor(service.Deps{
		Normalizer:   normalizer,
		Classifier:   classifier,
		Extractor:    extractor,
		Knowledge:    source,
		NewRetriever: retrieverFactory(cfg, normalizer, logger.Named("retriever")),
		TopK:         cfg.Retriever.TopK,
		Logger:       logger.Named("advisor"),
	})
	if err != nil {
		return nil, err
	}
	source.OnChange(func(docs []domain.Document) {
		if err := advisor.Reindex(docs); err != nil {
			logger.Warn("reindex failed, keeping previous retriever", zap.Error(err))
		}
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		normalizer: normalizer,
		classifier: classifier,
		source:     source,
		loader:     loader,
		summarizer: summarizer.NewFrequencySummarizer(normalizer),
		advisor:    advisor,
	}, nil
}

// digest summarizes the current knowledge base for display.
func (a *app) digest() string {
	s, err := a.summarizer.Summarize(a.source.Documents(), a.cfg.Summarizer.MaxSentences)
	if err != nil {
		a.logger.Warn("knowledge summary failed", zap.Error(err))
		return ""
	}
	return s
}
