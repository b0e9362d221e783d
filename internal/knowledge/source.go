package knowledge

import (
	"context"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"
	"go.uber.org/zap"

	"eduverse/internal/domain"
	"eduverse/internal/logging"
)

// Source holds the current knowledge base. The slice handed out by
// Documents is never modified; updates swap in a new slice.
type Source struct {
	mu       sync.RWMutex
	docs     []domain.Document
	origin   string
	onChange []func([]domain.Document)
	logger   *zap.Logger
}

// NewSource returns a Source serving docs. The caller must not modify docs
// afterwards.
func NewSource(docs []domain.Document, logger *zap.Logger) *Source {
	return &Source{docs: docs, origin: "builtin", logger: logging.OrNop(logger)}
}

// Documents implements domain.KnowledgeSource.
func (s *Source) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs
}

// Origin names where the current documents came from.
func (s *Source) Origin() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin
}

// OnChange registers fn to run after every successful replacement.
func (s *Source) OnChange(fn func([]domain.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Replace validates docs and makes them current.
func (s *Source) Replace(docs []domain.Document, origin string) error {
	if err := Validate(docs); err != nil {
		return err
	}
	s.mu.Lock()
	s.docs = docs
	s.origin = origin
	hooks := slices.Clone(s.onChange)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(docs)
	}
	s.logger.Info("knowledge base replaced", zap.String("origin", origin), zap.Int("documents", len(docs)))
	return nil
}

// Reload reads path with loader and makes its documents current. On error
// the previous documents stay in place.
func (s *Source) Reload(loader *Loader, path string) error {
	docs, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	return s.Replace(docs, path)
}

// Watch reloads path whenever it is written, created or renamed over, until
// ctx is done. The parent directory is watched so editors that replace the
// file are followed. Failed reloads are logged and keep the old documents.
func (s *Source) Watch(ctx context.Context, loader *Loader, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create file watcher")
	}
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to watch knowledge directory", goerr.V("path", path))
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Reload(loader, target); err != nil {
					s.logger.Warn("knowledge reload failed, keeping previous documents",
						zap.String("path", target), zap.Error(err))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("file watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
