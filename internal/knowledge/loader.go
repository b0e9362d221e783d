// Package knowledge supplies the advisor's fact passages: a built-in set,
// files on disk, and a hot-reloading holder for the current set.
package knowledge

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"eduverse/internal/domain"
)

type fileFormat struct {
	Documents []domain.Document `yaml:"documents"`
}

// Loader reads knowledge files. Plain-text files are split into passages by
// the chunker.
type Loader struct {
	chunker domain.Chunker
}

// NewLoader returns a Loader using chunker for .txt and .md files.
func NewLoader(chunker domain.Chunker) *Loader {
	return &Loader{chunker: chunker}
}

// LoadFile reads and validates one knowledge file. YAML files hold a
// "documents" list; text files become passages tagged with the file stem as
// their topic.
func (l *Loader) LoadFile(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge file", goerr.V("path", path))
	}

	var docs []domain.Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var f fileFormat
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, goerr.Wrap(err, "failed to parse knowledge file", goerr.V("path", path))
		}
		docs = f.Documents
	case ".txt", ".md":
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		docs, err = l.chunker.Chunk(stem, string(data), map[string]string{
			"topic":  stem,
			"source": filepath.Base(path),
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to chunk knowledge file", goerr.V("path", path))
		}
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "cannot load knowledge file",
			goerr.V("path", path), goerr.V("ext", ext))
	}

	// A half-written file must not empty the knowledge base.
	if len(docs) == 0 {
		return nil, goerr.Wrap(ErrInvalidDocument, "knowledge file has no documents", goerr.V("path", path))
	}
	if err := Validate(docs); err != nil {
		return nil, goerr.Wrap(err, "knowledge file rejected", goerr.V("path", path))
	}
	return docs, nil
}

// Validate checks IDs are present and unique and texts are non-blank.
func Validate(docs []domain.Document) error {
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if strings.TrimSpace(d.ID) == "" {
			return goerr.Wrap(ErrInvalidDocument, "document has no id", goerr.V("index", i))
		}
		if _, dup := seen[d.ID]; dup {
			return goerr.Wrap(ErrInvalidDocument, "duplicate document id", goerr.V("id", d.ID))
		}
		seen[d.ID] = struct{}{}
		if strings.TrimSpace(d.Text) == "" {
			return goerr.Wrap(ErrInvalidDocument, "document has no text", goerr.V("id", d.ID))
		}
	}
	return nil
}
