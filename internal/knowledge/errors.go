package knowledge

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidDocument is returned for documents with an empty ID or text,
	// or an ID used twice.
	ErrInvalidDocument = goerr.New("invalid knowledge document")
	// ErrUnsupportedFormat is returned for files that are not YAML or text.
	ErrUnsupportedFormat = goerr.New("unsupported knowledge file format")
)
