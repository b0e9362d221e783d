package intent

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrEmptyDataset is returned when training without examples.
	ErrEmptyDataset = goerr.New("empty training dataset")
	// ErrLabelCount is returned when texts and labels differ in length.
	ErrLabelCount = goerr.New("texts and labels length mismatch")
	// ErrInvalidOptions is returned for non-positive training parameters.
	ErrInvalidOptions = goerr.New("invalid classifier options")
)
