package ner

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrInvalidPattern is returned when a configured pattern does not compile.
	ErrInvalidPattern = goerr.New("invalid extraction pattern")
	// ErrInvalidScorePattern is returned when a score pattern lacks exactly one capture group.
	ErrInvalidScorePattern = goerr.New("score pattern must have exactly one capture group")
)
