package model

import "errors"

var (
	// ErrRetrievalUnavailable marks a backing store or the embedding provider as unreachable.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrInvalidInput marks a request missing something the operation needs.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a single-record lookup miss.
	ErrNotFound = errors.New("not found")
)
