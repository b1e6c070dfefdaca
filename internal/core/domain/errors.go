package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateDocument indicates a document with the same file hash
	// already exists. Returned by document saves that lose a hash race;
	// intake absorbs it silently.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrChunkNamespaceExhausted indicates a MiniDoc produced more chunks
	// than its index namespace can hold. This is out of design envelope
	// and must never be silently wrapped into a colliding index.
	ErrChunkNamespaceExhausted = errors.New("chunk index namespace exhausted")

	// ErrExtractionFailed indicates direct text extraction produced
	// no usable text. Non-fatal: intake falls back to conversion.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrLLMUnavailable indicates the LLM collaborator is not reachable
	// or not configured. Agentic chunking falls back to the
	// deterministic splitter.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
