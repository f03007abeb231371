package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrZeroVector signals an all-zero vector, for which cosine similarity is undefined.
	ErrZeroVector = errors.New("zero vector")
	// ErrMissingMetadata signals an upsert without text or identity metadata.
	ErrMissingMetadata = errors.New("missing vector metadata")

	// ErrIndexUnconfigured signals that no vector index is configured.
	ErrIndexUnconfigured = errors.New("vector index not configured")
	// ErrIndexUnavailable signals that the vector index failed to initialize.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a chat completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrCorpusUnavailable signals that the user's records could not be fetched.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
)
