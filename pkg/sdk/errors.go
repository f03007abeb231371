package mindrecall

import "github.com/kailas-cloud/mindrecall/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput           = domain.ErrInvalidInput
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrZeroVector             = domain.ErrZeroVector
	ErrIndexUnconfigured      = domain.ErrIndexUnconfigured
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrCorpusUnavailable      = domain.ErrCorpusUnavailable
)
