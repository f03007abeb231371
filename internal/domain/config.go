package domain

// VectorConfig holds vectorization settings shared by the embedder and the index.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig returns the reference configuration (OpenAI ada-002, 1536 dimensions).
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "text-embedding-ada-002",
		Dimensions:     1536,
		DistanceMetric: "cosine",
	}
}

// RetrievalConfig bounds the retrieval work done per chat turn.
type RetrievalConfig struct {
	CorpusWindow  int // most recent records ranked lexically
	LexicalTopK   int
	VectorTopK    int
	ContextBudget int // passages in the final bundle
}

// DefaultRetrievalConfig returns the reference retrieval bounds.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		CorpusWindow:  200,
		LexicalTopK:   5,
		VectorTopK:    5,
		ContextBudget: 5,
	}
}
