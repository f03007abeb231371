package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// TagFilters pre-filters candidates; every field must match its value exactly.
	TagFilters   map[string]string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// For KNN queries Score is the cosine similarity (1 - distance), clamped to [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
