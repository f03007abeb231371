package domain

// Source names a retrieval branch.
type Source string

const (
	// SourceLexical is the BM25 ranker over the user's own records.
	SourceLexical Source = "lexical"
	// SourceEmbedding is the query embedding step feeding the vector branch.
	SourceEmbedding Source = "embedding"
	// SourceVector is the nearest-neighbour query over the user's namespace.
	SourceVector Source = "vector"
)

// Branch is the outcome of one retrieval source.
// A nil Reason means success. Otherwise Documents is empty and Reason says why.
type Branch struct {
	Source    Source
	Documents []Document
	Reason    error
}

// Degraded reports whether the branch fell back to an empty result.
func (b Branch) Degraded() bool {
	return b.Reason != nil
}

// Succeeded builds a successful branch.
func Succeeded(src Source, docs []Document) Branch {
	return Branch{Source: src, Documents: docs}
}

// Failed builds an empty branch carrying the failure reason.
func Failed(src Source, reason error) Branch {
	return Branch{Source: src, Reason: reason}
}
