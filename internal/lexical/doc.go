// Package lexical ranks a small per-user corpus against a query with BM25.
//
// The index is ephemeral: it is built from the corpus on every call and never
// maintained incrementally. That keeps results fresh (a record written a moment
// ago is searchable immediately) and is cheap while the corpus window stays in
// the low hundreds of documents. Larger windows would need a persistent index.
package lexical
