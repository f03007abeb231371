package lexical

import (
	"math"
	"sort"
	"strconv"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Default BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Option tunes the BM25 parameters of an Index.
type Option func(*Index)

// WithParams overrides term-frequency saturation (k1) and length normalization (b).
func WithParams(k1, b float64) Option {
	return func(ix *Index) {
		ix.k1 = k1
		ix.b = b
	}
}

// Index is a BM25 model over one corpus snapshot.
type Index struct {
	docs    []domain.Document
	tf      []map[string]int
	lengths []int
	df      map[string]int
	avgLen  float64
	k1      float64
	b       float64
}

// NewIndex tokenizes every corpus document and computes term statistics.
func NewIndex(corpus []domain.Document, opts ...Option) *Index {
	ix := &Index{
		docs:    corpus,
		tf:      make([]map[string]int, len(corpus)),
		lengths: make([]int, len(corpus)),
		df:      make(map[string]int),
		k1:      DefaultK1,
		b:       DefaultB,
	}
	for _, o := range opts {
		o(ix)
	}

	total := 0
	for i, d := range corpus {
		tokens := Tokenize(d.Text)
		freq := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freq[tok]++
		}
		for tok := range freq {
			ix.df[tok]++
		}
		ix.tf[i] = freq
		ix.lengths[i] = len(tokens)
		total += len(tokens)
	}
	if len(corpus) > 0 {
		ix.avgLen = float64(total) / float64(len(corpus))
	}
	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// idf is the non-negative BM25 inverse document frequency.
func (ix *Index) idf(term string) float64 {
	n := float64(ix.df[term])
	total := float64(len(ix.docs))
	return math.Log(1 + (total-n+0.5)/(n+0.5))
}

// Scores returns the BM25 score of every document, in corpus order.
// Repeated query tokens contribute once per occurrence.
func (ix *Index) Scores(query string) []float64 {
	scores := make([]float64, len(ix.docs))
	if len(ix.docs) == 0 || ix.avgLen == 0 {
		return scores
	}

	for _, term := range Tokenize(query) {
		if ix.df[term] == 0 {
			continue
		}
		idf := ix.idf(term)
		for i, freq := range ix.tf {
			f := float64(freq[term])
			if f == 0 {
				continue
			}
			norm := 1 - ix.b + ix.b*float64(ix.lengths[i])/ix.avgLen
			scores[i] += idf * f * (ix.k1 + 1) / (f + ix.k1*norm)
		}
	}
	return scores
}

// Search returns up to topK documents by descending score.
// Equal scores keep corpus order, so documents with no matching token
// still come back in their original order.
func (ix *Index) Search(query string, topK int) []domain.Document {
	if topK <= 0 || len(ix.docs) == 0 {
		return nil
	}

	scores := ix.Scores(query)
	order := make([]int, len(ix.docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if len(order) > topK {
		order = order[:topK]
	}

	results := make([]domain.Document, len(order))
	for i, idx := range order {
		d := ix.docs[idx]
		results[i] = domain.Document{ID: d.ID, Text: d.Text, Score: scores[idx]}
	}
	return results
}

// Search builds a fresh index over corpus and ranks it against query.
func Search(corpus []domain.Document, query string, topK int) []domain.Document {
	return NewIndex(corpus).Search(query, topK)
}

// SearchTexts ranks plain strings; documents are identified by their corpus position.
func SearchTexts(corpus []string, query string, topK int) []domain.Document {
	docs := make([]domain.Document, len(corpus))
	for i, text := range corpus {
		docs[i] = domain.Document{ID: strconv.Itoa(i), Text: text}
	}
	return Search(docs, query, topK)
}
