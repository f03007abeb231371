package domain

import (
	"strings"
	"time"
)

// KeyPrefix namespaces every key mindrecall writes to the shared store.
const KeyPrefix = "mindrecall:"

// Document is a single ranked passage.
// Score is ranker-specific: BM25 scores and cosine similarities are not comparable.
type Document struct {
	ID    string
	Text  string
	Score float64
}

// Record is one historical mood entry of a user.
type Record struct {
	ID        string
	UserID    string
	Label     string
	Note      string
	CreatedAt time.Time
}

// Text returns the pre-joined passage representation ("label | note").
func (r Record) Text() string {
	return strings.TrimSpace(r.Label + " | " + r.Note)
}

// DocumentID returns the identity shared by the lexical document and the stored vector.
func (r Record) DocumentID() string {
	return "mood:" + r.ID
}

// Document converts the record into an unscored Document.
func (r Record) Document() Document {
	return Document{ID: r.DocumentID(), Text: r.Text()}
}

// Documents converts records in order.
func Documents(records []Record) []Document {
	docs := make([]Document, len(records))
	for i, r := range records {
		docs[i] = r.Document()
	}
	return docs
}
