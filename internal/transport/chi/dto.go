package chi

import (
	"time"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// LogMoodRequest is the body of POST /v1/users/{userID}/moods.
type LogMoodRequest struct {
	Level string `json:"level"`
	Note  string `json:"note,omitempty"`
}

// LogMoodResponse acknowledges a stored mood entry.
type LogMoodResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Mood is one mood entry as listed by the API.
type Mood struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodListResponse is the body of GET /v1/users/{userID}/moods.
type MoodListResponse struct {
	Items []Mood `json:"items"`
}

// ContextRequest is the body of POST /v1/users/{userID}/context.
type ContextRequest struct {
	Query string `json:"query"`
}

// BranchReport describes one retrieval branch outcome.
type BranchReport struct {
	Source         string     `json:"source"`
	Documents      []Document `json:"documents"`
	DegradedReason string     `json:"degraded_reason,omitempty"`
}

// Document is a ranked passage inside a branch report.
type Document struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// ContextResponse is the merged bundle plus branch diagnostics.
type ContextResponse struct {
	Passages []string       `json:"passages"`
	Branches []BranchReport `json:"branches"`
}

// ChatRequest is the body of POST /v1/users/{userID}/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func moodToDTO(r domain.Record) Mood {
	return Mood{ID: r.ID, Level: r.Label, Note: r.Note, CreatedAt: r.CreatedAt}
}

func branchToDTO(b domain.Branch) BranchReport {
	docs := make([]Document, len(b.Documents))
	for i, d := range b.Documents {
		docs[i] = Document{ID: d.ID, Text: d.Text, Score: d.Score}
	}
	rep := BranchReport{Source: string(b.Source), Documents: docs}
	if b.Reason != nil {
		rep.DegradedReason = b.Reason.Error()
	}
	return rep
}
