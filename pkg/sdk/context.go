package mindrecall

import (
	"context"
	"time"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Passage is a ranked document as seen by one retrieval branch.
// Scores of different branches are not comparable.
type Passage struct {
	ID    string
	Text  string
	Score float64
}

// Branch reports what one retrieval source contributed. Err is nil on success.
type Branch struct {
	Source   string
	Passages []Passage
	Err      error
}

// Bundle is the merged context plus per-branch diagnostics.
type Bundle struct {
	Passages []string
	Branches []Branch
}

// Context retrieves the context bundle for a user's query. It never fails;
// inspect Bundle.Branches to see which sources degraded.
func (c *Client) Context(ctx context.Context, userID, query string) Bundle {
	start := time.Now()
	b := c.retrieval.Retrieve(ctx, userID, query)
	c.obs.observe("context", start, nil)

	out := Bundle{Passages: b.Passages, Branches: make([]Branch, 0, 3)}
	if out.Passages == nil {
		out.Passages = []string{}
	}
	for _, br := range b.Branches() {
		out.Branches = append(out.Branches, branchFromDomain(br))
		if br.Degraded() {
			c.obs.degradedBranch(string(br.Source), br.Reason.Error())
		}
	}
	return out
}

func branchFromDomain(b domain.Branch) Branch {
	ps := make([]Passage, len(b.Documents))
	for i, d := range b.Documents {
		ps[i] = Passage{ID: d.ID, Text: d.Text, Score: d.Score}
	}
	return Branch{Source: string(b.Source), Passages: ps, Err: b.Reason}
}
