package retrieval

import "github.com/kailas-cloud/mindrecall/internal/domain"

// Merge concatenates lexical then vector documents, keeps the first occurrence of
// each id and returns at most budget passage texts.
func Merge(lexical, vector []domain.Document, budget int) []string {
	if budget <= 0 {
		return []string{}
	}

	out := make([]string, 0, min(budget, len(lexical)+len(vector)))
	seen := make(map[string]struct{}, len(lexical)+len(vector))

	for _, list := range [2][]domain.Document{lexical, vector} {
		for _, d := range list {
			if len(out) == budget {
				return out
			}
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, d.Text)
		}
	}
	return out
}
