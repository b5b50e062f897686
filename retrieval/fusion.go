package retrieval

import (
	"sort"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// Reciprocal Rank Fusion constant. An item at 0-based rank r contributes
// 1/(k + r + 1) to its fused score.
const rrfK = 60

type fusedEntry struct {
	match types.RetrievalMatch
	score float64
}

// FuseRankings merges the dense and sparse ranked lists into one ranked,
// deduplicated list using Reciprocal Rank Fusion. Both inputs must already
// be sorted best-first. The dense list is scanned first, so on an id present
// in both lists the carried score and colliding metadata keys come from the
// dense occurrence; the fused score orders the output and is independent of
// the carried score. Ties keep first-seen order. The result is truncated to
// topK when topK is positive.
func FuseRankings(dense, sparse []types.RetrievalMatch, topK int) []types.RetrievalMatch {
	byID := make(map[string]*fusedEntry)
	var entries []*fusedEntry

	scan := func(list []types.RetrievalMatch) {
		for rank, m := range list {
			entry, ok := byID[m.ID]
			if !ok {
				copied := m
				copied.Metadata = make(map[string]interface{}, len(m.Metadata))
				for k, v := range m.Metadata {
					copied.Metadata[k] = v
				}
				entry = &fusedEntry{match: copied}
				byID[m.ID] = entry
				entries = append(entries, entry)
			} else {
				// Second occurrence only fills metadata keys the first
				// scan did not set.
				for k, v := range m.Metadata {
					if _, exists := entry.match.Metadata[k]; !exists {
						entry.match.Metadata[k] = v
					}
				}
			}
			entry.score += 1.0 / float64(rrfK+rank+1)
		}
	}
	scan(dense)
	scan(sparse)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	if topK > 0 && len(entries) > topK {
		entries = entries[:topK]
	}
	out := make([]types.RetrievalMatch, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.match)
	}
	return out
}
