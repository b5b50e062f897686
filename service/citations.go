package service

import (
	"encoding/json"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// ValidateCitations cross-checks the model-claimed citation ids against the
// chunks actually retrieved for this query. Claims are deduplicated
// preserving first-seen order, ids absent from the match set are silently
// dropped, and every surviving id is resolved back to its provenance. No
// hallucinated identifier ever reaches the client.
func ValidateCitations(claims []json.RawMessage, matches []types.RetrievalMatch) []types.Citation {
	byID := make(map[string]types.RetrievalMatch, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	seen := make(map[string]bool, len(claims))
	citations := make([]types.Citation, 0, len(claims))
	for _, claim := range claims {
		id := claimedID(claim)
		if id == "" || seen[id] {
			continue
		}
		match, ok := byID[id]
		if !ok {
			continue
		}
		seen[id] = true
		citations = append(citations, match.Citation())
	}
	return citations
}

// claimedID tolerates the model returning either a plain id string or an
// object carrying a chunk_id field.
func claimedID(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ChunkID string `json:"chunk_id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.ChunkID
	}
	return ""
}
