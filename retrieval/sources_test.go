package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

func TestFormatSources(t *testing.T) {
	t.Run("renders numbered blocks with provenance", func(t *testing.T) {
		matches := []types.RetrievalMatch{
			{
				ID: "smith-0-abc",
				Metadata: map[string]interface{}{
					"doc_title":    "Smith v Jones",
					"doc_id":       "smith-v-jones",
					"page_start":   float64(4),
					"para_start":   float64(2),
					"para_end":     float64(5),
					"section_path": "Smith v Jones > The merits",
					"text":         "The appeal succeeds.",
				},
			},
			{
				ID: "smith-1-def",
				Metadata: map[string]interface{}{
					"doc_title": "Smith v Jones",
					"doc_id":    "smith-v-jones",
					"text":      "Costs follow the result.",
				},
			},
		}

		out := FormatSources(matches)
		assert.Contains(t, out, "[1] chunk_id: smith-0-abc\n")
		assert.Contains(t, out, "document: Smith v Jones (smith-v-jones)\n")
		assert.Contains(t, out, "page: 4, paragraphs 2-5\n")
		assert.Contains(t, out, "section: Smith v Jones > The merits\n")
		assert.Contains(t, out, "text: The appeal succeeds.")
		assert.Contains(t, out, "\n\n---\n\n[2] chunk_id: smith-1-def\n")
	})

	t.Run("empty retrieval yields the sentinel", func(t *testing.T) {
		assert.Equal(t, "None provided", FormatSources(nil))
		assert.Equal(t, "None provided", FormatSources([]types.RetrievalMatch{}))
	})
}
