package retrieval

import (
	"fmt"
	"strings"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// Sentinel rendered when retrieval produced nothing, so the evidence section
// of the prompt is never ambiguous to the answering model.
const noSourcesSentinel = "None provided"

const sourceSeparator = "\n\n---\n\n"

// FormatSources renders the final ranked match list as the evidence block
// handed to the answering model. Pure function, no side effects.
func FormatSources(matches []types.RetrievalMatch) string {
	if len(matches) == 0 {
		return noSourcesSentinel
	}
	blocks := make([]string, 0, len(matches))
	for i, m := range matches {
		var b strings.Builder
		fmt.Fprintf(&b, "[%d] chunk_id: %s\n", i+1, m.ID)
		fmt.Fprintf(&b, "document: %s (%s)\n", m.MetaString("doc_title"), m.MetaString("doc_id"))
		fmt.Fprintf(&b, "page: %d, paragraphs %d-%d\n", m.MetaInt("page_start"), m.MetaInt("para_start"), m.MetaInt("para_end"))
		fmt.Fprintf(&b, "section: %s\n", m.MetaString("section_path"))
		fmt.Fprintf(&b, "text: %s", m.MetaString("text"))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, sourceSeparator)
}
