package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// para builds a narrative element of roughly n words.
func para(id string, page int, parentID string, n int) types.DocumentElement {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return types.DocumentElement{
		ElementID: id,
		Type:      types.ElementNarrativeText,
		Text:      strings.Join(words, " "),
		Metadata:  types.ElementMetadata{PageNumber: page, ParentID: parentID},
	}
}

func heading(id, text string, page int) types.DocumentElement {
	return types.DocumentElement{
		ElementID: id,
		Type:      types.ElementTitle,
		Text:      text,
		Metadata:  types.ElementMetadata{PageNumber: page},
	}
}

func TestBuildChunks(t *testing.T) {
	t.Run("keeps paragraphs contiguous and ordered", func(t *testing.T) {
		elements := []types.DocumentElement{
			heading("h1", "Ruling", 1),
		}
		for i := 0; i < 10; i++ {
			elements = append(elements, para(fmt.Sprintf("e%d", i), 1, "h1", 100))
		}
		items, title := ContentItems(elements, "fallback")
		chunks := BuildChunks("judgment-2024", title, items)
		require.NotEmpty(t, chunks)

		// Every element appears exactly once, in input order.
		var gotIDs []string
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.ChunkIndex)
			gotIDs = append(gotIDs, chunk.ElementIDs...)
		}
		require.Len(t, gotIDs, 10)
		for i, id := range gotIDs {
			assert.Equal(t, fmt.Sprintf("e%d", i), id)
		}

		// Paragraph ranges are contiguous across consecutive chunks.
		for i := 1; i < len(chunks); i++ {
			assert.Equal(t, chunks[i-1].ParaEnd+1, chunks[i].ParaStart)
		}
	})

	t.Run("section change forces a flush", func(t *testing.T) {
		elements := []types.DocumentElement{
			heading("h1", "Background", 1),
			heading("h2", "Order", 1),
			para("e1", 1, "h1", 50),
			para("e2", 1, "h1", 50),
			para("e3", 1, "h2", 50),
		}
		items, title := ContentItems(elements, "fallback")
		chunks := BuildChunks("doc", title, items)
		require.Len(t, chunks, 2)
		assert.Equal(t, "Background", chunks[0].SectionPath)
		assert.Equal(t, []string{"e1", "e2"}, chunks[0].ElementIDs)
		assert.Equal(t, "Order", chunks[1].SectionPath)
		assert.Equal(t, []string{"e3"}, chunks[1].ElementIDs)
	})

	t.Run("page change forces a flush and resets paragraph numbering", func(t *testing.T) {
		elements := []types.DocumentElement{
			heading("h1", "Ruling", 1),
			para("e1", 1, "h1", 50),
			para("e2", 1, "h1", 50),
			para("e3", 2, "h1", 50),
		}
		items, title := ContentItems(elements, "fallback")
		chunks := BuildChunks("doc", title, items)
		require.Len(t, chunks, 2)
		assert.Equal(t, 1, chunks[0].PageStart)
		assert.Equal(t, 1, chunks[0].PageEnd)
		assert.Equal(t, 1, chunks[0].ParaStart)
		assert.Equal(t, 2, chunks[0].ParaEnd)
		assert.Equal(t, 2, chunks[1].PageStart)
		assert.Equal(t, 1, chunks[1].ParaStart, "paragraph index restarts on the new page")
	})

	t.Run("paragraph cap closes a chunk at six paragraphs", func(t *testing.T) {
		var elements []types.DocumentElement
		elements = append(elements, heading("h1", "Ruling", 1))
		for i := 0; i < 8; i++ {
			elements = append(elements, para(fmt.Sprintf("e%d", i), 1, "h1", 10))
		}
		items, title := ContentItems(elements, "fallback")
		chunks := BuildChunks("doc", title, items)
		require.Len(t, chunks, 2)
		assert.Len(t, chunks[0].ElementIDs, MaxParas)
		assert.Len(t, chunks[1].ElementIDs, 2)
	})

	t.Run("word overflow flushes only after the paragraph minimum", func(t *testing.T) {
		elements := []types.DocumentElement{
			heading("h1", "Ruling", 1),
			// Two long paragraphs overflow MaxWords but stay together while
			// below MinParas.
			para("e1", 1, "h1", 500),
			para("e2", 1, "h1", 500),
		}
		items, title := ContentItems(elements, "fallback")
		chunks := BuildChunks("doc", title, items)
		require.Len(t, chunks, 1)
		assert.Equal(t, []string{"e1", "e2"}, chunks[0].ElementIDs)

		// With the minimum satisfied, the next paragraph overflows and splits.
		elements = []types.DocumentElement{heading("h1", "Ruling", 1)}
		for i := 0; i < 4; i++ {
			elements = append(elements, para(fmt.Sprintf("e%d", i), 1, "h1", 190))
		}
		elements = append(elements, para("e4", 1, "h1", 190))
		items, title = ContentItems(elements, "fallback")
		chunks = BuildChunks("doc", title, items)
		require.Len(t, chunks, 2)
		assert.Len(t, chunks[0].ElementIDs, 4)
		assert.Equal(t, []string{"e4"}, chunks[1].ElementIDs)
	})

	t.Run("terminal flush emits an undersized tail", func(t *testing.T) {
		elements := []types.DocumentElement{
			heading("h1", "Ruling", 1),
			para("e1", 1, "h1", 5),
		}
		items, title := ContentItems(elements, "fallback")
		chunks := BuildChunks("doc", title, items)
		require.Len(t, chunks, 1)
		assert.Equal(t, []string{"e1"}, chunks[0].ElementIDs)
	})

	t.Run("chunk ids are deterministic across re-ingestion", func(t *testing.T) {
		elements := []types.DocumentElement{
			heading("h1", "Ruling", 1),
			para("e1", 1, "h1", 50),
			para("e2", 1, "h1", 50),
		}
		items, title := ContentItems(elements, "fallback")
		first := BuildChunks("Judgment 2024/17", title, items)
		second := BuildChunks("Judgment 2024/17", title, items)
		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].ChunkID, second[i].ChunkID)
		}
		assert.True(t, strings.HasPrefix(first[0].ChunkID, "judgment-2024-17-0-"))
	})

	t.Run("chunk text joins paragraphs with blank lines", func(t *testing.T) {
		elements := []types.DocumentElement{
			{ElementID: "e1", Type: types.ElementNarrativeText, Text: "First  para.", Metadata: types.ElementMetadata{PageNumber: 1}},
			{ElementID: "e2", Type: types.ElementNarrativeText, Text: "Second para.", Metadata: types.ElementMetadata{PageNumber: 1}},
		}
		items, title := ContentItems(elements, "fallback")
		chunks := BuildChunks("doc", title, items)
		require.Len(t, chunks, 1)
		assert.Equal(t, "First para.\n\nSecond para.", chunks[0].Text)
	})

	t.Run("table elements mark mixed content", func(t *testing.T) {
		elements := []types.DocumentElement{
			para("e1", 1, "", 20),
			{ElementID: "e2", Type: types.ElementTable, Text: "a | b", Metadata: types.ElementMetadata{PageNumber: 1}},
		}
		items, _ := ContentItems(elements, "fallback")
		chunks := BuildChunks("doc", "fallback", items)
		require.Len(t, chunks, 1)
		assert.Equal(t, types.ContentTypeMixed, chunks[0].ContentType)
	})
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "judgment-2024-17", Slug("Judgment 2024/17"))
	assert.Equal(t, "smith-v-jones", Slug("  Smith v. Jones  "))
	assert.Equal(t, "a-b", Slug("a---b"))
}

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "/api/v1/pdf?file=smith-v-jones.pdf#page=4", SourceURL("smith-v-jones", 4))
}
