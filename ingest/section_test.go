package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

func TestSectionResolver(t *testing.T) {
	t.Run("builds nested heading breadcrumbs", func(t *testing.T) {
		elements := []types.DocumentElement{
			{ElementID: "t1", Type: types.ElementTitle, Text: "Smith v Jones"},
			{ElementID: "h1", Type: types.ElementTitle, Text: "The merits", Metadata: types.ElementMetadata{ParentID: "t1"}},
			{ElementID: "h2", Type: types.ElementHeader, Text: "Causation", Metadata: types.ElementMetadata{ParentID: "h1"}},
			{ElementID: "e1", Type: types.ElementNarrativeText, Text: "para", Metadata: types.ElementMetadata{ParentID: "h2"}},
		}
		r := newSectionResolver(elements, "fallback")
		assert.Equal(t, "Smith v Jones > The merits > Causation", r.PathFor(&elements[3]))
	})

	t.Run("falls back to document title without heading ancestors", func(t *testing.T) {
		elements := []types.DocumentElement{
			{ElementID: "t1", Type: types.ElementTitle, Text: "Smith v Jones"},
			{ElementID: "e1", Type: types.ElementNarrativeText, Text: "para"},
		}
		r := newSectionResolver(elements, "fallback")
		assert.Equal(t, "Smith v Jones", r.DocTitle())
		assert.Equal(t, "Smith v Jones", r.PathFor(&elements[1]))
	})

	t.Run("dangling parent id terminates the walk", func(t *testing.T) {
		elements := []types.DocumentElement{
			{ElementID: "h1", Type: types.ElementTitle, Text: "Order"},
			{ElementID: "e1", Type: types.ElementNarrativeText, Text: "para", Metadata: types.ElementMetadata{ParentID: "missing"}},
			{ElementID: "e2", Type: types.ElementNarrativeText, Text: "para", Metadata: types.ElementMetadata{ParentID: "h1"}},
		}
		r := newSectionResolver(elements, "fallback")
		assert.Equal(t, "Order", r.PathFor(&elements[1]), "dangling parent falls back to the document title")
		assert.Equal(t, "Order", r.PathFor(&elements[2]))
	})

	t.Run("parent cycle does not loop", func(t *testing.T) {
		elements := []types.DocumentElement{
			{ElementID: "h1", Type: types.ElementTitle, Text: "A", Metadata: types.ElementMetadata{ParentID: "h2"}},
			{ElementID: "h2", Type: types.ElementTitle, Text: "B", Metadata: types.ElementMetadata{ParentID: "h1"}},
			{ElementID: "e1", Type: types.ElementNarrativeText, Text: "para", Metadata: types.ElementMetadata{ParentID: "h1"}},
		}
		r := newSectionResolver(elements, "fallback")
		assert.Equal(t, "B > A", r.PathFor(&elements[2]))
	})

	t.Run("uses the fallback title when the document has no title element", func(t *testing.T) {
		elements := []types.DocumentElement{
			{ElementID: "e1", Type: types.ElementNarrativeText, Text: "para"},
		}
		r := newSectionResolver(elements, "2024-smith-v-jones")
		assert.Equal(t, "2024-smith-v-jones", r.DocTitle())
		assert.Equal(t, "2024-smith-v-jones", r.PathFor(&elements[0]))
	})
}
