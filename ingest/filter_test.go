package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

func TestIsNoise(t *testing.T) {
	t.Run("drops blank and furniture elements", func(t *testing.T) {
		assert.True(t, IsNoise(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "   "}))
		assert.True(t, IsNoise(&types.DocumentElement{Type: types.ElementFooter, Text: "Page 3 of 12"}))
		assert.True(t, IsNoise(&types.DocumentElement{Type: types.ElementPageBreak, Text: "-"}))
	})

	t.Run("drops portal boilerplate", func(t *testing.T) {
		assert.True(t, IsNoise(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "Downloaded: 2024-03-01 from the registry"}))
		assert.True(t, IsNoise(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "© 2023 Supreme Court of Appeal"}))
		assert.True(t, IsNoise(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "Copyright 2024 All rights reserved"}))
		assert.True(t, IsNoise(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "(c) 2022 SAFLII"}))
	})

	t.Run("keeps narrative text", func(t *testing.T) {
		assert.False(t, IsNoise(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "The appellant contends that the contract lapsed."}))
		// A sentence about copyright law is not boilerplate because the
		// pattern needs a year or the word notice after it.
		assert.False(t, IsNoise(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "Copyright subsists in original works."}))
	})
}

func TestIsContent(t *testing.T) {
	assert.True(t, IsContent(&types.DocumentElement{Type: types.ElementNarrativeText, Text: "Some finding."}))
	assert.True(t, IsContent(&types.DocumentElement{Type: types.ElementListItem, Text: "1. First ground of appeal."}))
	assert.True(t, IsContent(&types.DocumentElement{Type: types.ElementTable, Text: "a | b"}))
	assert.False(t, IsContent(&types.DocumentElement{Type: types.ElementTitle, Text: "ORDER"}), "headings feed section paths, not chunk text")
	assert.False(t, IsContent(&types.DocumentElement{Type: types.ElementHeader, Text: "Background"}))
	assert.False(t, IsContent(&types.DocumentElement{Type: types.ElementFooter, Text: "Page 2"}))
}
