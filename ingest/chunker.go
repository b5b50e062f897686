package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// Chunk sizing policy. Section and page boundaries always win over the size
// window; the window only governs items that already share both.
const (
	MinParas = 4
	MaxParas = 6
	MinWords = 350
	MaxWords = 800
)

// ContentItems runs the element filter and section resolver over one
// document's parsed elements, producing the ordered content-item sequence
// the chunk builder consumes. Paragraph indices are 1-based and reset on
// every page change. The second return value is the resolved document title.
func ContentItems(elements []types.DocumentElement, fallbackTitle string) ([]types.ContentItem, string) {
	resolver := newSectionResolver(elements, fallbackTitle)

	var items []types.ContentItem
	paraIndex := 0
	currentPage := -1
	for i := range elements {
		el := &elements[i]
		if !IsContent(el) {
			continue
		}
		if el.Metadata.PageNumber != currentPage {
			currentPage = el.Metadata.PageNumber
			paraIndex = 0
		}
		paraIndex++
		items = append(items, types.ContentItem{
			ElementID:   el.ElementID,
			Text:        normalizeText(el.Text),
			PageNumber:  el.Metadata.PageNumber,
			ParaIndex:   paraIndex,
			SectionPath: resolver.PathFor(el),
			ContentType: elementContentType(el),
		})
	}
	return items, resolver.DocTitle()
}

// accumulator is the single chunk-in-progress of the builder loop.
type accumulator struct {
	pageStart   int
	pageEnd     int
	paraStart   int
	paraEnd     int
	sectionPath string
	elementIDs  []string
	textParts   []string
	wordCount   int
	paraCount   int
	contentType string
}

func newAccumulator(item types.ContentItem) *accumulator {
	return &accumulator{
		pageStart:   item.PageNumber,
		pageEnd:     item.PageNumber,
		paraStart:   item.ParaIndex,
		paraEnd:     item.ParaIndex,
		sectionPath: item.SectionPath,
		elementIDs:  []string{item.ElementID},
		textParts:   []string{item.Text},
		wordCount:   wordCount(item.Text),
		paraCount:   1,
		contentType: item.ContentType,
	}
}

// shouldFlush checks the flush conditions in precedence order: section
// change, page change, paragraph cap, then word overflow gated on the
// minimum-paragraph guard.
func (a *accumulator) shouldFlush(item types.ContentItem) bool {
	if item.SectionPath != a.sectionPath {
		return true
	}
	if item.PageNumber != a.pageEnd {
		return true
	}
	if a.paraCount >= MaxParas {
		return true
	}
	if a.wordCount+wordCount(item.Text) > MaxWords && a.paraCount >= MinParas {
		return true
	}
	return false
}

func (a *accumulator) merge(item types.ContentItem) {
	a.pageEnd = item.PageNumber
	a.paraEnd = item.ParaIndex
	a.elementIDs = append(a.elementIDs, item.ElementID)
	a.textParts = append(a.textParts, item.Text)
	a.wordCount += wordCount(item.Text)
	a.paraCount++
	if item.ContentType != a.contentType {
		a.contentType = types.ContentTypeMixed
	}
}

// BuildChunks aggregates a document's ordered content items into bounded
// chunks. Chunk ids are deterministic over (doc id, ordinal, element ids),
// so re-ingesting an unchanged document is idempotent.
func BuildChunks(docID, docTitle string, items []types.ContentItem) []types.Chunk {
	var chunks []types.Chunk
	var acc *accumulator
	ordinal := 0

	flush := func() {
		chunks = append(chunks, types.Chunk{
			ChunkID:     chunkID(docID, ordinal, acc.elementIDs),
			DocID:       docID,
			DocTitle:    docTitle,
			ChunkIndex:  ordinal,
			PageStart:   acc.pageStart,
			PageEnd:     acc.pageEnd,
			ParaStart:   acc.paraStart,
			ParaEnd:     acc.paraEnd,
			SectionPath: acc.sectionPath,
			ElementIDs:  acc.elementIDs,
			ContentType: acc.contentType,
			Text:        strings.Join(acc.textParts, "\n\n"),
			SourceURL:   SourceURL(docID, acc.pageStart),
		})
		ordinal++
		acc = nil
	}

	for _, item := range items {
		if acc == nil {
			acc = newAccumulator(item)
			continue
		}
		if acc.shouldFlush(item) {
			flush()
			acc = newAccumulator(item)
			continue
		}
		acc.merge(item)
	}
	// Terminal flush, even below the minimum sizes.
	if acc != nil {
		flush()
	}
	return chunks
}

// SourceURL builds the page-anchored link used as a chunk's provenance URL.
func SourceURL(docID string, page int) string {
	return fmt.Sprintf("/api/v1/pdf?file=%s.pdf#page=%d", docID, page)
}

func chunkID(docID string, ordinal int, elementIDs []string) string {
	sum := sha256.Sum256([]byte(docID + "|" + strconv.Itoa(ordinal) + "|" + strings.Join(elementIDs, ",")))
	return fmt.Sprintf("%s-%d-%s", Slug(docID), ordinal, hex.EncodeToString(sum[:8]))
}

// Slug lowercases a document id and squeezes anything that is not a letter
// or digit into single dashes.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
		} else if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
