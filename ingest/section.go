package ingest

import (
	"strings"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// sectionResolver walks parent links among a document's elements to build
// the heading breadcrumb enclosing each content element. The element graph
// is a small forest held as an id lookup; a missing or dangling parent id
// terminates the walk.
type sectionResolver struct {
	byID     map[string]*types.DocumentElement
	docTitle string
}

func newSectionResolver(elements []types.DocumentElement, fallbackTitle string) *sectionResolver {
	r := &sectionResolver{
		byID:     make(map[string]*types.DocumentElement, len(elements)),
		docTitle: fallbackTitle,
	}
	title := ""
	for i := range elements {
		el := &elements[i]
		r.byID[el.ElementID] = el
		if title == "" && el.Type == types.ElementTitle && strings.TrimSpace(el.Text) != "" {
			title = normalizeText(el.Text)
		}
	}
	if title != "" {
		r.docTitle = title
	}
	return r
}

// DocTitle is the first title element's text, or the fallback given at
// construction (typically the filename) when the document has none.
func (r *sectionResolver) DocTitle() string {
	return r.docTitle
}

// PathFor returns the " > "-joined breadcrumb of heading ancestors for el,
// falling back to the document title when no heading ancestor exists.
func (r *sectionResolver) PathFor(el *types.DocumentElement) string {
	var parts []string
	seen := map[string]bool{el.ElementID: true}
	parentID := el.Metadata.ParentID
	for parentID != "" {
		parent, ok := r.byID[parentID]
		if !ok || seen[parentID] {
			break
		}
		seen[parentID] = true
		if IsHeading(parent) && strings.TrimSpace(parent.Text) != "" {
			parts = append([]string{normalizeText(parent.Text)}, parts...)
		}
		parentID = parent.Metadata.ParentID
	}
	if len(parts) == 0 {
		return r.docTitle
	}
	return strings.Join(parts, " > ")
}
