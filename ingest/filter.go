package ingest

import (
	"regexp"
	"strings"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// Boilerplate lines injected by the download portals the corpus was pulled
// from. These never carry citable content.
var (
	downloadedPattern = regexp.MustCompile(`(?i)^\s*downloaded:`)
	copyrightPattern  = regexp.MustCompile(`(?i)(©|\(c\)\s|copyright\s+(\d{4}|notice))`)
)

// IsHeading reports whether an element is a heading. Headings are excluded
// from chunk content but retained for section path resolution.
func IsHeading(el *types.DocumentElement) bool {
	return el.Type == types.ElementTitle || el.Type == types.ElementHeader
}

// IsNoise reports whether an element should be skipped entirely: blank text,
// page furniture, or boilerplate.
func IsNoise(el *types.DocumentElement) bool {
	text := strings.TrimSpace(el.Text)
	if text == "" {
		return true
	}
	switch el.Type {
	case types.ElementFooter, types.ElementPageBreak:
		return true
	}
	return downloadedPattern.MatchString(text) || copyrightPattern.MatchString(text)
}

// IsContent reports whether an element contributes chunk text.
func IsContent(el *types.DocumentElement) bool {
	return !IsNoise(el) && !IsHeading(el)
}

func elementContentType(el *types.DocumentElement) string {
	if el.Type == types.ElementTable {
		return types.ContentTypeTable
	}
	return types.ContentTypeText
}

// normalizeText collapses internal whitespace runs and trims the result.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
