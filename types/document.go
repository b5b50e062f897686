package types

// Element type tags produced by the upstream document parsing service.
const (
	ElementNarrativeText     = "NarrativeText"
	ElementUncategorizedText = "UncategorizedText"
	ElementListItem          = "ListItem"
	ElementTable             = "Table"
	ElementTitle             = "Title"
	ElementHeader            = "Header"
	ElementFooter            = "Footer"
	ElementPageBreak         = "PageBreak"
)

// Chunk content types.
const (
	ContentTypeText  = "text"
	ContentTypeTable = "table"
	ContentTypeMixed = "mixed"
)

// DocumentElement is a single parsed element of a source PDF as emitted by
// the upstream parsing service. Read-only input to ingestion.
type DocumentElement struct {
	ElementID string          `json:"element_id"`
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Metadata  ElementMetadata `json:"metadata"`
}

// ElementMetadata carries element provenance. ParentID optionally points at
// an enclosing heading element and may be missing or dangling.
type ElementMetadata struct {
	PageNumber int    `json:"page_number"`
	ParentID   string `json:"parent_id,omitempty"`
}

// ContentItem is one non-filtered element, normalized and tagged with the
// provenance it contributes to a chunk. Immutable once created.
type ContentItem struct {
	ElementID   string
	Text        string
	PageNumber  int
	ParaIndex   int // 1-based, reset per page, in element encounter order
	SectionPath string
	ContentType string // ContentTypeText or ContentTypeTable
}

// Chunk is the persisted unit of retrieval and citation. Created once during
// ingestion and never mutated; keyed by ChunkID everywhere.
type Chunk struct {
	ChunkID     string   `json:"chunk_id"`
	DocID       string   `json:"doc_id"`
	DocTitle    string   `json:"doc_title"`
	ChunkIndex  int      `json:"chunk_index"`
	PageStart   int      `json:"page_start"`
	PageEnd     int      `json:"page_end"`
	ParaStart   int      `json:"para_start"` // paragraph indices local to PageStart
	ParaEnd     int      `json:"para_end"`
	SectionPath string   `json:"section_path"`
	ElementIDs  []string `json:"element_ids"`
	ContentType string   `json:"content_type"`
	Text        string   `json:"text"`
	SourceURL   string   `json:"source_url"`
}

// RetrievalMatch is one ranked hit from a similarity search. Scores are
// ranker-native and not comparable across rankers. Ephemeral, per-query.
type RetrievalMatch struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// MetaString reads a string metadata field, tolerating a missing key.
func (m RetrievalMatch) MetaString(key string) string {
	if v, ok := m.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// MetaInt reads a numeric metadata field. GraphQL responses carry numbers
// as float64.
func (m RetrievalMatch) MetaInt(key string) int {
	switch v := m.Metadata[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Citation builds the provenance record for this match.
func (m RetrievalMatch) Citation() Citation {
	return Citation{
		ChunkID:     m.ID,
		DocID:       m.MetaString("doc_id"),
		Page:        m.MetaInt("page_start"),
		ParaStart:   m.MetaInt("para_start"),
		ParaEnd:     m.MetaInt("para_end"),
		SectionPath: m.MetaString("section_path"),
		SourceURL:   m.MetaString("source_url"),
	}
}
