package types

import "encoding/json"

// Retrieval modes accepted on a chat request.
const (
	ModeDense  = "dense"
	ModeSparse = "sparse"
	ModeHybrid = "hybrid"
)

// Stream event types for the newline-delimited JSON response.
const (
	EventToken = "token"
	EventDone  = "done"
	EventError = "error"
)

// Message represents a single message in the conversation. Citations are
// only present on assistant turns.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Citations []Citation `json:"citations,omitempty"`
}

type ChatRequest struct {
	Messages []Message `json:"messages"`
	Mode     string    `json:"mode,omitempty"`
	Stream   bool      `json:"stream,omitempty"`
}

// Citation grounds an answer to a retrieved chunk.
type Citation struct {
	ChunkID     string `json:"chunk_id"`
	DocID       string `json:"doc_id"`
	Page        int    `json:"page"`
	ParaStart   int    `json:"para_start"`
	ParaEnd     int    `json:"para_end"`
	SectionPath string `json:"section_path"`
	SourceURL   string `json:"source_url"`
}

// ChatAnswer is the final answer/citations pair returned to the client.
type ChatAnswer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// StreamEvent is one line of the streaming response.
type StreamEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ModelAnswer is the raw JSON object the answering model is instructed to
// produce. Citations stay raw because the model sometimes errs on shape and
// returns objects instead of plain id strings.
type ModelAnswer struct {
	Answer    string            `json:"answer"`
	Citations []json.RawMessage `json:"citations"`
}

// StreamHandler receives plaintext answer fragments as they are decoded.
type StreamHandler func(token string)
