package service

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

const defaultSystemPrompt = `You are a legal research assistant answering questions about a fixed collection of litigation documents.

Rules:
- Answer only from the numbered sources provided with the question. If the sources do not contain the answer, say so plainly.
- Respond with a single JSON object: {"answer": "...", "citations": ["chunk_id", ...]}.
- The citations array lists the chunk_id of every source you relied on.
- Inside the answer text, mark each cited claim inline with [[cite:chunk_id]] immediately after the claim it supports.
- Do not invent sources, page numbers, or chunk ids.`

var (
	systemPromptOnce sync.Once
	systemPromptText string
)

// SystemPrompt returns the system prompt text, reading the prompt file at
// most once per process. The cached text is read-only afterwards; a racing
// first call is harmless since every populator reads the same file. Falls
// back to the built-in prompt when the file is absent.
func SystemPrompt(path string) string {
	systemPromptOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("System prompt %s not readable, using built-in default: %v", path, err)
			systemPromptText = defaultSystemPrompt
			return
		}
		systemPromptText = string(data)
	})
	return systemPromptText
}

// BuildMessages assembles the model conversation. Only turns strictly before
// the latest user turn are history context; prior assistant turns carry a
// compact citation-list appendix so the model can refer back to what it
// already cited, but their text is never searched. The evidence block is
// attached to the current turn only.
func BuildMessages(systemPrompt string, history []types.Message, question, sources string) []types.Message {
	messages := make([]types.Message, 0, len(history)+2)
	messages = append(messages, types.Message{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		content := msg.Content
		if msg.Role == "assistant" && len(msg.Citations) > 0 {
			ids := make([]string, 0, len(msg.Citations))
			for _, c := range msg.Citations {
				ids = append(ids, c.ChunkID)
			}
			content = fmt.Sprintf("%s\n\n[cited: %s]", content, strings.Join(ids, ", "))
		}
		messages = append(messages, types.Message{Role: msg.Role, Content: content})
	}
	messages = append(messages, types.Message{
		Role:    "user",
		Content: fmt.Sprintf("Question: %s\n\nSources:\n%s", question, sources),
	})
	return messages
}
