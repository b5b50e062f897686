package service

import (
	"context"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// ChatService is the chat-completion model boundary. Implementations request
// the strict {"answer", "citations"} JSON schema and transparently retry
// exactly once without it when the backend rejects the constraint; any other
// error is not retried.
type ChatService interface {
	// Complete returns the model's full raw completion text.
	Complete(ctx context.Context, messages []types.Message) (string, error)

	// CompleteStream forwards raw completion fragments to handler strictly
	// in arrival order and returns the accumulated raw text.
	CompleteStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) (string, error)
}
