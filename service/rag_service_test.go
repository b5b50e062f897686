package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// fakeStore serves canned sparse results; the dense path needs a live
// embedding endpoint and is exercised against a running stack instead.
type fakeStore struct {
	sparse []types.RetrievalMatch
}

func (s *fakeStore) InitSchema(ctx context.Context) error { return nil }
func (s *fakeStore) ReInit(ctx context.Context) error     { return nil }
func (s *fakeStore) BatchUpsertChunks(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	return nil
}
func (s *fakeStore) DenseSearch(ctx context.Context, vector []float32, limit int) ([]types.RetrievalMatch, error) {
	return nil, errors.New("dense search not available in tests")
}
func (s *fakeStore) SparseSearch(ctx context.Context, query string, limit int) ([]types.RetrievalMatch, error) {
	return s.sparse, nil
}
func (s *fakeStore) GetChunk(ctx context.Context, chunkID string) (*types.Chunk, error) {
	return nil, errors.New("not found")
}

// fakeChat replays a fixed completion, fragmenting it for the stream path.
type fakeChat struct {
	reply string
}

func (c *fakeChat) Complete(ctx context.Context, messages []types.Message) (string, error) {
	return c.reply, nil
}

func (c *fakeChat) CompleteStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) (string, error) {
	for i := 0; i < len(c.reply); i += 3 {
		end := i + 3
		if end > len(c.reply) {
			end = len(c.reply)
		}
		handler(c.reply[i:end])
	}
	return c.reply, nil
}

func newTestRAG(store *fakeStore, chat *fakeChat) *RAGService {
	return NewRAGService(store, nil, chat, "testdata/missing_prompt.txt", 6, 30*time.Second)
}

func TestSplitHistory(t *testing.T) {
	t.Run("separates the latest user turn", func(t *testing.T) {
		question, history, err := splitHistory([]types.Message{
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "reply"},
			{Role: "user", Content: "second"},
		})
		require.NoError(t, err)
		assert.Equal(t, "second", question)
		require.Len(t, history, 2)
		assert.Equal(t, "first", history[0].Content)
	})

	t.Run("rejects empty and assistant-terminated conversations", func(t *testing.T) {
		_, _, err := splitHistory(nil)
		assert.Error(t, err)
		_, _, err = splitHistory([]types.Message{{Role: "assistant", Content: "x"}})
		assert.Error(t, err)
	})
}

func TestFinalize(t *testing.T) {
	matches := []types.RetrievalMatch{
		{ID: "a", Metadata: map[string]interface{}{"doc_id": "doc-a"}},
	}

	t.Run("strips markers and validates citations", func(t *testing.T) {
		answer := finalize(`{"answer":"Granted [[cite:a]] with costs.","citations":["a","ghost"]}`, matches)
		assert.Equal(t, "Granted  with costs.", answer.Answer)
		require.Len(t, answer.Citations, 1)
		assert.Equal(t, "a", answer.Citations[0].ChunkID)
	})

	t.Run("unparseable output degrades to the fixed answer", func(t *testing.T) {
		answer := finalize("not json", matches)
		assert.Equal(t, unparseableAnswer, answer.Answer)
		assert.Empty(t, answer.Citations)
	})
}

func TestRAGServiceAnswer(t *testing.T) {
	matches := []types.RetrievalMatch{
		{ID: "a", Metadata: map[string]interface{}{"doc_id": "doc-a", "text": "evidence"}},
	}

	t.Run("answers from sparse retrieval", func(t *testing.T) {
		rag := newTestRAG(
			&fakeStore{sparse: matches},
			&fakeChat{reply: `{"answer":"Yes [[cite:a]].","citations":["a"]}`},
		)
		answer, err := rag.Answer(context.Background(), types.ChatRequest{
			Mode:     types.ModeSparse,
			Messages: []types.Message{{Role: "user", Content: "was it granted?"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Yes .", answer.Answer)
		require.Len(t, answer.Citations, 1)
		assert.Equal(t, "a", answer.Citations[0].ChunkID)
	})

	t.Run("zero matches short-circuits before the model call", func(t *testing.T) {
		rag := newTestRAG(&fakeStore{}, &fakeChat{reply: "must not be used"})
		answer, err := rag.Answer(context.Background(), types.ChatRequest{
			Mode:     types.ModeSparse,
			Messages: []types.Message{{Role: "user", Content: "anything?"}},
		})
		require.NoError(t, err)
		assert.Equal(t, noEvidenceAnswer, answer.Answer)
		assert.Empty(t, answer.Citations)
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		rag := newTestRAG(&fakeStore{sparse: matches}, &fakeChat{})
		_, err := rag.Answer(context.Background(), types.ChatRequest{
			Mode:     "cosine",
			Messages: []types.Message{{Role: "user", Content: "q"}},
		})
		assert.Error(t, err)
	})
}

func TestRAGServiceAnswerStream(t *testing.T) {
	matches := []types.RetrievalMatch{
		{ID: "a", Metadata: map[string]interface{}{"doc_id": "doc-a"}},
	}

	t.Run("streams marker-free answer text and finalizes from the raw output", func(t *testing.T) {
		rag := newTestRAG(
			&fakeStore{sparse: matches},
			&fakeChat{reply: `{"answer":"Granted [[cite:a]] with costs.","citations":["a"]}`},
		)
		var streamed strings.Builder
		answer, err := rag.AnswerStream(context.Background(), types.ChatRequest{
			Mode:     types.ModeSparse,
			Messages: []types.Message{{Role: "user", Content: "outcome?"}},
		}, func(token string) {
			streamed.WriteString(token)
		})
		require.NoError(t, err)
		assert.Equal(t, "Granted  with costs.", streamed.String(), "preview must match the final answer text")
		assert.Equal(t, "Granted  with costs.", answer.Answer)
		require.Len(t, answer.Citations, 1)
	})

	t.Run("zero matches streams the degraded answer", func(t *testing.T) {
		rag := newTestRAG(&fakeStore{}, &fakeChat{})
		var streamed strings.Builder
		answer, err := rag.AnswerStream(context.Background(), types.ChatRequest{
			Mode:     types.ModeSparse,
			Messages: []types.Message{{Role: "user", Content: "q"}},
		}, func(token string) {
			streamed.WriteString(token)
		})
		require.NoError(t, err)
		assert.Equal(t, noEvidenceAnswer, streamed.String())
		assert.Equal(t, noEvidenceAnswer, answer.Answer)
	})
}
