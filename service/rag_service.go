package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DelanoMarcell/litigation-chatbot/database"
	"github.com/DelanoMarcell/litigation-chatbot/retrieval"
	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// Fixed answers for the degraded paths. The request itself still succeeds;
// the client gets an honest answer with no citations.
const (
	noEvidenceAnswer  = "I could not find anything relevant to your question in the document collection."
	unparseableAnswer = "Sorry, I could not extract a supported answer from the model response. Please try rephrasing your question."
)

// RAGService runs the query pipeline: embed, search, fuse, prompt, answer.
type RAGService struct {
	store      database.VectorStore
	embedder   *EmbeddingService
	chat       ChatService
	promptPath string
	topK       int
	timeout    time.Duration
}

func NewRAGService(store database.VectorStore, embedder *EmbeddingService, chat ChatService, promptPath string, topK int, timeout time.Duration) *RAGService {
	return &RAGService{
		store:      store,
		embedder:   embedder,
		chat:       chat,
		promptPath: promptPath,
		topK:       topK,
		timeout:    timeout,
	}
}

// splitHistory separates the latest user turn from the context preceding it.
func splitHistory(messages []types.Message) (string, []types.Message, error) {
	if len(messages) == 0 {
		return "", nil, errors.New("empty message list")
	}
	last := messages[len(messages)-1]
	if last.Role != "user" {
		return "", nil, errors.New("last message must be a user turn")
	}
	return last.Content, messages[:len(messages)-1], nil
}

// Retrieve runs the similarity searches for a query in the given mode.
// Hybrid mode runs dense and sparse concurrently, since neither depends on
// the other's result, and fuses the two rankings; single modes return their
// one list directly, already capped at top-K.
func (s *RAGService) Retrieve(ctx context.Context, mode, query string, limit int) ([]types.RetrievalMatch, error) {
	if limit <= 0 {
		limit = s.topK
	}
	switch mode {
	case types.ModeDense:
		vector, err := s.embedder.EmbedQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		return s.store.DenseSearch(ctx, vector, limit)
	case types.ModeSparse:
		return s.store.SparseSearch(ctx, query, limit)
	case types.ModeHybrid, "":
		vector, err := s.embedder.EmbedQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		var (
			wg            sync.WaitGroup
			dense, sparse []types.RetrievalMatch
			denseErr      error
			sparseErr     error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			dense, denseErr = s.store.DenseSearch(ctx, vector, limit)
		}()
		go func() {
			defer wg.Done()
			sparse, sparseErr = s.store.SparseSearch(ctx, query, limit)
		}()
		wg.Wait()
		if denseErr != nil {
			return nil, denseErr
		}
		if sparseErr != nil {
			return nil, sparseErr
		}
		return retrieval.FuseRankings(dense, sparse, limit), nil
	default:
		return nil, fmt.Errorf("unknown retrieval mode %q", mode)
	}
}

// prepare runs the shared front half of the pipeline up to the model call.
// A nil message slice with a non-nil answer means the request short-circuited.
func (s *RAGService) prepare(ctx context.Context, req types.ChatRequest) ([]types.Message, []types.RetrievalMatch, *types.ChatAnswer, error) {
	question, history, err := splitHistory(req.Messages)
	if err != nil {
		return nil, nil, nil, err
	}
	matches, err := s.Retrieve(ctx, req.Mode, question, s.topK)
	if err != nil {
		return nil, nil, nil, err
	}
	// Zero matches short-circuits before the model call; asking the model
	// to answer from nothing invites fabrication.
	if len(matches) == 0 {
		return nil, nil, &types.ChatAnswer{Answer: noEvidenceAnswer, Citations: []types.Citation{}}, nil
	}
	sources := retrieval.FormatSources(matches)
	messages := BuildMessages(SystemPrompt(s.promptPath), history, question, sources)
	return messages, matches, nil, nil
}

// finalize turns the complete raw model output into the authoritative
// answer/citations pair.
func finalize(raw string, matches []types.RetrievalMatch) *types.ChatAnswer {
	parsed, ok := ParseModelAnswer(raw)
	if !ok {
		return &types.ChatAnswer{Answer: unparseableAnswer, Citations: []types.Citation{}}
	}
	return &types.ChatAnswer{
		Answer:    StripMarkers(parsed.Answer),
		Citations: ValidateCitations(parsed.Citations, matches),
	}
}

func (s *RAGService) wrapModelErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("model call timed out after %s, please retry: %w", s.timeout, err)
	}
	return err
}

// Answer runs the non-streaming pipeline.
func (s *RAGService) Answer(ctx context.Context, req types.ChatRequest) (*types.ChatAnswer, error) {
	messages, matches, short, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if short != nil {
		return short, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	raw, err := s.chat.Complete(ctx, messages)
	if err != nil {
		return nil, s.wrapModelErr(ctx, err)
	}
	return finalize(raw, matches), nil
}

// AnswerStream runs the streaming pipeline. Decoded, marker-stripped answer
// text is pushed through onToken as it arrives; the returned ChatAnswer is
// the authoritative final value and always overrides the preview.
func (s *RAGService) AnswerStream(ctx context.Context, req types.ChatRequest, onToken types.StreamHandler) (*types.ChatAnswer, error) {
	messages, matches, short, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if short != nil {
		onToken(short.Answer)
		return short, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Both extractors carry cross-fragment state, so fragments must flow
	// through them strictly in arrival order.
	extractor := NewAnswerExtractor()
	filter := NewMarkerFilter()
	raw, err := s.chat.CompleteStream(ctx, messages, func(fragment string) {
		decoded := extractor.Feed(fragment)
		if decoded == "" {
			return
		}
		if plain := filter.Feed(decoded); plain != "" {
			onToken(plain)
		}
	})
	if err != nil {
		return nil, s.wrapModelErr(ctx, err)
	}
	if tail := filter.Flush(); tail != "" {
		onToken(tail)
	}
	return finalize(raw, matches), nil
}
