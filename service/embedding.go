package service

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Embedding requests are batched; the service returns one vector per input
// text, order-preserving.
const embeddingBatchSize = 64

// EmbeddingService wraps the remote embedding model behind a batch API.
type EmbeddingService struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewEmbeddingService(baseURL, apiKey, model string) *EmbeddingService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &EmbeddingService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(model),
	}
}

// EmbedTexts returns one embedding per input text, in input order.
func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[i:end],
			Model: s.model,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != end-i {
			return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs", len(resp.Data), end-i)
		}
		for _, d := range resp.Data {
			vectors = append(vectors, d.Embedding)
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := s.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
