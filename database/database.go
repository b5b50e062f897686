package database

import (
	"context"

	"github.com/DelanoMarcell/litigation-chatbot/types"
)

// VectorStore is the similarity-search service boundary. It exposes two
// independent rankings over the same chunk set: dense (vector similarity)
// and sparse (lexical BM25). Both return best-first lists.
type VectorStore interface {
	// Schema operations
	InitSchema(ctx context.Context) error
	ReInit(ctx context.Context) error

	// Chunk operations. Upserts are idempotent: each chunk is addressed by
	// a deterministic id derived from its chunk id.
	BatchUpsertChunks(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error

	// Search operations
	DenseSearch(ctx context.Context, vector []float32, limit int) ([]types.RetrievalMatch, error)
	SparseSearch(ctx context.Context, query string, limit int) ([]types.RetrievalMatch, error)

	// Point lookup by chunk id.
	GetChunk(ctx context.Context, chunkID string) (*types.Chunk, error)
}

// ChunkIndex is a local read-only lookup of ingested chunks, used as a
// fallback when the vector store point lookup is unavailable.
type ChunkIndex interface {
	Get(chunkID string) (*types.Chunk, error)
}
