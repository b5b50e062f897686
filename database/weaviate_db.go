package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/DelanoMarcell/litigation-chatbot/config"
	"github.com/DelanoMarcell/litigation-chatbot/types"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "LegalChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "chunkId", DataType: []string{"text"}},
			{Name: "docId", DataType: []string{"text"}},
			{Name: "docTitle", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "pageStart", DataType: []string{"int"}},
			{Name: "pageEnd", DataType: []string{"int"}},
			{Name: "paraStart", DataType: []string{"int"}},
			{Name: "paraEnd", DataType: []string{"int"}},
			{Name: "sectionPath", DataType: []string{"text"}},
			{Name: "elementIds", DataType: []string{"text[]"}},
			{Name: "contentType", DataType: []string{"text"}},
			{Name: "text", DataType: []string{"text"}},
			{Name: "sourceUrl", DataType: []string{"text"}},
		},
		// Vectors are computed client-side and pushed on upsert.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}

	chunkFields = []graphql.Field{
		{Name: "chunkId"},
		{Name: "docId"},
		{Name: "docTitle"},
		{Name: "chunkIndex"},
		{Name: "pageStart"},
		{Name: "pageEnd"},
		{Name: "paraStart"},
		{Name: "paraEnd"},
		{Name: "sectionPath"},
		{Name: "contentType"},
		{Name: "text"},
		{Name: "sourceUrl"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}, {Name: "score"}}},
	}
)

// WeaviateStore implements VectorStore over a single chunk class. Dense
// queries run against the HNSW vector index, sparse queries against the
// class's BM25 inverted index; the two rankings are independent.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
	}
	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateStore{client: client}, nil
}

// InitSchema creates the chunk class when it does not exist yet.
func (s *WeaviateStore) InitSchema(ctx context.Context) error {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			return nil
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
	}
	return nil
}

// ReInit drops and recreates the chunk class.
func (s *WeaviateStore) ReInit(ctx context.Context) error {
	if err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(ctx); err != nil {
		return fmt.Errorf("failed to delete %s class: %w", CHUNK_CLASS, err)
	}
	if err := s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
	}
	return nil
}

// objectID derives the deterministic store id for a chunk, making a repeated
// upsert of the same chunk overwrite rather than duplicate.
func objectID(chunkID string) strfmt.UUID {
	return strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String())
}

func chunkProperties(chunk types.Chunk) map[string]interface{} {
	return map[string]interface{}{
		"chunkId":     chunk.ChunkID,
		"docId":       chunk.DocID,
		"docTitle":    chunk.DocTitle,
		"chunkIndex":  chunk.ChunkIndex,
		"pageStart":   chunk.PageStart,
		"pageEnd":     chunk.PageEnd,
		"paraStart":   chunk.ParaStart,
		"paraEnd":     chunk.ParaEnd,
		"sectionPath": chunk.SectionPath,
		"elementIds":  chunk.ElementIDs,
		"contentType": chunk.ContentType,
		"text":        chunk.Text,
		"sourceUrl":   chunk.SourceURL,
	}
}

// BatchUpsertChunks writes chunks and their embeddings in BATCH_SIZE slices.
// Order is not significant since every object carries its own stable id.
func (s *WeaviateStore) BatchUpsertChunks(ctx context.Context, chunks []types.Chunk, embeddings [][]float32) error {
	if embeddings != nil && len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count %d does not match chunk count %d", len(embeddings), len(chunks))
	}
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}
		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			obj := &models.Object{
				ID:         objectID(chunks[j].ChunkID),
				Class:      CHUNK_CLASS,
				Properties: chunkProperties(chunks[j]),
			}
			if embeddings != nil {
				obj.Vector = embeddings[j]
			}
			batcher = batcher.WithObjects(obj)
		}
		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
		log.Printf("Upserted batch %d-%d of %d chunks", i, end, total)
	}
	return nil
}

// DenseSearch runs a nearVector query over the chunk class. The carried
// score is cosine similarity (1 - distance).
func (s *WeaviateStore) DenseSearch(ctx context.Context, vector []float32, limit int) ([]types.RetrievalMatch, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(chunkFields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("dense search failed: %w", err)
	}
	return parseMatches(result, true)
}

// SparseSearch runs a BM25 query over the chunk class. The carried score is
// the ranker-native BM25 score.
func (s *WeaviateStore) SparseSearch(ctx context.Context, query string, limit int) ([]types.RetrievalMatch, error) {
	bm25 := s.client.GraphQL().Bm25ArgBuilder().
		WithQuery(query).
		WithProperties("text", "sectionPath", "docTitle")
	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(chunkFields...).
		WithBM25(bm25).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("sparse search failed: %w", err)
	}
	return parseMatches(result, false)
}

// GetChunk looks a chunk up by its chunk id.
func (s *WeaviateStore) GetChunk(ctx context.Context, chunkID string) (*types.Chunk, error) {
	where := filters.Where().
		WithPath([]string{"chunkId"}).
		WithOperator(filters.Equal).
		WithValueString(chunkID)
	result, err := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(chunkFields...).
		WithWhere(where).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("chunk lookup failed: %w", err)
	}
	matches, err := parseMatches(result, false)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("chunk %s not found", chunkID)
	}
	chunk := matchToChunk(matches[0])
	return &chunk, nil
}

func parseMatches(result *models.GraphQLResponse, dense bool) ([]types.RetrievalMatch, error) {
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}
	var matches []types.RetrievalMatch
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return matches, nil
	}
	data, ok := get[CHUNK_CLASS].([]interface{})
	if !ok {
		return matches, nil
	}
	for _, item := range data {
		props, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		match := types.RetrievalMatch{
			Metadata: map[string]interface{}{
				"doc_id":       props["docId"],
				"doc_title":    props["docTitle"],
				"chunk_index":  props["chunkIndex"],
				"page_start":   props["pageStart"],
				"page_end":     props["pageEnd"],
				"para_start":   props["paraStart"],
				"para_end":     props["paraEnd"],
				"section_path": props["sectionPath"],
				"content_type": props["contentType"],
				"text":         props["text"],
				"source_url":   props["sourceUrl"],
			},
		}
		if id, ok := props["chunkId"].(string); ok {
			match.ID = id
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if dense {
				if distance, ok := additional["distance"].(float64); ok {
					match.Score = 1 - distance
				}
			} else {
				match.Score = parseScore(additional["score"])
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// parseScore tolerates the BM25 score arriving as either a string or a
// number depending on server version.
func parseScore(v interface{}) float64 {
	switch s := v.(type) {
	case float64:
		return s
	case string:
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}

func matchToChunk(m types.RetrievalMatch) types.Chunk {
	return types.Chunk{
		ChunkID:     m.ID,
		DocID:       m.MetaString("doc_id"),
		DocTitle:    m.MetaString("doc_title"),
		ChunkIndex:  m.MetaInt("chunk_index"),
		PageStart:   m.MetaInt("page_start"),
		PageEnd:     m.MetaInt("page_end"),
		ParaStart:   m.MetaInt("para_start"),
		ParaEnd:     m.MetaInt("para_end"),
		SectionPath: m.MetaString("section_path"),
		ContentType: m.MetaString("content_type"),
		Text:        m.MetaString("text"),
		SourceURL:   m.MetaString("source_url"),
	}
}
