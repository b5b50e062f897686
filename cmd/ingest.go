/*
Copyright © 2025 DelanoMarcell
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/DelanoMarcell/litigation-chatbot/config"
	"github.com/DelanoMarcell/litigation-chatbot/database"
	"github.com/DelanoMarcell/litigation-chatbot/ingest"
	"github.com/DelanoMarcell/litigation-chatbot/service"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index one parsed document into the vector store",
	Long: `Reads a parsed-element JSON file, builds citation-sized chunks,
embeds them and upserts them into Weaviate. The chunks are also appended
to the local chunk index so citations resolve without a store round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if filePath == "" {
			log.Fatal("--file is required")
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		ctx := context.Background()
		if reinit {
			if err := weaviateDb.ReInit(ctx); err != nil {
				log.Fatalf("Failed to reinitialize Weaviate database: %v", err)
			}
		} else if err := weaviateDb.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}

		embedder := service.NewEmbeddingService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		localIndex := database.NewLocalChunkIndex(cfg.ChunkIndexPath)

		n, err := ingestDocument(ctx, filePath, weaviateDb, embedder, localIndex)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", filePath, err)
		}
		fmt.Printf("Ingested %d chunks from %s\n", n, filePath)
	},
}

// ingestDocument runs the full pipeline for one parsed document.
func ingestDocument(ctx context.Context, filePath string, store database.VectorStore, embedder *service.EmbeddingService, localIndex *database.LocalChunkIndex) (int, error) {
	chunks, err := ingest.ProcessDocument(filePath)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}

	if err := store.BatchUpsertChunks(ctx, chunks, embeddings); err != nil {
		return 0, fmt.Errorf("upsert failed: %w", err)
	}
	if err := localIndex.Append(chunks); err != nil {
		return 0, fmt.Errorf("local index append failed: %w", err)
	}
	return len(chunks), nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("file", "f", "", "Path to the parsed-element JSON file")
	ingestCmd.Flags().BoolP("reinit", "r", false, "Drop and recreate the schema first")
}
