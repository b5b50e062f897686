/*
Copyright © 2025 DelanoMarcell
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DelanoMarcell/litigation-chatbot/config"
	"github.com/DelanoMarcell/litigation-chatbot/database"
	"github.com/DelanoMarcell/litigation-chatbot/service"
)

// batchIngestCmd represents the batch-ingest command
var batchIngestCmd = &cobra.Command{
	Use:   "batch-ingest",
	Short: "Index every parsed document in a directory",
	Long: `Runs the ingestion pipeline over every parsed-element JSON file in a
directory. A document that fails to parse or upload is logged and skipped;
the rest of the directory still gets indexed.`,
	Run: func(cmd *cobra.Command, args []string) {
		directory, _ := cmd.Flags().GetString("directory")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if directory == "" {
			log.Fatal("--directory is required")
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

		files, err := os.ReadDir(directory)
		if err != nil {
			log.Fatalf("Failed to read directory: %v", err)
		}
		var total int
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			filePath := filepath.Join(directory, file.Name())
			n, err := ingestDocument(ctx, filePath, weaviateDb, embedder, localIndex)
			if err != nil {
				log.Printf("Failed to ingest %s: %v", filePath, err)
				continue
			}
			fmt.Printf("Ingested %d chunks from %s\n", n, filePath)
			total += n
		}
		fmt.Printf("Done: %d chunks total\n", total)
	},
}

func init() {
	rootCmd.AddCommand(batchIngestCmd)

	batchIngestCmd.Flags().String("directory", "", "Path to the directory of parsed-element JSON files")
	batchIngestCmd.Flags().BoolP("reinit", "r", false, "Drop and recreate the schema first")
}
