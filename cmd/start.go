/*
Copyright © 2025 DelanoMarcell
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/DelanoMarcell/litigation-chatbot/config"
	"github.com/DelanoMarcell/litigation-chatbot/database"
	"github.com/DelanoMarcell/litigation-chatbot/handler"
	"github.com/DelanoMarcell/litigation-chatbot/service"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the chat server",
	Long:  `Starts the HTTP and WebSocket server that answers questions over the indexed documents`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := weaviateDb.InitSchema(context.Background()); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		localIndex := database.NewLocalChunkIndex(cfg.ChunkIndexPath)

		// Initialize services
		embedder := service.NewEmbeddingService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		chatService, err := newChatService(cfg)
		if err != nil {
			log.Fatalf("Failed to create chat service: %v", err)
		}
		ragService := service.NewRAGService(
			weaviateDb,
			embedder,
			chatService,
			cfg.SystemPromptPath,
			cfg.TopK,
			time.Duration(cfg.RequestTimeout)*time.Second,
		)
		wsService := service.NewWebSocketService(ragService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		chatHandler := handler.NewChatHandler(ragService)
		searchHandler := handler.NewSearchHandler(ragService)
		chunkHandler := handler.NewChunkHandler(weaviateDb, localIndex)
		pdfHandler := handler.NewDocumentHandler(cfg.DocsDir)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/chat", chatHandler.HandleChat)
			apiV1.POST("/search", searchHandler.HandleSearch)
			apiV1.GET("/chunks/:id", chunkHandler.HandleGetChunk)
			apiV1.GET("/pdf", pdfHandler.HandleServePDF)
		}
		router.GET("/ws", func(c *gin.Context) {
			wsService.HandleChat(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

// newChatService selects the completion provider from config.
func newChatService(cfg *config.Config) (service.ChatService, error) {
	switch cfg.AIProvider {
	case "", "openai":
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model), nil
	case "gemini":
		return service.NewGeminiService(context.Background(), cfg.GeminiAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown ai_provider %q", cfg.AIProvider)
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
