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
)

// initSchemaCmd represents the init-schema command
var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Drop and recreate the Weaviate chunk class",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := weaviateDb.ReInit(context.Background()); err != nil {
			log.Fatalf("Failed to reinitialize Weaviate database: %v", err)
		}
		fmt.Println("Schema recreated")
	},
}

func init() {
	rootCmd.AddCommand(initSchemaCmd)
}
