package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string              `mapstructure:"port"`
	AIProvider       string              `mapstructure:"ai_provider"` // openai | gemini
	AIEndpoint       string              `mapstructure:"ai_endpoint"`
	Model            string              `mapstructure:"model"`
	EmbeddingModel   string              `mapstructure:"embedding_model"`
	OpenAIAPIKey     string              `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey     string              `mapstructure:"GEMINI_API_KEY"`
	DocsDir          string              `mapstructure:"docs_dir"`
	SystemPromptPath string              `mapstructure:"system_prompt_path"`
	ChunkIndexPath   string              `mapstructure:"chunk_index_path"`
	TopK             int                 `mapstructure:"top_k"`
	RequestTimeout   int                 `mapstructure:"request_timeout_seconds"`
	WeaviateConfig   WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
}

type WeaviateStoreConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("port", "8080")
	v.SetDefault("ai_provider", "openai")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("docs_dir", "docs")
	v.SetDefault("system_prompt_path", "prompts/system_prompt.txt")
	v.SetDefault("chunk_index_path", "data/chunks.ndjson")
	v.SetDefault("top_k", 6)
	v.SetDefault("request_timeout_seconds", 120)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("weaviate_store_config.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
