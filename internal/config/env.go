package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string

	// Embedding provider selection: "dashscope", "openai" or "gemini".
	EmbedProvider    string
	DashScopeAPIKey  string
	DashScopeBaseURL string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	EmbedModel       string
	EmbedDim         int
	EmbedBatchSize   int

	ChunkSize    int
	ChunkOverlap int

	// RetentionDays keeps soft-deleted collections recoverable for this long.
	RetentionDays int

	// APIAuthSecret enables JWT auth on the REST API when non-empty.
	APIAuthSecret string
	Port          string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
}

// LoadConfig loads the environment variables and returns config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		EmbedProvider:    getEnv("EMBED_PROVIDER", "dashscope"),
		DashScopeAPIKey:  getEnv("DASHSCOPE_API_KEY", ""),
		DashScopeBaseURL: getEnv("DASHSCOPE_BASE_URL", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:       getEnv("EMBED_MODEL", ""),
		EmbedDim:         getEnvInt("EMBED_DIM", 1024),
		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 10),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 100),
		RetentionDays:    getEnvInt("RETENTION_DAYS", 30),
		APIAuthSecret:    getEnv("API_AUTH_SECRET", ""),
		Port:             getEnv("PORT", "8080"),
		AwsAccessKey:     getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:     getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:        getEnv("AWS_REGION", "us-east-2"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
