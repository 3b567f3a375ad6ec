package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment       string
	HTTPPort          string
	HTTPSPort         string
	Domains           []string
	CertCacheDir      string
	DatabaseURL       string
	LLMProvider       string
	EmbeddingProvider string
	OpenAIAPIKey      string
	OpenAIChatModel   string
	OpenAIEmbedModel  string
	GeminiAPIKey      string
	GeminiChatModel   string
	GeminiEmbedModel  string
	EmbeddingDim      int
	ChunkSize         int
	ChunkOverlap      int
	RetrievalTopK     int
	MaxUploadBytes    int64
	LLMTimeout        time.Duration
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		HTTPPort:          getEnv("HTTP_PORT", "8086"),
		HTTPSPort:         getEnv("HTTPS_PORT", "443"),
		Domains:           []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:      getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIChatModel:   getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		OpenAIEmbedModel:  getEnv("OPENAI_EMBED_MODEL", "text-embedding-ada-002"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiChatModel:   getEnv("GEMINI_CHAT_MODEL", "gemini-1.5-flash-latest"),
		GeminiEmbedModel:  getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		EmbeddingDim:      getEnvAsInt("EMBEDDING_DIM", 1536),
		ChunkSize:         getEnvAsInt("CHUNK_SIZE", 1000),
		ChunkOverlap:      getEnvAsInt("CHUNK_OVERLAP", 200),
		RetrievalTopK:     getEnvAsInt("RETRIEVAL_TOP_K", 5),
		MaxUploadBytes:    int64(getEnvAsInt("MAX_UPLOAD_MB", 10)) << 20,
		LLMTimeout:        time.Duration(getEnvAsInt("LLM_TIMEOUT", 120)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
