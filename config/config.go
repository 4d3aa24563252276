package config

import (
	"os"
	"strconv"
)

// Config holds everything the server needs from the environment.
// main loads .env via godotenv before calling Load, so plain env vars
// and a local .env file behave the same.
type Config struct {
	Port        string
	DatabaseDSN string

	ChromaURL  string
	Collection string

	OllamaURL       string
	EmbedModel      string
	OllamaChatModel string

	GeminiAPIKey string
	GeminiModel  string

	OpenAIAPIKey string
	OpenAIModel  string

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	// NotesDir, when set, enables the directory watcher that ingests
	// files dropped into it.
	NotesDir string
}

// Load reads the configuration from environment variables, applying
// defaults for everything that is not security sensitive.
func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=ragnotes port=5432 sslmode=disable"),
		ChromaURL:       getEnv("CHROMA_URL", "http://localhost:8000"),
		Collection:      getEnv("CHROMA_COLLECTION", "notes"),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		EmbedModel:      getEnv("EMBED_MODEL", "nomic-embed-text:v1.5"),
		OllamaChatModel: getEnv("OLLAMA_CHAT_MODEL", "llama3:8b"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ChunkSize:       getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 100),
		TopK:            getEnvInt("TOP_K", 1),
		NotesDir:        os.Getenv("NOTES_DIR"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
