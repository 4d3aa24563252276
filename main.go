package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/genai"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ragnotes/config"
	"ragnotes/controller"
	"ragnotes/models"
	"ragnotes/services"
)

func main() {
	// No .env file is fine, plain environment variables still apply.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := services.InitPDFLicense(os.Getenv("UNIDOC_LICENSE_KEY")); err != nil {
		logger.Warn("failed to set UniDoc license key, PDF ingestion will fail", zap.Error(err))
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.Note{}); err != nil {
		logger.Fatal("failed to migrate notes table", zap.Error(err))
	}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		logger.Fatal("failed to create chroma client", zap.Error(err))
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			logger.Warn("failed to close chroma client", zap.Error(err))
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.Collection)
	if err != nil {
		logger.Fatal("failed to get or create collection", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Generation providers in priority order: premium tiers when their
	// credential is configured, the local default last.
	var providers []services.Generator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			logger.Fatal("failed to create gemini client", zap.Error(err))
		}
		providers = append(providers, services.NewGeminiGenerator(geminiClient, cfg.GeminiModel))
		logger.Info("gemini generation tier enabled", zap.String("model", cfg.GeminiModel))
	}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel))
		logger.Info("openai generation tier enabled", zap.String("model", cfg.OpenAIModel))
	}
	providers = append(providers, services.NewOllamaGenerator(httpClient, cfg.OllamaURL, cfg.OllamaChatModel))

	chunker := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.EmbedModel, logger)
	index := services.NewChromaIndex(collection, logger)
	notes := services.NewNoteRepository(db)

	ingestService := services.NewIngestService(chunker, notes, embedder, index, logger)
	retrievalService := services.NewRetrievalService(embedder, index, notes, logger)
	answerService := services.NewAnswerService(providers, logger)
	ragController := controller.NewRAGController(ingestService, retrievalService, answerService, notes, cfg.TopK, logger)

	if cfg.NotesDir != "" {
		watcher := services.NewWatchService(ingestService, logger)
		go func() {
			watcher.ScanDirectory(ctx, cfg.NotesDir)
			watcher.WatchDirectory(ctx, cfg.NotesDir)
		}()
	}

	router := gin.Default()
	router.Use(corsMiddleware(), requestIDMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "ragnotes",
		})
	})

	router.GET("/", ragController.AskQuestion)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/notes", ragController.CreateNote)
		apiV1.GET("/notes", ragController.ListNotes)
		apiV1.DELETE("/notes/:id", ragController.DeleteNote)
		apiV1.POST("/query", ragController.Query)
	}

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// getOrCreateCollection returns the named Chroma collection, creating
// it on first run.
func getOrCreateCollection(client chromago.Client, name string) (chromago.Collection, error) {
	return client.GetOrCreateCollection(
		context.Background(),
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "note embeddings"),
			),
		),
	)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestIDMiddleware tags every request with an id so log lines and
// client reports can be correlated.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}
