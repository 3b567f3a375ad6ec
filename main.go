package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/paperinsight/config"
	"github.com/serisow/paperinsight/db"
	"github.com/serisow/paperinsight/logging"
	"github.com/serisow/paperinsight/server"
	"github.com/serisow/paperinsight/services/feature_service"
	"github.com/serisow/paperinsight/services/llm_service"
	"github.com/serisow/paperinsight/services/rag_service"
	"github.com/serisow/paperinsight/store"
	"github.com/urfave/negroni"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, pool, cfg.EmbeddingDim); err != nil {
		log.Fatalf("Failed to run database migration: %v", err)
	}

	embedder, err := buildEmbedder(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}

	llm, err := buildLLMService(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	paperStore := store.NewPaperStore(pool, logger)
	passageIndex := rag_service.NewPassageIndex(pool, logger)
	extractor := rag_service.NewDocumentExtractor(logger)
	chunker := rag_service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	ingestor := rag_service.NewIngestor(paperStore, passageIndex, embedder, extractor, chunker, logger)
	features := feature_service.NewFeatureService(paperStore, passageIndex, embedder, llm, cfg.RetrievalTopK, logger)

	indexManager := rag_service.NewIndexManager(pool, logger)
	go func() {
		if err := indexManager.ReindexIfNeeded(ctx); err != nil {
			logger.Error("Vector index maintenance failed",
				slog.String("error", err.Error()))
		}
	}()

	r := server.SetupRoutes(server.Deps{
		UploadStore:    paperStore,
		PaperReader:    paperStore,
		Ingestor:       ingestor,
		Features:       features,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		}
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(r)
	return n
}

func buildEmbedder(ctx context.Context, cfg config.Config, logger *slog.Logger) (rag_service.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "gemini":
		return rag_service.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbedModel, logger)
	default:
		return rag_service.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel, cfg.LLMTimeout, logger), nil
	}
}

func buildLLMService(ctx context.Context, cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return llm_service.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiChatModel, logger)
	default:
		return llm_service.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.LLMTimeout, logger), nil
	}
}

func initLogger() (*slog.Logger, error) {
	logDir := filepath.Join("logs", "paperinsight")

	fileHandler, err := logging.NewDailyFileHandler(logDir, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}

	return slog.New(fileHandler), nil
}
