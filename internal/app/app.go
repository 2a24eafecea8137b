package app

import (
	"context"
	"log"
	"time"

	"github.com/lihongwen/pgvector-kit/internal/config"
	"github.com/lihongwen/pgvector-kit/internal/core"
	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
	"github.com/lihongwen/pgvector-kit/internal/core/chunking"
	db "github.com/lihongwen/pgvector-kit/internal/core/database"
	"github.com/lihongwen/pgvector-kit/internal/core/embedding"
	"github.com/lihongwen/pgvector-kit/internal/core/objectstore"
	"github.com/lihongwen/pgvector-kit/internal/core/parsers"
	"github.com/lihongwen/pgvector-kit/internal/services"
)

// App wires the shared service graph used by every front-end (API, CLI, MCP).
type App struct {
	DBClient *db.DatabaseClient
	Embedder *embedding.Service

	Collections *services.CollectionService
	Vectors     *services.VectorService
	Ingest      *services.IngestService
	Cleanup     *services.CleanupService
	Status      *services.StatusService

	Config *config.Config
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	backend, err := newBackend(appCtx, cfg)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	embedder := embedding.NewService(backend, cfg.EmbedBatchSize)
	chunker := chunking.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	parser := parsers.NewRegistry()

	// S3 ingestion is optional; without credentials local files still work.
	var fetcher core.ObjectFetcher
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		fetcher, err = objectstore.NewS3Fetcher(appCtx, cfg)
		if err != nil {
			log.Printf("WARN: S3 fetcher disabled: %v", err)
			fetcher = nil
		}
	}

	app := &App{
		DBClient:    dbClient,
		Embedder:    embedder,
		Collections: services.NewCollectionService(dbClient),
		Vectors:     services.NewVectorService(dbClient, dbClient, embedder, chunker),
		Ingest:      services.NewIngestService(dbClient, dbClient, parser, chunker, embedder, fetcher),
		Cleanup:     services.NewCleanupService(dbClient, cfg.RetentionDays),
		Config:      cfg,
	}
	app.Status = services.NewStatusService(dbClient, embedder, cfg.RetentionDays)
	return app, nil
}

// newBackend picks the embedding provider from config.
func newBackend(ctx context.Context, cfg *config.Config) (core.EmbeddingBackend, error) {
	switch cfg.EmbedProvider {
	case "dashscope", "":
		return embedding.NewDashScopeBackend(cfg.DashScopeAPIKey, cfg.DashScopeBaseURL, cfg.EmbedModel)
	case "openai":
		return embedding.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.EmbedModel)
	case "gemini":
		return embedding.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
	default:
		return nil, apperr.Configuration("unknown EMBED_PROVIDER %q (want dashscope, openai or gemini)", cfg.EmbedProvider)
	}
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Backend().Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
