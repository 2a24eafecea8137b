package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lihongwen/pgvector-kit/internal/api/handlers"
	appMiddleware "github.com/lihongwen/pgvector-kit/internal/api/middlewares"
	"github.com/lihongwen/pgvector-kit/internal/config"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, a *App) *Server {
	statusHandler := handlers.NewStatusHandler(a.Status)
	colHandler := handlers.NewCollectionHandler(a.Collections, a.Cleanup)
	vecHandler := handlers.NewVectorHandler(a.Vectors, a.Ingest)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	// API routes
	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Get("/health", statusHandler.Health)
		api.Get("/status", statusHandler.Status)

		// protected endpoints (auth disabled when API_AUTH_SECRET is unset)
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware(cfg.APIAuthSecret))

			protected.Post("/collections", colHandler.Create)
			protected.Get("/collections", colHandler.List)
			protected.Get("/collections/{name}", colHandler.Show)
			protected.Put("/collections/{name}", colHandler.Rename)
			protected.Delete("/collections/{name}", colHandler.Delete)

			protected.Post("/collections/{name}/texts", vecHandler.AddText)
			protected.Post("/collections/{name}/documents", vecHandler.IngestDocument)
			protected.Post("/collections/{name}/search", vecHandler.Search)
			protected.Get("/collections/{name}/vectors", vecHandler.ListVectors)
			protected.Delete("/collections/{name}/vectors", vecHandler.DeleteVectors)

			protected.Post("/cleanup", colHandler.Cleanup)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
