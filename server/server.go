// Package server provides the HTTP API for recipe search.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/siherrmann/recipegraph/config"
	"github.com/siherrmann/recipegraph/model"
)

// Searcher is the search handle the server serves. recipegraph.RecipeGraph implements it.
type Searcher interface {
	ExtractIntent(ctx context.Context, query string) (*model.Intent, error)
	SearchWithIntent(ctx context.Context, query string, intent *model.Intent, limit int) (*model.SearchOutcome, error)
	GetRecipe(ctx context.Context, id int64) (*model.Recipe, error)
	SimilarRecipes(ctx context.Context, id int64, limit int) ([]*model.FusedResult, error)
	PreviewImage(ctx context.Context, id int64) (string, error)
}

var allowedOrigins = map[string]bool{
	"http://localhost:3000": true,
	"http://localhost:5173": true,
}

// Server is the HTTP server for the recipe search API.
type Server struct {
	searcher Searcher
	config   config.ServerConfig
	logger   *slog.Logger
	server   *http.Server
}

// NewServer creates a server for the given search handle.
func NewServer(searcher Searcher, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	return &Server{
		searcher: searcher,
		config:   cfg,
		logger:   logger,
	}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/search/stream", s.handleSearchStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Post("/search", s.handleSearch)
			r.Get("/recipes/{id}", s.handleGetRecipe)
			r.Get("/recipes/{id}/similar", s.handleSimilar)
			r.Get("/recipes/{id}/preview", s.handlePreview)
		})
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", slog.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
