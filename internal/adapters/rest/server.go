package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jian131/agent-bds/internal/core/port"
)

// Server wraps the HTTP server and its router.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewServer wires the route table. Middleware order matters: the trace
// logger must run first so the Recoverer logs panics with a trace id.
func NewServer(
	httpPort string,
	searchHandler *SearchHandler,
	listingHandler *ListingHandler,
	analyticsHandler *AnalyticsHandler,
	healthHandler *HealthHandler,
	baseLogger port.LoggerPort,
) *Server {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", searchHandler.Search)
		r.Post("/search/stream", searchHandler.SearchStream)
		r.Get("/search/similar", searchHandler.SearchSimilar)

		r.Get("/listings", listingHandler.List)
		r.Get("/listings/{listingID}", listingHandler.Get)
		r.Delete("/listings/{listingID}", listingHandler.Delete)
		r.Get("/listings/{listingID}/similar", listingHandler.Similar)

		r.Get("/analytics", analyticsHandler.Summary)
		r.Get("/analytics/market", analyticsHandler.Market)
		r.Get("/analytics/runs", analyticsHandler.Runs)
	})

	r.Get("/health", healthHandler.Health)

	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + httpPort,
			Handler: r,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server", nil)
	return s.httpServer.Shutdown(ctx)
}
