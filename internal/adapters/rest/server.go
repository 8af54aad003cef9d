package rest

import (
	"context"
	"listings-service/internal/core/port"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewServer(portNum string,
	allowedOrigins []string,
	listingsHandlers *ListingsHandler,
	filtersHandlers *FilterHandler,
	catalogHandlers *CatalogHandler,
	baseLogger port.LoggerPort) *Server {

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + portNum,
			Handler:           NewRouter(allowedOrigins, listingsHandlers, filtersHandlers, catalogHandlers, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// NewRouter собирает chi-роутер; вынесен отдельно для тестов через httptest
func NewRouter(allowedOrigins []string,
	listingsHandlers *ListingsHandler,
	filtersHandlers *FilterHandler,
	catalogHandlers *CatalogHandler,
	baseLogger port.LoggerPort) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
			// фронтенду нужен Retry-After, пока каталог загружается
			ExposedHeaders: []string{"Retry-After", "X-Trace-ID"},
			MaxAge:         300,
		}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/listings", listingsHandlers.FindListings)
		r.Post("/listings/query", listingsHandlers.PatchQuery)
		r.Post("/listings/refresh", catalogHandlers.Refresh)
		r.Get("/listings/{listingID}", listingsHandlers.GetListingDetails)

		r.Get("/filters/options", filtersHandlers.GetFilterOptions)
		r.Get("/catalog/status", catalogHandlers.GetStatus)
	})

	return r
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
