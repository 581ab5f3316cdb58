// Package rest exposes users, positions, valuation and risk analysis over a chi JSON API.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/simaogato/etfguard-backend/internal/usecase/portfolio"
	"github.com/simaogato/etfguard-backend/internal/usecase/risk"
	"github.com/simaogato/etfguard-backend/internal/usecase/user"
)

// Config holds server configuration
type Config struct {
	Port             int
	Log              zerolog.Logger
	UserService      *user.UserService
	PortfolioService *portfolio.PortfolioService
	RiskService      *risk.RiskService
	AllowedOrigins   []string
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	port   int

	users     *UserHandlers
	positions *PortfolioHandlers
	risk      *RiskHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "http").Logger(),
		port:      cfg.Port,
		users:     NewUserHandlers(cfg.UserService, cfg.Log),
		positions: NewPortfolioHandlers(cfg.PortfolioService, cfg.Log),
		risk:      NewRiskHandlers(cfg.RiskService, cfg.Log),
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.setupMiddleware(origins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", s.users.HandleRegister)
			r.Get("/chat/{chatId}", s.users.HandleGetByChatID)
			r.Get("/chat/{chatId}/exists", s.users.HandleIsRegistered)
		})

		r.Route("/portfolios", func(r chi.Router) {
			r.Post("/positions", s.positions.HandleAddPosition)
			r.Route("/users/{userId}", func(r chi.Router) {
				r.Get("/positions", s.positions.HandleListPositions)
				r.Get("/positions/{symbol}", s.positions.HandleGetPosition)
				r.Put("/positions/{symbol}/add", s.positions.HandleAddToPosition)
				r.Put("/positions/{symbol}/reduce", s.positions.HandleReducePosition)
				r.Delete("/positions/{symbol}", s.positions.HandleRemovePosition)
				r.Get("/valuation", s.positions.HandleValuation)
			})
		})

		r.Route("/risk", func(r chi.Router) {
			r.Get("/etf", s.risk.HandleAnalyzeAll)
			r.Get("/etf/{symbol}", s.risk.HandleAnalyzeInstrument)
			r.Get("/portfolio/{userId}", s.risk.HandleAnalyzePortfolio)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
