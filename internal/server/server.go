// Package server provides the HTTP server and routing for Quirk.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/config"
	"github.com/aristath/quirk/internal/events"
	evolutionhandlers "github.com/aristath/quirk/internal/modules/evolution/handlers"
	personalityhandlers "github.com/aristath/quirk/internal/modules/personality/handlers"
	riskhandlers "github.com/aristath/quirk/internal/modules/risk/handlers"
	"github.com/aristath/quirk/internal/modules/variance"
	variancehandlers "github.com/aristath/quirk/internal/modules/variance/handlers"
	"github.com/aristath/quirk/internal/sysload"
)

// Config holds server configuration
type Config struct {
	Log                 zerolog.Logger
	Config              *config.Config
	EventBus            *events.Bus
	VarianceEngine      *variance.ExecutionVarianceEngine
	SysLoad             *sysload.CPUProvider
	PersonalityHandlers *personalityhandlers.Handler
	VarianceHandlers    *variancehandlers.Handler
	EvolutionHandlers   *evolutionhandlers.Handler
	RiskHandlers        *riskhandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	eventBus       *events.Bus
	varianceEngine *variance.ExecutionVarianceEngine
	sysLoad        *sysload.CPUProvider
	sweep          *validationSweep
	startedAt      time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		eventBus:       cfg.EventBus,
		varianceEngine: cfg.VarianceEngine,
		sysLoad:        cfg.SysLoad,
		startedAt:      time.Now(),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Config.Port),
		Handler: s.router,
	}

	if cfg.Config.ValidationSweepMinutes > 0 {
		s.sweep = newValidationSweep(
			cfg.VarianceEngine,
			time.Duration(cfg.Config.ValidationSweepMinutes)*time.Minute,
			cfg.Log,
		)
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes mounts the module route trees under /api
func (s *Server) setupRoutes(cfg Config) {
	eventsStream := NewEventsStreamHandler(s.eventBus, s.log)
	eventsWS := NewEventsWSHandler(s.eventBus, s.log)
	system := NewSystemHandlers(s.varianceEngine, s.sysLoad, s.startedAt, s.log)

	s.router.Route("/api", func(r chi.Router) {
		cfg.PersonalityHandlers.RegisterRoutes(r)
		cfg.VarianceHandlers.RegisterRoutes(r)
		cfg.EvolutionHandlers.RegisterRoutes(r)
		cfg.RiskHandlers.RegisterRoutes(r)

		r.Get("/events/stream", eventsStream.ServeHTTP)
		r.Get("/events/ws", eventsWS.ServeHTTP)
		r.Get("/system/health", system.HandleHealth)
	})
}

// Start begins serving HTTP requests and starts the background
// validation sweep if one is configured.
func (s *Server) Start() error {
	if s.sweep != nil {
		s.sweep.Start()
		s.log.Info().Msg("Validation sweep started")
	}

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sweep != nil {
		s.sweep.Stop()
	}
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests with structured logging
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
