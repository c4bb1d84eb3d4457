// Package main is the entry point for the Quirk execution-variance service.
// It generates trading personalities, applies human-like variance to trade
// signals, and evolves personalities based on their trading activity.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/quirk/internal/config"
	"github.com/aristath/quirk/internal/events"
	"github.com/aristath/quirk/internal/modules/evolution"
	evolutionhandlers "github.com/aristath/quirk/internal/modules/evolution/handlers"
	"github.com/aristath/quirk/internal/modules/personality"
	personalityhandlers "github.com/aristath/quirk/internal/modules/personality/handlers"
	"github.com/aristath/quirk/internal/modules/risk"
	riskhandlers "github.com/aristath/quirk/internal/modules/risk/handlers"
	"github.com/aristath/quirk/internal/modules/variance"
	variancehandlers "github.com/aristath/quirk/internal/modules/variance/handlers"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/server"
	"github.com/aristath/quirk/internal/sysload"
	"github.com/aristath/quirk/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "quirk",
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Quirk")

	// Shared infrastructure
	random := rng.New()
	bus := events.NewBus(log)
	eventManager := events.NewManager(bus, log)
	loadProvider := sysload.NewCPUProvider(log)

	// Variance sub-engines
	timing := variance.NewTimingEngine(random, log)
	sizing := variance.NewSizingEngine(random, log)
	level := variance.NewLevelEngine(random, log)
	skip := variance.NewSkipEngine(random, log)
	microDelay := variance.NewMicroDelayEngine(random, loadProvider, log)
	weekend := variance.NewWeekendBehaviorEngine(random, log)

	varianceEngine := variance.NewExecutionVarianceEngine(
		timing, sizing, level, skip, microDelay, weekend,
		eventManager, cfg.DefaultAccountBalance, log,
	)

	// Personality generation and analysis
	generator := personality.NewGenerator(random, log)
	analyzer := personality.NewAnalyzer()
	registry := personality.NewRegistry()

	riskEngine := risk.NewEngine(analyzer, log)
	evolutionEngine := evolution.NewEngine(random, eventManager, log)

	srv := server.New(server.Config{
		Log:            log,
		Config:         cfg,
		EventBus:       bus,
		VarianceEngine: varianceEngine,
		SysLoad:        loadProvider,
		PersonalityHandlers: personalityhandlers.NewHandler(
			generator, analyzer, registry, varianceEngine, evolutionEngine, log,
		),
		VarianceHandlers:  variancehandlers.NewHandler(varianceEngine, log),
		EvolutionHandlers: evolutionhandlers.NewHandler(evolutionEngine, registry, log),
		RiskHandlers:      riskhandlers.NewHandler(riskEngine, registry, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
