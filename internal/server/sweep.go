package server

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/modules/variance"
)

// validationSweep periodically runs the behavioral self-check over every
// registered personality. Findings are logged and emitted as events by the
// engine; the sweep itself never mutates state.
type validationSweep struct {
	engine *variance.ExecutionVarianceEngine
	cron   *cron.Cron
	log    zerolog.Logger
}

func newValidationSweep(engine *variance.ExecutionVarianceEngine, interval time.Duration, log zerolog.Logger) *validationSweep {
	s := &validationSweep{
		engine: engine,
		cron:   cron.New(),
		log:    log.With().Str("component", "validation_sweep").Logger(),
	}

	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		// "@every <duration>" with a positive duration always parses
		s.log.Error().Err(err).Str("schedule", schedule).Msg("Failed to register sweep job")
	}
	return s
}

func (s *validationSweep) Start() {
	s.cron.Start()
}

func (s *validationSweep) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Validation sweep stopped")
}

func (s *validationSweep) run() {
	ids := s.engine.Personalities()
	s.log.Debug().Int("personalities", len(ids)).Msg("Running validation sweep")

	for _, id := range ids {
		report, err := s.engine.ValidateVarianceEngine(id)
		if err != nil {
			s.log.Error().Err(err).Str("personality_id", id).Msg("Validation failed")
			continue
		}
		if len(report.Issues) > 0 {
			s.log.Warn().
				Str("personality_id", id).
				Strs("issues", report.Issues).
				Msg("Validation found behavioral issues")
		}
	}
}
