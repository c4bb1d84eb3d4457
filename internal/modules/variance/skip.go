package variance

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/store"
)

// SkipStats summarizes a personality's skip behavior.
type SkipStats struct {
	PersonalityID    string  `json:"personality_id"`
	TotalSignals     int     `json:"total_signals"`
	TotalSkips       int     `json:"total_skips"`
	ConsecutiveSkips int     `json:"consecutive_skips"`
	TargetSkipRate   float64 `json:"target_skip_rate"`
	ActualSkipRate   float64 `json:"actual_skip_rate"`
}

type skipRecord struct {
	Skipped     bool
	Probability float64
	At          time.Time
}

type skipState struct {
	params           SkipParams
	consecutiveSkips int
	totalSignals     int
	totalSkips       int
	history          *store.Ring[skipRecord]
}

// SkipEngine decides whether an otherwise-valid signal is deliberately not
// executed. A real trader misses or passes on some fraction of signals; an
// account that takes every single one is trivially detectable.
type SkipEngine struct {
	states *store.Keyed[*skipState]
	rand   rng.Rand
	log    zerolog.Logger
	now    func() time.Time
}

// NewSkipEngine creates a signal-skip engine.
func NewSkipEngine(rand rng.Rand, log zerolog.Logger) *SkipEngine {
	return &SkipEngine{
		states: store.NewKeyed[*skipState](),
		rand:   rand,
		log:    log.With().Str("engine", "skip").Logger(),
		now:    time.Now,
	}
}

// Register creates or replaces the per-personality state.
func (e *SkipEngine) Register(personalityID string, params SkipParams) {
	e.states.Put(personalityID, &skipState{
		params:  params,
		history: store.NewRing[skipRecord](domain.SkipHistoryCap),
	})
}

// Reset removes all state for the personality.
func (e *SkipEngine) Reset(personalityID string) {
	e.states.Delete(personalityID)
}

// ShouldSkipSignal rolls the skip decision for a signal. The probability is
// the personality's base rate adjusted for market conditions and damped by
// the current skip streak, clamped to [1%, 25%]. The consecutive-skip cap
// is hard: once reached, the signal always executes. The result always
// carries an independent 100-500ms micro-delay.
func (e *SkipEngine) ShouldSkipSignal(personalityID string, signal domain.Signal, market domain.MarketConditions) (domain.SkipResult, error) {
	var result domain.SkipResult

	// The whole decision runs under the store's write lock: the skip streak
	// both feeds the probability and is updated by the outcome, so reading
	// and writing it must be one atomic step per signal.
	ok := e.states.Update(personalityID, func(s *skipState) *skipState {
		p := s.params

		prob := p.BaseRate
		reason := "baseline hesitation"

		if market.Volatility > 1.5 {
			prob += 0.05
			reason = "elevated volatility"
		}

		// Confident signals are harder to pass on; doubtful ones easier.
		prob -= (signal.Confidence - 0.5) * 0.1

		if market.IsNewsTime {
			prob += 0.04
			reason = "news window"
		}
		if market.Session == domain.SessionAsian {
			prob += 0.02
		}
		if market.Liquidity == domain.LiquidityLow {
			prob += 0.02
		}

		// Damping: each skip in the current streak makes another one less
		// likely, well before the hard cap bites.
		prob -= float64(s.consecutiveSkips) * 0.03

		prob = clampFloat64(prob, domain.MinSkipProbability, domain.MaxSkipProbability)

		skip := false
		if s.consecutiveSkips >= p.MaxConsecutive {
			reason = "consecutive skip cap reached"
		} else if e.rand.Float64() < prob {
			skip = true
		}

		// Independent micro-delay, emitted whether or not we skip.
		microDelay := domain.MinMicroDelay +
			time.Duration(e.rand.Float64()*float64(domain.MaxMicroDelay-domain.MinMicroDelay))

		result = domain.SkipResult{
			Skip:        skip,
			Probability: prob,
			Reason:      reason,
			MicroDelay:  microDelay,
		}

		s.totalSignals++
		if skip {
			s.totalSkips++
			s.consecutiveSkips++
		} else {
			s.consecutiveSkips = 0
		}
		s.history.Append(skipRecord{Skipped: skip, Probability: prob, At: e.now()})
		return s
	})
	if !ok {
		return domain.SkipResult{}, fmt.Errorf("skip engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}

	return result, nil
}

// Stats returns the personality's skip statistics.
func (e *SkipEngine) Stats(personalityID string) (SkipStats, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return SkipStats{}, fmt.Errorf("skip engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}

	stats := SkipStats{
		PersonalityID:    personalityID,
		TotalSignals:     st.totalSignals,
		TotalSkips:       st.totalSkips,
		ConsecutiveSkips: st.consecutiveSkips,
		TargetSkipRate:   st.params.BaseRate,
	}
	if st.totalSignals > 0 {
		stats.ActualSkipRate = float64(st.totalSkips) / float64(st.totalSignals)
	}
	return stats, nil
}

// Params returns the registered skip parameters.
func (e *SkipEngine) Params(personalityID string) (SkipParams, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return SkipParams{}, fmt.Errorf("skip engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.params, nil
}
