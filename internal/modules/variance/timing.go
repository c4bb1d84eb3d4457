package variance

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/store"
)

// TimingStats summarizes a personality's recorded entry delays.
type TimingStats struct {
	PersonalityID string        `json:"personality_id"`
	Count         int           `json:"count"`
	AvgDelay      time.Duration `json:"avg_delay"`
	StdDevDelay   time.Duration `json:"stddev_delay"`
	MinDelay      time.Duration `json:"min_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
}

type timingState struct {
	params  TimingParams
	history *store.Ring[time.Duration]
}

// TimingEngine computes human-like entry delays. Delays are bounded to
// [1s, 30s] regardless of inputs.
type TimingEngine struct {
	states *store.Keyed[*timingState]
	rand   rng.Rand
	log    zerolog.Logger
}

// NewTimingEngine creates a timing variance engine.
func NewTimingEngine(rand rng.Rand, log zerolog.Logger) *TimingEngine {
	return &TimingEngine{
		states: store.NewKeyed[*timingState](),
		rand:   rand,
		log:    log.With().Str("engine", "timing").Logger(),
	}
}

// Register creates or replaces the per-personality state.
func (e *TimingEngine) Register(personalityID string, params TimingParams) {
	e.states.Put(personalityID, &timingState{
		params:  params,
		history: store.NewRing[time.Duration](domain.DelayHistoryCap),
	})
}

// Reset removes all state for the personality.
func (e *TimingEngine) Reset(personalityID string) {
	e.states.Delete(personalityID)
}

// CalculateEntryDelay computes the delay between signal receipt and order
// placement for the personality under the given market conditions.
func (e *TimingEngine) CalculateEntryDelay(personalityID string, signal domain.Signal, market domain.MarketConditions) (domain.TimingResult, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return domain.TimingResult{}, fmt.Errorf("timing engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	p := st.params

	// Base delay drawn uniformly from the personalized range.
	span := p.BaseDelayMax - p.BaseDelayMin
	base := p.BaseDelayMin + time.Duration(e.rand.Float64()*float64(span))

	// Volatility beyond the personal threshold stretches hesitation, up to 3x.
	volMult := 1.0
	if market.Volatility > p.VolatilityThreshold {
		volMult = 1 + (market.Volatility-p.VolatilityThreshold)*1.5
		if volMult > 3 {
			volMult = 3
		}
	}

	sessionMult := sessionDelayMultiplier(market.Session)

	newsMult := 1.0
	if market.IsNewsTime {
		newsMult = 1.4
	}

	// Disciplined traders keep their reaction time steady; low consistency
	// lets the shape wander.
	consistencyMult := 1 + (1-p.Consistency)*e.rand.Norm(0, 0.2)
	if consistencyMult < 0.5 {
		consistencyMult = 0.5
	}

	delay := time.Duration(float64(base) * volMult * sessionMult * newsMult * consistencyMult)

	// Zero-mean jitter so even identical conditions never produce the same
	// delay twice.
	jitter := e.rand.Norm(0, (1-p.Consistency)*1.5+0.3) // seconds
	delay += time.Duration(jitter * float64(time.Second))

	delay = clampDuration(delay, domain.MinEntryDelay, domain.MaxEntryDelay)

	result := domain.TimingResult{
		Delay: delay,
		Reason: fmt.Sprintf("base %.1fs x vol %.2f x session %.2f x news %.2f",
			base.Seconds(), volMult, sessionMult, newsMult),
	}

	e.states.Update(personalityID, func(s *timingState) *timingState {
		s.history.Append(delay)
		return s
	})

	return result, nil
}

// Stats returns aggregate delay statistics for the personality.
func (e *TimingEngine) Stats(personalityID string) (TimingStats, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return TimingStats{}, fmt.Errorf("timing engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}

	delays := st.history.Items()
	stats := TimingStats{PersonalityID: personalityID, Count: len(delays)}
	if len(delays) == 0 {
		return stats, nil
	}

	secs := make([]float64, len(delays))
	stats.MinDelay = delays[0]
	stats.MaxDelay = delays[0]
	for i, d := range delays {
		secs[i] = d.Seconds()
		if d < stats.MinDelay {
			stats.MinDelay = d
		}
		if d > stats.MaxDelay {
			stats.MaxDelay = d
		}
	}

	mean := stat.Mean(secs, nil)
	stats.AvgDelay = time.Duration(mean * float64(time.Second))
	if len(secs) > 1 {
		stats.StdDevDelay = time.Duration(stat.StdDev(secs, nil) * float64(time.Second))
	}
	return stats, nil
}

// Params returns the registered timing parameters.
func (e *TimingEngine) Params(personalityID string) (TimingParams, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return TimingParams{}, fmt.Errorf("timing engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.params, nil
}

// sessionDelayMultiplier reflects how quickly traders act in each session.
// The overlap is fast and decisive, the Asian session sluggish.
func sessionDelayMultiplier(session domain.TradingSession) float64 {
	switch session {
	case domain.SessionOverlap:
		return 0.8
	case domain.SessionLondon:
		return 0.9
	case domain.SessionNewYork:
		return 1.0
	case domain.SessionAsian:
		return 1.25
	default:
		return 1.0
	}
}

func clampDuration(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}
