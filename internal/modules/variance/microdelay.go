package variance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/store"
)

// ActionType is the order action a micro-delay applies to.
type ActionType string

const (
	ActionPlaceOrder  ActionType = "place_order"
	ActionModifyOrder ActionType = "modify_order"
	ActionCancelOrder ActionType = "cancel_order"
)

// LoadProvider reports current system load as a fraction in [0, 1].
// A nil provider is treated as zero load.
type LoadProvider interface {
	Load() float64
}

// MicroDelayStats summarizes a personality's recorded micro-delays.
type MicroDelayStats struct {
	PersonalityID string        `json:"personality_id"`
	Count         int           `json:"count"`
	AvgDelay      time.Duration `json:"avg_delay"`
	StdDevDelay   time.Duration `json:"stddev_delay"`
}

type microDelayState struct {
	params  MicroDelayParams
	history *store.Ring[time.Duration]
}

// networkTier is one of the categorical simulated network-latency profiles.
type networkTier struct {
	name    string
	weight  int
	baseMs  float64
	extraMs float64 // uniform extra for the variable tier
}

// networkTiers carry weights 10/40/40/10.
var networkTiers = []networkTier{
	{name: "excellent", weight: 10, baseMs: 15},
	{name: "good", weight: 40, baseMs: 40},
	{name: "average", weight: 40, baseMs: 80},
	{name: "variable", weight: 10, baseMs: 60, extraMs: 120},
}

// MicroDelayEngine produces the short reaction/processing delay applied to
// every order action. Delays are bounded to [100ms, 500ms].
type MicroDelayEngine struct {
	states *store.Keyed[*microDelayState]
	rand   rng.Rand
	load   LoadProvider
	log    zerolog.Logger
}

// NewMicroDelayEngine creates a micro-delay engine. load may be nil.
func NewMicroDelayEngine(rand rng.Rand, load LoadProvider, log zerolog.Logger) *MicroDelayEngine {
	return &MicroDelayEngine{
		states: store.NewKeyed[*microDelayState](),
		rand:   rand,
		load:   load,
		log:    log.With().Str("engine", "micro_delay").Logger(),
	}
}

// Register creates or replaces the per-personality state.
func (e *MicroDelayEngine) Register(personalityID string, params MicroDelayParams) {
	e.states.Put(personalityID, &microDelayState{
		params:  params,
		history: store.NewRing[time.Duration](domain.DelayHistoryCap),
	})
}

// Reset removes all state for the personality.
func (e *MicroDelayEngine) Reset(personalityID string) {
	e.states.Delete(personalityID)
}

// CalculateDelay computes the micro-delay for an order action under the
// given market conditions.
func (e *MicroDelayEngine) CalculateDelay(personalityID string, action ActionType, market domain.MarketConditions) (time.Duration, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return 0, fmt.Errorf("micro-delay engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	p := st.params

	// Personalized base range.
	span := p.BaseMax - p.BaseMin
	delay := p.BaseMin + time.Duration(e.rand.Float64()*float64(span))

	delay = time.Duration(float64(delay) * actionMultiplier(action))

	// Simulated network latency, drawn from the categorical tiers.
	tier := e.pickNetworkTier()
	latencyMs := tier.baseMs
	if tier.extraMs > 0 {
		latencyMs += e.rand.Float64() * tier.extraMs
	}
	delay += time.Duration(latencyMs * float64(time.Millisecond))

	// Contextual add-ons.
	if market.Volatility > 1.5 {
		delay += 30 * time.Millisecond
	}
	if market.IsNewsTime {
		delay += 40 * time.Millisecond
	}
	if market.Session == domain.SessionOverlap {
		delay += 20 * time.Millisecond
	}
	if e.load != nil {
		delay += time.Duration(e.load.Load() * 50 * float64(time.Millisecond))
	}

	delay = clampDuration(delay, domain.MinMicroDelay, domain.MaxMicroDelay)

	e.states.Update(personalityID, func(s *microDelayState) *microDelayState {
		s.history.Append(delay)
		return s
	})

	return delay, nil
}

// ApplyDelay suspends the caller for the given duration using a timer, not
// a busy wait. Cancelling the context abandons the delay without leaking
// the timer.
func (e *MicroDelayEngine) ApplyDelay(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns aggregate micro-delay statistics for the personality.
func (e *MicroDelayEngine) Stats(personalityID string) (MicroDelayStats, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return MicroDelayStats{}, fmt.Errorf("micro-delay engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}

	delays := st.history.Items()
	stats := MicroDelayStats{PersonalityID: personalityID, Count: len(delays)}
	if len(delays) == 0 {
		return stats, nil
	}

	ms := make([]float64, len(delays))
	for i, d := range delays {
		ms[i] = float64(d.Milliseconds())
	}
	stats.AvgDelay = time.Duration(stat.Mean(ms, nil) * float64(time.Millisecond))
	if len(ms) > 1 {
		stats.StdDevDelay = time.Duration(stat.StdDev(ms, nil) * float64(time.Millisecond))
	}
	return stats, nil
}

// Params returns the registered micro-delay parameters.
func (e *MicroDelayEngine) Params(personalityID string) (MicroDelayParams, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return MicroDelayParams{}, fmt.Errorf("micro-delay engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.params, nil
}

func (e *MicroDelayEngine) pickNetworkTier() networkTier {
	total := 0
	for _, t := range networkTiers {
		total += t.weight
	}
	roll := e.rand.IntN(total)
	for _, t := range networkTiers {
		if roll < t.weight {
			return t
		}
		roll -= t.weight
	}
	return networkTiers[len(networkTiers)-1]
}

func actionMultiplier(action ActionType) float64 {
	switch action {
	case ActionModifyOrder:
		return 0.9
	case ActionCancelOrder:
		return 0.8
	default:
		return 1.0
	}
}
