package variance

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/store"
)

// lotTier maps a size range to its natural lot increment. Human traders
// round to coarser increments as positions grow.
type lotTier struct {
	upTo      float64
	increment float64
}

var lotTiers = []lotTier{
	{upTo: 0.5, increment: 0.01},
	{upTo: 5, increment: 0.1},
	{upTo: 20, increment: 0.5},
	{upTo: math.Inf(1), increment: 1.0},
}

// smallestIncrement is the fallback when a tier rounding would breach the
// personality's deviation cap.
const smallestIncrement = 0.01

// psychologicalAttractors are the "comfortable" sizes humans gravitate to.
var psychologicalAttractors = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0}

type sizingState struct {
	params SizingParams
	count  int
}

// SizingEngine rounds mechanical position sizes to human-looking lots.
type SizingEngine struct {
	states *store.Keyed[*sizingState]
	rand   rng.Rand
	log    zerolog.Logger
}

// NewSizingEngine creates a sizing variance engine.
func NewSizingEngine(rand rng.Rand, log zerolog.Logger) *SizingEngine {
	return &SizingEngine{
		states: store.NewKeyed[*sizingState](),
		rand:   rand,
		log:    log.With().Str("engine", "sizing").Logger(),
	}
}

// Register creates or replaces the per-personality state.
func (e *SizingEngine) Register(personalityID string, params SizingParams) {
	e.states.Put(personalityID, &sizingState{params: params})
}

// Reset removes all state for the personality.
func (e *SizingEngine) Reset(personalityID string) {
	e.states.Delete(personalityID)
}

// AdjustSize rounds the signal size to a tiered lot increment per the
// personality's bias. If the biased rounding would exceed the personality's
// deviation cap it falls back to the smallest increment that keeps the
// deviation inside the cap.
func (e *SizingEngine) AdjustSize(personalityID string, originalSize float64) (domain.SizingResult, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return domain.SizingResult{}, fmt.Errorf("sizing engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	p := st.params

	if originalSize <= 0 {
		return domain.SizingResult{
			OriginalSize: originalSize,
			AdjustedSize: 0,
			Method:       "rejected_non_positive",
		}, nil
	}

	increment := incrementFor(originalSize)
	adjusted, method := e.applyBias(originalSize, increment, p.Bias)

	if deviationOf(originalSize, adjusted) > p.MaxDeviation {
		adjusted = roundToIncrement(originalSize, smallestIncrement)
		method = "fallback_min_increment"
		if deviationOf(originalSize, adjusted) > p.MaxDeviation {
			// Below the smallest lot no rounding can honor the cap.
			// Pass the size through unchanged rather than breach it.
			adjusted = originalSize
			method = "unrounded_below_increment"
		}
	}
	if adjusted <= 0 {
		adjusted = increment
		method = "floor_single_increment"
		if deviationOf(originalSize, adjusted) > p.MaxDeviation {
			adjusted = originalSize
			method = "unrounded_below_increment"
		}
	}

	result := domain.SizingResult{
		OriginalSize: originalSize,
		AdjustedSize: adjusted,
		Deviation:    deviationOf(originalSize, adjusted),
		Method:       method,
	}

	e.states.Update(personalityID, func(s *sizingState) *sizingState {
		s.count++
		return s
	})

	return result, nil
}

// Params returns the registered sizing parameters.
func (e *SizingEngine) Params(personalityID string) (SizingParams, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return SizingParams{}, fmt.Errorf("sizing engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.params, nil
}

// AdjustmentCount returns how many sizes this personality has adjusted.
func (e *SizingEngine) AdjustmentCount(personalityID string) (int, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return 0, fmt.Errorf("sizing engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.count, nil
}

func (e *SizingEngine) applyBias(size, increment float64, bias domain.SizingBias) (float64, string) {
	switch bias {
	case domain.SizingBiasUp:
		return math.Ceil(size/increment) * increment, "round_up"
	case domain.SizingBiasDown:
		return math.Floor(size/increment) * increment, "round_down"
	case domain.SizingBiasPsychological:
		if attractor, ok := nearestAttractor(size); ok {
			return attractor, "psychological_attractor"
		}
		return roundToIncrement(size, increment), "round_nearest"
	default:
		return roundToIncrement(size, increment), "round_nearest"
	}
}

// nearestAttractor finds the closest psychologically comfortable size when
// it is within 30% of the requested size.
func nearestAttractor(size float64) (float64, bool) {
	best := 0.0
	bestDist := math.Inf(1)
	for _, a := range psychologicalAttractors {
		if d := math.Abs(size - a); d < bestDist {
			best = a
			bestDist = d
		}
	}
	if bestDist/size <= 0.3 {
		return best, true
	}
	return 0, false
}

func incrementFor(size float64) float64 {
	for _, tier := range lotTiers {
		if size <= tier.upTo {
			return tier.increment
		}
	}
	return lotTiers[len(lotTiers)-1].increment
}

func roundToIncrement(size, increment float64) float64 {
	return math.Round(size/increment) * increment
}

func deviationOf(original, adjusted float64) float64 {
	if original == 0 {
		return 0
	}
	return math.Abs(adjusted-original) / original
}
