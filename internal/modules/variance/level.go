package variance

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/store"
)

// LevelAspect distinguishes stop-loss from take-profit adjustments.
type LevelAspect string

const (
	AspectStopLoss   LevelAspect = "stop_loss"
	AspectTakeProfit LevelAspect = "take_profit"
)

type levelState struct {
	params LevelParams
	count  int
}

// LevelEngine jitters stop and target levels so accounts never share pip-
// identical protective orders, and nudges levels away from round numbers.
type LevelEngine struct {
	states *store.Keyed[*levelState]
	rand   rng.Rand
	log    zerolog.Logger
}

// NewLevelEngine creates a level variance engine.
func NewLevelEngine(rand rng.Rand, log zerolog.Logger) *LevelEngine {
	return &LevelEngine{
		states: store.NewKeyed[*levelState](),
		rand:   rand,
		log:    log.With().Str("engine", "level").Logger(),
	}
}

// Register creates or replaces the per-personality state.
func (e *LevelEngine) Register(personalityID string, params LevelParams) {
	e.states.Put(personalityID, &levelState{params: params})
}

// Reset removes all state for the personality.
func (e *LevelEngine) Reset(personalityID string) {
	e.states.Delete(personalityID)
}

// AdjustLevel jitters a stop or target level for the personality. The
// result honors the symbol's precision convention (2dp for JPY pairs, 4dp
// otherwise).
func (e *LevelEngine) AdjustLevel(
	personalityID string,
	signal domain.Signal,
	market domain.MarketConditions,
	aspect LevelAspect,
	level float64,
) (domain.LevelResult, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return domain.LevelResult{}, fmt.Errorf("level engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	p := st.params

	if level <= 0 {
		return domain.LevelResult{OriginalLevel: level, AdjustedLevel: level}, nil
	}

	pip := domain.PipSize(signal.Symbol)

	// Jitter magnitude in pips: normal-shaped for disciplined traders,
	// uniform for everyone else.
	var magnitude float64
	if p.Disciplined {
		magnitude = math.Abs(e.rand.Norm(p.BaseJitterPips, p.BaseJitterPips/3))
	} else {
		magnitude = p.BaseJitterPips * (0.5 + e.rand.Float64())
	}

	// Market multipliers: volatile or wide-spread markets justify wider
	// hand-placed levels.
	volMult := clampFloat64(market.Volatility, 0.5, 2.0)
	spreadMult := 1.0
	if market.SpreadPips > 3 {
		spreadMult = 1.2
	}
	magnitude *= volMult * spreadMult

	// Directional bias: humans err on the safe side. Stops drift away from
	// entry slightly more often than toward it.
	sign := 1.0
	if e.rand.Float64() < 0.6 {
		sign = -1.0
	}
	if aspect == AspectStopLoss {
		// Away from entry means below for longs, above for shorts.
		if signal.Direction == domain.DirectionBuy {
			sign = -math.Abs(sign)
		} else {
			sign = math.Abs(sign)
		}
		if e.rand.Float64() < 0.4 {
			sign = -sign // the minority tighten instead
		}
	}

	adjusted := level + sign*magnitude*pip
	adjusted = e.avoidRoundNumber(adjusted, signal.Symbol, p.RoundNumberAvoidance)
	adjusted = domain.RoundPrice(signal.Symbol, adjusted)

	result := domain.LevelResult{
		OriginalLevel:  level,
		AdjustedLevel:  adjusted,
		AdjustmentPips: domain.PipsFromPrice(signal.Symbol, adjusted-level),
	}

	e.states.Update(personalityID, func(s *levelState) *levelState {
		s.count++
		return s
	})

	return result, nil
}

// Params returns the registered level parameters.
func (e *LevelEngine) Params(personalityID string) (LevelParams, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return LevelParams{}, fmt.Errorf("level engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.params, nil
}

// AdjustmentCount returns how many levels this personality has adjusted.
func (e *LevelEngine) AdjustmentCount(personalityID string) (int, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return 0, fmt.Errorf("level engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.count, nil
}

// avoidRoundNumber applies a probability-gated 2-5 pip nudge when the level
// sits within 2 pips (mod 100) of a round number. Higher avoidance makes
// the nudge more likely.
func (e *LevelEngine) avoidRoundNumber(level float64, symbol string, avoidance float64) float64 {
	if avoidance <= 0 {
		return level
	}
	pip := domain.PipSize(symbol)
	pipPos := math.Mod(level/pip, 100)
	if pipPos < 0 {
		pipPos += 100
	}

	nearRound := pipPos <= 2 || pipPos >= 98
	if !nearRound || e.rand.Float64() >= avoidance {
		return level
	}

	nudgePips := 2 + e.rand.Float64()*3 // 2-5 pips
	// Push away from the round number, whichever side we are on.
	if pipPos >= 98 {
		return level - nudgePips*pip
	}
	return level + nudgePips*pip
}

func clampFloat64(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
