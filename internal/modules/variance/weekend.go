package variance

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/store"
)

const (
	minSundayProbability = 0.10
	maxSundayProbability = 0.90
)

// WeekendDecision is the outcome of evaluating Sunday-open participation.
type WeekendDecision struct {
	Trade          bool    `json:"trade"`
	Probability    float64 `json:"probability"`
	RiskMultiplier float64 `json:"risk_multiplier"`
	Reason         string  `json:"reason"`
}

// WeekendStats summarizes a personality's recorded weekend decisions.
type WeekendStats struct {
	PersonalityID  string  `json:"personality_id"`
	TotalDecisions int     `json:"total_decisions"`
	TotalTrades    int     `json:"total_trades"`
	TradeRate      float64 `json:"trade_rate"`
	AvgProbability float64 `json:"avg_probability"`
}

type weekendRecord struct {
	traded      bool
	probability float64
}

type weekendState struct {
	params  WeekendParams
	history *store.Ring[weekendRecord]
}

// WeekendBehaviorEngine decides whether a personality participates in the
// thin Sunday open and at what risk.
type WeekendBehaviorEngine struct {
	states *store.Keyed[*weekendState]
	rand   rng.Rand
	log    zerolog.Logger
}

// NewWeekendBehaviorEngine creates a weekend behavior engine.
func NewWeekendBehaviorEngine(rand rng.Rand, log zerolog.Logger) *WeekendBehaviorEngine {
	return &WeekendBehaviorEngine{
		states: store.NewKeyed[*weekendState](),
		rand:   rand,
		log:    log.With().Str("engine", "weekend").Logger(),
	}
}

// Register creates or replaces the per-personality state.
func (e *WeekendBehaviorEngine) Register(personalityID string, params WeekendParams) {
	e.states.Put(personalityID, &weekendState{
		params:  params,
		history: store.NewRing[weekendRecord](domain.WeekendHistoryCap),
	})
}

// Reset removes all state for the personality.
func (e *WeekendBehaviorEngine) Reset(personalityID string) {
	e.states.Delete(personalityID)
}

// EvaluateSundayOpen decides whether to trade the Sunday open under the
// given market conditions. gapPips is the weekend gap magnitude in pips.
func (e *WeekendBehaviorEngine) EvaluateSundayOpen(personalityID string, market domain.MarketConditions) (WeekendDecision, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return WeekendDecision{}, fmt.Errorf("weekend engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	p := st.params

	prob := p.SundayProbabilitySeed

	// Bolder personalities lean in, cautious ones lean out.
	prob += (p.RiskTolerance - 50) / 100 * 0.20

	// A sizeable gap attracts faders and followers, repels avoiders.
	if market.GapPips >= 20 {
		gapPull := 0.10
		if market.GapPips >= 50 {
			gapPull = 0.18
		}
		switch p.GapStrategy {
		case domain.GapStrategyAvoid:
			prob -= gapPull
		default:
			prob += gapPull
		}
	}

	// Pending news around the open.
	if market.IsNewsTime {
		switch p.NewsReaction {
		case domain.NewsReactionAnticipate:
			prob += 0.08
		case domain.NewsReactionIgnore:
			// indifferent
		default:
			prob -= 0.08
		}
	}

	// The Sunday open bleeds into the Asian session.
	if p.PrefersAsianSession {
		prob += 0.05
	}

	prob = clampFloat64(prob, minSundayProbability, maxSundayProbability)

	decision := WeekendDecision{
		Probability:    prob,
		RiskMultiplier: e.riskMultiplier(p, market),
	}

	if e.rand.Float64() < prob {
		decision.Trade = true
		decision.Reason = "participating in sunday open"
	} else {
		decision.Reason = "sitting out sunday open"
		decision.RiskMultiplier = 0
	}

	e.states.Update(personalityID, func(s *weekendState) *weekendState {
		s.history.Append(weekendRecord{traded: decision.Trade, probability: prob})
		return s
	})

	e.log.Debug().
		Str("personality_id", personalityID).
		Bool("trade", decision.Trade).
		Float64("probability", prob).
		Float64("risk_multiplier", decision.RiskMultiplier).
		Msg("Sunday open evaluated")

	return decision, nil
}

// riskMultiplier scales position risk for weekend participation. Even the
// boldest personality trades the thin open below full size.
func (e *WeekendBehaviorEngine) riskMultiplier(p WeekendParams, market domain.MarketConditions) float64 {
	mult := 0.40 + p.RiskTolerance/100*0.35

	if market.GapPips >= 50 && p.GapStrategy == domain.GapStrategyFade {
		mult += 0.10
	}
	if market.IsNewsTime && p.NewsReaction != domain.NewsReactionAnticipate {
		mult -= 0.10
	}

	return clampFloat64(mult, 0.25, 0.85)
}

// Stats returns aggregate weekend behavior statistics for the personality.
func (e *WeekendBehaviorEngine) Stats(personalityID string) (WeekendStats, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return WeekendStats{}, fmt.Errorf("weekend engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}

	records := st.history.Items()
	stats := WeekendStats{PersonalityID: personalityID, TotalDecisions: len(records)}
	if len(records) == 0 {
		return stats, nil
	}

	probSum := 0.0
	for _, r := range records {
		if r.traded {
			stats.TotalTrades++
		}
		probSum += r.probability
	}
	stats.TradeRate = float64(stats.TotalTrades) / float64(len(records))
	stats.AvgProbability = probSum / float64(len(records))
	return stats, nil
}

// Params returns the registered weekend parameters.
func (e *WeekendBehaviorEngine) Params(personalityID string) (WeekendParams, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return WeekendParams{}, fmt.Errorf("weekend engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}
	return st.params, nil
}
