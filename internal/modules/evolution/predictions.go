package evolution

import (
	"fmt"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/store"
)

// Prediction is an advisory forecast of where a personality is heading.
// It never mutates the personality.
type Prediction struct {
	PersonalityID    string                   `json:"personality_id"`
	NextMilestone    string                   `json:"next_milestone,omitempty"`
	TradesRemaining  int                      `json:"trades_remaining,omitempty"`
	DaysRemaining    int                      `json:"days_remaining,omitempty"`
	ImprovingTraits  []domain.TraitName       `json:"improving_traits"`
	DegradingTraits  []domain.TraitName       `json:"degrading_traits"`
	ProjectedTraits  domain.PersonalityTraits `json:"projected_traits"`
	HorizonDays      int                      `json:"horizon_days"`
	CrisisRiskFactor float64                  `json:"crisis_risk_factor"` // 0-1
}

// GenerateEvolutionPredictions forecasts the next milestone and the drift
// direction over a 90-day horizon, assuming current activity pace holds.
func (e *Engine) GenerateEvolutionPredictions(p *domain.TradingPersonality, activity domain.TradingActivity) (Prediction, error) {
	st, ok := e.states.Get(p.ID)
	if !ok {
		return Prediction{}, fmt.Errorf("%w: %s", ErrPersonalityNotTracked, p.ID)
	}

	const horizonDays = 90
	pred := Prediction{
		PersonalityID: p.ID,
		HorizonDays:   horizonDays,
	}
	if p.Evolution != nil {
		pred.ImprovingTraits = p.Evolution.ImprovingTraits
		pred.DegradingTraits = p.Evolution.DegradingTraits
	}

	for _, m := range milestones {
		if st.achieved[m.id] {
			continue
		}
		pred.NextMilestone = m.id
		if remaining := m.trades - activity.TotalTrades; remaining > 0 {
			pred.TradesRemaining = remaining
		}
		if remaining := m.days - activity.DaysActive; remaining > 0 {
			pred.DaysRemaining = remaining
		}
		break
	}

	// Project drift at the expected rate: half the maximum nudge per pass,
	// one pass per month over the horizon.
	projected := p.Traits
	if p.Evolution != nil && p.Evolution.EvolutionRate > 0 {
		passes := float64(horizonDays) / 30
		perPass := 0.4 * p.Evolution.EvolutionRate
		for _, trait := range p.Evolution.ImprovingTraits {
			projected.Set(trait, projected.Get(trait)+perPass*passes)
		}
		for _, trait := range p.Evolution.DegradingTraits {
			projected.Set(trait, projected.Get(trait)-perPass*passes)
		}
	}
	pred.ProjectedTraits = projected

	pred.CrisisRiskFactor = crisisMagnitude(activity)
	if activity.ConsecutiveLosses < minorCrisisLossStreak &&
		activity.CurrentDrawdown > minorCrisisDrawdown {
		pred.CrisisRiskFactor = 0
	}

	return pred, nil
}

// SimulationStep is one month of a simulated evolution run.
type SimulationStep struct {
	Day    int                      `json:"day"`
	Traits domain.PersonalityTraits `json:"traits"`
	Events []domain.EvolutionEvent  `json:"events"`
}

// SimulateEvolutionOverTime runs the evolution categories against a copy of
// the personality in 30-day steps, synthesizing steady activity at the
// given pace. The tracked personality and its history are untouched; the
// simulation carries its own scratch state.
func (e *Engine) SimulateEvolutionOverTime(p *domain.TradingPersonality, days int, tradesPerDay, winRate float64) []SimulationStep {
	if p.Evolution == nil || !p.Evolution.Enabled {
		return nil
	}

	sim := *p
	if p.Evolution != nil {
		cfg := *p.Evolution
		sim.Evolution = &cfg
	}

	scratch := &evolutionState{
		achieved: make(map[string]bool),
		history:  store.NewRing[domain.EvolutionEvent](domain.EvolutionHistoryCap),
	}

	var steps []SimulationStep
	start := e.now()

	for day := 30; day <= days; day += 30 {
		now := start.AddDate(0, 0, day)
		activity := domain.TradingActivity{
			TotalTrades:     int(float64(day) * tradesPerDay),
			DaysActive:      day,
			TotalProfit:     (winRate - 0.45) * float64(day) / 365, // crude pace proxy
			WinRate:         winRate,
			AvgTradesPerDay: tradesPerDay,
			SnapshotAt:      now,
		}

		var stepEvents []domain.EvolutionEvent
		stepEvents = append(stepEvents, e.checkMilestones(&sim, activity, scratch, now)...)
		if ev := e.evolveSkills(&sim, activity, scratch, now); ev != nil {
			stepEvents = append(stepEvents, *ev)
		}
		if ev := e.applyNaturalDrift(&sim, now); ev != nil {
			stepEvents = append(stepEvents, *ev)
		}

		steps = append(steps, SimulationStep{Day: day, Traits: sim.Traits, Events: stepEvents})
	}
	return steps
}
