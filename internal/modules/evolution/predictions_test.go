package evolution

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/events"
	"github.com/aristath/quirk/internal/rng"
)

func newPredictionEngine(seed uint64) *Engine {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	return NewEngine(rng.NewSeeded(seed), events.NewManager(events.NewBus(logger), logger), logger)
}

func predictionPersonality(id string) *domain.TradingPersonality {
	return &domain.TradingPersonality{
		ID:        id,
		AccountID: "acct-1",
		Archetype: domain.ArchetypeDisciplinedGrinder,
		Traits: domain.PersonalityTraits{
			RiskTolerance: 40,
			Patience:      70,
			Confidence:    50,
			Emotionality:  35,
			Discipline:    75,
			Adaptability:  50,
		},
		RiskAppetite: domain.RiskAppetite{
			BaseRiskPerTrade: 1.0,
		},
		Evolution: &domain.EvolutionConfig{
			Enabled:         true,
			ImprovingTraits: []domain.TraitName{domain.TraitDiscipline},
			DegradingTraits: []domain.TraitName{domain.TraitEmotionality},
			EvolutionRate:   0.5,
		},
	}
}

func TestGenerateEvolutionPredictions(t *testing.T) {
	engine := newPredictionEngine(1)
	p := predictionPersonality("p1")
	engine.Register(p.ID)

	pred, err := engine.GenerateEvolutionPredictions(p, domain.TradingActivity{
		TotalTrades: 40,
		DaysActive:  12,
	})
	require.NoError(t, err)

	assert.Equal(t, "first_hundred", pred.NextMilestone)
	assert.Equal(t, 60, pred.TradesRemaining)
	assert.Equal(t, 18, pred.DaysRemaining)
	assert.Equal(t, 90, pred.HorizonDays)

	// Projection moves improving traits up and degrading traits down,
	// without touching the personality itself.
	assert.Greater(t, pred.ProjectedTraits.Discipline, p.Traits.Discipline)
	assert.Less(t, pred.ProjectedTraits.Emotionality, p.Traits.Emotionality)
	assert.Equal(t, float64(75), p.Traits.Discipline)

	// Calm activity carries no crisis risk
	assert.Equal(t, float64(0), pred.CrisisRiskFactor)
}

func TestGenerateEvolutionPredictionsCrisisRisk(t *testing.T) {
	engine := newPredictionEngine(1)
	p := predictionPersonality("p1")
	engine.Register(p.ID)

	pred, err := engine.GenerateEvolutionPredictions(p, domain.TradingActivity{
		TotalTrades:       300,
		DaysActive:        60,
		ConsecutiveLosses: 4,
		CurrentDrawdown:   -0.12,
	})
	require.NoError(t, err)
	assert.Greater(t, pred.CrisisRiskFactor, float64(0))
	assert.LessOrEqual(t, pred.CrisisRiskFactor, float64(1))
}

func TestGenerateEvolutionPredictionsUntracked(t *testing.T) {
	engine := newPredictionEngine(1)
	p := predictionPersonality("ghost")

	_, err := engine.GenerateEvolutionPredictions(p, domain.TradingActivity{})
	assert.ErrorIs(t, err, ErrPersonalityNotTracked)
}

func TestSimulateEvolutionOverTime(t *testing.T) {
	engine := newPredictionEngine(7)
	p := predictionPersonality("p1")

	steps := engine.SimulateEvolutionOverTime(p, 365, 2, 0.55)
	require.Len(t, steps, 12)

	// Monthly steps
	assert.Equal(t, 30, steps[0].Day)
	assert.Equal(t, 360, steps[11].Day)

	// The simulated pace crosses the first milestone (100 trades at day 60)
	var milestoneSeen bool
	for _, step := range steps {
		for _, ev := range step.Events {
			if ev.Type == domain.EvolutionMilestoneReached {
				milestoneSeen = true
			}
		}
		for _, name := range domain.AllTraitNames {
			v := step.Traits.Get(name)
			assert.GreaterOrEqual(t, v, domain.TraitMin)
			assert.LessOrEqual(t, v, domain.TraitMax)
		}
	}
	assert.True(t, milestoneSeen, "simulation should reach a milestone")

	// The input personality is untouched
	assert.Equal(t, float64(75), p.Traits.Discipline)
	assert.Equal(t, 0, p.TradeCount)
}

func TestSimulateEvolutionDisabledPersonality(t *testing.T) {
	engine := newPredictionEngine(7)
	p := predictionPersonality("p1")
	p.Evolution = nil

	// Without an evolution config there is nothing to simulate
	steps := engine.SimulateEvolutionOverTime(p, 90, 2, 0.5)
	assert.Empty(t, steps)
}
