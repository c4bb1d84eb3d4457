package evolution

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/events"
	"github.com/aristath/quirk/internal/rng"
)

func newEngineForTest(seed uint64) *Engine {
	log := zerolog.Nop()
	return NewEngine(rng.NewSeeded(seed), events.NewManager(events.NewBus(log), log), log)
}

func evolvablePersonality(id string) *domain.TradingPersonality {
	return &domain.TradingPersonality{
		ID:        id,
		AccountID: "acct-1",
		Archetype: domain.ArchetypePatientSwing,
		Traits: domain.PersonalityTraits{
			RiskTolerance: 50,
			Patience:      60,
			Confidence:    50,
			Emotionality:  45,
			Discipline:    55,
			Adaptability:  50,
		},
		RiskAppetite: domain.RiskAppetite{
			BaseRiskPerTrade:    1.5,
			MaxConsecutiveSkips: 3,
			MaxSizeDeviation:    0.1,
		},
		Evolution: &domain.EvolutionConfig{
			Enabled:         true,
			ImprovingTraits: []domain.TraitName{domain.TraitDiscipline, domain.TraitPatience},
			DegradingTraits: []domain.TraitName{domain.TraitEmotionality},
			EvolutionRate:   0.5,
		},
		CreatedAt: time.Now().Add(-400 * 24 * time.Hour),
	}
}

func quietActivity() domain.TradingActivity {
	return domain.TradingActivity{
		TotalTrades:      50,
		DaysActive:       20,
		TotalProfit:      0.01,
		WinRate:          0.50,
		AvgTradesPerDay:  2.5,
		Trailing30Return: 0.01,
		SnapshotAt:       time.Now(),
	}
}

func TestProcessEvolutionRequiresRegistration(t *testing.T) {
	engine := newEngineForTest(1)
	p := evolvablePersonality("ghost")

	_, err := engine.ProcessEvolution(p, quietActivity())
	assert.ErrorIs(t, err, ErrPersonalityNotTracked)
}

func TestProcessEvolutionDisabledIsNoop(t *testing.T) {
	engine := newEngineForTest(1)
	p := evolvablePersonality("p1")
	p.Evolution.Enabled = false
	engine.Register(p.ID)

	evts, err := engine.ProcessEvolution(p, quietActivity())
	require.NoError(t, err)
	assert.Empty(t, evts)
}

func TestMilestonesFireOnceWithExplicitTracking(t *testing.T) {
	engine := newEngineForTest(2)
	p := evolvablePersonality("p1")
	engine.Register(p.ID)

	activity := quietActivity()
	activity.TotalTrades = 600
	activity.DaysActive = 100
	activity.TotalProfit = 0.05

	evts, err := engine.ProcessEvolution(p, activity)
	require.NoError(t, err)

	milestoneCount := 0
	for _, ev := range evts {
		if ev.Type == domain.EvolutionMilestoneReached {
			milestoneCount++
			assert.False(t, ev.Reversible)
		}
	}
	assert.Equal(t, 2, milestoneCount, "first_hundred and steady_quarter both qualify")
	assert.InDelta(t, 20, p.ExperienceLevel, 1e-9)

	achieved, err := engine.AchievedMilestones(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_hundred", "steady_quarter"}, achieved)

	// Same snapshot again: already-achieved milestones stay silent even if
	// traits regressed in between.
	p.Traits.Confidence = 10
	evts, err = engine.ProcessEvolution(p, activity)
	require.NoError(t, err)
	for _, ev := range evts {
		assert.NotEqual(t, domain.EvolutionMilestoneReached, ev.Type)
	}
}

func TestMilestoneRequiresAllThreeThresholds(t *testing.T) {
	tests := []struct {
		name     string
		activity domain.TradingActivity
	}{
		{"trades without days", domain.TradingActivity{TotalTrades: 200, DaysActive: 5, TotalProfit: 0.05}},
		{"days without trades", domain.TradingActivity{TotalTrades: 10, DaysActive: 60, TotalProfit: 0.05}},
		{"trades and days but losing", domain.TradingActivity{TotalTrades: 200, DaysActive: 60, TotalProfit: -0.10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngineForTest(3)
			p := evolvablePersonality("p1")
			// Zero drift isolates the milestone category.
			p.Evolution.EvolutionRate = 0
			p.CreatedAt = time.Now()
			engine.Register(p.ID)

			evts, err := engine.ProcessEvolution(p, tt.activity)
			require.NoError(t, err)
			for _, ev := range evts {
				assert.NotEqual(t, domain.EvolutionMilestoneReached, ev.Type)
			}
		})
	}
}

func TestMilestoneEventsPrecedeTraitEvolution(t *testing.T) {
	engine := newEngineForTest(4)
	p := evolvablePersonality("p1")
	engine.Register(p.ID)

	activity := quietActivity()
	activity.TotalTrades = 1200
	activity.DaysActive = 200
	activity.TotalProfit = 0.09

	evts, err := engine.ProcessEvolution(p, activity)
	require.NoError(t, err)

	lastMilestone, firstDrift := -1, len(evts)
	for i, ev := range evts {
		switch ev.Type {
		case domain.EvolutionMilestoneReached:
			lastMilestone = i
		case domain.EvolutionTraitEvolution:
			if i < firstDrift {
				firstDrift = i
			}
		}
	}
	require.GreaterOrEqual(t, lastMilestone, 0)
	assert.Less(t, lastMilestone, firstDrift)
}

func TestSkillEvolutionGatedToThirtyDays(t *testing.T) {
	engine := newEngineForTest(5)
	p := evolvablePersonality("p1")
	p.Evolution.EvolutionRate = 0
	engine.Register(p.ID)

	activity := quietActivity()
	activity.WinRate = 0.60
	activity.TotalProfit = 0.15

	now := time.Now()
	engine.now = func() time.Time { return now }

	evts, err := engine.ProcessEvolution(p, activity)
	require.NoError(t, err)
	hadSkill := false
	for _, ev := range evts {
		if ev.Type == domain.EvolutionSkillImprovement {
			hadSkill = true
		}
	}
	// The plateau can swallow every improvement; repeat until one lands.
	for i := 0; !hadSkill && i < 20; i++ {
		now = now.Add(31 * 24 * time.Hour)
		evts, err = engine.ProcessEvolution(p, activity)
		require.NoError(t, err)
		for _, ev := range evts {
			if ev.Type == domain.EvolutionSkillImprovement {
				hadSkill = true
			}
		}
	}
	require.True(t, hadSkill)

	// A snapshot one day later stays inside the 30-day gate.
	now = now.Add(24 * time.Hour)
	evts, err = engine.ProcessEvolution(p, activity)
	require.NoError(t, err)
	for _, ev := range evts {
		assert.NotEqual(t, domain.EvolutionSkillImprovement, ev.Type)
	}
}

func TestNaturalDriftFollowsDeclaredDirections(t *testing.T) {
	engine := newEngineForTest(6)
	p := evolvablePersonality("p1")
	engine.Register(p.ID)

	beforeDiscipline := p.Traits.Discipline
	beforeEmotionality := p.Traits.Emotionality

	for i := 0; i < 12; i++ {
		_, err := engine.ProcessEvolution(p, quietActivity())
		require.NoError(t, err)
	}

	assert.Greater(t, p.Traits.Discipline, beforeDiscipline)
	assert.Less(t, p.Traits.Emotionality, beforeEmotionality)
	for _, name := range domain.AllTraitNames {
		v := p.Traits.Get(name)
		assert.GreaterOrEqual(t, v, domain.TraitMin)
		assert.LessOrEqual(t, v, domain.TraitMax)
	}
}

func TestMajorCrisisShrinksBaseRiskPermanently(t *testing.T) {
	engine := newEngineForTest(7)
	p := evolvablePersonality("p1")
	engine.Register(p.ID)

	baseRisk := p.RiskAppetite.BaseRiskPerTrade
	confidence := p.Traits.Confidence

	activity := quietActivity()
	activity.ConsecutiveLosses = 7
	activity.CurrentDrawdown = -0.20
	activity.Trailing30Return = -0.25

	evts, err := engine.ProcessEvolution(p, activity)
	require.NoError(t, err)

	var crisis *domain.EvolutionEvent
	for i := range evts {
		if evts[i].Type == domain.EvolutionCrisisAdaptation {
			crisis = &evts[i]
		}
	}
	require.NotNil(t, crisis)
	assert.False(t, crisis.Reversible, "major crisis risk cuts are permanent")

	assert.Less(t, p.RiskAppetite.BaseRiskPerTrade, baseRisk)
	assert.GreaterOrEqual(t, p.RiskAppetite.BaseRiskPerTrade, baseRisk*(1-maxCrisisRiskReduction))
	assert.GreaterOrEqual(t, p.RiskAppetite.BaseRiskPerTrade, domain.MinBaseRiskPerTrade)
	assert.Less(t, p.Traits.Confidence, confidence)
}

func TestMinorCrisisIsReversibleAndKeepsBaseRisk(t *testing.T) {
	engine := newEngineForTest(8)
	p := evolvablePersonality("p1")
	engine.Register(p.ID)

	baseRisk := p.RiskAppetite.BaseRiskPerTrade

	activity := quietActivity()
	activity.ConsecutiveLosses = 3
	activity.CurrentDrawdown = -0.09

	evts, err := engine.ProcessEvolution(p, activity)
	require.NoError(t, err)

	found := false
	for _, ev := range evts {
		if ev.Type == domain.EvolutionCrisisAdaptation {
			found = true
			assert.True(t, ev.Reversible)
		}
	}
	require.True(t, found)
	assert.InDelta(t, baseRisk, p.RiskAppetite.BaseRiskPerTrade, 1e-9)
}

func TestEvolutionHistoryIsBounded(t *testing.T) {
	engine := newEngineForTest(9)
	p := evolvablePersonality("p1")
	engine.Register(p.ID)

	for i := 0; i < domain.EvolutionHistoryCap+100; i++ {
		_, err := engine.ProcessEvolution(p, quietActivity())
		require.NoError(t, err)
	}

	history, err := engine.History(p.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(history), domain.EvolutionHistoryCap)
	assert.NotEmpty(t, history)
}

func TestResetForgetsEvolutionState(t *testing.T) {
	engine := newEngineForTest(10)
	p := evolvablePersonality("p1")
	engine.Register(p.ID)
	engine.Reset(p.ID)

	_, err := engine.ProcessEvolution(p, quietActivity())
	assert.ErrorIs(t, err, ErrPersonalityNotTracked)
	_, err = engine.History(p.ID)
	assert.ErrorIs(t, err, ErrPersonalityNotTracked)
}
