package risk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/modules/personality"
)

func newTestEngine() *Engine {
	return NewEngine(personality.NewAnalyzer(), zerolog.Nop())
}

func testPersonality() *domain.TradingPersonality {
	return &domain.TradingPersonality{
		ID:        "p-1",
		AccountID: "acct-1",
		Archetype: domain.ArchetypeBalancedAllrounder,
		Traits: domain.PersonalityTraits{
			RiskTolerance: 50, Patience: 55, Confidence: 55,
			Emotionality: 45, Discipline: 60, Adaptability: 60,
		},
		TimePreferences: domain.TimePreferences{
			PreferredSessions: []domain.TradingSession{domain.SessionLondon},
			ActiveHourStart:   7,
			ActiveHourEnd:     20,
		},
		PrimaryPairs:   []string{"EURUSD", "GBPUSD"},
		SecondaryPairs: []string{"USDJPY", "EURGBP"},
		RiskAppetite: domain.RiskAppetite{
			BaseRiskPerTrade:    1.0,
			MinRiskVariance:     0.08,
			MaxRiskVariance:     0.18,
			MaxPortfolioRisk:    5.0,
			MaxConsecutiveSkips: 3,
			MaxSizeDeviation:    0.12,
		},
		Behavior: domain.BehavioralPatterns{
			NewsReaction: domain.NewsReactionReact,
		},
	}
}

func neutralMarket() domain.MarketConditions {
	return domain.MarketConditions{
		Volatility: 1.0,
		SpreadPips: 1.5,
		Liquidity:  domain.LiquidityMedium,
		Session:    domain.SessionLondon,
	}
}

func neutralPerformance() domain.PerformanceFactors {
	return domain.PerformanceFactors{WinRate: 0.5, ProfitFactor: 1.2}
}

func neutralPsych() domain.PsychologicalState {
	return domain.PsychologicalState{StressLevel: 30, FatigueLevel: 20, ConfidenceLevel: 50}
}

func TestCalculateRiskAppetiteBounds(t *testing.T) {
	e := newTestEngine()
	p := testPersonality()

	// Sweep through hostile and friendly extremes; the result must stay in
	// the hard bounds regardless.
	scenarios := []struct {
		perf  domain.PerformanceFactors
		psych domain.PsychologicalState
	}{
		{neutralPerformance(), neutralPsych()},
		{domain.PerformanceFactors{WinRate: 0.9, ConsecutiveWins: 10, ProfitFactor: 3}, domain.PsychologicalState{ConfidenceLevel: 100}},
		{domain.PerformanceFactors{WinRate: 0.1, ConsecutiveLosses: 8, CurrentDrawdown: -0.3}, domain.PsychologicalState{StressLevel: 100, FatigueLevel: 100}},
	}

	for _, sc := range scenarios {
		res := e.CalculateRiskAppetite(p, neutralMarket(), sc.perf, sc.psych, "EURUSD", 9)
		assert.GreaterOrEqual(t, res.RiskPercent, domain.MinBaseRiskPerTrade)
		assert.LessOrEqual(t, res.RiskPercent, domain.MaxBaseRiskPerTrade)
		assert.Less(t, res.VarianceBand.Min, res.VarianceBand.Max)
		assert.NotEmpty(t, res.Reasoning)
	}
}

func TestAdjustmentTermBounds(t *testing.T) {
	e := newTestEngine()
	p := testPersonality()

	res := e.CalculateRiskAppetite(p,
		domain.MarketConditions{Volatility: 5, SpreadPips: 10, Liquidity: domain.LiquidityLow, IsNewsTime: true},
		domain.PerformanceFactors{WinRate: 0, ConsecutiveLosses: 20, CurrentDrawdown: -0.9},
		domain.PsychologicalState{StressLevel: 100, FatigueLevel: 100},
		"USDTRY", 3)

	require.Len(t, res.Adjustments, 5)
	assert.GreaterOrEqual(t, res.Adjustments["performance"], -0.5)
	assert.LessOrEqual(t, res.Adjustments["performance"], 0.5)
	assert.GreaterOrEqual(t, res.Adjustments["market"], -0.3)
	assert.LessOrEqual(t, res.Adjustments["market"], 0.3)
	assert.GreaterOrEqual(t, res.Adjustments["psychological"], -0.4)
	assert.LessOrEqual(t, res.Adjustments["psychological"], 0.4)
	assert.GreaterOrEqual(t, res.Adjustments["time"], -0.2)
	assert.LessOrEqual(t, res.Adjustments["time"], 0.2)
	assert.GreaterOrEqual(t, res.Adjustments["pair"], -0.1)
	assert.LessOrEqual(t, res.Adjustments["pair"], 0.1)
}

func TestLosingStreakReducesRisk(t *testing.T) {
	e := newTestEngine()
	p := testPersonality()

	healthy := e.CalculateRiskAppetite(p, neutralMarket(), neutralPerformance(), neutralPsych(), "EURUSD", 9)
	losing := e.CalculateRiskAppetite(p, neutralMarket(),
		domain.PerformanceFactors{WinRate: 0.3, ConsecutiveLosses: 4, CurrentDrawdown: -0.08},
		neutralPsych(), "EURUSD", 9)

	assert.Less(t, losing.RiskPercent, healthy.RiskPercent)
}

func TestPairFamiliarityOrdering(t *testing.T) {
	e := newTestEngine()
	p := testPersonality()

	primary := e.CalculateRiskAppetite(p, neutralMarket(), neutralPerformance(), neutralPsych(), "EURUSD", 9)
	secondary := e.CalculateRiskAppetite(p, neutralMarket(), neutralPerformance(), neutralPsych(), "USDJPY", 9)
	unknown := e.CalculateRiskAppetite(p, neutralMarket(), neutralPerformance(), neutralPsych(), "USDZAR", 9)

	assert.Greater(t, primary.RiskPercent, secondary.RiskPercent)
	assert.Greater(t, secondary.RiskPercent, unknown.RiskPercent)
}

func TestAdvisoryWarnings(t *testing.T) {
	e := newTestEngine()
	p := testPersonality()
	p.Traits.Confidence = 80

	res := e.CalculateRiskAppetite(p, neutralMarket(),
		domain.PerformanceFactors{WinRate: 0.2, ConsecutiveLosses: 5, CurrentDrawdown: -0.2},
		domain.PsychologicalState{StressLevel: 80},
		"EURUSD", 9)

	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "revenge-trading")

	// Warnings never force the risk below the floor on their own.
	assert.GreaterOrEqual(t, res.RiskPercent, domain.MinBaseRiskPerTrade)
}

func TestSessionForHour(t *testing.T) {
	assert.Equal(t, domain.SessionAsian, SessionForHour(2))
	assert.Equal(t, domain.SessionLondon, SessionForHour(9))
	assert.Equal(t, domain.SessionOverlap, SessionForHour(13))
	assert.Equal(t, domain.SessionNewYork, SessionForHour(18))
	assert.Equal(t, domain.SessionAsian, SessionForHour(23))
	assert.Equal(t, domain.SessionLondon, SessionForHour(33)) // wraps to 9
}

func TestPortfolioConstraintsAdmission(t *testing.T) {
	e := newTestEngine()
	p := testPersonality() // portfolio cap 5.0%

	t.Run("within budget", func(t *testing.T) {
		check := e.CalculatePortfolioRiskConstraints(p, []OpenPosition{
			{Symbol: "EURUSD", RiskPercent: 1.0},
			{Symbol: "GBPUSD", RiskPercent: 1.5},
		}, 1.0)
		assert.True(t, check.AllowTrade)
		assert.Equal(t, 1.0, check.ApprovedRiskPercent)
		assert.InDelta(t, 2.5, check.RemainingBudget, 1e-9)
	})

	t.Run("truncated to remaining", func(t *testing.T) {
		check := e.CalculatePortfolioRiskConstraints(p, []OpenPosition{
			{Symbol: "EURUSD", RiskPercent: 4.0},
		}, 2.0)
		assert.True(t, check.AllowTrade)
		assert.InDelta(t, 1.0, check.ApprovedRiskPercent, 1e-9)
	})

	t.Run("rejected below minimum viable floor", func(t *testing.T) {
		check := e.CalculatePortfolioRiskConstraints(p, []OpenPosition{
			{Symbol: "EURUSD", RiskPercent: 4.8},
		}, 1.0)
		assert.False(t, check.AllowTrade)
		assert.Equal(t, 0.0, check.ApprovedRiskPercent)
		assert.Contains(t, check.Reason, "minimum viable")
	})

	t.Run("non-positive proposal rejected", func(t *testing.T) {
		check := e.CalculatePortfolioRiskConstraints(p, nil, 0)
		assert.False(t, check.AllowTrade)
	})
}
