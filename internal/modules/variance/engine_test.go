package variance

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/events"
	"github.com/aristath/quirk/internal/rng"
)

type fixedLoad struct{ value float64 }

func (f fixedLoad) Load() float64 { return f.value }

func testPersonality(id string) *domain.TradingPersonality {
	return &domain.TradingPersonality{
		ID:        id,
		AccountID: "acct-1",
		Archetype: domain.ArchetypeConservativeScalper,
		Traits: domain.PersonalityTraits{
			RiskTolerance: 45,
			Patience:      60,
			Confidence:    55,
			Emotionality:  40,
			Discipline:    70,
			Adaptability:  50,
		},
		TimePreferences: domain.TimePreferences{
			PreferredSessions: []domain.TradingSession{domain.SessionLondon},
			ActiveHourStart:   7,
			ActiveHourEnd:     17,
		},
		Behavior: domain.BehavioralPatterns{
			RoundNumberAvoidance: 0.6,
			SizingBias:           domain.SizingBiasNearest,
			GapStrategy:          domain.GapStrategyFade,
			NewsReaction:         domain.NewsReactionReact,
			SundayOpenPreference: 0.4,
		},
		RiskAppetite: domain.RiskAppetite{
			BaseRiskPerTrade:    1.0,
			MinRiskVariance:     0.08,
			MaxRiskVariance:     0.15,
			MaxPortfolioRisk:    5.0,
			MaxConsecutiveSkips: 3,
			MaxSizeDeviation:    0.10,
		},
		CreatedAt: time.Now(),
	}
}

func testSignal(personalityID string) domain.Signal {
	return domain.Signal{
		ID:            "sig-1",
		Symbol:        "EURUSD",
		Direction:     domain.DirectionBuy,
		Size:          1.0,
		EntryPrice:    1.0850,
		StopLoss:      1.0820,
		TakeProfit:    1.0910,
		Confidence:    0.7,
		GeneratedAt:   time.Now(),
		AccountID:     "acct-1",
		PersonalityID: personalityID,
	}
}

func calmMarket() domain.MarketConditions {
	return domain.MarketConditions{
		Volatility: 1.0,
		SpreadPips: 1.2,
		Liquidity:  domain.LiquidityHigh,
		Session:    domain.SessionLondon,
	}
}

func newTestEngine(seed uint64) *ExecutionVarianceEngine {
	log := zerolog.Nop()
	r := rng.NewSeeded(seed)
	mgr := events.NewManager(events.NewBus(log), log)
	return NewExecutionVarianceEngine(
		NewTimingEngine(r, log),
		NewSizingEngine(r, log),
		NewLevelEngine(r, log),
		NewSkipEngine(r, log),
		NewMicroDelayEngine(r, fixedLoad{0.2}, log),
		NewWeekendBehaviorEngine(r, log),
		mgr,
		DefaultAccountBalance,
		log,
	)
}

func TestApplyVarianceRequiresInitialization(t *testing.T) {
	engine := newTestEngine(1)

	_, err := engine.ApplyVariance(context.Background(), testSignal("ghost"), calmMarket(), 10000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
}

func TestApplyVarianceBounds(t *testing.T) {
	engine := newTestEngine(42)
	p := testPersonality("p-bounds")
	engine.InitializePersonality(p)

	signal := testSignal(p.ID)
	market := calmMarket()

	processed := 0
	for i := 0; i < 300; i++ {
		record, err := engine.ApplyVariance(context.Background(), signal, market, 10000)
		require.NoError(t, err)
		if record == nil {
			continue // skipped
		}
		processed++

		assert.GreaterOrEqual(t, record.EntryTiming.Delay, domain.MinEntryDelay)
		assert.LessOrEqual(t, record.EntryTiming.Delay, domain.MaxEntryDelay)
		assert.GreaterOrEqual(t, record.MicroDelay, domain.MinMicroDelay)
		assert.LessOrEqual(t, record.MicroDelay, domain.MaxMicroDelay)
		assert.LessOrEqual(t, record.PositionSize.Deviation, p.RiskAppetite.MaxSizeDeviation+1e-9)
		assert.Greater(t, record.PositionSize.AdjustedSize, 0.0)
		assert.NotEmpty(t, record.ID)
	}
	assert.Greater(t, processed, 200, "most signals should survive the skip gate")
}

func TestApplyVarianceUsesConfiguredDefaultBalance(t *testing.T) {
	log := zerolog.Nop()
	r := rng.NewSeeded(11)
	mgr := events.NewManager(events.NewBus(log), log)
	engine := NewExecutionVarianceEngine(
		NewTimingEngine(r, log),
		NewSizingEngine(r, log),
		NewLevelEngine(r, log),
		NewSkipEngine(r, log),
		NewMicroDelayEngine(r, fixedLoad{0.2}, log),
		NewWeekendBehaviorEngine(r, log),
		mgr,
		500,
		log,
	)
	p := testPersonality("p-balance")
	engine.InitializePersonality(p)

	signal := testSignal(p.ID)
	signal.Size = 0

	var record *domain.ExecutionVariance
	for i := 0; i < 50 && record == nil; i++ {
		var err error
		record, err = engine.ApplyVariance(context.Background(), signal, calmMarket(), 0)
		require.NoError(t, err)
	}
	require.NotNil(t, record)

	// 500 of equity at one lot per 100k derives a 0.005 base size, below
	// the smallest lot increment.
	assert.InDelta(t, 0.005, record.PositionSize.OriginalSize, 1e-9)
	assert.Greater(t, record.PositionSize.AdjustedSize, 0.0)
	assert.LessOrEqual(t, record.PositionSize.Deviation, p.RiskAppetite.MaxSizeDeviation+1e-9)
}

func TestSkipRateConvergesOnTarget(t *testing.T) {
	engine := newTestEngine(7)
	p := testPersonality("p-skip")
	engine.InitializePersonality(p)

	signal := testSignal(p.ID)
	market := calmMarket()

	for i := 0; i < 500; i++ {
		_, err := engine.ApplyVariance(context.Background(), signal, market, 10000)
		require.NoError(t, err)
	}

	stats, err := engine.SkipStats(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, stats.TotalSignals)
	assert.InDelta(t, stats.TargetSkipRate, stats.ActualSkipRate, 0.05)
}

func TestConsecutiveSkipCapNeverExceeded(t *testing.T) {
	engine := newTestEngine(13)
	p := testPersonality("p-cap")
	p.RiskAppetite.MaxConsecutiveSkips = 2
	engine.InitializePersonality(p)

	signal := testSignal(p.ID)
	// Hostile conditions push the skip probability toward its ceiling.
	market := domain.MarketConditions{
		Volatility: 2.5,
		SpreadPips: 4.0,
		Liquidity:  domain.LiquidityLow,
		Session:    domain.SessionAsian,
		IsNewsTime: true,
	}
	signal.Confidence = 0.1

	streak := 0
	for i := 0; i < 400; i++ {
		record, err := engine.ApplyVariance(context.Background(), signal, market, 10000)
		require.NoError(t, err)
		if record == nil {
			streak++
			assert.LessOrEqual(t, streak, 2, "skip streak exceeded the configured cap")
		} else {
			streak = 0
		}
	}
}

func TestRecordExecutionResult(t *testing.T) {
	engine := newTestEngine(99)
	p := testPersonality("p-outcome")
	engine.InitializePersonality(p)

	var record *domain.ExecutionVariance
	for record == nil {
		var err error
		record, err = engine.ApplyVariance(context.Background(), testSignal(p.ID), calmMarket(), 10000)
		require.NoError(t, err)
	}

	entryTime := time.Now()
	require.NoError(t, engine.RecordExecutionResult(p.ID, record.ID, entryTime, 0.4, true))

	history, err := engine.History(p.ID, 0)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.True(t, last.OutcomeRecorded)
	assert.True(t, last.Success)
	assert.InDelta(t, 0.4, last.SlippagePips, 1e-9)

	err = engine.RecordExecutionResult(p.ID, "no-such-record", entryTime, 0, false)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	err = engine.RecordExecutionResult("ghost", record.ID, entryTime, 0, false)
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
}

func TestResetPersonalityCascades(t *testing.T) {
	engine := newTestEngine(5)
	p := testPersonality("p-reset")
	engine.InitializePersonality(p)

	_, err := engine.ApplyVariance(context.Background(), testSignal(p.ID), calmMarket(), 10000)
	require.NoError(t, err)

	engine.ResetPersonality(p.ID)

	_, err = engine.Profile(p.ID)
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
	_, err = engine.History(p.ID, 0)
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
	_, err = engine.SkipStats(p.ID)
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
	_, err = engine.ApplyVariance(context.Background(), testSignal(p.ID), calmMarket(), 10000)
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
}

func TestReinitializeStartsFreshHistory(t *testing.T) {
	engine := newTestEngine(11)
	p := testPersonality("p-fresh")
	engine.InitializePersonality(p)

	for i := 0; i < 20; i++ {
		_, err := engine.ApplyVariance(context.Background(), testSignal(p.ID), calmMarket(), 10000)
		require.NoError(t, err)
	}

	engine.InitializePersonality(p)
	history, err := engine.History(p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestApplyEntryDelayHonorsCancellation(t *testing.T) {
	engine := newTestEngine(3)
	record := &domain.ExecutionVariance{
		EntryTiming: domain.TimingResult{Delay: 10 * time.Second},
		MicroDelay:  200 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := engine.ApplyEntryDelay(ctx, record)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDefaultAccountBalanceApplied(t *testing.T) {
	engine := newTestEngine(21)
	p := testPersonality("p-balance")
	engine.InitializePersonality(p)

	signal := testSignal(p.ID)
	signal.Size = 0 // force the nominal-size derivation

	var record *domain.ExecutionVariance
	for record == nil {
		var err error
		record, err = engine.ApplyVariance(context.Background(), signal, calmMarket(), 0)
		require.NoError(t, err)
	}
	assert.InDelta(t, DefaultAccountBalance/100000.0, record.PositionSize.OriginalSize, 1e-9)
}
