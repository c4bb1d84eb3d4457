package variance

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
)

func newMicroDelayEngine(seed uint64, load LoadProvider) *MicroDelayEngine {
	return NewMicroDelayEngine(rng.NewSeeded(seed), load, zerolog.Nop())
}

func confidentMicroParams() MicroDelayParams {
	return MicroDelayParams{
		BaseMin: 120 * time.Millisecond,
		BaseMax: 280 * time.Millisecond,
	}
}

func TestCalculateDelayBounds(t *testing.T) {
	engine := newMicroDelayEngine(2, fixedLoad{0.9})
	engine.Register("p1", confidentMicroParams())

	actions := []ActionType{ActionPlaceOrder, ActionModifyOrder, ActionCancelOrder}
	markets := []domain.MarketConditions{
		calmMarket(),
		{Volatility: 2.0, Session: domain.SessionOverlap, IsNewsTime: true},
	}

	for _, action := range actions {
		for _, market := range markets {
			for i := 0; i < 200; i++ {
				delay, err := engine.CalculateDelay("p1", action, market)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, delay, domain.MinMicroDelay)
				assert.LessOrEqual(t, delay, domain.MaxMicroDelay)
			}
		}
	}
}

func TestCalculateDelayNilLoadProvider(t *testing.T) {
	engine := newMicroDelayEngine(2, nil)
	engine.Register("p1", confidentMicroParams())

	delay, err := engine.CalculateDelay("p1", ActionPlaceOrder, calmMarket())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, delay, domain.MinMicroDelay)
	assert.LessOrEqual(t, delay, domain.MaxMicroDelay)
}

func TestCancelActionsAreQuickerOnAverage(t *testing.T) {
	place := newMicroDelayEngine(31, fixedLoad{0})
	place.Register("p1", confidentMicroParams())
	cancel := newMicroDelayEngine(31, fixedLoad{0})
	cancel.Register("p1", confidentMicroParams())

	var placeSum, cancelSum time.Duration
	for i := 0; i < 500; i++ {
		a, err := place.CalculateDelay("p1", ActionPlaceOrder, calmMarket())
		require.NoError(t, err)
		placeSum += a

		b, err := cancel.CalculateDelay("p1", ActionCancelOrder, calmMarket())
		require.NoError(t, err)
		cancelSum += b
	}
	assert.Less(t, cancelSum, placeSum)
}

func TestMicroDelayStats(t *testing.T) {
	engine := newMicroDelayEngine(7, fixedLoad{0.1})
	engine.Register("p1", confidentMicroParams())

	for i := 0; i < 100; i++ {
		_, err := engine.CalculateDelay("p1", ActionPlaceOrder, calmMarket())
		require.NoError(t, err)
	}

	stats, err := engine.Stats("p1")
	require.NoError(t, err)
	assert.Equal(t, 100, stats.Count)
	assert.GreaterOrEqual(t, stats.AvgDelay, domain.MinMicroDelay)
	assert.LessOrEqual(t, stats.AvgDelay, domain.MaxMicroDelay)
	assert.Greater(t, stats.StdDevDelay, time.Duration(0))
}

func TestApplyDelayCompletes(t *testing.T) {
	engine := newMicroDelayEngine(1, nil)

	start := time.Now()
	err := engine.ApplyDelay(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestApplyDelayCancelled(t *testing.T) {
	engine := newMicroDelayEngine(1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := engine.ApplyDelay(ctx, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMicroDelayUnknownPersonality(t *testing.T) {
	engine := newMicroDelayEngine(1, nil)
	_, err := engine.CalculateDelay("ghost", ActionPlaceOrder, calmMarket())
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
}
