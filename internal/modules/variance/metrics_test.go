package variance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/quirk/internal/domain"
)

func TestCalculateVarianceMetrics(t *testing.T) {
	engine := newTestEngine(19)
	p := testPersonality("p-metrics")
	engine.InitializePersonality(p)

	signal := testSignal(p.ID)
	market := calmMarket()
	var recorded *domain.ExecutionVariance
	for i := 0; i < 200; i++ {
		record, err := engine.ApplyVariance(context.Background(), signal, market, 10000)
		require.NoError(t, err)
		if record != nil {
			recorded = record
		}
	}
	require.NotNil(t, recorded)
	require.NoError(t, engine.RecordExecutionResult(p.ID, recorded.ID, time.Now(), 0.8, true))

	now := time.Now()
	metrics, err := engine.CalculateVarianceMetrics(p.ID, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Greater(t, metrics.SignalCount, 0)
	assert.GreaterOrEqual(t, metrics.AvgEntryDelaySeconds, 1.0)
	assert.LessOrEqual(t, metrics.AvgEntryDelaySeconds, 30.0)
	assert.Greater(t, metrics.StdDevEntryDelaySeconds, 0.0)

	bucketTotal := 0
	for _, label := range domain.DelayBucketLabels {
		bucketTotal += metrics.DelayBuckets[label]
	}
	assert.Equal(t, metrics.SignalCount, bucketTotal, "every record lands in exactly one delay bucket")

	latencyTotal := 0
	for _, label := range domain.LatencyBucketLabels {
		latencyTotal += metrics.LatencyBuckets[label]
	}
	assert.Equal(t, metrics.SignalCount, latencyTotal)

	assert.Equal(t, 1.0, metrics.ExecutionSuccessRate, "the only recorded outcome succeeded")
	assert.InDelta(t, 0.8, metrics.AvgSlippagePips, 1e-9)
	assert.Greater(t, metrics.SkipRate, 0.0)
}

func TestCalculateVarianceMetricsEmptyWindow(t *testing.T) {
	engine := newTestEngine(19)
	p := testPersonality("p-empty")
	engine.InitializePersonality(p)

	past := time.Now().Add(-48 * time.Hour)
	metrics, err := engine.CalculateVarianceMetrics(p.ID, past, past.Add(time.Hour))
	require.NoError(t, err)

	assert.Zero(t, metrics.SignalCount)
	assert.Zero(t, metrics.AvgEntryDelaySeconds)
	require.NotNil(t, metrics.DelayBuckets)
	require.NotNil(t, metrics.LatencyBuckets)
	for _, label := range domain.DelayBucketLabels {
		assert.Zero(t, metrics.DelayBuckets[label])
	}
}

func TestCalculateVarianceMetricsUnknownPersonality(t *testing.T) {
	engine := newTestEngine(1)
	_, err := engine.CalculateVarianceMetrics("ghost", time.Now().Add(-time.Hour), time.Now())
	assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
}

func TestValidateVarianceEngine(t *testing.T) {
	engine := newTestEngine(29)
	p := testPersonality("p-validate")
	engine.InitializePersonality(p)

	t.Run("sparse history defers checks", func(t *testing.T) {
		report, err := engine.ValidateVarianceEngine(p.ID)
		require.NoError(t, err)
		assert.True(t, report.IsValid)
		assert.NotEmpty(t, report.Recommendations)
	})

	t.Run("healthy behavior validates clean", func(t *testing.T) {
		for i := 0; i < 300; i++ {
			_, err := engine.ApplyVariance(context.Background(), testSignal(p.ID), calmMarket(), 10000)
			require.NoError(t, err)
		}
		report, err := engine.ValidateVarianceEngine(p.ID)
		require.NoError(t, err)
		assert.True(t, report.IsValid, "issues: %v", report.Issues)
		assert.False(t, report.CheckedAt.IsZero())
	})

	t.Run("unknown personality fails fast", func(t *testing.T) {
		_, err := engine.ValidateVarianceEngine("ghost")
		assert.ErrorIs(t, err, ErrPersonalityNotRegistered)
	})
}
