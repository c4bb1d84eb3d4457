package variance

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/aristath/quirk/internal/domain"
)

// CalculateVarianceMetrics aggregates the personality's variance records
// whose CreatedAt falls inside [start, end]. An empty window yields a
// zero-valued metrics object with initialized bucket maps.
func (e *ExecutionVarianceEngine) CalculateVarianceMetrics(personalityID string, start, end time.Time) (domain.VarianceMetrics, error) {
	records, err := e.History(personalityID, 0)
	if err != nil {
		return domain.VarianceMetrics{}, err
	}

	metrics := domain.VarianceMetrics{
		PersonalityID:  personalityID,
		WindowStart:    start,
		WindowEnd:      end,
		DelayBuckets:   emptyBuckets(domain.DelayBucketLabels),
		LatencyBuckets: emptyBuckets(domain.LatencyBucketLabels),
	}

	var (
		delays     []float64
		deviations []float64
		slippages  []float64
		outcomes   int
		successes  int
	)

	for _, r := range records {
		if r.CreatedAt.Before(start) || r.CreatedAt.After(end) {
			continue
		}
		metrics.SignalCount++

		delaySec := r.EntryTiming.Delay.Seconds()
		delays = append(delays, delaySec)
		metrics.DelayBuckets[delayBucket(delaySec)]++
		metrics.LatencyBuckets[latencyBucket(r.MicroDelay)]++
		deviations = append(deviations, r.PositionSize.Deviation)

		if r.OutcomeRecorded {
			outcomes++
			if r.Success {
				successes++
			}
			slippages = append(slippages, r.SlippagePips)
		}
	}

	if metrics.SignalCount == 0 {
		return metrics, nil
	}

	metrics.AvgEntryDelaySeconds = stat.Mean(delays, nil)
	if len(delays) > 1 {
		metrics.StdDevEntryDelaySeconds = stat.StdDev(delays, nil)
	}
	metrics.AvgSizeDeviation = stat.Mean(deviations, nil)

	if outcomes > 0 {
		metrics.ExecutionSuccessRate = float64(successes) / float64(outcomes)
		metrics.AvgSlippagePips = stat.Mean(slippages, nil)
	}

	// The skip rate lives in the skip engine's counters, which also cover
	// signals that never produced a record.
	if skipStats, skipErr := e.skip.Stats(personalityID); skipErr == nil {
		metrics.SkipRate = skipStats.ActualSkipRate
	}

	return metrics, nil
}

func emptyBuckets(labels []string) map[string]int {
	buckets := make(map[string]int, len(labels))
	for _, l := range labels {
		buckets[l] = 0
	}
	return buckets
}

func delayBucket(seconds float64) string {
	switch {
	case seconds <= 5:
		return domain.DelayBucketLabels[0]
	case seconds <= 10:
		return domain.DelayBucketLabels[1]
	case seconds <= 20:
		return domain.DelayBucketLabels[2]
	default:
		return domain.DelayBucketLabels[3]
	}
}

func latencyBucket(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms <= 200:
		return domain.LatencyBucketLabels[0]
	case ms <= 300:
		return domain.LatencyBucketLabels[1]
	case ms <= 400:
		return domain.LatencyBucketLabels[2]
	default:
		return domain.LatencyBucketLabels[3]
	}
}
