package variance

import (
	"fmt"
	"math"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/events"
)

const (
	// Minimum samples before a statistical check is meaningful.
	minSkipSamples    = 50
	minDelaySamples   = 30
	minWeekendSamples = 20

	skipRateTolerance    = 0.03
	weekendRateTolerance = 0.40
)

// ValidateVarianceEngine runs the advisory self-check over a personality's
// accumulated behavior. The report flags drift between configured and
// observed variance but never blocks trading.
func (e *ExecutionVarianceEngine) ValidateVarianceEngine(personalityID string) (domain.ValidationReport, error) {
	if !e.profiles.Has(personalityID) {
		return domain.ValidationReport{}, fmt.Errorf("variance engine: %w: %s", ErrPersonalityNotRegistered, personalityID)
	}

	report := domain.ValidationReport{
		PersonalityID: personalityID,
		IsValid:       true,
		CheckedAt:     e.now(),
	}

	e.validateSkipBehavior(personalityID, &report)
	e.validateTimingBehavior(personalityID, &report)
	e.validateWeekendBehavior(personalityID, &report)

	report.IsValid = len(report.Issues) == 0

	e.log.Info().
		Str("personality_id", personalityID).
		Bool("is_valid", report.IsValid).
		Int("issue_count", len(report.Issues)).
		Msg("Variance validation completed")

	e.events.EmitTyped("variance", &events.ValidationCompletedData{
		PersonalityID: personalityID,
		IsValid:       report.IsValid,
		IssueCount:    len(report.Issues),
	})

	return report, nil
}

func (e *ExecutionVarianceEngine) validateSkipBehavior(personalityID string, report *domain.ValidationReport) {
	stats, err := e.skip.Stats(personalityID)
	if err != nil {
		return
	}
	if stats.TotalSignals < minSkipSamples {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("skip rate check deferred: %d of %d samples", stats.TotalSignals, minSkipSamples))
		return
	}
	drift := math.Abs(stats.ActualSkipRate - stats.TargetSkipRate)
	if drift > skipRateTolerance {
		report.Issues = append(report.Issues,
			fmt.Sprintf("skip rate drifted: actual %.1f%% vs target %.1f%%",
				stats.ActualSkipRate*100, stats.TargetSkipRate*100))
	}
}

func (e *ExecutionVarianceEngine) validateTimingBehavior(personalityID string, report *domain.ValidationReport) {
	stats, err := e.timing.Stats(personalityID)
	if err != nil {
		return
	}
	if stats.Count < minDelaySamples {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("timing check deferred: %d of %d samples", stats.Count, minDelaySamples))
		return
	}

	avg := stats.AvgDelay
	if avg < domain.MinEntryDelay || avg > domain.MaxEntryDelay {
		report.Issues = append(report.Issues,
			fmt.Sprintf("average entry delay %.1fs outside the 1-30s envelope", avg.Seconds()))
	}

	// A near-zero spread means the delays have collapsed into a uniform,
	// machine-like pattern.
	if stats.StdDevDelay.Seconds() < 0.5 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("entry delay spread too narrow (stddev %.2fs), timing looks mechanical",
				stats.StdDevDelay.Seconds()))
	}
}

func (e *ExecutionVarianceEngine) validateWeekendBehavior(personalityID string, report *domain.ValidationReport) {
	stats, err := e.weekend.Stats(personalityID)
	if err != nil {
		return
	}
	if stats.TotalDecisions < minWeekendSamples {
		return
	}
	if stats.AvgProbability <= 0 {
		return
	}
	relativeDrift := math.Abs(stats.TradeRate-stats.AvgProbability) / stats.AvgProbability
	if relativeDrift > weekendRateTolerance {
		report.Issues = append(report.Issues,
			fmt.Sprintf("weekend participation %.1f%% inconsistent with configured probability %.1f%%",
				stats.TradeRate*100, stats.AvgProbability*100))
	}
}
