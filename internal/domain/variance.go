package domain

import "time"

// Variance bounds shared by the engines and their validators.
const (
	MinEntryDelay = 1 * time.Second
	MaxEntryDelay = 30 * time.Second

	MinMicroDelay = 100 * time.Millisecond
	MaxMicroDelay = 500 * time.Millisecond

	MinSkipProbability = 0.01
	MaxSkipProbability = 0.25
)

// History buffer caps. All per-personality histories are bounded FIFO.
const (
	ExecutionHistoryCap = 1000
	DelayHistoryCap     = 500
	SkipHistoryCap      = 500
	WeekendHistoryCap   = 200
	EvolutionHistoryCap = 256
)

// TimingResult is the outcome of the timing variance computation.
type TimingResult struct {
	Delay  time.Duration `json:"delay" msgpack:"delay"`
	Reason string        `json:"reason" msgpack:"reason"`
}

// SizingResult is the outcome of the sizing variance computation.
type SizingResult struct {
	OriginalSize float64 `json:"original_size" msgpack:"original_size"`
	AdjustedSize float64 `json:"adjusted_size" msgpack:"adjusted_size"`
	Deviation    float64 `json:"deviation" msgpack:"deviation"` // |adjusted-original|/original
	Method       string  `json:"method" msgpack:"method"`
}

// LevelResult is the outcome of a stop-loss or take-profit adjustment.
type LevelResult struct {
	OriginalLevel  float64 `json:"original_level" msgpack:"original_level"`
	AdjustedLevel  float64 `json:"adjusted_level" msgpack:"adjusted_level"`
	AdjustmentPips float64 `json:"adjustment_pips" msgpack:"adjustment_pips"` // signed
}

// SkipResult is the outcome of the skip check. MicroDelay is always present,
// whether or not the signal is skipped.
type SkipResult struct {
	Skip        bool          `json:"skip" msgpack:"skip"`
	Probability float64       `json:"probability" msgpack:"probability"`
	Reason      string        `json:"reason" msgpack:"reason"`
	MicroDelay  time.Duration `json:"micro_delay" msgpack:"micro_delay"`
}

// ExecutionVariance is the record produced for every processed, non-skipped
// signal. ActualEntryTime, SlippagePips and Success are placeholders filled
// in later by the external order-placement system.
type ExecutionVariance struct {
	ID            string        `json:"id" msgpack:"id"`
	PersonalityID string        `json:"personality_id" msgpack:"personality_id"`
	Signal        Signal        `json:"signal" msgpack:"signal"`
	EntryTiming   TimingResult  `json:"entry_timing" msgpack:"entry_timing"`
	PositionSize  SizingResult  `json:"position_size" msgpack:"position_size"`
	StopLoss      LevelResult   `json:"stop_loss" msgpack:"stop_loss"`
	TakeProfit    LevelResult   `json:"take_profit" msgpack:"take_profit"`
	MicroDelay    time.Duration `json:"micro_delay" msgpack:"micro_delay"`
	CreatedAt     time.Time     `json:"created_at" msgpack:"created_at"`

	// Execution outcome, written back by the order system.
	ActualEntryTime time.Time `json:"actual_entry_time,omitempty" msgpack:"actual_entry_time"`
	SlippagePips    float64   `json:"slippage_pips" msgpack:"slippage_pips"`
	Success         bool      `json:"success" msgpack:"success"`
	OutcomeRecorded bool      `json:"outcome_recorded" msgpack:"outcome_recorded"`
}

// VarianceMetrics is an on-demand aggregate over a time-windowed history
// slice. An empty window yields the zero value with initialized (all-zero)
// bucket maps, never an error.
type VarianceMetrics struct {
	PersonalityID string    `json:"personality_id"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	SignalCount   int       `json:"signal_count"`

	AvgEntryDelaySeconds    float64        `json:"avg_entry_delay_seconds"`
	StdDevEntryDelaySeconds float64        `json:"stddev_entry_delay_seconds"`
	DelayBuckets            map[string]int `json:"delay_buckets"`
	LatencyBuckets          map[string]int `json:"latency_buckets"`

	AvgSizeDeviation     float64 `json:"avg_size_deviation"`
	SkipRate             float64 `json:"skip_rate"`
	ExecutionSuccessRate float64 `json:"execution_success_rate"`
	AvgSlippagePips      float64 `json:"avg_slippage_pips"`
}

// DelayBucketLabels are the fixed entry-delay histogram buckets.
var DelayBucketLabels = []string{"1-5s", "6-10s", "11-20s", "21-30s"}

// LatencyBucketLabels are the fixed micro-delay histogram buckets.
var LatencyBucketLabels = []string{"100-200ms", "201-300ms", "301-400ms", "401-500ms"}

// ValidationReport is the advisory output of the engine self-check. It never
// blocks trading.
type ValidationReport struct {
	PersonalityID   string    `json:"personality_id"`
	IsValid         bool      `json:"is_valid"`
	Issues          []string  `json:"issues"`
	Recommendations []string  `json:"recommendations"`
	CheckedAt       time.Time `json:"checked_at"`
}
