package domain

import "time"

// EvolutionEventType classifies a recorded personality change
type EvolutionEventType string

const (
	EvolutionMilestoneReached EvolutionEventType = "milestone_reached"
	EvolutionSkillImprovement EvolutionEventType = "skill_improvement"
	EvolutionTraitEvolution   EvolutionEventType = "trait_evolution"
	EvolutionCrisisAdaptation EvolutionEventType = "crisis_adaptation"
)

// EvolutionEvent is an append-only change record with before/after trait
// snapshots. Reversible marks changes that natural drift may undo later;
// crisis adaptations to base risk are permanent.
type EvolutionEvent struct {
	ID             string             `json:"id"`
	PersonalityID  string             `json:"personality_id"`
	Type           EvolutionEventType `json:"type"`
	Description    string             `json:"description"`
	TraitsBefore   PersonalityTraits  `json:"traits_before"`
	TraitsAfter    PersonalityTraits  `json:"traits_after"`
	EvolutionScore float64            `json:"evolution_score"` // 0-100 magnitude of change
	Reversible     bool               `json:"reversible"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// TradingActivity is a periodic activity snapshot supplied by external
// performance telemetry, consumed by the evolution engine.
type TradingActivity struct {
	TotalTrades       int       `json:"total_trades"`
	DaysActive        int       `json:"days_active"`
	TotalProfit       float64   `json:"total_profit"` // fraction of starting balance
	WinRate           float64   `json:"win_rate"`     // 0-1
	ConsecutiveLosses int       `json:"consecutive_losses"`
	CurrentDrawdown   float64   `json:"current_drawdown"`   // fraction, negative under water
	Trailing30Return  float64   `json:"trailing_30_return"` // fraction
	AvgTradesPerDay   float64   `json:"avg_trades_per_day"`
	SnapshotAt        time.Time `json:"snapshot_at"`
}
