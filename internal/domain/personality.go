// Package domain provides core domain models and types.
package domain

import "time"

// TraitName identifies one of the six behavioral traits
type TraitName string

const (
	TraitRiskTolerance TraitName = "risk_tolerance"
	TraitPatience      TraitName = "patience"
	TraitConfidence    TraitName = "confidence"
	TraitEmotionality  TraitName = "emotionality"
	TraitDiscipline    TraitName = "discipline"
	TraitAdaptability  TraitName = "adaptability"
)

// AllTraitNames lists every trait in a stable order
var AllTraitNames = []TraitName{
	TraitRiskTolerance,
	TraitPatience,
	TraitConfidence,
	TraitEmotionality,
	TraitDiscipline,
	TraitAdaptability,
}

// TraitMin and TraitMax bound every trait value.
const (
	TraitMin = 0.0
	TraitMax = 100.0
)

// Risk bounds for the per-trade base risk, in percent of account balance.
const (
	MinBaseRiskPerTrade = 0.3
	MaxBaseRiskPerTrade = 2.5
)

// PersonalityTraits holds the six 0-100 behavioral traits that drive all
// variance and risk decisions.
type PersonalityTraits struct {
	RiskTolerance float64 `json:"risk_tolerance"`
	Patience      float64 `json:"patience"`
	Confidence    float64 `json:"confidence"`
	Emotionality  float64 `json:"emotionality"`
	Discipline    float64 `json:"discipline"`
	Adaptability  float64 `json:"adaptability"`
}

// Get returns a trait value by name. Unknown names return 0.
func (t PersonalityTraits) Get(name TraitName) float64 {
	switch name {
	case TraitRiskTolerance:
		return t.RiskTolerance
	case TraitPatience:
		return t.Patience
	case TraitConfidence:
		return t.Confidence
	case TraitEmotionality:
		return t.Emotionality
	case TraitDiscipline:
		return t.Discipline
	case TraitAdaptability:
		return t.Adaptability
	}
	return 0
}

// Set assigns a trait value by name, clamping to [TraitMin, TraitMax].
// Unknown names are ignored.
func (t *PersonalityTraits) Set(name TraitName, value float64) {
	value = ClampTrait(value)
	switch name {
	case TraitRiskTolerance:
		t.RiskTolerance = value
	case TraitPatience:
		t.Patience = value
	case TraitConfidence:
		t.Confidence = value
	case TraitEmotionality:
		t.Emotionality = value
	case TraitDiscipline:
		t.Discipline = value
	case TraitAdaptability:
		t.Adaptability = value
	}
}

// Clamp forces every trait into [TraitMin, TraitMax].
func (t *PersonalityTraits) Clamp() {
	for _, name := range AllTraitNames {
		t.Set(name, t.Get(name))
	}
}

// ClampTrait bounds a single trait value.
func ClampTrait(v float64) float64 {
	if v < TraitMin {
		return TraitMin
	}
	if v > TraitMax {
		return TraitMax
	}
	return v
}

// TradingSession identifies a market session window
type TradingSession string

const (
	SessionAsian   TradingSession = "asian"
	SessionLondon  TradingSession = "london"
	SessionNewYork TradingSession = "newyork"
	SessionOverlap TradingSession = "overlap"
)

// TimePreferences describes when a personality likes to trade
type TimePreferences struct {
	PreferredSessions []TradingSession `json:"preferred_sessions"`
	ActiveHourStart   int              `json:"active_hour_start"` // UTC hour, inclusive
	ActiveHourEnd     int              `json:"active_hour_end"`   // UTC hour, exclusive
	WeekendTrading    bool             `json:"weekend_trading"`
}

// SizingBias selects how a position size is rounded to a lot increment
type SizingBias string

const (
	SizingBiasUp            SizingBias = "up"
	SizingBiasDown          SizingBias = "down"
	SizingBiasNearest       SizingBias = "nearest"
	SizingBiasPsychological SizingBias = "psychological"
)

// GapStrategy describes how a personality treats weekend gaps
type GapStrategy string

const (
	GapStrategyFade   GapStrategy = "fade"
	GapStrategyFollow GapStrategy = "follow"
	GapStrategyAvoid  GapStrategy = "avoid"
)

// NewsReactionStyle describes how a personality responds to scheduled news
type NewsReactionStyle string

const (
	NewsReactionAnticipate NewsReactionStyle = "anticipate"
	NewsReactionReact      NewsReactionStyle = "react"
	NewsReactionIgnore     NewsReactionStyle = "ignore"
)

// BehavioralPatterns holds the softer habits layered on top of raw traits.
type BehavioralPatterns struct {
	RoundNumberAvoidance float64           `json:"round_number_avoidance"` // 0-1
	SizingBias           SizingBias        `json:"sizing_bias"`
	GapStrategy          GapStrategy       `json:"gap_strategy"`
	NewsReaction         NewsReactionStyle `json:"news_reaction"`
	SundayOpenPreference float64           `json:"sunday_open_preference"` // 0-1 baseline willingness
}

// RiskAppetite is the risk configuration block of a personality.
// BaseRiskPerTrade and MaxPortfolioRisk are percentages of account balance;
// the variance band and MaxSizeDeviation are fractions.
type RiskAppetite struct {
	BaseRiskPerTrade    float64 `json:"base_risk_per_trade"`
	MinRiskVariance     float64 `json:"min_risk_variance"`
	MaxRiskVariance     float64 `json:"max_risk_variance"`
	MaxPortfolioRisk    float64 `json:"max_portfolio_risk"`
	MaxConsecutiveSkips int     `json:"max_consecutive_skips"`
	MaxSizeDeviation    float64 `json:"max_size_deviation"`
}

// EvolutionConfig controls whether and how a personality's traits drift
// over its trading lifetime.
type EvolutionConfig struct {
	Enabled         bool        `json:"enabled"`
	ImprovingTraits []TraitName `json:"improving_traits"`
	DegradingTraits []TraitName `json:"degrading_traits"`
	EvolutionRate   float64     `json:"evolution_rate"` // 0-1, scales drift magnitude
}

// TradingPersonality is the per-account configuration bundle of behavioral
// traits and derived parameters. It is created once by the generator; the
// evolution engine mutates traits and risk appetite in place; deletion only
// happens via an explicit reset that cascades through every engine.
type TradingPersonality struct {
	ID              string             `json:"id"`
	AccountID       string             `json:"account_id"`
	Archetype       Archetype          `json:"archetype"`
	Traits          PersonalityTraits  `json:"traits"`
	TimePreferences TimePreferences    `json:"time_preferences"`
	PrimaryPairs    []string           `json:"primary_pairs"`
	SecondaryPairs  []string           `json:"secondary_pairs"`
	RiskAppetite    RiskAppetite       `json:"risk_appetite"`
	Behavior        BehavioralPatterns `json:"behavior"`
	Evolution       *EvolutionConfig   `json:"evolution,omitempty"`
	ExperienceLevel float64            `json:"experience_level"` // 0-100
	TradeCount      int                `json:"trade_count"`
	CreatedAt       time.Time          `json:"created_at"`
	EvolvedAt       time.Time          `json:"evolved_at"`
}

// Archetype names one of the ten personality templates
type Archetype string

const (
	ArchetypeConservativeScalper Archetype = "conservative_scalper"
	ArchetypeAggressiveScalper   Archetype = "aggressive_scalper"
	ArchetypePatientSwing        Archetype = "patient_swing"
	ArchetypeMomentumChaser      Archetype = "momentum_chaser"
	ArchetypeNewsTrader          Archetype = "news_trader"
	ArchetypeWeekendGapTrader    Archetype = "weekend_gap_trader"
	ArchetypeDisciplinedGrinder  Archetype = "disciplined_grinder"
	ArchetypeEmotionalRookie     Archetype = "emotional_rookie"
	ArchetypeAdaptiveVeteran     Archetype = "adaptive_veteran"
	ArchetypeBalancedAllrounder  Archetype = "balanced_allrounder"
)

// AllArchetypes lists every archetype in round-robin order
var AllArchetypes = []Archetype{
	ArchetypeConservativeScalper,
	ArchetypeAggressiveScalper,
	ArchetypePatientSwing,
	ArchetypeMomentumChaser,
	ArchetypeNewsTrader,
	ArchetypeWeekendGapTrader,
	ArchetypeDisciplinedGrinder,
	ArchetypeEmotionalRookie,
	ArchetypeAdaptiveVeteran,
	ArchetypeBalancedAllrounder,
}
