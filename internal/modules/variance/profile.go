// Package variance implements the six per-personality variance sub-engines
// and the orchestrating execution-variance engine. Every engine keys its
// state by personality id with an explicit register/reset lifecycle.
package variance

import (
	"time"

	"github.com/aristath/quirk/internal/domain"
)

// TimingParams are the timing engine's derived parameters.
type TimingParams struct {
	BaseDelayMin        time.Duration `json:"base_delay_min"`
	BaseDelayMax        time.Duration `json:"base_delay_max"`
	VolatilityThreshold float64       `json:"volatility_threshold"`
	Consistency         float64       `json:"consistency"` // 0-1, discipline-driven
}

// SizingParams are the sizing engine's derived parameters.
type SizingParams struct {
	Bias         domain.SizingBias `json:"bias"`
	MaxDeviation float64           `json:"max_deviation"`
}

// LevelParams are the level engine's derived parameters.
type LevelParams struct {
	BaseJitterPips       float64 `json:"base_jitter_pips"` // 1-3
	Disciplined          bool    `json:"disciplined"`      // normal-shaped jitter when true
	RoundNumberAvoidance float64 `json:"round_number_avoidance"`
}

// SkipParams are the skip engine's derived parameters.
type SkipParams struct {
	BaseRate       float64 `json:"base_rate"` // 0.02-0.12
	MaxConsecutive int     `json:"max_consecutive"`
}

// MicroDelayParams are the micro-delay engine's derived parameters.
type MicroDelayParams struct {
	BaseMin time.Duration `json:"base_min"`
	BaseMax time.Duration `json:"base_max"`
}

// WeekendParams are the weekend engine's derived parameters.
type WeekendParams struct {
	SundayProbabilitySeed float64                  `json:"sunday_probability_seed"` // static preference
	GapStrategy           domain.GapStrategy       `json:"gap_strategy"`
	NewsReaction          domain.NewsReactionStyle `json:"news_reaction"`
	RiskTolerance         float64                  `json:"risk_tolerance"`
	PrefersAsianSession   bool                     `json:"prefers_asian_session"`
}

// Profile is the concrete, engine-facing parameter set derived from a
// personality's raw traits. It is cached per personality id and regenerated
// whenever the personality is (re)registered.
type Profile struct {
	PersonalityID string           `json:"personality_id"`
	Timing        TimingParams     `json:"timing"`
	Sizing        SizingParams     `json:"sizing"`
	Level         LevelParams      `json:"level"`
	Skip          SkipParams       `json:"skip"`
	MicroDelay    MicroDelayParams `json:"micro_delay"`
	Weekend       WeekendParams    `json:"weekend"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// DeriveProfile translates raw traits into the concrete engine parameters.
func DeriveProfile(p *domain.TradingPersonality, now time.Time) Profile {
	t := p.Traits

	// Patient traders sit on signals longer; impatient ones fire quickly.
	baseMin := 1 + t.Patience/100*4   // 1-5s
	baseMax := 4 + t.Patience/100*14  // 4-18s
	if baseMax <= baseMin {
		baseMax = baseMin + 1
	}

	// High risk tolerance keeps trading calmly through larger volatility.
	volThreshold := 1.2 + t.RiskTolerance/100*0.8 // 1.2-2.0

	// Discipline drives skip-rate down, emotionality drives it up: 2-12%.
	skipRate := 0.02 + (0.6*t.Emotionality+0.4*(100-t.Discipline))/100*0.10

	prefersAsian := false
	for _, s := range p.TimePreferences.PreferredSessions {
		if s == domain.SessionAsian {
			prefersAsian = true
			break
		}
	}

	return Profile{
		PersonalityID: p.ID,
		Timing: TimingParams{
			BaseDelayMin:        time.Duration(baseMin * float64(time.Second)),
			BaseDelayMax:        time.Duration(baseMax * float64(time.Second)),
			VolatilityThreshold: volThreshold,
			Consistency:         t.Discipline / 100,
		},
		Sizing: SizingParams{
			Bias:         p.Behavior.SizingBias,
			MaxDeviation: p.RiskAppetite.MaxSizeDeviation,
		},
		Level: LevelParams{
			BaseJitterPips:       1 + (0.5*t.Emotionality+0.5*(100-t.Discipline))/100*2, // 1-3
			Disciplined:          t.Discipline >= 60,
			RoundNumberAvoidance: p.Behavior.RoundNumberAvoidance,
		},
		Skip: SkipParams{
			BaseRate:       skipRate,
			MaxConsecutive: p.RiskAppetite.MaxConsecutiveSkips,
		},
		MicroDelay: MicroDelayParams{
			BaseMin: domain.MinMicroDelay + time.Duration((100-t.Confidence)/100*float64(100*time.Millisecond)),
			BaseMax: 250*time.Millisecond + time.Duration((100-t.Confidence)/100*float64(150*time.Millisecond)),
		},
		Weekend: WeekendParams{
			SundayProbabilitySeed: p.Behavior.SundayOpenPreference,
			GapStrategy:           p.Behavior.GapStrategy,
			NewsReaction:          p.Behavior.NewsReaction,
			RiskTolerance:         t.RiskTolerance,
			PrefersAsianSession:   prefersAsian,
		},
		GeneratedAt: now,
	}
}
