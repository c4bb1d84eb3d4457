package personality

import "github.com/aristath/quirk/internal/domain"

// TraitCategories is the behavioral classification of a raw trait set.
type TraitCategories struct {
	Risk         string `json:"risk"`         // cautious | measured | aggressive
	Time         string `json:"time"`         // scalper | intraday | swing
	Style        string `json:"style"`        // conservative | balanced | opportunistic
	Emotional    string `json:"emotional"`    // stable | reactive | volatile
	Adaptability string `json:"adaptability"` // rigid | flexible | chameleon
}

// BehavioralTendencies describes how a trait set is expected to trade.
type BehavioralTendencies struct {
	TradeFrequency      string   `json:"trade_frequency"` // low | moderate | high
	HoldingPeriod       string   `json:"holding_period"`  // minutes | hours | days
	StopPlacement       string   `json:"stop_placement"`  // tight | standard | wide
	EntryStyle          string   `json:"entry_style"`     // hesitant | measured | impulsive
	VolatilityTolerance string   `json:"volatility_tolerance"`
	Notes               []string `json:"notes"`
}

// SessionModifier carries per-session adjustments derived from traits.
type SessionModifier struct {
	RiskAdjustment    float64  `json:"risk_adjustment"` // fractional, applied to base risk
	PreferredPairs    []string `json:"preferred_pairs"`
	OptimalConditions []string `json:"optimal_conditions"`
}

// Analyzer is the stateless trait classifier. All methods are deterministic
// given identical traits.
type Analyzer struct{}

// NewAnalyzer creates a trait analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// CategorizeTraits maps raw traits to behavioral categories using fixed
// weighted linear combinations.
func (a *Analyzer) CategorizeTraits(traits domain.PersonalityTraits) TraitCategories {
	cats := TraitCategories{}

	riskScore := 0.7*traits.RiskTolerance + 0.3*traits.Confidence
	switch {
	case riskScore < 40:
		cats.Risk = "cautious"
	case riskScore < 70:
		cats.Risk = "measured"
	default:
		cats.Risk = "aggressive"
	}

	timeScore := 0.8*traits.Patience + 0.2*traits.Discipline
	switch {
	case timeScore < 35:
		cats.Time = "scalper"
	case timeScore < 70:
		cats.Time = "intraday"
	default:
		cats.Time = "swing"
	}

	styleScore := 0.4*traits.Discipline + 0.3*(100-traits.Emotionality) + 0.3*(100-traits.RiskTolerance)
	switch {
	case styleScore >= 70:
		cats.Style = "conservative"
	case styleScore >= 40:
		cats.Style = "balanced"
	default:
		cats.Style = "opportunistic"
	}

	emotionalScore := 0.7*traits.Emotionality + 0.3*(100-traits.Discipline)
	switch {
	case emotionalScore < 35:
		cats.Emotional = "stable"
	case emotionalScore < 65:
		cats.Emotional = "reactive"
	default:
		cats.Emotional = "volatile"
	}

	switch {
	case traits.Adaptability < 40:
		cats.Adaptability = "rigid"
	case traits.Adaptability < 75:
		cats.Adaptability = "flexible"
	default:
		cats.Adaptability = "chameleon"
	}

	return cats
}

// AnalyzeBehavioralTendencies derives expected trading behavior from the
// trait categories.
func (a *Analyzer) AnalyzeBehavioralTendencies(traits domain.PersonalityTraits) BehavioralTendencies {
	cats := a.CategorizeTraits(traits)
	t := BehavioralTendencies{}

	switch cats.Time {
	case "scalper":
		t.TradeFrequency = "high"
		t.HoldingPeriod = "minutes"
	case "intraday":
		t.TradeFrequency = "moderate"
		t.HoldingPeriod = "hours"
	default:
		t.TradeFrequency = "low"
		t.HoldingPeriod = "days"
	}

	stopScore := 0.5*traits.Discipline + 0.5*(100-traits.RiskTolerance)
	switch {
	case stopScore >= 65:
		t.StopPlacement = "tight"
	case stopScore >= 40:
		t.StopPlacement = "standard"
	default:
		t.StopPlacement = "wide"
	}

	entryScore := 0.6*traits.Confidence + 0.4*(100-traits.Patience)
	switch {
	case entryScore < 40:
		t.EntryStyle = "hesitant"
	case entryScore < 70:
		t.EntryStyle = "measured"
	default:
		t.EntryStyle = "impulsive"
	}

	volScore := 0.5*traits.RiskTolerance + 0.5*traits.Adaptability
	switch {
	case volScore < 40:
		t.VolatilityTolerance = "low"
	case volScore < 70:
		t.VolatilityTolerance = "medium"
	default:
		t.VolatilityTolerance = "high"
	}

	if cats.Emotional == "volatile" {
		t.Notes = append(t.Notes, "prone to overtrading after losses")
	}
	if cats.Risk == "aggressive" && traits.Discipline < 50 {
		t.Notes = append(t.Notes, "position sizing drifts upward in winning streaks")
	}
	if cats.Adaptability == "rigid" {
		t.Notes = append(t.Notes, "slow to adjust to regime changes")
	}

	return t
}

// CalculateSessionModifiers computes per-session risk adjustments, preferred
// pairs and optimal-condition tags from the trait set.
func (a *Analyzer) CalculateSessionModifiers(traits domain.PersonalityTraits) map[domain.TradingSession]SessionModifier {
	cats := a.CategorizeTraits(traits)
	mods := make(map[domain.TradingSession]SessionModifier, 4)

	// Asian session rewards patience; thin liquidity punishes the impulsive.
	asian := SessionModifier{
		RiskAdjustment:    scaleAdjustment(0.4*traits.Patience+0.3*traits.Discipline+0.3*(100-traits.Emotionality), 0.15),
		PreferredPairs:    []string{"USDJPY", "AUDJPY", "AUDUSD", "NZDUSD"},
		OptimalConditions: []string{"range_bound", "low_volatility"},
	}
	if cats.Time == "swing" {
		asian.OptimalConditions = append(asian.OptimalConditions, "overnight_holds")
	}
	mods[domain.SessionAsian] = asian

	london := SessionModifier{
		RiskAdjustment:    scaleAdjustment(0.5*traits.Confidence+0.3*traits.RiskTolerance+0.2*traits.Discipline, 0.2),
		PreferredPairs:    []string{"EURUSD", "GBPUSD", "EURGBP", "GBPJPY"},
		OptimalConditions: []string{"trending", "high_liquidity"},
	}
	mods[domain.SessionLondon] = london

	newyork := SessionModifier{
		RiskAdjustment:    scaleAdjustment(0.4*traits.RiskTolerance+0.4*traits.Adaptability+0.2*traits.Confidence, 0.2),
		PreferredPairs:    []string{"EURUSD", "USDJPY", "USDCAD", "USDCHF"},
		OptimalConditions: []string{"news_driven", "high_volatility"},
	}
	if cats.Emotional == "stable" {
		newyork.OptimalConditions = append(newyork.OptimalConditions, "news_fades")
	}
	mods[domain.SessionNewYork] = newyork

	// The London/New York overlap is the most volatile window; only
	// adaptable, disciplined traits earn a positive adjustment there.
	overlap := SessionModifier{
		RiskAdjustment:    scaleAdjustment(0.5*traits.Adaptability+0.3*traits.Discipline+0.2*(100-traits.Emotionality), 0.25),
		PreferredPairs:    []string{"EURUSD", "GBPUSD", "USDJPY"},
		OptimalConditions: []string{"breakouts", "momentum"},
	}
	mods[domain.SessionOverlap] = overlap

	return mods
}

// scaleAdjustment maps a 0-100 weighted score to a symmetric fractional
// adjustment in [-maxAdj, +maxAdj], centered at score 50.
func scaleAdjustment(score, maxAdj float64) float64 {
	return (score - 50) / 50 * maxAdj
}
