// Package risk computes per-trade risk percentages from personality,
// market, performance and psychological inputs, and gates trades against
// portfolio-level risk limits.
package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/modules/personality"
)

// Adjustment term bounds. Each term is clamped independently before the
// terms are summed into the final multiplier.
const (
	maxPerformanceAdj   = 0.5
	maxMarketAdj        = 0.3
	maxPsychologicalAdj = 0.4
	maxTimeAdj          = 0.2
	maxPairAdj          = 0.1
)

// VarianceBand is the acceptable band around the computed risk percentage.
type VarianceBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AppetiteResult is the outcome of a risk-appetite calculation. Warnings
// are advisory only and are never enforced here.
type AppetiteResult struct {
	RiskPercent  float64            `json:"risk_percent"`
	VarianceBand VarianceBand       `json:"variance_band"`
	Adjustments  map[string]float64 `json:"adjustments"`
	Reasoning    []string           `json:"reasoning"`
	Warnings     []string           `json:"warnings"`
}

// Engine computes risk appetite. It is stateless; all inputs arrive per call.
type Engine struct {
	analyzer *personality.Analyzer
	log      zerolog.Logger
}

// NewEngine creates a risk-appetite engine.
func NewEngine(analyzer *personality.Analyzer, log zerolog.Logger) *Engine {
	return &Engine{
		analyzer: analyzer,
		log:      log.With().Str("engine", "risk_appetite").Logger(),
	}
}

// CalculateRiskAppetite sums five independently bounded adjustment terms as
// a fractional multiplier on the personality's base risk, clamps the result
// to [0.3%, 2.5%], and derives the variance band.
func (e *Engine) CalculateRiskAppetite(
	p *domain.TradingPersonality,
	market domain.MarketConditions,
	perf domain.PerformanceFactors,
	psych domain.PsychologicalState,
	pair string,
	hour int,
) AppetiteResult {
	res := AppetiteResult{
		Adjustments: make(map[string]float64, 5),
	}

	perfAdj := e.performanceAdjustment(perf)
	marketAdj := e.marketAdjustment(p, market)
	psychAdj := e.psychologicalAdjustment(psych)
	timeAdj := e.timeAdjustment(p, hour)
	pairAdj := e.pairAdjustment(p, pair)

	res.Adjustments["performance"] = perfAdj
	res.Adjustments["market"] = marketAdj
	res.Adjustments["psychological"] = psychAdj
	res.Adjustments["time"] = timeAdj
	res.Adjustments["pair"] = pairAdj

	multiplier := 1 + perfAdj + marketAdj + psychAdj + timeAdj + pairAdj
	risk := p.RiskAppetite.BaseRiskPerTrade * multiplier
	risk = clamp(risk, domain.MinBaseRiskPerTrade, domain.MaxBaseRiskPerTrade)
	res.RiskPercent = risk

	// Emotionality widens the band, discipline narrows it.
	bandMult := 0.05 + (0.7*p.Traits.Emotionality+0.3*(100-p.Traits.Discipline))/100*0.20
	bandMult = clamp(bandMult, 0.05, 0.25)
	res.VarianceBand = VarianceBand{
		Min: risk * (1 - bandMult),
		Max: risk * (1 + bandMult),
	}

	res.Reasoning = append(res.Reasoning,
		fmt.Sprintf("base risk %.2f%% (archetype %s)", p.RiskAppetite.BaseRiskPerTrade, p.Archetype),
		fmt.Sprintf("performance adjustment %+.2f (win rate %.0f%%, %d consecutive losses)",
			perfAdj, perf.WinRate*100, perf.ConsecutiveLosses),
		fmt.Sprintf("market adjustment %+.2f (volatility %.2f, session %s)",
			marketAdj, market.Volatility, market.Session),
		fmt.Sprintf("psychological adjustment %+.2f (stress %.0f, fatigue %.0f)",
			psychAdj, psych.StressLevel, psych.FatigueLevel),
		fmt.Sprintf("time adjustment %+.2f (hour %d)", timeAdj, hour),
		fmt.Sprintf("pair adjustment %+.2f (%s)", pairAdj, pair),
		fmt.Sprintf("final risk %.2f%% with variance band [%.2f%%, %.2f%%]",
			risk, res.VarianceBand.Min, res.VarianceBand.Max),
	)

	res.Warnings = e.advisoryWarnings(p, perf, psych)

	e.log.Debug().
		Str("personality_id", p.ID).
		Float64("risk_percent", risk).
		Int("warnings", len(res.Warnings)).
		Msg("Risk appetite calculated")

	return res
}

// performanceAdjustment maps recent performance into [-0.5, 0.5].
func (e *Engine) performanceAdjustment(perf domain.PerformanceFactors) float64 {
	adj := 0.0

	// Win rate around 50% is neutral.
	adj += (perf.WinRate - 0.5) * 0.6

	// Losing streaks bite harder than winning streaks help.
	adj -= float64(perf.ConsecutiveLosses) * 0.08
	adj += float64(perf.ConsecutiveWins) * 0.04

	if perf.CurrentDrawdown < 0 {
		adj += perf.CurrentDrawdown * 1.5 // drawdown is negative
	}
	if perf.ProfitFactor > 1.5 {
		adj += 0.05
	}

	return clamp(adj, -maxPerformanceAdj, maxPerformanceAdj)
}

// marketAdjustment maps market conditions into [-0.3, 0.3].
func (e *Engine) marketAdjustment(p *domain.TradingPersonality, market domain.MarketConditions) float64 {
	adj := 0.0

	if market.Volatility > 1.5 {
		adj -= (market.Volatility - 1.5) * 0.2
	} else if market.Volatility < 0.7 {
		adj += 0.05
	}

	switch market.Liquidity {
	case domain.LiquidityLow:
		adj -= 0.1
	case domain.LiquidityHigh:
		adj += 0.05
	}

	if market.IsNewsTime && p.Behavior.NewsReaction != domain.NewsReactionAnticipate {
		adj -= 0.1
	}

	if market.SpreadPips > 3 {
		adj -= 0.05
	}

	return clamp(adj, -maxMarketAdj, maxMarketAdj)
}

// psychologicalAdjustment maps the simulated psychological state into
// [-0.4, 0.4].
func (e *Engine) psychologicalAdjustment(psych domain.PsychologicalState) float64 {
	adj := 0.0
	adj -= psych.StressLevel / 100 * 0.25
	adj -= psych.FatigueLevel / 100 * 0.15
	adj += (psych.ConfidenceLevel - 50) / 100 * 0.2
	return clamp(adj, -maxPsychologicalAdj, maxPsychologicalAdj)
}

// timeAdjustment maps session fit and active-hours alignment into
// [-0.2, 0.2], using the trait analyzer's session modifiers.
func (e *Engine) timeAdjustment(p *domain.TradingPersonality, hour int) float64 {
	session := SessionForHour(hour)
	mods := e.analyzer.CalculateSessionModifiers(p.Traits)
	adj := mods[session].RiskAdjustment

	if !withinActiveHours(p.TimePreferences, hour) {
		adj -= 0.1
	}
	for _, preferred := range p.TimePreferences.PreferredSessions {
		if preferred == session {
			adj += 0.05
			break
		}
	}

	return clamp(adj, -maxTimeAdj, maxTimeAdj)
}

// pairAdjustment maps pair familiarity into [-0.1, 0.1].
func (e *Engine) pairAdjustment(p *domain.TradingPersonality, pair string) float64 {
	for _, s := range p.PrimaryPairs {
		if s == pair {
			return maxPairAdj
		}
	}
	for _, s := range p.SecondaryPairs {
		if s == pair {
			return 0.05
		}
	}
	return -0.05
}

// advisoryWarnings emits the human-readable warnings. They are never
// enforced by this engine.
func (e *Engine) advisoryWarnings(p *domain.TradingPersonality, perf domain.PerformanceFactors, psych domain.PsychologicalState) []string {
	var warnings []string

	if perf.ConsecutiveLosses >= 3 && psych.StressLevel > 60 {
		warnings = append(warnings, fmt.Sprintf(
			"revenge-trading risk: %d consecutive losses with stress level %.0f",
			perf.ConsecutiveLosses, psych.StressLevel))
	}
	if perf.ConsecutiveWins >= 5 && p.Traits.Confidence > 70 {
		warnings = append(warnings, fmt.Sprintf(
			"overconfidence risk: %d consecutive wins on a high-confidence personality",
			perf.ConsecutiveWins))
	}
	if perf.CurrentDrawdown <= -0.15 {
		warnings = append(warnings, fmt.Sprintf(
			"extreme drawdown: %.1f%% under water", math.Abs(perf.CurrentDrawdown)*100))
	}

	return warnings
}

// SessionForHour maps a UTC hour to the trading session convention used by
// the variance engines. The 12-16 UTC window is the London/New York overlap.
func SessionForHour(hour int) domain.TradingSession {
	h := ((hour % 24) + 24) % 24
	switch {
	case h >= 12 && h < 16:
		return domain.SessionOverlap
	case h >= 7 && h < 12:
		return domain.SessionLondon
	case h >= 16 && h < 21:
		return domain.SessionNewYork
	default:
		return domain.SessionAsian
	}
}

func withinActiveHours(prefs domain.TimePreferences, hour int) bool {
	h := ((hour % 24) + 24) % 24
	start, end := prefs.ActiveHourStart, prefs.ActiveHourEnd
	if start == end {
		return true
	}
	if start < end {
		return h >= start && h < end
	}
	// Window wraps midnight.
	return h >= start || h < end
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
