// Package personality builds trading personalities from archetype templates
// and classifies their traits into behavioral categories.
package personality

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/rng"
)

// GeneratorConfig controls a single personality generation.
type GeneratorConfig struct {
	Archetype             domain.Archetype `json:"archetype"`
	RandomizationStrength float64          `json:"randomization_strength"` // 0-100
	EvolutionEnabled      bool             `json:"evolution_enabled"`
}

// Generator creates complete trading personalities. Generation is
// non-deterministic by design; the randomness source is injected so tests
// can force repeatable sequences.
type Generator struct {
	rand rng.Rand
	log  zerolog.Logger
	now  func() time.Time
}

// NewGenerator creates a personality generator.
func NewGenerator(rand rng.Rand, log zerolog.Logger) *Generator {
	return &Generator{
		rand: rand,
		log:  log.With().Str("component", "personality_generator").Logger(),
		now:  time.Now,
	}
}

// traitNoiseScale converts randomization strength (0-100) into the stddev
// of the per-trait Gaussian sample. Full strength swings a trait by roughly
// one category either way.
const traitNoiseScale = 15.0

// Generate blends the configured archetype template with the randomization
// strength and produces a complete personality for the account.
func (g *Generator) Generate(cfg GeneratorConfig, accountID string) (*domain.TradingPersonality, error) {
	tmpl, ok := archetypeTemplates[cfg.Archetype]
	if !ok {
		return nil, fmt.Errorf("unknown archetype %q", cfg.Archetype)
	}
	if cfg.RandomizationStrength < 0 || cfg.RandomizationStrength > 100 {
		return nil, fmt.Errorf("randomization strength %.1f out of range [0,100]", cfg.RandomizationStrength)
	}

	stddev := cfg.RandomizationStrength / 100 * traitNoiseScale

	traits := domain.PersonalityTraits{}
	for _, name := range domain.AllTraitNames {
		mean := tmpl.Traits.Get(name)
		traits.Set(name, g.rand.BoundedNorm(mean, stddev, domain.TraitMin, domain.TraitMax))
	}

	p := &domain.TradingPersonality{
		ID:              uuid.New().String(),
		AccountID:       accountID,
		Archetype:       cfg.Archetype,
		Traits:          traits,
		TimePreferences: g.timePreferences(tmpl, stddev),
		RiskAppetite:    g.riskAppetite(tmpl, traits),
		Behavior: domain.BehavioralPatterns{
			RoundNumberAvoidance: clamp01(tmpl.RoundNumberAvoidance + g.rand.Norm(0, stddev/100)),
			SizingBias:           tmpl.SizingBias,
			GapStrategy:          tmpl.GapStrategy,
			NewsReaction:         tmpl.NewsReaction,
			SundayOpenPreference: clamp01(tmpl.SundayOpenPreference + g.rand.Norm(0, stddev/100)),
		},
		ExperienceLevel: 0,
		CreatedAt:       g.now(),
	}

	p.PrimaryPairs, p.SecondaryPairs = g.pairPreferences(traits.RiskTolerance)

	if cfg.EvolutionEnabled {
		p.Evolution = &domain.EvolutionConfig{
			Enabled:         true,
			ImprovingTraits: tmpl.ImprovingTraits,
			DegradingTraits: tmpl.DegradingTraits,
			EvolutionRate:   tmpl.EvolutionRate,
		}
	}

	g.log.Debug().
		Str("personality_id", p.ID).
		Str("account_id", accountID).
		Str("archetype", string(cfg.Archetype)).
		Float64("randomization", cfg.RandomizationStrength).
		Msg("Personality generated")

	return p, nil
}

// GenerateDiverse creates count personalities, round-robining archetypes so
// a small portfolio still covers distinct behaviors. accountIDs must supply
// one id per personality.
func (g *Generator) GenerateDiverse(count int, accountIDs []string) ([]*domain.TradingPersonality, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	if len(accountIDs) != count {
		return nil, fmt.Errorf("expected %d account ids, got %d", count, len(accountIDs))
	}

	out := make([]*domain.TradingPersonality, 0, count)
	for i := 0; i < count; i++ {
		cfg := GeneratorConfig{
			Archetype:             domain.AllArchetypes[i%len(domain.AllArchetypes)],
			RandomizationStrength: 50,
			EvolutionEnabled:      true,
		}
		p, err := g.Generate(cfg, accountIDs[i])
		if err != nil {
			return nil, fmt.Errorf("generating personality %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Validate returns the list of structural bound violations in a personality.
// A valid personality yields an empty list; Validate never returns an error.
func Validate(p *domain.TradingPersonality) []string {
	var issues []string

	for _, name := range domain.AllTraitNames {
		v := p.Traits.Get(name)
		if v < domain.TraitMin || v > domain.TraitMax {
			issues = append(issues, fmt.Sprintf("trait %s = %.2f outside [0,100]", name, v))
		}
	}

	ra := p.RiskAppetite
	if ra.BaseRiskPerTrade < domain.MinBaseRiskPerTrade || ra.BaseRiskPerTrade > domain.MaxBaseRiskPerTrade {
		issues = append(issues, fmt.Sprintf("base risk per trade %.2f%% outside [%.1f,%.1f]",
			ra.BaseRiskPerTrade, domain.MinBaseRiskPerTrade, domain.MaxBaseRiskPerTrade))
	}
	if ra.MinRiskVariance >= ra.MaxRiskVariance {
		issues = append(issues, fmt.Sprintf("risk variance min %.3f must be below max %.3f",
			ra.MinRiskVariance, ra.MaxRiskVariance))
	}
	if ra.MaxConsecutiveSkips < 1 {
		issues = append(issues, fmt.Sprintf("max consecutive skips %d must be at least 1", ra.MaxConsecutiveSkips))
	}
	if ra.MaxSizeDeviation <= 0 || ra.MaxSizeDeviation > 0.5 {
		issues = append(issues, fmt.Sprintf("max size deviation %.3f outside (0,0.5]", ra.MaxSizeDeviation))
	}
	if ra.MaxPortfolioRisk <= 0 {
		issues = append(issues, "max portfolio risk must be positive")
	}

	if n := len(p.PrimaryPairs); n < 2 || n > 3 {
		issues = append(issues, fmt.Sprintf("expected 2-3 primary pairs, got %d", n))
	}
	if n := len(p.SecondaryPairs); n < 2 || n > 3 {
		issues = append(issues, fmt.Sprintf("expected 2-3 secondary pairs, got %d", n))
	}

	if b := p.Behavior.RoundNumberAvoidance; b < 0 || b > 1 {
		issues = append(issues, fmt.Sprintf("round number avoidance %.3f outside [0,1]", b))
	}
	if b := p.Behavior.SundayOpenPreference; b < 0 || b > 1 {
		issues = append(issues, fmt.Sprintf("sunday open preference %.3f outside [0,1]", b))
	}

	return issues
}

// timePreferences copies the template window with a small randomized shift
// of the active hours.
func (g *Generator) timePreferences(tmpl archetypeTemplate, stddev float64) domain.TimePreferences {
	shift := 0
	if stddev > 0 {
		shift = g.rand.IntN(3) - 1 // -1, 0 or +1 hour
	}
	sessions := make([]domain.TradingSession, len(tmpl.PreferredSessions))
	copy(sessions, tmpl.PreferredSessions)
	return domain.TimePreferences{
		PreferredSessions: sessions,
		ActiveHourStart:   wrapHour(tmpl.ActiveHourStart + shift),
		ActiveHourEnd:     wrapHour(tmpl.ActiveHourEnd + shift),
		WeekendTrading:    tmpl.WeekendTrading,
	}
}

// riskAppetite derives the risk block from the template and the sampled
// traits. Risk tolerance scales the base; emotionality widens the variance
// band; discipline narrows the sizing deviation cap.
func (g *Generator) riskAppetite(tmpl archetypeTemplate, traits domain.PersonalityTraits) domain.RiskAppetite {
	base := tmpl.BaseRiskPerTrade * (0.85 + 0.3*traits.RiskTolerance/100)
	base = clampFloat(base, domain.MinBaseRiskPerTrade, domain.MaxBaseRiskPerTrade)

	minVar := 0.05 + traits.Emotionality/100*0.08
	maxVar := minVar + 0.05 + traits.Emotionality/100*0.07

	dev := tmpl.MaxSizeDeviation * (1.2 - 0.4*traits.Discipline/100)
	dev = clampFloat(dev, 0.03, 0.25)

	return domain.RiskAppetite{
		BaseRiskPerTrade:    base,
		MinRiskVariance:     minVar,
		MaxRiskVariance:     maxVar,
		MaxPortfolioRisk:    tmpl.MaxPortfolioRisk,
		MaxConsecutiveSkips: tmpl.MaxConsecutiveSkips,
		MaxSizeDeviation:    dev,
	}
}

// pairPreferences picks 2-3 primary and 2-3 secondary pairs. The pools mix
// majors, minors and exotics according to risk tolerance.
func (g *Generator) pairPreferences(riskTolerance float64) (primary, secondary []string) {
	var primaryPool, secondaryPool []string
	switch {
	case riskTolerance < 40:
		primaryPool = domain.MajorPairs
		secondaryPool = append(append([]string{}, domain.MajorPairs...), domain.MinorPairs...)
	case riskTolerance < 70:
		primaryPool = append(append([]string{}, domain.MajorPairs...), domain.MinorPairs...)
		secondaryPool = domain.MinorPairs
	default:
		primaryPool = append(append([]string{}, domain.MinorPairs...), domain.MajorPairs[:3]...)
		secondaryPool = append(append([]string{}, domain.ExoticPairs...), domain.MinorPairs...)
	}

	primary = g.samplePairs(primaryPool, 2+g.rand.IntN(2), nil)
	secondary = g.samplePairs(secondaryPool, 2+g.rand.IntN(2), primary)
	return primary, secondary
}

// samplePairs draws n distinct pairs from pool, excluding any already taken.
func (g *Generator) samplePairs(pool []string, n int, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, s := range exclude {
		excluded[s] = true
	}
	candidates := make([]string, 0, len(pool))
	for _, s := range pool {
		if !excluded[s] {
			candidates = append(candidates, s)
		}
	}
	if n > len(candidates) {
		n = len(candidates)
	}

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := g.rand.IntN(len(candidates))
		out = append(out, candidates[idx])
		candidates = append(candidates[:idx], candidates[idx+1:]...)
	}
	return out
}

func wrapHour(h int) int {
	return ((h % 24) + 24) % 24
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
