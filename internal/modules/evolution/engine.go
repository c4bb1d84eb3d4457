// Package evolution mutates personalities over their trading lifetime:
// milestones, skill growth, natural drift, and crisis adaptation, applied
// strictly in that order on every activity snapshot.
package evolution

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/quirk/internal/domain"
	"github.com/aristath/quirk/internal/events"
	"github.com/aristath/quirk/internal/rng"
	"github.com/aristath/quirk/internal/store"
)

// ErrPersonalityNotTracked is returned when evolution is requested for a
// personality that was never registered with the engine.
var ErrPersonalityNotTracked = fmt.Errorf("personality not tracked by evolution engine")

// milestone is a one-time achievement. All three thresholds must hold
// simultaneously.
type milestone struct {
	id          string
	description string
	trades      int
	days        int
	profit      float64 // fraction of starting balance
	boosts      map[domain.TraitName]float64
}

var milestones = []milestone{
	{
		id:          "first_hundred",
		description: "completed 100 trades over a full month",
		trades:      100,
		days:        30,
		profit:      0,
		boosts:      map[domain.TraitName]float64{domain.TraitConfidence: 3, domain.TraitDiscipline: 2},
	},
	{
		id:          "steady_quarter",
		description: "traded a profitable quarter",
		trades:      500,
		days:        90,
		profit:      0.03,
		boosts:      map[domain.TraitName]float64{domain.TraitDiscipline: 3, domain.TraitPatience: 3},
	},
	{
		id:          "half_year_edge",
		description: "held a profitable edge for six months",
		trades:      1000,
		days:        180,
		profit:      0.08,
		boosts:      map[domain.TraitName]float64{domain.TraitConfidence: 4, domain.TraitEmotionality: -3},
	},
	{
		id:          "full_year",
		description: "survived a full trading year in profit",
		trades:      2000,
		days:        365,
		profit:      0.12,
		boosts:      map[domain.TraitName]float64{domain.TraitAdaptability: 4, domain.TraitPatience: 3},
	},
	{
		id:          "veteran",
		description: "two profitable years of continuous trading",
		trades:      5000,
		days:        730,
		profit:      0.20,
		boosts:      map[domain.TraitName]float64{domain.TraitDiscipline: 5, domain.TraitEmotionality: -4, domain.TraitConfidence: 3},
	},
}

// skillEvolutionInterval gates skill improvements to once per 30 days.
const skillEvolutionInterval = 30 * 24 * time.Hour

// Major-crisis thresholds. Any one of the three is sufficient.
const (
	majorCrisisLossStreak = 5
	majorCrisisDrawdown   = -0.15
	majorCrisisTrailing30 = -0.20

	minorCrisisLossStreak = 3
	minorCrisisDrawdown   = -0.08

	// A major crisis shrinks base risk permanently by up to this fraction.
	maxCrisisRiskReduction = 0.45
)

type evolutionState struct {
	achieved       map[string]bool
	lastSkillCheck time.Time
	history        *store.Ring[domain.EvolutionEvent]
}

// Engine applies the four evolution categories to tracked personalities.
// Trait changes mutate the personality in place; every change is recorded
// as an EvolutionEvent in a bounded per-personality history.
type Engine struct {
	states *store.Keyed[*evolutionState]
	rand   rng.Rand
	events *events.Manager
	log    zerolog.Logger
	now    func() time.Time
}

// NewEngine creates a personality-evolution engine.
func NewEngine(rand rng.Rand, eventManager *events.Manager, log zerolog.Logger) *Engine {
	return &Engine{
		states: store.NewKeyed[*evolutionState](),
		rand:   rand,
		events: eventManager,
		log:    log.With().Str("component", "evolution_engine").Logger(),
		now:    time.Now,
	}
}

// Register starts tracking a personality. Re-registering resets the
// achieved-milestone set and the event history.
func (e *Engine) Register(personalityID string) {
	e.states.Put(personalityID, &evolutionState{
		achieved: make(map[string]bool),
		history:  store.NewRing[domain.EvolutionEvent](domain.EvolutionHistoryCap),
	})
}

// Reset removes all evolution state for the personality.
func (e *Engine) Reset(personalityID string) {
	e.states.Delete(personalityID)
}

// ProcessEvolution runs the four categories in order against the activity
// snapshot. Each category sees the personality as already evolved by the
// previous one. Returns the events generated by this snapshot, milestone
// events first.
func (e *Engine) ProcessEvolution(p *domain.TradingPersonality, activity domain.TradingActivity) ([]domain.EvolutionEvent, error) {
	if p.Evolution == nil || !p.Evolution.Enabled {
		return nil, nil
	}
	now := e.now()
	var generated []domain.EvolutionEvent

	// The achieved-milestone set and skill-evolution timestamp both feed and
	// are updated by the categories, so the whole pass runs under the
	// store's write lock.
	tracked := e.states.Update(p.ID, func(st *evolutionState) *evolutionState {
		generated = append(generated, e.checkMilestones(p, activity, st, now)...)
		if ev := e.evolveSkills(p, activity, st, now); ev != nil {
			generated = append(generated, *ev)
		}
		if ev := e.applyNaturalDrift(p, now); ev != nil {
			generated = append(generated, *ev)
		}
		if ev := e.adaptToCrisis(p, activity, now); ev != nil {
			generated = append(generated, *ev)
		}
		for _, ev := range generated {
			st.history.Append(ev)
		}
		return st
	})
	if !tracked {
		return nil, fmt.Errorf("%w: %s", ErrPersonalityNotTracked, p.ID)
	}

	p.TradeCount = activity.TotalTrades
	if len(generated) > 0 {
		p.EvolvedAt = now
	}

	if len(generated) > 0 {
		types := make([]string, len(generated))
		score := 0.0
		for i, ev := range generated {
			types[i] = string(ev.Type)
			score = math.Max(score, ev.EvolutionScore)
		}
		e.log.Info().
			Str("personality_id", p.ID).
			Strs("event_types", types).
			Float64("evolution_score", score).
			Msg("Personality evolved")
		e.events.EmitTyped("evolution", &events.PersonalityEvolvedData{
			PersonalityID:  p.ID,
			EventTypes:     types,
			EvolutionScore: score,
		})
	}

	return generated, nil
}

// checkMilestones fires every unachieved milestone whose trade, day and
// profit thresholds are all met. Achievement is tracked explicitly, so a
// later trait regression can never re-fire a milestone.
func (e *Engine) checkMilestones(p *domain.TradingPersonality, activity domain.TradingActivity, st *evolutionState, now time.Time) []domain.EvolutionEvent {
	var fired []domain.EvolutionEvent

	for _, m := range milestones {
		if st.achieved[m.id] {
			continue
		}
		if activity.TotalTrades < m.trades || activity.DaysActive < m.days || activity.TotalProfit < m.profit {
			continue
		}

		before := p.Traits
		for trait, delta := range m.boosts {
			p.Traits.Set(trait, p.Traits.Get(trait)+delta)
		}
		p.ExperienceLevel = math.Min(100, p.ExperienceLevel+10)
		st.achieved[m.id] = true

		fired = append(fired, domain.EvolutionEvent{
			ID:             uuid.New().String(),
			PersonalityID:  p.ID,
			Type:           domain.EvolutionMilestoneReached,
			Description:    m.description,
			TraitsBefore:   before,
			TraitsAfter:    p.Traits,
			EvolutionScore: traitShiftScore(before, p.Traits),
			Reversible:     false,
			OccurredAt:     now,
		})
	}
	return fired
}

// evolveSkills applies gradual competence gains, at most once per 30 days.
// Roughly half of the pending improvements are discarded as a plateau.
func (e *Engine) evolveSkills(p *domain.TradingPersonality, activity domain.TradingActivity, st *evolutionState, now time.Time) *domain.EvolutionEvent {
	last := st.lastSkillCheck
	if last.IsZero() {
		last = p.CreatedAt
	}
	if now.Sub(last) < skillEvolutionInterval {
		return nil
	}
	st.lastSkillCheck = now

	type improvement struct {
		trait domain.TraitName
		delta float64
	}
	var pending []improvement

	if activity.WinRate >= 0.55 {
		pending = append(pending,
			improvement{domain.TraitDiscipline, 1.5},
			improvement{domain.TraitConfidence, 1.0})
	}
	if activity.AvgTradesPerDay >= 5 {
		pending = append(pending, improvement{domain.TraitAdaptability, 1.5})
	}
	if activity.TotalProfit >= 0.10 {
		pending = append(pending,
			improvement{domain.TraitConfidence, 1.5},
			improvement{domain.TraitEmotionality, -1.0})
	}
	if len(pending) == 0 {
		return nil
	}

	before := p.Traits
	applied := 0
	for _, imp := range pending {
		// Skill growth plateaus: about half the gains never materialize.
		if e.rand.Float64() < 0.5 {
			continue
		}
		p.Traits.Set(imp.trait, p.Traits.Get(imp.trait)+imp.delta)
		applied++
	}
	if applied == 0 {
		return nil
	}

	return &domain.EvolutionEvent{
		ID:             uuid.New().String(),
		PersonalityID:  p.ID,
		Type:           domain.EvolutionSkillImprovement,
		Description:    fmt.Sprintf("skill growth: %d of %d pending improvements took hold", applied, len(pending)),
		TraitsBefore:   before,
		TraitsAfter:    p.Traits,
		EvolutionScore: traitShiftScore(before, p.Traits),
		Reversible:     true,
		OccurredAt:     now,
	}
}

// applyNaturalDrift nudges the personality's declared improving and
// degrading traits, plus a small calendar-season adjustment.
func (e *Engine) applyNaturalDrift(p *domain.TradingPersonality, now time.Time) *domain.EvolutionEvent {
	cfg := p.Evolution
	rate := cfg.EvolutionRate
	if rate <= 0 {
		return nil
	}

	before := p.Traits
	for _, trait := range cfg.ImprovingTraits {
		p.Traits.Set(trait, p.Traits.Get(trait)+e.rand.Float64()*0.8*rate)
	}
	for _, trait := range cfg.DegradingTraits {
		p.Traits.Set(trait, p.Traits.Get(trait)-e.rand.Float64()*0.8*rate)
	}

	for trait, delta := range seasonAdjustments(now.Month()) {
		p.Traits.Set(trait, p.Traits.Get(trait)+delta*rate)
	}

	if p.Traits == before {
		return nil
	}

	return &domain.EvolutionEvent{
		ID:             uuid.New().String(),
		PersonalityID:  p.ID,
		Type:           domain.EvolutionTraitEvolution,
		Description:    "natural trait drift",
		TraitsBefore:   before,
		TraitsAfter:    p.Traits,
		EvolutionScore: traitShiftScore(before, p.Traits),
		Reversible:     true,
		OccurredAt:     now,
	}
}

// adaptToCrisis detects losing streaks and drawdowns and shifts the
// personality defensively. A major crisis also shrinks the base risk per
// trade permanently, scaled by crisis magnitude up to 45%.
func (e *Engine) adaptToCrisis(p *domain.TradingPersonality, activity domain.TradingActivity, now time.Time) *domain.EvolutionEvent {
	major := activity.ConsecutiveLosses >= majorCrisisLossStreak ||
		activity.CurrentDrawdown <= majorCrisisDrawdown ||
		activity.Trailing30Return <= majorCrisisTrailing30
	minor := activity.ConsecutiveLosses >= minorCrisisLossStreak ||
		activity.CurrentDrawdown <= minorCrisisDrawdown
	if !major && !minor {
		return nil
	}

	magnitude := crisisMagnitude(activity)

	before := p.Traits
	shift := magnitude
	if !major {
		shift *= 0.4
	}
	p.Traits.Set(domain.TraitRiskTolerance, p.Traits.RiskTolerance-8*shift)
	p.Traits.Set(domain.TraitConfidence, p.Traits.Confidence-6*shift)
	p.Traits.Set(domain.TraitDiscipline, p.Traits.Discipline+5*shift)
	p.Traits.Set(domain.TraitPatience, p.Traits.Patience+4*shift)

	description := "minor crisis: defensive trait shift"
	if major {
		reduction := maxCrisisRiskReduction * magnitude
		p.RiskAppetite.BaseRiskPerTrade = math.Max(
			domain.MinBaseRiskPerTrade,
			p.RiskAppetite.BaseRiskPerTrade*(1-reduction),
		)
		description = fmt.Sprintf("major crisis: defensive shift, base risk cut by %.0f%%", reduction*100)
	}

	return &domain.EvolutionEvent{
		ID:             uuid.New().String(),
		PersonalityID:  p.ID,
		Type:           domain.EvolutionCrisisAdaptation,
		Description:    description,
		TraitsBefore:   before,
		TraitsAfter:    p.Traits,
		EvolutionScore: traitShiftScore(before, p.Traits),
		Reversible:     !major,
		OccurredAt:     now,
	}
}

// History returns the personality's recorded evolution events, oldest first.
func (e *Engine) History(personalityID string) ([]domain.EvolutionEvent, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPersonalityNotTracked, personalityID)
	}
	return st.history.Items(), nil
}

// AchievedMilestones lists the milestone ids the personality has reached.
func (e *Engine) AchievedMilestones(personalityID string) ([]string, error) {
	st, ok := e.states.Get(personalityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPersonalityNotTracked, personalityID)
	}
	achieved := make([]string, 0, len(st.achieved))
	for _, m := range milestones {
		if st.achieved[m.id] {
			achieved = append(achieved, m.id)
		}
	}
	return achieved, nil
}

// crisisMagnitude scales crisis severity into [0.2, 1].
func crisisMagnitude(activity domain.TradingActivity) float64 {
	m := math.Max(float64(activity.ConsecutiveLosses)/10, math.Abs(math.Min(activity.CurrentDrawdown, 0))/0.30)
	m = math.Max(m, math.Abs(math.Min(activity.Trailing30Return, 0))/0.40)
	if m > 1 {
		return 1
	}
	if m < 0.2 {
		return 0.2
	}
	return m
}

// traitShiftScore maps the total absolute trait movement to a 0-100 score.
func traitShiftScore(before, after domain.PersonalityTraits) float64 {
	total := 0.0
	for _, name := range domain.AllTraitNames {
		total += math.Abs(after.Get(name) - before.Get(name))
	}
	// 30 points of combined movement saturates the scale.
	return math.Min(100, total/30*100)
}

func seasonAdjustments(month time.Month) map[domain.TraitName]float64 {
	switch month {
	case time.December, time.January, time.February:
		return map[domain.TraitName]float64{domain.TraitPatience: 0.3, domain.TraitDiscipline: 0.2}
	case time.March, time.April, time.May:
		return map[domain.TraitName]float64{domain.TraitConfidence: 0.3, domain.TraitAdaptability: 0.2}
	case time.June, time.July, time.August:
		return map[domain.TraitName]float64{domain.TraitPatience: -0.3, domain.TraitEmotionality: 0.2}
	default:
		return map[domain.TraitName]float64{domain.TraitDiscipline: 0.3, domain.TraitEmotionality: -0.2}
	}
}
