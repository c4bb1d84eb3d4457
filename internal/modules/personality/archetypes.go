package personality

import "github.com/aristath/quirk/internal/domain"

// archetypeTemplate is the blueprint a generated personality starts from.
// Trait values are the means of the per-trait Gaussian samples; everything
// else seeds the derived blocks before randomization.
type archetypeTemplate struct {
	Traits               domain.PersonalityTraits
	PreferredSessions    []domain.TradingSession
	ActiveHourStart      int
	ActiveHourEnd        int
	WeekendTrading       bool
	SizingBias           domain.SizingBias
	GapStrategy          domain.GapStrategy
	NewsReaction         domain.NewsReactionStyle
	RoundNumberAvoidance float64
	SundayOpenPreference float64
	BaseRiskPerTrade     float64
	MaxPortfolioRisk     float64
	MaxConsecutiveSkips  int
	MaxSizeDeviation     float64
	EvolutionRate        float64
	ImprovingTraits      []domain.TraitName
	DegradingTraits      []domain.TraitName
}

// archetypeTemplates maps each archetype to its blueprint. Trait means are
// hand-tuned so a zero-randomization generation reproduces the archetype's
// textbook profile.
var archetypeTemplates = map[domain.Archetype]archetypeTemplate{
	domain.ArchetypeConservativeScalper: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 25, Patience: 40, Confidence: 55,
			Emotionality: 30, Discipline: 85, Adaptability: 45,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionLondon, domain.SessionOverlap},
		ActiveHourStart:      7,
		ActiveHourEnd:        16,
		SizingBias:           domain.SizingBiasDown,
		GapStrategy:          domain.GapStrategyAvoid,
		NewsReaction:         domain.NewsReactionIgnore,
		RoundNumberAvoidance: 0.7,
		SundayOpenPreference: 0.15,
		BaseRiskPerTrade:     0.5,
		MaxPortfolioRisk:     3.0,
		MaxConsecutiveSkips:  4,
		MaxSizeDeviation:     0.08,
		EvolutionRate:        0.3,
		ImprovingTraits:      []domain.TraitName{domain.TraitConfidence, domain.TraitPatience},
		DegradingTraits:      []domain.TraitName{domain.TraitEmotionality},
	},
	domain.ArchetypeAggressiveScalper: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 80, Patience: 20, Confidence: 75,
			Emotionality: 60, Discipline: 45, Adaptability: 60,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionLondon, domain.SessionNewYork, domain.SessionOverlap},
		ActiveHourStart:      6,
		ActiveHourEnd:        20,
		SizingBias:           domain.SizingBiasUp,
		GapStrategy:          domain.GapStrategyFollow,
		NewsReaction:         domain.NewsReactionReact,
		RoundNumberAvoidance: 0.3,
		SundayOpenPreference: 0.5,
		BaseRiskPerTrade:     1.8,
		MaxPortfolioRisk:     8.0,
		MaxConsecutiveSkips:  2,
		MaxSizeDeviation:     0.18,
		EvolutionRate:        0.6,
		ImprovingTraits:      []domain.TraitName{domain.TraitDiscipline},
		DegradingTraits:      []domain.TraitName{domain.TraitPatience},
	},
	domain.ArchetypePatientSwing: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 45, Patience: 90, Confidence: 60,
			Emotionality: 25, Discipline: 75, Adaptability: 50,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionLondon},
		ActiveHourStart:      8,
		ActiveHourEnd:        18,
		SizingBias:           domain.SizingBiasNearest,
		GapStrategy:          domain.GapStrategyFade,
		NewsReaction:         domain.NewsReactionIgnore,
		RoundNumberAvoidance: 0.6,
		SundayOpenPreference: 0.25,
		BaseRiskPerTrade:     1.0,
		MaxPortfolioRisk:     5.0,
		MaxConsecutiveSkips:  5,
		MaxSizeDeviation:     0.1,
		EvolutionRate:        0.25,
		ImprovingTraits:      []domain.TraitName{domain.TraitConfidence},
		DegradingTraits:      nil,
	},
	domain.ArchetypeMomentumChaser: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 70, Patience: 30, Confidence: 70,
			Emotionality: 65, Discipline: 40, Adaptability: 70,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionNewYork, domain.SessionOverlap},
		ActiveHourStart:      12,
		ActiveHourEnd:        22,
		SizingBias:           domain.SizingBiasUp,
		GapStrategy:          domain.GapStrategyFollow,
		NewsReaction:         domain.NewsReactionReact,
		RoundNumberAvoidance: 0.35,
		SundayOpenPreference: 0.55,
		BaseRiskPerTrade:     1.5,
		MaxPortfolioRisk:     7.0,
		MaxConsecutiveSkips:  3,
		MaxSizeDeviation:     0.15,
		EvolutionRate:        0.5,
		ImprovingTraits:      []domain.TraitName{domain.TraitDiscipline, domain.TraitPatience},
		DegradingTraits:      []domain.TraitName{domain.TraitEmotionality},
	},
	domain.ArchetypeNewsTrader: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 65, Patience: 50, Confidence: 65,
			Emotionality: 55, Discipline: 60, Adaptability: 80,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionLondon, domain.SessionNewYork},
		ActiveHourStart:      7,
		ActiveHourEnd:        21,
		SizingBias:           domain.SizingBiasNearest,
		GapStrategy:          domain.GapStrategyFollow,
		NewsReaction:         domain.NewsReactionAnticipate,
		RoundNumberAvoidance: 0.4,
		SundayOpenPreference: 0.6,
		BaseRiskPerTrade:     1.2,
		MaxPortfolioRisk:     6.0,
		MaxConsecutiveSkips:  3,
		MaxSizeDeviation:     0.12,
		EvolutionRate:        0.45,
		ImprovingTraits:      []domain.TraitName{domain.TraitDiscipline},
		DegradingTraits:      []domain.TraitName{domain.TraitEmotionality},
	},
	domain.ArchetypeWeekendGapTrader: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 60, Patience: 65, Confidence: 60,
			Emotionality: 40, Discipline: 65, Adaptability: 55,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionAsian},
		ActiveHourStart:      21,
		ActiveHourEnd:        6,
		WeekendTrading:       true,
		SizingBias:           domain.SizingBiasNearest,
		GapStrategy:          domain.GapStrategyFade,
		NewsReaction:         domain.NewsReactionIgnore,
		RoundNumberAvoidance: 0.5,
		SundayOpenPreference: 0.85,
		BaseRiskPerTrade:     0.9,
		MaxPortfolioRisk:     4.5,
		MaxConsecutiveSkips:  4,
		MaxSizeDeviation:     0.1,
		EvolutionRate:        0.35,
		ImprovingTraits:      []domain.TraitName{domain.TraitConfidence},
		DegradingTraits:      nil,
	},
	domain.ArchetypeDisciplinedGrinder: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 40, Patience: 75, Confidence: 50,
			Emotionality: 20, Discipline: 90, Adaptability: 40,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionLondon, domain.SessionNewYork},
		ActiveHourStart:      8,
		ActiveHourEnd:        17,
		SizingBias:           domain.SizingBiasDown,
		GapStrategy:          domain.GapStrategyAvoid,
		NewsReaction:         domain.NewsReactionIgnore,
		RoundNumberAvoidance: 0.8,
		SundayOpenPreference: 0.1,
		BaseRiskPerTrade:     0.7,
		MaxPortfolioRisk:     3.5,
		MaxConsecutiveSkips:  5,
		MaxSizeDeviation:     0.06,
		EvolutionRate:        0.2,
		ImprovingTraits:      []domain.TraitName{domain.TraitAdaptability},
		DegradingTraits:      nil,
	},
	domain.ArchetypeEmotionalRookie: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 55, Patience: 25, Confidence: 40,
			Emotionality: 85, Discipline: 30, Adaptability: 50,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionNewYork},
		ActiveHourStart:      13,
		ActiveHourEnd:        21,
		SizingBias:           domain.SizingBiasPsychological,
		GapStrategy:          domain.GapStrategyFollow,
		NewsReaction:         domain.NewsReactionReact,
		RoundNumberAvoidance: 0.15,
		SundayOpenPreference: 0.45,
		BaseRiskPerTrade:     1.4,
		MaxPortfolioRisk:     6.5,
		MaxConsecutiveSkips:  2,
		MaxSizeDeviation:     0.2,
		EvolutionRate:        0.8,
		ImprovingTraits:      []domain.TraitName{domain.TraitDiscipline, domain.TraitPatience, domain.TraitConfidence},
		DegradingTraits:      []domain.TraitName{domain.TraitEmotionality},
	},
	domain.ArchetypeAdaptiveVeteran: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 55, Patience: 70, Confidence: 75,
			Emotionality: 30, Discipline: 80, Adaptability: 90,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionAsian, domain.SessionLondon, domain.SessionNewYork},
		ActiveHourStart:      0,
		ActiveHourEnd:        23,
		WeekendTrading:       true,
		SizingBias:           domain.SizingBiasNearest,
		GapStrategy:          domain.GapStrategyFade,
		NewsReaction:         domain.NewsReactionAnticipate,
		RoundNumberAvoidance: 0.65,
		SundayOpenPreference: 0.5,
		BaseRiskPerTrade:     1.1,
		MaxPortfolioRisk:     5.5,
		MaxConsecutiveSkips:  4,
		MaxSizeDeviation:     0.1,
		EvolutionRate:        0.3,
		ImprovingTraits:      []domain.TraitName{domain.TraitConfidence},
		DegradingTraits:      nil,
	},
	domain.ArchetypeBalancedAllrounder: {
		Traits: domain.PersonalityTraits{
			RiskTolerance: 50, Patience: 55, Confidence: 55,
			Emotionality: 45, Discipline: 60, Adaptability: 60,
		},
		PreferredSessions:    []domain.TradingSession{domain.SessionLondon, domain.SessionNewYork},
		ActiveHourStart:      7,
		ActiveHourEnd:        20,
		SizingBias:           domain.SizingBiasNearest,
		GapStrategy:          domain.GapStrategyFade,
		NewsReaction:         domain.NewsReactionReact,
		RoundNumberAvoidance: 0.5,
		SundayOpenPreference: 0.4,
		BaseRiskPerTrade:     1.0,
		MaxPortfolioRisk:     5.0,
		MaxConsecutiveSkips:  3,
		MaxSizeDeviation:     0.12,
		EvolutionRate:        0.4,
		ImprovingTraits:      []domain.TraitName{domain.TraitDiscipline, domain.TraitConfidence},
		DegradingTraits:      []domain.TraitName{domain.TraitEmotionality},
	},
}
