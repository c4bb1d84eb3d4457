package risk

import (
	"fmt"

	"github.com/aristath/quirk/internal/domain"
)

// OpenPosition is the risk footprint of a currently open trade, supplied by
// the external order system.
type OpenPosition struct {
	Symbol      string  `json:"symbol"`
	RiskPercent float64 `json:"risk_percent"`
}

// PortfolioCheck is the admission decision for a proposed trade. A rejected
// trade (AllowTrade=false) is an expected, non-exceptional outcome.
type PortfolioCheck struct {
	AllowTrade          bool    `json:"allow_trade"`
	ApprovedRiskPercent float64 `json:"approved_risk_percent"`
	UsedRiskPercent     float64 `json:"used_risk_percent"`
	RemainingBudget     float64 `json:"remaining_budget"`
	Reason              string  `json:"reason"`
}

// CalculatePortfolioRiskConstraints checks a proposed per-trade risk against
// the personality's portfolio-level budget. The proposal is truncated to the
// remaining budget; when the remainder is below the minimum-viable-trade
// floor the trade is rejected outright.
func (e *Engine) CalculatePortfolioRiskConstraints(
	p *domain.TradingPersonality,
	openPositions []OpenPosition,
	proposedRisk float64,
) PortfolioCheck {
	used := 0.0
	for _, pos := range openPositions {
		used += pos.RiskPercent
	}
	remaining := p.RiskAppetite.MaxPortfolioRisk - used

	check := PortfolioCheck{
		UsedRiskPercent: used,
		RemainingBudget: remaining,
	}

	if proposedRisk <= 0 {
		check.Reason = fmt.Sprintf("proposed risk %.2f%% is not positive", proposedRisk)
		return check
	}

	if remaining < domain.MinBaseRiskPerTrade {
		check.Reason = fmt.Sprintf(
			"remaining budget %.2f%% below minimum viable trade %.2f%% (portfolio cap %.2f%%, in use %.2f%%)",
			remaining, domain.MinBaseRiskPerTrade, p.RiskAppetite.MaxPortfolioRisk, used)
		e.log.Debug().Str("personality_id", p.ID).Float64("remaining", remaining).Msg("Trade rejected by portfolio constraint")
		return check
	}

	approved := proposedRisk
	if approved > remaining {
		approved = remaining
		check.Reason = fmt.Sprintf("proposed %.2f%% truncated to remaining budget %.2f%%", proposedRisk, remaining)
	} else {
		check.Reason = fmt.Sprintf("proposed %.2f%% within remaining budget %.2f%%", proposedRisk, remaining)
	}

	check.AllowTrade = true
	check.ApprovedRiskPercent = approved
	return check
}
