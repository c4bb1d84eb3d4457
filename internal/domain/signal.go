package domain

import "time"

// Direction is the trade side of a signal
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// LiquidityTier is a coarse liquidity classification supplied by market data
type LiquidityTier string

const (
	LiquidityHigh   LiquidityTier = "high"
	LiquidityMedium LiquidityTier = "medium"
	LiquidityLow    LiquidityTier = "low"
)

// Signal is a mechanical trading signal produced by an external strategy
// system. Signals are immutable inputs; variance is recorded separately.
type Signal struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Direction     Direction `json:"direction"`
	Size          float64   `json:"size"` // lots
	EntryPrice    float64   `json:"entry_price"`
	StopLoss      float64   `json:"stop_loss"`
	TakeProfit    float64   `json:"take_profit"`
	Confidence    float64   `json:"confidence"` // 0-1
	GeneratedAt   time.Time `json:"generated_at"`
	AccountID     string    `json:"account_id"`
	PersonalityID string    `json:"personality_id"`
}

// MarketConditions is an external snapshot of the market at signal time.
type MarketConditions struct {
	Volatility float64        `json:"volatility"` // normalized, 1.0 = typical
	SpreadPips float64        `json:"spread_pips"`
	Liquidity  LiquidityTier  `json:"liquidity"`
	Session    TradingSession `json:"session"`
	IsNewsTime bool           `json:"is_news_time"`
	GapPips    float64        `json:"gap_pips,omitempty"` // signed weekend gap, 0 when none
}

// PerformanceFactors is recent trading performance telemetry supplied by an
// external tracking system.
type PerformanceFactors struct {
	WinRate           float64 `json:"win_rate"` // 0-1 over the recent window
	ConsecutiveWins   int     `json:"consecutive_wins"`
	ConsecutiveLosses int     `json:"consecutive_losses"`
	CurrentDrawdown   float64 `json:"current_drawdown"`   // fraction, negative when under water
	Trailing30Return  float64 `json:"trailing_30_return"` // fraction over trailing 30 days
	ProfitFactor      float64 `json:"profit_factor"`
}

// PsychologicalState models simulated trader psychology, 0-100 scales.
type PsychologicalState struct {
	StressLevel     float64 `json:"stress_level"`
	FatigueLevel    float64 `json:"fatigue_level"`
	ConfidenceLevel float64 `json:"confidence_level"`
}
