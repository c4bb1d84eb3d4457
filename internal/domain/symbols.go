package domain

import (
	"math"
	"strings"
)

// IsJPYPair reports whether a symbol is quoted in Japanese yen.
// JPY pairs use 2-decimal pricing; everything else uses 4.
func IsJPYPair(symbol string) bool {
	return strings.HasSuffix(strings.ToUpper(symbol), "JPY")
}

// PipSize returns the pip value for a symbol.
func PipSize(symbol string) float64 {
	if IsJPYPair(symbol) {
		return 0.01
	}
	return 0.0001
}

// PriceDecimals returns the price precision convention for a symbol.
func PriceDecimals(symbol string) int {
	if IsJPYPair(symbol) {
		return 2
	}
	return 4
}

// RoundPrice rounds a price to the symbol's precision convention.
func RoundPrice(symbol string, price float64) float64 {
	scale := math.Pow(10, float64(PriceDecimals(symbol)))
	return math.Round(price*scale) / scale
}

// PipsFromPrice converts a price distance to pips for a symbol.
func PipsFromPrice(symbol string, distance float64) float64 {
	return distance / PipSize(symbol)
}

// MajorPairs, MinorPairs and ExoticPairs are the currency-pair pools used
// when generating pair preferences.
var (
	MajorPairs  = []string{"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD", "USDCAD", "NZDUSD"}
	MinorPairs  = []string{"EURGBP", "EURJPY", "GBPJPY", "AUDJPY", "EURAUD", "CHFJPY", "GBPCHF"}
	ExoticPairs = []string{"USDTRY", "USDZAR", "USDMXN", "USDSEK", "USDNOK", "EURTRY"}
)
