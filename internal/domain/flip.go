package domain

import "time"

// BuyerRow is the fixed output contract of the buyer stage.
// Corresponds to crisis_buyers in ClickHouse; column order matters to the
// load step.
type BuyerRow struct {
	CrisisID          string
	WalletAddress     string
	TokenAddress      string
	FirstBuyTimestamp time.Time
	FirstBuyPrice     float64
	TotalAmountBought float64
	TotalUSDSpent     float64
	NumTransactions   int // always 1: one row per purchase transaction
}

// FlipResult is one purchase whose recovery-window peak implied a profit
// at or above the configured threshold.
// Corresponds to profitable_flippers in ClickHouse.
type FlipResult struct {
	CrisisID              string
	WalletAddress         string
	TokenAddress          string
	BuyPrice              float64
	PeakRecoveryPrice     float64
	EstimatedProfitPct    float64
	EstimatedProfitUSD    float64
	BuyTimestamp          time.Time
	PeakRecoveryTimestamp time.Time
}
