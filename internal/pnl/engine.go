// Package pnl measures the profitability of crisis buys over a bounded
// recovery window.
package pnl

import (
	"errors"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/pricing"
)

// Config bounds the recovery analysis.
type Config struct {
	// RecoveryDays is the length of the recovery window. The window is
	// open at the buy date and closed at buy date + RecoveryDays: the buy
	// day's own price never counts as recovery.
	RecoveryDays int
	// MinProfitPct is the qualification threshold, inclusive.
	MinProfitPct float64
}

// DefaultConfig is a 90-day window with a 10% profit bar.
func DefaultConfig() Config {
	return Config{RecoveryDays: 90, MinProfitPct: 10.0}
}

var (
	// ErrInvalidBuyPrice marks a buyer whose recorded buy price is zero
	// or negative; percentage profit is undefined for those.
	ErrInvalidBuyPrice = errors.New("pnl: buy price must be positive")
	// ErrNoRecoveryPrice marks a buyer whose token has no price samples
	// inside the recovery window.
	ErrNoRecoveryPrice = errors.New("pnl: no price samples in recovery window")
)

// Stats counts per-buyer outcomes of an evaluation pass.
type Stats struct {
	Buyers          int
	Qualified       int
	BelowThreshold  int
	NoRecoveryPrice int
	InvalidBuyPrice int
}

// Evaluate computes the recovery-peak flip metrics for one buyer. The
// result is returned regardless of the profit threshold; thresholding is
// the caller's concern. A nil result carries one of the sentinel errors.
func Evaluate(buyer *domain.BuyerRow, book *pricing.PriceBook, cfg Config) (*domain.FlipResult, error) {
	if buyer.FirstBuyPrice <= 0 {
		return nil, ErrInvalidBuyPrice
	}

	buyDay := domain.DayUTC(buyer.FirstBuyTimestamp)
	windowEnd := buyDay.AddDate(0, 0, cfg.RecoveryDays)

	var peak *domain.PriceSample
	for _, s := range book.Samples(buyer.TokenAddress) {
		if !s.PriceDate.After(buyDay) || s.PriceDate.After(windowEnd) {
			continue
		}
		// Strictly-greater comparison: on a tie the earlier sample wins.
		if peak == nil || s.PriceUSD > peak.PriceUSD {
			peak = s
		}
	}
	if peak == nil {
		return nil, ErrNoRecoveryPrice
	}

	profitPct := (peak.PriceUSD - buyer.FirstBuyPrice) / buyer.FirstBuyPrice * 100.0
	profitUSD := (peak.PriceUSD - buyer.FirstBuyPrice) * buyer.TotalAmountBought

	return &domain.FlipResult{
		CrisisID:              buyer.CrisisID,
		WalletAddress:         buyer.WalletAddress,
		TokenAddress:          buyer.TokenAddress,
		BuyPrice:              buyer.FirstBuyPrice,
		PeakRecoveryPrice:     peak.PriceUSD,
		EstimatedProfitPct:    profitPct,
		EstimatedProfitUSD:    profitUSD,
		BuyTimestamp:          buyer.FirstBuyTimestamp,
		PeakRecoveryTimestamp: peak.PriceDate,
	}, nil
}

// EvaluateAll evaluates every buyer and keeps the ones whose profit meets
// cfg.MinProfitPct. Buyers that cannot be evaluated are counted and
// skipped; a degenerate row never aborts the batch.
func EvaluateAll(buyers []*domain.BuyerRow, book *pricing.PriceBook, cfg Config) ([]*domain.FlipResult, Stats) {
	var flips []*domain.FlipResult
	stats := Stats{Buyers: len(buyers)}

	for _, b := range buyers {
		res, err := Evaluate(b, book, cfg)
		switch {
		case errors.Is(err, ErrInvalidBuyPrice):
			stats.InvalidBuyPrice++
			continue
		case errors.Is(err, ErrNoRecoveryPrice):
			stats.NoRecoveryPrice++
			continue
		}

		if res.EstimatedProfitPct < cfg.MinProfitPct {
			stats.BelowThreshold++
			continue
		}

		flips = append(flips, res)
		stats.Qualified++
	}

	return flips, stats
}
