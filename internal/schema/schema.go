// Package schema pins the output contracts of the two warehouse tables:
// column order, row ordering, and pre-load validation.
package schema

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"phoenix-flipper/internal/domain"
)

// BuyerColumns is the column order of the crisis_buyers table.
var BuyerColumns = []string{
	"crisis_id",
	"wallet_address",
	"token_address",
	"first_buy_timestamp",
	"first_buy_price",
	"total_amount_bought",
	"total_usd_spent",
	"num_transactions",
}

// FlipperColumns is the column order of the profitable_flippers table.
var FlipperColumns = []string{
	"crisis_id",
	"wallet_address",
	"token_address",
	"buy_price",
	"peak_recovery_price",
	"estimated_profit_pct",
	"estimated_profit_usd",
	"buy_timestamp",
	"peak_recovery_timestamp",
}

// FormatBuyers returns a normalized copy of the buyer rows: addresses
// lower-cased, timestamps in UTC, ordered by crisis_id ascending then
// first_buy_timestamp descending. Rows missing a required identifier or
// timestamp are dropped rather than carried into the load. Formatting an
// already-formatted slice is a no-op.
func FormatBuyers(rows []*domain.BuyerRow) []*domain.BuyerRow {
	out := make([]*domain.BuyerRow, 0, len(rows))
	for _, r := range rows {
		c := *r
		c.CrisisID = strings.TrimSpace(c.CrisisID)
		c.WalletAddress = domain.NormalizeAddress(c.WalletAddress)
		c.TokenAddress = domain.NormalizeAddress(c.TokenAddress)
		c.FirstBuyTimestamp = c.FirstBuyTimestamp.UTC()
		if c.CrisisID == "" || c.WalletAddress == "" || c.TokenAddress == "" || c.FirstBuyTimestamp.IsZero() {
			continue
		}
		out = append(out, &c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CrisisID != out[j].CrisisID {
			return out[i].CrisisID < out[j].CrisisID
		}
		if !out[i].FirstBuyTimestamp.Equal(out[j].FirstBuyTimestamp) {
			return out[i].FirstBuyTimestamp.After(out[j].FirstBuyTimestamp)
		}
		return out[i].WalletAddress < out[j].WalletAddress
	})

	return out
}

// FormatFlips returns a normalized copy of the flip rows ordered by
// estimated profit percentage, best first. Drops incomplete rows and is
// idempotent like FormatBuyers.
func FormatFlips(rows []*domain.FlipResult) []*domain.FlipResult {
	out := make([]*domain.FlipResult, 0, len(rows))
	for _, r := range rows {
		c := *r
		c.CrisisID = strings.TrimSpace(c.CrisisID)
		c.WalletAddress = domain.NormalizeAddress(c.WalletAddress)
		c.TokenAddress = domain.NormalizeAddress(c.TokenAddress)
		c.BuyTimestamp = c.BuyTimestamp.UTC()
		c.PeakRecoveryTimestamp = c.PeakRecoveryTimestamp.UTC()
		if c.CrisisID == "" || c.WalletAddress == "" || c.TokenAddress == "" ||
			c.BuyTimestamp.IsZero() || c.PeakRecoveryTimestamp.IsZero() {
			continue
		}
		out = append(out, &c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EstimatedProfitPct != out[j].EstimatedProfitPct {
			return out[i].EstimatedProfitPct > out[j].EstimatedProfitPct
		}
		return out[i].WalletAddress < out[j].WalletAddress
	})

	return out
}

// ValidateBuyers checks every row against the crisis_buyers contract.
// The first violation is returned with its row index; a failed batch is
// never partially loaded.
func ValidateBuyers(rows []*domain.BuyerRow) error {
	for i, r := range rows {
		if err := validateBuyer(r); err != nil {
			return fmt.Errorf("buyer row %d: %w", i, err)
		}
	}
	return nil
}

func validateBuyer(r *domain.BuyerRow) error {
	if r.CrisisID == "" {
		return fmt.Errorf("empty crisis_id")
	}
	if r.WalletAddress == "" {
		return fmt.Errorf("empty wallet_address")
	}
	if r.TokenAddress == "" {
		return fmt.Errorf("empty token_address")
	}
	if err := validTimestamp("first_buy_timestamp", r.FirstBuyTimestamp); err != nil {
		return err
	}
	if r.FirstBuyPrice < 0 {
		return fmt.Errorf("negative first_buy_price %f", r.FirstBuyPrice)
	}
	if r.TotalAmountBought < 0 {
		return fmt.Errorf("negative total_amount_bought %f", r.TotalAmountBought)
	}
	if r.TotalUSDSpent < 0 {
		return fmt.Errorf("negative total_usd_spent %f", r.TotalUSDSpent)
	}
	if r.NumTransactions != 1 {
		return fmt.Errorf("num_transactions must be 1, got %d", r.NumTransactions)
	}
	return nil
}

// ValidateFlips checks every row against the profitable_flippers contract.
func ValidateFlips(rows []*domain.FlipResult) error {
	for i, r := range rows {
		if err := validateFlip(r); err != nil {
			return fmt.Errorf("flip row %d: %w", i, err)
		}
	}
	return nil
}

func validateFlip(r *domain.FlipResult) error {
	if r.CrisisID == "" {
		return fmt.Errorf("empty crisis_id")
	}
	if r.WalletAddress == "" {
		return fmt.Errorf("empty wallet_address")
	}
	if r.TokenAddress == "" {
		return fmt.Errorf("empty token_address")
	}
	if r.BuyPrice <= 0 {
		return fmt.Errorf("buy_price must be positive, got %f", r.BuyPrice)
	}
	if r.PeakRecoveryPrice < 0 {
		return fmt.Errorf("negative peak_recovery_price %f", r.PeakRecoveryPrice)
	}
	if err := validTimestamp("buy_timestamp", r.BuyTimestamp); err != nil {
		return err
	}
	if err := validTimestamp("peak_recovery_timestamp", r.PeakRecoveryTimestamp); err != nil {
		return err
	}
	if r.PeakRecoveryTimestamp.Before(r.BuyTimestamp) {
		return fmt.Errorf("peak_recovery_timestamp precedes buy_timestamp")
	}
	return nil
}

func validTimestamp(name string, ts time.Time) error {
	if ts.IsZero() {
		return fmt.Errorf("zero %s", name)
	}
	return nil
}
