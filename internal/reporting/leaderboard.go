// Package reporting renders the flipper leaderboard for humans.
package reporting

import (
	"fmt"
	"sort"
	"strings"

	"phoenix-flipper/internal/domain"
)

// LeaderboardEntry aggregates one wallet's flips across all crises.
type LeaderboardEntry struct {
	WalletAddress  string
	Flips          int
	TotalProfitUSD float64
	BestProfitPct  float64
	Crises         int
}

// BuildLeaderboard rolls flip rows up per wallet, ranked by total
// estimated profit. topN <= 0 keeps every wallet.
func BuildLeaderboard(flips []*domain.FlipResult, topN int) []LeaderboardEntry {
	type acc struct {
		entry  LeaderboardEntry
		crises map[string]struct{}
	}

	byWallet := make(map[string]*acc)
	for _, f := range flips {
		wallet := domain.NormalizeAddress(f.WalletAddress)
		a, ok := byWallet[wallet]
		if !ok {
			a = &acc{
				entry:  LeaderboardEntry{WalletAddress: wallet},
				crises: make(map[string]struct{}),
			}
			byWallet[wallet] = a
		}

		a.entry.Flips++
		a.entry.TotalProfitUSD += f.EstimatedProfitUSD
		if f.EstimatedProfitPct > a.entry.BestProfitPct {
			a.entry.BestProfitPct = f.EstimatedProfitPct
		}
		a.crises[f.CrisisID] = struct{}{}
	}

	entries := make([]LeaderboardEntry, 0, len(byWallet))
	for _, a := range byWallet {
		a.entry.Crises = len(a.crises)
		entries = append(entries, a.entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalProfitUSD != entries[j].TotalProfitUSD {
			return entries[i].TotalProfitUSD > entries[j].TotalProfitUSD
		}
		return entries[i].WalletAddress < entries[j].WalletAddress
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}

// RenderMarkdown renders the leaderboard as a markdown table.
func RenderMarkdown(entries []LeaderboardEntry) string {
	var sb strings.Builder

	sb.WriteString("# Flipper Leaderboard\n\n")
	if len(entries) == 0 {
		sb.WriteString("No profitable flippers found.\n")
		return sb.String()
	}

	sb.WriteString("| Rank | Wallet | Flips | Crises | Total Profit (USD) | Best Flip |\n")
	sb.WriteString("|------|--------|-------|--------|--------------------|-----------|\n")
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("| %d | %s | %d | %d | %.2f | +%.2f%% |\n",
			i+1, e.WalletAddress, e.Flips, e.Crises, e.TotalProfitUSD, e.BestProfitPct))
	}

	return sb.String()
}

// RenderCSV renders the leaderboard as a CSV string.
func RenderCSV(entries []LeaderboardEntry) string {
	var sb strings.Builder

	sb.WriteString("rank,wallet_address,flips,crises,total_profit_usd,best_profit_pct\n")
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d,%s,%d,%d,%.6f,%.6f\n",
			i+1, e.WalletAddress, e.Flips, e.Crises, e.TotalProfitUSD, e.BestProfitPct))
	}

	return sb.String()
}
