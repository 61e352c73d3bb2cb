// Package extract turns window-filtered crisis swaps into purchase records.
package extract

import (
	"phoenix-flipper/internal/decoder"
	"phoenix-flipper/internal/domain"
)

// Stats counts per-record outcomes of an extraction pass. Degenerate
// records are skipped, never escalated into a batch abort.
type Stats struct {
	Swaps               int
	Purchases           int
	NotAPurchase        int
	Malformed           int
	UnsupportedProtocol int
	NonSwapTopic        int
	BurnOrEmptyWallet   int
}

// Extract runs the decoder over each crisis swap and emits one
// PurchaseRecord per qualifying buy.
//
// Dropped: logs whose leading topic is not the swap event signature,
// non-purchases, zero amounts, empty wallets, and the zero address.
// The crisis association, DEX protocol, and transaction hash are carried
// through on the record for tracing.
func Extract(crisisSwaps []*domain.CrisisSwap) ([]*domain.PurchaseRecord, Stats) {
	var purchases []*domain.PurchaseRecord
	stats := Stats{Swaps: len(crisisSwaps)}

	for _, cs := range crisisSwaps {
		if !decoder.IsSwapLog(cs.Swap.Topics) {
			stats.NonSwapTopic++
			continue
		}

		res := decoder.Decode(
			cs.Swap.Data,
			cs.Link.CrisisToken,
			cs.Link.Token0Address,
			cs.Link.Token1Address,
			cs.Link.DexProtocol,
		)

		switch res.Kind {
		case decoder.Malformed:
			stats.Malformed++
			continue
		case decoder.UnsupportedProtocol:
			stats.UnsupportedProtocol++
			continue
		case decoder.NotAPurchase:
			stats.NotAPurchase++
			continue
		}

		if res.Amount <= 0 {
			stats.NotAPurchase++
			continue
		}

		wallet := domain.NormalizeAddress(cs.Swap.WalletAddress)
		if wallet == "" || wallet == domain.ZeroAddress {
			stats.BurnOrEmptyWallet++
			continue
		}

		purchases = append(purchases, &domain.PurchaseRecord{
			CrisisID:        cs.Link.CrisisID,
			CrisisName:      cs.Link.CrisisName,
			WalletAddress:   wallet,
			TokenAddress:    domain.NormalizeAddress(cs.Link.CrisisToken),
			FirstBuyTime:    cs.Swap.BlockTimestamp,
			TransactionHash: cs.Swap.TransactionHash,
			TokenAmount:     res.Amount,
			DexProtocol:     cs.Link.DexProtocol,
		})
		stats.Purchases++
	}

	return purchases, stats
}
