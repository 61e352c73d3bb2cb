package domain

import "time"

// PurchaseRecord is one qualifying crisis-token buy, produced one-to-one
// from a CrisisSwap the decoder classified as a purchase.
// TokenAmount is always > 0 and WalletAddress is never the zero address.
type PurchaseRecord struct {
	CrisisID        string
	CrisisName      string
	WalletAddress   string
	TokenAddress    string // the crisis token
	FirstBuyTime    time.Time
	TransactionHash string // kept for tracing; dropped from the output schema
	TokenAmount     float64
	DexProtocol     string
}

// PriceSource tags how a purchase's buy price was resolved.
type PriceSource string

const (
	// PriceAsOf is the most recent price on or before the buy date.
	PriceAsOf PriceSource = "as_of"
	// PriceEarliest is the first available price, used when the series
	// starts after the buy date.
	PriceEarliest PriceSource = "earliest"
	// PriceFallback is the 1.0 sentinel used when the token has no
	// price history at all. Consumers can detect and drop these.
	PriceFallback PriceSource = "fallback"
)

// FallbackPriceUSD is the sentinel buy price for tokens with no history.
const FallbackPriceUSD = 1.0

// PricedPurchase is a PurchaseRecord enriched with its resolved buy price.
// Explicitly per-transaction: NumTransactions is always 1 and rows are
// never aggregated across a wallet's buys.
type PricedPurchase struct {
	PurchaseRecord
	FirstBuyPrice   float64
	TotalUSDSpent   float64 // TokenAmount * FirstBuyPrice
	NumTransactions int     // always 1
	PriceSource     PriceSource
}
