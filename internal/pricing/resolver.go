// Package pricing resolves buy prices for purchases against a sparse
// daily price series.
package pricing

import (
	"sort"
	"time"

	"phoenix-flipper/internal/domain"
)

// PriceBook indexes daily price samples by token for as-of lookups.
// Series are sorted by date ascending; days may be missing.
type PriceBook struct {
	byToken map[string][]*domain.PriceSample
}

// NewPriceBook builds a PriceBook from raw samples. Token addresses are
// normalized; samples are copied and sorted, never mutated in place.
func NewPriceBook(samples []*domain.PriceSample) *PriceBook {
	byToken := make(map[string][]*domain.PriceSample)
	for _, s := range samples {
		token := domain.NormalizeAddress(s.TokenAddress)
		c := *s
		c.TokenAddress = token
		c.PriceDate = domain.DayUTC(c.PriceDate)
		byToken[token] = append(byToken[token], &c)
	}

	for _, series := range byToken {
		sort.Slice(series, func(i, j int) bool {
			return series[i].PriceDate.Before(series[j].PriceDate)
		})
	}

	return &PriceBook{byToken: byToken}
}

// Tokens returns the number of tokens with at least one sample.
func (b *PriceBook) Tokens() int {
	return len(b.byToken)
}

// Samples returns the ascending series for a token, or nil.
func (b *PriceBook) Samples(token string) []*domain.PriceSample {
	return b.byToken[domain.NormalizeAddress(token)]
}

// PriceAsOf resolves the price to use for a purchase on buyDate:
// the most recent sample on or before buyDate; failing that, the first
// available sample; failing that, the 1.0 sentinel. The source tag tells
// the caller which rule applied. Resolution never fails.
func (b *PriceBook) PriceAsOf(token string, buyDate time.Time) (float64, domain.PriceSource) {
	series := b.Samples(token)
	if len(series) == 0 {
		return domain.FallbackPriceUSD, domain.PriceFallback
	}

	day := domain.DayUTC(buyDate)

	// Backward scan for the most recent on-or-before sample.
	// Never forward-fill: a later price is only used when no earlier
	// one exists at all.
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].PriceDate.After(day) {
			return series[i].PriceUSD, domain.PriceAsOf
		}
	}

	return series[0].PriceUSD, domain.PriceEarliest
}

// Resolver prices purchase records.
type Resolver struct {
	// DropUnpriced discards purchases whose token has no price history
	// instead of pricing them at the sentinel. The sentinel fabricates
	// spend figures, so callers that feed downstream accounting may
	// prefer to lose the rows.
	DropUnpriced bool
}

// Resolve enriches each purchase with its resolved buy price and USD
// spend. The computation never fails; unpriced tokens degrade to the
// sentinel (or are dropped when DropUnpriced is set).
func (r Resolver) Resolve(purchases []*domain.PurchaseRecord, book *PriceBook) []*domain.PricedPurchase {
	if len(purchases) == 0 {
		return nil
	}

	out := make([]*domain.PricedPurchase, 0, len(purchases))
	for _, p := range purchases {
		price, source := book.PriceAsOf(p.TokenAddress, p.FirstBuyTime)
		if source == domain.PriceFallback && r.DropUnpriced {
			continue
		}

		out = append(out, &domain.PricedPurchase{
			PurchaseRecord:  *p,
			FirstBuyPrice:   price,
			TotalUSDSpent:   p.TokenAmount * price,
			NumTransactions: 1,
			PriceSource:     source,
		})
	}

	return out
}
