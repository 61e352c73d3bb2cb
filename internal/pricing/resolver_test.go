package pricing

import (
	"testing"
	"time"

	"phoenix-flipper/internal/domain"
)

const uni = "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sample(token string, date time.Time, price float64) *domain.PriceSample {
	return &domain.PriceSample{TokenAddress: token, PriceDate: date, PriceUSD: price}
}

func purchase(token string, buyTime time.Time, amount float64) *domain.PurchaseRecord {
	return &domain.PurchaseRecord{
		CrisisID:      "crisis_001",
		WalletAddress: "0x47ac0fb4f2d84898e4d9e7b4dab3c24507a6d503",
		TokenAddress:  token,
		FirstBuyTime:  buyTime,
		TokenAmount:   amount,
	}
}

func TestPriceAsOf_MostRecentOnOrBefore(t *testing.T) {
	book := NewPriceBook([]*domain.PriceSample{
		sample(uni, day(2022, 3, 10), 2.00),
		sample(uni, day(2022, 3, 16), 1.50),
	})

	// Buy on the 15th: the 10th is the most recent on-or-before sample.
	price, source := book.PriceAsOf(uni, day(2022, 3, 15))
	if price != 2.00 {
		t.Errorf("expected 2.00, got %f", price)
	}
	if source != domain.PriceAsOf {
		t.Errorf("expected as_of source, got %s", source)
	}
}

func TestPriceAsOf_ExactDate(t *testing.T) {
	book := NewPriceBook([]*domain.PriceSample{
		sample(uni, day(2022, 3, 10), 2.00),
		sample(uni, day(2022, 3, 15), 1.75),
	})

	price, _ := book.PriceAsOf(uni, day(2022, 3, 15))
	if price != 1.75 {
		t.Errorf("same-day sample must win, got %f", price)
	}
}

func TestPriceAsOf_OnlyFutureDates(t *testing.T) {
	// Series starts after the buy date: earliest available, never
	// a forward-fill of some later minimum.
	book := NewPriceBook([]*domain.PriceSample{
		sample(uni, day(2022, 3, 20), 1.10),
		sample(uni, day(2022, 3, 25), 0.90),
	})

	price, source := book.PriceAsOf(uni, day(2022, 3, 15))
	if price != 1.10 {
		t.Errorf("expected earliest price 1.10, got %f", price)
	}
	if source != domain.PriceEarliest {
		t.Errorf("expected earliest source, got %s", source)
	}
}

func TestPriceAsOf_NoHistoryFallsBack(t *testing.T) {
	book := NewPriceBook(nil)

	price, source := book.PriceAsOf(uni, day(2022, 3, 15))
	if price != domain.FallbackPriceUSD {
		t.Errorf("expected sentinel %f, got %f", domain.FallbackPriceUSD, price)
	}
	if source != domain.PriceFallback {
		t.Errorf("expected fallback source, got %s", source)
	}
}

func TestPriceAsOf_UnsortedInput(t *testing.T) {
	book := NewPriceBook([]*domain.PriceSample{
		sample(uni, day(2022, 3, 16), 1.50),
		sample(uni, day(2022, 3, 10), 2.00),
	})

	price, _ := book.PriceAsOf(uni, day(2022, 3, 15))
	if price != 2.00 {
		t.Errorf("book must sort its series, got %f", price)
	}
}

func TestResolve_ComputesUSDSpent(t *testing.T) {
	book := NewPriceBook([]*domain.PriceSample{sample(uni, day(2022, 3, 10), 2.00)})
	purchases := []*domain.PurchaseRecord{purchase(uni, day(2022, 3, 15), 1000.0)}

	priced := Resolver{}.Resolve(purchases, book)
	if len(priced) != 1 {
		t.Fatalf("expected 1 priced purchase, got %d", len(priced))
	}
	if priced[0].FirstBuyPrice != 2.00 {
		t.Errorf("expected buy price 2.00, got %f", priced[0].FirstBuyPrice)
	}
	if priced[0].TotalUSDSpent != 2000.0 {
		t.Errorf("expected 2000.0 spent, got %f", priced[0].TotalUSDSpent)
	}
	if priced[0].NumTransactions != 1 {
		t.Errorf("per-transaction rows must carry num_transactions=1, got %d", priced[0].NumTransactions)
	}
}

func TestResolve_SentinelKeptByDefault(t *testing.T) {
	book := NewPriceBook(nil)
	purchases := []*domain.PurchaseRecord{purchase(uni, day(2022, 3, 15), 10.0)}

	priced := Resolver{}.Resolve(purchases, book)
	if len(priced) != 1 {
		t.Fatalf("fallback-priced row must be kept by default, got %d", len(priced))
	}
	if priced[0].PriceSource != domain.PriceFallback {
		t.Errorf("fallback rows must be tagged, got %s", priced[0].PriceSource)
	}
	if priced[0].TotalUSDSpent != 10.0 {
		t.Errorf("sentinel spend must be amount*1.0, got %f", priced[0].TotalUSDSpent)
	}
}

func TestResolve_DropUnpriced(t *testing.T) {
	book := NewPriceBook([]*domain.PriceSample{sample(uni, day(2022, 3, 10), 2.00)})
	unpricedToken := "0x95ad61b0a150d79219dcf64e1e6cc01f0b64c4ce"
	purchases := []*domain.PurchaseRecord{
		purchase(uni, day(2022, 3, 15), 1000.0),
		purchase(unpricedToken, day(2022, 3, 15), 5.0),
	}

	priced := Resolver{DropUnpriced: true}.Resolve(purchases, book)
	if len(priced) != 1 {
		t.Fatalf("unpriced row must be dropped, got %d rows", len(priced))
	}
	if priced[0].TokenAddress != uni {
		t.Errorf("wrong row survived: %+v", priced[0])
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	if got := (Resolver{}).Resolve(nil, NewPriceBook(nil)); got != nil {
		t.Errorf("empty input must yield nil, got %v", got)
	}
}
