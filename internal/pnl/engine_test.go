package pnl

import (
	"errors"
	"math"
	"testing"
	"time"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/pricing"
)

const uni = "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sample(date time.Time, price float64) *domain.PriceSample {
	return &domain.PriceSample{TokenAddress: uni, PriceDate: date, PriceUSD: price}
}

func buyer(buyTime time.Time, buyPrice, amount float64) *domain.BuyerRow {
	return &domain.BuyerRow{
		CrisisID:          "crisis_001",
		WalletAddress:     "0x47ac0fb4f2d84898e4d9e7b4dab3c24507a6d503",
		TokenAddress:      uni,
		FirstBuyTimestamp: buyTime,
		FirstBuyPrice:     buyPrice,
		TotalAmountBought: amount,
		TotalUSDSpent:     buyPrice * amount,
		NumTransactions:   1,
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %f, got %f", name, want, got)
	}
}

func TestEvaluate_ProfitableFlip(t *testing.T) {
	// Bought the dip at $2.00; the token recovers to a $3.00 peak.
	book := pricing.NewPriceBook([]*domain.PriceSample{
		sample(day(2022, 3, 20), 1.80),
		sample(day(2022, 4, 10), 3.00),
		sample(day(2022, 5, 1), 2.50),
	})

	res, err := Evaluate(buyer(day(2022, 3, 15), 2.00, 1000.0), book, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "peak price", res.PeakRecoveryPrice, 3.00)
	approx(t, "profit pct", res.EstimatedProfitPct, 50.0)
	approx(t, "profit usd", res.EstimatedProfitUSD, 1000.0)
	if !res.PeakRecoveryTimestamp.Equal(day(2022, 4, 10)) {
		t.Errorf("wrong peak timestamp: %v", res.PeakRecoveryTimestamp)
	}
	if res.CrisisID != "crisis_001" || res.TokenAddress != uni {
		t.Errorf("buyer identity lost: %+v", res)
	}
}

func TestEvaluate_BuyDatePriceExcluded(t *testing.T) {
	// The only sample is on the buy date itself; the recovery window
	// opens strictly after it.
	book := pricing.NewPriceBook([]*domain.PriceSample{
		sample(day(2022, 3, 15), 9.99),
	})

	_, err := Evaluate(buyer(day(2022, 3, 15), 2.00, 1.0), book, DefaultConfig())
	if !errors.Is(err, ErrNoRecoveryPrice) {
		t.Fatalf("expected ErrNoRecoveryPrice, got %v", err)
	}
}

func TestEvaluate_WindowEndInclusive(t *testing.T) {
	buyDay := day(2022, 3, 15)
	last := buyDay.AddDate(0, 0, 90)

	book := pricing.NewPriceBook([]*domain.PriceSample{
		sample(last, 4.00),
		sample(last.AddDate(0, 0, 1), 100.00),
	})

	res, err := Evaluate(buyer(buyDay, 2.00, 1.0), book, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "peak price", res.PeakRecoveryPrice, 4.00)
	if !res.PeakRecoveryTimestamp.Equal(last) {
		t.Errorf("peak past the window end leaked in: %v", res.PeakRecoveryTimestamp)
	}
}

func TestEvaluate_PeakTieKeepsEarliest(t *testing.T) {
	book := pricing.NewPriceBook([]*domain.PriceSample{
		sample(day(2022, 3, 20), 3.00),
		sample(day(2022, 4, 10), 3.00),
	})

	res, err := Evaluate(buyer(day(2022, 3, 15), 2.00, 1.0), book, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.PeakRecoveryTimestamp.Equal(day(2022, 3, 20)) {
		t.Errorf("tied peak must keep the earliest date, got %v", res.PeakRecoveryTimestamp)
	}
}

func TestEvaluate_InvalidBuyPrice(t *testing.T) {
	book := pricing.NewPriceBook([]*domain.PriceSample{sample(day(2022, 3, 20), 3.00)})

	for _, price := range []float64{0, -1.5} {
		_, err := Evaluate(buyer(day(2022, 3, 15), price, 1.0), book, DefaultConfig())
		if !errors.Is(err, ErrInvalidBuyPrice) {
			t.Errorf("buy price %f: expected ErrInvalidBuyPrice, got %v", price, err)
		}
	}
}

func TestEvaluate_LossIsStillAResult(t *testing.T) {
	// Thresholding is the caller's job; Evaluate reports negatives.
	book := pricing.NewPriceBook([]*domain.PriceSample{sample(day(2022, 3, 20), 1.00)})

	res, err := Evaluate(buyer(day(2022, 3, 15), 2.00, 10.0), book, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	approx(t, "profit pct", res.EstimatedProfitPct, -50.0)
	approx(t, "profit usd", res.EstimatedProfitUSD, -10.0)
}

func TestEvaluateAll_ThresholdInclusive(t *testing.T) {
	// Peak $2.20 on a $2.00 buy is exactly +10%: qualifies.
	book := pricing.NewPriceBook([]*domain.PriceSample{
		sample(day(2022, 3, 20), 2.20),
	})

	flips, stats := EvaluateAll([]*domain.BuyerRow{buyer(day(2022, 3, 15), 2.00, 1.0)}, book, DefaultConfig())
	if len(flips) != 1 {
		t.Fatalf("profit exactly at the threshold must qualify, got %d flips (stats %+v)", len(flips), stats)
	}
	if stats.Qualified != 1 {
		t.Errorf("expected 1 qualified, stats %+v", stats)
	}
}

func TestEvaluateAll_SkipsAndCounts(t *testing.T) {
	book := pricing.NewPriceBook([]*domain.PriceSample{
		sample(day(2022, 3, 20), 3.00),
	})

	buyers := []*domain.BuyerRow{
		buyer(day(2022, 3, 15), 2.00, 1000.0), // +50%, qualifies
		buyer(day(2022, 3, 15), 2.90, 1.0),    // +3.4%, below threshold
		buyer(day(2022, 3, 15), 0, 1.0),       // invalid buy price
		buyer(day(2021, 1, 1), 2.00, 1.0),     // window ends before any sample
	}

	flips, stats := EvaluateAll(buyers, book, DefaultConfig())
	if len(flips) != 1 {
		t.Fatalf("expected 1 flip, got %d (stats %+v)", len(flips), stats)
	}
	want := Stats{Buyers: 4, Qualified: 1, BelowThreshold: 1, InvalidBuyPrice: 1, NoRecoveryPrice: 1}
	if stats != want {
		t.Errorf("stats mismatch: got %+v, want %+v", stats, want)
	}
}

func TestEvaluateAll_EmptyInput(t *testing.T) {
	flips, stats := EvaluateAll(nil, pricing.NewPriceBook(nil), DefaultConfig())
	if len(flips) != 0 || stats.Buyers != 0 {
		t.Errorf("empty input must short-circuit, got %d flips", len(flips))
	}
}
