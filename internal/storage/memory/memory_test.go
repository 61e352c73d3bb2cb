package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCrisis(id string, date time.Time) *domain.CrisisEvent {
	return &domain.CrisisEvent{
		CrisisID:     id,
		TokenAddress: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
		CrisisDate:   date,
		WindowStart:  date,
		WindowEnd:    date.AddDate(0, 0, 7),
		CrisisName:   "Token Market Manipulation",
	}
}

func TestCrisisEventStore_InsertAndGet(t *testing.T) {
	store := NewCrisisEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testCrisis("crisis_001", day(2022, 3, 15))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "crisis_001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CrisisName != "Token Market Manipulation" {
		t.Errorf("CrisisName mismatch: got %s", got.CrisisName)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCrisisEventStore_DuplicateKey(t *testing.T) {
	store := NewCrisisEventStore()
	ctx := context.Background()

	_ = store.Insert(ctx, testCrisis("crisis_001", day(2022, 3, 15)))
	err := store.Insert(ctx, testCrisis("crisis_001", day(2022, 5, 1)))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCrisisEventStore_GetAllOrdered(t *testing.T) {
	store := NewCrisisEventStore()
	ctx := context.Background()

	_ = store.Insert(ctx, testCrisis("crisis_002", day(2022, 5, 1)))
	_ = store.Insert(ctx, testCrisis("crisis_001", day(2022, 3, 15)))

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 2 || got[0].CrisisID != "crisis_001" {
		t.Errorf("expected crisis_date ordering, got %+v", got)
	}
}

func TestPoolLinkStore_Links(t *testing.T) {
	crises := NewCrisisEventStore()
	pools := NewDexPoolStore()
	ctx := context.Background()

	_ = crises.Insert(ctx, testCrisis("crisis_001", day(2022, 3, 15)))
	_ = pools.Insert(ctx, &domain.DexPool{
		PoolAddress:   "0xD3D2E2692501A5C9CA623199D38826E513B4929E",
		Token0Address: "0x1F9840A85D5AF5BF1D1762F925BDADDC4201F984",
		Token1Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		DexProtocol:   domain.ProtocolUniswapV2,
	})
	// Unrelated pool: no link.
	_ = pools.Insert(ctx, &domain.DexPool{
		PoolAddress:   "0xb4e16d0168e52d35cacd2c6185b44281ec28c9dc",
		Token0Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		Token1Address: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		DexProtocol:   domain.ProtocolUniswapV2,
	})

	links, err := NewPoolLinkStore(crises, pools).Links(ctx)
	if err != nil {
		t.Fatalf("Links failed: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}

	l := links[0]
	if l.PoolAddress != "0xd3d2e2692501a5c9ca623199d38826e513b4929e" {
		t.Errorf("pool address not normalized: %q", l.PoolAddress)
	}
	if l.CrisisToken != "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984" {
		t.Errorf("crisis token not normalized: %q", l.CrisisToken)
	}
	if !l.WindowStart.Equal(day(2022, 3, 15)) || !l.WindowEnd.Equal(day(2022, 3, 22)) {
		t.Errorf("crisis window lost: %v .. %v", l.WindowStart, l.WindowEnd)
	}
}

func TestSwapLogStore_GetByPools(t *testing.T) {
	store := NewSwapLogStore()
	ctx := context.Background()
	pool := "0xd3d2e2692501a5c9ca623199d38826e513b4929e"

	logs := []*domain.SwapLogRecord{
		{PoolAddress: pool, Topics: []string{domain.SwapEventTopic}, BlockTimestamp: day(2022, 3, 16)},
		{PoolAddress: pool, Topics: []string{domain.SwapEventTopic}, BlockTimestamp: day(2022, 3, 18)},
		// Non-swap topic: filtered at the store.
		{PoolAddress: pool, Topics: []string{"0x0d3648bd"}, BlockTimestamp: day(2022, 3, 17)},
		// Out of range.
		{PoolAddress: pool, Topics: []string{domain.SwapEventTopic}, BlockTimestamp: day(2022, 4, 1)},
		// Different pool.
		{PoolAddress: "0xother", Topics: []string{domain.SwapEventTopic}, BlockTimestamp: day(2022, 3, 16)},
	}
	if err := store.InsertBulk(ctx, logs); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByPools(ctx, []string{pool}, day(2022, 3, 15), day(2022, 3, 22), 0)
	if err != nil {
		t.Fatalf("GetByPools failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(got))
	}
	if !got[0].BlockTimestamp.After(got[1].BlockTimestamp) {
		t.Errorf("expected newest-first ordering")
	}
}

func TestSwapLogStore_TopicMatchIsCaseInsensitive(t *testing.T) {
	store := NewSwapLogStore()
	ctx := context.Background()
	pool := "0xd3d2e2692501a5c9ca623199d38826e513b4929e"

	logs := []*domain.SwapLogRecord{
		{PoolAddress: pool, Topics: []string{strings.ToUpper(domain.SwapEventTopic)}, BlockTimestamp: day(2022, 3, 16)},
	}
	if err := store.InsertBulk(ctx, logs); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByPools(ctx, []string{pool}, day(2022, 3, 15), day(2022, 3, 22), 0)
	if err != nil {
		t.Fatalf("GetByPools failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("upper-cased swap topic must still match, got %d logs", len(got))
	}
}

func TestSwapLogStore_Limit(t *testing.T) {
	store := NewSwapLogStore()
	ctx := context.Background()
	pool := "0xd3d2e2692501a5c9ca623199d38826e513b4929e"

	var logs []*domain.SwapLogRecord
	for i := 0; i < 5; i++ {
		logs = append(logs, &domain.SwapLogRecord{
			PoolAddress:    pool,
			Topics:         []string{domain.SwapEventTopic},
			BlockTimestamp: day(2022, 3, 16).Add(time.Duration(i) * time.Hour),
		})
	}
	_ = store.InsertBulk(ctx, logs)

	got, err := store.GetByPools(ctx, []string{pool}, day(2022, 3, 15), day(2022, 3, 22), 3)
	if err != nil {
		t.Fatalf("GetByPools failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected limit of 3, got %d", len(got))
	}
}

func TestPriceHistoryStore_GetByTokens(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()
	uni := "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984"

	samples := []*domain.PriceSample{
		{TokenAddress: uni, PriceDate: day(2022, 3, 16), PriceUSD: 1.5},
		{TokenAddress: uni, PriceDate: day(2022, 3, 10), PriceUSD: 2.0},
		{TokenAddress: "0xother", PriceDate: day(2022, 3, 10), PriceUSD: 9.0},
	}
	if err := store.InsertBulk(ctx, samples); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTokens(ctx, []string{uni})
	if err != nil {
		t.Fatalf("GetByTokens failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if !got[0].PriceDate.Before(got[1].PriceDate) {
		t.Errorf("expected date ascending ordering")
	}
}

func TestBuyerStore_OverwriteReplaces(t *testing.T) {
	store := NewBuyerStore()
	ctx := context.Background()

	first := []*domain.BuyerRow{
		{CrisisID: "crisis_001", WalletAddress: "0xaaa", FirstBuyTimestamp: day(2022, 3, 15), NumTransactions: 1},
		{CrisisID: "crisis_001", WalletAddress: "0xbbb", FirstBuyTimestamp: day(2022, 3, 16), NumTransactions: 1},
	}
	if err := store.Overwrite(ctx, first); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	second := []*domain.BuyerRow{
		{CrisisID: "crisis_002", WalletAddress: "0xccc", FirstBuyTimestamp: day(2022, 5, 1), NumTransactions: 1},
	}
	if err := store.Overwrite(ctx, second); err != nil {
		t.Fatalf("second Overwrite failed: %v", err)
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 1 || got[0].CrisisID != "crisis_002" {
		t.Errorf("overwrite must replace, not append: %+v", got)
	}

	// Overwriting with nothing leaves an empty table.
	if err := store.Overwrite(ctx, nil); err != nil {
		t.Fatalf("empty Overwrite failed: %v", err)
	}
	got, _ = store.GetAll(ctx)
	if len(got) != 0 {
		t.Errorf("expected empty table, got %d rows", len(got))
	}
}

func TestFlipperStore_GetAllOrdered(t *testing.T) {
	store := NewFlipperStore()
	ctx := context.Background()

	rows := []*domain.FlipResult{
		{CrisisID: "crisis_001", WalletAddress: "0xaaa", EstimatedProfitPct: 12.0},
		{CrisisID: "crisis_001", WalletAddress: "0xbbb", EstimatedProfitPct: 80.0},
	}
	if err := store.Overwrite(ctx, rows); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if got[0].EstimatedProfitPct != 80.0 {
		t.Errorf("expected profit desc ordering, got %+v", got)
	}
}

func TestSwapLogStore_ConcurrentAccess(t *testing.T) {
	store := NewSwapLogStore()
	ctx := context.Background()
	pool := "0xd3d2e2692501a5c9ca623199d38826e513b4929e"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.InsertBulk(ctx, []*domain.SwapLogRecord{{
				PoolAddress:    pool,
				Topics:         []string{domain.SwapEventTopic},
				BlockTimestamp: day(2022, 3, 16).Add(time.Duration(i) * time.Minute),
			}})
			_, _ = store.GetByPools(ctx, []string{pool}, day(2022, 3, 15), day(2022, 3, 22), 0)
		}(i)
	}
	wg.Wait()

	got, err := store.GetByPools(ctx, []string{pool}, day(2022, 3, 15), day(2022, 3, 22), 0)
	if err != nil {
		t.Fatalf("GetByPools failed: %v", err)
	}
	if len(got) != 8 {
		t.Errorf("expected 8 logs after concurrent inserts, got %d", len(got))
	}
}
