package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/storage"
)

// Fixture addresses: the UNI crisis of March 2022 against mainnet pools.
const (
	FixtureCrisisToken = "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984" // UNI
	FixtureWETH        = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	FixtureUSDC        = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"

	fixturePoolUNIWETH = "0xd3d2e2692501a5c9ca623199d38826e513b4929e" // UNI/WETH V2
	fixturePoolUSDCUNI = "0x9f178e86e42ddf2379cb3d2acf9ed67a1ed2550a" // USDC/UNI V2
	fixturePoolV3      = "0x1d42064fc4beb5f8aaf85f4617ae8b3b5b8bd801" // UNI/WETH V3

	walletEarlyBuyer = "0x47ac0fb4f2d84898e4d9e7b4dab3c24507a6d503"
	walletLateBuyer  = "0x8eb8a3b98659cce290402893d0123abb75e3ab28"
	walletSmallBuyer = "0xf977814e90da44bfa03b6295a0616a897441acec"
)

// LoadFixtures populates the stores with one crisis, three pools, a
// window of swap logs, and a dip-then-recovery price curve. The data is
// deterministic so end-to-end runs are reproducible.
func LoadFixtures(
	ctx context.Context,
	crises storage.CrisisEventStore,
	pools storage.DexPoolStore,
	swapLogs storage.SwapLogStore,
	prices storage.PriceHistoryStore,
) error {
	if err := loadCrises(ctx, crises); err != nil {
		return err
	}
	if err := loadPools(ctx, pools); err != nil {
		return err
	}
	if err := loadSwapLogs(ctx, swapLogs); err != nil {
		return err
	}
	return loadPrices(ctx, prices)
}

func loadCrises(ctx context.Context, store storage.CrisisEventStore) error {
	return store.Insert(ctx, &domain.CrisisEvent{
		CrisisID:     "crisis_001",
		TokenAddress: FixtureCrisisToken,
		CrisisDate:   fixtureDay(2022, 3, 15),
		WindowStart:  fixtureDay(2022, 3, 15),
		WindowEnd:    fixtureDay(2022, 3, 22),
		CrisisName:   "Token Market Manipulation",
	})
}

func loadPools(ctx context.Context, store storage.DexPoolStore) error {
	pools := []*domain.DexPool{
		{
			PoolAddress:   fixturePoolUNIWETH,
			Token0Address: FixtureCrisisToken,
			Token1Address: FixtureWETH,
			DexProtocol:   domain.ProtocolUniswapV2,
		},
		{
			PoolAddress:   fixturePoolUSDCUNI,
			Token0Address: FixtureUSDC,
			Token1Address: FixtureCrisisToken,
			DexProtocol:   domain.ProtocolUniswapV2,
		},
		// Concentrated-liquidity pool: its logs are refused, never decoded.
		{
			PoolAddress:   fixturePoolV3,
			Token0Address: FixtureCrisisToken,
			Token1Address: FixtureWETH,
			DexProtocol:   domain.ProtocolUniswapV3,
		},
	}

	for _, p := range pools {
		if err := store.Insert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func loadSwapLogs(ctx context.Context, store storage.SwapLogStore) error {
	logs := []*domain.SwapLogRecord{
		// 1000 UNI out of the UNI/WETH pool (UNI is token0).
		swapFixture(fixturePoolUNIWETH, walletEarlyBuyer, "0xa1", 1,
			time.Date(2022, 3, 15, 10, 30, 0, 0, time.UTC),
			fixturePayload("0", "de0b6b3a7640000", "3635c9adc5dea00000", "0")),
		// 500 UNI out of the USDC/UNI pool (UNI is token1).
		swapFixture(fixturePoolUSDCUNI, walletLateBuyer, "0xa2", 2,
			time.Date(2022, 3, 18, 16, 45, 0, 0, time.UTC),
			fixturePayload("3b9aca00", "0", "0", "1b1ae4d6e2ef500000")),
		// 50 UNI buy from a third wallet near the window end.
		swapFixture(fixturePoolUNIWETH, walletSmallBuyer, "0xa3", 1,
			time.Date(2022, 3, 21, 9, 0, 0, 0, time.UTC),
			fixturePayload("0", "6f05b59d3b20000", "2b5e3af16b1880000", "0")),
		// Sell direction: UNI flows in, nothing of it flows out.
		swapFixture(fixturePoolUNIWETH, walletEarlyBuyer, "0xa4", 1,
			time.Date(2022, 3, 19, 12, 0, 0, 0, time.UTC),
			fixturePayload("3635c9adc5dea00000", "0", "0", "de0b6b3a7640000")),
		// Truncated payload: skipped as malformed, never aborts the run.
		swapFixture(fixturePoolUNIWETH, walletLateBuyer, "0xa5", 1,
			time.Date(2022, 3, 20, 8, 0, 0, 0, time.UTC),
			"0x"+strings.Repeat("0", 64)),
		// Burn-address buy: dropped after decode.
		swapFixture(fixturePoolUNIWETH, domain.ZeroAddress, "0xa6", 1,
			time.Date(2022, 3, 16, 11, 0, 0, 0, time.UTC),
			fixturePayload("0", "de0b6b3a7640000", "3635c9adc5dea00000", "0")),
		// V3 pool log: refused by protocol, counted, skipped.
		swapFixture(fixturePoolV3, walletEarlyBuyer, "0xa7", 1,
			time.Date(2022, 3, 17, 13, 0, 0, 0, time.UTC),
			fixturePayload("0", "de0b6b3a7640000", "3635c9adc5dea00000", "0")),
		// Before the window: fetched but filtered out.
		swapFixture(fixturePoolUNIWETH, walletEarlyBuyer, "0xa8", 1,
			time.Date(2022, 3, 10, 10, 0, 0, 0, time.UTC),
			fixturePayload("0", "de0b6b3a7640000", "3635c9adc5dea00000", "0")),
	}

	return store.InsertBulk(ctx, logs)
}

// loadPrices seeds a dip-then-recovery curve: UNI trades around $2
// during the window and peaks at $3.10 on April 12th.
func loadPrices(ctx context.Context, store storage.PriceHistoryStore) error {
	curve := []struct {
		date  time.Time
		price float64
	}{
		{fixtureDay(2022, 3, 10), 2.60},
		{fixtureDay(2022, 3, 14), 2.10},
		{fixtureDay(2022, 3, 15), 2.00},
		{fixtureDay(2022, 3, 18), 1.90},
		{fixtureDay(2022, 3, 21), 1.95},
		{fixtureDay(2022, 3, 25), 2.20},
		{fixtureDay(2022, 4, 1), 2.60},
		{fixtureDay(2022, 4, 12), 3.10},
		{fixtureDay(2022, 4, 25), 2.80},
		{fixtureDay(2022, 5, 20), 2.40},
	}

	samples := make([]*domain.PriceSample, 0, len(curve))
	for _, c := range curve {
		samples = append(samples, &domain.PriceSample{
			TokenAddress: FixtureCrisisToken,
			PriceDate:    c.date,
			PriceUSD:     c.price,
		})
	}

	return store.InsertBulk(ctx, samples)
}

func swapFixture(pool, wallet, txHash string, logIndex int, ts time.Time, data string) *domain.SwapLogRecord {
	return &domain.SwapLogRecord{
		BlockTimestamp:  ts,
		TransactionHash: txHash,
		LogIndex:        logIndex,
		PoolAddress:     pool,
		Topics:          []string{domain.SwapEventTopic},
		Data:            data,
		WalletAddress:   wallet,
	}
}

// fixturePayload builds a constant-product swap payload from four hex
// amounts (in0, in1, out0, out1), each left-padded to 32 bytes.
func fixturePayload(in0, in1, out0, out1 string) string {
	var sb strings.Builder
	sb.WriteString("0x")
	for _, v := range []string{in0, in1, out0, out1} {
		if len(v) > 64 {
			panic(fmt.Sprintf("fixture amount too wide: %s", v))
		}
		sb.WriteString(strings.Repeat("0", 64-len(v)))
		sb.WriteString(v)
	}
	return sb.String()
}

func fixtureDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
