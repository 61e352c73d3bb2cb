// Command pipeline runs both stages end to end against in-memory stores
// seeded with fixture data. Useful for demos and for verifying the full
// flow without any infrastructure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"phoenix-flipper/internal/logging"
	"phoenix-flipper/internal/pipeline"
	"phoenix-flipper/internal/pnl"
	"phoenix-flipper/internal/reporting"
	"phoenix-flipper/internal/storage/memory"
)

func main() {
	recoveryDays := flag.Int("recovery-days", 90, "Length of the recovery window in days")
	minProfit := flag.Float64("min-profit", 10.0, "Qualification threshold in percent, inclusive")
	topN := flag.Int("top-n", 20, "Wallets to keep on the leaderboard (0 = all)")
	flag.Parse()

	log := logging.NewLogger("pipeline")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Warn("cancelling run")
		cancel()
	}()

	crises := memory.NewCrisisEventStore()
	pools := memory.NewDexPoolStore()
	swapLogs := memory.NewSwapLogStore()
	prices := memory.NewPriceHistoryStore()
	buyers := memory.NewBuyerStore()
	flippers := memory.NewFlipperStore()

	if err := pipeline.LoadFixtures(ctx, crises, pools, swapLogs, prices); err != nil {
		log.WithError(err).Error("fixture load failed")
		os.Exit(1)
	}

	fmt.Println("=== Crisis Buyer Pipeline ===")
	buyerRes, err := pipeline.NewBuyerPipeline(pipeline.BuyerOptions{
		Crises:   crises,
		Links:    memory.NewPoolLinkStore(crises, pools),
		SwapLogs: swapLogs,
		Prices:   prices,
		Buyers:   buyers,
		Logger:   log,
	}).Run(ctx)
	if err != nil {
		log.WithError(err).Error("buyer pipeline failed")
		os.Exit(1)
	}
	fmt.Printf("  crises:    %d\n", buyerRes.Crises)
	fmt.Printf("  links:     %d\n", buyerRes.Links)
	fmt.Printf("  swaps:     %d\n", buyerRes.SwapsFetched)
	fmt.Printf("  purchases: %d\n", buyerRes.Extraction.Purchases)
	fmt.Printf("  loaded:    %d\n\n", buyerRes.RowsLoaded)

	fmt.Println("=== Recovery PnL Pipeline ===")
	flipRes, err := pipeline.NewFlipPipeline(pipeline.FlipOptions{
		Buyers:   buyers,
		Prices:   prices,
		Flippers: flippers,
		Config:   pnl.Config{RecoveryDays: *recoveryDays, MinProfitPct: *minProfit},
		Logger:   log,
	}).Run(ctx)
	if err != nil {
		log.WithError(err).Error("pnl pipeline failed")
		os.Exit(1)
	}
	fmt.Printf("  buyers:    %d\n", flipRes.Buyers)
	fmt.Printf("  qualified: %d\n", flipRes.Evaluation.Qualified)
	fmt.Printf("  loaded:    %d\n\n", flipRes.RowsLoaded)

	flips, err := flippers.GetAll(ctx)
	if err != nil {
		log.WithError(err).Error("flip readback failed")
		os.Exit(1)
	}
	fmt.Println(reporting.RenderMarkdown(reporting.BuildLeaderboard(flips, *topN)))
}
