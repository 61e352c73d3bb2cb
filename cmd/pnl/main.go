// Command pnl builds the profitable_flippers table from crisis_buyers:
// every buyer is evaluated over the bounded recovery window and the
// qualifying flips are loaded, best first. Optionally writes the
// per-wallet leaderboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"phoenix-flipper/internal/logging"
	"phoenix-flipper/internal/observability"
	"phoenix-flipper/internal/pipeline"
	"phoenix-flipper/internal/pnl"
	"phoenix-flipper/internal/reporting"
	"phoenix-flipper/internal/storage/clickhouse"
	"phoenix-flipper/internal/storage/migrations"
)

func main() {
	clickhouseDSN := flag.String("clickhouse-dsn", envOr("CLICKHOUSE_DSN", "clickhouse://localhost:9000/phoenix"), "ClickHouse DSN for the warehouse")
	recoveryDays := flag.Int("recovery-days", 90, "Length of the recovery window in days")
	minProfit := flag.Float64("min-profit", 10.0, "Qualification threshold in percent, inclusive")
	dryRun := flag.Bool("dry-run", false, "Compute and preview without loading")
	topN := flag.Int("top-n", 20, "Wallets to keep on the leaderboard (0 = all)")
	reportDir := flag.String("report-dir", "", "Directory for leaderboard.md and leaderboard.csv (empty disables)")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ""), "Address for the /metrics endpoint (empty disables)")
	flag.Parse()

	log := logging.NewLogger("pnl")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Warn("cancelling run")
		cancel()
	}()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		log.WithError(err).Error("clickhouse setup failed")
		os.Exit(1)
	}
	defer conn.Close()

	flipperStore := clickhouse.NewFlipperStore(conn)
	p := pipeline.NewFlipPipeline(pipeline.FlipOptions{
		Buyers:   clickhouse.NewBuyerStore(conn),
		Prices:   clickhouse.NewPriceHistoryStore(conn),
		Flippers: flipperStore,
		Config:   pnl.Config{RecoveryDays: *recoveryDays, MinProfitPct: *minProfit},
		DryRun:   *dryRun,
		Logger:   log,
	})

	started := time.Now()
	res, err := p.Run(ctx)
	if err != nil {
		observability.RecordPipelineRun("pnl", "error", time.Since(started).Seconds())
		log.WithError(err).Error("pnl pipeline failed")
		os.Exit(1)
	}
	observability.RecordPipelineRun("pnl", "ok", time.Since(started).Seconds())

	if res.Preview != nil {
		fmt.Printf("dry run: %s (%d rows)\n", res.Preview.Table, res.Preview.RowCount)
		fmt.Printf("columns: %v\n", res.Preview.Columns)
		for _, s := range res.Preview.Sample {
			fmt.Printf("  %s\n", s)
		}
	}
	fmt.Printf("buyers=%d qualified=%d loaded=%d duration=%s\n",
		res.Buyers, res.Evaluation.Qualified, res.RowsLoaded,
		res.Duration.Round(time.Millisecond))

	if *reportDir != "" && !*dryRun {
		if err := writeLeaderboard(ctx, flipperStore, *reportDir, *topN); err != nil {
			log.WithError(err).Error("leaderboard generation failed")
			os.Exit(1)
		}
		log.WithField("dir", *reportDir).Info("leaderboard written")
	}
}

func writeLeaderboard(ctx context.Context, store *clickhouse.FlipperStore, dir string, topN int) error {
	flips, err := store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load flips: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	entries := reporting.BuildLeaderboard(flips, topN)
	if err := os.WriteFile(filepath.Join(dir, "leaderboard.md"), []byte(reporting.RenderMarkdown(entries)), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "leaderboard.csv"), []byte(reporting.RenderCSV(entries)), 0644)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
