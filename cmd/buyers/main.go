// Command buyers builds the crisis_buyers table: it scans swap logs over
// every configured crisis window, extracts qualifying purchases, prices
// them, and overwrites the output table.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phoenix-flipper/internal/logging"
	"phoenix-flipper/internal/observability"
	"phoenix-flipper/internal/pipeline"
	"phoenix-flipper/internal/pricing"
	"phoenix-flipper/internal/storage/clickhouse"
	"phoenix-flipper/internal/storage/migrations"
	"phoenix-flipper/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", envOr("POSTGRES_DSN", "postgres://localhost:5432/phoenix?sslmode=disable"), "PostgreSQL DSN for dimension tables")
	clickhouseDSN := flag.String("clickhouse-dsn", envOr("CLICKHOUSE_DSN", "clickhouse://localhost:9000/phoenix"), "ClickHouse DSN for the warehouse")
	swapLimit := flag.Int("swap-limit", 0, "Max swap logs to fetch (0 = default cap)")
	dryRun := flag.Bool("dry-run", false, "Compute and preview without loading")
	dropUnpriced := flag.Bool("drop-unpriced", false, "Drop purchases whose token has no price history instead of using the sentinel price")
	metricsAddr := flag.String("metrics-addr", envOr("METRICS_ADDR", ""), "Address for the /metrics endpoint (empty disables)")
	flag.Parse()

	log := logging.NewLogger("buyers")

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

	pool, err := postgres.NewPool(ctx, *postgresDSN)
	if err != nil {
		log.WithError(err).Error("postgres connection failed")
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		log.WithError(err).Error("postgres migrations failed")
		os.Exit(1)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		log.WithError(err).Error("clickhouse setup failed")
		os.Exit(1)
	}
	defer conn.Close()

	p := pipeline.NewBuyerPipeline(pipeline.BuyerOptions{
		Crises:    postgres.NewCrisisEventStore(pool),
		Links:     postgres.NewPoolLinkStore(pool),
		SwapLogs:  clickhouse.NewSwapLogStore(conn),
		Prices:    clickhouse.NewPriceHistoryStore(conn),
		Buyers:    clickhouse.NewBuyerStore(conn),
		Resolver:  pricing.Resolver{DropUnpriced: *dropUnpriced},
		SwapLimit: *swapLimit,
		DryRun:    *dryRun,
		Logger:    log,
	})

	started := time.Now()
	res, err := p.Run(ctx)
	if err != nil {
		observability.RecordPipelineRun("buyers", "error", time.Since(started).Seconds())
		log.WithError(err).Error("buyer pipeline failed")
		os.Exit(1)
	}
	observability.RecordPipelineRun("buyers", "ok", time.Since(started).Seconds())

	if res.Preview != nil {
		printPreview(res.Preview)
	}
	fmt.Printf("crises=%d links=%d swaps=%d purchases=%d loaded=%d duration=%s\n",
		res.Crises, res.Links, res.SwapsFetched, res.Extraction.Purchases,
		res.RowsLoaded, res.Duration.Round(time.Millisecond))
}

func printPreview(p *pipeline.Preview) {
	fmt.Printf("dry run: %s (%d rows)\n", p.Table, p.RowCount)
	fmt.Printf("columns: %v\n", p.Columns)
	for _, s := range p.Sample {
		fmt.Printf("  %s\n", s)
	}
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
