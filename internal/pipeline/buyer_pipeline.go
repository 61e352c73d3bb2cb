// Package pipeline wires the compute stages against storage into the two
// batch runs: buyer identification and recovery PnL.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/extract"
	"phoenix-flipper/internal/logging"
	"phoenix-flipper/internal/observability"
	"phoenix-flipper/internal/pricing"
	"phoenix-flipper/internal/schema"
	"phoenix-flipper/internal/storage"
	"phoenix-flipper/internal/window"
)

// ErrNoCrises means the crisis_events dimension is empty. There is
// nothing to analyze; the run is aborted rather than loading an empty
// table over a previous good one.
var ErrNoCrises = errors.New("pipeline: no crisis events configured")

// ErrNoPools means no pool trades any crisis token.
var ErrNoPools = errors.New("pipeline: no pools linked to any crisis token")

// Preview is the dry-run summary printed instead of loading.
type Preview struct {
	Table    string
	Columns  []string
	RowCount int
	Sample   []string
}

// BuyerOptions configures a BuyerPipeline.
type BuyerOptions struct {
	Crises    storage.CrisisEventStore
	Links     storage.PoolLinkStore
	SwapLogs  storage.SwapLogStore
	Prices    storage.PriceHistoryStore
	Buyers    storage.BuyerStore
	Resolver  pricing.Resolver
	SwapLimit int  // 0 means storage.DefaultSwapLogLimit
	DryRun    bool // compute and preview, never load
	Logger    *logrus.Entry
	Metrics   *observability.Metrics
}

// BuyerRunResult summarizes a buyer pipeline run.
type BuyerRunResult struct {
	Crises       int
	Links        int
	SwapsFetched int
	CrisisSwaps  int
	Extraction   extract.Stats
	RowsLoaded   int
	DryRun       bool
	Preview      *Preview
	Duration     time.Duration
}

// BuyerPipeline builds the crisis_buyers table.
type BuyerPipeline struct {
	opts BuyerOptions
}

// NewBuyerPipeline creates a buyer pipeline.
func NewBuyerPipeline(opts BuyerOptions) *BuyerPipeline {
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("buyer-pipeline")
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	return &BuyerPipeline{opts: opts}
}

// Run executes the full extract-price-load sequence. Degenerate input
// records are skipped and counted; infrastructure failures and empty
// dimensions abort the run.
func (p *BuyerPipeline) Run(ctx context.Context) (*BuyerRunResult, error) {
	started := time.Now()
	log := p.opts.Logger
	res := &BuyerRunResult{DryRun: p.opts.DryRun}

	crises, err := p.opts.Crises.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load crisis events: %w", err)
	}
	if len(crises) == 0 {
		return nil, ErrNoCrises
	}
	res.Crises = len(crises)

	links, err := p.opts.Links.Links(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pool crisis links: %w", err)
	}
	if len(links) == 0 {
		return nil, ErrNoPools
	}
	res.Links = len(links)
	log.WithFields(logrus.Fields{"crises": len(crises), "links": len(links)}).Info("dimensions loaded")

	pools := make([]string, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	start, end := linkSpan(links)
	for _, l := range links {
		pool := domain.NormalizeAddress(l.PoolAddress)
		if _, ok := seen[pool]; ok {
			continue
		}
		seen[pool] = struct{}{}
		pools = append(pools, pool)
	}

	limit := p.opts.SwapLimit
	if limit <= 0 {
		limit = storage.DefaultSwapLogLimit
	}
	swaps, err := p.opts.SwapLogs.GetByPools(ctx, pools, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch swap logs: %w", err)
	}
	res.SwapsFetched = len(swaps)
	p.opts.Metrics.SwapLogsFetched.Add(float64(len(swaps)))
	if len(swaps) == limit {
		log.WithField("limit", limit).Warn("swap log fetch hit the row limit; results may be truncated")
	}

	crisisSwaps := window.Filter(swaps, links)
	res.CrisisSwaps = len(crisisSwaps)

	purchases, stats := extract.Extract(crisisSwaps)
	res.Extraction = stats
	p.opts.Metrics.PurchasesExtracted.Add(float64(stats.Purchases))
	p.opts.Metrics.RecordsSkipped.WithLabelValues("not_a_purchase").Add(float64(stats.NotAPurchase))
	p.opts.Metrics.RecordsSkipped.WithLabelValues("malformed").Add(float64(stats.Malformed))
	p.opts.Metrics.RecordsSkipped.WithLabelValues("unsupported_protocol").Add(float64(stats.UnsupportedProtocol))
	p.opts.Metrics.RecordsSkipped.WithLabelValues("non_swap_topic").Add(float64(stats.NonSwapTopic))
	p.opts.Metrics.RecordsSkipped.WithLabelValues("burn_or_empty_wallet").Add(float64(stats.BurnOrEmptyWallet))
	log.WithFields(logrus.Fields{
		"swaps":     stats.Swaps,
		"purchases": stats.Purchases,
		"malformed": stats.Malformed,
	}).Info("extraction complete")

	tokens := make([]string, 0, len(crises))
	for _, c := range crises {
		tokens = append(tokens, c.TokenAddress)
	}
	samples, err := p.opts.Prices.GetByTokens(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	book := pricing.NewPriceBook(samples)

	priced := p.opts.Resolver.Resolve(purchases, book)
	for _, pp := range priced {
		p.opts.Metrics.PriceResolutions.WithLabelValues(string(pp.PriceSource)).Inc()
	}

	rows := make([]*domain.BuyerRow, 0, len(priced))
	for _, pp := range priced {
		rows = append(rows, &domain.BuyerRow{
			CrisisID:          pp.CrisisID,
			WalletAddress:     pp.WalletAddress,
			TokenAddress:      pp.TokenAddress,
			FirstBuyTimestamp: pp.FirstBuyTime,
			FirstBuyPrice:     pp.FirstBuyPrice,
			TotalAmountBought: pp.TokenAmount,
			TotalUSDSpent:     pp.TotalUSDSpent,
			NumTransactions:   pp.NumTransactions,
		})
	}
	rows = schema.FormatBuyers(rows)

	if err := schema.ValidateBuyers(rows); err != nil {
		return nil, fmt.Errorf("validate buyer rows: %w", err)
	}

	if p.opts.DryRun {
		res.Preview = previewBuyers(rows)
		res.Duration = time.Since(started)
		log.WithField("rows", len(rows)).Info("dry run: skipping load")
		return res, nil
	}

	if err := p.opts.Buyers.Overwrite(ctx, rows); err != nil {
		return nil, fmt.Errorf("load crisis_buyers: %w", err)
	}
	res.RowsLoaded = len(rows)
	observability.RecordRowsLoaded("crisis_buyers", len(rows))

	res.Duration = time.Since(started)
	log.WithFields(logrus.Fields{
		"rows":     len(rows),
		"duration": res.Duration.Round(time.Millisecond).String(),
	}).Info("crisis_buyers loaded")
	return res, nil
}

// linkSpan returns the earliest window start and latest window end across
// links, so one warehouse fetch covers every crisis.
func linkSpan(links []*domain.PoolCrisisLink) (time.Time, time.Time) {
	start, end := links[0].WindowStart, links[0].WindowEnd
	for _, l := range links[1:] {
		if l.WindowStart.Before(start) {
			start = l.WindowStart
		}
		if l.WindowEnd.After(end) {
			end = l.WindowEnd
		}
	}
	// The end bound is a date; extend to the last instant of that day.
	return domain.DayUTC(start), domain.DayUTC(end).Add(24*time.Hour - time.Second)
}

func previewBuyers(rows []*domain.BuyerRow) *Preview {
	p := &Preview{
		Table:    "crisis_buyers",
		Columns:  schema.BuyerColumns,
		RowCount: len(rows),
	}
	for i, r := range rows {
		if i == 5 {
			break
		}
		p.Sample = append(p.Sample, fmt.Sprintf("%s %s %.6f @ %.6f (%s)",
			r.CrisisID, r.WalletAddress, r.TotalAmountBought, r.FirstBuyPrice,
			r.FirstBuyTimestamp.Format("2006-01-02 15:04:05")))
	}
	return p
}
