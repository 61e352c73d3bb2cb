package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"phoenix-flipper/internal/domain"
	"phoenix-flipper/internal/logging"
	"phoenix-flipper/internal/observability"
	"phoenix-flipper/internal/pnl"
	"phoenix-flipper/internal/pricing"
	"phoenix-flipper/internal/schema"
	"phoenix-flipper/internal/storage"
)

// ErrNoBuyers means the crisis_buyers table is empty; run the buyer
// pipeline first.
var ErrNoBuyers = errors.New("pipeline: crisis_buyers is empty")

// ErrNoPrices means no price history exists for any bought token, so no
// recovery analysis is possible at all.
var ErrNoPrices = errors.New("pipeline: no price history for any bought token")

// FlipOptions configures a FlipPipeline.
type FlipOptions struct {
	Buyers   storage.BuyerStore
	Prices   storage.PriceHistoryStore
	Flippers storage.FlipperStore
	Config   pnl.Config
	DryRun   bool
	Logger   *logrus.Entry
	Metrics  *observability.Metrics
}

// FlipRunResult summarizes a flip pipeline run.
type FlipRunResult struct {
	Buyers     int
	Evaluation pnl.Stats
	RowsLoaded int
	DryRun     bool
	Preview    *Preview
	Duration   time.Duration
}

// FlipPipeline builds the profitable_flippers table from crisis_buyers.
type FlipPipeline struct {
	opts FlipOptions
}

// NewFlipPipeline creates a flip pipeline.
func NewFlipPipeline(opts FlipOptions) *FlipPipeline {
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("flip-pipeline")
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.Config == (pnl.Config{}) {
		opts.Config = pnl.DefaultConfig()
	} else if opts.Config.RecoveryDays == 0 {
		// Keep a caller-supplied threshold; only the window length defaults.
		opts.Config.RecoveryDays = pnl.DefaultConfig().RecoveryDays
	}
	return &FlipPipeline{opts: opts}
}

// Run evaluates every buyer over the recovery window and loads the
// qualifying flips.
func (p *FlipPipeline) Run(ctx context.Context) (*FlipRunResult, error) {
	started := time.Now()
	log := p.opts.Logger
	res := &FlipRunResult{DryRun: p.opts.DryRun}

	buyers, err := p.opts.Buyers.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load crisis buyers: %w", err)
	}
	if len(buyers) == 0 {
		return nil, ErrNoBuyers
	}
	res.Buyers = len(buyers)
	p.opts.Metrics.BuyersEvaluated.Add(float64(len(buyers)))

	tokens := make([]string, 0, len(buyers))
	seen := make(map[string]struct{}, len(buyers))
	for _, b := range buyers {
		token := domain.NormalizeAddress(b.TokenAddress)
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	samples, err := p.opts.Prices.GetByTokens(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	if len(samples) == 0 {
		return nil, ErrNoPrices
	}
	book := pricing.NewPriceBook(samples)

	flips, stats := pnl.EvaluateAll(buyers, book, p.opts.Config)
	res.Evaluation = stats
	p.opts.Metrics.FlipsQualified.Add(float64(stats.Qualified))
	log.WithFields(logrus.Fields{
		"buyers":            stats.Buyers,
		"qualified":         stats.Qualified,
		"below_threshold":   stats.BelowThreshold,
		"no_recovery_price": stats.NoRecoveryPrice,
		"invalid_buy_price": stats.InvalidBuyPrice,
	}).Info("recovery evaluation complete")

	rows := schema.FormatFlips(flips)
	if err := schema.ValidateFlips(rows); err != nil {
		return nil, fmt.Errorf("validate flip rows: %w", err)
	}

	if p.opts.DryRun {
		res.Preview = previewFlips(rows)
		res.Duration = time.Since(started)
		log.WithField("rows", len(rows)).Info("dry run: skipping load")
		return res, nil
	}

	if err := p.opts.Flippers.Overwrite(ctx, rows); err != nil {
		return nil, fmt.Errorf("load profitable_flippers: %w", err)
	}
	res.RowsLoaded = len(rows)
	observability.RecordRowsLoaded("profitable_flippers", len(rows))

	res.Duration = time.Since(started)
	log.WithFields(logrus.Fields{
		"rows":     len(rows),
		"duration": res.Duration.Round(time.Millisecond).String(),
	}).Info("profitable_flippers loaded")
	return res, nil
}

func previewFlips(rows []*domain.FlipResult) *Preview {
	p := &Preview{
		Table:    "profitable_flippers",
		Columns:  schema.FlipperColumns,
		RowCount: len(rows),
	}
	for i, r := range rows {
		if i == 5 {
			break
		}
		p.Sample = append(p.Sample, fmt.Sprintf("%s %s +%.2f%% ($%.2f)",
			r.CrisisID, r.WalletAddress, r.EstimatedProfitPct, r.EstimatedProfitUSD))
	}
	return p
}
