// Package service coordinates retrieval, analytics, persistence, and
// publishing. Services own the orchestration; the math lives in analytics
// and the I/O in the platform, store, cache, and blob packages.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/quantara/edgescan/internal/analytics"
	"github.com/quantara/edgescan/internal/domain"
	"github.com/quantara/edgescan/internal/platform/oddsapi"
)

// OddsSource fetches bookmaker events with decimal odds, one batch per event.
type OddsSource interface {
	GetOdds(ctx context.Context, sportKey string) ([]oddsapi.EventQuotes, error)
}

// MarketSource lists active prediction markets.
type MarketSource interface {
	GetMarkets(ctx context.Context, limit, offset int) ([]domain.Market, error)
}

// BookSource fetches one raw orderbook snapshot per token.
type BookSource interface {
	GetOrderBook(ctx context.Context, tokenID string) (domain.OrderbookSnapshot, error)
}

// ScanConfig holds the tunable parameters for one scan cycle.
type ScanConfig struct {
	Interval   time.Duration
	FetchWidth int64
	MaxMarkets int
	Sports     []string
	Archive    bool
	Thresholds analytics.Thresholds

	// QuoteTTL is the reuse window: an event whose cached quotes are
	// younger than this is skipped, its previous analysis still standing.
	QuoteTTL time.Duration

	// Per-provider upstream request budgets; zero disables the gate.
	OddsLimit  int
	OddsWindow time.Duration
	BookLimit  int
	BookWindow time.Duration
}

// ScanService runs the full pipeline: fetch quotes from every source,
// normalize, analyze efficiency, detect arbitrage, flag value, then persist
// and publish what it found. Optional dependencies (stores, cache, bus,
// blob) may be nil and are skipped.
type ScanService struct {
	odds    OddsSource
	markets MarketSource
	books   BookSource

	opps    domain.OpportunityStore
	flags   domain.ValueFlagStore
	quotes  domain.QuoteCache
	bus     domain.SignalBus
	blob    domain.BlobWriter
	limiter domain.RateLimiter

	cfg    ScanConfig
	logger *slog.Logger
}

// NewScanService creates a ScanService.
func NewScanService(
	odds OddsSource,
	markets MarketSource,
	books BookSource,
	opps domain.OpportunityStore,
	flags domain.ValueFlagStore,
	quotes domain.QuoteCache,
	bus domain.SignalBus,
	blob domain.BlobWriter,
	limiter domain.RateLimiter,
	cfg ScanConfig,
	logger *slog.Logger,
) *ScanService {
	if cfg.FetchWidth <= 0 {
		cfg.FetchWidth = 5
	}
	if cfg.MaxMarkets <= 0 {
		cfg.MaxMarkets = 50
	}
	return &ScanService{
		odds:    odds,
		markets: markets,
		books:   books,
		opps:    opps,
		flags:   flags,
		quotes:  quotes,
		bus:     bus,
		blob:    blob,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "scan_service")),
	}
}

// Run executes scan cycles at the configured interval until ctx is
// cancelled. The first cycle starts immediately.
func (s *ScanService) Run(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if reports, err := s.ScanOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.ErrorContext(ctx, "scan cycle failed", slog.String("error", err.Error()))
		} else {
			opps := collectOpportunities(reports)
			s.logger.InfoContext(ctx, "scan cycle complete",
				slog.Int("reports", len(reports)),
				slog.Int("opportunities", len(opps)),
			)
			if len(opps) > 0 {
				analytics.RankOpportunities(opps)
				s.logger.InfoContext(ctx, "best opportunity this cycle",
					slog.String("opp_id", opps[0].ID),
					slog.String("event_id", opps[0].EventID),
					slog.Float64("profit_percent", opps[0].ProfitPercent),
				)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ScanOnce runs a single scan cycle over the configured sports and the
// active prediction markets, returning one report per scanned event.
func (s *ScanService) ScanOnce(ctx context.Context) ([]domain.ScanReport, error) {
	var reports []domain.ScanReport

	if s.odds != nil {
		for _, sport := range s.cfg.Sports {
			batch, err := s.scanSport(ctx, sport)
			if err != nil {
				if ctx.Err() != nil {
					return reports, ctx.Err()
				}
				s.logger.WarnContext(ctx, "sport scan failed",
					slog.String("sport", sport),
					slog.String("error", err.Error()),
				)
				continue
			}
			reports = append(reports, batch...)
		}
	}

	if s.markets != nil && s.books != nil {
		batch, err := s.scanMarkets(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			s.logger.WarnContext(ctx, "market scan failed", slog.String("error", err.Error()))
		}
		reports = append(reports, batch...)
	}

	return reports, nil
}

// scanSport fetches every event for one sport and analyzes each.
func (s *ScanService) scanSport(ctx context.Context, sportKey string) ([]domain.ScanReport, error) {
	s.waitLimit(ctx, "oddsapi", s.cfg.OddsLimit, s.cfg.OddsWindow)
	batches, err := s.odds.GetOdds(ctx, sportKey)
	if err != nil {
		return nil, fmt.Errorf("scan_service: fetch odds for %s: %w", sportKey, err)
	}

	reports := make([]domain.ScanReport, 0, len(batches))
	for _, eq := range batches {
		if s.analyzedRecently(ctx, eq.Event.ID) {
			continue
		}
		report := s.AnalyzeEvent(ctx, eq.Event.ID, eq.Quotes, domain.ConventionDecimalOdds)
		reports = append(reports, report)
	}
	return reports, nil
}

// scanMarkets lists active prediction markets and analyzes each YES/NO pair
// off its top-of-book ask prices. Book fetches run concurrently, bounded by
// FetchWidth.
func (s *ScanService) scanMarkets(ctx context.Context) ([]domain.ScanReport, error) {
	markets, err := s.markets.GetMarkets(ctx, s.cfg.MaxMarkets, 0)
	if err != nil {
		return nil, fmt.Errorf("scan_service: list markets: %w", err)
	}

	sem := semaphore.NewWeighted(s.cfg.FetchWidth)
	reports := make([]domain.ScanReport, len(markets))
	g, gctx := errgroup.WithContext(ctx)

	for i, market := range markets {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if s.analyzedRecently(gctx, market.ID) {
				return nil
			}
			raws, failed := s.fetchMarketQuotes(gctx, market)
			report := s.AnalyzeEvent(gctx, market.ID, raws, domain.ConventionDirectProbability)
			report.SourcesFailed += failed
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.ScanReport, 0, len(reports))
	for _, r := range reports {
		if r.EventID != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

// fetchMarketQuotes pulls the YES and NO books for one market and emits one
// raw quote per side at the best ask. Ask price is what backing the outcome
// costs, so it is the probability the scan prices against.
func (s *ScanService) fetchMarketQuotes(ctx context.Context, market domain.Market) (raws []domain.RawQuote, failed int) {
	sides := []struct {
		outcome string
		tokenID string
	}{
		{"yes", market.YesTokenID},
		{"no", market.NoTokenID},
	}

	for _, side := range sides {
		s.waitLimit(ctx, "polymarket", s.cfg.BookLimit, s.cfg.BookWindow)
		snap, err := s.books.GetOrderBook(ctx, side.tokenID)
		if err != nil {
			s.logger.DebugContext(ctx, "book fetch failed",
				slog.String("market_id", market.ID),
				slog.String("token_id", side.tokenID),
				slog.String("error", err.Error()),
			)
			failed++
			continue
		}
		if snap.BestAsk <= 0 {
			continue
		}
		raws = append(raws, domain.RawQuote{
			OutcomeID: side.outcome,
			SourceID:  "polymarket",
			Price:     snap.BestAsk,
			SizeUSD:   askDepthUSD(snap),
		})
	}
	return raws, failed
}

// AnalyzeEvent runs the analytics pipeline over one event's raw quotes and
// persists, publishes, and archives whatever it finds.
func (s *ScanService) AnalyzeEvent(ctx context.Context, eventID string, raws []domain.RawQuote, convention domain.PriceConvention) domain.ScanReport {
	report := domain.ScanReport{
		ID:        uuid.New().String(),
		EventID:   eventID,
		ScannedAt: time.Now().UTC(),
	}

	quotes, rejected := analytics.NormalizeQuotes(raws, convention)
	report.SourcesPolled = len(sourceSet(quotes))
	if rejected > 0 {
		s.logger.DebugContext(ctx, "rejected malformed quotes",
			slog.String("event_id", eventID),
			slog.Int("rejected", rejected),
		)
	}

	if s.quotes != nil && len(quotes) > 0 {
		if err := s.quotes.SetQuotes(ctx, eventID, quotes, report.ScannedAt); err != nil {
			s.logger.DebugContext(ctx, "quote cache write failed",
				slog.String("event_id", eventID),
				slog.String("error", err.Error()),
			)
		}
	}

	report.Efficiency = analytics.AnalyzeEfficiency(quotes, s.cfg.Thresholds)
	report.Efficiency.EventID = eventID

	best := analytics.BestQuotes(quotes)
	if opp := analytics.DetectArbitrage(best, s.cfg.Thresholds.MarginThreshold); opp != nil {
		opp.EventID = eventID
		report.Arbitrage.Opportunities = []domain.ArbitrageOpportunity{*opp}
		s.recordOpportunity(ctx, *opp)
	} else {
		report.Arbitrage.Reason = arbReason(best)
	}

	report.ValueFlags = analytics.ScanValue(quotes, report.Efficiency.Consensus, s.cfg.Thresholds.MinEdgePercent)
	for _, flag := range report.ValueFlags {
		s.recordFlag(ctx, flag)
	}

	if s.cfg.Archive {
		s.archiveReport(ctx, report)
	}
	return report
}

func (s *ScanService) recordOpportunity(ctx context.Context, opp domain.ArbitrageOpportunity) {
	if s.opps != nil {
		if err := s.opps.Insert(ctx, opp); err != nil {
			s.logger.ErrorContext(ctx, "persist opportunity failed",
				slog.String("opp_id", opp.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.bus != nil {
		if payload, err := json.Marshal(opp); err != nil {
			s.logger.WarnContext(ctx, "marshal opportunity failed",
				slog.String("opp_id", opp.ID),
				slog.String("error", err.Error()),
			)
		} else if err := s.bus.Publish(ctx, "signals", payload); err != nil {
			s.logger.WarnContext(ctx, "publish opportunity failed",
				slog.String("opp_id", opp.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	s.logger.InfoContext(ctx, "arbitrage detected",
		slog.String("opp_id", opp.ID),
		slog.String("event_id", opp.EventID),
		slog.Float64("profit_percent", opp.ProfitPercent),
		slog.Int("legs", len(opp.Legs)),
	)
}

func (s *ScanService) recordFlag(ctx context.Context, flag domain.ValueFlag) {
	if s.flags == nil {
		return
	}
	if err := s.flags.Insert(ctx, flag); err != nil {
		s.logger.ErrorContext(ctx, "persist value flag failed",
			slog.String("flag_id", flag.ID),
			slog.String("error", err.Error()),
		)
	}
}

// archiveReport writes the full report JSON to blob storage under a
// date-partitioned key.
func (s *ScanService) archiveReport(ctx context.Context, report domain.ScanReport) {
	if s.blob == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	path := fmt.Sprintf("reports/%s/%s/%s.json",
		report.ScannedAt.Format("2006-01-02"), report.EventID, report.ID)
	if err := s.blob.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
		s.logger.WarnContext(ctx, "archive report failed",
			slog.String("report_id", report.ID),
			slog.String("error", err.Error()),
		)
	}
}

// waitLimit blocks until the provider's sliding window admits another
// request. Limiter failures fall open so a cache outage cannot stall scans.
func (s *ScanService) waitLimit(ctx context.Context, key string, limit int, window time.Duration) {
	if s.limiter == nil || limit <= 0 || window <= 0 {
		return
	}
	if err := s.limiter.Wait(ctx, key, limit, window); err != nil {
		s.logger.DebugContext(ctx, "rate limit wait failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// analyzedRecently reports whether the event's cached quotes are still
// inside the reuse window, so the last cycle's findings need no refresh.
func (s *ScanService) analyzedRecently(ctx context.Context, eventID string) bool {
	if s.quotes == nil || s.cfg.QuoteTTL <= 0 {
		return false
	}
	quotes, ts, err := s.quotes.GetQuotes(ctx, eventID)
	if err != nil || len(quotes) == 0 {
		return false
	}
	return time.Since(ts) < s.cfg.QuoteTTL
}

func sourceSet(quotes []domain.Quote) map[string]struct{} {
	set := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		set[q.SourceID] = struct{}{}
	}
	return set
}

func arbReason(best []domain.Quote) string {
	if len(best) < 2 {
		return "fewer than two outcomes quoted"
	}
	var total float64
	for _, q := range best {
		total += q.ImpliedProbability
	}
	return fmt.Sprintf("best-price basket costs %.4f, no riskless margin", total)
}

func collectOpportunities(reports []domain.ScanReport) []domain.ArbitrageOpportunity {
	var opps []domain.ArbitrageOpportunity
	for _, r := range reports {
		opps = append(opps, r.Arbitrage.Opportunities...)
	}
	return opps
}

// askDepthUSD sums notional available across ask levels, giving the size
// attached to a market quote.
func askDepthUSD(snap domain.OrderbookSnapshot) float64 {
	var total float64
	for _, lvl := range snap.Asks {
		total += lvl.Price * lvl.Size
	}
	return total
}
