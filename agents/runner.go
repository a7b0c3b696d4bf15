package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"research-machine/analysis"
	"research-machine/config"
	"research-machine/models"
	"research-machine/observability"
	"research-machine/services"
)

// insiderTradeLimit and newsLimit bound the supplemental context fetched per
// ticker. Both feeds are advisory and never fail an analysis.
const (
	insiderTradeLimit = 10
	newsLimit         = 10
)

// Cache data types and TTLs for provider payloads. Annual statements change
// once a filing cycle; news goes stale within minutes.
const (
	cacheTypeStatements = "statements"
	cacheTypeNews       = "news"

	statementsCacheTTL = 24 * time.Hour
	newsCacheTTL       = 15 * time.Minute
)

// RunnerRepository defines the repository operations needed by Runner
type RunnerRepository interface {
	CreateResearchRun(ctx context.Context, run *models.ResearchRun) error
	UpdateResearchRun(ctx context.Context, run *models.ResearchRun) error
}

// PayloadCache persists provider payloads across runs and processes. Cache
// failures degrade to a provider fetch, never to an analysis failure.
type PayloadCache interface {
	GetCachedData(ctx context.Context, ticker, dataType string, out interface{}) (bool, error)
	SetCachedData(ctx context.Context, ticker, dataType string, data interface{}, ttl time.Duration) error
}

// Runner fetches inputs and evaluates an analyzer across one or more
// tickers. Fetching is the runner's job so analyzers stay deterministic.
type Runner struct {
	analyzer   Analyzer
	marketData MarketDataService
	bars       BarService // optional fallback price source
	cache      *services.SnapshotCache
	payloads   PayloadCache
	repo       RunnerRepository
	cfg        *config.Config
}

// NewRunner creates a new Runner for the given analyzer and data source
func NewRunner(analyzer Analyzer, marketData MarketDataService, cfg *config.Config) *Runner {
	ttl := time.Duration(cfg.Analysis.SnapshotCacheTTLSeconds) * time.Second
	return &Runner{
		analyzer:   analyzer,
		marketData: marketData,
		cache:      services.NewSnapshotCache(ttl),
		cfg:        cfg,
	}
}

// SetBarService registers a fallback source for daily price bars, used when
// the primary provider's price endpoint fails
func (r *Runner) SetBarService(bars BarService) {
	r.bars = bars
}

// SetRepository enables run history persistence. Without a repository the
// runner still works, it just records nothing.
func (r *Runner) SetRepository(repo RunnerRepository) {
	r.repo = repo
}

// SetPayloadCache enables durable caching of statement and news payloads
// between runs
func (r *Runner) SetPayloadCache(payloads PayloadCache) {
	r.payloads = payloads
}

// AnalyzeTicker fetches inputs for one ticker, runs the analyzer, and
// records the run when a repository is configured
func (r *Runner) AnalyzeTicker(ctx context.Context, ticker string) (*models.CompositeReport, error) {
	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest(ticker)
	timer := metrics.NewTimer()

	run := models.NewResearchRun(r.analyzer.Name(), ticker)
	if r.repo != nil {
		if err := r.repo.CreateResearchRun(ctx, run); err != nil {
			observability.Warn("failed to record research run start",
				"ticker", ticker,
				"error", err)
		}
	}

	input, err := r.fetchInput(ctx, ticker)
	if err != nil {
		timer.ObserveAnalysis(ticker, "error")
		metrics.RecordAnalysisError(ticker, "fetch_failed")
		metrics.RecordAnalyzerError(r.analyzer.Name(), "fetch_failed")
		r.recordFailure(ctx, run, err)
		return nil, err
	}

	analyzerTimer := metrics.NewTimer()
	report := r.analyzer.Analyze(ticker, *input)
	analyzerTimer.ObserveAnalyzer(r.analyzer.Name())

	if r.repo != nil {
		run.Complete(report)
		if err := r.repo.UpdateResearchRun(ctx, run); err != nil {
			observability.Warn("failed to record research run completion",
				"ticker", ticker,
				"error", err)
		}
	}

	timer.ObserveAnalysis(ticker, "success")
	return report, nil
}

// AnalyzeBatch evaluates the analyzer across tickers concurrently. Each
// ticker gets its own timeout; one ticker's failure never aborts the rest.
func (r *Runner) AnalyzeBatch(ctx context.Context, tickers []string) map[string]models.TickerOutcome {
	outcomes := make(map[string]models.TickerOutcome, len(tickers))

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, r.cfg.Analysis.MaxConcurrent)

	for _, ticker := range tickers {
		wg.Add(1)
		go func(tk string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			tickerCtx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Analysis.TimeoutSeconds)*time.Second)
			defer cancel()

			report, err := r.AnalyzeTicker(tickerCtx, tk)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				observability.Warn("ticker analysis failed",
					"ticker", tk,
					"analyzer", r.analyzer.Name(),
					"error", err)
				outcomes[tk] = models.TickerOutcome{Error: err.Error()}
				return
			}
			outcomes[tk] = models.TickerOutcome{Report: report}
		}(ticker)
	}

	wg.Wait()
	return outcomes
}

// fetchInput gathers everything the analyzer needs for one ticker.
// Statements and prices are required; snapshot, insider trades, and news
// degrade to absence on error.
func (r *Runner) fetchInput(ctx context.Context, ticker string) (*AnalysisInput, error) {
	statements, err := r.fetchStatements(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements for %s: %w", ticker, err)
	}

	records, err := analysis.Normalize(statements, r.analyzer.RequiredMetrics(), "annual", r.cfg.Analysis.PeriodLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize statements for %s: %w", ticker, err)
	}

	prices, err := r.fetchPrices(ctx, ticker)
	if err != nil {
		return nil, err
	}

	input := &AnalysisInput{
		Records:   records,
		Prices:    prices,
		MarketCap: r.fetchMarketCap(ctx, ticker),
	}

	trades, err := r.marketData.GetInsiderTrades(ctx, ticker, insiderTradeLimit)
	if err != nil {
		observability.Warn("failed to fetch insider trades",
			"ticker", ticker,
			"error", err)
	} else {
		input.InsiderTrades = trades
	}

	news, err := r.fetchNews(ctx, ticker)
	if err != nil {
		observability.Warn("failed to fetch news",
			"ticker", ticker,
			"error", err)
	} else {
		input.News = news
	}

	return input, nil
}

// fetchStatements loads the annual statement tables, preferring the durable
// payload cache when one is configured
func (r *Runner) fetchStatements(ctx context.Context, ticker string) (models.RawStatements, error) {
	if r.payloads != nil {
		var cached models.RawStatements
		found, err := r.payloads.GetCachedData(ctx, ticker, cacheTypeStatements, &cached)
		if err != nil {
			observability.Warn("statement cache lookup failed",
				"ticker", ticker,
				"error", err)
		} else if found {
			return cached, nil
		}
	}

	statements, err := r.marketData.GetStatements(ctx, ticker, "annual", r.cfg.Analysis.PeriodLimit)
	if err != nil {
		return models.RawStatements{}, err
	}

	if r.payloads != nil {
		if err := r.payloads.SetCachedData(ctx, ticker, cacheTypeStatements, statements, statementsCacheTTL); err != nil {
			observability.Warn("failed to cache statements",
				"ticker", ticker,
				"error", err)
		}
	}
	return statements, nil
}

// fetchNews loads recent articles, preferring the durable payload cache
// when one is configured
func (r *Runner) fetchNews(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	if r.payloads != nil {
		var cached []models.NewsArticle
		found, err := r.payloads.GetCachedData(ctx, ticker, cacheTypeNews, &cached)
		if err != nil {
			observability.Warn("news cache lookup failed",
				"ticker", ticker,
				"error", err)
		} else if found {
			return cached, nil
		}
	}

	news, err := r.marketData.GetNews(ctx, ticker, newsLimit)
	if err != nil {
		return nil, err
	}

	if r.payloads != nil {
		if err := r.payloads.SetCachedData(ctx, ticker, cacheTypeNews, news, newsCacheTTL); err != nil {
			observability.Warn("failed to cache news",
				"ticker", ticker,
				"error", err)
		}
	}
	return news, nil
}

// fetchPrices loads the lookback window of daily closes, falling back to
// the bar service when the primary provider fails
func (r *Runner) fetchPrices(ctx context.Context, ticker string) ([]models.PricePoint, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -r.cfg.Analysis.LookbackDays)

	prices, err := r.marketData.GetPrices(ctx, ticker, start, end)
	if err == nil {
		return prices, nil
	}

	if r.bars == nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}

	observability.Warn("primary price source failed, falling back to bars",
		"ticker", ticker,
		"error", err)

	prices, barErr := r.bars.GetDailyBars(ctx, ticker, r.cfg.Analysis.LookbackDays)
	if barErr != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w (fallback: %v)", ticker, err, barErr)
	}
	return prices, nil
}

// fetchMarketCap resolves the current market cap through the snapshot
// cache. Unknown stays unknown: a failed snapshot disables valuation
// scoring instead of failing the analysis.
func (r *Runner) fetchMarketCap(ctx context.Context, ticker string) *float64 {
	if snapshot, ok := r.cache.Get(ticker); ok {
		return snapshot.MarketCapFloat()
	}

	snapshot, err := r.marketData.GetSnapshot(ctx, ticker)
	if err != nil {
		observability.Warn("failed to fetch snapshot, skipping valuation",
			"ticker", ticker,
			"error", err)
		return nil
	}
	if snapshot == nil {
		return nil
	}

	r.cache.Set(ticker, snapshot)
	return snapshot.MarketCapFloat()
}

// recordFailure marks the run failed when persistence is enabled
func (r *Runner) recordFailure(ctx context.Context, run *models.ResearchRun, cause error) {
	if r.repo == nil {
		return
	}
	run.Fail(cause)
	if err := r.repo.UpdateResearchRun(ctx, run); err != nil {
		observability.Warn("failed to record research run failure",
			"ticker", run.Ticker,
			"error", err)
	}
}
