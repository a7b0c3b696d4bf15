package agents

import (
	"research-machine/models"
	"research-machine/services"
)

// Type aliases for service interfaces - defined in services package
// These aliases allow agents to reference interfaces without importing concrete implementations
type LLMService = services.LLMService
type MarketDataService = services.MarketDataService
type BarService = services.BarService
type SearchService = services.SearchService

// AnalysisInput carries the prefetched inputs an analyzer scores from.
// Records are ordered newest period first. MarketCap is nil when unknown,
// which disables valuation scoring rather than treating it as zero.
type AnalysisInput struct {
	Records       []models.FinancialRecord
	Prices        []models.PricePoint
	MarketCap     *float64
	InsiderTrades []models.InsiderTrade
	News          []models.NewsArticle
}

// Analyzer scores one ticker from prefetched inputs. Implementations must be
// deterministic: no network calls, no clock reads, no randomness.
type Analyzer interface {
	// Name identifies the analyzer persona in run records and metrics
	Name() string

	// RequiredMetrics lists the canonical metric names the analyzer reads,
	// used to drive statement normalization
	RequiredMetrics() []string

	// Analyze produces a composite report for the ticker
	Analyze(ticker string, input AnalysisInput) *models.CompositeReport
}
