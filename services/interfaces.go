package services

import (
	"context"
	"time"

	"research-machine/models"
)

// MarketDataService defines the interface for fundamentals and market data
// operations backing the analyzers
type MarketDataService interface {
	GetStatements(ctx context.Context, ticker, period string, limit int) (models.RawStatements, error)
	GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
	GetSnapshot(ctx context.Context, ticker string) (*models.PriceSnapshot, error)
	GetInsiderTrades(ctx context.Context, ticker string, limit int) ([]models.InsiderTrade, error)
	GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error)
}

// BarService defines the interface for alternate daily-bar sources
type BarService interface {
	GetBars(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
	GetDailyBars(ctx context.Context, ticker string, days int) ([]models.PricePoint, error)
}

// SearchService defines the interface for web search operations
type SearchService interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Compile-time interface verification
var _ MarketDataService = (*FinancialDatasetsService)(nil)
var _ BarService = (*AlpacaService)(nil)
var _ SearchService = (*TavilyService)(nil)
