package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"research-machine/models"
	"research-machine/observability"

	"github.com/shopspring/decimal"
)

// FinancialDatasetsService handles communication with the Financial Datasets
// API for statements, prices, snapshots, insider trades, and news
type FinancialDatasetsService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFinancialDatasetsService creates a new FinancialDatasetsService instance
func NewFinancialDatasetsService(apiKey, baseURL string) *FinancialDatasetsService {
	return &FinancialDatasetsService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// fdStatementsResponse is the provider payload for the statements endpoint.
// Each table maps a reporting period to raw line-item names and values.
type fdStatementsResponse struct {
	Statements struct {
		Income       map[string]map[string]float64 `json:"income"`
		BalanceSheet map[string]map[string]float64 `json:"balance_sheet"`
		CashFlow     map[string]map[string]float64 `json:"cash_flow"`
	} `json:"statements"`
}

// fdPriceBar is one daily bar from the prices endpoint
type fdPriceBar struct {
	Time        string   `json:"time"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      float64  `json:"volume"`
	AdjClose    *float64 `json:"adj_close,omitempty"`
	Dividends   *float64 `json:"dividends,omitempty"`
	StockSplits *float64 `json:"stock_splits,omitempty"`
}

type fdPricesResponse struct {
	Prices []fdPriceBar `json:"prices"`
}

type fdSnapshotResponse struct {
	Snapshot struct {
		Ticker        string           `json:"ticker"`
		Currency      string           `json:"currency"`
		Price         decimal.Decimal  `json:"price"`
		PreviousClose decimal.Decimal  `json:"previous_close"`
		Open          decimal.Decimal  `json:"open"`
		DayHigh       decimal.Decimal  `json:"day_high"`
		DayLow        decimal.Decimal  `json:"day_low"`
		Volume        int64            `json:"volume"`
		MarketCap     *decimal.Decimal `json:"market_cap"`
		Time          string           `json:"time"`
	} `json:"snapshot"`
}

type fdInsiderTrade struct {
	Insider         string          `json:"name"`
	Position        string          `json:"title"`
	TransactionType string          `json:"transaction_type"`
	Shares          decimal.Decimal `json:"transaction_shares"`
	Value           decimal.Decimal `json:"transaction_value"`
	TransactionDate string          `json:"transaction_date"`
}

type fdInsiderTradesResponse struct {
	InsiderTrades []fdInsiderTrade `json:"insider_trades"`
}

type fdNewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Author      string `json:"author"`
	Date        string `json:"date"`
}

type fdNewsResponse struct {
	News []fdNewsArticle `json:"news"`
}

// GetStatements fetches the raw income, balance-sheet, and cash-flow tables
// for a ticker. Period selection and limiting happen at the provider.
func (s *FinancialDatasetsService) GetStatements(ctx context.Context, ticker, period string, limit int) (models.RawStatements, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFinancialDatasets, "get_statements")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerFinancialDatasets, func() (models.RawStatements, error) {
		var statements models.RawStatements

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("ticker", ticker)
			params.Set("period", period)
			params.Set("limit", strconv.Itoa(limit))

			var payload fdStatementsResponse
			if err := s.get(ctx, "/financials/statements", params, &payload); err != nil {
				return err
			}

			statements = models.RawStatements{
				Income:       payload.Statements.Income,
				BalanceSheet: payload.Statements.BalanceSheet,
				CashFlow:     payload.Statements.CashFlow,
			}
			return nil
		})

		return statements, err
	})

	timer.ObserveExternalAPI(BreakerFinancialDatasets, "get_statements")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFinancialDatasets, "get_statements", categorizeAPIError(err))
	}
	return result, err
}

// GetPrices fetches daily bars for a ticker over [start, end], oldest first
func (s *FinancialDatasetsService) GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFinancialDatasets, "get_prices")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerFinancialDatasets, func() ([]models.PricePoint, error) {
		var prices []models.PricePoint

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("ticker", ticker)
			params.Set("interval", "day")
			params.Set("start_date", start.Format("2006-01-02"))
			params.Set("end_date", end.Format("2006-01-02"))

			var payload fdPricesResponse
			if err := s.get(ctx, "/prices", params, &payload); err != nil {
				return err
			}

			prices = make([]models.PricePoint, 0, len(payload.Prices))
			for _, bar := range payload.Prices {
				ts, err := parseProviderTime(bar.Time)
				if err != nil {
					return fmt.Errorf("invalid bar time %q: %w", bar.Time, err)
				}
				prices = append(prices, models.PricePoint{
					Timestamp:   ts,
					Open:        bar.Open,
					High:        bar.High,
					Low:         bar.Low,
					Close:       bar.Close,
					Volume:      bar.Volume,
					AdjClose:    bar.AdjClose,
					Dividends:   bar.Dividends,
					StockSplits: bar.StockSplits,
				})
			}
			// Scoring expects oldest-first bars regardless of provider order.
			sort.Slice(prices, func(i, j int) bool {
				return prices[i].Timestamp.Before(prices[j].Timestamp)
			})
			return nil
		})

		return prices, err
	})

	timer.ObserveExternalAPI(BreakerFinancialDatasets, "get_prices")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFinancialDatasets, "get_prices", categorizeAPIError(err))
	}
	return result, err
}

// GetSnapshot fetches the latest quote snapshot for a ticker
func (s *FinancialDatasetsService) GetSnapshot(ctx context.Context, ticker string) (*models.PriceSnapshot, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFinancialDatasets, "get_snapshot")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerFinancialDatasets, func() (*models.PriceSnapshot, error) {
		var snapshot *models.PriceSnapshot

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("ticker", ticker)

			var payload fdSnapshotResponse
			if err := s.get(ctx, "/prices/snapshot", params, &payload); err != nil {
				return err
			}

			ts, err := parseProviderTime(payload.Snapshot.Time)
			if err != nil {
				ts = time.Now().UTC()
			}

			snapshot = &models.PriceSnapshot{
				Ticker:        ticker,
				Currency:      payload.Snapshot.Currency,
				LastPrice:     payload.Snapshot.Price,
				PreviousClose: payload.Snapshot.PreviousClose,
				Open:          payload.Snapshot.Open,
				DayHigh:       payload.Snapshot.DayHigh,
				DayLow:        payload.Snapshot.DayLow,
				Volume:        payload.Snapshot.Volume,
				MarketCap:     payload.Snapshot.MarketCap,
				Timestamp:     ts,
			}
			return nil
		})

		return snapshot, err
	})

	timer.ObserveExternalAPI(BreakerFinancialDatasets, "get_snapshot")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFinancialDatasets, "get_snapshot", categorizeAPIError(err))
	}
	return result, err
}

// GetInsiderTrades fetches recent insider transactions for a ticker
func (s *FinancialDatasetsService) GetInsiderTrades(ctx context.Context, ticker string, limit int) ([]models.InsiderTrade, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFinancialDatasets, "get_insider_trades")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerFinancialDatasets, func() ([]models.InsiderTrade, error) {
		var trades []models.InsiderTrade

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("ticker", ticker)
			params.Set("limit", strconv.Itoa(limit))

			var payload fdInsiderTradesResponse
			if err := s.get(ctx, "/insider-trades", params, &payload); err != nil {
				return err
			}

			trades = make([]models.InsiderTrade, 0, len(payload.InsiderTrades))
			for _, trade := range payload.InsiderTrades {
				ts, err := parseProviderTime(trade.TransactionDate)
				if err != nil {
					continue
				}
				trades = append(trades, models.InsiderTrade{
					Ticker:          ticker,
					Insider:         trade.Insider,
					Position:        trade.Position,
					TransactionType: trade.TransactionType,
					Shares:          trade.Shares,
					Value:           trade.Value,
					TransactionDate: ts,
				})
			}
			return nil
		})

		return trades, err
	})

	timer.ObserveExternalAPI(BreakerFinancialDatasets, "get_insider_trades")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFinancialDatasets, "get_insider_trades", categorizeAPIError(err))
	}
	return result, err
}

// GetNews fetches recent news articles for a ticker
func (s *FinancialDatasetsService) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerFinancialDatasets, "get_news")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerFinancialDatasets, func() ([]models.NewsArticle, error) {
		var articles []models.NewsArticle

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			params := url.Values{}
			params.Set("ticker", ticker)
			params.Set("limit", strconv.Itoa(limit))

			var payload fdNewsResponse
			if err := s.get(ctx, "/news", params, &payload); err != nil {
				return err
			}

			articles = make([]models.NewsArticle, 0, len(payload.News))
			for _, article := range payload.News {
				ts, err := parseProviderTime(article.Date)
				if err != nil {
					ts = time.Time{}
				}
				articles = append(articles, models.NewsArticle{
					Ticker:      ticker,
					Title:       article.Title,
					Description: article.Description,
					URL:         article.URL,
					Source:      article.Source,
					Author:      article.Author,
					PublishedAt: ts,
				})
			}
			return nil
		})

		return articles, err
	})

	timer.ObserveExternalAPI(BreakerFinancialDatasets, "get_news")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerFinancialDatasets, "get_news", categorizeAPIError(err))
	}
	return result, err
}

// get performs an authenticated GET and decodes the JSON payload
func (s *FinancialDatasetsService) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := s.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// parseProviderTime accepts the date and timestamp formats the provider emits
func parseProviderTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}
