package services

import (
	"context"
	"fmt"
	"time"

	"research-machine/models"
	"research-machine/observability"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// AlpacaService provides an alternate daily-bar source when the primary
// fundamentals provider has no price coverage for a ticker
type AlpacaService struct {
	dataClient alpacaDataClient
}

// alpacaDataClient is the slice of the Alpaca market data client we use
// (an interface so tests can stub it)
type alpacaDataClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret string) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &AlpacaService{dataClient: dataClient}
}

// newAlpacaServiceWithClient creates an AlpacaService with a custom data client (for testing)
func newAlpacaServiceWithClient(client alpacaDataClient) *AlpacaService {
	return &AlpacaService{dataClient: client}
}

// GetBars returns daily bars for a ticker over [start, end], oldest first
func (s *AlpacaService) GetBars(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerAlpaca, "get_bars")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, BreakerAlpaca, func() ([]models.PricePoint, error) {
		bars, err := s.dataClient.GetBars(ticker, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get bars for %s: %w", ticker, err)
		}

		prices := make([]models.PricePoint, 0, len(bars))
		for _, bar := range bars {
			prices = append(prices, models.PricePoint{
				Timestamp: bar.Timestamp,
				Open:      bar.Open,
				High:      bar.High,
				Low:       bar.Low,
				Close:     bar.Close,
				Volume:    float64(bar.Volume),
			})
		}
		return prices, nil
	})

	timer.ObserveExternalAPI(BreakerAlpaca, "get_bars")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerAlpaca, "get_bars", categorizeAPIError(err))
	}
	return result, err
}

// GetDailyBars returns daily bars for the last N days
func (s *AlpacaService) GetDailyBars(ctx context.Context, ticker string, days int) ([]models.PricePoint, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	return s.GetBars(ctx, ticker, start, end)
}
