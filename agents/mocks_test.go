package agents

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"research-machine/models"
	"research-machine/services"

	"github.com/shopspring/decimal"
)

type mockMarketDataService struct {
	statements    models.RawStatements
	statementsErr error
	prices        []models.PricePoint
	pricesErr     error
	snapshot      *models.PriceSnapshot
	snapshotErr   error
	trades        []models.InsiderTrade
	tradesErr     error
	news          []models.NewsArticle
	newsErr       error

	// per-ticker statement failures for batch isolation tests
	failTickers map[string]error
}

func (m *mockMarketDataService) GetStatements(ctx context.Context, ticker, period string, limit int) (models.RawStatements, error) {
	if err, ok := m.failTickers[ticker]; ok {
		return models.RawStatements{}, err
	}
	if m.statementsErr != nil {
		return models.RawStatements{}, m.statementsErr
	}
	return m.statements, nil
}

func (m *mockMarketDataService) GetPrices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	if m.pricesErr != nil {
		return nil, m.pricesErr
	}
	return m.prices, nil
}

func (m *mockMarketDataService) GetSnapshot(ctx context.Context, ticker string) (*models.PriceSnapshot, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	return m.snapshot, nil
}

func (m *mockMarketDataService) GetInsiderTrades(ctx context.Context, ticker string, limit int) ([]models.InsiderTrade, error) {
	if m.tradesErr != nil {
		return nil, m.tradesErr
	}
	return m.trades, nil
}

func (m *mockMarketDataService) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	if m.newsErr != nil {
		return nil, m.newsErr
	}
	return m.news, nil
}

type mockBarService struct {
	bars []models.PricePoint
	err  error
}

func (m *mockBarService) GetBars(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bars, nil
}

func (m *mockBarService) GetDailyBars(ctx context.Context, ticker string, days int) ([]models.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.bars, nil
}

// mockLLMService answers structured calls with a canned JSON response and
// records the prompts it was given
type mockLLMService struct {
	response     string
	err          error
	systemPrompt string
	userPrompt   string
}

func (m *mockLLMService) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.systemPrompt = systemPrompt
	m.userPrompt = userPrompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) InvokeStructured(ctx context.Context, systemPrompt, userPrompt string, result interface{}) error {
	text, err := m.InvokeWithPrompt(ctx, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(text), result)
}

type mockSearchService struct {
	results []services.SearchResult
	err     error
	query   string
}

func (m *mockSearchService) Search(ctx context.Context, query string, maxResults int) ([]services.SearchResult, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockRunnerRepository struct {
	mu        sync.Mutex
	created   []*models.ResearchRun
	updated   []*models.ResearchRun
	createErr error
	updateErr error
}

func (m *mockRunnerRepository) CreateResearchRun(ctx context.Context, run *models.ResearchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, run)
	return m.createErr
}

func (m *mockRunnerRepository) UpdateResearchRun(ctx context.Context, run *models.ResearchRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, run)
	return m.updateErr
}

// mockPayloadCache is an in-memory stand-in for the database payload cache
type mockPayloadCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	hits    int
	sets    int
}

func newMockPayloadCache() *mockPayloadCache {
	return &mockPayloadCache{entries: make(map[string][]byte)}
}

func (m *mockPayloadCache) GetCachedData(ctx context.Context, ticker, dataType string, out interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return false, m.getErr
	}
	data, ok := m.entries[ticker+"/"+dataType]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	m.hits++
	return true, nil
}

func (m *mockPayloadCache) SetCachedData(ctx context.Context, ticker, dataType string, data interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.entries[ticker+"/"+dataType] = payload
	m.sets++
	return nil
}

// testStatements builds a two-period annual statement fixture with healthy
// growth and a strong balance sheet
func testStatements() models.RawStatements {
	return models.RawStatements{
		Income: models.StatementTable{
			"2024-12-31": {
				"Total Revenue": 120e9,
				"Diluted EPS":   6.6,
				"Net Income":    30e9,
				"EBIT":          36e9,
				"EBITDA":        42e9,
			},
			"2023-12-31": {
				"Total Revenue": 100e9,
				"Diluted EPS":   5.5,
				"Net Income":    25e9,
				"EBIT":          30e9,
				"EBITDA":        35e9,
			},
		},
		BalanceSheet: models.StatementTable{
			"2024-12-31": {
				"Total Debt":                10e9,
				"Stockholders Equity":       80e9,
				"Cash And Cash Equivalents": 20e9,
			},
			"2023-12-31": {
				"Total Debt":                12e9,
				"Stockholders Equity":       70e9,
				"Cash And Cash Equivalents": 15e9,
			},
		},
		CashFlow: models.StatementTable{
			"2024-12-31": {"Free Cash Flow": 28e9},
			"2023-12-31": {"Free Cash Flow": 22e9},
		},
	}
}

// testPrices builds an ascending daily bar series with a steady uptrend,
// long enough for both momentum and volatility scoring
func testPrices(bars int) []models.PricePoint {
	prices := make([]models.PricePoint, bars)
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := range prices {
		prices[i] = models.PricePoint{
			Timestamp: base.AddDate(0, 0, i),
			Close:     price,
		}
		price *= 1.01
	}
	return prices
}

// testSnapshotWithCap builds a snapshot reporting the given market cap
func testSnapshotWithCap(ticker string, marketCap float64) *models.PriceSnapshot {
	mc := decimal.NewFromFloat(marketCap)
	return &models.PriceSnapshot{
		Ticker:    ticker,
		LastPrice: decimal.NewFromFloat(150.0),
		MarketCap: &mc,
		Timestamp: time.Now(),
	}
}
