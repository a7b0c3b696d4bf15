package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research-machine/config"
	"research-machine/models"

	"github.com/google/uuid"
)

type mockAnalysisService struct {
	report   *models.CompositeReport
	err      error
	outcomes map[string]models.TickerOutcome

	lastTicker  string
	lastTickers []string
}

func (m *mockAnalysisService) AnalyzeTicker(ctx context.Context, ticker string) (*models.CompositeReport, error) {
	m.lastTicker = ticker
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockAnalysisService) AnalyzeBatch(ctx context.Context, tickers []string) map[string]models.TickerOutcome {
	m.lastTickers = tickers
	return m.outcomes
}

type mockCommentaryService struct {
	narration *models.Narration
	err       error
}

func (m *mockCommentaryService) Narrate(ctx context.Context, report *models.CompositeReport) (*models.Narration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.narration, nil
}

type mockRunStore struct {
	healthErr error
	run       *models.ResearchRun
	runs      []models.ResearchRun
	err       error

	lastTicker string
	lastLimit  int
}

func (m *mockRunStore) Health(ctx context.Context) error {
	return m.healthErr
}

func (m *mockRunStore) GetResearchRun(ctx context.Context, id uuid.UUID) (*models.ResearchRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.run, nil
}

func (m *mockRunStore) GetResearchRuns(ctx context.Context, ticker string, limit int) ([]models.ResearchRun, error) {
	m.lastTicker = ticker
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.runs, nil
}

func testReport(ticker string) *models.CompositeReport {
	return &models.CompositeReport{
		Ticker:   ticker,
		Signal:   models.SignalBuy,
		Score:    16,
		MaxScore: 30,
		GrowthMomentum: models.SubScoreResult{
			Score:   7,
			Details: []string{"Strong revenue growth: 12.00% CAGR"},
		},
		RiskReward: models.SubScoreResult{
			Score:   5,
			Details: []string{"Moderate leverage: D/E = 0.55"},
		},
	}
}

// serveRequest routes one request through the full middleware stack
func serveRequest(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	NewRouter(h, config.NewTestConfig()).ServeHTTP(w, req)
	return w
}

func TestHandler_Health(t *testing.T) {
	t.Run("without store", func(t *testing.T) {
		h := NewHandler(&mockAnalysisService{}, nil, nil, config.NewTestConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := serveRequest(h, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		var resp map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &resp)

		if resp["status"] != "ok" {
			t.Errorf("status = %v, want ok", resp["status"])
		}
		svcs := resp["services"].(map[string]interface{})
		if svcs["database"] != "not_configured" {
			t.Errorf("database = %v, want not_configured", svcs["database"])
		}
	})

	t.Run("healthy store", func(t *testing.T) {
		h := NewHandler(&mockAnalysisService{}, nil, &mockRunStore{}, config.NewTestConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := serveRequest(h, req)

		var resp map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &resp)
		svcs := resp["services"].(map[string]interface{})
		if svcs["database"] != "connected" {
			t.Errorf("database = %v, want connected", svcs["database"])
		}
	})

	t.Run("unhealthy store degrades", func(t *testing.T) {
		store := &mockRunStore{healthErr: errors.New("connection refused")}
		h := NewHandler(&mockAnalysisService{}, nil, store, config.NewTestConfig())

		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := serveRequest(h, req)

		var resp map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["status"] != "degraded" {
			t.Errorf("status = %v, want degraded", resp["status"])
		}
	})
}

func TestHandler_Analyze_SingleTicker(t *testing.T) {
	analysis := &mockAnalysisService{report: testReport("AAPL")}
	h := NewHandler(analysis, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"ticker":"aapl"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if analysis.lastTicker != "AAPL" {
		t.Errorf("ticker should be uppercased, got %s", analysis.lastTicker)
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Report == nil || resp.Report.Ticker != "AAPL" {
		t.Errorf("unexpected report: %+v", resp.Report)
	}
	if resp.Commentary != nil {
		t.Error("commentary should be absent when not requested")
	}
}

func TestHandler_Analyze_MissingTicker(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandler_Analyze_InvalidTicker(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"ticker":"not a ticker!"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandler_Analyze_AnalysisError(t *testing.T) {
	analysis := &mockAnalysisService{err: errors.New("provider unavailable")}
	h := NewHandler(analysis, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"ticker":"AAPL"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestHandler_Analyze_Batch(t *testing.T) {
	analysis := &mockAnalysisService{outcomes: map[string]models.TickerOutcome{
		"AAPL": {Report: testReport("AAPL")},
		"MSFT": {Error: "no data"},
	}}
	h := NewHandler(analysis, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"tickers":["AAPL","MSFT"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if len(analysis.lastTickers) != 2 {
		t.Errorf("expected 2 tickers, got %v", analysis.lastTickers)
	}

	var resp struct {
		Outcomes map[string]models.TickerOutcome `json:"outcomes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Outcomes["AAPL"].Report == nil {
		t.Error("AAPL should carry a report")
	}
	if resp.Outcomes["MSFT"].Error != "no data" {
		t.Errorf("MSFT error = %q, want no data", resp.Outcomes["MSFT"].Error)
	}
}

func TestHandler_Analyze_TooManyTickers(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, nil, config.NewTestConfig())

	tickers := make([]string, maxBatchTickers+1)
	for i := range tickers {
		tickers[i] = "AAPL"
	}
	body, _ := json.Marshal(AnalyzeRequest{Tickers: tickers})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandler_Analyze_WithCommentary(t *testing.T) {
	analysis := &mockAnalysisService{report: testReport("AAPL")}
	commentary := &mockCommentaryService{narration: &models.Narration{
		Summary:    "A solid Buy.",
		KeyDrivers: []string{"Strong revenue growth"},
	}}
	h := NewHandler(analysis, commentary, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"ticker":"AAPL","commentary":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp AnalyzeResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Commentary == nil || resp.Commentary.Summary != "A solid Buy." {
		t.Errorf("commentary = %+v, want summary A solid Buy.", resp.Commentary)
	}
	if len(resp.Commentary.KeyDrivers) != 1 {
		t.Errorf("unexpected drivers: %v", resp.Commentary.KeyDrivers)
	}
}

func TestHandler_Analyze_CommentaryNotConfigured(t *testing.T) {
	analysis := &mockAnalysisService{report: testReport("AAPL")}
	h := NewHandler(analysis, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"ticker":"AAPL","commentary":true}`))
	req.Header.Set("Content-Type", "application/json")
	w := serveRequest(h, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestHandler_GetRuns(t *testing.T) {
	run := models.NewResearchRun("druckenmiller", "AAPL")
	store := &mockRunStore{runs: []models.ResearchRun{*run}}
	h := NewHandler(&mockAnalysisService{}, nil, store, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/runs?ticker=aapl&limit=10", nil)
	w := serveRequest(h, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if store.lastTicker != "AAPL" {
		t.Errorf("ticker filter = %s, want AAPL", store.lastTicker)
	}
	if store.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", store.lastLimit)
	}

	var runs []models.ResearchRun
	if err := json.Unmarshal(w.Body.Bytes(), &runs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(runs) != 1 || runs[0].Ticker != "AAPL" {
		t.Errorf("unexpected runs: %+v", runs)
	}
}

func TestHandler_GetRuns_DefaultLimit(t *testing.T) {
	store := &mockRunStore{}
	h := NewHandler(&mockAnalysisService{}, nil, store, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	serveRequest(h, req)

	if store.lastLimit != 50 {
		t.Errorf("limit = %d, want default 50", store.lastLimit)
	}
}

func TestHandler_GetRuns_NoStore(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	w := serveRequest(h, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestHandler_GetRun(t *testing.T) {
	run := models.NewResearchRun("druckenmiller", "AAPL")
	store := &mockRunStore{run: run}
	h := NewHandler(&mockAnalysisService{}, nil, store, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID.String(), nil)
	w := serveRequest(h, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var got models.ResearchRun
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != run.ID {
		t.Errorf("run ID = %s, want %s", got.ID, run.ID)
	}
}

func TestHandler_GetRun_InvalidID(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, &mockRunStore{}, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/runs/not-a-uuid", nil)
	w := serveRequest(h, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestHandler_GetRun_NotFound(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, &mockRunStore{}, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+uuid.NewString(), nil)
	w := serveRequest(h, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, nil, config.NewTestConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	w := serveRequest(h, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("unexpected allow-origin: %s", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestValidateTicker(t *testing.T) {
	h := NewHandler(&mockAnalysisService{}, nil, nil, config.NewTestConfig())

	tests := []struct {
		name    string
		ticker  string
		wantErr bool
	}{
		{"plain", "AAPL", false},
		{"with dot", "BRK.B", false},
		{"with dash", "BF-B", false},
		{"empty", "", true},
		{"too long", "ABCDEFGHIJK", true},
		{"lowercase", "aapl", true},
		{"spaces", "AA PL", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.ValidateTicker(tt.ticker)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTicker(%q) error = %v, wantErr %v", tt.ticker, err, tt.wantErr)
			}
		})
	}
}
