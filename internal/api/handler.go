package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"research-machine/config"
	"research-machine/models"
	"research-machine/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBatchTickers bounds one analyze request
const maxBatchTickers = 20

// AnalysisService runs the analyzer for one or more tickers
type AnalysisService interface {
	AnalyzeTicker(ctx context.Context, ticker string) (*models.CompositeReport, error)
	AnalyzeBatch(ctx context.Context, tickers []string) map[string]models.TickerOutcome
}

// CommentaryService narrates a finished report
type CommentaryService interface {
	Narrate(ctx context.Context, report *models.CompositeReport) (*models.Narration, error)
}

// RunStore exposes run history and database health
type RunStore interface {
	Health(ctx context.Context) error
	GetResearchRun(ctx context.Context, id uuid.UUID) (*models.ResearchRun, error)
	GetResearchRuns(ctx context.Context, ticker string, limit int) ([]models.ResearchRun, error)
}

// Handler handles HTTP API requests
type Handler struct {
	analysis   AnalysisService
	commentary CommentaryService
	store      RunStore
	cfg        *config.Config
}

// NewHandler creates a new Handler. commentary and store may be nil; the
// corresponding features degrade rather than fail.
func NewHandler(analysis AnalysisService, commentary CommentaryService, store RunStore, cfg *config.Config) *Handler {
	return &Handler{
		analysis:   analysis,
		commentary: commentary,
		store:      store,
		cfg:        cfg,
	}
}

// AnalyzeRequest is the body of POST /api/analyze. Either a single ticker
// or a batch; Commentary requests an LLM summary per successful report.
type AnalyzeRequest struct {
	Ticker     string   `json:"ticker,omitempty"`
	Tickers    []string `json:"tickers,omitempty"`
	Commentary bool     `json:"commentary,omitempty"`
}

// AnalyzeResponse is the single-ticker response shape
type AnalyzeResponse struct {
	Report     *models.CompositeReport `json:"report"`
	Commentary *models.Narration       `json:"commentary,omitempty"`
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if h.store != nil {
		if err := h.store.Health(r.Context()); err == nil {
			status["services"].(map[string]string)["database"] = "connected"
		} else {
			status["services"].(map[string]string)["database"] = "disconnected"
			status["status"] = "degraded"
		}
	} else {
		status["services"].(map[string]string)["database"] = "not_configured"
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	// Check if any breakers are open (degraded state)
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleAnalyze runs the analyzer for the requested ticker or batch
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	tickers := req.Tickers
	if req.Ticker != "" {
		tickers = append([]string{req.Ticker}, tickers...)
	}
	if len(tickers) == 0 {
		h.jsonError(w, "Ticker is required", http.StatusBadRequest)
		return
	}
	if len(tickers) > maxBatchTickers {
		h.jsonError(w, fmt.Sprintf("Too many tickers (max %d)", maxBatchTickers), http.StatusBadRequest)
		return
	}

	for i, ticker := range tickers {
		tickers[i] = strings.ToUpper(strings.TrimSpace(ticker))
		if err := h.ValidateTicker(tickers[i]); err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if len(tickers) == 1 {
		h.analyzeSingle(w, r, tickers[0], req.Commentary)
		return
	}

	outcomes := h.analysis.AnalyzeBatch(r.Context(), tickers)
	h.jsonResponse(w, map[string]interface{}{"outcomes": outcomes})
}

// analyzeSingle handles the one-ticker case, with optional commentary
func (h *Handler) analyzeSingle(w http.ResponseWriter, r *http.Request, ticker string, withCommentary bool) {
	report, err := h.analysis.AnalyzeTicker(r.Context(), ticker)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := AnalyzeResponse{Report: report}

	if withCommentary {
		if h.commentary == nil {
			h.jsonError(w, "Commentary not configured", http.StatusServiceUnavailable)
			return
		}
		narration, err := h.commentary.Narrate(r.Context(), report)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.Commentary = narration
	}

	h.jsonResponse(w, resp)
}

// HandleGetRuns returns run history, optionally filtered by ticker
func (h *Handler) HandleGetRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.jsonError(w, "Run history not configured", http.StatusServiceUnavailable)
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("ticker")))
	if ticker != "" {
		if err := h.ValidateTicker(ticker); err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	limit := h.ParseLimitParam(r, 50)

	runs, err := h.store.GetResearchRuns(r.Context(), ticker, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, runs)
}

// HandleGetRun returns a single run by ID
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.jsonError(w, "Run history not configured", http.StatusServiceUnavailable)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, "Invalid run ID", http.StatusBadRequest)
		return
	}

	run, err := h.store.GetResearchRun(r.Context(), id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		h.jsonError(w, "Run not found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, run)
}

// ValidateTicker validates a ticker symbol
func (h *Handler) ValidateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker is required")
	}

	if len(ticker) > 10 {
		return fmt.Errorf("ticker too long (max 10 characters)")
	}

	matched, _ := regexp.MatchString("^[A-Z0-9.-]+$", ticker)
	if !matched {
		return fmt.Errorf("invalid ticker format (alphanumeric, dots, and dashes only)")
	}

	return nil
}

// ParseLimitParam parses the limit query parameter
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
