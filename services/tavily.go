package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"research-machine/observability"
)

// TavilyService handles web search via the Tavily API. It backs the optional
// qualitative context attached to research commentary.
type TavilyService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewTavilyService creates a new TavilyService instance
func NewTavilyService(apiKey, baseURL string) *TavilyService {
	return &TavilyService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

// SearchResult is one web search hit
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type tavilySearchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilySearchResponse struct {
	Answer  string         `json:"answer"`
	Results []SearchResult `json:"results"`
}

// Search runs a web search and returns the top results
func (s *TavilyService) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerTavily, "search")
	timer := metrics.NewTimer()

	results, err := WithCircuitBreaker(ctx, BreakerTavily, func() ([]SearchResult, error) {
		var results []SearchResult

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			body, err := json.Marshal(tavilySearchRequest{
				APIKey:     s.apiKey,
				Query:      query,
				MaxResults: maxResults,
			})
			if err != nil {
				return fmt.Errorf("failed to marshal search request: %w", err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to execute search: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("search API returned status %d", resp.StatusCode)
			}

			var payload tavilySearchResponse
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return fmt.Errorf("failed to decode search response: %w", err)
			}

			results = payload.Results
			return nil
		})

		return results, err
	})

	timer.ObserveExternalAPI(BreakerTavily, "search")
	if err != nil {
		metrics.RecordExternalAPIError(BreakerTavily, "search", categorizeAPIError(err))
	}
	return results, err
}
