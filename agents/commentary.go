package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"research-machine/models"
	"research-machine/observability"
)

const commentarySystemPrompt = `You are a financial research assistant.
You will be given a completed quantitative analysis of a public company as JSON:
a composite score, a signal, and per-dimension scores with rationale trails for
growth/momentum, risk/reward, and (when available) valuation.

Respond with a single JSON object and nothing else, using exactly these keys:
  "summary": a concise plain-language reading of the analysis for an informed
  retail investor, under 200 words, closing with the signal and one sentence
  on what would change it
  "key_drivers": up to three short strings naming what most helped the score
  "risks": up to three short strings naming what most hurt or threatens it

Ground every claim in the rationale trails provided; do not invent numbers or
facts. If recent headlines are included, you may reference them for context.
Do not give personalized investment advice.`

// Commentary narrates a finished composite report through an LLM,
// optionally enriched with recent headlines from a search service.
type Commentary struct {
	llm    LLMService
	search SearchService
}

// NewCommentary creates a new Commentary generator
func NewCommentary(llm LLMService) *Commentary {
	return &Commentary{llm: llm}
}

// SetSearchService enables headline enrichment. Search failures degrade to
// a report-only summary, never an error.
func (c *Commentary) SetSearchService(search SearchService) {
	c.search = search
}

// Narrate produces a structured plain-language reading of the report
func (c *Commentary) Narrate(ctx context.Context, report *models.CompositeReport) (*models.Narration, error) {
	if report == nil {
		return nil, fmt.Errorf("cannot narrate a nil report")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Summarize the following analysis of %s:\n\n%s\n", report.Ticker, payload)

	if headlines := c.recentHeadlines(ctx, report.Ticker); len(headlines) > 0 {
		prompt.WriteString("\nRecent headlines:\n")
		for _, h := range headlines {
			prompt.WriteString("- " + h + "\n")
		}
	}

	var narration models.Narration
	if err := c.llm.InvokeStructured(ctx, commentarySystemPrompt, prompt.String(), &narration); err != nil {
		return nil, fmt.Errorf("failed to generate commentary for %s: %w", report.Ticker, err)
	}
	if narration.Summary == "" {
		return nil, fmt.Errorf("commentary for %s came back without a summary", report.Ticker)
	}

	return &narration, nil
}

// recentHeadlines fetches a few current headlines for context
func (c *Commentary) recentHeadlines(ctx context.Context, ticker string) []string {
	if c.search == nil {
		return nil
	}

	results, err := c.search.Search(ctx, ticker+" stock news", 3)
	if err != nil {
		observability.Warn("headline search failed, narrating report only",
			"ticker", ticker,
			"error", err)
		return nil
	}

	headlines := make([]string, 0, len(results))
	for _, r := range results {
		headlines = append(headlines, r.Title)
	}
	return headlines
}
