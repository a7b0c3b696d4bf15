// Package main provides a one-shot CLI for running an analysis batch
// without starting the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"research-machine/agents"
	"research-machine/config"
	"research-machine/observability"
	"research-machine/services"

	"github.com/joho/godotenv"
)

func main() {
	tickersFlag := flag.String("tickers", "", "comma-separated tickers to analyze (required)")
	commentaryFlag := flag.Bool("commentary", false, "narrate each report through the configured LLM")
	flag.Parse()

	godotenv.Load()
	observability.InitLogger(false)
	observability.InitMetrics()

	if *tickersFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -tickers AAPL,MSFT [-commentary]")
		os.Exit(2)
	}

	var tickers []string
	for _, t := range strings.Split(*tickersFlag, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		fmt.Fprintln(os.Stderr, "no valid tickers given")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}
	if !cfg.HasFinancialDatasets() {
		observability.Fatal("FINANCIAL_DATASETS_API_KEY is required")
	}

	ctx := context.Background()

	marketData := services.NewFinancialDatasetsService(cfg.FinancialDatasets.APIKey, cfg.FinancialDatasets.BaseURL)
	runner := agents.NewRunner(agents.NewDruckenmiller(), marketData, cfg)
	if cfg.HasAlpaca() {
		runner.SetBarService(services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret))
	}

	var commentary *agents.Commentary
	if *commentaryFlag {
		llm, err := services.NewLLMService(ctx, cfg)
		if err != nil {
			observability.Fatal("commentary requested but no LLM provider available", "error", err)
		}
		commentary = agents.NewCommentary(llm)
		if cfg.HasTavily() {
			commentary.SetSearchService(services.NewTavilyService(cfg.Tavily.APIKey, cfg.Tavily.BaseURL))
		}
	}

	batchCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Analysis.TimeoutSeconds)*time.Second*time.Duration(len(tickers)))
	defer cancel()

	outcomes := runner.AnalyzeBatch(batchCtx, tickers)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	failed := 0
	for _, ticker := range tickers {
		outcome := outcomes[ticker]
		if outcome.Error != "" {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %s\n", ticker, outcome.Error)
			continue
		}

		encoder.Encode(outcome.Report)

		if commentary != nil {
			narration, err := commentary.Narrate(ctx, outcome.Report)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: commentary failed: %v\n", ticker, err)
				continue
			}
			fmt.Printf("\n%s\n", narration.Summary)
			for _, d := range narration.KeyDrivers {
				fmt.Printf("  + %s\n", d)
			}
			for _, risk := range narration.Risks {
				fmt.Printf("  - %s\n", risk)
			}
			fmt.Println()
		}
	}

	if failed == len(tickers) {
		os.Exit(1)
	}
}
