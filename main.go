package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"research-machine/agents"
	"research-machine/config"
	"research-machine/internal/api"
	"research-machine/observability"
	"research-machine/repository"
	"research-machine/services"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	envLoaded := godotenv.Load() == nil

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	if !envLoaded {
		observability.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Database is optional: without it the server runs but records no history
	var repo *repository.Repository
	if cfg.HasDatabase() {
		repo, err = repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Warn("failed to initialize database, running without run history", "error", err)
			repo = nil
		} else {
			defer repo.Close()
		}
	} else {
		observability.Info("DATABASE_URL not set, running without run history")
	}

	if !cfg.HasFinancialDatasets() {
		observability.Fatal("FINANCIAL_DATASETS_API_KEY is required")
	}
	marketData := services.NewFinancialDatasetsService(cfg.FinancialDatasets.APIKey, cfg.FinancialDatasets.BaseURL)

	runner := agents.NewRunner(agents.NewDruckenmiller(), marketData, cfg)
	if cfg.HasAlpaca() {
		runner.SetBarService(services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret))
	} else {
		observability.Info("Alpaca credentials not set, no fallback price source")
	}
	if repo != nil {
		runner.SetRepository(repo)
		runner.SetPayloadCache(repo)
	}

	// Commentary is optional: without an LLM the analyze endpoint still
	// serves reports, it just cannot narrate them
	var commentary api.CommentaryService
	llm, err := services.NewLLMService(ctx, cfg)
	if err != nil {
		observability.Warn("LLM provider unavailable, commentary disabled", "error", err)
	} else {
		c := agents.NewCommentary(llm)
		if cfg.HasTavily() {
			c.SetSearchService(services.NewTavilyService(cfg.Tavily.APIKey, cfg.Tavily.BaseURL))
		}
		commentary = c
	}

	var store api.RunStore
	if repo != nil {
		store = repo
	}

	handler := api.NewHandler(runner, commentary, store, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Duration(cfg.Analysis.TimeoutSeconds) * time.Second,
	}

	go func() {
		observability.Info("starting research server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down research server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("research server stopped")
}
