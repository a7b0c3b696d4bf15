package config

import (
	"fmt"
	"os"
	"strconv"
)

// LLM provider names accepted by LLM_PROVIDER.
const (
	LLMProviderOpenAI  = "openai"
	LLMProviderBedrock = "bedrock"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// LLM provider configurations
	LLM     LLMConfig
	OpenAI  OpenAIConfig
	Bedrock BedrockConfig

	// External service configurations
	FinancialDatasets FinancialDatasetsConfig
	Alpaca            AlpacaConfig
	Tavily            TavilyConfig

	// Analysis configuration
	Analysis AnalysisConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// LLMConfig selects the commentary LLM provider
type LLMConfig struct {
	Provider string // openai or bedrock
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// BedrockConfig holds AWS Bedrock configuration
type BedrockConfig struct {
	Region  string
	ModelID string
}

// FinancialDatasetsConfig holds the fundamentals provider configuration
type FinancialDatasetsConfig struct {
	APIKey  string
	BaseURL string
}

// AlpacaConfig holds Alpaca market data API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

// TavilyConfig holds Tavily web search configuration
type TavilyConfig struct {
	APIKey  string
	BaseURL string
}

// AnalysisConfig holds analysis pipeline configuration
type AnalysisConfig struct {
	PeriodLimit             int // annual statement periods fetched per ticker
	LookbackDays            int // price history window for momentum and volatility
	TimeoutSeconds          int // per-ticker analysis timeout
	MaxConcurrent           int // concurrent tickers in one batch
	SnapshotCacheTTLSeconds int // TTL for cached price snapshots
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LLM: LLMConfig{
			Provider: getEnvString("LLM_PROVIDER", LLMProviderOpenAI),
		},
		OpenAI: OpenAIConfig{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			Model:     getEnvString("OPENAI_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 4096),
		},
		Bedrock: BedrockConfig{
			Region:  getEnvString("AWS_REGION", "us-east-1"),
			ModelID: getEnvString("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
		},
		FinancialDatasets: FinancialDatasetsConfig{
			APIKey:  os.Getenv("FINANCIAL_DATASETS_API_KEY"),
			BaseURL: getEnvString("FINANCIAL_DATASETS_BASE_URL", "https://api.financialdatasets.ai"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
			BaseURL:   getEnvString("ALPACA_BASE_URL", "https://paper-api.alpaca.markets"),
		},
		Tavily: TavilyConfig{
			APIKey:  os.Getenv("TAVILY_API_KEY"),
			BaseURL: getEnvString("TAVILY_BASE_URL", "https://api.tavily.com"),
		},
		Analysis: AnalysisConfig{
			PeriodLimit:             getEnvInt("ANALYSIS_PERIOD_LIMIT", 4),
			LookbackDays:            getEnvInt("ANALYSIS_LOOKBACK_DAYS", 365),
			TimeoutSeconds:          getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 30),
			MaxConcurrent:           getEnvInt("ANALYSIS_MAX_CONCURRENT", 3),
			SnapshotCacheTTLSeconds: getEnvInt("SNAPSHOT_CACHE_TTL_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LLM.Provider != LLMProviderOpenAI && c.LLM.Provider != LLMProviderBedrock {
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q",
			LLMProviderOpenAI, LLMProviderBedrock, c.LLM.Provider)
	}

	// Growth scoring needs at least two statement periods.
	if c.Analysis.PeriodLimit < 2 {
		return fmt.Errorf("ANALYSIS_PERIOD_LIMIT must be at least 2, got %d", c.Analysis.PeriodLimit)
	}
	if c.Analysis.LookbackDays <= 0 {
		return fmt.Errorf("ANALYSIS_LOOKBACK_DAYS must be positive, got %d", c.Analysis.LookbackDays)
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_SECONDS must be positive, got %d", c.Analysis.TimeoutSeconds)
	}
	if c.Analysis.MaxConcurrent <= 0 {
		return fmt.Errorf("ANALYSIS_MAX_CONCURRENT must be positive, got %d", c.Analysis.MaxConcurrent)
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasOpenAI returns true if OpenAI configuration is available
func (c *Config) HasOpenAI() bool {
	return c.OpenAI.APIKey != ""
}

// HasBedrock returns true if Bedrock configuration is available
func (c *Config) HasBedrock() bool {
	return c.Bedrock.Region != "" && c.Bedrock.ModelID != ""
}

// HasFinancialDatasets returns true if the fundamentals provider is configured
func (c *Config) HasFinancialDatasets() bool {
	return c.FinancialDatasets.APIKey != ""
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasTavily returns true if Tavily configuration is available
func (c *Config) HasTavily() bool {
	return c.Tavily.APIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL: "",
		},
		LLM: LLMConfig{
			Provider: LLMProviderOpenAI,
		},
		OpenAI: OpenAIConfig{
			APIKey:    "",
			Model:     "gpt-4o",
			MaxTokens: 4096,
		},
		Bedrock: BedrockConfig{
			Region:  "us-east-1",
			ModelID: "anthropic.claude-3-5-sonnet-20241022-v2:0",
		},
		FinancialDatasets: FinancialDatasetsConfig{
			APIKey:  "",
			BaseURL: "https://api.financialdatasets.ai",
		},
		Alpaca: AlpacaConfig{
			APIKey:    "",
			APISecret: "",
			BaseURL:   "https://paper-api.alpaca.markets",
		},
		Tavily: TavilyConfig{
			APIKey:  "",
			BaseURL: "https://api.tavily.com",
		},
		Analysis: AnalysisConfig{
			PeriodLimit:             4,
			LookbackDays:            365,
			TimeoutSeconds:          30,
			MaxConcurrent:           3,
			SnapshotCacheTTLSeconds: 30,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
		},
	}
}
