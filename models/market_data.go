package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot represents the latest quote snapshot for a ticker.
// MarketCap is nil when the provider did not report one; consumers must
// treat that as "unknown", never as zero.
type PriceSnapshot struct {
	Ticker        string           `json:"ticker"`
	Currency      string           `json:"currency,omitempty"`
	LastPrice     decimal.Decimal  `json:"last_price"`
	PreviousClose decimal.Decimal  `json:"previous_close"`
	Open          decimal.Decimal  `json:"open"`
	DayHigh       decimal.Decimal  `json:"day_high"`
	DayLow        decimal.Decimal  `json:"day_low"`
	Volume        int64            `json:"volume"`
	MarketCap     *decimal.Decimal `json:"market_cap,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// MarketCapFloat converts the snapshot market cap to the scoring core's
// float representation, preserving absence.
func (s *PriceSnapshot) MarketCapFloat() *float64 {
	if s == nil || s.MarketCap == nil {
		return nil
	}
	f := s.MarketCap.InexactFloat64()
	return &f
}

// InsiderTrade is one reported insider transaction.
type InsiderTrade struct {
	Ticker          string          `json:"ticker"`
	Insider         string          `json:"insider"`
	Position        string          `json:"position,omitempty"`
	TransactionType string          `json:"transaction_type,omitempty"`
	Shares          decimal.Decimal `json:"shares"`
	Value           decimal.Decimal `json:"value"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// NewsArticle represents a news article about a ticker.
type NewsArticle struct {
	Ticker      string    `json:"ticker,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
