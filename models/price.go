package models

import "time"

// PricePoint is one OHLCV bar. Sequences of PricePoint are ordered ascending
// by timestamp (oldest first), the opposite convention from FinancialRecord.
type PricePoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
	AdjClose    *float64  `json:"adj_close,omitempty"`
	Dividends   *float64  `json:"dividends,omitempty"`
	StockSplits *float64  `json:"stock_splits,omitempty"`
}

// Closes extracts the close prices from a bar sequence, preserving order.
func Closes(prices []PricePoint) []float64 {
	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}
	return closes
}
