package models

import (
	"encoding/json"
	"strings"
)

// Signal is the discrete recommendation derived from a composite score.
type Signal string

const (
	SignalStrongBuy Signal = "Strong Buy"
	SignalBuy       Signal = "Buy"
	SignalHold      Signal = "Hold"
	SignalSell      Signal = "Sell"
)

// SubScoreResult is the outcome of one scoring dimension: a bounded score in
// [0, 10] and an ordered rationale trail explaining how it was reached. The
// trail is never empty when any input data was supplied.
type SubScoreResult struct {
	Score   float64
	Details []string
}

// DetailsText joins the rationale trail into a single human-readable string.
func (r SubScoreResult) DetailsText() string {
	return strings.Join(r.Details, "; ")
}

// MarshalJSON serializes the rationale trail as one semicolon-joined string.
func (r SubScoreResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Score   float64 `json:"score"`
		Details string  `json:"details"`
	}{
		Score:   r.Score,
		Details: r.DetailsText(),
	})
}

// UnmarshalJSON restores a SubScoreResult from its wire form.
func (r *SubScoreResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Score   float64 `json:"score"`
		Details string  `json:"details"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Score = wire.Score
	if wire.Details == "" {
		r.Details = nil
	} else {
		r.Details = strings.Split(wire.Details, "; ")
	}
	return nil
}

// CompositeReport is the final per-ticker analysis payload. It is built once
// per invocation and never mutated or persisted by the scoring core.
// Valuation is nil when the valuation scorer did not run (no market cap),
// in which case MaxScore is 20 instead of 30.
type CompositeReport struct {
	Ticker         string          `json:"ticker"`
	Signal         Signal          `json:"signal"`
	Score          float64         `json:"score"`
	MaxScore       float64         `json:"max_score"`
	GrowthMomentum SubScoreResult  `json:"growth_momentum_analysis"`
	RiskReward     SubScoreResult  `json:"risk_reward_analysis"`
	Valuation      *SubScoreResult `json:"valuation_analysis"`
}

// TickerOutcome is one entry of a batch analysis: either a report or an
// explicit error marker. A failed ticker never aborts the rest of the batch.
type TickerOutcome struct {
	Report *CompositeReport `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Narration is the LLM-generated plain-language reading of a report.
// Summary is always present; drivers and risks may be empty.
type Narration struct {
	Summary    string   `json:"summary"`
	KeyDrivers []string `json:"key_drivers,omitempty"`
	Risks      []string `json:"risks,omitempty"`
}
