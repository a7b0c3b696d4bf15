package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func wireReport() CompositeReport {
	return CompositeReport{
		Ticker:   "AAPL",
		Signal:   SignalBuy,
		Score:    18.5,
		MaxScore: 30,
		GrowthMomentum: SubScoreResult{
			Score:   8.5,
			Details: []string{"Strong revenue growth: 20.00% CAGR", "Positive momentum: +15.20%"},
		},
		RiskReward: SubScoreResult{
			Score:   5,
			Details: []string{"Moderate leverage: D/E = 0.55"},
		},
		Valuation: &SubScoreResult{
			Score:   5,
			Details: []string{"Fairly valued on earnings: P/E = 21.3"},
		},
	}
}

func TestCompositeReport_WireShape(t *testing.T) {
	data, err := json.Marshal(wireReport())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal to map failed: %v", err)
	}

	for _, key := range []string{
		"ticker",
		"signal",
		"score",
		"max_score",
		"growth_momentum_analysis",
		"risk_reward_analysis",
		"valuation_analysis",
	} {
		if _, ok := raw[key]; !ok {
			t.Errorf("payload is missing key %q", key)
		}
	}
	if len(raw) != 7 {
		t.Errorf("payload has %d keys, want 7: %s", len(raw), data)
	}

	var growth struct {
		Score   float64 `json:"score"`
		Details string  `json:"details"`
	}
	if err := json.Unmarshal(raw["growth_momentum_analysis"], &growth); err != nil {
		t.Fatalf("growth payload did not decode: %v", err)
	}
	if growth.Score != 8.5 {
		t.Errorf("growth score = %v, want 8.5", growth.Score)
	}
	want := "Strong revenue growth: 20.00% CAGR; Positive momentum: +15.20%"
	if growth.Details != want {
		t.Errorf("growth details = %q, want %q", growth.Details, want)
	}
}

func TestCompositeReport_NoValuationMarshalsNull(t *testing.T) {
	report := wireReport()
	report.Valuation = nil
	report.MaxScore = 20

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !strings.Contains(string(data), `"valuation_analysis":null`) {
		t.Errorf("payload should carry an explicit null valuation: %s", data)
	}
	if !strings.Contains(string(data), `"max_score":20`) {
		t.Errorf("payload should carry max_score 20: %s", data)
	}
}

func TestCompositeReport_RoundTrip(t *testing.T) {
	original := wireReport()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored CompositeReport
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round trip changed the report:\n got %+v\nwant %+v", restored, original)
	}
}

func TestCompositeReport_RoundTripWithoutValuation(t *testing.T) {
	original := wireReport()
	original.Valuation = nil
	original.MaxScore = 20

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored CompositeReport
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if restored.Valuation != nil {
		t.Error("valuation should stay nil through a round trip")
	}
	if !reflect.DeepEqual(original, restored) {
		t.Errorf("round trip changed the report:\n got %+v\nwant %+v", restored, original)
	}
}

func TestSubScoreResult_DetailsText(t *testing.T) {
	r := SubScoreResult{
		Score:   7,
		Details: []string{"first", "second", "third"},
	}
	if got := r.DetailsText(); got != "first; second; third" {
		t.Errorf("DetailsText = %q", got)
	}

	empty := SubScoreResult{Score: 0}
	if got := empty.DetailsText(); got != "" {
		t.Errorf("empty DetailsText = %q, want empty", got)
	}
}

func TestSubScoreResult_UnmarshalEmptyDetails(t *testing.T) {
	var r SubScoreResult
	if err := json.Unmarshal([]byte(`{"score": 3, "details": ""}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.Score != 3 {
		t.Errorf("score = %v, want 3", r.Score)
	}
	if r.Details != nil {
		t.Errorf("empty details should restore as nil, got %v", r.Details)
	}
}
