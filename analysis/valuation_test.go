package analysis

import (
	"testing"

	"research-machine/models"
)

func TestScoreValuationInsufficientData(t *testing.T) {
	tests := []struct {
		name      string
		records   []models.FinancialRecord
		marketCap *float64
	}{
		{"no records", nil, fp(100e9)},
		{"nil market cap", []models.FinancialRecord{{NetIncome: fp(10e9)}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreValuation(tt.records, tt.marketCap)
			if result.Score != 0 {
				t.Errorf("Score = %v, want 0", result.Score)
			}
			if len(result.Details) != 1 || result.Details[0] != "Insufficient data to perform valuation" {
				t.Errorf("Details = %v, want single insufficient-data message", result.Details)
			}
		})
	}
}

func TestScoreValuationAllMultiplesAttractive(t *testing.T) {
	// Market cap 100B, debt 20B, cash 10B gives EV 110B.
	// P/E 10, P/FCF 12.5, EV/EBIT 10, EV/EBITDA 8: 2 points each.
	records := []models.FinancialRecord{{
		NetIncome:          fp(10e9),
		FreeCashFlow:       fp(8e9),
		TotalDebt:          fp(20e9),
		CashAndEquivalents: fp(10e9),
		EBIT:               fp(11e9),
		EBITDA:             fp(13.75e9),
	}}

	result := ScoreValuation(records, fp(100e9))
	if result.Score != 10 {
		t.Errorf("Score = %v, want 10", result.Score)
	}
	hasDetail(t, result, "Attractive P/E: 10.00")
	hasDetail(t, result, "Attractive P/FCF: 12.50")
	hasDetail(t, result, "Attractive EV/EBIT: 10.00")
	hasDetail(t, result, "Attractive EV/EBITDA: 8.00")
}

func TestScoreValuationFairTiers(t *testing.T) {
	// Market cap 200B, no debt or cash, so EV equals market cap.
	// P/E 20, P/FCF 20, EV/EBIT 20, EV/EBITDA 16: 1 point each, 4 of 8 raw.
	records := []models.FinancialRecord{{
		NetIncome:    fp(10e9),
		FreeCashFlow: fp(10e9),
		EBIT:         fp(10e9),
		EBITDA:       fp(12.5e9),
	}}

	result := ScoreValuation(records, fp(200e9))
	if want := rescale(4, 8); result.Score != want {
		t.Errorf("Score = %v, want %v", result.Score, want)
	}
	hasDetail(t, result, "Fair P/E: 20.00")
	hasDetail(t, result, "Fair P/FCF: 20.00")
	hasDetail(t, result, "Fair EV/EBIT: 20.00")
	hasDetail(t, result, "Fair EV/EBITDA: 16.00")
}

func TestScoreValuationExpensiveMultiples(t *testing.T) {
	records := []models.FinancialRecord{{
		NetIncome:    fp(1e9),
		FreeCashFlow: fp(1e9),
		EBIT:         fp(1e9),
		EBITDA:       fp(1e9),
	}}

	result := ScoreValuation(records, fp(100e9))
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0", result.Score)
	}
	hasDetail(t, result, "High or Very high P/E: 100.00")
	hasDetail(t, result, "High or Very high P/FCF: 100.00")
	hasDetail(t, result, "High EV/EBIT: 100.00")
	hasDetail(t, result, "High EV/EBITDA: 100.00")
}

func TestScoreValuationGuardsNonPositiveInputs(t *testing.T) {
	// Zero net income and FCF, and cash larger than market cap plus debt
	// forces a negative EV.
	records := []models.FinancialRecord{{
		NetIncome:          fp(0),
		FreeCashFlow:       fp(-2e9),
		CashAndEquivalents: fp(50e9),
		EBIT:               fp(5e9),
		EBITDA:             fp(6e9),
	}}

	result := ScoreValuation(records, fp(10e9))
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0", result.Score)
	}
	hasDetail(t, result, "No positive net income for P/E calculation")
	hasDetail(t, result, "No positive free cash flow for P/FCF calculation")
	hasDetail(t, result, "No valid EV/EBIT, because EV <= 0 or EBIT <= 0")
	hasDetail(t, result, "No valid EV/EBITDA, because EV <= 0 or EBITDA <= 0")
}

func TestScoreValuationUsesNewestPeriodOnly(t *testing.T) {
	// The older period has attractive numbers; only the newest counts.
	records := []models.FinancialRecord{
		{NetIncome: fp(1e9)},
		{NetIncome: fp(50e9), FreeCashFlow: fp(50e9), EBIT: fp(50e9), EBITDA: fp(50e9)},
	}

	result := ScoreValuation(records, fp(100e9))
	if result.Score != 0 {
		t.Errorf("Score = %v, want 0", result.Score)
	}
	hasDetail(t, result, "High or Very high P/E: 100.00")
}

func TestScoreValuationMissingDebtAndCashDefaultToZero(t *testing.T) {
	records := []models.FinancialRecord{{
		NetIncome: fp(10e9),
		EBIT:      fp(10e9),
	}}

	// EV falls back to bare market cap: EV/EBIT = 10.
	result := ScoreValuation(records, fp(100e9))
	hasDetail(t, result, "Attractive EV/EBIT: 10.00")
}

func TestScoreValuationRationaleCoversAllFourMultiples(t *testing.T) {
	records := []models.FinancialRecord{{NetIncome: fp(10e9)}}
	result := ScoreValuation(records, fp(100e9))
	if len(result.Details) != 4 {
		t.Errorf("expected 4 rationale entries, got %d: %v", len(result.Details), result.Details)
	}
}
