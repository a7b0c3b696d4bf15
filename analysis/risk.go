package analysis

import (
	"fmt"
	"math"

	"research-machine/models"

	"gonum.org/v1/gonum/stat"
)

// volatilityMinBars is the minimum bar count (exclusive) before volatility
// is evaluated.
const volatilityMinBars = 10

// equityEpsilon floors a present-but-zero shareholders' equity so the
// debt-to-equity ratio never divides by zero.
const equityEpsilon = 1e-9

// ScoreRiskReward evaluates balance-sheet leverage and price volatility.
// Up to 3 raw points each (6 total), rescaled to [0, 10].
func ScoreRiskReward(records []models.FinancialRecord, prices []models.PricePoint) models.SubScoreResult {
	if len(records) == 0 || len(prices) == 0 {
		return models.SubScoreResult{
			Score:   0,
			Details: []string{"Insufficient data for risk-reward analysis"},
		}
	}

	var details []string
	rawScore := 0.0

	// 1. Debt-to-equity on the newest period.
	debts := collect(records, func(r models.FinancialRecord) *float64 { return r.TotalDebt })
	equities := collect(records, func(r models.FinancialRecord) *float64 { return r.ShareholdersEquity })
	if len(debts) > 0 && len(equities) > 0 && len(debts) == len(equities) {
		recentDebt := debts[0]
		recentEquity := equities[0]
		if recentEquity == 0 {
			recentEquity = equityEpsilon
		}
		deRatio := recentDebt / recentEquity
		switch {
		case deRatio < 0.3:
			rawScore += 3
			details = append(details, fmt.Sprintf("Low debt-to-equity: %.2f", deRatio))
		case deRatio < 0.7:
			rawScore += 2
			details = append(details, fmt.Sprintf("Moderate debt-to-equity: %.2f", deRatio))
		case deRatio < 1.5:
			rawScore += 1
			details = append(details, fmt.Sprintf("Somewhat high debt-to-equity: %.2f", deRatio))
		default:
			details = append(details, fmt.Sprintf("High debt-to-equity: %.2f", deRatio))
		}
	} else {
		details = append(details, "No consistent debt/equity data available.")
	}

	// 2. Volatility of day-over-day returns.
	if len(prices) > volatilityMinBars {
		closes := models.Closes(prices)
		dailyReturns := make([]float64, 0, len(closes)-1)
		for i := 1; i < len(closes); i++ {
			prev := closes[i-1]
			if prev > 0 {
				dailyReturns = append(dailyReturns, closes[i]/prev-1)
			}
		}
		if len(dailyReturns) > 1 {
			stdev := stat.PopStdDev(dailyReturns, nil)
			switch {
			case math.IsNaN(stdev):
				details = append(details, "Invalid price data for volatility calculation.")
			case stdev < 0.01:
				rawScore += 3
				details = append(details, fmt.Sprintf("Low volatility: %.2f%%", stdev*100))
			case stdev < 0.02:
				rawScore += 2
				details = append(details, fmt.Sprintf("Moderate volatility: %.2f%%", stdev*100))
			case stdev < 0.04:
				rawScore += 1
				details = append(details, fmt.Sprintf("High volatility: %.2f%%", stdev*100))
			default:
				details = append(details, fmt.Sprintf("Very high volatility: %.2f%%", stdev*100))
			}
		} else {
			details = append(details, "Insufficient daily returns data for volatility calculation.")
		}
	} else {
		details = append(details, "Not enough price data points for volatility analysis.")
	}

	// Up to 3 points each for leverage and volatility.
	return models.SubScoreResult{
		Score:   rescale(rawScore, 6),
		Details: details,
	}
}
