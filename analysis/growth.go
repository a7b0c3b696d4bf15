package analysis

import (
	"fmt"
	"math"

	"research-machine/models"
)

// momentumMinBars is the minimum bar count (exclusive) before price momentum
// is evaluated at all.
const momentumMinBars = 30

// ScoreGrowthMomentum evaluates revenue growth, EPS growth, and price
// momentum. Records must be newest-first, prices oldest-first. Up to 3 raw
// points per dimension (9 total), rescaled to [0, 10].
func ScoreGrowthMomentum(records []models.FinancialRecord, prices []models.PricePoint) models.SubScoreResult {
	if len(records) < 2 {
		return models.SubScoreResult{
			Score:   0,
			Details: []string{"Insufficient financial data for growth analysis"},
		}
	}

	var details []string
	rawScore := 0.0

	// 1. Revenue growth (annualized CAGR).
	revenues := collect(records, func(r models.FinancialRecord) *float64 { return r.Revenue })
	points, detail := scoreGrowthSeries(revenues, "revenue")
	rawScore += points
	details = append(details, detail)

	// 2. EPS growth (annualized CAGR).
	epsValues := collect(records, func(r models.FinancialRecord) *float64 { return r.EarningsPerShare })
	points, detail = scoreGrowthSeries(epsValues, "EPS")
	rawScore += points
	details = append(details, detail)

	// 3. Price momentum over the full supplied window.
	if len(prices) > momentumMinBars {
		closes := models.Closes(prices)
		startPrice := closes[0]
		endPrice := closes[len(closes)-1]
		if startPrice > 0 {
			pctChange := (endPrice - startPrice) / startPrice
			switch {
			case pctChange > 0.50:
				rawScore += 3
				details = append(details, fmt.Sprintf("Very strong price momentum: %.1f%%", pctChange*100))
			case pctChange > 0.20:
				rawScore += 2
				details = append(details, fmt.Sprintf("Moderate price momentum: %.1f%%", pctChange*100))
			case pctChange > 0:
				rawScore += 1
				details = append(details, fmt.Sprintf("Slight positive momentum: %.1f%%", pctChange*100))
			default:
				details = append(details, fmt.Sprintf("Negative price momentum: %.1f%%", pctChange*100))
			}
		} else {
			details = append(details, "Invalid start price (<= 0); can't compute momentum.")
		}
	} else {
		details = append(details, "Not enough recent price data for momentum analysis.")
	}

	// Up to 3 points each for revenue growth, EPS growth, and momentum.
	return models.SubScoreResult{
		Score:   rescale(rawScore, 9),
		Details: details,
	}
}

// scoreGrowthSeries applies the CAGR thresholds to a newest-first value
// series and returns the raw points plus the rationale sentence.
func scoreGrowthSeries(values []float64, noun string) (float64, string) {
	if len(values) < 2 {
		return 0, fmt.Sprintf("Not enough %s data points for growth calculation.", noun)
	}

	latest := values[0]
	oldest := values[len(values)-1]
	numYears := float64(len(values) - 1)

	if math.IsNaN(latest) || math.IsNaN(oldest) {
		return 0, fmt.Sprintf("Invalid %s data.", noun)
	}
	if oldest <= 0 || latest <= 0 {
		return 0, fmt.Sprintf("Older %s is zero or negative; can't compute %s growth.", noun, noun)
	}

	growth := math.Pow(latest/oldest, 1/numYears) - 1
	switch {
	case growth > 0.08:
		return 3, fmt.Sprintf("Strong annualized %s growth: %.1f%%", noun, growth*100)
	case growth > 0.04:
		return 2, fmt.Sprintf("Moderate annualized %s growth: %.1f%%", noun, growth*100)
	case growth > 0.01:
		return 1, fmt.Sprintf("Slight annualized %s growth: %.1f%%", noun, growth*100)
	default:
		return 0, fmt.Sprintf("Minimal or negative annualized %s growth: %.1f%%", noun, growth*100)
	}
}

// collect extracts the present values of one metric across records,
// preserving newest-first order.
func collect(records []models.FinancialRecord, get func(models.FinancialRecord) *float64) []float64 {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if v := get(r); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

// rescale maps a raw point total onto [0, 10], clamped at 10.
func rescale(raw, max float64) float64 {
	return math.Min(10, raw/max*10)
}
