package analysis

import (
	"fmt"

	"research-machine/models"
)

// ScoreValuation evaluates P/E, P/FCF, EV/EBIT, and EV/EBITDA against the
// newest period's statement line items. Up to 2 raw points each (8 total),
// rescaled to [0, 10]. A nil marketCap means "unknown" and short-circuits
// the whole analysis; it is never defaulted to zero.
func ScoreValuation(records []models.FinancialRecord, marketCap *float64) models.SubScoreResult {
	if len(records) == 0 || marketCap == nil {
		return models.SubScoreResult{
			Score:   0,
			Details: []string{"Insufficient data to perform valuation"},
		}
	}

	mc := *marketCap
	latest := records[0]

	debt := 0.0
	if latest.TotalDebt != nil {
		debt = *latest.TotalDebt
	}
	cash := 0.0
	if latest.CashAndEquivalents != nil {
		cash = *latest.CashAndEquivalents
	}
	ev := mc + debt - cash

	var details []string
	rawScore := 0.0

	// 1. P/E
	if latest.NetIncome != nil && *latest.NetIncome > 0 {
		pe := mc / *latest.NetIncome
		switch {
		case pe < 15:
			rawScore += 2
			details = append(details, fmt.Sprintf("Attractive P/E: %.2f", pe))
		case pe < 25:
			rawScore += 1
			details = append(details, fmt.Sprintf("Fair P/E: %.2f", pe))
		default:
			details = append(details, fmt.Sprintf("High or Very high P/E: %.2f", pe))
		}
	} else {
		details = append(details, "No positive net income for P/E calculation")
	}

	// 2. P/FCF
	if latest.FreeCashFlow != nil && *latest.FreeCashFlow > 0 {
		pfcf := mc / *latest.FreeCashFlow
		switch {
		case pfcf < 15:
			rawScore += 2
			details = append(details, fmt.Sprintf("Attractive P/FCF: %.2f", pfcf))
		case pfcf < 25:
			rawScore += 1
			details = append(details, fmt.Sprintf("Fair P/FCF: %.2f", pfcf))
		default:
			details = append(details, fmt.Sprintf("High or Very high P/FCF: %.2f", pfcf))
		}
	} else {
		details = append(details, "No positive free cash flow for P/FCF calculation")
	}

	// 3. EV/EBIT
	if ev > 0 && latest.EBIT != nil && *latest.EBIT > 0 {
		evEbit := ev / *latest.EBIT
		switch {
		case evEbit < 15:
			rawScore += 2
			details = append(details, fmt.Sprintf("Attractive EV/EBIT: %.2f", evEbit))
		case evEbit < 25:
			rawScore += 1
			details = append(details, fmt.Sprintf("Fair EV/EBIT: %.2f", evEbit))
		default:
			details = append(details, fmt.Sprintf("High EV/EBIT: %.2f", evEbit))
		}
	} else {
		details = append(details, "No valid EV/EBIT, because EV <= 0 or EBIT <= 0")
	}

	// 4. EV/EBITDA
	if ev > 0 && latest.EBITDA != nil && *latest.EBITDA > 0 {
		evEbitda := ev / *latest.EBITDA
		switch {
		case evEbitda < 10:
			rawScore += 2
			details = append(details, fmt.Sprintf("Attractive EV/EBITDA: %.2f", evEbitda))
		case evEbitda < 18:
			rawScore += 1
			details = append(details, fmt.Sprintf("Fair EV/EBITDA: %.2f", evEbitda))
		default:
			details = append(details, fmt.Sprintf("High EV/EBITDA: %.2f", evEbitda))
		}
	} else {
		details = append(details, "No valid EV/EBITDA, because EV <= 0 or EBITDA <= 0")
	}

	// Up to 2 points per multiple, 8 raw points total.
	return models.SubScoreResult{
		Score:   rescale(rawScore, 8),
		Details: details,
	}
}
