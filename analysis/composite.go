package analysis

import "research-machine/models"

// Signal band fractions of the maximum achievable score. Deriving the bands
// from fractions keeps the signal behavior consistent whether or not the
// valuation scorer ran (max 20 vs max 30).
const (
	strongBuyFraction = 0.70
	buyFraction       = 0.50
	holdFraction      = 0.30
)

// Maximum achievable composite scores depending on which scorers ran.
const (
	maxScoreWithValuation    = 30.0
	maxScoreWithoutValuation = 20.0
)

// Aggregate sums the sub-scores into the final per-ticker report. The max
// score is a fixed ceiling reflecting which sub-scorers ran, not a computed
// value. The returned report is constructed once and never mutated.
func Aggregate(ticker string, growth, riskReward models.SubScoreResult, valuation *models.SubScoreResult) *models.CompositeReport {
	total := growth.Score + riskReward.Score
	maxScore := maxScoreWithoutValuation
	if valuation != nil {
		total += valuation.Score
		maxScore = maxScoreWithValuation
	}

	return &models.CompositeReport{
		Ticker:         ticker,
		Signal:         signalFor(total, maxScore),
		Score:          total,
		MaxScore:       maxScore,
		GrowthMomentum: growth,
		RiskReward:     riskReward,
		Valuation:      valuation,
	}
}

// signalFor maps a composite score onto the discrete signal bands.
func signalFor(total, maxScore float64) models.Signal {
	switch {
	case total >= strongBuyFraction*maxScore:
		return models.SignalStrongBuy
	case total >= buyFraction*maxScore:
		return models.SignalBuy
	case total >= holdFraction*maxScore:
		return models.SignalHold
	default:
		return models.SignalSell
	}
}
