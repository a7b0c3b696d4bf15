package agents

import (
	"research-machine/analysis"
	"research-machine/models"
	"research-machine/observability"
)

// AnalyzerDruckenmiller is the persona name used in run records and metrics.
const AnalyzerDruckenmiller = "druckenmiller"

// Druckenmiller scores tickers on growth/momentum, risk/reward, and
// valuation, weighted toward growth and price momentum.
type Druckenmiller struct{}

// NewDruckenmiller creates a new Druckenmiller analyzer
func NewDruckenmiller() *Druckenmiller {
	return &Druckenmiller{}
}

// Name returns the analyzer persona name
func (d *Druckenmiller) Name() string {
	return AnalyzerDruckenmiller
}

// RequiredMetrics lists the line items the three scorers read
func (d *Druckenmiller) RequiredMetrics() []string {
	return []string{
		models.MetricRevenue,
		models.MetricEarningsPerShare,
		models.MetricNetIncome,
		models.MetricOperatingIncome,
		models.MetricFreeCashFlow,
		models.MetricCashAndEquivalents,
		models.MetricTotalDebt,
		models.MetricShareholdersEquity,
		models.MetricEBIT,
		models.MetricEBITDA,
	}
}

// Analyze runs the three scorers and aggregates them into a composite
// report. Valuation only participates when a market cap is known.
func (d *Druckenmiller) Analyze(ticker string, input AnalysisInput) *models.CompositeReport {
	growth := analysis.ScoreGrowthMomentum(input.Records, input.Prices)
	riskReward := analysis.ScoreRiskReward(input.Records, input.Prices)

	var valuation *models.SubScoreResult
	if input.MarketCap != nil {
		v := analysis.ScoreValuation(input.Records, input.MarketCap)
		valuation = &v
	}

	metrics := observability.GetMetrics()
	metrics.RecordSubScore("growth_momentum", growth.Score)
	metrics.RecordSubScore("risk_reward", riskReward.Score)
	if valuation != nil {
		metrics.RecordSubScore("valuation", valuation.Score)
	}

	report := analysis.Aggregate(ticker, growth, riskReward, valuation)
	metrics.RecordSignal(string(report.Signal), report.Score)

	return report
}

// Compile-time interface verification
var _ Analyzer = (*Druckenmiller)(nil)
