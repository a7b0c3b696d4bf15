package models

// Canonical metric names understood by the normalizer and the scorers.
const (
	MetricRevenue            = "revenue"
	MetricEarningsPerShare   = "earnings_per_share"
	MetricNetIncome          = "net_income"
	MetricOperatingIncome    = "operating_income"
	MetricGrossMargin        = "gross_margin"
	MetricOperatingMargin    = "operating_margin"
	MetricFreeCashFlow       = "free_cash_flow"
	MetricCapitalExpenditure = "capital_expenditure"
	MetricCashAndEquivalents = "cash_and_equivalents"
	MetricTotalDebt          = "total_debt"
	MetricShareholdersEquity = "shareholders_equity"
	MetricOutstandingShares  = "outstanding_shares"
	MetricEBIT               = "ebit"
	MetricEBITDA             = "ebitda"
)

// AllMetrics lists every canonical metric name.
var AllMetrics = []string{
	MetricRevenue,
	MetricEarningsPerShare,
	MetricNetIncome,
	MetricOperatingIncome,
	MetricGrossMargin,
	MetricOperatingMargin,
	MetricFreeCashFlow,
	MetricCapitalExpenditure,
	MetricCashAndEquivalents,
	MetricTotalDebt,
	MetricShareholdersEquity,
	MetricOutstandingShares,
	MetricEBIT,
	MetricEBITDA,
}

// FinancialRecord holds the normalized line items for one reporting period.
// A nil field means the metric is unknown for that period; callers must not
// treat missing as zero. Sequences of FinancialRecord are ordered newest
// period first.
type FinancialRecord struct {
	Period             string   `json:"period"`
	Revenue            *float64 `json:"revenue,omitempty"`
	EarningsPerShare   *float64 `json:"earnings_per_share,omitempty"`
	NetIncome          *float64 `json:"net_income,omitempty"`
	OperatingIncome    *float64 `json:"operating_income,omitempty"`
	GrossMargin        *float64 `json:"gross_margin,omitempty"`
	OperatingMargin    *float64 `json:"operating_margin,omitempty"`
	FreeCashFlow       *float64 `json:"free_cash_flow,omitempty"`
	CapitalExpenditure *float64 `json:"capital_expenditure,omitempty"`
	CashAndEquivalents *float64 `json:"cash_and_equivalents,omitempty"`
	TotalDebt          *float64 `json:"total_debt,omitempty"`
	ShareholdersEquity *float64 `json:"shareholders_equity,omitempty"`
	OutstandingShares  *float64 `json:"outstanding_shares,omitempty"`
	EBIT               *float64 `json:"ebit,omitempty"`
	EBITDA             *float64 `json:"ebitda,omitempty"`
}

// Set assigns a canonical metric by name. Unknown names are ignored.
func (r *FinancialRecord) Set(metric string, value float64) {
	v := value
	switch metric {
	case MetricRevenue:
		r.Revenue = &v
	case MetricEarningsPerShare:
		r.EarningsPerShare = &v
	case MetricNetIncome:
		r.NetIncome = &v
	case MetricOperatingIncome:
		r.OperatingIncome = &v
	case MetricGrossMargin:
		r.GrossMargin = &v
	case MetricOperatingMargin:
		r.OperatingMargin = &v
	case MetricFreeCashFlow:
		r.FreeCashFlow = &v
	case MetricCapitalExpenditure:
		r.CapitalExpenditure = &v
	case MetricCashAndEquivalents:
		r.CashAndEquivalents = &v
	case MetricTotalDebt:
		r.TotalDebt = &v
	case MetricShareholdersEquity:
		r.ShareholdersEquity = &v
	case MetricOutstandingShares:
		r.OutstandingShares = &v
	case MetricEBIT:
		r.EBIT = &v
	case MetricEBITDA:
		r.EBITDA = &v
	}
}

// Get returns a canonical metric by name and whether it is present.
func (r *FinancialRecord) Get(metric string) (float64, bool) {
	var p *float64
	switch metric {
	case MetricRevenue:
		p = r.Revenue
	case MetricEarningsPerShare:
		p = r.EarningsPerShare
	case MetricNetIncome:
		p = r.NetIncome
	case MetricOperatingIncome:
		p = r.OperatingIncome
	case MetricGrossMargin:
		p = r.GrossMargin
	case MetricOperatingMargin:
		p = r.OperatingMargin
	case MetricFreeCashFlow:
		p = r.FreeCashFlow
	case MetricCapitalExpenditure:
		p = r.CapitalExpenditure
	case MetricCashAndEquivalents:
		p = r.CashAndEquivalents
	case MetricTotalDebt:
		p = r.TotalDebt
	case MetricShareholdersEquity:
		p = r.ShareholdersEquity
	case MetricOutstandingShares:
		p = r.OutstandingShares
	case MetricEBIT:
		p = r.EBIT
	case MetricEBITDA:
		p = r.EBITDA
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// StatementTable maps a reporting period (ISO date or year label) to the raw
// provider field names and values for that period.
type StatementTable map[string]map[string]float64

// RawStatements bundles the three raw statement tables for one ticker as
// returned by a fundamentals provider.
type RawStatements struct {
	Income       StatementTable `json:"income"`
	BalanceSheet StatementTable `json:"balance_sheet"`
	CashFlow     StatementTable `json:"cash_flow"`
}
