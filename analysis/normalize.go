// Package analysis implements the deterministic scoring core: statement
// normalization, the three Druckenmiller-style sub-scorers, and the
// composite signal aggregator. Everything in this package is a pure
// transform of its inputs with no I/O, caching, or shared state.
package analysis

import (
	"fmt"
	"sort"

	"research-machine/models"
)

// metricAliases maps each canonical metric to the raw statement field names
// that can supply it directly, in priority order. The first present field
// wins. Metrics without a direct alias (margins) are derived below.
var metricAliases = map[string][]string{
	models.MetricRevenue:            {"Total Revenue", "Operating Revenue"},
	models.MetricEarningsPerShare:   {"Diluted EPS", "Basic EPS"},
	models.MetricNetIncome:          {"Net Income", "Net Income Common Stockholders"},
	models.MetricOperatingIncome:    {"Operating Income", "Total Operating Income As Reported"},
	models.MetricFreeCashFlow:       {"Free Cash Flow"},
	models.MetricCapitalExpenditure: {"Capital Expenditure"},
	models.MetricCashAndEquivalents: {"Cash And Cash Equivalents", "Cash Cash Equivalents And Short Term Investments"},
	models.MetricTotalDebt:          {"Total Debt"},
	models.MetricShareholdersEquity: {"Stockholders Equity", "Total Equity Gross Minority Interest"},
	models.MetricOutstandingShares:  {"Ordinary Shares Number", "Share Issued"},
	models.MetricEBIT:               {"EBIT"},
	models.MetricEBITDA:             {"EBITDA"},
}

// Raw field names used by the derived-metric fallbacks.
const (
	fieldGrossProfit     = "Gross Profit"
	fieldTotalRevenue    = "Total Revenue"
	fieldOperatingIncome = "Operating Income"
	fieldInterestExpense = "Interest Expense"
	fieldTaxProvision    = "Tax Provision"
	fieldDepreciation    = "Reconciled Depreciation"
	fieldDepreciationAlt = "Depreciation And Amortization"
)

// Normalize merges the three raw statement tables by period and produces one
// FinancialRecord per period, newest first, truncated to limit periods.
// Only the requested canonical metrics are populated; a metric that cannot
// be resolved directly or via a fallback is left absent (nil), never zeroed.
// Only annual statements are supported; any other period value is an
// invalid-argument error. Empty source tables yield an empty slice.
func Normalize(raw models.RawStatements, metrics []string, period string, limit int) ([]models.FinancialRecord, error) {
	if period != "annual" {
		return nil, fmt.Errorf("unsupported period %q: only annual statements are supported", period)
	}

	merged := mergeStatements(raw)
	if len(merged) == 0 {
		return []models.FinancialRecord{}, nil
	}

	periods := make([]string, 0, len(merged))
	for p := range merged {
		periods = append(periods, p)
	}
	// ISO dates and plain year labels both sort correctly as strings;
	// newest period must come first.
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	if limit > 0 && len(periods) > limit {
		periods = periods[:limit]
	}

	records := make([]models.FinancialRecord, 0, len(periods))
	for _, p := range periods {
		fields := merged[p]
		record := models.FinancialRecord{Period: p}
		for _, metric := range metrics {
			if value, ok := resolveMetric(metric, fields); ok {
				record.Set(metric, value)
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// mergeStatements combines the income, balance-sheet, and cash-flow tables
// into one field table per period. When a field appears in more than one
// statement, the earlier statement in that order wins.
func mergeStatements(raw models.RawStatements) map[string]map[string]float64 {
	merged := make(map[string]map[string]float64)
	for _, table := range []models.StatementTable{raw.Income, raw.BalanceSheet, raw.CashFlow} {
		for period, fields := range table {
			dst, ok := merged[period]
			if !ok {
				dst = make(map[string]float64, len(fields))
				merged[period] = dst
			}
			for name, value := range fields {
				if _, exists := dst[name]; !exists {
					dst[name] = value
				}
			}
		}
	}
	return merged
}

// resolveMetric looks up a canonical metric in one period's merged fields:
// direct aliases first, then the derived-metric fallbacks.
func resolveMetric(metric string, fields map[string]float64) (float64, bool) {
	if value, ok := lookup(fields, metricAliases[metric]...); ok {
		return value, true
	}

	switch metric {
	case models.MetricGrossMargin:
		return deriveMargin(fields, fieldGrossProfit)
	case models.MetricOperatingMargin:
		return deriveMargin(fields, fieldOperatingIncome)
	case models.MetricEBIT:
		return deriveEBIT(fields)
	case models.MetricEBITDA:
		return deriveEBITDA(fields)
	}

	return 0, false
}

func lookup(fields map[string]float64, names ...string) (float64, bool) {
	for _, name := range names {
		if value, ok := fields[name]; ok {
			return value, true
		}
	}
	return 0, false
}

// deriveMargin computes numerator / Total Revenue, guarding a zero revenue.
func deriveMargin(fields map[string]float64, numeratorField string) (float64, bool) {
	numerator, ok := fields[numeratorField]
	if !ok {
		return 0, false
	}
	revenue, ok := fields[fieldTotalRevenue]
	if !ok || revenue == 0 {
		return 0, false
	}
	return numerator / revenue, true
}

// deriveEBIT reconstructs EBIT as net income + interest expense + tax
// provision when all three inputs are present.
func deriveEBIT(fields map[string]float64) (float64, bool) {
	netIncome, ok := lookup(fields, metricAliases[models.MetricNetIncome]...)
	if !ok {
		return 0, false
	}
	interest, ok := fields[fieldInterestExpense]
	if !ok {
		return 0, false
	}
	tax, ok := fields[fieldTaxProvision]
	if !ok {
		return 0, false
	}
	return netIncome + interest + tax, true
}

// deriveEBITDA adds depreciation & amortization on top of EBIT (direct or
// reconstructed).
func deriveEBITDA(fields map[string]float64) (float64, bool) {
	ebit, ok := lookup(fields, metricAliases[models.MetricEBIT]...)
	if !ok {
		ebit, ok = deriveEBIT(fields)
		if !ok {
			return 0, false
		}
	}
	depreciation, ok := lookup(fields, fieldDepreciation, fieldDepreciationAlt)
	if !ok {
		return 0, false
	}
	return ebit + depreciation, true
}
