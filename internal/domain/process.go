package domain

import (
	"fmt"
	"time"
)

// CountrySummary aggregates one country's processed window for publishing
// and run reporting.
type CountrySummary struct {
	Country        string `json:"country"`
	TotalConfirmed int    `json:"total_confirmed"`
	TotalNewCases  int    `json:"total_new_cases"`
}

// ProcessCountry runs the full per-country transform over a raw report
// table, in fixed order: snake_case column normalization, the trailing
// 30-day window filter with date-ascending re-sort, case metric derivation,
// per-row risk classification, and country labeling. It returns the
// enriched table and the window summary.
//
// An empty input table is returned untouched with a zero summary. A country
// with no reports still produces an output artifact downstream, so emptiness
// is not an error here.
func ProcessCountry(raw Table, country string, thresholds Thresholds, ref time.Time) (Table, CountrySummary, error) {
	if raw.IsEmpty() {
		return raw, CountrySummary{Country: country}, nil
	}

	t := NormalizeColumns(raw)
	t, err := FilterWindow(t, ref)
	if err != nil {
		return Table{}, CountrySummary{}, fmt.Errorf("filter report window: %w", err)
	}
	t = ComputeCaseMetrics(t)
	t = classifyRows(t, thresholds)
	t = labelCountry(t, country)

	return t, Summarize(t, country), nil
}

// classifyRows adds the risk column derived from new_cases. ComputeCaseMetrics
// runs first, so the column always exists.
func classifyRows(t Table, thresholds Thresholds) Table {
	idx, _ := t.ColumnIndex(colNewCases)
	values := t.Column(idx).Values
	risks := make([]any, len(values))
	for i, v := range values {
		risks[i] = ClassifyRisk(coerceCaseCount(v), thresholds)
	}
	return t.SetColumn(colRisk, risks)
}

// labelCountry adds a constant country column.
func labelCountry(t Table, country string) Table {
	values := make([]any, t.NumRows())
	for i := range values {
		values[i] = country
	}
	return t.SetColumn(colCountry, values)
}

// Summarize computes window totals for a processed table: the maximum of the
// confirmed column and the sum of new_cases. A zero-row table yields zero
// totals.
func Summarize(t Table, country string) CountrySummary {
	s := CountrySummary{Country: country}
	if idx, ok := t.ColumnIndex(colConfirmed); ok {
		for i, v := range t.Column(idx).Values {
			c := coerceCaseCount(v)
			if i == 0 || c > s.TotalConfirmed {
				s.TotalConfirmed = c
			}
		}
	}
	if idx, ok := t.ColumnIndex(colNewCases); ok {
		for _, v := range t.Column(idx).Values {
			s.TotalNewCases += coerceCaseCount(v)
		}
	}
	return s
}
