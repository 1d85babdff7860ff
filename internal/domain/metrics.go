package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Column names the transform stages read and write.
const (
	colConfirmed     = "confirmed"
	colCases         = "cases"
	colNewCases      = "new_cases"
	colPrevConfirmed = "prev_confirmed"
	colGrowthRate    = "growth_rate"
	colRisk          = "risk"
	colCountry       = "country"
)

// ComputeCaseMetrics derives per-row case metrics from the cumulative
// confirmed column, assuming rows are already sorted by date ascending:
//
//	new_cases      - day-over-day difference of confirmed. The first row has
//	                 no prior report inside the window, so its full confirmed
//	                 count registers as new.
//	prev_confirmed - the previous row's confirmed count, 0 for the first row.
//	growth_rate    - new_cases / prev_confirmed as float64, exactly 0.0
//	                 whenever prev_confirmed is not positive.
//
// The confirmed column itself is rewritten with coerced int cells. A feed
// that labels the cumulative count "cases" is renamed in place; a table with
// neither column gets a zero-filled confirmed column so the metric columns
// always exist downstream.
func ComputeCaseMetrics(t Table) Table {
	t = resolveConfirmedColumn(t)
	idx, _ := t.ColumnIndex(colConfirmed)

	n := t.NumRows()
	confirmed := make([]int, n)
	confirmedCells := make([]any, n)
	for i, v := range t.Column(idx).Values {
		c := coerceCaseCount(v)
		confirmed[i] = c
		confirmedCells[i] = c
	}

	newCases := make([]any, n)
	prevCells := make([]any, n)
	growth := make([]any, n)
	prev := 0
	for i, c := range confirmed {
		nc := c - prev
		if i == 0 {
			nc = c
		}
		newCases[i] = nc
		prevCells[i] = prev
		if prev > 0 {
			growth[i] = float64(nc) / float64(prev)
		} else {
			growth[i] = 0.0
		}
		prev = c
	}

	t = t.SetColumn(colConfirmed, confirmedCells)
	t = t.SetColumn(colNewCases, newCases)
	t = t.SetColumn(colPrevConfirmed, prevCells)
	return t.SetColumn(colGrowthRate, growth)
}

// resolveConfirmedColumn guarantees a confirmed column: an existing one is
// kept, a "cases" column is renamed in place, and when neither exists a
// zero-filled column is appended.
func resolveConfirmedColumn(t Table) Table {
	if _, ok := t.ColumnIndex(colConfirmed); ok {
		return t
	}
	if _, ok := t.ColumnIndex(colCases); ok {
		return t.RenameColumn(colCases, colConfirmed)
	}
	return t.SetColumn(colConfirmed, make([]any, t.NumRows()))
}

// coerceCaseCount converts a raw cell to an integer case count. Missing and
// malformed values collapse to 0; fractional counts truncate toward zero.
// Negative counts pass through, since upstream corrections occasionally
// revise totals downward.
func coerceCaseCount(v any) int {
	switch c := v.(type) {
	case nil:
		return 0
	case int:
		return c
	case int64:
		return int(c)
	case float64:
		return int(c)
	case json.Number:
		if n, err := c.Int64(); err == nil {
			return int(n)
		}
		if f, err := c.Float64(); err == nil {
			return int(f)
		}
		return 0
	case bool:
		if c {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(c)
		if s == "" {
			return 0
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}
