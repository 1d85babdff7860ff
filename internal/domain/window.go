package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// reportWindow is the trailing span of report history kept for metric
// computation: 30 days measured as an exact duration back from the
// reference instant, inclusive on both ends.
const reportWindow = 30 * 24 * time.Hour

// dateColumnHint picks the date column: the leftmost column whose name
// contains this substring. Tables without any match fall back to the
// leftmost column.
const dateColumnHint = "date"

// ErrUnparseableDate reports a date cell that matches none of the accepted layouts.
var ErrUnparseableDate = errors.New("unparseable report date")

// reportDateLayouts are the accepted report date formats, tried in order.
// The feed usually sends plain dates; last_update style timestamps show up
// when a payload lacks a dedicated date column.
var reportDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseReportDate parses a date cell. time.Time cells pass through
// unchanged; strings are tried against each accepted layout.
func parseReportDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range reportDateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, d)
	default:
		return time.Time{}, fmt.Errorf("%w: %T value %v", ErrUnparseableDate, v, v)
	}
}

// FilterWindow keeps only rows whose report date falls inside the trailing
// 30-day window ending at ref, then re-sorts the survivors by date
// ascending. The sort is stable, so rows sharing a date keep their feed
// order. The date column is rewritten with the parsed time.Time values so
// later stages and serializers see real timestamps instead of feed strings.
//
// Any cell in the date column that fails to parse fails the whole table:
// a partially filtered window would produce misleading metrics.
func FilterWindow(t Table, ref time.Time) (Table, error) {
	if t.NumCols() == 0 {
		return t, nil
	}

	idx, ok := t.FirstColumnContaining(dateColumnHint)
	if !ok {
		idx = 0
	}
	col := t.Column(idx)

	parsed := make([]time.Time, len(col.Values))
	for i, v := range col.Values {
		ts, err := parseReportDate(v)
		if err != nil {
			return Table{}, fmt.Errorf("column %q row %d: %w", col.Name, i, err)
		}
		parsed[i] = ts
	}

	lower := ref.Add(-reportWindow)
	keep := make([]int, 0, len(parsed))
	for i, ts := range parsed {
		if ts.Before(lower) || ts.After(ref) {
			continue
		}
		keep = append(keep, i)
	}
	sort.SliceStable(keep, func(a, b int) bool {
		return parsed[keep[a]].Before(parsed[keep[b]])
	})

	out := t.Select(keep)
	dates := make([]any, len(keep))
	for i, r := range keep {
		dates[i] = parsed[r]
	}
	return out.setValuesAt(idx, dates), nil
}
