package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refInstant anchors window tests: the window covers
// [2023-12-16T00:00:00Z, 2024-01-15T00:00:00Z], both ends inclusive.
var refInstant = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestParseReportDate(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected time.Time
	}{
		{"plain date", "2023-09-01", time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2023-09-01T10:30:00Z", time.Date(2023, 9, 1, 10, 30, 0, 0, time.UTC)},
		{"space separated timestamp", "2023-09-01 04:20:55", time.Date(2023, 9, 1, 4, 20, 55, 0, time.UTC)},
		{"t separated without zone", "2023-09-01T04:20:55", time.Date(2023, 9, 1, 4, 20, 55, 0, time.UTC)},
		{"surrounding whitespace", "  2023-09-01  ", time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"already parsed", time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReportDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("rejects unknown layouts", func(t *testing.T) {
		for _, in := range []any{"01/09/2023", "yesterday", "", 20230901, nil} {
			_, err := parseReportDate(in)
			require.Error(t, err, "input %v", in)
			assert.ErrorIs(t, err, ErrUnparseableDate)
		}
	})
}

func TestFilterWindow_Bounds(t *testing.T) {
	tbl := NewTable(
		Column{Name: "date", Values: []any{
			"2023-12-15", // one day before the lower bound
			"2023-12-16", // exactly on the lower bound
			"2024-01-01",
			"2024-01-15", // exactly on the reference instant
			"2024-01-16", // after the reference instant
		}},
		Column{Name: "confirmed", Values: []any{1, 2, 3, 4, 5}},
	)

	out, err := FilterWindow(tbl, refInstant)
	require.NoError(t, err)

	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, []any{2, 3, 4}, out.Column(1).Values)
}

func TestFilterWindow_SortsAscending(t *testing.T) {
	tbl := NewTable(
		Column{Name: "date", Values: []any{"2024-01-10", "2024-01-02", "2024-01-06"}},
		Column{Name: "confirmed", Values: []any{30, 10, 20}},
	)

	out, err := FilterWindow(tbl, refInstant)
	require.NoError(t, err)

	assert.Equal(t, []any{10, 20, 30}, out.Column(1).Values)
}

func TestFilterWindow_SortIsStable(t *testing.T) {
	tbl := NewTable(
		Column{Name: "date", Values: []any{"2024-01-10", "2024-01-02", "2024-01-10"}},
		Column{Name: "tag", Values: []any{"a", "b", "c"}},
	)

	out, err := FilterWindow(tbl, refInstant)
	require.NoError(t, err)

	// Rows sharing a date keep their feed order.
	assert.Equal(t, []any{"b", "a", "c"}, out.Column(1).Values)
}

func TestFilterWindow_RewritesDateColumn(t *testing.T) {
	tbl := NewTable(
		Column{Name: "date", Values: []any{"2024-01-02", "2024-01-03T08:00:00Z"}},
		Column{Name: "confirmed", Values: []any{1, 2}},
	)

	out, err := FilterWindow(tbl, refInstant)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), out.Value(0, 0))
	assert.Equal(t, time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC), out.Value(1, 0))
}

func TestFilterWindow_DateColumnResolution(t *testing.T) {
	t.Run("substring match", func(t *testing.T) {
		tbl := NewTable(
			Column{Name: "confirmed", Values: []any{1}},
			Column{Name: "last_update", Values: []any{"2024-01-05 10:00:00"}},
		)
		out, err := FilterWindow(tbl, refInstant)
		require.NoError(t, err)
		assert.Equal(t, 1, out.NumRows())
		assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), out.Value(0, 1))
	})

	t.Run("fallback to leftmost column", func(t *testing.T) {
		tbl := NewTable(
			Column{Name: "day", Values: []any{"2024-01-05", "2023-01-05"}},
			Column{Name: "confirmed", Values: []any{1, 2}},
		)
		out, err := FilterWindow(tbl, refInstant)
		require.NoError(t, err)
		assert.Equal(t, 1, out.NumRows())
		assert.Equal(t, []any{1}, out.Column(1).Values)
	})
}

func TestFilterWindow_UnparseableDateFailsTable(t *testing.T) {
	tbl := NewTable(
		Column{Name: "date", Values: []any{"2024-01-02", "not-a-date"}},
		Column{Name: "confirmed", Values: []any{1, 2}},
	)

	_, err := FilterWindow(tbl, refInstant)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparseableDate)
	assert.Contains(t, err.Error(), `row 1`)
}

func TestFilterWindow_EmptyTable(t *testing.T) {
	var tbl Table
	out, err := FilterWindow(tbl, refInstant)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestFilterWindow_AllRowsOutside(t *testing.T) {
	tbl := NewTable(
		Column{Name: "date", Values: []any{"2020-03-01", "2020-03-02"}},
		Column{Name: "confirmed", Values: []any{100, 200}},
	)

	out, err := FilterWindow(tbl, refInstant)
	require.NoError(t, err)

	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, 2, out.NumCols(), "columns survive an emptied window")
}
