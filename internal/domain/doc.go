// Package domain models per-country COVID report tables and the transforms
// applied to them.
//
// # Data Source
//
// Report snapshots come from the covid-api.com JSON API, one request per
// country per run: GET /reports?iso=MX&date=2023-09-01. The response wraps
// an array of report objects in a "data" key. The extractor flattens each
// object into a row of a [Table], preserving the key order the API emitted.
//
// # Table Conventions
//
// Column order:
//
//	Columns appear in first-seen key order across the payload's rows. Order
//	is preserved end to end, so output files diff cleanly against the
//	historical dataset. Rows missing a key carry a nil cell.
//
// Nested objects:
//
//	Flattened into dot-joined names ("region" -> "region.iso"). Name
//	normalization later strips the dot, so the column lands as "regioniso".
//	Arrays are kept whole as cell values and serialize as JSON text.
//
// Column names:
//
//	Normalized to snake_case by [ToSnakeCase]: camel/Pascal boundaries gain
//	underscores, spaces become underscores, every other non-word character
//	is stripped, then lowercase. A space before an uppercase word produces
//	a double underscore ("Region Name" -> "region__name"); the historical
//	dataset was built with exactly these rules, so they are frozen.
//
// Date column:
//
//	The leftmost column whose name contains "date" (so a feed exposing only
//	"last_update" still resolves), falling back to the leftmost column.
//	Accepted layouts: "2006-01-02", RFC 3339, "2006-01-02 15:04:05", and
//	"2006-01-02T15:04:05". Anything else fails the table; see
//	[ErrUnparseableDate].
//
// Report window:
//
//	The trailing 30 days ending at the run's reference instant, inclusive on
//	both ends, measured as an exact 720h duration rather than calendar days.
//	Survivors are re-sorted by date ascending before metrics, since the feed
//	occasionally delivers rows out of order.
//
// # Case Metrics
//
// The cumulative count column is "confirmed"; a feed that labels it "cases"
// is renamed in place, and a table with neither gets a zero-filled column.
// Cells are coerced to int the way the feed's consumers always have:
// missing and malformed values collapse to 0, fractions truncate, negative
// corrections pass through.
//
// Derived columns, computed over the sorted window:
//
//	new_cases      - day-over-day difference; the first row's full count
//	                 registers as new because the window has no prior report.
//	prev_confirmed - previous row's confirmed, 0 for the first row.
//	growth_rate    - new_cases / prev_confirmed, exactly 0.0 when
//	                 prev_confirmed is not positive.
//
// # Risk Classification
//
// Each row's new_cases maps to a tier via [ClassifyRisk]: above the medium
// cutoff is "alto", above the low cutoff is "medio", everything else is
// "bajo". Comparisons are strict. The Spanish labels are load-bearing for
// downstream dashboards. [Thresholds] also carries a High cutoff that the
// classifier never consults; it exists for operator visibility only, and
// unset (non-positive) cutoffs fall back to 1000/10000.
package domain
