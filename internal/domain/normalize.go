package domain

import (
	"regexp"
	"strings"
)

var (
	// pascalBoundaryRe splits an uppercase-then-lowercase run from whatever
	// precedes it: "HTTPStatus" -> "HTTP_Status", "NewCases" -> "New_Cases".
	pascalBoundaryRe = regexp.MustCompile(`(.)([A-Z][a-z]+)`)

	// camelBoundaryRe splits a lowercase-or-digit to uppercase transition:
	// "lastUpdate" -> "last_Update", "covid19Cases" -> "covid19_Cases".
	camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)

	// nonWordRe matches everything stripped from a normalized name. Dots from
	// flattened nested keys fall here, so "region.iso" collapses to "regioniso".
	nonWordRe = regexp.MustCompile(`[^0-9a-zA-Z_]+`)
)

// ToSnakeCase normalizes a column name to snake_case: camel and Pascal
// boundaries gain underscores, spaces become underscores, every remaining
// non-word character is stripped, and the result is lowercased.
//
// The steps run in this order on purpose. A space before an uppercase word
// yields a double underscore ("Region Name" -> "region__name") because the
// boundary underscore is inserted before spaces are replaced; the historical
// dataset was produced this way and downstream consumers match on it.
func ToSnakeCase(name string) string {
	s := pascalBoundaryRe.ReplaceAllString(name, "${1}_${2}")
	s = camelBoundaryRe.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, " ", "_")
	s = nonWordRe.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// NormalizeColumns returns a table with every column name run through
// ToSnakeCase. Values are shared with the input.
func NormalizeColumns(t Table) Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = Column{Name: ToSnakeCase(c.Name), Values: c.Values}
	}
	return Table{cols: cols}
}
