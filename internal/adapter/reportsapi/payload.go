package reportsapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/couchcryptid/covid-report-etl/internal/domain"
)

// field is one key/value pair of a report object, in document order.
type field struct {
	key   string
	value any
}

// ParseReportPayload decodes a reports API response body into a table whose
// columns keep the order the API emitted them in. Decoding into maps would
// destroy that order, so rows are walked token by token. Nested objects
// flatten into dot-joined column names ("region" -> "region.iso"); numbers
// decode as json.Number so cell values pass through untouched.
//
// A missing or null "data" key yields an empty table, not an error.
func ParseReportPayload(body []byte) (domain.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return domain.Table{}, fmt.Errorf("decode payload: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return domain.Table{}, fmt.Errorf("decode payload: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return domain.Table{}, fmt.Errorf("decode payload: %w", err)
		}
		if key, _ := keyTok.(string); key != "data" {
			if err := skipValue(dec); err != nil {
				return domain.Table{}, fmt.Errorf("decode payload: %w", err)
			}
			continue
		}
		return decodeData(dec)
	}
	return domain.Table{}, nil
}

// decodeData consumes the "data" value: null or an array of report objects.
func decodeData(dec *json.Decoder) (domain.Table, error) {
	tok, err := dec.Token()
	if err != nil {
		return domain.Table{}, fmt.Errorf("decode data: %w", err)
	}
	if tok == nil {
		return domain.Table{}, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return domain.Table{}, fmt.Errorf("decode data: expected array, got %v", tok)
	}

	var rows [][]field
	for dec.More() {
		row, err := decodeRow(dec)
		if err != nil {
			return domain.Table{}, err
		}
		rows = append(rows, row)
	}
	if _, err := dec.Token(); err != nil {
		return domain.Table{}, fmt.Errorf("decode data: %w", err)
	}
	return tableFromRows(rows), nil
}

func decodeRow(dec *json.Decoder) ([]field, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode report row: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode report row: expected object, got %v", tok)
	}
	return decodeObjectFields(dec, "")
}

// decodeObjectFields reads key/value pairs up to and including the closing
// brace. Nested objects recurse with a dot-joined prefix.
func decodeObjectFields(dec *json.Decoder, prefix string) ([]field, error) {
	var fields []field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode report row: %w", err)
		}
		key, _ := keyTok.(string)
		if prefix != "" {
			key = prefix + "." + key
		}

		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode report row: %w", err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{':
				nested, err := decodeObjectFields(dec, key)
				if err != nil {
					return nil, err
				}
				fields = append(fields, nested...)
			case '[':
				arr, err := decodeArray(dec)
				if err != nil {
					return nil, err
				}
				fields = append(fields, field{key: key, value: arr})
			}
			continue
		}
		fields = append(fields, field{key: key, value: tok})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode report row: %w", err)
	}
	return fields, nil
}

// decodeArray consumes array elements up to and including the closing
// bracket. Elements decode generically: arrays are passthrough cell data,
// so their inner key order does not matter.
func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}
	for dec.More() {
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode report row: %w", err)
		}
		arr = append(arr, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode report row: %w", err)
	}
	return arr, nil
}

// skipValue consumes exactly one value of any shape.
func skipValue(dec *json.Decoder) error {
	var raw json.RawMessage
	return dec.Decode(&raw)
}

// tableFromRows unions row fields into columns in first-seen order. Rows
// missing a column leave nil cells.
func tableFromRows(rows [][]field) domain.Table {
	var cols []domain.Column
	byName := make(map[string]int)

	for i, row := range rows {
		for _, f := range row {
			at, ok := byName[f.key]
			if !ok {
				at = len(cols)
				byName[f.key] = at
				cols = append(cols, domain.Column{Name: f.key, Values: make([]any, len(rows))})
			}
			cols[at].Values[i] = f.value
		}
	}
	return domain.NewTable(cols...)
}
