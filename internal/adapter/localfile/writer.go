package localfile

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/covid-report-etl/internal/domain"
)

// Writer persists processed tables under {base}/{country}/{date}.{format}.
// An empty table still produces a file: downstream consumers treat the
// artifact's existence as proof the country was processed.
type Writer struct {
	basePath string
	format   string
}

// NewWriter creates a Writer. format must be "csv" or "jsonl"; config
// validation enforces that before we get here.
func NewWriter(basePath, format string) *Writer {
	return &Writer{basePath: basePath, format: format}
}

// Save writes the table and returns the path of the written file. The
// country directory is created if missing.
func (w *Writer) Save(table domain.Table, country, date string) (string, error) {
	dir := filepath.Join(w.basePath, country)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, date+"."+w.format)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}

	var werr error
	switch w.format {
	case "jsonl":
		werr = WriteJSONL(f, table)
	default:
		werr = WriteCSV(f, table)
	}
	cerr := f.Close()
	if werr != nil {
		return "", fmt.Errorf("write %s: %w", path, werr)
	}
	if cerr != nil {
		return "", fmt.Errorf("close %s: %w", path, cerr)
	}
	return path, nil
}

// WriteCSV writes the table as CSV: a header row of column names, then one
// record per row. A table with columns but no rows yields a header-only file.
func WriteCSV(w io.Writer, table domain.Table) error {
	cw := csv.NewWriter(w)
	if table.NumCols() == 0 {
		cw.Flush()
		return cw.Error()
	}
	if err := cw.Write(table.ColumnNames()); err != nil {
		return err
	}
	for i := 0; i < table.NumRows(); i++ {
		row := table.Row(i)
		record := make([]string, len(row))
		for j, cell := range row {
			record[j] = FormatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSONL writes one JSON object per row. Keys are emitted in column
// order, which encoding/json's map marshaling cannot do, so objects are
// built by hand from pre-marshaled column names.
func WriteJSONL(w io.Writer, table domain.Table) error {
	names := table.ColumnNames()
	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return fmt.Errorf("marshal column name %q: %w", name, err)
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	for i := 0; i < table.NumRows(); i++ {
		buf.Reset()
		buf.WriteByte('{')
		for j, cell := range table.Row(i) {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[j])
			buf.WriteByte(':')
			val, err := marshalCell(cell)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, names[j], err)
			}
			buf.Write(val)
		}
		buf.WriteString("}\n")
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// FormatCell renders one cell for CSV output. Dates are RFC3339, numbers
// keep their source text, composite cells collapse to compact JSON.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case time.Time:
		return c.Format(time.RFC3339)
	case json.Number:
		return c.String()
	case bool:
		return strconv.FormatBool(c)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(b)
	}
}

// marshalCell forces time cells to RFC3339 strings so JSONL and CSV agree;
// everything else marshals as-is (json.Number stays verbatim).
func marshalCell(v any) ([]byte, error) {
	if ts, ok := v.(time.Time); ok {
		return json.Marshal(ts.Format(time.RFC3339))
	}
	return json.Marshal(v)
}
