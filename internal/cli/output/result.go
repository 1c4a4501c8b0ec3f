package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/adt-dummy/dami/pkg/adapter"
)

// Result formats accepted by RenderResult.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

// ResultFormats lists the valid --format values.
var ResultFormats = []string{FormatTable, FormatCSV, FormatJSON, FormatMarkdown}

// IsResultFormat reports whether format is a known result format.
func IsResultFormat(format string) bool {
	for _, f := range ResultFormats {
		if f == format {
			return true
		}
	}
	return false
}

// RenderResult writes a query result in the requested format.
func RenderResult(w io.Writer, rs *adapter.ResultSet, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, rs)
	case FormatCSV:
		return renderCSV(w, rs)
	case FormatMarkdown, "markdown":
		return renderMarkdown(w, rs)
	case FormatTable, "":
		return renderTable(w, rs)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// RenderResultString renders into a string.
func RenderResultString(rs *adapter.ResultSet, format string) (string, error) {
	var buf bytes.Buffer
	if err := RenderResult(&buf, rs, format); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newTable(rs *adapter.ResultSet) table.Writer {
	t := table.NewWriter()
	header := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, r := range rs.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}
	return t
}

// Empty results still print the column header; only a result with no
// columns at all collapses to the row count.
func renderTable(w io.Writer, rs *adapter.ResultSet) error {
	if len(rs.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(rs)
	t.SetStyle(table.StyleLight)
	_, _ = fmt.Fprintln(w, t.Render())
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rs.Rows))
	return nil
}

func renderMarkdown(w io.Writer, rs *adapter.ResultSet) error {
	if len(rs.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(rs)
	_, _ = fmt.Fprintln(w, t.RenderMarkdown())
	if len(rs.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
	}
	return nil
}

func renderCSV(w io.Writer, rs *adapter.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}
	for _, r := range rs.Rows {
		record := make([]string, len(r))
		for i, v := range r {
			if v != nil {
				record[i] = formatValue(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderJSON(w io.Writer, rs *adapter.ResultSet) error {
	objects := make([]orderedRow, len(rs.Rows))
	for i, r := range rs.Rows {
		objects[i] = orderedRow{columns: rs.Columns, values: r}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}

// orderedRow encodes a row as a JSON object keeping column order.
type orderedRow struct {
	columns []string
	values  []any
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var v any
		if i < len(r.values) {
			v = r.values[i]
		}
		val, err := json.Marshal(v)
		if err != nil {
			// Fall back to the string form for values JSON cannot encode.
			val, _ = json.Marshal(formatValue(v))
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
