package adapter

import (
	"database/sql"
	"fmt"
)

// ResultSet is a fully materialised query result.
type ResultSet struct {
	Columns   []string
	Rows      [][]any
	Truncated bool
}

// FetchRows reads rows into a ResultSet.
//
// maxRows <= 0 reads everything. Otherwise at most maxRows+1 rows are read:
// the extra row only signals that more data exists and is never returned.
// []byte values are converted to string so results render and encode cleanly.
func FetchRows(rows *sql.Rows, maxRows int) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &ResultSet{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) == maxRows {
			result.Truncated = true
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
