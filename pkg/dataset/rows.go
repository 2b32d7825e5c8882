package dataset

import (
	"database/sql"
	"fmt"
	"strings"
)

// Remap renames result set columns while marshaling rows into a DataSet.
// Keys are source column names (matched case-insensitively), values are
// target field names.
type Remap struct {
	Columns map[string]string
	// DropUnmapped removes columns that have no entry in Columns.
	DropUnmapped bool
}

// Target returns the field name for a source column.
func (r Remap) Target(column string) (string, bool) {
	if target, ok := r.Columns[column]; ok {
		return target, true
	}
	for src, target := range r.Columns {
		if strings.EqualFold(src, column) {
			return target, true
		}
	}
	if r.DropUnmapped {
		return "", false
	}
	return column, true
}

// FromRows reads all rows into a new DataSet named name, applying remap to
// the column names. Field types are inferred from the first non-nil value
// of each column; byte slices are returned as strings. The caller still
// owns rows and must close it.
func FromRows(name string, rows *sql.Rows, remap Remap) (*DataSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	ds := New(name)
	keep := make([]int, 0, len(cols))
	for i, col := range cols {
		target, ok := remap.Target(col)
		if !ok {
			continue
		}
		ds.Fields = append(ds.Fields, Field{Name: target, Nullable: true})
		keep = append(keep, i)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make(Record, len(keep))
		for j, i := range keep {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[j] = v
			if ds.Fields[j].Type == TypeUnknown && v != nil {
				ds.Fields[j].Type = TypeOf(v)
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return ds, nil
}
