// Package dataset provides an in-memory tabular structure (fields plus
// records) used to return metadata and query results, and renderers for it.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// FieldType is the logical type of a field.
type FieldType int

const (
	TypeUnknown FieldType = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
	TypeBytes
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeInt:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeBool:
		return "BOOLEAN"
	case TypeTime:
		return "TIMESTAMP"
	case TypeBytes:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// TypeOf returns the field type for a Go value.
func TypeOf(v any) FieldType {
	switch v.(type) {
	case nil:
		return TypeUnknown
	case string:
		return TypeString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case bool:
		return TypeBool
	case time.Time:
		return TypeTime
	case []byte:
		return TypeBytes
	default:
		return TypeString
	}
}

// TypeFromDB maps a database type name (as reported by the driver) to a
// field type. Parameters such as VARCHAR(20) are ignored.
func TypeFromDB(name string) FieldType {
	n := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(n, '('); i >= 0 {
		n = n[:i]
	}
	switch {
	case n == "":
		return TypeUnknown
	case strings.Contains(n, "INT") || n == "SERIAL" || n == "BIGSERIAL":
		return TypeInt
	case strings.Contains(n, "CHAR") || strings.Contains(n, "TEXT") || strings.Contains(n, "CLOB") ||
		n == "STRING" || n == "UUID" || n == "NAME" || n == "JSON" || n == "JSONB":
		return TypeString
	case n == "REAL" || strings.Contains(n, "FLOA") || strings.Contains(n, "DOUB") ||
		strings.Contains(n, "NUMERIC") || strings.Contains(n, "DECIMAL") || n == "MONEY":
		return TypeFloat
	case strings.HasPrefix(n, "BOOL") || n == "BIT":
		return TypeBool
	case strings.Contains(n, "DATE") || strings.Contains(n, "TIME"):
		return TypeTime
	case strings.Contains(n, "BLOB") || strings.Contains(n, "BINARY") || n == "BYTEA":
		return TypeBytes
	default:
		return TypeUnknown
	}
}

// Field describes one column of a DataSet.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
	Size     int
}

// Record is one row; values are positional and match DataSet.Fields.
type Record []any

// ErrFieldCount is returned when a record does not match the field list.
var ErrFieldCount = errors.New("record length does not match field count")

// FieldNotFoundError is returned when a field name cannot be resolved.
type FieldNotFoundError struct {
	Name string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found", e.Name)
}

// DataSet is a named list of fields and records.
type DataSet struct {
	Name    string
	Fields  []Field
	Records []Record
}

// New creates a DataSet with the given fields.
func New(name string, fields ...Field) *DataSet {
	return &DataSet{Name: name, Fields: fields}
}

// NewWithNames creates a DataSet with string fields of the given names.
func NewWithNames(name string, names ...string) *DataSet {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n, Type: TypeString, Nullable: true}
	}
	return New(name, fields...)
}

// AddField appends a field. Existing records are padded with nil.
func (d *DataSet) AddField(f Field) {
	d.Fields = append(d.Fields, f)
	for i := range d.Records {
		d.Records[i] = append(d.Records[i], nil)
	}
}

// FieldIndex returns the index of the field named name (case-insensitive),
// or -1.
func (d *DataSet) FieldIndex(name string) int {
	for i, f := range d.Fields {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// FieldNames returns the field names in order.
func (d *DataSet) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// AddRecord appends a record. The number of values must match the fields.
func (d *DataSet) AddRecord(values ...any) error {
	if len(values) != len(d.Fields) {
		return fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(values), len(d.Fields))
	}
	rec := make(Record, len(values))
	copy(rec, values)
	d.Records = append(d.Records, rec)
	return nil
}

// Len returns the number of records.
func (d *DataSet) Len() int {
	return len(d.Records)
}

// Value returns the value of field in record row.
func (d *DataSet) Value(row int, field string) (any, error) {
	if row < 0 || row >= len(d.Records) {
		return nil, fmt.Errorf("row %d out of range [0,%d)", row, len(d.Records))
	}
	idx := d.FieldIndex(field)
	if idx < 0 {
		return nil, &FieldNotFoundError{Name: field}
	}
	return d.Records[row][idx], nil
}

// StringValue returns the value as a string; nil and missing values
// become the empty string.
func (d *DataSet) StringValue(row int, field string) string {
	v, err := d.Value(row, field)
	if err != nil || v == nil {
		return ""
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// Column returns all values of the named field.
func (d *DataSet) Column(name string) ([]any, error) {
	idx := d.FieldIndex(name)
	if idx < 0 {
		return nil, &FieldNotFoundError{Name: name}
	}
	out := make([]any, len(d.Records))
	for i, r := range d.Records {
		out[i] = r[idx]
	}
	return out, nil
}

// Filter returns a new DataSet with the records for which keep returns true.
// Records are shared with the receiver.
func (d *DataSet) Filter(keep func(r Record) bool) *DataSet {
	out := &DataSet{Name: d.Name, Fields: append([]Field(nil), d.Fields...)}
	for _, r := range d.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Sort orders records by field in place. Nil values sort first. The sort
// is stable.
func (d *DataSet) Sort(field string, desc bool) error {
	idx := d.FieldIndex(field)
	if idx < 0 {
		return &FieldNotFoundError{Name: field}
	}
	sort.SliceStable(d.Records, func(i, j int) bool {
		c := compare(d.Records[i][idx], d.Records[j][idx])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return nil
}

func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// ToMaps returns the records as maps keyed by field name.
func (d *DataSet) ToMaps() []map[string]any {
	out := make([]map[string]any, len(d.Records))
	for i, r := range d.Records {
		m := make(map[string]any, len(d.Fields))
		for j, f := range d.Fields {
			m[f.Name] = r[j]
		}
		out[i] = m
	}
	return out
}

// Clone returns a copy of d whose field and record slices can be changed
// without affecting d. Values themselves are shared.
func (d *DataSet) Clone() *DataSet {
	c := &DataSet{Name: d.Name, Fields: append([]Field(nil), d.Fields...)}
	c.Records = make([]Record, len(d.Records))
	for i, r := range d.Records {
		c.Records[i] = append(Record(nil), r...)
	}
	return c
}
