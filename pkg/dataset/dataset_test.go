package dataset

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *DataSet {
	t.Helper()
	ds := New("people",
		Field{Name: "id", Type: TypeInt},
		Field{Name: "name", Type: TypeString, Nullable: true},
		Field{Name: "score", Type: TypeFloat},
	)
	require.NoError(t, ds.AddRecord(int64(2), "Bob", 7.5))
	require.NoError(t, ds.AddRecord(int64(1), "Ann", 9.0))
	require.NoError(t, ds.AddRecord(int64(3), nil, 3.25))
	return ds
}

func TestDataSetBasics(t *testing.T) {
	ds := sample(t)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 1, ds.FieldIndex("NAME"))
	assert.Equal(t, -1, ds.FieldIndex("missing"))
	assert.Equal(t, []string{"id", "name", "score"}, ds.FieldNames())

	v, err := ds.Value(1, "name")
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)

	_, err = ds.Value(5, "name")
	assert.Error(t, err)

	_, err = ds.Value(0, "missing")
	var nf *FieldNotFoundError
	assert.ErrorAs(t, err, &nf)

	assert.Equal(t, "7.5", ds.StringValue(0, "score"))
	assert.Equal(t, "", ds.StringValue(2, "name"))

	err = ds.AddRecord(1, 2)
	assert.ErrorIs(t, err, ErrFieldCount)

	col, err := ds.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(1), int64(3)}, col)
}

func TestAddFieldPadsRecords(t *testing.T) {
	ds := sample(t)
	ds.AddField(Field{Name: "extra"})
	for _, r := range ds.Records {
		assert.Len(t, r, 4)
		assert.Nil(t, r[3])
	}
}

func TestFilterAndSort(t *testing.T) {
	ds := sample(t)

	high := ds.Filter(func(r Record) bool { return r[2].(float64) > 5 })
	assert.Equal(t, 2, high.Len())
	assert.Equal(t, 3, ds.Len())

	require.NoError(t, ds.Sort("id", false))
	ids, _ := ds.Column("id")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, ids)

	require.NoError(t, ds.Sort("name", true))
	names, _ := ds.Column("name")
	assert.Equal(t, []any{"Bob", "Ann", nil}, names)

	assert.Error(t, ds.Sort("missing", false))
}

func TestToMaps(t *testing.T) {
	ds := sample(t)
	maps := ds.ToMaps()
	require.Len(t, maps, 3)
	assert.Equal(t, map[string]any{"id": int64(2), "name": "Bob", "score": 7.5}, maps[0])
}

func TestClone(t *testing.T) {
	ds := sample(t)
	c := ds.Clone()
	c.Records[0][1] = "changed"
	c.AddField(Field{Name: "extra"})

	assert.Equal(t, "Bob", ds.Records[0][1])
	assert.Len(t, ds.Fields, 3)
	assert.Len(t, c.Fields, 4)
}

func TestTypeFromDB(t *testing.T) {
	tests := map[string]FieldType{
		"VARCHAR(20)":      TypeString,
		"integer":          TypeInt,
		"BIGINT":           TypeInt,
		"numeric(10,2)":    TypeFloat,
		"double precision": TypeFloat,
		"boolean":          TypeBool,
		"timestamp":        TypeTime,
		"DATE":             TypeTime,
		"bytea":            TypeBytes,
		"":                 TypeUnknown,
		"geometry":         TypeUnknown,
	}
	for in, want := range tests {
		assert.Equal(t, want, TypeFromDB(in), in)
	}
	assert.Equal(t, TypeTime, TypeOf(time.Now()))
	assert.Equal(t, "INTEGER", TypeInt.String())
}

func TestFromRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"table_name", "table_type", "internal"}).
			AddRow([]byte("users"), "BASE TABLE", 1).
			AddRow("orders", nil, 2),
	)

	rows, err := db.Query("SELECT * FROM information_schema.tables")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	ds, err := FromRows("Tables", rows, Remap{
		Columns:      map[string]string{"TABLE_NAME": "TABLE_NAME", "table_type": "TABLE_TYPE"},
		DropUnmapped: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"TABLE_NAME", "TABLE_TYPE"}, ds.FieldNames())
	assert.Equal(t, TypeString, ds.Fields[0].Type)
	assert.Equal(t, "users", ds.StringValue(0, "TABLE_NAME"))
	assert.Nil(t, ds.Records[1][1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemapKeepsUnmapped(t *testing.T) {
	r := Remap{Columns: map[string]string{"a": "A"}}
	name, ok := r.Target("b")
	assert.True(t, ok)
	assert.Equal(t, "b", name)

	name, ok = r.Target("A")
	assert.True(t, ok)
	assert.Equal(t, "A", name)
}

func TestRenderers(t *testing.T) {
	ds := sample(t)

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, ds, FormatTable))
		out := buf.String()
		assert.Contains(t, out, "Bob")
		assert.Contains(t, out, "NULL")
		assert.Contains(t, out, "(3 rows)")
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteTable(&buf, New("x")))
		assert.Equal(t, "(0 rows)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, ds, FormatJSON))
		assert.Contains(t, buf.String(), `"name": "Bob"`)
		assert.Contains(t, buf.String(), `"name": null`)
	})

	t.Run("csv", func(t *testing.T) {
		d := NewWithNames("q", "a", "b")
		require.NoError(t, d.AddRecord("x,y", nil))
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, d, FormatCSV))
		assert.Equal(t, "a,b\n\"x,y\",\n", buf.String())
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, ds, FormatMarkdown))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "| id | name | score |", lines[0])
		assert.Equal(t, "| --- | --- | --- |", lines[1])
		assert.Equal(t, "| 2 | Bob | 7.5 |", lines[2])
	})

	t.Run("yaml keeps field order", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, ds, FormatYAML))
		assert.True(t, strings.HasPrefix(buf.String(), "- id: 2\n  name: Bob\n  score: 7.5\n"), buf.String())
	})

	t.Run("xlsx needs file", func(t *testing.T) {
		var buf bytes.Buffer
		assert.ErrorIs(t, Render(&buf, ds, FormatXLSX), ErrNeedsFile)
	})
}

func TestXLSXRoundTrip(t *testing.T) {
	ds := sample(t)
	path := filepath.Join(t.TempDir(), "people.xlsx")
	require.NoError(t, WriteXLSX(path, "", ds))

	got, err := ReadXLSX(path, "people", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score"}, got.FieldNames())
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "Bob", got.StringValue(0, "name"))
	assert.Equal(t, "", got.StringValue(2, "name"))

	limited, err := ReadXLSX(path, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, limited.Len())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
