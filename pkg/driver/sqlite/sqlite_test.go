package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolsverse/foundation/pkg/driver"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := New(nil).Open(ctx, driver.Config{
		Params: map[string]any{"pragmas": map[string]any{"foreign_keys": "on"}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `
		CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			customer_id INTEGER REFERENCES customers(id),
			amount REAL DEFAULT 0
		);
		CREATE INDEX idx_orders_customer ON orders(customer_id);
		CREATE VIEW big_orders AS SELECT * FROM orders WHERE amount > 100;
		CREATE TRIGGER trg_orders AFTER INSERT ON orders BEGIN SELECT 1; END;
	`)
	require.NoError(t, err)
	return db
}

func queryStrings(t *testing.T, db *sql.DB, metadataType string, scope driver.Scope, column int) []string {
	t.Helper()
	q, ok := Dialect.Query(metadataType)
	require.True(t, ok, metadataType)
	query, args := q(scope)

	rows, err := db.QueryContext(context.Background(), query, args...)
	require.NoError(t, err, query)
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out []string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, toString(vals[column]))
	}
	require.NoError(t, rows.Err())
	return out
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return ""
	}
}

func TestOpen_ForeignKeysPragma(t *testing.T) {
	db := openTestDB(t)
	var on int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)
}

func TestDialectQueries(t *testing.T) {
	db := openTestDB(t)

	tests := []struct {
		name   string
		typ    string
		scope  driver.Scope
		column int
		want   []string
	}{
		{"schemas", "Schemas", driver.Scope{}, 1, []string{"main"}},
		{"tables", "Tables", driver.Scope{}, 2, []string{"customers", "orders"}},
		{"views", "Views", driver.Scope{}, 2, []string{"big_orders"}},
		{"columns", "Columns", driver.Scope{Object: "orders"}, 2, []string{"id", "customer_id", "amount"}},
		{"primary key", "Primary Key", driver.Scope{Object: "customers"}, 2, []string{"id"}},
		{"foreign keys", "Foreign Keys", driver.Scope{Object: "orders"}, 5, []string{"customers"}},
		{"exported keys", "Exported Keys", driver.Scope{Object: "customers"}, 2, []string{"orders"}},
		{"indexes", "Indexes", driver.Scope{Object: "orders"}, 2, []string{"idx_orders_customer"}},
		{"triggers", "Triggers", driver.Scope{}, 1, []string{"trg_orders"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queryStrings(t, db, tt.typ, tt.scope, tt.column))
		})
	}
}

func TestDialect_Unsupported(t *testing.T) {
	for _, typ := range []string{"Sequences", "Procedures", "Functions"} {
		assert.False(t, Dialect.Supports(typ), typ)
	}
	assert.True(t, Dialect.Supports("Tables"))
}

func TestDialectQueries_InternalTablePrefix(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`
		CREATE TABLE sqlitex_notes (id INTEGER PRIMARY KEY AUTOINCREMENT, body TEXT);
		INSERT INTO sqlitex_notes (body) VALUES ('n');
	`)
	require.NoError(t, err)

	tables := queryStrings(t, db, "Tables", driver.Scope{}, 2)
	assert.Equal(t, []string{"customers", "orders", "sqlitex_notes"}, tables)
	assert.NotContains(t, tables, "sqlite_sequence")

	cols := queryStrings(t, db, "Columns", driver.Scope{Object: "sqlitex_notes"}, 2)
	assert.Equal(t, []string{"id", "body"}, cols)

	assert.Empty(t, queryStrings(t, db, "Columns", driver.Scope{Object: "sqlite_sequence"}, 2))
}
