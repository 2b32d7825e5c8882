package mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolsverse/foundation/pkg/driver"
)

func TestRegistered(t *testing.T) {
	assert.True(t, driver.IsRegistered(Name))
	d, err := driver.New(driver.Config{Type: Name}, nil)
	require.NoError(t, err)
	assert.Equal(t, "?", d.Dialect().FormatPlaceholder(3))
	assert.False(t, d.Dialect().Supports("Sequences"))
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN(driver.Config{
		Host:     "db",
		Database: "shop",
		User:     "root",
		Password: "secret",
		Params: map[string]any{
			"attributes": map[string]any{"charset": "utf8mb4"},
			"timeout":    "5s",
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "root:secret@tcp(db:3306)/shop?"), dsn)
	for _, param := range []string{"parseTime=true", "timeout=5s", "charset=utf8mb4"} {
		assert.Contains(t, dsn, param)
	}

	dsn, err = buildDSN(driver.Config{Port: 3307})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "tcp(localhost:3307)/?"), dsn)
}

func TestForeignKeyQueries(t *testing.T) {
	q, ok := Dialect.Query("Exported Keys")
	require.True(t, ok)
	query, args := q(driver.Scope{Schema: "shop", Object: "customers"})
	assert.Contains(t, query, "referenced_table_schema = ? AND referenced_table_name = ?")
	assert.Equal(t, []any{"shop", "customers"}, args)

	q, _ = Dialect.Query("Foreign Keys")
	query, _ = q(driver.Scope{Object: "orders"})
	assert.Contains(t, query, "AND table_name = ?")
}
