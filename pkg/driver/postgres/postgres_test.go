package postgres

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
	assert.Equal(t, "public", d.Dialect().DefaultSchema)
	assert.Equal(t, "$1", d.Dialect().FormatPlaceholder(1))
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN(driver.Config{
		Host:     "db.local",
		Port:     6543,
		Database: "sales",
		User:     "etl",
		Password: "p w'd",
		Options:  map[string]string{"sslmode": "require"},
		Params: map[string]any{
			"search_path":     []any{"sales", "public"},
			"connect_timeout": "5",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `host=db.local port=6543 sslmode=require dbname=sales user=etl password='p w\'d' connect_timeout=5 search_path=sales,public`, dsn)

	dsn, err = buildDSN(driver.Config{})
	require.NoError(t, err)
	assert.Equal(t, "host=localhost port=5432 sslmode=disable", dsn)

	_, err = buildDSN(driver.Config{Params: map[string]any{"connect_timeout": "soon"}})
	assert.Error(t, err)
}

func TestDialectQueries(t *testing.T) {
	q, ok := Dialect.Query("Indexes")
	require.True(t, ok)
	query, args := q(driver.Scope{Schema: "public", Object: "users"})
	assert.True(t, strings.Contains(query, "n.nspname = $1 AND t.relname = $2"), query)
	assert.Equal(t, []any{"public", "users"}, args)

	assert.Equal(t, "INTEGER", Dialect.NormalizeType("int4"))
	assert.Equal(t, "VARCHAR(40)", Dialect.NormalizeType("character varying(40)"))
}
