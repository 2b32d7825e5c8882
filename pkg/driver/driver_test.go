package driver

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolsverse/foundation/pkg/sqlutil"
)

type fakeDriver struct{}

func (fakeDriver) Name() string { return "fake" }

func (fakeDriver) Open(_ context.Context, _ Config) (*sql.DB, error) { return nil, ErrNotConnected }

func (fakeDriver) Dialect() *Dialect { return Generic }

func TestUnknownDriverError_Error(t *testing.T) {
	err := &UnknownDriverError{
		Type:      "fake_db",
		Available: []string{"mysql", "postgres"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db")
	assert.Contains(t, msg, "[mysql postgres]")
	assert.Contains(t, msg, "foundation.yaml")
}

func TestRegistry(t *testing.T) {
	Register("test_driver_internal", func(_ *slog.Logger) Driver { return fakeDriver{} })

	assert.True(t, IsRegistered("test_driver_internal"))
	assert.Contains(t, List(), "test_driver_internal")

	factory, ok := Get("test_driver_internal")
	require.True(t, ok)
	assert.Equal(t, "fake", factory(nil).Name())

	d, err := New(Config{Type: "test_driver_internal"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Generic, d.Dialect())

	_, _, err = Open(context.Background(), Config{Type: "test_driver_internal"}, nil)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "driver type not specified", err.Error())

	_, err = New(Config{Type: "nope"}, nil)
	var unknown *UnknownDriverError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Type)
}

func TestDecodeParams(t *testing.T) {
	type params struct {
		Pragmas map[string]string `mapstructure:"pragmas"`
		Timeout int               `mapstructure:"timeout"`
		Verbose bool              `mapstructure:"verbose"`
	}

	var p params
	require.NoError(t, DecodeParams(map[string]any{
		"pragmas": map[string]any{"foreign_keys": "on"},
		"timeout": "30",
		"verbose": 1,
	}, &p))
	assert.Equal(t, params{Pragmas: map[string]string{"foreign_keys": "on"}, Timeout: 30, Verbose: true}, p)

	var empty params
	require.NoError(t, DecodeParams(nil, &empty))
	assert.Equal(t, params{}, empty)

	assert.Error(t, DecodeParams(map[string]any{"timeout": "soon"}, &p))
}

func TestDialect(t *testing.T) {
	d := &Dialect{
		Name:        "test",
		Placeholder: sqlutil.PlaceholderDollar,
		Quote:       "[",
		TypeAliases: map[string]string{"INT4": "INTEGER", "VARCHAR2": "VARCHAR"},
		Queries: map[string]QueryFunc{
			"Tables": func(s Scope) (string, []any) { return "SELECT 1", []any{s.Schema} },
		},
		Unsupported: []string{"Sequences"},
	}

	assert.Equal(t, "$2", d.FormatPlaceholder(2))
	assert.Equal(t, "[order details]", d.QuoteIdentifier("order details"))
	assert.Equal(t, "orders", d.QuoteIdentifier("orders"))
	assert.Equal(t, "INTEGER", d.NormalizeType("int4"))
	assert.Equal(t, "VARCHAR(20)", d.NormalizeType("varchar2(20)"))
	assert.Equal(t, "TEXT", d.NormalizeType("text"))

	q, ok := d.Query("Tables")
	require.True(t, ok)
	query, args := q(Scope{Schema: "s"})
	assert.Equal(t, "SELECT 1", query)
	assert.Equal(t, []any{"s"}, args)

	assert.False(t, d.Supports("sequences"))
	assert.True(t, d.Supports("Tables"))
}

func TestConfigOption(t *testing.T) {
	c := Config{Options: map[string]string{"sslmode": "require", "empty": ""}}
	assert.Equal(t, "require", c.Option("sslmode", "disable"))
	assert.Equal(t, "x", c.Option("empty", "x"))
	assert.Equal(t, "y", c.Option("missing", "y"))
}
