package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolsverse/foundation/pkg/driver"
)

func TestDriver_Open(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ""
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "test.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := tt.setupPath(t)

			db, err := New(nil).Open(ctx, driver.Config{Path: path})
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			var one int
			require.NoError(t, db.QueryRowContext(ctx, "SELECT 1").Scan(&one))
			assert.Equal(t, 1, one)

			if tt.verify != nil {
				tt.verify(t, path)
			}
		})
	}
}

func TestDriver_OpenWithSettings(t *testing.T) {
	ctx := context.Background()
	db, err := New(nil).Open(ctx, driver.Config{
		Params: map[string]any{"settings": map[string]any{"threads": "2"}},
	})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var threads int64
	require.NoError(t, db.QueryRowContext(ctx, "SELECT current_setting('threads')").Scan(&threads))
	assert.Equal(t, int64(2), threads)
}

func TestSetupStatements(t *testing.T) {
	stmts := setupStatements(Params{
		Extensions: []string{"json", " ", "httpfs"},
		Settings:   map[string]string{"threads": "4", "memory_limit": "1GB"},
	})
	assert.Equal(t, []string{
		"INSTALL json", "LOAD json",
		"INSTALL httpfs", "LOAD httpfs",
		"SET GLOBAL memory_limit = '1GB'",
		"SET GLOBAL threads = '4'",
	}, stmts)

	assert.Empty(t, setupStatements(Params{}))
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "main", Dialect.DefaultSchema)
	assert.False(t, Dialect.Supports("Triggers"))
	assert.Equal(t, "VARCHAR(10)", Dialect.NormalizeType("text(10)"))

	q, ok := Dialect.Query("Sequences")
	require.True(t, ok)
	query, args := q(driver.Scope{Schema: "main"})
	assert.Contains(t, query, "duckdb_sequences()")
	assert.Equal(t, []any{"main"}, args)
}
