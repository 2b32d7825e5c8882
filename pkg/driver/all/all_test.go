package all

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/toolsverse/foundation/pkg/driver"
)

func TestBundledDriversRegistered(t *testing.T) {
	for _, name := range []string{"duckdb", "mssql", "mysql", "postgres", "sqlite"} {
		assert.True(t, driver.IsRegistered(name), name)
	}
}
