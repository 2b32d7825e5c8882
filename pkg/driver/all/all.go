// Package all registers every bundled driver. Import it with a blank
// identifier:
//
//	import _ "github.com/toolsverse/foundation/pkg/driver/all"
//
// The ODBC driver is registered only when built with the odbc tag.
package all

import (
	_ "github.com/toolsverse/foundation/pkg/driver/duckdb"
	_ "github.com/toolsverse/foundation/pkg/driver/mssql"
	_ "github.com/toolsverse/foundation/pkg/driver/mysql"
	_ "github.com/toolsverse/foundation/pkg/driver/postgres"
	_ "github.com/toolsverse/foundation/pkg/driver/sqlite"
)
