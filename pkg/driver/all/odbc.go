//go:build odbc

package all

import _ "github.com/toolsverse/foundation/pkg/driver/odbc"
