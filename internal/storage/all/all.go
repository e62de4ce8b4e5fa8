// Package all registers every storage backend with the factory. Binaries
// blank-import it; the config decides which backend actually runs.
package all

import (
	_ "dochicar/internal/storage/mysql"
	_ "dochicar/internal/storage/postgres"
	_ "dochicar/internal/storage/sqlite"
)
