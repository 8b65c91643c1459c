package frame

// Database driver imports for side-effect registration with database/sql.
// These drivers back readSQL("sqlite"|"mysql"|"postgres", dsn, query).

import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver (cgo-free)
)
