package db

import "database/sql"

// DB wraps the shared *sql.DB handle so packages depend on one type.
type DB struct {
	*sql.DB
}
