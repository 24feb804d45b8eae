//go:build cgo_sqlite

package site

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens the stats database with the cgo SQLite driver.
func OpenDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
