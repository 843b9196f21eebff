/*
Package sqlite3adapter provides an implementation of the
Adapter interface in the sqldataset package that works
over an SQLite3 database file.
*/
package sqlite3adapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pbanos/treekernel/dataset/sqldataset"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

/*
New takes a path to an SQLite3 database file and a maximum number of
open connections (0 meaning no limit) and returns an Adapter that works
on the file's database or an error if it fails to open as an sqlite3
database.
*/
func New(ctx context.Context, path string, maxConns int) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening SQLite3 database %s: %v", path, err)
	}
	return sqldataset.NewAdapter(db, sqldataset.QuestionMark), nil
}
