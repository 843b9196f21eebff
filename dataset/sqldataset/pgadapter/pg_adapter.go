/*
Package pgadapter provides an implementation of the
Adapter interface in the sqldataset package that works
over a PostgreSQL database.
*/
package pgadapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pbanos/treekernel/dataset/sqldataset"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
)

/*
New takes a PostgreSQL database connection URL and returns
an Adapter that works on the database or an error if it fails
to connect to it.
*/
func New(ctx context.Context, url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to PostgreSQL: %v", err)
	}
	return sqldataset.NewAdapter(db, sqldataset.Dollar), nil
}
