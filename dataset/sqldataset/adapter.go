package sqldataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pbanos/treekernel/dataset"
	"github.com/pbanos/treekernel/feature"
)

const (
	instancesTableCreateStmt = `CREATE TABLE IF NOT EXISTS instances (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		position INTEGER NOT NULL)`
	treesTableCreateStmt = `CREATE TABLE IF NOT EXISTS trees (
		instance_id TEXT NOT NULL REFERENCES instances(id),
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		tree TEXT NOT NULL,
		PRIMARY KEY (instance_id, position))`
	listInstancesStmt = `SELECT i.id, i.label, t.name, t.tree
		FROM instances i LEFT JOIN trees t ON t.instance_id = i.id
		ORDER BY i.position, t.position`
)

/*
Adapter is an interface providing the methods
needed to implement a Dataset with a database backend.
*/
type Adapter interface {
	CreateTables(context.Context) error
	AddInstances(context.Context, []dataset.Instance) (int, error)
	ListInstances(context.Context) ([]dataset.Instance, error)
	CountInstances(context.Context) (int, error)
	Close() error
}

/*
Placeholder is a function returning the bind parameter
marker for the n-th (1-based) parameter of a statement
in an SQL dialect.
*/
type Placeholder func(n int) string

// QuestionMark is the Placeholder of SQLite3 and MySQL
func QuestionMark(int) string {
	return "?"
}

// Dollar is the Placeholder of PostgreSQL
func Dollar(n int) string {
	return fmt.Sprintf("$%d", n)
}

type adapter struct {
	db *sql.DB
	ph Placeholder
}

/*
NewAdapter takes an open database and the Placeholder for its
dialect and returns an Adapter that works on the database.
*/
func NewAdapter(db *sql.DB, ph Placeholder) Adapter {
	return &adapter{db, ph}
}

func (a *adapter) CreateTables(ctx context.Context) error {
	for _, stmt := range []string{instancesTableCreateStmt, treesTableCreateStmt} {
		_, err := a.db.ExecContext(ctx, stmt)
		if err != nil {
			return fmt.Errorf("ensuring dataset tables exist: %v", err)
		}
	}
	return nil
}

func (a *adapter) AddInstances(ctx context.Context, instances []dataset.Instance) (int, error) {
	if len(instances) == 0 {
		return 0, nil
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction to add instances: %v", err)
	}
	defer tx.Rollback()
	var position int
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM instances").Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("querying last instance position: %v", err)
	}
	insertInstance, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO instances (id, label, position) VALUES (%s, %s, %s)", a.ph(1), a.ph(2), a.ph(3)))
	if err != nil {
		return 0, fmt.Errorf("preparing instance insert statement: %v", err)
	}
	defer insertInstance.Close()
	insertTree, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO trees (instance_id, position, name, tree) VALUES (%s, %s, %s, %s)", a.ph(1), a.ph(2), a.ph(3), a.ph(4)))
	if err != nil {
		return 0, fmt.Errorf("preparing tree insert statement: %v", err)
	}
	defer insertTree.Close()
	for i, in := range instances {
		_, err = insertInstance.ExecContext(ctx, in.ID, in.Label, position+i)
		if err != nil {
			return 0, fmt.Errorf("inserting instance %q: %v", in.ID, err)
		}
		for j, f := range in.Vector.Fields() {
			_, err = insertTree.ExecContext(ctx, in.ID, j, f.Name, f.Tree)
			if err != nil {
				return 0, fmt.Errorf("inserting field %q of instance %q: %v", f.Name, in.ID, err)
			}
		}
	}
	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("committing instances: %v", err)
	}
	return len(instances), nil
}

func (a *adapter) ListInstances(ctx context.Context) ([]dataset.Instance, error) {
	rows, err := a.db.QueryContext(ctx, listInstancesStmt)
	if err != nil {
		return nil, fmt.Errorf("querying instances: %v", err)
	}
	defer rows.Close()
	var instances []dataset.Instance
	for rows.Next() {
		var id, label string
		var name, tree sql.NullString
		err = rows.Scan(&id, &label, &name, &tree)
		if err != nil {
			return nil, fmt.Errorf("scanning instance row: %v", err)
		}
		if len(instances) == 0 || instances[len(instances)-1].ID != id {
			instances = append(instances, dataset.Instance{ID: id, Label: label, Vector: &feature.TreeFeatureVector{}})
		}
		if name.Valid {
			instances[len(instances)-1].Vector.Add(name.String, tree.String)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating over instances: %v", err)
	}
	return instances, nil
}

func (a *adapter) CountInstances(ctx context.Context) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM instances").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting instances: %v", err)
	}
	return count, nil
}

func (a *adapter) Close() error {
	return a.db.Close()
}
