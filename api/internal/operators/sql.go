package operators

import (
	"context"
	"database/sql"
	"fmt"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

// OperatorRepo stores operators in a SQL table; position keeps the order.
type OperatorRepo struct {
	DB *sql.DB
	d  dialect
}

func newOperatorRepo(db *sql.DB, d dialect) *OperatorRepo { return &OperatorRepo{DB: db, d: d} }

// Migrate creates the tables; operators_saved gets its single row on the
// first Save.
func (r *OperatorRepo) Migrate(ctx context.Context) error {
	stmts := []string{`
create table if not exists operators (
  id       bigint primary key,
  position integer not null
)`, `
create table if not exists operators_saved (
  id integer primary key
)`}
	for _, q := range stmts {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate operators: %w", err)
		}
	}
	return nil
}

func (r *OperatorRepo) Load(ctx context.Context) ([]int64, bool, error) {
	var marks int
	if err := r.DB.QueryRowContext(ctx, `select count(*) from operators_saved`).Scan(&marks); err != nil {
		return nil, false, err
	}

	const q = `select id from operators order by position`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, false, err
		}
		ids = append(ids, id)
	}
	return ids, marks > 0, rows.Err()
}

// Save replaces the table contents in one transaction.
func (r *OperatorRepo) Save(ctx context.Context, ids []int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `delete from operators`); err != nil {
		return err
	}
	insert := `insert into operators (id, position) values ($1, $2)`
	if r.d == dialectSQLite {
		insert = `insert into operators (id, position) values (?, ?)`
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, insert, id, i); err != nil {
			return err
		}
	}
	// postgres и sqlite (3.24+) оба понимают on conflict
	if _, err := tx.ExecContext(ctx, `insert into operators_saved (id) values (1) on conflict do nothing`); err != nil {
		return err
	}
	return tx.Commit()
}

// Close leaves the *sql.DB open; it belongs to the caller.
func (r *OperatorRepo) Close() error { return nil }
