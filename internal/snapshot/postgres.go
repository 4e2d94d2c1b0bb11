package snapshot

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists ledger tables in PostgreSQL. Schema:
//
//	CREATE TABLE ledger_rows (
//	    table_name TEXT NOT NULL,
//	    row_key    TEXT NOT NULL,
//	    row_data   JSONB NOT NULL,
//	    PRIMARY KEY (table_name, row_key)
//	);
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed snapshot store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// SaveTable replaces the table's rows inside one database transaction so a
// reader never observes a half-written snapshot.
func (s *PostgresStore) SaveTable(ctx context.Context, table string, rows map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM ledger_rows WHERE table_name = $1`, table); err != nil {
		return err
	}
	for key, data := range rows {
		if _, err := tx.Exec(ctx, `INSERT INTO ledger_rows (table_name, row_key, row_data)
            VALUES ($1, $2, $3)`, table, key, data); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// LoadTable reads all rows of a table.
func (s *PostgresStore) LoadTable(ctx context.Context, table string) (map[string][]byte, error) {
	rows, err := s.db.Query(ctx, `SELECT row_key, row_data FROM ledger_rows WHERE table_name = $1`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, err
		}
		result[key] = data
	}
	return result, rows.Err()
}
