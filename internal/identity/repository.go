package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/subledger/subledger/internal/chain"
)

// Repository persists signer credentials.
type Repository interface {
	Create(ctx context.Context, signer Signer) error
	FindByAccount(ctx context.Context, account chain.Name) (Signer, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed signer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new signer.
func (r *PostgresRepository) Create(ctx context.Context, signer Signer) error {
	signerID, err := uuid.Parse(signer.ID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `INSERT INTO signers (id, account, secret_hash, created_at)
        VALUES ($1, $2, $3, $4) ON CONFLICT (account) DO NOTHING`,
		signerID, string(signer.Account), signer.SecretHash, signer.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSignerExists
	}
	return nil
}

// FindByAccount fetches a signer by chain account name.
func (r *PostgresRepository) FindByAccount(ctx context.Context, account chain.Name) (Signer, error) {
	row := r.db.QueryRow(ctx, `SELECT id, account, secret_hash, created_at
        FROM signers WHERE account = $1`, string(account))

	var (
		id        uuid.UUID
		accName   string
		createdAt time.Time
		signer    Signer
	)
	if err := row.Scan(&id, &accName, &signer.SecretHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Signer{}, ErrSignerNotFound
		}
		return Signer{}, err
	}
	signer.ID = id.String()
	signer.Account = chain.Name(accName)
	signer.CreatedAt = createdAt.UTC()
	return signer, nil
}
