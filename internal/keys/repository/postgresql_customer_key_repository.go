// Package repository implements persistence for customer encryption keys.
// Repositories support both PostgreSQL and MySQL; only the encrypted form of a
// key is ever written, and revocation keeps a tombstone row or erases the key
// material depending on the configured retention policy.
package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
)

// PostgreSQLCustomerKeyRepository implements CustomerKey persistence for PostgreSQL databases.
type PostgreSQLCustomerKeyRepository struct {
	db *sql.DB
}

// Create inserts a new customer key into the PostgreSQL database.
// The plaintext Key field is never persisted.
func (p *PostgreSQLCustomerKeyRepository) Create(
	ctx context.Context,
	customerKey *keysDomain.CustomerKey,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO customer_keys (id, customer_code, algorithm, encrypted_key, nonce, created_at, revoked_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		customerKey.ID,
		customerKey.CustomerCode,
		customerKey.Algorithm,
		customerKey.EncryptedKey,
		customerKey.Nonce,
		customerKey.CreatedAt,
		customerKey.RevokedAt,
	)
	if err != nil {
		// A partial unique index on (customer_code) WHERE revoked_at IS NULL
		// guards against two active keys for the same customer.
		if isPostgreSQLUniqueViolation(err) {
			return keysDomain.ErrDuplicateCustomer
		}
		return apperrors.Wrap(err, "failed to create customer key")
	}

	return nil
}

// GetLatestByCode retrieves the most recent key row for a customer code,
// revoked or not. Callers decide how to treat a revoked row.
func (p *PostgreSQLCustomerKeyRepository) GetLatestByCode(
	ctx context.Context,
	customerCode string,
) (*keysDomain.CustomerKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, algorithm, encrypted_key, nonce, created_at, revoked_at
			  FROM customer_keys
			  WHERE customer_code = $1
			  ORDER BY created_at DESC
			  LIMIT 1`

	var customerKey keysDomain.CustomerKey
	err := querier.QueryRowContext(ctx, query, customerCode).Scan(
		&customerKey.ID,
		&customerKey.CustomerCode,
		&customerKey.Algorithm,
		&customerKey.EncryptedKey,
		&customerKey.Nonce,
		&customerKey.CreatedAt,
		&customerKey.RevokedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get customer key by code")
	}

	return &customerKey, nil
}

// Revoke marks the active key for a customer code as revoked. With the erase
// retention policy the encrypted key material is overwritten as well, leaving
// only the tombstone metadata.
func (p *PostgreSQLCustomerKeyRepository) Revoke(
	ctx context.Context,
	customerCode string,
	retention keysDomain.RetentionPolicy,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE customer_keys
			  SET revoked_at = $1
			  WHERE customer_code = $2 AND revoked_at IS NULL`
	if retention == keysDomain.RetentionErase {
		query = `UPDATE customer_keys
				 SET revoked_at = $1, encrypted_key = ''::bytea, nonce = ''::bytea
				 WHERE customer_code = $2 AND revoked_at IS NULL`
	}

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), customerCode)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke customer key")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLCustomerKeyRepository creates a new PostgreSQL CustomerKey repository instance.
func NewPostgreSQLCustomerKeyRepository(db *sql.DB) *PostgreSQLCustomerKeyRepository {
	return &PostgreSQLCustomerKeyRepository{db: db}
}
