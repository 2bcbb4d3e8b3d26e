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

// MySQLCustomerKeyRepository implements CustomerKey persistence for MySQL databases.
type MySQLCustomerKeyRepository struct {
	db *sql.DB
}

// Create inserts a new customer key into the MySQL database.
// The plaintext Key field is never persisted.
func (m *MySQLCustomerKeyRepository) Create(
	ctx context.Context,
	customerKey *keysDomain.CustomerKey,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO customer_keys (id, customer_code, algorithm, encrypted_key, nonce, created_at, revoked_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := customerKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal customer key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		customerKey.CustomerCode,
		customerKey.Algorithm,
		customerKey.EncryptedKey,
		customerKey.Nonce,
		customerKey.CreatedAt,
		customerKey.RevokedAt,
	)
	if err != nil {
		// MySQL has no partial unique indexes; active_code is a generated
		// column (customer_code when revoked_at is null) with a unique index.
		if isMySQLUniqueViolation(err) {
			return keysDomain.ErrDuplicateCustomer
		}
		return apperrors.Wrap(err, "failed to create customer key")
	}

	return nil
}

// GetLatestByCode retrieves the most recent key row for a customer code,
// revoked or not. Callers decide how to treat a revoked row.
func (m *MySQLCustomerKeyRepository) GetLatestByCode(
	ctx context.Context,
	customerCode string,
) (*keysDomain.CustomerKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, customer_code, algorithm, encrypted_key, nonce, created_at, revoked_at
			  FROM customer_keys
			  WHERE customer_code = ?
			  ORDER BY created_at DESC
			  LIMIT 1`

	var customerKey keysDomain.CustomerKey
	var id []byte

	err := querier.QueryRowContext(ctx, query, customerCode).Scan(
		&id,
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

	if err := customerKey.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal customer key id")
	}

	return &customerKey, nil
}

// Revoke marks the active key for a customer code as revoked. With the erase
// retention policy the encrypted key material is overwritten as well, leaving
// only the tombstone metadata.
func (m *MySQLCustomerKeyRepository) Revoke(
	ctx context.Context,
	customerCode string,
	retention keysDomain.RetentionPolicy,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE customer_keys
			  SET revoked_at = ?
			  WHERE customer_code = ? AND revoked_at IS NULL`
	if retention == keysDomain.RetentionErase {
		query = `UPDATE customer_keys
				 SET revoked_at = ?, encrypted_key = '', nonce = ''
				 WHERE customer_code = ? AND revoked_at IS NULL`
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

// NewMySQLCustomerKeyRepository creates a new MySQL CustomerKey repository instance.
func NewMySQLCustomerKeyRepository(db *sql.DB) *MySQLCustomerKeyRepository {
	return &MySQLCustomerKeyRepository{db: db}
}
