package repository

import (
	"context"
	"database/sql"

	"github.com/denis-papin/doka.one/internal/customer/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

// MySQLCustomerRepository implements Customer persistence for MySQL databases.
type MySQLCustomerRepository struct {
	db *sql.DB
}

// Create inserts a new customer into the MySQL database.
func (m *MySQLCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO customers (id, code, name, contact_email, created_at, deleted_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := customer.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal customer id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		customer.Code,
		customer.Name,
		customer.ContactEmail,
		customer.CreatedAt,
		customer.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCustomerAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create customer")
	}

	return nil
}

// GetByCode retrieves a customer by its code, excluding deleted customers.
func (m *MySQLCustomerRepository) GetByCode(
	ctx context.Context,
	code string,
) (*domain.Customer, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, code, name, contact_email, created_at, deleted_at
			  FROM customers
			  WHERE code = ? AND deleted_at IS NULL
			  LIMIT 1`

	var customer domain.Customer
	var id []byte

	err := querier.QueryRowContext(ctx, query, code).Scan(
		&id,
		&customer.Code,
		&customer.Name,
		&customer.ContactEmail,
		&customer.CreatedAt,
		&customer.DeletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get customer by code")
	}

	if err := customer.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal customer id")
	}

	return &customer, nil
}

// Delete removes a customer row. Dependent rows (users, items, files) are
// purged by their own repositories as part of the deletion cascade.
func (m *MySQLCustomerRepository) Delete(ctx context.Context, code string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM customers WHERE code = ?`

	result, err := querier.ExecContext(ctx, query, code)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete customer")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}

	return nil
}

// NewMySQLCustomerRepository creates a new MySQL Customer repository instance.
func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{db: db}
}
