// Package repository implements persistence for customers and their users.
package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/denis-papin/doka.one/internal/customer/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

// PostgreSQLCustomerRepository implements Customer persistence for PostgreSQL databases.
type PostgreSQLCustomerRepository struct {
	db *sql.DB
}

// Create inserts a new customer into the PostgreSQL database.
func (p *PostgreSQLCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO customers (id, code, name, contact_email, created_at, deleted_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		customer.ID,
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
func (p *PostgreSQLCustomerRepository) GetByCode(
	ctx context.Context,
	code string,
) (*domain.Customer, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, code, name, contact_email, created_at, deleted_at
			  FROM customers
			  WHERE code = $1 AND deleted_at IS NULL
			  LIMIT 1`

	var customer domain.Customer
	err := querier.QueryRowContext(ctx, query, code).Scan(
		&customer.ID,
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

	return &customer, nil
}

// Delete removes a customer row. Dependent rows (users, items, files) are
// purged by their own repositories as part of the deletion cascade.
func (p *PostgreSQLCustomerRepository) Delete(ctx context.Context, code string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM customers WHERE code = $1`

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

// isUniqueViolation checks if the error is a unique constraint violation.
// Matches both PostgreSQL and MySQL error messages.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "duplicate entry") ||
		strings.Contains(errMsg, "1062")
}

// NewPostgreSQLCustomerRepository creates a new PostgreSQL Customer repository instance.
func NewPostgreSQLCustomerRepository(db *sql.DB) *PostgreSQLCustomerRepository {
	return &PostgreSQLCustomerRepository{db: db}
}
