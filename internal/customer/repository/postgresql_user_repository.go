package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/customer/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

// PostgreSQLUserRepository implements User persistence for PostgreSQL databases.
// Roles are stored as a JSON array in a text column.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new user into the PostgreSQL database.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (id, customer_code, name, email, password, roles, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user roles")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.CustomerCode,
		user.Name,
		user.Email,
		user.Password,
		string(roles),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}

	return nil
}

// GetByEmail retrieves a user by customer code and email.
// Lookups are always tenant-scoped; there is no cross-customer email lookup.
func (p *PostgreSQLUserRepository) GetByEmail(
	ctx context.Context,
	customerCode string,
	email string,
) (*domain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, name, email, password, roles, created_at, updated_at
			  FROM users
			  WHERE customer_code = $1 AND email = $2
			  LIMIT 1`

	return p.scanUser(querier.QueryRowContext(ctx, query, customerCode, email))
}

// GetByID retrieves a user by its unique identifier.
func (p *PostgreSQLUserRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, name, email, password, roles, created_at, updated_at
			  FROM users
			  WHERE id = $1
			  LIMIT 1`

	return p.scanUser(querier.QueryRowContext(ctx, query, id))
}

// DeleteByCustomer removes every user belonging to a customer.
func (p *PostgreSQLUserRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM users WHERE customer_code = $1`

	_, err := querier.ExecContext(ctx, query, customerCode)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete users by customer")
	}

	return nil
}

func (p *PostgreSQLUserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var roles string

	err := row.Scan(
		&user.ID,
		&user.CustomerCode,
		&user.Name,
		&user.Email,
		&user.Password,
		&roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	if err := json.Unmarshal([]byte(roles), &user.Roles); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user roles")
	}

	return &user, nil
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository instance.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}
