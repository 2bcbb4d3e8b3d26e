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

// MySQLUserRepository implements User persistence for MySQL databases.
// Roles are stored as a JSON array in a text column.
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new user into the MySQL database.
func (m *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO users (id, customer_code, name, email, password, roles, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	roles, err := json.Marshal(user.Roles)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user roles")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLUserRepository) GetByEmail(
	ctx context.Context,
	customerCode string,
	email string,
) (*domain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, customer_code, name, email, password, roles, created_at, updated_at
			  FROM users
			  WHERE customer_code = ? AND email = ?
			  LIMIT 1`

	return m.scanUser(querier.QueryRowContext(ctx, query, customerCode, email))
}

// GetByID retrieves a user by its unique identifier.
func (m *MySQLUserRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, customer_code, name, email, password, roles, created_at, updated_at
			  FROM users
			  WHERE id = ?
			  LIMIT 1`

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	return m.scanUser(querier.QueryRowContext(ctx, query, binID))
}

// DeleteByCustomer removes every user belonging to a customer.
func (m *MySQLUserRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM users WHERE customer_code = ?`

	_, err := querier.ExecContext(ctx, query, customerCode)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete users by customer")
	}

	return nil
}

func (m *MySQLUserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var id []byte
	var roles string

	err := row.Scan(
		&id,
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

	if err := user.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	if err := json.Unmarshal([]byte(roles), &user.Roles); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user roles")
	}

	return &user, nil
}

// NewMySQLUserRepository creates a new MySQL User repository instance.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
