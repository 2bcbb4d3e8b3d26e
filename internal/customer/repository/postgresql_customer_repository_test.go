package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denis-papin/doka.one/internal/customer/domain"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

func newCustomer() *domain.Customer {
	return &domain.Customer{
		ID:           uuid.Must(uuid.NewV7()),
		Code:         "acme",
		Name:         "Acme Corp",
		ContactEmail: "admin@acme.example",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestPostgreSQLCustomerRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLCustomerRepository(db)
	customer := newCustomer()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO customers`)).
		WithArgs(
			customer.ID,
			customer.Code,
			customer.Name,
			customer.ContactEmail,
			customer.CreatedAt,
			nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), customer)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCustomerRepository_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLCustomerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO customers`)).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "customers_code_key"`))

	err = repo.Create(context.Background(), newCustomer())
	assert.ErrorIs(t, err, domain.ErrCustomerAlreadyExists)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestPostgreSQLCustomerRepository_GetByCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLCustomerRepository(db)
	customer := newCustomer()

	rows := sqlmock.NewRows([]string{"id", "code", "name", "contact_email", "created_at", "deleted_at"}).
		AddRow(customer.ID, customer.Code, customer.Name, customer.ContactEmail, customer.CreatedAt, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, code, name, contact_email, created_at, deleted_at`)).
		WithArgs("acme").
		WillReturnRows(rows)

	got, err := repo.GetByCode(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.False(t, got.Deleted())
}

func TestPostgreSQLCustomerRepository_GetByCode_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLCustomerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, code, name, contact_email, created_at, deleted_at`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByCode(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLCustomerRepository_Delete(t *testing.T) {
	t.Run("deletes row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLCustomerRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM customers WHERE code = $1`)).
			WithArgs("acme").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Delete(context.Background(), "acme")
		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		repo := NewPostgreSQLCustomerRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM customers WHERE code = $1`)).
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Delete(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}

func TestPostgreSQLUserRepository_CreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLUserRepository(db)
	user := &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		CustomerCode: "acme",
		Name:         "Jane Admin",
		Email:        "jane@acme.example",
		Password:     "$argon2id$v=19$m=65536,t=2,p=1$c2FsdA$aGFzaA",
		Roles:        []string{"admin"},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(
			user.ID,
			user.CustomerCode,
			user.Name,
			user.Email,
			user.Password,
			`["admin"]`,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))

	rows := sqlmock.NewRows([]string{
		"id", "customer_code", "name", "email", "password", "roles", "created_at", "updated_at",
	}).AddRow(
		user.ID, user.CustomerCode, user.Name, user.Email, user.Password,
		`["admin"]`, user.CreatedAt, user.UpdatedAt,
	)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer_code, name, email, password, roles, created_at, updated_at`)).
		WithArgs("acme", "jane@acme.example").
		WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "acme", "jane@acme.example")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, []string{"admin"}, got.Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLUserRepository_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_customer_code_email_key"`))

	err = repo.Create(context.Background(), &domain.User{ID: uuid.Must(uuid.NewV7())})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestPostgreSQLUserRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer_code, name, email, password, roles, created_at, updated_at`)).
		WithArgs("acme", "ghost@acme.example").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByEmail(context.Background(), "acme", "ghost@acme.example")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPostgreSQLUserRepository_DeleteByCustomer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE customer_code = $1`)).
		WithArgs("acme").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err = repo.DeleteByCustomer(context.Background(), "acme")
	require.NoError(t, err)
}
