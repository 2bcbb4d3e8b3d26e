// Package repository implements session row persistence.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	sessionDomain "github.com/denis-papin/doka.one/internal/session/domain"
)

// PostgreSQLSessionRepository implements Session persistence for PostgreSQL databases.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new session row.
func (p *PostgreSQLSessionRepository) Create(ctx context.Context, session *sessionDomain.Session) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO sessions (id, customer_code, user_id, opened_at, closed_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.CustomerCode,
		session.UserID,
		session.OpenedAt,
		session.ClosedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}

	return nil
}

// GetByID retrieves a session row by its id.
func (p *PostgreSQLSessionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*sessionDomain.Session, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, customer_code, user_id, opened_at, closed_at
			  FROM sessions
			  WHERE id = $1
			  LIMIT 1`

	var session sessionDomain.Session
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.CustomerCode,
		&session.UserID,
		&session.OpenedAt,
		&session.ClosedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sessionDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session by id")
	}

	return &session, nil
}

// Close stamps the session's closed_at. Closing an already closed session is a no-op.
func (p *PostgreSQLSessionRepository) Close(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sessions
			  SET closed_at = $1
			  WHERE id = $2 AND closed_at IS NULL`

	_, err := querier.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to close session")
	}

	return nil
}

// DeleteByCustomer removes every session row belonging to a customer.
func (p *PostgreSQLSessionRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sessions WHERE customer_code = $1`

	_, err := querier.ExecContext(ctx, query, customerCode)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete sessions by customer")
	}

	return nil
}

// NewPostgreSQLSessionRepository creates a new PostgreSQL Session repository instance.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}
