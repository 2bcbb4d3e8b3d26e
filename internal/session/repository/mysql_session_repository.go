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

// MySQLSessionRepository implements Session persistence for MySQL databases.
type MySQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new session row.
func (m *MySQLSessionRepository) Create(ctx context.Context, session *sessionDomain.Session) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO sessions (id, customer_code, user_id, opened_at, closed_at)
			  VALUES (?, ?, ?, ?, ?)`

	id, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}

	userID, err := session.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		session.CustomerCode,
		userID,
		session.OpenedAt,
		session.ClosedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}

	return nil
}

// GetByID retrieves a session row by its id.
func (m *MySQLSessionRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*sessionDomain.Session, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, customer_code, user_id, opened_at, closed_at
			  FROM sessions
			  WHERE id = ?
			  LIMIT 1`

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal session id")
	}

	var session sessionDomain.Session
	var rowID, userID []byte

	err = querier.QueryRowContext(ctx, query, binID).Scan(
		&rowID,
		&session.CustomerCode,
		&userID,
		&session.OpenedAt,
		&session.ClosedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sessionDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session by id")
	}

	if err := session.ID.UnmarshalBinary(rowID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session id")
	}
	if err := session.UserID.UnmarshalBinary(userID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &session, nil
}

// Close stamps the session's closed_at. Closing an already closed session is a no-op.
func (m *MySQLSessionRepository) Close(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE sessions
			  SET closed_at = ?
			  WHERE id = ? AND closed_at IS NULL`

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}

	_, err = querier.ExecContext(ctx, query, time.Now().UTC(), binID)
	if err != nil {
		return apperrors.Wrap(err, "failed to close session")
	}

	return nil
}

// DeleteByCustomer removes every session row belonging to a customer.
func (m *MySQLSessionRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM sessions WHERE customer_code = ?`

	_, err := querier.ExecContext(ctx, query, customerCode)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete sessions by customer")
	}

	return nil
}

// NewMySQLSessionRepository creates a new MySQL Session repository instance.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}
