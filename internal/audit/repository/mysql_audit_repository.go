package repository

import (
	"context"
	"database/sql"

	auditDomain "github.com/denis-papin/doka.one/internal/audit/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

// MySQLAuditRepository implements AuditEvent persistence for MySQL databases.
// The trail is append-only; there is no update or delete.
type MySQLAuditRepository struct {
	db *sql.DB
}

// Create appends an audit event.
func (m *MySQLAuditRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO audit_events (id, kind, actor, customer_code, details, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		event.Kind,
		event.Actor,
		event.CustomerCode,
		event.Details,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// ListByCustomer returns the audit trail for a customer, newest first.
func (m *MySQLAuditRepository) ListByCustomer(
	ctx context.Context,
	customerCode string,
	limit int,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, kind, actor, customer_code, details, created_at
			  FROM audit_events
			  WHERE customer_code = ?
			  ORDER BY created_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, customerCode, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []*auditDomain.AuditEvent
	for rows.Next() {
		var event auditDomain.AuditEvent
		var id []byte
		err := rows.Scan(
			&id,
			&event.Kind,
			&event.Actor,
			&event.CustomerCode,
			&event.Details,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		if err := event.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// NewMySQLAuditRepository creates a new MySQL AuditEvent repository instance.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}
