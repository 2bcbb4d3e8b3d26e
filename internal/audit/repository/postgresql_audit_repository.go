// Package repository implements audit trail persistence.
package repository

import (
	"context"
	"database/sql"

	auditDomain "github.com/denis-papin/doka.one/internal/audit/domain"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
)

// PostgreSQLAuditRepository implements AuditEvent persistence for PostgreSQL databases.
// The trail is append-only; there is no update or delete.
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// Create appends an audit event.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO audit_events (id, kind, actor, customer_code, details, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
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
func (p *PostgreSQLAuditRepository) ListByCustomer(
	ctx context.Context,
	customerCode string,
	limit int,
) ([]*auditDomain.AuditEvent, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, kind, actor, customer_code, details, created_at
			  FROM audit_events
			  WHERE customer_code = $1
			  ORDER BY created_at DESC
			  LIMIT $2`

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
		err := rows.Scan(
			&event.ID,
			&event.Kind,
			&event.Actor,
			&event.CustomerCode,
			&event.Details,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}

	return events, nil
}

// NewPostgreSQLAuditRepository creates a new PostgreSQL AuditEvent repository instance.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}
