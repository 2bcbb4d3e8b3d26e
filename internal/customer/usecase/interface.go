package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/denis-papin/doka.one/internal/audit/domain"
	"github.com/denis-papin/doka.one/internal/customer/domain"
	sessionDomain "github.com/denis-papin/doka.one/internal/session/domain"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

// CustomerRepository defines customer persistence operations.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByCode(ctx context.Context, code string) (*domain.Customer, error)
	Delete(ctx context.Context, code string) error
}

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, customerCode, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	DeleteByCustomer(ctx context.Context, customerCode string) error
}

// SessionRepository defines session persistence operations used by login.
type SessionRepository interface {
	Create(ctx context.Context, session *sessionDomain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*sessionDomain.Session, error)
	Close(ctx context.Context, id uuid.UUID) error
	DeleteByCustomer(ctx context.Context, customerCode string) error
}

// AuditRecorder appends events to the audit trail.
type AuditRecorder interface {
	Create(ctx context.Context, event *auditDomain.AuditEvent) error
}

// Purger removes a customer's rows from one tenant-scoped table. The deletion
// cascade runs every registered purger before the customer row goes away.
type Purger interface {
	DeleteByCustomer(ctx context.Context, customerCode string) error
}

// CreateCustomerInput contains the input data for customer provisioning.
type CreateCustomerInput struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ContactEmail  string `json:"contact_email"`
	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// CustomerUseCase defines the customer lifecycle operations.
type CustomerUseCase interface {
	// Create provisions a new customer: its row, its encryption key, and its
	// first admin user. Either everything exists afterwards or nothing does.
	Create(ctx context.Context, input CreateCustomerInput) (*domain.Customer, error)

	// Get retrieves a customer by code.
	Get(ctx context.Context, code string) (*domain.Customer, error)

	// Delete removes a customer: revokes its key first, then purges every
	// tenant-scoped table and the customer row itself.
	Delete(ctx context.Context, code string) error
}

// LoginInput contains the credentials presented at login.
type LoginInput struct {
	CustomerCode string `json:"customer_code"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

// LoginUseCase defines credential authentication and session lifecycle.
type LoginUseCase interface {
	// Login verifies credentials and, on success, opens a session and mints
	// its token. Every failure mode returns ErrInvalidCredentials.
	Login(ctx context.Context, input LoginInput) (string, *tokenDomain.SessionClaims, error)

	// ReadSession retrieves the session row for a validated token.
	ReadSession(ctx context.Context, sessionID uuid.UUID) (*sessionDomain.Session, error)

	// Logout closes the session. Idempotent.
	Logout(ctx context.Context, sessionID uuid.UUID) error
}
