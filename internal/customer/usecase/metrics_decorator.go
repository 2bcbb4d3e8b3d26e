package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/denis-papin/doka.one/internal/customer/domain"
	"github.com/denis-papin/doka.one/internal/metrics"
	sessionDomain "github.com/denis-papin/doka.one/internal/session/domain"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
)

// customerUseCaseWithMetrics decorates CustomerUseCase with metrics instrumentation.
type customerUseCaseWithMetrics struct {
	next    CustomerUseCase
	metrics metrics.BusinessMetrics
}

// NewCustomerUseCaseWithMetrics wraps a CustomerUseCase with metrics recording.
func NewCustomerUseCaseWithMetrics(useCase CustomerUseCase, m metrics.BusinessMetrics) CustomerUseCase {
	return &customerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for customer provisioning operations.
func (c *customerUseCaseWithMetrics) Create(
	ctx context.Context,
	input CreateCustomerInput,
) (*domain.Customer, error) {
	start := time.Now()
	customer, err := c.next.Create(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "customer", "customer_create", status)
	c.metrics.RecordDuration(ctx, "customer", "customer_create", time.Since(start), status)

	return customer, err
}

// Get records metrics for customer retrieval operations.
func (c *customerUseCaseWithMetrics) Get(ctx context.Context, code string) (*domain.Customer, error) {
	start := time.Now()
	customer, err := c.next.Get(ctx, code)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "customer", "customer_get", status)
	c.metrics.RecordDuration(ctx, "customer", "customer_get", time.Since(start), status)

	return customer, err
}

// Delete records metrics for customer deletion operations.
func (c *customerUseCaseWithMetrics) Delete(ctx context.Context, code string) error {
	start := time.Now()
	err := c.next.Delete(ctx, code)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "customer", "customer_delete", status)
	c.metrics.RecordDuration(ctx, "customer", "customer_delete", time.Since(start), status)

	return err
}

// loginUseCaseWithMetrics decorates LoginUseCase with metrics instrumentation.
type loginUseCaseWithMetrics struct {
	next    LoginUseCase
	metrics metrics.BusinessMetrics
}

// NewLoginUseCaseWithMetrics wraps a LoginUseCase with metrics recording.
func NewLoginUseCaseWithMetrics(useCase LoginUseCase, m metrics.BusinessMetrics) LoginUseCase {
	return &loginUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login operations.
func (l *loginUseCaseWithMetrics) Login(
	ctx context.Context,
	input LoginInput,
) (string, *tokenDomain.SessionClaims, error) {
	start := time.Now()
	token, claims, err := l.next.Login(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "customer", "login", status)
	l.metrics.RecordDuration(ctx, "customer", "login", time.Since(start), status)

	return token, claims, err
}

// ReadSession records metrics for session read operations.
func (l *loginUseCaseWithMetrics) ReadSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*sessionDomain.Session, error) {
	start := time.Now()
	session, err := l.next.ReadSession(ctx, sessionID)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "customer", "session_read", status)
	l.metrics.RecordDuration(ctx, "customer", "session_read", time.Since(start), status)

	return session, err
}

// Logout records metrics for logout operations.
func (l *loginUseCaseWithMetrics) Logout(ctx context.Context, sessionID uuid.UUID) error {
	start := time.Now()
	err := l.next.Logout(ctx, sessionID)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "customer", "logout", status)
	l.metrics.RecordDuration(ctx, "customer", "logout", time.Since(start), status)

	return err
}
