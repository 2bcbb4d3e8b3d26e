package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/denis-papin/doka.one/internal/audit/domain"
	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	"github.com/denis-papin/doka.one/internal/customer/domain"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
	sessionDomain "github.com/denis-papin/doka.one/internal/session/domain"
)

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *mockCustomerRepository) GetByCode(ctx context.Context, code string) (*domain.Customer, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, customerCode, email string) (*domain.User, error) {
	args := m.Called(ctx, customerCode, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	args := m.Called(ctx, customerCode)
	return args.Error(0)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, session *sessionDomain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*sessionDomain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.Session), args.Error(1)
}

func (m *mockSessionRepository) Close(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSessionRepository) DeleteByCustomer(ctx context.Context, customerCode string) error {
	args := m.Called(ctx, customerCode)
	return args.Error(0)
}

type mockAuditRecorder struct {
	mock.Mock
}

func (m *mockAuditRecorder) Create(ctx context.Context, event *auditDomain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockKeyStore struct {
	mock.Mock
}

func (m *mockKeyStore) Create(ctx context.Context, customerCode string, alg cryptoDomain.Algorithm) (*keysDomain.CustomerKey, error) {
	args := m.Called(ctx, customerCode, alg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.CustomerKey), args.Error(1)
}

func (m *mockKeyStore) Get(ctx context.Context, customerCode string) (*keysDomain.CustomerKey, error) {
	args := m.Called(ctx, customerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.CustomerKey), args.Error(1)
}

func (m *mockKeyStore) Revoke(ctx context.Context, customerCode string) error {
	args := m.Called(ctx, customerCode)
	return args.Error(0)
}

// fakeTxManager runs the function directly without a database transaction.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type customerFixture struct {
	customerRepo *mockCustomerRepository
	userRepo     *mockUserRepository
	sessionRepo  *mockSessionRepository
	auditRepo    *mockAuditRecorder
	keyStore     *mockKeyStore
	useCase      CustomerUseCase
}

func newCustomerFixture(t *testing.T) *customerFixture {
	t.Helper()

	f := &customerFixture{
		customerRepo: new(mockCustomerRepository),
		userRepo:     new(mockUserRepository),
		sessionRepo:  new(mockSessionRepository),
		auditRepo:    new(mockAuditRecorder),
		keyStore:     new(mockKeyStore),
	}

	useCase, err := NewCustomerUseCase(
		&fakeTxManager{},
		f.customerRepo,
		f.userRepo,
		f.keyStore,
		f.auditRepo,
		[]Purger{f.userRepo, f.sessionRepo},
		cryptoDomain.AESGCM,
	)
	require.NoError(t, err)
	f.useCase = useCase
	return f
}

func validCreateInput() CreateCustomerInput {
	return CreateCustomerInput{
		Code:          "acme",
		Name:          "Acme Corp",
		ContactEmail:  "contact@acme.example",
		AdminName:     "Jane Admin",
		AdminEmail:    "jane@acme.example",
		AdminPassword: "Sup3rSecret",
	}
}

func TestCustomerUseCase_Create(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	f.keyStore.On("Create", mock.Anything, "acme", cryptoDomain.AESGCM).
		Return(&keysDomain.CustomerKey{CustomerCode: "acme"}, nil)
	f.customerRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Customer")).Return(nil)
	f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	f.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AuditEvent")).Return(nil)

	customer, err := f.useCase.Create(ctx, validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, "acme", customer.Code)
	assert.Equal(t, "Acme Corp", customer.Name)
	f.keyStore.AssertExpectations(t)
	f.customerRepo.AssertExpectations(t)

	// The admin user carries the admin role and a hashed password.
	createdUser := f.userRepo.Calls[0].Arguments.Get(1).(*domain.User)
	assert.Equal(t, []string{domain.RoleAdmin}, createdUser.Roles)
	assert.NotEqual(t, "Sup3rSecret", createdUser.Password)
	assert.Contains(t, createdUser.Password, "$argon2id$")
}

func TestCustomerUseCase_Create_InvalidInput(t *testing.T) {
	f := newCustomerFixture(t)

	cases := map[string]func(*CreateCustomerInput){
		"empty code":     func(i *CreateCustomerInput) { i.Code = "" },
		"uppercase code": func(i *CreateCustomerInput) { i.Code = "Acme" },
		"reserved code":  func(i *CreateCustomerInput) { i.Code = "master" },
		"bad email":      func(i *CreateCustomerInput) { i.ContactEmail = "nope" },
		"weak password":  func(i *CreateCustomerInput) { i.AdminPassword = "short" },
		"no uppercase":   func(i *CreateCustomerInput) { i.AdminPassword = "sup3rsecret" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validCreateInput()
			mutate(&input)

			_, err := f.useCase.Create(context.Background(), input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	f.keyStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerUseCase_Create_Duplicate(t *testing.T) {
	f := newCustomerFixture(t)

	f.keyStore.On("Create", mock.Anything, "acme", cryptoDomain.AESGCM).
		Return(nil, keysDomain.ErrDuplicateCustomer)

	_, err := f.useCase.Create(context.Background(), validCreateInput())
	assert.ErrorIs(t, err, domain.ErrCustomerAlreadyExists)
}

func TestCustomerUseCase_Create_RollsBackKeyOnFailure(t *testing.T) {
	f := newCustomerFixture(t)

	f.keyStore.On("Create", mock.Anything, "acme", cryptoDomain.AESGCM).
		Return(&keysDomain.CustomerKey{CustomerCode: "acme"}, nil)
	f.customerRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	f.keyStore.On("Revoke", mock.Anything, "acme").Return(nil)

	_, err := f.useCase.Create(context.Background(), validCreateInput())
	assert.ErrorIs(t, err, domain.ErrProvisioningFailed)
	f.keyStore.AssertCalled(t, "Revoke", mock.Anything, "acme")
}

func TestCustomerUseCase_Delete(t *testing.T) {
	f := newCustomerFixture(t)

	customer := &domain.Customer{ID: uuid.Must(uuid.NewV7()), Code: "acme", CreatedAt: time.Now().UTC()}
	f.customerRepo.On("GetByCode", mock.Anything, "acme").Return(customer, nil)
	f.keyStore.On("Revoke", mock.Anything, "acme").Return(nil)
	f.userRepo.On("DeleteByCustomer", mock.Anything, "acme").Return(nil)
	f.sessionRepo.On("DeleteByCustomer", mock.Anything, "acme").Return(nil)
	f.customerRepo.On("Delete", mock.Anything, "acme").Return(nil)
	f.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AuditEvent")).Return(nil)

	err := f.useCase.Delete(context.Background(), "acme")
	require.NoError(t, err)

	f.keyStore.AssertExpectations(t)
	f.userRepo.AssertCalled(t, "DeleteByCustomer", mock.Anything, "acme")
	f.sessionRepo.AssertCalled(t, "DeleteByCustomer", mock.Anything, "acme")
	f.customerRepo.AssertCalled(t, "Delete", mock.Anything, "acme")
}

func TestCustomerUseCase_Delete_NotFound(t *testing.T) {
	f := newCustomerFixture(t)

	f.customerRepo.On("GetByCode", mock.Anything, "ghost").Return(nil, domain.ErrCustomerNotFound)

	err := f.useCase.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	f.keyStore.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

func TestCustomerUseCase_Delete_PurgeFailureStopsDeletion(t *testing.T) {
	f := newCustomerFixture(t)

	customer := &domain.Customer{ID: uuid.Must(uuid.NewV7()), Code: "acme"}
	f.customerRepo.On("GetByCode", mock.Anything, "acme").Return(customer, nil)
	f.keyStore.On("Revoke", mock.Anything, "acme").Return(nil)
	f.userRepo.On("DeleteByCustomer", mock.Anything, "acme").Return(errors.New("timeout"))
	f.sessionRepo.On("DeleteByCustomer", mock.Anything, "acme").Return(nil)

	err := f.useCase.Delete(context.Background(), "acme")
	assert.Error(t, err)
	f.customerRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
