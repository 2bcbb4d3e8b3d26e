package usecase

import (
	"context"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
)

// mockCustomerKeyRepository is a testify mock for CustomerKeyRepository.
type mockCustomerKeyRepository struct {
	mock.Mock
}

func (m *mockCustomerKeyRepository) Create(ctx context.Context, customerKey *keysDomain.CustomerKey) error {
	args := m.Called(ctx, customerKey)
	return args.Error(0)
}

func (m *mockCustomerKeyRepository) GetLatestByCode(ctx context.Context, customerCode string) (*keysDomain.CustomerKey, error) {
	args := m.Called(ctx, customerCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keysDomain.CustomerKey), args.Error(1)
}

func (m *mockCustomerKeyRepository) Revoke(ctx context.Context, customerCode string, retention keysDomain.RetentionPolicy) error {
	args := m.Called(ctx, customerCode, retention)
	return args.Error(0)
}

// fakeTxManager runs the function directly without a database transaction.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestMasterKey(t *testing.T) *cryptoDomain.MasterKey {
	t.Helper()
	material := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(material)
	require.NoError(t, err)
	masterKey, err := cryptoDomain.NewMasterKey(material)
	require.NoError(t, err)
	return masterKey
}

func newKeyStore(t *testing.T, repo CustomerKeyRepository) (KeyStore, *cryptoDomain.MasterKey) {
	t.Helper()
	masterKey := newTestMasterKey(t)
	t.Cleanup(masterKey.Close)

	keyManager := cryptoService.NewKeyManager(cryptoService.NewAEADManager())
	store := NewKeyStoreUseCase(&fakeTxManager{}, repo, keyManager, masterKey, keysDomain.RetentionTombstone)
	return store, masterKey
}

func TestKeyStoreUseCase_Create(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, _ := newKeyStore(t, repo)
	ctx := context.Background()

	repo.On("GetLatestByCode", mock.Anything, "acme").Return(nil, apperrors.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CustomerKey")).Return(nil)

	customerKey, err := store.Create(ctx, "acme", cryptoDomain.AESGCM)
	require.NoError(t, err)
	defer customerKey.Close()

	assert.Equal(t, "acme", customerKey.CustomerCode)
	assert.Len(t, customerKey.Key, cryptoDomain.KeySize)
	assert.NotEmpty(t, customerKey.EncryptedKey)
	repo.AssertExpectations(t)
}

func TestKeyStoreUseCase_Create_Duplicate(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, _ := newKeyStore(t, repo)

	active := &keysDomain.CustomerKey{CustomerCode: "acme"}
	repo.On("GetLatestByCode", mock.Anything, "acme").Return(active, nil)

	_, err := store.Create(context.Background(), "acme", cryptoDomain.AESGCM)
	assert.ErrorIs(t, err, keysDomain.ErrDuplicateCustomer)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestKeyStoreUseCase_Create_AfterRevoke(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, _ := newKeyStore(t, repo)

	revokedAt := time.Now().UTC()
	revoked := &keysDomain.CustomerKey{CustomerCode: "acme", RevokedAt: &revokedAt}
	repo.On("GetLatestByCode", mock.Anything, "acme").Return(revoked, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CustomerKey")).Return(nil)

	customerKey, err := store.Create(context.Background(), "acme", cryptoDomain.ChaCha20)
	require.NoError(t, err)
	defer customerKey.Close()

	assert.False(t, customerKey.Revoked())
	repo.AssertExpectations(t)
}

func TestKeyStoreUseCase_Get(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, masterKey := newKeyStore(t, repo)
	ctx := context.Background()

	// Wrap a key exactly as Create would, then serve its encrypted form from
	// the repository.
	keyManager := cryptoService.NewKeyManager(cryptoService.NewAEADManager())
	created, err := keyManager.CreateCustomerKey(masterKey, "acme", cryptoDomain.AESGCM)
	require.NoError(t, err)

	stored := created
	stored.Key = nil
	repo.On("GetLatestByCode", mock.Anything, "acme").Return(&stored, nil)

	got, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	defer got.Close()

	assert.Equal(t, created.Key, got.Key)
	assert.Equal(t, "acme", got.CustomerCode)
}

func TestKeyStoreUseCase_Get_Unknown(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, _ := newKeyStore(t, repo)

	repo.On("GetLatestByCode", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, keysDomain.ErrUnknownCustomer)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestKeyStoreUseCase_Get_Revoked(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, _ := newKeyStore(t, repo)

	revokedAt := time.Now().UTC()
	revoked := &keysDomain.CustomerKey{CustomerCode: "acme", RevokedAt: &revokedAt}
	repo.On("GetLatestByCode", mock.Anything, "acme").Return(revoked, nil)

	_, err := store.Get(context.Background(), "acme")
	assert.ErrorIs(t, err, keysDomain.ErrRevokedCustomer)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestKeyStoreUseCase_Get_CallersOwnTheirCopy(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, masterKey := newKeyStore(t, repo)
	ctx := context.Background()

	keyManager := cryptoService.NewKeyManager(cryptoService.NewAEADManager())
	created, err := keyManager.CreateCustomerKey(masterKey, "acme", cryptoDomain.AESGCM)
	require.NoError(t, err)

	stored := created
	stored.Key = nil
	repo.On("GetLatestByCode", mock.Anything, "acme").Return(&stored, nil)

	first, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	second, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	defer second.Close()

	// Closing one caller's key must not zero the other's material.
	first.Close()
	assert.Equal(t, created.Key, second.Key)
}

func TestKeyStoreUseCase_Get_NoPlaintextOutsideCallers(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, masterKey := newKeyStore(t, repo)
	ctx := context.Background()

	keyManager := cryptoService.NewKeyManager(cryptoService.NewAEADManager())
	created, err := keyManager.CreateCustomerKey(masterKey, "acme", cryptoDomain.AESGCM)
	require.NoError(t, err)

	stored := created
	stored.Key = nil
	repo.On("GetLatestByCode", mock.Anything, "acme").Return(&stored, nil)

	got, err := store.Get(ctx, "acme")
	require.NoError(t, err)
	defer got.Close()

	// The row shared through the load path never gains plaintext: the only
	// unwrapped copy is the one the caller owns and Closes.
	assert.Nil(t, stored.Key)
	assert.Equal(t, created.Key, got.Key)
}

func TestKeyStoreUseCase_Revoke(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, _ := newKeyStore(t, repo)

	repo.On("Revoke", mock.Anything, "acme", keysDomain.RetentionTombstone).Return(nil)

	err := store.Revoke(context.Background(), "acme")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestKeyStoreUseCase_Revoke_Unknown(t *testing.T) {
	repo := new(mockCustomerKeyRepository)
	store, _ := newKeyStore(t, repo)

	repo.On("Revoke", mock.Anything, "ghost", keysDomain.RetentionTombstone).Return(apperrors.ErrNotFound)

	err := store.Revoke(context.Background(), "ghost")
	assert.ErrorIs(t, err, keysDomain.ErrUnknownCustomer)
}

// countingRepository serves a fixed key row and counts reads.
type countingRepository struct {
	mu     sync.Mutex
	reads  int
	stored keysDomain.CustomerKey
}

func (c *countingRepository) Create(ctx context.Context, customerKey *keysDomain.CustomerKey) error {
	return nil
}

func (c *countingRepository) GetLatestByCode(ctx context.Context, customerCode string) (*keysDomain.CustomerKey, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	row := c.stored
	return &row, nil
}

func (c *countingRepository) Revoke(ctx context.Context, customerCode string, retention keysDomain.RetentionPolicy) error {
	return nil
}

func TestKeyStoreUseCase_Get_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	masterKey := newTestMasterKey(t)
	defer masterKey.Close()

	keyManager := cryptoService.NewKeyManager(cryptoService.NewAEADManager())
	created, err := keyManager.CreateCustomerKey(masterKey, "acme", cryptoDomain.AESGCM)
	require.NoError(t, err)

	stored := created
	stored.Key = nil
	repo := &countingRepository{stored: stored}
	store := NewKeyStoreUseCase(&fakeTxManager{}, repo, keyManager, masterKey, keysDomain.RetentionTombstone)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make(chan []byte, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			customerKey, err := store.Get(context.Background(), "acme")
			assert.NoError(t, err)
			results <- customerKey.Key
		}()
	}
	wg.Wait()
	close(results)

	for key := range results {
		assert.Equal(t, created.Key, key)
	}

	repo.mu.Lock()
	reads := repo.reads
	repo.mu.Unlock()
	assert.LessOrEqual(t, reads, goroutines)
	assert.GreaterOrEqual(t, reads, 1)
}
