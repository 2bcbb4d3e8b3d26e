// Package usecase implements the customer key store.
//
// The store coordinates the key manager service (wrap/unwrap under the master
// key) with the repository (encrypted persistence). Concurrency control is
// per customer code: operations on different customers never contend, and a
// revocation takes a write lock so no concurrent Get can hand out the key
// after Revoke returns.
package usecase

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
	"github.com/denis-papin/doka.one/internal/database"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
)

// keyStoreUseCase implements the KeyStore interface.
//
// Plaintext CEKs are never cached: every Get unwraps from the stored
// encrypted form, so a revocation is visible to the very next Get. Concurrent
// Gets for the same customer are collapsed through singleflight so a burst of
// session validations costs one database read. The flight result carries only
// the encrypted key; each caller unwraps into its own buffer, so the only
// plaintext copies are the ones callers own and Close.
type keyStoreUseCase struct {
	txManager  database.TxManager
	repo       CustomerKeyRepository
	keyManager cryptoService.KeyManager
	masterKey  *cryptoDomain.MasterKey
	retention  keysDomain.RetentionPolicy

	// One mutex per customer code, kept for the process lifetime. Growth is
	// bounded by the number of tenants ever touched.
	locks sync.Map // customer code -> *sync.RWMutex
	group singleflight.Group
}

func (k *keyStoreUseCase) lockFor(customerCode string) *sync.RWMutex {
	lock, _ := k.locks.LoadOrStore(customerCode, &sync.RWMutex{})
	return lock.(*sync.RWMutex)
}

// Create provisions a fresh CEK for the customer code.
//
// The existence check and the insert run inside one transaction under the
// customer's write lock. A revoked customer may be provisioned again; the new
// key shares nothing with the revoked one.
func (k *keyStoreUseCase) Create(
	ctx context.Context,
	customerCode string,
	alg cryptoDomain.Algorithm,
) (*keysDomain.CustomerKey, error) {
	lock := k.lockFor(customerCode)
	lock.Lock()
	defer lock.Unlock()

	customerKey, err := k.keyManager.CreateCustomerKey(k.masterKey, customerCode, alg)
	if err != nil {
		return nil, err
	}

	err = k.txManager.WithTx(ctx, func(ctx context.Context) error {
		latest, err := k.repo.GetLatestByCode(ctx, customerCode)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		if latest != nil && !latest.Revoked() {
			return keysDomain.ErrDuplicateCustomer
		}
		return k.repo.Create(ctx, &customerKey)
	})
	if err != nil {
		customerKey.Close()
		return nil, err
	}

	return &customerKey, nil
}

// Get returns the customer's active CEK with the plaintext Key populated.
//
// The caller owns the returned key and must Close it. Holding only a read
// lock, concurrent Gets for different customers proceed in parallel; for the
// same customer they collapse into a single load and unwrap.
func (k *keyStoreUseCase) Get(
	ctx context.Context,
	customerCode string,
) (*keysDomain.CustomerKey, error) {
	lock := k.lockFor(customerCode)
	lock.RLock()
	defer lock.RUnlock()

	result, err, _ := k.group.Do(customerCode, func() (any, error) {
		return k.load(ctx, customerCode)
	})
	if err != nil {
		return nil, err
	}

	// The shared flight result holds only the encrypted key. Unwrapping into
	// a per-caller copy means Close on one caller's key cannot zero
	// another's, and nothing outside this call retains plaintext.
	shared := result.(*keysDomain.CustomerKey)
	customerKey := *shared
	key, err := k.keyManager.DecryptCustomerKey(shared, k.masterKey)
	if err != nil {
		return nil, err
	}
	customerKey.Key = key

	return &customerKey, nil
}

// load fetches the active encrypted key row. It never decrypts: the result is
// shared across singleflight waiters.
func (k *keyStoreUseCase) load(
	ctx context.Context,
	customerCode string,
) (*keysDomain.CustomerKey, error) {
	customerKey, err := k.repo.GetLatestByCode(ctx, customerCode)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, keysDomain.ErrUnknownCustomer
		}
		return nil, err
	}

	if customerKey.Revoked() {
		return nil, keysDomain.ErrRevokedCustomer
	}

	return customerKey, nil
}

// Revoke tombstones the customer's active key under the write lock, so any
// in-flight Get either completed before the revocation or observes it.
func (k *keyStoreUseCase) Revoke(ctx context.Context, customerCode string) error {
	lock := k.lockFor(customerCode)
	lock.Lock()
	defer lock.Unlock()

	// Drop any in-flight load so a Get queued behind this write lock
	// re-reads the tombstoned row instead of joining a stale flight.
	k.group.Forget(customerCode)

	err := k.repo.Revoke(ctx, customerCode, k.retention)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return keysDomain.ErrUnknownCustomer
		}
		return err
	}

	return nil
}

// NewKeyStoreUseCase creates a new key store instance.
func NewKeyStoreUseCase(
	txManager database.TxManager,
	repo CustomerKeyRepository,
	keyManager cryptoService.KeyManager,
	masterKey *cryptoDomain.MasterKey,
	retention keysDomain.RetentionPolicy,
) KeyStore {
	return &keyStoreUseCase{
		txManager:  txManager,
		repo:       repo,
		keyManager: keyManager,
		masterKey:  masterKey,
		retention:  retention,
	}
}
