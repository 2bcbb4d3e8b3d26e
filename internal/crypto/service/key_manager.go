package service

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
)

// keyManager implements KeyManager for wrapping and unwrapping customer
// encryption keys under the master key.
//
// The customer code is used as the AEAD associated data when wrapping, so an
// encrypted key row moved to a different customer's row fails authentication
// instead of silently decrypting.
type keyManager struct {
	aeadManager AEADManager
}

// NewKeyManager creates a new KeyManager using the given AEAD manager.
func NewKeyManager(aeadManager AEADManager) KeyManager {
	return &keyManager{aeadManager: aeadManager}
}

// CreateCustomerKey generates a fresh random CEK for the customer and encrypts
// it under the master key with the customer code as AAD.
func (k *keyManager) CreateCustomerKey(
	masterKey *cryptoDomain.MasterKey,
	customerCode string,
	alg cryptoDomain.Algorithm,
) (keysDomain.CustomerKey, error) {
	plainKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(plainKey); err != nil {
		return keysDomain.CustomerKey{}, apperrors.Wrap(err, "failed to generate customer key")
	}

	cipher, err := k.aeadManager.CreateCipher(masterKey.Bytes(), alg)
	if err != nil {
		cryptoDomain.Zero(plainKey)
		return keysDomain.CustomerKey{}, err
	}

	encryptedKey, nonce, err := cipher.Encrypt(plainKey, []byte(customerCode))
	if err != nil {
		cryptoDomain.Zero(plainKey)
		return keysDomain.CustomerKey{}, apperrors.Wrap(err, "failed to encrypt customer key")
	}

	return keysDomain.CustomerKey{
		ID:           uuid.Must(uuid.NewV7()),
		CustomerCode: customerCode,
		Algorithm:    alg,
		EncryptedKey: encryptedKey,
		Key:          plainKey,
		Nonce:        nonce,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// DecryptCustomerKey unwraps the CEK using the master key. Returns
// ErrDecryptionFailed on any authentication failure, without detail.
func (k *keyManager) DecryptCustomerKey(
	customerKey *keysDomain.CustomerKey,
	masterKey *cryptoDomain.MasterKey,
) ([]byte, error) {
	cipher, err := k.aeadManager.CreateCipher(masterKey.Bytes(), customerKey.Algorithm)
	if err != nil {
		return nil, err
	}

	plainKey, err := cipher.Decrypt(
		customerKey.EncryptedKey,
		customerKey.Nonce,
		[]byte(customerKey.CustomerCode),
	)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plainKey, nil
}
