package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
	keysDomain "github.com/denis-papin/doka.one/internal/keys/domain"
	keysRepository "github.com/denis-papin/doka.one/internal/keys/repository"
	keysUsecase "github.com/denis-papin/doka.one/internal/keys/usecase"
)

// MasterKey returns the process master key. When a KMS provider is configured
// the key file is treated as KMS-wrapped ciphertext and unwrapped at load time,
// otherwise the file holds the base64-encoded key bytes directly.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	c.masterKeyInit.Do(func() {
		masterKey, err := c.initMasterKey()
		if err != nil {
			c.initErrors["masterKey"] = err
			return
		}
		c.masterKey = masterKey
	})
	if storedErr, exists := c.initErrors["masterKey"]; exists {
		return nil, storedErr
	}
	return c.masterKey, nil
}

// AEADManager returns the AEAD cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyManager returns the customer key manager.
func (c *Container) KeyManager() cryptoService.KeyManager {
	c.keyManagerInit.Do(func() {
		c.keyManager = cryptoService.NewKeyManager(c.AEADManager())
	})
	return c.keyManager
}

// KMSService returns the KMS keeper factory.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// CustomerKeyRepository returns the customer key repository for the configured driver.
func (c *Container) CustomerKeyRepository() (keysUsecase.CustomerKeyRepository, error) {
	c.customerKeyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["customerKeyRepo"] = fmt.Errorf("failed to get database for customer key repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.customerKeyRepo = keysRepository.NewPostgreSQLCustomerKeyRepository(db)
		case "mysql":
			c.customerKeyRepo = keysRepository.NewMySQLCustomerKeyRepository(db)
		default:
			c.initErrors["customerKeyRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["customerKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.customerKeyRepo, nil
}

// KeyStore returns the customer key store use case.
func (c *Container) KeyStore() (keysUsecase.KeyStore, error) {
	c.keyStoreInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["keyStore"] = err
			return
		}

		repo, err := c.CustomerKeyRepository()
		if err != nil {
			c.initErrors["keyStore"] = err
			return
		}

		masterKey, err := c.MasterKey()
		if err != nil {
			c.initErrors["keyStore"] = err
			return
		}

		retention := keysDomain.RetentionPolicy(c.config.CEKRetention)
		if !retention.Valid() {
			c.initErrors["keyStore"] = fmt.Errorf("invalid CEK retention policy: %s", c.config.CEKRetention)
			return
		}

		c.keyStore = keysUsecase.NewKeyStoreUseCase(txManager, repo, c.KeyManager(), masterKey, retention)
	})
	if storedErr, exists := c.initErrors["keyStore"]; exists {
		return nil, storedErr
	}
	return c.keyStore, nil
}

// initMasterKey loads the master key from disk, unwrapping it through the
// configured KMS when one is set.
func (c *Container) initMasterKey() (*cryptoDomain.MasterKey, error) {
	if c.config.KMSProvider != "" && c.config.KMSKeyURI != "" {
		masterKey, err := cryptoService.LoadWrappedMasterKey(
			context.Background(),
			c.KMSService(),
			c.config.MasterKeyFile,
			c.config.KMSKeyURI,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load KMS-wrapped master key: %w", err)
		}
		return masterKey, nil
	}

	masterKey, err := cryptoDomain.LoadMasterKey(c.config.MasterKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	return masterKey, nil
}
