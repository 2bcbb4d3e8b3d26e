package app

import (
	"time"

	tokenService "github.com/denis-papin/doka.one/internal/token/service"
	tokenUsecase "github.com/denis-papin/doka.one/internal/token/usecase"
)

// TokenCodec returns the session token wire codec.
func (c *Container) TokenCodec() tokenService.Codec {
	c.tokenCodecInit.Do(func() {
		c.tokenCodec = tokenService.NewCodec(c.AEADManager())
	})
	return c.tokenCodec
}

// TokenValidator returns the session token validator.
func (c *Container) TokenValidator() (tokenService.Validator, error) {
	c.tokenValidatorInit.Do(func() {
		keyStore, err := c.KeyStore()
		if err != nil {
			c.initErrors["tokenValidator"] = err
			return
		}

		masterKey, err := c.MasterKey()
		if err != nil {
			c.initErrors["tokenValidator"] = err
			return
		}

		resolver := tokenService.NewKeyResolver(keyStore, masterKey)
		c.tokenValidator = tokenService.NewValidator(
			c.TokenCodec(),
			resolver,
			time.Now,
			c.config.TokenClockSkew,
		)
	})
	if storedErr, exists := c.initErrors["tokenValidator"]; exists {
		return nil, storedErr
	}
	return c.tokenValidator, nil
}

// TokenIssuer returns the session token issuer.
func (c *Container) TokenIssuer() (tokenUsecase.Issuer, error) {
	c.tokenIssuerInit.Do(func() {
		keyStore, err := c.KeyStore()
		if err != nil {
			c.initErrors["tokenIssuer"] = err
			return
		}

		masterKey, err := c.MasterKey()
		if err != nil {
			c.initErrors["tokenIssuer"] = err
			return
		}

		auditRepo, err := c.AuditRepository()
		if err != nil {
			c.initErrors["tokenIssuer"] = err
			return
		}

		c.tokenIssuer = tokenUsecase.NewIssuer(
			c.TokenCodec(),
			keyStore,
			masterKey,
			auditRepo,
			time.Now,
			c.config.SessionTokenTTL,
		)
	})
	if storedErr, exists := c.initErrors["tokenIssuer"]; exists {
		return nil, storedErr
	}
	return c.tokenIssuer, nil
}
