package app

import (
	"fmt"

	auditRepository "github.com/denis-papin/doka.one/internal/audit/repository"
	cryptoDomain "github.com/denis-papin/doka.one/internal/crypto/domain"
	customerRepository "github.com/denis-papin/doka.one/internal/customer/repository"
	customerUsecase "github.com/denis-papin/doka.one/internal/customer/usecase"
	sessionRepository "github.com/denis-papin/doka.one/internal/session/repository"
)

// CustomerRepository returns the customer repository for the configured driver.
func (c *Container) CustomerRepository() (customerUsecase.CustomerRepository, error) {
	c.customerRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["customerRepo"] = fmt.Errorf("failed to get database for customer repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.customerRepo = customerRepository.NewPostgreSQLCustomerRepository(db)
		case "mysql":
			c.customerRepo = customerRepository.NewMySQLCustomerRepository(db)
		default:
			c.initErrors["customerRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["customerRepo"]; exists {
		return nil, storedErr
	}
	return c.customerRepo, nil
}

// UserRepository returns the user repository for the configured driver.
func (c *Container) UserRepository() (customerUsecase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.userRepo = customerRepository.NewPostgreSQLUserRepository(db)
		case "mysql":
			c.userRepo = customerRepository.NewMySQLUserRepository(db)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// SessionRepository returns the session repository for the configured driver.
func (c *Container) SessionRepository() (customerUsecase.SessionRepository, error) {
	c.sessionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["sessionRepo"] = fmt.Errorf("failed to get database for session repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.sessionRepo = sessionRepository.NewPostgreSQLSessionRepository(db)
		case "mysql":
			c.sessionRepo = sessionRepository.NewMySQLSessionRepository(db)
		default:
			c.initErrors["sessionRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["sessionRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionRepo, nil
}

// AuditRepository returns the audit trail repository for the configured driver.
func (c *Container) AuditRepository() (customerUsecase.AuditRecorder, error) {
	c.auditRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["auditRepo"] = fmt.Errorf("failed to get database for audit repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.auditRepo = auditRepository.NewPostgreSQLAuditRepository(db)
		case "mysql":
			c.auditRepo = auditRepository.NewMySQLAuditRepository(db)
		default:
			c.initErrors["auditRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["auditRepo"]; exists {
		return nil, storedErr
	}
	return c.auditRepo, nil
}

// CustomerUseCase returns the customer lifecycle use case with metrics instrumentation.
func (c *Container) CustomerUseCase() (customerUsecase.CustomerUseCase, error) {
	c.customerUseCaseInit.Do(func() {
		useCase, err := c.initCustomerUseCase()
		if err != nil {
			c.initErrors["customerUseCase"] = err
			return
		}
		c.customerUseCase = useCase
	})
	if storedErr, exists := c.initErrors["customerUseCase"]; exists {
		return nil, storedErr
	}
	return c.customerUseCase, nil
}

// LoginUseCase returns the login use case with metrics instrumentation.
func (c *Container) LoginUseCase() (customerUsecase.LoginUseCase, error) {
	c.loginUseCaseInit.Do(func() {
		useCase, err := c.initLoginUseCase()
		if err != nil {
			c.initErrors["loginUseCase"] = err
			return
		}
		c.loginUseCase = useCase
	})
	if storedErr, exists := c.initErrors["loginUseCase"]; exists {
		return nil, storedErr
	}
	return c.loginUseCase, nil
}

func (c *Container) initCustomerUseCase() (customerUsecase.CustomerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, err
	}

	customerRepo, err := c.CustomerRepository()
	if err != nil {
		return nil, err
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, err
	}

	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, err
	}

	keyStore, err := c.KeyStore()
	if err != nil {
		return nil, err
	}

	auditRepo, err := c.AuditRepository()
	if err != nil {
		return nil, err
	}

	catalogRepo, err := c.CatalogRepository()
	if err != nil {
		return nil, err
	}

	fileRepo, err := c.FileRepository()
	if err != nil {
		return nil, err
	}

	// The purge order mirrors the data dependencies: files and catalog rows
	// reference nothing outside themselves, sessions and users go last before
	// the customer row itself.
	purgers := []customerUsecase.Purger{
		fileRepo,
		catalogRepo,
		sessionRepo,
		userRepo,
	}

	useCase, err := customerUsecase.NewCustomerUseCase(
		txManager,
		customerRepo,
		userRepo,
		keyStore,
		auditRepo,
		purgers,
		cryptoDomain.AESGCM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	return customerUsecase.NewCustomerUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initLoginUseCase() (customerUsecase.LoginUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, err
	}

	customerRepo, err := c.CustomerRepository()
	if err != nil {
		return nil, err
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, err
	}

	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, err
	}

	issuer, err := c.TokenIssuer()
	if err != nil {
		return nil, err
	}

	useCase, err := customerUsecase.NewLoginUseCase(txManager, customerRepo, userRepo, sessionRepo, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create login use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	return customerUsecase.NewLoginUseCaseWithMetrics(useCase, businessMetrics), nil
}
