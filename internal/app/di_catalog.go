package app

import (
	"fmt"

	catalogRepository "github.com/denis-papin/doka.one/internal/catalog/repository"
	catalogUsecase "github.com/denis-papin/doka.one/internal/catalog/usecase"
	filestoreRepository "github.com/denis-papin/doka.one/internal/filestore/repository"
	filestoreService "github.com/denis-papin/doka.one/internal/filestore/service"
	filestoreUsecase "github.com/denis-papin/doka.one/internal/filestore/usecase"
)

// CatalogRepository returns the catalog repository for the configured driver.
func (c *Container) CatalogRepository() (catalogUsecase.CatalogRepository, error) {
	c.catalogRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["catalogRepo"] = fmt.Errorf("failed to get database for catalog repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.catalogRepo = catalogRepository.NewPostgreSQLCatalogRepository(db)
		case "mysql":
			c.catalogRepo = catalogRepository.NewMySQLCatalogRepository(db)
		default:
			c.initErrors["catalogRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["catalogRepo"]; exists {
		return nil, storedErr
	}
	return c.catalogRepo, nil
}

// CatalogUseCase returns the catalog use case.
func (c *Container) CatalogUseCase() (catalogUsecase.CatalogUseCase, error) {
	c.catalogUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["catalogUseCase"] = err
			return
		}

		repo, err := c.CatalogRepository()
		if err != nil {
			c.initErrors["catalogUseCase"] = err
			return
		}

		c.catalogUseCase = catalogUsecase.NewCatalogUseCase(txManager, repo)
	})
	if storedErr, exists := c.initErrors["catalogUseCase"]; exists {
		return nil, storedErr
	}
	return c.catalogUseCase, nil
}

// FileRepository returns the file repository for the configured driver.
func (c *Container) FileRepository() (filestoreUsecase.FileRepository, error) {
	c.fileRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["fileRepo"] = fmt.Errorf("failed to get database for file repository: %w", err)
			return
		}

		switch c.config.DBDriver {
		case "postgres":
			c.fileRepo = filestoreRepository.NewPostgreSQLFileRepository(db)
		case "mysql":
			c.fileRepo = filestoreRepository.NewMySQLFileRepository(db)
		default:
			c.initErrors["fileRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["fileRepo"]; exists {
		return nil, storedErr
	}
	return c.fileRepo, nil
}

// BlockCipher returns the file block cipher.
func (c *Container) BlockCipher() filestoreService.BlockCipher {
	c.blockCipherInit.Do(func() {
		c.blockCipher = filestoreService.NewBlockCipher(c.AEADManager())
	})
	return c.blockCipher
}

// FileUseCase returns the encrypted file storage use case.
func (c *Container) FileUseCase() (filestoreUsecase.FileUseCase, error) {
	c.fileUseCaseInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["fileUseCase"] = err
			return
		}

		repo, err := c.FileRepository()
		if err != nil {
			c.initErrors["fileUseCase"] = err
			return
		}

		keyStore, err := c.KeyStore()
		if err != nil {
			c.initErrors["fileUseCase"] = err
			return
		}

		c.fileUseCase = filestoreUsecase.NewFileUseCase(
			txManager,
			repo,
			keyStore,
			c.BlockCipher(),
			c.config.FileBlockSize,
		)
	})
	if storedErr, exists := c.initErrors["fileUseCase"]; exists {
		return nil, storedErr
	}
	return c.fileUseCase, nil
}
