package app

import (
	catalogHTTP "github.com/denis-papin/doka.one/internal/catalog/http"
	customerHTTP "github.com/denis-papin/doka.one/internal/customer/http"
	filestoreHTTP "github.com/denis-papin/doka.one/internal/filestore/http"
	"github.com/denis-papin/doka.one/internal/http"
	"github.com/denis-papin/doka.one/internal/metrics"
	tokenHTTP "github.com/denis-papin/doka.one/internal/token/http"
)

// buildHandlers constructs the HTTP handlers for every route group.
func (c *Container) buildHandlers() (http.Handlers, error) {
	logger := c.Logger()

	loginUseCase, err := c.LoginUseCase()
	if err != nil {
		return http.Handlers{}, err
	}

	customerUseCase, err := c.CustomerUseCase()
	if err != nil {
		return http.Handlers{}, err
	}

	issuer, err := c.TokenIssuer()
	if err != nil {
		return http.Handlers{}, err
	}

	catalogUseCase, err := c.CatalogUseCase()
	if err != nil {
		return http.Handlers{}, err
	}

	fileUseCase, err := c.FileUseCase()
	if err != nil {
		return http.Handlers{}, err
	}

	return http.Handlers{
		Login:      customerHTTP.NewLoginHandler(loginUseCase, logger),
		Customer:   customerHTTP.NewCustomerHandler(customerUseCase, logger),
		AdminToken: tokenHTTP.NewAdminTokenHandler(issuer, logger),
		Item:       catalogHTTP.NewItemHandler(catalogUseCase, logger),
		Tag:        catalogHTTP.NewTagHandler(catalogUseCase, logger),
		File:       filestoreHTTP.NewFileHandler(fileUseCase, logger),
	}, nil
}

// buildMiddleware constructs the cross-cutting middleware mounted on the router.
func (c *Container) buildMiddleware() (http.Options, error) {
	logger := c.Logger()

	validator, err := c.TokenValidator()
	if err != nil {
		return http.Options{}, err
	}

	opts := http.Options{
		Session:      tokenHTTP.SessionMiddleware(validator, logger),
		RequireAdmin: tokenHTTP.RequireAdminMiddleware(logger),
		CORS:         http.CreateCORSMiddleware(c.config.CORSEnabled, c.config.CORSAllowOrigins, logger),
	}

	if c.config.RateLimitLoginEnabled {
		opts.LoginRateLimit = tokenHTTP.LoginRateLimitMiddleware(
			c.config.RateLimitLoginRequestsPerSec,
			c.config.RateLimitLoginBurst,
			logger,
		)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return http.Options{}, err
	}
	if provider != nil {
		opts.Metrics = metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace)
	}

	return opts, nil
}
