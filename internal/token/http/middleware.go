package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	customerDomain "github.com/denis-papin/doka.one/internal/customer/domain"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	"github.com/denis-papin/doka.one/internal/httputil"
	tokenService "github.com/denis-papin/doka.one/internal/token/service"
)

// SessionMiddleware authenticates requests via a session token in the
// Authorization header.
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer").
//
// Every failure, whether a missing header, a malformed token, an expired one,
// or a revoked customer, produces the same 401 response. Validation hits the
// key store on every request so a revoked customer is locked out immediately.
func SessionMiddleware(validator tokenService.Validator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		sc, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithSecurityContext(c.Request.Context(), sc)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("customer_code", sc.CustomerCode),
			slog.String("session_id", sc.SessionID.String()),
		)

		c.Next()
	}
}

// RequireAdminMiddleware restricts a route to identities carrying the admin
// role. Must be used after SessionMiddleware.
func RequireAdminMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc, ok := GetSecurityContext(c.Request.Context())
		if !ok || sc == nil {
			logger.Debug("authorization failed: no security context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !sc.HasRole(customerDomain.RoleAdmin) {
			logger.Debug("authorization failed: admin role required",
				slog.String("customer_code", sc.CustomerCode),
				slog.String("user_id", sc.UserID.String()),
			)
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
