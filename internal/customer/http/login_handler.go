package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denis-papin/doka.one/internal/customer/http/dto"
	customerUsecase "github.com/denis-papin/doka.one/internal/customer/usecase"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	"github.com/denis-papin/doka.one/internal/httputil"
	tokenDomain "github.com/denis-papin/doka.one/internal/token/domain"
	tokenHTTP "github.com/denis-papin/doka.one/internal/token/http"
	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// LoginHandler handles HTTP requests for login and session operations.
type LoginHandler struct {
	loginUseCase customerUsecase.LoginUseCase
	logger       *slog.Logger
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(loginUseCase customerUsecase.LoginUseCase, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		loginUseCase: loginUseCase,
		logger:       logger,
	}
}

// LoginHandler authenticates credentials and opens a session.
// POST /v1/login - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the session token.
func (h *LoginHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, claims, err := h.loginUseCase.Login(c.Request.Context(), customerUsecase.LoginInput{
		CustomerCode: req.CustomerCode,
		Email:        req.Email,
		Password:     req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("login successful",
		slog.String("customer_code", claims.CustomerCode),
		slog.String("session_id", claims.SessionID.String()),
	)

	c.JSON(http.StatusCreated, dto.MapLoginToResponse(token, claims))
}

// CurrentSessionHandler returns the session behind the presented token.
// GET /v1/sessions/current - Requires an authenticated identity.
//
// Admin-generated tokens have no session row; for them the view is synthesized
// from the validated claims.
func (h *LoginHandler) CurrentSessionHandler(c *gin.Context) {
	sc, ok := tokenHTTP.GetSecurityContext(c.Request.Context())
	if !ok || sc == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if sc.Kind == tokenDomain.KindAdminGenerated {
		c.JSON(http.StatusOK, dto.SessionResponse{
			ID:           sc.SessionID.String(),
			CustomerCode: sc.CustomerCode,
			UserID:       sc.UserID.String(),
		})
		return
	}

	session, err := h.loginUseCase.ReadSession(c.Request.Context(), sc.SessionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionToResponse(session))
}

// LogoutHandler closes the current session.
// DELETE /v1/sessions/current - Requires an authenticated identity.
// Returns 204 No Content. Closing an already closed session is a no-op.
func (h *LoginHandler) LogoutHandler(c *gin.Context) {
	sc, ok := tokenHTTP.GetSecurityContext(c.Request.Context())
	if !ok || sc == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if err := h.loginUseCase.Logout(c.Request.Context(), sc.SessionID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("session closed",
		slog.String("customer_code", sc.CustomerCode),
		slog.String("session_id", sc.SessionID.String()),
	)

	c.Status(http.StatusNoContent)
}
