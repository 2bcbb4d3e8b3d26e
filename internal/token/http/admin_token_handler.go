package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/denis-papin/doka.one/internal/errors"
	"github.com/denis-papin/doka.one/internal/httputil"
	"github.com/denis-papin/doka.one/internal/token/http/dto"
	tokenUsecase "github.com/denis-papin/doka.one/internal/token/usecase"
	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// AdminTokenHandler handles HTTP requests for operator token minting.
type AdminTokenHandler struct {
	issuer tokenUsecase.Issuer
	logger *slog.Logger
}

// NewAdminTokenHandler creates a new admin token handler.
func NewAdminTokenHandler(issuer tokenUsecase.Issuer, logger *slog.Logger) *AdminTokenHandler {
	return &AdminTokenHandler{
		issuer: issuer,
		logger: logger,
	}
}

// IssueAdminTokenHandler mints an admin-generated token for a customer.
// POST /v1/admin/tokens - Requires an authenticated admin identity.
// Returns 201 Created with the token and its expiration.
func (h *AdminTokenHandler) IssueAdminTokenHandler(c *gin.Context) {
	sc, ok := GetSecurityContext(c.Request.Context())
	if !ok || sc == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.IssueAdminTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, claims, err := h.issuer.IssueAdminToken(
		c.Request.Context(),
		req.CustomerCode,
		sc.UserID.String(),
		time.Duration(req.TTLSeconds)*time.Second,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("admin token issued",
		slog.String("customer_code", req.CustomerCode),
		slog.String("actor", sc.UserID.String()),
		slog.String("session_id", claims.SessionID.String()),
	)

	c.JSON(http.StatusCreated, dto.MapClaimsToAdminTokenResponse(token, claims))
}
