// Package http provides HTTP handlers for customer lifecycle and login operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denis-papin/doka.one/internal/customer/http/dto"
	customerUsecase "github.com/denis-papin/doka.one/internal/customer/usecase"
	"github.com/denis-papin/doka.one/internal/httputil"
	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// CustomerHandler handles HTTP requests for customer lifecycle operations.
type CustomerHandler struct {
	customerUseCase customerUsecase.CustomerUseCase
	logger          *slog.Logger
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(
	customerUseCase customerUsecase.CustomerUseCase,
	logger *slog.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		customerUseCase: customerUseCase,
		logger:          logger,
	}
}

// CreateCustomerHandler provisions a new customer with its key and admin user.
// POST /v1/customers - Requires an authenticated admin identity.
// Returns 201 Created with the customer.
func (h *CustomerHandler) CreateCustomerHandler(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	customer, err := h.customerUseCase.Create(c.Request.Context(), customerUsecase.CreateCustomerInput{
		Code:          req.Code,
		Name:          req.Name,
		ContactEmail:  req.ContactEmail,
		AdminName:     req.AdminName,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("customer provisioned", slog.String("code", customer.Code))

	c.JSON(http.StatusCreated, dto.MapCustomerToResponse(customer))
}

// GetCustomerHandler retrieves a customer by code.
// GET /v1/customers/:code - Requires an authenticated admin identity.
func (h *CustomerHandler) GetCustomerHandler(c *gin.Context) {
	code := c.Param("code")

	customer, err := h.customerUseCase.Get(c.Request.Context(), code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCustomerToResponse(customer))
}

// DeleteCustomerHandler removes a customer and everything it owns.
// DELETE /v1/customers/:code - Requires an authenticated admin identity.
// Returns 204 No Content on success.
func (h *CustomerHandler) DeleteCustomerHandler(c *gin.Context) {
	code := c.Param("code")

	if err := h.customerUseCase.Delete(c.Request.Context(), code); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("customer deleted", slog.String("code", code))

	c.Status(http.StatusNoContent)
}
