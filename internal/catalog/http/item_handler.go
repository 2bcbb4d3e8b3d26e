// Package http provides HTTP handlers for catalog operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
	"github.com/denis-papin/doka.one/internal/catalog/http/dto"
	catalogUsecase "github.com/denis-papin/doka.one/internal/catalog/usecase"
	apperrors "github.com/denis-papin/doka.one/internal/errors"
	"github.com/denis-papin/doka.one/internal/httputil"
	tokenHTTP "github.com/denis-papin/doka.one/internal/token/http"
	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// ItemHandler handles HTTP requests for catalog item operations.
// The tenant scope always comes from the validated security context, never
// from the request body or query.
type ItemHandler struct {
	catalogUseCase catalogUsecase.CatalogUseCase
	logger         *slog.Logger
}

// NewItemHandler creates a new item handler.
func NewItemHandler(catalogUseCase catalogUsecase.CatalogUseCase, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		catalogUseCase: catalogUseCase,
		logger:         logger,
	}
}

// requireScope extracts the tenant scope from the request's security context.
func requireScope(c *gin.Context, logger *slog.Logger) (string, bool) {
	sc, ok := tokenHTTP.GetSecurityContext(c.Request.Context())
	if !ok || sc == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		return "", false
	}
	return sc.CustomerCode, true
}

// CreateItemHandler creates a catalog item.
// POST /v1/items - Requires an authenticated identity.
func (h *ItemHandler) CreateItemHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := catalogUsecase.CreateItemInput{Name: req.Name}
	if req.FileID != "" {
		fileID, err := uuid.Parse(req.FileID)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				apperrors.New("invalid file_id format: must be a valid UUID"),
				h.logger)
			return
		}
		input.FileID = &fileID
	}
	for _, tv := range req.Tags {
		tagID, err := uuid.Parse(tv.TagID)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				apperrors.New("invalid tag_id format: must be a valid UUID"),
				h.logger)
			return
		}
		input.Tags = append(input.Tags, catalogDomain.TagValue{TagID: tagID, Value: tv.Value})
	}

	item, err := h.catalogUseCase.CreateItem(c.Request.Context(), customerCode, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapItemToResponse(item))
}

// GetItemHandler retrieves a catalog item by id.
// GET /v1/items/:id - Requires an authenticated identity.
func (h *ItemHandler) GetItemHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid item id"), h.logger)
		return
	}

	item, err := h.catalogUseCase.GetItem(c.Request.Context(), customerCode, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapItemToResponse(item))
}

// ListItemsHandler returns a page of the caller's items.
// GET /v1/items - Requires an authenticated identity.
func (h *ItemHandler) ListItemsHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	items, err := h.catalogUseCase.ListItems(c.Request.Context(), customerCode, limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListItemsResponse{Data: []dto.ItemResponse{}}
	for _, item := range items {
		response.Data = append(response.Data, dto.MapItemToResponse(item))
	}

	c.JSON(http.StatusOK, response)
}

// DeleteItemHandler removes a catalog item.
// DELETE /v1/items/:id - Requires an authenticated identity.
// Returns 204 No Content on success.
func (h *ItemHandler) DeleteItemHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid item id"), h.logger)
		return
	}

	if err := h.catalogUseCase.DeleteItem(c.Request.Context(), customerCode, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
