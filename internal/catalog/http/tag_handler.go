package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogDomain "github.com/denis-papin/doka.one/internal/catalog/domain"
	"github.com/denis-papin/doka.one/internal/catalog/http/dto"
	catalogUsecase "github.com/denis-papin/doka.one/internal/catalog/usecase"
	"github.com/denis-papin/doka.one/internal/httputil"
	customValidation "github.com/denis-papin/doka.one/internal/validation"
)

// TagHandler handles HTTP requests for tag definition operations.
type TagHandler struct {
	catalogUseCase catalogUsecase.CatalogUseCase
	logger         *slog.Logger
}

// NewTagHandler creates a new tag handler.
func NewTagHandler(catalogUseCase catalogUsecase.CatalogUseCase, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		catalogUseCase: catalogUseCase,
		logger:         logger,
	}
}

// CreateTagHandler creates a tag definition.
// POST /v1/tags - Requires an authenticated identity.
func (h *TagHandler) CreateTagHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tag, err := h.catalogUseCase.CreateTag(c.Request.Context(), customerCode, catalogUsecase.CreateTagInput{
		Name:      req.Name,
		ValueType: catalogDomain.TagValueType(req.ValueType),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTagToResponse(tag))
}

// ListTagsHandler returns the caller's tag definitions.
// GET /v1/tags - Requires an authenticated identity.
func (h *TagHandler) ListTagsHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	tags, err := h.catalogUseCase.ListTags(c.Request.Context(), customerCode)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.ListTagsResponse{Data: []dto.TagResponse{}}
	for _, tag := range tags {
		response.Data = append(response.Data, dto.MapTagToResponse(tag))
	}

	c.JSON(http.StatusOK, response)
}
