// Package http provides HTTP handlers for encrypted file storage operations.
package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/denis-papin/doka.one/internal/errors"
	filestoreUsecase "github.com/denis-papin/doka.one/internal/filestore/usecase"
	"github.com/denis-papin/doka.one/internal/httputil"
	tokenHTTP "github.com/denis-papin/doka.one/internal/token/http"
)

// maxUploadSize caps the accepted request body for file uploads.
const maxUploadSize = 256 << 20 // 256 MiB

// FileHandler handles HTTP requests for encrypted file storage.
type FileHandler struct {
	fileUseCase filestoreUsecase.FileUseCase
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler.
func NewFileHandler(fileUseCase filestoreUsecase.FileUseCase, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileUseCase: fileUseCase,
		logger:      logger,
	}
}

// FileResponse represents stored file metadata in API responses.
type FileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type,omitempty"`
	Size      int64  `json:"size"`
	PartCount int    `json:"part_count"`
}

func requireScope(c *gin.Context, logger *slog.Logger) (string, bool) {
	sc, ok := tokenHTTP.GetSecurityContext(c.Request.Context())
	if !ok || sc == nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		return "", false
	}
	return sc.CustomerCode, true
}

// UploadFileHandler stores a file encrypted under the caller's customer key.
// POST /v1/files - Requires an authenticated identity.
//
// The file name comes from the X-File-Name header and the content type from
// Content-Type; the raw request body is the file content.
// Returns 201 Created with the file metadata.
func (h *FileHandler) UploadFileHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	name := c.GetHeader("X-File-Name")
	if name == "" {
		httputil.HandleBadRequestGin(c, apperrors.New("X-File-Name header is required"), h.logger)
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadSize+1))
	if err != nil {
		httputil.HandleBadRequestGin(c, apperrors.Wrap(err, "failed to read request body"), h.logger)
		return
	}
	if len(data) > maxUploadSize {
		httputil.HandleBadRequestGin(c, apperrors.New("file exceeds the maximum upload size"), h.logger)
		return
	}

	file, err := h.fileUseCase.Store(c.Request.Context(), customerCode, filestoreUsecase.StoreFileInput{
		Name:     name,
		MimeType: c.ContentType(),
		Data:     data,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("file stored",
		slog.String("customer_code", customerCode),
		slog.String("file_id", file.ID.String()),
		slog.Int64("size", file.Size),
		slog.Int("part_count", file.PartCount),
	)

	c.JSON(http.StatusCreated, FileResponse{
		ID:        file.ID.String(),
		Name:      file.Name,
		MimeType:  file.MimeType,
		Size:      file.Size,
		PartCount: file.PartCount,
	})
}

// DownloadFileHandler fetches and decrypts a stored file.
// GET /v1/files/:id - Requires an authenticated identity.
// Responds with the decrypted content as the body.
func (h *FileHandler) DownloadFileHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid file id"), h.logger)
		return
	}

	fetched, err := h.fileUseCase.Fetch(c.Request.Context(), customerCode, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	contentType := fetched.Ref.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("X-File-Name", fetched.Ref.Name)
	c.Data(http.StatusOK, contentType, fetched.Data)
}

// FileInfoHandler returns a stored file's metadata without decrypting it.
// GET /v1/files/:id/info - Requires an authenticated identity.
func (h *FileHandler) FileInfoHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid file id"), h.logger)
		return
	}

	file, err := h.fileUseCase.Info(c.Request.Context(), customerCode, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, FileResponse{
		ID:        file.ID.String(),
		Name:      file.Name,
		MimeType:  file.MimeType,
		Size:      file.Size,
		PartCount: file.PartCount,
	})
}

// ListFilesHandler lists the caller's stored files.
// GET /v1/files - Requires an authenticated identity.
func (h *FileHandler) ListFilesHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	files, err := h.fileUseCase.List(c.Request.Context(), customerCode)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	responses := make([]FileResponse, 0, len(files))
	for i := range files {
		responses = append(responses, FileResponse{
			ID:        files[i].ID.String(),
			Name:      files[i].Name,
			MimeType:  files[i].MimeType,
			Size:      files[i].Size,
			PartCount: files[i].PartCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"files": responses})
}

// DeleteFileHandler removes a stored file and its encrypted blocks.
// DELETE /v1/files/:id - Requires an authenticated identity.
// Returns 204 No Content on success.
func (h *FileHandler) DeleteFileHandler(c *gin.Context) {
	customerCode, ok := requireScope(c, h.logger)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, apperrors.New("invalid file id"), h.logger)
		return
	}

	if err := h.fileUseCase.Delete(c.Request.Context(), customerCode, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
