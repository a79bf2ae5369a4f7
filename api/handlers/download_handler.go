package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/yourusername/tiktok-bulk-go/internal/app"
	"github.com/yourusername/tiktok-bulk-go/internal/domain"
	"go.uber.org/zap"
)

// BatchService runs one validated batch to completion and returns its result.
type BatchService interface {
	Submit(ctx context.Context, urls []string) (*app.BatchResult, error)
}

// DownloadHandler handles the batch download endpoint
type DownloadHandler struct {
	validator *app.URLValidator
	batches   BatchService
	janitor   *app.Janitor
	fs        afero.Fs
	logger    *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(
	validator *app.URLValidator,
	batches BatchService,
	janitor *app.Janitor,
	fs afero.Fs,
	logger *zap.Logger,
) *DownloadHandler {
	return &DownloadHandler{
		validator: validator,
		batches:   batches,
		janitor:   janitor,
		fs:        fs,
		logger:    logger,
	}
}

// DownloadRequest represents a batch download request body
type DownloadRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// Download handles POST /api/download. It validates the batch, runs it off
// the request path, streams the resulting archive back and schedules
// cleanup of the workspace and archive regardless of delivery outcome.
func (h *DownloadHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object with a urls array"})
		return
	}

	urls, err := h.validator.Validate(req.URLs)
	if err != nil {
		var invalid *domain.InvalidInputError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
			return
		}
		h.logger.Error("Validation failed unexpectedly", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	result, err := h.batches.Submit(c.Request.Context(), urls)
	if result != nil {
		// runs after the response body has been streamed (or failed to be)
		defer h.janitor.Remove(result.Paths()...)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNoArtifacts) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "none of the requested videos could be downloaded"})
			return
		}
		h.logger.Error("Batch job failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.streamArchive(c, result)
}

// streamArchive sends the finished archive with its summary headers.
func (h *DownloadHandler) streamArchive(c *gin.Context, result *app.BatchResult) {
	archive, err := h.fs.Open(result.Archive)
	if err != nil {
		h.logger.Error("Failed to open archive",
			zap.String("path", result.Archive),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer archive.Close()

	info, err := archive.Stat()
	if err != nil {
		h.logger.Error("Failed to stat archive",
			zap.String("path", result.Archive),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	counts, err := json.Marshal(result.Summary.Counts())
	if err != nil {
		h.logger.Error("Failed to encode summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Job.ArchiveName()))
	c.Header("X-Job-Id", result.Job.ID)
	c.Header("X-Download-Summary", string(counts))

	c.DataFromReader(http.StatusOK, info.Size(), "application/zip", archive, nil)
}
