package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	csvimport "github.com/ikkasa/orderhub/internal/infrastructure/import"
	"github.com/ikkasa/orderhub/internal/infrastructure/logger"
	"github.com/ikkasa/orderhub/internal/infrastructure/storage"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ImportService is the spreadsheet import surface the handler depends on
type ImportService interface {
	ImportFile(ctx context.Context, path, originalName string, mode orderapp.ImportMode) (*orderapp.ImportResult, error)
}

// UploadHandler accepts CSV and Excel order uploads
type UploadHandler struct {
	BaseHandler
	svc         ImportService
	archive     storage.Archive
	uploadDir   string
	defaultMode orderapp.ImportMode
}

// NewUploadHandler creates a new UploadHandler. A nil archive disables
// archiving.
func NewUploadHandler(svc ImportService, archive storage.Archive, uploadDir string, defaultMode orderapp.ImportMode) *UploadHandler {
	if archive == nil {
		archive = storage.NoopArchive{}
	}
	if defaultMode == "" {
		defaultMode = orderapp.ModeMerge
	}
	return &UploadHandler{
		svc:         svc,
		archive:     archive,
		uploadDir:   uploadDir,
		defaultMode: defaultMode,
	}
}

// RegisterRoutes mounts the upload endpoint on rg
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/csv/upload", h.Upload)
}

// Upload handles POST /csv/upload (multipart field "file").
// The mode comes from the "mode" query or form value.
func (h *UploadHandler) Upload(c *gin.Context) {
	defer func() {
		if c.Request.MultipartForm != nil {
			_ = c.Request.MultipartForm.RemoveAll()
		}
	}()

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Upload exceeds maximum allowed size")
			return
		}
		h.BadRequest(c, "File is required")
		return
	}
	if !csvimport.IsSupported(fh.Filename) {
		h.ErrorWithDetails(c, http.StatusBadRequest, dto.ErrCodeValidation, "Unsupported file type",
			dto.ValidationDetails{Field: "file"})
		return
	}

	modeName := c.Query("mode")
	if modeName == "" {
		modeName = c.PostForm("mode")
	}
	mode, err := orderapp.ParseImportMode(modeName, h.defaultMode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	path, err := h.saveTemp(fh)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("Failed to store upload", zap.Error(err))
		h.InternalError(c, "Failed to store upload")
		return
	}
	defer os.Remove(path)

	ctx := c.Request.Context()
	h.archiveUpload(ctx, path, fh)

	result, err := h.svc.ImportFile(ctx, path, fh.Filename, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// saveTemp copies the upload under uploadDir with a generated name that keeps
// the original extension.
func (h *UploadHandler) saveTemp(fh *multipart.FileHeader) (string, error) {
	dir := h.uploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return dst.Name(), nil
}

// archiveUpload keeps a copy of the raw file. Failures never fail the import.
func (h *UploadHandler) archiveUpload(ctx context.Context, path string, fh *multipart.FileHeader) {
	log := logger.FromContext(ctx)
	f, err := os.Open(path)
	if err != nil {
		log.Warn("Failed to open upload for archiving", zap.Error(err))
		return
	}
	defer f.Close()

	key, err := h.archive.Archive(ctx, fh.Filename, f, fh.Header.Get("Content-Type"))
	if err != nil {
		log.Warn("Failed to archive upload", zap.String("file", fh.Filename), zap.Error(err))
		return
	}
	if key != "" {
		log.Info("Upload archived", zap.String("file", fh.Filename), zap.String("key", key))
	}
}
