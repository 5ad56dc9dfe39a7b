package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/middleware"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
)

// filesField is the multipart field holding attachments.
const filesField = "files"

// UploadLimits bounds the multipart disaster endpoint.
type UploadLimits struct {
	MaxFiles     int
	MaxFileBytes int64
}

// DisasterHandler handles disaster endpoints.
type DisasterHandler struct {
	disasterService core.DisasterService
	limits          UploadLimits
	logger          *zap.Logger
}

func NewDisasterHandler(ds core.DisasterService, limits UploadLimits, logger *zap.Logger) *DisasterHandler {
	return &DisasterHandler{disasterService: ds, limits: limits, logger: logger}
}

// Report handles POST /api/disaster. Citizens report without attachments.
func (h *DisasterHandler) Report(c *gin.Context) {
	var req models.CreateDisasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	h.create(c, req, nil)
}

// AddDisaster handles POST /api/disaster/addDisaster (multipart/form-data).
// Text fields follow the JSON names; structured fields may be JSON strings.
func (h *DisasterHandler) AddDisaster(c *gin.Context) {
	// Bound the whole body: every file at the limit plus room for the fields.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.limits.MaxFiles)*h.limits.MaxFileBytes+(1<<20))
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "Invalid multipart form", err)
		return
	}

	req, err := decodeForm(form.Value)
	if err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}

	files := form.File[filesField]
	if len(files) > h.limits.MaxFiles {
		badRequest(c, fmt.Sprintf("Too many files. Maximum is %d", h.limits.MaxFiles), nil)
		return
	}
	uploads := make([]core.Upload, 0, len(files))
	for _, fh := range files {
		if fh.Size > h.limits.MaxFileBytes {
			badRequest(c, fmt.Sprintf("File %s is too large. Maximum size is %dMB", fh.Filename, h.limits.MaxFileBytes>>20), nil)
			return
		}
		uploads = append(uploads, toUpload(fh))
	}
	h.create(c, req, uploads)
}

func (h *DisasterHandler) create(c *gin.Context, req models.CreateDisasterRequest, uploads []core.Upload) {
	d, err := h.disasterService.CreateDisaster(c.Request.Context(), middleware.ActorFrom(c), req, uploads)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Disaster added successfully", d)
}

// decodeForm reuses the JSON decoders, which accept the string forms
// multipart clients send.
func decodeForm(values map[string][]string) (models.CreateDisasterRequest, error) {
	flat := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 && v[0] != "" {
			flat[k] = v[0]
		}
	}
	var req models.CreateDisasterRequest
	raw, err := json.Marshal(flat)
	if err != nil {
		return req, err
	}
	err = json.Unmarshal(raw, &req)
	return req, err
}

func toUpload(fh *multipart.FileHeader) core.Upload {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return core.Upload{
		OriginalName: fh.Filename,
		ContentType:  contentType,
		Size:         fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ListDisasters handles GET /api/disaster
func (h *DisasterHandler) ListDisasters(c *gin.Context) {
	page := query.ParsePage(c.Query("page"), c.Query("limit"))
	items, pagination, err := h.disasterService.ListDisasters(c.Request.Context(), query.DisasterFilter(c.Request.URL.Query()), page)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondPage(c, items, pagination)
}

// DisasterTypes handles GET /api/disaster/types
func (h *DisasterHandler) DisasterTypes(c *gin.Context) {
	types, err := h.disasterService.DisasterTypes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", types)
}

// GetDisaster handles GET /api/disaster/:id
func (h *DisasterHandler) GetDisaster(c *gin.Context) {
	d, err := h.disasterService.GetDisaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", d)
}

// UpdateDisaster handles PUT /api/disaster/:id
func (h *DisasterHandler) UpdateDisaster(c *gin.Context) {
	var req models.UpdateDisasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	d, err := h.disasterService.UpdateDisaster(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Disaster updated successfully", d)
}

// DeleteDisaster handles DELETE /api/disaster/:id
func (h *DisasterHandler) DeleteDisaster(c *gin.Context) {
	if err := h.disasterService.DeleteDisaster(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Disaster deleted successfully", nil)
}

// DownloadFile handles GET /api/disaster/:id/files/:fileId/download
func (h *DisasterHandler) DownloadFile(c *gin.Context) {
	meta, rc, err := h.disasterService.OpenFile(c.Request.Context(), c.Param("id"), c.Param("fileId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer rc.Close()

	contentType := meta.Mimetype
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": meta.OriginalName})
	c.DataFromReader(http.StatusOK, meta.Size, contentType, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}

// DeleteFile handles DELETE /api/disaster/:id/files/:fileId
func (h *DisasterHandler) DeleteFile(c *gin.Context) {
	if err := h.disasterService.DeleteFile(c.Request.Context(), c.Param("id"), c.Param("fileId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "File deleted successfully", nil)
}
