package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
)

// ListBills handles GET /api/bills
func (h *Handlers) ListBills(c *gin.Context) {
	bills, err := h.deps.Service.List(c.Request.Context())
	if err != nil {
		h.apiError(c, err)
		return
	}
	if bills == nil {
		bills = []*entity.Bill{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    bills,
	})
}

// CreateBill handles POST /api/bills
func (h *Handlers) CreateBill(c *gin.Context) {
	var bill entity.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid bill payload",
		})
		return
	}

	created, err := h.deps.Service.Create(c.Request.Context(), &bill)
	if err != nil {
		h.apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    created,
	})
}

// UpdateBill handles PUT /api/bills/:id
func (h *Handlers) UpdateBill(c *gin.Context) {
	var bill entity.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid bill payload",
		})
		return
	}
	bill.ID = c.Param("id")

	updated, err := h.deps.Service.Update(c.Request.Context(), &bill)
	if err != nil {
		h.apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    updated,
	})
}

// UploadFile handles POST /api/files (multipart: file, email)
func (h *Handlers) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "file is required",
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		h.internalError(c, err)
		return
	}
	defer f.Close()

	uploaded, err := h.deps.Service.Upload(c.Request.Context(), port.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Email:       c.PostForm("email"),
		Content:     f,
	})
	if err != nil {
		h.apiError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    uploaded,
	})
}

// ServeFile handles GET <file url prefix>/*filepath. Only content that sniffs
// as a receipt type is served, with that type and no browser sniffing.
func (h *Handlers) ServeFile(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("filepath"), "/")
	if rel == "" || !h.deps.Files.Exists(c.Request.Context(), rel) {
		c.Status(http.StatusNotFound)
		return
	}

	content, err := h.deps.Files.Read(c.Request.Context(), rel)
	if err != nil {
		h.logger.Error("Failed to read receipt", "path", rel, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	contentType, ok := entity.SniffReceipt(content)
	if !ok {
		h.logger.Error("Refusing to serve non receipt content", "path", rel, "mime", contentType)
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Security-Policy", "default-src 'none'; img-src 'self'; style-src 'unsafe-inline'")
	c.Data(http.StatusOK, contentType, content)
}

func (h *Handlers) apiError(c *gin.Context, err error) {
	status := apiStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("API request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, Response{
		Success: false,
		Error:   err.Error(),
	})
}

func apiStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrBillNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrEmptyUpload),
		errors.Is(err, service.ErrUnknownReceipt),
		errors.Is(err, service.ErrUnsupportedReceipt),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidDate),
		errors.Is(err, entity.ErrInvalidStatus),
		errors.Is(err, entity.ErrFileReferenceMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
