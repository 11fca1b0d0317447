package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/view"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/kv"
)

const (
	visitorKey = "visitor_id"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps   Deps
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Deps, logger Logger) *Handlers {
	return &Handlers{
		deps:   deps,
		logger: logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// SessionRequest selects the identity the pages act as
type SessionRequest struct {
	Type  string `form:"type" json:"type" binding:"required,oneof=Employee Admin"`
	Email string `form:"email" json:"email" binding:"required,email"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	healthy := true
	var components interface{}
	if h.deps.Health != nil {
		healthy, components = h.deps.Health(c.Request.Context())
	}

	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    "1.0.0",
		Components: components,
	}
	status := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, Response{
		Success: healthy,
		Data:    response,
	})
}

// visitorMiddleware gives every browser its own session namespace through
// an opaque cookie
func (h *Handlers) visitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(h.deps.CookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(h.deps.CookieName, sid, 0, "/", "", false, true)
		}
		c.Set(visitorKey, sid)
		c.Next()
	}
}

func (h *Handlers) visitorStore(c *gin.Context) port.KeyValueStore {
	if h.deps.Sessions == nil {
		return nil
	}
	return kv.Namespace(h.deps.Sessions, c.GetString(visitorKey))
}

// SetSession handles POST /session. It records the identity only; there is
// no credential check.
func (h *Handlers) SetSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "type (Employee or Admin) and a valid email are required",
		})
		return
	}

	session := entity.Session{Type: req.Type, Email: req.Email}
	payload, err := json.Marshal(session)
	if err != nil {
		h.internalError(c, err)
		return
	}

	store := h.visitorStore(c)
	if store == nil {
		h.internalError(c, errors.New("no session store configured"))
		return
	}
	if err := store.SetItem(c.Request.Context(), entity.SessionKey, string(payload)); err != nil {
		h.logger.Error("Failed to store session", "error", err)
		h.internalError(c, err)
		return
	}

	if c.ContentType() == gin.MIMEJSON {
		c.JSON(http.StatusOK, Response{Success: true, Data: session})
		return
	}
	c.Redirect(http.StatusSeeOther, PathBills)
}

func (h *Handlers) billsController(c *gin.Context, doc port.Document, nav *pageNavigator) *controller.BillsController {
	return controller.NewBillsController(controller.BillsDeps{
		Document:     doc,
		Navigate:     nav.Navigate,
		Store:        h.deps.Store,
		Storage:      h.visitorStore(c),
		Renderer:     h.deps.Renderer,
		Logger:       h.logger,
		PreviewWidth: h.deps.PreviewWidth,
	})
}

// BillsPage handles GET /bills
func (h *Handlers) BillsPage(c *gin.Context) {
	doc := newPageDocument()
	ctrl := h.billsController(c, doc, &pageNavigator{})

	ctrl.Activate(c.Request.Context())
	h.writeHTML(c, http.StatusOK, doc.Body())
}

// ClickNewBill handles GET /bills/new-bill, the list page's new bill button
func (h *Handlers) ClickNewBill(c *gin.Context) {
	nav := &pageNavigator{}
	ctrl := h.billsController(c, newPageDocument(), nav)

	ctrl.HandleClickNewBill()
	h.redirect(c, nav)
}

// ReceiptPreview handles GET /bills/preview?url=, returning the modal fragment
func (h *Handlers) ReceiptPreview(c *gin.Context) {
	doc := newPageDocument()
	ctrl := h.billsController(c, doc, &pageNavigator{})

	ctrl.HandleClickIconEye(view.Element{
		TestID: "icon-eye",
		Attrs:  map[string]string{controller.AttrBillURL: c.Query("url")},
	})

	modal, ok := doc.Modal(controller.ModalReceiptID)
	if !ok {
		h.internalError(c, errors.New("receipt modal was not rendered"))
		return
	}
	h.writeHTML(c, http.StatusOK, modal)
}

// ExportBills handles GET /bills/export.xlsx
func (h *Handlers) ExportBills(c *gin.Context) {
	ctrl := h.billsController(c, newPageDocument(), &pageNavigator{})

	bills, err := ctrl.Bills(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load bills for export", "error", err)
		h.errorPage(c, http.StatusBadGateway, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Export.WriteBills(&buf, bills); err != nil {
		h.logger.Error("Failed to write export", "error", err)
		h.errorPage(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="notes-de-frais.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handlers) newBillController(c *gin.Context, doc port.Document, nav *pageNavigator) *controller.NewBillController {
	return controller.NewNewBillController(controller.NewBillDeps{
		Document: doc,
		Navigate: nav.Navigate,
		Store:    h.deps.Store,
		Storage:  h.visitorStore(c),
		Renderer: h.deps.Renderer,
		Logger:   h.logger,
	})
}

// NewBillPage handles GET /bills/new
func (h *Handlers) NewBillPage(c *gin.Context) {
	doc := newPageDocument()
	ctrl := h.newBillController(c, doc, &pageNavigator{})

	if err := ctrl.Activate(c.Request.Context()); err != nil {
		h.logger.Error("Failed to open new bill form", "error", err)
		h.errorPage(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeHTML(c, http.StatusOK, doc.Body())
}

// SubmitNewBill handles POST /bills/new: the picked file goes through the
// file change handler, then the form is submitted
func (h *Handlers) SubmitNewBill(c *gin.Context) {
	ctx := c.Request.Context()
	doc := newPageDocument()
	nav := &pageNavigator{}
	ctrl := h.newBillController(c, doc, nav)

	if err := ctrl.Activate(ctx); err != nil {
		h.logger.Error("Failed to open new bill form", "error", err)
		h.errorPage(c, http.StatusInternalServerError, err.Error())
		return
	}

	ev, err := fileChangeEvent(c)
	if err != nil {
		h.errorPage(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := ctrl.HandleChangeFile(ctx, ev); err != nil {
		h.submissionError(c, doc, err)
		return
	}

	err = ctrl.HandleSubmit(ctx, controller.SubmitEvent{Fields: view.FormFields{
		Type:       c.PostForm("type"),
		Name:       c.PostForm("name"),
		Date:       c.PostForm("date"),
		Amount:     c.PostForm("amount"),
		VAT:        c.PostForm("vat"),
		Pct:        c.PostForm("pct"),
		Commentary: c.PostForm("commentary"),
	}})
	if err != nil {
		h.submissionError(c, doc, err)
		return
	}

	h.redirect(c, nav)
}

func (h *Handlers) submissionError(c *gin.Context, doc *pageDocument, err error) {
	var verr *controller.ValidationError
	var serr *controller.SubmissionError

	switch {
	case errors.As(err, &verr):
		h.writeHTML(c, http.StatusUnprocessableEntity, doc.Body())
	case errors.As(err, &serr):
		h.errorPage(c, http.StatusInternalServerError, serr.Err.Error())
	default:
		h.logger.Error("Bill submission rejected", "error", err)
		h.errorPage(c, http.StatusConflict, err.Error())
	}
}

// fileChangeEvent reads the receipt part of the form. A form without a
// file yields an empty event, which the controller rejects.
func fileChangeEvent(c *gin.Context) (controller.FileChangeEvent, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return controller.FileChangeEvent{}, nil
	}
	if err != nil {
		return controller.FileChangeEvent{}, err
	}

	f, err := header.Open()
	if err != nil {
		return controller.FileChangeEvent{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return controller.FileChangeEvent{}, err
	}

	return controller.FileChangeEvent{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func (h *Handlers) redirect(c *gin.Context, nav *pageNavigator) {
	location, ok := nav.Location()
	if !ok {
		location = PathBills
	}
	c.Redirect(http.StatusSeeOther, location)
}

func (h *Handlers) writeHTML(c *gin.Context, status int, markup string) {
	c.Data(status, "text/html; charset=utf-8", []byte(markup))
}

func (h *Handlers) errorPage(c *gin.Context, status int, message string) {
	markup, err := h.deps.Renderer.ErrorPage(message)
	if err != nil {
		h.logger.Error("Failed to render error page", "error", err)
		c.String(status, message)
		return
	}
	h.writeHTML(c, status, markup)
}

func (h *Handlers) internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   err.Error(),
	})
}
