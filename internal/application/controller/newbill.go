package controller

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/view"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// FileChangeEvent is a file picked in the receipt input. Content is nil when
// only the name is known; the MIME sniff is then skipped.
type FileChangeEvent struct {
	FileName    string
	ContentType string
	Content     []byte
}

// SubmitEvent carries the form values at submission time
type SubmitEvent struct {
	Fields view.FormFields
}

// stagedFile is the accepted receipt. uploaded is kept once the store holds
// it, so a manual resubmit after a failed creation does not upload again.
type stagedFile struct {
	name        string
	contentType string
	content     []byte
	uploaded    *port.UploadedFile
}

// NewBillDeps are the collaborators of a bill creation form
type NewBillDeps struct {
	Document port.Document
	Navigate port.Navigate
	Store    port.BillStore
	Storage  port.KeyValueStore
	Renderer port.Renderer
	Logger   Logger
}

// NewBillController owns the creation form from file choice to navigation
type NewBillController struct {
	deps NewBillDeps

	mu      sync.Mutex
	machine workflow.StateMachine
	staged  *stagedFile
	form    view.NewBillForm
	session *entity.Session
}

// NewNewBillController creates a controller for one creation form
func NewNewBillController(deps NewBillDeps) *NewBillController {
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	c := &NewBillController{
		deps: deps,
		form: view.NewBillForm{Types: entity.ExpenseTypes},
	}
	c.machine = workflow.NewSubmissionMachine(func(ctx context.Context) bool {
		return c.staged != nil
	})
	c.machine.OnTransition(func(from, to workflow.State, trigger workflow.Trigger) {
		c.deps.Logger.Info("Bill submission transition",
			"from", from.String(), "to", to.String(), "trigger", trigger.String())
	})
	return c
}

// Activate reads the session and renders the empty form
func (c *NewBillController) Activate(ctx context.Context) error {
	session, err := LoadSession(ctx, c.deps.Storage)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.render()
	return nil
}

// State returns the submission state
func (c *NewBillController) State() workflow.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Form returns a copy of the form as last rendered
func (c *NewBillController) Form() view.NewBillForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// HandleChangeFile validates the picked receipt locally. An accepted file is
// staged and clears any previous message; a rejected one clears the input,
// shows the message and returns a *ValidationError.
func (c *NewBillController) HandleChangeFile(ctx context.Context, ev FileChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.machine.Fire(ctx, workflow.TriggerChooseFile); err != nil {
		return err
	}

	contentType, ok := acceptReceipt(ev)
	if !ok {
		c.staged = nil
		c.form.FileName = ""
		c.form.ValidationError = entity.MsgInvalidFileType
		if err := c.machine.Fire(ctx, workflow.TriggerRejectFile); err != nil {
			return err
		}
		c.render()
		return &ValidationError{Field: "file", Message: entity.MsgInvalidFileType}
	}

	c.staged = &stagedFile{
		name:        filepath.Base(ev.FileName),
		contentType: contentType,
		content:     ev.Content,
	}
	c.form.FileName = c.staged.name
	c.form.ValidationError = ""
	if err := c.machine.Fire(ctx, workflow.TriggerAcceptFile); err != nil {
		return err
	}
	c.render()
	return nil
}

// HandleSubmit uploads the staged receipt, then creates the bill with the
// returned file reference and navigates to the bills list. The record is
// never created before the upload has completed.
func (c *NewBillController) HandleSubmit(ctx context.Context, ev SubmitEvent) error {
	c.mu.Lock()
	c.form.Fields = ev.Fields

	bill, verr := c.assemble(ev.Fields)
	if verr != nil {
		c.form.ValidationError = verr.Message
		c.render()
		c.mu.Unlock()
		return verr
	}

	if err := c.machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		c.mu.Unlock()
		return err
	}
	c.form.ValidationError = ""
	staged := c.staged
	uploaded := staged.uploaded
	c.mu.Unlock()

	if uploaded == nil {
		var err error
		uploaded, err = c.deps.Store.Upload(ctx, port.Upload{
			FileName:    staged.name,
			ContentType: staged.contentType,
			Email:       bill.Email,
			Content:     bytes.NewReader(staged.content),
		})
		if err != nil {
			return c.fail(ctx, StageUpload, err)
		}
		c.mu.Lock()
		staged.uploaded = uploaded
		c.mu.Unlock()
	}

	bill.FileURL = uploaded.FileURL
	bill.FileName = uploaded.FileName
	if bill.FileName == "" {
		bill.FileName = staged.name
	}

	if _, err := c.deps.Store.Create(ctx, bill); err != nil {
		return c.fail(ctx, StageCreate, err)
	}

	c.mu.Lock()
	err := c.machine.Fire(ctx, workflow.TriggerSucceed)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.deps.Logger.Info("Bill created", "email", bill.Email, "file_name", bill.FileName)
	if c.deps.Navigate != nil {
		c.deps.Navigate(entity.RouteBills)
	}
	return nil
}

func (c *NewBillController) fail(ctx context.Context, stage string, err error) error {
	c.deps.Logger.Error("Bill submission failed", "stage", stage, "error", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if ferr := c.machine.Fire(ctx, workflow.TriggerFail); ferr != nil {
		c.deps.Logger.Error("Failed to record submission failure", "error", ferr)
	}
	return &SubmissionError{Stage: stage, Err: err}
}

func (c *NewBillController) assemble(f view.FormFields) (*entity.Bill, *ValidationError) {
	if strings.TrimSpace(f.Type) == "" {
		return nil, &ValidationError{Field: "type", Message: "Veuillez choisir un type de dépense"}
	}

	amount, err := strconv.Atoi(strings.TrimSpace(f.Amount))
	if err != nil || amount < 0 {
		return nil, &ValidationError{Field: "amount", Message: "Le montant doit être un nombre entier positif"}
	}

	bill := &entity.Bill{
		Type:         strings.TrimSpace(f.Type),
		Name:         strings.TrimSpace(f.Name),
		Date:         strings.TrimSpace(f.Date),
		Amount:       amount,
		VAT:          strings.TrimSpace(f.VAT),
		Pct:          parsePct(f.Pct),
		Commentary:   f.Commentary,
		Status:       entity.StatusPending,
		CommentAdmin: "",
	}
	if _, err := bill.ParsedDate(); err != nil {
		return nil, &ValidationError{Field: "date", Message: "La date est invalide"}
	}
	if c.session != nil {
		bill.Email = c.session.Email
	}
	return bill, nil
}

// render must be called with mu held
func (c *NewBillController) render() {
	markup, err := c.deps.Renderer.NewBillPage(c.form)
	if err != nil {
		c.deps.Logger.Error("Failed to render new bill page", "error", err)
		return
	}
	c.deps.Document.SetBody(markup)
}

func parsePct(raw string) int {
	pct, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || pct < 0 {
		return entity.DefaultPct
	}
	return pct
}

// acceptReceipt checks the extension allow-list and, when bytes are
// available, the sniffed MIME type. It returns the content type to upload
// with. A file read as zero bytes is rejected.
func acceptReceipt(ev FileChangeEvent) (string, bool) {
	if !entity.IsReceiptFileName(ev.FileName) {
		return "", false
	}
	if ev.Content == nil {
		return ev.ContentType, true
	}
	return entity.SniffReceipt(ev.Content)
}
