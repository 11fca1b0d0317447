// Package controller coordinates the bills pages: it fetches and persists
// through the bill store, selects what the page shows and handles the
// page's local interactions. Every collaborator is injected.
package controller

import (
	"context"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/view"
	"github.com/garyjia/billed/internal/domain/entity"
)

const (
	// ModalReceiptID identifies the receipt preview modal
	ModalReceiptID = "modaleFile"

	// AttrBillURL is the attribute carrying a row's receipt URL
	AttrBillURL = "data-bill-url"

	// DefaultPreviewWidth is the receipt image width when none is configured
	DefaultPreviewWidth = 500
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// BillsDeps are the collaborators of a bills page activation
type BillsDeps struct {
	Document     port.Document
	Navigate     port.Navigate
	Store        port.BillStore
	Storage      port.KeyValueStore
	Renderer     port.Renderer
	Logger       Logger
	PreviewWidth int
}

// BillsController drives the bills list page
type BillsController struct {
	deps BillsDeps

	mu      sync.Mutex
	state   view.State
	session *entity.Session
}

// NewBillsController creates a controller for one page activation
func NewBillsController(deps BillsDeps) *BillsController {
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.PreviewWidth <= 0 {
		deps.PreviewWidth = DefaultPreviewWidth
	}
	return &BillsController{deps: deps, state: view.Loading{}}
}

// State returns the current view state
func (c *BillsController) State() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the identity read at activation, nil if none
func (c *BillsController) Session() *entity.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Activate fetches the bills and renders them newest first. Store errors
// are shown with their message untouched and are not retried.
func (c *BillsController) Activate(ctx context.Context) view.State {
	c.setState(view.Loading{})

	session, err := LoadSession(ctx, c.deps.Storage)
	if err != nil {
		c.deps.Logger.Error("Failed to read session", "error", err)
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	if c.deps.Store == nil {
		return c.setState(view.Loaded{})
	}

	bills, err := c.deps.Store.List(ctx)
	if err != nil {
		c.deps.Logger.Error("Failed to fetch bills", "error", err)
		return c.setState(view.Failure{Message: err.Error()})
	}

	return c.setState(view.Loaded{Bills: c.rows(session, bills)})
}

// Bills returns the session's bills in display order without rendering
func (c *BillsController) Bills(ctx context.Context) ([]*entity.Bill, error) {
	session, err := LoadSession(ctx, c.deps.Storage)
	if err != nil {
		return nil, err
	}
	if c.deps.Store == nil {
		return nil, nil
	}
	bills, err := c.deps.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return entity.SortByDateDesc(ownedBy(session, bills)), nil
}

// HandleClickNewBill navigates to the bill creation form
func (c *BillsController) HandleClickNewBill() {
	if c.deps.Navigate != nil {
		c.deps.Navigate(entity.RouteNewBill)
	}
}

// HandleClickIconEye opens the receipt modal for the clicked row. A missing
// or non-image URL still opens the modal, without an image.
func (c *BillsController) HandleClickIconEye(target view.Element) {
	fileURL := target.Attr(AttrBillURL)
	if !IsDisplayableImage(fileURL) {
		fileURL = ""
	}

	markup, err := c.deps.Renderer.ReceiptModal(fileURL, c.deps.PreviewWidth)
	if err != nil {
		c.deps.Logger.Error("Failed to render receipt modal", "error", err)
		return
	}
	c.deps.Document.ShowModal(ModalReceiptID, markup)
}

// IsDisplayableImage returns true if the URL points at an image the modal can show
func IsDisplayableImage(fileURL string) bool {
	if fileURL == "" {
		return false
	}
	p := fileURL
	if u, err := url.Parse(fileURL); err == nil {
		p = u.Path
	}
	return imageExtensions[strings.ToLower(path.Ext(p))]
}

func (c *BillsController) rows(session *entity.Session, bills []*entity.Bill) []view.Row {
	ordered := entity.SortByDateDesc(ownedBy(session, bills))
	rows := make([]view.Row, 0, len(ordered))
	for _, b := range ordered {
		rows = append(rows, view.NewRow(b))
	}
	return rows
}

func (c *BillsController) setState(state view.State) view.State {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	markup, err := c.deps.Renderer.BillsPage(state)
	if err != nil {
		c.deps.Logger.Error("Failed to render bills page", "error", err)
		return state
	}
	c.deps.Document.SetBody(markup)
	return state
}

// ownedBy keeps the bills the session may list. Without a session nothing
// is filtered; gating anonymous access belongs to the host.
func ownedBy(session *entity.Session, bills []*entity.Bill) []*entity.Bill {
	if session == nil {
		return bills
	}
	owned := make([]*entity.Bill, 0, len(bills))
	for _, b := range bills {
		if session.Owns(b) {
			owned = append(owned, b)
		}
	}
	return owned
}
