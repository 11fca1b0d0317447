package port

import (
	"context"

	"github.com/garyjia/billed/internal/application/view"
)

// KeyValueStore is the local persistent storage the session is read from
type KeyValueStore interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}

// Navigate switches the host view to the given route
type Navigate func(route string)

// Document is the rendering target of one page activation
type Document interface {
	// SetBody replaces the page content
	SetBody(markup string)

	// ShowModal opens the modal identified by id with the given content
	ShowModal(id, markup string)
}

// Renderer turns page models into markup
type Renderer interface {
	BillsPage(state view.State) (string, error)
	NewBillPage(form view.NewBillForm) (string, error)
	ReceiptModal(fileURL string, width int) (string, error)
}
