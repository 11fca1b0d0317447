package http

import (
	"sync"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Page paths the navigation routes map to
const (
	PathBills   = "/bills"
	PathNewBill = "/bills/new"
)

var routePaths = map[string]string{
	entity.RouteBills:   PathBills,
	entity.RouteNewBill: PathNewBill,
}

// pageDocument buffers what a controller renders during one request
type pageDocument struct {
	mu     sync.Mutex
	body   string
	modals map[string]string
}

func newPageDocument() *pageDocument {
	return &pageDocument{modals: make(map[string]string)}
}

func (d *pageDocument) SetBody(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.body = markup
}

func (d *pageDocument) ShowModal(id, markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modals[id] = markup
}

func (d *pageDocument) Body() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.body
}

func (d *pageDocument) Modal(id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	markup, ok := d.modals[id]
	return markup, ok
}

// pageNavigator records the last route a controller navigated to
type pageNavigator struct {
	mu    sync.Mutex
	route string
}

func (n *pageNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.route = route
}

// Location returns the path to redirect to, false when no navigation happened
func (n *pageNavigator) Location() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.route == "" {
		return "", false
	}
	path, ok := routePaths[n.route]
	if !ok {
		return PathBills, true
	}
	return path, true
}
