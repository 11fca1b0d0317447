package view

// Element is the clicked page element as seen by a controller: its test id
// and its attributes, data-* attributes included.
type Element struct {
	TestID string
	Attrs  map[string]string
}

// Attr returns the attribute value or an empty string
func (e Element) Attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}
