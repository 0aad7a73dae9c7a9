// Package editor holds the geometry of the interactive template editor:
// drag and resize gestures on a zoomed canvas, multi-selection, alignment,
// distribution and page-level element operations.
//
// The editor works on the same element model and box math as the composer
// (doctpl.Element.Bounds), so what is arranged here is what gets printed.
package editor

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/geometry"
)

// DuplicateOffset is how far a duplicated element is moved from its source,
// in canvas pixels on both axes.
const DuplicateOffset = 10.0

// Editor edits one template in place. It is not safe for concurrent use.
type Editor struct {
	tpl      doctpl.Template
	canvas   geometry.Page
	page     int
	zoom     float64
	selected []string
	g        gesture
}

// New returns an editor over a normalized copy of t. A template without
// pages gets one empty page; an invalid layout falls back to A4 portrait.
func New(t *doctpl.Template) *Editor {
	var src doctpl.Template
	if t != nil {
		src = *t
	}
	e := &Editor{tpl: doctpl.Normalize(src), zoom: 1}
	if len(e.tpl.Pages) == 0 {
		e.tpl.Pages = []doctpl.Page{{}}
	}
	canvas, err := e.tpl.PageGeometry()
	if err != nil {
		canvas, _ = geometry.NewPage(geometry.FormatA4, geometry.Portrait, 0, 0)
	}
	e.canvas = canvas
	return e
}

// Template returns a copy of the edited template.
func (e *Editor) Template() doctpl.Template {
	out := e.tpl
	out.Pages = make([]doctpl.Page, len(e.tpl.Pages))
	for i, p := range e.tpl.Pages {
		p.Elements = slices.Clone(p.Elements)
		out.Pages[i] = p
	}
	return out
}

// Canvas returns the page geometry the editor lays elements out on.
func (e *Editor) Canvas() geometry.Page { return e.canvas }

// Zoom returns the current zoom factor.
func (e *Editor) Zoom() float64 { return e.zoom }

// SetZoom sets the zoom factor. Non-positive values are ignored.
func (e *Editor) SetZoom(z float64) {
	if z > 0 {
		e.zoom = z
	}
}

// Page returns the index of the page being edited.
func (e *Editor) Page() int { return e.page }

// PageCount returns the number of pages.
func (e *Editor) PageCount() int { return len(e.tpl.Pages) }

// SetPage switches to page i and clears the selection.
func (e *Editor) SetPage(i int) error {
	if i < 0 || i >= len(e.tpl.Pages) {
		return fmt.Errorf("editor: page %d: %w", i, certgen.ErrNotFound)
	}
	e.page = i
	e.ClearSelection()
	e.g = gesture{}
	return nil
}

// AddPage appends an empty page and switches to it.
func (e *Editor) AddPage() int {
	e.tpl.Pages = append(e.tpl.Pages, doctpl.Page{})
	_ = e.SetPage(len(e.tpl.Pages) - 1)
	return e.page
}

// DeletePage removes page i. The last remaining page cannot be deleted.
func (e *Editor) DeletePage(i int) error {
	if i < 0 || i >= len(e.tpl.Pages) {
		return fmt.Errorf("editor: page %d: %w", i, certgen.ErrNotFound)
	}
	if len(e.tpl.Pages) == 1 {
		return fmt.Errorf("editor: deleting the only page: %w", certgen.ErrNoPages)
	}
	e.tpl.Pages = slices.Delete(e.tpl.Pages, i, i+1)
	page := e.page
	if page >= len(e.tpl.Pages) {
		page = len(e.tpl.Pages) - 1
	}
	return e.SetPage(page)
}

// Elements returns the elements of the current page in draw order.
func (e *Editor) Elements() []doctpl.Element {
	return slices.Clone(e.elements())
}

func (e *Editor) elements() []doctpl.Element {
	return e.tpl.Pages[e.page].Elements
}

func (e *Editor) index(id string) int {
	return slices.IndexFunc(e.elements(), func(el doctpl.Element) bool { return el.ID == id })
}

// Element returns the element with the given id on the current page.
func (e *Editor) Element(id string) (doctpl.Element, bool) {
	i := e.index(id)
	if i < 0 {
		return doctpl.Element{}, false
	}
	return e.elements()[i], true
}

func (e *Editor) lookup(id string) (*doctpl.Element, error) {
	i := e.index(id)
	if i < 0 {
		return nil, fmt.Errorf("editor: element %q: %w", id, certgen.ErrNotFound)
	}
	return &e.tpl.Pages[e.page].Elements[i], nil
}

// Bounds returns the bounding box of an element in canvas pixels.
func (e *Editor) Bounds(id string) (geometry.Rect, error) {
	el, err := e.lookup(id)
	if err != nil {
		return geometry.Rect{}, err
	}
	return el.Bounds(e.canvas), nil
}

// AddElement appends el on top of the current page and returns its id.
// An element without an id gets a fresh one.
func (e *Editor) AddElement(el doctpl.Element) (string, error) {
	if el.ID == "" {
		el.ID = uuid.NewString()
	}
	if e.index(el.ID) >= 0 {
		return "", fmt.Errorf("editor: element %q: %w", el.ID, certgen.ErrDuplicateID)
	}
	p := &e.tpl.Pages[e.page]
	p.Elements = append(p.Elements, el)
	return el.ID, nil
}

// Duplicate copies an element under a new id, offset down and to the right,
// places it on top and selects it.
func (e *Editor) Duplicate(id string) (string, error) {
	src, err := e.lookup(id)
	if err != nil {
		return "", err
	}
	el := *src
	el.ID = uuid.NewString()
	translate(&el, e.canvas, DuplicateOffset, DuplicateOffset)
	p := &e.tpl.Pages[e.page]
	p.Elements = append(p.Elements, el)
	e.Select(el.ID)
	return el.ID, nil
}

// Delete removes the given elements from the current page. Unknown ids are
// ignored.
func (e *Editor) Delete(ids ...string) int {
	p := &e.tpl.Pages[e.page]
	before := len(p.Elements)
	p.Elements = slices.DeleteFunc(p.Elements, func(el doctpl.Element) bool {
		return slices.Contains(ids, el.ID)
	})
	e.selected = slices.DeleteFunc(e.selected, func(s string) bool { return slices.Contains(ids, s) })
	if slices.Contains(ids, e.g.id) {
		e.g = gesture{}
	}
	return before - len(p.Elements)
}

// BringToFront moves an element to the end of the draw order.
func (e *Editor) BringToFront(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("editor: element %q: %w", id, certgen.ErrNotFound)
	}
	els := e.tpl.Pages[e.page].Elements
	el := els[i]
	copy(els[i:], els[i+1:])
	els[len(els)-1] = el
	return nil
}

// SendToBack moves an element to the start of the draw order.
func (e *Editor) SendToBack(id string) error {
	i := e.index(id)
	if i < 0 {
		return fmt.Errorf("editor: element %q: %w", id, certgen.ErrNotFound)
	}
	els := e.tpl.Pages[e.page].Elements
	el := els[i]
	copy(els[1:i+1], els[:i])
	els[0] = el
	return nil
}

// Nudge moves every selected element by (dx, dy) canvas pixels.
func (e *Editor) Nudge(dx, dy float64) {
	for _, id := range e.selected {
		if el, err := e.lookup(id); err == nil {
			translate(el, e.canvas, dx, dy)
		}
	}
}

// translate moves an element by (dx, dy). Symbolic coordinates are resolved
// first, so a moved element always carries numeric pixels.
func translate(el *doctpl.Element, canvas geometry.Page, dx, dy float64) {
	if el.Type == doctpl.TypeLine {
		el.X1 += dx
		el.X2 += dx
		el.Y1 += dy
		el.Y2 += dy
		return
	}
	x, y := el.Position(canvas)
	el.X = geometry.Px(x + dx)
	el.Y = geometry.Px(y + dy)
}
