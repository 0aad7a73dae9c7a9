package editor

import (
	"fmt"
	"slices"

	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/geometry"
)

// Select replaces the selection with the given ids. Ids not on the current
// page are dropped.
func (e *Editor) Select(ids ...string) {
	e.selected = e.selected[:0]
	for _, id := range ids {
		if e.index(id) >= 0 && !slices.Contains(e.selected, id) {
			e.selected = append(e.selected, id)
		}
	}
}

// ToggleSelect adds id to the selection or removes it if already selected.
func (e *Editor) ToggleSelect(id string) {
	if i := slices.Index(e.selected, id); i >= 0 {
		e.selected = slices.Delete(e.selected, i, i+1)
		return
	}
	if e.index(id) >= 0 {
		e.selected = append(e.selected, id)
	}
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() {
	e.selected = nil
}

// Selection returns the selected ids in selection order.
func (e *Editor) Selection() []string {
	return slices.Clone(e.selected)
}

// SelectionBounds returns the union of the selected bounding boxes.
func (e *Editor) SelectionBounds() geometry.Rect {
	return geometry.UnionAll(e.selectedBounds())
}

func (e *Editor) selectedBounds() []geometry.Rect {
	out := make([]geometry.Rect, 0, len(e.selected))
	for _, id := range e.selected {
		if el, err := e.lookup(id); err == nil {
			out = append(out, el.Bounds(e.canvas))
		}
	}
	return out
}

// Edge is a canvas edge or centre line to align to.
type Edge string

const (
	EdgeLeft   Edge = "left"
	EdgeCenter Edge = "center"
	EdgeRight  Edge = "right"
	EdgeTop    Edge = "top"
	EdgeMiddle Edge = "middle"
	EdgeBottom Edge = "bottom"
)

// Align moves the selection as a group so that its union bounding box
// touches the given canvas edge, or sits on the canvas centre line. The
// relative layout of the selected elements is kept.
func (e *Editor) Align(edge Edge) error {
	if len(e.selected) == 0 {
		return nil
	}
	u := e.SelectionBounds()
	w, h := e.canvas.CanvasWidthPx, e.canvas.CanvasHeightPx
	var dx, dy float64
	switch edge {
	case EdgeLeft:
		dx = -u.X
	case EdgeCenter:
		dx = (w-u.W)/2 - u.X
	case EdgeRight:
		dx = w - u.Right()
	case EdgeTop:
		dy = -u.Y
	case EdgeMiddle:
		dy = (h-u.H)/2 - u.Y
	case EdgeBottom:
		dy = h - u.Bottom()
	default:
		return fmt.Errorf("editor: unknown edge %q", edge)
	}
	e.Nudge(dx, dy)
	return nil
}

// Axis selects the direction of a distribution.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Distribute spaces three or more selected elements evenly along an axis.
// Elements are ordered by position; the first and last stay put and the
// gaps between consecutive bounding boxes are made equal. With fewer than
// three selected elements nothing moves.
func (e *Editor) Distribute(axis Axis) error {
	if axis != Horizontal && axis != Vertical {
		return fmt.Errorf("editor: unknown axis %q", axis)
	}
	type item struct {
		el *doctpl.Element
		b  geometry.Rect
	}
	var items []item
	for _, id := range e.selected {
		if el, err := e.lookup(id); err == nil {
			items = append(items, item{el, el.Bounds(e.canvas)})
		}
	}
	if len(items) < 3 {
		return nil
	}
	pos := func(r geometry.Rect) (start, size float64) {
		if axis == Horizontal {
			return r.X, r.W
		}
		return r.Y, r.H
	}
	slices.SortStableFunc(items, func(a, b item) int {
		as, _ := pos(a.b)
		bs, _ := pos(b.b)
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	})

	first, _ := pos(items[0].b)
	lastStart, lastSize := pos(items[len(items)-1].b)
	var total float64
	for _, it := range items {
		_, size := pos(it.b)
		total += size
	}
	gap := (lastStart + lastSize - first - total) / float64(len(items)-1)

	cursor := first
	for _, it := range items {
		start, size := pos(it.b)
		if axis == Horizontal {
			translate(it.el, e.canvas, cursor-start, 0)
		} else {
			translate(it.el, e.canvas, 0, cursor-start)
		}
		cursor += size + gap
	}
	return nil
}
