package editor

import (
	"fmt"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/geometry"
)

// State is the gesture currently in progress.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

// MinSize is the smallest width, height or radius a resize can produce,
// in canvas pixels.
const MinSize = 5.0

type gesture struct {
	state State
	id    string

	// dragging: pointer position minus the element origin, in canvas pixels
	offset geometry.Point

	// resizing
	startSize    geometry.Point // width and height in canvas pixels
	startPointer geometry.Point // screen pixels
	startEnd     geometry.Point // second endpoint of a line
}

// State returns the active gesture and the element it applies to.
func (e *Editor) State() (State, string) {
	return e.g.state, e.g.id
}

// toCanvas converts a pointer position on the zoomed canvas to canvas pixels.
func (e *Editor) toCanvas(p geometry.Point) geometry.Point {
	return p.Div(e.zoom)
}

// origin is the point a drag moves: the box origin, or the first endpoint
// of a line.
func origin(el *doctpl.Element, canvas geometry.Page) geometry.Point {
	if el.Type == doctpl.TypeLine {
		return geometry.Point{X: el.X1, Y: el.Y1}
	}
	x, y := el.Position(canvas)
	return geometry.Point{X: x, Y: y}
}

// BeginDrag starts dragging an element from a pointer position given in
// screen pixels.
func (e *Editor) BeginDrag(id string, pointer geometry.Point) error {
	if e.g.state != Idle {
		return fmt.Errorf("editor: drag %q while %s: %w", id, e.g.state, certgen.ErrGestureActive)
	}
	el, err := e.lookup(id)
	if err != nil {
		return err
	}
	e.g = gesture{
		state:  Dragging,
		id:     id,
		offset: e.toCanvas(pointer).Sub(origin(el, e.canvas)),
	}
	return nil
}

// BeginResize starts resizing an element from its bottom-right handle.
func (e *Editor) BeginResize(id string, pointer geometry.Point) error {
	if e.g.state != Idle {
		return fmt.Errorf("editor: resize %q while %s: %w", id, e.g.state, certgen.ErrGestureActive)
	}
	el, err := e.lookup(id)
	if err != nil {
		return err
	}
	b := el.Bounds(e.canvas)
	e.g = gesture{
		state:        Resizing,
		id:           id,
		startSize:    geometry.Point{X: b.W, Y: b.H},
		startPointer: pointer,
		startEnd:     geometry.Point{X: el.X2, Y: el.Y2},
	}
	return nil
}

// PointerMove applies the pointer position to the active gesture. Pointer
// deltas are divided by the zoom factor because element geometry lives in
// unscaled canvas pixels. It is a no-op when idle.
func (e *Editor) PointerMove(pointer geometry.Point) {
	if e.g.state == Idle {
		return
	}
	el, err := e.lookup(e.g.id)
	if err != nil {
		e.g = gesture{}
		return
	}
	switch e.g.state {
	case Dragging:
		target := e.toCanvas(pointer).Sub(e.g.offset)
		from := origin(el, e.canvas)
		translate(el, e.canvas, target.X-from.X, target.Y-from.Y)
	case Resizing:
		d := pointer.Sub(e.g.startPointer).Div(e.zoom)
		if el.Type == doctpl.TypeLine {
			el.X2, el.Y2 = e.g.startEnd.X+d.X, e.g.startEnd.Y+d.Y
			return
		}
		resize(el, max(MinSize, e.g.startSize.X+d.X), max(MinSize, e.g.startSize.Y+d.Y))
	}
}

// PointerUp ends the active gesture.
func (e *Editor) PointerUp() {
	e.g = gesture{}
}

// resize sets the box size of an element. Circles keep their centre and take
// the larger side as diameter.
func resize(el *doctpl.Element, w, h float64) {
	if el.Type == doctpl.TypeCircle {
		el.Radius = max(w, h) / 2
		return
	}
	el.Width, el.Height = w, h
}
