package geometry

import "math"

// Align is the horizontal text alignment within a box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// AnchorX returns the x coordinate a renderer must anchor text at, given the
// left edge x and width of its box. The editor always stores the left edge;
// centred text anchors at the middle of the box and right-aligned text at its
// right edge.
func AnchorX(x, width float64, align Align) float64 {
	switch align {
	case AlignCenter:
		return x + width/2
	case AlignRight:
		return x + width
	default:
		return x
	}
}

// LeftFromAnchor is the inverse of AnchorX for a line of the given width.
func LeftFromAnchor(anchor, width float64, align Align) float64 {
	switch align {
	case AlignCenter:
		return anchor - width/2
	case AlignRight:
		return anchor - width
	default:
		return anchor
	}
}

// Point is a position in pixel space.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Div divides both components by f.
func (p Point) Div(f float64) Point { return Point{p.X / f, p.Y / f} }

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the centre point.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// UnionAll returns the union of all rectangles, or the zero Rect if none.
func UnionAll(rs []Rect) Rect {
	if len(rs) == 0 {
		return Rect{}
	}
	u := rs[0]
	for _, r := range rs[1:] {
		u = u.Union(r)
	}
	return u
}

// RectToMm converts a pixel rectangle to millimetres.
func (s Scale) RectToMm(r Rect) Rect {
	return Rect{X: s.ToMmX(r.X), Y: s.ToMmY(r.Y), W: s.ToMmX(r.W), H: s.ToMmY(r.H)}
}
