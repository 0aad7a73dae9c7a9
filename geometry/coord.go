package geometry

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Coord is a canvas coordinate that is either a plain number of pixels or a
// symbolic expression such as "center" or "CANVAS_WIDTH_PX - 20".
// The zero value is the number 0.
type Coord struct {
	value float64
	expr  string
}

// Px returns a numeric coordinate.
func Px(v float64) Coord { return Coord{value: v} }

// Expr returns a symbolic coordinate. Strings that parse as numbers become
// numeric coordinates.
func Expr(s string) Coord {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Coord{value: v}
	}
	return Coord{expr: s}
}

// IsExpr reports whether c holds an expression rather than a number.
func (c Coord) IsExpr() bool { return c.expr != "" }

// String returns the expression or the formatted number.
func (c Coord) String() string {
	if c.expr != "" {
		return c.expr
	}
	return strconv.FormatFloat(c.value, 'f', -1, 64)
}

// Resolve evaluates c in pixel space. axisLen is the canvas length along the
// coordinate's own axis and is what "center" halves.
func (c Coord) Resolve(axisLen float64, canvas Page) float64 {
	if c.expr == "" {
		return c.value
	}
	return Eval(c.expr, axisLen, canvas.CanvasWidthPx, canvas.CanvasHeightPx)
}

// MarshalJSON writes numbers as JSON numbers and expressions as strings.
func (c Coord) MarshalJSON() ([]byte, error) {
	if c.expr != "" {
		return json.Marshal(c.expr)
	}
	return json.Marshal(c.value)
}

// UnmarshalJSON accepts a number, a numeric string, an expression string or null.
func (c *Coord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Coord{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Expr(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Coord{value: v}
	return nil
}
