// Package surface provides the drawing targets the composer paints on.
//
// All coordinates are millimetres from the top-left corner of the current
// page. PDF writes a paginated document with gofpdf; Raster paints the first
// page into an image with gg for previews.
package surface

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/yahya12213/certgen/geometry"
)

// Surface is a paginated drawing target.
type Surface interface {
	// AddPage starts a new page of the given physical size.
	AddPage(widthMm, heightMm float64)
	// PageCount returns the number of pages started so far.
	PageCount() int
	// RegisterFont makes a TrueType font available under family for every style.
	RegisterFont(family string, ttf []byte) error
	// MeasureText returns the width of s in millimetres.
	MeasureText(f Font, s string) float64
	// Text draws one line with its left edge at x and the top of the line at top.
	Text(f Font, s string, x, top float64, c Color)
	Rect(r geometry.Rect, st Style)
	Circle(cx, cy, radius float64, st Style)
	Line(x1, y1, x2, y2 float64, st Style)
	// Image draws encoded image data stretched into r. key identifies the
	// image so repeated draws can reuse the decoded copy.
	Image(key string, data []byte, r geometry.Rect) error
	QRCode(content string, r geometry.Rect, c Color) error
	Barcode(content, format string, r geometry.Rect, c Color) error
}

// Font selects a face. Size is in points.
type Font struct {
	Family string
	Style  string // normal, bold, italic, bolditalic
	Size   float64
}

// SizeMm returns the font size in millimetres.
func (f Font) SizeMm() float64 { return geometry.PointsToMm(f.Size) }

// Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

// Black is the default ink.
var Black = Color{}

// ParseColor parses "#rgb" or "#rrggbb" (the leading '#' is optional).
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, false
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, true
}

// Style describes how a shape is painted. Nil Stroke or Fill disables that part.
type Style struct {
	Stroke    *Color
	Fill      *Color
	LineWidth float64 // mm
}

// Built-in family names every surface understands.
const (
	FamilyDefault   = "default"
	FamilyHelvetica = "helvetica"
	FamilyTimes     = "times"
	FamilyCourier   = "courier"
)

// builtinFamily maps the families designers pick in the editor onto the three
// core families. ok is false for names that are not built in.
func builtinFamily(family string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "", FamilyDefault, FamilyHelvetica, "arial", "sans-serif", "roboto", "inter", "open sans":
		return FamilyHelvetica, true
	case FamilyTimes, "times new roman", "serif", "georgia", "garamond", "playfair display":
		return FamilyTimes, true
	case FamilyCourier, "courier new", "monospace":
		return FamilyCourier, true
	}
	return "", false
}

// pdfStyle converts a style name to gofpdf's style letters.
func pdfStyle(style string) string {
	switch strings.ToLower(strings.ReplaceAll(style, " ", "")) {
	case "bold":
		return "B"
	case "italic":
		return "I"
	case "bolditalic", "italicbold":
		return "BI"
	}
	return ""
}
