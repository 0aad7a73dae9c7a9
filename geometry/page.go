// Package geometry maps between the editor's canvas pixel space and the
// physical millimetre space of the output document.
//
// The editor positions elements on a canvas whose pixel size is the page's
// physical size at 96 DPI. Every coordinate stored in a template is in that
// pixel space; the composer converts to millimetres with the per-axis ratios
// returned by Page.Scale. Both the composer and the editor use this package,
// so the two surfaces cannot drift apart.
package geometry

import (
	"fmt"
	"math"
	"strings"

	"github.com/yahya12213/certgen"
)

// Format names a physical page format.
type Format string

const (
	FormatA4     Format = "a4"
	FormatLetter Format = "letter"
	FormatBadge  Format = "badge"
	FormatCustom Format = "custom"
)

// Orientation of a page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Layout constants shared by the editor and the renderers.
const (
	CanvasDPI        = 96.0
	MmPerInch        = 25.4
	PointToMm        = MmPerInch / 72.0
	TextPaddingPx    = 4.0  // top padding the editor applies inside text boxes
	LineHeightFactor = 1.2  // line pitch as a multiple of the font size
	TopBaselineRatio = 0.8  // baseline offset below the top of a text line, in font sizes
	DefaultTextWidth = 150.0
	MinFontSizePt    = 6.0
	ShrinkSafety     = 0.95
)

// size is a physical size in millimetres in the format's natural orientation.
type size struct {
	w, h float64
}

var formats = map[Format]size{
	FormatA4:     {210, 297},
	FormatLetter: {215.9, 279.4},
	FormatBadge:  {85.6, 54},
}

// FormatInfo describes a named format for listings.
type FormatInfo struct {
	Name     Format  `json:"name"`
	WidthMm  float64 `json:"widthMm"`
	HeightMm float64 `json:"heightMm"`
}

// Formats lists the built-in formats in their natural orientation.
func Formats() []FormatInfo {
	out := make([]FormatInfo, 0, len(formats))
	for _, f := range []Format{FormatA4, FormatLetter, FormatBadge} {
		s := formats[f]
		out = append(out, FormatInfo{Name: f, WidthMm: s.w, HeightMm: s.h})
	}
	return out
}

// FormatPages is a built-in format resolved in both orientations.
type FormatPages struct {
	Name      Format `json:"name"`
	Portrait  Page   `json:"portrait"`
	Landscape Page   `json:"landscape"`
}

// FormatCatalog resolves every built-in format in both orientations.
func FormatCatalog() []FormatPages {
	out := make([]FormatPages, 0, len(formats))
	for _, f := range Formats() {
		p, _ := NewPage(f.Name, Portrait, 0, 0)
		l, _ := NewPage(f.Name, Landscape, 0, 0)
		out = append(out, FormatPages{Name: f.Name, Portrait: p, Landscape: l})
	}
	return out
}

// Page is the resolved geometry of one page: its physical size and the pixel
// size of the editor canvas that represents it.
type Page struct {
	WidthMm        float64 `json:"widthMm"`
	HeightMm       float64 `json:"heightMm"`
	CanvasWidthPx  float64 `json:"canvasWidthPx"`
	CanvasHeightPx float64 `json:"canvasHeightPx"`
}

// NewPage resolves a format and orientation into page geometry. Custom
// dimensions are in millimetres and only consulted for FormatCustom. An empty
// format means A4 and an empty orientation keeps the format's natural one.
func NewPage(format Format, orientation Orientation, customWidth, customHeight float64) (Page, error) {
	format = Format(strings.ToLower(string(format)))
	if format == "" {
		format = FormatA4
	}
	var s size
	if format == FormatCustom {
		if customWidth <= 0 || customHeight <= 0 {
			return Page{}, fmt.Errorf("geometry: custom format needs positive dimensions, got %gx%g: %w",
				customWidth, customHeight, certgen.ErrInvalidLayout)
		}
		s = size{customWidth, customHeight}
	} else {
		var ok bool
		s, ok = formats[format]
		if !ok {
			return Page{}, fmt.Errorf("geometry: unknown format %q: %w", format, certgen.ErrInvalidLayout)
		}
	}

	switch Orientation(strings.ToLower(string(orientation))) {
	case Landscape:
		if s.w < s.h {
			s.w, s.h = s.h, s.w
		}
	case Portrait:
		if s.w > s.h {
			s.w, s.h = s.h, s.w
		}
	case "":
		// natural orientation of the format
	default:
		return Page{}, fmt.Errorf("geometry: unknown orientation %q: %w", orientation, certgen.ErrInvalidLayout)
	}

	p := Page{
		WidthMm:        s.w,
		HeightMm:       s.h,
		CanvasWidthPx:  MmToCanvasPx(s.w),
		CanvasHeightPx: MmToCanvasPx(s.h),
	}
	// the canvas must hold at least one pixel per axis for Scale to be finite
	if !(p.CanvasWidthPx >= 1 && p.CanvasHeightPx >= 1) || math.IsInf(p.CanvasWidthPx+p.CanvasHeightPx, 0) {
		return Page{}, fmt.Errorf("geometry: %gx%g mm is too small for a canvas: %w",
			s.w, s.h, certgen.ErrInvalidLayout)
	}
	return p, nil
}

// MmToCanvasPx converts a physical length to whole canvas pixels at 96 DPI.
func MmToCanvasPx(mm float64) float64 {
	return math.Round(mm / MmPerInch * CanvasDPI)
}

// Scale returns the per-axis conversion ratios from canvas pixels to
// millimetres. The two ratios differ slightly when pixel rounding changes the
// canvas aspect ratio; that is expected.
func (p Page) Scale() Scale {
	return Scale{
		X: p.WidthMm / p.CanvasWidthPx,
		Y: p.HeightMm / p.CanvasHeightPx,
	}
}

// Canvas returns the canvas rectangle in pixels.
func (p Page) Canvas() Rect {
	return Rect{W: p.CanvasWidthPx, H: p.CanvasHeightPx}
}

// Scale holds the pixel-to-millimetre ratios of a page.
type Scale struct {
	X float64 // mm per canvas pixel, horizontal
	Y float64 // mm per canvas pixel, vertical
}

// ToMmX converts a horizontal pixel length or coordinate to millimetres.
func (s Scale) ToMmX(px float64) float64 { return px * s.X }

// ToMmY converts a vertical pixel length or coordinate to millimetres.
func (s Scale) ToMmY(px float64) float64 { return px * s.Y }

// ToPxX is the inverse of ToMmX.
func (s Scale) ToPxX(mm float64) float64 { return mm / s.X }

// ToPxY is the inverse of ToMmY.
func (s Scale) ToPxY(mm float64) float64 { return mm / s.Y }

// PointsToMm converts a font size in points to millimetres.
func PointsToMm(pt float64) float64 {
	return pt * PointToMm
}
