package doctpl

import (
	"errors"
	"fmt"
	"slices"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/geometry"
)

// ResolvePages returns the pages to render. Templates with pages get them
// back unchanged. Legacy templates get one page built from their top-level
// elements and background; a template with neither yields no pages.
// The template is never modified.
func ResolvePages(t *Template) []Page {
	if t == nil {
		return nil
	}
	if len(t.Pages) > 0 {
		return t.Pages
	}
	if len(t.Elements) == 0 && t.BackgroundImageURL == "" {
		return nil
	}
	return []Page{{
		Elements:            slices.Clone(t.Elements),
		BackgroundImageURL:  t.BackgroundImageURL,
		BackgroundImageType: t.BackgroundImageType,
	}}
}

// Normalize returns a copy of t in the multi-page shape with the legacy
// fields cleared. It is idempotent.
func Normalize(t Template) Template {
	pages := ResolvePages(&t)
	out := t
	out.Pages = make([]Page, len(pages))
	for i, p := range pages {
		out.Pages[i] = Page{
			Elements:            slices.Clone(p.Elements),
			BackgroundImageURL:  p.BackgroundImageURL,
			BackgroundImageType: p.BackgroundImageType,
		}
	}
	if len(pages) == 0 {
		out.Pages = nil
	}
	out.Elements = nil
	// a page-level background wins over the template one, so the template
	// background only survives as a fallback for pages that lack their own
	if len(t.Pages) == 0 {
		out.BackgroundImageURL = ""
		out.BackgroundImageType = ""
	}
	return out
}

// Background returns the background image URL for a page, falling back to
// the template-level background.
func (t *Template) Background(p Page) string {
	if p.BackgroundImageURL != "" {
		return p.BackgroundImageURL
	}
	return t.BackgroundImageURL
}

var knownTypes = map[string]bool{
	TypeText: true, TypeImage: true, TypeRectangle: true, TypeBorder: true,
	TypeCircle: true, TypeLine: true, TypeQRCode: true, TypeBarcode: true,
}

// Validate reports every structural problem of t joined into one error.
// It is meant to run before rendering; the composer itself tolerates all of
// these conditions.
func Validate(t *Template) error {
	if t == nil {
		return certgen.ErrNoPages
	}
	var errs []error
	if _, err := t.PageGeometry(); err != nil {
		errs = append(errs, err)
	}
	pages := ResolvePages(t)
	if len(pages) == 0 {
		errs = append(errs, certgen.ErrNoPages)
	}
	for pi, p := range pages {
		seen := make(map[string]bool, len(p.Elements))
		for ei, el := range p.Elements {
			where := fmt.Sprintf("doctpl: page %d element %d", pi+1, ei+1)
			switch {
			case el.ID == "":
				errs = append(errs, fmt.Errorf("%s: missing id: %w", where, certgen.ErrInvalidElement))
			case seen[el.ID]:
				errs = append(errs, fmt.Errorf("%s: id %q: %w", where, el.ID, certgen.ErrDuplicateID))
			}
			seen[el.ID] = true
			if !knownTypes[el.Type] {
				errs = append(errs, fmt.Errorf("%s: type %q: %w", where, el.Type, certgen.ErrUnknownElement))
			}
			if el.Width < 0 || el.Height < 0 || el.Radius < 0 || el.LineWidth < 0 || el.FontSize < 0 {
				errs = append(errs, fmt.Errorf("%s: negative size: %w", where, certgen.ErrInvalidElement))
			}
		}
	}
	return errors.Join(errs...)
}

// Problems runs Validate and returns one message per problem, or nil when t
// is valid.
func Problems(t *Template) []string {
	err := Validate(t)
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(joined.Unwrap()))
	for _, e := range joined.Unwrap() {
		out = append(out, e.Error())
	}
	return out
}

// Default element geometry in canvas pixels.
const (
	DefaultFontSize     = 12.0
	DefaultImageSize    = 100.0
	DefaultRectWidth    = 100.0
	DefaultRectHeight   = 50.0
	DefaultCircleRadius = 20.0
	DefaultCodeSize     = 80.0
	DefaultLineWidth    = 1.0
)

// Position resolves the element's x and y in canvas pixels.
func (e Element) Position(canvas geometry.Page) (x, y float64) {
	return e.X.Resolve(canvas.CanvasWidthPx, canvas), e.Y.Resolve(canvas.CanvasHeightPx, canvas)
}

// TextWidth is the width of a text element's box.
func (e Element) TextWidth() float64 {
	if e.Width > 0 {
		return e.Width
	}
	return geometry.DefaultTextWidth
}

// TextHeight is the height of a text element's box.
func (e Element) TextHeight() float64 {
	if e.Height > 0 {
		return e.Height
	}
	size := e.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	return size*geometry.LineHeightFactor + 2*geometry.TextPaddingPx
}

// BoxSize returns width and height with type defaults applied.
func (e Element) BoxSize() (w, h float64) {
	switch e.Type {
	case TypeText:
		return e.TextWidth(), e.TextHeight()
	case TypeImage:
		return orDefault(e.Width, DefaultImageSize), orDefault(e.Height, DefaultImageSize)
	case TypeQRCode:
		side := orDefault(e.Width, DefaultCodeSize)
		return side, orDefault(e.Height, side)
	case TypeBarcode:
		return orDefault(e.Width, 2*DefaultCodeSize), orDefault(e.Height, DefaultCodeSize/2)
	case TypeCircle:
		r := orDefault(e.Radius, DefaultCircleRadius)
		return 2 * r, 2 * r
	default:
		return orDefault(e.Width, DefaultRectWidth), orDefault(e.Height, DefaultRectHeight)
	}
}

// Bounds returns the element's bounding box in canvas pixels, the box the
// editor selects, aligns and distributes. Circles are positioned by their
// centre and lines by their endpoints.
func (e Element) Bounds(canvas geometry.Page) geometry.Rect {
	switch e.Type {
	case TypeLine:
		return geometry.Rect{
			X: min(e.X1, e.X2), Y: min(e.Y1, e.Y2),
			W: abs(e.X2 - e.X1), H: abs(e.Y2 - e.Y1),
		}
	case TypeCircle:
		x, y := e.Position(canvas)
		r := orDefault(e.Radius, DefaultCircleRadius)
		return geometry.Rect{X: x - r, Y: y - r, W: 2 * r, H: 2 * r}
	}
	x, y := e.Position(canvas)
	w, h := e.BoxSize()
	return geometry.Rect{X: x, Y: y, W: w, H: h}
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
