// Package doctpl provides the certificate template model and the composer
// that renders it into paginated documents.
//
// A template is designed on a pixel canvas: every element carries canvas
// coordinates, and the composer converts them to millimetres when drawing.
//
// Example JSON:
//
//	{
//	  "name": "Attestation",
//	  "layout": {"format": "a4", "orientation": "landscape"},
//	  "colors": {"primary": "#1e3a8a", "secondary": "#f59e0b"},
//	  "pages": [{
//	    "background_image_url": "/uploads/backgrounds/frame.png",
//	    "elements": [
//	      {"id": "name", "type": "text", "content": "{student_name}",
//	       "x": 100, "y": 300, "width": 923, "align": "center", "fontSize": 32},
//	      {"id": "date", "type": "text", "content": "Le {completion_date}",
//	       "x": 100, "y": 400, "dateFormat": "full"}
//	    ]
//	  }]
//	}
package doctpl

import (
	"encoding/json"
	"fmt"

	"github.com/yahya12213/certgen/geometry"
)

// Element types.
const (
	TypeText      = "text"
	TypeImage     = "image"
	TypeRectangle = "rectangle"
	TypeBorder    = "border"
	TypeCircle    = "circle"
	TypeLine      = "line"
	TypeQRCode    = "qrcode"
	TypeBarcode   = "barcode"
)

// Font styles.
const (
	StyleNormal     = "normal"
	StyleBold       = "bold"
	StyleItalic     = "italic"
	StyleBoldItalic = "bolditalic"
)

// Template is a reusable certificate design.
type Template struct {
	ID     string                `json:"id,omitempty"`
	Name   string                `json:"name,omitempty"`
	Layout Layout                `json:"layout"`
	Colors map[string]string     `json:"colors,omitempty"` // role -> hex
	Fonts  map[string]FontPreset `json:"fonts,omitempty"`  // role -> preset
	Pages  []Page                `json:"pages,omitempty"`

	// Single-page shape predating Pages. Read through ResolvePages.
	Elements            []Element `json:"elements,omitempty"`
	BackgroundImageURL  string    `json:"background_image_url,omitempty"`
	BackgroundImageType string    `json:"background_image_type,omitempty"`
}

// Layout describes the physical page.
type Layout struct {
	Format       geometry.Format      `json:"format,omitempty"`      // a4, letter, badge, custom
	Orientation  geometry.Orientation `json:"orientation,omitempty"` // portrait, landscape
	CustomWidth  float64              `json:"customWidth,omitempty"` // mm
	CustomHeight float64              `json:"customHeight,omitempty"`
	Margins      *Margins             `json:"margins,omitempty"`
}

// Margins are guide margins in canvas pixels. They do not clip rendering.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// FontPreset is a named font role such as "title" or "body".
type FontPreset struct {
	Family string  `json:"family,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Style  string  `json:"style,omitempty"`
	Color  string  `json:"color,omitempty"`
}

// Page is one physical page of the output.
type Page struct {
	Elements            []Element `json:"elements"`
	BackgroundImageURL  string    `json:"background_image_url,omitempty"`
	BackgroundImageType string    `json:"background_image_type,omitempty"` // upload, url
}

// Element is a single drawable item. Type determines which fields apply.
// Coordinates and sizes are canvas pixels.
type Element struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	X         geometry.Coord `json:"x"`
	Y         geometry.Coord `json:"y"`
	Color     string         `json:"color,omitempty"`     // hex or palette role
	Condition string         `json:"condition,omitempty"` // record field that must be present

	// Text
	Content     string         `json:"content,omitempty"`
	FontFamily  string         `json:"fontFamily,omitempty"`
	FontSize    float64        `json:"fontSize,omitempty"` // points
	FontStyle   string         `json:"fontStyle,omitempty"`
	FontPreset  string         `json:"fontPreset,omitempty"`
	Align       geometry.Align `json:"align,omitempty"`
	MaxWidth    float64        `json:"maxWidth,omitempty"`
	WrapText    bool           `json:"wrapText,omitempty"`
	ShrinkToFit bool           `json:"shrinkToFit,omitempty"`
	DateFormat  string         `json:"dateFormat,omitempty"`

	// Box (text, image, rectangle, border, codes)
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Shapes
	LineWidth float64 `json:"lineWidth,omitempty"`
	FillColor string  `json:"fillColor,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
	X1        float64 `json:"x1,omitempty"`
	Y1        float64 `json:"y1,omitempty"`
	X2        float64 `json:"x2,omitempty"`
	Y2        float64 `json:"y2,omitempty"`

	// Image
	Source string `json:"source,omitempty"`

	// Barcode symbology: code128 (default) or pdf417
	Format string `json:"format,omitempty"`
}

// Parse decodes a template from JSON. Both the multi-page and the legacy
// single-page shapes are accepted.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("doctpl: parsing template: %w", err)
	}
	return &t, nil
}

// PageGeometry resolves the template layout.
func (t *Template) PageGeometry() (geometry.Page, error) {
	return geometry.NewPage(t.Layout.Format, t.Layout.Orientation, t.Layout.CustomWidth, t.Layout.CustomHeight)
}
