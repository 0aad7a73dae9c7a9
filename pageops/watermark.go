package pageops

import (
	"strings"

	"github.com/yahya12213/certgen/surface"
)

// Position specifies where a stamp is placed on a page.
type Position int

const (
	Center Position = iota
	TopLeft
	TopCenter
	TopRight
	BottomLeft
	BottomCenter
	BottomRight
)

// ParsePosition maps names such as "center" or "bottom-right" to a
// Position. Unknown names give Center.
func ParsePosition(s string) Position {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "top-left":
		return TopLeft
	case "top-center", "top":
		return TopCenter
	case "top-right":
		return TopRight
	case "bottom-left":
		return BottomLeft
	case "bottom-center", "bottom":
		return BottomCenter
	case "bottom-right":
		return BottomRight
	}
	return Center
}

// TextWatermark defines a text stamp drawn over every page, such as
// "SPECIMEN" on draft certificates.
type TextWatermark struct {
	Text     string        // watermark text
	FontSize float64       // points (default: 60)
	Color    surface.Color // default: light gray
	Opacity  float64       // 0.0 to 1.0 (default: 0.3)
	Angle    float64       // degrees counter-clockwise (default: 45 when centred)
	Position Position
	Margin   float64 // mm from the page edge for corner positions (default: 10)
}

func (wm *TextWatermark) defaults() {
	if wm.FontSize == 0 {
		wm.FontSize = 60
	}
	if wm.Opacity == 0 {
		wm.Opacity = 0.3
	}
	if wm.Angle == 0 && wm.Position == Center {
		wm.Angle = 45
	}
	if wm.Color == (surface.Color{}) {
		wm.Color = surface.Color{R: 200, G: 200, B: 200}
	}
	if wm.Margin == 0 {
		wm.Margin = 10
	}
}

// Watermark stamps wm over every page of doc as each page is finished,
// including pages added later. Call it before the pages are drawn; a doc
// holds one watermark at a time.
func Watermark(doc *surface.PDF, wm TextWatermark) {
	if strings.TrimSpace(wm.Text) == "" {
		return
	}
	wm.defaults()
	f := doc.Fpdf()
	tr := f.UnicodeTranslatorFromDescriptor("")
	text := tr(wm.Text)
	f.SetFooterFunc(func() {
		pw, ph := f.GetPageSize()
		f.SetFont(surface.FamilyHelvetica, "B", wm.FontSize)
		f.SetTextColor(int(wm.Color.R), int(wm.Color.G), int(wm.Color.B))
		f.SetAlpha(wm.Opacity, "Normal")

		textW := f.GetStringWidth(text)
		_, lineH := f.GetFontSize()
		x, y := calculatePosition(wm.Position, pw, ph, textW, lineH, wm.Margin)

		f.TransformBegin()
		if wm.Angle != 0 {
			f.TransformRotate(wm.Angle, x+textW/2, y-lineH/3)
		}
		f.Text(x, y, text)
		f.TransformEnd()
		f.SetAlpha(1.0, "Normal")
	})
}

// calculatePosition returns the baseline origin of a text of width textW
// and height textH, in page units.
func calculatePosition(pos Position, pageW, pageH, textW, textH, margin float64) (x, y float64) {
	switch pos {
	case TopLeft:
		return margin, margin + textH
	case TopCenter:
		return (pageW - textW) / 2, margin + textH
	case TopRight:
		return pageW - textW - margin, margin + textH
	case BottomLeft:
		return margin, pageH - margin
	case BottomCenter:
		return (pageW - textW) / 2, pageH - margin
	case BottomRight:
		return pageW - textW - margin, pageH - margin
	default:
		return (pageW - textW) / 2, pageH/2 + textH/3
	}
}
