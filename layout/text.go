// Package layout positions text on a page the same way the canvas editor
// shows it: font resolution, alignment anchoring, the editor's top padding,
// shrink-to-fit and word wrapping.
package layout

import (
	"strings"

	"github.com/yahya12213/certgen/geometry"
	"github.com/yahya12213/certgen/surface"
)

// Measurer returns the width of s in millimetres when set in f.
type Measurer interface {
	MeasureText(f surface.Font, s string) float64
}

// Default font used when neither the element nor a preset sets one.
var DefaultFont = surface.Font{Family: surface.FamilyDefault, Style: "normal", Size: 12}

// Preset is a named font role of a template.
type Preset struct {
	Family string
	Size   float64
	Style  string
}

// ResolveFont picks each font attribute from the element, then the preset,
// then DefaultFont.
func ResolveFont(family string, size float64, style string, preset Preset) surface.Font {
	f := DefaultFont
	switch {
	case family != "":
		f.Family = family
	case preset.Family != "":
		f.Family = preset.Family
	}
	switch {
	case size > 0:
		f.Size = size
	case preset.Size > 0:
		f.Size = preset.Size
	}
	switch {
	case style != "":
		f.Style = style
	case preset.Style != "":
		f.Style = preset.Style
	}
	return f
}

// Input is a text element with its variables already substituted.
// Positions and widths are canvas pixels.
type Input struct {
	Text        string
	Font        surface.Font
	X, Y        float64 // left edge and top of the box
	Width       float64 // box width; DefaultTextWidth when zero
	MaxWidth    float64 // legacy wrap width, used when Wrap is off
	Align       geometry.Align
	Wrap        bool
	ShrinkToFit bool
	Scale       geometry.Scale
}

// Line is one laid-out line in millimetres. X is the left edge of the
// measured text and Top the top of the line.
type Line struct {
	Text  string
	X     float64
	Top   float64
	Width float64
}

// Result is the laid-out text.
type Result struct {
	Font   surface.Font // final font, possibly shrunk
	Anchor float64      // alignment anchor in mm
	Lines  []Line
}

// Text lays out in. Shrink-to-fit takes precedence over wrapping, and
// wrapping to the box width over the legacy MaxWidth. Explicit newlines
// always break lines.
func Text(in Input, m Measurer) Result {
	width := in.Width
	if width <= 0 {
		width = geometry.DefaultTextWidth
	}
	boxMm := in.Scale.ToMmX(width)
	anchor := in.Scale.ToMmX(geometry.AnchorX(in.X, width, in.Align))
	top := in.Scale.ToMmY(in.Y + geometry.TextPaddingPx)

	f := in.Font
	paragraphs := strings.Split(strings.ReplaceAll(in.Text, "\r\n", "\n"), "\n")
	var lines []string
	switch {
	case in.ShrinkToFit:
		f.Size = shrink(f, paragraphs, boxMm, m)
		lines = paragraphs
	case in.Wrap:
		lines = wrapAll(paragraphs, f, boxMm, m)
	case in.MaxWidth > 0:
		lines = wrapAll(paragraphs, f, in.Scale.ToMmX(in.MaxWidth), m)
	default:
		lines = paragraphs
	}

	pitch := f.SizeMm() * geometry.LineHeightFactor
	res := Result{Font: f, Anchor: anchor, Lines: make([]Line, 0, len(lines))}
	for i, s := range lines {
		w := m.MeasureText(f, s)
		res.Lines = append(res.Lines, Line{
			Text:  s,
			X:     geometry.LeftFromAnchor(anchor, w, in.Align),
			Top:   top + float64(i)*pitch,
			Width: w,
		})
	}
	return res
}

// shrink returns the size at which the widest line fits boxMm, never below
// MinFontSizePt.
func shrink(f surface.Font, lines []string, boxMm float64, m Measurer) float64 {
	var widest float64
	for _, s := range lines {
		widest = max(widest, m.MeasureText(f, s))
	}
	if widest <= boxMm || widest == 0 {
		return f.Size
	}
	return max(geometry.MinFontSizePt, f.Size*boxMm/widest*geometry.ShrinkSafety)
}

func wrapAll(paragraphs []string, f surface.Font, widthMm float64, m Measurer) []string {
	var out []string
	for _, p := range paragraphs {
		out = append(out, Wrap(p, f, widthMm, m)...)
	}
	return out
}

// Wrap breaks s into lines no wider than widthMm. Words are kept whole
// unless a single word is wider than the line, in which case it is broken
// between runes. An empty string yields one empty line.
func Wrap(s string, f surface.Font, widthMm float64, m Measurer) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	fits := func(t string) bool { return widthMm <= 0 || m.MeasureText(f, t) <= widthMm }

	var lines []string
	var cur string
	for _, w := range words {
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if fits(candidate) {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		if fits(w) {
			cur = w
			continue
		}
		pieces := breakWord(w, fits)
		lines = append(lines, pieces[:len(pieces)-1]...)
		cur = pieces[len(pieces)-1]
	}
	return append(lines, cur)
}

// breakWord splits w into the longest rune prefixes that fit. Every piece
// holds at least one rune.
func breakWord(w string, fits func(string) bool) []string {
	var pieces []string
	var cur []rune
	for _, r := range w {
		next := append(cur, r)
		if len(cur) > 0 && !fits(string(next)) {
			pieces = append(pieces, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(pieces, string(cur))
}
