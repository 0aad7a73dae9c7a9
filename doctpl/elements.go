package doctpl

import (
	"strings"

	"github.com/yahya12213/certgen/fetch"
	"github.com/yahya12213/certgen/geometry"
	"github.com/yahya12213/certgen/layout"
	"github.com/yahya12213/certgen/surface"
	"github.com/yahya12213/certgen/variables"
)

// Palette roles with a meaning to the renderers.
const (
	RolePrimary   = "primary"
	RoleSecondary = "secondary"
)

const circleFallbackFill = "#6b7280"

// color resolves a hex value or palette role, then the fallbacks in order,
// then black.
func (r *run) color(refs ...string) surface.Color {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if hex, ok := r.t.Colors[ref]; ok {
			ref = hex
		}
		if c, ok := surface.ParseColor(ref); ok {
			return c
		}
	}
	return surface.Black
}

func (r *run) text(el Element) {
	content := r.subst.Substitute(el.Content, r.rec, el.DateFormat)
	if strings.TrimSpace(content) == "" {
		return
	}
	preset := r.t.Fonts[el.FontPreset]
	f := layout.ResolveFont(el.FontFamily, el.FontSize, el.FontStyle, layout.Preset{
		Family: preset.Family,
		Size:   preset.Size,
		Style:  preset.Style,
	})
	x, y := el.Position(r.page)
	res := layout.Text(layout.Input{
		Text:        content,
		Font:        f,
		X:           x,
		Y:           y,
		Width:       el.Width,
		MaxWidth:    el.MaxWidth,
		Align:       el.Align,
		Wrap:        el.WrapText,
		ShrinkToFit: el.ShrinkToFit,
		Scale:       r.scale,
	}, r.s)
	c := r.color(el.Color, preset.Color)
	for _, l := range res.Lines {
		r.s.Text(res.Font, l.Text, l.X, l.Top, c)
	}
}

func (r *run) lineWidth(el Element) float64 {
	return r.scale.ToMmX(orDefault(el.LineWidth, DefaultLineWidth))
}

func (r *run) rect(el Element) {
	st := surface.Style{LineWidth: r.lineWidth(el)}
	if el.FillColor != "" {
		fill := r.color(el.FillColor)
		st.Fill = &fill
	}
	stroke := r.color(el.Color)
	st.Stroke = &stroke
	r.s.Rect(r.scale.RectToMm(el.Bounds(r.page)), st)
}

// circle treats (x, y) as the centre. The radius is converted with the
// horizontal ratio so circles stay round when the axis ratios differ.
func (r *run) circle(el Element) {
	x, y := el.Position(r.page)
	fill := r.color(el.FillColor, RoleSecondary, circleFallbackFill)
	st := surface.Style{Fill: &fill}
	if el.LineWidth > 0 {
		stroke := r.color(el.Color)
		st.Stroke = &stroke
		st.LineWidth = r.scale.ToMmX(el.LineWidth)
	}
	radius := orDefault(el.Radius, DefaultCircleRadius)
	r.s.Circle(r.scale.ToMmX(x), r.scale.ToMmY(y), r.scale.ToMmX(radius), st)
}

func (r *run) line(el Element) {
	stroke := r.color(el.Color)
	r.s.Line(
		r.scale.ToMmX(el.X1), r.scale.ToMmY(el.Y1),
		r.scale.ToMmX(el.X2), r.scale.ToMmY(el.Y2),
		surface.Style{Stroke: &stroke, LineWidth: r.lineWidth(el)},
	)
}

// imageSource substitutes a source that is a single {token}, then
// qualifies it against the base URL.
func (r *run) imageSource(src string) string {
	if variables.IsSingleToken(src) {
		src = r.subst.Substitute(strings.TrimSpace(src), r.rec, "")
	}
	return fetch.Qualify(r.baseURL, src)
}

func (r *run) image(el Element) error {
	src := r.imageSource(el.Source)
	if src == "" {
		return errEmptySource
	}
	data, err := r.res.fetch(r.ctx, r.fetcher, src)
	if err != nil {
		return err
	}
	return r.s.Image(src, data, r.scale.RectToMm(el.Bounds(r.page)))
}

func (r *run) background(src string) error {
	src = r.imageSource(src)
	if src == "" {
		return errEmptySource
	}
	data, err := r.res.fetch(r.ctx, r.fetcher, src)
	if err != nil {
		return err
	}
	return r.s.Image(src, data, geometry.Rect{W: r.page.WidthMm, H: r.page.HeightMm})
}

func (r *run) qrcode(el Element) error {
	content := r.subst.Substitute(el.Content, r.rec, el.DateFormat)
	return r.s.QRCode(content, r.scale.RectToMm(el.Bounds(r.page)), r.color(el.Color))
}

func (r *run) barcode(el Element) error {
	content := r.subst.Substitute(el.Content, r.rec, el.DateFormat)
	return r.s.Barcode(content, el.Format, r.scale.RectToMm(el.Bounds(r.page)), r.color(el.Color))
}
