package surface

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/geometry"
)

// Raster is a Surface that paints the first page into an RGBA image.
// Later pages are accepted and ignored, so the composer can walk a whole
// template against it.
type Raster struct {
	dc       *gg.Context
	pxPerMmX float64
	pxPerMmY float64
	pages    int
	fonts    map[string]*truetype.Font // "family/style"
	faces    map[faceKey]font.Face
	images   map[string]image.Image
}

type faceKey struct {
	name string
	size float64
}

// NewRaster returns a raster of the page's canvas size multiplied by scale.
func NewRaster(page geometry.Page, scale float64) *Raster {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(page.CanvasWidthPx * scale))
	h := int(math.Round(page.CanvasHeightPx * scale))
	dc := gg.NewContext(max(w, 1), max(h, 1))
	dc.SetColor(color.White)
	dc.Clear()
	return &Raster{
		dc:       dc,
		pxPerMmX: float64(dc.Width()) / page.WidthMm,
		pxPerMmY: float64(dc.Height()) / page.HeightMm,
		fonts:    builtinFaces(),
		faces:    make(map[faceKey]font.Face),
		images:   make(map[string]image.Image),
	}
}

func builtinFaces() map[string]*truetype.Font {
	parse := func(b []byte) *truetype.Font {
		f, err := truetype.Parse(b)
		if err != nil {
			panic(err)
		}
		return f
	}
	regular, bold := parse(goregular.TTF), parse(gobold.TTF)
	italic, boldItalic := parse(goitalic.TTF), parse(gobolditalic.TTF)
	mono, monoBold := parse(gomono.TTF), parse(gomonobold.TTF)
	fonts := make(map[string]*truetype.Font)
	for _, fam := range []string{FamilyHelvetica, FamilyTimes} {
		fonts[fam+"/"] = regular
		fonts[fam+"/B"] = bold
		fonts[fam+"/I"] = italic
		fonts[fam+"/BI"] = boldItalic
	}
	fonts[FamilyCourier+"/"] = mono
	fonts[FamilyCourier+"/B"] = monoBold
	fonts[FamilyCourier+"/I"] = mono
	fonts[FamilyCourier+"/BI"] = monoBold
	return fonts
}

// Picture returns the painted page.
func (r *Raster) Picture() image.Image { return r.dc.Image() }

func (r *Raster) AddPage(widthMm, heightMm float64) { r.pages++ }

func (r *Raster) PageCount() int { return r.pages }

// active reports whether drawing goes to the painted page.
func (r *Raster) active() bool { return r.pages == 1 }

func (r *Raster) RegisterFont(family string, ttf []byte) error {
	key := fontKey(family)
	if key == "" {
		return fmt.Errorf("surface: font family is empty: %w", certgen.ErrFontFormat)
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("surface: font %q: %w: %v", family, certgen.ErrFontFormat, err)
	}
	for _, style := range []string{"", "B", "I", "BI"} {
		r.fonts[key+"/"+style] = f
	}
	return nil
}

func (r *Raster) face(f Font) font.Face {
	key := fontKey(f.Family)
	if _, ok := r.fonts[key+"/"]; !ok {
		key, _ = builtinFamily(key)
		if key == "" {
			key = FamilyHelvetica
		}
	}
	name := key + "/" + pdfStyle(f.Style)
	size := f.SizeMm() * r.pxPerMmY
	fk := faceKey{name, size}
	if face, ok := r.faces[fk]; ok {
		return face
	}
	face := truetype.NewFace(r.fonts[name], &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	r.faces[fk] = face
	return face
}

func (r *Raster) MeasureText(f Font, s string) float64 {
	return float64(font.MeasureString(r.face(f), s)) / 64 / r.pxPerMmX
}

func (r *Raster) Text(f Font, s string, x, top float64, c Color) {
	if !r.active() {
		return
	}
	r.dc.SetFontFace(r.face(f))
	r.dc.SetColor(c.rgba())
	baseline := top + geometry.TopBaselineRatio*f.SizeMm()
	r.dc.DrawString(s, x*r.pxPerMmX, baseline*r.pxPerMmY)
}

func (r *Raster) paint(st Style) {
	if st.Fill != nil {
		r.dc.SetColor(st.Fill.rgba())
		if st.Stroke != nil {
			r.dc.FillPreserve()
		} else {
			r.dc.Fill()
		}
	}
	if st.Stroke != nil {
		r.dc.SetColor(st.Stroke.rgba())
		r.dc.SetLineWidth(math.Max(st.LineWidth*r.pxPerMmX, 1))
		r.dc.Stroke()
	}
	r.dc.ClearPath()
}

func (r *Raster) Rect(b geometry.Rect, st Style) {
	if !r.active() {
		return
	}
	r.dc.DrawRectangle(b.X*r.pxPerMmX, b.Y*r.pxPerMmY, b.W*r.pxPerMmX, b.H*r.pxPerMmY)
	r.paint(st)
}

func (r *Raster) Circle(cx, cy, radius float64, st Style) {
	if !r.active() {
		return
	}
	r.dc.DrawCircle(cx*r.pxPerMmX, cy*r.pxPerMmY, radius*r.pxPerMmX)
	r.paint(st)
}

func (r *Raster) Line(x1, y1, x2, y2 float64, st Style) {
	if !r.active() || st.Stroke == nil {
		return
	}
	r.dc.DrawLine(x1*r.pxPerMmX, y1*r.pxPerMmY, x2*r.pxPerMmX, y2*r.pxPerMmY)
	r.paint(Style{Stroke: st.Stroke, LineWidth: st.LineWidth})
}

func (r *Raster) Image(key string, data []byte, b geometry.Rect) error {
	img, ok := r.images[key]
	if !ok || key == "" {
		var err error
		if img, err = DecodeImage(data); err != nil {
			return err
		}
		if key != "" {
			r.images[key] = img
		}
	}
	if !r.active() {
		return nil
	}
	w := int(math.Round(b.W * r.pxPerMmX))
	h := int(math.Round(b.H * r.pxPerMmY))
	if w <= 0 || h <= 0 {
		return nil
	}
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	r.dc.DrawImage(scaled, int(math.Round(b.X*r.pxPerMmX)), int(math.Round(b.Y*r.pxPerMmY)))
	return nil
}

func (r *Raster) QRCode(content string, b geometry.Rect, c Color) error {
	m, err := encodeQR(content)
	if err != nil {
		return err
	}
	r.modules(m, b, c)
	return nil
}

func (r *Raster) Barcode(content, format string, b geometry.Rect, c Color) error {
	m, err := encodeBarcode(content, format)
	if err != nil {
		return err
	}
	r.modules(m, b, c)
	return nil
}

func (r *Raster) modules(m matrix, b geometry.Rect, c Color) {
	if !r.active() {
		return
	}
	r.dc.SetColor(c.rgba())
	m.paint(b, func(cell geometry.Rect) {
		r.dc.DrawRectangle(cell.X*r.pxPerMmX, cell.Y*r.pxPerMmY, cell.W*r.pxPerMmX, cell.H*r.pxPerMmY)
	})
	r.dc.Fill()
}

func (c Color) rgba() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
