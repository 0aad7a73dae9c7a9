package surface

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/jung-kurt/gofpdf"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/geometry"
)

// PDF is a Surface backed by a gofpdf document in millimetres. Margins and
// automatic page breaks are disabled so every element lands exactly where
// its coordinates say.
type PDF struct {
	doc    *gofpdf.Fpdf
	tr     func(string) string
	fonts  map[string]bool // registered UTF-8 families
	images map[string]bool
	utf8   bool // current font is a registered UTF-8 family
}

// NewPDF returns an empty document whose default page size is page.
// No page is added until AddPage is called.
func NewPDF(page geometry.Page) *PDF {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMm, Ht: page.HeightMm},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("certgen", true)
	return &PDF{
		doc:    doc,
		tr:     doc.UnicodeTranslatorFromDescriptor(""),
		fonts:  make(map[string]bool),
		images: make(map[string]bool),
	}
}

// Fpdf exposes the underlying document for page imports.
func (p *PDF) Fpdf() *gofpdf.Fpdf { return p.doc }

// SetTitle sets the document title metadata.
func (p *PDF) SetTitle(title string) { p.doc.SetTitle(title, true) }

// AddPage starts a new page. The orientation string is always "P" because
// the size already carries the orientation.
func (p *PDF) AddPage(widthMm, heightMm float64) {
	p.doc.AddPageFormat("P", gofpdf.SizeType{Wd: widthMm, Ht: heightMm})
}

// PageCount returns the number of pages in the document.
func (p *PDF) PageCount() int { return p.doc.PageCount() }

// RegisterFont embeds a TrueType font for every style of family. The bytes
// are parsed first so a corrupt file never reaches the document.
func (p *PDF) RegisterFont(family string, ttf []byte) (err error) {
	key := fontKey(family)
	if key == "" {
		return fmt.Errorf("surface: font family is empty: %w", certgen.ErrFontFormat)
	}
	if p.fonts[key] {
		return nil
	}
	if _, err := truetype.Parse(ttf); err != nil {
		return fmt.Errorf("surface: font %q: %w: %v", family, certgen.ErrFontFormat, err)
	}
	defer func() {
		if r := recover(); r != nil {
			p.doc.ClearError()
			err = fmt.Errorf("surface: font %q: %w: %v", family, certgen.ErrFontFormat, r)
		}
	}()
	for _, style := range []string{"", "B", "I", "BI"} {
		p.doc.AddUTF8FontFromBytes(key, style, ttf)
	}
	if err := p.takeError(); err != nil {
		return fmt.Errorf("surface: font %q: %w: %v", family, certgen.ErrFontFormat, err)
	}
	p.fonts[key] = true
	return nil
}

// HasFont reports whether family was registered with RegisterFont.
func (p *PDF) HasFont(family string) bool { return p.fonts[fontKey(family)] }

func (p *PDF) setFont(f Font) {
	key := fontKey(f.Family)
	p.utf8 = p.fonts[key]
	if !p.utf8 {
		key, _ = builtinFamily(key)
		if key == "" {
			key = FamilyHelvetica
		}
	}
	p.doc.SetFont(key, pdfStyle(f.Style), f.Size)
}

func (p *PDF) encode(s string) string {
	if p.utf8 {
		return s
	}
	return p.tr(s)
}

// MeasureText returns the width of s in millimetres.
func (p *PDF) MeasureText(f Font, s string) float64 {
	p.setFont(f)
	return p.doc.GetStringWidth(p.encode(s))
}

// Text draws s with its baseline at top + 0.8 * font size.
func (p *PDF) Text(f Font, s string, x, top float64, c Color) {
	p.setFont(f)
	p.doc.SetTextColor(int(c.R), int(c.G), int(c.B))
	p.doc.Text(x, top+geometry.TopBaselineRatio*f.SizeMm(), p.encode(s))
}

func (p *PDF) applyStyle(st Style) string {
	var op string
	if st.Fill != nil {
		p.doc.SetFillColor(int(st.Fill.R), int(st.Fill.G), int(st.Fill.B))
		op = "F"
	}
	if st.Stroke != nil {
		p.doc.SetDrawColor(int(st.Stroke.R), int(st.Stroke.G), int(st.Stroke.B))
		p.doc.SetLineWidth(st.LineWidth)
		op += "D"
	}
	return op
}

func (p *PDF) Rect(r geometry.Rect, st Style) {
	if op := p.applyStyle(st); op != "" {
		p.doc.Rect(r.X, r.Y, r.W, r.H, op)
	}
}

func (p *PDF) Circle(cx, cy, radius float64, st Style) {
	if op := p.applyStyle(st); op != "" {
		p.doc.Circle(cx, cy, radius, op)
	}
}

func (p *PDF) Line(x1, y1, x2, y2 float64, st Style) {
	if st.Stroke == nil {
		return
	}
	p.applyStyle(Style{Stroke: st.Stroke, LineWidth: st.LineWidth})
	p.doc.Line(x1, y1, x2, y2)
}

// Image embeds data once per key and draws it stretched into r.
func (p *PDF) Image(key string, data []byte, r geometry.Rect) error {
	if key == "" {
		h := fnv.New64a()
		h.Write(data)
		key = fmt.Sprintf("img-%x", h.Sum64())
	}
	if !p.images[key] {
		norm, tp, err := NormalizeImage(data)
		if err != nil {
			return err
		}
		p.doc.RegisterImageOptionsReader(key, gofpdf.ImageOptions{ImageType: tp}, bytes.NewReader(norm))
		if err := p.takeError(); err != nil {
			return fmt.Errorf("surface: image %q: %w: %v", key, certgen.ErrUnsupportedImage, err)
		}
		p.images[key] = true
	}
	p.doc.ImageOptions(key, r.X, r.Y, r.W, r.H, false, gofpdf.ImageOptions{}, 0, "")
	return p.takeError()
}

func (p *PDF) QRCode(content string, r geometry.Rect, c Color) error {
	m, err := encodeQR(content)
	if err != nil {
		return err
	}
	p.modules(m, r, c)
	return nil
}

func (p *PDF) Barcode(content, format string, r geometry.Rect, c Color) error {
	m, err := encodeBarcode(content, format)
	if err != nil {
		return err
	}
	p.modules(m, r, c)
	return nil
}

func (p *PDF) modules(m matrix, r geometry.Rect, c Color) {
	p.doc.SetFillColor(int(c.R), int(c.G), int(c.B))
	m.paint(r, func(cell geometry.Rect) {
		p.doc.Rect(cell.X, cell.Y, cell.W, cell.H, "F")
	})
}

// takeError returns and clears the document error so one bad resource
// does not fail the whole document.
func (p *PDF) takeError() error {
	if p.doc.Ok() {
		return nil
	}
	err := p.doc.Error()
	p.doc.ClearError()
	return err
}

// Err returns the pending document error, if any.
func (p *PDF) Err() error { return p.doc.Error() }

// Output writes the finished document to w. The document is closed
// afterwards and must not be drawn on again. A document without pages
// cannot be written and yields certgen.ErrNoPages.
func (p *PDF) Output(w io.Writer) error {
	if p.doc.PageCount() == 0 {
		return fmt.Errorf("surface: writing pdf: %w", certgen.ErrNoPages)
	}
	if err := p.doc.Output(w); err != nil {
		return fmt.Errorf("surface: writing pdf: %w", err)
	}
	return nil
}

// Bytes returns the finished document.
func (p *PDF) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fontKey(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}
