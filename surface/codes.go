package surface

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/ean"
	pdf417 "github.com/ruudk/golang-pdf417"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/yahya12213/certgen/geometry"
)

// Barcode symbologies.
const (
	FormatCode128    = "code128"
	FormatCode39     = "code39"
	FormatEAN        = "ean"
	FormatDataMatrix = "datamatrix"
	FormatPDF417     = "pdf417"
)

var errEmptyCode = errors.New("surface: empty code content")

// matrix is a grid of dark modules, row-major.
type matrix [][]bool

func (m matrix) size() (cols, rows int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m[0]), len(m)
}

// encodeQR returns the modules of a medium-recovery QR code without the
// quiet zone.
func encodeQR(content string) (matrix, error) {
	if content == "" {
		return nil, errEmptyCode
	}
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("surface: qr: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// encodeBarcode returns the modules of a linear or stacked barcode.
func encodeBarcode(content, format string) (m matrix, err error) {
	if content == "" {
		return nil, errEmptyCode
	}
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("surface: %s: %v", format, r)
		}
	}()

	var bc barcode.Barcode
	switch strings.ToLower(format) {
	case "", FormatCode128:
		bc, err = code128.Encode(content)
	case FormatCode39:
		bc, err = code39.Encode(content, false, true)
	case FormatEAN:
		bc, err = ean.Encode(content)
	case FormatDataMatrix:
		bc, err = datamatrix.Encode(content)
	case FormatPDF417:
		bc = pdf417.Encode(content, 10, 2)
	default:
		return nil, fmt.Errorf("surface: unknown barcode format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("surface: %s: %w", format, err)
	}
	return barcodeMatrix(bc), nil
}

func barcodeMatrix(bc barcode.Barcode) matrix {
	b := bc.Bounds()
	m := make(matrix, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := make([]bool, b.Dx())
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := bc.At(x, y).RGBA()
			row[x-b.Min.X] = (r+g+bl)/3 < 0x8000
		}
		m[y-b.Min.Y] = row
	}
	return m
}

// paint stretches m over r and calls fill once per horizontal run of dark
// modules.
func (m matrix) paint(r geometry.Rect, fill func(geometry.Rect)) {
	cols, rows := m.size()
	if cols == 0 || rows == 0 {
		return
	}
	cw, ch := r.W/float64(cols), r.H/float64(rows)
	for y, row := range m {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fill(geometry.Rect{
				X: r.X + float64(start)*cw,
				Y: r.Y + float64(y)*ch,
				W: float64(x-start) * cw,
				H: ch,
			})
		}
	}
}
