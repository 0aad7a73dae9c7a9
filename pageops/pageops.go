// Package pageops imports the pages of existing PDF files into certificate
// documents: a batch can start from a cover file or extend a file written
// earlier, finished files can be merged, and a batch file can be split back
// into one file per certificate.
//
// Pages are imported as templates with the gofpdi contrib package, so the
// imported content is copied unchanged.
package pageops

import (
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	realgofpdi "github.com/phpdave11/gofpdi"

	"github.com/yahya12213/certgen/geometry"
	"github.com/yahya12213/certgen/surface"
)

const mediaBox = "/MediaBox"

// A4 in millimetres, used when a source page reports no size.
const (
	fallbackWidthMm  = 210.0
	fallbackHeightMm = 297.0
)

// source is a PDF read from a file or from memory.
type source struct {
	path string
	rs   io.ReadSeeker
}

func (s source) String() string {
	if s.path != "" {
		return s.path
	}
	return "stream"
}

// recoverInto turns a panic raised by gofpdi on a malformed file into an error.
func recoverInto(err *error, src source) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pageops: reading %s: %v", src, r)
	}
}

// PageCount returns the number of pages in a PDF file.
func PageCount(path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("pageops: %w", err)
	}
	return pageCount(source{path: path})
}

func pageCount(src source) (n int, err error) {
	defer recoverInto(&err, src)
	imp := realgofpdi.NewImporter()
	if src.rs != nil {
		if _, err := src.rs.Seek(0, io.SeekStart); err != nil {
			return 0, fmt.Errorf("pageops: %w", err)
		}
		imp.SetSourceStream(&src.rs)
	} else {
		imp.SetSourceFile(src.path)
	}
	return len(imp.GetPageSizes()), nil
}

// Append imports every page of the PDF file at path as new pages of doc and
// returns the number of pages added.
func Append(doc *surface.PDF, path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("pageops: %w", err)
	}
	return appendPages(doc, source{path: path}, nil)
}

// AppendReader is Append for a PDF held in memory.
func AppendReader(doc *surface.PDF, r io.ReadSeeker) (int, error) {
	return appendPages(doc, source{rs: r}, nil)
}

// appendPages imports the given 1-based pages of src, or all of them when
// pages is nil.
func appendPages(doc *surface.PDF, src source, pages []int) (n int, err error) {
	count, err := pageCount(src)
	if err != nil {
		return 0, err
	}
	if pages == nil {
		pages = make([]int, count)
		for i := range pages {
			pages[i] = i + 1
		}
	}
	for _, p := range pages {
		if p < 1 || p > count {
			return 0, fmt.Errorf("pageops: %s has %d pages, page %d requested", src, count, p)
		}
	}

	defer recoverInto(&err, src)
	f := doc.Fpdf()
	imp := gofpdi.NewImporter()
	for _, p := range pages {
		var tpl int
		if src.rs != nil {
			tpl = imp.ImportPageFromStream(f, &src.rs, p, mediaBox)
		} else {
			tpl = imp.ImportPage(f, src.path, p, mediaBox)
		}
		w, h := pageSize(imp.GetPageSizes(), p)
		doc.AddPage(w, h)
		imp.UseImportedTemplate(f, tpl, 0, 0, w, h)
		n++
	}
	if err := doc.Err(); err != nil {
		return n, fmt.Errorf("pageops: importing %s: %w", src, err)
	}
	return n, nil
}

// pageSize returns the media box of a page in millimetres. gofpdi reports
// sizes in points.
func pageSize(sizes map[int]map[string]map[string]float64, page int) (w, h float64) {
	if mb, ok := sizes[page][mediaBox]; ok {
		w, h = geometry.PointsToMm(mb["w"]), geometry.PointsToMm(mb["h"])
	}
	if w <= 0 || h <= 0 {
		return fallbackWidthMm, fallbackHeightMm
	}
	return w, h
}

// newDocument returns an empty PDF whose default page is A4. Imported pages
// bring their own size.
func newDocument() *surface.PDF {
	return surface.NewPDF(geometry.Page{WidthMm: fallbackWidthMm, HeightMm: fallbackHeightMm})
}

func writeFile(doc *surface.PDF, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pageops: creating %s: %w", path, err)
	}
	if err := doc.Output(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
