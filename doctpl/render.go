package doctpl

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/fetch"
	"github.com/yahya12213/certgen/geometry"
	"github.com/yahya12213/certgen/surface"
	"github.com/yahya12213/certgen/variables"
)

// Composer renders templates filled with data records. A Composer holds no
// per-render state and may be shared between goroutines; each render owns
// its document and resource caches.
type Composer struct {
	fetcher  fetch.Fetcher
	fonts    fetch.FontProvider
	baseURL  string
	log      *slog.Logger
	subst    variables.Substituter
	progress func(done, total int)
}

// NewComposer creates a Composer using functional options.
//
// Example:
//
//	c := doctpl.NewComposer(
//	    doctpl.WithBaseURL("https://api.example.com"),
//	    doctpl.WithLogger(slog.Default()),
//	)
//	pdf, err := c.Render(ctx, tpl, variables.Record{"student_name": "Ahmed"})
func NewComposer(opts ...Option) *Composer {
	cfg := &composerConfig{
		locale: variables.French,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.fetcher == nil {
		cfg.fetcher = fetch.Mux{HTTP: fetch.NewHTTPFetcher(0, 0)}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Composer{
		fetcher:  cfg.fetcher,
		fonts:    cfg.fonts,
		baseURL:  cfg.baseURL,
		log:      cfg.logger,
		subst:    variables.Substituter{Locale: cfg.locale},
		progress: cfg.progress,
	}
}

// Render creates a new document sized to the template and draws every
// resolved page into it.
func (c *Composer) Render(ctx context.Context, t *Template, rec variables.Record) (*surface.PDF, error) {
	if t == nil {
		return nil, fmt.Errorf("doctpl: render: %w", certgen.ErrNoPages)
	}
	pdf := c.NewDocument(t)
	if err := c.compose(ctx, pdf, t, rec, newResources(), 0); err != nil {
		return nil, err
	}
	return pdf, nil
}

// RenderTo renders t and writes the finished PDF to w. A template without
// pages fails with certgen.ErrNoPages and writes nothing.
func (c *Composer) RenderTo(ctx context.Context, w io.Writer, t *Template, rec variables.Record) error {
	pdf, err := c.Render(ctx, t, rec)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// AppendTo draws every resolved page of t as new pages of s. Pages already
// in s are kept.
func (c *Composer) AppendTo(ctx context.Context, s surface.Surface, t *Template, rec variables.Record) error {
	if t == nil {
		return fmt.Errorf("doctpl: append: %w", certgen.ErrNoPages)
	}
	return c.compose(ctx, s, t, rec, newResources(), 0)
}

// RenderBatch renders one document holding every record in input order.
// Resources shared by the records are fetched once.
func (c *Composer) RenderBatch(ctx context.Context, t *Template, recs []variables.Record) (*surface.PDF, error) {
	if t == nil {
		return nil, fmt.Errorf("doctpl: batch: %w", certgen.ErrNoPages)
	}
	pdf := c.NewDocument(t)
	if err := c.AppendBatch(ctx, pdf, t, recs); err != nil {
		return nil, err
	}
	return pdf, nil
}

// AppendBatch draws every record as new pages of s, in input order.
func (c *Composer) AppendBatch(ctx context.Context, s surface.Surface, t *Template, recs []variables.Record) error {
	if t == nil {
		return fmt.Errorf("doctpl: batch: %w", certgen.ErrNoPages)
	}
	res := newResources()
	for i, rec := range recs {
		if err := c.compose(ctx, s, t, rec, res, 0); err != nil {
			return fmt.Errorf("doctpl: batch record %d: %w", i+1, err)
		}
		if c.progress != nil {
			c.progress(i+1, len(recs))
		}
	}
	return nil
}

// NewDocument returns an empty PDF sized and titled for t, for callers that
// prepare the document before appending to it.
func (c *Composer) NewDocument(t *Template) *surface.PDF {
	pdf := surface.NewPDF(c.pageGeometry(t))
	if t != nil && t.Name != "" {
		pdf.SetTitle(t.Name)
	}
	return pdf
}

// Preview paints the first page of t into an image of the canvas size
// multiplied by scale.
func (c *Composer) Preview(ctx context.Context, t *Template, rec variables.Record, scale float64) (image.Image, error) {
	if t == nil {
		return nil, fmt.Errorf("doctpl: preview: %w", certgen.ErrNoPages)
	}
	r := surface.NewRaster(c.pageGeometry(t), scale)
	if err := c.compose(ctx, r, t, rec, newResources(), 1); err != nil {
		return nil, err
	}
	return r.Picture(), nil
}

// pageGeometry resolves the layout, falling back to portrait A4 so a bad
// layout still produces a document. Validate reports the problem.
func (c *Composer) pageGeometry(t *Template) geometry.Page {
	if t != nil {
		if page, err := t.PageGeometry(); err == nil {
			return page
		}
	}
	page, _ := geometry.NewPage(geometry.FormatA4, geometry.Portrait, 0, 0)
	return page
}

// compose is the page walk shared by every entry point. maxPages limits the
// walk when positive.
func (c *Composer) compose(ctx context.Context, s surface.Surface, t *Template, rec variables.Record, res *resources, maxPages int) error {
	pages := ResolvePages(t)
	if len(pages) == 0 {
		c.log.Warn("template has no pages", "template", t.ID)
		return nil
	}
	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	if rec == nil {
		rec = variables.Record{}
	}
	if _, err := t.PageGeometry(); err != nil {
		c.log.Warn("invalid layout, using a4 portrait", "template", t.ID, "err", err)
	}
	geo := c.pageGeometry(t)
	r := &run{
		Composer: c,
		ctx:      ctx,
		s:        s,
		t:        t,
		rec:      rec,
		page:     geo,
		scale:    geo.Scale(),
		res:      res,
	}
	r.registerFonts(pages)
	for i, p := range pages {
		s.AddPage(geo.WidthMm, geo.HeightMm)
		if bg := t.Background(p); bg != "" {
			if err := certgen.Wrap("background", r.background(bg)); err != nil {
				c.log.Warn("skipping background", "page", i+1, "url", bg, "err", err)
			}
		}
		for _, el := range p.Elements {
			r.element(i, el)
		}
	}
	if pdf, ok := s.(*surface.PDF); ok {
		if err := pdf.Err(); err != nil {
			return fmt.Errorf("doctpl: %w", err)
		}
	}
	return nil
}

// run carries the state of one record's walk.
type run struct {
	*Composer
	ctx   context.Context
	s     surface.Surface
	t     *Template
	rec   variables.Record
	page  geometry.Page
	scale geometry.Scale
	res   *resources
}

var errEmptySource = errors.New("doctpl: empty source")

func (r *run) element(page int, el Element) {
	if el.Condition != "" && !r.rec.Present(el.Condition) {
		r.log.Debug("condition not met", "page", page+1, "element", el.ID, "condition", el.Condition)
		return
	}
	var err error
	switch el.Type {
	case TypeText:
		r.text(el)
	case TypeRectangle, TypeBorder:
		r.rect(el)
	case TypeCircle:
		r.circle(el)
	case TypeLine:
		r.line(el)
	case TypeImage:
		err = certgen.Wrap("image", r.image(el))
	case TypeQRCode:
		err = certgen.Wrap("qrcode", r.qrcode(el))
	case TypeBarcode:
		err = certgen.Wrap("barcode", r.barcode(el))
	default:
		err = fmt.Errorf("%w: %q", certgen.ErrUnknownElement, el.Type)
	}
	if err != nil {
		r.log.Warn("skipping element", "page", page+1, "element", el.ID, "type", el.Type, "err", err)
	}
}
