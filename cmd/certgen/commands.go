package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/disintegration/imaging"

	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/httpapi"
	"github.com/yahya12213/certgen/pageops"
	"github.com/yahya12213/certgen/surface"
	"github.com/yahya12213/certgen/variables"
)

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("certgen "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) composer(opts ...doctpl.Option) (*doctpl.Composer, error) {
	base, err := a.cfg.ComposerOptions(a.log)
	if err != nil {
		return nil, err
	}
	return doctpl.NewComposer(append(base, opts...)...), nil
}

func readTemplate(path string) (*doctpl.Template, error) {
	if path == "" {
		return nil, errors.New("-template is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return doctpl.Parse(data)
}

// readRecords reads a JSON object or an array of objects. An empty path
// yields one empty record.
func readRecords(path string) ([]variables.Record, error) {
	if path == "" {
		return []variables.Record{{}}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var many []variables.Record
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one variables.Record
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parsing %s: expected a JSON object or array of objects: %w", path, err)
	}
	return []variables.Record{one}, nil
}

func writePDF(pdf *surface.PDF, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pdf.Output(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// document prepares the output document: the watermark is registered first
// so it lands on every page, then the pages of an existing PDF are imported.
func document(c *doctpl.Composer, t *doctpl.Template, appendTo, watermark string) (*surface.PDF, error) {
	pdf := c.NewDocument(t)
	if watermark != "" {
		pageops.Watermark(pdf, pageops.TextWatermark{Text: watermark})
	}
	if appendTo != "" {
		if _, err := pageops.Append(pdf, appendTo); err != nil {
			return nil, err
		}
	}
	return pdf, nil
}

func (a *app) render(ctx context.Context, args []string) error {
	fs := newFlagSet(a, "render")
	tplPath := fs.String("template", "", "Template JSON file")
	dataPath := fs.String("data", "", "Record JSON file")
	out := fs.String("out", "certificate.pdf", "Output PDF file")
	appendTo := fs.String("append", "", "Existing PDF whose pages come first")
	watermark := fs.String("watermark", "", "Text stamped across every page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := readTemplate(*tplPath)
	if err != nil {
		return err
	}
	recs, err := readRecords(*dataPath)
	if err != nil {
		return err
	}
	if len(recs) != 1 {
		return fmt.Errorf("%s holds %d records, use the batch command", *dataPath, len(recs))
	}
	c, err := a.composer()
	if err != nil {
		return err
	}
	pdf, err := document(c, t, *appendTo, *watermark)
	if err != nil {
		return err
	}
	if err := c.AppendTo(ctx, pdf, t, recs[0]); err != nil {
		return err
	}
	if err := writePDF(pdf, *out); err != nil {
		return err
	}
	a.log.Info("certificate written", "path", *out, "pages", pdf.PageCount())
	return nil
}

func (a *app) batch(ctx context.Context, args []string) error {
	fs := newFlagSet(a, "batch")
	tplPath := fs.String("template", "", "Template JSON file")
	dataPath := fs.String("data", "", "JSON array of records")
	out := fs.String("out", "certificates.pdf", "Output PDF file")
	appendTo := fs.String("append", "", "Existing PDF whose pages come first")
	watermark := fs.String("watermark", "", "Text stamped across every page")
	splitDir := fs.String("split", "", "Also write one PDF per certificate into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *splitDir != "" && *appendTo != "" {
		return errors.New("-split cannot be combined with -append")
	}

	t, err := readTemplate(*tplPath)
	if err != nil {
		return err
	}
	recs, err := readRecords(*dataPath)
	if err != nil {
		return err
	}
	c, err := a.composer(doctpl.WithProgress(func(done, total int) {
		a.log.Debug("batch progress", "done", done, "total", total)
	}))
	if err != nil {
		return err
	}
	pdf, err := document(c, t, *appendTo, *watermark)
	if err != nil {
		return err
	}
	if err := c.AppendBatch(ctx, pdf, t, recs); err != nil {
		return err
	}
	if err := writePDF(pdf, *out); err != nil {
		return err
	}
	a.log.Info("batch written", "path", *out, "records", len(recs), "pages", pdf.PageCount())

	if *splitDir == "" {
		return nil
	}
	perCert := len(doctpl.ResolvePages(t))
	if perCert == 0 {
		return nil
	}
	if err := os.MkdirAll(*splitDir, 0o755); err != nil {
		return err
	}
	files, err := pageops.Split(*out, *splitDir, perCert)
	if err != nil {
		return err
	}
	a.log.Info("batch split", "dir", *splitDir, "files", len(files))
	return nil
}

func (a *app) preview(ctx context.Context, args []string) error {
	fs := newFlagSet(a, "preview")
	tplPath := fs.String("template", "", "Template JSON file")
	dataPath := fs.String("data", "", "Record JSON file")
	out := fs.String("out", "preview.png", "Output image (.png or .jpg)")
	scale := fs.Float64("scale", 1, "Image size relative to the editor canvas")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := readTemplate(*tplPath)
	if err != nil {
		return err
	}
	recs, err := readRecords(*dataPath)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		recs = []variables.Record{{}}
	}
	c, err := a.composer()
	if err != nil {
		return err
	}
	img, err := c.Preview(ctx, t, recs[0], *scale)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, *out); err != nil {
		return err
	}
	b := img.Bounds()
	a.log.Info("preview written", "path", *out, "width", b.Dx(), "height", b.Dy())
	return nil
}

func (a *app) validate(_ context.Context, args []string) error {
	fs := newFlagSet(a, "validate")
	tplPath := fs.String("template", "", "Template JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := readTemplate(*tplPath)
	if err != nil {
		return err
	}
	problems := doctpl.Problems(t)
	if len(problems) == 0 {
		fmt.Fprintln(a.stdout, "ok")
		return nil
	}
	for _, p := range problems {
		fmt.Fprintln(a.stdout, p)
	}
	return errInvalid
}

func (a *app) merge(_ context.Context, args []string) error {
	fs := newFlagSet(a, "merge")
	out := fs.String("out", "merged.pdf", "Output PDF file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := pageops.MergeFiles(*out, fs.Args()...); err != nil {
		return err
	}
	a.log.Info("merged", "path", *out, "inputs", fs.NArg())
	return nil
}

func (a *app) split(_ context.Context, args []string) error {
	fs := newFlagSet(a, "split")
	in := fs.String("in", "", "Batch PDF file")
	dir := fs.String("dir", ".", "Output directory")
	pages := fs.Int("pages", 1, "Pages per certificate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	files, err := pageops.Split(*in, *dir, *pages)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(a.stdout, f)
	}
	return nil
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := newFlagSet(a, "serve")
	addr := fs.String("addr", a.cfg.Server.Addr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.cfg.Server.Addr = *addr

	srv, err := httpapi.New(a.cfg, a.log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
