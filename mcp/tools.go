package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/geometry"
	"github.com/yahya12213/certgen/pageops"
	"github.com/yahya12213/certgen/surface"
	"github.com/yahya12213/certgen/variables"
)

// RegisterDefaultTools adds all built-in certificate tools to the server.
// A nil composer gets the defaults of doctpl.NewComposer.
func RegisterDefaultTools(s *Server, c *doctpl.Composer) {
	if c == nil {
		c = doctpl.NewComposer()
	}
	h := handlers{c: c}
	s.AddTool(renderCertificateTool(h))
	s.AddTool(renderBatchTool(h))
	s.AddTool(previewCertificateTool(h))
	s.AddTool(resolvePagesTool())
	s.AddTool(substituteVariablesTool())
	s.AddTool(validateTemplateTool())
	s.AddTool(pageGeometryTool())
	s.AddTool(mergePDFsTool())
	s.AddTool(splitBatchTool())
}

type handlers struct {
	c *doctpl.Composer
}

var templateSchema = map[string]interface{}{
	"type":        "object",
	"description": "Certificate template: layout, colors, fonts and pages of canvas-positioned elements. The legacy single-page shape with top-level elements is accepted.",
}

var recordSchema = map[string]interface{}{
	"type":        "object",
	"description": "Data record supplying {variable} values and element conditions, e.g. {\"student_name\": \"Ahmed\", \"completion_date\": \"2026-01-01\"}",
}

var outputPathSchema = map[string]interface{}{
	"type":        "string",
	"description": "Optional file path to save the PDF. If omitted, returns base64.",
}

func textResult(format string, args ...interface{}) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(format, args...)}}}
}

func jsonResult(v interface{}) (ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", MIMEType: "application/json", Text: string(data)}}}, nil
}

func templateArg(args map[string]interface{}) (*doctpl.Template, error) {
	raw, ok := args["template"]
	if !ok {
		return nil, fmt.Errorf("missing 'template' argument")
	}
	if s, ok := raw.(string); ok {
		return doctpl.Parse([]byte(s))
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	return doctpl.Parse(data)
}

func recordArg(v interface{}) variables.Record {
	if m, ok := v.(map[string]interface{}); ok {
		return variables.Record(m)
	}
	return variables.Record{}
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func numberArg(args map[string]interface{}, name string, def float64) float64 {
	if n, ok := args[name].(float64); ok && n > 0 {
		return n
	}
	return def
}

// writePDF saves pdf to outputPath when given, or returns it as base64.
func writePDF(pdf *surface.PDF, outputPath, what string) (ToolResult, error) {
	data, err := pdf.Bytes()
	if err != nil {
		return ToolResult{}, err
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return textResult("%s created successfully: %s (%d pages, %d bytes)", what, outputPath, pdf.PageCount(), len(data)), nil
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return textResult("%s created successfully (%d pages, %d bytes). Base64 data:\n%s", what, pdf.PageCount(), len(data), encoded), nil
}

func renderCertificateTool(h handlers) Tool {
	return Tool{
		Name:        "render_certificate",
		Description: "Render a certificate template filled with one data record into a PDF. Returns the PDF as base64 or saves it to outputPath.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template":   templateSchema,
				"record":     recordSchema,
				"outputPath": outputPathSchema,
				"watermark": map[string]interface{}{
					"type":        "string",
					"description": "Optional text stamped across every page, e.g. SPECIMEN",
				},
			},
			"required": []string{"template"},
		},
		Handler: h.renderCertificate,
	}
}

func (h handlers) renderCertificate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	t, err := templateArg(args)
	if err != nil {
		return ToolResult{}, err
	}
	pdf := h.c.NewDocument(t)
	if wm := stringArg(args, "watermark"); wm != "" {
		pageops.Watermark(pdf, pageops.TextWatermark{Text: wm})
	}
	if err := h.c.AppendTo(ctx, pdf, t, recordArg(args["record"])); err != nil {
		return ToolResult{}, fmt.Errorf("rendering certificate: %w", err)
	}
	return writePDF(pdf, stringArg(args, "outputPath"), "Certificate")
}

func renderBatchTool(h handlers) Tool {
	return Tool{
		Name:        "render_batch",
		Description: "Render one template for many records into a single PDF, records in input order. Optionally starts from the pages of an existing PDF file.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": templateSchema,
				"records": map[string]interface{}{
					"type":        "array",
					"items":       recordSchema,
					"description": "Data records, one certificate each",
				},
				"appendTo": map[string]interface{}{
					"type":        "string",
					"description": "Optional path of an existing PDF whose pages come first",
				},
				"outputPath": outputPathSchema,
			},
			"required": []string{"template", "records"},
		},
		Handler: h.renderBatch,
	}
}

func (h handlers) renderBatch(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	t, err := templateArg(args)
	if err != nil {
		return ToolResult{}, err
	}
	items, ok := args["records"].([]interface{})
	if !ok {
		return ToolResult{}, fmt.Errorf("missing 'records' argument")
	}
	recs := make([]variables.Record, len(items))
	for i, it := range items {
		recs[i] = recordArg(it)
	}

	pdf := h.c.NewDocument(t)
	if existing := stringArg(args, "appendTo"); existing != "" {
		if _, err := pageops.Append(pdf, existing); err != nil {
			return ToolResult{}, err
		}
	}
	if err := h.c.AppendBatch(ctx, pdf, t, recs); err != nil {
		return ToolResult{}, fmt.Errorf("rendering batch: %w", err)
	}
	return writePDF(pdf, stringArg(args, "outputPath"), "Batch")
}

func previewCertificateTool(h handlers) Tool {
	return Tool{
		Name:        "preview_certificate",
		Description: "Render the first page of a certificate template as a PNG image for a quick visual check.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": templateSchema,
				"record":   recordSchema,
				"scale": map[string]interface{}{
					"type":        "number",
					"description": "Image size relative to the editor canvas (default 0.5)",
				},
			},
			"required": []string{"template"},
		},
		Handler: h.previewCertificate,
	}
}

func (h handlers) previewCertificate(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
	t, err := templateArg(args)
	if err != nil {
		return ToolResult{}, err
	}
	img, err := h.c.Preview(ctx, t, recordArg(args["record"]), numberArg(args, "scale", 0.5))
	if err != nil {
		return ToolResult{}, fmt.Errorf("rendering preview: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ToolResult{}, fmt.Errorf("encoding preview: %w", err)
	}
	b := img.Bounds()
	return ToolResult{Content: []ContentBlock{
		{Type: "image", MIMEType: "image/png", Data: base64.StdEncoding.EncodeToString(buf.Bytes())},
		{Type: "text", Text: fmt.Sprintf("Preview %dx%d px", b.Dx(), b.Dy())},
	}}, nil
}

func resolvePagesTool() Tool {
	return Tool{
		Name:        "resolve_pages",
		Description: "Return the template in the multi-page shape. Legacy single-page templates become one page; the input is not modified.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": templateSchema,
			},
			"required": []string{"template"},
		},
		Handler: func(_ context.Context, args map[string]interface{}) (ToolResult, error) {
			t, err := templateArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(doctpl.Normalize(*t))
		},
	}
}

func substituteVariablesTool() Tool {
	return Tool{
		Name:        "substitute_variables",
		Description: "Replace {variable} tokens in a text with values from a record. Dates are formatted as numeric, long, short or full.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text":   map[string]interface{}{"type": "string", "description": "Text with {variable} tokens"},
				"record": recordSchema,
				"dateFormat": map[string]interface{}{
					"type": "string",
					"enum": []string{variables.DateNumeric, variables.DateLong, variables.DateShort, variables.DateFull},
				},
				"locale": map[string]interface{}{"type": "string", "description": "fr (default) or en"},
			},
			"required": []string{"text"},
		},
		Handler: func(_ context.Context, args map[string]interface{}) (ToolResult, error) {
			text, ok := args["text"].(string)
			if !ok {
				return ToolResult{}, fmt.Errorf("missing 'text' argument")
			}
			sub := variables.Substituter{Locale: variables.LocaleByName(stringArg(args, "locale"))}
			return textResult("%s", sub.Substitute(text, recordArg(args["record"]), stringArg(args, "dateFormat"))), nil
		},
	}
}

func validateTemplateTool() Tool {
	return Tool{
		Name:        "validate_template",
		Description: "Check a template for structural problems: invalid layout, no pages, missing or duplicate element ids, unknown element types, negative sizes.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"template": templateSchema,
			},
			"required": []string{"template"},
		},
		Handler: func(_ context.Context, args map[string]interface{}) (ToolResult, error) {
			t, err := templateArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			report := struct {
				Valid    bool     `json:"valid"`
				Problems []string `json:"problems,omitempty"`
			}{Valid: true}
			if p := doctpl.Problems(t); p != nil {
				report.Valid = false
				report.Problems = p
			}
			return jsonResult(report)
		},
	}
}

func pageGeometryTool() Tool {
	return Tool{
		Name:        "page_geometry",
		Description: "Return the physical size in mm, the editor canvas size in px and the px-to-mm ratios for a page format and orientation.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"format":       map[string]interface{}{"type": "string", "enum": []string{"a4", "letter", "badge", "custom"}},
				"orientation":  map[string]interface{}{"type": "string", "enum": []string{"portrait", "landscape"}},
				"customWidth":  map[string]interface{}{"type": "number", "description": "mm, custom format only"},
				"customHeight": map[string]interface{}{"type": "number", "description": "mm, custom format only"},
			},
		},
		Handler: func(_ context.Context, args map[string]interface{}) (ToolResult, error) {
			page, err := geometry.NewPage(
				geometry.Format(stringArg(args, "format")),
				geometry.Orientation(stringArg(args, "orientation")),
				numberArg(args, "customWidth", 0), numberArg(args, "customHeight", 0),
			)
			if err != nil {
				return ToolResult{}, err
			}
			scale := page.Scale()
			return jsonResult(map[string]interface{}{
				"page":    page,
				"pxToMmX": scale.X,
				"pxToMmY": scale.Y,
			})
		},
	}
}

func mergePDFsTool() Tool {
	return Tool{
		Name:        "merge_pdfs",
		Description: "Merge certificate PDF files into one file, pages in input order.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"inputs": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Paths of the PDF files to merge",
				},
				"outputPath": map[string]interface{}{"type": "string", "description": "Path of the merged file"},
			},
			"required": []string{"inputs", "outputPath"},
		},
		Handler: func(_ context.Context, args map[string]interface{}) (ToolResult, error) {
			var inputs []string
			if items, ok := args["inputs"].([]interface{}); ok {
				for _, it := range items {
					if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
						inputs = append(inputs, s)
					}
				}
			}
			out := stringArg(args, "outputPath")
			if out == "" {
				return ToolResult{}, fmt.Errorf("missing 'outputPath' argument")
			}
			if err := pageops.MergeFiles(out, inputs...); err != nil {
				return ToolResult{}, err
			}
			n, err := pageops.PageCount(out)
			if err != nil {
				return ToolResult{}, err
			}
			return textResult("Merged %d files into %s (%d pages)", len(inputs), out, n), nil
		},
	}
}

func splitBatchTool() Tool {
	return Tool{
		Name:        "split_batch",
		Description: "Split a batch PDF into one file per certificate.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path":      map[string]interface{}{"type": "string", "description": "Batch PDF file"},
				"outputDir": map[string]interface{}{"type": "string", "description": "Existing directory for the certificate files"},
				"pagesPer": map[string]interface{}{
					"type":        "number",
					"description": "Pages per certificate, the page count of the template (default 1)",
				},
			},
			"required": []string{"path", "outputDir"},
		},
		Handler: func(_ context.Context, args map[string]interface{}) (ToolResult, error) {
			files, err := pageops.Split(stringArg(args, "path"), stringArg(args, "outputDir"), int(numberArg(args, "pagesPer", 1)))
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(map[string]interface{}{"files": files})
		},
	}
}
