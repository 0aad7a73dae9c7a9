package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func callTool(t *testing.T, name string, args map[string]interface{}) ToolResult {
	t.Helper()
	s := NewServerWithIO(nil, nil)
	RegisterDefaultTools(s, nil)
	tool, ok := s.tools[name]
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	res, err := tool.Handler(context.Background(), args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return res
}

func textTemplate(content string) map[string]interface{} {
	return map[string]interface{}{
		"layout": map[string]interface{}{"format": "a4", "orientation": "landscape"},
		"elements": []interface{}{
			map[string]interface{}{"id": "t", "type": "text", "content": content, "x": 100, "y": 100},
		},
	}
}

func TestSubstituteVariablesTool(t *testing.T) {
	res := callTool(t, "substitute_variables", map[string]interface{}{
		"text":       "{student_name}, {completion_date}",
		"record":     map[string]interface{}{"student_name": "Ahmed", "completion_date": "2026-01-01"},
		"dateFormat": "numeric",
	})
	if got := res.Content[0].Text; got != "Ahmed, 01/01/2026" {
		t.Fatalf("text = %q", got)
	}
}

func TestValidateTemplateTool(t *testing.T) {
	tpl := map[string]interface{}{
		"pages": []interface{}{
			map[string]interface{}{"elements": []interface{}{
				map[string]interface{}{"id": "a", "type": "text"},
				map[string]interface{}{"id": "a", "type": "hologram"},
			}},
		},
	}
	res := callTool(t, "validate_template", map[string]interface{}{"template": tpl})
	var report struct {
		Valid    bool     `json:"valid"`
		Problems []string `json:"problems"`
	}
	if err := json.Unmarshal([]byte(res.Content[0].Text), &report); err != nil {
		t.Fatal(err)
	}
	if report.Valid || len(report.Problems) != 2 {
		t.Fatalf("report = %+v", report)
	}

	res = callTool(t, "validate_template", map[string]interface{}{"template": textTemplate("ok")})
	if !strings.Contains(res.Content[0].Text, `"valid": true`) {
		t.Fatalf("report = %s", res.Content[0].Text)
	}
}

func TestResolvePagesTool(t *testing.T) {
	res := callTool(t, "resolve_pages", map[string]interface{}{"template": textTemplate("x")})
	var tpl struct {
		Pages    []json.RawMessage `json:"pages"`
		Elements []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal([]byte(res.Content[0].Text), &tpl); err != nil {
		t.Fatal(err)
	}
	if len(tpl.Pages) != 1 || len(tpl.Elements) != 0 {
		t.Fatalf("pages = %d, legacy elements = %d", len(tpl.Pages), len(tpl.Elements))
	}
}

func TestPageGeometryTool(t *testing.T) {
	res := callTool(t, "page_geometry", map[string]interface{}{"format": "a4", "orientation": "landscape"})
	var out struct {
		Page struct {
			CanvasWidthPx  float64 `json:"canvasWidthPx"`
			CanvasHeightPx float64 `json:"canvasHeightPx"`
		} `json:"page"`
	}
	if err := json.Unmarshal([]byte(res.Content[0].Text), &out); err != nil {
		t.Fatal(err)
	}
	if out.Page.CanvasWidthPx != 1123 || out.Page.CanvasHeightPx != 794 {
		t.Fatalf("canvas = %+v", out.Page)
	}
}

func TestPreviewCertificateTool(t *testing.T) {
	res := callTool(t, "preview_certificate", map[string]interface{}{
		"template": textTemplate("{student_name}"),
		"record":   map[string]interface{}{"student_name": "Ahmed"},
		"scale":    0.25,
	})
	if res.Content[0].Type != "image" || res.Content[0].MIMEType != "image/png" || res.Content[0].Data == "" {
		t.Fatalf("block = %+v", res.Content[0])
	}
}

func TestBatchSplitMergeTools(t *testing.T) {
	dir := t.TempDir()
	batch := filepath.Join(dir, "batch.pdf")
	callTool(t, "render_batch", map[string]interface{}{
		"template": textTemplate("{student_name}"),
		"records": []interface{}{
			map[string]interface{}{"student_name": "Ahmed"},
			map[string]interface{}{"student_name": "Sara"},
			map[string]interface{}{"student_name": "Youssef"},
		},
		"outputPath": batch,
	})

	parts := filepath.Join(dir, "parts")
	if err := os.Mkdir(parts, 0o755); err != nil {
		t.Fatal(err)
	}
	res := callTool(t, "split_batch", map[string]interface{}{"path": batch, "outputDir": parts})
	var split struct {
		Files []string `json:"files"`
	}
	if err := json.Unmarshal([]byte(res.Content[0].Text), &split); err != nil {
		t.Fatal(err)
	}
	if len(split.Files) != 3 {
		t.Fatalf("files = %v", split.Files)
	}

	inputs := []interface{}{split.Files[2], split.Files[0]}
	merged := filepath.Join(dir, "merged.pdf")
	res = callTool(t, "merge_pdfs", map[string]interface{}{"inputs": inputs, "outputPath": merged})
	if !strings.Contains(res.Content[0].Text, "(2 pages)") {
		t.Fatalf("merge = %s", res.Content[0].Text)
	}

	res = callTool(t, "render_batch", map[string]interface{}{
		"template":   textTemplate("{student_name}"),
		"records":    []interface{}{map[string]interface{}{"student_name": "Nadia"}},
		"appendTo":   merged,
		"outputPath": filepath.Join(dir, "appended.pdf"),
	})
	if !strings.Contains(res.Content[0].Text, "(3 pages") {
		t.Fatalf("append = %s", res.Content[0].Text)
	}
}

func TestToolArgumentErrors(t *testing.T) {
	s := NewServerWithIO(nil, nil)
	RegisterDefaultTools(s, nil)
	for name, args := range map[string]map[string]interface{}{
		"render_certificate":   {},
		"render_batch":         {"template": textTemplate("x")},
		"substitute_variables": {},
		"page_geometry":        {"format": "tabloid"},
		"merge_pdfs":           {"inputs": []interface{}{"a.pdf"}},
	} {
		if _, err := s.tools[name].Handler(context.Background(), args); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestResourcesRead(t *testing.T) {
	s := NewServerWithIO(nil, nil)
	RegisterDefaultResources(s)

	resp := sendRequest(t, s, "resources/read", 1, map[string]interface{}{"uri": "certgen://formats"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(data), "letter") || !strings.Contains(string(data), "canvasWidthPx") {
		t.Fatalf("formats = %s", data)
	}

	contents, err := handleVariablesResource("certgen://variables")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(contents[0].Text, `"completion_date"`) {
		t.Fatalf("variables = %s", contents[0].Text)
	}
}
