package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yahya12213/certgen/pageops"
)

const template = `{
	"name": "Attestation",
	"layout": {"format": "a4", "orientation": "landscape"},
	"pages": [
		{"elements": [{"id": "name", "type": "text", "content": "{student_name}", "x": 100, "y": 300}]},
		{"elements": [{"id": "code", "type": "qrcode", "content": "{certificate_number}", "x": 900, "y": 600}]}
	]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-config", ""}, args...)
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	n, err := pageops.PageCount(path)
	if err != nil {
		t.Fatalf("PageCount(%s): %v", path, err)
	}
	return n
}

func TestRenderAndAppend(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "template.json", template)
	rec := writeFile(t, dir, "record.json", `{"student_name": "Ahmed", "certificate_number": "C-001"}`)
	first := filepath.Join(dir, "first.pdf")

	if _, err := runCLI(t, "render", "-template", tpl, "-data", rec, "-out", first, "-watermark", "SPECIMEN"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := pageCount(t, first); n != 2 {
		t.Fatalf("pages = %d, want 2", n)
	}

	second := filepath.Join(dir, "second.pdf")
	if _, err := runCLI(t, "render", "-template", tpl, "-data", rec, "-out", second, "-append", first); err != nil {
		t.Fatalf("render -append: %v", err)
	}
	if n := pageCount(t, second); n != 4 {
		t.Fatalf("appended pages = %d, want 4", n)
	}
}

func TestBatchSplit(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "template.json", template)
	data := writeFile(t, dir, "records.json", `[{"student_name": "A"}, {"student_name": "B"}, {"student_name": "C"}]`)
	out := filepath.Join(dir, "batch.pdf")
	parts := filepath.Join(dir, "parts")

	if _, err := runCLI(t, "batch", "-template", tpl, "-data", data, "-out", out, "-split", parts); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if n := pageCount(t, out); n != 6 {
		t.Fatalf("pages = %d, want 6", n)
	}
	files, err := filepath.Glob(filepath.Join(parts, "*.pdf"))
	if err != nil || len(files) != 3 {
		t.Fatalf("split files = %v, %v", files, err)
	}

	if _, err := runCLI(t, "batch", "-template", tpl, "-data", data, "-append", out, "-split", parts); err == nil {
		t.Fatal("expected error for -split with -append")
	}
}

func TestMergeAndSplit(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "template.json", template)
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	for _, out := range []string{a, b} {
		if _, err := runCLI(t, "render", "-template", tpl, "-out", out); err != nil {
			t.Fatal(err)
		}
	}
	merged := filepath.Join(dir, "merged.pdf")
	if _, err := runCLI(t, "merge", "-out", merged, a, b); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n := pageCount(t, merged); n != 4 {
		t.Fatalf("merged pages = %d", n)
	}

	stdout, err := runCLI(t, "split", "-in", merged, "-dir", filepath.Join(dir, "out"), "-pages", "2")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if lines := strings.Fields(stdout); len(lines) != 2 {
		t.Fatalf("split output = %q", stdout)
	}
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "template.json", template)
	out := filepath.Join(dir, "preview.jpg")
	if _, err := runCLI(t, "preview", "-template", tpl, "-out", out, "-scale", "0.2"); err != nil {
		t.Fatalf("preview: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Fatalf("preview is not a JPEG: %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", template)
	stdout, err := runCLI(t, "validate", "-template", good)
	if err != nil || strings.TrimSpace(stdout) != "ok" {
		t.Fatalf("validate good = %q, %v", stdout, err)
	}

	bad := writeFile(t, dir, "bad.json", `{"layout": {"format": "a5"}, "pages": [{"elements": [{"type": "text"}]}]}`)
	stdout, err = runCLI(t, "validate", "-template", bad)
	if !errors.Is(err, errInvalid) {
		t.Fatalf("validate bad err = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(stdout), "\n"); len(lines) != 2 {
		t.Fatalf("problems = %q", stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	if _, err := runCLI(t); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("no command err = %v", err)
	}
	if _, err := runCLI(t, "print"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("unknown command err = %v", err)
	}
	if _, err := runCLI(t, "render"); err == nil {
		t.Fatal("expected error without -template")
	}
}
