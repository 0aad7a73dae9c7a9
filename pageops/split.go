package pageops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Split cuts a batch file into one file per certificate of pagesPer pages,
// written to outputDir as certificate_001.pdf, certificate_002.pdf and so
// on. A trailing partial group gets its own file. It returns the paths
// written.
func Split(inputPath, outputDir string, pagesPer int) ([]string, error) {
	if pagesPer < 1 {
		pagesPer = 1
	}
	if info, err := os.Stat(outputDir); err != nil {
		return nil, fmt.Errorf("pageops: output directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("pageops: %s is not a directory", outputDir)
	}
	count, err := PageCount(inputPath)
	if err != nil {
		return nil, err
	}

	var out []string
	for start := 1; start <= count; start += pagesPer {
		end := min(start+pagesPer-1, count)
		path := filepath.Join(outputDir, fmt.Sprintf("certificate_%03d.pdf", len(out)+1))
		doc := newDocument()
		if _, err := appendPages(doc, source{path: inputPath}, pageRange(start, end)); err != nil {
			return out, fmt.Errorf("pageops: splitting pages %d-%d: %w", start, end, err)
		}
		if err := writeFile(doc, path); err != nil {
			return out, err
		}
		out = append(out, path)
	}
	return out, nil
}

// ExtractPages copies specific 1-based pages of a PDF file to w.
func ExtractPages(w io.Writer, inputPath string, pages ...int) error {
	if len(pages) == 0 {
		return fmt.Errorf("pageops: no pages specified")
	}
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("pageops: %w", err)
	}
	doc := newDocument()
	if _, err := appendPages(doc, source{path: inputPath}, pages); err != nil {
		return err
	}
	return doc.Output(w)
}

// ExtractPageRange copies the pages start to end, inclusive, to w.
func ExtractPageRange(w io.Writer, inputPath string, start, end int) error {
	if start < 1 || end < start {
		return fmt.Errorf("pageops: invalid page range [%d, %d]", start, end)
	}
	return ExtractPages(w, inputPath, pageRange(start, end)...)
}

func pageRange(start, end int) []int {
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
