package pageops

import (
	"errors"
	"fmt"
	"io"
)

var errNoInputs = errors.New("pageops: no input files provided")

// Merge combines PDF files and writes the result to w. Pages are added in
// order: all pages of the first file, then all of the second, and so on.
func Merge(w io.Writer, inputPaths ...string) error {
	if len(inputPaths) == 0 {
		return errNoInputs
	}
	doc := newDocument()
	for _, p := range inputPaths {
		if _, err := Append(doc, p); err != nil {
			return fmt.Errorf("pageops: merging %s: %w", p, err)
		}
	}
	return doc.Output(w)
}

// MergeFiles combines PDF files into outputPath.
func MergeFiles(outputPath string, inputPaths ...string) error {
	if len(inputPaths) == 0 {
		return errNoInputs
	}
	doc := newDocument()
	for _, p := range inputPaths {
		if _, err := Append(doc, p); err != nil {
			return fmt.Errorf("pageops: merging %s: %w", p, err)
		}
	}
	return writeFile(doc, outputPath)
}
