package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/yahya12213/certgen/doctpl"
	"github.com/yahya12213/certgen/geometry"
	"github.com/yahya12213/certgen/variables"
)

// RegisterDefaultResources adds the reference resources to the server.
// Resources use the certgen:// scheme.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "certgen://variables",
		Name:        "Template Variables",
		Description: "The {variable} tokens templates may use, the record fields each one reads and whether it is a date.",
		MIMEType:    "application/json",
		Handler:     handleVariablesResource,
	})

	s.AddResource(Resource{
		URI:         "certgen://formats",
		Name:        "Page Formats",
		Description: "Built-in page formats with their size in mm and editor canvas size in px, in portrait and landscape.",
		MIMEType:    "application/json",
		Handler:     handleFormatsResource,
	})

	s.AddResource(Resource{
		URI:         "certgen://elements",
		Name:        "Element Types",
		Description: "Element types a template page can hold and their default sizes in canvas px.",
		MIMEType:    "application/json",
		Handler:     handleElementsResource,
	})
}

func jsonContent(uri string, v interface{}) ([]ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}

func handleVariablesResource(uri string) ([]ResourceContent, error) {
	return jsonContent(uri, map[string]interface{}{
		"tokens":      variables.Vocabulary(),
		"dateFormats": []string{variables.DateNumeric, variables.DateLong, variables.DateShort, variables.DateFull},
	})
}

func handleFormatsResource(uri string) ([]ResourceContent, error) {
	return jsonContent(uri, geometry.FormatCatalog())
}

func handleElementsResource(uri string) ([]ResourceContent, error) {
	type elementInfo struct {
		Type          string  `json:"type"`
		DefaultWidth  float64 `json:"defaultWidth"`
		DefaultHeight float64 `json:"defaultHeight"`
	}
	var out []elementInfo
	for _, typ := range []string{
		doctpl.TypeText, doctpl.TypeImage, doctpl.TypeRectangle, doctpl.TypeBorder,
		doctpl.TypeCircle, doctpl.TypeLine, doctpl.TypeQRCode, doctpl.TypeBarcode,
	} {
		w, h := doctpl.Element{Type: typ}.BoxSize()
		out = append(out, elementInfo{Type: typ, DefaultWidth: w, DefaultHeight: h})
	}
	return jsonContent(uri, out)
}
