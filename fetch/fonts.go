package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yahya12213/certgen"
)

// CustomFontPrefix starts the family name templates use for uploaded fonts.
const CustomFontPrefix = "custom-font-"

// CustomFont is an uploaded font file.
type CustomFont struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	FileFormat string `json:"file_format" yaml:"file_format"`
	FileURL    string `json:"file_url" yaml:"file_url"`
}

// Family returns the family name elements use to select this font.
func (f CustomFont) Family() string { return CustomFontPrefix + f.ID }

// FontProvider lists the custom fonts available to templates.
type FontProvider interface {
	ListFonts(ctx context.Context) ([]CustomFont, error)
}

// StaticFonts is a fixed font list.
type StaticFonts []CustomFont

func (s StaticFonts) ListFonts(context.Context) ([]CustomFont, error) { return s, nil }

type catalog struct {
	Fonts []CustomFont `yaml:"fonts"`
}

// LoadCatalog reads a YAML font catalog:
//
//	fonts:
//	  - id: "7"
//	    name: Great Vibes
//	    file_format: ttf
//	    file_url: /uploads/fonts/great-vibes.ttf
func LoadCatalog(path string) (StaticFonts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetch: reading font catalog: %w", err)
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("fetch: parsing font catalog: %w", err)
	}
	return StaticFonts(c.Fonts), nil
}

// RemoteFonts lists fonts from a JSON endpoint returning an array of
// CustomFont objects, the shape the back office serves.
type RemoteFonts struct {
	URL     string
	Fetcher Fetcher
}

func (r RemoteFonts) ListFonts(ctx context.Context) ([]CustomFont, error) {
	data, err := r.Fetcher.Fetch(ctx, r.URL)
	if err != nil {
		return nil, err
	}
	var fonts []CustomFont
	if err := json.Unmarshal(data, &fonts); err != nil {
		return nil, fmt.Errorf("fetch: decoding font list: %w", err)
	}
	return fonts, nil
}

// CheckFontData reports whether data is a font the surfaces can embed.
// Only TrueType outlines are supported; CFF-based OpenType and the WOFF
// containers are rejected with ErrFontFormat.
func CheckFontData(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("fetch: font too short: %w", certgen.ErrFontFormat)
	}
	switch magic := data[:4]; {
	case bytes.Equal(magic, []byte{0, 1, 0, 0}), bytes.Equal(magic, []byte("true")):
		return nil
	case bytes.Equal(magic, []byte("OTTO")):
		return fmt.Errorf("fetch: CFF OpenType: %w", certgen.ErrFontFormat)
	case bytes.Equal(magic, []byte("wOFF")), bytes.Equal(magic, []byte("wOF2")):
		return fmt.Errorf("fetch: WOFF: %w", certgen.ErrFontFormat)
	}
	return fmt.Errorf("fetch: unrecognised font data: %w", certgen.ErrFontFormat)
}

// SupportedFontFormat reports whether a declared file format can be embedded.
func SupportedFontFormat(format string) bool {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "ttf", "truetype", "font/ttf":
		return true
	}
	return false
}
