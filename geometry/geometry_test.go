package geometry

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/yahya12213/certgen"
)

func TestNewPageOrientation(t *testing.T) {
	p, err := NewPage(FormatA4, Landscape, 0, 0)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if p.WidthMm != 297 || p.HeightMm != 210 {
		t.Fatalf("landscape A4 = %gx%g mm, want 297x210", p.WidthMm, p.HeightMm)
	}
	if p.CanvasWidthPx != 1123 || p.CanvasHeightPx != 794 {
		t.Fatalf("landscape A4 canvas = %gx%g px, want 1123x794", p.CanvasWidthPx, p.CanvasHeightPx)
	}

	p, err = NewPage(FormatA4, Portrait, 0, 0)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if p.WidthMm != 210 || p.CanvasWidthPx != 794 {
		t.Fatalf("portrait A4 = %gmm/%gpx wide", p.WidthMm, p.CanvasWidthPx)
	}

	p, err = NewPage(FormatBadge, "", 0, 0)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if p.WidthMm < p.HeightMm {
		t.Fatalf("badge should default to landscape, got %gx%g", p.WidthMm, p.HeightMm)
	}
}

func TestNewPageCustom(t *testing.T) {
	p, err := NewPage(FormatCustom, Landscape, 100, 200)
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if p.WidthMm != 200 || p.HeightMm != 100 {
		t.Fatalf("custom landscape = %gx%g, want 200x100", p.WidthMm, p.HeightMm)
	}

	if _, err := NewPage(FormatCustom, Portrait, 0, 100); !errors.Is(err, certgen.ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
	if _, err := NewPage("tabloid", Portrait, 0, 0); !errors.Is(err, certgen.ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout for unknown format, got %v", err)
	}
}

func TestNewPageRejectsSubPixelCanvas(t *testing.T) {
	for _, dims := range [][2]float64{{0.1, 0.1}, {100, 0.1}, {math.NaN(), 50}, {math.Inf(1), 50}} {
		if _, err := NewPage(FormatCustom, "", dims[0], dims[1]); !errors.Is(err, certgen.ErrInvalidLayout) {
			t.Errorf("NewPage(%g, %g): got %v, want ErrInvalidLayout", dims[0], dims[1], err)
		}
	}
	p, err := NewPage(FormatCustom, "", 0.3, 0.3)
	if err != nil {
		t.Fatalf("NewPage(0.3, 0.3): %v", err)
	}
	if s := p.Scale(); math.IsInf(s.X, 0) || math.IsNaN(s.Y) {
		t.Fatalf("scale = %+v", s)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatA4, FormatLetter, FormatBadge} {
		for _, o := range []Orientation{Portrait, Landscape} {
			p, err := NewPage(f, o, 0, 0)
			if err != nil {
				t.Fatalf("NewPage(%s,%s): %v", f, o, err)
			}
			s := p.Scale()
			for _, px := range []float64{0, 1, 50, 333.33, p.CanvasWidthPx} {
				if got := s.ToPxX(s.ToMmX(px)); math.Abs(got-px) > 1e-6 {
					t.Errorf("%s/%s x round trip %g -> %g", f, o, px, got)
				}
				if got := s.ToPxY(s.ToMmY(px)); math.Abs(got-px) > 1e-6 {
					t.Errorf("%s/%s y round trip %g -> %g", f, o, px, got)
				}
			}
		}
	}
}

func TestScaleFullCanvasMapsToPage(t *testing.T) {
	p, _ := NewPage(FormatLetter, Landscape, 0, 0)
	s := p.Scale()
	if got := s.ToMmX(p.CanvasWidthPx); math.Abs(got-p.WidthMm) > 1e-9 {
		t.Fatalf("canvas width maps to %g mm, want %g", got, p.WidthMm)
	}
	if got := s.ToMmY(p.CanvasHeightPx); math.Abs(got-p.HeightMm) > 1e-9 {
		t.Fatalf("canvas height maps to %g mm, want %g", got, p.HeightMm)
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"center", 500},
		{"CANVAS_WIDTH_PX - 20", 980},
		{"CANVAS_HEIGHT_PX / 2", 300},
		{"(CANVAS_WIDTH_PX - 200) / 2", 400},
		{"10 + 2 * 3", 16},
		{"-5 + 10", 5},
		{"2.5 * 4", 10},
		{"center - 75", 425},
		{"alert(1)", 0},
		{"CANVAS_WIDTH_PX; rm -rf", 0},
		{"10 / 0", 0},
		{"(1 + 2", 0},
		{"1 2", 0},
		{"", 0},
		{"window.innerWidth", 0},
		{"1e9", 0},
	}
	for _, tt := range tests {
		if got := Eval(tt.expr, 1000, 1000, 600); got != tt.want {
			t.Errorf("Eval(%q) = %g, want %g", tt.expr, got, tt.want)
		}
	}
}

func TestCoordJSON(t *testing.T) {
	var v struct {
		X Coord `json:"x"`
		Y Coord `json:"y"`
		Z Coord `json:"z"`
	}
	if err := json.Unmarshal([]byte(`{"x": 12.5, "y": "CANVAS_HEIGHT_PX - 10", "z": "42"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.X.IsExpr() || v.X.Resolve(0, Page{}) != 12.5 {
		t.Fatalf("x = %v", v.X)
	}
	if !v.Y.IsExpr() {
		t.Fatal("y should be an expression")
	}
	page := Page{CanvasWidthPx: 800, CanvasHeightPx: 600}
	if got := v.Y.Resolve(page.CanvasHeightPx, page); got != 590 {
		t.Fatalf("y resolves to %g, want 590", got)
	}
	if v.Z.IsExpr() || v.Z.Resolve(0, page) != 42 {
		t.Fatalf("numeric string should become a number, got %v", v.Z)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"x":12.5,"y":"CANVAS_HEIGHT_PX - 10","z":42}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestAnchorX(t *testing.T) {
	if got := AnchorX(100, 200, AlignLeft); got != 100 {
		t.Errorf("left anchor = %g", got)
	}
	if got := AnchorX(100, 200, AlignCenter); got != 200 {
		t.Errorf("center anchor = %g, want 200", got)
	}
	if got := AnchorX(100, 200, AlignRight); got != 300 {
		t.Errorf("right anchor = %g, want 300", got)
	}
	for _, a := range []Align{AlignLeft, AlignCenter, AlignRight} {
		if got := LeftFromAnchor(AnchorX(100, 200, a), 200, a); got != 100 {
			t.Errorf("%s: LeftFromAnchor does not invert AnchorX: %g", a, got)
		}
	}
}

func TestUnionAll(t *testing.T) {
	u := UnionAll([]Rect{{X: 10, Y: 10, W: 10, H: 10}, {X: 50, Y: 0, W: 5, H: 40}})
	want := Rect{X: 10, Y: 0, W: 45, H: 40}
	if u != want {
		t.Fatalf("UnionAll = %+v, want %+v", u, want)
	}
}

func TestFormatCatalog(t *testing.T) {
	cat := FormatCatalog()
	if len(cat) != 3 || cat[0].Name != FormatA4 {
		t.Fatalf("catalog = %+v", cat)
	}
	a4 := cat[0]
	if a4.Landscape.CanvasWidthPx != 1123 || a4.Landscape.CanvasHeightPx != 794 {
		t.Fatalf("a4 landscape = %+v", a4.Landscape)
	}
	if a4.Portrait.WidthMm != 210 || a4.Portrait.HeightMm != 297 {
		t.Fatalf("a4 portrait = %+v", a4.Portrait)
	}
}
