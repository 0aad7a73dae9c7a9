package doctpl

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/yahya12213/certgen"
	"github.com/yahya12213/certgen/geometry"
)

const legacyJSON = `{
	"name": "Legacy",
	"layout": {"format": "a4", "orientation": "landscape"},
	"background_image_url": "/uploads/bg.png",
	"elements": [
		{"id": "title", "type": "text", "content": "Certificat", "x": "center", "y": 80},
		{"id": "frame", "type": "border", "x": 10, "y": 10, "width": 1103, "height": 200},
		{"id": "name", "type": "text", "content": "{student_name}", "x": 100, "y": 300}
	]
}`

func TestParseLegacyTemplate(t *testing.T) {
	tpl, err := Parse([]byte(legacyJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	pages := ResolvePages(tpl)
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	var ids []string
	for _, el := range pages[0].Elements {
		ids = append(ids, el.ID)
	}
	if !reflect.DeepEqual(ids, []string{"title", "frame", "name"}) {
		t.Fatalf("element order = %v", ids)
	}
	if x := pages[0].Elements[0].X; !x.IsExpr() || x.String() != "center" {
		t.Fatalf("x = %v, want the center expression", x)
	}
}

func legacyTemplate() *Template {
	return &Template{
		Layout:             Layout{Format: geometry.FormatA4, Orientation: geometry.Landscape},
		BackgroundImageURL: "/uploads/bg.png",
		Elements: []Element{
			{ID: "title", Type: TypeText, Content: "Certificat", X: geometry.Expr("center"), Y: geometry.Px(80)},
			{ID: "frame", Type: TypeBorder, X: geometry.Px(10), Y: geometry.Px(10), Width: 1103, Height: 774},
			{ID: "name", Type: TypeText, Content: "{student_name}", X: geometry.Px(100), Y: geometry.Px(300)},
		},
	}
}

func TestResolvePagesLegacy(t *testing.T) {
	tpl := legacyTemplate()
	pages := ResolvePages(tpl)
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if !reflect.DeepEqual(pages[0].Elements, tpl.Elements) {
		t.Fatal("synthesized page must hold the legacy elements in order")
	}
	if pages[0].BackgroundImageURL != "/uploads/bg.png" {
		t.Fatalf("background = %q", pages[0].BackgroundImageURL)
	}

	pages[0].Elements[0].ID = "changed"
	if tpl.Elements[0].ID != "title" {
		t.Fatal("ResolvePages must not share the legacy slice")
	}
}

func TestResolvePagesKeepsPages(t *testing.T) {
	tpl := &Template{
		Pages:    []Page{{Elements: []Element{{ID: "a", Type: TypeText}}}, {}},
		Elements: []Element{{ID: "legacy", Type: TypeText}},
	}
	if pages := ResolvePages(tpl); len(pages) != 2 || pages[0].Elements[0].ID != "a" {
		t.Fatalf("pages = %+v", pages)
	}
	if ResolvePages(&Template{}) != nil || ResolvePages(nil) != nil {
		t.Fatal("an empty template resolves to no pages")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	multi := &Template{
		BackgroundImageURL: "/bg.png",
		Pages:              []Page{{Elements: []Element{{ID: "a", Type: TypeText}}}, {BackgroundImageURL: "/p2.png"}},
	}
	for name, tpl := range map[string]*Template{
		"legacy": legacyTemplate(),
		"multi":  multi,
		"empty":  {},
	} {
		once := Normalize(*tpl)
		twice := Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("%s: Normalize is not idempotent:\n%+v\n%+v", name, once, twice)
		}
		if !reflect.DeepEqual(ResolvePages(&once), ResolvePages(tpl)) {
			t.Errorf("%s: Normalize changed the resolved pages", name)
		}
		if once.Elements != nil {
			t.Errorf("%s: legacy elements not cleared", name)
		}
	}
	if got := Normalize(*multi); got.BackgroundImageURL != "/bg.png" {
		t.Fatalf("multi-page template background dropped: %q", got.BackgroundImageURL)
	}
}

func TestBackgroundFallback(t *testing.T) {
	tpl := &Template{BackgroundImageURL: "/tpl.png"}
	if got := tpl.Background(Page{}); got != "/tpl.png" {
		t.Fatalf("got %q", got)
	}
	if got := tpl.Background(Page{BackgroundImageURL: "/page.png"}); got != "/page.png" {
		t.Fatalf("got %q", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(legacyTemplate()); err != nil {
		t.Fatalf("valid template: %v", err)
	}

	bad := &Template{
		Layout: Layout{Format: "a5"},
		Pages: []Page{{Elements: []Element{
			{ID: "a", Type: TypeText},
			{ID: "a", Type: TypeRectangle},
			{ID: "b", Type: "video"},
			{ID: "", Type: TypeLine},
			{ID: "c", Type: TypeCircle, Radius: -4},
		}}},
	}
	err := Validate(bad)
	for _, want := range []error{
		certgen.ErrInvalidLayout, certgen.ErrDuplicateID, certgen.ErrUnknownElement, certgen.ErrInvalidElement,
	} {
		if !errors.Is(err, want) {
			t.Errorf("Validate error %v does not match %v", err, want)
		}
	}
	if !errors.Is(Validate(&Template{}), certgen.ErrNoPages) {
		t.Fatal("empty template must report ErrNoPages")
	}
}

func TestElementBounds(t *testing.T) {
	canvas, _ := geometry.NewPage(geometry.FormatA4, geometry.Portrait, 0, 0)
	tests := []struct {
		el   Element
		want geometry.Rect
	}{
		{Element{Type: TypeText, X: geometry.Px(10), Y: geometry.Px(20)}, geometry.Rect{X: 10, Y: 20, W: 150, H: 12*1.2 + 8}},
		{Element{Type: TypeRectangle, X: geometry.Px(5), Y: geometry.Px(5), Width: 40}, geometry.Rect{X: 5, Y: 5, W: 40, H: 50}},
		{Element{Type: TypeCircle, X: geometry.Px(100), Y: geometry.Px(100), Radius: 10}, geometry.Rect{X: 90, Y: 90, W: 20, H: 20}},
		{Element{Type: TypeLine, X1: 50, Y1: 10, X2: 10, Y2: 30}, geometry.Rect{X: 10, Y: 10, W: 40, H: 20}},
		{Element{Type: TypeImage, X: geometry.Expr("center"), Y: geometry.Px(0)}, geometry.Rect{X: 397, Y: 0, W: 100, H: 100}},
	}
	for _, tt := range tests {
		if got := tt.el.Bounds(canvas); !rectNear(got, tt.want) {
			t.Errorf("%s bounds = %+v, want %+v", tt.el.Type, got, tt.want)
		}
	}
}

func rectNear(a, b geometry.Rect) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9 &&
		math.Abs(a.W-b.W) < 1e-9 && math.Abs(a.H-b.H) < 1e-9
}

func TestProblems(t *testing.T) {
	if p := Problems(legacyTemplate()); p != nil {
		t.Fatalf("valid template problems = %v", p)
	}
	p := Problems(&Template{Pages: []Page{{Elements: []Element{
		{ID: "a", Type: TypeText},
		{ID: "a", Type: "video"},
	}}}})
	if len(p) != 2 {
		t.Fatalf("problems = %q", p)
	}
	if p := Problems(nil); len(p) != 1 {
		t.Fatalf("nil template problems = %q", p)
	}
}
