package render

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"reflect"
	"testing"

	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/geometry"
)

func testRect(id string, x, y, w, h float64) document.Rect {
	return document.Rect{Common: document.NewCommon(id, geometry.Point{X: x, Y: y}), Width: w, Height: h}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func nearRect(a, b geometry.Rect) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Width, b.Width) && near(a.Height, b.Height)
}

func TestCompile(t *testing.T) {
	line := document.Line{
		Common: document.NewCommon("l", geometry.Point{X: 5, Y: 5}),
		Points: []geometry.Point{{}, {X: 10, Y: 0}, {X: 10, Y: 10}},
	}
	circle := document.Circle{Common: document.NewCommon("c", geometry.Point{}), Radius: 4}
	rect := testRect("r", 1, 2, 3, 4)
	rect.Fill = "red"

	cmds := Compile([]document.Shape{rect, circle, line}, []string{"c"})
	if len(cmds) != 3 {
		t.Fatalf("len = %d, want 3", len(cmds))
	}

	if cmds[0].ObjectID != "r" || cmds[0].Fill != "red" || !cmds[0].Closed {
		t.Errorf("rect command = %+v", cmds[0])
	}
	if !reflect.DeepEqual(cmds[0].Transform, []float64{1, 0, 0, 1, 1, 2}) {
		t.Errorf("rect transform = %v", cmds[0].Transform)
	}
	if len(cmds[0].Path) != 5 {
		t.Errorf("rect path = %v", cmds[0].Path)
	}

	if cmds[1].Stroke != SelectedStroke {
		t.Errorf("selected stroke = %q, want %q", cmds[1].Stroke, SelectedStroke)
	}
	if cmds[0].Stroke != document.DefaultStroke {
		t.Errorf("unselected stroke = %q", cmds[0].Stroke)
	}

	wantLine := []PathCommand{{"M", 0.0, 0.0}, {"L", 10.0, 0.0}, {"L", 10.0, 10.0}}
	if !reflect.DeepEqual(cmds[2].Path, wantLine) {
		t.Errorf("line path = %v, want %v", cmds[2].Path, wantLine)
	}
	if cmds[2].Closed || cmds[2].Fill != "" {
		t.Errorf("line should be open and unfilled: %+v", cmds[2])
	}
}

func TestCompileEmpty(t *testing.T) {
	if cmds := Compile(nil, nil); cmds == nil || len(cmds) != 0 {
		t.Errorf("Compile(nil) = %#v, want empty non-nil", cmds)
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name  string
		shape document.Shape
		want  geometry.Rect
	}{
		{"rect", testRect("r", 10, 20, 30, 40), geometry.Rect{X: 10, Y: 20, Width: 30, Height: 40}},
		{"negative rect", testRect("r", 10, 20, -10, -5), geometry.Rect{X: 0, Y: 15, Width: 10, Height: 5}},
		{
			"circle",
			document.Circle{Common: document.NewCommon("c", geometry.Point{X: 5, Y: 5}), Radius: 5},
			geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10},
		},
		{
			"line",
			document.Line{
				Common: document.NewCommon("l", geometry.Point{X: 1, Y: 1}),
				Points: []geometry.Point{{}, {X: 4, Y: -2}},
			},
			geometry.Rect{X: 1, Y: -1, Width: 4, Height: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bounds(tt.shape); !nearRect(got, tt.want) {
				t.Errorf("Bounds = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoundsRotated(t *testing.T) {
	r := testRect("r", 0, 0, 10, 20)
	r.Rotation = 90
	want := geometry.Rect{X: -20, Y: 0, Width: 20, Height: 10}
	if got := Bounds(r); !nearRect(got, want) {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
}

func TestHitTest(t *testing.T) {
	shapes := []document.Shape{
		testRect("bottom", 0, 0, 100, 100),
		testRect("top", 50, 50, 100, 100),
	}

	tests := []struct {
		p    geometry.Point
		want string
	}{
		{geometry.Point{X: 10, Y: 10}, "bottom"},
		{geometry.Point{X: 75, Y: 75}, "top"},
		{geometry.Point{X: 149, Y: 149}, "top"},
		// Half the default stroke width past the edge.
		{geometry.Point{X: 151, Y: 100}, "top"},
		{geometry.Point{X: 152, Y: 100}, ""},
		{geometry.Point{X: -50, Y: 0}, ""},
	}
	for _, tt := range tests {
		if got := HitTest(shapes, tt.p); got != tt.want {
			t.Errorf("HitTest(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestSelectionBounds(t *testing.T) {
	shapes := []document.Shape{
		testRect("a", 0, 0, 10, 10),
		testRect("b", 20, 20, 10, 10),
		testRect("c", 100, 100, 10, 10),
	}

	got := SelectionBounds(shapes, []string{"a", "b", "ghost"})
	want := geometry.Rect{X: -1, Y: -1, Width: 32, Height: 32}
	if !nearRect(got, want) {
		t.Errorf("SelectionBounds = %+v, want %+v", got, want)
	}
	if got := SelectionBounds(shapes, nil); !got.IsEmpty() {
		t.Errorf("empty selection bounds = %+v", got)
	}
}

type fakeSource struct {
	shapes   []document.Shape
	selected []string
}

func (f fakeSource) Shapes() []document.Shape { return f.shapes }
func (f fakeSource) Selected() []string       { return f.selected }

func TestEngine(t *testing.T) {
	src := fakeSource{shapes: []document.Shape{testRect("a", 0, 0, 10, 10)}, selected: []string{"a"}}
	e := NewEngine(src)

	if _, ok := e.PointerPosition(); ok {
		t.Error("new engine should have no pointer")
	}
	e.MovePointer(geometry.Point{X: 3, Y: 4})
	if p, ok := e.PointerPosition(); !ok || p != (geometry.Point{X: 3, Y: 4}) {
		t.Errorf("PointerPosition = %v, %v", p, ok)
	}
	e.LeavePointer()
	if _, ok := e.PointerPosition(); ok {
		t.Error("pointer should be gone after LeavePointer")
	}

	if id := e.HitTest(geometry.Point{X: 5, Y: 5}); id != "a" {
		t.Errorf("HitTest = %q", id)
	}
	if cmds := e.Render(); len(cmds) != 1 || cmds[0].Stroke != SelectedStroke {
		t.Errorf("Render = %+v", cmds)
	}
	if b := e.SelectionBounds(); b.IsEmpty() {
		t.Error("SelectionBounds should cover the selected rect")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"black", color.RGBA{0, 0, 0, 255}, true},
		{"Red", color.RGBA{255, 0, 0, 255}, true},
		{"#ddd", color.RGBA{0xdd, 0xdd, 0xdd, 255}, true},
		{"#336699", color.RGBA{0x33, 0x66, 0x99, 255}, true},
		{"#12", color.RGBA{}, false},
		{"#zzzzzz", color.RGBA{}, false},
		{"", color.RGBA{}, false},
		{"not-a-color", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPNG(t *testing.T) {
	r := testRect("r", 0, 0, 100, 50)
	r.Fill = "red"

	data, err := PNG([]document.Shape{r}, 1)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Stroke bounds (-1,-1,102,52) plus padding on each side.
	b := img.Bounds()
	if b.Dx() != 142 || b.Dy() != 92 {
		t.Fatalf("size = %dx%d, want 142x92", b.Dx(), b.Dy())
	}
	if got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background = %v, want white", got)
	}
	// Scene (50, 25) is the rect's center.
	if got := color.RGBAModel.Convert(img.At(71, 46)).(color.RGBA); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("fill = %v, want red", got)
	}
}

func TestPNGScale(t *testing.T) {
	data, err := PNG(nil, 2)
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 80 || cfg.Height != 80 {
		t.Errorf("empty export = %dx%d, want 80x80", cfg.Width, cfg.Height)
	}
}

func TestPNGTooLarge(t *testing.T) {
	huge := testRect("r", 0, 0, 1e6, 10)
	if _, err := PNG([]document.Shape{huge}, 1); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("err = %v, want ErrImageTooLarge", err)
	}
}

func TestPNGRejectsBadScale(t *testing.T) {
	shapes := []document.Shape{testRect("r", 0, 0, 100, 50)}
	for _, scale := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		if _, err := PNG(shapes, scale); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("PNG(scale=%v) err = %v, want ErrInvalidScale", scale, err)
		}
	}
	if _, err := PNG(shapes, 1e9); !errors.Is(err, ErrImageTooLarge) {
		t.Errorf("PNG(scale=1e9) err = %v, want ErrImageTooLarge", err)
	}
}

func TestPDF(t *testing.T) {
	shapes := []document.Shape{
		testRect("r", 0, 0, 100, 50),
		document.Circle{Common: document.NewCommon("c", geometry.Point{X: 200, Y: 100}), Radius: 30},
		document.Line{
			Common: document.NewCommon("l", geometry.Point{}),
			Points: []geometry.Point{{}, {X: 50, Y: 80}, {X: 120, Y: 10}},
		},
	}
	data, err := PDF(shapes)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestPageMapperFitsAndCenters(t *testing.T) {
	m := newPageMapper(geometry.Rect{X: 100, Y: 100, Width: 100, Height: 100})
	tl := m.point(geometry.Point{X: 100, Y: 100})
	br := m.point(geometry.Point{X: 200, Y: 200})

	if !near(br.Y-tl.Y, pageHeight-2*pageMargin) {
		t.Errorf("height on page = %v", br.Y-tl.Y)
	}
	if !near(tl.X+br.X, pageWidth) {
		t.Errorf("not centered horizontally: %v..%v", tl.X, br.X)
	}
}
