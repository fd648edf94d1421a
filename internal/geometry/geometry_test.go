package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearPoint(a, b Point) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		value, grid, want float64
	}{
		{0, 50, 0},
		{24, 50, 0},
		{25, 50, 50},
		{26, 50, 50},
		{-26, 50, -50},
		{137, 10, 140},
		{137, 0, 150},
		{137, -5, 150},
	}
	for _, tt := range tests {
		if got := SnapToGrid(tt.value, tt.grid); got != tt.want {
			t.Errorf("SnapToGrid(%v, %v) = %v, want %v", tt.value, tt.grid, got, tt.want)
		}
	}
}

func TestPointerToSceneInvertsSceneToPointer(t *testing.T) {
	offsets := []Point{{0, 0}, {120, -40}, {-33.3, 17.7}}
	scales := []float64{0.1, 0.9, 1, 1.1, 3.7, 10}
	scenes := []Point{{0, 0}, {100, 100}, {-250.5, 42.25}}

	for _, off := range offsets {
		for _, s := range scales {
			for _, p := range scenes {
				px := SceneToPointer(p, off, s)
				if back := PointerToScene(px, off, s); !nearPoint(back, p) {
					t.Errorf("round trip %v via off=%v scale=%v gave %v", p, off, s, back)
				}
			}
		}
	}
}

func TestViewportMatrixMatchesToPixel(t *testing.T) {
	v := Viewport{Scale: 2.5, Offset: Point{30, -12}}
	p := Point{7, 9}
	if got, want := v.Matrix().Apply(p), v.ToPixel(p); !nearPoint(got, want) {
		t.Errorf("Matrix().Apply = %v, ToPixel = %v", got, want)
	}
	if got := v.Matrix().Invert().Apply(v.ToPixel(p)); !nearPoint(got, p) {
		t.Errorf("inverse matrix gave %v, want %v", got, p)
	}
}

func TestZoomAtKeepsPointerAnchored(t *testing.T) {
	v := Viewport{Scale: 1, Offset: Point{10, 20}}
	pointer := Point{300, 200}
	before := v.ToScene(pointer)

	out := ZoomAt(v, pointer, 120)
	if !near(out.Scale, 0.9) {
		t.Errorf("zoom out scale = %v, want 0.9", out.Scale)
	}
	if after := out.ToScene(pointer); !nearPoint(after, before) {
		t.Errorf("scene point under pointer moved from %v to %v", before, after)
	}

	in := ZoomAt(v, pointer, -120)
	if !near(in.Scale, 1.1) {
		t.Errorf("zoom in scale = %v, want 1.1", in.Scale)
	}

	if same := ZoomAt(v, pointer, 0); same != v {
		t.Errorf("zero delta changed viewport: %v", same)
	}
}

func TestZoomAtClamps(t *testing.T) {
	v := Viewport{Scale: 9.5}
	if got := ZoomAt(v, Point{}, -1).Scale; got != MaxScale {
		t.Errorf("scale = %v, want clamp at %v", got, MaxScale)
	}
	v = Viewport{Scale: 0.105}
	if got := ZoomAt(v, Point{}, 1).Scale; got != MinScale {
		t.Errorf("scale = %v, want clamp at %v", got, MinScale)
	}
}

func TestGridLines(t *testing.T) {
	lines := GridLines(1, Point{}, 100, 60, 50)
	// x: 0,50,100  y: 0,50,100
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6", len(lines))
	}
	first := lines[0]
	if first.From != (Point{0, 0}) || first.To != (Point{0, 100}) {
		t.Errorf("first vertical = %+v", first)
	}
	lastH := lines[5]
	if lastH.From != (Point{0, 100}) || lastH.To != (Point{100, 100}) {
		t.Errorf("last horizontal = %+v", lastH)
	}
}

func TestGridLinesCoverPannedZoomedViewport(t *testing.T) {
	scale := 0.5
	offset := Point{-130, 75}
	w, h := 400.0, 300.0
	lines := GridLines(scale, offset, w, h, 50)

	topLeft := PointerToScene(Point{0, 0}, offset, scale)
	bottomRight := PointerToScene(Point{w, h}, offset, scale)

	var minX, maxX = math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		if l.From.X != l.To.X {
			continue
		}
		if math.Mod(l.From.X, 50) != 0 {
			t.Errorf("vertical line at %v is off-grid", l.From.X)
		}
		minX = math.Min(minX, l.From.X)
		maxX = math.Max(maxX, l.From.X)
	}
	if minX > topLeft.X || maxX < bottomRight.X {
		t.Errorf("vertical lines [%v,%v] do not cover [%v,%v]", minX, maxX, topLeft.X, bottomRight.X)
	}
	if minX <= topLeft.X-50 || maxX >= bottomRight.X+50 {
		t.Errorf("vertical lines [%v,%v] exceed minimal cover of [%v,%v]", minX, maxX, topLeft.X, bottomRight.X)
	}
}

func TestGridLinesInvalidInput(t *testing.T) {
	tests := []struct {
		name          string
		scale         float64
		offset        Point
		width, height float64
	}{
		{"zero scale", 0, Point{}, 100, 100},
		{"nan scale", math.NaN(), Point{}, 100, 100},
		{"huge width", MinScale, Point{}, 1e15, 600},
		{"infinite height", 1, Point{}, 100, math.Inf(1)},
		{"nan offset", 1, Point{math.NaN(), 0}, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if lines := GridLines(tt.scale, tt.offset, tt.width, tt.height, 50); lines != nil {
				t.Errorf("expected nil, got %d lines", len(lines))
			}
		})
	}
}

func TestGridLinesLargestCanvas(t *testing.T) {
	lines := GridLines(MinScale, Point{}, 16384, 16384, 50)
	if len(lines) == 0 || len(lines) > 2*MaxGridLines {
		t.Errorf("got %d lines", len(lines))
	}
}
