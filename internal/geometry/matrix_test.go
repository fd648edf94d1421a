package geometry

import "testing"

func TestMatrixInvert(t *testing.T) {
	m := ShapeTransform(40, -10, 30).Multiply(Scale(2, 3))
	p := Point{5, 7}
	if got := m.Invert().Apply(m.Apply(p)); !nearPoint(got, p) {
		t.Errorf("Invert round trip = %v, want %v", got, p)
	}
	if got := (Matrix2D{}).Invert(); got != Identity() {
		t.Errorf("singular Invert = %v, want identity", got)
	}
}

func TestShapeTransformRotatesAboutAnchor(t *testing.T) {
	m := ShapeTransform(100, 100, 90)
	got := m.Apply(Point{10, 0})
	if !nearPoint(got, Point{100, 110}) {
		t.Errorf("Apply = %v, want (100,110)", got)
	}
}

func TestApplyRect(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 20}
	got := RotateDegrees(90).ApplyRect(r)
	want := Rect{X: -20, Y: 0, Width: 20, Height: 10}
	if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Width, want.Width) || !near(got.Height, want.Height) {
		t.Errorf("ApplyRect = %+v, want %+v", got, want)
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: -4, Height: 6}.Normalize()
	if r != (Rect{X: 6, Y: 10, Width: 4, Height: 6}) {
		t.Errorf("Normalize = %+v", r)
	}
	if !r.Contains(Point{6, 16}) || r.Contains(Point{5.9, 12}) {
		t.Error("Contains edge handling wrong")
	}
	u := r.Union(Rect{X: 0, Y: 0, Width: 1, Height: 1})
	if u != (Rect{X: 0, Y: 0, Width: 10, Height: 16}) {
		t.Errorf("Union = %+v", u)
	}
	if got := (Rect{}).Union(r); got != r {
		t.Errorf("empty Union = %+v", got)
	}
	if got := r.Expand(1); got != (Rect{X: 5, Y: 9, Width: 6, Height: 8}) {
		t.Errorf("Expand = %+v", got)
	}
}
