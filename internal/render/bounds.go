package render

import (
	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/geometry"
)

// LocalBounds returns the box of a shape's geometry before its anchor
// transform is applied.
func LocalBounds(s document.Shape) geometry.Rect {
	switch s := s.(type) {
	case document.Rect:
		return geometry.Rect{Width: s.Width, Height: s.Height}.Normalize()
	case document.Circle:
		return geometry.Rect{X: -s.Radius, Y: -s.Radius, Width: 2 * s.Radius, Height: 2 * s.Radius}
	case document.Line:
		return geometry.BoundsOf(s.Points...)
	default:
		return geometry.Rect{}
	}
}

// Bounds returns the axis-aligned box of a shape in scene space, with its
// rotation about the anchor applied.
func Bounds(s document.Shape) geometry.Rect {
	base := s.Base()
	return geometry.ShapeTransform(base.X, base.Y, base.Rotation).ApplyRect(LocalBounds(s))
}

// StrokeBounds is Bounds grown by half the stroke width.
func StrokeBounds(s document.Shape) geometry.Rect {
	return Bounds(s).Expand(s.Base().StrokeWidth / 2)
}

// HitTest returns the id of the topmost shape whose stroke bounds contain
// p, or "" when nothing is hit.
func HitTest(shapes []document.Shape, p geometry.Point) string {
	for i := len(shapes) - 1; i >= 0; i-- {
		if StrokeBounds(shapes[i]).Contains(p) {
			return shapes[i].Base().ID
		}
	}
	return ""
}

// SelectionBounds returns the combined stroke bounds of the shapes with the
// given ids. Unknown ids are skipped.
func SelectionBounds(shapes []document.Shape, ids []string) geometry.Rect {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var result geometry.Rect
	for _, s := range shapes {
		if want[s.Base().ID] {
			result = result.Union(StrokeBounds(s))
		}
	}
	return result
}

// DocumentBounds returns the combined stroke bounds of every shape.
func DocumentBounds(shapes []document.Shape) geometry.Rect {
	var result geometry.Rect
	for _, s := range shapes {
		result = result.Union(StrokeBounds(s))
	}
	return result
}
