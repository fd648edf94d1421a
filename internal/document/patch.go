package document

import (
	"slices"

	"github.com/mvpcad/mvpcad/internal/geometry"
)

// Patch is a partial set of shape attributes. Nil fields are left
// untouched. Fields that do not exist on the target variant are ignored.
type Patch struct {
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	Rotation    *float64 `json:"rotation,omitempty"`
	Stroke      *string  `json:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	Fill        *string  `json:"fill,omitempty"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	Radius      *float64 `json:"radius,omitempty"`
	Points      Points   `json:"points,omitempty"`
}

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, for building patches.
func String(v string) *string { return &v }

// MoveTo returns a patch that repositions a shape's anchor.
func MoveTo(p geometry.Point) Patch {
	return Patch{X: Float(p.X), Y: Float(p.Y)}
}

func (p Patch) IsZero() bool {
	return p.X == nil && p.Y == nil && p.Rotation == nil && p.Stroke == nil &&
		p.StrokeWidth == nil && p.Fill == nil && p.Width == nil && p.Height == nil &&
		p.Radius == nil && p.Points == nil
}

// Apply returns s with the patch merged in. s itself is not modified.
// Empty line points are ignored; points not starting at the origin are
// rebased onto it.
func (p Patch) Apply(s Shape) Shape {
	base := s.Base()
	if p.X != nil {
		base.X = *p.X
	}
	if p.Y != nil {
		base.Y = *p.Y
	}
	if p.Rotation != nil {
		base.Rotation = *p.Rotation
	}
	if p.Stroke != nil {
		base.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		base.StrokeWidth = *p.StrokeWidth
	}
	if p.Fill != nil {
		base.Fill = *p.Fill
	}

	switch s := s.Clone().withBase(base).(type) {
	case Rect:
		if p.Width != nil {
			s.Width = *p.Width
		}
		if p.Height != nil {
			s.Height = *p.Height
		}
		return s
	case Circle:
		if p.Radius != nil {
			s.Radius = *p.Radius
		}
		return s
	case Line:
		if len(p.Points) > 0 {
			s.Points = slices.Clone([]geometry.Point(p.Points))
			s = rebaseLine(s)
		}
		return s
	default:
		return s
	}
}

// rebaseLine moves the anchor onto the first point so that it is (0, 0)
// again, leaving the line where it was in the scene.
func rebaseLine(l Line) Line {
	first := l.Points[0]
	if first == (geometry.Point{}) {
		return l
	}
	anchor := geometry.ShapeTransform(l.X, l.Y, l.Rotation).Apply(first)
	l.X, l.Y = anchor.X, anchor.Y
	for i := range l.Points {
		l.Points[i] = l.Points[i].Sub(first)
	}
	return l
}
