package document

import (
	"slices"

	"github.com/mvpcad/mvpcad/internal/geometry"
)

type ShapeType string

const (
	ShapeTypeRect   ShapeType = "rect"
	ShapeTypeCircle ShapeType = "circle"
	ShapeTypeLine   ShapeType = "line"
)

const (
	DefaultStroke      = "black"
	DefaultStrokeWidth = 2.0
)

// Common holds the attributes every shape carries. X and Y anchor the
// shape: the top-left corner of a rect, the center of a circle, the
// origin of a line.
type Common struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Rotation    float64 `json:"rotation"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Fill        string  `json:"fill,omitempty"`
}

// Position returns the scene-space anchor.
func (c Common) Position() geometry.Point {
	return geometry.Point{X: c.X, Y: c.Y}
}

// Shape is one of Rect, Circle or Line. The set is closed: the interface
// cannot be implemented outside this package.
type Shape interface {
	Type() ShapeType
	Base() Common
	// Clone returns a copy that shares no memory with the receiver.
	Clone() Shape

	withBase(Common) Shape
}

type Rect struct {
	Common
	Width  float64
	Height float64
}

type Circle struct {
	Common
	Radius float64
}

// Line is an open polyline. Points are relative to the anchor and the
// first point is always (0, 0).
type Line struct {
	Common
	Points []geometry.Point
}

func (Rect) Type() ShapeType   { return ShapeTypeRect }
func (Circle) Type() ShapeType { return ShapeTypeCircle }
func (Line) Type() ShapeType   { return ShapeTypeLine }

func (r Rect) Base() Common   { return r.Common }
func (c Circle) Base() Common { return c.Common }
func (l Line) Base() Common   { return l.Common }

func (r Rect) Clone() Shape   { return r }
func (c Circle) Clone() Shape { return c }
func (l Line) Clone() Shape {
	l.Points = slices.Clone(l.Points)
	return l
}

func (r Rect) withBase(c Common) Shape   { r.Common = c; return r }
func (c Circle) withBase(b Common) Shape { c.Common = b; return c }
func (l Line) withBase(c Common) Shape   { l.Common = c; return l }

// NewCommon returns shared attributes with the default stroke.
func NewCommon(id string, at geometry.Point) Common {
	return Common{
		ID:          id,
		X:           at.X,
		Y:           at.Y,
		Stroke:      DefaultStroke,
		StrokeWidth: DefaultStrokeWidth,
	}
}

// NewShape returns a zero-size shape of the given type anchored at p.
func NewShape(t ShapeType, id string, at geometry.Point) (Shape, bool) {
	base := NewCommon(id, at)
	switch t {
	case ShapeTypeRect:
		return Rect{Common: base}, true
	case ShapeTypeCircle:
		return Circle{Common: base}, true
	case ShapeTypeLine:
		return Line{Common: base, Points: []geometry.Point{{}}}, true
	default:
		return nil, false
	}
}

// CloneShapes deep-copies a shape collection.
func CloneShapes(shapes []Shape) []Shape {
	if shapes == nil {
		return nil
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}

// IDs returns the ids of shapes in order.
func IDs(shapes []Shape) []string {
	ids := make([]string, len(shapes))
	for i, s := range shapes {
		ids[i] = s.Base().ID
	}
	return ids
}

// IsDegenerate reports whether a shape is smaller than minSize along any
// dimension that gives it extent.
func IsDegenerate(s Shape, minSize float64) bool {
	switch s := s.(type) {
	case Rect:
		return abs(s.Width) < minSize || abs(s.Height) < minSize
	case Circle:
		return s.Radius < minSize
	case Line:
		var longest float64
		for _, p := range s.Points {
			longest = max(longest, p.Len())
		}
		return longest < minSize
	default:
		return true
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
