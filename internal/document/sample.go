package document

import (
	"github.com/mvpcad/mvpcad/internal/geometry"
	"github.com/mvpcad/mvpcad/internal/typeid"
)

// NewSampleShapes builds a small demo drawing with one shape of each type.
func NewSampleShapes() []Shape {
	rect := Rect{Common: NewCommon(typeid.NewShapeID(), geometry.Point{X: 100, Y: 100}), Width: 200, Height: 120}
	rect.Fill = "#e0e0ff"

	circle := Circle{Common: NewCommon(typeid.NewShapeID(), geometry.Point{X: 450, Y: 160}), Radius: 60}
	circle.Stroke = "#d33"

	line := Line{
		Common: NewCommon(typeid.NewShapeID(), geometry.Point{X: 100, Y: 300}),
		Points: []geometry.Point{{X: 0, Y: 0}, {X: 150, Y: 50}, {X: 300, Y: 0}},
	}
	line.StrokeWidth = 4

	return []Shape{rect, circle, line}
}
