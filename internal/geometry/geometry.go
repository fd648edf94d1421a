// Package geometry holds the pure coordinate math shared by the editor:
// grid snapping, the pointer/scene transform, visible grid lines and zoom.
package geometry

import "math"

// GridSize is the default grid spacing in scene units.
const GridSize = 50.0

const (
	MinScale = 0.1
	MaxScale = 10.0

	zoomOut = 0.9
	zoomIn  = 1.1

	// MaxGridLines caps the lines GridLines returns per axis.
	MaxGridLines = 4096
)

// Point is a coordinate pair, in scene or pixel space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Len returns the distance from the origin.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// SnapToGrid rounds value to the nearest multiple of gridSize.
// A non-positive gridSize uses GridSize.
func SnapToGrid(value, gridSize float64) float64 {
	if gridSize <= 0 {
		gridSize = GridSize
	}
	return math.Round(value/gridSize) * gridSize
}

// SnapPoint snaps both coordinates of p.
func SnapPoint(p Point, gridSize float64) Point {
	return Point{SnapToGrid(p.X, gridSize), SnapToGrid(p.Y, gridSize)}
}

// Viewport is the stage transform applied by the renderer:
// pixel = scene*Scale + Offset.
type Viewport struct {
	Scale  float64 `json:"scale"`
	Offset Point   `json:"offset"`
}

// DefaultViewport is the identity stage transform.
func DefaultViewport() Viewport {
	return Viewport{Scale: 1}
}

// PointerToScene converts a pixel position to scene space.
func PointerToScene(pixel, offset Point, scale float64) Point {
	return Point{
		X: (pixel.X - offset.X) / scale,
		Y: (pixel.Y - offset.Y) / scale,
	}
}

// SceneToPointer is the forward transform used by the renderer.
func SceneToPointer(scene, offset Point, scale float64) Point {
	return Point{
		X: scene.X*scale + offset.X,
		Y: scene.Y*scale + offset.Y,
	}
}

func (v Viewport) ToScene(pixel Point) Point { return PointerToScene(pixel, v.Offset, v.Scale) }
func (v Viewport) ToPixel(scene Point) Point { return SceneToPointer(scene, v.Offset, v.Scale) }

// Matrix returns the scene-to-pixel transform as an affine matrix.
func (v Viewport) Matrix() Matrix2D {
	return Translate(v.Offset.X, v.Offset.Y).Multiply(Scale(v.Scale, v.Scale))
}

// Pan moves the stage by delta pixels.
func (v Viewport) Pan(delta Point) Viewport {
	v.Offset = v.Offset.Add(delta)
	return v
}

// ZoomAt rescales the viewport around the pixel position pointer so that
// the scene point under the pointer stays fixed. A positive deltaY zooms
// out, a negative one zooms in. The scale is clamped to [MinScale, MaxScale].
func ZoomAt(v Viewport, pointer Point, deltaY float64) Viewport {
	if deltaY == 0 {
		return v
	}
	anchor := v.ToScene(pointer)

	scale := v.Scale * zoomIn
	if deltaY > 0 {
		scale = v.Scale * zoomOut
	}
	scale = math.Max(MinScale, math.Min(scale, MaxScale))

	return Viewport{
		Scale: scale,
		Offset: Point{
			X: pointer.X - anchor.X*scale,
			Y: pointer.Y - anchor.Y*scale,
		},
	}
}

// Segment is a line segment in scene space.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// GridLines returns the vertical then horizontal grid segments covering
// the scene rectangle visible through a width x height viewport. It returns
// nil for a non-positive or non-finite input, or when either axis would
// need more than MaxGridLines lines.
func GridLines(scale float64, offset Point, width, height, gridSize float64) []Segment {
	if gridSize <= 0 {
		gridSize = GridSize
	}
	if !(scale > 0) || !finite(scale, offset.X, offset.Y, width, height, gridSize) {
		return nil
	}

	startX := math.Floor((-offset.X/scale)/gridSize) * gridSize
	startY := math.Floor((-offset.Y/scale)/gridSize) * gridSize
	endX := math.Ceil(((-offset.X+width)/scale)/gridSize) * gridSize
	endY := math.Ceil(((-offset.Y+height)/scale)/gridSize) * gridSize

	spanX := math.Round((endX - startX) / gridSize)
	spanY := math.Round((endY - startY) / gridSize)
	if !(spanX < MaxGridLines && spanY < MaxGridLines) {
		return nil
	}
	cols := int(spanX) + 1
	rows := int(spanY) + 1
	lines := make([]Segment, 0, cols+rows)

	for i := 0; i < cols; i++ {
		x := startX + float64(i)*gridSize
		lines = append(lines, Segment{From: Point{x, startY}, To: Point{x, endY}})
	}
	for i := 0; i < rows; i++ {
		y := startY + float64(i)*gridSize
		lines = append(lines, Segment{From: Point{startX, y}, To: Point{endX, y}})
	}
	return lines
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
