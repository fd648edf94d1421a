// Package render compiles shapes into a display list for the canvas,
// hit-tests scene points against them and rasterises documents for export.
package render

import (
	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/geometry"
)

// SelectedStroke is the stroke color of selected shapes.
const SelectedStroke = "blue"

// DrawCommand is a single drawing operation for the canvas to execute, in
// painter's order.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "path"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data in local space
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Closed      bool          `json:"closed,omitempty"`      // Path ends with Z
}

// PathCommand is a single path segment.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []any

// Compile generates the display list for shapes. Shapes whose id is in
// selected are stroked with SelectedStroke.
func Compile(shapes []document.Shape, selected []string) []DrawCommand {
	isSelected := make(map[string]bool, len(selected))
	for _, id := range selected {
		isSelected[id] = true
	}

	commands := make([]DrawCommand, 0, len(shapes))
	for _, s := range shapes {
		cmd := compileShape(s)
		if isSelected[cmd.ObjectID] {
			cmd.Stroke = SelectedStroke
		}
		commands = append(commands, cmd)
	}
	return commands
}

func compileShape(s document.Shape) DrawCommand {
	base := s.Base()
	cmd := DrawCommand{
		Op:          "path",
		ObjectID:    base.ID,
		Transform:   geometry.ShapeTransform(base.X, base.Y, base.Rotation).ToSlice(),
		Stroke:      base.Stroke,
		StrokeWidth: base.StrokeWidth,
	}

	switch s := s.(type) {
	case document.Rect:
		cmd.Path = rectPath(s.Width, s.Height)
		cmd.Fill = base.Fill
		cmd.Closed = true
	case document.Circle:
		cmd.Path = circlePath(s.Radius)
		cmd.Fill = base.Fill
		cmd.Closed = true
	case document.Line:
		cmd.Path = linePath(s.Points)
	}
	return cmd
}

func rectPath(w, h float64) []PathCommand {
	return []PathCommand{
		{"M", 0.0, 0.0},
		{"L", w, 0.0},
		{"L", w, h},
		{"L", 0.0, h},
		{"Z"},
	}
}

// circlePath approximates a circle centered on the origin with four cubic
// beziers.
func circlePath(r float64) []PathCommand {
	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498 * r
	return []PathCommand{
		{"M", r, 0.0},
		{"C", r, k, k, r, 0.0, r},
		{"C", -k, r, -r, k, -r, 0.0},
		{"C", -r, -k, -k, -r, 0.0, -r},
		{"C", k, -r, r, -k, r, 0.0},
		{"Z"},
	}
}

func linePath(points []geometry.Point) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(points))
	path = append(path, PathCommand{"M", points[0].X, points[0].Y})
	for _, p := range points[1:] {
		path = append(path, PathCommand{"L", p.X, p.Y})
	}
	return path
}
