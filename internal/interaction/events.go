package interaction

import "github.com/mvpcad/mvpcad/internal/geometry"

// RenderEngine is the canvas the controller drives. It reports where the
// pointer is and which shape sits under a scene point.
type RenderEngine interface {
	// PointerPosition returns the last pointer position in pixels, or false
	// when the pointer is outside the canvas.
	PointerPosition() (geometry.Point, bool)
	// HitTest returns the id of the topmost shape at a scene point, or "".
	HitTest(scene geometry.Point) string
}

// PointerEvent is a pointer press, move or release in canvas pixels.
type PointerEvent struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift,omitempty"`
}

func (e PointerEvent) Pixel() geometry.Point {
	return geometry.Point{X: e.X, Y: e.Y}
}

// KeyEvent is a key press. Key uses DOM key names ("z", "Delete", ...).
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
}

// NodeTransform is the state of a shape node when a handle transform ends.
// ScaleX and ScaleY are relative to the shape as it was when the transform
// started.
type NodeTransform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	ScaleX   float64 `json:"scaleX"`
	ScaleY   float64 `json:"scaleY"`
}
