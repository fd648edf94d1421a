// Package interaction turns pointer, wheel and keyboard input into editor
// store operations and viewport changes.
package interaction

import (
	"log/slog"
	"math"
	"strings"

	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/editor"
	"github.com/mvpcad/mvpcad/internal/geometry"
	"github.com/mvpcad/mvpcad/internal/typeid"
)

const (
	// MinTransformSize is the smallest width, height or radius a handle
	// transform can produce.
	MinTransformSize = 5.0

	// DefaultMinDrawSize is the extent below which a freshly drawn shape is
	// discarded on pointer-up.
	DefaultMinDrawSize = 1.0

	// dragThreshold is the pointer travel, in pixels, that turns a press
	// into a drag.
	dragThreshold = 3.0
)

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDraw
	gesturePressEmpty
	gesturePressShape
	gestureDrag
	gesturePan
)

// gesture is the state of one down-move-up sequence.
type gesture struct {
	kind gestureKind

	originPixel  geometry.Point
	originScene  geometry.Point
	originOffset geometry.Point

	shapeID     string
	shapeOrigin geometry.Point
	multi       bool

	edit *editor.Edit
}

// Controller maps input events onto an editor.Store. It owns the viewport
// and the in-flight gesture; the store owns everything else.
type Controller struct {
	store  *editor.Store
	engine RenderEngine

	viewport geometry.Viewport
	snap     bool
	gridSize float64
	minDraw  float64
	newID    func() string

	g gesture

	// Handle transform in progress
	transform     *editor.Edit
	transformBase document.Shape

	logger *slog.Logger
}

type Option func(*Controller)

// WithSnap snaps drawn anchors, endpoints and dragged positions to a grid.
func WithSnap(gridSize float64) Option {
	return func(c *Controller) {
		c.snap = true
		c.gridSize = gridSize
	}
}

// WithMinDrawSize sets the degenerate-shape threshold. Zero keeps every
// drawn shape.
func WithMinDrawSize(size float64) Option {
	return func(c *Controller) { c.minDraw = size }
}

// WithIDGenerator replaces the shape id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func NewController(store *editor.Store, engine RenderEngine, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		engine:   engine,
		viewport: geometry.DefaultViewport(),
		gridSize: geometry.GridSize,
		minDraw:  DefaultMinDrawSize,
		newID:    typeid.NewShapeID,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Viewport ---

func (c *Controller) Viewport() geometry.Viewport {
	return c.viewport
}

func (c *Controller) SetViewport(v geometry.Viewport) {
	if v.Scale <= 0 {
		v.Scale = 1
	}
	c.viewport = v
}

// Snapping reports whether grid snapping is on and at which spacing.
func (c *Controller) Snapping() (bool, float64) {
	return c.snap, c.gridSize
}

func (c *Controller) SetSnap(on bool) {
	c.snap = on
}

// Busy reports whether a pointer gesture or handle transform is in
// progress.
func (c *Controller) Busy() bool {
	return c.g.kind != gestureNone || c.transform != nil
}

// --- Pointer gestures ---

// PointerDown starts a gesture according to the active tool.
func (c *Controller) PointerDown(ev PointerEvent) {
	c.Cancel()

	pixel := ev.Pixel()
	scene := c.viewport.ToScene(pixel)
	c.g = gesture{
		originPixel:  pixel,
		originScene:  scene,
		originOffset: c.viewport.Offset,
		multi:        ev.Shift,
	}

	tool := c.store.Tool()
	if t, ok := tool.ShapeType(); ok {
		c.beginDraw(t, c.snapped(scene))
		return
	}

	switch tool {
	case editor.ToolPan:
		c.g.kind = gesturePan
	case editor.ToolSelect:
		if id := c.engine.HitTest(scene); id != "" {
			c.g.kind = gesturePressShape
			c.g.shapeID = id
		} else {
			c.g.kind = gesturePressEmpty
		}
	}
}

// PointerMove continues the current gesture. Moves without a gesture are
// ignored.
func (c *Controller) PointerMove(ev PointerEvent) {
	pixel := ev.Pixel()

	switch c.g.kind {
	case gestureDraw:
		c.updateDraw(c.snapped(c.viewport.ToScene(pixel)))

	case gesturePressEmpty:
		if c.moved(pixel) {
			c.g.kind = gesturePan
			c.pan(pixel)
		}

	case gesturePan:
		c.pan(pixel)

	case gesturePressShape:
		if !c.moved(pixel) {
			return
		}
		if !c.beginDrag() {
			c.g = gesture{}
			return
		}
		c.drag(pixel)

	case gestureDrag:
		c.drag(pixel)
	}
}

// PointerUp ends the current gesture.
func (c *Controller) PointerUp(ev PointerEvent) {
	g := c.g
	c.g = gesture{}

	switch g.kind {
	case gestureDraw:
		c.endDraw(g.shapeID)
	case gesturePressEmpty:
		c.store.ClearSelection()
	case gesturePressShape:
		c.store.SelectShape(g.shapeID, g.multi)
	}
}

// Cancel abandons the in-flight pointer gesture, keeping whatever it has
// already applied.
func (c *Controller) Cancel() {
	if c.g.kind == gestureDraw {
		c.endDraw(c.g.shapeID)
	}
	c.g = gesture{}
}

func (c *Controller) beginDraw(t document.ShapeType, at geometry.Point) {
	id := c.newID()
	shape, ok := document.NewShape(t, id, at)
	if !ok {
		return
	}
	if err := c.store.AddShape(shape); err != nil {
		c.logger.Warn("failed to start shape", "id", id, "error", err)
		return
	}
	c.g.kind = gestureDraw
	c.g.shapeID = id
	c.g.shapeOrigin = at
}

func (c *Controller) updateDraw(p geometry.Point) {
	shape, ok := c.store.Shape(c.g.shapeID)
	if !ok {
		return
	}
	d := p.Sub(c.g.shapeOrigin)

	var patch document.Patch
	switch shape.(type) {
	case document.Rect:
		patch = document.Patch{Width: document.Float(d.X), Height: document.Float(d.Y)}
	case document.Circle:
		patch = document.Patch{Radius: document.Float(d.Len())}
	case document.Line:
		patch = document.Patch{Points: document.Points{{}, d}}
	}
	c.store.UpdateShape(c.g.shapeID, patch)
}

// endDraw discards the shape, together with the checkpoint that added it,
// when it is too small to be intentional.
func (c *Controller) endDraw(id string) {
	if c.minDraw <= 0 {
		return
	}
	shape, ok := c.store.Shape(id)
	if !ok || !document.IsDegenerate(shape, c.minDraw) {
		return
	}
	if c.store.Rollback() {
		c.logger.Debug("discard degenerate shape", "id", id)
	}
}

func (c *Controller) beginDrag() bool {
	shape, ok := c.store.Shape(c.g.shapeID)
	if !ok {
		return false
	}
	if !c.store.IsSelected(c.g.shapeID) {
		c.store.SelectShape(c.g.shapeID, c.g.multi)
	}
	c.g.kind = gestureDrag
	c.g.shapeOrigin = shape.Base().Position()
	c.g.edit = c.store.BeginEdit()
	return true
}

func (c *Controller) drag(pixel geometry.Point) {
	delta := c.viewport.ToScene(pixel).Sub(c.g.originScene)
	c.g.edit.Update(c.g.shapeID, document.MoveTo(c.snapped(c.g.shapeOrigin.Add(delta))))
}

func (c *Controller) pan(pixel geometry.Point) {
	c.viewport.Offset = c.g.originOffset.Add(pixel.Sub(c.g.originPixel))
}

func (c *Controller) moved(pixel geometry.Point) bool {
	return pixel.Sub(c.g.originPixel).Len() >= dragThreshold
}

func (c *Controller) snapped(p geometry.Point) geometry.Point {
	if !c.snap {
		return p
	}
	return geometry.SnapPoint(p, c.gridSize)
}

// --- Handle transforms ---

// TransformStart checkpoints the primary selected shape before a handle
// resize or rotate. It reports whether there is a shape to transform.
func (c *Controller) TransformStart() bool {
	c.Cancel()
	shape, ok := c.store.Primary()
	if !ok {
		return false
	}
	c.transformBase = shape
	c.transform = c.store.BeginEdit()
	return true
}

// TransformEnd bakes the node's scale into the shape's dimensions and
// applies its position and rotation in one update. Dimensions are clamped
// to MinTransformSize.
func (c *Controller) TransformEnd(t NodeTransform) {
	if c.transform == nil {
		return
	}
	edit, base := c.transform, c.transformBase
	c.transform, c.transformBase = nil, nil

	edit.Update(base.Base().ID, TransformPatch(base, t))
}

// TransformPatch computes the update for a shape whose node ended a handle
// transform in state t.
func TransformPatch(base document.Shape, t NodeTransform) document.Patch {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	patch := document.Patch{
		X:        document.Float(t.X),
		Y:        document.Float(t.Y),
		Rotation: document.Float(t.Rotation),
	}
	switch s := base.(type) {
	case document.Rect:
		patch.Width = document.Float(math.Max(MinTransformSize, s.Width*sx))
		patch.Height = document.Float(math.Max(MinTransformSize, s.Height*sy))
	case document.Circle:
		patch.Radius = document.Float(math.Max(MinTransformSize, s.Radius*sx))
	case document.Line:
		points := make(document.Points, len(s.Points))
		for i, p := range s.Points {
			points[i] = geometry.Point{X: p.X * sx, Y: p.Y * sy}
		}
		patch.Points = points
	}
	return patch
}

// --- Wheel and keyboard ---

// Wheel zooms around the pointer. It does nothing while the pointer is
// off the canvas.
func (c *Controller) Wheel(deltaY float64) {
	pointer, ok := c.engine.PointerPosition()
	if !ok {
		return
	}
	c.viewport = geometry.ZoomAt(c.viewport, pointer, deltaY)
}

// Key handles the editor shortcuts and reports whether the key was used.
func (c *Controller) Key(ev KeyEvent) bool {
	mod := ev.Ctrl || ev.Meta
	key := strings.ToLower(ev.Key)

	switch {
	case mod && key == "z" && !ev.Shift:
		c.Cancel()
		c.store.Undo()
		return true
	case mod && (key == "y" || (key == "z" && ev.Shift)):
		c.Cancel()
		c.store.Redo()
		return true
	case key == "delete" || key == "backspace":
		selected := c.store.Selected()
		if len(selected) == 0 {
			return false
		}
		c.Cancel()
		c.store.DeleteShapes(selected...)
		return true
	}
	return false
}

// SetTool cancels any gesture and switches tools.
func (c *Controller) SetTool(t editor.Tool) error {
	c.Cancel()
	return c.store.SetTool(t)
}
