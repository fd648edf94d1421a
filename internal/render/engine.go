package render

import (
	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/geometry"
)

// Source is the state the engine draws. *editor.Store satisfies it.
type Source interface {
	Shapes() []document.Shape
	Selected() []string
}

// Engine is the canvas binding: it renders a Source and tracks the pointer
// so input handlers can hit-test and zoom around it.
type Engine struct {
	src Source

	pointer    geometry.Point
	hasPointer bool
}

func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// MovePointer records the pointer position in canvas pixels.
func (e *Engine) MovePointer(p geometry.Point) {
	e.pointer = p
	e.hasPointer = true
}

// LeavePointer forgets the pointer, as when it leaves the canvas.
func (e *Engine) LeavePointer() {
	e.hasPointer = false
}

func (e *Engine) PointerPosition() (geometry.Point, bool) {
	return e.pointer, e.hasPointer
}

func (e *Engine) HitTest(scene geometry.Point) string {
	return HitTest(e.src.Shapes(), scene)
}

// Render compiles the current display list.
func (e *Engine) Render() []DrawCommand {
	return Compile(e.src.Shapes(), e.src.Selected())
}

// SelectionBounds returns the box the transform handles wrap.
func (e *Engine) SelectionBounds() geometry.Rect {
	return SelectionBounds(e.src.Shapes(), e.src.Selected())
}
