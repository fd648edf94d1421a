package editor

import "github.com/mvpcad/mvpcad/internal/document"

// Tool is the active input mode.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolPan    Tool = "pan"
	ToolRect   Tool = "rect"
	ToolCircle Tool = "circle"
	ToolLine   Tool = "line"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolPan, ToolRect, ToolCircle, ToolLine}

func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolPan, ToolRect, ToolCircle, ToolLine:
		return true
	}
	return false
}

// ShapeType returns the shape a drawing tool creates.
func (t Tool) ShapeType() (document.ShapeType, bool) {
	switch t {
	case ToolRect:
		return document.ShapeTypeRect, true
	case ToolCircle:
		return document.ShapeTypeCircle, true
	case ToolLine:
		return document.ShapeTypeLine, true
	}
	return "", false
}
