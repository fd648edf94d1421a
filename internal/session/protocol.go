package session

import (
	"encoding/json"

	"github.com/mvpcad/mvpcad/internal/editor"
	"github.com/mvpcad/mvpcad/internal/geometry"
	"github.com/mvpcad/mvpcad/internal/render"
)

type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"
	TypeError   = "error"

	// Input (client → server)
	TypePointerDown    = "input.pointer_down"
	TypePointerMove    = "input.pointer_move"
	TypePointerUp      = "input.pointer_up"
	TypePointerLeave   = "input.pointer_leave"
	TypeWheel          = "input.wheel"
	TypeKey            = "input.key"
	TypeTransformStart = "input.transform_start"
	TypeTransformEnd   = "input.transform_end"

	// Editor commands
	TypeToolSet     = "tool.set"
	TypeHistoryUndo = "history.undo"
	TypeHistoryRedo = "history.redo"
	TypeViewResize  = "view.resize"
	TypeSnapSet     = "snap.set"

	// State (server → client)
	TypeRenderState = "render.state"
)

type WelcomePayload struct {
	ClientID string `json:"clientId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	// Type is the message type that failed, if any.
	Type string `json:"type,omitempty"`
}

type WheelPayload struct {
	DeltaY float64 `json:"deltaY"`
	// Pointer, when set, updates the pointer position before zooming.
	Pointer *geometry.Point `json:"pointer,omitempty"`
}

type ToolPayload struct {
	Tool editor.Tool `json:"tool"`
}

type ResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type SnapPayload struct {
	Enabled bool `json:"enabled"`
}

// StatePayload is everything a client needs to draw the canvas.
type StatePayload struct {
	Commands        []render.DrawCommand `json:"commands"`
	Grid            []geometry.Segment   `json:"grid,omitempty"`
	Selected        []string             `json:"selected"`
	SelectionBounds *geometry.Rect       `json:"selectionBounds,omitempty"`
	Viewport        geometry.Viewport    `json:"viewport"`
	Tool            editor.Tool          `json:"tool"`
	Snap            bool                 `json:"snap"`
	CanUndo         bool                 `json:"canUndo"`
	CanRedo         bool                 `json:"canRedo"`
	Shapes          int                  `json:"shapes"`
}

func newMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: data}, nil
}
