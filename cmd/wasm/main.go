//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/editor"
	"github.com/mvpcad/mvpcad/internal/geometry"
	"github.com/mvpcad/mvpcad/internal/interaction"
	"github.com/mvpcad/mvpcad/internal/render"
)

var (
	store  *editor.Store
	eng    *render.Engine
	ctrl   *interaction.Controller
	width  float64
	height float64
)

func main() {
	store = editor.NewStore()
	eng = render.NewEngine(store)
	ctrl = interaction.NewController(store, eng)

	// Create the editor API object
	api := js.Global().Get("Object").New()

	// --- Input (frontend → editor) ---
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("pointerLeave", js.FuncOf(pointerLeave))
	api.Set("wheel", js.FuncOf(wheel))
	api.Set("key", js.FuncOf(key))
	api.Set("transformStart", js.FuncOf(transformStart))
	api.Set("transformEnd", js.FuncOf(transformEnd))

	// --- Commands ---
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setSnap", js.FuncOf(setSnap))
	api.Set("resize", js.FuncOf(resize))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))

	// --- Queries (frontend ← editor) ---
	api.Set("render", js.FuncOf(renderState))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getDocument", js.FuncOf(getDocument))

	js.Global().Set("mvpcadEditor", api)

	// Signal that WASM is ready
	js.Global().Set("mvpcadWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Input handlers ---

// pointerArgs reads (x, y, shift) and moves the engine's pointer there.
func pointerArgs(args []js.Value) (interaction.PointerEvent, bool) {
	if len(args) < 2 {
		return interaction.PointerEvent{}, false
	}
	ev := interaction.PointerEvent{X: args[0].Float(), Y: args[1].Float()}
	if len(args) > 2 {
		ev.Shift = args[2].Truthy()
	}
	eng.MovePointer(ev.Pixel())
	return ev, true
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerArgs(args); ok {
		ctrl.PointerDown(ev)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerArgs(args); ok {
		ctrl.PointerMove(ev)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerArgs(args); ok {
		ctrl.PointerUp(ev)
	}
	return nil
}

func pointerLeave(this js.Value, args []js.Value) interface{} {
	eng.LeavePointer()
	return nil
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if len(args) >= 3 {
		eng.MovePointer(geometry.Point{X: args[1].Float(), Y: args[2].Float()})
	}
	ctrl.Wheel(args[0].Float())
	return nil
}

func key(this js.Value, args []js.Value) interface{} {
	var ev interaction.KeyEvent
	if err := decodeArg(args, &ev); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(ctrl.Key(ev))
}

func transformStart(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ctrl.TransformStart())
}

func transformEnd(this js.Value, args []js.Value) interface{} {
	var t interaction.NodeTransform
	if err := decodeArg(args, &t); err != nil {
		return errorValue(err)
	}
	ctrl.TransformEnd(t)
	return nil
}

// --- Command handlers ---

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing tool"})
	}
	if err := ctrl.SetTool(editor.Tool(args[0].String())); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func setSnap(this js.Value, args []js.Value) interface{} {
	if len(args) > 0 {
		ctrl.SetSnap(args[0].Truthy())
	}
	return nil
}

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	width, height = args[0].Float(), args[1].Float()
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	ctrl.Cancel()
	return js.ValueOf(store.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	ctrl.Cancel()
	return js.ValueOf(store.Redo())
}

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	p, err := document.Parse([]byte(args[0].String()))
	if err != nil {
		return errorValue(err)
	}
	ctrl.Cancel()
	if err := store.Replace(p.Shapes); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	ctrl.Cancel()
	if err := store.Replace(document.NewSampleShapes()); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query handlers ---

// renderState returns the draw commands, grid and editor flags as JSON.
func renderState(this js.Value, args []js.Value) interface{} {
	v := ctrl.Viewport()
	snap, gridSize := ctrl.Snapping()

	state := map[string]interface{}{
		"commands": eng.Render(),
		"selected": store.Selected(),
		"viewport": v,
		"tool":     store.Tool(),
		"snap":     snap,
		"canUndo":  store.CanUndo(),
		"canRedo":  store.CanRedo(),
	}
	if width > 0 && height > 0 {
		state["grid"] = geometry.GridLines(v.Scale, v.Offset, width, height, gridSize)
	}
	if b := eng.SelectionBounds(); !b.IsEmpty() {
		state["selectionBounds"] = b
	}

	data, err := json.Marshal(state)
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	scene := ctrl.Viewport().ToScene(geometry.Point{X: args[0].Float(), Y: args[1].Float()})
	return js.ValueOf(eng.HitTest(scene))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	data, err := document.Encode(store.Shapes())
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}

// --- Helpers ---

func decodeArg(args []js.Value, v interface{}) error {
	if len(args) < 1 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal([]byte(args[0].String()), v)
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}
