// Package session runs one editor behind a websocket. Every store access
// happens on the hub goroutine; HTTP handlers reach it through Do.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/editor"
	"github.com/mvpcad/mvpcad/internal/geometry"
	"github.com/mvpcad/mvpcad/internal/interaction"
	"github.com/mvpcad/mvpcad/internal/render"
)

var (
	ErrClosed = errors.New("session closed")

	errInvalidMessage = errors.New("invalid message")
)

// MaxCanvasSide bounds the canvas size a client may report, in pixels.
const MaxCanvasSide = 16384

// inbound is a client message, or a read error to report back when msg
// is nil.
type inbound struct {
	client *Client
	msg    *Message
	err    error
}

type Hub struct {
	store  *editor.Store
	engine *render.Engine
	ctrl   *interaction.Controller

	// Owned by the Run goroutine
	clients      map[string]*Client
	width        float64
	height       float64
	dirty        bool
	lastViewport geometry.Viewport

	register   chan *Client
	unregister chan *Client
	inbox      chan inbound
	tasks      chan func()

	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	logger *slog.Logger
}

func NewHub(store *editor.Store, engine *render.Engine, ctrl *interaction.Controller, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		store:      store,
		engine:     engine,
		ctrl:       ctrl,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan inbound),
		tasks:      make(chan func()),
		quit:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations, input and tasks until Stop is called or ctx
// is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	unsubscribe := h.store.Subscribe(func(editor.Change) { h.dirty = true })
	defer unsubscribe()
	h.lastViewport = h.ctrl.Viewport()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case in := <-h.inbox:
			if in.msg == nil {
				h.sendError(in.client, in.err, "")
				continue
			}
			h.handleMessage(in.client, in.msg)
			h.flush()

		case fn := <-h.tasks:
			fn()
			h.flush()

		case <-h.quit:
			h.closeAll()
			return

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and waits for it to return.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.stopped
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stopped:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// Do runs fn on the hub goroutine and waits for it. State changes made by
// fn are broadcast to every client.
func (h *Hub) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case h.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped:
		return ErrClosed
	}
	<-done
	return nil
}

// State returns what a client would be sent as render.state.
func (h *Hub) State(ctx context.Context) (*StatePayload, error) {
	var st *StatePayload
	if err := h.Do(ctx, func() { st = h.buildState() }); err != nil {
		return nil, err
	}
	return st, nil
}

// deliver hands msg to the hub. Once it returns, the message is handled
// before any later Do task.
func (h *Hub) deliver(ctx context.Context, c *Client, msg *Message) bool {
	select {
	case h.inbox <- inbound{client: c, msg: msg}:
		return true
	case <-ctx.Done():
		return false
	case <-h.stopped:
		return false
	}
}

// reject asks the hub to report err to c. It returns false once the hub has
// stopped.
func (h *Hub) reject(ctx context.Context, c *Client, err error) bool {
	select {
	case h.inbox <- inbound{client: c, err: err}:
		return true
	case <-ctx.Done():
		return false
	case <-h.stopped:
		return false
	}
}

func (h *Hub) addClient(client *Client) {
	h.clients[client.ClientID] = client

	if msg, err := newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID}); err == nil {
		client.push(msg)
	}
	if msg, err := newMessage(TypeRenderState, h.buildState()); err == nil {
		client.push(msg)
	}

	h.logger.Info("client joined", "client", client.ClientID, "subject", client.Subject)
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client.ClientID]; !ok {
		return
	}
	delete(h.clients, client.ClientID)
	close(client.send)

	h.logger.Info("client left", "client", client.ClientID)
}

func (h *Hub) closeAll() {
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// flush broadcasts the state if the document, selection, tool, history or
// viewport changed since the last broadcast.
func (h *Hub) flush() {
	if !h.dirty && h.ctrl.Viewport() == h.lastViewport {
		return
	}
	h.dirty = false
	h.lastViewport = h.ctrl.Viewport()
	h.broadcastState()
}

func (h *Hub) broadcastState() {
	if len(h.clients) == 0 {
		return
	}
	msg, err := newMessage(TypeRenderState, h.buildState())
	if err != nil {
		h.logger.Error("marshal state", "error", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal message", "error", err)
		return
	}
	for _, c := range h.clients {
		c.queue(data)
	}
}

func (h *Hub) buildState() *StatePayload {
	v := h.ctrl.Viewport()
	snap, gridSize := h.ctrl.Snapping()

	st := &StatePayload{
		Commands: h.engine.Render(),
		Selected: h.store.Selected(),
		Viewport: v,
		Tool:     h.store.Tool(),
		Snap:     snap,
		CanUndo:  h.store.CanUndo(),
		CanRedo:  h.store.CanRedo(),
		Shapes:   h.store.Len(),
	}
	if h.width > 0 && h.height > 0 {
		st.Grid = geometry.GridLines(v.Scale, v.Offset, h.width, h.height, gridSize)
	}
	if b := h.engine.SelectionBounds(); !b.IsEmpty() {
		st.SelectionBounds = &b
	}
	return st
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	if err := h.apply(msg); err != nil {
		h.logger.Warn("rejected message", "type", msg.Type, "client", sender.ClientID, "error", err)
		h.sendError(sender, err, msg.Type)
	}
}

// sendError reports err to c if c is still registered.
func (h *Hub) sendError(c *Client, err error, msgType string) {
	if h.clients[c.ClientID] != c {
		return
	}
	c.pushError(err.Error(), msgType)
}

// apply executes one input or command message against the editor.
func (h *Hub) apply(msg *Message) error {
	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var ev interaction.PointerEvent
		if err := decode(msg, &ev); err != nil {
			return err
		}
		h.engine.MovePointer(ev.Pixel())
		switch msg.Type {
		case TypePointerDown:
			h.ctrl.PointerDown(ev)
		case TypePointerMove:
			h.ctrl.PointerMove(ev)
		default:
			h.ctrl.PointerUp(ev)
		}

	case TypePointerLeave:
		h.engine.LeavePointer()

	case TypeWheel:
		var p WheelPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.Pointer != nil {
			h.engine.MovePointer(*p.Pointer)
		}
		h.ctrl.Wheel(p.DeltaY)

	case TypeKey:
		var ev interaction.KeyEvent
		if err := decode(msg, &ev); err != nil {
			return err
		}
		h.ctrl.Key(ev)

	case TypeTransformStart:
		if !h.ctrl.TransformStart() {
			return errors.New("nothing selected")
		}

	case TypeTransformEnd:
		var t interaction.NodeTransform
		if err := decode(msg, &t); err != nil {
			return err
		}
		h.ctrl.TransformEnd(t)

	case TypeToolSet:
		var p ToolPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		return h.ctrl.SetTool(p.Tool)

	case TypeHistoryUndo:
		h.ctrl.Cancel()
		h.store.Undo()

	case TypeHistoryRedo:
		h.ctrl.Cancel()
		h.store.Redo()

	case TypeViewResize:
		var p ResizePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if !validCanvasSide(p.Width) || !validCanvasSide(p.Height) {
			return fmt.Errorf("canvas size %vx%v out of range", p.Width, p.Height)
		}
		h.width, h.height = p.Width, p.Height
		h.dirty = true

	case TypeSnapSet:
		var p SnapPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		h.ctrl.SetSnap(p.Enabled)
		h.dirty = true

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func validCanvasSide(v float64) bool {
	return v >= 0 && v <= MaxCanvasSide
}

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: missing payload", msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s: invalid payload: %w", msg.Type, err)
	}
	return nil
}

// Document adapts the hub's store for project.Service, running each call
// on the hub goroutine.
func (h *Hub) Document() *Document {
	return &Document{hub: h}
}

type Document struct {
	hub *Hub
}

// Shapes returns a copy of the shapes, or nil if the hub has stopped.
func (d *Document) Shapes() []document.Shape {
	var shapes []document.Shape
	if err := d.hub.Do(context.Background(), func() { shapes = d.hub.store.Shapes() }); err != nil {
		return nil
	}
	return shapes
}

func (d *Document) Replace(shapes []document.Shape) error {
	var err error
	if doErr := d.hub.Do(context.Background(), func() {
		d.hub.ctrl.Cancel()
		err = d.hub.store.Replace(shapes)
	}); doErr != nil {
		return doErr
	}
	return err
}
