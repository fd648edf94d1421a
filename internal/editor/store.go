package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mvpcad/mvpcad/internal/document"
)

var (
	ErrDuplicateID = errors.New("shape id already exists")
	ErrEmptyID     = errors.New("shape id is empty")
	ErrUnknownTool = errors.New("unknown tool")
)

// Store is the editor state: the shape collection, the selection, the
// active tool and the undo/redo history. It is not safe for concurrent
// use; callers drive it from a single event loop.
type Store struct {
	// Document state
	shapes []document.Shape

	// Selection state, in selection order
	selected []string

	tool Tool

	// History. past is oldest first, future is most recently undone first.
	past   [][]document.Shape
	future [][]document.Shape

	// discarded is the redo stack the newest checkpoint cleared, kept so
	// Rollback can restore it.
	discarded [][]document.Shape

	listeners map[int]func(Change)
	nextSub   int

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for history events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty editor with the select tool active.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tool:      ToolSelect,
		listeners: make(map[int]func(Change)),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- Mutations ---

// SaveSnapshot pushes a copy of the current shapes onto the undo stack and
// discards the redo stack.
func (s *Store) SaveSnapshot() {
	s.past = append(s.past, document.CloneShapes(s.shapesOrEmpty()))
	if len(s.future) > 0 {
		s.logger.Debug("discard redo history", "entries", len(s.future))
	}
	s.discarded = s.future
	s.future = nil
	s.notify(ChangeHistory)
}

// AddShape snapshots, then appends shape to the end of the collection.
func (s *Store) AddShape(shape document.Shape) error {
	id := shape.Base().ID
	if id == "" {
		return ErrEmptyID
	}
	if s.indexOf(id) >= 0 {
		return fmt.Errorf("add %s: %w", id, ErrDuplicateID)
	}

	s.SaveSnapshot()
	s.shapes = append(s.shapes, shape.Clone())
	s.notify(ChangeShapes)
	return nil
}

// UpdateShape merges patch into the shape with the given id without
// touching history. It is a no-op if no shape has that id.
//
// A discrete edit must be preceded by exactly one SaveSnapshot; CommitShape
// and BeginEdit do that for the caller.
func (s *Store) UpdateShape(id string, patch document.Patch) {
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.shapes[i] = patch.Apply(s.shapes[i])
	s.notify(ChangeShapes)
}

// CommitShape records a single undoable edit of one shape. It is a no-op,
// and records nothing, if no shape has that id.
func (s *Store) CommitShape(id string, patch document.Patch) {
	if s.indexOf(id) < 0 {
		return
	}
	s.SaveSnapshot()
	s.UpdateShape(id, patch)
}

// BeginEdit snapshots once and returns a handle for the transient updates
// of one gesture.
func (s *Store) BeginEdit() *Edit {
	s.SaveSnapshot()
	return &Edit{store: s}
}

// DeleteShapes snapshots, then removes every shape whose id is listed and
// drops those ids from the selection. The snapshot is taken even when no
// listed id is live.
func (s *Store) DeleteShapes(ids ...string) {
	s.SaveSnapshot()

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	before := len(s.shapes)
	s.shapes = slices.DeleteFunc(s.shapes, func(sh document.Shape) bool {
		return doomed[sh.Base().ID]
	})
	if len(s.shapes) != before {
		s.notify(ChangeShapes)
	}

	before = len(s.selected)
	s.selected = slices.DeleteFunc(s.selected, func(id string) bool { return doomed[id] })
	if len(s.selected) != before {
		s.notify(ChangeSelection)
	}
}

// SelectShape replaces the selection with id, or toggles id in or out of
// the selection when multi is set. Ids of shapes that are not live are
// ignored.
func (s *Store) SelectShape(id string, multi bool) {
	if s.indexOf(id) < 0 {
		return
	}

	if !multi {
		s.selected = []string{id}
	} else if i := slices.Index(s.selected, id); i >= 0 {
		s.selected = slices.Delete(slices.Clone(s.selected), i, i+1)
	} else {
		s.selected = append(slices.Clone(s.selected), id)
	}
	s.notify(ChangeSelection)
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	if len(s.selected) == 0 {
		return
	}
	s.selected = nil
	s.notify(ChangeSelection)
}

// SetTool switches the input mode. Switching tools deselects.
func (s *Store) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTool, t)
	}
	s.tool = t
	s.notify(ChangeTool)
	s.ClearSelection()
	return nil
}

// Undo restores the most recent snapshot. It reports whether anything
// changed.
func (s *Store) Undo() bool {
	if len(s.past) == 0 {
		return false
	}
	last := len(s.past) - 1
	previous := s.past[last]
	s.past = s.past[:last]

	s.future = append([][]document.Shape{s.shapesOrEmpty()}, s.future...)
	s.discarded = nil
	s.shapes = previous
	s.selected = nil

	s.logger.Debug("undo", "past", len(s.past), "future", len(s.future))
	s.notify(ChangeShapes | ChangeSelection | ChangeHistory)
	return true
}

// Redo re-applies the most recently undone state. It reports whether
// anything changed.
func (s *Store) Redo() bool {
	if len(s.future) == 0 {
		return false
	}
	next := s.future[0]
	s.future = s.future[1:]

	s.past = append(s.past, s.shapesOrEmpty())
	s.discarded = nil
	s.shapes = next
	s.selected = nil

	s.logger.Debug("redo", "past", len(s.past), "future", len(s.future))
	s.notify(ChangeShapes | ChangeSelection | ChangeHistory)
	return true
}

// Rollback drops the most recent checkpoint, restoring the shapes it holds
// without making the discarded state redoable. The redo stack that
// checkpoint cleared comes back. It is used to abandon a gesture whose
// result should leave no trace.
func (s *Store) Rollback() bool {
	if len(s.past) == 0 {
		return false
	}
	last := len(s.past) - 1
	s.shapes = s.past[last]
	s.past = s.past[:last]
	if s.discarded != nil {
		s.future = s.discarded
		s.discarded = nil
	}
	s.pruneSelection()

	s.notify(ChangeShapes | ChangeSelection | ChangeHistory)
	return true
}

// Replace swaps in a whole new document, as when a project is loaded. The
// shapes are validated first; on error the store is left untouched. On
// success history and selection are reset.
func (s *Store) Replace(shapes []document.Shape) error {
	if err := document.CheckIDs(shapes); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}

	s.shapes = document.CloneShapes(shapes)
	s.selected = nil
	s.past = nil
	s.future = nil
	s.discarded = nil

	s.logger.Info("document replaced", "shapes", len(shapes))
	s.notify(ChangeShapes | ChangeSelection | ChangeHistory)
	return nil
}

// --- Queries ---

// Shapes returns a copy of the shape collection in paint order.
func (s *Store) Shapes() []document.Shape {
	return document.CloneShapes(s.shapesOrEmpty())
}

// Shape returns a copy of the shape with the given id.
func (s *Store) Shape(id string) (document.Shape, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return s.shapes[i].Clone(), true
}

// Len returns the number of live shapes.
func (s *Store) Len() int {
	return len(s.shapes)
}

// Selected returns the selected ids in selection order.
func (s *Store) Selected() []string {
	return append([]string{}, s.selected...)
}

// IsSelected reports whether id is selected.
func (s *Store) IsSelected(id string) bool {
	return slices.Contains(s.selected, id)
}

// Primary returns the first selected shape, the target of handle
// transforms.
func (s *Store) Primary() (document.Shape, bool) {
	if len(s.selected) == 0 {
		return nil, false
	}
	return s.Shape(s.selected[0])
}

func (s *Store) Tool() Tool {
	return s.tool
}

func (s *Store) CanUndo() bool { return len(s.past) > 0 }
func (s *Store) CanRedo() bool { return len(s.future) > 0 }

// History returns the depth of the undo and redo stacks.
func (s *Store) History() (past, future int) {
	return len(s.past), len(s.future)
}

// --- Internals ---

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.shapes, func(sh document.Shape) bool {
		return sh.Base().ID == id
	})
}

func (s *Store) shapesOrEmpty() []document.Shape {
	if s.shapes == nil {
		return []document.Shape{}
	}
	return s.shapes
}

func (s *Store) pruneSelection() {
	s.selected = slices.DeleteFunc(s.selected, func(id string) bool {
		return s.indexOf(id) < 0
	})
}
