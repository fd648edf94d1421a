package editor

import "github.com/mvpcad/mvpcad/internal/document"

// Edit is one committed gesture. The snapshot was taken when the edit
// began, so any number of updates through it form a single undo step.
type Edit struct {
	store   *Store
	updates int
}

// Update merges patch into the shape with the given id. Absent ids are
// ignored.
func (e *Edit) Update(id string, patch document.Patch) {
	e.store.UpdateShape(id, patch)
	e.updates++
}

// Updates returns how many updates went through this edit.
func (e *Edit) Updates() int {
	return e.updates
}
