// Package typeid mints the prefixed, sortable ids used for shapes,
// projects, snapshots and exports.
package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixShape    = "shape"
	PrefixProject  = "proj"
	PrefixSnapshot = "snap"
	PrefixExport   = "exp"
)

// New returns a fresh id with the given prefix. It panics on an invalid
// prefix, so callers pass one of the constants above.
func New(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

func NewShapeID() string    { return New(PrefixShape) }
func NewProjectID() string  { return New(PrefixProject) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewExportID() string   { return New(PrefixExport) }

// Validate checks that id parses and carries expectedPrefix.
func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	if got := parsed.Prefix(); got != expectedPrefix {
		return fmt.Errorf("id %q: prefix %q, want %q", id, got, expectedPrefix)
	}
	return nil
}
