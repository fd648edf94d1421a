package project

import (
	"context"
	"io"
	"time"
)

// Kind is the type of file being written.
type Kind string

const (
	KindProject Kind = "project"
	KindPNG     Kind = "png"
	KindPDF     Kind = "pdf"
)

// Ext returns the file extension for the kind, dot included.
func (k Kind) Ext() string {
	switch k {
	case KindPNG:
		return ".png"
	case KindPDF:
		return ".pdf"
	default:
		return ".json"
	}
}

// Files is the file dialog collaborator. Both methods report false, with a
// nil error, when the user cancels.
type Files interface {
	OpenForRead(ctx context.Context) (io.ReadCloser, bool, error)
	OpenForWrite(ctx context.Context, kind Kind) (io.WriteCloser, bool, error)
}

// Aborter is implemented by writers that can discard a partial write
// instead of committing it on Close.
type Aborter interface {
	Abort() error
}

// Summary describes one named project in a Library or a Lister.
type Summary struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	Snapshots int       `json:"snapshots"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is one stored version of a project.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

// Library keeps versioned project snapshots by name.
type Library interface {
	SaveSnapshot(ctx context.Context, name string, doc []byte) (*Snapshot, error)
	LatestSnapshot(ctx context.Context, name string) ([]byte, error)
	ListProjects(ctx context.Context) ([]Summary, error)
}

// Lister is implemented by Files that can enumerate saved projects.
type Lister interface {
	List(ctx context.Context) ([]Summary, error)
}

type targetKey struct{}

// WithTarget attaches the file name a headless file dialog should pick.
func WithTarget(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, targetKey{}, name)
}

// TargetFromContext returns the name set by WithTarget, or "".
func TargetFromContext(ctx context.Context) string {
	name, _ := ctx.Value(targetKey{}).(string)
	return name
}
