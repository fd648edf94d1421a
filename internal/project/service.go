package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/render"
	"github.com/mvpcad/mvpcad/internal/typeid"
)

var (
	ErrNotFound          = errors.New("project not found")
	ErrExportPending     = errors.New("export already in progress")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoLibrary         = errors.New("project library not configured")
	ErrTooLarge          = errors.New("project file too large")
	ErrInvalidName       = errors.New("invalid project name")
)

// MaxProjectSize bounds how much of a project file Load reads.
const MaxProjectSize = 32 << 20

// Document is the editor state the service reads and replaces.
// *editor.Store satisfies it.
type Document interface {
	Shapes() []document.Shape
	Replace(shapes []document.Shape) error
}

// Format is an export format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

func (f Format) kind() (Kind, bool) {
	switch f {
	case FormatPNG:
		return KindPNG, true
	case FormatPDF:
		return KindPDF, true
	}
	return "", false
}

type Service struct {
	doc     Document
	files   Files
	library Library

	exportScale float64
	exporting   atomic.Bool

	logger *slog.Logger
}

type Option func(*Service)

// WithLibrary enables versioned snapshots.
func WithLibrary(lib Library) Option {
	return func(s *Service) { s.library = lib }
}

// WithExportScale sets the default PNG pixel ratio.
func WithExportScale(scale float64) Option {
	return func(s *Service) { s.exportScale = scale }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(doc Document, files Files, opts ...Option) *Service {
	s := &Service{
		doc:         doc,
		files:       files,
		exportScale: render.DefaultExportScale,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the current shapes as a project file. It reports false when
// the user cancels.
func (s *Service) Save(ctx context.Context) (bool, error) {
	data, err := document.Encode(s.doc.Shapes())
	if err != nil {
		return false, fmt.Errorf("encode project: %w", err)
	}

	ok, err := s.write(ctx, KindProject, data)
	if err != nil {
		return false, fmt.Errorf("save project: %w", err)
	}
	if ok {
		s.logger.Info("project saved", "bytes", len(data))
	}
	return ok, nil
}

// Load reads a project file and replaces the document with it. On any
// error the document is left as it was. It reports false when the user
// cancels.
func (s *Service) Load(ctx context.Context) (bool, error) {
	r, ok, err := s.files.OpenForRead(ctx)
	if err != nil {
		return false, fmt.Errorf("open project: %w", err)
	}
	if !ok {
		return false, nil
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxProjectSize+1))
	if err != nil {
		return false, fmt.Errorf("read project: %w", err)
	}
	if len(data) > MaxProjectSize {
		return false, ErrTooLarge
	}

	if err := s.apply(data); err != nil {
		return false, err
	}
	return true, nil
}

// ExportResult describes a written export.
type ExportResult struct {
	ID     string `json:"id"`
	Format Format `json:"format"`
	Bytes  int    `json:"bytes"`
}

// Export renders the current shapes and writes them out. Only one export
// runs at a time; edits are never blocked by it. A zero scale uses the
// configured default. The result is nil when the user cancels.
func (s *Service) Export(ctx context.Context, format Format, scale float64) (*ExportResult, error) {
	kind, ok := format.kind()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if scale == 0 {
		scale = s.exportScale
	}
	if err := render.CheckScale(scale); err != nil {
		return nil, err
	}
	if !s.exporting.CompareAndSwap(false, true) {
		return nil, ErrExportPending
	}
	defer s.exporting.Store(false)

	shapes := s.doc.Shapes()
	var data []byte
	var err error
	switch format {
	case FormatPNG:
		data, err = render.PNG(shapes, scale)
	case FormatPDF:
		data, err = render.PDF(shapes)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	ok, err = s.write(ctx, kind, data)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	if !ok {
		return nil, nil
	}

	res := &ExportResult{ID: typeid.NewExportID(), Format: format, Bytes: len(data)}
	s.logger.Info("export written", "id", res.ID, "format", format, "bytes", res.Bytes)
	return res, nil
}

// Exporting reports whether an export is in flight.
func (s *Service) Exporting() bool {
	return s.exporting.Load()
}

// Snapshot stores the current shapes as the next version of name in the
// library.
func (s *Service) Snapshot(ctx context.Context, name string) (*Snapshot, error) {
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	data, err := document.Encode(s.doc.Shapes())
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	snap, err := s.library.SaveSnapshot(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Info("snapshot saved", "name", name, "version", snap.Version)
	return snap, nil
}

// Restore replaces the document with the latest library version of name.
func (s *Service) Restore(ctx context.Context, name string) error {
	if s.library == nil {
		return ErrNoLibrary
	}
	data, err := s.library.LatestSnapshot(ctx, name)
	if err != nil {
		return fmt.Errorf("get snapshot: %w", err)
	}
	return s.apply(data)
}

// List returns the saved projects, from the library when one is configured
// and otherwise from the files collaborator if it can enumerate.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	if s.library != nil {
		return s.library.ListProjects(ctx)
	}
	if l, ok := s.files.(Lister); ok {
		return l.List(ctx)
	}
	return nil, ErrNoLibrary
}

func (s *Service) apply(data []byte) error {
	proj, err := document.Parse(data)
	if err != nil {
		return err
	}
	if err := s.doc.Replace(proj.Shapes); err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	return nil
}

func (s *Service) write(ctx context.Context, kind Kind, data []byte) (bool, error) {
	w, ok, err := s.files.OpenForWrite(ctx, kind)
	if err != nil || !ok {
		return false, err
	}

	if _, err := w.Write(data); err != nil {
		if a, ok := w.(Aborter); ok {
			a.Abort()
		} else {
			w.Close()
		}
		return false, err
	}
	if err := w.Close(); err != nil {
		return false, err
	}
	return true, nil
}
