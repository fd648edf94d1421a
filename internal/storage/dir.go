// Package storage holds the project file backends: a directory of JSON
// files and a Postgres snapshot library.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mvpcad/mvpcad/internal/project"
)

// Picker chooses the file name for an open or save, the headless stand-in
// for a file dialog. An empty name means the user cancelled.
type Picker func(ctx context.Context, kind project.Kind) (string, error)

// TargetPicker picks the name attached with project.WithTarget.
func TargetPicker(ctx context.Context, kind project.Kind) (string, error) {
	return project.TargetFromContext(ctx), nil
}

// Dir stores projects and exports as files under a root directory.
type Dir struct {
	root   string
	pick   Picker
	logger *slog.Logger
}

type DirOption func(*Dir)

func WithPicker(p Picker) DirOption {
	return func(d *Dir) { d.pick = p }
}

func WithLogger(l *slog.Logger) DirOption {
	return func(d *Dir) { d.logger = l }
}

// NewDir creates root if needed.
func NewDir(root string, opts ...DirOption) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	d := &Dir{root: root, pick: TargetPicker, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Dir) Root() string { return d.root }

// OpenForRead opens the picked project file.
func (d *Dir) OpenForRead(ctx context.Context) (io.ReadCloser, bool, error) {
	path, ok, err := d.path(ctx, project.KindProject)
	if err != nil || !ok {
		return nil, false, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, project.ErrNotFound
		}
		return nil, false, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	return f, true, nil
}

// OpenForWrite returns a writer that replaces the picked file atomically
// when closed.
func (d *Dir) OpenForWrite(ctx context.Context, kind project.Kind) (io.WriteCloser, bool, error) {
	path, ok, err := d.path(ctx, kind)
	if err != nil || !ok {
		return nil, false, err
	}

	tmp, err := os.CreateTemp(d.root, ".tmp-*"+kind.Ext())
	if err != nil {
		return nil, false, fmt.Errorf("create temp file: %w", err)
	}
	return &atomicFile{File: tmp, target: path, logger: d.logger}, true, nil
}

// List returns the project files in the directory, newest first.
func (d *Dir) List(ctx context.Context) ([]project.Summary, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var out []project.Summary
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != project.KindProject.Ext() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, project.Summary{
			Name:      strings.TrimSuffix(name, project.KindProject.Ext()),
			Version:   1,
			Snapshots: 1,
			UpdatedAt: info.ModTime().UTC(),
		})
	}
	slices.SortFunc(out, func(a, b project.Summary) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

func (d *Dir) path(ctx context.Context, kind project.Kind) (string, bool, error) {
	name, err := d.pick(ctx, kind)
	if err != nil {
		return "", false, err
	}
	if name == "" {
		return "", false, nil
	}
	if err := ValidateName(name); err != nil {
		return "", false, err
	}
	return filepath.Join(d.root, name+kind.Ext()), true, nil
}

// ValidateName rejects names that would escape the directory or hide the
// file.
func ValidateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || len(name) > 128 {
		return fmt.Errorf("%w: %q", project.ErrInvalidName, name)
	}
	return nil
}

// atomicFile writes to a temp file and renames it over the target on Close.
type atomicFile struct {
	*os.File
	target string
	logger *slog.Logger
	done   bool
}

func (f *atomicFile) Close() error {
	if f.done {
		return nil
	}
	f.done = true

	if err := f.File.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(f.Name(), f.target); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("replace %s: %w", filepath.Base(f.target), err)
	}
	f.logger.Debug("file written", "path", f.target)
	return nil
}

// Abort discards everything written so far.
func (f *atomicFile) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	f.File.Close()
	return os.Remove(f.Name())
}
