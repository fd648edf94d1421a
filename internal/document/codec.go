package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mvpcad/mvpcad/internal/geometry"
)

// Version is the project file format version written by Encode.
const Version = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported project version")
	ErrMissingShapes      = errors.New("missing shapes")
	ErrUnknownShapeType   = errors.New("unknown shape type")
	ErrMissingID          = errors.New("shape without id")
	ErrDuplicateID        = errors.New("duplicate shape id")
	ErrMissingField       = errors.New("missing shape field")
	ErrInvalidPoints      = errors.New("invalid line points")
)

// ParseError reports a project file that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse project: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// Points is a polyline encoded as a flat [x1, y1, x2, y2, ...] array.
type Points []geometry.Point

func (p Points) MarshalJSON() ([]byte, error) {
	flat := make([]float64, 0, 2*len(p))
	for _, pt := range p {
		flat = append(flat, pt.X, pt.Y)
	}
	return json.Marshal(flat)
}

func (p *Points) UnmarshalJSON(data []byte) error {
	var flat []float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if len(flat)%2 != 0 {
		return fmt.Errorf("%w: odd number of coordinates (%d)", ErrInvalidPoints, len(flat))
	}
	out := make(Points, len(flat)/2)
	for i := range out {
		out[i] = geometry.Point{X: flat[2*i], Y: flat[2*i+1]}
	}
	*p = out
	return nil
}

type wireShape struct {
	Common
	Type   ShapeType `json:"type"`
	Width  *float64  `json:"width,omitempty"`
	Height *float64  `json:"height,omitempty"`
	Radius *float64  `json:"radius,omitempty"`
	Points Points    `json:"points,omitempty"`
}

// MarshalShape encodes a single shape in the project file format.
func MarshalShape(s Shape) ([]byte, error) {
	w := wireShape{Common: s.Base(), Type: s.Type()}
	switch s := s.(type) {
	case Rect:
		w.Width, w.Height = Float(s.Width), Float(s.Height)
	case Circle:
		w.Radius = Float(s.Radius)
	case Line:
		w.Points = Points(s.Points)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownShapeType, s)
	}
	return json.Marshal(w)
}

// UnmarshalShape decodes and validates a single shape.
func UnmarshalShape(data []byte) (Shape, error) {
	var w wireShape
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.ID == "" {
		return nil, ErrMissingID
	}

	switch w.Type {
	case ShapeTypeRect:
		if w.Width == nil || w.Height == nil {
			return nil, fmt.Errorf("%w: rect %s needs width and height", ErrMissingField, w.ID)
		}
		return Rect{Common: w.Common, Width: *w.Width, Height: *w.Height}, nil
	case ShapeTypeCircle:
		if w.Radius == nil {
			return nil, fmt.Errorf("%w: circle %s needs radius", ErrMissingField, w.ID)
		}
		return Circle{Common: w.Common, Radius: *w.Radius}, nil
	case ShapeTypeLine:
		if len(w.Points) == 0 {
			return nil, fmt.Errorf("%w: line %s has no points", ErrInvalidPoints, w.ID)
		}
		if w.Points[0] != (geometry.Point{}) {
			return nil, fmt.Errorf("%w: line %s does not start at its anchor", ErrInvalidPoints, w.ID)
		}
		return Line{Common: w.Common, Points: []geometry.Point(w.Points)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShapeType, w.Type)
	}
}

// Project is the unit of save and load.
type Project struct {
	Shapes  []Shape
	Version int
}

type wireProject struct {
	Shapes  []json.RawMessage `json:"shapes"`
	Version int               `json:"version"`
}

// Encode serializes shapes as a current-version project file.
func Encode(shapes []Shape) ([]byte, error) {
	return json.Marshal(Project{Shapes: shapes, Version: Version})
}

func (p Project) MarshalJSON() ([]byte, error) {
	w := wireProject{Shapes: make([]json.RawMessage, 0, len(p.Shapes)), Version: p.Version}
	for _, s := range p.Shapes {
		data, err := MarshalShape(s)
		if err != nil {
			return nil, fmt.Errorf("marshal shape %s: %w", s.Base().ID, err)
		}
		w.Shapes = append(w.Shapes, data)
	}
	return json.Marshal(w)
}

// Parse decodes a project file. Any problem is reported as a *ParseError
// and no partial result is returned.
func Parse(data []byte) (*Project, error) {
	var w wireProject
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &ParseError{Err: err}
	}
	if w.Version != Version {
		return nil, &ParseError{Err: fmt.Errorf("%w: %d", ErrUnsupportedVersion, w.Version)}
	}
	if w.Shapes == nil {
		return nil, &ParseError{Err: ErrMissingShapes}
	}

	shapes := make([]Shape, 0, len(w.Shapes))
	seen := make(map[string]bool, len(w.Shapes))
	for i, raw := range w.Shapes {
		s, err := UnmarshalShape(raw)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("shape %d: %w", i, err)}
		}
		id := s.Base().ID
		if seen[id] {
			return nil, &ParseError{Err: fmt.Errorf("%w: %s", ErrDuplicateID, id)}
		}
		seen[id] = true
		shapes = append(shapes, s)
	}

	return &Project{Shapes: shapes, Version: w.Version}, nil
}

// CheckIDs verifies that every shape has a unique, non-empty id.
func CheckIDs(shapes []Shape) error {
	seen := make(map[string]bool, len(shapes))
	for _, s := range shapes {
		id := s.Base().ID
		if id == "" {
			return ErrMissingID
		}
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = true
	}
	return nil
}
