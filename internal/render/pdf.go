package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/geometry"
)

const (
	pageWidth  = 297.0 // A4 landscape, mm
	pageHeight = 210.0
	pageMargin = 10.0
)

// pageMapper maps scene coordinates onto the printable area of the page,
// keeping the aspect ratio and centering the document.
type pageMapper struct {
	bounds geometry.Rect
	scale  float64
	dx, dy float64
}

func newPageMapper(bounds geometry.Rect) pageMapper {
	availW, availH := pageWidth-2*pageMargin, pageHeight-2*pageMargin
	scale := 1.0
	if bounds.Width > 0 && bounds.Height > 0 {
		scale = math.Min(availW/bounds.Width, availH/bounds.Height)
	}
	return pageMapper{
		bounds: bounds,
		scale:  scale,
		dx:     pageMargin + (availW-bounds.Width*scale)/2,
		dy:     pageMargin + (availH-bounds.Height*scale)/2,
	}
}

func (m pageMapper) point(p geometry.Point) gofpdf.PointType {
	return gofpdf.PointType{
		X: m.dx + (p.X-m.bounds.X)*m.scale,
		Y: m.dy + (p.Y-m.bounds.Y)*m.scale,
	}
}

// PDF writes shapes onto a single A4 landscape page, scaled to fit.
func PDF(shapes []document.Shape) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreator("mvpcad", true)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	m := newPageMapper(DocumentBounds(shapes))
	for _, s := range shapes {
		drawPDFShape(pdf, m, s)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawPDFShape(pdf *gofpdf.Fpdf, m pageMapper, s document.Shape) {
	base := s.Base()
	tf := geometry.ShapeTransform(base.X, base.Y, base.Rotation)

	style := ""
	if base.StrokeWidth > 0 {
		stroke, ok := ParseColor(base.Stroke)
		if !ok {
			stroke.A = 0xff
		}
		pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
		pdf.SetLineWidth(base.StrokeWidth * m.scale)
		style = "D"
	}
	if _, isLine := s.(document.Line); !isLine {
		if fill, ok := ParseColor(base.Fill); ok {
			pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
			style = "F" + style
		}
	}
	if style == "" {
		return
	}

	switch s := s.(type) {
	case document.Rect:
		corners := []geometry.Point{{}, {X: s.Width}, {X: s.Width, Y: s.Height}, {Y: s.Height}}
		pts := make([]gofpdf.PointType, len(corners))
		for i, c := range corners {
			pts[i] = m.point(tf.Apply(c))
		}
		pdf.Polygon(pts, style)
	case document.Circle:
		c := m.point(tf.Apply(geometry.Point{}))
		pdf.Circle(c.X, c.Y, s.Radius*m.scale, style)
	case document.Line:
		for i := 1; i < len(s.Points); i++ {
			a := m.point(tf.Apply(s.Points[i-1]))
			b := m.point(tf.Apply(s.Points[i]))
			pdf.Line(a.X, a.Y, b.X, b.Y)
		}
	}
}
