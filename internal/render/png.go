package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/mvpcad/mvpcad/internal/document"
)

const (
	// ExportPadding is the margin, in scene units, around exported images.
	ExportPadding = 20.0

	DefaultExportScale = 2.0

	maxImageSide = 16384
)

var (
	ErrImageTooLarge = errors.New("export image too large")
	ErrInvalidScale  = errors.New("export scale must be a positive finite number")
)

// CheckScale rejects scales PNG cannot render at.
func CheckScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return nil
}

// PNG rasterises shapes onto a white background sized to the document
// bounds plus ExportPadding, at scale pixels per scene unit. A zero scale
// uses DefaultExportScale.
func PNG(shapes []document.Shape, scale float64) ([]byte, error) {
	if scale == 0 {
		scale = DefaultExportScale
	}
	if err := CheckScale(scale); err != nil {
		return nil, err
	}
	bounds := DocumentBounds(shapes).Expand(ExportPadding)

	pw, ph := math.Ceil(bounds.Width*scale), math.Ceil(bounds.Height*scale)
	if !(pw <= maxImageSide && ph <= maxImageSide) {
		return nil, fmt.Errorf("%w: %vx%v", ErrImageTooLarge, pw, ph)
	}
	w, h := int(pw), int(ph)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrInvalidScale, w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	dc.Scale(scale, scale)
	dc.Translate(-bounds.X, -bounds.Y)
	for _, s := range shapes {
		drawShape(dc, s, scale)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawShape(dc *gg.Context, s document.Shape, scale float64) {
	base := s.Base()

	dc.Push()
	defer dc.Pop()
	dc.Translate(base.X, base.Y)
	dc.Rotate(gg.Radians(base.Rotation))

	fillable := true
	switch s := s.(type) {
	case document.Rect:
		dc.DrawRectangle(0, 0, s.Width, s.Height)
	case document.Circle:
		dc.DrawCircle(0, 0, s.Radius)
	case document.Line:
		fillable = false
		for i, p := range s.Points {
			if i == 0 {
				dc.MoveTo(p.X, p.Y)
			} else {
				dc.LineTo(p.X, p.Y)
			}
		}
	}

	if fill, ok := ParseColor(base.Fill); ok && fillable {
		dc.SetColor(fill)
		dc.FillPreserve()
	}
	if base.StrokeWidth <= 0 {
		dc.ClearPath()
		return
	}
	stroke, ok := ParseColor(base.Stroke)
	if !ok {
		stroke = color.RGBA{A: 0xff}
	}
	dc.SetColor(stroke)
	// Line width is applied in device space.
	dc.SetLineWidth(base.StrokeWidth * scale)
	dc.Stroke()
}
