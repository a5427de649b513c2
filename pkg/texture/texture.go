// Package texture renders the image applied to the flat faces of an
// extruded piece: the piece is cut out of the source image along its
// own boundary, softened at the edge, and scaled to fit a square canvas
// so that outline coordinates in [-0.5, 0.5] map onto it as (x+0.5, y+0.5).
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// DefaultSize is the side of the square texture canvas in pixels.
const DefaultSize = 512

// DefaultFeather is the blur sigma applied to the cut-out mask.
const DefaultFeather = 3.0

// ErrEmptyPiece is returned when the piece bounds do not overlap the source.
var ErrEmptyPiece = errors.New("texture: empty piece")

// Options control texture rendering.
type Options struct {
	Size    int     // canvas side in pixels
	Feather float64 // mask blur sigma; 0 gives a hard edge
}

// DefaultOptions returns the rendering defaults.
func DefaultOptions() Options {
	return Options{Size: DefaultSize, Feather: DefaultFeather}
}

// CutOut crops bounds out of src and keeps only the pixels inside the
// closed contour (absolute pixel coordinates), with the mask edge
// blurred by feather.
func CutOut(src image.Image, bounds image.Rectangle, contour []image.Point, feather float64) (*image.NRGBA, error) {
	bounds = bounds.Intersect(src.Bounds())
	if bounds.Empty() {
		return nil, ErrEmptyPiece
	}
	crop := imaging.Crop(src, bounds)
	w, h := bounds.Dx(), bounds.Dy()

	dc := gg.NewContext(w, h)
	for i, p := range contour {
		x := float64(p.X-bounds.Min.X) + 0.5
		y := float64(p.Y-bounds.Min.Y) + 0.5
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetColor(color.White)
	dc.Fill()

	var m image.Image = dc.Image()
	if feather > 0 {
		m = imaging.Blur(m, feather)
	}
	alpha := imaging.Clone(m)

	for y := 0; y < h; y++ {
		row := crop.Pix[y*crop.Stride:]
		mrow := alpha.Pix[y*alpha.Stride:]
		for x := 0; x < w; x++ {
			a := uint32(row[x*4+3]) * uint32(mrow[x*4+3]) / 255
			row[x*4+3] = uint8(a)
		}
	}
	return crop, nil
}

// Fit scales img to fit a size x size transparent canvas, preserving the
// aspect ratio, centered.
func Fit(img image.Image, size int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return imaging.New(size, size, color.Transparent)
	}

	scale := float64(size) / float64(max(w, h))
	sw := max(1, int(float64(w)*scale+0.5))
	sh := max(1, int(float64(h)*scale+0.5))
	scaled := imaging.Resize(img, sw, sh, imaging.Lanczos)

	dc := gg.NewContext(size, size)
	dc.DrawImageAnchored(scaled, size/2, size/2, 0.5, 0.5)
	return imaging.Clone(dc.Image())
}

// Render cuts the piece out of src and fits it to the texture canvas.
func Render(src image.Image, bounds image.Rectangle, contour []image.Point, opts Options) (*image.NRGBA, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("texture: size must be positive, got %d", opts.Size)
	}
	piece, err := CutOut(src, bounds, contour, opts.Feather)
	if err != nil {
		return nil, err
	}
	return Fit(piece, opts.Size), nil
}
