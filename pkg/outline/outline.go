// Package outline extracts the boundary polygon of a flat piece from a
// photograph or scan. The image is thresholded with Otsu's method, split
// into connected regions, and the outer boundary of the most central
// large region is traced, decimated and normalized to fit the unit
// square centered on the origin.
package outline

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/chazu/cutout/pkg/geom"
	"github.com/disintegration/imaging"
)

var (
	// ErrNoPiece is returned when no region passes the size filters or
	// lies close enough to the image center.
	ErrNoPiece = errors.New("outline: no piece found")

	// ErrTooFewPoints is returned when decimation leaves fewer than three
	// distinct points.
	ErrTooFewPoints = errors.New("outline: too few points after decimation")
)

// Options control detection and normalization.
type Options struct {
	Step            int     // keep every Step-th boundary point
	MinPoints       int     // minimum boundary length of a piece
	MinSize         int     // bounding box must exceed this in both axes, in pixels
	CenterTolerance float64 // fraction of the half-extent a piece origin may lie from the center
	Blur            float64 // Gaussian sigma applied before thresholding; 0 disables
}

// DefaultOptions returns the detection defaults.
func DefaultOptions() Options {
	return Options{
		Step:            32,
		MinPoints:       20,
		MinSize:         50,
		CenterTolerance: 0.95,
	}
}

// Piece is one detected region.
type Piece struct {
	Bounds  image.Rectangle // pixel bounding box in the source image
	Contour []image.Point   // outer boundary pixels, clockwise on screen
	Pixels  int
}

// Area returns the bounding box area used to rank pieces.
func (p Piece) Area() int {
	return p.Bounds.Dx() * p.Bounds.Dy()
}

// Result is the outcome of Extract.
type Result struct {
	Piece   Piece
	Outline []geom.Vec2 // counter-clockwise, +y up, within [-0.5, 0.5]
	Found   int         // number of pieces that passed the size filters
}

// Load opens an image file in any format imaging can decode, applying
// EXIF orientation.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("outline: open %s: %w", path, err)
	}
	return img, nil
}

// Detect finds every region of img that passes the size filters.
func Detect(img image.Image, opts Options) []Piece {
	levels, w, h := luminance(img, opts.Blur)
	if w == 0 || h == 0 {
		return nil
	}
	m := binarize(levels, w, h, otsu(levels))
	labels, comps := label(m)

	origin := img.Bounds().Min
	var pieces []Piece
	for _, c := range comps {
		if c.bounds.Dx() <= opts.MinSize || c.bounds.Dy() <= opts.MinSize {
			continue
		}
		lbl := c.label
		inside := func(p image.Point) bool {
			return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && labels[p.Y*w+p.X] == lbl
		}
		contour := traceBoundary(inside, c.start, 4*c.pixels+16)
		if len(contour) < opts.MinPoints {
			continue
		}
		for i := range contour {
			contour[i] = contour[i].Add(origin)
		}
		pieces = append(pieces, Piece{
			Bounds:  c.bounds.Add(origin),
			Contour: contour,
			Pixels:  c.pixels,
		})
	}
	return pieces
}

// Select picks the piece with the largest bounding box among those
// whose origin lies within tolerance of the image center. Ties keep the
// earlier piece.
func Select(pieces []Piece, frame image.Rectangle, tolerance float64) (Piece, error) {
	cx := float64(frame.Min.X) + float64(frame.Dx())/2
	cy := float64(frame.Min.Y) + float64(frame.Dy())/2
	maxDX := tolerance * float64(frame.Dx()) / 2
	maxDY := tolerance * float64(frame.Dy()) / 2

	best, bestArea := -1, 0
	for i, p := range pieces {
		if math.Abs(float64(p.Bounds.Min.X)-cx) > maxDX || math.Abs(float64(p.Bounds.Min.Y)-cy) > maxDY {
			continue
		}
		if a := p.Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 {
		return Piece{}, ErrNoPiece
	}
	return pieces[best], nil
}

// Normalize decimates the contour of p to every step-th point and maps
// it into the unit square: centered on the bounding box, scaled by the
// longer side, y flipped so +y is up. The result is deduplicated and
// counter-clockwise.
func Normalize(p Piece, step int) ([]geom.Vec2, error) {
	if step < 1 {
		step = 1
	}
	w := float64(p.Bounds.Dx())
	h := float64(p.Bounds.Dy())
	scale := 1 / max(w, h)

	pts := make([]geom.Vec2, 0, len(p.Contour)/step+1)
	for i := 0; i < len(p.Contour); i += step {
		c := p.Contour[i]
		x := float64(c.X-p.Bounds.Min.X) + 0.5
		y := float64(c.Y-p.Bounds.Min.Y) + 0.5
		pts = append(pts, geom.V((x-w/2)*scale, -(y-h/2)*scale))
	}

	pts = geom.Dedupe(pts, 1e-9)
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: %d points remain (step %d, contour %d)", ErrTooFewPoints, len(pts), step, len(p.Contour))
	}
	return geom.EnsureCCW(pts), nil
}

// Extract runs detection, selection and normalization on img.
func Extract(img image.Image, opts Options) (*Result, error) {
	pieces := Detect(img, opts)
	piece, err := Select(pieces, img.Bounds(), opts.CenterTolerance)
	if err != nil {
		return nil, fmt.Errorf("%w (%d candidates)", err, len(pieces))
	}
	pts, err := Normalize(piece, opts.Step)
	if err != nil {
		return nil, err
	}
	return &Result{Piece: piece, Outline: pts, Found: len(pieces)}, nil
}
