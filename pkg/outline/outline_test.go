package outline

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/chazu/cutout/pkg/geom"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// canvas returns a w x h image of bg with a filled rectangle r of fg.
func canvas(w, h int, bg, fg color.Color, rects ...image.Rectangle) *image.NRGBA {
	img := imaging.New(w, h, bg)
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, fg)
			}
		}
	}
	return img
}

func TestOtsuBimodal(t *testing.T) {
	levels := make([]uint8, 0, 200)
	for i := 0; i < 100; i++ {
		levels = append(levels, 10, 200)
	}
	th := otsu(levels)
	assert.GreaterOrEqual(t, th, uint8(10))
	assert.Less(t, th, uint8(200))
}

func TestBinarizePicksBorderMinority(t *testing.T) {
	tests := []struct {
		name   string
		bg, fg color.Color
	}{
		{"dark piece on light", color.White, color.Black},
		{"light piece on dark", color.Black, color.White},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := canvas(20, 20, tt.bg, tt.fg, image.Rect(5, 5, 15, 15))
			levels, w, h := luminance(img, 0)
			m := binarize(levels, w, h, otsu(levels))
			assert.True(t, m.at(10, 10), "piece interior should be foreground")
			assert.False(t, m.at(0, 0), "corner should be background")
			assert.False(t, m.at(-1, 3), "out of range is background")
		})
	}
}

func TestTraceBoundarySquare(t *testing.T) {
	m := newMask(5, 5)
	for y := 1; y <= 3; y++ {
		for x := 1; x <= 3; x++ {
			m.set(x, y, true)
		}
	}
	inside := func(p image.Point) bool { return m.at(p.X, p.Y) }

	got := traceBoundary(inside, image.Pt(1, 1), 100)
	want := []image.Point{
		{1, 1}, {2, 1}, {3, 1}, {3, 2}, {3, 3}, {2, 3}, {1, 3}, {1, 2},
	}
	assert.Equal(t, want, got)
}

func TestTraceBoundarySinglePixel(t *testing.T) {
	inside := func(p image.Point) bool { return p == image.Pt(2, 2) }
	got := traceBoundary(inside, image.Pt(2, 2), 100)
	assert.Equal(t, []image.Point{{2, 2}}, got)
}

func TestLabelSeparatesRegions(t *testing.T) {
	m := newMask(6, 3)
	m.set(0, 0, true)
	m.set(1, 0, true)
	m.set(4, 1, true)
	m.set(5, 2, true) // diagonal to (4,1): separate 4-connected region

	_, comps := label(m)
	require.Len(t, comps, 3)
	assert.Equal(t, 2, comps[0].pixels)
	assert.Equal(t, image.Rect(0, 0, 2, 1), comps[0].bounds)
	assert.Equal(t, image.Pt(4, 1), comps[1].start)
}

func TestDetectRectangle(t *testing.T) {
	img := canvas(200, 200, color.White, color.Black, image.Rect(50, 60, 150, 140))

	pieces := Detect(img, DefaultOptions())
	require.Len(t, pieces, 1)
	p := pieces[0]
	assert.Equal(t, image.Rect(50, 60, 150, 140), p.Bounds)
	assert.Equal(t, 100*80, p.Pixels)
	assert.Len(t, p.Contour, 2*(100+80)-4)
	assert.Equal(t, image.Pt(50, 60), p.Contour[0])
}

func TestDetectFiltersSmallRegions(t *testing.T) {
	img := canvas(200, 200, color.White, color.Black,
		image.Rect(10, 10, 40, 40),
		image.Rect(60, 60, 180, 120),
	)
	pieces := Detect(img, DefaultOptions())
	require.Len(t, pieces, 1)
	assert.Equal(t, image.Rect(60, 60, 180, 120), pieces[0].Bounds)
}

func TestExtractRectangle(t *testing.T) {
	img := canvas(200, 200, color.White, color.Black, image.Rect(50, 60, 150, 140))

	res, err := Extract(img, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Found)
	require.GreaterOrEqual(t, len(res.Outline), 3)
	assert.True(t, geom.IsCCW(res.Outline))

	min, max := geom.Bounds(res.Outline)
	assert.GreaterOrEqual(t, min.X, -0.5)
	assert.LessOrEqual(t, max.X, 0.5)
	assert.GreaterOrEqual(t, min.Y, -0.4)
	assert.LessOrEqual(t, max.Y, 0.4)
	assert.Greater(t, max.X, 0.45)
	assert.Less(t, min.X, -0.45)
}

func TestExtractNoPiece(t *testing.T) {
	img := canvas(200, 200, color.White, color.Black, image.Rect(90, 90, 110, 110))
	_, err := Extract(img, DefaultOptions())
	assert.True(t, errors.Is(err, ErrNoPiece), "got %v", err)
}

func TestSelectLargestCentral(t *testing.T) {
	frame := image.Rect(0, 0, 100, 100)
	pieces := []Piece{
		{Bounds: image.Rect(40, 40, 60, 60)},
		{Bounds: image.Rect(10, 10, 90, 90)},
		{Bounds: image.Rect(99, 99, 300, 300)}, // origin outside tolerance
	}
	got, err := Select(pieces, frame, 0.95)
	require.NoError(t, err)
	assert.Equal(t, pieces[1].Bounds, got.Bounds)

	_, err = Select(pieces[2:], frame, 0.95)
	assert.ErrorIs(t, err, ErrNoPiece)
}

func TestNormalizeTooFewPoints(t *testing.T) {
	p := Piece{
		Bounds:  image.Rect(0, 0, 10, 10),
		Contour: []image.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
	}
	_, err := Normalize(p, 32)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestNormalizeMapping(t *testing.T) {
	p := Piece{
		Bounds:  image.Rect(10, 10, 20, 20),
		Contour: []image.Point{{10, 10}, {19, 10}, {19, 19}, {10, 19}},
	}
	pts, err := Normalize(p, 1)
	require.NoError(t, err)
	require.Len(t, pts, 4)
	for _, v := range pts {
		assert.InDelta(t, 0.45, abs(v.X), 1e-12)
		assert.InDelta(t, 0.45, abs(v.Y), 1e-12)
	}
	assert.True(t, geom.IsCCW(pts))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
