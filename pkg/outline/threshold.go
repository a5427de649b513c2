package outline

import (
	"image"

	"github.com/disintegration/imaging"
)

// mask is a binary image with zero-origin coordinates.
type mask struct {
	w, h int
	bits []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, bits: make([]bool, w*h)}
}

func (m *mask) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.w+x]
}

func (m *mask) set(x, y int, v bool) {
	m.bits[y*m.w+x] = v
}

// luminance converts img to 8-bit gray levels, optionally smoothed with
// a Gaussian of the given sigma.
func luminance(img image.Image, blur float64) (levels []uint8, w, h int) {
	gray := imaging.Grayscale(img)
	if blur > 0 {
		gray = imaging.Blur(gray, blur)
	}
	b := gray.Bounds()
	w, h = b.Dx(), b.Dy()
	levels = make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			levels[y*w+x] = row[x*4]
		}
	}
	return levels, w, h
}

// otsu returns the gray level that maximizes the between-class variance
// of the histogram. Levels at or below the result form the dark class.
func otsu(levels []uint8) uint8 {
	var hist [256]int
	for _, v := range levels {
		hist[v]++
	}

	total := len(levels)
	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}

	var (
		sumDark float64
		wDark   int
		best    float64
		thresh  int
	)
	for i, c := range hist {
		wDark += c
		if wDark == 0 {
			continue
		}
		wLight := total - wDark
		if wLight == 0 {
			break
		}
		sumDark += float64(i * c)
		mDark := sumDark / float64(wDark)
		mLight := (sum - sumDark) / float64(wLight)
		between := float64(wDark) * float64(wLight) * (mDark - mLight) * (mDark - mLight)
		if between > best {
			best = between
			thresh = i
		}
	}
	return uint8(thresh)
}

// binarize thresholds levels and marks the foreground class: whichever
// of dark or light covers at most half of the image border. A tie makes
// the dark class the foreground.
func binarize(levels []uint8, w, h int, thresh uint8) *mask {
	dark := func(x, y int) bool { return levels[y*w+x] <= thresh }

	border, darkBorder := 0, 0
	count := func(x, y int) {
		border++
		if dark(x, y) {
			darkBorder++
		}
	}
	for x := 0; x < w; x++ {
		count(x, 0)
		if h > 1 {
			count(x, h-1)
		}
	}
	for y := 1; y < h-1; y++ {
		count(0, y)
		if w > 1 {
			count(w-1, y)
		}
	}
	fgDark := darkBorder*2 <= border

	m := newMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.set(x, y, dark(x, y) == fgDark)
		}
	}
	return m
}
