package outline

import "image"

// component is one 4-connected foreground region.
type component struct {
	label  int
	start  image.Point // first pixel in raster order
	bounds image.Rectangle
	pixels int
}

// label assigns a component label to every foreground pixel and returns
// the components in raster order of their first pixel. Labels start at 1.
func label(m *mask) ([]int, []component) {
	labels := make([]int, m.w*m.h)
	var comps []component
	var stack []image.Point

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if !m.at(x, y) || labels[y*m.w+x] != 0 {
				continue
			}
			c := component{
				label:  len(comps) + 1,
				start:  image.Pt(x, y),
				bounds: image.Rect(x, y, x+1, y+1),
			}
			labels[y*m.w+x] = c.label
			stack = append(stack[:0], c.start)
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.pixels++
				c.bounds = c.bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				for _, d := range [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					q := p.Add(d)
					if m.at(q.X, q.Y) && labels[q.Y*m.w+q.X] == 0 {
						labels[q.Y*m.w+q.X] = c.label
						stack = append(stack, q)
					}
				}
			}
			comps = append(comps, c)
		}
	}
	return labels, comps
}

// moore lists the 8 neighbours clockwise on screen (y down), starting west.
var moore = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func mooreIndex(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return 0
}

// traceBoundary follows the outer boundary of a component with Moore
// neighbour tracing, starting at its first raster pixel, whose west
// neighbour is always background. Tracing stops when the walk leaves
// the start pixel the same way it did the first time.
func traceBoundary(inside func(image.Point) bool, start image.Point, maxSteps int) []image.Point {
	contour := []image.Point{start}
	p, back := start, 0

	for i := 0; i < maxSteps; i++ {
		var (
			q     image.Point
			found bool
			dir   int
		)
		for k := 1; k <= 8; k++ {
			dir = (back + k) % 8
			q = p.Add(moore[dir])
			if inside(q) {
				found = true
				break
			}
		}
		if !found {
			break // isolated pixel
		}
		if p == start && len(contour) > 1 && q == contour[1] {
			break
		}

		prev := p.Add(moore[(dir+7)%8])
		back = mooreIndex(prev.Sub(q))
		p = q
		if p != start {
			contour = append(contour, p)
		}
	}
	return contour
}
