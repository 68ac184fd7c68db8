package imaging

import "image"

// Component is one 8-connected group of set mask pixels.
type Component struct {
	// Area is the number of pixels in the component.
	Area int `json:"area"`

	// Bounds is the tight bounding box, Max exclusive.
	Bounds image.Rectangle `json:"bounds"`

	// Pixels lists every member pixel.
	Pixels []image.Point `json:"-"`
}

// Components labels the 8-connected components of m and returns those with at
// least minArea pixels, in raster order of their first pixel.
func Components(m *Mask, minArea int) []Component {
	visited := NewMask(m.W, m.H)
	var out []Component
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(x, y) || visited.At(x, y) {
				continue
			}
			var pixels []image.Point
			floodFill(m, visited, x, y, &pixels)
			if len(pixels) < minArea {
				continue
			}
			out = append(out, newComponent(pixels))
		}
	}
	return out
}

// Keep returns a mask holding only the pixels of the given components.
func Keep(w, h int, comps []Component) *Mask {
	out := NewMask(w, h)
	for _, c := range comps {
		for _, p := range c.Pixels {
			out.Set(p.X, p.Y, true)
		}
	}
	return out
}

func newComponent(pixels []image.Point) Component {
	b := image.Rectangle{Min: pixels[0], Max: pixels[0].Add(image.Pt(1, 1))}
	for _, p := range pixels[1:] {
		b = b.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return Component{Area: len(pixels), Bounds: b, Pixels: pixels}
}

// floodFill collects the 8-connected set pixels reachable from (startX, startY).
func floodFill(m, visited *Mask, startX, startY int, pixels *[]image.Point) {
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= m.W || p.Y < 0 || p.Y >= m.H {
			continue
		}
		if visited.At(p.X, p.Y) || !m.At(p.X, p.Y) {
			continue
		}

		visited.Set(p.X, p.Y, true)
		*pixels = append(*pixels, p)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// Outline is an external outline: a component with its holes filled.
type Outline struct {
	// Area is the pixel count of the filled region.
	Area int `json:"area"`

	// Bounds is the tight bounding box, Max exclusive.
	Bounds image.Rectangle `json:"bounds"`

	// Filled marks the region interior, holes included.
	Filled *Mask `json:"-"`

	// Boundary marks the filled region's outer edge pixels (4-connected edge).
	Boundary *Mask `json:"-"`
}

// ExternalOutlines returns the external outlines of m with filled area strictly
// greater than minArea. Holes are filled before measuring, so a ring counts
// its interior.
func ExternalOutlines(m *Mask, minArea int) []Outline {
	holes := backgroundHoles(m)
	filled := m.Clone()
	for i, h := range holes.Pix {
		if h {
			filled.Pix[i] = true
		}
	}

	var out []Outline
	for _, c := range Components(filled, 1) {
		if c.Area <= minArea {
			continue
		}
		fm := Keep(m.W, m.H, []Component{c})
		out = append(out, Outline{
			Area:     c.Area,
			Bounds:   c.Bounds,
			Filled:   fm,
			Boundary: boundary(fm),
		})
	}
	return out
}

// backgroundHoles marks background pixels not 4-connected to the image border.
func backgroundHoles(m *Mask) *Mask {
	outside := NewMask(m.W, m.H)
	var stack []image.Point
	push := func(x, y int) {
		if x < 0 || y < 0 || x >= m.W || y >= m.H || m.At(x, y) || outside.At(x, y) {
			return
		}
		outside.Set(x, y, true)
		stack = append(stack, image.Pt(x, y))
	}
	for x := 0; x < m.W; x++ {
		push(x, 0)
		push(x, m.H-1)
	}
	for y := 0; y < m.H; y++ {
		push(0, y)
		push(m.W-1, y)
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}

	holes := NewMask(m.W, m.H)
	for i := range holes.Pix {
		holes.Pix[i] = !m.Pix[i] && !outside.Pix[i]
	}
	return holes
}

// boundary marks set pixels with at least one 4-neighbor that is unset or
// outside the image.
func boundary(m *Mask) *Mask {
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if !m.At(x, y) {
				continue
			}
			if x == 0 || y == 0 || x == m.W-1 || y == m.H-1 ||
				!m.At(x-1, y) || !m.At(x+1, y) || !m.At(x, y-1) || !m.At(x, y+1) {
				out.Set(x, y, true)
			}
		}
	}
	return out
}
