package imaging

import (
	"image"
	"image/color"
)

// Mask is a binary image stored row-major. True marks a foreground pixel.
type Mask struct {
	W, H int
	Pix  []bool
}

// NewMask allocates an empty w×h mask.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]bool, w*h)}
}

// At reports whether (x, y) is set.
func (m *Mask) At(x, y int) bool { return m.Pix[y*m.W+x] }

// Set stores v at (x, y).
func (m *Mask) Set(x, y int, v bool) { m.Pix[y*m.W+x] = v }

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{W: m.W, H: m.H, Pix: make([]bool, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Threshold marks every pixel whose value is strictly greater than t.
func Threshold(p *Plane, t float64) *Mask {
	m := NewMask(p.W, p.H)
	for i, v := range p.Pix {
		m.Pix[i] = v > t
	}
	return m
}

// Xor marks pixels set in exactly one of a and b.
func Xor(a, b *Mask) *Mask {
	out := NewMask(a.W, a.H)
	for i := range out.Pix {
		out.Pix[i] = a.Pix[i] != b.Pix[i]
	}
	return out
}

// Plane converts the mask to a 0/255 intensity plane.
func (m *Mask) Plane() *Plane {
	p := NewPlane(m.W, m.H)
	for i, v := range m.Pix {
		if v {
			p.Pix[i] = 255
		}
	}
	return p
}

// Image renders set pixels in fg over a bg background.
func (m *Mask) Image(fg, bg color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.At(x, y) {
				img.SetNRGBA(x, y, fg)
			} else {
				img.SetNRGBA(x, y, bg)
			}
		}
	}
	return img
}

// Dilate grows the mask with a k×k square structuring element, repeated
// iterations times. Pixels outside the mask never contribute.
func (m *Mask) Dilate(k, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = out.morph(k, true)
	}
	if out == m {
		return m.Clone()
	}
	return out
}

// Erode shrinks the mask with a k×k square structuring element, repeated
// iterations times. Pixels outside the mask never contribute.
func (m *Mask) Erode(k, iterations int) *Mask {
	out := m
	for i := 0; i < iterations; i++ {
		out = out.morph(k, false)
	}
	if out == m {
		return m.Clone()
	}
	return out
}

// Open is erosion followed by dilation; it removes specks smaller than k.
func (m *Mask) Open(k, iterations int) *Mask {
	return m.Erode(k, iterations).Dilate(k, iterations)
}

// Close is dilation followed by erosion; it fills gaps smaller than k.
func (m *Mask) Close(k, iterations int) *Mask {
	return m.Dilate(k, iterations).Erode(k, iterations)
}

// morph applies one pass of a separable square max (dilate) or min (erode).
func (m *Mask) morph(k int, dilate bool) *Mask {
	lo := -(k - 1) / 2
	hi := k / 2

	rows := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			rows.Set(x, y, m.window(x, y, lo, hi, dilate, true))
		}
	}
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			out.Set(x, y, rows.window(x, y, lo, hi, dilate, false))
		}
	}
	return out
}

// window folds a 1-D run of pixels along one axis. Dilation is an any-of,
// erosion an all-of, both over in-bounds pixels only.
func (m *Mask) window(x, y, lo, hi int, dilate, horizontal bool) bool {
	for d := lo; d <= hi; d++ {
		px, py := x, y
		if horizontal {
			px += d
		} else {
			py += d
		}
		if px < 0 || py < 0 || px >= m.W || py >= m.H {
			continue
		}
		if m.At(px, py) == dilate {
			return dilate
		}
	}
	return !dilate
}
