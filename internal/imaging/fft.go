package imaging

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum is a complex-valued 2-D grid stored row-major.
type Spectrum struct {
	W, H int
	Data []complex128
}

// At returns the coefficient at (u, v).
func (s *Spectrum) At(u, v int) complex128 { return s.Data[v*s.W+u] }

// Magnitude returns |s| as a plane.
func (s *Spectrum) Magnitude() *Plane {
	p := NewPlane(s.W, s.H)
	for i, c := range s.Data {
		p.Pix[i] = cmplx.Abs(c)
	}
	return p
}

// Real returns the real parts as a plane.
func (s *Spectrum) Real() *Plane {
	p := NewPlane(s.W, s.H)
	for i, c := range s.Data {
		p.Pix[i] = real(c)
	}
	return p
}

// FFT2 returns the unnormalized 2-D discrete Fourier transform of p.
func FFT2(p *Plane) *Spectrum {
	s := &Spectrum{W: p.W, H: p.H, Data: make([]complex128, len(p.Pix))}
	for i, v := range p.Pix {
		s.Data[i] = complex(v, 0)
	}
	transform2(s, false)
	return s
}

// IFFT2 returns the inverse 2-D transform of s, scaled by 1/(W·H) so that
// IFFT2(FFT2(p)) reproduces p.
func IFFT2(s *Spectrum) *Spectrum {
	out := &Spectrum{W: s.W, H: s.H, Data: make([]complex128, len(s.Data))}
	copy(out.Data, s.Data)
	transform2(out, true)
	n := complex(float64(s.W*s.H), 0)
	for i := range out.Data {
		out.Data[i] /= n
	}
	return out
}

// transform2 runs 1-D transforms over every row and then every column, in place.
func transform2(s *Spectrum, inverse bool) {
	if s.W == 0 || s.H == 0 {
		return
	}
	rowFFT := fourier.NewCmplxFFT(s.W)
	row := make([]complex128, s.W)
	for y := 0; y < s.H; y++ {
		copy(row, s.Data[y*s.W:(y+1)*s.W])
		if inverse {
			rowFFT.Sequence(s.Data[y*s.W:(y+1)*s.W], row)
		} else {
			rowFFT.Coefficients(s.Data[y*s.W:(y+1)*s.W], row)
		}
	}

	colFFT := fourier.NewCmplxFFT(s.H)
	col := make([]complex128, s.H)
	res := make([]complex128, s.H)
	for x := 0; x < s.W; x++ {
		for y := 0; y < s.H; y++ {
			col[y] = s.Data[y*s.W+x]
		}
		if inverse {
			colFFT.Sequence(res, col)
		} else {
			colFFT.Coefficients(res, col)
		}
		for y := 0; y < s.H; y++ {
			s.Data[y*s.W+x] = res[y]
		}
	}
}

// FFTShift moves the zero-frequency term to the center of the plane, at
// (W/2, H/2).
func FFTShift(p *Plane) *Plane {
	out := NewPlane(p.W, p.H)
	sx, sy := p.W/2, p.H/2
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			out.Set((x+sx)%p.W, (y+sy)%p.H, p.At(x, y))
		}
	}
	return out
}
