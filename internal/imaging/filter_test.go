package imaging

import "testing"

func constantPlane(w, h int, v float64) *Plane {
	return NewPlane(w, h).Map(func(float64) float64 { return v })
}

func TestSobel_Constant(t *testing.T) {
	mag := Sobel(constantPlane(20, 20, 90))
	if hi := mag.Max(); hi != 0 {
		t.Errorf("constant plane gradient max: got %v, want 0", hi)
	}
}

func TestSobelXY_Step(t *testing.T) {
	gx, gy := SobelXY(createStepPlane(20, 10, 10))

	if got := gx.At(9, 5); got != 1020 {
		t.Errorf("gx at step: got %v, want 1020", got)
	}
	if got := gx.At(3, 5); got != 0 {
		t.Errorf("gx away from step: got %v, want 0", got)
	}
	if _, hi := gy.MinMax(); hi != 0 {
		t.Errorf("gy max: got %v, want 0 for a vertical step", hi)
	}
}

func TestBoxMean(t *testing.T) {
	c := BoxMean(constantPlane(15, 9, 42), 7)
	for i, v := range c.Pix {
		if absFloat(v-42) > 1e-9 {
			t.Fatalf("Pix[%d]: got %v, want 42", i, v)
		}
	}

	// A single bright pixel spreads evenly over the 3×3 window.
	p := NewPlane(5, 5)
	p.Set(2, 2, 9)
	m := BoxMean(p, 3)
	if absFloat(m.At(1, 1)-1) > 1e-9 || absFloat(m.At(2, 2)-1) > 1e-9 {
		t.Errorf("window mean: got %v and %v, want 1", m.At(1, 1), m.At(2, 2))
	}
	if m.At(0, 0) != 0 {
		t.Errorf("outside window: got %v, want 0", m.At(0, 0))
	}
}

func TestBilateral(t *testing.T) {
	t.Run("constant unchanged", func(t *testing.T) {
		out := Bilateral(constantPlane(16, 16, 123), 9, 75, 75)
		for i, v := range out.Pix {
			if v != 123 {
				t.Fatalf("Pix[%d]: got %v, want 123", i, v)
			}
		}
	})

	t.Run("step edge preserved", func(t *testing.T) {
		out := Bilateral(createStepPlane(40, 10, 20), 9, 75, 75)
		if v := out.At(5, 5); v != 0 {
			t.Errorf("dark side: got %v, want 0", v)
		}
		if v := out.At(35, 5); v != 255 {
			t.Errorf("bright side: got %v, want 255", v)
		}
		// With a 255 step the range kernel weight is about 3e-3, so the edge stays sharp.
		if v := out.At(19, 5); v > 5 {
			t.Errorf("edge pixel blurred to %v", v)
		}
	})

	t.Run("small diameter is a copy", func(t *testing.T) {
		p := createStepPlane(8, 8, 4)
		out := Bilateral(p, 1, 75, 75)
		for i := range p.Pix {
			if out.Pix[i] != p.Pix[i] {
				t.Fatalf("Pix[%d] changed", i)
			}
		}
	})
}

func TestCLAHE(t *testing.T) {
	t.Run("constant stays constant", func(t *testing.T) {
		out := CLAHE(constantPlane(64, 64, 100), 2.0, 8, 8)
		first := out.Pix[0]
		for i, v := range out.Pix {
			if v != first {
				t.Fatalf("Pix[%d]: got %v, want %v", i, v, first)
			}
		}
	})

	t.Run("range preserved", func(t *testing.T) {
		p := NewPlane(50, 30)
		for i := range p.Pix {
			p.Pix[i] = float64(i % 256)
		}
		out := CLAHE(p, 2.0, 8, 8)
		if out.W != 50 || out.H != 30 {
			t.Fatalf("size: got %dx%d", out.W, out.H)
		}
		lo, hi := out.MinMax()
		if lo < 0 || hi > 255 {
			t.Errorf("range: got [%v, %v]", lo, hi)
		}
	})

	t.Run("monotonic within a tile", func(t *testing.T) {
		// A single tile: the mapping is a clipped CDF, so order is preserved.
		p := NewPlane(16, 16)
		for i := range p.Pix {
			p.Pix[i] = float64(i)
		}
		out := CLAHE(p, 2.0, 1, 1)
		for i := 1; i < len(out.Pix); i++ {
			if out.Pix[i] < out.Pix[i-1] {
				t.Fatalf("Pix[%d]=%v < Pix[%d]=%v", i, out.Pix[i], i-1, out.Pix[i-1])
			}
		}
	})
}
