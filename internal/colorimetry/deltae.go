package colorimetry

import "math"

// DeltaE76 returns the CIE 1976 color difference (Euclidean distance in Lab).
func DeltaE76(lab1, lab2 Lab) DeltaE {
	dl := lab1.L - lab2.L
	da := lab1.A - lab2.A
	db := lab1.B - lab2.B
	return DeltaE(math.Sqrt(dl*dl + da*da + db*db))
}

// DeltaE94 returns the CIE 1994 color difference with graphic-arts weights
// (kL=kC=kH=1, K1=0.045, K2=0.015). lab1 is the reference.
func DeltaE94(lab1, lab2 Lab) DeltaE {
	const (
		k1 = 0.045
		k2 = 0.015
	)
	dl := lab1.L - lab2.L
	c1 := lab1.Chroma()
	c2 := lab2.Chroma()
	dc := c1 - c2
	da := lab1.A - lab2.A
	db := lab1.B - lab2.B
	dh2 := math.Max(0, da*da+db*db-dc*dc)

	sc := 1 + k1*c1
	sh := 1 + k2*c1
	return DeltaE(math.Sqrt(dl*dl + (dc/sc)*(dc/sc) + dh2/(sh*sh)))
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// hueAngle returns atan2(b, a) in degrees within [0, 360).
func hueAngle(b, a float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := rad2deg(math.Atan2(b, a))
	if h < 0 {
		h += 360
	}
	return h
}

// DeltaE2000 returns the CIEDE2000 color difference with kL=kC=kH=1.
//
// The implementation follows Sharma, Wu and Dalal (2005), including the
// 180 degree hue wraparound handling for both the hue difference and the
// mean hue, the hue weighting T, and the blue-region rotation term RT.
func DeltaE2000(lab1, lab2 Lab) DeltaE {
	const pow25to7 = 6103515625.0 // 25^7

	c1 := lab1.Chroma()
	c2 := lab2.Chroma()
	avgC := (c1 + c2) / 2
	avgC7 := math.Pow(avgC, 7)
	g := 0.5 * (1 - math.Sqrt(avgC7/(avgC7+pow25to7)))

	a1p := (1 + g) * lab1.A
	a2p := (1 + g) * lab2.A
	c1p := math.Hypot(a1p, lab1.B)
	c2p := math.Hypot(a2p, lab2.B)
	h1p := hueAngle(lab1.B, a1p)
	h2p := hueAngle(lab2.B, a2p)

	dLp := lab2.L - lab1.L
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(deg2rad(dhp)/2)

	avgLp := (lab1.L + lab2.L) / 2
	avgCp := (c1p + c2p) / 2

	var avgHp float64
	switch {
	case c1p*c2p == 0:
		avgHp = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		avgHp = (h1p + h2p) / 2
	case h1p+h2p < 360:
		avgHp = (h1p + h2p + 360) / 2
	default:
		avgHp = (h1p + h2p - 360) / 2
	}

	t := 1 - 0.17*math.Cos(deg2rad(avgHp-30)) +
		0.24*math.Cos(deg2rad(2*avgHp)) +
		0.32*math.Cos(deg2rad(3*avgHp+6)) -
		0.20*math.Cos(deg2rad(4*avgHp-63))

	dRo := 30 * math.Exp(-math.Pow((avgHp-275)/25, 2))
	avgCp7 := math.Pow(avgCp, 7)
	rc := 2 * math.Sqrt(avgCp7/(avgCp7+pow25to7))

	l50 := (avgLp - 50) * (avgLp - 50)
	sl := 1 + (0.015*l50)/math.Sqrt(20+l50)
	sc := 1 + 0.045*avgCp
	sh := 1 + 0.015*avgCp*t
	rt := -math.Sin(deg2rad(2*dRo)) * rc

	lTerm := dLp / sl
	cTerm := dCp / sc
	hTerm := dHp / sh
	return DeltaE(math.Sqrt(lTerm*lTerm + cTerm*cTerm + hTerm*hTerm + rt*cTerm*hTerm))
}
