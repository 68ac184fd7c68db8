package colorimetry

import "math"

// RGB holds non-linear sRGB components in the range [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// XYZ holds CIE tristimulus values on the Y=100 scale.
type XYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Lab holds CIE L*a*b* coordinates.
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CMYK holds naive device-independent ink fractions in [0, 1].
type CMYK struct {
	C float64 `json:"c"`
	M float64 `json:"m"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Chroma returns the C*ab chroma of the color.
func (l Lab) Chroma() float64 {
	return math.Hypot(l.A, l.B)
}

// srgbToXYZ is the IEC 61966-2-1 matrix for linear sRGB to D65 XYZ.
var srgbToXYZ = [3][3]float64{
	{0.4124564, 0.3575761, 0.1804375},
	{0.2126729, 0.7151522, 0.0721750},
	{0.0193339, 0.1191920, 0.9503041},
}

// decodeGamma removes the sRGB transfer curve from a single component.
// Negative components are treated as 0 so the power law never produces NaN.
func decodeGamma(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// SRGBToXYZ converts non-linear sRGB in [0,1] to D65 XYZ on the Y=100 scale.
//
// The transfer curve is linear at or below 0.04045 and a 2.4 power law above.
// Out-of-range inputs are not clamped at the top end; negative values are
// treated as zero.
func SRGBToXYZ(c RGB) XYZ {
	lin := [3]float64{decodeGamma(c.R), decodeGamma(c.G), decodeGamma(c.B)}
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = (srgbToXYZ[i][0]*lin[0] + srgbToXYZ[i][1]*lin[1] + srgbToXYZ[i][2]*lin[2]) * 100
	}
	return XYZ{X: out[0], Y: out[1], Z: out[2]}
}

// labF is the CIE Lab companding function.
func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

// XYZToLab converts XYZ to CIE Lab relative to the given white point.
//
// The white point must be on the same scale as xyz (Y=100). Passing the white of a
// different illuminant is what makes the rest of the pipeline illuminant aware.
func XYZToLab(xyz, white XYZ) Lab {
	fx := labF(xyz.X / white.X)
	fy := labF(xyz.Y / white.Y)
	fz := labF(xyz.Z / white.Z)
	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// SRGBToLab is shorthand for D65 Lab of an sRGB color.
func SRGBToLab(c RGB) Lab {
	return XYZToLab(SRGBToXYZ(c), whiteD65)
}

// RGBToCMYK converts sRGB to a naive CMYK decomposition.
// Near-black colors (K >= 0.999) map to pure key.
func RGBToCMYK(c RGB) CMYK {
	k := 1 - math.Max(c.R, math.Max(c.G, c.B))
	if k >= 0.999 {
		return CMYK{K: 1}
	}
	return CMYK{
		C: (1 - c.R - k) / (1 - k),
		M: (1 - c.G - k) / (1 - k),
		Y: (1 - c.B - k) / (1 - k),
		K: k,
	}
}
