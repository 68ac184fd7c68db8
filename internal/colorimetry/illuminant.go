package colorimetry

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Illuminant names a CIE standard or commercial light source.
type Illuminant string

// Supported illuminants.
const (
	D65  Illuminant = "D65"
	D50  Illuminant = "D50"
	A    Illuminant = "A"
	C    Illuminant = "C"
	F2   Illuminant = "F2"
	CWF  Illuminant = "CWF"
	TL84 Illuminant = "TL84"
)

// ErrUnknownIlluminant is returned by AdaptStrict and ParseIlluminant for names
// outside the supported set.
var ErrUnknownIlluminant = errors.New("unknown illuminant")

// whitePoints are 2 degree observer whites normalized to Y = 1.
// CWF is tabulated as F2.
var whitePoints = map[Illuminant][3]float64{
	D65:  {0.95047, 1.00000, 1.08883},
	D50:  {0.96422, 1.00000, 0.82521},
	A:    {1.09850, 1.00000, 0.35585},
	C:    {0.98074, 1.00000, 1.18232},
	F2:   {0.99187, 1.00000, 0.67395},
	CWF:  {0.99187, 1.00000, 0.67395},
	TL84: {1.0386, 1.0000, 0.6560},
}

var whiteD65 = XYZ{X: 95.047, Y: 100, Z: 108.883}

// Illuminants returns the supported illuminants in a stable order.
func Illuminants() []Illuminant {
	return []Illuminant{D65, D50, A, C, F2, CWF, TL84}
}

// ParseIlluminant normalizes a user-supplied illuminant name.
func ParseIlluminant(name string) (Illuminant, error) {
	ill := Illuminant(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := whitePoints[ill]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownIlluminant, name)
	}
	return ill, nil
}

// Known reports whether the illuminant has a tabulated white point.
func (ill Illuminant) Known() bool {
	_, ok := whitePoints[ill]
	return ok
}

// WhitePoint returns the white of ill on the Y=100 scale.
func WhitePoint(ill Illuminant) (XYZ, bool) {
	w, ok := whitePoints[ill]
	if !ok {
		return XYZ{}, false
	}
	return XYZ{X: w[0] * 100, Y: w[1] * 100, Z: w[2] * 100}, true
}

// bradford is the Bradford cone-response matrix M_A.
var bradford = mat.NewDense(3, 3, []float64{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
})

var bradfordInv = mustInverse(bradford)

func mustInverse(m *mat.Dense) *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		panic(fmt.Sprintf("colorimetry: bradford matrix is singular: %v", err))
	}
	return &inv
}

// adaptationMatrix builds M_A^-1 * diag(dst/src) * M_A for a D65 source.
func adaptationMatrix(dst [3]float64) *mat.Dense {
	src := whitePoints[D65]

	var coneSrc, coneDst mat.VecDense
	coneSrc.MulVec(bradford, mat.NewVecDense(3, src[:]))
	coneDst.MulVec(bradford, mat.NewVecDense(3, dst[:]))

	scale := mat.NewDiagDense(3, []float64{
		coneDst.AtVec(0) / coneSrc.AtVec(0),
		coneDst.AtVec(1) / coneSrc.AtVec(1),
		coneDst.AtVec(2) / coneSrc.AtVec(2),
	})

	var scaled, total mat.Dense
	scaled.Mul(scale, bradford)
	total.Mul(bradfordInv, &scaled)
	return &total
}

// Adapt maps D65-relative XYZ to the given illuminant using Bradford chromatic
// adaptation (von Kries scaling in Bradford cone space).
//
// Unknown illuminant names return the input unchanged. Use AdaptStrict when an
// unknown name must be reported instead.
func Adapt(xyz XYZ, target Illuminant) XYZ {
	dst, ok := whitePoints[target]
	if !ok || target == D65 {
		return xyz
	}

	var out mat.VecDense
	out.MulVec(adaptationMatrix(dst), mat.NewVecDense(3, []float64{xyz.X, xyz.Y, xyz.Z}))
	return XYZ{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// AdaptStrict is Adapt with ErrUnknownIlluminant for unsupported targets.
func AdaptStrict(xyz XYZ, target Illuminant) (XYZ, error) {
	if !target.Known() {
		return xyz, fmt.Errorf("%w: %q", ErrUnknownIlluminant, string(target))
	}
	return Adapt(xyz, target), nil
}

// LabUnder converts D65 XYZ to Lab as seen under the target illuminant: the
// tristimulus values are adapted first and then referenced to the target white.
func LabUnder(xyz XYZ, target Illuminant) Lab {
	white, ok := WhitePoint(target)
	if !ok {
		return XYZToLab(xyz, whiteD65)
	}
	return XYZToLab(Adapt(xyz, target), white)
}
