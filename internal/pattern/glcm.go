package pattern

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// glcmLevels is the number of gray levels after quantization (gray / 4).
const glcmLevels = 64

// glcmOffsets are the (row, column) steps for 0°, 45°, 90° and 135° at
// distance 1.
var glcmOffsets = [4][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}}

// GLCMProperties are Haralick-style texture statistics averaged over the four
// angles.
type GLCMProperties struct {
	Contrast      float64 `json:"contrast"`
	Dissimilarity float64 `json:"dissimilarity"`
	Homogeneity   float64 `json:"homogeneity"`
	Energy        float64 `json:"energy"`
	Correlation   float64 `json:"correlation"`
	ASM           float64 `json:"asm"`
}

// GLCMResult is the texture analysis of one image.
type GLCMResult struct {
	Properties GLCMProperties `json:"properties"`

	// Matrix is the normalized 0° co-occurrence matrix.
	Matrix *mat.Dense `json:"-"`
}

// GLCMComparison holds the analyses of both images.
type GLCMComparison struct {
	Reference *GLCMResult `json:"reference"`
	Sample    *GLCMResult `json:"sample"`
}

// GLCMAnalysis computes symmetric, normalized gray-level co-occurrence
// matrices of img at distance 1 over four angles and averages their
// properties. A matrix with no pairs stays all zero.
func GLCMAnalysis(img image.Image) (*GLCMResult, error) {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil, fmt.Errorf("glcm analysis: %dx%d image too small", b.Dx(), b.Dy())
	}
	gray := imaging.GrayOverBlack(img)
	levels := make([]int, len(gray.Pix))
	for i, v := range gray.Pix {
		levels[i] = int(v) / 4
	}

	res := &GLCMResult{}
	var sum GLCMProperties
	for k, off := range glcmOffsets {
		m := cooccurrence(levels, gray.W, gray.H, off[0], off[1])
		p := glcmProps(m)
		if k == 0 {
			res.Matrix = m
		}
		sum.Contrast += p.Contrast
		sum.Dissimilarity += p.Dissimilarity
		sum.Homogeneity += p.Homogeneity
		sum.Energy += p.Energy
		sum.Correlation += p.Correlation
		sum.ASM += p.ASM
	}
	n := float64(len(glcmOffsets))
	res.Properties = GLCMProperties{
		Contrast:      sum.Contrast / n,
		Dissimilarity: sum.Dissimilarity / n,
		Homogeneity:   sum.Homogeneity / n,
		Energy:        sum.Energy / n,
		Correlation:   sum.Correlation / n,
		ASM:           sum.ASM / n,
	}
	return res, nil
}

// Heatmap renders the 0° matrix with the HOT colormap, one pixel per cell.
func (r *GLCMResult) Heatmap() image.Image {
	p := imaging.NewPlane(glcmLevels, glcmLevels)
	for i := 0; i < glcmLevels; i++ {
		for j := 0; j < glcmLevels; j++ {
			p.Set(j, i, r.Matrix.At(i, j))
		}
	}
	return imaging.Hot.Apply(p)
}

// cooccurrence counts level pairs (v[y][x], v[y+dr][x+dc]) in both
// directions and normalizes the counts to sum to 1.
func cooccurrence(levels []int, w, h, dr, dc int) *mat.Dense {
	m := mat.NewDense(glcmLevels, glcmLevels, nil)
	for y := 0; y < h; y++ {
		ny := y + dr
		if ny < 0 || ny >= h {
			continue
		}
		for x := 0; x < w; x++ {
			nx := x + dc
			if nx < 0 || nx >= w {
				continue
			}
			i, j := levels[y*w+x], levels[ny*w+nx]
			m.Set(i, j, m.At(i, j)+1)
			m.Set(j, i, m.At(j, i)+1)
		}
	}
	if total := mat.Sum(m); total > 0 {
		m.Scale(1/total, m)
	}
	return m
}

// glcmProps computes the properties of one normalized matrix.
func glcmProps(m *mat.Dense) GLCMProperties {
	var p GLCMProperties
	var meanI, meanJ float64
	for i := 0; i < glcmLevels; i++ {
		for j := 0; j < glcmLevels; j++ {
			v := m.At(i, j)
			d := float64(i - j)
			p.Contrast += v * d * d
			p.Dissimilarity += v * math.Abs(d)
			p.Homogeneity += v / (1 + d*d)
			p.ASM += v * v
			meanI += v * float64(i)
			meanJ += v * float64(j)
		}
	}
	p.Energy = math.Sqrt(p.ASM)

	var varI, varJ, cov float64
	for i := 0; i < glcmLevels; i++ {
		for j := 0; j < glcmLevels; j++ {
			v := m.At(i, j)
			di, dj := float64(i)-meanI, float64(j)-meanJ
			varI += v * di * di
			varJ += v * dj * dj
			cov += v * di * dj
		}
	}
	si, sj := math.Sqrt(varI), math.Sqrt(varJ)
	if si < 1e-15 || sj < 1e-15 {
		p.Correlation = 1
	} else {
		p.Correlation = cov / (si * sj)
	}
	return p
}
