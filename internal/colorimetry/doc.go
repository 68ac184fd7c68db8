// Package colorimetry implements the color science used by the textile QC pipelines.
//
// All functions are pure and stateless. Values use the following scales:
//   - RGB: non-linear sRGB components in [0, 1]
//   - XYZ: CIE 1931 tristimulus values scaled so that the white point has Y = 100
//   - Lab: CIE L*a*b* with L* in [0, 100]
//
// # Illuminants
//
// White points are tabulated for D65, D50, A, C, F2, CWF and TL84 (2 degree
// observer). Conversions from sRGB always produce D65-relative XYZ; Adapt moves
// those values to another illuminant using the Bradford cone-response transform.
//
// # Color Difference
//
// Three formulas are provided with increasing perceptual accuracy:
//   - DeltaE76: Euclidean distance in Lab
//   - DeltaE94: CIE94 with the graphic-arts constants K1=0.045, K2=0.015
//   - DeltaE2000: CIEDE2000, verified against the Sharma (2005) reference data
//
// # Scales
//
// DeltaE (lower is better, unbounded) and Score (higher is better, 0-100) are
// distinct types. DeltaEToScore is the only sanctioned conversion between them.
package colorimetry
