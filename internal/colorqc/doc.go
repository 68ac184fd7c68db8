// Package colorqc compares the color of a sample against a reference.
//
// Sampling points are resolved by the sampling package, averaged over small
// discs on both images and compared with ΔE76, ΔE94 and ΔE2000. A whole-image
// color similarity index (CSI) complements the point-wise verdict, and the
// illuminant analysis repeats the comparison under other light sources via
// Bradford chromatic adaptation.
//
// AnalyzeSingle measures one image without a reference.
package colorqc
