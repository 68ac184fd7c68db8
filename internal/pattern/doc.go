// Package pattern compares the structure of a sample against a reference.
//
// Four similarity methods each yield a 0-100 score: windowed SSIM, SSIM over
// Sobel gradient magnitudes, phase correlation, and a fused five-signal
// structural match. Their equal-weighted sum is the composite score. Fourier
// periodicity and GLCM texture analyses run alongside as auxiliary outputs.
//
// The gradient and phase difference maps also drive the boundary coefficients
// and the red contour overlays.
package pattern
