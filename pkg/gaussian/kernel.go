// Package gaussian provides error-bounded Gaussian smoothing for
// N-dimensional images. The kernel is a sampled Gaussian truncated at the
// smallest radius whose discarded tail mass stays below a caller-supplied
// maximum error, so a looser tolerance produces a narrower kernel.
package gaussian

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaxKernelWidth caps the truncation radius regardless of how tight the
// error tolerance is. Matches the cap used by the reference operator.
const MaxKernelWidth = 32

// clampError restricts the tolerance to a usable open interval. Values
// outside it are specification violations handled by clamping, not errors.
func clampError(maxError float64) float64 {
	if maxError <= 0 {
		return 1e-8
	}
	if maxError >= 1 {
		return 0.99
	}
	return maxError
}

// Radius returns the truncation radius for the given variance and error
// tolerance: the smallest r such that the coefficients within [-r, r]
// carry at least 1-maxError of the full kernel mass, capped at
// MaxKernelWidth. Variance zero or below yields radius 0.
func Radius(variance, maxError float64) int {
	r, _ := support(variance, maxError)
	return r
}

// Kernel returns the normalized 1-D smoothing kernel of length 2r+1 for
// the given variance and error tolerance, where r = Radius(variance,
// maxError). A non-positive variance degenerates to the identity kernel.
func Kernel(variance, maxError float64) []float64 {
	r, g := support(variance, maxError)
	if r == 0 {
		return []float64{1}
	}
	kernel := make([]float64, 2*r+1)
	for i := -r; i <= r; i++ {
		kernel[i+r] = g[abs(i)]
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// support computes the truncation radius and the one-sided unnormalized
// coefficients g[0..MaxKernelWidth]. Radius and Kernel share it so the
// padding used by region propagation always agrees with the kernel
// actually applied.
func support(variance, maxError float64) (int, []float64) {
	if variance <= 0 {
		return 0, nil
	}
	maxError = clampError(maxError)

	g := make([]float64, MaxKernelWidth+1)
	for i := 0; i <= MaxKernelWidth; i++ {
		g[i] = math.Exp(-float64(i*i) / (2 * variance))
	}
	total := g[0]
	for i := 1; i <= MaxKernelWidth; i++ {
		total += 2 * g[i]
	}

	retained := g[0]
	for r := 1; r <= MaxKernelWidth; r++ {
		if retained/total >= 1-maxError {
			return r - 1, g
		}
		retained += 2 * g[r]
	}
	return MaxKernelWidth, g
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
