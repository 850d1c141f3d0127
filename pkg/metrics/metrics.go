// Package metrics computes summary statistics for pyramid levels, used by
// the CLI stats table and by end-to-end tests to compare a produced level
// against a reference.
package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"imgpyramid/internal/models"
)

// ErrLengthMismatch is returned when two buffers being compared have
// different pixel counts.
var ErrLengthMismatch = errors.New("metrics: buffer lengths differ")

// LevelStats summarizes the intensity distribution of one level.
type LevelStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Stats computes the intensity statistics of an image.
func Stats(img *models.Image) LevelStats {
	if len(img.Data) == 0 {
		return LevelStats{}
	}

	mean, std := stat.MeanStdDev(img.Data, nil)
	s := LevelStats{
		Mean:   mean,
		StdDev: std,
		Min:    img.Data[0],
		Max:    img.Data[0],
	}
	for _, v := range img.Data {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// RMSE computes the root mean square error between two buffers of equal
// length.
func RMSE(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	if len(a) == 0 {
		return 0, nil
	}

	mse := 0.0
	for i := range a {
		d := a[i] - b[i]
		mse += d * d
	}
	return math.Sqrt(mse / float64(len(a))), nil
}

// Correlation computes the Pearson correlation between two buffers of
// equal length.
func Correlation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	if len(a) == 0 {
		return 0, nil
	}
	return stat.Correlation(a, b, nil), nil
}
