package gaussian

import (
	"errors"
	"runtime"
	"sync"

	"imgpyramid/internal/models"
)

// ErrDimensionMismatch is returned when the variance vector length does
// not equal the image dimensionality.
var ErrDimensionMismatch = errors.New("gaussian: variance count does not match image dimensions")

// Smoother applies separable Gaussian smoothing to N-dimensional images.
// It is stateless apart from its worker count and safe for concurrent use.
type Smoother struct {
	// Workers is the number of goroutines used per convolution axis.
	// Zero or below means runtime.NumCPU().
	Workers int
}

// Smooth convolves the image with an error-bounded Gaussian kernel along
// each axis in turn, using variances[d] for axis d. Image boundaries are
// handled by clamping to the edge pixel, so the output has the same extent
// as the input. The input image is not modified.
func (s *Smoother) Smooth(img *models.Image, variances []float64, maxError float64) (*models.Image, error) {
	if len(variances) != img.Dims() {
		return nil, ErrDimensionMismatch
	}

	src := img.Data
	dst := make([]float64, len(src))
	copy(dst, src)

	for d := 0; d < img.Dims(); d++ {
		kernel := Kernel(variances[d], maxError)
		if len(kernel) == 1 {
			continue
		}
		next := make([]float64, len(dst))
		s.convolveAxis(dst, next, img.Meta.Extent, d, kernel)
		dst = next
	}

	out := models.NewImage(img.Meta)
	copy(out.Data, dst)
	return out, nil
}

// convolveAxis runs a 1-D convolution along axis d for every line of the
// buffer, partitioning lines across workers. Each worker writes a disjoint
// set of output lines, so no locking is needed.
func (s *Smoother) convolveAxis(src, dst []float64, extent []int, d int, kernel []float64) {
	lines := lineOffsets(extent, d)
	stride := strideOf(extent, d)
	length := extent[d]

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(lines) {
		workers = len(lines)
	}
	if workers < 1 {
		workers = 1
	}

	linesPerWorker := (len(lines) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * linesPerWorker
		end := start + linesPerWorker
		if end > len(lines) {
			end = len(lines)
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(lineOffs []int) {
			defer wg.Done()
			for _, base := range lineOffs {
				convolveLine(src, dst, base, stride, length, kernel)
			}
		}(lines[start:end])
	}
	wg.Wait()
}

// convolveLine convolves one line of the buffer with the kernel, clamping
// reads at the line ends.
func convolveLine(src, dst []float64, base, stride, length int, kernel []float64) {
	radius := len(kernel) / 2
	for i := 0; i < length; i++ {
		var acc float64
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 {
				j = 0
			} else if j >= length {
				j = length - 1
			}
			acc += kernel[k+radius] * src[base+j*stride]
		}
		dst[base+i*stride] = acc
	}
}

// lineOffsets enumerates the buffer offset of the first pixel of every
// line running along axis d, in row-major order of the remaining axes.
func lineOffsets(extent []int, d int) []int {
	dims := len(extent)
	strides := make([]int, dims)
	stride := 1
	for i := dims - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= extent[i]
	}

	count := 1
	for i, e := range extent {
		if i != d {
			count *= e
		}
	}

	offsets := make([]int, 0, count)
	idx := make([]int, dims)
	for {
		off := 0
		for i := 0; i < dims; i++ {
			off += idx[i] * strides[i]
		}
		offsets = append(offsets, off)

		// Odometer increment over every axis except d.
		i := dims - 1
		for i >= 0 {
			if i == d {
				i--
				continue
			}
			idx[i]++
			if idx[i] < extent[i] {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			return offsets
		}
	}
}

// strideOf returns the row-major stride along axis d.
func strideOf(extent []int, d int) int {
	stride := 1
	for i := len(extent) - 1; i > d; i-- {
		stride *= extent[i]
	}
	return stride
}
