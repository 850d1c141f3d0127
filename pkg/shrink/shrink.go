// Package shrink implements integer-factor image decimation. The output
// keeps one pixel per factor-sized block, its extent is the floor of the
// input extent divided by the factor, and its spacing grows by the same
// factor so the image covers the same physical space.
package shrink

import (
	"errors"

	"imgpyramid/internal/models"
)

var (
	// ErrBadFactor is returned for factors below 1.
	ErrBadFactor = errors.New("shrink: factor must be at least 1")

	// ErrDimensionMismatch is returned when the factor count does not
	// equal the image dimensionality.
	ErrDimensionMismatch = errors.New("shrink: factor count does not match image dimensions")
)

// OutputMetadata derives the decimated geometry for the given input
// metadata and per-dimension factors: extent is floor-divided, spacing is
// multiplied, origin and direction are carried through unchanged.
func OutputMetadata(in models.Metadata, factors []int) (models.Metadata, error) {
	if err := checkFactors(in.Dims(), factors); err != nil {
		return models.Metadata{}, err
	}
	out := in.Clone()
	for d := range factors {
		out.Extent[d] = in.Extent[d] / factors[d]
		if out.Extent[d] < 1 {
			out.Extent[d] = 1
		}
		out.Spacing[d] = in.Spacing[d] * float64(factors[d])
	}
	return out, nil
}

// Apply decimates the full input image, sampling the input at
// outputIndex*factor along each dimension.
func Apply(img *models.Image, factors []int) (*models.Image, error) {
	meta, err := OutputMetadata(img.Meta, factors)
	if err != nil {
		return nil, err
	}
	out := models.NewImage(meta)
	region := meta.FullRegion()
	Sample(img, out, region, factors, nil)
	return out, nil
}

// ApplyRegion decimates only the given output region, writing into a
// fresh image of the full output geometry. Pixels outside the region stay
// zero. The region is expressed in the output index space and must lie
// within the output extent.
func ApplyRegion(img *models.Image, outRegion models.Region, factors []int) (*models.Image, error) {
	meta, err := OutputMetadata(img.Meta, factors)
	if err != nil {
		return nil, err
	}
	if !meta.FullRegion().Contains(outRegion) {
		return nil, errors.New("shrink: region outside output extent")
	}
	out := models.NewImage(meta)
	Sample(img, out, outRegion, factors, nil)
	return out, nil
}

// Sample writes the decimated pixels of the given output region into out,
// reading the input at outputIndex*factor - inOrigin along each dimension.
// A nil inOrigin means the input starts at index zero. The caller
// guarantees the sampled indices lie inside the input buffer; the level
// processor uses inOrigin to decimate directly out of a cropped input
// sub-image. Iteration is an odometer over the region's indices.
func Sample(in, out *models.Image, region models.Region, factors, inOrigin []int) {
	if region.Empty() {
		return
	}
	dims := region.Dims()
	idx := make([]int, dims)
	copy(idx, region.Index)
	inIdx := make([]int, dims)

	for {
		for d := 0; d < dims; d++ {
			inIdx[d] = idx[d] * factors[d]
			if inOrigin != nil {
				inIdx[d] -= inOrigin[d]
			}
		}
		out.Set(idx, in.At(inIdx))

		d := dims - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < region.Index[d]+region.Size[d] {
				break
			}
			idx[d] = region.Index[d]
			d--
		}
		if d < 0 {
			return
		}
	}
}

func checkFactors(dims int, factors []int) error {
	if len(factors) != dims {
		return ErrDimensionMismatch
	}
	for _, f := range factors {
		if f < 1 {
			return ErrBadFactor
		}
	}
	return nil
}
