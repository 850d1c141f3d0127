package pyramid

import (
	"imgpyramid/internal/models"
	"imgpyramid/pkg/gaussian"
	"imgpyramid/pkg/schedule"
	"imgpyramid/pkg/shrink"
)

// The propagation functions in this file are pure: they depend only on the
// schedule, the input metadata and the region values passed in, so an
// external work partitioner can call them from any goroutine.

// LevelMetadata derives the output geometry for one pyramid level:
// spacing multiplied and extent floor-divided by that level's shrink
// factors, origin and direction copied from the input.
func LevelMetadata(s *schedule.Schedule, in models.Metadata, level int) (models.Metadata, error) {
	if level < 0 || level >= s.NumberOfLevels() {
		return models.Metadata{}, ErrBadLevel
	}
	return shrink.OutputMetadata(in, s.Factors()[level])
}

// AllLevelMetadata derives the geometry of every level. The pipeline
// contract requires all output metadata to exist before any data pass, so
// this always computes the full set.
func AllLevelMetadata(s *schedule.Schedule, in models.Metadata) ([]models.Metadata, error) {
	metas := make([]models.Metadata, s.NumberOfLevels())
	for l := range metas {
		m, err := LevelMetadata(s, in, l)
		if err != nil {
			return nil, err
		}
		metas[l] = m
	}
	return metas, nil
}

// PropagateRequestedRegions takes the requested region of one driving
// level and re-expresses it at every level's resolution, so all levels
// stay aligned to the same physical region regardless of which level the
// request originated at. For level M the driving region is scaled by the
// factor ratio f_driving/f_M per dimension, with the start floored and the
// end ceiled, then cropped to that level's extent.
func PropagateRequestedRegions(s *schedule.Schedule, in models.Metadata, drivingLevel int, region models.Region) ([]models.Region, error) {
	if drivingLevel < 0 || drivingLevel >= s.NumberOfLevels() {
		return nil, ErrBadLevel
	}

	metas, err := AllLevelMetadata(s, in)
	if err != nil {
		return nil, err
	}

	dims := in.Dims()
	regions := make([]models.Region, s.NumberOfLevels())
	for m := range regions {
		r := models.Region{
			Index: make([]int, dims),
			Size:  make([]int, dims),
		}
		for d := 0; d < dims; d++ {
			fDrive := s.At(drivingLevel, d)
			fM := s.At(m, d)
			start := region.Index[d] * fDrive / fM
			end := ((region.Index[d]+region.Size[d])*fDrive + fM - 1) / fM
			r.Index[d] = start
			r.Size[d] = end - start
		}
		regions[m], _ = r.Crop(metas[m].FullRegion())
	}
	return regions, nil
}

// levelVariances returns the smoothing variance (factor/2)^2 for each
// dimension of the given level. The formula is applied unconditionally,
// factor 1 included, matching the published behavior.
func levelVariances(s *schedule.Schedule, level int) []float64 {
	variances := make([]float64, s.Dimensions())
	for d := range variances {
		f := float64(s.At(level, d))
		variances[d] = (f / 2) * (f / 2)
	}
	return variances
}

// InputRegionForLevel computes the input region needed to produce the
// given output region of one level: the region scaled up by the level's
// shrink factors, padded by the smoothing kernel's support radius for the
// variance (factor/2)^2 at the given error tolerance, then clipped to the
// input extent. The returned bool reports whether clipping shrank the
// padded region; downstream consumers accept reduced accuracy at such
// boundaries rather than failing, which is what makes streamed sub-region
// computation possible.
func InputRegionForLevel(s *schedule.Schedule, in models.Metadata, level int, region models.Region, maxError float64) (models.Region, bool, error) {
	if level < 0 || level >= s.NumberOfLevels() {
		return models.Region{}, false, ErrBadLevel
	}

	dims := in.Dims()
	variances := levelVariances(s, level)

	scaled := models.Region{
		Index: make([]int, dims),
		Size:  make([]int, dims),
	}
	radius := make([]int, dims)
	for d := 0; d < dims; d++ {
		f := s.At(level, d)
		scaled.Index[d] = region.Index[d] * f
		scaled.Size[d] = region.Size[d] * f
		radius[d] = gaussian.Radius(variances[d], maxError)
	}

	padded := scaled.Pad(radius)
	cropped, clipped := padded.Crop(in.FullRegion())
	return cropped, clipped, nil
}
