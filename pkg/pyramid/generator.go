// Package pyramid generates a multi-resolution image pyramid: a
// user-configurable number of progressively coarser versions of one input
// image, each produced by Gaussian smoothing followed by integer-factor
// decimation according to a per-level, per-dimension shrink schedule.
//
// The Generator exposes the four pipeline hooks of a demand-driven
// multi-output node in their fixed calling order: output metadata for all
// levels, requested-region propagation from one driving level, input
// region computation, and per-level data computation. Update runs the
// whole sequence for a full-pyramid pull.
package pyramid

import (
	"fmt"
	"sync"

	"imgpyramid/internal/models"
	"imgpyramid/pkg/gaussian"
	"imgpyramid/pkg/schedule"
	"imgpyramid/pkg/shrink"
)

// DefaultNumberOfLevels is the level count of a freshly constructed
// generator.
const DefaultNumberOfLevels = 2

// DefaultMaximumError bounds the smoothing kernel truncation error unless
// the caller overrides it.
const DefaultMaximumError = 0.01

// LevelState tracks how far a single level has progressed through the
// demand-driven pipeline.
type LevelState int

const (
	// NotRequested means no pass has touched the level yet.
	NotRequested LevelState = iota
	// MetadataReady means the level's output geometry is known.
	MetadataReady
	// RegionComputed means the level's requested region has been
	// propagated.
	RegionComputed
	// DataComputed means the level's output buffer holds valid data.
	DataComputed
)

func (s LevelState) String() string {
	switch s {
	case NotRequested:
		return "NotRequested"
	case MetadataReady:
		return "MetadataReady"
	case RegionComputed:
		return "RegionComputed"
	case DataComputed:
		return "DataComputed"
	default:
		return fmt.Sprintf("LevelState(%d)", int(s))
	}
}

// Generator owns the shrink schedule and drives per-level smoothing and
// decimation. Configuration setters must not race with a compute pass;
// the generator assumes a single configuring writer, while the compute
// hooks themselves only read shared state and may run concurrently.
type Generator struct {
	dims     int
	sched    *schedule.Schedule
	maxError float64
	workers  int

	input *models.Image

	states  []LevelState
	metas   []models.Metadata
	regions []models.Region
	outputs []*models.Image
}

// NewGenerator creates a generator for images of the given spatial
// dimensionality with the default level count and error tolerance.
func NewGenerator(dims int) *Generator {
	if dims < 1 {
		dims = 1
	}
	g := &Generator{
		dims:     dims,
		sched:    schedule.New(DefaultNumberOfLevels, dims),
		maxError: DefaultMaximumError,
	}
	g.reset()
	return g
}

// reset discards all per-level pipeline state. Every configuration change
// lands here so stale metadata or data can never be observed.
func (g *Generator) reset() {
	n := g.sched.NumberOfLevels()
	g.states = make([]LevelState, n)
	g.metas = nil
	g.regions = nil
	g.outputs = make([]*models.Image, n)
}

// SetInput installs the input image. Its dimensionality must match the
// generator's.
func (g *Generator) SetInput(img *models.Image) error {
	if img.Dims() != g.dims {
		return ErrDimensionMismatch
	}
	g.input = img
	g.reset()
	return nil
}

// SetNumberOfLevels regenerates the schedule with default factors for n
// levels (clamped to a minimum of 1), discarding any installed table.
func (g *Generator) SetNumberOfLevels(n int) {
	g.sched.SetNumberOfLevels(n)
	g.reset()
}

// GetNumberOfLevels returns the current level count.
func (g *Generator) GetNumberOfLevels() int {
	return g.sched.NumberOfLevels()
}

// SetSchedule installs an explicit shrink factor table. Shape mismatches
// are reported; out-of-range and non-monotonic entries are silently
// clamped by the schedule itself.
func (g *Generator) SetSchedule(table [][]int) error {
	if err := g.sched.Set(table); err != nil {
		return err
	}
	g.reset()
	return nil
}

// GetSchedule returns a read-only copy of the shrink factor table.
func (g *Generator) GetSchedule() [][]int {
	return g.sched.Factors()
}

// SetStartingShrinkFactor sets every dimension of the coarsest level to
// the given factor and regenerates finer levels by halving.
func (g *Generator) SetStartingShrinkFactor(factor int) {
	g.sched.SetStartingShrinkFactor(factor)
	g.reset()
}

// SetStartingShrinkFactors sets the coarsest level's per-dimension factors
// and regenerates finer levels by halving.
func (g *Generator) SetStartingShrinkFactors(factors []int) error {
	if err := g.sched.SetStartingShrinkFactors(factors); err != nil {
		return err
	}
	g.reset()
	return nil
}

// GetStartingShrinkFactors returns the coarsest level's factors.
func (g *Generator) GetStartingShrinkFactors() []int {
	return g.sched.StartingShrinkFactors()
}

// SetMaximumError sets the smoothing kernel truncation tolerance. Values
// outside (0, 1) are ignored and the prior value kept.
func (g *Generator) SetMaximumError(maxError float64) {
	if maxError <= 0 || maxError >= 1 {
		return
	}
	g.maxError = maxError
	g.reset()
}

// GetMaximumError returns the current truncation tolerance.
func (g *Generator) GetMaximumError() float64 {
	return g.maxError
}

// SetNumWorkers sets the goroutine count used inside the smoothing pass.
// Zero or below means one worker per CPU.
func (g *Generator) SetNumWorkers(n int) {
	g.workers = n
}

// LevelState returns the pipeline state of the given level, NotRequested
// for out-of-range indices.
func (g *Generator) LevelState(level int) LevelState {
	if level < 0 || level >= len(g.states) {
		return NotRequested
	}
	return g.states[level]
}

// GenerateOutputMetadata computes the geometry of every output level.
// The pipeline contract requires all levels' metadata before any data
// pass, so this never computes a subset.
func (g *Generator) GenerateOutputMetadata() ([]models.Metadata, error) {
	if g.input == nil {
		return nil, ErrNoInput
	}
	metas, err := AllLevelMetadata(g.sched, g.input.Meta)
	if err != nil {
		return nil, err
	}
	g.metas = metas
	for l := range g.states {
		if g.states[l] < MetadataReady {
			g.states[l] = MetadataReady
		}
	}
	out := make([]models.Metadata, len(metas))
	for i, m := range metas {
		out[i] = m.Clone()
	}
	return out, nil
}

// GenerateRequestedRegions propagates one driving level's requested
// region to every level, keeping all levels aligned to the same physical
// region. Must run after GenerateOutputMetadata.
func (g *Generator) GenerateRequestedRegions(level int, region models.Region) ([]models.Region, error) {
	if g.input == nil {
		return nil, ErrNoInput
	}
	if g.metas == nil {
		return nil, ErrMetadataNotReady
	}
	regions, err := PropagateRequestedRegions(g.sched, g.input.Meta, level, region)
	if err != nil {
		return nil, err
	}
	g.regions = regions
	for l := range g.states {
		if g.states[l] < RegionComputed {
			g.states[l] = RegionComputed
		}
	}
	out := make([]models.Region, len(regions))
	for i, r := range regions {
		out[i] = r.Clone()
	}
	return out, nil
}

// GenerateInputRegion computes the input region needed to produce the
// given output region of one level: scaled by the shrink factors, padded
// by the smoothing support radius and clipped to the input extent. The
// bool reports whether clipping occurred; a clipped region means reduced
// accuracy at the boundary, not a failure.
func (g *Generator) GenerateInputRegion(level int, region models.Region) (models.Region, bool, error) {
	if g.input == nil {
		return models.Region{}, false, ErrNoInput
	}
	return InputRegionForLevel(g.sched, g.input.Meta, level, region, g.maxError)
}

// ComputeLevel produces the data of one level for the given output
// region: it acquires the cropped input region, smooths it with variance
// (factor/2)^2 per dimension, and decimates by the level's factors into a
// buffer with that level's full geometry. Pixels outside the region stay
// zero. The level must have passed the region-propagation pass first; on
// any failure the level is left not DataComputed.
func (g *Generator) ComputeLevel(level int, region models.Region) (*models.Image, error) {
	if g.input == nil {
		return nil, ErrNoInput
	}
	if level < 0 || level >= g.sched.NumberOfLevels() {
		return nil, ErrBadLevel
	}
	if g.states[level] < RegionComputed {
		return nil, ErrRegionNotComputed
	}

	out, err := g.computeLevelData(level, region)
	if err != nil {
		return nil, fmt.Errorf("pyramid: level %d: %w", level, err)
	}
	g.outputs[level] = out
	g.states[level] = DataComputed
	return out, nil
}

// Update runs a full-pyramid pull: metadata for every level, requested
// regions propagated from the finest level's full extent, then data for
// every level. Driving from the finest level matters: coarser extents are
// floor-truncated, so expanding a coarse full region back out can fall
// short of a finer level's last pixels when the input extent is not
// divisible by the factors. The finest full region rounded outward and
// cropped covers every level's full extent exactly. Independent levels
// are computed concurrently; each level's output buffer is disjoint and
// the input is read-only, so the workers share no mutable state.
func (g *Generator) Update() ([]*models.Image, error) {
	if _, err := g.GenerateOutputMetadata(); err != nil {
		return nil, err
	}
	finest := g.sched.NumberOfLevels() - 1
	regions, err := g.GenerateRequestedRegions(finest, g.metas[finest].FullRegion())
	if err != nil {
		return nil, err
	}

	type levelResult struct {
		level int
		img   *models.Image
		err   error
	}
	results := make(chan levelResult, len(regions))

	var wg sync.WaitGroup
	for l := range regions {
		wg.Add(1)
		go func(level int, region models.Region) {
			defer wg.Done()
			img, err := g.computeLevelData(level, region)
			results <- levelResult{level: level, img: img, err: err}
		}(l, regions[l])
	}
	wg.Wait()
	close(results)

	outputs := make([]*models.Image, len(regions))
	for res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("pyramid: level %d failed: %w", res.level, res.err)
		}
		outputs[res.level] = res.img
	}

	// Publish states and buffers only after every level succeeded, so a
	// failed pass can never leave a level falsely marked DataComputed.
	for l := range outputs {
		g.outputs[l] = outputs[l]
		g.states[l] = DataComputed
	}
	return outputs, nil
}

// computeLevelData is the reentrant core of a level pass: it reads shared
// state but publishes nothing, so the concurrent Update fan-out can call
// it for independent levels without locking.
func (g *Generator) computeLevelData(level int, region models.Region) (*models.Image, error) {
	factors := g.sched.Factors()[level]
	levelMeta := g.metas[level]
	region, _ = region.Crop(levelMeta.FullRegion())

	out := models.NewImage(levelMeta)
	if region.Empty() {
		return out, nil
	}

	// Step 1: acquire the (possibly clipped) input region.
	inRegion, _, err := InputRegionForLevel(g.sched, g.input.Meta, level, region, g.maxError)
	if err != nil {
		return nil, err
	}
	cropped := extractRegion(g.input, inRegion)

	// Step 2: smooth with the factor-derived variances.
	smoother := &gaussian.Smoother{Workers: g.workers}
	smoothed, err := smoother.Smooth(cropped, levelVariances(g.sched, level), g.maxError)
	if err != nil {
		return nil, err
	}

	// Step 3: decimate into the level's output geometry.
	shrink.Sample(smoothed, out, region, factors, inRegion.Index)
	return out, nil
}

// Output returns the buffer of a level computed by a previous pass, nil
// if the level is not DataComputed.
func (g *Generator) Output(level int) *models.Image {
	if level < 0 || level >= len(g.outputs) {
		return nil
	}
	if g.states[level] != DataComputed {
		return nil
	}
	return g.outputs[level]
}

// extractRegion copies a sub-region of the image into a fresh image whose
// origin is shifted to the region's first pixel.
func extractRegion(img *models.Image, region models.Region) *models.Image {
	meta := img.Meta.Clone()
	copy(meta.Extent, region.Size)
	for d := range meta.Origin {
		for e := range region.Index {
			meta.Origin[d] += meta.Direction[d][e] * float64(region.Index[e]) * meta.Spacing[e]
		}
	}

	out := models.NewImage(meta)
	dims := region.Dims()
	idx := make([]int, dims)
	srcIdx := make([]int, dims)
	for {
		for d := 0; d < dims; d++ {
			srcIdx[d] = region.Index[d] + idx[d]
		}
		out.Set(idx, img.At(srcIdx))

		d := dims - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < region.Size[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			return out
		}
	}
}
