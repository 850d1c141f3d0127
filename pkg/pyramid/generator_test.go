package pyramid

import (
	"errors"
	"math"
	"testing"

	"imgpyramid/internal/models"
)

func constantImage(extent []int, value float64) *models.Image {
	img := models.NewImage(models.NewMetadata(extent))
	for i := range img.Data {
		img.Data[i] = value
	}
	return img
}

func rampImage(extent []int) *models.Image {
	img := models.NewImage(models.NewMetadata(extent))
	for i := range img.Data {
		img.Data[i] = float64(i)
	}
	return img
}

// TestGeneratorDefaults verifies the construction defaults.
func TestGeneratorDefaults(t *testing.T) {
	g := NewGenerator(2)

	if g.GetNumberOfLevels() != DefaultNumberOfLevels {
		t.Errorf("expected %d levels, got %d", DefaultNumberOfLevels, g.GetNumberOfLevels())
	}
	if g.GetMaximumError() != DefaultMaximumError {
		t.Errorf("expected max error %v, got %v", DefaultMaximumError, g.GetMaximumError())
	}
	want := [][]int{{2, 2}, {1, 1}}
	got := g.GetSchedule()
	for l := range want {
		for d := range want[l] {
			if got[l][d] != want[l][d] {
				t.Errorf("schedule[%d][%d]: expected %d, got %d", l, d, want[l][d], got[l][d])
			}
		}
	}
}

// TestGeneratorConfigSurface exercises the setters and their validation.
func TestGeneratorConfigSurface(t *testing.T) {
	g := NewGenerator(3)

	g.SetNumberOfLevels(4)
	if g.GetNumberOfLevels() != 4 {
		t.Errorf("expected 4 levels, got %d", g.GetNumberOfLevels())
	}

	if err := g.SetStartingShrinkFactors([]int{8, 8, 4}); err != nil {
		t.Fatalf("SetStartingShrinkFactors failed: %v", err)
	}
	sf := g.GetStartingShrinkFactors()
	if sf[0] != 8 || sf[1] != 8 || sf[2] != 4 {
		t.Errorf("expected starting factors [8 8 4], got %v", sf)
	}

	if err := g.SetSchedule([][]int{{4, 4}}); err == nil {
		t.Errorf("expected shape mismatch for wrong table")
	}

	g.SetMaximumError(0.1)
	if g.GetMaximumError() != 0.1 {
		t.Errorf("expected max error 0.1, got %v", g.GetMaximumError())
	}
	g.SetMaximumError(-1)
	if g.GetMaximumError() != 0.1 {
		t.Errorf("out-of-range tolerance must keep prior value, got %v", g.GetMaximumError())
	}
	g.SetMaximumError(2)
	if g.GetMaximumError() != 0.1 {
		t.Errorf("out-of-range tolerance must keep prior value, got %v", g.GetMaximumError())
	}
}

// TestGeneratorInputValidation verifies the dimension check and the
// no-input error path.
func TestGeneratorInputValidation(t *testing.T) {
	g := NewGenerator(2)

	if err := g.SetInput(models.NewImage(models.NewMetadata([]int{4, 4, 4}))); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := g.GenerateOutputMetadata(); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
	if _, err := g.Update(); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

// TestStateMachineTransitions walks a level through the documented state
// sequence and checks that configuration changes reset it.
func TestStateMachineTransitions(t *testing.T) {
	g := NewGenerator(2)
	if err := g.SetInput(constantImage([]int{32, 32}, 1.0)); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}

	for l := 0; l < 2; l++ {
		if got := g.LevelState(l); got != NotRequested {
			t.Errorf("level %d: expected NotRequested, got %v", l, got)
		}
	}

	// Data pulled before region propagation is a contract violation.
	if _, err := g.ComputeLevel(0, models.NewRegion([]int{0, 0}, []int{4, 4})); !errors.Is(err, ErrRegionNotComputed) {
		t.Errorf("expected ErrRegionNotComputed, got %v", err)
	}

	// Region propagation before metadata is too.
	if _, err := g.GenerateRequestedRegions(0, models.NewRegion([]int{0, 0}, []int{4, 4})); !errors.Is(err, ErrMetadataNotReady) {
		t.Errorf("expected ErrMetadataNotReady, got %v", err)
	}

	metas, err := g.GenerateOutputMetadata()
	if err != nil {
		t.Fatalf("GenerateOutputMetadata failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected metadata for both levels, got %d", len(metas))
	}
	for l := 0; l < 2; l++ {
		if got := g.LevelState(l); got != MetadataReady {
			t.Errorf("level %d: expected MetadataReady, got %v", l, got)
		}
	}

	regions, err := g.GenerateRequestedRegions(1, metas[1].FullRegion())
	if err != nil {
		t.Fatalf("GenerateRequestedRegions failed: %v", err)
	}
	for l := 0; l < 2; l++ {
		if got := g.LevelState(l); got != RegionComputed {
			t.Errorf("level %d: expected RegionComputed, got %v", l, got)
		}
	}

	if _, err := g.ComputeLevel(0, regions[0]); err != nil {
		t.Fatalf("ComputeLevel failed: %v", err)
	}
	if got := g.LevelState(0); got != DataComputed {
		t.Errorf("expected DataComputed, got %v", got)
	}
	if got := g.LevelState(1); got != RegionComputed {
		t.Errorf("other level must be unaffected, got %v", got)
	}
	if g.Output(0) == nil {
		t.Errorf("computed level must expose its buffer")
	}
	if g.Output(1) != nil {
		t.Errorf("uncomputed level must not expose a buffer")
	}

	// Any schedule change resets every level.
	g.SetNumberOfLevels(3)
	for l := 0; l < 3; l++ {
		if got := g.LevelState(l); got != NotRequested {
			t.Errorf("level %d after reconfigure: expected NotRequested, got %v", l, got)
		}
	}
	if g.Output(0) != nil {
		t.Errorf("reset must drop computed buffers")
	}
}

// TestUpdateSingleLevelIdentitySchedule is the end-to-end degenerate case:
// one level with unit factors produces a same-extent, smoothing-only copy.
func TestUpdateSingleLevelIdentitySchedule(t *testing.T) {
	g := NewGenerator(2)
	g.SetNumberOfLevels(1)
	if err := g.SetSchedule([][]int{{1, 1}}); err != nil {
		t.Fatalf("SetSchedule failed: %v", err)
	}
	if err := g.SetInput(constantImage([]int{100, 100}, 2.0)); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}

	outputs, err := g.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs))
	}

	out := outputs[0]
	if out.Meta.Extent[0] != 100 || out.Meta.Extent[1] != 100 {
		t.Errorf("expected extent [100 100], got %v", out.Meta.Extent)
	}
	if out.Meta.Spacing[0] != 1.0 || out.Meta.Spacing[1] != 1.0 {
		t.Errorf("expected unchanged spacing, got %v", out.Meta.Spacing)
	}

	// Smoothing a constant image must reproduce it.
	for i, v := range out.Data {
		if math.Abs(v-2.0) > 1e-10 {
			t.Fatalf("pixel %d: expected 2.0, got %v", i, v)
		}
	}
}

// TestUpdateDefaultPyramid runs a 2-level default pyramid and checks the
// per-level geometry and state.
func TestUpdateDefaultPyramid(t *testing.T) {
	g := NewGenerator(2)
	g.SetNumWorkers(2)
	if err := g.SetInput(constantImage([]int{64, 48}, 1.5)); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}

	outputs, err := g.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Level 0 has factors {2,2}, level 1 {1,1}.
	if outputs[0].Meta.Extent[0] != 32 || outputs[0].Meta.Extent[1] != 24 {
		t.Errorf("level 0: expected extent [32 24], got %v", outputs[0].Meta.Extent)
	}
	if outputs[1].Meta.Extent[0] != 64 || outputs[1].Meta.Extent[1] != 48 {
		t.Errorf("level 1: expected extent [64 48], got %v", outputs[1].Meta.Extent)
	}
	if outputs[0].Meta.Spacing[0] != 2.0 {
		t.Errorf("level 0: expected spacing 2, got %v", outputs[0].Meta.Spacing)
	}

	for l, out := range outputs {
		if g.LevelState(l) != DataComputed {
			t.Errorf("level %d: expected DataComputed, got %v", l, g.LevelState(l))
		}
		for i, v := range out.Data {
			if math.Abs(v-1.5) > 1e-10 {
				t.Fatalf("level %d pixel %d: expected 1.5, got %v", l, i, v)
			}
		}
	}
}

// TestUpdateDegenerateAllOnes verifies the all-ones schedule: every level
// is a same-extent smoothed copy.
func TestUpdateDegenerateAllOnes(t *testing.T) {
	g := NewGenerator(2)
	g.SetNumberOfLevels(3)
	if err := g.SetSchedule([][]int{{1, 1}, {1, 1}, {1, 1}}); err != nil {
		t.Fatalf("SetSchedule failed: %v", err)
	}
	if err := g.SetInput(rampImage([]int{16, 16})); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}

	outputs, err := g.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(outputs) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(outputs))
	}
	for l, out := range outputs {
		if out.Meta.Extent[0] != 16 || out.Meta.Extent[1] != 16 {
			t.Errorf("level %d: expected extent [16 16], got %v", l, out.Meta.Extent)
		}
	}

	// Identical factors must produce identical data across levels.
	for l := 1; l < 3; l++ {
		for i := range outputs[0].Data {
			if outputs[l].Data[i] != outputs[0].Data[i] {
				t.Fatalf("level %d differs from level 0 at pixel %d", l, i)
			}
		}
	}
}

// TestComputeLevelSubRegion verifies streamed computation: a sub-region
// request fills only that region and matches the same pixels of a full
// pass.
func TestComputeLevelSubRegion(t *testing.T) {
	input := rampImage([]int{32, 32})

	full := NewGenerator(2)
	full.SetNumberOfLevels(1)
	if err := full.SetSchedule([][]int{{2, 2}}); err != nil {
		t.Fatalf("SetSchedule failed: %v", err)
	}
	if err := full.SetInput(input); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	fullOut, err := full.Update()
	if err != nil {
		t.Fatalf("full Update failed: %v", err)
	}

	part := NewGenerator(2)
	part.SetNumberOfLevels(1)
	if err := part.SetSchedule([][]int{{2, 2}}); err != nil {
		t.Fatalf("SetSchedule failed: %v", err)
	}
	if err := part.SetInput(input); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}
	if _, err := part.GenerateOutputMetadata(); err != nil {
		t.Fatalf("GenerateOutputMetadata failed: %v", err)
	}
	sub := models.NewRegion([]int{4, 4}, []int{6, 6})
	if _, err := part.GenerateRequestedRegions(0, sub); err != nil {
		t.Fatalf("GenerateRequestedRegions failed: %v", err)
	}
	partOut, err := part.ComputeLevel(0, sub)
	if err != nil {
		t.Fatalf("ComputeLevel failed: %v", err)
	}

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			idx := []int{y, x}
			inside := y >= 4 && y < 10 && x >= 4 && x < 10
			got := partOut.At(idx)
			if !inside {
				if got != 0 {
					t.Errorf("(%d,%d) outside request: expected 0, got %v", y, x, got)
				}
				continue
			}
			want := fullOut[0].At(idx)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("(%d,%d): sub-region %v differs from full pass %v", y, x, got, want)
			}
		}
	}
}

// TestUpdateStartingFactorsPyramid checks the documented 4-level example
// end to end on a 3-D image.
func TestUpdateStartingFactorsPyramid(t *testing.T) {
	g := NewGenerator(3)
	g.SetNumberOfLevels(4)
	if err := g.SetStartingShrinkFactors([]int{8, 8, 4}); err != nil {
		t.Fatalf("SetStartingShrinkFactors failed: %v", err)
	}
	if err := g.SetInput(constantImage([]int{32, 32, 16}, 1.0)); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}

	outputs, err := g.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	wantExtents := [][]int{
		{4, 4, 4},
		{8, 8, 8},
		{16, 16, 16},
		{32, 32, 16},
	}
	for l, out := range outputs {
		for d := 0; d < 3; d++ {
			if out.Meta.Extent[d] != wantExtents[l][d] {
				t.Errorf("level %d dim %d: expected extent %d, got %d",
					l, d, wantExtents[l][d], out.Meta.Extent[d])
			}
		}
	}
}

// TestUpdateNonDivisibleExtent runs a full pull on an input whose extent
// is not a multiple of any level's factors. Every pixel of every level
// must be computed: coarse extents are floor-truncated, so a pull driven
// from a coarse region would leave the finer levels' tail pixels
// untouched. A constant input makes uncomputed pixels show up as zeros.
func TestUpdateNonDivisibleExtent(t *testing.T) {
	g := NewGenerator(2)
	g.SetNumberOfLevels(4)
	if err := g.SetInput(constantImage([]int{100, 100}, 1.0)); err != nil {
		t.Fatalf("SetInput failed: %v", err)
	}

	outputs, err := g.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Factors 8, 4, 2, 1 against extent 100.
	wantExtents := [][]int{
		{12, 12},
		{25, 25},
		{50, 50},
		{100, 100},
	}
	for l, out := range outputs {
		if out.Meta.Extent[0] != wantExtents[l][0] || out.Meta.Extent[1] != wantExtents[l][1] {
			t.Fatalf("level %d: expected extent %v, got %v", l, wantExtents[l], out.Meta.Extent)
		}
		for i, v := range out.Data {
			if math.Abs(v-1.0) > 1e-10 {
				t.Fatalf("level %d pixel %d: expected 1.0, got %v", l, i, v)
			}
		}
	}
}
