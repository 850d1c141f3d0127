// Package schedule owns the per-level, per-dimension shrink factor table
// that drives a multi-resolution image pyramid.
//
// A schedule is a dense table of positive integers indexed by
// [level][dimension], where level 0 is the coarsest resolution. Two
// invariants hold at all times:
//
//   - every factor is at least 1;
//   - within a column, factors are non-increasing from coarsest to finest.
//
// Violations are corrected by clamping, never reported as errors; only a
// table of the wrong shape is rejected.
package schedule

// Schedule is the owned shrink factor table. The zero value is not usable;
// construct with New.
type Schedule struct {
	levels  int
	dims    int
	factors [][]int
}

// New creates a schedule for the given number of levels and spatial
// dimensions, populated with the default table: every entry of row 0 is
// 2^(levels-1) and each subsequent row halves the previous one, clamped to
// a minimum of 1. Both arguments are clamped to a minimum of 1.
func New(levels, dims int) *Schedule {
	if levels < 1 {
		levels = 1
	}
	if dims < 1 {
		dims = 1
	}
	s := &Schedule{levels: levels, dims: dims}
	start := make([]int, dims)
	for d := range start {
		start[d] = 1 << (levels - 1)
	}
	s.generate(start)
	return s
}

// generate fills the table from the given row 0 by repeated halving with
// floor division, clamping every entry to a minimum of 1.
func (s *Schedule) generate(start []int) {
	s.factors = make([][]int, s.levels)
	for l := 0; l < s.levels; l++ {
		s.factors[l] = make([]int, s.dims)
		for d := 0; d < s.dims; d++ {
			var f int
			if l == 0 {
				f = start[d]
			} else {
				f = s.factors[l-1][d] / 2
			}
			if f < 1 {
				f = 1
			}
			s.factors[l][d] = f
		}
	}
}

// NumberOfLevels returns the number of resolution levels.
func (s *Schedule) NumberOfLevels() int {
	return s.levels
}

// Dimensions returns the number of spatial dimensions.
func (s *Schedule) Dimensions() int {
	return s.dims
}

// SetNumberOfLevels resizes the table to n levels (clamped to a minimum of
// 1) and regenerates it with default values, discarding any previously
// installed table.
func (s *Schedule) SetNumberOfLevels(n int) {
	if n < 1 {
		n = 1
	}
	s.levels = n
	start := make([]int, s.dims)
	for d := range start {
		start[d] = 1 << (n - 1)
	}
	s.generate(start)
}

// Set installs an explicit table. The table must have exactly
// NumberOfLevels rows and Dimensions columns; a mismatch returns
// ErrShapeMismatch and leaves the current table untouched. On acceptance,
// every entry is clamped to a minimum of 1, and each column is forced
// non-increasing from coarsest to finest by clamping a value to the value
// immediately above it. Clamping is silent.
func (s *Schedule) Set(table [][]int) error {
	if len(table) == 0 {
		return ErrEmptySchedule
	}
	if len(table) != s.levels {
		return ErrShapeMismatch
	}
	for _, row := range table {
		if len(row) != s.dims {
			return ErrShapeMismatch
		}
	}

	clamped := make([][]int, s.levels)
	for l := 0; l < s.levels; l++ {
		clamped[l] = make([]int, s.dims)
		for d := 0; d < s.dims; d++ {
			f := table[l][d]
			if f < 1 {
				f = 1
			}
			if l > 0 && f > clamped[l-1][d] {
				f = clamped[l-1][d]
			}
			clamped[l][d] = f
		}
	}
	s.factors = clamped
	return nil
}

// Factors returns a deep copy of the current table.
func (s *Schedule) Factors() [][]int {
	out := make([][]int, s.levels)
	for l, row := range s.factors {
		out[l] = make([]int, s.dims)
		copy(out[l], row)
	}
	return out
}

// At returns the shrink factor for the given level and dimension. Indices
// out of range are a programmer error and panic via the slice bounds.
func (s *Schedule) At(level, dim int) int {
	return s.factors[level][dim]
}

// SetStartingShrinkFactor sets every dimension of the coarsest level to
// the given factor (clamped to a minimum of 1) and regenerates all finer
// levels by halving.
func (s *Schedule) SetStartingShrinkFactor(factor int) {
	start := make([]int, s.dims)
	for d := range start {
		start[d] = factor
	}
	s.generate(start)
}

// SetStartingShrinkFactors sets the coarsest level to the given
// per-dimension factors (clamped to a minimum of 1) and regenerates all
// finer levels by halving. The vector length must equal Dimensions.
func (s *Schedule) SetStartingShrinkFactors(factors []int) error {
	if len(factors) != s.dims {
		return ErrShapeMismatch
	}
	s.generate(factors)
	return nil
}

// StartingShrinkFactors returns a copy of the coarsest level's factors.
func (s *Schedule) StartingShrinkFactors() []int {
	out := make([]int, s.dims)
	copy(out, s.factors[0])
	return out
}

// IsDownwardDivisible reports whether every level's factors are exact
// integer multiples of the next finer level's factors. A schedule can be
// non-increasing yet fail this test (e.g. 3 over 2). Callers use it to
// decide whether cascaded level-to-level decimation is possible.
func IsDownwardDivisible(table [][]int) bool {
	for l := 1; l < len(table); l++ {
		for d := range table[l] {
			if table[l][d] == 0 {
				return false
			}
			if table[l-1][d]%table[l][d] != 0 {
				return false
			}
		}
	}
	return true
}
