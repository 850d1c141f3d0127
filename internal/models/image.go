// Package models holds the core value types shared across the pyramid
// pipeline: image metadata, index-space regions and the image container
// itself. All types are plain values; copying is explicit via Clone so no
// package ever aliases another package's buffers by accident.
package models

// Metadata describes the geometry of an image without its pixel data.
type Metadata struct {
	// Extent is the number of pixels along each dimension.
	Extent []int

	// Spacing is the physical distance between adjacent pixels along
	// each dimension.
	Spacing []float64

	// Origin is the physical position of the pixel at index zero.
	Origin []float64

	// Direction is the row-major orientation matrix mapping index axes
	// to physical axes. It is carried through the pipeline unchanged.
	Direction [][]float64
}

// NewMetadata creates metadata for the given extent with unit spacing,
// zero origin and an identity direction matrix.
func NewMetadata(extent []int) Metadata {
	dims := len(extent)
	m := Metadata{
		Extent:    make([]int, dims),
		Spacing:   make([]float64, dims),
		Origin:    make([]float64, dims),
		Direction: make([][]float64, dims),
	}
	copy(m.Extent, extent)
	for d := 0; d < dims; d++ {
		m.Spacing[d] = 1.0
		m.Direction[d] = make([]float64, dims)
		m.Direction[d][d] = 1.0
	}
	return m
}

// Dims returns the number of spatial dimensions.
func (m Metadata) Dims() int {
	return len(m.Extent)
}

// NumPixels returns the total pixel count of the extent.
func (m Metadata) NumPixels() int {
	n := 1
	for _, e := range m.Extent {
		n *= e
	}
	return n
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	c := Metadata{
		Extent:    make([]int, len(m.Extent)),
		Spacing:   make([]float64, len(m.Spacing)),
		Origin:    make([]float64, len(m.Origin)),
		Direction: make([][]float64, len(m.Direction)),
	}
	copy(c.Extent, m.Extent)
	copy(c.Spacing, m.Spacing)
	copy(c.Origin, m.Origin)
	for i, row := range m.Direction {
		c.Direction[i] = make([]float64, len(row))
		copy(c.Direction[i], row)
	}
	return c
}

// FullRegion returns the region covering the whole extent.
func (m Metadata) FullRegion() Region {
	r := Region{
		Index: make([]int, len(m.Extent)),
		Size:  make([]int, len(m.Extent)),
	}
	copy(r.Size, m.Extent)
	return r
}

// Region is an axis-aligned box in index space, described by the index of
// its first pixel and its size along each dimension.
type Region struct {
	Index []int
	Size  []int
}

// NewRegion creates a region from copies of the given index and size.
func NewRegion(index, size []int) Region {
	r := Region{
		Index: make([]int, len(index)),
		Size:  make([]int, len(size)),
	}
	copy(r.Index, index)
	copy(r.Size, size)
	return r
}

// Clone returns a deep copy of the region.
func (r Region) Clone() Region {
	return NewRegion(r.Index, r.Size)
}

// Dims returns the number of spatial dimensions.
func (r Region) Dims() int {
	return len(r.Index)
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool {
	if len(r.Size) == 0 {
		return true
	}
	for _, s := range r.Size {
		if s <= 0 {
			return true
		}
	}
	return false
}

// NumPixels returns the pixel count of the region, zero if empty.
func (r Region) NumPixels() int {
	if r.Empty() {
		return 0
	}
	n := 1
	for _, s := range r.Size {
		n *= s
	}
	return n
}

// Equal reports whether two regions have identical index and size.
func (r Region) Equal(o Region) bool {
	if len(r.Index) != len(o.Index) {
		return false
	}
	for d := range r.Index {
		if r.Index[d] != o.Index[d] || r.Size[d] != o.Size[d] {
			return false
		}
	}
	return true
}

// Contains reports whether o lies entirely inside r.
func (r Region) Contains(o Region) bool {
	if len(r.Index) != len(o.Index) {
		return false
	}
	for d := range r.Index {
		if o.Index[d] < r.Index[d] {
			return false
		}
		if o.Index[d]+o.Size[d] > r.Index[d]+r.Size[d] {
			return false
		}
	}
	return true
}

// Pad grows the region by radius pixels on both sides of each dimension.
func (r Region) Pad(radius []int) Region {
	p := r.Clone()
	for d := range p.Index {
		p.Index[d] -= radius[d]
		p.Size[d] += 2 * radius[d]
	}
	return p
}

// Crop clips the region to the given bounds. The second return value
// reports whether clipping changed the region; the caller decides whether
// a shrunk region is acceptable.
func (r Region) Crop(bounds Region) (Region, bool) {
	c := r.Clone()
	clipped := false
	for d := range c.Index {
		lo := c.Index[d]
		hi := c.Index[d] + c.Size[d]
		blo := bounds.Index[d]
		bhi := bounds.Index[d] + bounds.Size[d]
		if lo < blo {
			lo = blo
			clipped = true
		}
		if hi > bhi {
			hi = bhi
			clipped = true
		}
		if hi < lo {
			hi = lo
		}
		c.Index[d] = lo
		c.Size[d] = hi - lo
	}
	return c, clipped
}

// Image is an N-dimensional scalar image stored as a flat float64 buffer
// in row-major order: the last dimension varies fastest.
type Image struct {
	Meta Metadata
	Data []float64

	strides []int
}

// NewImage allocates a zero-filled image with the given metadata.
func NewImage(meta Metadata) *Image {
	img := &Image{
		Meta: meta.Clone(),
		Data: make([]float64, meta.NumPixels()),
	}
	img.strides = computeStrides(meta.Extent)
	return img
}

// computeStrides returns row-major strides for the given extent.
func computeStrides(extent []int) []int {
	dims := len(extent)
	strides := make([]int, dims)
	stride := 1
	for d := dims - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= extent[d]
	}
	return strides
}

// Strides returns the row-major strides of the image buffer.
func (img *Image) Strides() []int {
	if img.strides == nil {
		img.strides = computeStrides(img.Meta.Extent)
	}
	return img.strides
}

// Offset converts a multi-dimensional index into a buffer offset.
func (img *Image) Offset(idx []int) int {
	off := 0
	for d, s := range img.Strides() {
		off += idx[d] * s
	}
	return off
}

// At returns the pixel value at the given index.
func (img *Image) At(idx []int) float64 {
	return img.Data[img.Offset(idx)]
}

// Set writes the pixel value at the given index.
func (img *Image) Set(idx []int, v float64) {
	img.Data[img.Offset(idx)] = v
}

// Dims returns the number of spatial dimensions.
func (img *Image) Dims() int {
	return img.Meta.Dims()
}
