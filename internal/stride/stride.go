// Package stride implements dense row-major layout math for N-dimensional
// cell arrays: offsets, odometer iteration, growth and index remapping.
package stride

// Shape describes the extents and row-major strides of a dense N-dimensional
// array. The zero value is a rank-0 shape with a single cell.
type Shape struct {
	extents []int
	strides []int
	size    int
}

// New creates a shape with the given extents. Extents must be non-negative;
// a zero extent yields an empty array.
func New(extents ...int) Shape {
	s := Shape{
		extents: make([]int, len(extents)),
		strides: make([]int, len(extents)),
		size:    1,
	}
	copy(s.extents, extents)

	// Last dimension varies fastest.
	for d := len(extents) - 1; d >= 0; d-- {
		s.strides[d] = s.size
		s.size *= extents[d]
	}
	return s
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s.extents) }

// Size returns the total number of cells.
func (s Shape) Size() int {
	if s.extents == nil {
		return 1
	}
	return s.size
}

// Extent returns the length of dimension d.
func (s Shape) Extent(d int) int { return s.extents[d] }

// Extents returns a copy of all extents.
func (s Shape) Extents() []int {
	out := make([]int, len(s.extents))
	copy(out, s.extents)
	return out
}

// Stride returns the row-major stride of dimension d.
func (s Shape) Stride(d int) int { return s.strides[d] }

// Offset returns the flat offset of an index tuple. The tuple length must
// equal the rank; components are not bounds-checked.
func (s Shape) Offset(idx []int) int {
	off := 0
	for d, i := range idx {
		off += i * s.strides[d]
	}
	return off
}

// Unravel fills idx with the index tuple of a flat offset. idx must have
// length equal to the rank.
func (s Shape) Unravel(offset int, idx []int) {
	for d := range s.extents {
		idx[d] = offset / s.strides[d]
		offset %= s.strides[d]
	}
}

// Next advances idx to the following index tuple in row-major order. It
// returns false once idx wraps past the final tuple. Start iteration with an
// all-zero tuple and call Next after processing each one.
func (s Shape) Next(idx []int) bool {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < s.extents[d] {
			return true
		}
		idx[d] = 0
	}
	return false
}

// Grow copies src (laid out as sshape) into dst (laid out as dshape),
// preserving index tuples. Both shapes must have the same rank and every
// dshape extent must be at least the matching sshape extent. Cells of dst
// outside src's extents are left untouched.
func Grow(dst []float64, dshape Shape, src []float64, sshape Shape) {
	if sshape.Size() == 0 {
		return
	}
	if sshape.Rank() == 0 {
		dst[0] = src[0]
		return
	}

	// Copy one contiguous last-dimension row at a time.
	last := sshape.Rank() - 1
	row := sshape.Extent(last)
	idx := make([]int, sshape.Rank())
	for {
		so := sshape.Offset(idx)
		do := dshape.Offset(idx)
		copy(dst[do:do+row], src[so:so+row])

		// Advance all dimensions except the last.
		done := true
		for d := last - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < sshape.Extent(d) {
				done = false
				break
			}
			idx[d] = 0
		}
		if last == 0 || done {
			return
		}
	}
}

// Remap accumulates src (laid out as sshape) into dst (laid out as dshape),
// translating each dimension's indices through maps[d]:
//
//	dst[maps[0][i0], maps[1][i1], ...] += src[i0, i1, ...]
//
// A nil maps[d] is the identity. A mapped index of -1 drops the cell. Shapes
// must have the same rank.
func Remap(dst []float64, dshape Shape, src []float64, sshape Shape, maps [][]int) {
	if sshape.Size() == 0 {
		return
	}
	if sshape.Rank() == 0 {
		dst[0] += src[0]
		return
	}

	idx := make([]int, sshape.Rank())
	for so := 0; ; so++ {
		do := 0
		keep := true
		for d, i := range idx {
			if maps[d] != nil {
				i = maps[d][i]
				if i < 0 {
					keep = false
					break
				}
			}
			do += i * dshape.Stride(d)
		}
		if keep {
			dst[do] += src[so]
		}
		if !sshape.Next(idx) {
			return
		}
	}
}
