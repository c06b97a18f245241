package spsolve

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Scalar is an element type of a right-hand side or solution vector.
type Scalar interface {
	constraints.Float | constraints.Complex
}

// Permutation maps an internal position to an external index. Position 0 is
// unused and holds 0, matching the 1-based vectors of the solver.
type Permutation []int64

// Gather copies src[p[i]] into dst[i], taking an external vector to
// internal order.
func Gather[T Scalar](p Permutation, dst, src []T) {
	for i := len(p) - 1; i > 0; i-- {
		dst[i] = src[p[i]]
	}
}

// Scatter copies src[i] into dst[p[i]], the inverse of Gather.
func Scatter[T Scalar](p Permutation, dst, src []T) {
	for i := len(p) - 1; i > 0; i-- {
		dst[p[i]] = src[i]
	}
}

// Inverse returns q with q[p[i]] == i. Its length is one more than the
// largest external index.
func (p Permutation) Inverse() Permutation {
	size := int64(0)
	for _, ext := range p {
		size = max(size, ext)
	}

	q := make(Permutation, size+1)
	for i := int64(len(p)) - 1; i > 0; i-- {
		q[p[i]] = i
	}
	return q
}

// IsBijection reports whether p assigns distinct positive external indices
// to every position.
func (p Permutation) IsBijection() bool {
	if len(p) == 0 {
		return false
	}
	seen := make(map[int64]struct{}, len(p))
	for _, ext := range p[1:] {
		if ext < 1 {
			return false
		}
		if _, dup := seen[ext]; dup {
			return false
		}
		seen[ext] = struct{}{}
	}
	return true
}

// odd reports whether p, read as a permutation of the sorted set of its
// values, is odd.
func (p Permutation) odd() bool {
	if len(p) < 2 {
		return false
	}
	sorted := slices.Clone(p[1:])
	slices.Sort(sorted)

	n := len(sorted)
	rank := make([]int, n)
	for i, ext := range p[1:] {
		rank[i], _ = slices.BinarySearch(sorted, ext)
	}

	visited := make([]bool, n)
	cycles := 0
	for i := range rank {
		if visited[i] {
			continue
		}
		cycles++
		for j := i; !visited[j]; j = rank[j] {
			visited[j] = true
		}
	}
	return (n-cycles)%2 == 1
}

// RowPermutation returns the external row held at each internal row.
func (m *Matrix) RowPermutation() Permutation {
	return slices.Clone(Permutation(m.IntToExtRowMap[:m.Size+1]))
}

// ColPermutation returns the external column held at each internal column.
func (m *Matrix) ColPermutation() Permutation {
	return slices.Clone(Permutation(m.IntToExtColMap[:m.Size+1]))
}

// PermuteRHS returns x in internal row order.
func (m *Matrix) PermuteRHS(x []float64) ([]float64, error) {
	if int64(len(x)) <= m.ExtSize {
		return nil, ErrDimensionMismatch
	}
	y := make([]float64, m.Size+1)
	Gather(Permutation(m.IntToExtRowMap[:m.Size+1]), y, x)
	return y, nil
}

// UnpermuteSolution takes a solution in internal column order back to
// external order.
func (m *Matrix) UnpermuteSolution(y []float64) ([]float64, error) {
	if int64(len(y)) <= m.Size {
		return nil, ErrDimensionMismatch
	}
	x := make([]float64, m.ExtSize+1)
	Scatter(Permutation(m.IntToExtColMap[:m.Size+1]), x, y)
	return x, nil
}
