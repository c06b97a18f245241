package spsolve

import (
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Position locates one stored entry. Row and Col are internal indices when
// the pattern was taken in pivot order and external indices otherwise.
type Position struct {
	Row    int64
	Col    int64
	Fillin bool
}

// Pattern lists every stored entry, fill-ins included, column by column.
func (m *Matrix) Pattern(reordered bool) []Position {
	pattern := make([]Position, 0, m.Elements)
	for col := int64(1); col <= m.Size; col++ {
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			p := Position{Row: element.Row, Col: col, Fillin: element.fillin}
			if !reordered {
				p.Row = m.IntToExtRowMap[element.Row]
				p.Col = m.IntToExtColMap[col]
			}
			pattern = append(pattern, p)
		}
	}
	return pattern
}

// Dense copies the real part of an unfactored matrix into a dense matrix
// indexed from 0, so external index i lands in row or column i-1.
func (m *Matrix) Dense() (*mat.Dense, error) {
	if m.Factored || m.PivotCount > 0 {
		return nil, ErrFactored
	}
	if m.ExtSize == 0 {
		return nil, ErrAllocation
	}

	n := int(m.ExtSize)
	dense := mat.NewDense(n, n, nil)
	m.eachExternal(func(row, col int, value float64) {
		dense.Set(row-1, col-1, value)
	})
	return dense, nil
}

// ToCSR copies the real part of an unfactored matrix into a compressed
// sparse row matrix indexed like Dense.
func (m *Matrix) ToCSR() (*sparse.CSR, error) {
	if m.Factored || m.PivotCount > 0 {
		return nil, ErrFactored
	}
	if m.ExtSize == 0 {
		return nil, ErrAllocation
	}

	n := int(m.ExtSize)
	dok := sparse.NewDOK(n, n)
	m.eachExternal(func(row, col int, value float64) {
		dok.Set(row-1, col-1, value)
	})
	return dok.ToCSR(), nil
}

func (m *Matrix) eachExternal(fn func(row, col int, value float64)) {
	for col := int64(1); col <= m.Size; col++ {
		extCol := int(m.IntToExtColMap[col])
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			if element.Real != 0.0 {
				fn(int(m.IntToExtRowMap[element.Row]), extCol, element.Real)
			}
		}
	}
}
