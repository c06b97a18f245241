package spsolve

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Scale multiplies the loaded values by rowScale[row] * colScale[col], both
// indexed by external index. Solves undo the scaling on their own, so it
// only changes the pivots chosen and the rounding. Scaling accumulates
// until Clear.
func (m *Matrix) Scale(rowScale, colScale []float64) error {
	switch {
	case m.Factored || m.PivotCount > 0:
		return ErrFactored
	case int64(len(rowScale)) <= m.ExtSize || int64(len(colScale)) <= m.ExtSize:
		return fmt.Errorf("%w: scale factors of length %d and %d, largest index %d",
			ErrDimensionMismatch, len(rowScale), len(colScale), m.ExtSize)
	}

	for col := int64(1); col <= m.Size; col++ {
		cs := colScale[m.IntToExtColMap[col]]
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			factor := rowScale[m.IntToExtRowMap[element.Row]] * cs
			element.Real *= factor
			element.Imag *= factor
		}
	}

	if !m.scaled {
		m.rowScale = slices.Clone(rowScale[:m.ExtSize+1])
		m.colScale = slices.Clone(colScale[:m.ExtSize+1])
		m.scaled = true
		return nil
	}

	for i := range m.rowScale {
		m.rowScale[i] *= rowScale[i]
		m.colScale[i] *= colScale[i]
	}
	return nil
}

func (m *Matrix) scaleRHS(rhs, scale []float64) []float64 {
	if !m.scaled {
		return rhs
	}
	b := slices.Clone(rhs)
	for i := 1; i < min(len(b), len(scale)); i++ {
		b[i] *= scale[i]
	}
	return b
}

func (m *Matrix) scaleSolution(x, scale []float64) {
	if !m.scaled {
		return
	}
	for i := 1; i < min(len(x), len(scale)); i++ {
		x[i] *= scale[i]
	}
}

func scaleAt(scale []float64, ext int64) float64 {
	if ext < int64(len(scale)) {
		return scale[ext]
	}
	return 1.0
}
