package spsolve

import (
	"fmt"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

// Solve returns x with A x = rhs. Vectors are indexed by external index and
// slot 0 is ignored. Scaling set by Scale is undone automatically.
func (m *Matrix) Solve(rhs []float64) ([]float64, error) {
	if err := m.checkSolve(len(rhs), false); err != nil {
		return nil, err
	}

	b := m.scaleRHS(rhs, m.rowScale)
	x := m.solveReal(b, false)
	if m.Config.Refine && m.original != nil {
		m.refine(b, x)
	}
	m.scaleSolution(x, m.colScale)
	return x, nil
}

// SolveTransposed returns x with Aᵀ x = rhs using the factors of A.
func (m *Matrix) SolveTransposed(rhs []float64) ([]float64, error) {
	if err := m.checkSolve(len(rhs), false); err != nil {
		return nil, err
	}

	b := m.scaleRHS(rhs, m.colScale)
	x := m.solveReal(b, true)
	m.scaleSolution(x, m.rowScale)
	return x, nil
}

// SolveComplex solves a complex system. With SeparatedComplexVectors the
// real and imaginary parts come in rhs and irhs and go out the same way.
// Otherwise rhs interleaves them, re at 2i and im at 2i+1, irhs is ignored
// and the second result is nil.
func (m *Matrix) SolveComplex(rhs, irhs []float64) ([]float64, []float64, error) {
	return m.solveComplex(rhs, irhs, false)
}

func (m *Matrix) SolveComplexTransposed(rhs, irhs []float64) ([]float64, []float64, error) {
	return m.solveComplex(rhs, irhs, true)
}

func (m *Matrix) solveComplex(rhs, irhs []float64, transposed bool) ([]float64, []float64, error) {
	n := len(rhs)
	if !m.Config.SeparatedComplexVectors {
		n = len(rhs) / 2
	} else if len(irhs) < n {
		n = len(irhs)
	}
	if err := m.checkSolve(n, true); err != nil {
		return nil, nil, err
	}

	b := make([]complex128, n)
	for i := range b {
		if m.Config.SeparatedComplexVectors {
			b[i] = complex(rhs[i], irhs[i])
		} else {
			b[i] = complex(rhs[2*i], rhs[2*i+1])
		}
	}

	in, out := m.rowScale, m.colScale
	if transposed {
		in, out = out, in
	}
	if m.scaled {
		for i := 1; i < min(len(b), len(in)); i++ {
			b[i] *= complex(in[i], 0)
		}
	}

	x := m.solveComplexVector(b, transposed)

	if m.scaled {
		for i := 1; i < min(len(x), len(out)); i++ {
			x[i] *= complex(out[i], 0)
		}
	}

	if m.Config.SeparatedComplexVectors {
		re := make([]float64, n)
		im := make([]float64, n)
		for i, v := range x {
			re[i], im[i] = real(v), imag(v)
		}
		return re, im, nil
	}

	interleaved := make([]float64, 2*n)
	for i, v := range x {
		interleaved[2*i], interleaved[2*i+1] = real(v), imag(v)
	}
	return interleaved, nil, nil
}

func (m *Matrix) checkSolve(n int, complexVectors bool) error {
	switch {
	case !m.Factored:
		return ErrNotFactored
	case complexVectors && !m.Complex:
		return ErrNotComplex
	case !complexVectors && m.Complex:
		return ErrComplex
	case int64(n) <= m.ExtSize:
		return fmt.Errorf("%w: length %d, largest index %d", ErrDimensionMismatch, n, m.ExtSize)
	}
	return nil
}

// solveReal solves with the factors on an external vector of the scaled
// matrix. b is not modified.
func (m *Matrix) solveReal(b []float64, transposed bool) []float64 {
	in := Permutation(m.IntToExtRowMap[:m.Size+1])
	out := Permutation(m.IntToExtColMap[:m.Size+1])
	if transposed {
		in, out = out, in
	}

	v := m.Intermediate
	Gather(in, v, b)
	if transposed {
		m.backwardForwardTransposed(v)
	} else {
		m.forwardBackward(v)
	}

	x := make([]float64, len(b))
	Scatter(out, x, v)
	return x
}

func (m *Matrix) solveComplexVector(b []complex128, transposed bool) []complex128 {
	in := Permutation(m.IntToExtRowMap[:m.Size+1])
	out := Permutation(m.IntToExtColMap[:m.Size+1])
	if transposed {
		in, out = out, in
	}

	v := m.intermediateComplex
	Gather(in, v, b)
	if transposed {
		m.backwardForwardTransposedComplex(v)
	} else {
		m.forwardBackwardComplex(v)
	}

	x := make([]complex128, len(b))
	Scatter(out, x, v)
	return x
}

// refine performs one step of iterative refinement against the snapshot
// taken before factoring.
func (m *Matrix) refine(b, x []float64) {
	r := slices.Clone(b)
	r[0] = 0.0
	m.original.DoNonZero(func(i, j int, v float64) {
		r[i] -= v * x[j]
	})
	floats.Add(x, m.solveReal(r, false))
}

// forwardBackward solves L U v = v in internal order. The pivots hold
// reciprocals and U has a unit diagonal.
func (m *Matrix) forwardBackward(v []float64) {
	for i := int64(1); i <= m.Size; i++ {
		if temp := v[i]; temp != 0.0 {
			pivot := m.Diags[i]
			temp *= pivot.Real
			v[i] = temp
			for element := pivot.NextInCol; element != nil; element = element.NextInCol {
				v[element.Row] -= temp * element.Real
			}
		}
	}

	for i := m.Size; i > 0; i-- {
		temp := v[i]
		for element := m.Diags[i].NextInRow; element != nil; element = element.NextInRow {
			temp -= element.Real * v[element.Col]
		}
		v[i] = temp
	}
}

// backwardForwardTransposed solves Uᵀ Lᵀ v = v in internal order.
func (m *Matrix) backwardForwardTransposed(v []float64) {
	for i := int64(1); i <= m.Size; i++ {
		if temp := v[i]; temp != 0.0 {
			for element := m.Diags[i].NextInRow; element != nil; element = element.NextInRow {
				v[element.Col] -= temp * element.Real
			}
		}
	}

	for i := m.Size; i > 0; i-- {
		pivot := m.Diags[i]
		temp := v[i]
		for element := pivot.NextInCol; element != nil; element = element.NextInCol {
			temp -= element.Real * v[element.Row]
		}
		v[i] = temp * pivot.Real
	}
}

func (m *Matrix) forwardBackwardComplex(v []complex128) {
	for i := int64(1); i <= m.Size; i++ {
		if temp := v[i]; temp != 0 {
			pivot := m.Diags[i]
			temp *= pivot.complex()
			v[i] = temp
			for element := pivot.NextInCol; element != nil; element = element.NextInCol {
				v[element.Row] -= temp * element.complex()
			}
		}
	}

	for i := m.Size; i > 0; i-- {
		temp := v[i]
		for element := m.Diags[i].NextInRow; element != nil; element = element.NextInRow {
			temp -= element.complex() * v[element.Col]
		}
		v[i] = temp
	}
}

func (m *Matrix) backwardForwardTransposedComplex(v []complex128) {
	for i := int64(1); i <= m.Size; i++ {
		if temp := v[i]; temp != 0 {
			for element := m.Diags[i].NextInRow; element != nil; element = element.NextInRow {
				v[element.Col] -= temp * element.complex()
			}
		}
	}

	for i := m.Size; i > 0; i-- {
		pivot := m.Diags[i]
		temp := v[i]
		for element := pivot.NextInCol; element != nil; element = element.NextInCol {
			temp -= element.complex() * v[element.Row]
		}
		v[i] = temp * pivot.complex()
	}
}

// Multiply returns A x for an unfactored real matrix.
func (m *Matrix) Multiply(x []float64) ([]float64, error) {
	return m.multiply(x, false)
}

// MultiplyTransposed returns Aᵀ x for an unfactored real matrix.
func (m *Matrix) MultiplyTransposed(x []float64) ([]float64, error) {
	return m.multiply(x, true)
}

func (m *Matrix) multiply(x []float64, transposed bool) ([]float64, error) {
	switch {
	case m.Factored || m.PivotCount > 0:
		return nil, ErrFactored
	case m.Complex:
		return nil, ErrComplex
	case int64(len(x)) <= m.ExtSize:
		return nil, fmt.Errorf("%w: length %d, largest index %d", ErrDimensionMismatch, len(x), m.ExtSize)
	}

	y := make([]float64, len(x))
	for col := int64(1); col <= m.Size; col++ {
		extCol := m.IntToExtColMap[col]
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			extRow := m.IntToExtRowMap[element.Row]
			if transposed {
				y[extCol] += element.Real * x[extRow]
			} else {
				y[extRow] += element.Real * x[extCol]
			}
		}
	}
	return y, nil
}
