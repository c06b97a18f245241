package spsolve

import (
	"log/slog"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

const machineResolution = 2.220446e-16

// Norm returns the 1-norm of the matrix. Once factoring has started it is
// the norm recorded before elimination, otherwise it is computed from the
// current values.
func (m *Matrix) Norm() float64 {
	if m.Factored || m.PivotCount > 0 || m.resumeStep > 0 {
		return m.norm
	}

	norm := 0.0
	for col := int64(1); col <= m.Size; col++ {
		sum := 0.0
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			if m.Complex {
				sum += cmplx.Abs(element.complex())
			} else {
				sum += math.Abs(element.Real)
			}
		}
		norm = max(norm, sum)
	}
	return norm
}

// EstimateConditionNumber returns an estimate of the 1-norm condition number
// ‖A‖₁‖A⁻¹‖₁ of the factored matrix. ‖A⁻¹‖₁ comes from Hager's method with
// Higham's extra probe, a handful of solves with A and Aᵀ. The estimate is a
// lower bound that is rarely off by more than a factor of a few. With Scale
// in effect it describes the scaled matrix.
func (m *Matrix) EstimateConditionNumber() (float64, error) {
	if !m.Factored {
		return 0.0, ErrNotFactored
	}
	if m.Size == 0 {
		return 0.0, nil
	}

	var inverseNorm float64
	if m.Complex {
		inverseNorm = m.estimateInverseNormComplex()
	} else {
		inverseNorm = m.estimateInverseNorm()
	}

	if m.Config.Annotate >= AnnotateFull {
		m.logger.Debug("condition estimate",
			slog.Float64("norm", m.norm), slog.Float64("inverse_norm", inverseNorm))
	}
	return m.norm * inverseNorm, nil
}

const hagerIterations = 5

func (m *Matrix) estimateInverseNorm() float64 {
	n := int(m.Size)
	x := make([]float64, n+1)
	y := make([]float64, n+1)
	z := make([]float64, n+1)

	for i := 1; i <= n; i++ {
		x[i] = 1.0 / float64(n)
	}

	estimate := 0.0
	for iteration := 0; iteration < hagerIterations; iteration++ {
		copy(y, x)
		m.forwardBackward(y)
		current := floats.Norm(y[1:], 1)
		if iteration > 0 && current <= estimate {
			break
		}
		estimate = current

		for i := 1; i <= n; i++ {
			z[i] = 1.0
			if y[i] < 0.0 {
				z[i] = -1.0
			}
		}
		m.backwardForwardTransposed(z)

		j := largestMagnitude(z[1:]) + 1
		if iteration > 0 && math.Abs(z[j]) <= floats.Dot(z[1:], x[1:]) {
			break
		}
		clear(x)
		x[j] = 1.0
	}

	// alternating probe catches matrices where the iteration stalls
	for i := 1; i <= n; i++ {
		sign := 1.0
		if i%2 == 0 {
			sign = -1.0
		}
		y[i] = sign * (1.0 + float64(i-1)/float64(max(n-1, 1)))
	}
	m.forwardBackward(y)
	return max(estimate, 2.0*floats.Norm(y[1:], 1)/float64(3*n))
}

func (m *Matrix) estimateInverseNormComplex() float64 {
	n := int(m.Size)
	x := make([]complex128, n+1)
	y := make([]complex128, n+1)
	z := make([]complex128, n+1)

	for i := 1; i <= n; i++ {
		x[i] = complex(1.0/float64(n), 0)
	}

	estimate := 0.0
	for iteration := 0; iteration < hagerIterations; iteration++ {
		copy(y, x)
		m.forwardBackwardComplex(y)
		current := 0.0
		for _, v := range y[1:] {
			current += cmplx.Abs(v)
		}
		if iteration > 0 && current <= estimate {
			break
		}
		estimate = current

		// z = A⁻ᴴ sign(y), through the plain transpose solve on conjugates
		for i := 1; i <= n; i++ {
			z[i] = 1
			if a := cmplx.Abs(y[i]); a != 0.0 {
				z[i] = cmplx.Conj(y[i] / complex(a, 0))
			}
		}
		m.backwardForwardTransposedComplex(z)

		j, largest, dot := 1, 0.0, 0.0
		for i := 1; i <= n; i++ {
			z[i] = cmplx.Conj(z[i])
			if a := cmplx.Abs(z[i]); a > largest {
				j, largest = i, a
			}
			dot += real(cmplx.Conj(z[i]) * x[i])
		}
		if iteration > 0 && largest <= dot {
			break
		}
		clear(x)
		x[j] = 1
	}

	for i := 1; i <= n; i++ {
		sign := 1.0
		if i%2 == 0 {
			sign = -1.0
		}
		y[i] = complex(sign*(1.0+float64(i-1)/float64(max(n-1, 1))), 0)
	}
	m.forwardBackwardComplex(y)
	alternate := 0.0
	for _, v := range y[1:] {
		alternate += cmplx.Abs(v)
	}
	return max(estimate, 2.0*alternate/float64(3*n))
}

func largestMagnitude(s []float64) int {
	index, largest := 0, -1.0
	for i, v := range s {
		if a := math.Abs(v); a > largest {
			index, largest = i, a
		}
	}
	return index
}

// PseudoCondition returns the ratio of the largest to the smallest pivot
// magnitude. It is cheap and only hints at ill-conditioning.
func (m *Matrix) PseudoCondition() (float64, error) {
	if !m.Factored {
		return 0.0, ErrNotFactored
	}
	if m.Size == 0 {
		return 0.0, nil
	}

	largest := m.elementMag(m.Diags[1])
	smallest := largest
	for i := int64(2); i <= m.Size; i++ {
		magnitude := m.elementMag(m.Diags[i])
		largest = max(largest, magnitude)
		smallest = min(smallest, magnitude)
	}
	// same ratio for the stored reciprocals
	return largest / smallest, nil
}

// LargestElement returns the largest magnitude in an unfactored matrix. For
// a factored one it returns a bound on the largest element of the reduced
// submatrices, the growth term of Barlow's error bound.
func (m *Matrix) LargestElement() float64 {
	if !m.Factored {
		largest := 0.0
		for col := int64(1); col <= m.Size; col++ {
			for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
				largest = max(largest, m.elementMag(element))
			}
		}
		return largest
	}

	maxRow, maxCol := 0.0, 0.0
	for i := int64(1); i <= m.Size; i++ {
		diag := m.Diags[i]
		if m.Complex {
			maxRow = max(maxRow, complex1Norm(1/diag.complex()))
		} else {
			maxRow = max(maxRow, math.Abs(1.0/diag.Real))
		}

		for element := m.FirstInRow[i]; element != nil && element != diag; element = element.NextInRow {
			maxRow = max(maxRow, m.elementMag(element))
		}

		colSum := 1.0
		for element := m.FirstInCol[i]; element != nil && element != diag; element = element.NextInCol {
			colSum += m.elementMag(element)
		}
		maxCol = max(maxCol, colSum)
	}
	return maxRow * maxCol
}

// Roundoff bounds the backward error of the factorization. A negative rho
// is replaced by LargestElement.
func (m *Matrix) Roundoff(rho float64) (float64, error) {
	if !m.Factored {
		return 0.0, ErrNotFactored
	}
	if rho < 0.0 {
		rho = m.LargestElement()
	}

	maxCount := 0
	for i := m.Size; i > 0; i-- {
		count := 0
		for element := m.FirstInRow[i]; element != nil && element.Col < i; element = element.NextInRow {
			count++
		}
		maxCount = max(maxCount, count)
	}

	gear := 1.01 * (float64(maxCount+1)*m.RelThreshold + 1.0) * float64(maxCount*maxCount)
	reid := 3.01 * float64(m.Size)
	return machineResolution * rho * min(gear, reid), nil
}

// LogDeterminant returns log|det A| and the sign of det A for a factored
// real matrix, the form that does not overflow.
func (m *Matrix) LogDeterminant() (float64, float64, error) {
	if !m.Factored {
		return 0.0, 0.0, ErrNotFactored
	}
	if m.Complex {
		return 0.0, 0.0, ErrComplex
	}

	logDet, sign := 0.0, 1.0
	if m.permutationOdd() {
		sign = -1.0
	}
	for i := int64(1); i <= m.Size; i++ {
		reciprocal := m.Diags[i].Real
		if reciprocal < 0.0 {
			sign = -sign
		}
		logDet -= math.Log(math.Abs(reciprocal))
	}

	if m.scaled {
		for i := int64(1); i <= m.Size; i++ {
			factor := scaleAt(m.rowScale, m.IntToExtRowMap[i]) * scaleAt(m.colScale, m.IntToExtColMap[i])
			if factor < 0.0 {
				sign = -sign
			}
			logDet -= math.Log(math.Abs(factor))
		}
	}
	return logDet, sign, nil
}

// Determinant returns det A of a factored real matrix. It overflows for
// large systems; see LogDeterminant.
func (m *Matrix) Determinant() (float64, error) {
	logDet, sign, err := m.LogDeterminant()
	if err != nil {
		return 0.0, err
	}
	return sign * math.Exp(logDet), nil
}

// DeterminantComplex returns det A of a factored complex matrix.
func (m *Matrix) DeterminantComplex() (complex128, error) {
	if !m.Factored {
		return 0, ErrNotFactored
	}
	if !m.Complex {
		return 0, ErrNotComplex
	}

	var logDet complex128
	for i := int64(1); i <= m.Size; i++ {
		logDet -= cmplx.Log(m.Diags[i].complex())
	}
	if m.scaled {
		for i := int64(1); i <= m.Size; i++ {
			factor := scaleAt(m.rowScale, m.IntToExtRowMap[i]) * scaleAt(m.colScale, m.IntToExtColMap[i])
			logDet -= cmplx.Log(complex(factor, 0))
		}
	}

	det := cmplx.Exp(logDet)
	if m.permutationOdd() {
		det = -det
	}
	return det, nil
}

func (m *Matrix) permutationOdd() bool {
	rows := Permutation(m.IntToExtRowMap[:m.Size+1])
	cols := Permutation(m.IntToExtColMap[:m.Size+1])
	return rows.odd() != cols.odd()
}
