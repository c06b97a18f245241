package spsolve

import "math"

// countMarkowitz counts, for every row and column of the unfactored
// submatrix starting at step, the off-diagonal entries it holds. A nonzero
// right-hand side entry counts as one more entry in its row.
func (m *Matrix) countMarkowitz(rhs []float64, step int64) {
	for i := step; i <= m.Size; i++ {
		count := int64(-1)
		element := m.FirstInRow[i]

		for element != nil && element.Col < step {
			element = element.NextInRow
		}
		for element != nil {
			count++
			element = element.NextInRow
		}

		if rhs != nil {
			extRow := m.IntToExtRowMap[i]
			switch {
			case m.Complex && !m.Config.SeparatedComplexVectors:
				if 2*extRow+1 < int64(len(rhs)) && (rhs[2*extRow] != 0.0 || rhs[2*extRow+1] != 0.0) {
					count++
				}
			default:
				if extRow < int64(len(rhs)) && rhs[extRow] != 0.0 {
					count++
				}
			}
		}

		m.MarkowitzRow[i] = count
	}

	for i := step; i <= m.Size; i++ {
		count := int64(-1)
		element := m.FirstInCol[i]

		for element != nil && element.Row < step {
			element = element.NextInCol
		}
		for element != nil {
			count++
			element = element.NextInCol
		}

		m.MarkowitzCol[i] = count
	}
}

func (m *Matrix) markowitzProducts(step int64) {
	m.Singletons = 0

	for i := step; i <= m.Size; i++ {
		m.MarkowitzProd[i] = markowitzProduct(m.MarkowitzRow[i], m.MarkowitzCol[i])
		if m.MarkowitzProd[i] == 0 {
			m.Singletons++
		}
	}
}

// markowitzProduct saturates at math.MaxInt32 so products of huge counts
// stay comparable.
func markowitzProduct(op1, op2 int64) int64 {
	const largestShort = math.MaxInt16

	if (op1 > largestShort && op2 != 0) || (op2 > largestShort && op1 != 0) {
		product := float64(op1) * float64(op2)
		if product >= math.MaxInt32 {
			return math.MaxInt32
		}
		return int64(product)
	}
	return op1 * op2
}

// updateMarkowitzNumbers drops the pivot's row and column from the counts
// of the rows and columns it touched.
func (m *Matrix) updateMarkowitzNumbers(pivot *Element) {
	for element := pivot.NextInCol; element != nil; element = element.NextInCol {
		row := element.Row
		m.MarkowitzRow[row]--
		m.MarkowitzProd[row] = markowitzProduct(m.MarkowitzRow[row], m.MarkowitzCol[row])
		if m.MarkowitzRow[row] == 0 {
			m.Singletons++
		}
	}

	for element := pivot.NextInRow; element != nil; element = element.NextInRow {
		col := element.Col
		m.MarkowitzCol[col]--
		m.MarkowitzProd[col] = markowitzProduct(m.MarkowitzCol[col], m.MarkowitzRow[col])
		if m.MarkowitzCol[col] == 0 && m.MarkowitzRow[col] != 0 {
			m.Singletons++
		}
	}
}
