package spsolve

// realRowColElimination eliminates the submatrix below and right of pivot.
// The pivot is replaced by its reciprocal and the upper row is scaled by it,
// so U ends up with a unit diagonal. Missing entries in the update are
// created as fill-ins.
func (m *Matrix) realRowColElimination(pivot *Element) {
	pivot.Real = 1.0 / pivot.Real

	for upper := pivot.NextInRow; upper != nil; upper = upper.NextInRow {
		upper.Real *= pivot.Real

		sub := upper.NextInCol
		above := &upper.NextInCol
		for lower := pivot.NextInCol; lower != nil; lower = lower.NextInCol {
			row := lower.Row

			for sub != nil && sub.Row < row {
				above = &sub.NextInCol
				sub = sub.NextInCol
			}

			if sub == nil || sub.Row > row {
				sub = m.createElement(row, upper.Col, &lower.NextInRow, above, true)
			}

			sub.Real -= upper.Real * lower.Real
			above = &sub.NextInCol
			sub = sub.NextInCol
		}
	}
}

func (m *Matrix) complexRowColElimination(pivot *Element) {
	reciprocal := 1 / pivot.complex()
	pivot.setComplex(reciprocal)

	for upper := pivot.NextInRow; upper != nil; upper = upper.NextInRow {
		u := upper.complex() * reciprocal
		upper.setComplex(u)

		sub := upper.NextInCol
		above := &upper.NextInCol
		for lower := pivot.NextInCol; lower != nil; lower = lower.NextInCol {
			row := lower.Row

			for sub != nil && sub.Row < row {
				above = &sub.NextInCol
				sub = sub.NextInCol
			}

			if sub == nil || sub.Row > row {
				sub = m.createElement(row, upper.Col, &lower.NextInRow, above, true)
			}

			sub.setComplex(sub.complex() - u*lower.complex())
			above = &sub.NextInCol
			sub = sub.NextInCol
		}
	}
}

func (m *Matrix) eliminate(pivot *Element) {
	if m.Complex {
		m.complexRowColElimination(pivot)
		return
	}
	m.realRowColElimination(pivot)
}
