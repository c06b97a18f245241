package spsolve

func (m *Matrix) findDiag(index int64) *Element {
	element := m.FirstInCol[index]
	for element != nil && element.Row < index {
		element = element.NextInCol
	}
	if element != nil && element.Row == index {
		return element
	}
	return nil
}

// exchangeRowsAndCols moves pivot to (step, step) and keeps the Markowitz
// products and the singleton count consistent with the move.
func (m *Matrix) exchangeRowsAndCols(pivot *Element, step int64) {
	row := pivot.Row
	col := pivot.Col

	m.PivotsOriginalRow = row
	m.PivotsOriginalCol = col

	if row == step && col == step {
		return
	}

	if row == col {
		m.rowExchange(step, row)
		m.colExchange(step, col)

		m.MarkowitzProd[step], m.MarkowitzProd[row] = m.MarkowitzProd[row], m.MarkowitzProd[step]
		m.Diags[row], m.Diags[step] = m.Diags[step], m.Diags[row]
		return
	}

	oldMarkowitzStep := m.MarkowitzProd[step]
	oldMarkowitzRow := m.MarkowitzProd[row]
	oldMarkowitzCol := m.MarkowitzProd[col]

	if row != step {
		m.rowExchange(step, row)
		m.MarkowitzProd[row] = markowitzProduct(m.MarkowitzRow[row], m.MarkowitzCol[row])
		m.adjustSingletons(oldMarkowitzRow, m.MarkowitzProd[row])
	}

	if col != step {
		m.colExchange(step, col)
		m.MarkowitzProd[col] = markowitzProduct(m.MarkowitzCol[col], m.MarkowitzRow[col])
		m.adjustSingletons(oldMarkowitzCol, m.MarkowitzProd[col])
		m.Diags[col] = m.findDiag(col)
	}

	if row != step {
		m.Diags[row] = m.findDiag(row)
	}
	m.Diags[step] = m.findDiag(step)

	m.MarkowitzProd[step] = markowitzProduct(m.MarkowitzRow[step], m.MarkowitzCol[step])
	m.adjustSingletons(oldMarkowitzStep, m.MarkowitzProd[step])
}

func (m *Matrix) adjustSingletons(before, after int64) {
	switch {
	case before == 0 && after != 0:
		m.Singletons--
	case before != 0 && after == 0:
		m.Singletons++
	}
}

// rowExchange swaps two internal rows. Both the row and column chains are
// updated, so rows must be linked.
func (m *Matrix) rowExchange(row1, row2 int64) {
	if row1 > row2 {
		row1, row2 = row2, row1
	}

	row1Ptr := m.FirstInRow[row1]
	row2Ptr := m.FirstInRow[row2]

	for row1Ptr != nil || row2Ptr != nil {
		var column int64
		var element1, element2 *Element

		switch {
		case row1Ptr == nil:
			column = row2Ptr.Col
			element2 = row2Ptr
			row2Ptr = row2Ptr.NextInRow
		case row2Ptr == nil:
			column = row1Ptr.Col
			element1 = row1Ptr
			row1Ptr = row1Ptr.NextInRow
		case row1Ptr.Col < row2Ptr.Col:
			column = row1Ptr.Col
			element1 = row1Ptr
			row1Ptr = row1Ptr.NextInRow
		case row1Ptr.Col > row2Ptr.Col:
			column = row2Ptr.Col
			element2 = row2Ptr
			row2Ptr = row2Ptr.NextInRow
		default:
			column = row1Ptr.Col
			element1 = row1Ptr
			element2 = row2Ptr
			row1Ptr = row1Ptr.NextInRow
			row2Ptr = row2Ptr.NextInRow
		}

		m.exchangeColElements(row1, element1, row2, element2, column)
	}

	m.MarkowitzRow[row1], m.MarkowitzRow[row2] = m.MarkowitzRow[row2], m.MarkowitzRow[row1]
	m.FirstInRow[row1], m.FirstInRow[row2] = m.FirstInRow[row2], m.FirstInRow[row1]
	m.IntToExtRowMap[row1], m.IntToExtRowMap[row2] = m.IntToExtRowMap[row2], m.IntToExtRowMap[row1]

	m.ExtToIntRowMap[m.IntToExtRowMap[row1]] = row1
	m.ExtToIntRowMap[m.IntToExtRowMap[row2]] = row2
}

func (m *Matrix) colExchange(col1, col2 int64) {
	if col1 > col2 {
		col1, col2 = col2, col1
	}

	col1Ptr := m.FirstInCol[col1]
	col2Ptr := m.FirstInCol[col2]

	for col1Ptr != nil || col2Ptr != nil {
		var row int64
		var element1, element2 *Element

		switch {
		case col1Ptr == nil:
			row = col2Ptr.Row
			element2 = col2Ptr
			col2Ptr = col2Ptr.NextInCol
		case col2Ptr == nil:
			row = col1Ptr.Row
			element1 = col1Ptr
			col1Ptr = col1Ptr.NextInCol
		case col1Ptr.Row < col2Ptr.Row:
			row = col1Ptr.Row
			element1 = col1Ptr
			col1Ptr = col1Ptr.NextInCol
		case col1Ptr.Row > col2Ptr.Row:
			row = col2Ptr.Row
			element2 = col2Ptr
			col2Ptr = col2Ptr.NextInCol
		default:
			row = col1Ptr.Row
			element1 = col1Ptr
			element2 = col2Ptr
			col1Ptr = col1Ptr.NextInCol
			col2Ptr = col2Ptr.NextInCol
		}

		m.exchangeRowElements(col1, element1, col2, element2, row)
	}

	m.MarkowitzCol[col1], m.MarkowitzCol[col2] = m.MarkowitzCol[col2], m.MarkowitzCol[col1]
	m.FirstInCol[col1], m.FirstInCol[col2] = m.FirstInCol[col2], m.FirstInCol[col1]
	m.IntToExtColMap[col1], m.IntToExtColMap[col2] = m.IntToExtColMap[col2], m.IntToExtColMap[col1]

	m.ExtToIntColMap[m.IntToExtColMap[col1]] = col1
	m.ExtToIntColMap[m.IntToExtColMap[col2]] = col2
}

// exchangeColElements relinks column chain `column` after rows row1 < row2
// have traded places. element1 and element2 are the entries of the two rows
// in that column, either of which may be nil.
func (m *Matrix) exchangeColElements(row1 int64, element1 *Element, row2 int64, element2 *Element, column int64) {
	var aboveRow2 **Element

	aboveRow1 := &m.FirstInCol[column]
	current := *aboveRow1
	for current.Row < row1 {
		aboveRow1 = &current.NextInCol
		current = *aboveRow1
	}

	if element1 != nil {
		belowRow1 := element1.NextInCol
		if element2 == nil {
			if belowRow1 != nil && belowRow1.Row < row2 {
				*aboveRow1 = belowRow1

				current = belowRow1
				for current != nil && current.Row < row2 {
					aboveRow2 = &current.NextInCol
					current = *aboveRow2
				}

				*aboveRow2 = element1
				element1.NextInCol = current
			}
			element1.Row = row2
			return
		}

		if belowRow1.Row == row2 {
			element1.NextInCol = element2.NextInCol
			element2.NextInCol = element1
			*aboveRow1 = element2
		} else {
			current = belowRow1
			for current.Row < row2 {
				aboveRow2 = &current.NextInCol
				current = *aboveRow2
			}

			belowRow2 := element2.NextInCol

			*aboveRow1 = element2
			element2.NextInCol = belowRow1
			*aboveRow2 = element1
			element1.NextInCol = belowRow2
		}
		element1.Row = row2
		element2.Row = row1
		return
	}

	belowRow1 := current
	if belowRow1.Row != row2 {
		for current.Row < row2 {
			aboveRow2 = &current.NextInCol
			current = *aboveRow2
		}

		belowRow2 := element2.NextInCol

		*aboveRow2 = belowRow2
		*aboveRow1 = element2
		element2.NextInCol = belowRow1
	}
	element2.Row = row1
}

func (m *Matrix) exchangeRowElements(col1 int64, element1 *Element, col2 int64, element2 *Element, row int64) {
	var leftOfCol2 **Element

	leftOfCol1 := &m.FirstInRow[row]
	current := *leftOfCol1
	for current.Col < col1 {
		leftOfCol1 = &current.NextInRow
		current = *leftOfCol1
	}

	if element1 != nil {
		rightOfCol1 := element1.NextInRow
		if element2 == nil {
			if rightOfCol1 != nil && rightOfCol1.Col < col2 {
				*leftOfCol1 = rightOfCol1

				current = rightOfCol1
				for current != nil && current.Col < col2 {
					leftOfCol2 = &current.NextInRow
					current = *leftOfCol2
				}

				*leftOfCol2 = element1
				element1.NextInRow = current
			}
			element1.Col = col2
			return
		}

		if rightOfCol1.Col == col2 {
			element1.NextInRow = element2.NextInRow
			element2.NextInRow = element1
			*leftOfCol1 = element2
		} else {
			current = rightOfCol1
			for current.Col < col2 {
				leftOfCol2 = &current.NextInRow
				current = *leftOfCol2
			}

			rightOfCol2 := element2.NextInRow

			*leftOfCol1 = element2
			element2.NextInRow = rightOfCol1
			*leftOfCol2 = element1
			element1.NextInRow = rightOfCol2
		}
		element1.Col = col2
		element2.Col = col1
		return
	}

	rightOfCol1 := current
	if rightOfCol1.Col != col2 {
		for current.Col < col2 {
			leftOfCol2 = &current.NextInRow
			current = *leftOfCol2
		}

		rightOfCol2 := element2.NextInRow

		*leftOfCol2 = rightOfCol2
		*leftOfCol1 = element2
		element2.NextInRow = rightOfCol1
	}
	element2.Col = col1
}
