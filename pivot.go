package spsolve

import (
	"log/slog"
	"math"
)

const maxMarkowitzTies = 100

// searchForPivot picks the pivot for step. Cheap searches run first; each
// later one looks at more candidates. A nil result means the remaining
// submatrix holds no nonzero at all.
func (m *Matrix) searchForPivot(step int64, diagPivoting bool) *Element {
	if m.Singletons > 0 {
		if pivot := m.searchForSingleton(step); pivot != nil {
			m.PivotSelectionMethod = 's'
			return pivot
		}
	}

	if diagPivoting {
		if pivot := m.quicklySearchDiagonal(step); pivot != nil {
			m.PivotSelectionMethod = 'q'
			return pivot
		}

		if pivot := m.searchDiagonal(step); pivot != nil {
			m.PivotSelectionMethod = 'd'
			return pivot
		}
	}

	m.PivotSelectionMethod = 'e'
	return m.searchEntireMatrix(step)
}

// acceptable applies the threshold test to a candidate in the unfactored
// submatrix.
func (m *Matrix) acceptable(pivot *Element, step int64) bool {
	magnitude := m.elementMag(pivot)
	return magnitude > m.AbsThreshold && magnitude > m.RelThreshold*m.findBiggestInColExclude(pivot, step)
}

// findBiggestInColExclude returns the largest magnitude among the rows at or
// after step in the column of elem, not counting elem itself.
func (m *Matrix) findBiggestInColExclude(elem *Element, step int64) float64 {
	largest := 0.0
	for current := m.FirstInCol[elem.Col]; current != nil; current = current.NextInCol {
		if current.Row < step || current == elem {
			continue
		}
		if magnitude := m.elementMag(current); magnitude > largest {
			largest = magnitude
		}
	}
	return largest
}

func (m *Matrix) findBiggestInCol(element *Element) float64 {
	largest := 0.0
	for current := element; current != nil; current = current.NextInCol {
		if magnitude := m.elementMag(current); magnitude > largest {
			largest = magnitude
		}
	}
	return largest
}

// searchForSingleton looks for a row or column with a single entry. Such a
// pivot creates no fill. MarkowitzProd[Size+1] mirrors MarkowitzProd[step]
// so the scan visits step first and stops before reaching it again.
func (m *Matrix) searchForSingleton(step int64) *Element {
	m.MarkowitzProd[m.Size+1] = m.MarkowitzProd[step]
	m.MarkowitzProd[step-1] = 0

	singletons := m.Singletons
	m.Singletons--

	index := m.Size + 1
	for ; singletons > 0; singletons-- {
		for index >= step && m.MarkowitzProd[index] != 0 {
			index--
		}

		i := index
		index--
		if i <= step {
			break
		}
		if i > m.Size {
			i = step
		}

		if pivot := m.Diags[i]; pivot != nil {
			if m.acceptable(pivot, step) {
				return pivot
			}
			continue
		}

		if m.MarkowitzCol[i] == 0 {
			pivot := m.FirstInCol[i]
			for pivot != nil && pivot.Row < step {
				pivot = pivot.NextInCol
			}
			if pivot != nil && m.acceptable(pivot, step) {
				return pivot
			}
		}
		if m.MarkowitzRow[i] == 0 {
			pivot := m.FirstInRow[i]
			for pivot != nil && pivot.Col < step {
				pivot = pivot.NextInRow
			}
			if pivot != nil && m.acceptable(pivot, step) {
				return pivot
			}
		}
	}

	m.Singletons++
	return nil
}

// quicklySearchDiagonal scans the diagonal in order of Markowitz product and
// stops at the first symmetric twin pair, the usual shape of a modified
// nodal voltage source. Otherwise the numerically best of the tied minimum
// candidates wins.
func (m *Matrix) quicklySearchDiagonal(step int64) *Element {
	var tied [maxMarkowitzTies + 1]*Element
	numberOfTies := -1
	minMarkowitzProduct := int64(math.MaxInt64)

	m.MarkowitzProd[m.Size+1] = m.MarkowitzProd[step]
	m.MarkowitzProd[step-1] = -1

	index := m.Size + 2
	for {
		index--
		for minMarkowitzProduct < m.MarkowitzProd[index] {
			index--
		}

		i := index
		if i <= step {
			break
		}
		if i > m.Size {
			i = step
		}

		diag := m.Diags[i]
		if diag == nil {
			continue
		}
		magnitude := m.elementMag(diag)
		if magnitude <= m.AbsThreshold {
			continue
		}

		product := m.MarkowitzProd[index]
		if product == 1 {
			otherInRow := diag.NextInRow
			otherInCol := diag.NextInCol

			if otherInRow == nil && otherInCol == nil {
				for otherInRow = m.FirstInRow[i]; otherInRow != nil; otherInRow = otherInRow.NextInRow {
					if otherInRow.Col >= step && otherInRow.Col != i {
						break
					}
				}
				for otherInCol = m.FirstInCol[i]; otherInCol != nil; otherInCol = otherInCol.NextInCol {
					if otherInCol.Row >= step && otherInCol.Row != i {
						break
					}
				}
			}

			if otherInRow != nil && otherInCol != nil && otherInRow.Col == otherInCol.Row {
				largestOffDiag := math.Max(m.elementMag(otherInRow), m.elementMag(otherInCol))
				if magnitude >= largestOffDiag {
					return diag
				}
			}
		}

		if product < minMarkowitzProduct {
			tied[0] = diag
			minMarkowitzProduct = product
			numberOfTies = 0
		} else if numberOfTies < maxMarkowitzTies {
			numberOfTies++
			tied[numberOfTies] = diag
			if int64(numberOfTies) >= minMarkowitzProduct*int64(m.Config.TiesMultiplier) {
				break
			}
		}
	}

	var chosen *Element
	maxRatio := 1.0 / m.RelThreshold
	for _, diag := range tied[:numberOfTies+1] {
		ratio := m.findBiggestInColExclude(diag, step) / m.elementMag(diag)
		if ratio < maxRatio {
			chosen = diag
			maxRatio = ratio
		}
	}
	return chosen
}

// searchDiagonal examines every diagonal candidate, step first and then from
// the bottom up.
func (m *Matrix) searchDiagonal(step int64) *Element {
	var chosen *Element
	minMarkowitzProduct := int64(math.MaxInt64)
	numberOfTies := int64(0)
	ratioOfAccepted := 0.0

	m.MarkowitzProd[m.Size+1] = m.MarkowitzProd[step]

	for j := m.Size + 1; j > step; j-- {
		product := m.MarkowitzProd[j]
		if product > minMarkowitzProduct {
			continue
		}

		i := j
		if j > m.Size {
			i = step
		}

		diag := m.Diags[i]
		if diag == nil {
			continue
		}
		magnitude := m.elementMag(diag)
		if magnitude <= m.AbsThreshold {
			continue
		}

		largestInCol := m.findBiggestInColExclude(diag, step)
		if magnitude <= m.RelThreshold*largestInCol {
			continue
		}

		if product < minMarkowitzProduct {
			chosen = diag
			minMarkowitzProduct = product
			ratioOfAccepted = largestInCol / magnitude
			numberOfTies = 0
			continue
		}

		numberOfTies++
		if ratio := largestInCol / magnitude; ratio < ratioOfAccepted {
			chosen = diag
			ratioOfAccepted = ratio
		}
		if numberOfTies >= minMarkowitzProduct*int64(m.Config.TiesMultiplier) {
			return chosen
		}
	}

	return chosen
}

// searchEntireMatrix is the last resort. When nothing passes the threshold
// test the largest element is used anyway and logged as a small pivot.
func (m *Matrix) searchEntireMatrix(step int64) *Element {
	var chosen, largestElement *Element
	minMarkowitzProduct := int64(math.MaxInt64)
	largestElementMag := 0.0
	numberOfTies := int64(0)
	ratioOfAccepted := 0.0

	for i := step; i <= m.Size; i++ {
		current := m.FirstInCol[i]
		for current != nil && current.Row < step {
			current = current.NextInCol
		}

		largestInCol := m.findBiggestInCol(current)
		if largestInCol == 0.0 {
			continue
		}

		for ; current != nil; current = current.NextInCol {
			magnitude := m.elementMag(current)
			if magnitude > largestElementMag {
				largestElementMag = magnitude
				largestElement = current
			}

			product := markowitzProduct(m.MarkowitzRow[current.Row], m.MarkowitzCol[current.Col])
			if product > minMarkowitzProduct || magnitude <= m.RelThreshold*largestInCol || magnitude <= m.AbsThreshold {
				continue
			}

			if product < minMarkowitzProduct {
				chosen = current
				minMarkowitzProduct = product
				ratioOfAccepted = largestInCol / magnitude
				numberOfTies = 0
				continue
			}

			numberOfTies++
			if ratio := largestInCol / magnitude; ratio < ratioOfAccepted {
				chosen = current
				ratioOfAccepted = ratio
			}
			if numberOfTies >= minMarkowitzProduct*int64(m.Config.TiesMultiplier) {
				return chosen
			}
		}
	}

	if chosen != nil || largestElement == nil {
		return chosen
	}

	if m.Config.Annotate >= AnnotateUnusual {
		m.logger.Warn("small pivot accepted",
			slog.Int64("step", step),
			slog.Int64("row", m.IntToExtRowMap[largestElement.Row]),
			slog.Int64("col", m.IntToExtColMap[largestElement.Col]),
			slog.Float64("magnitude", largestElementMag))
	}
	return largestElement
}
