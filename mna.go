package spsolve

// PreorderMNA moves the ±1 entries of voltage sources and other ideal
// branches onto the diagonal. Modified nodal matrices have structural zeros
// there, which otherwise force the pivot search out of the fast diagonal
// paths. It has to run before the first ordering and does nothing after.
//
// A zero diagonal at column j is fixed by swapping j with the column k of a
// twin pair, entries of magnitude 1 at (k, j) and (j, k). Columns with a
// single twin pair are swapped first since the choice is forced; columns
// with several are resolved one at a time afterwards.
func (m *Matrix) PreorderMNA() {
	if m.Reordered || m.RowsLinked || !m.Config.ModifiedNodal {
		return
	}

	startAt := int64(1)
	for {
		anotherPassNeeded := false
		swapped := false

		for j := startAt; j <= m.Size; j++ {
			if m.Diags[j] != nil {
				continue
			}
			twins, twin1, twin2 := m.countTwins(j)
			if twins == 1 {
				m.swapCols(twin1, twin2)
				swapped = true
			} else if twins > 1 && !anotherPassNeeded {
				anotherPassNeeded = true
				startAt = j
			}
		}

		if !anotherPassNeeded {
			break
		}

		// no forced swap happened; break the tie at the first open column
		for j := startAt; !swapped && j <= m.Size; j++ {
			if m.Diags[j] != nil {
				continue
			}
			if twins, twin1, twin2 := m.countTwins(j); twins > 0 {
				m.swapCols(twin1, twin2)
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}

	if m.Config.Annotate >= AnnotateFull {
		m.logger.Debug("mna preorder done")
	}
}

// countTwins counts twin pairs in column col, stopping at two. The Col
// fields of the first pair are set for swapCols.
func (m *Matrix) countTwins(col int64) (twins int, twin1, twin2 *Element) {
	for candidate := m.FirstInCol[col]; candidate != nil; candidate = candidate.NextInCol {
		if m.elementMag(candidate) != 1.0 {
			continue
		}

		row := candidate.Row
		partner := m.FirstInCol[row]
		for partner != nil && partner.Row != col {
			partner = partner.NextInCol
		}
		if partner == nil || m.elementMag(partner) != 1.0 {
			continue
		}

		twins++
		if twins >= 2 {
			return twins, twin1, twin2
		}
		twin1, twin2 = candidate, partner
		twin1.Col = col
		twin2.Col = row
	}
	return twins, twin1, twin2
}

func (m *Matrix) swapCols(twin1, twin2 *Element) {
	col1 := twin1.Col
	col2 := twin2.Col

	m.FirstInCol[col1], m.FirstInCol[col2] = m.FirstInCol[col2], m.FirstInCol[col1]
	m.IntToExtColMap[col1], m.IntToExtColMap[col2] = m.IntToExtColMap[col2], m.IntToExtColMap[col1]
	m.ExtToIntColMap[m.IntToExtColMap[col1]] = col1
	m.ExtToIntColMap[m.IntToExtColMap[col2]] = col2

	m.Diags[col1] = twin2
	m.Diags[col2] = twin1
	twin1.Col = col2
	twin2.Col = col1
	m.NeedsOrdering = true
}
