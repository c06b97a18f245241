package spsolve

import (
	"cmp"

	"golang.org/x/exp/slices"
)

// prepareOrdering puts the matrix back into the arrangement it had when it
// was first ordered, without fill-ins, so that ordering an unchanged pattern
// always starts from the same place and ends with the same pivots.
func (m *Matrix) prepareOrdering() {
	m.stripFills()
	if m.hasBase {
		m.restoreArrangement()
	} else {
		m.captureArrangement()
	}

	m.LinkRows()
	m.Partitioned = false
}

func (m *Matrix) captureArrangement() {
	m.baseRowMap = slices.Clone(m.IntToExtRowMap[1 : m.Size+1])
	m.baseColMap = slices.Clone(m.IntToExtColMap[1 : m.Size+1])
	m.hasBase = true
}

func (m *Matrix) restoreArrangement() {
	elements := make([]*Element, 0, m.Elements)
	for col := int64(1); col <= m.Size; col++ {
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			element.Row = m.IntToExtRowMap[element.Row]
			element.Col = m.IntToExtColMap[col]
			elements = append(elements, element)
		}
		m.FirstInCol[col] = nil
		m.FirstInRow[col] = nil
		m.Diags[col] = nil
	}

	for i, ext := range m.baseRowMap {
		m.IntToExtRowMap[i+1] = ext
		m.ExtToIntRowMap[ext] = int64(i + 1)
	}
	for i, ext := range m.baseColMap {
		m.IntToExtColMap[i+1] = ext
		m.ExtToIntColMap[ext] = int64(i + 1)
	}

	for _, element := range elements {
		element.Row = m.ExtToIntRowMap[element.Row]
		element.Col = m.ExtToIntColMap[element.Col]
	}
	slices.SortFunc(elements, func(a, b *Element) int {
		if c := cmp.Compare(a.Col, b.Col); c != 0 {
			return c
		}
		return cmp.Compare(a.Row, b.Row)
	})

	for i := len(elements) - 1; i >= 0; i-- {
		element := elements[i]
		element.NextInRow = nil
		element.NextInCol = m.FirstInCol[element.Col]
		m.FirstInCol[element.Col] = element
		if element.Row == element.Col {
			m.Diags[element.Row] = element
		}
	}
	m.RowsLinked = false
}

// stripFills unlinks and releases every fill-in from the column chains.
// Row chains are left stale.
func (m *Matrix) stripFills() {
	if m.Fillins == 0 {
		return
	}

	for col := int64(1); col <= m.Size; col++ {
		link := &m.FirstInCol[col]
		for element := *link; element != nil; element = *link {
			if !element.fillin {
				link = &element.NextInCol
				continue
			}
			*link = element.NextInCol
			if m.Diags[col] == element {
				m.Diags[col] = nil
			}
			m.release(element)
		}
	}
	m.RowsLinked = false
}

// StripFills removes every fill-in created by earlier factorizations and
// forces a new ordering.
func (m *Matrix) StripFills() {
	if m.Fillins == 0 {
		return
	}

	m.stripFills()
	m.LinkRows()
	m.NeedsOrdering = true
	m.resumeStep = 0
	m.Factored = false
	m.PivotCount = 0
}
