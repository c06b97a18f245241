package spsolve

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

func Create(size int64, config *Configuration) (*Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrAllocation, size)
	}

	if config == nil {
		config = DefaultConfiguration()
	}
	cfg := *config
	defaults := DefaultConfiguration()
	if cfg.RelThreshold <= 0.0 || cfg.RelThreshold > 1.0 {
		cfg.RelThreshold = defaults.RelThreshold
	}
	if cfg.AbsThreshold < 0.0 {
		cfg.AbsThreshold = defaults.AbsThreshold
	}
	if cfg.TiesMultiplier <= 0 {
		cfg.TiesMultiplier = defaults.TiesMultiplier
	}
	if cfg.SpaceForElements <= 0 {
		cfg.SpaceForElements = defaults.SpaceForElements
	}
	if cfg.SpaceForFillIns <= 0 {
		cfg.SpaceForFillIns = defaults.SpaceForFillIns
	}
	if cfg.ElementsPerAllocation <= 0 {
		cfg.ElementsPerAllocation = defaults.ElementsPerAllocation
	}
	if cfg.PrinterWidth <= 0 {
		cfg.PrinterWidth = defaults.PrinterWidth
	}

	m := &Matrix{
		Config:        cfg,
		ID:            uuid.New(),
		Complex:       cfg.Complex,
		RelThreshold:  cfg.RelThreshold,
		AbsThreshold:  cfg.AbsThreshold,
		NeedsOrdering: true,
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m.logger = logger.With(slog.String("matrix", m.ID.String()))

	m.pool.init(int(size)*cfg.SpaceForElements, max(cfg.ElementsPerAllocation, int(size)*cfg.SpaceForFillIns))
	m.growInternal(size)
	m.growExternal(size)

	// Without translation external index i starts out at internal position i.
	if !cfg.Translate {
		for ext := int64(1); ext <= size; ext++ {
			if _, err := m.assign(ext); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// Clear zeroes every value, fill-ins included, and keeps the structure.
func (m *Matrix) Clear() {
	for col := m.Size; col > 0; col-- {
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			element.Real = 0.0
			element.Imag = 0.0
		}
	}
	m.trash = Element{gen: m.trash.gen}

	m.Factored = false
	m.PivotCount = 0
	m.resumeStep = 0
	m.scaled = false
	m.original = nil
	m.SingularCol = 0
	m.SingularRow = 0
}

// ResetTopologyChanged forces the next Factor to redo the ordering.
func (m *Matrix) ResetTopologyChanged() {
	m.NeedsOrdering = true
	m.resumeStep = 0
}

func (m *Matrix) Destroy() {
	m.DoRealDirect = nil
	m.DoComplexDirect = nil

	m.IntToExtColMap = nil
	m.IntToExtRowMap = nil
	m.ExtToIntColMap = nil
	m.ExtToIntRowMap = nil
	m.baseRowMap = nil
	m.baseColMap = nil
	m.hasBase = false

	m.Diags = nil
	m.FirstInRow = nil
	m.FirstInCol = nil
	m.Intermediate = nil
	m.intermediateComplex = nil
	m.scratch = nil
	m.MarkowitzRow = nil
	m.MarkowitzCol = nil
	m.MarkowitzProd = nil
	m.rowScale = nil
	m.colScale = nil
	m.original = nil
	m.pool.reset()

	m.Elements = 0
	m.Fillins = 0
	m.Singletons = 0

	m.Size = 0
	m.ExtSize = 0
	m.CurrentSize = 0
	m.AllocatedSize = 0
	m.AllocatedExt = 0
	m.PivotCount = 0
	m.NeedsOrdering = false
	m.Partitioned = false
	m.Factored = false
	m.Reordered = false
	m.RowsLinked = false
}

// GetElement returns the element at external (row, col), creating it when
// missing. Repeated calls return the same element. Row or column 0 is ground
// and yields a trash element whose value is never used. A nil result means
// the index is invalid.
func (m *Matrix) GetElement(row, col int64) *Element {
	element, err := m.getElement(row, col)
	if err != nil {
		return nil
	}
	return element
}

// FindElement returns the element at external (row, col) or nil.
func (m *Matrix) FindElement(row, col int64) *Element {
	if row < 1 || col < 1 {
		return nil
	}
	intRow, intCol, err := m.translate(row, col, false)
	if err != nil {
		return nil
	}
	for element := m.FirstInCol[intCol]; element != nil && element.Row <= intRow; element = element.NextInCol {
		if element.Row == intRow {
			return element
		}
	}
	return nil
}

// Element returns a handle to the element at external (row, col). When the
// element is missing it is created if create is set, otherwise ErrNoElement
// is returned.
func (m *Matrix) Element(row, col int64, create bool) (Handle, error) {
	if row < 0 || col < 0 {
		return Handle{}, fmt.Errorf("%w: (%d, %d)", ErrIndexOutOfRange, row, col)
	}

	var element *Element
	if create || row == 0 || col == 0 {
		var err error
		if element, err = m.getElement(row, col); err != nil {
			return Handle{}, err
		}
	} else if element = m.FindElement(row, col); element == nil {
		return Handle{}, fmt.Errorf("%w: (%d, %d)", ErrNoElement, row, col)
	}

	return Handle{elem: element, gen: element.gen}, nil
}

// AddToElement accumulates value into the real part of the element.
func (m *Matrix) AddToElement(h Handle, value float64) {
	if m.Config.Debug && !h.Valid() {
		panic("spsolve: stale element handle")
	}
	h.elem.Real += value
}

// AddComplexToElement accumulates (real, imag) into the element.
func (m *Matrix) AddComplexToElement(h Handle, real, imag float64) {
	if m.Config.Debug && !h.Valid() {
		panic("spsolve: stale element handle")
	}
	h.elem.Real += real
	h.elem.Imag += imag
}

func (m *Matrix) getElement(row, col int64) (*Element, error) {
	if row < 0 || col < 0 {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrIndexOutOfRange, row, col)
	}
	if row == 0 || col == 0 {
		return &m.trash, nil
	}

	intRow, intCol, err := m.translate(row, col, true)
	if err != nil {
		return nil, err
	}

	element := m.Diags[intRow]
	if intRow != intCol || element == nil {
		element = m.createElement(intRow, intCol, &m.FirstInRow[intRow], &m.FirstInCol[intCol], false)
	}

	// a stamped fill-in belongs to the matrix now and must survive StripFills
	if element.fillin {
		element.fillin = false
		m.Fillins--
	}
	return element, nil
}

// createElement finds or inserts the element at internal (row, col). The
// column search starts at *firstInCol and the row insertion at *firstInRow,
// which lets elimination pass pointers into the middle of a chain.
func (m *Matrix) createElement(row, col int64, firstInRow, firstInCol **Element, fillin bool) *Element {
	current := *firstInCol
	prev := firstInCol
	for current != nil && current.Row < row {
		prev = &current.NextInCol
		current = current.NextInCol
	}

	if current != nil && current.Row == row {
		return current
	}

	element := m.pool.get()
	element.Row = row
	element.Col = col
	element.fillin = fillin

	if fillin {
		m.Fillins++

		m.MarkowitzRow[row]++
		m.MarkowitzProd[row] = markowitzProduct(m.MarkowitzRow[row], m.MarkowitzCol[row])
		if m.MarkowitzRow[row] == 1 && m.MarkowitzCol[row] != 0 {
			m.Singletons--
		}

		m.MarkowitzCol[col]++
		m.MarkowitzProd[col] = markowitzProduct(m.MarkowitzCol[col], m.MarkowitzRow[col])
		if m.MarkowitzRow[col] != 0 && m.MarkowitzCol[col] == 1 {
			m.Singletons--
		}
	} else {
		m.NeedsOrdering = true
		m.resumeStep = 0
	}

	m.Elements++

	element.NextInCol = current
	*prev = element

	if m.RowsLinked {
		current = *firstInRow
		prev = firstInRow
		for current != nil && current.Col < col {
			prev = &current.NextInRow
			current = current.NextInRow
		}
		element.NextInRow = current
		*prev = element
	}

	if row == col {
		m.Diags[row] = element
	}

	return element
}

func (m *Matrix) release(element *Element) {
	m.Elements--
	if element.fillin {
		m.Fillins--
	}
	m.pool.put(element)
}

// LinkRows builds the row chains from the column chains. Columns are walked
// backwards so every row comes out sorted by column.
func (m *Matrix) LinkRows() {
	for row := m.Size; row >= 1; row-- {
		m.FirstInRow[row] = nil
	}

	for col := m.Size; col >= 1; col-- {
		element := m.FirstInCol[col]
		for element != nil {
			element.Col = col
			element.NextInRow = m.FirstInRow[element.Row]
			m.FirstInRow[element.Row] = element
			element = element.NextInCol
		}
	}

	m.RowsLinked = true
}

// translate maps external (row, col) to internal indices. With create set a
// new external index is given the next free internal position.
func (m *Matrix) translate(row, col int64, create bool) (int64, int64, error) {
	if err := m.ensureExternal(row, create); err != nil {
		return -1, -1, err
	}
	if err := m.ensureExternal(col, create); err != nil {
		return -1, -1, err
	}

	intRow := m.ExtToIntRowMap[row]
	intCol := m.ExtToIntColMap[col]
	if intRow < 1 || intCol < 1 {
		if create {
			return -1, -1, fmt.Errorf("%w: (%d, %d) was deleted", ErrIndexOutOfRange, row, col)
		}
		return -1, -1, ErrNoElement
	}
	return intRow, intCol, nil
}

func (m *Matrix) ensureExternal(ext int64, create bool) error {
	if ext > m.AllocatedExt {
		if !create {
			return ErrNoElement
		}
		if !m.Config.Expandable {
			return fmt.Errorf("%w: %d exceeds fixed size %d", ErrIndexOutOfRange, ext, m.AllocatedExt)
		}
		m.growExternal(max(ext, m.AllocatedExt+m.AllocatedExt/2))
	}

	if !create || m.ExtToIntRowMap[ext] != -1 || m.ExtToIntColMap[ext] != -1 {
		return nil
	}

	if !m.Config.Translate {
		// every skipped index gets its own position so numbering stays dense
		for skipped := m.ExtSize + 1; skipped < ext; skipped++ {
			if _, err := m.assign(skipped); err != nil {
				return err
			}
		}
	}
	_, err := m.assign(ext)
	return err
}

// assign gives external index ext the next internal position, both as a row
// and as a column so that diagonal stays diagonal.
func (m *Matrix) assign(ext int64) (int64, error) {
	in := m.CurrentSize + 1
	if in > m.AllocatedSize {
		if !m.Config.Expandable {
			return -1, fmt.Errorf("%w: matrix size %d is fixed", ErrIndexOutOfRange, m.AllocatedSize)
		}
		m.growInternal(max(in, m.AllocatedSize+m.AllocatedSize/2))
	}

	m.CurrentSize = in
	m.Size = in
	m.ExtToIntRowMap[ext] = in
	m.ExtToIntColMap[ext] = in
	m.IntToExtRowMap[in] = ext
	m.IntToExtColMap[in] = ext
	if ext > m.ExtSize {
		m.ExtSize = ext
	}
	if m.hasBase {
		m.baseRowMap = append(m.baseRowMap, ext)
		m.baseColMap = append(m.baseColMap, ext)
	}

	m.NeedsOrdering = true
	m.Factored = false
	return in, nil
}

func (m *Matrix) growInternal(size int64) {
	n := size + 2
	m.Diags = grow(m.Diags, n)
	m.FirstInRow = grow(m.FirstInRow, n)
	m.FirstInCol = grow(m.FirstInCol, n)
	m.MarkowitzRow = grow(m.MarkowitzRow, n)
	m.MarkowitzCol = grow(m.MarkowitzCol, n)
	m.MarkowitzProd = grow(m.MarkowitzProd, n)
	m.DoRealDirect = grow(m.DoRealDirect, n)
	m.DoComplexDirect = grow(m.DoComplexDirect, n)
	m.IntToExtRowMap = grow(m.IntToExtRowMap, n)
	m.IntToExtColMap = grow(m.IntToExtColMap, n)
	m.Intermediate = grow(m.Intermediate, n)
	m.scratch = grow(m.scratch, n)
	if m.Complex {
		m.intermediateComplex = grow(m.intermediateComplex, n)
	}
	m.AllocatedSize = size
	m.Partitioned = false
}

func (m *Matrix) growExternal(size int64) {
	old := int64(len(m.ExtToIntRowMap))
	m.ExtToIntRowMap = grow(m.ExtToIntRowMap, size+1)
	m.ExtToIntColMap = grow(m.ExtToIntColMap, size+1)
	for ext := max(old, 1); ext <= size; ext++ {
		m.ExtToIntRowMap[ext] = -1
		m.ExtToIntColMap[ext] = -1
	}
	m.AllocatedExt = size
}

// DeleteRowAndCol removes external row and column from the system. The pair
// is moved to the last internal position and unlinked there, so the matrix
// shrinks by one. Handles into the removed chains become stale.
func (m *Matrix) DeleteRowAndCol(row, col int64) error {
	if row < 1 || col < 1 || row > m.AllocatedExt || col > m.AllocatedExt {
		return fmt.Errorf("%w: (%d, %d)", ErrIndexOutOfRange, row, col)
	}
	intRow := m.ExtToIntRowMap[row]
	intCol := m.ExtToIntColMap[col]
	if intRow < 1 || intCol < 1 {
		return fmt.Errorf("%w: (%d, %d)", ErrIndexOutOfRange, row, col)
	}

	if !m.RowsLinked {
		m.LinkRows()
	}

	last := m.Size
	if intRow != last {
		m.rowExchange(intRow, last)
	}
	if intCol != last {
		m.colExchange(intCol, last)
	}

	for element := m.FirstInRow[last]; element != nil; {
		next := element.NextInRow
		m.unlinkFromCol(element)
		m.release(element)
		element = next
	}
	for element := m.FirstInCol[last]; element != nil; {
		next := element.NextInCol
		m.unlinkFromRow(element)
		m.release(element)
		element = next
	}

	m.FirstInRow[last] = nil
	m.FirstInCol[last] = nil
	m.Diags[last] = nil
	m.ExtToIntRowMap[m.IntToExtRowMap[last]] = -1
	m.ExtToIntColMap[m.IntToExtColMap[last]] = -1
	m.IntToExtRowMap[last] = 0
	m.IntToExtColMap[last] = 0

	m.Size--
	m.CurrentSize--
	if intRow <= m.Size {
		m.Diags[intRow] = m.findDiag(intRow)
	}
	if intCol <= m.Size {
		m.Diags[intCol] = m.findDiag(intCol)
	}

	m.hasBase = false
	m.baseRowMap = nil
	m.baseColMap = nil
	m.NeedsOrdering = true
	m.Partitioned = false
	m.Factored = false
	m.PivotCount = 0
	m.resumeStep = 0
	return nil
}

func (m *Matrix) unlinkFromCol(element *Element) {
	pp := &m.FirstInCol[element.Col]
	for *pp != nil && *pp != element {
		pp = &(*pp).NextInCol
	}
	if *pp == element {
		*pp = element.NextInCol
	}
}

func (m *Matrix) unlinkFromRow(element *Element) {
	pp := &m.FirstInRow[element.Row]
	for *pp != nil && *pp != element {
		pp = &(*pp).NextInRow
	}
	if *pp == element {
		*pp = element.NextInRow
	}
}
