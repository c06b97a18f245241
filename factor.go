package spsolve

import (
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"

	"github.com/james-bowman/sparse"
)

// OrderAndFactor chooses a pivot order and factors the matrix in one pass.
// relThreshold outside (0, 1] and a negative absThreshold keep the current
// values. rhs, when given, is counted in the Markowitz row counts.
//
// When an ordering already exists it is reused for as long as its pivots
// pass the threshold test; ordering restarts at the first pivot that fails.
// After a NeedsReorderError from Factor the ordering resumes at the failing
// step without reloading the matrix.
func (m *Matrix) OrderAndFactor(rhs []float64, relThreshold, absThreshold float64, diagPivoting bool) error {
	if relThreshold > 0.0 && relThreshold <= 1.0 {
		m.RelThreshold = relThreshold
	}
	if absThreshold >= 0.0 {
		m.AbsThreshold = absThreshold
	}
	return m.orderAndFactor(rhs, diagPivoting)
}

func (m *Matrix) orderAndFactor(rhs []float64, diagPivoting bool) error {
	if m.Factored {
		return nil
	}

	var step int64
	switch {
	case m.resumeStep > 0:
		step = m.resumeStep
		if m.Config.Annotate >= AnnotateUnusual {
			m.logger.Info("resuming ordering", slog.Int64("step", step))
		}
	case !m.NeedsOrdering:
		m.beginFactor()
		if !m.RowsLinked {
			m.LinkRows()
		}
		if step = m.reuseOrdering(1); step > m.Size {
			m.finishFactor()
			return nil
		}
		if m.Config.Annotate >= AnnotateUnusual {
			m.logger.Info("cached pivot rejected, reordering", slog.Int64("step", step))
		}
	default:
		m.beginFactor()
		m.prepareOrdering()
		if err := m.checkStructure(); err != nil {
			return err
		}
		step = 1
	}
	m.resumeStep = 0

	if !m.RowsLinked {
		m.LinkRows()
	}
	m.countMarkowitz(rhs, step)
	m.markowitzProducts(step)

	for ; step <= m.Size; step++ {
		pivot := m.searchForPivot(step, diagPivoting)
		if pivot == nil || m.elementMag(pivot) <= m.AbsThreshold {
			m.NeedsOrdering = true
			return m.singularInSubmatrix(step)
		}

		m.exchangeRowsAndCols(pivot, step)
		m.eliminate(pivot)
		m.PivotCount = step
		m.updateMarkowitzNumbers(pivot)

		m.logStatus(step)
	}

	m.Reordered = true
	m.Partitioned = false
	m.finishFactor()
	return nil
}

// Factor factors the matrix with the existing pivot order, ordering first
// when the structure changed since the last ordering.
func (m *Matrix) Factor() error {
	if m.Factored {
		return nil
	}
	if m.NeedsOrdering || m.resumeStep > 0 {
		return m.orderAndFactor(nil, m.Config.DiagonalPivoting)
	}

	m.beginFactor()

	if m.Config.VerifyPivots {
		if !m.RowsLinked {
			m.LinkRows()
		}
		step := m.reuseOrdering(1)
		if step > m.Size {
			m.finishFactor()
			return nil
		}

		if m.columnIsZero(step, step) {
			m.NeedsOrdering = true
			return m.singularInSubmatrix(step)
		}

		m.resumeStep = step
		row, col := m.IntToExtRowMap[step], m.IntToExtColMap[step]
		if m.Config.Annotate >= AnnotateUnusual {
			m.logger.Warn("pivot order unstable",
				slog.Int64("step", step), slog.Int64("row", row), slog.Int64("col", col))
		}
		return &NeedsReorderError{Step: step, Row: row, Col: col}
	}

	if !m.Partitioned {
		if err := m.Partition(DEFAULT_PARTITION); err != nil {
			return err
		}
	}

	var err error
	if m.Complex {
		err = m.factorComplex()
	} else {
		err = m.factorReal()
	}
	if err != nil {
		return err
	}
	m.finishFactor()
	return nil
}

// reuseOrdering runs right-looking elimination in the current order from
// step on and returns the first step whose pivot fails the threshold test,
// or Size+1 when every pivot passed.
func (m *Matrix) reuseOrdering(step int64) int64 {
	for ; step <= m.Size; step++ {
		pivot := m.Diags[step]
		if pivot == nil {
			return step
		}

		magnitude := m.elementMag(pivot)
		largestInCol := m.findBiggestInCol(pivot.NextInCol)
		if magnitude <= m.AbsThreshold || largestInCol*m.RelThreshold >= magnitude {
			return step
		}

		m.eliminate(pivot)
		m.PivotCount = step
	}
	return step
}

func (m *Matrix) columnIsZero(col, step int64) bool {
	for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
		if element.Row >= step && m.elementMag(element) > m.AbsThreshold {
			return false
		}
	}
	return true
}

// beginFactor records what the condition estimator and refinement need from
// the unfactored values.
func (m *Matrix) beginFactor() {
	m.Factored = false
	m.PivotCount = 0

	m.norm = 0.0
	for col := int64(1); col <= m.Size; col++ {
		sum := 0.0
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			if m.Complex {
				sum += cmplx.Abs(element.complex())
			} else {
				sum += math.Abs(element.Real)
			}
		}
		m.norm = max(m.norm, sum)
	}

	m.original = nil
	if m.Config.Refine && !m.Complex {
		n := int(m.ExtSize) + 1
		dok := sparse.NewDOK(n, n)
		for col := int64(1); col <= m.Size; col++ {
			for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
				if element.Real != 0.0 {
					dok.Set(int(m.IntToExtRowMap[element.Row]), int(m.IntToExtColMap[col]), element.Real)
				}
			}
		}
		m.original = dok.ToCSR()
	}
}

func (m *Matrix) finishFactor() {
	m.PivotCount = m.Size
	m.Factored = true
	m.NeedsOrdering = false
	m.resumeStep = 0

	if m.Config.Annotate >= AnnotateUnusual {
		m.logger.Debug("factored",
			slog.Int64("size", m.Size),
			slog.Int("elements", m.Elements),
			slog.Int("fillins", m.Fillins))
	}
}

// checkStructure rejects a matrix with an empty row or column before any
// work is done.
func (m *Matrix) checkStructure() error {
	for i := int64(1); i <= m.Size; i++ {
		if m.FirstInRow[i] == nil {
			return m.singular(i, m.IntToExtRowMap[i], m.IntToExtColMap[i])
		}
		if m.FirstInCol[i] == nil {
			return m.singular(i, m.IntToExtRowMap[i], m.IntToExtColMap[i])
		}
	}
	return nil
}

// singularInSubmatrix reports the failure at step, naming a row and a column
// of the remaining submatrix with no usable entry when there are any.
func (m *Matrix) singularInSubmatrix(step int64) error {
	row, col := int64(-1), int64(-1)
	for i := step; i <= m.Size && (row < 0 || col < 0); i++ {
		if row < 0 && m.rowIsZero(i, step) {
			row = i
		}
		if col < 0 && m.columnIsZero(i, step) {
			col = i
		}
	}
	if row < 0 {
		row = step
	}
	if col < 0 {
		col = step
	}
	return m.singular(step, m.IntToExtRowMap[row], m.IntToExtColMap[col])
}

func (m *Matrix) rowIsZero(row, step int64) bool {
	if !m.RowsLinked {
		return false
	}
	for element := m.FirstInRow[row]; element != nil; element = element.NextInRow {
		if element.Col >= step && m.elementMag(element) > m.AbsThreshold {
			return false
		}
	}
	return true
}

func (m *Matrix) singular(step, row, col int64) error {
	m.Factored = false
	m.SingularRow = row
	m.SingularCol = col
	if m.Config.Annotate >= AnnotateUnusual {
		m.logger.Warn("singular matrix",
			slog.Int64("step", step), slog.Int64("row", row), slog.Int64("col", col))
	}
	return &SingularError{Step: step, Row: row, Col: col}
}

// factorReal is the left-looking factorization used when pivots are not
// verified. Column step is brought up to date from the columns left of it,
// either in a dense scratch vector or in place through pointers, whichever
// Partition found cheaper.
func (m *Matrix) factorReal() error {
	for step := int64(1); step <= m.Size; step++ {
		diag := m.Diags[step]
		if diag == nil {
			return m.singular(step, m.IntToExtRowMap[step], m.IntToExtColMap[step])
		}

		var pivot float64
		if m.DoRealDirect[step] {
			dest := m.Intermediate
			for element := m.FirstInCol[step]; element != nil; element = element.NextInCol {
				dest[element.Row] = element.Real
			}

			for column := m.FirstInCol[step]; column.Row < step; column = column.NextInCol {
				element := m.Diags[column.Row]
				column.Real = dest[column.Row] * element.Real
				for element = element.NextInCol; element != nil; element = element.NextInCol {
					dest[element.Row] -= column.Real * element.Real
				}
			}

			for element := diag.NextInCol; element != nil; element = element.NextInCol {
				element.Real = dest[element.Row]
			}
			pivot = dest[step]
		} else {
			dest := m.scratch
			for element := m.FirstInCol[step]; element != nil; element = element.NextInCol {
				dest[element.Row] = element
			}

			for column := m.FirstInCol[step]; column.Row < step; column = column.NextInCol {
				element := m.Diags[column.Row]
				column.Real *= element.Real
				for element = element.NextInCol; element != nil; element = element.NextInCol {
					dest[element.Row].Real -= column.Real * element.Real
				}
			}
			pivot = diag.Real
		}

		if math.Abs(pivot) <= m.AbsThreshold {
			return m.singular(step, m.IntToExtRowMap[step], m.IntToExtColMap[step])
		}
		diag.Real = 1.0 / pivot
		m.PivotCount = step
	}
	return nil
}

func (m *Matrix) factorComplex() error {
	for step := int64(1); step <= m.Size; step++ {
		diag := m.Diags[step]
		if diag == nil {
			return m.singular(step, m.IntToExtRowMap[step], m.IntToExtColMap[step])
		}

		var pivot complex128
		if m.DoComplexDirect[step] {
			dest := m.intermediateComplex
			for element := m.FirstInCol[step]; element != nil; element = element.NextInCol {
				dest[element.Row] = element.complex()
			}

			for column := m.FirstInCol[step]; column.Row < step; column = column.NextInCol {
				element := m.Diags[column.Row]
				mult := dest[column.Row] * element.complex()
				column.setComplex(mult)
				for element = element.NextInCol; element != nil; element = element.NextInCol {
					dest[element.Row] -= mult * element.complex()
				}
			}

			for element := diag.NextInCol; element != nil; element = element.NextInCol {
				element.setComplex(dest[element.Row])
			}
			pivot = dest[step]
		} else {
			dest := m.scratch
			for element := m.FirstInCol[step]; element != nil; element = element.NextInCol {
				dest[element.Row] = element
			}

			for column := m.FirstInCol[step]; column.Row < step; column = column.NextInCol {
				element := m.Diags[column.Row]
				mult := column.complex() * element.complex()
				column.setComplex(mult)
				for element = element.NextInCol; element != nil; element = element.NextInCol {
					target := dest[element.Row]
					target.setComplex(target.complex() - mult*element.complex())
				}
			}
			pivot = diag.complex()
		}

		if complex1Norm(pivot) <= m.AbsThreshold {
			return m.singular(step, m.IntToExtRowMap[step], m.IntToExtColMap[step])
		}
		diag.setComplex(1 / pivot)
		m.PivotCount = step
	}
	return nil
}

// Partition decides per column whether factorReal and factorComplex use
// direct or indirect addressing. AUTO_PARTITION compares the operation
// counts of both.
func (m *Matrix) Partition(mode int) error {
	if m.Partitioned {
		return nil
	}
	if mode == DEFAULT_PARTITION {
		mode = m.Config.DefaultPartition
	}

	switch mode {
	case DIRECT_PARTITION, INDIRECT_PARTITION:
		direct := mode == DIRECT_PARTITION
		for step := int64(1); step <= m.Size; step++ {
			m.DoRealDirect[step] = direct
			m.DoComplexDirect[step] = direct
		}
		m.Partitioned = true
		return nil
	case AUTO_PARTITION:
	default:
		return fmt.Errorf("spsolve: unknown partition mode %d", mode)
	}

	// the Markowitz vectors are free once ordering is done
	nc := m.MarkowitzRow
	no := m.MarkowitzCol
	nm := m.MarkowitzProd

	for step := int64(1); step <= m.Size; step++ {
		nc[step] = 0
		no[step] = 0
		nm[step] = 0

		for element := m.FirstInCol[step]; element != nil; element = element.NextInCol {
			nc[step]++
		}

		for column := m.FirstInCol[step]; column != nil && column.Row < step; column = column.NextInCol {
			nm[step]++
			for element := m.Diags[column.Row].NextInCol; element != nil; element = element.NextInCol {
				no[step]++
			}
		}
	}

	m.operations = 0
	for step := int64(1); step <= m.Size; step++ {
		m.DoRealDirect[step] = nm[step]+no[step] > 3*nc[step]-2*nm[step]
		m.DoComplexDirect[step] = nm[step]+no[step] > 7*nc[step]-4*nm[step]
		m.operations += int(no[step])
	}

	if m.Config.Annotate >= AnnotateFull {
		m.logger.Debug("partitioned", slog.Int("operations", m.operations))
	}
	m.Partitioned = true
	return nil
}
