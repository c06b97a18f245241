package spsolve

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"

	"golang.org/x/exp/slices"
)

var pivotMethods = map[byte]string{
	's': "singleton",
	'q': "quick diagonal",
	'd': "diagonal",
	'e': "entire matrix",
}

// logStatus reports one pivot step at AnnotateFull.
func (m *Matrix) logStatus(step int64) {
	if m.Config.Annotate < AnnotateFull {
		return
	}
	m.logger.Debug("pivot",
		slog.Int64("step", step),
		slog.Int64("row", m.IntToExtRowMap[step]),
		slog.Int64("col", m.IntToExtColMap[step]),
		slog.Int64("found_row", m.PivotsOriginalRow),
		slog.Int64("found_col", m.PivotsOriginalCol),
		slog.String("method", pivotMethods[m.PivotSelectionMethod]),
		slog.Int("singletons", m.Singletons),
		slog.Int("fillins", m.Fillins))
}

// Fprint writes the matrix to w. With reordered set rows and columns appear
// in internal (pivot) order, otherwise in external order. data selects
// values over an x/. pattern and header adds labels and statistics.
func (m *Matrix) Fprint(w io.Writer, reordered, data, header bool) error {
	bw := bufio.NewWriter(w)

	rows := m.printOrder(m.IntToExtRowMap, reordered)
	cols := m.printOrder(m.IntToExtColMap, reordered)

	if header {
		fmt.Fprintf(bw, "MATRIX SUMMARY\n\n")
		fmt.Fprintf(bw, "Size of matrix = %d x %d.\n", m.Size, m.Size)
		if m.Reordered && reordered {
			fmt.Fprintf(bw, "Matrix has been reordered.\n")
		}
		fmt.Fprintln(bw)
		if m.Factored {
			fmt.Fprintf(bw, "Matrix after factorization:\n")
		} else {
			fmt.Fprintf(bw, "Matrix before factorization:\n")
		}
	}

	columns := m.Config.PrinterWidth
	if header {
		columns -= 5
	}
	if data {
		columns = (columns + 1) / 10
	}
	columns = max(columns, 1)

	values := make([]*Element, m.Size+1)
	for start := 0; start < len(cols); start += columns {
		stop := min(start+columns, len(cols))

		if header {
			if data {
				fmt.Fprintf(bw, "    ")
				for _, col := range cols[start:stop] {
					fmt.Fprintf(bw, " %9d", m.label(m.IntToExtColMap, col, reordered))
				}
				fmt.Fprintf(bw, "\n\n")
			} else {
				fmt.Fprintf(bw, "Columns %d to %d.\n",
					m.label(m.IntToExtColMap, cols[start], reordered),
					m.label(m.IntToExtColMap, cols[stop-1], reordered))
			}
		}

		for _, row := range rows {
			if header {
				fmt.Fprintf(bw, "%4d", m.label(m.IntToExtRowMap, row, reordered))
				if !data {
					fmt.Fprintf(bw, " ")
				}
			}

			for i, col := range cols[start:stop] {
				element := m.findInternal(row, col)
				values[i] = element
				switch {
				case element != nil && data:
					fmt.Fprintf(bw, " %9.3g", element.Real)
				case element != nil:
					fmt.Fprintf(bw, "x")
				case data:
					fmt.Fprintf(bw, "       ...")
				default:
					fmt.Fprintf(bw, ".")
				}
			}
			fmt.Fprintln(bw)

			if data && m.Complex {
				if header {
					fmt.Fprintf(bw, "    ")
				}
				for _, element := range values[:stop-start] {
					if element != nil {
						fmt.Fprintf(bw, " %8.2gj", element.Imag)
					} else {
						fmt.Fprintf(bw, "          ")
					}
				}
				fmt.Fprintln(bw)
			}
		}
		fmt.Fprintln(bw)
	}

	if header {
		stats := m.statistics()
		fmt.Fprintf(bw, "\nLargest element in matrix = %-1.4g.\n", stats.largestElement)
		fmt.Fprintf(bw, "Smallest element in matrix = %-1.4g.\n", stats.smallestElement)
		if m.Factored {
			fmt.Fprintf(bw, "\nLargest diagonal element = %-1.4g.\n", stats.largestDiag)
			fmt.Fprintf(bw, "Smallest diagonal element = %-1.4g.\n", stats.smallestDiag)
		} else {
			fmt.Fprintf(bw, "\nLargest pivot element = %-1.4g.\n", stats.largestDiag)
			fmt.Fprintf(bw, "Smallest pivot element = %-1.4g.\n", stats.smallestDiag)
		}
		if m.Size > 0 {
			density := float64(stats.elementCount) * 100.0 / float64(m.Size*m.Size)
			fmt.Fprintf(bw, "\nDensity = %.2f%%.\n", density)
		}
		if !m.NeedsOrdering {
			fmt.Fprintf(bw, "Number of fill-ins = %d.\n", m.Fillins)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// printOrder lists internal indices either as they are or sorted by the
// external index they hold.
func (m *Matrix) printOrder(intToExt []int64, reordered bool) []int64 {
	order := make([]int64, m.Size)
	for i := range order {
		order[i] = int64(i) + 1
	}
	if !reordered {
		slices.SortFunc(order, func(a, b int64) int {
			return int(intToExt[a] - intToExt[b])
		})
	}
	return order
}

func (m *Matrix) label(intToExt []int64, index int64, reordered bool) int64 {
	if reordered {
		return index
	}
	return intToExt[index]
}

func (m *Matrix) findInternal(row, col int64) *Element {
	for element := m.FirstInCol[col]; element != nil && element.Row <= row; element = element.NextInCol {
		if element.Row == row {
			return element
		}
	}
	return nil
}

type matrixStats struct {
	largestElement  float64
	smallestElement float64
	largestDiag     float64
	smallestDiag    float64
	elementCount    int64
}

func (m *Matrix) statistics() matrixStats {
	stats := matrixStats{
		smallestElement: math.MaxFloat64,
		smallestDiag:    math.MaxFloat64,
	}

	for col := int64(1); col <= m.Size; col++ {
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			stats.elementCount++
			magnitude := m.elementMag(element)

			stats.largestElement = max(stats.largestElement, magnitude)
			if magnitude != 0 {
				stats.smallestElement = min(stats.smallestElement, magnitude)
			}

			if element.Row == col {
				stats.largestDiag = max(stats.largestDiag, magnitude)
				if magnitude != 0 {
					stats.smallestDiag = min(stats.smallestDiag, magnitude)
				}
			}
		}
	}

	if stats.smallestElement == math.MaxFloat64 {
		stats.smallestElement = 0
	}
	if stats.smallestDiag == math.MaxFloat64 {
		stats.smallestDiag = 0
	}
	return stats
}
