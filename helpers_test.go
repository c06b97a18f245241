package spsolve

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type entry struct {
	row, col int64
	value    float64
}

// dense3 is the diagonally dominant tridiagonal system used throughout.
var dense3 = []entry{
	{1, 1, 4}, {1, 2, 1},
	{2, 1, 1}, {2, 2, 3}, {2, 3, 1},
	{3, 2, 1}, {3, 3, 2},
}

// unsymmetric3 is [[4,1,2],[1,3,1],[1,1,2]].
var unsymmetric3 = []entry{
	{1, 1, 4}, {1, 2, 1}, {1, 3, 2},
	{2, 1, 1}, {2, 2, 3}, {2, 3, 1},
	{3, 1, 1}, {3, 2, 1}, {3, 3, 2},
}

// randomSystem returns a sparse, diagonally dominant n x n matrix with
// about perRow off-diagonal entries in every row.
func randomSystem(rng *rand.Rand, n, perRow int) []entry {
	entries := make([]entry, 0, n*(perRow+1))
	rowSum := make([]float64, n+1)
	for row := 1; row <= n; row++ {
		for k := 0; k < perRow; k++ {
			col := rng.Intn(n) + 1
			if col == row {
				continue
			}
			v := 2*rng.Float64() - 1
			entries = append(entries, entry{int64(row), int64(col), v})
			if v < 0 {
				v = -v
			}
			rowSum[row] += v
		}
	}
	for row := 1; row <= n; row++ {
		entries = append(entries, entry{int64(row), int64(row), rowSum[row] + 0.5 + rng.Float64()})
	}
	return entries
}

func randomVector(rng *rand.Rand, n int) []float64 {
	b := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		b[i] = 2*rng.Float64() - 1
	}
	return b
}

func newMatrix(t *testing.T, size int64, configure func(*Configuration)) *Matrix {
	t.Helper()
	config := DefaultConfiguration()
	if configure != nil {
		configure(config)
	}
	m, err := Create(size, config)
	require.NoError(t, err)
	t.Cleanup(m.Destroy)
	return m
}

// load stamps entries through handles and returns the handles in the same
// order so tests can reload values after Clear.
func load(t *testing.T, m *Matrix, entries []entry) []Handle {
	t.Helper()
	handles := make([]Handle, len(entries))
	for i, e := range entries {
		h, err := m.Element(e.row, e.col, true)
		require.NoError(t, err)
		m.AddToElement(h, e.value)
		handles[i] = h
	}
	return handles
}

func reload(m *Matrix, handles []Handle, entries []entry) {
	m.Clear()
	for i, h := range handles {
		m.AddToElement(h, entries[i].value)
	}
}

func denseOf(n int, entries []entry) *mat.Dense {
	a := mat.NewDense(n, n, nil)
	for _, e := range entries {
		r, c := int(e.row)-1, int(e.col)-1
		a.Set(r, c, a.At(r, c)+e.value)
	}
	return a
}

// relativeResidual returns ‖A x − b‖₂ / ‖b‖₂ for 1-based x and b.
func relativeResidual(a mat.Matrix, x, b []float64) float64 {
	n, _ := a.Dims()
	var ax mat.VecDense
	ax.MulVec(a, mat.NewVecDense(n, append([]float64(nil), x[1:n+1]...)))
	r := make([]float64, n)
	floats.SubTo(r, ax.RawVector().Data, b[1:n+1])
	return floats.Norm(r, 2) / floats.Norm(b[1:n+1], 2)
}

// referenceSolve solves with gonum's dense LU and returns a 1-based vector.
func referenceSolve(t *testing.T, a *mat.Dense, b []float64, transposed bool) []float64 {
	t.Helper()
	n, _ := a.Dims()
	var lu mat.LU
	lu.Factorize(a)
	var x mat.VecDense
	require.NoError(t, lu.SolveVecTo(&x, transposed, mat.NewVecDense(n, append([]float64(nil), b[1:n+1]...))))
	return append([]float64{0}, x.RawVector().Data...)
}

// factorValues lists every stored value in column order, pivot order.
func factorValues(m *Matrix) []float64 {
	var values []float64
	for col := int64(1); col <= m.Size; col++ {
		for element := m.FirstInCol[col]; element != nil; element = element.NextInCol {
			values = append(values, element.Real, element.Imag)
		}
	}
	return values
}
