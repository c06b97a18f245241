package spsolve

import (
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSolveTransposed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	entries := randomSystem(rng, 30, 3)
	a := denseOf(30, entries)

	m := newMatrix(t, 30, nil)
	load(t, m, entries)
	require.NoError(t, m.Factor())

	b := randomVector(rng, 30)
	x, err := m.SolveTransposed(b)
	require.NoError(t, err)
	assert.Less(t, relativeResidual(a.T(), x, b), 1e-9)
	assert.True(t, floats.EqualApprox(referenceSolve(t, a, b, true), x, 1e-9))
}

func TestSolveErrors(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, dense3)

	_, err := m.Solve([]float64{0, 1, 2, 3})
	assert.ErrorIs(t, err, ErrNotFactored)

	require.NoError(t, m.Factor())
	_, err = m.Solve([]float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, _, err = m.SolveComplex([]float64{0, 0, 1, 0, 2, 0, 3, 0}, nil)
	assert.ErrorIs(t, err, ErrNotComplex)

	c := newMatrix(t, 1, func(c *Configuration) { c.Complex = true })
	load(t, c, []entry{{1, 1, 2}})
	require.NoError(t, c.Factor())
	_, err = c.Solve([]float64{0, 1})
	assert.ErrorIs(t, err, ErrComplex)
}

func TestSolveDoesNotModifyRHS(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, unsymmetric3)
	require.NoError(t, m.Factor())

	b := []float64{0, 12, 10, 9}
	x, err := m.Solve(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 12, 10, 9}, b)
	assert.InDeltaSlice(t, []float64{0, 1, 2, 3}, x, 1e-12)
}

var complex3 = [][]complex128{
	{4 + 1i, 1, 0},
	{1, 3 - 2i, 1i},
	{0, 1, 2 + 1i},
}

func loadComplex(t *testing.T, m *Matrix, a [][]complex128) {
	t.Helper()
	for i, row := range a {
		for j, v := range row {
			if v == 0 {
				continue
			}
			h, err := m.Element(int64(i+1), int64(j+1), true)
			require.NoError(t, err)
			m.AddComplexToElement(h, real(v), imag(v))
		}
	}
}

func complexResidual(a [][]complex128, x, b []complex128, transposed bool) float64 {
	worst := 0.0
	for i := range a {
		sum := complex(0, 0)
		for j := range a {
			if transposed {
				sum += a[j][i] * x[j]
			} else {
				sum += a[i][j] * x[j]
			}
		}
		worst = max(worst, cmplx.Abs(sum-b[i]))
	}
	return worst
}

func TestSolveComplexInterleaved(t *testing.T) {
	m := newMatrix(t, 3, func(c *Configuration) { c.Complex = true })
	loadComplex(t, m, complex3)
	require.NoError(t, m.Factor())

	b := []complex128{1, 2i, 3}
	rhs := []float64{0, 0, 1, 0, 0, 2, 3, 0}

	for _, transposed := range []bool{false, true} {
		var x []float64
		var err error
		if transposed {
			x, _, err = m.SolveComplexTransposed(rhs, nil)
		} else {
			x, _, err = m.SolveComplex(rhs, nil)
		}
		require.NoError(t, err)
		require.Len(t, x, 8)

		solution := []complex128{complex(x[2], x[3]), complex(x[4], x[5]), complex(x[6], x[7])}
		assert.Less(t, complexResidual(complex3, solution, b, transposed), 1e-12)
	}
}

func TestSolveComplexSeparated(t *testing.T) {
	m := newMatrix(t, 3, func(c *Configuration) {
		c.Complex = true
		c.SeparatedComplexVectors = true
	})
	loadComplex(t, m, complex3)
	require.NoError(t, m.Factor())

	re, im, err := m.SolveComplex([]float64{0, 1, 0, 3}, []float64{0, 0, 2, 0})
	require.NoError(t, err)

	solution := []complex128{complex(re[1], im[1]), complex(re[2], im[2]), complex(re[3], im[3])}
	assert.Less(t, complexResidual(complex3, solution, []complex128{1, 2i, 3}, false), 1e-12)

	_, _, err = m.SolveComplex([]float64{0, 1, 0, 3}, []float64{0, 0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestComplexRefactor(t *testing.T) {
	m := newMatrix(t, 3, func(c *Configuration) { c.Complex = true })
	loadComplex(t, m, complex3)
	require.NoError(t, m.Factor())
	first := factorValues(m)

	m.Clear()
	loadComplex(t, m, complex3)
	require.NoError(t, m.Factor())
	assert.Equal(t, first, factorValues(m))

	m.Config.VerifyPivots = false
	m.Clear()
	loadComplex(t, m, complex3)
	require.NoError(t, m.Factor())

	x, _, err := m.SolveComplex([]float64{0, 0, 1, 0, 0, 2, 3, 0}, nil)
	require.NoError(t, err)
	solution := []complex128{complex(x[2], x[3]), complex(x[4], x[5]), complex(x[6], x[7])}
	assert.Less(t, complexResidual(complex3, solution, []complex128{1, 2i, 3}, false), 1e-12)
}

func TestRefine(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	entries := randomSystem(rng, 40, 3)
	a := denseOf(40, entries)

	m := newMatrix(t, 40, func(c *Configuration) { c.Refine = true })
	load(t, m, entries)
	require.NoError(t, m.Factor())
	require.NotNil(t, m.original)

	b := randomVector(rng, 40)
	x, err := m.Solve(b)
	require.NoError(t, err)
	assert.Less(t, relativeResidual(a, x, b), 1e-12)
}

func TestMultiply(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, unsymmetric3)

	y, err := m.Multiply([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 12, 10, 9}, y)

	y, err = m.MultiplyTransposed([]float64{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 9, 10, 10}, y)

	_, err = m.Multiply([]float64{0, 1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	require.NoError(t, m.Factor())
	_, err = m.Multiply([]float64{0, 1, 2, 3})
	assert.ErrorIs(t, err, ErrFactored)
}

func TestScale(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	entries := randomSystem(rng, 20, 3)
	b := randomVector(rng, 20)
	want := referenceSolve(t, denseOf(20, entries), b, false)
	wantT := referenceSolve(t, denseOf(20, entries), b, true)

	rowScale := make([]float64, 21)
	colScale := make([]float64, 21)
	for i := range rowScale {
		rowScale[i] = 0.5 + rng.Float64()
		colScale[i] = 1.0 / (0.5 + rng.Float64())
	}

	m := newMatrix(t, 20, nil)
	load(t, m, entries)
	require.NoError(t, m.Scale(rowScale, colScale))
	require.NoError(t, m.Factor())

	x, err := m.Solve(b)
	require.NoError(t, err)
	assert.True(t, floats.EqualApprox(want, x, 1e-9))

	x, err = m.SolveTransposed(b)
	require.NoError(t, err)
	assert.True(t, floats.EqualApprox(wantT, x, 1e-9))

	det, err := m.Determinant()
	require.NoError(t, err)
	assert.InEpsilon(t, mat.Det(denseOf(20, entries)), det, 1e-9)

	assert.ErrorIs(t, m.Scale(rowScale, colScale), ErrFactored)
	m.Clear()
	assert.False(t, m.scaled)
	assert.ErrorIs(t, m.Scale(rowScale[:3], colScale), ErrDimensionMismatch)
}

func TestScaleComplex(t *testing.T) {
	m := newMatrix(t, 3, func(c *Configuration) { c.Complex = true })
	loadComplex(t, m, complex3)
	require.NoError(t, m.Scale([]float64{1, 2, 0.5, 4}, []float64{1, 0.25, 3, 1}))
	require.NoError(t, m.Factor())

	x, _, err := m.SolveComplex([]float64{0, 0, 1, 0, 0, 2, 3, 0}, nil)
	require.NoError(t, err)
	solution := []complex128{complex(x[2], x[3]), complex(x[4], x[5]), complex(x[6], x[7])}
	assert.Less(t, complexResidual(complex3, solution, []complex128{1, 2i, 3}, false), 1e-12)
}
