package spsolve

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEstimateConditionNumber(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, n := range []int{3, 12, 50} {
		entries := randomSystem(rng, n, 3)
		a := denseOf(n, entries)

		var inverse mat.Dense
		require.NoError(t, inverse.Inverse(a))
		exact := mat.Norm(a, 1) * mat.Norm(&inverse, 1)

		m := newMatrix(t, int64(n), nil)
		load(t, m, entries)
		require.NoError(t, m.Factor())

		estimate, err := m.EstimateConditionNumber()
		require.NoError(t, err)
		assert.LessOrEqual(t, estimate, exact*(1+1e-9), "n=%d", n)
		assert.GreaterOrEqual(t, estimate, exact/10, "n=%d", n)
	}
}

func TestEstimateConditionNumberIllConditioned(t *testing.T) {
	entries := []entry{{1, 1, 1}, {1, 2, 1}, {2, 1, 1}, {2, 2, 1 + 1e-8}}
	m := newMatrix(t, 2, nil)
	load(t, m, entries)
	require.NoError(t, m.Factor())

	estimate, err := m.EstimateConditionNumber()
	require.NoError(t, err)
	assert.Greater(t, estimate, 1e7)
}

func TestEstimateConditionNumberComplex(t *testing.T) {
	m := newMatrix(t, 3, func(c *Configuration) { c.Complex = true })
	loadComplex(t, m, complex3)
	norm := m.Norm()
	require.NoError(t, m.Factor())
	assert.Equal(t, norm, m.Norm())

	// exact ‖A⁻¹‖₁ from the columns of the inverse
	inverseNorm := 0.0
	for j := 1; j <= 3; j++ {
		rhs := make([]float64, 8)
		rhs[2*j] = 1
		x, _, err := m.SolveComplex(rhs, nil)
		require.NoError(t, err)
		sum := 0.0
		for i := 1; i <= 3; i++ {
			sum += cmplx.Abs(complex(x[2*i], x[2*i+1]))
		}
		inverseNorm = max(inverseNorm, sum)
	}

	estimate, err := m.EstimateConditionNumber()
	require.NoError(t, err)
	assert.LessOrEqual(t, estimate, norm*inverseNorm*(1+1e-9))
	assert.GreaterOrEqual(t, estimate, norm*inverseNorm/10)
}

func TestConditioningNeedsFactor(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, dense3)

	_, err := m.EstimateConditionNumber()
	assert.ErrorIs(t, err, ErrNotFactored)
	_, err = m.PseudoCondition()
	assert.ErrorIs(t, err, ErrNotFactored)
	_, err = m.Roundoff(-1)
	assert.ErrorIs(t, err, ErrNotFactored)
	_, err = m.Determinant()
	assert.ErrorIs(t, err, ErrNotFactored)
	_, err = m.DeterminantComplex()
	assert.ErrorIs(t, err, ErrNotFactored)
}

func TestNorm(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, unsymmetric3)
	assert.Equal(t, 6.0, m.Norm())

	require.NoError(t, m.Factor())
	assert.Equal(t, 6.0, m.Norm())
}

func TestPseudoCondition(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, []entry{{1, 1, 1}, {2, 2, -4}, {3, 3, 2}})
	require.NoError(t, m.Factor())

	pc, err := m.PseudoCondition()
	require.NoError(t, err)
	assert.InDelta(t, 4.0, pc, 1e-12)
}

func TestLargestElementAndRoundoff(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, unsymmetric3)
	assert.Equal(t, 4.0, m.LargestElement())

	require.NoError(t, m.Factor())
	assert.Positive(t, m.LargestElement())

	bound, err := m.Roundoff(-1)
	require.NoError(t, err)
	assert.Positive(t, bound)
	assert.Less(t, bound, 1e-12)

	explicit, err := m.Roundoff(10)
	require.NoError(t, err)
	assert.Positive(t, explicit)
}

func TestDeterminant(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	cases := map[string][]entry{
		"tridiagonal": dense3,
		"pivoting": {
			{1, 2, 1}, {1, 3, 2},
			{2, 1, 3}, {2, 3, 1},
			{3, 1, 1}, {3, 2, 5}, {3, 3, 1e-8},
		},
		"random": randomSystem(rng, 25, 4),
	}
	for name, entries := range cases {
		n := int64(0)
		for _, e := range entries {
			n = max(n, e.row, e.col)
		}
		m := newMatrix(t, n, nil)
		load(t, m, entries)
		require.NoError(t, m.Factor())

		det, err := m.Determinant()
		require.NoError(t, err)
		assert.InEpsilon(t, mat.Det(denseOf(int(n), entries)), det, 1e-9, name)
	}
}

func TestLogDeterminantAvoidsOverflow(t *testing.T) {
	const n = 200
	entries := make([]entry, 0, n)
	for i := int64(1); i <= n; i++ {
		entries = append(entries, entry{i, i, 1e3})
	}
	entries[0].value = -1e3

	m := newMatrix(t, n, nil)
	load(t, m, entries)
	require.NoError(t, m.Factor())

	logDet, sign, err := m.LogDeterminant()
	require.NoError(t, err)
	assert.Equal(t, -1.0, sign)
	assert.InEpsilon(t, n*math.Log(1e3), logDet, 1e-12)

	det, err := m.Determinant()
	require.NoError(t, err)
	assert.True(t, math.IsInf(det, -1))
}

func TestDeterminantComplex(t *testing.T) {
	m := newMatrix(t, 3, func(c *Configuration) { c.Complex = true })
	loadComplex(t, m, complex3)
	require.NoError(t, m.Factor())

	det, err := m.DeterminantComplex()
	require.NoError(t, err)
	assert.InDelta(t, 32.0, real(det), 1e-12)
	assert.InDelta(t, -1.0, imag(det), 1e-12)

	_, err = m.Determinant()
	assert.ErrorIs(t, err, ErrComplex)

	r := newMatrix(t, 3, nil)
	load(t, r, dense3)
	require.NoError(t, r.Factor())
	_, err = r.DeterminantComplex()
	assert.ErrorIs(t, err, ErrNotComplex)
}
