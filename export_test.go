package spsolve

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDenseAndCSR(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, unsymmetric3)
	want := denseOf(3, unsymmetric3)

	dense, err := m.Dense()
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, dense))

	csr, err := m.ToCSR()
	require.NoError(t, err)
	assert.Equal(t, 9, csr.NNZ())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, want.At(i, j), csr.At(i, j))
		}
	}

	require.NoError(t, m.Factor())
	_, err = m.Dense()
	assert.ErrorIs(t, err, ErrFactored)
	_, err = m.ToCSR()
	assert.ErrorIs(t, err, ErrFactored)
}

func TestDenseTranslated(t *testing.T) {
	m := newMatrix(t, 2, func(c *Configuration) { c.Translate = true })
	load(t, m, []entry{{3, 3, 2}, {3, 1, -1}, {1, 1, 5}})

	dense, err := m.Dense()
	require.NoError(t, err)
	r, c := dense.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 2.0, dense.At(2, 2))
	assert.Equal(t, -1.0, dense.At(2, 0))
	assert.Equal(t, 5.0, dense.At(0, 0))
	assert.Zero(t, dense.At(1, 1))
}

func TestPattern(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, dense3)

	pattern := m.Pattern(false)
	require.Len(t, pattern, len(dense3))
	assert.Equal(t, Position{Row: 1, Col: 1}, pattern[0])
	assert.Equal(t, Position{Row: 2, Col: 1}, pattern[1])
	for _, p := range pattern {
		assert.False(t, p.Fillin)
	}
}

func TestFprintPattern(t *testing.T) {
	m := newMatrix(t, 2, nil)
	load(t, m, []entry{{1, 1, 1}, {2, 2, 1}})

	var buf bytes.Buffer
	require.NoError(t, m.Fprint(&buf, false, false, false))
	assert.Equal(t, "x.\n.x\n\n", buf.String())
}

func TestFprintSummary(t *testing.T) {
	m := newMatrix(t, 3, nil)
	load(t, m, dense3)

	var buf bytes.Buffer
	require.NoError(t, m.Fprint(&buf, false, true, true))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "MATRIX SUMMARY"))
	assert.Contains(t, out, "Size of matrix = 3 x 3.")
	assert.Contains(t, out, "Matrix before factorization:")
	assert.Contains(t, out, "Largest element in matrix = 4.")
	assert.NotContains(t, out, "fill-ins")

	require.NoError(t, m.Factor())
	buf.Reset()
	require.NoError(t, m.Fprint(&buf, true, true, true))
	assert.Contains(t, buf.String(), "Matrix after factorization:")
	assert.Contains(t, buf.String(), "Number of fill-ins = 0.")
}

func TestFprintComplex(t *testing.T) {
	m := newMatrix(t, 3, func(c *Configuration) { c.Complex = true })
	loadComplex(t, m, complex3)

	var buf bytes.Buffer
	require.NoError(t, m.Fprint(&buf, false, true, false))
	assert.Contains(t, buf.String(), "j")
}
