package spsolve

import "math"

func (m *Matrix) elementMag(e *Element) float64 {
	if m.Complex {
		return math.Abs(e.Real) + math.Abs(e.Imag)
	}
	return math.Abs(e.Real)
}

func (e *Element) complex() complex128 {
	return complex(e.Real, e.Imag)
}

func (e *Element) setComplex(c complex128) {
	e.Real = real(c)
	e.Imag = imag(c)
}

// complex1Norm is the magnitude used for pivoting, |re| + |im|.
func complex1Norm(c complex128) float64 {
	return math.Abs(real(c)) + math.Abs(imag(c))
}

// grow extends s to length n keeping its contents.
func grow[T any](s []T, n int64) []T {
	if int64(len(s)) >= n {
		return s
	}
	if int64(cap(s)) >= n {
		return s[:n]
	}
	grown := make([]T, n)
	copy(grown, s)
	return grown
}

func (m *Matrix) ElementCount() int {
	return m.Elements
}

func (m *Matrix) FillinCount() int {
	return m.Fillins
}

// GetSize returns the number of internal rows, or the largest external index
// when external is set.
func (m *Matrix) GetSize(external bool) int64 {
	if external {
		return m.ExtSize
	}
	return m.Size
}
