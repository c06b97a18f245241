package main

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/edp1096/spsolve"
)

const sections = 5

// AC sweep of an RC ladder driven by a 1 A current source at node 1. Each
// section is 1k in series with 1uF to ground.
func main() {
	var err error

	separatedComplexVectors := false

	config := spsolve.DefaultConfiguration()
	config.Complex = true
	config.SeparatedComplexVectors = separatedComplexVectors
	config.Translate = true

	A, err := spsolve.Create(sections, config)
	if err != nil {
		panic(err)
	}
	defer A.Destroy()

	resistors := make([]spsolve.Template, sections)
	capacitors := make([]spsolve.Template, sections)
	for node := int64(1); node <= sections; node++ {
		if node > 1 {
			if err = A.GetAdmittance(node-1, node, &resistors[node-1]); err != nil {
				panic(err)
			}
		} else if err = A.GetAdmittance(1, 0, &resistors[0]); err != nil {
			panic(err)
		}
		if err = A.GetAdmittance(node, 0, &capacitors[node-1]); err != nil {
			panic(err)
		}
	}

	for f := 10.0; f <= 1e6; f *= 10.0 {
		omega := 2.0 * math.Pi * f

		A.Clear()
		for i := range resistors {
			resistors[i].AddRealQuad(1.0 / 1e3)
			capacitors[i].AddImagQuad(1e-6 * omega)
		}

		if err = A.Factor(); err != nil {
			panic(err)
		}

		var out complex128
		if separatedComplexVectors {
			b := make([]float64, sections+1)
			ib := make([]float64, sections+1)
			b[1] = 1.0
			xReal, xImag, err := A.SolveComplex(b, ib)
			if err != nil {
				panic(err)
			}
			out = complex(xReal[sections], xImag[sections])
		} else {
			b := make([]float64, 2*(sections+1))
			b[2] = 1.0
			x, _, err := A.SolveComplex(b, nil)
			if err != nil {
				panic(err)
			}
			out = complex(x[2*sections], x[2*sections+1])
		}

		fmt.Printf("f = %8.0f Hz, |v(%d)| = %.6g, phase = %7.2f deg\n",
			f, sections, cmplx.Abs(out), cmplx.Phase(out)*180.0/math.Pi)
	}
}
