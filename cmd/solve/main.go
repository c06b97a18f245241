package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edp1096/spsolve"
)

// Voltage divider: 10 V source on node 1, 1k from 1 to 2, 3k from 2 to
// ground. Unknown 3 is the source current.
func main() {
	var err error

	config := spsolve.DefaultConfiguration()
	config.Annotate = spsolve.AnnotateFull
	config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	A, err := spsolve.Create(3, config)
	if err != nil {
		panic(err)
	}
	defer A.Destroy()

	var source, r1, r2 spsolve.Template
	if err = A.GetOnes(1, 0, 3, &source); err != nil {
		panic(err)
	}
	if err = A.GetAdmittance(1, 2, &r1); err != nil {
		panic(err)
	}
	if err = A.GetAdmittance(2, 0, &r2); err != nil {
		panic(err)
	}

	A.Clear()
	source.AddRealQuad(1.0)
	r1.AddRealQuad(1.0 / 1e3)
	r2.AddRealQuad(1.0 / 3e3)

	// the source branch has no diagonal entry until its twins are swapped in
	A.PreorderMNA()

	if err = A.Fprint(os.Stdout, false, true, true); err != nil {
		panic(err)
	}

	if err = A.Factor(); err != nil {
		panic(err)
	}

	b := make([]float64, 4)
	b[3] = 10.0
	x, err := A.Solve(b)
	if err != nil {
		panic(err)
	}

	cond, err := A.EstimateConditionNumber()
	if err != nil {
		panic(err)
	}

	fmt.Printf("v(1) = %g V\n", x[1])
	fmt.Printf("v(2) = %g V\n", x[2])
	fmt.Printf("i(V1) = %g A\n", x[3])
	fmt.Printf("cond = %g, fill-ins = %d\n", cond, A.FillinCount())
}
