package main

import (
	"flag"
	"fmt"
	"image/color"
	"math/rand"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/edp1096/spsolve"
)

// spy loads a random nodal matrix, factors it and plots where the original
// entries and the fill-ins ended up in pivot order.
func main() {
	size := flag.Int64("n", 60, "number of nodes")
	branches := flag.Int("b", 3, "random branches per node")
	seed := flag.Int64("seed", 1, "random seed")
	output := flag.String("o", "spy.png", "output image")
	flag.Parse()

	A, err := spsolve.Create(*size, nil)
	if err != nil {
		panic(err)
	}
	defer A.Destroy()

	rng := rand.New(rand.NewSource(*seed))
	for node := int64(1); node <= *size; node++ {
		var g spsolve.Template
		if err = A.GetAdmittance(node, 0, &g); err != nil {
			panic(err)
		}
		g.AddRealQuad(1e-3)

		for range *branches {
			other := rng.Int63n(*size) + 1
			if other == node {
				continue
			}
			if err = A.GetAdmittance(node, other, &g); err != nil {
				panic(err)
			}
			g.AddRealQuad(1.0 / (1.0 + 1e3*rng.Float64()))
		}
	}

	if err = A.Factor(); err != nil {
		panic(err)
	}

	var original, fillins plotter.XYs
	for _, p := range A.Pattern(true) {
		xy := plotter.XY{X: float64(p.Col), Y: float64(p.Row)}
		if p.Fillin {
			fillins = append(fillins, xy)
		} else {
			original = append(original, xy)
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d x %d, %d elements, %d fill-ins", A.GetSize(false), A.GetSize(false), A.ElementCount(), A.FillinCount())
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	if err = addSeries(p, "original", original, color.RGBA{A: 255}); err != nil {
		panic(err)
	}
	if err = addSeries(p, "fill-in", fillins, color.RGBA{R: 220, A: 255}); err != nil {
		panic(err)
	}

	if err = p.Save(6*vg.Inch, 6*vg.Inch, *output); err != nil {
		panic(err)
	}
	fmt.Printf("wrote %s\n", *output)
}

func addSeries(p *plot.Plot, name string, xys plotter.XYs, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = draw.BoxGlyph{}
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s)
	p.Legend.Add(name, s)
	return nil
}
