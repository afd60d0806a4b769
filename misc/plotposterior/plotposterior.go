// plotposterior renders the per-person posterior gene-count
// distributions of a pedigree as a grouped bar chart.
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/fkozlov/heredity/inference"
	"bitbucket.org/fkozlov/heredity/pedigree"
)

func main() {
	mutation := flag.Float64("mutation", 0.01, "allele mutation probability")
	out := flag.String("o", "posterior.png", "output file name")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: plotposterior [options] pedigree.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		panic(err)
	}
	ped, err := pedigree.ParseCSV(f)
	f.Close()
	if err != nil {
		panic(err)
	}

	pop, err := inference.NewPopulation(ped)
	if err != nil {
		panic(err)
	}

	m := inference.DefaultModel()
	m.MutationRate = *mutation

	res, err := inference.Run(pop, m, nil)
	if err != nil {
		panic(err)
	}

	p, err := plot.New()
	if err != nil {
		panic(err)
	}
	p.Title.Text = "Posterior gene-count distribution"
	p.Y.Label.Text = "probability"
	p.Y.Max = 1

	names := res.Posterior.Names()
	w := vg.Points(12)
	for n := 0; n < inference.NGene; n++ {
		vals := make(plotter.Values, len(names))
		for i, name := range names {
			vals[i] = res.Posterior.Gene(name)[n]
		}
		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			panic(err)
		}
		bars.Color = plotutil.Color(n)
		bars.Offset = vg.Length(n-1) * w
		p.Add(bars)
		p.Legend.Add(fmt.Sprintf("%d copies", n), bars)
	}
	p.Legend.Top = true
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, *out); err != nil {
		panic(err)
	}
}
