package optimize

import (
	"fmt"
	"math"
	"testing"

	"github.com/op/go-logging"
)

const smallDiff = 1e-3

func init() {
	// disable logging for tests
	logging.SetLevel(logging.ERROR, "optimize")
}

// parabola is a concave test likelihood with the maximum at Peak.
type parabola struct {
	Peak []float64
}

func (p *parabola) Names() []string {
	names := make([]string, len(p.Peak))
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}

func (p *parabola) Bounds() [][2]float64 {
	bounds := make([][2]float64, len(p.Peak))
	for i := range bounds {
		bounds[i] = [2]float64{0, 1}
	}
	return bounds
}

func (p *parabola) Start() []float64 {
	start := make([]float64, len(p.Peak))
	for i := range start {
		start[i] = 0.5
	}
	return start
}

func (p *parabola) Likelihood(x []float64) float64 {
	l := 0.0
	for i, v := range x {
		l -= (v - p.Peak[i]) * (v - p.Peak[i])
	}
	return l
}

func TestDS(tst *testing.T) {
	ds := NewDS()
	ds.SetOptimizable(&parabola{Peak: []float64{0.3, 0.8}})
	ds.Run()

	x := ds.MaxLParameters()
	tst.Log("x=", x, ", L=", ds.MaxL(), ", calls=", ds.Calls())
	if math.Abs(x[0]-0.3) > smallDiff || math.Abs(x[1]-0.8) > smallDiff {
		tst.Error("Expected maximum near (0.3, 0.8), got", x)
	}
}

func TestLBFGSB(tst *testing.T) {
	l := NewLBFGSB()
	l.SetOptimizable(&parabola{Peak: []float64{0.3}})
	l.Run()

	x := l.MaxLParameters()
	tst.Log("x=", x, ", L=", l.MaxL(), ", calls=", l.Calls())
	if math.Abs(x[0]-0.3) > smallDiff {
		tst.Error("Expected maximum near 0.3, got", x)
	}
}

func TestSummary(tst *testing.T) {
	ds := NewDS()
	ds.SetOptimizable(&parabola{Peak: []float64{0.3}})
	ds.Run()

	s := ds.Summary()
	if s.Calls == 0 {
		tst.Error("Expected likelihood calls in the summary")
	}
	if math.Abs(s.MaxLParameters["x0"]-0.3) > smallDiff {
		tst.Error("Wrong parameter in the summary:", s.MaxLParameters)
	}
}
