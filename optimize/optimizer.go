// Package optimize provides likelihood maximization for the heredity
// model constants.
package optimize

import (
	"math"

	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("optimize")

// TINY prevents division by zero in the convergence test.
const TINY = 1e-10

// Optimizable is a log-likelihood function of box-bounded parameters.
type Optimizable interface {
	// Names returns the parameter names.
	Names() []string
	// Bounds returns the lower and upper bound for every parameter.
	Bounds() [][2]float64
	// Start returns the starting point.
	Start() []float64
	// Likelihood returns the log-likelihood at point x.
	Likelihood(x []float64) float64
}

// Optimizer maximizes the likelihood of an Optimizable.
type Optimizer interface {
	SetOptimizable(Optimizable)
	Run()
	MaxL() float64
	MaxLParameters() []float64
	Summary() *Summary
}

// Summary stores the optimization result for the JSON output.
type Summary struct {
	// MaxLnL is the maximum log-likelihood found.
	MaxLnL float64 `json:"maxLnL"`
	// MaxLParameters is the maximum-likelihood parameter values.
	MaxLParameters map[string]float64 `json:"maxLParameters"`
	// Calls is the number of likelihood function calls.
	Calls int `json:"likelihoodCalls"`
}

// BaseOptimizer implements the common bookkeeping of optimizers.
type BaseOptimizer struct {
	Optimizable
	maxL    float64
	maxLPar []float64
	calls   int
}

// SetOptimizable sets the function to optimize.
func (o *BaseOptimizer) SetOptimizable(opt Optimizable) {
	o.Optimizable = opt
	o.maxL = math.Inf(-1)
	o.maxLPar = nil
	o.calls = 0
}

// inRange returns true if x is inside the parameter bounds.
func (o *BaseOptimizer) inRange(x []float64) bool {
	for i, b := range o.Bounds() {
		if x[i] < b[0] || x[i] > b[1] {
			return false
		}
	}
	return true
}

// evaluate computes the likelihood at x, keeping track of the maximum
// found so far.
func (o *BaseOptimizer) evaluate(x []float64) float64 {
	l := o.Likelihood(x)
	o.calls++
	if l > o.maxL {
		o.maxL = l
		o.maxLPar = append(o.maxLPar[:0], x...)
	}
	return l
}

// evaluateBounded is evaluate returning -Inf outside the bounds.
func (o *BaseOptimizer) evaluateBounded(x []float64) float64 {
	if !o.inRange(x) {
		return math.Inf(-1)
	}
	return o.evaluate(x)
}

// MaxL returns the maximum likelihood found.
func (o *BaseOptimizer) MaxL() float64 {
	return o.maxL
}

// MaxLParameters returns the maximum-likelihood parameter values.
func (o *BaseOptimizer) MaxLParameters() []float64 {
	return o.maxLPar
}

// Calls returns the number of likelihood function calls.
func (o *BaseOptimizer) Calls() int {
	return o.calls
}

// Summary returns the optimization summary.
func (o *BaseOptimizer) Summary() *Summary {
	pars := make(map[string]float64, len(o.maxLPar))
	for i, name := range o.Names() {
		if i < len(o.maxLPar) {
			pars[name] = o.maxLPar[i]
		}
	}
	return &Summary{
		MaxLnL:         o.maxL,
		MaxLParameters: pars,
		Calls:          o.calls,
	}
}
