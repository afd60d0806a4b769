package optimize

import (
	"math"

	lbfgsb "github.com/idavydov/go-lbfgsb"
)

// LBFGSB maximizes the likelihood with the bounded limited-memory
// Broyden–Fletcher–Goldfarb–Shanno method. The gradient is computed
// with central finite differences.
type LBFGSB struct {
	BaseOptimizer
	dH   float64
	grad []float64
}

// NewLBFGSB creates a new LBFGSB optimizer.
func NewLBFGSB() (l *LBFGSB) {
	l = &LBFGSB{
		dH: 1e-6,
	}
	return
}

// Logger reports optimization progress.
func (l *LBFGSB) Logger(info *lbfgsb.OptimizationIterationInformation) {
	log.Debugf("%d: L=%f", info.Iteration, -info.F)
}

// EvaluateFunction returns the negated likelihood (the library
// minimizes).
func (l *LBFGSB) EvaluateFunction(x []float64) float64 {
	if !l.inRange(x) {
		return math.Inf(+1)
	}
	return -l.evaluate(x)
}

// EvaluateGradient computes the gradient of the negated likelihood.
func (l *LBFGSB) EvaluateGradient(x []float64) (grad []float64) {
	if l.grad == nil {
		l.grad = make([]float64, len(x))
	}
	grad = l.grad
	point := make([]float64, len(x))
	for i := range x {
		copy(point, x)
		point[i] = x[i] - l.dH
		l1 := -l.evaluateBounded(point)
		point[i] = x[i] + l.dH
		l2 := -l.evaluateBounded(point)
		grad[i] = (l2 - l1) / 2 / l.dH
	}
	return
}

// Run maximizes the likelihood.
func (l *LBFGSB) Run() {
	bounds := make([][2]float64, len(l.Bounds()))
	for i, b := range l.Bounds() {
		// keep the finite-difference probes inside the bounds
		bounds[i][0] = b[0] + 2*l.dH
		bounds[i][1] = b[1] - 2*l.dH
	}

	opt := new(lbfgsb.Lbfgsb)
	opt.SetApproximationSize(10)
	opt.SetFTolerance(1e-9)
	opt.SetGTolerance(1e-9)

	opt.SetBounds(bounds)
	opt.SetLogger(l.Logger)

	_, exitStatus := opt.Minimize(l, l.Start())

	log.Info("Exit status: ", exitStatus)
	log.Info("Finished LBFGSB")
	log.Noticef("Maximum likelihood: %v", l.maxL)
	log.Infof("Parameter  names: %v", l.Names())
	log.Infof("Parameter values: %v", l.maxLPar)
}
