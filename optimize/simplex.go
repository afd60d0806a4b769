package optimize

import (
	"math"
)

// DS is a downhill simplex (Nelder–Mead) maximizer. It needs no
// gradient and no external libraries, at the price of slower
// convergence than LBFGSB.
type DS struct {
	BaseOptimizer
	ftol    float64
	maxIter int
	points  [][]float64
	l       []float64
	psum    []float64
}

// NewDS creates a new downhill simplex optimizer.
func NewDS() (ds *DS) {
	ds = &DS{
		ftol:    TINY,
		maxIter: 1000,
	}
	return
}

// createSimplex builds the initial simplex around the starting point,
// displacing every dimension by a tenth of its bound width.
func (ds *DS) createSimplex(start []float64) {
	ndim := len(start)
	bounds := ds.Bounds()
	ds.points = make([][]float64, ndim+1)
	ds.l = make([]float64, ndim+1)
	for i := range ds.points {
		point := append([]float64(nil), start...)
		if i > 0 {
			j := i - 1
			d := 0.1 * (bounds[j][1] - bounds[j][0])
			if point[j]+d > bounds[j][1] {
				d = -d
			}
			point[j] += d
		}
		ds.points[i] = point
		ds.l[i] = ds.evaluateBounded(point)
	}
}

// calcPsum computes per-dimension sums over the simplex vertices.
func (ds *DS) calcPsum() {
	ds.psum = make([]float64, len(ds.points[0]))
	for i := range ds.psum {
		for _, point := range ds.points {
			ds.psum[i] += point[i]
		}
	}
}

// amotry extrapolates by factor fac through the face of the simplex
// across from the low point and replaces the low point if the new
// point is better.
func (ds *DS) amotry(ilo int, fac float64) float64 {
	ds.calcPsum()
	ndim := len(ds.points[0])
	try := make([]float64, ndim)
	fac1 := (1 - fac) / float64(ndim)
	fac2 := fac1 - fac
	for j := 0; j < ndim; j++ {
		try[j] = ds.psum[j]*fac1 - ds.points[ilo][j]*fac2
	}
	l := ds.evaluateBounded(try)
	if l > ds.l[ilo] {
		ds.points[ilo] = try
		ds.l[ilo] = l
	}
	return l
}

// Run maximizes the likelihood.
func (ds *DS) Run() {
	ds.createSimplex(ds.Start())

	for i := 1; i <= ds.maxIter; i++ {
		// lowest (worst), next-lowest and highest points
		var ilo, inlo, ihi int
		if ds.l[0] < ds.l[1] {
			ilo, inlo, ihi = 0, 1, 1
		} else {
			ilo, inlo, ihi = 1, 0, 0
		}
		for j := 2; j < len(ds.points); j++ {
			switch {
			case ds.l[j] < ds.l[ilo]:
				inlo = ilo
				ilo = j
			case ds.l[j] < ds.l[inlo]:
				inlo = j
			}
			if ds.l[j] >= ds.l[ihi] {
				ihi = j
			}
		}

		rtol := 2 * math.Abs(ds.l[ihi]-ds.l[ilo]) /
			(math.Abs(ds.l[ihi]) + math.Abs(ds.l[ilo]) + TINY)
		if rtol < ds.ftol {
			break
		}
		if i%10 == 0 {
			log.Debugf("%d: L=%f (%f)", i, ds.l[ihi], ds.l[ihi]-ds.l[ilo])
		}

		l := ds.amotry(ilo, -1)
		switch {
		case l >= ds.l[ihi]:
			ds.amotry(ilo, 2)
		case l <= ds.l[inlo]:
			lsave := ds.l[ilo]
			l = ds.amotry(ilo, 0.5)
			if l <= lsave {
				// shrink the simplex towards the best point
				for j, point := range ds.points {
					if j == ihi {
						continue
					}
					for k := range point {
						point[k] = 0.5 * (point[k] + ds.points[ihi][k])
					}
					ds.l[j] = ds.evaluateBounded(point)
				}
			}
		}
	}

	log.Info("Finished downhill simplex")
	log.Noticef("Maximum likelihood: %v", ds.maxL)
	log.Infof("Parameter  names: %v", ds.Names())
	log.Infof("Parameter values: %v", ds.maxLPar)
}
