package inference

// MutationObjective exposes the evidence likelihood as a function of
// the mutation probability, for maximum-likelihood estimation with
// the optimize package.
type MutationObjective struct {
	Pop  *Population
	Base *Model
}

// Names returns the parameter names.
func (o *MutationObjective) Names() []string {
	return []string{"mutation"}
}

// Bounds returns the box constraints of the parameters.
func (o *MutationObjective) Bounds() [][2]float64 {
	return [][2]float64{{1e-6, 0.5}}
}

// Start returns the starting point, the base model mutation rate.
func (o *MutationObjective) Start() []float64 {
	mu := o.Base.MutationRate
	if mu < 1e-6 || mu > 0.5 {
		mu = 0.01
	}
	return []float64{mu}
}

// Likelihood returns the log-evidence of the observed traits for the
// given mutation probability.
func (o *MutationObjective) Likelihood(x []float64) float64 {
	m := o.Base.Copy()
	m.MutationRate = x[0]
	return LogEvidence(o.Pop, m)
}
