package inference

import "math"

// geneFactor returns the probability of the gene count of person i
// under the hypothesis: the unconditional prior for founders, the
// two-parent transmission probability for children.
func (m *Model) geneFactor(pop *Population, h Hypothesis, i int) float64 {
	n := h.GeneCount(i)
	if pop.IsFounder(i) {
		return m.GenePrior[n]
	}

	// Probability of each parent passing the variant allele on.
	tm := m.transmission(h.GeneCount(pop.mother[i]))
	tf := m.transmission(h.GeneCount(pop.father[i]))

	switch n {
	case 0:
		return (1 - tm) * (1 - tf)
	case 1:
		return (1-tm)*tf + tm*(1-tf)
	}
	return tm * tf
}

// Joint returns the probability that the entire population
// simultaneously matches the hypothesis: for every person the gene
// factor times the trait emission probability.
func (m *Model) Joint(pop *Population, h Hypothesis) float64 {
	p := 1.0
	for i := range pop.names {
		p *= m.geneFactor(pop, h, i)
		p *= m.TraitGivenGene[h.GeneCount(i)][h.traitIndex(i)]
	}
	return p
}

// LogJoint returns the natural logarithm of the joint probability.
// It avoids underflow for populations where the product of many
// small factors is below the smallest positive float64.
func (m *Model) LogJoint(pop *Population, h Hypothesis) float64 {
	logp := 0.0
	for i := range pop.names {
		logp += math.Log(m.geneFactor(pop, h, i))
		logp += math.Log(m.TraitGivenGene[h.GeneCount(i)][h.traitIndex(i)])
	}
	return logp
}

// logAddExp returns log(exp(a) + exp(b)) without leaving log space.
func logAddExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}
