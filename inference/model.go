// Package inference implements exact posterior inference of gene
// counts and trait values for the heredity model.
package inference

import (
	"errors"
	"math"

	"github.com/gonum/matrix/mat64"
	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("inference")

// NGene is the number of gene-count classes (0, 1 or 2 copies).
const NGene = 3

// Trait value indices in emission tables and distributions.
const (
	TraitFalse = iota
	TraitTrue
	NTrait
)

// Model holds the constants of the inheritance model: the
// unconditional gene-count prior for founders, the trait emission
// probabilities given the gene count, and the allele mutation
// probability during transmission from parent to child.
type Model struct {
	// GenePrior is indexed by the number of gene copies.
	GenePrior [NGene]float64
	// TraitGivenGene[n][t] is the probability of trait value t
	// given n copies of the gene.
	TraitGivenGene [NGene][NTrait]float64
	// MutationRate is the probability that an allele flips state
	// during transmission.
	MutationRate float64
}

// DefaultModel returns the reference model constants.
func DefaultModel() *Model {
	return &Model{
		GenePrior: [NGene]float64{0.96, 0.03, 0.01},
		TraitGivenGene: [NGene][NTrait]float64{
			{0.99, 0.01},
			{0.44, 0.56},
			{0.35, 0.65},
		},
		MutationRate: 0.01,
	}
}

// Copy creates an independent copy of the model.
func (m *Model) Copy() *Model {
	newM := *m
	return &newM
}

// Validate checks that the model constants are proper probabilities.
func (m *Model) Validate() error {
	sum := 0.0
	for n := 0; n < NGene; n++ {
		if m.GenePrior[n] < 0 {
			return errors.New("negative gene prior")
		}
		sum += m.GenePrior[n]
		esum := 0.0
		for t := 0; t < NTrait; t++ {
			if m.TraitGivenGene[n][t] < 0 {
				return errors.New("negative trait emission probability")
			}
			esum += m.TraitGivenGene[n][t]
		}
		if math.Abs(esum-1) > 1e-9 {
			return errors.New("trait emission probabilities do not sum to one")
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		return errors.New("gene prior does not sum to one")
	}
	if m.MutationRate < 0 || m.MutationRate > 1 {
		return errors.New("mutation probability outside [0, 1]")
	}
	return nil
}

// transmission returns the probability that a parent with n copies of
// the gene passes the variant allele on.
func (m *Model) transmission(n int) float64 {
	switch n {
	case 0:
		return m.MutationRate
	case 1:
		return 0.5
	case 2:
		return 1 - m.MutationRate
	}
	panic("invalid gene count")
}

// PriorTraitMarginal returns the trait distribution implied by the
// gene prior alone, i.e. the trait posterior of an unobserved founder.
func (m *Model) PriorTraitMarginal() (res [NTrait]float64) {
	prior := mat64.NewVector(NGene, m.GenePrior[:])
	emission := mat64.NewDense(NGene, NTrait, []float64{
		m.TraitGivenGene[0][0], m.TraitGivenGene[0][1],
		m.TraitGivenGene[1][0], m.TraitGivenGene[1][1],
		m.TraitGivenGene[2][0], m.TraitGivenGene[2][1],
	})

	var marginal mat64.Vector
	marginal.MulVec(emission.T(), prior)
	for t := 0; t < NTrait; t++ {
		res[t] = marginal.At(t, 0)
	}
	return
}
