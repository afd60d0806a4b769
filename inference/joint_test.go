package inference

import (
	"math"
	"testing"

	"bitbucket.org/fkozlov/heredity/pedigree"
)

// trioPopulation returns two unobserved founders with one child.
func trioPopulation(tst *testing.T) *Population {
	ped := pedigree.New()
	ped.Add(&pedigree.Person{Name: "Child", Mother: "Mother", Father: "Father"})
	ped.Add(&pedigree.Person{Name: "Mother"})
	ped.Add(&pedigree.Person{Name: "Father"})
	pop, err := NewPopulation(ped)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	return pop
}

func TestTransmission(tst *testing.T) {
	m := DefaultModel()
	if m.transmission(0) != 0.01 {
		tst.Error("Expected mutation probability for zero copies")
	}
	if m.transmission(1) != 0.5 {
		tst.Error("Expected a fair coin for one copy")
	}
	if m.transmission(2) != 0.99 {
		tst.Error("Expected reliable transmission for two copies")
	}
}

// With both parents and the child carrying no copies, the gene
// factors multiply to prior^2 times the no-transmission probability
// from each parent.
func TestGeneFactors(tst *testing.T) {
	pop := trioPopulation(tst)
	m := DefaultModel()
	h := Hypothesis{} // everyone zero genes, no traits

	p := 1.0
	for i := 0; i < pop.Len(); i++ {
		p *= m.geneFactor(pop, h, i)
	}
	refP := 0.96 * 0.96 * 0.99 * 0.99

	tst.Log("P=", p, ", Ref=", refP, ", diff=", math.Abs(p-refP))
	if math.Abs(p-refP) > smallDiff {
		tst.Error("Expected ", refP, ", got", p)
	}
}

// TestJointFamily0 checks the joint probability of one fully
// specified hypothesis for the Harry/James/Lily pedigree against the
// hand-computed value:
// Lily (0 copies, no trait):  0.96 * 0.99          = 0.9504
// James (2 copies, trait):    0.01 * 0.65          = 0.0065
// Harry (1 copy, no trait):   (0.99*0.99 + 0.01*0.01) * 0.44
func TestJointFamily0(tst *testing.T) {
	pop := family0Population(tst)
	m := DefaultModel()

	h := Hypothesis{
		OneGene:   1 << uint(pop.Index("Harry")),
		TwoGenes:  1 << uint(pop.Index("James")),
		HaveTrait: 1 << uint(pop.Index("James")),
	}

	p := m.Joint(pop, h)
	refP := 0.0026643247488

	tst.Log("P=", p, ", Ref=", refP, ", diff=", math.Abs(p-refP))
	if math.Abs(p-refP) > smallDiff {
		tst.Error("Expected ", refP, ", got", p)
	}
}

func TestLogJoint(tst *testing.T) {
	pop := family0Population(tst)
	m := DefaultModel()

	pop.Enumerator().Each(func(h Hypothesis) bool {
		p := m.Joint(pop, h)
		logP := m.LogJoint(pop, h)
		if math.Abs(math.Exp(logP)-p) > smallDiff {
			tst.Errorf("exp(LogJoint)=%v differs from Joint=%v", math.Exp(logP), p)
			return false
		}
		return true
	})
}

func TestLogAddExp(tst *testing.T) {
	inf := math.Inf(-1)
	if logAddExp(inf, inf) != inf {
		tst.Error("Expected -Inf")
	}
	if logAddExp(inf, 0) != 0 || logAddExp(0, inf) != 0 {
		tst.Error("Expected 0")
	}
	got := logAddExp(math.Log(0.3), math.Log(0.7))
	if math.Abs(got) > smallDiff {
		tst.Error("Expected log(1)=0, got", got)
	}
}

func TestPriorTraitMarginal(tst *testing.T) {
	m := DefaultModel()
	marginal := m.PriorTraitMarginal()

	// 0.96*0.01 + 0.03*0.56 + 0.01*0.65
	refTrue := 0.0329

	tst.Log("P=", marginal[TraitTrue], ", Ref=", refTrue)
	if math.Abs(marginal[TraitTrue]-refTrue) > smallDiff {
		tst.Error("Expected ", refTrue, ", got", marginal[TraitTrue])
	}
	if math.Abs(marginal[TraitTrue]+marginal[TraitFalse]-1) > smallDiff {
		tst.Error("Trait marginal does not sum to one")
	}
}

func TestModelValidate(tst *testing.T) {
	if err := DefaultModel().Validate(); err != nil {
		tst.Error("Error: ", err)
	}

	m := DefaultModel()
	m.MutationRate = 1.5
	if err := m.Validate(); err == nil {
		tst.Error("Expected error for mutation probability above one")
	}

	m = DefaultModel()
	m.GenePrior[0] = 0.5
	if err := m.Validate(); err == nil {
		tst.Error("Expected error for gene prior not summing to one")
	}

	m = DefaultModel()
	m.TraitGivenGene[1][TraitTrue] = 0.9
	if err := m.Validate(); err == nil {
		tst.Error("Expected error for emission probabilities not summing to one")
	}
}
