package inference

import "fmt"

// Hypothesis is a complete assignment of gene counts and trait values
// to every person: everyone in OneGene carries one copy, everyone in
// TwoGenes two copies, everyone else no copies; everyone in HaveTrait
// exhibits the trait. OneGene and TwoGenes are disjoint.
type Hypothesis struct {
	OneGene   Set
	TwoGenes  Set
	HaveTrait Set
}

// GeneCount returns the number of gene copies of person i under the
// hypothesis.
func (h Hypothesis) GeneCount(i int) int {
	switch {
	case h.OneGene.Has(i):
		return 1
	case h.TwoGenes.Has(i):
		return 2
	}
	return 0
}

// HasTrait returns the trait value of person i under the hypothesis.
func (h Hypothesis) HasTrait(i int) bool {
	return h.HaveTrait.Has(i)
}

// traitIndex returns the emission table index of the trait value of
// person i.
func (h Hypothesis) traitIndex(i int) int {
	if h.HaveTrait.Has(i) {
		return TraitTrue
	}
	return TraitFalse
}

// Enumerator produces all hypotheses admissible under the trait
// evidence: a person observed with the trait is in every emitted
// HaveTrait set, a person observed without it is in none.
type Enumerator struct {
	n        int
	traitYes Set
	traitNo  Set
}

// NewEnumerator creates an enumerator for a population of n persons
// with the given evidence sets.
func NewEnumerator(n int, traitYes, traitNo Set) (*Enumerator, error) {
	if n < 1 || n > MaxPersons {
		return nil, fmt.Errorf("population size %d outside [1, %d]", n, MaxPersons)
	}
	all := universe(n)
	if traitYes&^all != 0 || traitNo&^all != 0 {
		return nil, fmt.Errorf("evidence sets outside the population")
	}
	if traitYes&traitNo != 0 {
		return nil, fmt.Errorf("contradictory trait evidence")
	}
	return &Enumerator{n: n, traitYes: traitYes, traitNo: traitNo}, nil
}

// admissible returns true if the trait set does not contradict the
// evidence.
func (e *Enumerator) admissible(trait Set) bool {
	return trait&e.traitYes == e.traitYes && trait&e.traitNo == 0
}

// TraitSets returns every admissible trait-positive subset. Only the
// unobserved persons are free, so there are 2^(n-k) of them for k
// observed persons.
func (e *Enumerator) TraitSets() []Set {
	free := universe(e.n) &^ (e.traitYes | e.traitNo)
	sets := make([]Set, 0, 1<<uint(free.Count()))
	for sub := free; ; sub = (sub - 1) & free {
		sets = append(sets, sub|e.traitYes)
		if sub == 0 {
			break
		}
	}
	return sets
}

// eachGene enumerates every disjoint one-gene/two-gene partition of
// the population for a fixed trait set. It returns false if visit
// stopped the enumeration.
func (e *Enumerator) eachGene(trait Set, visit func(Hypothesis) bool) bool {
	all := universe(e.n)
	for one := all; ; one = (one - 1) & all {
		rest := all &^ one
		for two := rest; ; two = (two - 1) & rest {
			h := Hypothesis{OneGene: one, TwoGenes: two, HaveTrait: trait}
			if !visit(h) {
				return false
			}
			if two == 0 {
				break
			}
		}
		if one == 0 {
			break
		}
	}
	return true
}

// Each calls visit for every admissible hypothesis, exactly once per
// hypothesis. The enumeration stops early if visit returns false.
func (e *Enumerator) Each(visit func(Hypothesis) bool) {
	for _, trait := range e.TraitSets() {
		if !e.eachGene(trait, visit) {
			return
		}
	}
}

// Hypotheses returns a channel with all admissible hypotheses. Each
// call starts a fresh enumeration pass. The caller must drain the
// channel.
func (e *Enumerator) Hypotheses() <-chan Hypothesis {
	ch := make(chan Hypothesis, 64)
	go func() {
		e.Each(func(h Hypothesis) bool {
			ch <- h
			return true
		})
		close(ch)
	}()
	return ch
}

// NHypotheses returns the total number of admissible hypotheses:
// 2^(n-k) trait subsets times 3^n gene-count assignments.
func (e *Enumerator) NHypotheses() int64 {
	free := e.n - (e.traitYes | e.traitNo).Count()
	total := int64(1) << uint(free)
	for i := 0; i < e.n; i++ {
		total *= 3
	}
	return total
}
