package inference

import (
	"crypto/sha256"
	"fmt"

	"bitbucket.org/fkozlov/heredity/pedigree"
)

// Population is an indexed view of a pedigree suitable for bitmask
// enumeration. Parent references are resolved to person indices and
// trait observations are collected into two evidence sets.
type Population struct {
	names  []string
	index  map[string]int
	mother []int // -1 for founders
	father []int

	// evidence sets: persons observed with and without the trait
	traitYes Set
	traitNo  Set
}

// NewPopulation creates a population from a pedigree. The pedigree is
// validated and its size is checked against MaxPersons.
func NewPopulation(ped *pedigree.Pedigree) (*Population, error) {
	if err := ped.Validate(); err != nil {
		return nil, err
	}
	names := ped.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("empty pedigree")
	}
	if len(names) > MaxPersons {
		return nil, fmt.Errorf("pedigree of %d persons, maximum supported is %d",
			len(names), MaxPersons)
	}

	pop := &Population{
		names:  names,
		index:  make(map[string]int, len(names)),
		mother: make([]int, len(names)),
		father: make([]int, len(names)),
	}
	for i, name := range names {
		pop.index[name] = i
	}
	for i, name := range names {
		p := ped.Get(name)
		if p.IsFounder() {
			pop.mother[i] = -1
			pop.father[i] = -1
		} else {
			pop.mother[i] = pop.index[p.Mother]
			pop.father[i] = pop.index[p.Father]
		}
		switch p.Trait {
		case pedigree.TraitPresent:
			pop.traitYes |= 1 << uint(i)
		case pedigree.TraitAbsent:
			pop.traitNo |= 1 << uint(i)
		}
	}
	return pop, nil
}

// Len returns the number of persons in the population.
func (pop *Population) Len() int {
	return len(pop.names)
}

// Names returns person names in the pedigree order.
func (pop *Population) Names() []string {
	return pop.names
}

// Index returns the index of a person, -1 if unknown.
func (pop *Population) Index(name string) int {
	i, ok := pop.index[name]
	if !ok {
		return -1
	}
	return i
}

// IsFounder returns true if person i has no parents.
func (pop *Population) IsFounder(i int) bool {
	return pop.mother[i] < 0
}

// NFounders returns the number of founders.
func (pop *Population) NFounders() (n int) {
	for i := range pop.names {
		if pop.IsFounder(i) {
			n++
		}
	}
	return
}

// NObserved returns the number of persons with a known trait
// observation.
func (pop *Population) NObserved() int {
	return (pop.traitYes | pop.traitNo).Count()
}

// Enumerator returns a hypothesis enumerator for the population
// evidence.
func (pop *Population) Enumerator() *Enumerator {
	e, err := NewEnumerator(pop.Len(), pop.traitYes, pop.traitNo)
	if err != nil {
		// NewPopulation guarantees the enumerator preconditions.
		panic(err)
	}
	return e
}

// Digest returns a digest identifying the population together with
// the model constants. It is used as a checkpoint key, so that a
// checkpoint is never resumed with different input data.
func (pop *Population) Digest(m *Model) []byte {
	h := sha256.New()
	for i, name := range pop.names {
		fmt.Fprintf(h, "%q %d %d %v %v\n", name, pop.mother[i], pop.father[i],
			pop.traitYes.Has(i), pop.traitNo.Has(i))
	}
	fmt.Fprintf(h, "%v %v %v\n", m.GenePrior, m.TraitGivenGene, m.MutationRate)
	return h.Sum(nil)
}
