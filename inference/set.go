package inference

import "math/bits"

// MaxPersons is the maximum population size. The enumeration cost is
// exponential in the population size, and subsets are stored as
// bitmasks, so larger populations are refused up front.
const MaxPersons = 24

// Set is a subset of the population, one bit per person index.
type Set uint32

// Has returns true if person i is a member of the set.
func (s Set) Has(i int) bool {
	return s&(1<<uint(i)) != 0
}

// Count returns the number of members.
func (s Set) Count() int {
	return bits.OnesCount32(uint32(s))
}

// universe returns the set of all n persons.
func universe(n int) Set {
	return Set(1)<<uint(n) - 1
}
