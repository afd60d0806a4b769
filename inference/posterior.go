package inference

import (
	"fmt"
	"math"
)

// Posterior holds the per-person distributions over gene count and
// trait value. Distributions start as accumulated joint probability
// mass and become proper distributions after Normalize.
type Posterior struct {
	names []string
	index map[string]int
	gene  [][NGene]float64
	trait [][NTrait]float64

	// logSpace is true while the buckets hold log-sums instead of
	// sums. Normalize converts back to linear space.
	logSpace bool
}

// NewPosterior creates a zero-valued posterior for the population.
func NewPosterior(pop *Population) *Posterior {
	return newPosterior(pop, false)
}

func newPosterior(pop *Population, logSpace bool) *Posterior {
	post := &Posterior{
		names:    pop.names,
		index:    pop.index,
		gene:     make([][NGene]float64, pop.Len()),
		trait:    make([][NTrait]float64, pop.Len()),
		logSpace: logSpace,
	}
	if logSpace {
		for i := range post.gene {
			for n := 0; n < NGene; n++ {
				post.gene[i][n] = math.Inf(-1)
			}
			for t := 0; t < NTrait; t++ {
				post.trait[i][t] = math.Inf(-1)
			}
		}
	}
	return post
}

// Accumulate adds the joint probability p of hypothesis h into every
// person's matching gene-count and trait bucket. It must be called
// exactly once per admissible hypothesis.
func (post *Posterior) Accumulate(h Hypothesis, p float64) {
	for i := range post.gene {
		post.gene[i][h.GeneCount(i)] += p
		post.trait[i][h.traitIndex(i)] += p
	}
}

// accumulateLog is the log-space counterpart of Accumulate; logp is
// the log joint probability.
func (post *Posterior) accumulateLog(h Hypothesis, logp float64) {
	for i := range post.gene {
		n := h.GeneCount(i)
		post.gene[i][n] = logAddExp(post.gene[i][n], logp)
		t := h.traitIndex(i)
		post.trait[i][t] = logAddExp(post.trait[i][t], logp)
	}
}

// Merge adds the accumulated mass of another posterior. Both must
// come from the same population and accumulation mode.
func (post *Posterior) Merge(other *Posterior) {
	if len(post.gene) != len(other.gene) || post.logSpace != other.logSpace {
		panic("merging incompatible posteriors")
	}
	for i := range post.gene {
		for n := 0; n < NGene; n++ {
			if post.logSpace {
				post.gene[i][n] = logAddExp(post.gene[i][n], other.gene[i][n])
			} else {
				post.gene[i][n] += other.gene[i][n]
			}
		}
		for t := 0; t < NTrait; t++ {
			if post.logSpace {
				post.trait[i][t] = logAddExp(post.trait[i][t], other.trait[i][t])
			} else {
				post.trait[i][t] += other.trait[i][t]
			}
		}
	}
}

// Normalize rescales every distribution so it sums to one, keeping
// the relative proportions. A distribution with zero total mass means
// no admissible hypothesis contributed to it; this is reported as an
// inconsistent-evidence error. Normalize is idempotent.
func (post *Posterior) Normalize() error {
	for i, name := range post.names {
		if post.logSpace {
			if err := normalizeLog(post.gene[i][:], name); err != nil {
				return err
			}
			if err := normalizeLog(post.trait[i][:], name); err != nil {
				return err
			}
			continue
		}
		if err := normalize(post.gene[i][:], name); err != nil {
			return err
		}
		if err := normalize(post.trait[i][:], name); err != nil {
			return err
		}
	}
	post.logSpace = false
	return nil
}

func normalize(d []float64, name string) error {
	sum := 0.0
	for _, v := range d {
		sum += v
	}
	if sum <= 0 {
		return fmt.Errorf("zero probability mass for %q: evidence is inconsistent", name)
	}
	for i := range d {
		d[i] /= sum
	}
	return nil
}

// normalizeLog converts a log-space distribution to a normalized
// linear one by subtracting the log-sum-exp of its entries.
func normalizeLog(d []float64, name string) error {
	lse := math.Inf(-1)
	for _, v := range d {
		lse = logAddExp(lse, v)
	}
	if math.IsInf(lse, -1) {
		return fmt.Errorf("zero probability mass for %q: evidence is inconsistent", name)
	}
	for i := range d {
		d[i] = math.Exp(d[i] - lse)
	}
	return nil
}

// Names returns the person names in the pedigree order.
func (post *Posterior) Names() []string {
	return post.names
}

// Gene returns the gene-count distribution of a person.
func (post *Posterior) Gene(name string) [NGene]float64 {
	return post.gene[post.index[name]]
}

// Trait returns the trait distribution of a person.
func (post *Posterior) Trait(name string) [NTrait]float64 {
	return post.trait[post.index[name]]
}

// PersonResult is the final distributions of one person, used for
// JSON output.
type PersonResult struct {
	Gene  [NGene]float64  `json:"gene"`
	Trait [NTrait]float64 `json:"trait"`
}

// Map returns the posterior as a name-keyed map.
func (post *Posterior) Map() map[string]PersonResult {
	res := make(map[string]PersonResult, len(post.names))
	for i, name := range post.names {
		res[name] = PersonResult{Gene: post.gene[i], Trait: post.trait[i]}
	}
	return res
}
