package inference

import (
	"errors"
	"math"
	"runtime"
	"sync"

	"bitbucket.org/fkozlov/heredity/checkpoint"
)

// Settings control a single inference run.
type Settings struct {
	// NThreads is the number of worker threads sharding the
	// trait-subset enumeration; 0 means GOMAXPROCS.
	NThreads int
	// LogSpace enables log-space accumulation for populations
	// where the joint probabilities underflow.
	LogSpace bool
	// Checkpoint enables saving and resuming partial
	// accumulations (single-threaded runs only).
	Checkpoint *checkpoint.IO
}

// Result is the outcome of an inference run.
type Result struct {
	// Posterior holds the normalized per-person distributions.
	Posterior *Posterior
	// Evidence is the probability of the trait observations under
	// the model (the total accumulated mass before normalization).
	Evidence float64
	// LogEvidence is the natural logarithm of Evidence.
	LogEvidence float64
	// Hypotheses is the number of admissible hypotheses processed.
	Hypotheses int64
}

// Run enumerates every admissible hypothesis, accumulates the joint
// probabilities into per-person distributions and normalizes them.
func Run(pop *Population, m *Model, s *Settings) (*Result, error) {
	if s == nil {
		s = &Settings{}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	e := pop.Enumerator()
	traitSets := e.TraitSets()
	log.Infof("%d admissible trait sets, %d hypotheses", len(traitSets), e.NHypotheses())

	nThreads := s.NThreads
	if nThreads < 1 {
		nThreads = runtime.GOMAXPROCS(0)
	}
	if nThreads > len(traitSets) {
		nThreads = len(traitSets)
	}

	cp := s.Checkpoint
	if cp != nil && nThreads > 1 {
		log.Warning("Checkpointing requires a single thread; disabling checkpoints")
		cp = nil
	}

	var res *Result
	var err error
	if nThreads > 1 {
		res, err = runParallel(pop, m, e, traitSets, s.LogSpace, nThreads)
	} else {
		res, err = runSequential(pop, m, e, traitSets, s.LogSpace, cp)
	}
	if err != nil {
		return nil, err
	}

	if s.LogSpace {
		res.Evidence = math.Exp(res.LogEvidence)
	} else {
		res.LogEvidence = math.Log(res.Evidence)
	}
	if res.Evidence <= 0 && math.IsInf(res.LogEvidence, -1) {
		return nil, errors.New("zero evidence probability: observations are inconsistent with the model")
	}

	if err := res.Posterior.Normalize(); err != nil {
		return nil, err
	}
	return res, nil
}

// accumulateTraitSet folds every gene-count partition for one trait
// subset into the posterior and returns the evidence contribution.
func accumulateTraitSet(pop *Population, m *Model, e *Enumerator, trait Set,
	post *Posterior, logSpace bool) (ev float64, n int64) {
	if logSpace {
		ev = math.Inf(-1)
		e.eachGene(trait, func(h Hypothesis) bool {
			logp := m.LogJoint(pop, h)
			post.accumulateLog(h, logp)
			ev = logAddExp(ev, logp)
			n++
			return true
		})
		return
	}
	e.eachGene(trait, func(h Hypothesis) bool {
		p := m.Joint(pop, h)
		post.Accumulate(h, p)
		ev += p
		n++
		return true
	})
	return
}

func runSequential(pop *Population, m *Model, e *Enumerator, traitSets []Set,
	logSpace bool, cp *checkpoint.IO) (*Result, error) {
	post := newPosterior(pop, logSpace)
	ev := 0.0
	if logSpace {
		ev = math.Inf(-1)
	}
	var count int64
	done := 0

	if cp != nil {
		data, err := cp.Load()
		if err != nil {
			log.Error("Error loading checkpoint:", err)
		} else if data != nil {
			done, ev, count = restoreCheckpoint(post, data, logSpace)
		}
	}

	for ; done < len(traitSets); done++ {
		dEv, dN := accumulateTraitSet(pop, m, e, traitSets[done], post, logSpace)
		if logSpace {
			ev = logAddExp(ev, dEv)
		} else {
			ev += dEv
		}
		count += dN

		if cp != nil && cp.Old() {
			saveCheckpoint(cp, post, done+1, ev, count, logSpace, false)
		}
	}

	if cp != nil {
		saveCheckpoint(cp, post, done, ev, count, logSpace, true)
	}

	res := &Result{Posterior: post, Hypotheses: count}
	if logSpace {
		res.LogEvidence = ev
	} else {
		res.Evidence = ev
	}
	return res, nil
}

func runParallel(pop *Population, m *Model, e *Enumerator, traitSets []Set,
	logSpace bool, nThreads int) (*Result, error) {
	log.Infof("Sharding trait subsets over %d threads", nThreads)

	type partial struct {
		post  *Posterior
		ev    float64
		count int64
	}

	tasks := make(chan Set, nThreads)
	partials := make([]partial, nThreads)

	var wg sync.WaitGroup
	for w := 0; w < nThreads; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			p := partial{post: newPosterior(pop, logSpace)}
			if logSpace {
				p.ev = math.Inf(-1)
			}
			for trait := range tasks {
				dEv, dN := accumulateTraitSet(pop, m, e, trait, p.post, logSpace)
				if logSpace {
					p.ev = logAddExp(p.ev, dEv)
				} else {
					p.ev += dEv
				}
				p.count += dN
			}
			partials[w] = p
		}(w)
	}
	for _, trait := range traitSets {
		tasks <- trait
	}
	close(tasks)
	wg.Wait()

	res := &Result{Posterior: partials[0].post}
	if logSpace {
		res.LogEvidence = partials[0].ev
	} else {
		res.Evidence = partials[0].ev
	}
	res.Hypotheses = partials[0].count
	for _, p := range partials[1:] {
		res.Posterior.Merge(p.post)
		if logSpace {
			res.LogEvidence = logAddExp(res.LogEvidence, p.ev)
		} else {
			res.Evidence += p.ev
		}
		res.Hypotheses += p.count
	}
	return res, nil
}

// restoreCheckpoint loads a partial accumulation into the posterior.
// An incompatible checkpoint is ignored.
func restoreCheckpoint(post *Posterior, data *checkpoint.Data, logSpace bool) (done int, ev float64, count int64) {
	if logSpace {
		ev = math.Inf(-1)
	}
	if len(data.Gene) != len(post.gene) || data.LogSpace != logSpace {
		log.Warning("Incompatible checkpoint, starting from scratch")
		return 0, ev, 0
	}
	if data.Final {
		log.Noticef("Found finished inference checkpoint (%d hypotheses)", data.Hypotheses)
	} else {
		log.Noticef("Found unfinished inference checkpoint, resuming after %d trait subsets", data.Done)
	}
	copy(post.gene, data.Gene)
	copy(post.trait, data.Trait)
	return data.Done, data.Evidence, data.Hypotheses
}

func saveCheckpoint(cp *checkpoint.IO, post *Posterior, done int, ev float64,
	count int64, logSpace, final bool) {
	data := &checkpoint.Data{
		Gene:       append([][NGene]float64(nil), post.gene...),
		Trait:      append([][NTrait]float64(nil), post.trait...),
		Evidence:   ev,
		Hypotheses: count,
		Done:       done,
		LogSpace:   logSpace,
		Final:      final,
	}
	if err := cp.Save(data); err != nil {
		log.Error("Error saving checkpoint:", err)
	}
}

// LogEvidence returns the log-probability of the trait observations
// under the model, i.e. the log of the total joint mass over all
// admissible hypotheses. It is the objective for model fitting.
func LogEvidence(pop *Population, m *Model) float64 {
	e := pop.Enumerator()
	logEv := math.Inf(-1)
	e.Each(func(h Hypothesis) bool {
		logEv = logAddExp(logEv, m.LogJoint(pop, h))
		return true
	})
	return logEv
}
