package inference

import (
	"math"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"bitbucket.org/fkozlov/heredity/checkpoint"
	"bitbucket.org/fkozlov/heredity/pedigree"
)

// twoGenerationPopulation returns a four-person pedigree with two
// children and mixed trait observations.
func twoGenerationPopulation(tst *testing.T) *Population {
	ped := pedigree.New()
	ped.Add(&pedigree.Person{Name: "Arthur", Trait: pedigree.TraitAbsent})
	ped.Add(&pedigree.Person{Name: "Molly"})
	ped.Add(&pedigree.Person{Name: "Ron", Mother: "Molly", Father: "Arthur", Trait: pedigree.TraitPresent})
	ped.Add(&pedigree.Person{Name: "Ginny", Mother: "Molly", Father: "Arthur"})
	pop, err := NewPopulation(ped)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	return pop
}

// naivePosterior recomputes the posterior with plain nested loops
// over explicit per-person gene and trait assignments, as an oracle
// for the bitmask enumeration.
func naivePosterior(pop *Population, m *Model) (gene [][NGene]float64, trait [][NTrait]float64, ev float64) {
	n := pop.Len()
	genes := make([]int, n)
	traits := make([]bool, n)
	gene = make([][NGene]float64, n)
	trait = make([][NTrait]float64, n)

	record := func() {
		p := 1.0
		for j := 0; j < n; j++ {
			if pop.mother[j] < 0 {
				p *= m.GenePrior[genes[j]]
			} else {
				tm := m.transmission(genes[pop.mother[j]])
				tf := m.transmission(genes[pop.father[j]])
				switch genes[j] {
				case 0:
					p *= (1 - tm) * (1 - tf)
				case 1:
					p *= (1-tm)*tf + tm*(1-tf)
				case 2:
					p *= tm * tf
				}
			}
			ti := TraitFalse
			if traits[j] {
				ti = TraitTrue
			}
			p *= m.TraitGivenGene[genes[j]][ti]
		}
		for j := 0; j < n; j++ {
			gene[j][genes[j]] += p
			ti := TraitFalse
			if traits[j] {
				ti = TraitTrue
			}
			trait[j][ti] += p
		}
		ev += p
	}

	var assignGenes func(i int)
	assignGenes = func(i int) {
		if i == n {
			record()
			return
		}
		for g := 0; g < NGene; g++ {
			genes[i] = g
			assignGenes(i + 1)
		}
	}

	var assignTraits func(i int)
	assignTraits = func(i int) {
		if i == n {
			assignGenes(0)
			return
		}
		switch {
		case pop.traitYes.Has(i):
			traits[i] = true
			assignTraits(i + 1)
		case pop.traitNo.Has(i):
			traits[i] = false
			assignTraits(i + 1)
		default:
			traits[i] = false
			assignTraits(i + 1)
			traits[i] = true
			assignTraits(i + 1)
		}
	}
	assignTraits(0)

	for j := 0; j < n; j++ {
		gsum, tsum := 0.0, 0.0
		for g := 0; g < NGene; g++ {
			gsum += gene[j][g]
		}
		for t := 0; t < NTrait; t++ {
			tsum += trait[j][t]
		}
		for g := 0; g < NGene; g++ {
			gene[j][g] /= gsum
		}
		for t := 0; t < NTrait; t++ {
			trait[j][t] /= tsum
		}
	}
	return
}

func comparePosteriors(tst *testing.T, res *Result, gene [][NGene]float64, trait [][NTrait]float64, eps float64) {
	for i, name := range res.Posterior.Names() {
		got := res.Posterior.Gene(name)
		for n := 0; n < NGene; n++ {
			if math.Abs(got[n]-gene[i][n]) > eps {
				tst.Errorf("%s gene %d: expected %v, got %v", name, n, gene[i][n], got[n])
			}
		}
		gotT := res.Posterior.Trait(name)
		for t := 0; t < NTrait; t++ {
			if math.Abs(gotT[t]-trait[i][t]) > eps {
				tst.Errorf("%s trait %d: expected %v, got %v", name, t, trait[i][t], gotT[t])
			}
		}
	}
}

func TestEngineMatchesNaive(tst *testing.T) {
	m := DefaultModel()
	for _, pop := range []*Population{family0Population(tst), twoGenerationPopulation(tst)} {
		res, err := Run(pop, m, nil)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		gene, trait, ev := naivePosterior(pop, m)
		comparePosteriors(tst, res, gene, trait, smallDiff)
		if math.Abs(res.Evidence-ev) > smallDiff {
			tst.Error("Expected evidence ", ev, ", got", res.Evidence)
		}
	}
}

func TestParallelMatchesSequential(tst *testing.T) {
	pop := twoGenerationPopulation(tst)
	m := DefaultModel()

	seq, err := Run(pop, m, &Settings{NThreads: 1})
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	par, err := Run(pop, m, &Settings{NThreads: 4})
	if err != nil {
		tst.Fatal("Error: ", err)
	}

	if seq.Hypotheses != par.Hypotheses {
		tst.Error("Hypothesis counts differ:", seq.Hypotheses, par.Hypotheses)
	}
	gene, trait, _ := naivePosterior(pop, m)
	comparePosteriors(tst, par, gene, trait, smallDiff)
	if math.Abs(seq.Evidence-par.Evidence) > smallDiff {
		tst.Error("Evidence differs:", seq.Evidence, par.Evidence)
	}
}

func TestLogSpaceMatchesLinear(tst *testing.T) {
	pop := twoGenerationPopulation(tst)
	m := DefaultModel()

	linear, err := Run(pop, m, nil)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	logRes, err := Run(pop, m, &Settings{LogSpace: true})
	if err != nil {
		tst.Fatal("Error: ", err)
	}

	gene, trait, _ := naivePosterior(pop, m)
	comparePosteriors(tst, logRes, gene, trait, 1e-8)
	if math.Abs(linear.LogEvidence-logRes.LogEvidence) > 1e-8 {
		tst.Error("Log-evidence differs:", linear.LogEvidence, logRes.LogEvidence)
	}
}

func TestCheckpointResume(tst *testing.T) {
	pop := family0Population(tst)
	m := DefaultModel()

	db, err := bolt.Open(filepath.Join(tst.TempDir(), "checkpoint.db"), 0666, nil)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	defer db.Close()

	// save after every trait subset
	first, err := Run(pop, m, &Settings{NThreads: 1,
		Checkpoint: checkpoint.NewIO(db, pop.Digest(m), 0)})
	if err != nil {
		tst.Fatal("Error: ", err)
	}

	// the second run must resume from the final checkpoint
	second, err := Run(pop, m, &Settings{NThreads: 1,
		Checkpoint: checkpoint.NewIO(db, pop.Digest(m), 0)})
	if err != nil {
		tst.Fatal("Error: ", err)
	}

	if second.Hypotheses != first.Hypotheses {
		tst.Error("Hypothesis counts differ:", first.Hypotheses, second.Hypotheses)
	}
	for _, name := range first.Posterior.Names() {
		a, b := first.Posterior.Gene(name), second.Posterior.Gene(name)
		for n := 0; n < NGene; n++ {
			if math.Abs(a[n]-b[n]) > smallDiff {
				tst.Errorf("%s gene %d differs after resume", name, n)
			}
		}
	}
}

func TestMutationObjective(tst *testing.T) {
	pop := family0Population(tst)
	m := DefaultModel()
	obj := &MutationObjective{Pop: pop, Base: m}

	if len(obj.Names()) != 1 || len(obj.Bounds()) != 1 || len(obj.Start()) != 1 {
		tst.Error("Expected a single parameter")
	}
	l := obj.Likelihood([]float64{m.MutationRate})
	ref := LogEvidence(pop, m)
	if math.Abs(l-ref) > smallDiff {
		tst.Error("Expected ", ref, ", got", l)
	}
	// the objective must not modify the base model
	if m.MutationRate != 0.01 {
		tst.Error("Base model modified")
	}
}
