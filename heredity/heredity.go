/*

Heredity computes, for every person in a family pedigree, the exact
posterior probability of carrying 0, 1 or 2 copies of a gene variant
and of exhibiting the associated trait, given partial trait
observations.

The basic usage looks like this:

	heredity family.csv

The pedigree file is a CSV with the columns name, mother, father and
trait (1, 0 or blank for unknown).

The mutation probability can be estimated from the observations by
maximum likelihood instead of using the default constant:

	heredity -estimate family.csv

To see all the options run:

	heredity -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"

	"bitbucket.org/fkozlov/heredity/checkpoint"
	"bitbucket.org/fkozlov/heredity/inference"
	"bitbucket.org/fkozlov/heredity/optimize"
	"bitbucket.org/fkozlov/heredity/pedigree"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("heredity")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	// application
	app = kingpin.New("heredity", "exact inference of gene and trait probabilities from a family pedigree").Version(version)

	// input pedigree
	pedigreeFileName = app.Arg("pedigree", "pedigree file (CSV with columns name, mother, father, trait)").Required().ExistingFile()

	// model parameters
	mutation = app.Flag("mutation", "allele mutation probability during transmission").Default("0.01").Float64()
	estimate = app.Flag("estimate", "estimate the mutation probability from the observed traits by maximum likelihood").Bool()
	method   = app.Flag("method", "optimization method for -estimate "+
		"(lbfgsb: limited-memory Broyden–Fletcher–Goldfarb–Shanno with bounding constraints, "+
		"simplex: downhill simplex"+
		")").Default("lbfgsb").Enum("lbfgsb", "simplex")

	// computation
	logSpace = app.Flag("logspace", "accumulate probabilities in log-space (for larger pedigrees)").Bool()
	nThreads = app.Flag("nt", "number of threads to use").Int()

	// checkpointing
	checkpointFileName = app.Flag("checkpoint", "checkpoint file name (resume interrupted runs, single thread only)").String()
	checkpointSeconds  = app.Flag("cpperiod", "checkpoint period in seconds").Default("30").Float64()

	// technical
	cpuProfile = app.Flag("cpuprofile", "write cpu profile to file").String()

	// input/output
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file").String()
)

// getOptimizerFromString returns an optimizer from a string.
func getOptimizerFromString(method string) (optimize.Optimizer, error) {
	switch method {
	case "lbfgsb":
		return optimize.NewLBFGSB(), nil
	case "simplex":
		return optimize.NewDS(), nil
	}
	return nil, fmt.Errorf("Unknown optimization method: %s", method)
}

// printResults writes per-person posterior distributions to the
// standard output.
func printResults(post *inference.Posterior) {
	for _, name := range post.Names() {
		gene := post.Gene(name)
		trait := post.Trait(name)
		fmt.Printf("%s:\n", name)
		fmt.Printf("  Gene:\n")
		for n := inference.NGene - 1; n >= 0; n-- {
			fmt.Printf("    %d: %.4f\n", n, gene[n])
		}
		fmt.Printf("  Trait:\n")
		fmt.Printf("    True: %.4f\n", trait[inference.TraitTrue])
		fmt.Printf("    False: %.4f\n", trait[inference.TraitFalse])
	}
}

func run() (summary *RunSummary) {
	startTime := time.Now()
	summary = &RunSummary{}

	pedigreeFile, err := os.Open(*pedigreeFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer pedigreeFile.Close()

	ped, err := pedigree.ParseCSV(pedigreeFile)
	if err != nil {
		log.Fatal(err)
	}

	pop, err := inference.NewPopulation(ped)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Read pedigree of %d persons, %d founders, %d observed traits",
		pop.Len(), pop.NFounders(), pop.NObserved())
	summary.Persons = pop.Len()
	summary.Founders = pop.NFounders()
	summary.Observed = pop.NObserved()

	m := inference.DefaultModel()
	m.MutationRate = *mutation
	if err = m.Validate(); err != nil {
		log.Fatal(err)
	}

	if *estimate {
		opt, err := getOptimizerFromString(*method)
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("Using %s optimization.", *method)
		opt.SetOptimizable(&inference.MutationObjective{Pop: pop, Base: m})
		opt.Run()
		m.MutationRate = opt.MaxLParameters()[0]
		log.Noticef("Estimated mutation probability: %g (lnL=%f)", m.MutationRate, opt.MaxL())
		summary.Estimate = opt.Summary()
	}
	summary.MutationRate = m.MutationRate

	settings := &inference.Settings{
		NThreads: *nThreads,
		LogSpace: *logSpace,
	}

	if *checkpointFileName != "" {
		db, err := bolt.Open(*checkpointFileName, 0666, nil)
		if err != nil {
			log.Fatal("Error opening checkpoint file:", err)
		}
		defer db.Close()
		settings.Checkpoint = checkpoint.NewIO(db, pop.Digest(m), *checkpointSeconds)
	}

	res, err := inference.Run(pop, m, settings)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("Processed %d hypotheses", res.Hypotheses)
	log.Noticef("Evidence probability: %g (lnL=%f)", res.Evidence, res.LogEvidence)
	summary.Hypotheses = res.Hypotheses
	summary.Evidence = res.Evidence
	summary.LogEvidence = res.LogEvidence
	summary.Posterior = res.Posterior.Map()

	printResults(res.Posterior)

	endTime := time.Now()

	deltaT := endTime.Sub(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.Time = deltaT.Seconds()

	return
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)

	var backend *logging.LogBackend
	if *outLogF != "" {
		f, err := os.OpenFile(*outLogF, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal("Error creating log file:", err)
		}
		defer f.Close()
		backend = logging.NewLogBackend(f, "", 0)
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(level, "heredity")
	logging.SetLevel(level, "inference")
	logging.SetLevel(level, "optimize")
	logging.SetLevel(level, "checkpoint")

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	if *nThreads > 0 {
		runtime.GOMAXPROCS(*nThreads)
	}
	effectiveNThreads := runtime.GOMAXPROCS(0)
	log.Infof("Using threads: %d.\n", effectiveNThreads)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	summary := run()
	summary.NThreads = effectiveNThreads
	summary.Version = version
	summary.CommandLine = os.Args

	// output summary in json format
	if *jsonF != "" {
		j, err := json.Marshal(summary)
		if err != nil {
			log.Error(err)
		} else {
			log.Debug(string(j))
			f, err := os.Create(*jsonF)
			if err != nil {
				log.Error("Error creating json output file:", err)
			} else {
				f.Write(j)
				f.Close()
			}
		}
	}
}
