package main

import (
	"bitbucket.org/fkozlov/heredity/inference"
	"bitbucket.org/fkozlov/heredity/optimize"
)

// RunSummary stores heredity run summary information.
type RunSummary struct {
	// Version stores the heredity version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// NThreads is the number of threads used.
	NThreads int `json:"nThreads"`
	// Time is the computation time in seconds.
	Time float64 `json:"time"`

	// Persons is the pedigree size.
	Persons int `json:"persons"`
	// Founders is the number of persons without recorded parents.
	Founders int `json:"founders"`
	// Observed is the number of persons with a known trait observation.
	Observed int `json:"observed"`

	// MutationRate is the mutation probability used for the inference
	// (estimated if -estimate was given).
	MutationRate float64 `json:"mutationRate"`
	// Estimate is the mutation-rate optimization summary.
	Estimate *optimize.Summary `json:"estimate,omitempty"`

	// Hypotheses is the number of admissible hypotheses processed.
	Hypotheses int64 `json:"hypotheses"`
	// Evidence is the probability of the trait observations.
	Evidence float64 `json:"evidence"`
	// LogEvidence is the natural logarithm of Evidence.
	LogEvidence float64 `json:"logEvidence"`

	// Posterior holds the final per-person distributions.
	Posterior map[string]inference.PersonResult `json:"posterior"`
}
