package main

import (
	"bitbucket.org/Davydov/tagcomp/composition"
	"bitbucket.org/Davydov/tagcomp/sn"
	"bitbucket.org/Davydov/tagcomp/species"
)

type CallSummary struct {
	// Version stores tagcomp version.
	Version string `json:"version"`
	// CommandLine is an array storing binary name and all command-line parameters.
	CommandLine []string `json:"commandLine"`
	// NThreads is the number of processes used.
	NThreads int `json:"nThreads"`
	// Time is the computations time in seconds.
	TotalTime float64 `json:"time"`
}

// SampleSummary is the result for a single sample.
type SampleSummary struct {
	// Reconstruction holds the positional distributions and factors.
	Reconstruction *sn.Result `json:"reconstruction"`
	// Species is the predicted species composition, most abundant first.
	Species []species.Value `json:"species"`
	// Compositions are the grouped species of the sample.
	Compositions []composition.Bucket `json:"compositions"`
}

// RunSummary is storing tagcomp run summary information.
type RunSummary struct {
	CallSummary
	// Policy is the reconstruction policy.
	Policy sn.Policy `json:"policy"`
	// Options are the species prediction options.
	Options species.Options `json:"options"`
	// Settings are the composition settings.
	Settings composition.Settings `json:"settings"`
	// Samples are the per sample results.
	Samples []SampleSummary `json:"samples"`
	// Combined is the reconstruction over all samples, only computed for
	// several samples.
	Combined *sn.Result `json:"combined,omitempty"`
	// Comparison are the compositions summarized over samples.
	Comparison []composition.Row `json:"comparison,omitempty"`
}
