/*

Tagcomp reconstructs stereospecific positional distributions of fatty
acids in triacylglycerols and predicts the species composition.

Each sample is a JSON file with two measured pools per fatty acid
(whole molecule, sn-2, sn-1,3 or sn-1,2/2,3), optionally with
replicates:

	{"name": "oil", "rows": [
		{"fattyAcid": "16:0", "whole": [12.1, 12.4], "two": [1.9, 2.0]},
		{"fattyAcid": "18:1Δ9c", "whole": [60.3, 59.8], "two": [70.1, 69.5]}
	]}

The basic usage looks like this:

	tagcomp oil.json

, this will predict the positional species composition with the
independent position (Vander Wal) model. The model and compositions can
be changed:

	tagcomp -model gunstone -c TMC -c SPC oil1.json oil2.json

With several samples the compositions are compared between samples.

To see all the options run:

	tagcomp -h

*/
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/tagcomp/cache"
	"bitbucket.org/Davydov/tagcomp/composition"
	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/sn"
	"bitbucket.org/Davydov/tagcomp/species"
)

// These three variables are set during the compilation.
var githash = ""
var gitbranch = ""
var buildstamp = ""
var version = fmt.Sprintf("branch: %s, revision: %s, build time: %s", gitbranch, githash, buildstamp)

// Logger settings.
var log = logging.MustGetLogger("tagcomp")
var formatter = logging.MustStringFormatter(`%{message}`)

// packages are the loggers which level is set from the command line.
var packages = []string{"tagcomp", "sn", "species", "composition", "christie", "cache"}

// getSortFromString returns a sort criterion from a string.
func getSortFromString(by string) (composition.SortBy, error) {
	switch by {
	case "key":
		return composition.ByKey, nil
	case "value":
		return composition.ByValue, nil
	}
	return composition.ByKey, fmt.Errorf("Unknown sort criterion: %s", by)
}

// getOrderFromString returns a sort order from a string.
func getOrderFromString(order string) (composition.Order, error) {
	switch order {
	case "asc":
		return composition.Ascending, nil
	case "desc":
		return composition.Descending, nil
	}
	return composition.Ascending, fmt.Errorf("Unknown sort order: %s", order)
}

// getMaxFromString returns an upper bound from a string, an empty
// string means no limit.
func getMaxFromString(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil, fmt.Errorf("Invalid maximal value: %s", s)
	}
	return composition.Limit(v), nil
}

// command-line options
var (
	// application
	app = kingpin.New("tagcomp", "triacylglycerol positional analysis and species composition").Version(version)

	// input
	sampleFileNames = app.Arg("sample", "sample files in JSON format").Required().ExistingFiles()

	// reconstruction
	ddof         = app.Flag("ddof", "delta degrees of freedom of the standard deviation").Default("1").Uint8()
	weighted     = app.Flag("weighted", "convert mole fractions to mass fractions").Bool()
	christieF    = app.Flag("christie", "correct with response factors from a CSV file (fatty_acid,factor)").ExistingFile()
	signed       = app.Flag("signed", "keep negative derived values").Bool()
	normExp      = app.Flag("normexp", "normalize experimental distributions").Default("true").Bool()
	normTheor    = app.Flag("normtheor", "normalize theoretical distributions").Default("true").Bool()
	normFactors  = app.Flag("normfactors", "divide enrichment and selectivity factors by 3").Default("true").Bool()
	standard     = app.Flag("standard", "label of the internal standard").String()
	standardAmt  = app.Flag("standardamount", "amount of the internal standard").Default("1").Float64()
	threshold    = app.Flag("threshold", "minimal fraction of a major fatty acid").Default("0").Float64()
	thresholdFlt = app.Flag("filter", "drop minor fatty acids before prediction").Bool()

	// prediction
	model = app.Flag("model", "species composition model "+
		"(vanderwal: independent positions, gunstone: saturation corrected)").
		Default("vanderwal").Enum(species.ModelNames()...)
	discriminantsF = app.Flag("discriminants", "per position discriminants for the gunstone model (JSON)").ExistingFile()

	// composition
	compositions = app.Flag("composition", "composition code, repeat for several levels "+
		"(first letter: M mass, N ECN, U unsaturation, S species, T type; "+
		"second letter: S stereospecific, P positional, M aggregated)").
		Short('c').Default("SPC").Strings()
	adduct   = app.Flag("adduct", "adduct of aggregated masses (None, H, NH4, Na, Li or a mass)").Default("None").String()
	round    = app.Flag("round", "number of decimals of masses").Default("1").Int()
	minValue = app.Flag("min", "minimal value of a composition").Default("0").Float64()
	maxValue = app.Flag("max", "maximal value of a composition, no limit if not set").String()
	exclude  = app.Flag("exclude", "composition key to exclude").Strings()
	sortBy   = app.Flag("sort", "sort compositions by key or value").Default("value").Enum("key", "value")
	order    = app.Flag("order", "sort order").Default("desc").Enum("asc", "desc")
	nulls    = app.Flag("nullsfirst", "sort missing values first").Bool()

	// technical
	nThreads = app.Flag("nt", "number of threads to use").Int()
	cacheF   = app.Flag("cache", "cache results in a file").String()

	// output
	outLogF  = app.Flag("log", "write log to a file").String()
	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")
	jsonF = app.Flag("json", "write json output to a file instead of stdout").String()
)

// policy creates the reconstruction policy from the command line.
func policy() sn.Policy {
	p := sn.DefaultPolicy()
	p.DDOF = *ddof
	p.Weighted = *weighted
	p.Unsigned = !*signed
	p.Normalize = sn.Normalize{Experimental: *normExp, Theoretical: *normTheor}
	p.NormalizeFactors = *normFactors
	p.Standard = sn.Standard{Label: *standard, Amount: *standardAmt}
	p.Threshold = sn.Threshold{Value: *threshold, Filter: *thresholdFlt}
	if *christieF != "" {
		t, err := readChristie(*christieF)
		if err != nil {
			log.Fatal("Error reading response factors:", err)
		}
		log.Infof("Read %d response factors", t.Len())
		p.Christie = t
	}
	return p
}

// options creates the prediction options from the command line.
func options() species.Options {
	m, err := species.ParseModel(*model)
	if err != nil {
		log.Fatal(err)
	}
	opts := species.Options{Model: m, Workers: runtime.GOMAXPROCS(0)}
	if *discriminantsF != "" {
		f, err := os.Open(*discriminantsF)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		opts.Discriminants, err = readDiscriminants(f)
		if err != nil {
			log.Fatal("Error reading discriminants:", err)
		}
		if m != species.GunstoneModel {
			log.Warning("Discriminants are only used by the gunstone model")
		}
	}
	log.Infof("Using %s model", m)
	return opts
}

// settings creates the composition settings from the command line.
func settings() composition.Settings {
	st := composition.DefaultSettings()
	st.DDOF = *ddof
	st.Round = *round
	var err error
	st.Adduct, err = fatty.ParseAdduct(*adduct)
	if err != nil {
		log.Fatal(err)
	}
	st.Sort.By, err = getSortFromString(*sortBy)
	if err != nil {
		log.Fatal(err)
	}
	st.Sort.Order, err = getOrderFromString(*order)
	if err != nil {
		log.Fatal(err)
	}
	st.Sort.NullsLast = !*nulls
	limit, err := getMaxFromString(*maxValue)
	if err != nil {
		log.Fatal(err)
	}
	st.Selections = nil
	for _, code := range *compositions {
		c, err := composition.ParseComposition(code)
		if err != nil {
			log.Fatal(err)
		}
		st.Selections = append(st.Selections, composition.Selection{
			Composition: c,
			Filter:      composition.Filter{Min: *minValue, Max: limit, Exclude: *exclude},
		})
	}
	return st
}

func run(store *cache.Store) (summary *RunSummary) {
	startTime := time.Now()
	summary = &RunSummary{
		Policy:   policy(),
		Options:  options(),
		Settings: settings(),
	}

	results := make([]*sn.Result, 0, len(*sampleFileNames))
	predictions := make(map[string]species.Prediction, len(*sampleFileNames))
	for _, fn := range *sampleFileNames {
		sample, err := readSampleFile(fn)
		if err != nil {
			log.Fatal("Error reading sample:", err)
		}
		if _, ok := predictions[sample.Name]; ok {
			log.Fatalf("Duplicate sample name: %s", sample.Name)
		}
		log.Infof("Read sample %s with %d fatty acids", sample.Name, len(sample.Rows))

		res, err := cache.Memo(store, "reconstruction", func() (*sn.Result, error) {
			return sn.Reconstruct(sample, summary.Policy)
		}, sample, summary.Policy)
		if err != nil {
			log.Fatal("Error reconstructing positional distributions:", err)
		}

		pos := res.Positional()
		pred, err := cache.Memo(store, "species", func() (species.Prediction, error) {
			return species.Predict(pos, summary.Options)
		}, pos, summary.Options)
		if err != nil {
			log.Fatal("Error predicting species:", err)
		}

		buckets, err := composition.Group(pred, summary.Settings)
		if err != nil {
			log.Fatal("Error grouping species:", err)
		}
		log.Noticef("%s: %d species, %d %v compositions", sample.Name, len(pred), len(buckets),
			summary.Settings.Selections[0].Composition)
		for i, b := range buckets {
			if i >= 10 {
				break
			}
			log.Infof("%s\t%.6f", b.Key, b.Value)
		}

		results = append(results, res)
		predictions[sample.Name] = pred
		summary.Samples = append(summary.Samples, SampleSummary{
			Reconstruction: res,
			Species:        pred.Sorted(),
			Compositions:   buckets,
		})
	}

	if len(results) > 1 {
		summary.Combined = sn.Combine(results, *ddof)
		rows, err := composition.Compare(predictions, summary.Settings)
		if err != nil {
			log.Fatal("Error comparing samples:", err)
		}
		summary.Comparison = rows
		log.Noticef("Compared %d samples: %d compositions", len(results), len(rows))
	}

	deltaT := time.Since(startTime)
	log.Noticef("Running time: %v", deltaT)
	summary.TotalTime = deltaT.Seconds()
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
	for _, p := range packages {
		logging.SetLevel(level, p)
	}

	// print revision
	log.Info(version)

	// print commandline
	log.Info("Command line:", os.Args)

	runtime.GOMAXPROCS(*nThreads)

	effectiveNThreads := runtime.GOMAXPROCS(0)
	log.Infof("Using threads: %d.\n", effectiveNThreads)

	var store *cache.Store
	if *cacheF != "" {
		store, err = cache.Open(*cacheF)
		if err != nil {
			log.Fatal("Error opening cache:", err)
		}
		defer store.Close()
	}

	summary := run(store)
	summary.NThreads = effectiveNThreads
	summary.Version = version
	summary.CommandLine = os.Args

	// output summary in json format
	j, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Error(err)
		return
	}
	if *jsonF == "" {
		os.Stdout.Write(append(j, '\n'))
		return
	}
	f, err := os.Create(*jsonF)
	if err != nil {
		log.Error("Error creating json output file:", err)
		return
	}
	f.Write(j)
	f.Close()
}
