package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bitbucket.org/Davydov/tagcomp/christie"
	"bitbucket.org/Davydov/tagcomp/fatty"
	"bitbucket.org/Davydov/tagcomp/sn"
	"bitbucket.org/Davydov/tagcomp/species"
)

// replicates is a list of replicate values, a single number is one
// replicate.
type replicates []float64

func (r *replicates) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '[' && !bytes.Equal(data, []byte("null")) {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = replicates{v}
		return nil
	}
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*r = values
	return nil
}

// inputRow is a row of the sample file.
type inputRow struct {
	Label          string     `json:"label"`
	FattyAcid      string     `json:"fattyAcid"`
	Whole          replicates `json:"whole"`
	Two            replicates `json:"two"`
	OneAndThree    replicates `json:"oneAndThree"`
	OneTwoTwoThree replicates `json:"oneTwoTwoThree"`
}

// inputSample is the sample file.
type inputSample struct {
	Name string     `json:"name"`
	Rows []inputRow `json:"rows"`
}

// readSample reads a sample in JSON format. If the sample has no name,
// name is used.
func readSample(r io.Reader, name string) (sn.Sample, error) {
	var in inputSample
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return sn.Sample{}, fmt.Errorf("%s: %w", name, err)
	}
	s := sn.Sample{Name: in.Name, Rows: make([]sn.Row, len(in.Rows))}
	if s.Name == "" {
		s.Name = name
	}
	for i, row := range in.Rows {
		fa, err := fatty.Parse(row.FattyAcid)
		if err != nil {
			return sn.Sample{}, &sn.SchemaMismatchError{
				Field:    fmt.Sprintf("%s: rows[%d].fattyAcid", s.Name, i),
				Expected: "fatty acid notation",
				Actual:   fmt.Sprintf("%q", row.FattyAcid),
			}
		}
		values := make(map[sn.Pool][]float64)
		for pool, v := range map[sn.Pool]replicates{
			sn.Whole:          row.Whole,
			sn.Two:            row.Two,
			sn.OneAndThree:    row.OneAndThree,
			sn.OneTwoTwoThree: row.OneTwoTwoThree,
		} {
			if v != nil {
				values[pool] = v
			}
		}
		label := row.Label
		if label == "" {
			label = fa.String()
		}
		s.Rows[i] = sn.Row{Label: label, FattyAcid: fa, Values: values}
	}
	if err := s.Validate(); err != nil {
		return sn.Sample{}, fmt.Errorf("%s: %w", s.Name, err)
	}
	return s, nil
}

// readSampleFile reads a sample from a file, naming it after the file.
func readSampleFile(fn string) (sn.Sample, error) {
	f, err := os.Open(fn)
	if err != nil {
		return sn.Sample{}, err
	}
	defer f.Close()
	return readSample(f, strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn)))
}

// readChristie reads response factors in CSV format.
func readChristie(fn string) (*christie.Table, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t := christie.NewTable()
	if err := t.LoadFromCSV(f); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return t, nil
}

// readDiscriminants reads per position multipliers in JSON format,
// e.g. {"18:1Δ9c": [1, 1.2, 1]}.
func readDiscriminants(r io.Reader) (species.Discriminants, error) {
	var d species.Discriminants
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	for fa, v := range d {
		for _, x := range v {
			if x < 0 {
				return nil, fmt.Errorf("negative discriminant for %s", fa)
			}
		}
	}
	return d, nil
}
