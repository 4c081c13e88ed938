// Package christie holds detector response factors used to correct
// raw chromatographic areas of fatty acid methyl esters.
package christie

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/op/go-logging"

	"bitbucket.org/Davydov/tagcomp/fatty"
)

var log = logging.MustGetLogger("christie")

// Table maps fatty acids to response factors.
type Table struct {
	factors map[fatty.FattyAcid]float64
}

// NewTable creates an empty response factor table.
func NewTable() *Table {
	return &Table{
		factors: make(map[fatty.FattyAcid]float64),
	}
}

// LoadFromCSV loads factors from a CSV file (format: fatty_acid,factor).
// The first line is a header.
func (t *Table) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// header
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ";")
		if len(parts) < 2 {
			parts = strings.Split(line, ",")
		}
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected fatty acid and factor", lineNum)
		}
		// the last field is the factor, notations may contain commas
		factorStr := strings.TrimSpace(parts[len(parts)-1])
		name := strings.TrimSpace(strings.Join(parts[:len(parts)-1], ","))

		fa, err := fatty.Parse(name)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		factor, err := strconv.ParseFloat(factorStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid factor '%s': %w", lineNum, factorStr, err)
		}
		if factor <= 0 {
			return fmt.Errorf("line %d: factor must be positive, got %v", lineNum, factor)
		}
		t.factors[fa] = factor
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}
	log.Debugf("Loaded %d response factors", len(t.factors))
	return nil
}

// Add adds or updates a factor.
func (t *Table) Add(fa fatty.FattyAcid, factor float64) {
	t.factors[fa] = factor
}

// Len returns the number of factors in the table.
func (t *Table) Len() int {
	return len(t.factors)
}

// Factor returns the response factor of a fatty acid. Missing entries
// default to 1. A nil table has no entries.
func (t *Table) Factor(fa fatty.FattyAcid) float64 {
	if t == nil {
		return 1
	}
	if f, ok := t.factors[fa]; ok {
		return f
	}
	return 1
}

// MarshalJSON encodes the table as an object keyed by notation.
func (t *Table) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(t.factors))
	for fa, f := range t.factors {
		m[fa.String()] = f
	}
	return json.Marshal(m)
}
