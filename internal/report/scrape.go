// Package report collects fit statistics from fit reports into a table and
// plots each one against dataset number.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ErrDuplicateCriterion rejects a criteria list naming a criterion twice.
var ErrDuplicateCriterion = errors.New("criterion listed twice")

// MissingCriteriaError names the criteria a report never mentioned.
type MissingCriteriaError struct {
	File    string
	Missing []string
}

func (e *MissingCriteriaError) Error() string {
	return fmt.Sprintf("%s: criteria missing: %s", e.File, strings.Join(e.Missing, ", "))
}

// Row is the raw text of each criterion scraped from one report, in
// criteria order.
type Row []string

// Table is the criteria of several reports, one row per report.
type Table struct {
	Criteria []string
	Files    []string
	Rows     []Row
}

// Column returns the values of one criterion across reports. Text that
// does not parse becomes 0.
func (t *Table) Column(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			slog.Warn("malformed criterion value, using 0",
				"criterion", t.Criteria[i], "file", t.Files[r], "value", row[i])
		}
		out[r] = v
	}
	return out
}

// ScrapeReport looks for lines of the form "<criterion> <sep> <value>"
// ("chi_square = 12.5"). The first value found for each criterion is kept.
func ScrapeReport(r io.Reader, name string, criteria []string) (Row, error) {
	index := make(map[string]int, len(criteria))
	for i, c := range criteria {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCriterion, c)
		}
		index[c] = i
	}

	row := make(Row, len(criteria))
	found := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() && found < len(criteria) {
		words := strings.Fields(scanner.Text())
		if len(words) < 3 {
			continue
		}
		i, ok := index[words[0]]
		if !ok || row[i] != "" {
			continue
		}
		row[i] = words[2]
		found++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if found < len(criteria) {
		var missing []string
		for i, c := range criteria {
			if row[i] == "" {
				missing = append(missing, c)
			}
		}
		return nil, &MissingCriteriaError{File: name, Missing: missing}
	}
	return row, nil
}

// Scrape reads every report in order.
func Scrape(files, criteria []string) (*Table, error) {
	t := &Table{Criteria: criteria}
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		row, err := ScrapeReport(f, file, criteria)
		f.Close()
		if err != nil {
			return nil, err
		}
		t.Files = append(t.Files, file)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
