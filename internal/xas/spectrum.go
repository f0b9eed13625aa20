// Package xas loads XAS spectra, crops them to an energy window and runs
// the normalisation stage over single files or extracted batches.
package xas

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported data format")
	ErrNoData            = errors.New("no numeric data")
	ErrMissingColumn     = errors.New("missing column")
)

// Spectrum is a column table of one measurement, labels lower-cased.
type Spectrum struct {
	Name    string
	Labels  []string
	Columns [][]float64
}

// Column returns the column called label.
func (s *Spectrum) Column(label string) ([]float64, error) {
	for i, l := range s.Labels {
		if l == label {
			return s.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%w %q in %s (have %v)", ErrMissingColumn, label, s.Name, s.Labels)
}

func (s *Spectrum) Energy() ([]float64, error) { return s.Column("energy") }
func (s *Spectrum) Mu() ([]float64, error)     { return s.Column("mu") }

// Len is the number of points.
func (s *Spectrum) Len() int {
	if len(s.Columns) == 0 {
		return 0
	}
	return len(s.Columns[0])
}

// LoadASCII reads a whitespace or comma separated column file.
func LoadASCII(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadASCII(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadASCII parses columns of numbers. Lines before the data that start with
// '#' (or fail to parse) are header text; the last of them names the
// columns when its word count matches. Unnamed columns are col1, col2, ...
// Known aliases are then renamed: col1 to energy, col2 and xmu to mu.
func ReadASCII(r io.Reader, name string) (*Spectrum, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(512); bytes.IndexByte(head, 0) >= 0 {
		return nil, fmt.Errorf("%w: binary file", ErrUnsupportedFormat)
	}

	var (
		header string
		rows   [][]float64
	)

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "#") {
			if len(rows) == 0 {
				header = strings.TrimSpace(strings.TrimLeft(text, "#"))
			}
			continue
		}

		values, ok := parseRow(text)
		if !ok {
			if len(rows) == 0 {
				header = text
				continue
			}
			return nil, fmt.Errorf("line %d: not numeric: %q", line, text)
		}
		if len(rows) > 0 && len(values) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: %d columns, want %d", line, len(values), len(rows[0]))
		}
		rows = append(rows, values)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	ncol := len(rows[0])
	s := &Spectrum{Name: name, Labels: labels(header, ncol), Columns: make([][]float64, ncol)}
	for c := range s.Columns {
		s.Columns[c] = make([]float64, len(rows))
		for i, row := range rows {
			s.Columns[c][i] = row[c]
		}
	}
	return s, nil
}

func splitFields(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

func parseRow(text string) ([]float64, bool) {
	fields := splitFields(text)
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, len(values) > 0
}

func labels(header string, ncol int) []string {
	out := make([]string, ncol)
	words := splitFields(strings.ToLower(header))
	for i := range out {
		if len(words) == ncol {
			out[i] = words[i]
		} else {
			out[i] = "col" + strconv.Itoa(i+1)
		}
		switch out[i] {
		case "col1":
			out[i] = "energy"
		case "col2", "xmu":
			out[i] = "mu"
		}
	}
	return out
}

// Crop keeps the points from the first energy >= emin up to, but excluding,
// the first energy >= emax. A zero bound leaves that side open. Energies
// are assumed ascending.
func Crop(s *Spectrum, emin, emax float64) (*Spectrum, error) {
	if emin == 0 && emax == 0 {
		return s, nil
	}
	energy, err := s.Energy()
	if err != nil {
		return nil, err
	}

	lo, hi := 0, len(energy)
	if emin != 0 {
		lo = sort.SearchFloat64s(energy, emin)
	}
	if emax != 0 {
		hi = sort.SearchFloat64s(energy, emax)
	}
	if hi < lo {
		hi = lo
	}

	out := &Spectrum{Name: s.Name, Labels: s.Labels, Columns: make([][]float64, len(s.Columns))}
	for i, c := range s.Columns {
		out.Columns[i] = append([]float64(nil), c[lo:hi]...)
	}

	if e, _ := out.Energy(); len(e) > 0 {
		slog.Debug("cropped spectrum", "name", s.Name, "points", len(e),
			"from", floats.Min(e), "to", floats.Max(e))
	} else {
		slog.Warn("energy window is empty", "name", s.Name, "energy_min", emin, "energy_max", emax)
	}
	return out, nil
}
