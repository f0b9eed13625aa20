// Package feff runs the FEFF multiple-scattering code and turns its output
// into the path listing the selection stage reads.
package feff

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	separatorPattern = regexp.MustCompile(`^-{15}`)
	pathHeadPattern  = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+([0-9.]+)\s+index`)
	atomHeadPattern  = regexp.MustCompile(`^\s*x\s+y\s+z\s`)
	dashesPattern    = regexp.MustCompile(`^-+$`)
	fileIDPattern    = regexp.MustCompile(`\d+`)
)

// PathInfo is one scattering path described in paths.dat.
type PathInfo struct {
	Index      int
	NLeg       int
	Degeneracy float64
	Atoms      []string
}

// Label joins the path's atoms with dots, e.g. "Fe.O".
func (p PathInfo) Label() string {
	return strings.Join(p.Atoms, ".")
}

// ParsePaths reads paths.dat. Everything before the dashed separator is
// title text; after it each path is a header line ("1 2 8.000 index, nleg,
// degeneracy, r= ...") followed by a column heading and one line per atom,
// the quoted potential label in the fifth field.
func ParsePaths(r io.Reader) (map[int]PathInfo, error) {
	paths := map[int]PathInfo{}
	var current *PathInfo
	meta := true

	flush := func() {
		if current != nil {
			paths[current.Index] = *current
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if meta {
			if separatorPattern.MatchString(strings.TrimSpace(line)) {
				meta = false
			}
			continue
		}

		if m := pathHeadPattern.FindStringSubmatch(line); m != nil {
			flush()
			index, _ := strconv.Atoi(m[1])
			nleg, _ := strconv.Atoi(m[2])
			degeneracy, _ := strconv.ParseFloat(m[3], 64)
			current = &PathInfo{Index: index, NLeg: nleg, Degeneracy: degeneracy}
			continue
		}
		if current == nil || atomHeadPattern.MatchString(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		current.Atoms = append(current.Atoms, strings.ReplaceAll(fields[4], "'", ""))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("paths.dat: %w", err)
	}

	flush()
	return paths, nil
}

// FileEntry is one row of files.dat.
type FileEntry struct {
	File       string
	Sig2       string
	AmpRatio   string
	Deg        string
	NLegs      string
	REffective string
}

// Index is the path index embedded in the file name (feff0003.dat -> 3).
func (f FileEntry) Index() (int, bool) {
	m := fileIDPattern.FindString(f.File)
	if m == "" {
		return 0, false
	}
	i, err := strconv.Atoi(m)
	return i, err == nil
}

// ParseFiles reads files.dat: title lines up to a line of dashes, a column
// heading, then one whitespace-separated row per path file.
func ParseFiles(r io.Reader) ([]FileEntry, error) {
	scanner := bufio.NewScanner(r)

	found := false
	for scanner.Scan() {
		if dashesPattern.MatchString(strings.TrimSpace(scanner.Text())) {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("files.dat: no separator line")
	}

	// column heading
	scanner.Scan()

	var entries []FileEntry
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 6 {
			return nil, fmt.Errorf("files.dat: short row %q", scanner.Text())
		}
		entries = append(entries, FileEntry{
			File:       fields[0],
			Sig2:       fields[1],
			AmpRatio:   fields[2],
			Deg:        fields[3],
			NLegs:      fields[4],
			REffective: fields[5],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("files.dat: %w", err)
	}
	return entries, nil
}
