package feff

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/HamletTheHamster/xafs-pipeline/internal/table"
)

// ErrUnknownPath means files.dat names a path that paths.dat does not
// describe.
var ErrUnknownPath = errors.New("path missing from paths.dat")

// ListingLayout is the out.csv layout: the files.dat columns followed by a
// label and a selection flag the user edits before path selection.
var ListingLayout = table.Layout{
	Sep: ", ",
	Columns: []table.Column{
		{Name: "file", Width: 13},
		{Name: "sig2", Width: 8},
		{Name: "amp ratio", Width: 10},
		{Name: "deg", Width: 8},
		{Name: "nlegs", Width: 6},
		{Name: "r effective", Width: 12},
		{Name: "label", Width: 16, Left: true},
		{Name: "select", Width: 6},
	},
}

// Listing joins files.dat rows with their paths.dat labels. Each label ends
// with the path index so labels stay unique ("Fe.Fe.1").
func Listing(
	files []FileEntry,
	paths map[int]PathInfo,
) (
	[][]string, error,
) {

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		index, ok := f.Index()
		if !ok {
			return nil, fmt.Errorf("%w: no index in %q", ErrUnknownPath, f.File)
		}
		info, ok := paths[index]
		if !ok {
			return nil, fmt.Errorf("%w: %s (index %d)", ErrUnknownPath, f.File, index)
		}

		label := info.Label() + "." + strconv.Itoa(index)
		rows = append(rows, []string{
			f.File, f.Sig2, f.AmpRatio, f.Deg, f.NLegs, f.REffective, label, "0",
		})
	}
	return rows, nil
}

// SaveListing writes the listing rows under a header to path.
func SaveListing(path string, rows [][]string) error {
	return table.WriteFile(path, ListingLayout, rows)
}

// BuildListing reads paths.dat and files.dat from a FEFF run directory and
// returns the joined listing rows.
func BuildListing(dir string) ([][]string, error) {
	pf, err := os.Open(filepath.Join(dir, "paths.dat"))
	if err != nil {
		return nil, err
	}
	defer pf.Close()
	paths, err := ParsePaths(pf)
	if err != nil {
		return nil, err
	}

	ff, err := os.Open(filepath.Join(dir, "files.dat"))
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	files, err := ParseFiles(ff)
	if err != nil {
		return nil, err
	}

	return Listing(files, paths)
}
