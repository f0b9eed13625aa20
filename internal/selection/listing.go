// Package selection builds the selected-path and GDS tables a fit is run
// from, out of a FEFF path listing and the user's path choices.
package selection

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/HamletTheHamster/xafs-pipeline/internal/table"
)

var idPattern = regexp.MustCompile(`\d+`)

// PathID extracts the first run of digits in s, e.g. 2 from "feff0002.dat".
func PathID(s string) (int, bool) {
	m := idPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	id, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Row is one scattering path from the listing: the file in the first
// column, the label in the second to last, the selection flag in the last.
type Row struct {
	ID       int
	Filename string
	Label    string
	Selected bool
}

// ParseListing keeps the records whose first cell carries a numeric id.
// That drops the header. A malformed flag counts as unselected.
func ParseListing(records [][]string) []Row {
	var rows []Row
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		id, ok := PathID(record[0])
		if !ok {
			continue
		}

		flag, err := strconv.Atoi(strings.TrimSpace(record[len(record)-1]))
		if err != nil {
			flag = 0
		}
		rows = append(rows, Row{
			ID:       id,
			Filename: strings.TrimSpace(record[0]),
			Label:    strings.TrimSpace(record[len(record)-2]),
			Selected: flag != 0,
		})
	}
	return rows
}

// ReadListing loads the path listing written by the FEFF stage.
func ReadListing(path string) ([]Row, error) {
	records, err := table.ReadRows(path)
	if err != nil {
		return nil, err
	}
	return ParseListing(records), nil
}
