package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Row maps a header name to a trimmed cell.
type Row map[string]string

// Keyed is a header-aware table indexed by one of its columns. IDs keeps
// the order in which ids first appeared in the file.
type Keyed struct {
	Header []string
	IDs    []string
	Rows   map[string]Row
}

func (k *Keyed) Len() int { return len(k.IDs) }

// Each calls fn for every row in file order.
func (k *Keyed) Each(fn func(id string, row Row)) {
	for _, id := range k.IDs {
		fn(id, k.Rows[id])
	}
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// ReadKeyed parses a comma-delimited file with a header row into rows keyed
// by idColumn. A missing file is logged and yields an empty table.
func ReadKeyed(path, idColumn string) (*Keyed, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("input table not found, treating as empty", "path", path)
		return &Keyed{Rows: map[string]Row{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	k, err := DecodeKeyed(f, idColumn)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return k, nil
}

// DecodeKeyed is ReadKeyed over an already open reader.
func DecodeKeyed(r io.Reader, idColumn string) (*Keyed, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, err
	}

	k := &Keyed{Rows: map[string]Row{}}
	if len(records) == 0 {
		return k, nil
	}

	k.Header = trimAll(records[0])
	idIndex := -1
	for i, name := range k.Header {
		if name == idColumn {
			idIndex = i
		}
	}
	if idIndex < 0 {
		return nil, fmt.Errorf("no %q column in header %v", idColumn, k.Header)
	}

	for _, record := range records[1:] {
		cells := trimAll(record)
		if idIndex >= len(cells) || cells[idIndex] == "" {
			continue
		}

		row := Row{}
		for i, name := range k.Header {
			if i < len(cells) {
				row[name] = cells[i]
			}
		}

		id := cells[idIndex]
		if _, seen := k.Rows[id]; !seen {
			k.IDs = append(k.IDs, id)
		}
		k.Rows[id] = row
	}
	return k, nil
}

// ReadRows returns the raw records of a comma-delimited file, cells left
// untrimmed. A missing file is logged and yields no rows.
func ReadRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("input table not found, treating as empty", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Columns is a header plus one float slice per column.
type Columns struct {
	Header []string
	Values [][]float64
}

// ReadColumns loads a headed CSV of numbers column-wise. Malformed cells
// become 0 and are logged.
func ReadColumns(r io.Reader) (*Columns, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("table: no header row")
	}

	c := &Columns{Header: trimAll(records[0])}
	c.Values = make([][]float64, len(c.Header))
	for line, record := range records[1:] {
		for i := range c.Header {
			var cell string
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				slog.Warn("malformed number, using 0", "row", line+2, "column", c.Header[i], "value", cell)
				v = 0
			}
			c.Values[i] = append(c.Values[i], v)
		}
	}
	return c, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
