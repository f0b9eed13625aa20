package selection

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/gds"
	"github.com/HamletTheHamster/xafs-pipeline/internal/table"
)

const (
	SelectedFile = "sp.csv"
	ParamsFile   = "gds.csv"
)

// Layout is the sp.csv column layout.
var Layout = table.Layout{
	Sep: ", ",
	Columns: []table.Column{
		{Name: "id", Width: 4},
		{Name: "filename", Width: 12},
		{Name: "label", Width: 24},
		{Name: "s02", Width: 3},
		{Name: "e0", Width: 4},
		{Name: "sigma2", Width: 24},
		{Name: "deltar", Width: 10},
	},
}

func selectedRows(paths []Path) [][]string {
	rows := make([][]string, len(paths))
	for i, p := range paths {
		rows[i] = []string{strconv.Itoa(i + 1), p.Filename, p.Label, p.S02, p.E0, p.Sigma2, p.Deltar}
	}
	return rows
}

func paramRows(params []gds.Param) [][]string {
	rows := make([][]string, len(params))
	for i, p := range params {
		rows[i] = p.Cells(i + 1)
	}
	return rows
}

func writeTable(w io.Writer, layout table.Layout, rows [][]string) error {
	tw := table.NewWriter(w, layout)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, row := range rows {
		if err := tw.Write(row...); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteSelected writes the selected-path table with row ids from 1.
func WriteSelected(w io.Writer, paths []Path) error {
	return writeTable(w, Layout, selectedRows(paths))
}

// WriteParams writes the GDS table with row ids from 1.
func WriteParams(w io.Writer, params []gds.Param) error {
	return writeTable(w, gds.Layout, paramRows(params))
}

// Emit writes sp.csv and gds.csv into dir.
func Emit(dir string, res Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	if err := table.WriteFile(filepath.Join(dir, SelectedFile), Layout, selectedRows(res.Paths)); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	if err := table.WriteFile(filepath.Join(dir, ParamsFile), gds.Layout, paramRows(res.Params)); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	return nil
}

// ReadSelected loads an emitted sp.csv. The path id is recovered from the
// file name since the row ids are only sequence numbers.
func ReadSelected(path string) ([]Path, error) {
	k, err := table.ReadKeyed(path, "id")
	if err != nil {
		return nil, err
	}

	var paths []Path
	k.Each(func(_ string, row table.Row) {
		id, _ := PathID(row["filename"])
		paths = append(paths, Path{
			ID:       id,
			Filename: row["filename"],
			Label:    row["label"],
			S02:      row["s02"],
			E0:       row["e0"],
			Sigma2:   row["sigma2"],
			Deltar:   row["deltar"],
		})
	})
	return paths, nil
}

// ReadParams loads an emitted gds.csv.
func ReadParams(path string) ([]gds.Param, error) {
	k, err := table.ReadKeyed(path, "id")
	if err != nil {
		return nil, err
	}
	return gds.FromKeyed(k), nil
}

// Options rebuilds the selection options that reproduce a pair of emitted
// tables: every selected path becomes an explicit override, the shared
// parameters become their defaults and everything else goes to "gds".
func Options(params []gds.Param, paths []Path) *config.SelectPaths {
	opts := &config.SelectPaths{}

	for _, p := range params {
		switch p.Name {
		case gds.Amp:
			opts.Amp = config.DefaultsOf(p)
		case gds.Enot:
			opts.Enot = config.DefaultsOf(p)
		case gds.Alpha:
			opts.Alpha = config.DefaultsOf(p)
		default:
			opts.GDS = append(opts.GDS, config.ParamRecord{Name: p.Name, ParamDefaults: config.DefaultsOf(p)})
		}
	}

	for _, p := range paths {
		opts.Paths = append(opts.Paths, config.PathOverride{
			ID:     config.Num(float64(p.ID)),
			S02:    p.S02,
			E0:     p.E0,
			Sigma2: p.Sigma2,
			Deltar: p.Deltar,
		})
	}
	return opts
}
