package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
	"github.com/HamletTheHamster/xafs-pipeline/internal/table"
)

// Reporter writes the criteria table and the per-criterion plots.
type Reporter struct {
	Renderer plotting.Renderer
	OutDir   string
	XLSX     bool
	Width    float64
	Height   float64
}

func (r *Reporter) out(rel string) string {
	if r.OutDir == "" {
		return rel
	}
	return filepath.Join(r.OutDir, rel)
}

// FromReports scrapes the comma-separated list of fit reports for
// criteria, writes criteria_report.csv (and .xlsx when asked) and plots
// every criterion.
func (r *Reporter) FromReports(reports string, criteria []string) (*Table, error) {
	t, err := Scrape(config.SplitList(reports), criteria)
	if err != nil {
		return nil, err
	}

	if err := t.SaveCSV(r.out(CSVFile)); err != nil {
		return nil, err
	}
	if r.XLSX {
		if err := t.SaveXLSX(r.out(XLSXFile)); err != nil {
			return nil, err
		}
	}
	slog.Info("criteria table written", "reports", len(t.Rows), "criteria", len(criteria))

	for i, c := range criteria {
		if err := r.plot(c, t.Column(i)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromColumns plots every column of a headed numeric CSV.
func (r *Reporter) FromColumns(path string) (*table.Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols, err := table.ReadColumns(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, name := range cols.Header {
		if err := r.plot(name, cols.Values[i]); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

func (r *Reporter) plot(variable string, ys []float64) error {
	fig := plotting.Single(Panel(variable, ys), r.Width, r.Height)
	return plotting.Save(r.Renderer, fig, PlotPath(r.OutDir, variable))
}
