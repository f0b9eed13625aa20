// Command xafs-criteria-report collects fit statistics from a list of fit
// reports into criteria_report.csv and plots each one against dataset
// number. Without report criteria in the options the input is a CSV of
// columns to plot instead.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/logging"
	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
	_ "github.com/HamletTheHamster/xafs-pipeline/internal/plotting/gnuplot"
	"github.com/HamletTheHamster/xafs-pipeline/internal/report"
)

func main() {

	outDir, xlsx, gnuplot, logFile, siteFile, args := flags()

	site, err := config.LoadSite(siteFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if gnuplot {
		site.Plot.Gnuplot = true
	}

	_, closeLog, err := logging.Init(config.StageCriteriaReport, site.Log.Level, logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = run(site, args[0], args[1], outDir, xlsx)
	if logging.Finish(closeLog, "criteria report failed", err) {
		os.Exit(1)
	}
}

//----------------------------------------------------------------------------//

func flags() (
	string, bool, bool, string, string, []string,
) {

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xafs-criteria-report [options] <report,...|columns.csv> <options.json>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	outDir := pflag.StringP("out-dir", "o", ".", "directory for the table and plots/")
	xlsx := pflag.Bool("xlsx", false, "also write "+report.XLSXFile)
	gnuplot := pflag.Bool("gnuplot", false, "also draw each plot with gnuplot (needs a -tags gnuplot build)")
	logFile := pflag.String("log-file", "", "also append log records to this file")
	siteFile := pflag.String("config", "", "site config file")
	pflag.Parse()

	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(2)
	}

	return *outDir, *xlsx, *gnuplot, *logFile, *siteFile, pflag.Args()
}

func run(
	site *config.Site,
	input, optionsFile, outDir string,
	xlsx bool,
) error {

	var opts config.CriteriaReport
	if err := config.Load(config.StageCriteriaReport, optionsFile, &opts); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	renderer, err := plotting.ForSite(site.Plot.Gnuplot)
	if err != nil {
		return err
	}

	r := &report.Reporter{
		Renderer: renderer,
		OutDir:   outDir,
		XLSX:     xlsx,
		Width:    site.Plot.WidthIn,
		Height:   site.Plot.HeightIn,
	}

	if criteria := opts.Variables(); len(criteria) > 0 {
		t, err := r.FromReports(input, criteria)
		if err != nil {
			return err
		}
		slog.Info("criteria collected", "reports", len(t.Rows))
		return nil
	}

	cols, err := r.FromColumns(input)
	if err != nil {
		return err
	}
	slog.Info("columns plotted", "columns", len(cols.Header))
	return nil
}
