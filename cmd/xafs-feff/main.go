// Command xafs-feff runs FEFF on a structure file and writes out.csv, the
// path listing that xafs-select-paths reads.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/feff"
	"github.com/HamletTheHamster/xafs-pipeline/internal/logging"
)

func main() {

	feffDir, out, logFile, siteFile, structure := flags()

	site, err := config.LoadSite(siteFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_, closeLog, err := logging.Init(config.StageFeff, site.Log.Level, logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, site, structure, feffDir, out)
	stop()
	if logging.Finish(closeLog, "feff stage failed", err) {
		os.Exit(1)
	}
}

//----------------------------------------------------------------------------//

func flags() (
	string, string, string, string, string,
) {

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xafs-feff [options] <structure.inp>\n\nOptions:\n")
		pflag.PrintDefaults()
	}

	feffDir := pflag.String("feff-dir", "feff", "directory FEFF runs in")
	out := pflag.StringP("output", "o", "out.csv", "path listing to write")
	logFile := pflag.String("log-file", "", "also append log records to this file")
	siteFile := pflag.String("config", "", "site config file")
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	return *feffDir, *out, *logFile, *siteFile, pflag.Arg(0)
}

func run(
	ctx context.Context,
	site *config.Site,
	structure, feffDir, out string,
) error {

	runner := &feff.Runner{Binary: site.FEFF.Binary}
	if err := runner.Run(ctx, structure, feffDir); err != nil {
		return err
	}

	slog.Info("reading feff output", "dir", feffDir)
	rows, err := feff.BuildListing(feffDir)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := feff.SaveListing(out, rows); err != nil {
		return err
	}
	slog.Info("path listing written", "file", out, "paths", len(rows))
	return nil
}
