// Command xafs-select-paths builds the selected-path (sp.csv) and GDS
// parameter (gds.csv) tables from a FEFF path listing and a JSON options
// file.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/logging"
	"github.com/HamletTheHamster/xafs-pipeline/internal/selection"
)

func main() {

	outDir, strict, logFile, siteFile, args := flags()

	site, err := config.LoadSite(siteFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_, closeLog, err := logging.Init(config.StageSelectPaths, site.Log.Level, logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = run(args[0], args[1], outDir, strict)
	if logging.Finish(closeLog, "path selection failed", err) {
		os.Exit(1)
	}
}

//----------------------------------------------------------------------------//

func flags() (
	string, bool, string, string, []string,
) {

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xafs-select-paths [options] <paths.csv> <options.json>\n\n")
		fmt.Fprintf(os.Stderr, "Writes sp.csv and gds.csv from the FEFF path listing.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	outDir := pflag.StringP("out-dir", "o", ".", "directory for sp.csv and gds.csv")
	strict := pflag.Bool("strict", false, "fail when an override id matches no listed path")
	logFile := pflag.String("log-file", "", "also append log records to this file")
	siteFile := pflag.String("config", "", "site config file (default $XAFS_CONFIG or "+config.DefaultSiteFile+")")
	pflag.Parse()

	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(2)
	}

	return *outDir, *strict, *logFile, *siteFile, pflag.Args()
}

func run(
	listingFile, optionsFile, outDir string,
	strict bool,
) error {

	var opts config.SelectPaths
	if err := config.Load(config.StageSelectPaths, optionsFile, &opts); err != nil {
		return err
	}

	listing, err := selection.ReadListing(listingFile)
	if err != nil {
		return err
	}

	res := selection.Build(listing, &opts)
	if len(res.Unmatched) > 0 {
		if strict {
			return res.Strict()
		}
		slog.Warn("overrides match no listed path, ignoring", "ids", res.Unmatched)
	}

	if err := selection.Emit(outDir, res); err != nil {
		return err
	}

	slog.Info("tables written",
		"dir", outDir, "listed", len(listing), "selected", len(res.Paths), "params", len(res.Params))
	return nil
}
