// Command xafs-artemis fits selected FEFF paths to an Athena project and
// writes fit_report.txt.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/engine"
	"github.com/HamletTheHamster/xafs-pipeline/internal/feff"
	"github.com/HamletTheHamster/xafs-pipeline/internal/fit"
	"github.com/HamletTheHamster/xafs-pipeline/internal/logging"
	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
	_ "github.com/HamletTheHamster/xafs-pipeline/internal/plotting/gnuplot"
)

func main() {

	outDir, gnuplot, logFile, siteFile, args := flags()

	site, err := config.LoadSite(siteFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if gnuplot {
		site.Plot.Gnuplot = true
	}

	_, closeLog, err := logging.Init(config.StageArtemis, site.Log.Level, logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, site, args, outDir)
	stop()
	if logging.Finish(closeLog, "fit failed", err) {
		os.Exit(1)
	}
}

//----------------------------------------------------------------------------//

func flags() (
	string, bool, string, string, []string,
) {

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr,
			"Usage: xafs-artemis [options] <project.prj> <structure,...> <gds.csv> <sp.csv> <options.json>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	outDir := pflag.StringP("out-dir", "o", ".", "directory for the FEFF runs, report and plots")
	gnuplot := pflag.Bool("gnuplot", false, "also draw each plot with gnuplot (needs a -tags gnuplot build)")
	logFile := pflag.String("log-file", "", "also append log records to this file")
	siteFile := pflag.String("config", "", "site config file")
	pflag.Parse()

	if pflag.NArg() != 5 {
		pflag.Usage()
		os.Exit(2)
	}

	return *outDir, *gnuplot, *logFile, *siteFile, pflag.Args()
}

func run(
	ctx context.Context,
	site *config.Site,
	args []string,
	outDir string,
) error {

	var opts config.Artemis
	if err := config.Load(config.StageArtemis, args[4], &opts); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	renderer, err := plotting.ForSite(site.Plot.Gnuplot)
	if err != nil {
		return err
	}

	a := &fit.Artemis{
		Engine:   &engine.Subprocess{Command: site.Engine.Command, Args: site.Engine.Args},
		Feff:     &feff.Runner{Binary: site.FEFF.Binary},
		Renderer: renderer,
		OutDir:   outDir,
		Width:    site.Plot.WidthIn,
		Height:   site.Plot.HeightIn,
	}

	_, err = a.Run(ctx, fit.Inputs{
		Project:    args[0],
		Structures: config.SplitList(args[1]),
		ParamsFile: args[2],
		PathsFile:  args[3],
		Options:    opts,
	})
	if err != nil {
		return err
	}
	slog.Info("fit report written", "dir", outDir)
	return nil
}
