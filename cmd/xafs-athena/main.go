// Command xafs-athena crops and normalises XAS data into Athena projects,
// one per spectrum, plotting the edge fits when asked.
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
	"github.com/HamletTheHamster/xafs-pipeline/internal/logging"
	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
	_ "github.com/HamletTheHamster/xafs-pipeline/internal/plotting/gnuplot"
	"github.com/HamletTheHamster/xafs-pipeline/internal/xas"
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

	_, closeLog, err := logging.Init(config.StageAthena, site.Log.Level, logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, site, args[0], args[1], args[2], outDir)
	stop()
	if logging.Finish(closeLog, "athena stage failed", err) {
		os.Exit(1)
	}
}

//----------------------------------------------------------------------------//

func flags() (
	string, bool, string, string, []string,
) {

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xafs-athena [options] <data> <format> <options.json>\n\n")
		fmt.Fprintf(os.Stderr, "format is zip for an archive of scans, h5, or anything else for one ASCII file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}

	outDir := pflag.StringP("out-dir", "o", ".", "directory for prj/, edge/ and flat/")
	gnuplot := pflag.Bool("gnuplot", false, "also draw each plot with gnuplot (needs a -tags gnuplot build)")
	logFile := pflag.String("log-file", "", "also append log records to this file")
	siteFile := pflag.String("config", "", "site config file")
	pflag.Parse()

	if pflag.NArg() != 3 {
		pflag.Usage()
		os.Exit(2)
	}

	return *outDir, *gnuplot, *logFile, *siteFile, pflag.Args()
}

func run(
	ctx context.Context,
	site *config.Site,
	data, format, optionsFile, outDir string,
) error {

	var opts config.Athena
	if err := config.Load(config.StageAthena, optionsFile, &opts); err != nil {
		return err
	}

	renderer, err := plotting.ForSite(site.Plot.Gnuplot)
	if err != nil {
		return err
	}

	a := &xas.Athena{
		Engine:     &engine.Subprocess{Command: site.Engine.Command, Args: site.Engine.Args},
		Renderer:   renderer,
		OutDir:     outDir,
		EnergyMin:  opts.EnergyMin.Value,
		EnergyMax:  opts.EnergyMax.Value,
		PlotGraph:  opts.PlotGraph.Value,
		ZipOutputs: opts.ZipOutputs.Value,
		Width:      site.Plot.WidthIn,
		Height:     site.Plot.HeightIn,
	}

	n, err := a.Run(ctx, data, format)
	if err != nil {
		return err
	}
	slog.Info("spectra normalised", "count", n, "dir", outDir)
	return nil
}
