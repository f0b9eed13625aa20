// Package fit runs the artemis stage: FEFF for each structure, then a fit
// of the selected paths against the first group of an Athena project.
package fit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/engine"
	"github.com/HamletTheHamster/xafs-pipeline/internal/feff"
	"github.com/HamletTheHamster/xafs-pipeline/internal/gds"
	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
	"github.com/HamletTheHamster/xafs-pipeline/internal/selection"
)

const (
	ReportFile = "fit_report.txt"
	NormPlot   = "norm.png"
	RMRPlot    = "rmr.png"
	ChiKRPlot  = "chikr.png"
)

var (
	ErrNoPaths      = errors.New("no selected paths")
	ErrNoStructures = errors.New("no structure files")
)

// FeffRunner runs FEFF on one structure in dir.
type FeffRunner interface {
	Run(ctx context.Context, structure, dir string) error
}

var _ FeffRunner = (*feff.Runner)(nil)

// Inputs are the files a fit is built from.
type Inputs struct {
	Project    string
	Structures []string
	ParamsFile string
	PathsFile  string
	Options    config.Artemis
}

// Artemis ties FEFF, the GDS and path tables and the engine together.
type Artemis struct {
	Engine   engine.Fitter
	Feff     FeffRunner
	Renderer plotting.Renderer
	OutDir   string
	Width    float64
	Height   float64
}

func (a *Artemis) out(rel string) string {
	if a.OutDir == "" {
		return rel
	}
	return filepath.Join(a.OutDir, rel)
}

// Run performs the fit, writes fit_report.txt and, when asked, the plots.
func (a *Artemis) Run(ctx context.Context, in Inputs) (*engine.FitResult, error) {
	if len(in.Structures) == 0 {
		return nil, ErrNoStructures
	}

	var feffDirs []string
	for _, s := range in.Structures {
		dir := a.out(feff.DirFor(s))
		slog.Info("running feff", "structure", s, "dir", dir)
		if err := a.Feff.Run(ctx, s, dir); err != nil {
			return nil, err
		}
		feffDirs = append(feffDirs, dir)
	}

	params, err := selection.ReadParams(in.ParamsFile)
	if err != nil {
		return nil, err
	}
	paths, err := selection.ReadSelected(in.PathsFile)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPaths, in.PathsFile)
	}

	req := Request(in.Project, feffDirs, params, paths, in.Options.FitVars)
	slog.Info("fitting", "project", in.Project, "params", len(req.Params), "paths", len(req.Paths))

	res, err := a.Engine.Fit(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(a.out(ReportFile), []byte(res.Report), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ReportFile, err)
	}

	if in.Options.PlotGraph.Value {
		if err := a.plot(res, req.Transform); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Request converts the tables into an engine request. Varied parameters
// are sent as guesses, the rest as definitions.
func Request(
	project string,
	feffDirs []string,
	params []gds.Param,
	paths []selection.Path,
	fv config.FitVars,
) (
	engine.FitRequest,
) {

	req := engine.FitRequest{
		Project:   project,
		FeffDirs:  feffDirs,
		Transform: Transform(fv),
	}
	for _, p := range params {
		req.Params = append(req.Params, engine.Param{
			Name:  p.Name,
			Kind:  string(p.Kind()),
			Value: p.Value,
			Expr:  p.Expr,
			Vary:  p.Vary,
		})
	}
	for _, p := range paths {
		req.Paths = append(req.Paths, engine.Path{
			Filename: p.Filename,
			Label:    p.Label,
			S02:      p.S02,
			E0:       p.E0,
			Sigma2:   p.Sigma2,
			Deltar:   p.Deltar,
		})
	}
	return req
}

func Transform(fv config.FitVars) engine.Transform {
	return engine.Transform{
		Fitspace: fv.Fitspace,
		Kmin:     fv.Kmin.Value,
		Kmax:     fv.Kmax.Value,
		Kw:       fv.Kw.Value,
		Dk:       fv.Dk.Value,
		Window:   fv.Window,
		Rmin:     fv.Rmin.Value,
		Rmax:     fv.Rmax.Value,
	}
}
