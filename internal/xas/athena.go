package xas

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/HamletTheHamster/xafs-pipeline/internal/engine"
	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
)

// Input formats accepted by Run.
const (
	FormatZip = "zip"
	FormatH5  = "h5"
)

// OutputsArchive is written by Run when ZipOutputs is set.
const OutputsArchive = "outputs.zip"

// Outputs are the files produced for one spectrum, relative to the stage's
// output directory.
type Outputs struct {
	Project string
	Edge    string
	Flat    string
}

// OutputsFor names the outputs of a batch member. An empty key is a single
// file run.
func OutputsFor(key string) Outputs {
	if key == "" {
		return Outputs{Project: "prj/prj.prj", Edge: "edge/edge.png", Flat: "flat/flat.png"}
	}
	return Outputs{
		Project: "prj/" + key + ".prj",
		Edge:    "edge/" + key + ".png",
		Flat:    "flat/" + key + ".png",
	}
}

// Athena crops and normalises spectra through the engine, writing one
// project per spectrum and optionally the edge and flattened plots.
type Athena struct {
	Engine     engine.Normalizer
	Renderer   plotting.Renderer
	OutDir     string
	EnergyMin  float64
	EnergyMax  float64
	PlotGraph  bool
	ZipOutputs bool
	Width      float64
	Height     float64
}

func (a *Athena) out(rel string) string {
	if a.OutDir == "" {
		return rel
	}
	return filepath.Join(a.OutDir, rel)
}

// Run processes data in the given format: a zip archive (or a directory
// already extracted from one), h5 (rejected), or anything else as a single
// ASCII file. It returns the number of spectra processed.
func (a *Athena) Run(ctx context.Context, data, format string) (int, error) {
	var n int
	var err error

	switch strings.ToLower(format) {
	case FormatH5:
		return 0, fmt.Errorf("%w: h5 input %s", ErrUnsupportedFormat, data)
	case FormatZip:
		n, err = a.runBatch(ctx, data)
	default:
		var s *Spectrum
		s, err = LoadASCII(data)
		if err == nil {
			err = a.Process(ctx, s, "")
			n = 1
		}
	}
	if err != nil {
		return n, err
	}

	if a.ZipOutputs {
		if err := Archive(a.out(OutputsArchive), a.OutDir, "prj", "edge", "flat"); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (a *Athena) runBatch(ctx context.Context, data string) (int, error) {
	root := data
	info, err := os.Stat(data)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		root = a.out("dat_files")
		if err := Extract(data, root); err != nil {
			return 0, err
		}
	}

	files, err := BatchFiles(root)
	if err != nil {
		return 0, err
	}
	slog.Info("processing batch", "root", root, "files", len(files))

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		s, err := LoadASCII(f.Path)
		if err != nil {
			return i, err
		}
		if err := a.Process(ctx, s, f.Key); err != nil {
			return i, fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return len(files), nil
}

// Process crops one spectrum, normalises it into its project and plots it.
func (a *Athena) Process(ctx context.Context, s *Spectrum, key string) error {
	s, err := Crop(s, a.EnergyMin, a.EnergyMax)
	if err != nil {
		return err
	}
	energy, err := s.Energy()
	if err != nil {
		return err
	}
	mu, err := s.Mu()
	if err != nil {
		return err
	}

	outputs := OutputsFor(key)
	project := a.out(outputs.Project)
	if err := os.MkdirAll(filepath.Dir(project), 0o755); err != nil {
		return err
	}

	res, err := a.Engine.Normalize(ctx, engine.NormalizeRequest{
		Name:    s.Name,
		Energy:  energy,
		Mu:      mu,
		Project: project,
	})
	if err != nil {
		return fmt.Errorf("normalize %s: %w", s.Name, err)
	}
	slog.Info("normalised", "name", s.Name, "key", key, "e0", res.E0, "edge_step", res.EdgeStep)

	if !a.PlotGraph {
		return nil
	}
	if err := plotting.Save(a.Renderer, plotting.Single(EdgePanel(energy, mu, res), a.Width, a.Height), a.out(outputs.Edge)); err != nil {
		return err
	}
	return plotting.Save(a.Renderer, plotting.Single(FlatPanel(energy, res), a.Width, a.Height), a.out(outputs.Flat))
}

// EdgePanel shows the pre- and post-edge lines over the measured mu.
func EdgePanel(energy, mu []float64, res *engine.NormalizeResult) plotting.Panel {
	p := plotting.Panel{
		Title:  "pre-edge and post-edge fitting to mu",
		XLabel: "Energy (eV)",
		YLabel: "x mu(E)",
		Grid:   true,
	}
	if len(res.PreEdge) == len(energy) {
		p.Add(plotting.Series{Name: "pre-edge", X: energy, Y: res.PreEdge, Color: plotting.Green})
	}
	if len(res.PostEdge) == len(energy) {
		p.Add(plotting.Series{Name: "post-edge", X: energy, Y: res.PostEdge, Color: plotting.Red})
	}
	p.Add(plotting.Series{Name: "fit data", X: energy, Y: mu, Color: plotting.Blue})
	return p
}

func FlatPanel(energy []float64, res *engine.NormalizeResult) plotting.Panel {
	p := plotting.Panel{
		XLabel: "Energy (eV)",
		YLabel: "normalised x mu(E)",
		Grid:   true,
	}
	p.Add(plotting.Series{Name: "flat", X: energy, Y: res.Flat, Color: plotting.Blue})
	return p
}
