package fit

import (
	"github.com/HamletTheHamster/xafs-pipeline/internal/engine"
	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
)

func (a *Artemis) plot(res *engine.FitResult, tr engine.Transform) error {
	if len(res.Groups) > 0 {
		fig := NormFigure(res.Groups, a.Width, a.Height)
		if err := plotting.Save(a.Renderer, fig, a.out(NormPlot)); err != nil {
			return err
		}
	}

	rmr := plotting.Single(RMRPanel(res, tr), a.Width, a.Height)
	if err := plotting.Save(a.Renderer, rmr, a.out(RMRPlot)); err != nil {
		return err
	}

	return plotting.Save(a.Renderer, ChiKRFigure(res, tr, a.Height), a.out(ChiKRPlot))
}

// NormFigure stacks every group of the project, one panel each.
func NormFigure(groups []engine.Group, width, height float64) *plotting.Figure {
	fig := &plotting.Figure{Rows: len(groups), Cols: 1, Width: width, Height: height * float64(len(groups))}
	for _, g := range groups {
		p := plotting.Panel{
			Title:  "pre-edge and post-edge fitting to mu",
			XLabel: "Energy (eV)",
			YLabel: "x mu(E)",
			Grid:   true,
		}
		p.Add(plotting.Series{Name: g.Name, X: g.Energy, Y: g.Mu, Color: plotting.Blue})
		fig.Panels = append(fig.Panels, p)
	}
	return fig
}

// fitWindow shades [lo, hi] between -rmax and rmax.
func fitWindow(lo, hi, rmax float64) plotting.Region {
	return plotting.Region{X0: lo, X1: hi, Y0: -rmax, Y1: rmax, Label: "fit range"}
}

// RMRPanel overlays magnitude and real part of chi(R) for data and fit.
func RMRPanel(res *engine.FitResult, tr engine.Transform) plotting.Panel {
	p := plotting.Panel{
		XLabel:  "Radial distance (Å)",
		YLabel:  "|FT of k^2 chi| (Å^-3)",
		XMin:    0,
		XMax:    5,
		Regions: []plotting.Region{fitWindow(tr.Rmin, tr.Rmax, tr.Rmax)},
	}
	p.Add(plotting.Series{Name: "expt. |chi(R)|", X: res.Data.R, Y: res.Data.ChiRMag, Color: plotting.Blue})
	p.Add(plotting.Series{Name: "expt.", X: res.Data.R, Y: res.Data.ChiRRe, Color: plotting.Blue, Dashed: true})
	p.Add(plotting.Series{Name: "fit |chi(R)|", X: res.Model.R, Y: res.Model.ChiRMag, Color: plotting.Red})
	p.Add(plotting.Series{Name: "fit", X: res.Model.R, Y: res.Model.ChiRRe, Color: plotting.Red, Dashed: true})
	return p
}

// ChiKRFigure puts k^2-weighted chi(k) beside |chi(R)|.
func ChiKRFigure(res *engine.FitResult, tr engine.Transform, height float64) *plotting.Figure {
	k := plotting.Panel{
		XLabel:  "k (1/Å)",
		YLabel:  "k^2 chi(k) (Å^-2)",
		XMin:    0,
		XMax:    15,
		Regions: []plotting.Region{fitWindow(tr.Kmin, tr.Kmax, tr.Rmax)},
	}
	xs, ys := kWeighted(res.Data.K, res.Data.Chi)
	k.Add(plotting.Series{Name: "expt.", X: xs, Y: ys, Color: plotting.Blue})
	xs, ys = kWeighted(res.Model.K, res.Model.Chi)
	k.Add(plotting.Series{Name: "fit", X: xs, Y: ys, Color: plotting.Red})

	r := plotting.Panel{
		XLabel:  "R (Å)",
		YLabel:  "|chi(R)| (Å^-3)",
		XMin:    0,
		XMax:    5,
		Regions: []plotting.Region{fitWindow(tr.Rmin, tr.Rmax, tr.Rmax)},
	}
	r.Add(plotting.Series{Name: "expt.", X: res.Data.R, Y: res.Data.ChiRMag, Color: plotting.Blue})
	r.Add(plotting.Series{Name: "fit", X: res.Model.R, Y: res.Model.ChiRMag, Color: plotting.Red})

	return &plotting.Figure{Panels: []plotting.Panel{k, r}, Rows: 1, Cols: 2, Width: 16, Height: height}
}

// kWeighted returns k and k^2 chi over the points both arrays cover.
func kWeighted(k, chi []float64) ([]float64, []float64) {
	n := min(len(k), len(chi))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = chi[i] * k[i] * k[i]
	}
	return k[:n], out
}
