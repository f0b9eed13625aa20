//go:build gnuplot

package gnuplot

import (
	"fmt"
	"math"

	"github.com/Arafatk/glot"

	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
)

func init() { plotting.RegisterGnuplot(Renderer{}) }

// Renderer draws each panel of a figure through its own gnuplot process.
type Renderer struct{}

func (Renderer) Render(fig *plotting.Figure, path string) error {
	for i := range fig.Panels {
		out := Path(path, i, len(fig.Panels))
		if err := renderPanel(&fig.Panels[i], out); err != nil {
			return fmt.Errorf("gnuplot %s: %w", out, err)
		}
	}
	return nil
}

// renderPanel waits for gnuplot to exit, which is when the PNG is complete.
func renderPanel(panel *plotting.Panel, out string) (err error) {
	p, err := glot.NewPlot(2, false, false)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); err == nil {
			err = cerr
		}
	}()

	for _, s := range panel.Series {
		if len(s.X) == 0 {
			continue
		}
		if err := p.AddPointGroup(s.Name, "lines", [][]float64{s.X, s.Y}); err != nil {
			return fmt.Errorf("series %q: %w", s.Name, err)
		}
	}

	p.SetTitle(panel.Title)
	p.SetXLabel(panel.XLabel)
	p.SetYLabel(panel.YLabel)
	if panel.HasXRange() {
		p.SetXrange(int(math.Floor(panel.XMin)), int(math.Ceil(panel.XMax)))
	}

	return p.SavePlot(out)
}
