// Package plotting describes figures independently of how they are drawn
// and renders them with gonum/plot. Builds tagged gnuplot also register a
// gnuplot renderer (package plotting/gnuplot).
package plotting

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
)

// Series is one line on a panel.
type Series struct {
	Name   string
	X, Y   []float64
	Color  color.Color // nil picks the next palette colour
	Dashed bool
}

// Region is a shaded rectangle such as a fit window, with an optional
// caption drawn at its lower left corner.
type Region struct {
	X0, X1, Y0, Y1 float64
	Label          string
}

// Panel is a single set of axes.
type Panel struct {
	Title, XLabel, YLabel string
	Series                []Series
	Regions               []Region

	XMin, XMax   float64 // both zero: autoscale
	IntegerTicks bool    // one labelled tick per integer x
	Grid         bool
}

func (p *Panel) Add(s Series) { p.Series = append(p.Series, s) }

// HasXRange reports whether the panel fixes its x axis.
func (p *Panel) HasXRange() bool { return p.XMin != 0 || p.XMax != 0 }

// Figure is a grid of panels filled row by row. Width and Height are in
// inches.
type Figure struct {
	Panels        []Panel
	Rows, Cols    int
	Width, Height float64
}

// Single wraps one panel in a figure of the given size.
func Single(p Panel, width, height float64) *Figure {
	return &Figure{Panels: []Panel{p}, Rows: 1, Cols: 1, Width: width, Height: height}
}

func (f *Figure) grid() (int, int) {
	rows, cols := f.Rows, f.Cols
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = (len(f.Panels) + rows - 1) / rows
	}
	return rows, cols
}

// Renderer draws a figure to a file.
type Renderer interface {
	Render(fig *Figure, path string) error
}

// Renderers draws with every renderer in turn.
type Renderers []Renderer

func (rs Renderers) Render(fig *Figure, path string) error {
	for _, r := range rs {
		if err := r.Render(fig, path); err != nil {
			return err
		}
	}
	return nil
}

// Save creates the parent directory of path and renders fig there.
func Save(r Renderer, fig *Figure, path string) error {
	if len(fig.Panels) == 0 {
		return fmt.Errorf("plot %s: no panels", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("plot %s: %w", path, err)
		}
	}
	if err := r.Render(fig, path); err != nil {
		return fmt.Errorf("plot %s: %w", path, err)
	}
	return nil
}

// ErrNoGnuplot means gnuplot output was asked for but this binary was built
// without the gnuplot tag.
var ErrNoGnuplot = errors.New("gnuplot renderer not built in (build with -tags gnuplot)")

var gnuplot Renderer

// RegisterGnuplot installs the renderer ForSite adds when gnuplot is on.
func RegisterGnuplot(r Renderer) { gnuplot = r }

// ForSite picks the renderers a site asks for: always gonum, plus gnuplot
// when enabled.
func ForSite(withGnuplot bool) (Renderer, error) {
	if !withGnuplot {
		return Gonum{}, nil
	}
	if gnuplot == nil {
		return nil, ErrNoGnuplot
	}
	return Renderers{Gonum{}, gnuplot}, nil
}
