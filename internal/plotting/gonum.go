package plotting

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	Blue  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	Red   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	Green = color.RGBA{R: 44, G: 160, B: 44, A: 255}

	gridColor   = color.RGBA{R: 255, A: 255}
	regionColor = color.RGBA{G: 128, A: 26}
)

// palette hands out series colours in a fixed cycle.
func palette(
	brush int,
) (
	color.RGBA,
) {

	col := []color.RGBA{
		{R: 27, G: 170, B: 139, A: 255},
		{R: 201, G: 104, B: 146, A: 255},
		{R: 99, G: 124, B: 198, A: 255},
		{R: 194, G: 140, B: 86, A: 255},
		{R: 7, G: 150, B: 189, A: 255},
		{R: 122, G: 41, B: 104, A: 255},
		{R: 46, G: 140, B: 60, A: 255},
		{R: 91, G: 22, B: 22, A: 255},
	}
	return col[brush%len(col)]
}

// Gonum renders figures with gonum/plot. Single panels may be saved in any
// format gonum supports (by extension); multi-panel figures are PNG only.
type Gonum struct{}

func (Gonum) Render(fig *Figure, path string) error {
	plots := make([]*plot.Plot, len(fig.Panels))
	for i := range fig.Panels {
		p, err := prepPlot(&fig.Panels[i])
		if err != nil {
			return err
		}
		plots[i] = p
	}

	w := vg.Length(fig.Width) * vg.Inch
	h := vg.Length(fig.Height) * vg.Inch

	if len(plots) == 1 {
		return plots[0].Save(w, h, path)
	}

	if filepath.Ext(path) != ".png" {
		return errors.New("multi-panel figures are written as .png only")
	}

	rows, cols := fig.grid()
	tiled := make([][]*plot.Plot, rows)
	for r := range tiled {
		tiled[r] = make([]*plot.Plot, cols)
		for c := range tiled[r] {
			if i := r*cols + c; i < len(plots) {
				tiled[r][c] = plots[i]
			}
		}
	}

	img := vgimg.New(w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(tiled, tiles, dc)
	for r := range tiled {
		for c, p := range tiled[r] {
			if p != nil {
				p.Draw(canvases[r][c])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func prepPlot(
	panel *Panel,
) (
	*plot.Plot, error,
) {

	p := plot.New()
	p.BackgroundColor = color.White

	p.Title.Text = panel.Title
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = 14
	p.Title.Padding = vg.Points(8)

	p.X.Label.Text = panel.XLabel
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = 12
	p.X.LineStyle.Width = vg.Points(1.5)
	p.X.Tick.LineStyle.Width = vg.Points(1.5)
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = 10

	p.Y.Label.Text = panel.YLabel
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = 12
	p.Y.LineStyle.Width = vg.Points(1.5)
	p.Y.Tick.LineStyle.Width = vg.Points(1.5)
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = 10

	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.TextStyle.Font.Size = 10
	p.Legend.Top = true
	p.Legend.ThumbnailWidth = vg.Points(30)

	if panel.Grid {
		grid := plotter.NewGrid()
		grid.Vertical.Color = gridColor
		grid.Vertical.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}
		grid.Horizontal.Color = gridColor
		grid.Horizontal.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}
		p.Add(grid)
	}

	for _, r := range panel.Regions {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: r.X0, Y: r.Y0}, {X: r.X0, Y: r.Y1}, {X: r.X1, Y: r.Y1}, {X: r.X1, Y: r.Y0},
		})
		if err != nil {
			return nil, fmt.Errorf("region: %w", err)
		}
		poly.Color = regionColor
		poly.LineStyle.Width = 0
		p.Add(poly)

		if r.Label != "" {
			labels, err := plotter.NewLabels(plotter.XYLabels{
				XYs:    plotter.XYs{{X: r.X0, Y: r.Y0}},
				Labels: []string{r.Label},
			})
			if err != nil {
				return nil, fmt.Errorf("region label: %w", err)
			}
			p.Add(labels)
		}
	}

	brush := 0
	for _, s := range panel.Series {
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("series %q: %d x values, %d y values", s.Name, len(s.X), len(s.Y))
		}
		if len(s.X) == 0 {
			continue
		}

		line, err := plotter.NewLine(buildData(s.X, s.Y))
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		if s.Color != nil {
			line.LineStyle.Color = s.Color
		} else {
			line.LineStyle.Color = palette(brush)
			brush++
		}
		if s.Dashed {
			line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		}

		p.Add(line)
		if s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
	}

	if panel.HasXRange() {
		p.X.Min = panel.XMin
		p.X.Max = panel.XMax
	}
	if panel.IntegerTicks {
		p.X.Tick.Marker = integerTicks(panel.Series)
	}
	return p, nil
}

func buildData(
	x, y []float64,
) (
	plotter.XYs,
) {

	xy := make(plotter.XYs, len(x))
	for i := range xy {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}

// integerTicks labels every whole number the series span.
func integerTicks(series []Series) plot.ConstantTicks {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if len(s.X) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(s.X))
		hi = math.Max(hi, floats.Max(s.X))
	}

	var ticks []plot.Tick
	if math.IsInf(lo, 0) {
		return ticks
	}
	for v := math.Ceil(lo); v <= math.Floor(hi); v++ {
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(int(v))})
	}
	return ticks
}
