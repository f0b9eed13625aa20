package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maorshutman/lm"

	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
)

// PlotDir holds one plot per criterion.
const PlotDir = "plots"

var ErrTooFewPoints = errors.New("need at least two points for a trend")

// Trend is the least squares line y = Slope*x + Intercept through a
// criterion's values against dataset number.
type Trend struct {
	Slope     float64
	Intercept float64
}

func (t Trend) At(x float64) float64 { return t.Slope*x + t.Intercept }

// FitTrend fits a straight line to ys at x = 0, 1, 2, ...
func FitTrend(ys []float64) (Trend, error) {
	if len(ys) < 2 {
		return Trend{}, ErrTooFewPoints
	}

	residuals := func(dst, x []float64) {
		for i, y := range ys {
			dst[i] = x[0]*float64(i) + x[1] - y
		}
	}

	jacobian := lm.NumJac{Func: residuals}

	toBeSolved := lm.LMProblem{
		Dim:        2,
		Size:       len(ys),
		Func:       residuals,
		Jac:        jacobian.Jac,
		InitParams: []float64{0, ys[0]},
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	results, err := lm.LM(toBeSolved, &lm.Settings{Iterations: 100, ObjectiveTol: 1e-16})
	if err != nil {
		return Trend{}, fmt.Errorf("trend: %w", err)
	}
	return Trend{Slope: results.X[0], Intercept: results.X[1]}, nil
}

// Panel plots a criterion against dataset number with its trend dashed
// over it when there are enough points.
func Panel(variable string, ys []float64) plotting.Panel {
	variable = strings.TrimSpace(variable)
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}

	p := plotting.Panel{
		XLabel:       "Dataset number",
		YLabel:       variable,
		IntegerTicks: true,
	}
	p.Add(plotting.Series{Name: variable, X: xs, Y: ys, Color: plotting.Blue})

	if trend, err := FitTrend(ys); err == nil {
		line := make([]float64, len(xs))
		for i, x := range xs {
			line[i] = trend.At(x)
		}
		p.Add(plotting.Series{Name: "trend", X: xs, Y: line, Color: plotting.Red, Dashed: true})
	}
	return p
}

// PlotPath is where the plot of variable goes under dir.
func PlotPath(dir, variable string) string {
	return filepath.Join(dir, PlotDir, strings.TrimSpace(variable)+".png")
}
