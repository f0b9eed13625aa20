package plotting

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePanel() Panel {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0.1, 0.4, 0.2, 0.8, 0.5}
	return Panel{
		Title:        "chi_square",
		XLabel:       "Dataset number",
		YLabel:       "chi_square",
		Series:       []Series{{Name: "data", X: x, Y: y, Color: Blue}},
		Regions:      []Region{{X0: 1, X1: 3, Y0: 0, Y1: 1, Label: "fit range"}},
		IntegerTicks: true,
		Grid:         true,
	}
}

func TestGonumSinglePanel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plots", "chi_square.png")
	require.NoError(t, Save(Gonum{}, Single(samplePanel(), 8, 4), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGonumMultiPanel(t *testing.T) {
	t.Parallel()

	fig := &Figure{
		Panels: []Panel{samplePanel(), samplePanel(), samplePanel(), samplePanel()},
		Rows:   2,
		Cols:   2,
		Width:  8,
		Height: 8,
	}
	path := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, Save(Gonum{}, fig, path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	assert.Error(t, Save(Gonum{}, fig, filepath.Join(t.TempDir(), "grid.svg")))
}

func TestMismatchedSeriesIsAnError(t *testing.T) {
	t.Parallel()

	panel := Panel{Series: []Series{{Name: "bad", X: []float64{1, 2}, Y: []float64{1}}}}
	err := Save(Gonum{}, Single(panel, 4, 4), filepath.Join(t.TempDir(), "bad.png"))
	assert.Error(t, err)
}

func TestSaveRejectsEmptyFigure(t *testing.T) {
	t.Parallel()

	assert.Error(t, Save(Gonum{}, &Figure{}, filepath.Join(t.TempDir(), "empty.png")))
}

func TestIntegerTicks(t *testing.T) {
	t.Parallel()

	ticks := integerTicks([]Series{{X: []float64{0.5, 1, 3.2}}, {X: nil}})
	require.Len(t, ticks, 3)
	assert.Equal(t, "1", ticks[0].Label)
	assert.Equal(t, "3", ticks[2].Label)
	assert.Empty(t, integerTicks(nil))
}

func TestGridDefaults(t *testing.T) {
	t.Parallel()

	rows, cols := (&Figure{Panels: make([]Panel, 3)}).grid()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 3, cols)

	rows, cols = (&Figure{Panels: make([]Panel, 3), Rows: 3}).grid()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1, cols)
}

type failing struct{ calls *int }

func (f failing) Render(*Figure, string) error {
	*f.calls++
	return errors.New("boom")
}

func TestRenderersStopAtFirstError(t *testing.T) {
	t.Parallel()

	calls := 0
	rs := Renderers{failing{&calls}, failing{&calls}}
	assert.Error(t, rs.Render(Single(samplePanel(), 1, 1), "x.png"))
	assert.Equal(t, 1, calls)
}

func TestForSite(t *testing.T) {
	t.Cleanup(func() { RegisterGnuplot(nil) })

	r, err := ForSite(false)
	require.NoError(t, err)
	assert.Equal(t, Gonum{}, r)

	RegisterGnuplot(nil)
	_, err = ForSite(true)
	assert.ErrorIs(t, err, ErrNoGnuplot)

	calls := 0
	RegisterGnuplot(failing{&calls})
	r, err = ForSite(true)
	require.NoError(t, err)
	assert.Equal(t, Renderers{Gonum{}, failing{&calls}}, r)
}

func TestDefaultRendererWithoutGnuplot(t *testing.T) {
	t.Parallel()

	r, err := ForSite(false)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "edge.png")
	require.NoError(t, Save(r, Single(samplePanel(), 6, 4), path))
	assert.FileExists(t, path)
}
