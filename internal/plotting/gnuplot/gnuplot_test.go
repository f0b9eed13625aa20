//go:build gnuplot

package gnuplot

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/xafs-pipeline/internal/plotting"
)

func TestRenderWritesEveryPanel(t *testing.T) {
	if _, err := exec.LookPath("gnuplot"); err != nil {
		t.Skip("gnuplot not installed")
	}

	panel := plotting.Panel{
		Title:  "chi(R)",
		XLabel: "R (Å)",
		YLabel: "|chi(R)|",
		Series: []plotting.Series{{Name: "data", X: []float64{0, 1, 2, 3}, Y: []float64{0, 0.4, 0.1, 0.2}}},
		XMin:   0,
		XMax:   3,
	}
	fig := &plotting.Figure{Panels: []plotting.Panel{panel, panel}, Rows: 1, Cols: 2, Width: 8, Height: 4}

	dir := t.TempDir()
	require.NoError(t, Renderer{}.Render(fig, filepath.Join(dir, "chikr.png")))

	for _, name := range []string{"chikr_gnuplot_1.png", "chikr_gnuplot_2.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestRegistered(t *testing.T) {
	r, err := plotting.ForSite(true)
	require.NoError(t, err)
	assert.Equal(t, plotting.Renderers{plotting.Gonum{}, Renderer{}}, r)
}
