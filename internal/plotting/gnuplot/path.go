// Package gnuplot draws quick-look copies of figures through gnuplot. The
// renderer is only compiled with the gnuplot build tag: glot looks gnuplot
// up when the program starts and panics without it. Binaries import this
// package for its side effect of registering the renderer.
package gnuplot

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Path names the copy of one panel: "rmr.png" becomes "rmr_gnuplot.png",
// and panels of a multi-panel figure are numbered ("chikr_gnuplot_1.png").
func Path(path string, panel, panels int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext) + "_gnuplot"
	if panels > 1 {
		base += fmt.Sprintf("_%d", panel+1)
	}
	return base + ext
}
