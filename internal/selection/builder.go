package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/gds"
)

// ErrUnmatchedOverride is returned in strict mode when an override names a
// path id the listing does not contain.
var ErrUnmatchedOverride = errors.New("override matches no path in the listing")

// Path is one row of the selected-path table.
type Path struct {
	ID       int
	Filename string
	Label    string
	S02      string
	E0       string
	Sigma2   string
	Deltar   string
}

// Result is what one build produces.
type Result struct {
	Paths     []Path
	Params    []gds.Param
	Unmatched []int
}

// Builder accumulates the two tables for a single run. Shared parameters
// and the extra "gds" list are registered on construction, before any
// path.
type Builder struct {
	selectAll bool
	overrides map[int]config.PathOverride
	order     []int
	used      map[int]bool
	params    *gds.Set
	paths     []Path
}

func NewBuilder(opts *config.SelectPaths) *Builder {
	b := &Builder{
		selectAll: opts.SelectAll.Value,
		overrides: map[int]config.PathOverride{},
		used:      map[int]bool{},
		params:    gds.NewSet(),
	}

	for _, o := range opts.Paths {
		id := o.PathID()
		if _, dup := b.overrides[id]; dup {
			continue
		}
		b.overrides[id] = o
		b.order = append(b.order, id)
	}

	b.params.Add(opts.Amp.Param(gds.Amp))
	b.params.Add(opts.Enot.Param(gds.Enot))
	b.params.Add(opts.Alpha.Param(gds.Alpha))
	for _, rec := range opts.GDS {
		if p := rec.Param(); p.Name != "" {
			b.params.Add(p)
		}
	}
	return b
}

// Add decides whether row goes into the selected-path table.
func (b *Builder) Add(row Row) {
	if o, ok := b.overrides[row.ID]; ok {
		b.used[row.ID] = true
		b.addPath(row, o.S02, o.E0, o.Sigma2, o.Deltar)
		return
	}
	if b.selectAll || row.Selected {
		b.addPath(row, "", "", "", "")
	}
}

func (b *Builder) addPath(
	row Row,
	s02, e0, sigma2, deltar string,
) {

	s02 = orDefault(s02, gds.Amp)
	e0 = orDefault(e0, gds.Enot)
	deltar = orDefault(deltar, gds.AlphaReff)

	sigma2 = strings.TrimSpace(sigma2)
	if sigma2 == "" {
		sigma2 = gds.SigmaName(row.Label)
	}
	if gds.IsName(sigma2) {
		b.params.Add(gds.New(sigma2))
	}

	b.paths = append(b.paths, Path{
		ID:       row.ID,
		Filename: row.Filename,
		Label:    row.Label,
		S02:      s02,
		E0:       e0,
		Sigma2:   sigma2,
		Deltar:   deltar,
	})
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// Result returns the tables built so far along with the override ids that
// never met a listing row, in the order they were given.
func (b *Builder) Result() Result {
	var unmatched []int
	for _, id := range b.order {
		if !b.used[id] {
			unmatched = append(unmatched, id)
		}
	}

	paths := make([]Path, len(b.paths))
	copy(paths, b.paths)
	return Result{Paths: paths, Params: b.params.Params(), Unmatched: unmatched}
}

// Build runs every listing row through a fresh Builder.
func Build(listing []Row, opts *config.SelectPaths) Result {
	b := NewBuilder(opts)
	for _, row := range listing {
		b.Add(row)
	}
	return b.Result()
}

// Strict turns unmatched overrides into an error.
func (r Result) Strict() error {
	if len(r.Unmatched) == 0 {
		return nil
	}
	return fmt.Errorf("%w: ids %v", ErrUnmatchedOverride, r.Unmatched)
}
