package selection

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HamletTheHamster/xafs-pipeline/internal/config"
	"github.com/HamletTheHamster/xafs-pipeline/internal/gds"
)

const listingCSV = `         file,     sig2,  amp ratio,      deg,  nlegs, r effective, label       , select
 feff0001.dat,  0.00000,    100.000,    8.000,      2,      2.4824, A.1         ,      0
 feff0002.dat,  0.00000,     44.120,    6.000,      2,      2.8664, B.1         ,      1
 feff0003.dat,  0.00000,     25.030,   12.000,      2,      4.0538, C.1         ,      0
`

func defaultOptions() *config.SelectPaths {
	return &config.SelectPaths{
		Amp:   config.ParamDefaults{Value: config.Num(1), Vary: config.On(true)},
		Enot:  config.ParamDefaults{Value: config.Num(0), Vary: config.On(true)},
		Alpha: config.ParamDefaults{Value: config.Num(0), Vary: config.On(true)},
	}
}

func writeListing(t *testing.T) []Row {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte(listingCSV), 0o644))
	rows, err := ReadListing(path)
	require.NoError(t, err)
	return rows
}

func sigmaNames(params []gds.Param) []string {
	var names []string
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}

func TestParseListing(t *testing.T) {
	t.Parallel()

	rows := writeListing(t)
	require.Len(t, rows, 3)
	assert.Equal(t, Row{ID: 2, Filename: "feff0002.dat", Label: "B.1", Selected: true}, rows[1])
}

func TestParseListingSkipsRowsWithoutID(t *testing.T) {
	t.Parallel()

	rows := ParseListing([][]string{
		{"file", "label", "select"},
		{"feff0004.dat", "Fe.4", "x"},
		{"lonely"},
		{"summary", "n/a", "1"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].ID)
	assert.False(t, rows[0].Selected)
}

func TestFlaggedRowOnly(t *testing.T) {
	t.Parallel()

	res := Build(writeListing(t), defaultOptions())

	require.Len(t, res.Paths, 1)
	assert.Equal(t, Path{
		ID: 2, Filename: "feff0002.dat", Label: "B.1",
		S02: "amp", E0: "enot", Sigma2: "sb1", Deltar: "alpha*reff",
	}, res.Paths[0])
	assert.Equal(t, []string{"amp", "enot", "alpha", "sb1"}, sigmaNames(res.Params))

	var sp bytes.Buffer
	require.NoError(t, WriteSelected(&sp, res.Paths))
	assert.Equal(t,
		"  id,     filename,                    label, s02,   e0,                   sigma2,     deltar\n"+
			"   1, feff0002.dat,                      B.1, amp, enot,                      sb1, alpha*reff\n",
		sp.String())
}

func TestSelectAllIncludesEveryRow(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.SelectAll = config.On(true)
	opts.Paths = []config.PathOverride{{ID: config.Num(3), Sigma2: "sshared"}}

	res := Build(writeListing(t), opts)

	require.Len(t, res.Paths, 3)
	for i, p := range res.Paths {
		assert.Equal(t, i+1, p.ID, "listing order is kept")
	}
	assert.Equal(t, "sa1", res.Paths[0].Sigma2)
	assert.Equal(t, "sshared", res.Paths[2].Sigma2)
	assert.Equal(t, []string{"amp", "enot", "alpha", "sa1", "sb1", "sshared"}, sigmaNames(res.Params))
}

func TestOverrideFieldsWinOverDefaults(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.Paths = []config.PathOverride{
		{ID: config.Num(1), S02: "amp2", E0: "enot2", Sigma2: "sfe", Deltar: "dr1"},
		{ID: config.Num(1), S02: "ignored"},
	}
	opts.GDS = []config.ParamRecord{{Name: "amp2", ParamDefaults: config.ParamDefaults{Value: config.Num(0.8)}}}

	res := Build(writeListing(t), opts)

	require.Len(t, res.Paths, 2)
	assert.Equal(t, Path{
		ID: 1, Filename: "feff0001.dat", Label: "A.1",
		S02: "amp2", E0: "enot2", Sigma2: "sfe", Deltar: "dr1",
	}, res.Paths[0])
	assert.Equal(t, 2, res.Paths[1].ID)
	assert.Equal(t, []string{"amp", "enot", "alpha", "amp2", "sfe", "sb1"}, sigmaNames(res.Params))
}

func TestOverrideWithoutSigmaSynthesizesName(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.Paths = []config.PathOverride{{ID: config.Num(3), Deltar: "0.0"}}

	res := Build(writeListing(t), opts)

	require.Len(t, res.Paths, 2)
	assert.Equal(t, "sc1", res.Paths[1].Sigma2)
	assert.Equal(t, "amp", res.Paths[1].S02)
	assert.Equal(t, "0.0", res.Paths[1].Deltar)
	assert.Contains(t, sigmaNames(res.Params), "sc1")
}

func TestSigmaExpressionIsNotRegistered(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.Paths = []config.PathOverride{{ID: config.Num(2), Sigma2: "sa1*1.5"}}

	res := Build(writeListing(t), opts)

	require.Len(t, res.Paths, 1)
	assert.Equal(t, "sa1*1.5", res.Paths[0].Sigma2)
	assert.NotContains(t, sigmaNames(res.Params), "sa1*1.5")
}

func TestSigmaRegisteredOnce(t *testing.T) {
	t.Parallel()

	listing := []Row{
		{ID: 1, Filename: "feff0001.dat", Label: "Fe.1", Selected: true},
		{ID: 2, Filename: "feff0002.dat", Label: "Fe.1", Selected: true},
		{ID: 3, Filename: "feff0003.dat", Label: "O.2", Selected: true},
	}
	opts := defaultOptions()
	opts.Paths = []config.PathOverride{{ID: config.Num(3), Sigma2: "sfe1"}}
	opts.GDS = []config.ParamRecord{{Name: "sfe1", ParamDefaults: config.ParamDefaults{Value: config.Num(0.01)}}}

	res := Build(listing, opts)

	count := 0
	for _, p := range res.Params {
		if p.Name == "sfe1" {
			count++
			assert.Equal(t, 0.01, p.Value, "the gds entry is registered first")
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, res.Paths, 3)
}

func TestUnmatchedOverrides(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.Paths = []config.PathOverride{{ID: config.Num(9)}, {ID: config.Num(2)}, {ID: config.Num(42)}}

	res := Build(writeListing(t), opts)

	assert.Equal(t, []int{9, 42}, res.Unmatched)
	assert.Len(t, res.Paths, 1)

	err := res.Strict()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmatchedOverride))

	assert.NoError(t, Build(writeListing(t), defaultOptions()).Strict())
}

func TestEmptyListing(t *testing.T) {
	t.Parallel()

	rows, err := ReadListing(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)

	res := Build(rows, defaultOptions())
	assert.Empty(t, res.Paths)
	assert.Len(t, res.Params, 3)
}

func TestWriteParams(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteParams(&buf, []gds.Param{
		{Name: "amp", Value: 1, Vary: true},
		{Name: "ss", Value: 0.003, Expr: "sfe1", Vary: false},
	}))
	assert.Equal(t,
		"  id,                     name, value, expr, vary\n"+
			"   1,                      amp,   1.0,     , True\n"+
			"   2,                       ss, 0.003, sfe1, False\n",
		buf.String())
}

func TestRoundTripReproducesTables(t *testing.T) {
	t.Parallel()

	listing := writeListing(t)
	opts := defaultOptions()
	opts.Paths = []config.PathOverride{{ID: config.Num(3), S02: "amp", Sigma2: "ssh"}}
	opts.GDS = []config.ParamRecord{{Name: "ssh", ParamDefaults: config.ParamDefaults{Value: config.Num(0.005), Expr: "", Vary: config.On(false)}}}
	first := Build(listing, opts)

	dir := t.TempDir()
	require.NoError(t, Emit(dir, first))

	params, err := ReadParams(filepath.Join(dir, ParamsFile))
	require.NoError(t, err)
	paths, err := ReadSelected(filepath.Join(dir, SelectedFile))
	require.NoError(t, err)

	assert.Equal(t, first.Params, params)
	assert.Equal(t, first.Paths, paths)

	second := Build(listing, Options(params, paths))
	assert.Equal(t, first.Params, second.Params)
	assert.Equal(t, first.Paths, second.Paths)
	assert.Empty(t, second.Unmatched)

	again := t.TempDir()
	require.NoError(t, Emit(again, second))
	for _, name := range []string{SelectedFile, ParamsFile} {
		a, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(again, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), name)
	}
}

func TestEmitFailsOnUnwritableDir(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	err := Emit(filepath.Join(file, "out"), Result{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "emit:"))
}
