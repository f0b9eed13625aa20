package feff

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pathsDat = ` FeO                                                          Feff 6L.02
 ---------------------------------------------------------------
     1    2   6.000  index, nleg, degeneracy, r=  2.0000
      x           y           z     ipot  label      rleg      beta        eta
    2.000000    0.000000    0.000000  1 'O     '   2.0000  180.0000    0.0000
    0.000000    0.000000    0.000000  0 'Fe    '   2.0000  180.0000    0.0000
     2    2  12.000  index, nleg, degeneracy, r=  3.0000
      x           y           z     ipot  label      rleg      beta        eta
    3.000000    0.000000    0.000000  2 'Fe    '   3.0000  180.0000    0.0000
    0.000000    0.000000    0.000000  0 'Fe    '   3.0000  180.0000    0.0000
`

const filesDat = ` FeO                                                          Feff 6L.02
 Abs   Z=26 Rmt= 1.100 Rnm= 1.300 K  shell
 ---------------------------------------------------------------
    file           sig2   amp ratio    deg    nlegs  r effective
   feff0001.dat   0.00000   100.000     6.000  2   2.0000
   feff0002.dat   0.00000    45.211    12.000  2   3.0000
`

func TestParsePaths(t *testing.T) {
	t.Parallel()

	paths, err := ParsePaths(strings.NewReader(pathsDat))
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, PathInfo{Index: 1, NLeg: 2, Degeneracy: 6, Atoms: []string{"O", "Fe"}}, paths[1])
	assert.Equal(t, "Fe.Fe", paths[2].Label())
	assert.Equal(t, 12.0, paths[2].Degeneracy)
}

func TestParsePathsWithoutSeparator(t *testing.T) {
	t.Parallel()

	paths, err := ParsePaths(strings.NewReader("title only\n"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestParseFiles(t *testing.T) {
	t.Parallel()

	files, err := ParseFiles(strings.NewReader(filesDat))
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, FileEntry{
		File: "feff0002.dat", Sig2: "0.00000", AmpRatio: "45.211",
		Deg: "12.000", NLegs: "2", REffective: "3.0000",
	}, files[1])

	index, ok := files[1].Index()
	assert.True(t, ok)
	assert.Equal(t, 2, index)

	_, err = ParseFiles(strings.NewReader("no separator\n"))
	assert.Error(t, err)

	_, err = ParseFiles(strings.NewReader("----\nheading\nfeff0001.dat 0.0\n"))
	assert.Error(t, err)
}

func TestListing(t *testing.T) {
	t.Parallel()

	paths, err := ParsePaths(strings.NewReader(pathsDat))
	require.NoError(t, err)
	files, err := ParseFiles(strings.NewReader(filesDat))
	require.NoError(t, err)

	rows, err := Listing(files, paths)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "O.Fe.1", rows[0][6])
	assert.Equal(t, "Fe.Fe.2", rows[1][6])
	assert.Equal(t, "0", rows[1][7])

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, SaveListing(out, rows))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "         file,     sig2,  amp ratio"))
	assert.Contains(t, lines[2], "Fe.Fe.2         ,      0")

	_, err = Listing([]FileEntry{{File: "feff0009.dat"}}, paths)
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestBuildListing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paths.dat"), []byte(pathsDat), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "files.dat"), []byte(filesDat), 0o644))

	rows, err := BuildListing(dir)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = BuildListing(t.TempDir())
	assert.Error(t, err)
}

func TestDirFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FeO_feff", DirFor("structures/FeO.inp"))
	assert.Equal(t, "cif_feff", DirFor("cif"))
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	if _, err := os.Stat(InputName); err != nil {
		fmt.Fprintln(os.Stderr, "no feff.inp")
		os.Exit(2)
	}
	if err := os.WriteFile("paths.dat", []byte(pathsDat), 0o644); err != nil {
		os.Exit(3)
	}
	if err := os.WriteFile("files.dat", []byte(filesDat), 0o644); err != nil {
		os.Exit(3)
	}
}

func helperRunner(t *testing.T) *Runner {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	return &Runner{Binary: os.Args[0], Args: []string{"-test.run=TestHelperProcess"}}
}

func TestRunnerRun(t *testing.T) {
	r := helperRunner(t)

	structure := filepath.Join(t.TempDir(), "FeO.inp")
	require.NoError(t, os.WriteFile(structure, []byte("TITLE FeO\n"), 0o644))

	dir := filepath.Join(t.TempDir(), "feff")
	require.NoError(t, r.Run(context.Background(), structure, dir))

	copied, err := os.ReadFile(filepath.Join(dir, InputName))
	require.NoError(t, err)
	assert.Equal(t, "TITLE FeO\n", string(copied))

	rows, err := BuildListing(dir)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRunnerMissingStructure(t *testing.T) {
	r := helperRunner(t)

	err := r.Run(context.Background(), filepath.Join(t.TempDir(), "missing.inp"), t.TempDir())
	assert.ErrorIs(t, err, ErrRun)
}

func TestRunnerBadBinary(t *testing.T) {
	t.Parallel()

	structure := filepath.Join(t.TempDir(), "FeO.inp")
	require.NoError(t, os.WriteFile(structure, []byte("x"), 0o644))

	r := &Runner{Binary: filepath.Join(t.TempDir(), "no-such-feff")}
	err := r.Run(context.Background(), structure, t.TempDir())
	assert.ErrorIs(t, err, ErrRun)
}
