package feff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// InputName is the file FEFF reads in its working directory.
const InputName = "feff.inp"

// ErrRun wraps every failure to prepare or run FEFF.
var ErrRun = errors.New("unable to run feff")

// Runner runs the FEFF binary on a structure file inside a scratch
// directory.
type Runner struct {
	Binary string
	Args   []string
	Log    *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// Run copies structure into dir as feff.inp and runs FEFF there. FEFF's
// output is logged at debug level; on failure its tail is put in the
// error.
func (r *Runner) Run(ctx context.Context, structure, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrRun, err)
	}

	inp := filepath.Join(dir, InputName)
	r.logger().Info("copying structure", "from", structure, "to", inp)
	if err := copyFile(structure, inp); err != nil {
		return fmt.Errorf("%w: %v", ErrRun, err)
	}

	cmd := exec.CommandContext(ctx, r.Binary, r.Args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrRun, r.Binary, err, tail(out.String(), 5))
	}
	r.logger().Debug("feff finished", "dir", dir, "output", out.String())
	return nil
}

// DirFor names the run directory for a structure file the way the fit
// stage expects: the file's base name without extension plus "_feff".
func DirFor(structure string) string {
	base := filepath.Base(structure)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_feff"
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
