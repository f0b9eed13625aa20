package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess plays the engine. The behaviour is chosen by
// ENGINE_HELPER_MODE; the op name is the last argument.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	op := os.Args[len(os.Args)-1]
	in, _ := io.ReadAll(os.Stdin)

	switch os.Getenv("ENGINE_HELPER_MODE") {
	case "error":
		fmt.Print(`{"error": "no groups in project"}`)
		return
	case "garbage":
		fmt.Print("not json")
		return
	case "exit":
		os.Exit(4)
	case "short":
		fmt.Print(`{"result": {"flat": [1]}}`)
		return
	}

	switch op {
	case OpNormalize:
		var req NormalizeRequest
		_ = json.Unmarshal(in, &req)
		flat := make([]float64, len(req.Energy))
		for i := range flat {
			flat[i] = 1
		}
		res, _ := json.Marshal(NormalizeResult{E0: req.Energy[0], EdgeStep: 1, Flat: flat})
		fmt.Printf(`{"result": %s}`, res)
	case OpFit:
		var req FitRequest
		_ = json.Unmarshal(in, &req)
		res, _ := json.Marshal(FitResult{
			Report: fmt.Sprintf("n_variables = %d\nn_paths = %d\n", len(req.Params), len(req.Paths)),
			Groups: []Group{{Name: req.Project}},
		})
		fmt.Printf(`{"result": %s}`, res)
	default:
		os.Exit(5)
	}
}

func helper(t *testing.T, mode string) *Subprocess {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("ENGINE_HELPER_MODE", mode)
	return &Subprocess{Command: os.Args[0], Args: []string{"-test.run=TestHelperProcess", "--"}, Stderr: io.Discard}
}

func TestNormalize(t *testing.T) {
	e := helper(t, "")

	res, err := e.Normalize(context.Background(), NormalizeRequest{
		Name:   "sample",
		Energy: []float64{7100, 7110, 7120},
		Mu:     []float64{0.1, 0.5, 1.0},
	})
	require.NoError(t, err)
	assert.Equal(t, 7100.0, res.E0)
	assert.Equal(t, []float64{1, 1, 1}, res.Flat)
}

func TestFit(t *testing.T) {
	e := helper(t, "")

	res, err := e.Fit(context.Background(), FitRequest{
		Project: "data.prj",
		Params:  []Param{{Name: "amp", Kind: "guess", Value: 1, Vary: true}},
		Paths:   []Path{{Filename: "feff0001.dat"}, {Filename: "feff0002.dat"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "n_variables = 1\nn_paths = 2\n", res.Report)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "data.prj", res.Groups[0].Name)
}

func TestEngineReportedError(t *testing.T) {
	e := helper(t, "error")

	_, err := e.Fit(context.Background(), FitRequest{})
	require.ErrorIs(t, err, ErrEngine)
	assert.Contains(t, err.Error(), "no groups in project")
}

func TestEngineFailures(t *testing.T) {
	for _, mode := range []string{"garbage", "exit"} {
		e := helper(t, mode)
		_, err := e.Fit(context.Background(), FitRequest{})
		assert.Error(t, err, mode)
		assert.NotErrorIs(t, err, ErrEngine, mode)
	}
}

func TestNormalizeLengthMismatch(t *testing.T) {
	e := helper(t, "short")

	_, err := e.Normalize(context.Background(), NormalizeRequest{Energy: []float64{1, 2}})
	assert.ErrorIs(t, err, ErrEngine)
}

func TestCancelledContext(t *testing.T) {
	e := helper(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Fit(ctx, FitRequest{})
	assert.Error(t, err)
}
