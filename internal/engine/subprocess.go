package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

const (
	OpNormalize = "normalize"
	OpFit       = "fit"
)

// ErrEngine wraps failures reported by the engine itself, as opposed to
// failures to start or talk to it.
var ErrEngine = errors.New("engine error")

// Subprocess runs Command with Args plus the operation name, writes the
// request as JSON on stdin and reads {"error": ..., "result": ...} from
// stdout. Stderr of the engine is passed through.
type Subprocess struct {
	Command string
	Args    []string
	Stderr  io.Writer
}

var _ Engine = (*Subprocess)(nil)

type envelope struct {
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (s *Subprocess) Normalize(
	ctx context.Context,
	req NormalizeRequest,
) (
	*NormalizeResult, error,
) {

	var res NormalizeResult
	if err := s.call(ctx, OpNormalize, req, &res); err != nil {
		return nil, err
	}
	if len(res.Flat) != len(req.Energy) {
		return nil, fmt.Errorf(
			"%w: normalize returned %d points for %d", ErrEngine, len(res.Flat), len(req.Energy))
	}
	return &res, nil
}

func (s *Subprocess) Fit(ctx context.Context, req FitRequest) (*FitResult, error) {
	var res FitResult
	if err := s.call(ctx, OpFit, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Subprocess) call(ctx context.Context, op string, req, res any) error {
	in, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("engine %s: %w", op, err)
	}

	args := append(append([]string{}, s.Args...), op)
	cmd := exec.CommandContext(ctx, s.Command, args...)
	cmd.Stdin = bytes.NewReader(in)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = s.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	slog.Debug("calling engine", "command", s.Command, "op", op, "request_bytes", len(in))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("engine %s: %s %s: %w", op, s.Command, strings.Join(args, " "), err)
	}

	var env envelope
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		return fmt.Errorf("engine %s: bad response: %w", op, err)
	}
	if env.Error != "" {
		return fmt.Errorf("%w: %s: %s", ErrEngine, op, env.Error)
	}
	if len(env.Result) == 0 {
		return fmt.Errorf("%w: %s: empty result", ErrEngine, op)
	}
	if err := json.Unmarshal(env.Result, res); err != nil {
		return fmt.Errorf("engine %s: bad result: %w", op, err)
	}
	return nil
}
