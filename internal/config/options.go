package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/HamletTheHamster/xafs-pipeline/internal/gds"
)

// MissingKeyError reports a required key absent from a stage's options.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("options: missing required key %q", e.Key)
}

// ParamDefaults is the value/expr/vary triple of a shared parameter.
type ParamDefaults struct {
	Value Number `json:"value"`
	Expr  string `json:"expr,omitempty"`
	Vary  Flag   `json:"vary"`
}

// Param builds the parameter called name. An unset value is
// gds.DefaultValue and an unset vary is true.
func (d ParamDefaults) Param(name string) gds.Param {
	return gds.Param{
		Name:  name,
		Value: d.Value.Or(gds.DefaultValue),
		Expr:  strings.TrimSpace(d.Expr),
		Vary:  d.Vary.Or(true),
	}
}

// DefaultsOf is the inverse of ParamDefaults.Param.
func DefaultsOf(p gds.Param) ParamDefaults {
	return ParamDefaults{Value: Num(p.Value), Expr: p.Expr, Vary: On(p.Vary)}
}

// ParamRecord is an extra named parameter from the "gds" list.
type ParamRecord struct {
	Name string `json:"name"`
	ParamDefaults
}

func (r ParamRecord) Param() gds.Param {
	return r.ParamDefaults.Param(strings.TrimSpace(r.Name))
}

// PathOverride pins the parameter references of one path. Empty fields
// fall back to the defaults.
type PathOverride struct {
	ID     Number `json:"id"`
	S02    string `json:"s02,omitempty"`
	E0     string `json:"e0,omitempty"`
	Sigma2 string `json:"sigma2,omitempty"`
	Deltar string `json:"deltar,omitempty"`
}

func (o PathOverride) PathID() int { return int(o.ID.Value) }

// SelectPaths are the options of the path selection stage.
type SelectPaths struct {
	SelectAll Flag           `json:"select_all"`
	Paths     []PathOverride `json:"paths"`
	Amp       ParamDefaults  `json:"amp"`
	Enot      ParamDefaults  `json:"enot"`
	Alpha     ParamDefaults  `json:"alpha"`
	GDS       []ParamRecord  `json:"gds"`
}

// FitVars configure the transform the fit runs in.
type FitVars struct {
	Fitspace string `json:"fitspace"`
	Kmin     Number `json:"kmin"`
	Kmax     Number `json:"kmax"`
	Kw       Number `json:"kw"`
	Dk       Number `json:"dk"`
	Window   string `json:"window"`
	Rmin     Number `json:"rmin"`
	Rmax     Number `json:"rmax"`
}

// Artemis are the options of the fit stage.
type Artemis struct {
	FitVars   FitVars `json:"fit_vars"`
	PlotGraph Flag    `json:"plot_graph"`
}

// Athena are the options of the normalisation stage. Zero energy bounds
// leave that side of the range open.
type Athena struct {
	EnergyMin  Number `json:"energy_min"`
	EnergyMax  Number `json:"energy_max"`
	PlotGraph  Flag   `json:"plot_graph"`
	ZipOutputs Flag   `json:"zip_outputs"`
}

type Criterion struct {
	Variable string `json:"variable"`
}

// CriteriaReport are the options of the report stage. Without criteria the
// input is a CSV of columns to plot.
type CriteriaReport struct {
	Format struct {
		ReportCriteria []Criterion `json:"report_criteria"`
	} `json:"format"`
}

// Variables lists the trimmed criterion names in order, each once.
func (c *CriteriaReport) Variables() []string {
	var out []string
	seen := make(map[string]bool)
	for _, rc := range c.Format.ReportCriteria {
		v := strings.TrimSpace(rc.Variable)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

const (
	StageFeff           = "feff"
	StageSelectPaths    = "select_paths"
	StageArtemis        = "artemis"
	StageAthena         = "athena"
	StageCriteriaReport = "criteria_report"
)

var required = map[string][]string{
	StageSelectPaths:    {"select_all", "amp", "enot", "alpha"},
	StageArtemis:        {"fit_vars"},
	StageCriteriaReport: {"format"},
}

// Decode unmarshals the options of stage from data after checking the
// stage's required keys. Unknown keys are ignored.
func Decode(stage string, data []byte, v any) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	for _, key := range required[stage] {
		if _, ok := keys[key]; !ok {
			return &MissingKeyError{Key: key}
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("options: %w", err)
	}
	return nil
}

// Load reads and decodes an options file.
func Load(stage, path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("options: %w", err)
	}
	if err := Decode(stage, data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// IsMissingKey reports whether err is a MissingKeyError.
func IsMissingKey(err error) bool {
	var mk *MissingKeyError
	return errors.As(err, &mk)
}

// SplitList splits a comma-separated argument, dropping empty entries so a
// trailing comma is harmless.
func SplitList(arg string) []string {
	var out []string
	for _, s := range strings.Split(arg, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
