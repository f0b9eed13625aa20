// Package engine is the boundary to the external XAFS analysis library.
// Background removal, Fourier transforms and the EXAFS fit all happen on
// the far side of these interfaces.
package engine

import (
	"context"
)

// Normalizer removes the pre-edge and normalises one spectrum, then writes
// it to an Athena project.
type Normalizer interface {
	Normalize(ctx context.Context, req NormalizeRequest) (*NormalizeResult, error)
}

// Fitter fits selected FEFF paths to the first group of a project.
type Fitter interface {
	Fit(ctx context.Context, req FitRequest) (*FitResult, error)
}

// Engine is both halves.
type Engine interface {
	Normalizer
	Fitter
}

type NormalizeRequest struct {
	Name    string    `json:"name"`
	Energy  []float64 `json:"energy"`
	Mu      []float64 `json:"mu"`
	Project string    `json:"project"`
}

type NormalizeResult struct {
	E0       float64   `json:"e0"`
	EdgeStep float64   `json:"edge_step"`
	PreEdge  []float64 `json:"pre_edge"`
	PostEdge []float64 `json:"post_edge"`
	Flat     []float64 `json:"flat"`
}

// Param is one GDS parameter. Kind is "guess" for varied parameters and
// "def" for ones computed from their expression.
type Param struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
	Expr  string  `json:"expr,omitempty"`
	Vary  bool    `json:"vary"`
}

// Path is one selected scattering path. Filename is resolved against the
// FEFF directories of the request.
type Path struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
	S02      string `json:"s02"`
	E0       string `json:"e0"`
	Sigma2   string `json:"sigma2"`
	Deltar   string `json:"deltar"`
}

type Transform struct {
	Fitspace string  `json:"fitspace"`
	Kmin     float64 `json:"kmin"`
	Kmax     float64 `json:"kmax"`
	Kw       float64 `json:"kw"`
	Dk       float64 `json:"dk"`
	Window   string  `json:"window"`
	Rmin     float64 `json:"rmin"`
	Rmax     float64 `json:"rmax"`
}

type FitRequest struct {
	Project   string    `json:"project"`
	FeffDirs  []string  `json:"feff_dirs"`
	Params    []Param   `json:"params"`
	Paths     []Path    `json:"paths"`
	Transform Transform `json:"transform"`
}

// Group is a normalised spectrum read back from the project.
type Group struct {
	Name   string    `json:"name"`
	Energy []float64 `json:"energy"`
	Mu     []float64 `json:"mu"`
}

// Curves are the k- and R-space arrays of either the data or the model.
type Curves struct {
	K       []float64 `json:"k"`
	Chi     []float64 `json:"chi"`
	R       []float64 `json:"r"`
	ChiRMag []float64 `json:"chir_mag"`
	ChiRRe  []float64 `json:"chir_re"`
}

type FitResult struct {
	Report string  `json:"report"`
	Groups []Group `json:"groups"`
	Data   Curves  `json:"data"`
	Model  Curves  `json:"model"`
}
