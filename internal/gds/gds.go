// Package gds holds guess/def/set fit parameters: the shared defaults every
// fit starts from, per-path Debye-Waller names, and the gds.csv table.
package gds

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/HamletTheHamster/xafs-pipeline/internal/table"
)

const (
	Amp       = "amp"
	Enot      = "enot"
	Alpha     = "alpha"
	AlphaReff = "alpha*reff"

	// DefaultValue seeds every synthesized Debye-Waller parameter (Å²).
	DefaultValue = 0.003
)

// Kind is how the fitting engine treats a parameter.
type Kind string

const (
	Guess Kind = "guess"
	Def   Kind = "def"
)

type Param struct {
	Name  string
	Value float64
	Expr  string
	Vary  bool
}

// New returns a varying parameter with the default starting value.
func New(name string) Param {
	return Param{Name: name, Value: DefaultValue, Vary: true}
}

func (p Param) Kind() Kind {
	if p.Vary {
		return Guess
	}
	return Def
}

// SigmaName derives the Debye-Waller parameter name for a path label:
// "s" followed by the label's letters, digits and underscores, lower-cased.
func SigmaName(label string) string {
	var b strings.Builder
	b.WriteString("s")
	for _, r := range strings.ToLower(label) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsName reports whether ref is a bare parameter name rather than an
// expression such as "alpha*reff".
func IsName(ref string) bool {
	return identPattern.MatchString(ref)
}

// ParseValue reads a numeric cell. Malformed input yields 0.
func ParseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseVary is true only for the text "True" in any case.
func ParseVary(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// FormatValue renders v the way the downstream fit stage expects:
// shortest round-trip digits, always with a decimal point or exponent.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatVary(vary bool) string {
	if vary {
		return "True"
	}
	return "False"
}

// Layout is the gds.csv column layout.
var Layout = table.Layout{
	Sep: ", ",
	Columns: []table.Column{
		{Name: "id", Width: 4},
		{Name: "name", Width: 24},
		{Name: "value", Width: 5},
		{Name: "expr", Width: 4},
		{Name: "vary", Width: 4},
	},
}

// Cells renders p as a gds.csv row with the given row id.
func (p Param) Cells(id int) []string {
	return []string{
		strconv.Itoa(id),
		p.Name,
		FormatValue(p.Value),
		p.Expr,
		formatVary(p.Vary),
	}
}

// FromKeyed converts rows read back from gds.csv into parameters, in file
// order.
func FromKeyed(k *table.Keyed) []Param {
	var params []Param
	k.Each(func(_ string, row table.Row) {
		name := row["name"]
		if name == "" {
			return
		}
		params = append(params, Param{
			Name:  name,
			Value: ParseValue(row["value"]),
			Expr:  row["expr"],
			Vary:  ParseVary(row["vary"]),
		})
	})
	return params
}
