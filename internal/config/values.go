package config

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a JSON number that also accepts numeric strings. Anything that
// does not parse becomes 0 rather than failing the decode.
type Number struct {
	Value float64
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		data = []byte(strings.TrimSpace(s))
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		v = 0
	}
	*n = Number{Value: v, Set: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value when set, def otherwise.
func (n Number) Or(def float64) float64 {
	if n.Set {
		return n.Value
	}
	return def
}

// Num is shorthand for a set Number.
func Num(v float64) Number { return Number{Value: v, Set: true} }

// Flag is a JSON boolean that also accepts "true"/"false" strings and
// numbers (non-zero is true).
type Flag struct {
	Value bool
	Set   bool
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = Flag{}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag{Value: b, Set: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		data = []byte(strings.TrimSpace(s))
	}
	text := string(data)
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		*f = Flag{Value: v != 0, Set: true}
		return nil
	}
	*f = Flag{Value: strings.EqualFold(text, "true"), Set: true}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f Flag) Or(def bool) bool {
	if f.Set {
		return f.Value
	}
	return def
}

// On is shorthand for a set Flag.
func On(v bool) Flag { return Flag{Value: v, Set: true} }
