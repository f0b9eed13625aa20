package gds

// Set is an ordered collection of parameters unique by name. The first
// registration of a name wins.
type Set struct {
	params []Param
	index  map[string]int
}

func NewSet() *Set {
	return &Set{index: map[string]int{}}
}

// Add registers p and reports whether it was new.
func (s *Set) Add(p Param) bool {
	if _, ok := s.index[p.Name]; ok {
		return false
	}
	s.index[p.Name] = len(s.params)
	s.params = append(s.params, p)
	return true
}

func (s *Set) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s *Set) Get(name string) (Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.params[i], true
}

func (s *Set) Len() int { return len(s.params) }

// Params returns a copy in registration order.
func (s *Set) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}
