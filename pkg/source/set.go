package source

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Set is an ordered collection of Units keyed by path. Iteration order is
// insertion order, which makes every analysis over a Set deterministic.
type Set struct {
	units []*Unit
	index map[string]int
}

// NewSet creates a Set from units. Later units replace earlier ones with the
// same path, keeping the original position.
func NewSet(units ...*Unit) *Set {
	s := &Set{index: make(map[string]int, len(units))}
	for _, u := range units {
		s.Add(u)
	}
	return s
}

// Add inserts u, replacing any unit with the same path in place.
func (s *Set) Add(u *Unit) {
	if u == nil {
		return
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[u.Path]; ok {
		s.units[i] = u
		return
	}
	s.index[u.Path] = len(s.units)
	s.units = append(s.units, u)
}

// Get returns the unit for path.
func (s *Set) Get(path string) (*Unit, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[path]
	if !ok {
		return nil, false
	}
	return s.units[i], true
}

// Has reports whether path is in the set.
func (s *Set) Has(path string) bool {
	_, ok := s.Get(path)
	return ok
}

// Index returns the insertion position of path.
func (s *Set) Index(path string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[path]
	return i, ok
}

// Units returns the units in insertion order. The slice must not be modified.
func (s *Set) Units() []*Unit {
	if s == nil {
		return nil
	}
	return s.units
}

// Paths returns the unit paths in insertion order.
func (s *Set) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, len(s.units))
	for i, u := range s.units {
		paths[i] = u.Path
	}
	return paths
}

// Len returns the number of units.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.units)
}

// Fingerprint hashes every (path, content hash) pair in order. Two sets with
// the same fingerprint hold the same files with the same content.
func (s *Set) Fingerprint() string {
	h := blake3.New()
	for _, u := range s.Units() {
		h.Write([]byte(u.Path))
		h.Write([]byte{0})
		h.Write([]byte(u.Hash))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Close releases all parse trees in the set.
func (s *Set) Close() {
	for _, u := range s.Units() {
		u.Close()
	}
}
