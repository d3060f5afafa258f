package location

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
)

// Set is a persistent set of Locations, used as the non-empty `S` in
// spec.md §3's `Locations(set of location)` value kind. It mirrors the
// teacher's SSAValueSet idiom (utils/ssa.go): a thin wrapper around
// *immutable.Map[K, struct{}] that gives the lattice's Value.Join
// structural sharing for free.
type Set struct {
	mp *immutable.Map[Location, struct{}]
}

// Of builds a Set containing exactly the given locations.
func Of(ls ...Location) Set {
	mp := immutable.NewMap[Location, struct{}](Hasher{})
	for _, l := range ls {
		mp = mp.Set(Canonical(l), struct{}{})
	}
	return Set{mp}
}

// Len returns the number of distinct locations in the set.
func (s Set) Len() int {
	if s.mp == nil {
		return 0
	}
	return s.mp.Len()
}

// Add returns a set with l added, leaving s unmodified.
func (s Set) Add(l Location) Set {
	mp := s.mp
	if mp == nil {
		mp = immutable.NewMap[Location, struct{}](Hasher{})
	}
	return Set{mp.Set(Canonical(l), struct{}{})}
}

// Has reports whether l is a member of s.
func (s Set) Has(l Location) bool {
	if s.mp == nil {
		return false
	}
	_, ok := s.mp.Get(Canonical(l))
	return ok
}

// Union returns the union of s and o.
func (s Set) Union(o Set) Set {
	if o.Len() < s.Len() {
		s, o = o, s
	}
	out := o
	s.ForEach(func(l Location) {
		if !out.Has(l) {
			out = out.Add(l)
		}
	})
	return out
}

// ForEach calls do once for every member of s, in unspecified order.
func (s Set) ForEach(do func(Location)) {
	if s.mp == nil {
		return
	}
	for it := s.mp.Iterator(); !it.Done(); {
		l, _, _ := it.Next()
		do(l)
	}
}

// Entries returns the members of s as a slice, sorted by String() for a
// deterministic iteration order (diagnostics and tests rely on it).
func (s Set) Entries() []Location {
	out := make([]Location, 0, s.Len())
	s.ForEach(func(l Location) { out = append(out, l) })
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Equal reports whether s and o contain the same locations.
func (s Set) Equal(o Set) bool {
	if s.Len() != o.Len() {
		return false
	}
	eq := true
	s.ForEach(func(l Location) {
		if !o.Has(l) {
			eq = false
		}
	})
	return eq
}

func (s Set) String() string {
	parts := make([]string, 0, s.Len())
	for _, l := range s.Entries() {
		parts = append(parts, l.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
