// Package iset provides a small set of dense integer IDs, used to record
// which instructions consumed a given object (spec's Consumed(by: set)).
//
// It is a thin wrapper around golang.org/x/tools/container/intsets.Sparse
// rather than a hand-rolled map[int]struct{}: the sets involved are almost
// always singletons or pairs (one consumer, occasionally merged across a
// branch), and Sparse is tuned for exactly that shape.
package iset

import "golang.org/x/tools/container/intsets"

// Set is an immutable-by-convention integer set: every mutating method
// returns a fresh copy, so callers can treat Sets like values the way the
// rest of the lattice package treats Objects as values.
type Set struct {
	s intsets.Sparse
}

// Of builds a Set containing exactly the given ids.
func Of(ids ...int) Set {
	var s Set
	for _, id := range ids {
		s.s.Insert(id)
	}
	return s
}

// Union returns the union of s and o, leaving both inputs unmodified.
func (s Set) Union(o Set) Set {
	var out Set
	out.s.Copy(&s.s)
	out.s.UnionWith(&o.s)
	return out
}

// Has reports whether id is a member.
func (s Set) Has(id int) bool {
	return s.s.Has(id)
}

// Len returns the number of members.
func (s Set) Len() int {
	return s.s.Len()
}

// Equal reports whether s and o contain the same ids.
func (s Set) Equal(o Set) bool {
	return s.s.Equals(&o.s)
}

// AppendTo appends the sorted members of s to dst and returns the result.
func (s Set) AppendTo(dst []int) []int {
	return s.s.AppendTo(dst)
}

// String renders the set for diagnostics, e.g. "{3 7}".
func (s Set) String() string {
	return s.s.String()
}
