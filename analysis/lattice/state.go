// Package lattice implements the abstract value lattice (spec.md §3,
// component C1): per-part object initialization states, their
// conservative join, and the Object/Summary/Value types built on top of
// them.
package lattice

import (
	"fmt"
	"sort"

	"github.com/vsl-lang/divc/utils/iset"
)

// StateKind discriminates the three leaf states of the lattice (spec.md
// §3, "Object state").
type StateKind int

const (
	Initialized StateKind = iota
	Uninitialized
	Consumed
)

// State is a single leaf element of the lattice: Initialized,
// Uninitialized, or Consumed(by: set of instruction ids).
type State struct {
	kind StateKind
	by   iset.Set // only meaningful when kind == Consumed
}

// InitializedState, UninitializedState, and ConsumedBy construct the three
// leaf states.
func InitializedState() State   { return State{kind: Initialized} }
func UninitializedState() State { return State{kind: Uninitialized} }
func ConsumedBy(instrIDs ...int) State {
	return State{kind: Consumed, by: iset.Of(instrIDs...)}
}

// Kind reports which of the three leaf states this is.
func (s State) Kind() StateKind { return s.kind }

// Consumers returns the set of instruction ids that consumed the object,
// valid only when Kind() == Consumed.
func (s State) Consumers() iset.Set { return s.by }

// Eq reports structural equality, including (for Consumed) the consumer
// set (spec.md §3: "equality of Consumed values considers the underlying
// sets").
func (s State) Eq(o State) bool {
	if s.kind != o.kind {
		return false
	}
	if s.kind == Consumed {
		return s.by.Equal(o.by)
	}
	return true
}

// Join computes the "conservative merge" s ⊓ o from spec.md §3:
//
//	Initialized ⊓ x = x
//	Uninitialized ⊓ Initialized = Uninitialized
//	Uninitialized ⊓ Uninitialized = Uninitialized
//	Uninitialized ⊓ Consumed(C) = Consumed(C)
//	Consumed(A) ⊓ Consumed(B) = Consumed(A ∪ B)
//	Consumed(A) ⊓ anything-else = Consumed(A)
//
// Consumed dominates Uninitialized dominates Initialized.
func (s State) Join(o State) State {
	switch {
	case s.kind == Initialized:
		return o
	case o.kind == Initialized:
		return s
	case s.kind == Consumed && o.kind == Consumed:
		return State{kind: Consumed, by: s.by.Union(o.by)}
	case s.kind == Consumed:
		return s
	case o.kind == Consumed:
		return o
	default: // both Uninitialized
		return s
	}
}

func (s State) String() string {
	switch s.kind {
	case Initialized:
		return "initialized"
	case Uninitialized:
		return "uninitialized"
	case Consumed:
		ids := s.by.AppendTo(nil)
		sort.Ints(ids)
		return fmt.Sprintf("consumed(by: %v)", ids)
	default:
		return "<bad state>"
	}
}
