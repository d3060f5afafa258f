// Package location implements the symbolic memory model (spec.md §3,
// component C2): abstract memory locations — argument slots, stack
// cells, and record sub-paths rooted in either — used as keys into the
// abstract context's memory map.
package location

import (
	"fmt"

	"github.com/vsl-lang/divc/ir"
	"github.com/vsl-lang/divc/utils/hash"
)

// Location is a symbolic address: the argument-slot, stack-allocation, or
// record-sub-path tagged union from spec.md §3. It mirrors the teacher's
// Location interface (Hash/Equal/String/Type), trimmed to what DI needs —
// there is no GetSite, since divc's locations are not points-to targets
// for a separate alias analysis (spec.md §1, Non-goals).
type Location interface {
	Hash() uint32
	Equal(Location) bool
	String() string
	Type() ir.Type
}

// Hasher adapts Location to immutable.Map's Hasher interface.
type Hasher struct{}

func (Hasher) Hash(l Location) uint32          { return l.Hash() }
func (Hasher) Equal(a, b Location) bool        { return a.Equal(b) }

// Null is the sentinel location from spec.md §3; it only exists so that
// projecting through it can be flagged as a precondition violation, per
// spec.md §9 ("it may be removable").
type Null struct{}

func (Null) Hash() uint32         { return 0 }
func (Null) Equal(o Location) bool {
	_, ok := o.(Null)
	return ok
}
func (Null) String() string { return "<null>" }
func (Null) Type() ir.Type  { panic("location: Null has no type") }

// Arg is the cell bound to parameter i under the let/inout/set
// conventions (spec.md §3).
type Arg struct {
	Index int
	Typ   ir.Type
}

func (a Arg) Hash() uint32 { return hash.Combine(1, hash.Int(a.Index)) }
func (a Arg) Equal(o Location) bool {
	oa, ok := o.(Arg)
	return ok && oa.Index == a.Index
}
func (a Arg) String() string { return fmt.Sprintf("arg(%d)", a.Index) }
func (a Arg) Type() ir.Type  { return a.Typ }

// Inst is the cell produced by an alloc_stack at the given instruction
// (spec.md §3).
type Inst struct {
	Alloc *ir.AllocStack
}

func (i Inst) Hash() uint32 { return hash.Combine(2, uint32(i.Alloc.ID())) }
func (i Inst) Equal(o Location) bool {
	oi, ok := o.(Inst)
	return ok && oi.Alloc == i.Alloc
}
func (i Inst) String() string { return fmt.Sprintf("inst(%s@%d)", i.Alloc.Block().Name, i.Alloc.ID()) }
func (i Inst) Type() ir.Type  { return i.Alloc.Type }

// Sub is a sub-location at a record path within an Arg or Inst (spec.md
// §3). An empty path canonicalizes to the root, per Canonical.
type Sub struct {
	Root Location
	Path ir.Path
}

// Canonical returns the canonical form of a location: Sub with an empty
// path collapses to its root (spec.md §3: "Empty path canonicalizes to
// the root").
func Canonical(l Location) Location {
	if s, ok := l.(Sub); ok && len(s.Path) == 0 {
		return Canonical(s.Root)
	}
	return l
}

// At builds the (canonical) sub-location of root at path.
func At(root Location, path ir.Path) Location {
	return Canonical(Sub{Root: root, Path: path})
}

// Append builds the sub-location one step further into l at field index
// idx, disaggregating the path representation lazily the way spec.md §3
// describes for Object ("Disaggregation happens lazily on path access").
func Append(l Location, idx int) Location {
	switch v := l.(type) {
	case Sub:
		return Sub{Root: v.Root, Path: v.Path.Append(idx)}
	default:
		return Sub{Root: v, Path: ir.Path{idx}}
	}
}

func (s Sub) Hash() uint32 {
	h := s.Root.Hash()
	for _, idx := range s.Path {
		h = hash.Combine(h, hash.Int(idx))
	}
	return hash.Combine(3, h)
}

func (s Sub) Equal(o Location) bool {
	os, ok := o.(Sub)
	return ok && s.Root.Equal(os.Root) && s.Path.Equal(os.Path)
}

func (s Sub) String() string {
	return fmt.Sprintf("%s%s", s.Root, s.Path)
}

func (s Sub) Type() ir.Type {
	return ir.TypeAt(s.Root.Type(), s.Path)
}

// Root returns the Arg or Inst location l is ultimately rooted in,
// unwrapping any Sub.
func Root(l Location) Location {
	if s, ok := l.(Sub); ok {
		return Root(s.Root)
	}
	return l
}

// PathOf returns the record path from l's root to l (empty for a root
// location itself).
func PathOf(l Location) ir.Path {
	if s, ok := l.(Sub); ok {
		return s.Path
	}
	return nil
}
