// Package memctx implements the abstract context (spec.md §3, component
// C3): the per-program-point mapping of local registers to values and
// memory locations to cells, plus its equality and merge operations. It
// sits on top of the lattice (C1) and symbolic memory model (C2)
// packages the way the teacher's analysis/lattice/memory.go sits on top
// of analysis/lattice's element types and analysis/location's locations.
package memctx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/vsl-lang/divc/analysis/lattice"
	"github.com/vsl-lang/divc/analysis/location"
	"github.com/vsl-lang/divc/ir"
	"github.com/vsl-lang/divc/utils/hash"
)

// Value is what a local register holds (spec.md §3): either a non-empty
// set of aliased locations, or an rvalue Object.
type Value struct {
	isLocs bool
	locs   location.Set
	obj    lattice.Object
}

// Locations constructs a location-valued Value. ls must be non-empty
// (spec.md §3 invariant 1); callers that might pass an empty set have a
// precondition violation upstream.
func Locations(ls location.Set) Value {
	if ls.Len() == 0 {
		panic("memctx: Locations value must be non-empty")
	}
	return Value{isLocs: true, locs: ls}
}

// ObjectValue constructs an rvalue-valued Value.
func ObjectValue(o lattice.Object) Value {
	return Value{obj: o}
}

// IsLocations reports whether v holds a location set rather than an
// rvalue object.
func (v Value) IsLocations() bool { return v.isLocs }

// Locs returns v's location set; only valid when IsLocations().
func (v Value) Locs() location.Set {
	if !v.isLocs {
		panic("memctx: Locs() called on an Object value")
	}
	return v.locs
}

// Object returns v's rvalue object; only valid when !IsLocations().
func (v Value) Object() lattice.Object {
	if v.isLocs {
		panic("memctx: Object() called on a Locations value")
	}
	return v.obj
}

// Join computes the component-wise join from spec.md §3. Mixing kinds is
// a structural error the IR type system is assumed to already exclude
// (spec.md §3); here it is a precondition violation, not a diagnostic.
func (v Value) Join(o Value) Value {
	if v.isLocs != o.isLocs {
		panic("memctx: structural error: joined values of different kinds")
	}
	if v.isLocs {
		return Locations(v.locs.Union(o.locs))
	}
	return ObjectValue(v.obj.Join(o.obj))
}

// Eq reports structural equality between two values.
func (v Value) Eq(o Value) bool {
	if v.isLocs != o.isLocs {
		return false
	}
	if v.isLocs {
		return v.locs.Equal(o.locs)
	}
	return v.obj.Eq(o.obj)
}

func (v Value) String() string {
	if v.isLocs {
		return v.locs.String()
	}
	return v.obj.String()
}

// Cell is a memory cell (spec.md §3): an immutable type plus a mutable
// object state.
type Cell struct {
	Type   ir.Type
	Object lattice.Object
}

func (c Cell) Eq(o Cell) bool {
	return c.Type.Equal(o.Type) && c.Object.Eq(o.Object)
}

// Context is the abstract state at a program point (spec.md §3):
// `{ locals, memory }`. Both maps are immutable.Map-backed so that the
// many before/after contexts the fixed-point driver (C5) keeps alive
// simultaneously share structure instead of being copied wholesale on
// every transfer-function step.
type Context struct {
	locals *immutable.Map[ir.Register, Value]
	memory *immutable.Map[location.Location, Cell]
}

// Empty returns a context with no locals and no memory cells, the
// starting point for synthesizing an entry context (spec.md §4.3).
func Empty() Context {
	return Context{
		locals: hash.NewMap[ir.Register, Value](),
		memory: immutable.NewMap[location.Location, Cell](location.Hasher{}),
	}
}

// Local looks up a register's value.
func (c Context) Local(r ir.Register) (Value, bool) {
	return c.locals.Get(r)
}

// SetLocal returns a context with r bound to v, leaving c unmodified.
func (c Context) SetLocal(r ir.Register, v Value) Context {
	c.locals = c.locals.Set(r, v)
	return c
}

// DropLocal returns a context with r unbound, leaving the receiver
// unchanged.
func (c Context) DropLocal(r ir.Register) Context {
	c.locals = c.locals.Delete(r)
	return c
}

// Cell looks up a memory location's cell.
func (c Context) Cell(l location.Location) (Cell, bool) {
	return c.memory.Get(location.Canonical(l))
}

// SetCell returns a context with l bound to cell, leaving c unmodified.
func (c Context) SetCell(l location.Location, cell Cell) Context {
	c.memory = c.memory.Set(location.Canonical(l), cell)
	return c
}

// DeleteCell returns a context with l removed from memory, used by
// dealloc_stack (spec.md §4.1: "remove cell from memory").
func (c Context) DeleteCell(l location.Location) Context {
	c.memory = c.memory.Delete(location.Canonical(l))
	return c
}

// Locals returns every (register, value) pair, in a deterministic order
// (sorted by String()) for reproducible diagnostics and tests.
func (c Context) Locals() []struct {
	Reg ir.Register
	Val Value
} {
	type entry struct {
		Reg ir.Register
		Val Value
	}
	var out []entry
	for it := c.locals.Iterator(); !it.Done(); {
		r, v, _ := it.Next()
		out = append(out, entry{r, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reg.String() < out[j].Reg.String() })
	result := make([]struct {
		Reg ir.Register
		Val Value
	}, len(out))
	for i, e := range out {
		result[i] = struct {
			Reg ir.Register
			Val Value
		}{e.Reg, e.Val}
	}
	return result
}

// Cells returns every (location, cell) pair, in a deterministic order.
func (c Context) Cells() []struct {
	Loc  location.Location
	Cell Cell
} {
	type entry struct {
		Loc  location.Location
		Cell Cell
	}
	var out []entry
	for it := c.memory.Iterator(); !it.Done(); {
		l, cell, _ := it.Next()
		out = append(out, entry{l, cell})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Loc.String() < out[j].Loc.String() })
	result := make([]struct {
		Loc  location.Location
		Cell Cell
	}, len(out))
	for i, e := range out {
		result[i] = struct {
			Loc  location.Location
			Cell Cell
		}{e.Loc, e.Cell}
	}
	return result
}

// Eq reports structural equality of locals and memory (spec.md §3:
// "Equality is structural"), the comparison the driver (§4.2 step 4)
// uses to detect convergence.
func (c Context) Eq(o Context) bool {
	if c.locals.Len() != o.locals.Len() || c.memory.Len() != o.memory.Len() {
		return false
	}
	eq := true
	for it := c.locals.Iterator(); !it.Done() && eq; {
		r, v, _ := it.Next()
		ov, ok := o.locals.Get(r)
		if !ok || !v.Eq(ov) {
			eq = false
		}
	}
	for it := c.memory.Iterator(); !it.Done() && eq; {
		l, cell, _ := it.Next()
		ocell, ok := o.memory.Get(l)
		if !ok || !cell.Eq(ocell) {
			eq = false
		}
	}
	return eq
}

func (c Context) String() string {
	var sb strings.Builder
	sb.WriteString("locals:\n")
	for _, e := range c.Locals() {
		fmt.Fprintf(&sb, "  %s = %s\n", e.Reg, e.Val)
	}
	sb.WriteString("memory:\n")
	for _, e := range c.Cells() {
		fmt.Fprintf(&sb, "  %s: %s = %s\n", e.Loc, e.Cell.Type, e.Cell.Object)
	}
	return sb.String()
}
