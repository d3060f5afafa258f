package di

import (
	"fmt"
	"sort"

	"github.com/vsl-lang/divc/analysis/diagnostic"
	"github.com/vsl-lang/divc/analysis/lattice"
	"github.com/vsl-lang/divc/analysis/location"
	"github.com/vsl-lang/divc/analysis/memctx"
	"github.com/vsl-lang/divc/ir"
)

// objectAndWriteback resolves loc (which may be a Sub with a non-empty
// path) to its projected Object, disaggregating the root cell lazily as
// needed, along with a function that rebuilds the root cell given a
// replacement for the projected sub-object. This is spec.md §4.1's
// `withObject` helper.
func objectAndWriteback(ctx memctx.Context, loc location.Location) (lattice.Object, func(lattice.Object) memctx.Context, bool) {
	root := location.Root(loc)
	path := location.PathOf(loc)

	cell, ok := ctx.Cell(root)
	if !ok {
		return lattice.Object{}, nil, false
	}
	rootType := cell.Type

	sub, rebuild := lattice.Project(cell.Object, func(depth int) int {
		return ir.TypeAt(rootType, path[:depth]).NumFields()
	}, path)

	writeback := func(newSub lattice.Object) memctx.Context {
		return ctx.SetCell(root, memctx.Cell{Type: rootType, Object: rebuild(newSub)})
	}
	return sub, writeback, true
}

// objectAt is the read-only half of objectAndWriteback.
func objectAt(ctx memctx.Context, loc location.Location) lattice.Object {
	obj, _, ok := objectAndWriteback(ctx, loc)
	if !ok {
		panic(fmt.Errorf("di: no cell for location %s: internal lattice inconsistency", loc))
	}
	return obj
}

// setObjectAt replaces the object at loc, disaggregating and writing back
// through the owning root cell.
func setObjectAt(ctx memctx.Context, loc location.Location, obj lattice.Object) memctx.Context {
	_, writeback, ok := objectAndWriteback(ctx, loc)
	if !ok {
		panic(fmt.Errorf("di: no cell for location %s: internal lattice inconsistency", loc))
	}
	return writeback(obj)
}

// appendPath computes {s.Append(path) : s ∈ S}, the L set spec.md §4.1
// builds for borrow and load from their source location set and path.
func appendPath(s location.Set, path ir.Path) location.Set {
	var out location.Set
	s.ForEach(func(l location.Location) {
		sub := l
		for _, idx := range path {
			sub = location.Append(sub, idx)
		}
		out = out.Add(sub)
	})
	return out
}

// firstOf returns a deterministic representative member of s. DI only
// ever needs one: the "locations-of-equal-extent" invariant (spec.md §3,
// invariant 3) guarantees every member of a single Locations(S) value
// has the same summary, so any representative yields the same answer.
func firstOf(s location.Set) (location.Location, bool) {
	entries := s.Entries()
	if len(entries) == 0 {
		return nil, false
	}
	return entries[0], true
}

// sortedPaths returns paths in a deterministic lexicographic order, so
// that repairs within a single predecessor are a pure function of the
// input (spec.md §9, "Repair ordering").
func sortedPaths(paths []ir.Path) []ir.Path {
	out := append([]ir.Path(nil), paths...)
	sort.Slice(out, func(i, j int) bool { return pathLess(out[i], out[j]) })
	return out
}

func pathLess(a, b ir.Path) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func appendAll(a, b ir.Path) ir.Path {
	out := a
	for _, idx := range b {
		out = out.Append(idx)
	}
	return out
}

// messageForSummary maps a non-FullyInitialized summary to the
// diagnostic string spec.md §6 names for it.
func messageForSummary(kind lattice.SummaryKind) string {
	switch kind {
	case lattice.FullyUninitialized:
		return diagnostic.MsgUseOfUninitialized
	case lattice.FullyConsumed:
		return diagnostic.MsgUseOfConsumed
	case lattice.PartiallyInitialized:
		return diagnostic.MsgUseOfPartiallyInitialized
	case lattice.PartiallyConsumed:
		return diagnostic.MsgUseOfPartiallyConsumed
	default:
		panic(fmt.Errorf("di: messageForSummary called on %s", kind))
	}
}
