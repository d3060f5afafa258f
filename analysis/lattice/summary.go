package lattice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vsl-lang/divc/ir"
	"github.com/vsl-lang/divc/utils/iset"
)

// SummaryKind is the five-way categorization of an object's state used
// by transfer functions and diagnostics (spec.md §3, "Summary").
type SummaryKind int

const (
	FullyInitialized SummaryKind = iota
	FullyUninitialized
	FullyConsumed
	PartiallyInitialized
	PartiallyConsumed
)

// Summary is the result of summarizing an Object: its kind, plus the
// consumer set (valid for FullyConsumed/PartiallyConsumed) and the set of
// initialized record paths (valid for PartiallyInitialized/
// PartiallyConsumed).
type Summary struct {
	Kind             SummaryKind
	Consumers        iset.Set
	InitializedPaths []ir.Path
}

// Summarize computes o's five-way summary (spec.md §3).
func Summarize(o Object) Summary {
	if o.full {
		switch o.state.Kind() {
		case Initialized:
			return Summary{Kind: FullyInitialized}
		case Uninitialized:
			return Summary{Kind: FullyUninitialized}
		default:
			return Summary{Kind: FullyConsumed, Consumers: o.state.Consumers()}
		}
	}

	var initPaths, consumedPaths, uninitPaths []ir.Path
	var consumers iset.Set
	walkLeaves(o, nil, func(path ir.Path, s State) {
		switch s.Kind() {
		case Initialized:
			initPaths = append(initPaths, path)
		case Uninitialized:
			uninitPaths = append(uninitPaths, path)
		default:
			consumedPaths = append(consumedPaths, path)
			consumers = consumers.Union(s.Consumers())
		}
	})

	switch {
	case len(consumedPaths) > 0 && len(initPaths) == 0 && len(uninitPaths) == 0:
		return Summary{Kind: FullyConsumed, Consumers: consumers}
	case len(consumedPaths) > 0:
		return Summary{Kind: PartiallyConsumed, Consumers: consumers, InitializedPaths: initPaths}
	case len(initPaths) > 0 && len(uninitPaths) > 0:
		return Summary{Kind: PartiallyInitialized, InitializedPaths: initPaths}
	case len(uninitPaths) > 0:
		return Summary{Kind: FullyUninitialized}
	default:
		return Summary{Kind: FullyInitialized}
	}
}

func walkLeaves(o Object, prefix ir.Path, visit func(ir.Path, State)) {
	if o.full {
		visit(prefix, o.state)
		return
	}
	for i, p := range o.parts {
		walkLeaves(p, prefix.Append(i), visit)
	}
}

// UninitializedOrConsumedPaths returns every leaf path of o that is not
// Initialized, used by difference() (spec.md §4.4) on the "other" side of
// a Full(Initialized) vs. other comparison.
func (o Object) UninitializedOrConsumedPaths() []ir.Path {
	var out []ir.Path
	walkLeaves(o, nil, func(path ir.Path, s State) {
		if s.Kind() != Initialized {
			out = append(out, path)
		}
	})
	return out
}

// InitializedPaths returns every leaf path of o that is Initialized. DI's
// repair logic (spec.md §4.1, §4.4) uses this to decide which paths of an
// object being discarded need a load+deinit pair inserted first.
func (o Object) InitializedPaths() []ir.Path {
	var out []ir.Path
	walkLeaves(o, nil, func(path ir.Path, s State) {
		if s.Kind() == Initialized {
			out = append(out, path)
		}
	})
	return out
}

// Difference returns the list of record paths that are Initialized in a
// but not in b (spec.md §4.4's `difference(a, b)`), recursing pairwise
// over the Full/Partial structure.
func Difference(a, b Object) []ir.Path {
	switch {
	case a.full && a.state.Kind() == Initialized:
		return b.UninitializedOrConsumedPaths()
	case a.full:
		return nil
	case b.full && b.state.Kind() == Initialized:
		// Every path is initialized on the b side; nothing differs.
		return nil
	case b.full:
		// a is Partial, b is Full non-init: every leaf of a that is
		// Initialized is a difference, since b has none.
		var out []ir.Path
		walkLeaves(a, nil, func(path ir.Path, s State) {
			if s.Kind() == Initialized {
				out = append(out, path)
			}
		})
		return out
	default:
		var out []ir.Path
		n := len(a.parts)
		if len(b.parts) < n {
			n = len(b.parts)
		}
		for i := 0; i < n; i++ {
			for _, p := range Difference(a.parts[i], b.parts[i]) {
				full := make(ir.Path, 0, len(p)+1)
				full = append(full, i)
				full = append(full, p...)
				out = append(out, full)
			}
		}
		return out
	}
}

func (s SummaryKind) String() string {
	switch s {
	case FullyInitialized:
		return "fully initialized"
	case FullyUninitialized:
		return "fully uninitialized"
	case FullyConsumed:
		return "fully consumed"
	case PartiallyInitialized:
		return "partially initialized"
	case PartiallyConsumed:
		return "partially consumed"
	default:
		return "<bad summary>"
	}
}

// String renders an Object for diagnostics and golden tests.
func (o Object) String() string {
	if o.full {
		return o.state.String()
	}
	parts := make([]string, len(o.parts))
	for i, p := range o.parts {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Summary) String() string {
	switch s.Kind {
	case FullyConsumed:
		ids := s.Consumers.AppendTo(nil)
		sort.Ints(ids)
		return fmt.Sprintf("%s (by: %v)", s.Kind, ids)
	case PartiallyInitialized:
		return fmt.Sprintf("%s (initialized: %v)", s.Kind, s.InitializedPaths)
	case PartiallyConsumed:
		ids := s.Consumers.AppendTo(nil)
		sort.Ints(ids)
		return fmt.Sprintf("%s (by: %v, initialized: %v)", s.Kind, ids, s.InitializedPaths)
	default:
		return s.Kind.String()
	}
}
