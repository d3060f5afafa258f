package di

import (
	"fmt"

	uf "github.com/spakin/disjoint"

	"github.com/vsl-lang/divc/analysis/lattice"
	"github.com/vsl-lang/divc/analysis/location"
	"github.com/vsl-lang/divc/analysis/memctx"
	"github.com/vsl-lang/divc/ir"
	"github.com/vsl-lang/divc/utils/graph"
)

// blockState is the driver's per-block bookkeeping (spec.md §4.2).
type blockState struct {
	before, after       memctx.Context
	haveBefore, haveAfter bool
	done                bool
}

// source is one contributor to a block's merged entry context: either a
// visited predecessor's own after-context, or (for an unvisited
// predecessor) its immediate dominator's after-context substituted in its
// place (spec.md §4.4 step 1).
type source struct {
	pred *ir.Block // nil when substituted
	ctx  memctx.Context
	elem *uf.Element
}

// reconcileEntry computes b's before-context from its predecessors
// (spec.md §4.4, component C6), and returns the set of predecessors that
// needed a repair inserted into their tail so the caller can invalidate
// and re-enqueue them.
func reconcileEntry(fn *ir.Function, b *ir.Block, cfg *ir.CFG, states map[*ir.Block]*blockState) (memctx.Context, []*ir.Block) {
	preds := cfg.Preds(b)
	if len(preds) == 0 {
		return memctx.Empty(), nil
	}

	sources := make([]*source, 0, len(preds))
	for _, p := range preds {
		st := states[p]
		if st.haveAfter {
			sources = append(sources, &source{pred: p, ctx: st.after, elem: uf.NewElement()})
			continue
		}
		idomP := graph.MustIdom(cfg.ImmediateDominator, p)
		idomSt := states[idomP]
		if !idomSt.haveAfter {
			panic(fmt.Errorf("di: dominator %s of unvisited predecessor %s has no after-context yet: precondition violation", idomP.Name, p.Name))
		}
		sources = append(sources, &source{pred: nil, ctx: idomSt.after, elem: uf.NewElement()})
	}

	// Union-find groups sources with structurally equal contexts, so the
	// fold below runs once per distinct contributing context instead of
	// once per predecessor edge.
	for i := range sources {
		for j := i + 1; j < len(sources); j++ {
			if sources[i].ctx.Eq(sources[j].ctx) {
				uf.Union(sources[i].elem, sources[j].elem)
			}
		}
	}

	groups := map[*uf.Element]memctx.Context{}
	var order []*uf.Element
	for _, s := range sources {
		rep := s.elem.Find()
		if _, ok := groups[rep]; !ok {
			groups[rep] = s.ctx
			order = append(order, rep)
		}
	}

	if len(groups) == 1 {
		return groups[order[0]], nil
	}

	distinct := make([]memctx.Context, len(order))
	for i, rep := range order {
		distinct[i] = groups[rep]
	}
	before := joinContexts(distinct)

	var mutated []*ir.Block
	for _, s := range sources {
		if s.pred == nil {
			continue
		}
		if repairPredecessor(fn, s.pred, s.ctx, before) {
			mutated = append(mutated, s.pred)
		}
	}

	return before, mutated
}

// joinContexts folds distinct source contexts per spec.md §4.4 step 3:
// locals present in every source are retained with a value-join, locals
// missing from any source are dropped, and memory cells are unioned with
// colliding cells joined object-wise.
func joinContexts(ctxs []memctx.Context) memctx.Context {
	out := memctx.Empty()

	localCount := map[ir.Register]int{}
	localVal := map[ir.Register]memctx.Value{}
	for _, c := range ctxs {
		for _, e := range c.Locals() {
			localCount[e.Reg]++
			if v, ok := localVal[e.Reg]; ok {
				localVal[e.Reg] = v.Join(e.Val)
			} else {
				localVal[e.Reg] = e.Val
			}
		}
	}
	for r, count := range localCount {
		if count == len(ctxs) {
			out = out.SetLocal(r, localVal[r])
		}
	}

	// location.Location's concrete implementors (Arg, Sub) embed an
	// ir.Type, which carries a slice field, so Location is not itself a
	// valid native-map key (hash of unhashable type). Fold keyed by
	// String() instead, carrying the Location alongside, the same
	// surrogate-key approach spec.md §3 reserves Hash()/Equal() for when
	// folding over the persistent immutable.Map via location.Hasher.
	type cellFold struct {
		loc location.Location
		typ ir.Type
		obj lattice.Object
	}
	cells := map[string]*cellFold{}
	var cellOrder []string
	for _, c := range ctxs {
		for _, e := range c.Cells() {
			key := e.Loc.String()
			if f, ok := cells[key]; ok {
				if !f.typ.Equal(e.Cell.Type) {
					panic(fmt.Errorf("di: location %s has differing types across merged predecessors: internal lattice inconsistency", e.Loc))
				}
				f.obj = f.obj.Join(e.Cell.Object)
				continue
			}
			cells[key] = &cellFold{loc: e.Loc, typ: e.Cell.Type, obj: e.Cell.Object}
			cellOrder = append(cellOrder, key)
		}
	}
	for _, key := range cellOrder {
		f := cells[key]
		out = out.SetCell(f.loc, memctx.Cell{Type: f.typ, Object: f.obj})
	}

	return out
}

// repairPredecessor inserts, before p's terminator, the deinits (for
// object-valued locals) and load+deinit pairs (for location-valued locals)
// needed so that p's tail leaves every live local in the state `before`
// expects, per spec.md §4.4 step 4. It returns whether it mutated p.
func repairPredecessor(fn *ir.Function, p *ir.Block, after, before memctx.Context) bool {
	mutated := false
	term := p.Terminator()

	for _, e := range before.Locals() {
		pv, ok := after.Local(e.Reg)
		if !ok {
			continue
		}
		if pv.Eq(e.Val) {
			continue
		}

		if !pv.IsLocations() {
			// Object-valued local: the merged state can only differ by
			// being consumed/uninitialized where p still has it Full and
			// initialized (join never becomes *more* initialized); insert
			// a deinit to force p's tail to agree.
			if !pv.Object().IsFull() || !e.Val.Object().IsFull() {
				panic(fmt.Errorf("di: merge of %s: partial object at a block boundary: internal lattice inconsistency", e.Reg))
			}
			if pv.Object().State().Kind() != lattice.Initialized {
				continue
			}
			deinit := fn.NewDeinit(e.Reg, term.SrcRange())
			p.InsertBefore(deinit, term)
			mutated = true
			continue
		}

		// Location-valued local: diff the object reachable through p's
		// exit state against the merged entry state and replay the
		// difference as load+deinit pairs.
		rep, ok := firstOf(pv.Locs())
		if !ok {
			continue
		}
		pObj := objectAt(after, rep)
		mergedObj := objectAt(before, rep)
		diff := sortedPaths(lattice.Difference(pObj, mergedObj))
		for _, path := range diff {
			typeAtP := ir.TypeAt(rep.Type(), path)
			insertLoadDeinit(fn, p, term, e.Reg, typeAtP, path)
		}
		if len(diff) > 0 {
			mutated = true
		}
	}

	return mutated
}
