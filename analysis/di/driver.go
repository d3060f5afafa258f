package di

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vsl-lang/divc/analysis/memctx"
	"github.com/vsl-lang/divc/ir"
	"github.com/vsl-lang/divc/utils/worklist"
)

// BlockTrace is the before/after context the driver settled on for one
// block, exposed so the CLI's -dot flag can annotate the rendered CFG
// with per-block summaries (spec.md's ambient CLI surface).
type BlockTrace struct {
	Before, After memctx.Context
}

// runFunction drives the dominator-guided fixed-point traversal over fn
// (spec.md §4.2, component C5), threading edge reconciliation (C6) and
// the per-instruction transfer function (C4). It returns false the first
// time a block's evaluation fails; once that happens no further blocks
// are evaluated (spec.md §7). If trace is non-nil it is populated with
// every block's final before/after context.
func runFunction(fn *ir.Function, e *evalCtx, trace map[*ir.Block]BlockTrace) bool {
	cfg := fn.CFG()
	order := cfg.DominatorPreorder()
	if len(order) == 0 {
		return true
	}

	states := make(map[*ir.Block]*blockState, len(fn.Blocks))
	for _, b := range fn.Blocks {
		states[b] = &blockState{}
	}

	failed := false
	entry := cfg.Entry()

	worklist.Run(order, func(b *ir.Block, add func(*ir.Block)) {
		if failed {
			return
		}
		st := states[b]

		var before memctx.Context
		if b == entry {
			before = synthesizeEntryContext(fn)
		} else {
			if !readyToReconcile(b, cfg, states) {
				add(b)
				return
			}
			reconciled, mutated := reconcileEntry(fn, b, cfg, states)
			before = reconciled
			for _, p := range mutated {
				if e.metrics != nil {
					e.metrics.Repairs++
				}
				invalidateDownstream(p, cfg, states, add)
			}
		}

		if st.haveBefore && st.before.Eq(before) {
			st.done = true
			return
		}

		st.before = before
		st.haveBefore = true

		log.WithFields(log.Fields{"function": fn.Name, "block": b.Name}).Debug("di: evaluating block")

		after, ok := evalBlock(e, b, before)

		hadAfter := st.haveAfter
		prevAfter := st.after
		st.after = after
		st.haveAfter = true

		if !ok {
			failed = true
			st.done = true
			return
		}

		if e.metrics != nil {
			e.metrics.Iterations++
		}

		allPredsDone := true
		for _, p := range cfg.Preds(b) {
			if !states[p].done {
				allPredsDone = false
				break
			}
		}
		stable := hadAfter && prevAfter.Eq(after)

		if allPredsDone || (onlySelfPending(b, cfg, states) && stable) {
			st.done = true
		} else {
			add(b)
		}
	})

	if failed {
		return false
	}

	for _, b := range fn.Blocks {
		st := states[b]
		if !st.done {
			panic(fmt.Errorf("di: block %s in %s never reached a fixed point: precondition violation", b.Name, fn.Name))
		}
		if trace != nil {
			trace[b] = BlockTrace{Before: st.before, After: st.after}
		}
	}
	return true
}

// readyToReconcile implements spec.md §4.2 step 3: a non-entry block is
// ready once its immediate dominator and every non-dominated predecessor
// (i.e. every predecessor that isn't a back-edge into a loop b itself
// heads) has produced an after-context.
func readyToReconcile(b *ir.Block, cfg *ir.CFG, states map[*ir.Block]*blockState) bool {
	idomBlock, ok := cfg.ImmediateDominator(b)
	if !ok {
		panic(fmt.Errorf("di: block %s is unreachable from entry: precondition violation", b.Name))
	}
	if !states[idomBlock].haveAfter {
		return false
	}
	for _, p := range cfg.Preds(b) {
		if cfg.Dominates(b, p) {
			continue // back-edge: p is inside the loop b heads, not yet visited
		}
		if !states[p].haveAfter {
			return false
		}
	}
	return true
}

// onlySelfPending reports whether b's only not-yet-done predecessor is b
// itself (spec.md §4.2 step 6's self-loop carve-out).
func onlySelfPending(b *ir.Block, cfg *ir.CFG, states map[*ir.Block]*blockState) bool {
	pending := 0
	selfPending := false
	for _, p := range cfg.Preds(b) {
		if !states[p].done {
			pending++
			if p == b {
				selfPending = true
			}
		}
	}
	return pending == 1 && selfPending
}

// invalidateDownstream marks p (a predecessor that reconciliation just
// repaired) and every already-done successor transitively reachable from
// it as not-done, and re-enqueues all of them (spec.md §4.4: "the
// straightforward implementation is a reachable-set computation from the
// modified predecessor within the current done set"). p's stored
// before-context is cleared as well, so p is evaluated again with its
// newly inserted instructions even though its before-context is unchanged.
func invalidateDownstream(p *ir.Block, cfg *ir.CFG, states map[*ir.Block]*blockState, add func(*ir.Block)) {
	states[p].done = false
	states[p].haveBefore = false
	add(p)

	visited := map[*ir.Block]bool{}
	var walk func(*ir.Block)
	walk = func(b *ir.Block) {
		for _, s := range cfg.Succs(b) {
			if visited[s] {
				continue
			}
			visited[s] = true
			if states[s].done {
				states[s].done = false
				add(s)
				walk(s)
			}
		}
	}
	walk(p)
}

// evalBlock runs the transfer function over every instruction currently in
// b, in order, starting from `before`. Instructions are snapshotted up
// front: repairs inserted by evalInstr splice new instructions into b, and
// the original sequence must still be walked to completion regardless.
func evalBlock(e *evalCtx, b *ir.Block, before memctx.Context) (memctx.Context, bool) {
	instrs := append([]ir.Instruction(nil), b.Instrs()...)
	ctx := before
	for _, instr := range instrs {
		next, ok := evalInstr(ctx, instr, e)
		ctx = next
		if !ok {
			return ctx, false
		}
	}
	return ctx, true
}
