package di

import (
	"fmt"

	"github.com/vsl-lang/divc/analysis/diagnostic"
	"github.com/vsl-lang/divc/analysis/lattice"
	"github.com/vsl-lang/divc/analysis/location"
	"github.com/vsl-lang/divc/analysis/memctx"
	"github.com/vsl-lang/divc/ir"
)

// evalCtx carries the per-function collaborators the transfer functions
// need beyond the context they thread through: the function they are
// mutating (for minting repair instructions) and the sinks for
// diagnostics and metrics.
type evalCtx struct {
	fn      *ir.Function
	diags   *diagnostic.Channel
	metrics *Metrics
}

// evalInstr is the transfer function (spec.md §4.1, component C4): given
// the context before instr, it returns the context after, or false if
// evaluation failed (a diagnostic was emitted and the enclosing block
// evaluation must stop).
func evalInstr(ctx memctx.Context, instr ir.Instruction, e *evalCtx) (memctx.Context, bool) {
	switch ins := instr.(type) {
	case *ir.AllocStack:
		return evalAllocStack(ctx, ins, e)
	case *ir.Borrow:
		return evalBorrow(ctx, ins, e)
	case *ir.CondBranch:
		return consume(ctx, ins.Cond, ins, e.diags)
	case *ir.Call:
		return evalCall(ctx, ins, e)
	case *ir.DeallocStack:
		return evalDeallocStack(ctx, ins, e)
	case *ir.Deinit:
		return consume(ctx, ins.Obj, ins, e.diags)
	case *ir.Destructure:
		return evalDestructure(ctx, ins, e)
	case *ir.Load:
		return evalLoad(ctx, ins, e)
	case *ir.Record:
		return evalRecord(ctx, ins, e)
	case *ir.Return:
		if ins.HasVal {
			return consume(ctx, ins.Val, ins, e.diags)
		}
		return ctx, true
	case *ir.Store:
		return evalStore(ctx, ins, e)
	case *ir.Branch, *ir.EndBorrow, *ir.Unreachable:
		return ctx, true
	default:
		panic(fmt.Errorf("di: unrecognized instruction %T: ill-formed IR", instr))
	}
}

// consume implements spec.md §4.1's `consume(key, by)`: constants are
// always already-owned and are a no-op; otherwise the local must be
// FullyInitialized, and is replaced by Full(Consumed(by)).
func consume(ctx memctx.Context, key ir.Register, by ir.Instruction, diags *diagnostic.Channel) (memctx.Context, bool) {
	if key.IsConst() {
		return ctx, true
	}
	v, ok := ctx.Local(key)
	if !ok || v.IsLocations() {
		panic(fmt.Errorf("di: consume(%s): not bound to an owned object: ill-formed IR", key))
	}
	summary := lattice.Summarize(v.Object())
	if summary.Kind != lattice.FullyInitialized {
		diags.Error(diagnostic.MsgIllegalMove, by.SrcRange().Start(), "")
		return ctx, false
	}
	return ctx.SetLocal(key, memctx.ObjectValue(lattice.Full(lattice.ConsumedBy(by.ID())))), true
}

func evalAllocStack(ctx memctx.Context, instr *ir.AllocStack, e *evalCtx) (memctx.Context, bool) {
	loc := location.Inst{Alloc: instr}
	if _, exists := ctx.Cell(loc); exists {
		e.diags.Error(diagnostic.MsgUnboundedStackAllocation, instr.SrcRange().Start(), "")
		return ctx, false
	}
	ctx = ctx.SetCell(loc, memctx.Cell{Type: instr.Type, Object: lattice.Full(lattice.UninitializedState())})
	ctx = ctx.SetLocal(ir.ResultRegister(instr, 0), memctx.Locations(location.Of(loc)))
	return ctx, true
}

// evalBorrow implements spec.md §4.1's borrow semantics table for the
// let/inout/set capabilities (yielded is a precondition violation, spec.md
// §4.3).
func evalBorrow(ctx memctx.Context, instr *ir.Borrow, e *evalCtx) (memctx.Context, bool) {
	srcVal, ok := ctx.Local(instr.Src)
	if !ok || !srcVal.IsLocations() {
		panic(fmt.Errorf("di: borrow %s: operand not bound to a location set: ill-formed IR", instr.Src))
	}
	l := appendPath(srcVal.Locs(), instr.Path)

	rep, ok := firstOf(l)
	if !ok {
		panic("di: borrow over an empty location set: ill-formed IR")
	}
	obj := objectAt(ctx, rep)
	summary := lattice.Summarize(obj)

	switch instr.Capability {
	case ir.Let, ir.Inout:
		if summary.Kind != lattice.FullyInitialized {
			e.diags.Error(messageForSummary(summary.Kind), instr.SrcRange().Start(), "")
			return ctx, false
		}
		return ctx.SetLocal(ir.ResultRegister(instr, 0), memctx.Locations(l)), true

	case ir.Set:
		if summary.Kind != lattice.FullyUninitialized {
			ctx = repairSetBorrow(ctx, e, instr, rep, obj)
			l.ForEach(func(loc location.Location) {
				ctx = setObjectAt(ctx, loc, lattice.Full(lattice.UninitializedState()))
			})
		}
		return ctx.SetLocal(ir.ResultRegister(instr, 0), memctx.Locations(l)), true

	default:
		panic(fmt.Errorf("di: borrow with capability %s: precondition violation", instr.Capability))
	}
}

// repairSetBorrow inserts, for each Initialized leaf path of obj (in
// deterministic order), a load+deinit pair before instr, discarding the
// live value that a set-borrow would otherwise silently overwrite
// (spec.md §4.1: "DI inserts repair").
func repairSetBorrow(ctx memctx.Context, e *evalCtx, instr *ir.Borrow, rep location.Location, obj lattice.Object) memctx.Context {
	paths := sortedPaths(obj.InitializedPaths())
	blk := instr.Block()
	for _, p := range paths {
		combined := appendAll(instr.Path, p)
		typeAtP := ir.TypeAt(rep.Type(), p)
		insertLoadDeinit(e.fn, blk, instr, instr.Src, typeAtP, combined)
	}
	if len(paths) > 0 && e.metrics != nil {
		e.metrics.Repairs++
	}
	return ctx
}

// insertLoadDeinit inserts `load(t, src, path)` followed by
// `deinit(<load's result>)` immediately before `before`.
func insertLoadDeinit(fn *ir.Function, blk *ir.Block, before ir.Instruction, src ir.Register, t ir.Type, path ir.Path) {
	rng := before.SrcRange()
	load := fn.NewLoad(t, src, path, rng)
	blk.InsertBefore(load, before)
	deinit := fn.NewDeinit(ir.ResultRegister(load, 0), rng)
	blk.InsertBefore(deinit, before)
}

func evalLoad(ctx memctx.Context, instr *ir.Load, e *evalCtx) (memctx.Context, bool) {
	srcVal, ok := ctx.Local(instr.Src)
	if !ok || !srcVal.IsLocations() {
		panic(fmt.Errorf("di: load %s: operand not bound to a location set: ill-formed IR", instr.Src))
	}
	l := appendPath(srcVal.Locs(), instr.Path)

	rep, ok := firstOf(l)
	if !ok {
		panic("di: load over an empty location set: ill-formed IR")
	}
	summary := lattice.Summarize(objectAt(ctx, rep))
	if summary.Kind != lattice.FullyInitialized {
		e.diags.Error(messageForSummary(summary.Kind), instr.SrcRange().Start(), "")
		return ctx, false
	}

	consumer := instr.ID()
	l.ForEach(func(loc location.Location) {
		ctx = setObjectAt(ctx, loc, lattice.Full(lattice.ConsumedBy(consumer)))
	})
	return ctx.SetLocal(ir.ResultRegister(instr, 0), memctx.ObjectValue(lattice.Full(lattice.InitializedState()))), true
}

func evalStore(ctx memctx.Context, instr *ir.Store, e *evalCtx) (memctx.Context, bool) {
	ctx, ok := consume(ctx, instr.Obj, instr, e.diags)
	if !ok {
		return ctx, false
	}
	tgtVal, ok := ctx.Local(instr.Target)
	if !ok || !tgtVal.IsLocations() {
		panic(fmt.Errorf("di: store into %s: target not bound to a location set: ill-formed IR", instr.Target))
	}
	tgtVal.Locs().ForEach(func(loc location.Location) {
		ctx = setObjectAt(ctx, loc, lattice.Full(lattice.InitializedState()))
	})
	return ctx, true
}

func evalDeallocStack(ctx memctx.Context, instr *ir.DeallocStack, e *evalCtx) (memctx.Context, bool) {
	locVal, ok := ctx.Local(instr.Loc)
	if !ok || !locVal.IsLocations() {
		panic(fmt.Errorf("di: dealloc_stack %s: operand not bound to a location set: ill-formed IR", instr.Loc))
	}
	rep, ok := firstOf(locVal.Locs())
	if !ok {
		panic("di: dealloc_stack over an empty location set: ill-formed IR")
	}

	obj := objectAt(ctx, rep)
	paths := sortedPaths(obj.InitializedPaths())
	blk := instr.Block()
	for _, p := range paths {
		typeAtP := ir.TypeAt(rep.Type(), p)
		insertLoadDeinit(e.fn, blk, instr, instr.Loc, typeAtP, p)
	}
	if len(paths) > 0 && e.metrics != nil {
		e.metrics.Repairs++
	}

	ctx = ctx.DeleteCell(location.Root(rep))
	return ctx, true
}

func evalDestructure(ctx memctx.Context, instr *ir.Destructure, e *evalCtx) (memctx.Context, bool) {
	ctx, ok := consume(ctx, instr.Obj, instr, e.diags)
	if !ok {
		return ctx, false
	}
	for _, r := range instr.Results() {
		ctx = ctx.SetLocal(r, memctx.ObjectValue(lattice.Full(lattice.InitializedState())))
	}
	return ctx, true
}

func evalRecord(ctx memctx.Context, instr *ir.Record, e *evalCtx) (memctx.Context, bool) {
	for _, op := range instr.Operands_ {
		var ok bool
		ctx, ok = consume(ctx, op, instr, e.diags)
		if !ok {
			return ctx, false
		}
	}
	return ctx.SetLocal(ir.ResultRegister(instr, 0), memctx.ObjectValue(lattice.Full(lattice.InitializedState()))), true
}

func evalCall(ctx memctx.Context, instr *ir.Call, e *evalCtx) (memctx.Context, bool) {
	for _, op := range instr.Operands_ {
		switch op.Convention {
		case ir.Let, ir.Inout, ir.Set:
			// No lattice effect: the callee's view of the borrow is opaque
			// to DI beyond the convention itself (spec.md §4.1).
		case ir.Sink:
			var ok bool
			ctx, ok = consume(ctx, op.Value, instr, e.diags)
			if !ok {
				return ctx, false
			}
		default:
			panic(fmt.Errorf("di: call operand with convention %s: precondition violation", op.Convention))
		}
	}
	return ctx.SetLocal(ir.ResultRegister(instr, 0), memctx.ObjectValue(lattice.Full(lattice.InitializedState()))), true
}
