package di

import (
	"testing"

	"github.com/vsl-lang/divc/analysis/diagnostic"
	"github.com/vsl-lang/divc/ir"
)

// sinkFunction builds `func name(sink x: T) { entry: <body via bu> }` and
// returns the function and a builder positioned at its entry block.
func sinkFunction(name string, t ir.Type) (*ir.Function, *ir.Builder) {
	fn := ir.NewFunction(name, ir.Param{Name: "x", Convention: ir.Sink, Type: t})
	entry := fn.AddBlock("entry")
	return fn, ir.NewBuilder(fn, entry)
}

func TestRunUseOfUninitializedIsDiagnosed(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock("entry")
	bu := ir.NewBuilder(fn, entry)
	alloc := bu.AllocStack(ir.Scalar("Int"), ir.Range{})
	load := bu.Load(ir.Scalar("Int"), ir.ResultRegister(alloc, 0), nil, ir.Range{})
	bu.Deinit(ir.ResultRegister(load, 0), ir.Range{})
	bu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if res.Success {
		t.Fatalf("Run should fail: loading an uninitialized alloc_stack cell")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != diagnostic.MsgUseOfUninitialized {
		t.Fatalf("Diagnostics = %v, want exactly one %q", res.Diagnostics, diagnostic.MsgUseOfUninitialized)
	}
}

func TestRunDoubleMoveIsDiagnosed(t *testing.T) {
	fn, bu := sinkFunction("f", ir.Scalar("Int"))
	bu.Deinit(ir.ParamRegister(0), ir.Range{})
	bu.Deinit(ir.ParamRegister(0), ir.Range{})
	bu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if res.Success {
		t.Fatalf("Run should fail: consuming the sink parameter twice")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != diagnostic.MsgIllegalMove {
		t.Fatalf("Diagnostics = %v, want exactly one %q", res.Diagnostics, diagnostic.MsgIllegalMove)
	}
}

func TestRunWellInitializedStoreThenLoadSucceeds(t *testing.T) {
	fn, bu := sinkFunction("f", ir.Scalar("Int"))
	alloc := bu.AllocStack(ir.Scalar("Int"), ir.Range{})
	bu.Store(ir.ParamRegister(0), ir.ResultRegister(alloc, 0), ir.Range{})
	load := bu.Load(ir.Scalar("Int"), ir.ResultRegister(alloc, 0), nil, ir.Range{})
	bu.Deinit(ir.ResultRegister(load, 0), ir.Range{})
	bu.DeallocStack(ir.ResultRegister(alloc, 0), ir.Range{})
	bu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if !res.Success {
		t.Fatalf("Run should succeed, got diagnostics: %v", res.Diagnostics)
	}
}

// divergentConsumeBranches builds a function with a sink parameter x where
// `right` consumes x and `left` does not, then both branch unconditionally
// to `join`, which never touches x. Reconciliation must repair the
// non-consuming predecessor (left) with a deinit so it matches the merged
// entry state join computes for x, per the branch-merge scenario.
func divergentConsumeBranches() *ir.Function {
	fn, entryBu := sinkFunction("f", ir.Scalar("Int"))
	cond := fn.NewConst()

	left := fn.AddBlock("left")
	right := fn.AddBlock("right")
	join := fn.AddBlock("join")

	ir.NewBuilder(fn, left).Branch(join, ir.Range{})

	rightBu := ir.NewBuilder(fn, right)
	rightBu.Deinit(ir.ParamRegister(0), ir.Range{})
	rightBu.Branch(join, ir.Range{})

	ir.NewBuilder(fn, join).Return(ir.Register{}, false, ir.Range{})

	entryBu.CondBranch(cond, left, right, ir.Range{})
	return fn
}

func TestRunBranchMergeRepairsNonConsumingPredecessor(t *testing.T) {
	fn := divergentConsumeBranches()
	res := Run(fn)
	if !res.Success {
		t.Fatalf("Run should succeed once the merge repair inserts a deinit into left, got: %v", res.Diagnostics)
	}
	if res.Metrics.Repairs == 0 {
		t.Errorf("Metrics.Repairs = 0, want at least one repair for the divergent branches")
	}

	left := fn.Blocks[1]
	found := false
	for _, ins := range left.Instrs() {
		if _, ok := ins.(*ir.Deinit); ok {
			found = true
		}
	}
	if !found {
		t.Errorf("expected repairPredecessor to insert a deinit into left's tail")
	}
}

// divergentBorrowOfLetParam builds a function with a `let` parameter x
// where `left` borrows x and `right` does not, then both branch
// unconditionally to `join`. left's and right's after-contexts differ
// (left carries an extra borrow-result local), so reconciliation must
// fold their two Arg(0) cells through joinContexts rather than taking
// the single-group fast path.
func divergentBorrowOfLetParam() *ir.Function {
	fn := ir.NewFunction("f", ir.Param{Name: "x", Convention: ir.Let, Type: ir.Scalar("Int")})
	cond := fn.NewConst()

	entry := fn.AddBlock("entry")
	left := fn.AddBlock("left")
	right := fn.AddBlock("right")
	join := fn.AddBlock("join")

	leftBu := ir.NewBuilder(fn, left)
	leftBu.Borrow(ir.Let, ir.ParamRegister(0), nil, ir.Range{})
	leftBu.Branch(join, ir.Range{})

	ir.NewBuilder(fn, right).Branch(join, ir.Range{})

	ir.NewBuilder(fn, join).Return(ir.Register{}, false, ir.Range{})

	ir.NewBuilder(fn, entry).CondBranch(cond, left, right, ir.Range{})
	return fn
}

func TestRunMergeOfBorrowedParamCellAcrossDivergentPredecessorsSucceeds(t *testing.T) {
	fn := divergentBorrowOfLetParam()
	res := Run(fn)
	if !res.Success {
		t.Fatalf("Run should succeed: merging two predecessors that both carry the Arg(0) cell for a let parameter must not diagnose or panic, got: %v", res.Diagnostics)
	}
}

func TestRunDeallocWithLiveObjectInsertsRepairLoadDeinit(t *testing.T) {
	fn, bu := sinkFunction("f", ir.Scalar("Int"))
	alloc := bu.AllocStack(ir.Scalar("Int"), ir.Range{})
	bu.Store(ir.ParamRegister(0), ir.ResultRegister(alloc, 0), ir.Range{})
	bu.DeallocStack(ir.ResultRegister(alloc, 0), ir.Range{})
	bu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if !res.Success {
		t.Fatalf("Run should succeed: dealloc_stack must repair, not diagnose, a live object underneath it, got: %v", res.Diagnostics)
	}
	if res.Metrics.Repairs == 0 {
		t.Errorf("Metrics.Repairs = 0, want a repair for deallocating a live cell")
	}

	entry := fn.Entry()
	var kinds []string
	for _, ins := range entry.Instrs() {
		switch ins.(type) {
		case *ir.Load:
			kinds = append(kinds, "load")
		case *ir.Deinit:
			kinds = append(kinds, "deinit")
		case *ir.DeallocStack:
			kinds = append(kinds, "dealloc_stack")
		}
	}
	wantSuffix := []string{"load", "deinit", "dealloc_stack"}
	if len(kinds) < 3 {
		t.Fatalf("instruction kinds = %v, want at least load, deinit, dealloc_stack in order", kinds)
	}
	got := kinds[len(kinds)-3:]
	for i, w := range wantSuffix {
		if got[i] != w {
			t.Errorf("instruction kinds tail = %v, want %v", got, wantSuffix)
		}
	}
}

func TestRunSetBorrowOverInitializedStorageRepairs(t *testing.T) {
	fn, bu := sinkFunction("f", ir.Scalar("Int"))
	alloc := bu.AllocStack(ir.Scalar("Int"), ir.Range{})
	bu.Store(ir.ParamRegister(0), ir.ResultRegister(alloc, 0), ir.Range{})
	bu.Borrow(ir.Set, ir.ResultRegister(alloc, 0), nil, ir.Range{})
	bu.DeallocStack(ir.ResultRegister(alloc, 0), ir.Range{})
	bu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if !res.Success {
		t.Fatalf("Run should succeed: a set-borrow over live storage must repair it, got: %v", res.Diagnostics)
	}
	if res.Metrics.Repairs == 0 {
		t.Errorf("Metrics.Repairs = 0, want at least one repair for the set-borrow")
	}
}

func TestRunPartialInitializationIsDiagnosed(t *testing.T) {
	pairType := ir.RecordType("Pair", ir.Field{Name: "a", Type: ir.Scalar("Int")}, ir.Field{Name: "b", Type: ir.Scalar("Int")})

	fn, bu := sinkFunction("f", ir.Scalar("Int"))
	alloc := bu.AllocStack(pairType, ir.Range{})
	field0 := bu.Borrow(ir.Set, ir.ResultRegister(alloc, 0), ir.Path{0}, ir.Range{})
	bu.Store(ir.ParamRegister(0), ir.ResultRegister(field0, 0), ir.Range{})
	load := bu.Load(pairType, ir.ResultRegister(alloc, 0), nil, ir.Range{})
	bu.Deinit(ir.ResultRegister(load, 0), ir.Range{})
	bu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if res.Success {
		t.Fatalf("Run should fail: loading a record with only field 0 initialized")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != diagnostic.MsgUseOfPartiallyInitialized {
		t.Fatalf("Diagnostics = %v, want exactly one %q", res.Diagnostics, diagnostic.MsgUseOfPartiallyInitialized)
	}
}

func TestRunConsumingAFieldThenTheWholeRecordIsPartiallyConsumed(t *testing.T) {
	pairType := ir.RecordType("Pair", ir.Field{Name: "a", Type: ir.Scalar("Int")}, ir.Field{Name: "b", Type: ir.Scalar("Int")})

	fn := ir.NewFunction("f", ir.Param{Name: "p", Convention: ir.Let, Type: pairType})
	entry := fn.AddBlock("entry")
	bu := ir.NewBuilder(fn, entry)
	loc := ir.ParamRegister(0)
	first := bu.Load(ir.Scalar("Int"), loc, ir.Path{0}, ir.Range{})
	bu.Deinit(ir.ResultRegister(first, 0), ir.Range{})
	second := bu.Load(pairType, loc, nil, ir.Range{})
	bu.Deinit(ir.ResultRegister(second, 0), ir.Range{})
	bu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if res.Success {
		t.Fatalf("Run should fail: loading the whole record after consuming one field")
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Message != diagnostic.MsgUseOfPartiallyConsumed {
		t.Fatalf("Diagnostics = %v, want exactly one %q", res.Diagnostics, diagnostic.MsgUseOfPartiallyConsumed)
	}
}

func TestRunStopsAtFirstFailingBlockInDominatorOrder(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.AddBlock("entry")
	second := fn.AddBlock("second")

	entryBu := ir.NewBuilder(fn, entry)
	alloc := entryBu.AllocStack(ir.Scalar("Int"), ir.Range{})
	ld := entryBu.Load(ir.Scalar("Int"), ir.ResultRegister(alloc, 0), nil, ir.Range{})
	entryBu.Branch(second, ir.Range{})

	secondBu := ir.NewBuilder(fn, second)
	secondBu.Deinit(ir.ResultRegister(ld, 0), ir.Range{})
	secondBu.Deinit(ir.ResultRegister(ld, 0), ir.Range{})
	secondBu.Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if res.Success {
		t.Fatalf("Run should fail: entry loads an uninitialized cell")
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %v, want exactly one (evaluation stops at the first failing block)", res.Diagnostics)
	}
}

func TestRunSelfLoopReachesFixedPointWithoutRepairLoop(t *testing.T) {
	fn := ir.NewFunction("f")
	cond := fn.NewConst()
	entry := fn.AddBlock("entry")
	loop := fn.AddBlock("loop")
	exit := fn.AddBlock("exit")

	ir.NewBuilder(fn, entry).Branch(loop, ir.Range{})

	loopBu := ir.NewBuilder(fn, loop)
	alloc := loopBu.AllocStack(ir.Scalar("Int"), ir.Range{})
	loopBu.DeallocStack(ir.ResultRegister(alloc, 0), ir.Range{})
	loopBu.CondBranch(cond, loop, exit, ir.Range{})

	ir.NewBuilder(fn, exit).Return(ir.Register{}, false, ir.Range{})

	res := Run(fn)
	if !res.Success {
		t.Fatalf("Run should succeed over a self loop that re-allocates and deallocates each iteration, got: %v", res.Diagnostics)
	}
}

func TestRunReturnOfConsumedSinkParameterSucceeds(t *testing.T) {
	fn, bu := sinkFunction("f", ir.Scalar("Int"))
	bu.Return(ir.ParamRegister(0), true, ir.Range{})

	res := Run(fn)
	if !res.Success {
		t.Fatalf("returning an owned sink parameter should succeed, got: %v", res.Diagnostics)
	}
}

func TestRunModuleRunsEveryFunctionIndependently(t *testing.T) {
	mod := ir.NewModule()

	good, goodBu := sinkFunction("good", ir.Scalar("Int"))
	goodBu.Return(ir.ParamRegister(0), true, ir.Range{})
	mod.AddFunction(good)

	bad, badBu := sinkFunction("bad", ir.Scalar("Int"))
	badBu.Deinit(ir.ParamRegister(0), ir.Range{})
	badBu.Deinit(ir.ParamRegister(0), ir.Range{})
	badBu.Return(ir.Register{}, false, ir.Range{})
	mod.AddFunction(bad)

	results := RunModule(mod)
	if len(results) != 2 {
		t.Fatalf("RunModule returned %d results, want 2", len(results))
	}
	if !results[0].Success || results[1].Success {
		t.Errorf("RunModule results = {good: %v, bad: %v}, want {true, false}", results[0].Success, results[1].Success)
	}
}
