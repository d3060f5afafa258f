package di

import (
	"fmt"

	"github.com/vsl-lang/divc/analysis/lattice"
	"github.com/vsl-lang/divc/analysis/location"
	"github.com/vsl-lang/divc/analysis/memctx"
	"github.com/vsl-lang/divc/ir"
)

// synthesizeEntryContext builds the context DI starts from at a
// function's entry block (spec.md §4.3): one cell (and bound location) per
// let/inout/set parameter, and one owned-object local per sink parameter.
func synthesizeEntryContext(fn *ir.Function) memctx.Context {
	ctx := memctx.Empty()
	for i, p := range fn.Params {
		reg := ir.ParamRegister(i)
		switch p.Convention {
		case ir.Let, ir.Inout:
			loc := location.Arg{Index: i, Typ: p.Type}
			ctx = ctx.SetCell(loc, memctx.Cell{Type: p.Type, Object: lattice.Full(lattice.InitializedState())})
			ctx = ctx.SetLocal(reg, memctx.Locations(location.Of(loc)))
		case ir.Set:
			loc := location.Arg{Index: i, Typ: p.Type}
			ctx = ctx.SetCell(loc, memctx.Cell{Type: p.Type, Object: lattice.Full(lattice.UninitializedState())})
			ctx = ctx.SetLocal(reg, memctx.Locations(location.Of(loc)))
		case ir.Sink:
			ctx = ctx.SetLocal(reg, memctx.ObjectValue(lattice.Full(lattice.InitializedState())))
		default:
			panic(fmt.Errorf("di: parameter %d (%s) has convention %s: precondition violation", i, p.Name, p.Convention))
		}
	}
	return ctx
}
