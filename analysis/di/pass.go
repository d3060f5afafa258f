// Package di implements the definite-initialization / ownership pass
// (spec.md §4, components C4-C6): the per-instruction transfer function,
// the dominator-guided fixed-point CFG driver, and edge reconciliation
// with its IR-mutating repairs.
package di

import (
	log "github.com/sirupsen/logrus"

	"github.com/vsl-lang/divc/analysis/diagnostic"
	"github.com/vsl-lang/divc/ir"
)

// Name is the pass's display name, used by the CLI and in logging
// (spec.md §6).
const Name = "Definite initialization"

// Metrics counts block evaluations and repairs inserted, for the CLI's
// -metrics flag (spec.md's ambient CLI surface).
type Metrics struct {
	Iterations int
	Repairs    int
}

// Result is the outcome of running the pass over one function.
type Result struct {
	Function    string
	Success     bool
	Diagnostics []diagnostic.Diagnostic
	Metrics     Metrics
	Blocks      map[*ir.Block]BlockTrace
}

// Run executes the pass over a single function (spec.md §6: "The pass
// returns false if any diagnostic was emitted"). Panics signal a
// precondition violation or internal inconsistency in the input IR or the
// lattice, per spec.md's convention of treating those as programmer
// errors rather than diagnosable user errors.
func Run(fn *ir.Function) Result {
	diags := &diagnostic.Channel{}
	metrics := &Metrics{}
	e := &evalCtx{fn: fn, diags: diags, metrics: metrics}
	trace := make(map[*ir.Block]BlockTrace, len(fn.Blocks))

	log.WithField("function", fn.Name).Infof("%s: starting", Name)
	ok := runFunction(fn, e, trace)
	log.WithFields(log.Fields{
		"function": fn.Name,
		"success":  ok,
		"repairs":  metrics.Repairs,
	}).Infof("%s: finished", Name)

	return Result{Function: fn.Name, Success: ok, Diagnostics: diags.Diagnostics(), Metrics: *metrics, Blocks: trace}
}

// RunModule runs the pass independently over every function in mod
// (spec.md §6 scopes one pass invocation to one function; the CLI and
// this helper are what apply it module-wide).
func RunModule(mod *ir.Module) []Result {
	var results []Result
	for _, fn := range mod.Functions() {
		results = append(results, Run(fn))
	}
	return results
}
