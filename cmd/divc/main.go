// Command divc runs the definite-initialization pass over a textual IR
// module and reports its diagnostics, mirroring the teacher's single
// flag-driven main.go entry point.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vsl-lang/divc/analysis/di"
	"github.com/vsl-lang/divc/analysis/diagnostic"
	"github.com/vsl-lang/divc/ir"
)

func main() {
	ParseArgs()

	if Opts().Verbose() {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if Opts().NoColorize() {
		ir.NoColor = true
		diagnostic.NoColor = true
	}

	path := Opts().Path()
	if path == "" {
		fmt.Fprintln(os.Stderr, "divc: expected a path to a textual IR module")
		os.Exit(2)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("divc: %v", err)
	}

	mod, err := ir.ParseModule(string(src))
	if err != nil {
		log.Fatalf("divc: %v", err)
	}

	fns := mod.Functions()
	if fn := Opts().Function(); fn != "" {
		fns = []*ir.Function{mod.MustFunction(fn)}
	}

	failed := false
	for _, fn := range fns {
		result := di.Run(fn)
		if !result.Success {
			failed = true
		}

		fmt.Printf("%s: %s\n", fn.Name, outcome(result))
		for _, d := range diagnostic.BySourcePosition(result.Diagnostics) {
			fmt.Println(d.Render())
		}
		if Opts().Metrics() {
			fmt.Printf("  iterations: %d, repairs: %d\n", result.Metrics.Iterations, result.Metrics.Repairs)
		}

		if dotPath := Opts().Dot(); dotPath != "" {
			if err := ir.RenderDot(fn, annotate(result), Opts().Format(), dotPath); err != nil {
				log.Warnf("divc: rendering %s: %v", dotPath, err)
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

func outcome(r di.Result) string {
	if r.Success {
		return "ok"
	}
	return fmt.Sprintf("%d diagnostic(s)", len(r.Diagnostics))
}

// annotate builds the -dot label hook from a pass result: each block's
// node is labeled with the before/after context the fixed point settled
// on for it.
func annotate(r di.Result) ir.Annotate {
	return func(b *ir.Block) string {
		trace, ok := r.Blocks[b]
		if !ok {
			return ""
		}
		return fmt.Sprintf("before:\\l%safter:\\l%s", escapeDot(trace.Before.String()), escapeDot(trace.After.String()))
	}
}

func escapeDot(s string) string {
	out := ""
	for _, r := range s {
		if r == '\n' {
			out += "\\l"
			continue
		}
		out += string(r)
	}
	return out
}
