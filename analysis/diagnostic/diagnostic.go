// Package diagnostic implements the diagnostic channel (spec.md §4.5,
// §7, component C7): an accumulating buffer of structured errors with
// source ranges, plus terminal rendering in the teacher's colorize-struct
// style (analysis/location, analysis/lattice in the teacher package).
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/vsl-lang/divc/ir"
)

// Level is the severity of a diagnostic. spec.md §4.5 only ever emits
// `error`; the type exists so a future pass reusing this channel (a
// warning-level check, say) doesn't need a new channel type.
type Level int

const (
	Error Level = iota
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	default:
		return "note"
	}
}

// User-visible diagnostic strings (spec.md §6), named so the evaluator
// (analysis/di) never repeats the literal text.
const (
	MsgIllegalMove               = "illegal move"
	MsgUnboundedStackAllocation  = "unbounded stack allocation"
	MsgUseOfConsumed             = "use of consumed object"
	MsgUseOfPartiallyConsumed    = "use of partially consumed object"
	MsgUseOfPartiallyInitialized = "use of partially initialized object"
	MsgUseOfUninitialized        = "use of uninitialized object"
)

// Diagnostic is a single structured error (spec.md §4.5): a level, a
// human message, the position of the first character of the originating
// instruction's range, and an optional source window.
type Diagnostic struct {
	Level   Level
	Message string
	Pos     ir.Range
	Window  string
}

func (d Diagnostic) String() string {
	if d.Window == "" {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Level, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s\n%s", d.Pos, d.Level, d.Message, d.Window)
}

// colorize mirrors the teacher's per-package colorize struct.
var colorize = struct {
	Level  func(...interface{}) string
	Pos    func(...interface{}) string
	Window func(...interface{}) string
}{
	Level:  canColorize(color.New(color.FgHiRed, color.Bold).SprintFunc()),
	Pos:    canColorize(color.New(color.FgHiWhite, color.Bold).SprintFunc()),
	Window: canColorize(color.New(color.FgHiWhite, color.Faint).SprintFunc()),
}

// NoColor disables colorization, mirroring the teacher's -no-colorize
// flag (utils.CanColorize) and ir.NoColor.
var NoColor = false

func canColorize(f func(...interface{}) string) func(...interface{}) string {
	return func(is ...interface{}) string {
		if NoColor {
			return fmt.Sprint(is...)
		}
		return f(is...)
	}
}

// Render renders d the way the CLI prints it to a terminal: colorized
// unless NoColor is set.
func (d Diagnostic) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s: %s", colorize.Pos(d.Pos.String()), colorize.Level(d.Level.String()), d.Message)
	if d.Window != "" {
		fmt.Fprintf(&sb, "\n%s", colorize.Window(d.Window))
	}
	return sb.String()
}

// Channel accumulates diagnostics emitted during a pass run (spec.md
// §4.5: "Accumulates structured errors with source ranges").
type Channel struct {
	diags []Diagnostic
}

// Error appends an error-level diagnostic.
func (c *Channel) Error(message string, pos ir.Range, window string) {
	c.diags = append(c.diags, Diagnostic{Level: Error, Message: message, Pos: pos, Window: window})
}

// Diagnostics returns every diagnostic emitted so far, in emission order.
// spec.md §5 notes this order is block-visitation order, not source
// order; callers that want source order must sort explicitly.
func (c *Channel) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), c.diags...)
}

// Failed reports whether any diagnostic has been emitted (spec.md §4.5:
// "The pass returns false if any diagnostic was emitted").
func (c *Channel) Failed() bool {
	return len(c.diags) > 0
}

// BySourcePosition sorts diagnostics by their position's file, then
// line, then column — the order spec.md §5 says a consumer displaying
// diagnostics must use instead of emission order.
func BySourcePosition(diags []Diagnostic) []Diagnostic {
	out := append([]Diagnostic(nil), diags...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func less(a, b Diagnostic) bool {
	if a.Pos.File != b.Pos.File {
		return a.Pos.File < b.Pos.File
	}
	if a.Pos.Line != b.Pos.Line {
		return a.Pos.Line < b.Pos.Line
	}
	return a.Pos.Col < b.Pos.Col
}
