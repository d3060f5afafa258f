package ir

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// colorize mirrors the teacher's per-package `colorize` struct: a set of
// named, NO_COLOR-aware formatters rather than calling color.New at every
// call site.
var colorize = struct {
	Opcode  func(...interface{}) string
	Block   func(...interface{}) string
	Reg     func(...interface{}) string
	Keyword func(...interface{}) string
}{
	Opcode:  canColorize(color.New(color.FgHiCyan).SprintFunc()),
	Block:   canColorize(color.New(color.FgHiYellow).SprintFunc()),
	Reg:     canColorize(color.New(color.FgHiGreen).SprintFunc()),
	Keyword: canColorize(color.New(color.FgHiMagenta).SprintFunc()),
}

// NoColor disables all IR pretty-printer colorization, mirroring the
// teacher's -no-colorize flag (utils.CanColorize).
var NoColor = false

func canColorize(f func(...interface{}) string) func(...interface{}) string {
	return func(is ...interface{}) string {
		if NoColor {
			return fmt.Sprint(is...)
		}
		return f(is...)
	}
}

// PrintFunction renders fn as readable, colorized text: a signature line
// followed by one block per label, one instruction per line.
func PrintFunction(fn *Function) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "func %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s: %s", p.Convention, p.Name, p.Type)
	}
	sb.WriteString(") {\n")

	for _, b := range fn.Blocks {
		fmt.Fprintf(&sb, "%s:\n", colorize.Block(b.Name))
		for _, ins := range b.Instrs() {
			fmt.Fprintf(&sb, "  %s\n", ins.String())
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}
