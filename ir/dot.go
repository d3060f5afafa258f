package ir

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// Annotate supplies extra label text for a block, e.g. the before/after
// context summaries a DI run produced for it (analysis/di wires this up
// behind the CLI's -dot flag).
type Annotate func(b *Block) string

// DotBytes renders fn's CFG as Graphviz DOT source. If annotate is
// non-nil, its output is appended to each block's node label.
func DotBytes(fn *Function, annotate Annotate) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", fn.Name)
	fmt.Fprintf(&buf, "  node [shape=box fontname=Courier];\n")

	for _, b := range fn.Blocks {
		label := blockLabel(b)
		if annotate != nil {
			if extra := annotate(b); extra != "" {
				label += "\\n\\n" + extra
			}
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", b.Name, label)
	}
	for _, b := range fn.Blocks {
		for _, s := range b.Successors() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", b.Name, s.Name)
		}
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

func blockLabel(b *Block) string {
	s := b.Name + ":\\l"
	for _, ins := range b.Instrs() {
		s += ins.String() + "\\l"
	}
	return s
}

// RenderDot renders fn's CFG to an image file at path, in the given
// Graphviz output format ("svg", "png", ...), using go-graphviz's
// in-process renderer (no external `dot` binary required).
func RenderDot(fn *Function, annotate Annotate, format, path string) error {
	g := graphviz.New()
	defer g.Close()

	graph, err := graphviz.ParseBytes(DotBytes(fn, annotate))
	if err != nil {
		return err
	}
	defer graph.Close()

	return g.RenderFilename(graph, graphviz.Format(format), path)
}
