package ir

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestPrintFunctionRendersSignatureAndBlocks(t *testing.T) {
	NoColor = true
	defer func() { NoColor = false }()

	fn := NewFunction("dup", Param{Name: "x", Convention: Let, Type: Scalar("Int")})
	blk := fn.AddBlock("entry")
	bu := NewBuilder(fn, blk)
	alloc := bu.AllocStack(Scalar("Int"), Range{})
	bu.Store(ParamRegister(0), ResultRegister(alloc, 0), Range{})
	bu.Return(Register{}, false, Range{})

	out := PrintFunction(fn)
	for _, want := range []string{
		"func dup(let x: Int) {",
		"entry:",
		"alloc_stack Int",
		"store",
		"return",
		"}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintFunction output missing %q, got:\n%s", want, out)
		}
	}
}

func TestPrintFunctionGoldenOutput(t *testing.T) {
	NoColor = true
	defer func() { NoColor = false }()

	fn := NewFunction("dup", Param{Name: "x", Convention: Let, Type: Scalar("Int")})
	blk := fn.AddBlock("entry")
	bu := NewBuilder(fn, blk)
	alloc := bu.AllocStack(Scalar("Int"), Range{})
	bu.Store(ParamRegister(0), ResultRegister(alloc, 0), Range{})
	bu.Return(Register{}, false, Range{})

	g := goldie.New(t)
	g.Assert(t, "print-dup", []byte(PrintFunction(fn)))
}

func TestPrintFunctionNoParamsNoArgsRenderedEmpty(t *testing.T) {
	NoColor = true
	defer func() { NoColor = false }()

	fn := NewFunction("f")
	blk := fn.AddBlock("entry")
	NewBuilder(fn, blk).Unreachable(Range{})

	out := PrintFunction(fn)
	if !strings.Contains(out, "func f() {") {
		t.Errorf("expected an empty parameter list, got:\n%s", out)
	}
}
