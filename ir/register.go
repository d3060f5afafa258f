package ir

import (
	"fmt"
	"reflect"
)

type registerKind int

const (
	regParam registerKind = iota
	regResult
	regConst
)

// Register is a key into the abstract context's `locals` map (spec.md
// §3): either a function parameter, the (instruction, result-index) pair
// that produced a local value, or a constant. Constants are given a
// distinguished kind rather than aliasing instr==nil, since spec.md §9
// flags constants-as-sources as an open question DI must still be able to
// name without crashing.
type Register struct {
	kind   registerKind
	param  int
	instr  Instruction
	index  int
	constN int // disambiguates distinct constants within a function
}

// ParamRegister is the local bound to parameter i in the entry block.
func ParamRegister(i int) Register {
	return Register{kind: regParam, param: i}
}

// ResultRegister is the local bound to the i-th result of instr (i is 0
// for every opcode except destructure, which produces one result per
// stored property of the object it destructures).
func ResultRegister(instr Instruction, i int) Register {
	return Register{kind: regResult, instr: instr, index: i}
}

// ConstRegister names the n-th distinct constant operand encountered
// while building a function. Constants are never present in `locals`
// (spec.md §9), but diagnostics and operand-resolution code need a stable
// way to refer to "this is a constant, not a missing local".
func ConstRegister(n int) Register {
	return Register{kind: regConst, constN: n}
}

// IsConst reports whether the register names a constant operand.
func (r Register) IsConst() bool {
	return r.kind == regConst
}

func (r Register) Hash() uint32 {
	switch r.kind {
	case regParam:
		return uint32(r.param)*3 + 1
	case regConst:
		return uint32(r.constN)*3 + 2
	default:
		// Pointer identity of the producing instruction, combined with
		// the result index for multi-result instructions (destructure).
		return hashPointer(r.instr)*7 + uint32(r.index)
	}
}

func (r Register) Equal(o Register) bool {
	if r.kind != o.kind {
		return false
	}
	switch r.kind {
	case regParam:
		return r.param == o.param
	case regConst:
		return r.constN == o.constN
	default:
		return r.instr == o.instr && r.index == o.index
	}
}

func (r Register) String() string {
	switch r.kind {
	case regParam:
		return fmt.Sprintf("%%arg%d", r.param)
	case regConst:
		return fmt.Sprintf("%%const%d", r.constN)
	default:
		if r.index == 0 {
			return fmt.Sprintf("%%t%d", r.instr.ID())
		}
		return fmt.Sprintf("%%t%d.%d", r.instr.ID(), r.index)
	}
}

func hashPointer(i Instruction) uint32 {
	// Instructions are always heap-allocated concrete pointers; we only
	// need a stable, cheap hash, not a portable one.
	p := reflect.ValueOf(i).Pointer()
	return uint32(p ^ (p >> 32))
}
