package ir

import "testing"

func TestRegisterEqualByKind(t *testing.T) {
	if !ParamRegister(0).Equal(ParamRegister(0)) {
		t.Errorf("ParamRegister(0) should equal itself")
	}
	if ParamRegister(0).Equal(ParamRegister(1)) {
		t.Errorf("distinct param indices should not be equal")
	}
	if ParamRegister(0).Equal(ConstRegister(0)) {
		t.Errorf("a param and a const register should never be equal")
	}
}

func TestConstRegisterIsConst(t *testing.T) {
	if !ConstRegister(3).IsConst() {
		t.Errorf("ConstRegister(3).IsConst() = false, want true")
	}
	if ParamRegister(0).IsConst() {
		t.Errorf("ParamRegister(0).IsConst() = true, want false")
	}
}

func TestResultRegisterIdentityByInstructionAndIndex(t *testing.T) {
	fn := NewFunction("f")
	blk := fn.AddBlock("entry")
	bu := NewBuilder(fn, blk)
	alloc := bu.AllocStack(Scalar("Int"), Range{})

	r1 := ResultRegister(alloc, 0)
	r2 := ResultRegister(alloc, 0)
	if !r1.Equal(r2) {
		t.Errorf("ResultRegister for the same (instr, index) should be equal")
	}

	other := bu.AllocStack(Scalar("Int"), Range{})
	r3 := ResultRegister(other, 0)
	if r1.Equal(r3) {
		t.Errorf("ResultRegister for distinct instructions should not be equal")
	}
}

func TestFunctionNewConstMintsDistinctRegisters(t *testing.T) {
	fn := NewFunction("f")
	c1 := fn.NewConst()
	c2 := fn.NewConst()
	if c1.Equal(c2) {
		t.Errorf("NewConst should mint distinct registers on each call")
	}
}

func TestRegisterStringForms(t *testing.T) {
	if got := ParamRegister(2).String(); got != "%arg2" {
		t.Errorf("ParamRegister(2).String() = %q, want %%arg2", got)
	}
	if got := ConstRegister(5).String(); got != "%const5" {
		t.Errorf("ConstRegister(5).String() = %q, want %%const5", got)
	}
}
