package ir

import "testing"

func TestModuleFunctionsPreservesInsertionOrder(t *testing.T) {
	mod := NewModule()
	mod.AddFunction(NewFunction("b"))
	mod.AddFunction(NewFunction("a"))
	mod.AddFunction(NewFunction("c"))

	names := []string{}
	for _, fn := range mod.Functions() {
		names = append(names, fn.Name)
	}
	want := []string{"b", "a", "c"}
	for i, w := range want {
		if names[i] != w {
			t.Errorf("Functions()[%d] = %q, want %q", i, names[i], w)
		}
	}
}

func TestModuleAddFunctionOverwritesSameNameWithoutReordering(t *testing.T) {
	mod := NewModule()
	first := NewFunction("f")
	mod.AddFunction(first)
	mod.AddFunction(NewFunction("g"))
	second := NewFunction("f")
	mod.AddFunction(second)

	if got, _ := mod.Function("f"); got != second {
		t.Errorf("Function(\"f\") should return the most recently added function")
	}
	names := []string{}
	for _, fn := range mod.Functions() {
		names = append(names, fn.Name)
	}
	if len(names) != 2 || names[0] != "f" || names[1] != "g" {
		t.Errorf("Functions() order = %v, want [f g] (re-adding \"f\" should not move it)", names)
	}
}

func TestMustFunctionPanicsOnMissing(t *testing.T) {
	mod := NewModule()
	defer func() {
		if recover() == nil {
			t.Errorf("MustFunction on a missing name should panic")
		}
	}()
	mod.MustFunction("nope")
}
