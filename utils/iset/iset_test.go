package iset

import "testing"

func TestOfAndHas(t *testing.T) {
	s := Of(1, 3, 5)
	for _, id := range []int{1, 3, 5} {
		if !s.Has(id) {
			t.Errorf("Has(%d) = false, want true", id)
		}
	}
	if s.Has(2) {
		t.Errorf("Has(2) = true, want false")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestUnionDoesNotMutateInputs(t *testing.T) {
	a := Of(1, 2)
	b := Of(2, 3)
	u := a.Union(b)

	if u.Len() != 3 {
		t.Errorf("Union Len = %d, want 3", u.Len())
	}
	if a.Len() != 2 {
		t.Errorf("Union mutated a: Len = %d, want 2", a.Len())
	}
	if b.Len() != 2 {
		t.Errorf("Union mutated b: Len = %d, want 2", b.Len())
	}
}

func TestEqual(t *testing.T) {
	if !Of(1, 2).Equal(Of(2, 1)) {
		t.Errorf("Of(1, 2) should equal Of(2, 1)")
	}
	if Of(1, 2).Equal(Of(1, 3)) {
		t.Errorf("Of(1, 2) should not equal Of(1, 3)")
	}
}

func TestZeroSetIsEmpty(t *testing.T) {
	var s Set
	if s.Len() != 0 {
		t.Errorf("zero Set Len = %d, want 0", s.Len())
	}
}
