package lattice

import "testing"

func TestStateJoinTable(t *testing.T) {
	tests := []struct {
		name string
		a, b State
		want State
	}{
		{"init join init", InitializedState(), InitializedState(), InitializedState()},
		{"init join uninit", InitializedState(), UninitializedState(), UninitializedState()},
		{"uninit join init", UninitializedState(), InitializedState(), UninitializedState()},
		{"uninit join uninit", UninitializedState(), UninitializedState(), UninitializedState()},
		{"uninit join consumed", UninitializedState(), ConsumedBy(1), ConsumedBy(1)},
		{"consumed join uninit", ConsumedBy(1), UninitializedState(), ConsumedBy(1)},
		{"init join consumed", InitializedState(), ConsumedBy(1), ConsumedBy(1)},
		{"consumed join init", ConsumedBy(1), InitializedState(), ConsumedBy(1)},
		{"consumed join consumed unions", ConsumedBy(1), ConsumedBy(2), ConsumedBy(1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Join(tt.b)
			if !got.Eq(tt.want) {
				t.Errorf("%v.Join(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStateJoinCommutative(t *testing.T) {
	states := []State{InitializedState(), UninitializedState(), ConsumedBy(1), ConsumedBy(2, 3)}
	for _, a := range states {
		for _, b := range states {
			if !a.Join(b).Eq(b.Join(a)) {
				t.Errorf("Join not commutative for %v, %v", a, b)
			}
		}
	}
}

func TestConsumedEqConsidersConsumerSet(t *testing.T) {
	a := ConsumedBy(1, 2)
	b := ConsumedBy(2, 1)
	if !a.Eq(b) {
		t.Errorf("ConsumedBy(1,2) should equal ConsumedBy(2,1) (set equality), got unequal")
	}
	c := ConsumedBy(1, 3)
	if a.Eq(c) {
		t.Errorf("ConsumedBy(1,2) should not equal ConsumedBy(1,3)")
	}
}

func TestStateKind(t *testing.T) {
	if InitializedState().Kind() != Initialized {
		t.Error("InitializedState().Kind() != Initialized")
	}
	if UninitializedState().Kind() != Uninitialized {
		t.Error("UninitializedState().Kind() != Uninitialized")
	}
	if ConsumedBy(1).Kind() != Consumed {
		t.Error("ConsumedBy(1).Kind() != Consumed")
	}
}
