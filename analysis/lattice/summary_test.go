package lattice

import (
	"testing"

	"github.com/vsl-lang/divc/ir"
)

func TestSummarizeFullStates(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want SummaryKind
	}{
		{"full initialized", Full(InitializedState()), FullyInitialized},
		{"full uninitialized", Full(UninitializedState()), FullyUninitialized},
		{"full consumed", Full(ConsumedBy(1)), FullyConsumed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.obj)
			if got.Kind != tt.want {
				t.Errorf("Summarize(%v).Kind = %v, want %v", tt.obj, got.Kind, tt.want)
			}
		})
	}
}

func TestSummarizePartial(t *testing.T) {
	mixed := twoFields(InitializedState(), UninitializedState())
	if got := Summarize(mixed).Kind; got != PartiallyInitialized {
		t.Errorf("mixed init/uninit Summarize.Kind = %v, want PartiallyInitialized", got)
	}

	withConsumed := twoFields(InitializedState(), ConsumedBy(1))
	if got := Summarize(withConsumed).Kind; got != PartiallyConsumed {
		t.Errorf("init/consumed Summarize.Kind = %v, want PartiallyConsumed", got)
	}

	allConsumed := twoFields(ConsumedBy(1), ConsumedBy(2))
	if got := Summarize(allConsumed).Kind; got != FullyConsumed {
		t.Errorf("all-consumed Partial Summarize.Kind = %v, want FullyConsumed", got)
	}
}

func TestInitializedPathsAndUninitializedOrConsumedPathsPartitionLeaves(t *testing.T) {
	o := MakePartial([]Object{
		Full(InitializedState()),
		MakePartial([]Object{Full(UninitializedState()), Full(ConsumedBy(1))}),
	})

	init := o.InitializedPaths()
	other := o.UninitializedOrConsumedPaths()

	if len(init) != 1 || !init[0].Equal(ir.Path{0}) {
		t.Errorf("InitializedPaths = %v, want [[0]]", init)
	}
	wantOther := []ir.Path{{1, 0}, {1, 1}}
	if len(other) != len(wantOther) {
		t.Fatalf("UninitializedOrConsumedPaths = %v, want %v", other, wantOther)
	}
	for i, p := range wantOther {
		if !other[i].Equal(p) {
			t.Errorf("UninitializedOrConsumedPaths[%d] = %v, want %v", i, other[i], p)
		}
	}
}

func TestDifferenceFullInitializedAgainstOther(t *testing.T) {
	a := Full(InitializedState())
	b := twoFields(InitializedState(), UninitializedState())
	diff := Difference(a, b)
	if len(diff) != 1 || !diff[0].Equal(ir.Path{1}) {
		t.Errorf("Difference(Full(init), mixed) = %v, want [[1]]", diff)
	}
}

func TestDifferenceNothingWhenBFullyInitialized(t *testing.T) {
	a := twoFields(InitializedState(), ConsumedBy(1))
	b := Full(InitializedState())
	if diff := Difference(a, b); len(diff) != 0 {
		t.Errorf("Difference(a, Full(init)) = %v, want empty", diff)
	}
}

func TestDifferencePartialVsPartial(t *testing.T) {
	a := twoFields(UninitializedState(), InitializedState())
	b := twoFields(InitializedState(), UninitializedState())
	diff := Difference(a, b)
	if len(diff) != 1 || !diff[0].Equal(ir.Path{1}) {
		t.Errorf("Difference(a, b) = %v, want [[1]]", diff)
	}
}

func TestDifferenceSelfIsEmpty(t *testing.T) {
	objs := []Object{
		Full(InitializedState()),
		Full(UninitializedState()),
		twoFields(InitializedState(), ConsumedBy(1)),
	}
	for _, o := range objs {
		if diff := Difference(o, o); len(diff) != 0 {
			t.Errorf("Difference(o, o) = %v, want empty for o = %v", diff, o)
		}
	}
}
