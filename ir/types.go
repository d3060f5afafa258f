package ir

import "fmt"

// Type is the IR's minimal type system: enough to drive disaggregation
// (spec.md §3, "Disaggregation") without modeling the source language's
// full type checker, which is out of scope (spec.md §1).
//
// A Type is either a Scalar leaf (Int, Bool, a named opaque type, ...) or
// a Record with an ordered list of named, typed stored properties.
type Type struct {
	name    string
	fields  []Field
	isArray bool // true for a Record standing in for a fixed-shape array/tuple
}

// Field is one stored property of a record type.
type Field struct {
	Name string
	Type Type
}

// Scalar constructs a leaf type with no stored properties.
func Scalar(name string) Type {
	return Type{name: name}
}

// RecordType constructs a record type with the given stored properties, in
// declaration order. The order is load-bearing: record paths (§3,
// "Sub(root, path)") are indices into this slice.
func RecordType(name string, fields ...Field) Type {
	if fields == nil {
		fields = []Field{}
	}
	return Type{name: name, fields: fields}
}

// Name returns the type's declared name, for printing and diagnostics.
func (t Type) Name() string {
	return t.name
}

// IsRecord reports whether t has stored properties (possibly zero, for a
// degenerate empty struct, which is still disaggregable in principle but
// never produces a non-empty Partial per spec.md §3).
func (t Type) IsRecord() bool {
	return t.fields != nil
}

// NumFields returns the number of stored properties of a record type, or
// zero for a scalar.
func (t Type) NumFields() int {
	return len(t.fields)
}

// FieldType returns the type of stored property i of a record type.
func (t Type) FieldType(i int) Type {
	if i < 0 || i >= len(t.fields) {
		panic(fmt.Errorf("ir: field index %d out of range for type %s", i, t.name))
	}
	return t.fields[i].Type
}

// FieldName returns the declared name of stored property i, for printing.
func (t Type) FieldName(i int) string {
	if i < 0 || i >= len(t.fields) {
		panic(fmt.Errorf("ir: field index %d out of range for type %s", i, t.name))
	}
	return t.fields[i].Name
}

// Equal reports nominal type equality, which is all the pass ever needs
// (it never structurally unifies two distinct record types).
func (t Type) Equal(o Type) bool {
	return t.name == o.name
}

func (t Type) String() string {
	return t.name
}

// Path is a sequence of stored-property indices identifying a sub-location
// within a record, per spec.md §3 ("Sub(root, path)"). An empty Path
// denotes the root itself.
type Path []int

// Append returns a new Path with idx appended, leaving the receiver's
// backing array untouched (Paths are shared freely between Location
// values, so appends must not alias).
func (p Path) Append(idx int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = idx
	return out
}

// Equal reports whether two paths denote the same sequence of indices.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	s := ""
	for _, i := range p {
		s += fmt.Sprintf(".%d", i)
	}
	return s
}

// TypeAt resolves the type of the sub-object at path within a value of
// type t, i.e. abstractLayout(t, path) from spec.md §6.
func TypeAt(t Type, path Path) Type {
	for _, idx := range path {
		t = t.FieldType(idx)
	}
	return t
}
