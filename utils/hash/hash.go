// Package hash collects small hashing helpers shared by the location and
// memctx packages, so that hand-rolled recursive types can be used as keys
// in immutable.Map without each package reimplementing combination logic.
package hash

import (
	"reflect"

	"github.com/benbjohnson/immutable"
)

// Hashable is implemented by values that know their own hash.
type Hashable interface {
	Hash() uint32
}

// HashableEq is implemented by hashable values that can also compare
// themselves for equality.
type HashableEq[T any] interface {
	Hashable
	Equal(T) bool
}

type hashableHasher[T HashableEq[T]] struct{}

func (hashableHasher[T]) Hash(a T) uint32   { return a.Hash() }
func (hashableHasher[T]) Equal(a, b T) bool { return a.Equal(b) }

// Of returns an immutable.Hasher for any hashable-and-comparable type.
func Of[T HashableEq[T]]() immutable.Hasher[T] {
	return hashableHasher[T]{}
}

// NewMap creates an immutable.Map keyed by a hashable-and-comparable type.
func NewMap[K HashableEq[K], V any]() *immutable.Map[K, V] {
	return immutable.NewMap[K, V](Of[K]())
}

// Pointer is a generic hasher for pointer-identity keys (e.g. *ir.Instruction).
type Pointer[T any] struct{}

func (Pointer[T]) Hash(v T) uint32 {
	p := reflect.ValueOf(v).Pointer()
	return uint32(p ^ (p >> 32))
}

func (Pointer[T]) Equal(a, b T) bool {
	return any(a) == any(b)
}

// Combine folds a sequence of hashes into one, using the boost
// hash_combine recurrence.
func Combine(hs ...uint32) (seed uint32) {
	for _, h := range hs {
		seed ^= h + 0x9e3779b9 + (seed << 6) + (seed >> 2)
	}
	return
}

// String hashes a string with FNV-1a; used where a location's identity
// includes a name or path component.
func String(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Int hashes a plain integer component (block/instruction addresses,
// parameter indices, field indices).
func Int(i int) uint32 {
	u := uint32(i)
	u = ((u >> 16) ^ u) * 0x45d9f3b
	u = ((u >> 16) ^ u) * 0x45d9f3b
	u = (u >> 16) ^ u
	return u
}
