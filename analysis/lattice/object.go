package lattice

// Object is spec.md §3's per-register/per-cell view of a value of record
// type: either Full(state) — every part shares the same state — or
// Partial([]Object) — one sub-object per stored property. Objects are
// always kept in canonical form by the constructors in this file: a
// Partial whose children are all Full with an equal state collapses back
// to Full, so Eq and Join can assume matching shapes mean matching
// meaning.
type Object struct {
	full  bool
	state State   // meaningful iff full
	parts []Object // meaningful iff !full; always non-empty
}

// Full constructs the canonical object where every part has state s.
func Full(s State) Object {
	return Object{full: true, state: s}
}

// MakePartial builds the canonical form of a Partial object with the
// given per-property sub-objects. If every part is Full with an equal
// state, the result collapses to that Full state (spec.md §3:
// "A Partial whose canonical children are all equal canonicalizes back
// to Full").
func MakePartial(parts []Object) Object {
	if len(parts) == 0 {
		panic("lattice: Partial object must have at least one part")
	}
	if allFullAndEqual(parts) {
		return Full(parts[0].state)
	}
	return Object{full: false, parts: parts}
}

func allFullAndEqual(parts []Object) bool {
	if !parts[0].full {
		return false
	}
	for _, p := range parts[1:] {
		if !p.full || !p.state.Eq(parts[0].state) {
			return false
		}
	}
	return true
}

// IsFull reports whether o is in the Full form.
func (o Object) IsFull() bool { return o.full }

// State returns o's uniform state; only valid when IsFull().
func (o Object) State() State {
	if !o.full {
		panic("lattice: State() called on a Partial object")
	}
	return o.state
}

// Parts returns o's per-property sub-objects; only valid when !IsFull().
func (o Object) Parts() []Object {
	if o.full {
		panic("lattice: Parts() called on a Full object")
	}
	return o.parts
}

// disaggregate refines o into a Partial with numFields parts, each
// initially Full(o.state) if o was Full. If o is already Partial it is
// returned unchanged (it is the caller's responsibility to know
// numFields agrees with len(o.Parts()), which holds as long as the same
// record type governs every call site reached via a given root).
//
// Unlike MakePartial, disaggregate deliberately does not re-canonicalize:
// callers always immediately replace one part and re-canonicalize via
// MakePartial, and collapsing here would make that replacement a no-op
// when all fields start out equal.
func disaggregate(o Object, numFields int) Object {
	if !o.full {
		return o
	}
	parts := make([]Object, numFields)
	for i := range parts {
		parts[i] = Full(o.state)
	}
	return Object{full: false, parts: parts}
}

// Eq reports structural equality between canonical objects.
func (o Object) Eq(p Object) bool {
	if o.full != p.full {
		return false
	}
	if o.full {
		return o.state.Eq(p.state)
	}
	if len(o.parts) != len(p.parts) {
		return false
	}
	for i := range o.parts {
		if !o.parts[i].Eq(p.parts[i]) {
			return false
		}
	}
	return true
}

// Join computes the per-part conservative merge of o and p (spec.md §3).
// Operands need not share shape: a Full operand is broadcast across
// whichever arity the Partial operand uses.
func (o Object) Join(p Object) Object {
	if o.full && p.full {
		return Full(o.state.Join(p.state))
	}

	n := partCount(o, p)
	oParts := broadcastParts(o, n)
	pParts := broadcastParts(p, n)

	joined := make([]Object, n)
	for i := range joined {
		joined[i] = oParts[i].Join(pParts[i])
	}
	return MakePartial(joined)
}

func partCount(o, p Object) int {
	if !o.full {
		return len(o.parts)
	}
	return len(p.parts)
}

func broadcastParts(o Object, n int) []Object {
	if !o.full {
		return o.parts
	}
	parts := make([]Object, n)
	for i := range parts {
		parts[i] = Full(o.state)
	}
	return parts
}

// Project walks path into o (of record-layout numFieldsAt(path-prefix),
// supplied lazily via the numFields callback), disaggregating as needed,
// and returns the sub-object at path along with a rebuild function that
// reconstitutes a full replacement for o given a new value for that
// sub-object. This is spec.md §4.1's withObject helper: "walk the path in
// memory[root], disaggregating lazily at each step ... apply f to the
// projected sub-object by reference so mutations write back."
func Project(o Object, numFields func(depth int) int, path []int) (Object, func(Object) Object) {
	if len(path) == 0 {
		return o, func(n Object) Object { return n }
	}

	idx := path[0]
	n := numFields(0)
	disagg := disaggregate(o, n)
	parts := disagg.parts

	child, rebuildChild := Project(parts[idx], func(d int) int { return numFields(d + 1) }, path[1:])

	return child, func(newLeaf Object) Object {
		newParts := append([]Object(nil), parts...)
		newParts[idx] = rebuildChild(newLeaf)
		return MakePartial(newParts)
	}
}
