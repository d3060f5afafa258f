package ir

// Convention is a parameter-passing mode, per the GLOSSARY in spec.md.
type Convention int

const (
	// Let is an immutable borrow: the callee may read but not write.
	Let Convention = iota
	// Inout is a mutable borrow: the callee may read and write, and must
	// leave the storage fully initialized on return.
	Inout
	// Set is a write-only borrow into uninitialized storage.
	Set
	// Sink transfers ownership to the callee.
	Sink
	// Yielded denotes a coroutine yield slot. DI cannot represent an
	// instance of this convention (spec.md §4.1, §4.3); any IR using it
	// is a precondition violation.
	Yielded
)

func (c Convention) String() string {
	switch c {
	case Let:
		return "let"
	case Inout:
		return "inout"
	case Set:
		return "set"
	case Sink:
		return "sink"
	case Yielded:
		return "yielded"
	default:
		return "<bad convention>"
	}
}

// Capability is the borrow strength requested by a `borrow` instruction.
// It reuses the parameter Convention vocabulary restricted to the three
// conventions spec.md §4.1 assigns semantics to for borrow: let, inout,
// and set (yielded is a precondition violation there too).
type Capability = Convention
