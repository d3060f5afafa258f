package ir

// Param is a formal parameter: a name, its passing convention, and its
// type (spec.md §4.3 "Entry context").
type Param struct {
	Name       string
	Convention Convention
	Type       Type
}

// Function is a single IR function: an ordered list of blocks (the first
// is the entry block) plus its formal parameters.
type Function struct {
	Name   string
	Params []Param
	Blocks []*Block

	nextID    int
	nextConst int

	cfg *CFG // lazily built, cached
}

// NewFunction creates an empty function with the given name and
// parameters. Use Builder to populate its blocks.
func NewFunction(name string, params ...Param) *Function {
	return &Function{Name: name, Params: params}
}

// Entry returns the function's entry block.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// AddBlock appends a new, empty block to the function and returns it.
func (f *Function) AddBlock(name string) *Block {
	b := &Block{Name: name, Index: len(f.Blocks), fn: f}
	f.Blocks = append(f.Blocks, b)
	f.cfg = nil
	return b
}

func (f *Function) newID() int {
	id := f.nextID
	f.nextID++
	return id
}

// NewConst mints a fresh constant register, distinct from every other
// constant minted by this function.
func (f *Function) NewConst() Register {
	r := ConstRegister(f.nextConst)
	f.nextConst++
	return r
}

// ParamRegister returns the local register bound to parameter i at entry.
func (f *Function) ParamRegister(i int) Register {
	return ParamRegister(i)
}

// CFG returns (building and caching on first use) the function's control
// flow graph.
func (f *Function) CFG() *CFG {
	if f.cfg == nil {
		f.cfg = buildCFG(f)
	}
	return f.cfg
}

// invalidateCFG must be called whenever a block's successor set changes.
// InsertBefore never changes terminators, so ordinary repairs never need
// this; it exists for builders that mutate control flow.
func (f *Function) invalidateCFG() {
	f.cfg = nil
}

func (f *Function) String() string {
	return f.Name
}
