package ir

// Builder provides a fluent, address-bookkeeping-free way to append
// instructions to a block, used by tests and by the textual IR parser.
// DI itself never uses Builder; it only ever reads a function's existing
// blocks and calls Block.InsertBefore for repairs.
type Builder struct {
	fn  *Function
	blk *Block
}

// NewBuilder starts building into blk, which must belong to fn.
func NewBuilder(fn *Function, blk *Block) *Builder {
	return &Builder{fn: fn, blk: blk}
}

// At repositions the builder to append into a different block of the
// same function (e.g. after calling Function.AddBlock).
func (b *Builder) At(blk *Block) *Builder {
	b.blk = blk
	return b
}

func (b *Builder) emit(instr Instruction) Instruction {
	switch v := instr.(type) {
	case *AllocStack:
		v.id = b.fn.newID()
	case *Borrow:
		v.id = b.fn.newID()
	case *CondBranch:
		v.id = b.fn.newID()
	case *Call:
		v.id = b.fn.newID()
	case *DeallocStack:
		v.id = b.fn.newID()
	case *Deinit:
		v.id = b.fn.newID()
	case *Destructure:
		v.id = b.fn.newID()
	case *Load:
		v.id = b.fn.newID()
	case *Record:
		v.id = b.fn.newID()
	case *Return:
		v.id = b.fn.newID()
	case *Store:
		v.id = b.fn.newID()
	case *Branch:
		v.id = b.fn.newID()
	case *EndBorrow:
		v.id = b.fn.newID()
	case *Unreachable:
		v.id = b.fn.newID()
	}
	b.blk.append(instr)
	return instr
}

func (b *Builder) AllocStack(t Type, rng Range) *AllocStack {
	return b.emit(&AllocStack{base: base{rng: rng}, Type: t}).(*AllocStack)
}

func (b *Builder) Borrow(cap Capability, src Register, path Path, rng Range) *Borrow {
	return b.emit(&Borrow{base: base{rng: rng}, Capability: cap, Src: src, Path: path}).(*Borrow)
}

func (b *Builder) CondBranch(cond Register, t, f *Block, rng Range) *CondBranch {
	return b.emit(&CondBranch{base: base{rng: rng}, Cond: cond, True: t, False: f}).(*CondBranch)
}

func (b *Builder) Call(resultType Type, ops []CallOperand, rng Range) *Call {
	return b.emit(&Call{base: base{rng: rng}, Operands_: ops, ResultType: resultType}).(*Call)
}

func (b *Builder) DeallocStack(loc Register, rng Range) *DeallocStack {
	return b.emit(&DeallocStack{base: base{rng: rng}, Loc: loc}).(*DeallocStack)
}

func (b *Builder) Deinit(obj Register, rng Range) *Deinit {
	return b.emit(&Deinit{base: base{rng: rng}, Obj: obj}).(*Deinit)
}

func (b *Builder) Destructure(obj Register, objType Type, rng Range) *Destructure {
	return b.emit(&Destructure{base: base{rng: rng}, Obj: obj, ObjType: objType}).(*Destructure)
}

func (b *Builder) Load(t Type, src Register, path Path, rng Range) *Load {
	return b.emit(&Load{base: base{rng: rng}, Type: t, Src: src, Path: path}).(*Load)
}

func (b *Builder) Record(t Type, ops []Register, rng Range) *Record {
	return b.emit(&Record{base: base{rng: rng}, Operands_: ops, Type: t}).(*Record)
}

func (b *Builder) Return(val Register, hasVal bool, rng Range) *Return {
	return b.emit(&Return{base: base{rng: rng}, Val: val, HasVal: hasVal}).(*Return)
}

func (b *Builder) Store(obj, target Register, rng Range) *Store {
	return b.emit(&Store{base: base{rng: rng}, Obj: obj, Target: target}).(*Store)
}

func (b *Builder) Branch(target *Block, rng Range) *Branch {
	return b.emit(&Branch{base: base{rng: rng}, Target: target}).(*Branch)
}

func (b *Builder) EndBorrow(borrowed Register, rng Range) *EndBorrow {
	return b.emit(&EndBorrow{base: base{rng: rng}, Borrowed: borrowed}).(*EndBorrow)
}

func (b *Builder) Unreachable(rng Range) *Unreachable {
	return b.emit(&Unreachable{base: base{rng: rng}}).(*Unreachable)
}
